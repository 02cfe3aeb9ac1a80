//go:build profile

package prof

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"runtime"
	"runtime/pprof"
	"sync"

	_ "net/http/pprof" // Register HTTP handlers at /debug/pprof/

	"github.com/ardnew/nibblemouse/pkg"
)

// Available reports whether profiling is compiled in.
const Available = true

// DebugAddr serves the net/http/pprof handlers.
const DebugAddr = "localhost:6060"

// ErrActive indicates a profiled run is already in progress.
var ErrActive = errors.New("profile already active")

var (
	mu     sync.Mutex
	active bool
)

func init() {
	go func() {
		if err := http.ListenAndServe(DebugAddr, nil); err != nil {
			pkg.LogDebug(pkg.ComponentSim, "pprof server stopped", "error", err)
		}
	}()
}

// Start begins CPU profiling when requested. The returned stop function ends
// it and writes the heap profile; it must be called exactly once.
func (c Config) Start() (stop func() error, err error) {
	mu.Lock()
	defer mu.Unlock()
	if active {
		return nil, ErrActive
	}

	var cpu *os.File
	if c.CPU != "" {
		cpu, err = os.Create(c.CPU)
		if err != nil {
			return nil, fmt.Errorf("create cpu profile: %w", err)
		}
		if err := pprof.StartCPUProfile(cpu); err != nil {
			cpu.Close()
			return nil, fmt.Errorf("start cpu profile: %w", err)
		}
	}
	active = true

	return func() error {
		mu.Lock()
		defer mu.Unlock()
		active = false

		var errs []error
		if cpu != nil {
			pprof.StopCPUProfile()
			errs = append(errs, cpu.Close())
		}
		if c.Heap != "" {
			errs = append(errs, writeHeap(c.Heap))
		}
		return errors.Join(errs...)
	}, nil
}

func writeHeap(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create heap profile: %w", err)
	}
	defer f.Close()
	runtime.GC()
	if err := pprof.Lookup("heap").WriteTo(f, 0); err != nil {
		return fmt.Errorf("write heap profile: %w", err)
	}
	return nil
}
