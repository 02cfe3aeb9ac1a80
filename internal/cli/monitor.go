package cli

import (
	"fmt"
	"io"
	"sync/atomic"

	"github.com/ardnew/nibblemouse/pkg"
	"github.com/ardnew/nibblemouse/port"
	"github.com/ardnew/nibblemouse/port/hal/sim"
)

// monitor samples the legacy port after every strobe edge, as the legacy
// host would, and prints decoded frames and button changes.
type monitor struct {
	port *sim.Port
	out  io.Writer
	eol  string

	dec     port.Decoder
	last    port.Frame
	seen    bool
	buttons uint8
	frames  atomic.Uint64
}

func newMonitor(p *sim.Port, out io.Writer, eol string) *monitor {
	if eol == "" {
		eol = "\n"
	}
	return &monitor{port: p, out: out, eol: eol}
}

// sample consumes one nibble. It runs on the strobe clock goroutine.
func (m *monitor) sample(nibble uint8) {
	if f, ok := m.dec.Push(nibble); ok {
		m.frames.Add(1)
		pkg.LogTrace(pkg.ComponentSim, "frame sampled", "frame", f.String())
		if !m.seen || f != m.last {
			m.seen, m.last = true, f
			fmt.Fprintf(m.out, "frame %s x=%d y=%d%s", f, f.X(), f.Y(), m.eol)
		}
	}
	if b := m.port.Pressed(); b != m.buttons {
		m.buttons = b
		fmt.Fprintf(m.out, "buttons %02b%s", b, m.eol)
	}
}

// Frames returns the number of complete frames sampled.
func (m *monitor) Frames() uint64 {
	return m.frames.Load()
}
