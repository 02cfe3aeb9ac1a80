//go:build !profile

package prof

import "github.com/ardnew/nibblemouse/pkg"

// Available reports whether profiling is compiled in.
const Available = false

// Start logs a warning when profiles were requested and returns a no-op.
func (c Config) Start() (stop func() error, err error) {
	if c.Enabled() {
		pkg.LogWarn(pkg.ComponentSim, "profiling requested but not compiled in; rebuild with -tags profile")
	}
	return func() error { return nil }, nil
}
