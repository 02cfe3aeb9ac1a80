package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ardnew/nibblemouse/bridge"
	"github.com/ardnew/nibblemouse/pkg"
)

func TestRunScript(t *testing.T) {
	script := filepath.Join(t.TempDir(), "move.yaml")
	require.NoError(t, os.WriteFile(script, []byte(`
steps:
  - dx: 10
    delay: 50ms
  - buttons: 1
    delay: 50ms
`), 0o644))

	cfg := bridge.DefaultConfig()
	cfg.Scale = 1
	c := RunCmd{
		Bridge: cfg,
		Strobe: 100 * time.Microsecond,
		Script: script,
	}

	var out bytes.Buffer
	require.NoError(t, c.Run(context.Background(), &out))
	assert.Contains(t, out.String(), "frame AFF0A00 x=10 y=0\n")
	assert.Contains(t, out.String(), "buttons 01\n")
}

func TestRunDuration(t *testing.T) {
	c := RunCmd{
		Bridge:   bridge.DefaultConfig(),
		Strobe:   time.Millisecond,
		Duration: 20 * time.Millisecond,
	}
	var out bytes.Buffer
	assert.NoError(t, c.Run(context.Background(), &out))
	assert.Empty(t, out.String(), "no motion, no frames")
}

func TestRunErrors(t *testing.T) {
	c := RunCmd{Bridge: bridge.DefaultConfig(), Strobe: time.Millisecond, Script: "x.yaml", Interactive: true}
	assert.ErrorIs(t, c.Run(context.Background(), &bytes.Buffer{}), pkg.ErrInvalidParameter)

	c = RunCmd{Bridge: bridge.DefaultConfig(), Strobe: 0, Duration: time.Millisecond}
	assert.ErrorIs(t, c.Run(context.Background(), &bytes.Buffer{}), pkg.ErrInvalidParameter)

	cfg := bridge.DefaultConfig()
	cfg.Scale = -1
	c = RunCmd{Bridge: cfg, Strobe: time.Millisecond, Duration: time.Millisecond}
	assert.ErrorIs(t, c.Run(context.Background(), &bytes.Buffer{}), pkg.ErrInvalidParameter)
}
