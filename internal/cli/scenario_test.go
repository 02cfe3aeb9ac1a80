package cli

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ardnew/nibblemouse/pkg"
)

type move struct {
	buttons uint8
	dx, dy  int8
}

type moves []move

func (m *moves) Move(buttons uint8, dx, dy int8) bool {
	*m = append(*m, move{buttons, dx, dy})
	return true
}

const yamlScenario = `
name: square
steps:
  - dx: 10
    repeat: 2
    delay: 0s
  - dy: -5
    buttons: 1
    delay: 1ms
`

const tomlScenario = `
name = "square"

[[steps]]
dx = 10
repeat = 2
delay = "0s"

[[steps]]
dy = -5
buttons = 1
delay = "1ms"
`

func TestParseScenario(t *testing.T) {
	for _, tt := range []struct{ format, data string }{
		{"yaml", yamlScenario},
		{"toml", tomlScenario},
	} {
		t.Run(tt.format, func(t *testing.T) {
			s, err := ParseScenario([]byte(tt.data), tt.format)
			require.NoError(t, err)
			assert.Equal(t, "square", s.Name)
			require.Len(t, s.Steps, 2)
			assert.Equal(t, int8(10), s.Steps[0].DX)
			assert.Equal(t, 2, s.Steps[0].Repeat)
			assert.Equal(t, time.Duration(0), s.Steps[0].delay)
			assert.Equal(t, 1, s.Steps[1].Repeat, "repeat defaults to 1")
			assert.Equal(t, int8(-5), s.Steps[1].DY)
			assert.Equal(t, uint8(1), s.Steps[1].Buttons)
			assert.Equal(t, time.Millisecond, s.Steps[1].delay)
			assert.Equal(t, 3, s.Reports())
		})
	}
}

func TestParseScenarioErrors(t *testing.T) {
	tests := map[string]string{
		"no steps":       "name: empty\n",
		"negative":       "steps:\n  - dx: 1\n    repeat: -1\n",
		"bad delay":      "steps:\n  - dx: 1\n    delay: soon\n",
		"negative delay": "steps:\n  - dx: 1\n    delay: -1s\n",
	}
	for name, data := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := ParseScenario([]byte(data), "yaml")
			assert.ErrorIs(t, err, pkg.ErrInvalidParameter)
		})
	}

	_, err := ParseScenario([]byte("steps: ["), "yaml")
	assert.Error(t, err)

	_, err = ParseScenario([]byte(yamlScenario), "ini")
	assert.ErrorIs(t, err, pkg.ErrNotSupported)
}

func TestParseScenarioDefaultDelay(t *testing.T) {
	s, err := ParseScenario([]byte("steps:\n  - dx: 1\n"), "yaml")
	require.NoError(t, err)
	assert.Equal(t, defaultStepDelay, s.Steps[0].delay)
}

func TestLoadScenario(t *testing.T) {
	dir := t.TempDir()
	yml := filepath.Join(dir, "s.yml")
	require.NoError(t, os.WriteFile(yml, []byte(yamlScenario), 0o644))
	tml := filepath.Join(dir, "s.toml")
	require.NoError(t, os.WriteFile(tml, []byte(tomlScenario), 0o644))
	txt := filepath.Join(dir, "s.txt")
	require.NoError(t, os.WriteFile(txt, []byte(yamlScenario), 0o644))

	s, err := LoadScenario(yml)
	require.NoError(t, err)
	assert.Len(t, s.Steps, 2)

	s, err = LoadScenario(tml)
	require.NoError(t, err)
	assert.Len(t, s.Steps, 2)

	_, err = LoadScenario(txt)
	assert.ErrorIs(t, err, pkg.ErrNotSupported)

	_, err = LoadScenario(filepath.Join(dir, "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestPlay(t *testing.T) {
	s, err := ParseScenario([]byte(yamlScenario), "yaml")
	require.NoError(t, err)

	var m moves
	require.NoError(t, s.Play(context.Background(), &m))
	assert.Equal(t, moves{{0, 10, 0}, {0, 10, 0}, {1, 0, -5}}, m)
}

func TestPlayCancelled(t *testing.T) {
	s, err := ParseScenario([]byte("steps:\n  - dx: 1\n    repeat: 100\n    delay: 1h\n"), "yaml")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	var m moves
	assert.ErrorIs(t, s.Play(ctx, &m), context.Canceled)
	assert.Len(t, m, 1)
}
