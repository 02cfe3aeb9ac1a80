package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	toml "github.com/pelletier/go-toml"
	yaml "gopkg.in/yaml.v3"

	"github.com/ardnew/nibblemouse/pkg"
)

// defaultStepDelay separates reports of a step without a delay.
const defaultStepDelay = 10 * time.Millisecond

// Mover queues a boot mouse report.
type Mover interface {
	Move(buttons uint8, dx, dy int8) bool
}

// Step is one scenario entry: a report sent Repeat times, Delay apart.
type Step struct {
	Buttons uint8  `yaml:"buttons" toml:"buttons"`
	DX      int8   `yaml:"dx" toml:"dx"`
	DY      int8   `yaml:"dy" toml:"dy"`
	Repeat  int    `yaml:"repeat" toml:"repeat"`
	Delay   string `yaml:"delay" toml:"delay"`

	delay time.Duration
}

// Scenario is a scripted sequence of mouse reports.
type Scenario struct {
	Name  string `yaml:"name" toml:"name"`
	Steps []Step `yaml:"steps" toml:"steps"`
}

// LoadScenario reads a YAML (.yaml, .yml) or TOML (.toml) scenario file.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario: %w", err)
	}
	var format string
	switch filepath.Ext(path) {
	case ".yaml", ".yml":
		format = "yaml"
	case ".toml":
		format = "toml"
	default:
		return nil, fmt.Errorf("scenario %s: unknown extension: %w", path, pkg.ErrNotSupported)
	}
	s, err := ParseScenario(data, format)
	if err != nil {
		return nil, fmt.Errorf("scenario %s: %w", path, err)
	}
	return s, nil
}

// ParseScenario decodes a scenario in the given format ("yaml" or "toml")
// and validates it.
func ParseScenario(data []byte, format string) (*Scenario, error) {
	var s Scenario
	var err error
	switch format {
	case "yaml":
		err = yaml.Unmarshal(data, &s)
	case "toml":
		err = toml.Unmarshal(data, &s)
	default:
		return nil, fmt.Errorf("scenario format %q: %w", format, pkg.ErrNotSupported)
	}
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", format, err)
	}
	if err := s.validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

func (s *Scenario) validate() error {
	if len(s.Steps) == 0 {
		return fmt.Errorf("no steps: %w", pkg.ErrInvalidParameter)
	}
	for i := range s.Steps {
		st := &s.Steps[i]
		if st.Repeat < 0 {
			return fmt.Errorf("step %d: repeat %d: %w", i, st.Repeat, pkg.ErrInvalidParameter)
		}
		if st.Repeat == 0 {
			st.Repeat = 1
		}
		st.delay = defaultStepDelay
		if st.Delay != "" {
			d, err := time.ParseDuration(st.Delay)
			if err != nil || d < 0 {
				return fmt.Errorf("step %d: delay %q: %w", i, st.Delay, pkg.ErrInvalidParameter)
			}
			st.delay = d
		}
	}
	return nil
}

// Reports returns the total number of reports the scenario sends.
func (s *Scenario) Reports() int {
	n := 0
	for _, st := range s.Steps {
		n += st.Repeat
	}
	return n
}

// Play sends every report to m, waiting each step's delay after each one.
func (s *Scenario) Play(ctx context.Context, m Mover) error {
	pkg.LogInfo(pkg.ComponentSim, "playing scenario", "name", s.Name, "steps", len(s.Steps), "reports", s.Reports())
	for i, st := range s.Steps {
		for n := 0; n < st.Repeat; n++ {
			if !m.Move(st.Buttons, st.DX, st.DY) {
				pkg.LogWarn(pkg.ComponentSim, "report dropped", "step", i)
			}
			if err := wait(ctx, st.delay); err != nil {
				return err
			}
		}
	}
	return nil
}

func wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
