package bridge

import (
	"fmt"
	"math"

	"github.com/ardnew/nibblemouse/pkg"
	"github.com/ardnew/nibblemouse/port"
)

// ZeroMotion selects what the foreground loop does with a (0, 0) drain.
type ZeroMotion string

// Zero-motion policies.
const (
	// ZeroMotionHold publishes nothing; the previous frame keeps cycling.
	ZeroMotionHold ZeroMotion = "hold"
	// ZeroMotionSend publishes an explicit zero-delta frame.
	ZeroMotionSend ZeroMotion = "send"
)

// MaxScale bounds Config.Scale.
const MaxScale = 64

// Config holds the bridge tunables.
type Config struct {
	Scale      float64    `help:"Multiplier applied to every USB motion delta" default:"0.5" env:"NIBBLEMOUSE_SCALE"`
	ZeroMotion ZeroMotion `help:"Policy for drains with no motion: hold the last frame or send a zero frame" default:"hold" enum:"hold,send" env:"NIBBLEMOUSE_ZERO_MOTION"`
	Buttons    int        `help:"Number of button lines driven from report bits 0 and 1" default:"2" env:"NIBBLEMOUSE_BUTTONS"`
}

// DefaultConfig returns the configuration used when nothing is set.
func DefaultConfig() Config {
	return Config{
		Scale:      0.5,
		ZeroMotion: ZeroMotionHold,
		Buttons:    port.MaxButtons,
	}
}

// Validate checks every field.
func (c Config) Validate() error {
	if math.IsNaN(c.Scale) || c.Scale <= 0 || c.Scale > MaxScale {
		return fmt.Errorf("scale %v out of range (0, %d]: %w", c.Scale, MaxScale, pkg.ErrInvalidParameter)
	}
	switch c.ZeroMotion {
	case ZeroMotionHold, ZeroMotionSend:
	default:
		return fmt.Errorf("zero motion policy %q: %w", c.ZeroMotion, pkg.ErrInvalidParameter)
	}
	if c.Buttons < 0 || c.Buttons > port.MaxButtons {
		return fmt.Errorf("%d buttons out of range [0, %d]: %w", c.Buttons, port.MaxButtons, pkg.ErrInvalidParameter)
	}
	return nil
}
