//go:build tinygo

package tinygo

import (
	"machine"
	"runtime/interrupt"

	"github.com/ardnew/nibblemouse/port/hal"
)

// Line drives one GPIO as an open-drain output.
type Line machine.Pin

// DriveLow implements hal.Line. The output latch is cleared before the pin
// becomes an output so it never glitches high.
func (l Line) DriveLow() {
	p := machine.Pin(l)
	p.Low()
	p.Configure(machine.PinConfig{Mode: machine.PinOutput})
}

// Release implements hal.Line.
func (l Line) Release() {
	machine.Pin(l).Configure(machine.PinConfig{Mode: machine.PinInput})
}

// Strobe is the GPIO receiving the legacy host clock.
type Strobe machine.Pin

// SetHandler implements hal.Strobe. The pin interrupt fires on both edges;
// the edge direction is read back from the pin level.
func (s Strobe) SetHandler(h hal.EdgeHandler) error {
	p := machine.Pin(s)
	p.Configure(machine.PinConfig{Mode: machine.PinInput})
	if h == nil {
		return p.SetInterrupt(0, nil)
	}
	return p.SetInterrupt(machine.PinToggle, func(p machine.Pin) {
		if p.Get() {
			h(hal.EdgeRising)
		} else {
			h(hal.EdgeFalling)
		}
	})
}

// Guard masks all interrupts.
type Guard struct{}

// Disable implements hal.Guard.
func (Guard) Disable() uintptr {
	return uintptr(interrupt.Disable())
}

// Restore implements hal.Guard.
func (Guard) Restore(state uintptr) {
	interrupt.Restore(interrupt.State(state))
}

// Pins assigns GPIOs to the legacy port signals.
type Pins struct {
	Data    [4]machine.Pin
	Buttons []machine.Pin
	Strobe  machine.Pin
}

// DataLines returns the data pins as hal.Line values, bit0 first.
func (p Pins) DataLines() [4]hal.Line {
	var out [4]hal.Line
	for i, pin := range p.Data {
		out[i] = Line(pin)
	}
	return out
}

// ButtonLines returns the button pins as hal.Line values.
func (p Pins) ButtonLines() []hal.Line {
	out := make([]hal.Line, len(p.Buttons))
	for i, pin := range p.Buttons {
		out[i] = Line(pin)
	}
	return out
}
