package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ardnew/nibblemouse/port"
	"github.com/ardnew/nibblemouse/port/hal/sim"
)

func TestMonitorPrintsChanges(t *testing.T) {
	p := sim.NewFreeRunningPort(port.MaxButtons)
	var out bytes.Buffer
	m := newMonitor(p, &out, "")

	f := port.Build(10, -1)
	for round := 0; round < 3; round++ {
		for _, n := range f {
			m.sample(n)
		}
	}
	assert.Equal(t, uint64(3), m.Frames())
	assert.Equal(t, "frame AFF0AFF x=10 y=-1\n", out.String(), "repeats are not printed")

	out.Reset()
	p.Buttons[1].DriveLow()
	m.sample(0xF)
	assert.Equal(t, "buttons 10\n", out.String())
}
