package port

import (
	"sync/atomic"

	"github.com/ardnew/nibblemouse/port/hal"
)

// FrameLen is the number of nibbles in one wire frame.
const FrameLen = 7

// Fixed frame elements.
const (
	FrameID  uint8 = 0xA // Element 0
	FramePad uint8 = 0xF // Elements 1 and 2
)

// Delta range representable by a nibble pair.
const (
	MaxDelta = 127
	MinDelta = -127
)

// Frame is one motion update on the wire:
// [ID, pad, pad, X-high, X-low, Y-high, Y-low].
type Frame [FrameLen]uint8

// Clamp saturates v to [MinDelta, MaxDelta].
func Clamp(v int32) int8 {
	switch {
	case v > MaxDelta:
		return MaxDelta
	case v < MinDelta:
		return MinDelta
	default:
		return int8(v)
	}
}

// Build encodes a clamped delta pair as a frame. X and Y are split into the
// high and low nibbles of their 8-bit two's-complement form.
func Build(x, y int8) Frame {
	ux, uy := uint8(x), uint8(y)
	return Frame{
		FrameID,
		FramePad,
		FramePad,
		ux >> 4, ux & 0x0F,
		uy >> 4, uy & 0x0F,
	}
}

// X reassembles the X delta from elements 3 and 4.
func (f Frame) X() int8 {
	return int8(f[3]<<4 | f[4]&0x0F)
}

// Y reassembles the Y delta from elements 5 and 6.
func (f Frame) Y() int8 {
	return int8(f[5]<<4 | f[6]&0x0F)
}

// String returns the frame as seven hex digits.
func (f Frame) String() string {
	const hexdigits = "0123456789ABCDEF"
	var b [FrameLen]byte
	for i, n := range f {
		b[i] = hexdigits[n&0x0F]
	}
	return string(b[:])
}

// Cell state word layout.
const (
	cellActive    = 1 << 0
	cellSlot      = 1 << 1
	cellGenShift  = 2
	cellSlotShift = 1
)

// FrameCell is the published-frame cell shared by one writer (the foreground
// loop) and one reader (the strobe handler).
//
// Frames are double-buffered. The state word holds the active flag, the
// readable slot and a publish generation the reader uses to restart its
// cursor.
type FrameCell struct {
	slots [2]Frame
	state atomic.Uint32
	lines *LineSet
	guard hal.Guard
}

// NewFrameCell creates an inactive cell staging frames on lines.
func NewFrameCell(lines *LineSet, guard hal.Guard) *FrameCell {
	return &FrameCell{lines: lines, guard: guard}
}

// Publish makes f the active frame. The first element is on the data lines
// before the strobe handler can observe the new frame. Only one goroutine may
// publish.
func (c *FrameCell) Publish(f Frame) {
	st := c.state.Load()
	slot := (st>>cellSlotShift ^ 1) & 1
	gen := st>>cellGenShift + 1

	s := c.guard.Disable()
	c.slots[slot] = f
	c.lines.SetNibble(f[0])
	c.state.Store(gen<<cellGenShift | slot<<cellSlotShift | cellActive)
	c.guard.Restore(s)
}

// Deactivate marks the cell inactive and releases every line.
func (c *FrameCell) Deactivate() {
	s := c.guard.Disable()
	c.state.Store(c.state.Load() &^ cellActive)
	c.lines.ReleaseAll()
	c.guard.Restore(s)
}

// Active reports whether a frame is being transmitted.
func (c *FrameCell) Active() bool {
	return c.state.Load()&cellActive != 0
}

// Current returns the active frame. It must be called from the publishing
// goroutine.
func (c *FrameCell) Current() (Frame, bool) {
	st := c.state.Load()
	if st&cellActive == 0 {
		return Frame{}, false
	}
	return c.slots[st&cellSlot>>cellSlotShift], true
}
