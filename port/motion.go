package port

import (
	"math"
	"sync/atomic"
)

// Accumulator sums scaled motion deltas between drains.
//
// Accumulate may run on the USB report context while Drain runs on the
// foreground loop. Both sums live in one 64-bit word so a drain observes
// them together and never loses or double-counts a sample.
type Accumulator struct {
	scale float64
	sum   atomic.Uint64
	dirty atomic.Bool
	ready chan struct{}
}

// NewAccumulator creates an accumulator applying scale to every sample.
func NewAccumulator(scale float64) *Accumulator {
	return &Accumulator{
		scale: scale,
		ready: make(chan struct{}, 1),
	}
}

// Scale returns the per-sample multiplier.
func (a *Accumulator) Scale() float64 {
	return a.scale
}

// Accumulate adds one motion sample. Each delta is multiplied by the scale
// and rounded to the nearest integer, halves away from zero. Sums saturate
// at the int32 limits.
func (a *Accumulator) Accumulate(dx, dy int) {
	sx := int64(math.Round(float64(dx) * a.scale))
	sy := int64(math.Round(float64(dy) * a.scale))
	for {
		old := a.sum.Load()
		x, y := unpackSum(old)
		next := packSum(saturate(int64(x)+sx), saturate(int64(y)+sy))
		if a.sum.CompareAndSwap(old, next) {
			break
		}
	}
	a.dirty.Store(true)
	select {
	case a.ready <- struct{}{}:
	default:
	}
}

// Drain returns the sums accumulated since the previous drain and resets
// them to zero in one step.
func (a *Accumulator) Drain() (x, y int32) {
	a.dirty.Store(false)
	return unpackSum(a.sum.Swap(0))
}

// Reset discards any accumulated motion.
func (a *Accumulator) Reset() {
	a.dirty.Store(false)
	a.sum.Store(0)
	select {
	case <-a.ready:
	default:
	}
}

// Pending reports whether a sample arrived since the last drain.
func (a *Accumulator) Pending() bool {
	return a.dirty.Load()
}

// Ready returns a channel that receives after samples arrive. Several
// samples may collapse into one notification.
func (a *Accumulator) Ready() <-chan struct{} {
	return a.ready
}

func packSum(x, y int32) uint64 {
	return uint64(uint32(x))<<32 | uint64(uint32(y))
}

func unpackSum(v uint64) (x, y int32) {
	return int32(uint32(v >> 32)), int32(uint32(v))
}

func saturate(v int64) int32 {
	switch {
	case v > math.MaxInt32:
		return math.MaxInt32
	case v < math.MinInt32:
		return math.MinInt32
	default:
		return int32(v)
	}
}
