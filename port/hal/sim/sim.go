package sim

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ardnew/nibblemouse/port/hal"
)

// Op is a recorded line operation.
type Op uint8

// Line operations.
const (
	OpDriveLow Op = iota
	OpRelease
)

// String returns a human-readable operation name.
func (o Op) String() string {
	switch o {
	case OpDriveLow:
		return "low"
	case OpRelease:
		return "release"
	default:
		return "unknown"
	}
}

// Call is one recorded operation on a named line.
type Call struct {
	Line string
	Op   Op
}

// Recorder collects line operations in call order.
type Recorder struct {
	mu    sync.Mutex
	calls []Call
}

func (r *Recorder) add(line string, op Op) {
	r.mu.Lock()
	r.calls = append(r.calls, Call{Line: line, Op: op})
	r.mu.Unlock()
}

// Calls returns a copy of the recorded operations.
func (r *Recorder) Calls() []Call {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Call, len(r.calls))
	copy(out, r.calls)
	return out
}

// Len returns the number of recorded operations.
func (r *Recorder) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.calls)
}

// Reset discards the recorded operations.
func (r *Recorder) Reset() {
	r.mu.Lock()
	r.calls = r.calls[:0]
	r.mu.Unlock()
}

// Line is a simulated open-drain line with an external pull-up.
// Lines start released (high).
type Line struct {
	name string
	rec  *Recorder
	low  atomic.Bool
}

// NewLine creates a line that reports its operations to rec, which may be nil.
func NewLine(name string, rec *Recorder) *Line {
	return &Line{name: name, rec: rec}
}

// Name returns the line name.
func (l *Line) Name() string {
	return l.name
}

// DriveLow implements hal.Line.
func (l *Line) DriveLow() {
	l.low.Store(true)
	if l.rec != nil {
		l.rec.add(l.name, OpDriveLow)
	}
}

// Release implements hal.Line.
func (l *Line) Release() {
	l.low.Store(false)
	if l.rec != nil {
		l.rec.add(l.name, OpRelease)
	}
}

// High reports the wire level: true when released.
func (l *Line) High() bool {
	return !l.low.Load()
}

// Guard models interrupt masking with a mutex shared with Strobe delivery.
type Guard struct {
	mu       sync.Mutex
	sections atomic.Uint64
}

// Disable implements hal.Guard.
func (g *Guard) Disable() uintptr {
	g.mu.Lock()
	g.sections.Add(1)
	return 0
}

// Restore implements hal.Guard.
func (g *Guard) Restore(uintptr) {
	g.mu.Unlock()
}

// Sections returns how many critical sections have been entered.
func (g *Guard) Sections() uint64 {
	return g.sections.Load()
}

// Strobe is a simulated clock input. Edges are delivered while holding the
// guard, so a handler never runs inside a guarded section.
type Strobe struct {
	guard   *Guard
	handler hal.EdgeHandler
	high    bool
	edges   atomic.Uint64
}

// NewStrobe creates a strobe line idling high.
func NewStrobe(guard *Guard) *Strobe {
	return &Strobe{guard: guard, high: true}
}

// SetHandler implements hal.Strobe.
func (s *Strobe) SetHandler(h hal.EdgeHandler) error {
	s.guard.mu.Lock()
	s.handler = h
	s.guard.mu.Unlock()
	return nil
}

// Toggle flips the strobe level and delivers the resulting edge.
func (s *Strobe) Toggle() hal.Edge {
	s.guard.mu.Lock()
	defer s.guard.mu.Unlock()
	s.high = !s.high
	e := hal.EdgeFalling
	if s.high {
		e = hal.EdgeRising
	}
	s.edges.Add(1)
	if s.handler != nil {
		s.handler(e)
	}
	return e
}

// Edges returns the number of delivered edges.
func (s *Strobe) Edges() uint64 {
	return s.edges.Load()
}

// Port is a complete simulated legacy mouse port.
type Port struct {
	Data     [4]*Line
	Buttons  []*Line
	Recorder *Recorder
	Guard    *Guard
	Strobe   *Strobe
}

// NewPort creates a port with four data lines and the given number of
// button lines, all sharing one recorder.
func NewPort(buttons int) *Port {
	return newPort(buttons, &Recorder{})
}

// NewFreeRunningPort creates a port whose lines record nothing, for long
// running simulations. Its Recorder is nil.
func NewFreeRunningPort(buttons int) *Port {
	return newPort(buttons, nil)
}

func newPort(buttons int, rec *Recorder) *Port {
	p := &Port{
		Recorder: rec,
		Guard:    &Guard{},
	}
	p.Strobe = NewStrobe(p.Guard)
	for i := range p.Data {
		p.Data[i] = NewLine(fmt.Sprintf("d%d", i), rec)
	}
	for i := 0; i < buttons; i++ {
		p.Buttons = append(p.Buttons, NewLine(fmt.Sprintf("b%d", i), rec))
	}
	return p
}

// DataLines returns the data lines as hal.Line values, bit0 first.
func (p *Port) DataLines() [4]hal.Line {
	var out [4]hal.Line
	for i, l := range p.Data {
		out[i] = l
	}
	return out
}

// ButtonLines returns the button lines as hal.Line values.
func (p *Port) ButtonLines() []hal.Line {
	out := make([]hal.Line, len(p.Buttons))
	for i, l := range p.Buttons {
		out[i] = l
	}
	return out
}

// Nibble samples the data lines the way the legacy host reads them.
func (p *Port) Nibble() uint8 {
	var n uint8
	for i, l := range p.Data {
		if l.High() {
			n |= 1 << i
		}
	}
	return n
}

// Pressed samples the active-low button lines as a bitmask.
func (p *Port) Pressed() uint8 {
	var m uint8
	for i, l := range p.Buttons {
		if !l.High() {
			m |= 1 << i
		}
	}
	return m
}

// Clock delivers n strobe edges and returns the nibble sampled after each.
func (p *Port) Clock(n int) []uint8 {
	out := make([]uint8, n)
	for i := range out {
		p.Strobe.Toggle()
		out[i] = p.Nibble()
	}
	return out
}

// Run toggles the strobe every half period until ctx is done, passing each
// sampled nibble to sample. sample runs outside the guard.
func (p *Port) Run(ctx context.Context, halfPeriod time.Duration, sample func(uint8)) error {
	t := time.NewTicker(halfPeriod)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
			p.Strobe.Toggle()
			if sample != nil {
				sample(p.Nibble())
			}
		}
	}
}
