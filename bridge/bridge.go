package bridge

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/ardnew/nibblemouse/host"
	"github.com/ardnew/nibblemouse/pkg"
	"github.com/ardnew/nibblemouse/port"
	"github.com/ardnew/nibblemouse/port/hal"
)

// ReportSize is the shortest accepted boot mouse report: buttons, dx, dy.
const ReportSize = 3

// State is the bridge state.
type State uint32

// Bridge states.
const (
	StateIdle      State = iota // No mouse mounted; lines released
	StateStreaming              // Mouse mounted; reports feed the accumulator
)

// String returns a human-readable state name.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateStreaming:
		return "streaming"
	default:
		return "unknown"
	}
}

// Stats counts bridge activity since creation.
type Stats struct {
	Accepted  uint64 // Reports accumulated
	Rejected  uint64 // Reports shorter than ReportSize
	Published uint64 // Frames published
	Held      uint64 // Zero drains that kept the previous frame
}

// Hardware is the legacy port wiring.
type Hardware struct {
	Data    [port.DataLines]hal.Line
	Buttons []hal.Line
	Strobe  hal.Strobe
	Guard   hal.Guard
}

// Bridge turns boot mouse reports into frames on the legacy port. It is the
// host.Driver for one mouse instance at a time.
type Bridge struct {
	cfg       Config
	requester host.ReportRequester
	strobe    hal.Strobe

	lines   *port.LineSet
	acc     *port.Accumulator
	cell    *port.FrameCell
	emitter *port.Emitter

	// pubMu serialises frame cell writers and instance binding.
	pubMu   sync.Mutex
	state   atomic.Uint32
	inst    host.Instance
	mounted bool

	buttons atomic.Uint32
	running atomic.Bool

	accepted  atomic.Uint64
	rejected  atomic.Uint64
	published atomic.Uint64
	held      atomic.Uint64
}

// New wires a bridge to hw and installs the strobe handler. Button lines
// beyond cfg.Buttons are left alone. requester arms report transfers.
func New(cfg Config, hw Hardware, requester host.ReportRequester) (*Bridge, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if requester == nil {
		return nil, fmt.Errorf("nil report requester: %w", pkg.ErrInvalidParameter)
	}
	if hw.Strobe == nil || hw.Guard == nil {
		return nil, fmt.Errorf("strobe and guard are required: %w", pkg.ErrInvalidParameter)
	}

	buttons := hw.Buttons
	if len(buttons) > cfg.Buttons {
		buttons = buttons[:cfg.Buttons]
	}
	lines, err := port.NewLineSet(hw.Data, buttons...)
	if err != nil {
		return nil, fmt.Errorf("line set: %w", err)
	}

	b := &Bridge{
		cfg:       cfg,
		requester: requester,
		strobe:    hw.Strobe,
		lines:     lines,
		acc:       port.NewAccumulator(cfg.Scale),
	}
	b.cell = port.NewFrameCell(lines, hw.Guard)
	b.emitter = port.NewEmitter(b.cell, lines)

	if err := hw.Strobe.SetHandler(b.emitter.OnEdge); err != nil {
		return nil, fmt.Errorf("install strobe handler: %w", err)
	}

	pkg.LogDebug(pkg.ComponentBridge, "bridge created",
		"scale", cfg.Scale,
		"zeroMotion", string(cfg.ZeroMotion),
		"buttons", lines.Buttons())
	return b, nil
}

// Config returns the configuration the bridge was created with.
func (b *Bridge) Config() Config {
	return b.cfg
}

// State returns the current state.
func (b *Bridge) State() State {
	return State(b.state.Load())
}

// Transmitting reports whether a frame is being clocked out.
func (b *Bridge) Transmitting() bool {
	return b.cell.Active()
}

// Stats returns a snapshot of the activity counters.
func (b *Bridge) Stats() Stats {
	return Stats{
		Accepted:  b.accepted.Load(),
		Rejected:  b.rejected.Load(),
		Published: b.published.Load(),
		Held:      b.held.Load(),
	}
}

// Frame returns the frame being transmitted, if any.
func (b *Bridge) Frame() (port.Frame, bool) {
	b.pubMu.Lock()
	defer b.pubMu.Unlock()
	return b.cell.Current()
}

// Mount implements host.Driver. Only the first mounted instance is bound;
// others are ignored until it unmounts.
func (b *Bridge) Mount(inst host.Instance) {
	b.pubMu.Lock()
	if b.mounted {
		bound := b.inst
		b.pubMu.Unlock()
		pkg.LogWarn(pkg.ComponentBridge, "ignoring additional mouse",
			"instance", inst.String(),
			"bound", bound.String())
		return
	}
	b.mounted = true
	b.inst = inst
	b.buttons.Store(0)
	b.acc.Reset()
	b.state.Store(uint32(StateStreaming))
	b.pubMu.Unlock()

	pkg.LogInfo(pkg.ComponentBridge, "mouse mounted", "instance", inst.String())
	b.requester.RequestReport(inst)
}

// Unmount implements host.Driver. The bridge returns to Idle with every
// line released.
func (b *Bridge) Unmount(inst host.Instance) {
	b.pubMu.Lock()
	if !b.mounted || b.inst != inst {
		b.pubMu.Unlock()
		return
	}
	b.mounted = false
	b.state.Store(uint32(StateIdle))
	b.acc.Reset()
	b.buttons.Store(0)
	b.cell.Deactivate()
	b.pubMu.Unlock()

	pkg.LogInfo(pkg.ComponentBridge, "mouse unmounted", "instance", inst.String())
}

// Report implements host.Driver. Every report of the bound instance, valid
// or not, requests the next one.
func (b *Bridge) Report(inst host.Instance, data []byte) {
	if !b.bound(inst) {
		return
	}
	defer b.requester.RequestReport(inst)

	if len(data) < ReportSize {
		b.rejected.Add(1)
		pkg.LogDebug(pkg.ComponentBridge, "report rejected",
			"instance", inst.String(),
			"length", len(data),
			"error", pkg.ErrReportTooShort)
		return
	}

	b.buttons.Store(uint32(data[0]))
	b.acc.Accumulate(int(int8(data[1])), int(int8(data[2])))
	b.accepted.Add(1)
}

func (b *Bridge) bound(inst host.Instance) bool {
	b.pubMu.Lock()
	defer b.pubMu.Unlock()
	return b.mounted && b.inst == inst
}

// Step drains the accumulator once, updates the button lines and publishes
// a frame according to the zero-motion policy. It reports whether a frame
// was published. Nothing is published while Idle.
func (b *Bridge) Step() bool {
	x, y := b.acc.Drain()
	cx, cy := port.Clamp(x), port.Clamp(y)

	b.pubMu.Lock()
	defer b.pubMu.Unlock()
	if b.State() != StateStreaming {
		return false
	}

	b.lines.SetButtons(uint8(b.buttons.Load()))

	if cx == 0 && cy == 0 && b.cfg.ZeroMotion == ZeroMotionHold {
		b.held.Add(1)
		return false
	}

	f := port.Build(cx, cy)
	b.cell.Publish(f)
	b.published.Add(1)
	pkg.LogTrace(pkg.ComponentBridge, "frame published", "frame", f.String(), "x", cx, "y", cy)
	return true
}

// Run is the foreground loop: it waits for motion and calls Step until ctx
// is done.
func (b *Bridge) Run(ctx context.Context) error {
	if !b.running.CompareAndSwap(false, true) {
		return pkg.ErrAlreadyRunning
	}
	defer b.running.Store(false)

	pkg.LogDebug(pkg.ComponentBridge, "foreground loop started")
	for {
		select {
		case <-ctx.Done():
			pkg.LogDebug(pkg.ComponentBridge, "foreground loop stopped")
			return ctx.Err()
		case <-b.acc.Ready():
			b.Step()
		}
	}
}

// Close removes the strobe handler and releases every line.
func (b *Bridge) Close() error {
	err := b.strobe.SetHandler(nil)

	b.pubMu.Lock()
	b.mounted = false
	b.state.Store(uint32(StateIdle))
	b.acc.Reset()
	b.cell.Deactivate()
	b.pubMu.Unlock()

	if err != nil {
		return fmt.Errorf("remove strobe handler: %w", err)
	}
	return nil
}
