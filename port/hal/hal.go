package hal

// Edge identifies which transition of the strobe line triggered a handler.
type Edge uint8

// Strobe edge constants.
const (
	EdgeFalling Edge = iota // High to low
	EdgeRising              // Low to high
)

// String returns a human-readable edge name.
func (e Edge) String() string {
	switch e {
	case EdgeFalling:
		return "falling"
	case EdgeRising:
		return "rising"
	default:
		return "unknown"
	}
}

// Line is one open-drain style signal wire on the legacy port.
//
// Implementations are called from the strobe handler and must not allocate,
// block or log.
type Line interface {
	// DriveLow switches the line to output and asserts logic low (wire bit 0).
	DriveLow()

	// Release switches the line to input with no internal pull, letting the
	// external pull-up take it high (wire bit 1).
	Release()
}

// EdgeHandler is invoked once per strobe transition.
type EdgeHandler func(Edge)

// Strobe is the clock input driven by the legacy host.
type Strobe interface {
	// SetHandler installs the handler called on both edges. A nil handler
	// disables edge delivery.
	SetHandler(h EdgeHandler) error
}

// Guard defers strobe delivery for a short critical section.
//
// Disable returns an opaque state that must be passed to the matching
// Restore. Sections must be a handful of instructions long; a strobe edge
// arriving while disabled is delivered after Restore.
type Guard interface {
	Disable() uintptr
	Restore(state uintptr)
}
