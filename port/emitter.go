package port

import "github.com/ardnew/nibblemouse/port/hal"

// Emitter outputs the active frame one nibble per strobe edge.
//
// OnEdge runs in the strobe context. It does not allocate, block or log, and
// the only state it writes is its own cursor.
type Emitter struct {
	cell   *FrameCell
	lines  *LineSet
	gen    uint32
	cursor uint8
}

// NewEmitter creates an emitter reading cell and driving lines.
func NewEmitter(cell *FrameCell, lines *LineSet) *Emitter {
	return &Emitter{cell: cell, lines: lines}
}

// OnEdge handles one strobe transition. Rising and falling edges are
// treated alike.
func (e *Emitter) OnEdge(hal.Edge) {
	st := e.cell.state.Load()
	if st&cellActive == 0 {
		e.lines.ReleaseData()
		return
	}
	if gen := st >> cellGenShift; gen != e.gen {
		e.gen = gen
		e.cursor = 0
	}
	f := &e.cell.slots[st&cellSlot>>cellSlotShift]
	e.lines.SetNibble(f[e.cursor])
	e.cursor++
	if e.cursor >= FrameLen {
		e.cursor = 0
	}
}

// Cursor returns the index of the next element to emit.
func (e *Emitter) Cursor() int {
	return int(e.cursor)
}
