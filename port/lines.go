package port

import (
	"fmt"

	"github.com/ardnew/nibblemouse/pkg"
	"github.com/ardnew/nibblemouse/port/hal"
)

// Line counts on the legacy port.
const (
	DataLines  = 4 // Nibble bits, bit0 on line 0
	MaxButtons = 2 // Optional button lines
)

// LineSet groups the data and button lines of the legacy port.
//
// The data line order is fixed: bit i of a nibble is carried on data line i.
type LineSet struct {
	data     [DataLines]hal.Line
	buttons  [MaxButtons]hal.Line
	nbuttons int
}

// NewLineSet creates a line set from four data lines and up to two button
// lines. All lines are released before it returns.
func NewLineSet(data [DataLines]hal.Line, buttons ...hal.Line) (*LineSet, error) {
	if len(buttons) > MaxButtons {
		return nil, fmt.Errorf("%d button lines: %w", len(buttons), pkg.ErrInvalidParameter)
	}
	ls := &LineSet{data: data, nbuttons: len(buttons)}
	for i, l := range data {
		if l == nil {
			return nil, fmt.Errorf("data line %d is nil: %w", i, pkg.ErrInvalidParameter)
		}
	}
	for i, l := range buttons {
		if l == nil {
			return nil, fmt.Errorf("button line %d is nil: %w", i, pkg.ErrInvalidParameter)
		}
		ls.buttons[i] = l
	}
	ls.ReleaseAll()
	return ls, nil
}

// Buttons returns the number of button lines.
func (ls *LineSet) Buttons() int {
	return ls.nbuttons
}

// SetNibble puts the low four bits of n on the data lines.
// A 0 bit drives its line low; a 1 bit releases it.
func (ls *LineSet) SetNibble(n uint8) {
	for i := 0; i < DataLines; i++ {
		if n&(1<<i) == 0 {
			ls.data[i].DriveLow()
		} else {
			ls.data[i].Release()
		}
	}
}

// ReleaseData releases the four data lines.
func (ls *LineSet) ReleaseData() {
	for i := 0; i < DataLines; i++ {
		ls.data[i].Release()
	}
}

// ReleaseAll releases every managed line, buttons included.
func (ls *LineSet) ReleaseAll() {
	ls.ReleaseData()
	for i := 0; i < ls.nbuttons; i++ {
		ls.buttons[i].Release()
	}
}

// SetButtons applies a button bitmask to the button lines. Buttons are active
// low: a set bit drives its line low. Bits beyond the configured button
// count are ignored.
func (ls *LineSet) SetButtons(mask uint8) {
	for i := 0; i < ls.nbuttons; i++ {
		if mask&(1<<i) != 0 {
			ls.buttons[i].DriveLow()
		} else {
			ls.buttons[i].Release()
		}
	}
}
