// Package mapping converts resolved notes into vertical play field positions.
package mapping

import (
	"github.com/lixenwraith/pitch-fighter/note"
	"github.com/lixenwraith/pitch-fighter/vmath"
)

// Mapper projects note table indices onto the band [Margin, Height-Margin]
// Lower notes map toward the bottom (larger y)
type Mapper struct {
	Height float64
	Margin float64
}

// New creates a mapper, collapsing an oversized margin onto the midpoint
func New(height, margin float64) Mapper {
	if margin < 0 {
		margin = 0
	}
	if 2*margin > height {
		margin = height / 2
	}
	return Mapper{Height: height, Margin: margin}
}

// Midpoint is the neutral idle position
func (m Mapper) Midpoint() float64 {
	return m.Height / 2
}

// Band returns the playable vertical range
func (m Mapper) Band() (lo, hi float64) {
	return m.Margin, m.Height - m.Margin
}

// ForIndex returns the row position of index i in a table of n entries
func (m Mapper) ForIndex(i, n int) float64 {
	if n < 2 || i < 0 || i >= n {
		return m.Midpoint()
	}
	norm := float64(i) / float64(n-1)
	lo, hi := m.Band()
	y := lo + (1-norm)*(hi-lo)
	return vmath.Clamp(y, lo, hi)
}

// RowHeight is the vertical distance between adjacent note rows
func (m Mapper) RowHeight(n int) float64 {
	if n < 2 {
		return 0
	}
	lo, hi := m.Band()
	return (hi - lo) / float64(n-1)
}

// Target maps the last good note to a y coordinate
// Returns the midpoint when there is no note or it is not part of table
func (m Mapper) Target(table *note.Table, e note.Entry, ok bool) float64 {
	if !ok || table == nil {
		return m.Midpoint()
	}
	return m.ForIndex(table.IndexOf(e), table.Len())
}
