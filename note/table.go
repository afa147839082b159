package note

import (
	"math"
	"sort"
)

// Table is an ordered-by-frequency note sequence for one tuning reference
// Immutable after Build, safe for concurrent readers
type Table struct {
	reference float64
	rng       Range
	entries   []Entry
	byName    map[string]int
}

// Build generates the table for reference over r
// Rejects references outside the tuning band instead of clamping
func Build(reference float64, r Range) (*Table, error) {
	if err := ValidateReference(reference); err != nil {
		return nil, err
	}
	if err := r.Validate(); err != nil {
		return nil, err
	}

	count := r.Octaves * 12
	t := &Table{
		reference: reference,
		rng:       r,
		entries:   make([]Entry, count),
		byName:    make(map[string]int, count),
	}
	for i := 0; i < count; i++ {
		midi := r.Low + i
		t.entries[i] = Entry{
			Name:      Name(midi),
			Frequency: Frequency(midi, reference),
			MIDI:      midi,
		}
		t.byName[t.entries[i].Name] = i
	}
	return t, nil
}

// Reference returns the A4 frequency the table was built for
func (t *Table) Reference() float64 { return t.reference }

// Range returns the span the table was built over
func (t *Table) Range() Range { return t.rng }

// Len returns the number of entries
func (t *Table) Len() int { return len(t.entries) }

// At returns the entry at index i
func (t *Table) At(i int) Entry { return t.entries[i] }

// Entries returns a copy of the ordered entries
func (t *Table) Entries() []Entry {
	out := make([]Entry, len(t.entries))
	copy(out, t.entries)
	return out
}

// IndexOf returns the position of e in the table or -1
// Matches on name and frequency so an entry from another tuning is not found
func (t *Table) IndexOf(e Entry) int {
	i, ok := t.byName[e.Name]
	if !ok || t.entries[i].Frequency != e.Frequency {
		return -1
	}
	return i
}

// Lookup finds an entry by note name
func (t *Table) Lookup(name string) (Entry, bool) {
	i, ok := t.byName[name]
	if !ok {
		return Entry{}, false
	}
	return t.entries[i], true
}

// Closest resolves freq against this table
func (t *Table) Closest(freq float64) Entry {
	return Closest(freq, t.entries)
}

// Within returns the entries whose frequency lies in [lo, hi]
func (t *Table) Within(lo, hi float64) []Entry {
	start := sort.Search(len(t.entries), func(i int) bool { return t.entries[i].Frequency >= lo })
	end := start
	for end < len(t.entries) && t.entries[end].Frequency <= hi {
		end++
	}
	out := make([]Entry, end-start)
	copy(out, t.entries[start:end])
	return out
}

// Closest returns the entry of a frequency-sorted slice nearest to freq
// Binary search for the neighbors, then absolute distance decides; the lower neighbor wins exact ties
// Panics on an empty slice
func Closest(freq float64, entries []Entry) Entry {
	if len(entries) == 0 {
		panic("note: Closest on empty table")
	}

	// low: last index with Frequency <= freq, -1 when freq is below the table
	low, high := -1, len(entries)
	for high-low > 1 {
		pivot := (low + high) / 2
		if entries[pivot].Frequency <= freq {
			low = pivot
		} else {
			high = pivot
		}
	}

	switch {
	case low < 0:
		return entries[0]
	case high >= len(entries):
		return entries[len(entries)-1]
	}

	if math.Abs(entries[high].Frequency-freq) < math.Abs(freq-entries[low].Frequency) {
		return entries[high]
	}
	return entries[low]
}
