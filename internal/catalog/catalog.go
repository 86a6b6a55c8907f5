// Package catalog holds the static table of shift labels and their
// pairwise overlap relation.  The relation is explicitly tabulated
// rather than derived from clock arithmetic: real shift boundaries are
// irregular, and two shifts that merely touch at a boundary (one ends
// at 2 PM, the next starts at 2 PM) do not overlap.  The catalog is
// built once at startup and is immutable afterwards.
package catalog

import (
	"encoding/json"
	"fmt"
	"os"
)

// Catalog is an immutable shift table.  Overlap lookups are symmetric
// and every shift overlaps itself; both properties are enforced by the
// constructor regardless of how the input pairs were written.
type Catalog struct {
	shifts  []string
	index   map[string]int
	overlap [][]bool
}

// New builds a catalog from an ordered list of shift labels and a list
// of overlapping pairs.  Self-overlap and the symmetric closure are
// applied automatically, so callers only need to list each pair once.
// Duplicate labels and pairs referencing unknown labels are rejected.
func New(shifts []string, pairs [][2]string) (*Catalog, error) {
	if len(shifts) == 0 {
		return nil, fmt.Errorf("catalog: no shifts defined")
	}
	idx := make(map[string]int, len(shifts))
	for i, s := range shifts {
		if s == "" {
			return nil, fmt.Errorf("catalog: empty shift label at position %d", i)
		}
		if _, dup := idx[s]; dup {
			return nil, fmt.Errorf("catalog: duplicate shift label %q", s)
		}
		idx[s] = i
	}
	ov := make([][]bool, len(shifts))
	for i := range ov {
		ov[i] = make([]bool, len(shifts))
		ov[i][i] = true // a shift always overlaps itself
	}
	for _, p := range pairs {
		a, ok := idx[p[0]]
		if !ok {
			return nil, fmt.Errorf("catalog: overlap pair references unknown shift %q", p[0])
		}
		b, ok := idx[p[1]]
		if !ok {
			return nil, fmt.Errorf("catalog: overlap pair references unknown shift %q", p[1])
		}
		ov[a][b] = true
		ov[b][a] = true
	}
	cp := make([]string, len(shifts))
	copy(cp, shifts)
	return &Catalog{shifts: cp, index: idx, overlap: ov}, nil
}

// Has reports whether the label is part of the catalog.
func (c *Catalog) Has(shift string) bool {
	_, ok := c.index[shift]
	return ok
}

// Overlaps reports whether the time windows of two shifts intersect.
// Unknown labels never overlap anything.
func (c *Catalog) Overlaps(a, b string) bool {
	i, ok := c.index[a]
	if !ok {
		return false
	}
	j, ok := c.index[b]
	if !ok {
		return false
	}
	return c.overlap[i][j]
}

// Overlapping returns all shifts whose windows intersect the given
// shift, including the shift itself.  The result follows catalog order
// and is a fresh slice on every call.
func (c *Catalog) Overlapping(shift string) []string {
	i, ok := c.index[shift]
	if !ok {
		return nil
	}
	out := make([]string, 0, len(c.shifts))
	for j, hit := range c.overlap[i] {
		if hit {
			out = append(out, c.shifts[j])
		}
	}
	return out
}

// Shifts returns the shift labels in catalog order.
func (c *Catalog) Shifts() []string {
	out := make([]string, len(c.shifts))
	copy(out, c.shifts)
	return out
}

// fileFormat mirrors the JSON layout of an external catalog file:
//
//  {
//    "shifts": ["6:30 AM to 2 PM", ...],
//    "overlaps": [["6:30 AM to 2 PM", "6:30 AM to 6:30 PM"], ...]
//  }
type fileFormat struct {
	Shifts   []string    `json:"shifts"`
	Overlaps [][2]string `json:"overlaps"`
}

// LoadFile reads a catalog from a JSON file.  It is intended to be
// called once at startup; the resulting catalog is immutable.
func LoadFile(path string) (*Catalog, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("catalog: read %s: %w", path, err)
	}
	var f fileFormat
	if err := json.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("catalog: parse %s: %w", path, err)
	}
	return New(f.Shifts, f.Overlaps)
}

// Reference deployment shift labels.  AllDay is the catch-all shift
// that overlaps every other shift.
const (
	ShiftMorning    = "6:30 AM to 2 PM"
	ShiftAfternoon  = "2 PM to 9:30 PM"
	ShiftFirstHalf  = "6:30 AM to 6:30 PM"
	ShiftSecondHalf = "2 PM to 11 PM"
	ShiftEvening    = "6:30 PM to 11 PM"
	ShiftFullDay    = "6:30 AM to 11 PM"
	ShiftAllDay     = "24x7"
)

// Default returns the built-in catalog of the reference deployment:
// seven shifts whose overlaps were tabulated by hand from the posted
// timetable.  Shifts that only meet at a boundary are not overlapping.
func Default() *Catalog {
	shifts := []string{
		ShiftMorning,
		ShiftAfternoon,
		ShiftFirstHalf,
		ShiftSecondHalf,
		ShiftEvening,
		ShiftFullDay,
		ShiftAllDay,
	}
	pairs := [][2]string{
		{ShiftMorning, ShiftFirstHalf},
		{ShiftMorning, ShiftFullDay},
		{ShiftAfternoon, ShiftFirstHalf},
		{ShiftAfternoon, ShiftSecondHalf},
		{ShiftAfternoon, ShiftEvening},
		{ShiftAfternoon, ShiftFullDay},
		{ShiftFirstHalf, ShiftSecondHalf},
		{ShiftFirstHalf, ShiftFullDay},
		{ShiftSecondHalf, ShiftEvening},
		{ShiftSecondHalf, ShiftFullDay},
		{ShiftEvening, ShiftFullDay},
		{ShiftAllDay, ShiftMorning},
		{ShiftAllDay, ShiftAfternoon},
		{ShiftAllDay, ShiftFirstHalf},
		{ShiftAllDay, ShiftSecondHalf},
		{ShiftAllDay, ShiftEvening},
		{ShiftAllDay, ShiftFullDay},
	}
	c, err := New(shifts, pairs)
	if err != nil {
		// The built-in table is fixed at compile time; an error here is
		// a programming mistake, not a runtime condition.
		panic(err)
	}
	return c
}
