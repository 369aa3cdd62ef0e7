package timetable

import (
	"errors"
	"fmt"
)

// MaxSlots is the default bound on the flat slot list so malformed input
// cannot grow a grid without limit. Additional slots past the cap are dropped
// silently. Deployments can override the cap via BuildGridWithCap.
const MaxSlots = 100

// ErrNoSlotsDefined is returned when grid generation is attempted with no
// usable period definitions. It is a hard precondition failure: nothing can
// be built until at least one period exists.
var ErrNoSlotsDefined = errors.New("no slots defined")

// Period is a named time interval within a day. Start and End are kept as the
// raw strings the administrator entered; validation reports inverted or
// overlapping ranges instead of rejecting them at creation.
type Period struct {
	Name  string `json:"name"`
	Start string `json:"start"`
	End   string `json:"end"`
}

// DaySlot is a Period scoped to a specific day.
type DaySlot struct {
	Day   string `json:"day"`
	Name  string `json:"name"`
	Start string `json:"start"`
	End   string `json:"end"`
}

// SlotRow is a distinct (start,end) time range across the week. Rows are the
// display rows of the rendered timetable: one row per time range, one column
// per day.
type SlotRow struct {
	Name  string `json:"name"`
	Start string `json:"start"`
	End   string `json:"end"`
}

// Subject describes a teachable subject and its weekly quota. Name is the
// unique key.
type Subject struct {
	Name          string `json:"name"`
	HoursPerWeek  int    `json:"hoursPerWeek"`
	Teacher       string `json:"teacher,omitempty"`
	SingleTeacher bool   `json:"singleTeacher,omitempty"`
	NoClash       bool   `json:"noClash,omitempty"`
}

// Cell is one grid entry. Text holds a subject name or free-form content such
// as "Assembly"; Teacher is a structured field rather than a "(teacher)"
// suffix parsed out of the text. Fixed cells are locked against auto-fill and
// manual edits.
type Cell struct {
	Text    string `json:"text"`
	Teacher string `json:"teacher,omitempty"`
	Fixed   bool   `json:"fixed,omitempty"`
}

// Empty reports whether the cell holds no content.
func (c Cell) Empty() bool { return c.Text == "" }

// Display renders the legacy "Subject (Teacher)" text form used at the
// export boundary.
func (c Cell) Display() string {
	if c.Teacher == "" {
		return c.Text
	}
	return fmt.Sprintf("%s (%s)", c.Text, c.Teacher)
}

// SlotKey addresses one grid cell: a day column and a time-range row.
type SlotKey struct {
	Day string `json:"day"`
	Row int    `json:"row"`
}

// Grid is one class's day-by-period cell matrix. The traversal order is an
// explicit, stored property fixed at build time so the auto-fill engine and
// the clash detector agree on it.
type Grid struct {
	days  []string
	slots []DaySlot
	rows  []SlotRow
	cells map[SlotKey]Cell
	order []SlotKey
}

// BuildGrid derives the deduplicated ordered slot list from per-day period
// definitions and materialises an empty grid. Days iterate in caller order,
// periods in given order; duplicates by (day,start,end) are dropped with the
// first occurrence's name winning; the slot list is silently capped at
// MaxSlots. An empty result fails with ErrNoSlotsDefined.
func BuildGrid(days []string, periodsByDay map[string][]Period) (*Grid, error) {
	return BuildGridWithCap(days, periodsByDay, MaxSlots)
}

// BuildGridWithCap is BuildGrid with an explicit slot cap. A cap of zero or
// less falls back to MaxSlots.
func BuildGridWithCap(days []string, periodsByDay map[string][]Period, slotCap int) (*Grid, error) {
	if slotCap <= 0 {
		slotCap = MaxSlots
	}

	g := &Grid{
		days:  append([]string(nil), days...),
		cells: make(map[SlotKey]Cell),
	}

	seen := make(map[string]bool)
	rowIndex := make(map[string]int)
	hasCell := make(map[SlotKey]bool)

	for _, day := range days {
		for _, period := range periodsByDay[day] {
			if len(g.slots) >= slotCap {
				break
			}
			key := day + "|" + timeKey(period.Start, period.End)
			if seen[key] {
				continue
			}
			seen[key] = true
			g.slots = append(g.slots, DaySlot{Day: day, Name: period.Name, Start: period.Start, End: period.End})

			tk := timeKey(period.Start, period.End)
			row, ok := rowIndex[tk]
			if !ok {
				row = len(g.rows)
				rowIndex[tk] = row
				g.rows = append(g.rows, SlotRow{Name: period.Name, Start: period.Start, End: period.End})
			}
			hasCell[SlotKey{Day: day, Row: row}] = true
		}
	}

	if len(g.slots) == 0 {
		return nil, ErrNoSlotsDefined
	}

	// Row-major traversal, days inner, matching construction order.
	for row := range g.rows {
		for _, day := range g.days {
			key := SlotKey{Day: day, Row: row}
			if !hasCell[key] {
				continue
			}
			g.cells[key] = Cell{}
			g.order = append(g.order, key)
		}
	}
	return g, nil
}

// Days returns the day columns in caller order.
func (g *Grid) Days() []string { return g.days }

// Slots returns the flat deduplicated slot list in construction order.
func (g *Grid) Slots() []DaySlot { return g.slots }

// Rows returns the distinct time-range rows in first-appearance order.
func (g *Grid) Rows() []SlotRow { return g.rows }

// Order returns the stored (row, day) traversal order.
func (g *Grid) Order() []SlotKey { return append([]SlotKey(nil), g.order...) }

// CellAt returns the cell for a day and row. The boolean is false when the
// day does not define that time range.
func (g *Grid) CellAt(day string, row int) (Cell, bool) {
	cell, ok := g.cells[SlotKey{Day: day, Row: row}]
	return cell, ok
}

// SetCell writes cell content. Writes to fixed cells or to cells outside the
// grid are rejected.
func (g *Grid) SetCell(day string, row int, cell Cell) error {
	key := SlotKey{Day: day, Row: row}
	current, ok := g.cells[key]
	if !ok {
		return fmt.Errorf("no slot at %s row %d", day, row)
	}
	if current.Fixed {
		return fmt.Errorf("cell at %s row %d is fixed", day, row)
	}
	g.cells[key] = cell
	return nil
}

// ClearSubject removes every non-fixed cell holding the named subject. Used
// when a subject is deleted so its placements cascade out of saved grids.
func (g *Grid) ClearSubject(name string) int {
	removed := 0
	for key, cell := range g.cells {
		if cell.Fixed || cell.Text != name {
			continue
		}
		g.cells[key] = Cell{}
		removed++
	}
	return removed
}

// rowFor returns the row index matching a (start,end) pair, or -1.
func (g *Grid) rowFor(start, end string) int {
	tk := timeKey(start, end)
	for i, row := range g.rows {
		if timeKey(row.Start, row.End) == tk {
			return i
		}
	}
	return -1
}

// CellEntry is one cell in serialisable form.
type CellEntry struct {
	Day  string `json:"day"`
	Row  int    `json:"row"`
	Cell Cell   `json:"cell"`
}

// Snapshot is the JSON-friendly representation of a Grid, complete enough to
// reconstruct an identical grid cell for cell.
type Snapshot struct {
	Days  []string    `json:"days"`
	Slots []DaySlot   `json:"slots"`
	Rows  []SlotRow   `json:"rows"`
	Cells []CellEntry `json:"cells"`
}

// Snapshot exports the grid in stored traversal order.
func (g *Grid) Snapshot() Snapshot {
	snap := Snapshot{
		Days:  append([]string(nil), g.days...),
		Slots: append([]DaySlot(nil), g.slots...),
		Rows:  append([]SlotRow(nil), g.rows...),
	}
	for _, key := range g.order {
		snap.Cells = append(snap.Cells, CellEntry{Day: key.Day, Row: key.Row, Cell: g.cells[key]})
	}
	return snap
}

// FromSnapshot rebuilds a Grid from its serialised form.
func FromSnapshot(snap Snapshot) *Grid {
	g := &Grid{
		days:  append([]string(nil), snap.Days...),
		slots: append([]DaySlot(nil), snap.Slots...),
		rows:  append([]SlotRow(nil), snap.Rows...),
		cells: make(map[SlotKey]Cell, len(snap.Cells)),
	}
	for _, entry := range snap.Cells {
		key := SlotKey{Day: entry.Day, Row: entry.Row}
		g.cells[key] = entry.Cell
		g.order = append(g.order, key)
	}
	return g
}
