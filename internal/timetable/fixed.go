package timetable

// FixedEvent is a slot-content override applied identically across all days,
// such as "Assembly" or "Break" in every 10:00-10:30 slot.
type FixedEvent struct {
	Name    string `json:"name"`
	Start   string `json:"start"`
	End     string `json:"end"`
	AllDays bool   `json:"allDays"`
}

// FixedAssignment is a non-negotiable cell value for one class, day and time
// range. It needs no pre-existing slot with the same name, only an identical
// (day,start,end).
type FixedAssignment struct {
	ClassID string `json:"classId"`
	Day     string `json:"day"`
	Start   string `json:"start"`
	End     string `json:"end"`
	Subject string `json:"subject"`
	Teacher string `json:"teacher,omitempty"`
}

// ApplyFixedEvents writes all-days events into every matching cell and locks
// them. The first row with matching times wins; the pass is idempotent and
// never duplicates across matches.
func (g *Grid) ApplyFixedEvents(events []FixedEvent) {
	for _, event := range events {
		if !event.AllDays {
			continue
		}
		row := g.rowFor(event.Start, event.End)
		if row < 0 {
			continue
		}
		for _, day := range g.days {
			key := SlotKey{Day: day, Row: row}
			if _, ok := g.cells[key]; !ok {
				continue
			}
			g.cells[key] = Cell{Text: event.Name, Fixed: true}
		}
	}
}

// ApplyFixedAssignments writes the assignments scoped to classID into their
// (day,start,end) cells and locks them. Assignments for other classes or for
// time ranges the grid does not define are skipped.
func (g *Grid) ApplyFixedAssignments(classID string, assignments []FixedAssignment) {
	for _, assignment := range assignments {
		if assignment.ClassID != classID {
			continue
		}
		row := g.rowFor(assignment.Start, assignment.End)
		if row < 0 {
			continue
		}
		key := SlotKey{Day: assignment.Day, Row: row}
		if _, ok := g.cells[key]; !ok {
			continue
		}
		g.cells[key] = Cell{Text: assignment.Subject, Teacher: assignment.Teacher, Fixed: true}
	}
}
