package timetable

// AutoFill distributes subjects into the remaining empty cells round-robin
// until every weekly-hour quota is met or the grid runs out of space.
// Pre-existing occurrences, fixed ones included, count against the quota;
// non-empty cells are never touched. Undersupply is accepted silently: when
// empty cells run out before quotas do, the shortfall is the caller's to
// report by comparing supply against demand.
func (g *Grid) AutoFill(subjects []Subject) {
	placed := make(map[string]int)
	for _, cell := range g.cells {
		if cell.Text != "" {
			placed[cell.Text]++
		}
	}

	type candidate struct {
		subject   Subject
		remaining int
	}
	var candidates []candidate
	for _, subject := range subjects {
		remaining := subject.HoursPerWeek - placed[subject.Name]
		if remaining > 0 {
			candidates = append(candidates, candidate{subject: subject, remaining: remaining})
		}
	}

	idx := 0
	for _, key := range g.order {
		if len(candidates) == 0 {
			return
		}
		cell := g.cells[key]
		if !cell.Empty() {
			continue
		}
		idx %= len(candidates)
		current := &candidates[idx]
		g.cells[key] = Cell{Text: current.subject.Name, Teacher: current.subject.Teacher}
		current.remaining--
		if current.remaining == 0 {
			candidates = append(candidates[:idx], candidates[idx+1:]...)
		} else {
			idx++
		}
	}
}
