package timetable

import (
	"fmt"
	"sort"
)

// FindingKind labels a validation finding.
type FindingKind string

// Finding kinds. All findings are advisory: they are returned for display
// and never block a subsequent operation.
const (
	FindingDuplicateSubject   FindingKind = "DUPLICATE_SUBJECT_ON_DAY"
	FindingHoursExceeded      FindingKind = "HOURS_EXCEEDED"
	FindingTeacherDoubleBook  FindingKind = "TEACHER_DOUBLE_BOOKED"
	FindingOverlappingPeriods FindingKind = "OVERLAPPING_PERIODS"
	FindingUnparseableTime    FindingKind = "UNPARSEABLE_TIME"
)

// Finding is one advisory validation result.
type Finding struct {
	Kind    FindingKind `json:"kind"`
	Message string      `json:"message"`
	Day     string      `json:"day,omitempty"`
	Subject string      `json:"subject,omitempty"`
	Teacher string      `json:"teacher,omitempty"`
	Classes []string    `json:"classes,omitempty"`
	Actual  int         `json:"actual,omitempty"`
	Max     int         `json:"max,omitempty"`
}

// ValidateTimeSlots checks each day's period list for pairwise time-range
// overlaps and for boundaries that cannot be parsed. It runs before grid
// generation and only warns; generation proceeds regardless.
func ValidateTimeSlots(days []string, periodsByDay map[string][]Period) []Finding {
	findings := make([]Finding, 0)
	for _, day := range days {
		periods := periodsByDay[day]
		for i, period := range periods {
			for _, boundary := range []string{period.Start, period.End} {
				if _, ok := ParseClock(boundary); !ok {
					findings = append(findings, Finding{
						Kind:    FindingUnparseableTime,
						Day:     day,
						Message: fmt.Sprintf("period %q on %s has unreadable time %q", period.Name, day, boundary),
					})
				}
			}
			for j := i + 1; j < len(periods); j++ {
				other := periods[j]
				if SpansOverlap(period.Start, period.End, other.Start, other.End) {
					findings = append(findings, Finding{
						Kind:    FindingOverlappingPeriods,
						Day:     day,
						Message: fmt.Sprintf("periods %q and %q overlap on %s", period.Name, other.Name, day),
					})
				}
			}
		}
	}
	return findings
}

// CheckSingleClass scans one filled grid for duplicate subject placements per
// day and weekly-hour overages. Free-form cell text that is not a known
// subject is ignored by both checks.
func CheckSingleClass(g *Grid, subjects []Subject) []Finding {
	known := make(map[string]Subject, len(subjects))
	for _, subject := range subjects {
		known[subject.Name] = subject
	}

	findings := make([]Finding, 0)

	for _, day := range g.days {
		perDay := make(map[string]int)
		for row := range g.rows {
			cell, ok := g.CellAt(day, row)
			if !ok || cell.Empty() {
				continue
			}
			if _, isSubject := known[cell.Text]; isSubject {
				perDay[cell.Text]++
			}
		}
		names := sortedKeys(perDay)
		for _, name := range names {
			if perDay[name] > 1 {
				findings = append(findings, Finding{
					Kind:    FindingDuplicateSubject,
					Day:     day,
					Subject: name,
					Message: fmt.Sprintf("subject %q appears %d times on %s", name, perDay[name], day),
				})
			}
		}
	}

	totals := make(map[string]int)
	for _, cell := range g.cells {
		if _, isSubject := known[cell.Text]; isSubject {
			totals[cell.Text]++
		}
	}
	for _, name := range sortedKeys(totals) {
		subject := known[name]
		if totals[name] > subject.HoursPerWeek {
			findings = append(findings, Finding{
				Kind:    FindingHoursExceeded,
				Subject: name,
				Actual:  totals[name],
				Max:     subject.HoursPerWeek,
				Message: fmt.Sprintf("subject %q exceeds weekly hours: %d/%d", name, totals[name], subject.HoursPerWeek),
			})
		}
	}
	return findings
}

type teacherBooking struct {
	class   string
	subject string
	day     string
	start   string
	end     string
}

// CheckTeacherClashes builds a per-teacher schedule from every cell carrying
// a teacher and reports each pair of same-day, time-overlapping bookings in
// different classes exactly once, with the class names ordered
// lexicographically.
func CheckTeacherClashes(grids map[string]*Grid) []Finding {
	schedules := make(map[string][]teacherBooking)
	for _, class := range sortedKeys(grids) {
		g := grids[class]
		for _, key := range g.order {
			cell := g.cells[key]
			if cell.Empty() || cell.Teacher == "" {
				continue
			}
			row := g.rows[key.Row]
			schedules[cell.Teacher] = append(schedules[cell.Teacher], teacherBooking{
				class:   class,
				subject: cell.Text,
				day:     key.Day,
				start:   row.Start,
				end:     row.End,
			})
		}
	}

	findings := make([]Finding, 0)
	for _, teacher := range sortedKeys(schedules) {
		bookings := schedules[teacher]
		for i := 0; i < len(bookings); i++ {
			for j := i + 1; j < len(bookings); j++ {
				a, b := bookings[i], bookings[j]
				if a.class == b.class || a.day != b.day {
					continue
				}
				if !SpansOverlap(a.start, a.end, b.start, b.end) {
					continue
				}
				if a.class > b.class {
					a, b = b, a
				}
				findings = append(findings, Finding{
					Kind:    FindingTeacherDoubleBook,
					Teacher: teacher,
					Day:     a.day,
					Classes: []string{a.class, b.class},
					Message: fmt.Sprintf("teacher %q is double-booked on %s: %s in %s overlaps %s in %s", teacher, a.day, a.subject, a.class, b.subject, b.class),
				})
			}
		}
	}
	return findings
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
