package timetable

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func weekdays() []string {
	return []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday"}
}

// samePeriods assigns the given periods to every day, the way the simple
// single-class configuration works.
func samePeriods(days []string, periods []Period) map[string][]Period {
	byDay := make(map[string][]Period, len(days))
	for _, day := range days {
		byDay[day] = periods
	}
	return byDay
}

func defaultPeriods(n int) []Period {
	periods := make([]Period, 0, n)
	start := Minute(7*60 + 30)
	for i := 0; i < n; i++ {
		end := start + 45
		periods = append(periods, Period{
			Name:  fmt.Sprintf("Period %d", i+1),
			Start: start.Clock12(),
			End:   end.Clock12(),
		})
		start = end
	}
	return periods
}

func TestBuildGridShape(t *testing.T) {
	days := weekdays()
	g, err := BuildGrid(days, samePeriods(days, defaultPeriods(8)))
	require.NoError(t, err)

	assert.Len(t, g.Rows(), 8)
	assert.Len(t, g.Slots(), 40, "one day-scoped slot per day and period")
	assert.Len(t, g.Order(), 40)
	for _, key := range g.Order() {
		cell, ok := g.CellAt(key.Day, key.Row)
		require.True(t, ok)
		assert.True(t, cell.Empty())
	}
}

func TestBuildGridDeduplicatesAndKeepsFirstName(t *testing.T) {
	days := []string{"Monday"}
	byDay := map[string][]Period{
		"Monday": {
			{Name: "Maths Block", Start: "8:00 AM", End: "9:00 AM"},
			{Name: "Duplicate", Start: "08:00", End: "09:00"},
			{Name: "Second", Start: "9:00 AM", End: "10:00 AM"},
		},
	}
	g, err := BuildGrid(days, byDay)
	require.NoError(t, err)
	require.Len(t, g.Slots(), 2)
	assert.Equal(t, "Maths Block", g.Slots()[0].Name)

	seen := make(map[string]bool)
	for _, slot := range g.Slots() {
		key := slot.Day + "|" + timeKey(slot.Start, slot.End)
		assert.False(t, seen[key], "duplicate slot %q", key)
		seen[key] = true
	}
}

func TestBuildGridCapsSilently(t *testing.T) {
	periods := make([]Period, 0, 150)
	for i := 0; i < 150; i++ {
		periods = append(periods, Period{
			Name:  fmt.Sprintf("P%d", i),
			Start: Minute(i * 5).Clock12(),
			End:   Minute(i*5 + 5).Clock12(),
		})
	}
	g, err := BuildGrid([]string{"Monday"}, map[string][]Period{"Monday": periods})
	require.NoError(t, err)
	assert.Len(t, g.Slots(), MaxSlots)
}

func TestBuildGridWithCapOverride(t *testing.T) {
	periods := make([]Period, 0, 10)
	for i := 0; i < 10; i++ {
		periods = append(periods, Period{
			Name:  fmt.Sprintf("P%d", i),
			Start: Minute(i * 30).Clock12(),
			End:   Minute(i*30 + 30).Clock12(),
		})
	}
	byDay := map[string][]Period{"Monday": periods}

	g, err := BuildGridWithCap([]string{"Monday"}, byDay, 4)
	require.NoError(t, err)
	assert.Len(t, g.Slots(), 4)

	// Zero and negative caps fall back to the default bound.
	g, err = BuildGridWithCap([]string{"Monday"}, byDay, 0)
	require.NoError(t, err)
	assert.Len(t, g.Slots(), 10)

	g, err = BuildGridWithCap([]string{"Monday"}, byDay, -1)
	require.NoError(t, err)
	assert.Len(t, g.Slots(), 10)
}

func TestBuildGridNoSlotsDefined(t *testing.T) {
	_, err := BuildGrid(weekdays(), map[string][]Period{})
	assert.ErrorIs(t, err, ErrNoSlotsDefined)
}

func TestSetCellRejectsFixedCells(t *testing.T) {
	days := weekdays()
	g, err := BuildGrid(days, samePeriods(days, defaultPeriods(2)))
	require.NoError(t, err)

	require.NoError(t, g.SetCell("Monday", 0, Cell{Text: "Math"}))
	g.ApplyFixedAssignments("1A", []FixedAssignment{{
		ClassID: "1A", Day: "Tuesday", Start: "7:30 AM", End: "8:15 AM", Subject: "English",
	}})
	err = g.SetCell("Tuesday", 0, Cell{Text: "Science"})
	assert.Error(t, err)
}

func TestClearSubjectCascades(t *testing.T) {
	days := weekdays()
	g, err := BuildGrid(days, samePeriods(days, defaultPeriods(2)))
	require.NoError(t, err)
	require.NoError(t, g.SetCell("Monday", 0, Cell{Text: "ICT"}))
	require.NoError(t, g.SetCell("Friday", 1, Cell{Text: "ICT"}))
	g.ApplyFixedAssignments("1A", []FixedAssignment{{
		ClassID: "1A", Day: "Tuesday", Start: "7:30 AM", End: "8:15 AM", Subject: "ICT",
	}})

	removed := g.ClearSubject("ICT")
	assert.Equal(t, 2, removed, "fixed cells survive the cascade")
	fixed, ok := g.CellAt("Tuesday", 0)
	require.True(t, ok)
	assert.Equal(t, "ICT", fixed.Text)
}

func TestSnapshotRoundTrip(t *testing.T) {
	days := weekdays()
	g, err := BuildGrid(days, samePeriods(days, defaultPeriods(4)))
	require.NoError(t, err)
	g.ApplyFixedEvents([]FixedEvent{{Name: "Assembly", Start: "7:30 AM", End: "8:15 AM", AllDays: true}})
	g.AutoFill([]Subject{{Name: "Math", HoursPerWeek: 4}, {Name: "English", HoursPerWeek: 5, Teacher: "Mr. Boateng"}})

	restored := FromSnapshot(g.Snapshot())
	assert.Equal(t, g.Days(), restored.Days())
	assert.Equal(t, g.Slots(), restored.Slots())
	assert.Equal(t, g.Order(), restored.Order())
	for _, key := range g.Order() {
		want, _ := g.CellAt(key.Day, key.Row)
		got, ok := restored.CellAt(key.Day, key.Row)
		require.True(t, ok)
		assert.Equal(t, want, got)
	}
}

func TestDisplayRendersTeacherSuffix(t *testing.T) {
	assert.Equal(t, "English (Mr. Boateng)", Cell{Text: "English", Teacher: "Mr. Boateng"}.Display())
	assert.Equal(t, "Assembly", Cell{Text: "Assembly"}.Display())
}
