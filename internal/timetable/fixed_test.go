package timetable

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyFixedEventsWritesEveryDay(t *testing.T) {
	days := weekdays()
	g, err := BuildGrid(days, samePeriods(days, defaultPeriods(3)))
	require.NoError(t, err)

	g.ApplyFixedEvents([]FixedEvent{
		{Name: "Assembly", Start: "7:30 AM", End: "8:15 AM", AllDays: true},
		{Name: "Ignored", Start: "7:30 AM", End: "8:15 AM", AllDays: false},
		{Name: "No Match", Start: "5:00 AM", End: "6:00 AM", AllDays: true},
	})

	for _, day := range days {
		cell, ok := g.CellAt(day, 0)
		require.True(t, ok)
		assert.Equal(t, "Assembly", cell.Text)
		assert.True(t, cell.Fixed)
	}
	cell, _ := g.CellAt("Monday", 1)
	assert.True(t, cell.Empty(), "non-matching rows untouched")
}

func TestApplyFixedEventsIdempotent(t *testing.T) {
	days := weekdays()
	events := []FixedEvent{{Name: "Break", Start: "8:15 AM", End: "9:00 AM", AllDays: true}}

	g, err := BuildGrid(days, samePeriods(days, defaultPeriods(3)))
	require.NoError(t, err)
	g.ApplyFixedEvents(events)
	once := g.Snapshot()

	g.ApplyFixedEvents(events)
	assert.Equal(t, once, g.Snapshot())
}

func TestApplyFixedAssignmentsScopesToClass(t *testing.T) {
	days := weekdays()
	g, err := BuildGrid(days, samePeriods(days, defaultPeriods(2)))
	require.NoError(t, err)

	g.ApplyFixedAssignments("1A", []FixedAssignment{
		{ClassID: "1A", Day: "Monday", Start: "7:30 AM", End: "8:15 AM", Subject: "English", Teacher: "Mr. Boateng"},
		{ClassID: "2B", Day: "Monday", Start: "8:15 AM", End: "9:00 AM", Subject: "Math"},
		{ClassID: "1A", Day: "Monday", Start: "4:00 AM", End: "5:00 AM", Subject: "Ghost"},
	})

	cell, ok := g.CellAt("Monday", 0)
	require.True(t, ok)
	assert.Equal(t, Cell{Text: "English", Teacher: "Mr. Boateng", Fixed: true}, cell)
	assert.Equal(t, "English (Mr. Boateng)", cell.Display())

	other, _ := g.CellAt("Monday", 1)
	assert.True(t, other.Empty(), "assignment for another class skipped")
}
