package dto

import "github.com/sncann/timetable-api/internal/timetable"

// PeriodRequest defines one period within a day's schedule.
type PeriodRequest struct {
	Name  string `json:"name" validate:"required"`
	Start string `json:"start" validate:"required"`
	End   string `json:"end" validate:"required"`
}

// SubjectRequest captures a subject and its weekly quota.
type SubjectRequest struct {
	Name          string `json:"name" validate:"required"`
	HoursPerWeek  int    `json:"hoursPerWeek" validate:"required,min=1,max=20"`
	Teacher       string `json:"teacher"`
	SingleTeacher bool   `json:"singleTeacher"`
	NoClash       bool   `json:"noClash"`
}

// FixedEventRequest is an all-days slot override such as "Assembly".
type FixedEventRequest struct {
	Name    string `json:"name" validate:"required"`
	Start   string `json:"start" validate:"required"`
	End     string `json:"end" validate:"required"`
	AllDays bool   `json:"allDays"`
}

// FixedAssignmentRequest pins a subject to a class/day/slot.
type FixedAssignmentRequest struct {
	ClassID string `json:"classId" validate:"required"`
	Day     string `json:"day" validate:"required"`
	Start   string `json:"start" validate:"required"`
	End     string `json:"end" validate:"required"`
	Subject string `json:"subject" validate:"required"`
	Teacher string `json:"teacher"`
}

// SaveConfigRequest creates or replaces a school configuration.
type SaveConfigRequest struct {
	SchoolName       string                     `json:"schoolName" validate:"required"`
	ClosingTime      string                     `json:"closingTime"`
	Days             []string                   `json:"days" validate:"required,min=1,dive,required"`
	PeriodsByDay     map[string][]PeriodRequest `json:"periodsByDay" validate:"required"`
	Subjects         []SubjectRequest           `json:"subjects" validate:"omitempty,dive"`
	FixedEvents      []FixedEventRequest        `json:"fixedEvents" validate:"omitempty,dive"`
	FixedAssignments []FixedAssignmentRequest   `json:"fixedAssignments" validate:"omitempty,dive"`
}

// Periods converts the request periods into core periods keyed by day.
func (r SaveConfigRequest) Periods() map[string][]timetable.Period {
	byDay := make(map[string][]timetable.Period, len(r.PeriodsByDay))
	for day, periods := range r.PeriodsByDay {
		converted := make([]timetable.Period, 0, len(periods))
		for _, period := range periods {
			converted = append(converted, timetable.Period{Name: period.Name, Start: period.Start, End: period.End})
		}
		byDay[day] = converted
	}
	return byDay
}

// CoreSubjects converts request subjects into core subjects.
func (r SaveConfigRequest) CoreSubjects() []timetable.Subject {
	subjects := make([]timetable.Subject, 0, len(r.Subjects))
	for _, subject := range r.Subjects {
		subjects = append(subjects, timetable.Subject{
			Name:          subject.Name,
			HoursPerWeek:  subject.HoursPerWeek,
			Teacher:       subject.Teacher,
			SingleTeacher: subject.SingleTeacher,
			NoClash:       subject.NoClash,
		})
	}
	return subjects
}

// CoreFixedEvents converts request events into core fixed events.
func (r SaveConfigRequest) CoreFixedEvents() []timetable.FixedEvent {
	events := make([]timetable.FixedEvent, 0, len(r.FixedEvents))
	for _, event := range r.FixedEvents {
		events = append(events, timetable.FixedEvent{
			Name:    event.Name,
			Start:   event.Start,
			End:     event.End,
			AllDays: event.AllDays,
		})
	}
	return events
}

// CoreFixedAssignments converts request assignments into core assignments.
func (r SaveConfigRequest) CoreFixedAssignments() []timetable.FixedAssignment {
	assignments := make([]timetable.FixedAssignment, 0, len(r.FixedAssignments))
	for _, assignment := range r.FixedAssignments {
		assignments = append(assignments, timetable.FixedAssignment{
			ClassID: assignment.ClassID,
			Day:     assignment.Day,
			Start:   assignment.Start,
			End:     assignment.End,
			Subject: assignment.Subject,
			Teacher: assignment.Teacher,
		})
	}
	return assignments
}

// ConfigResponse is the API view of a stored configuration.
type ConfigResponse struct {
	ID               string                        `json:"id"`
	SchoolName       string                        `json:"schoolName"`
	ClosingTime      string                        `json:"closingTime"`
	Days             []string                      `json:"days"`
	PeriodsByDay     map[string][]timetable.Period `json:"periodsByDay"`
	Subjects         []timetable.Subject           `json:"subjects"`
	FixedEvents      []timetable.FixedEvent        `json:"fixedEvents"`
	FixedAssignments []timetable.FixedAssignment   `json:"fixedAssignments"`
}

// ConfigQuery filters configuration listings.
type ConfigQuery struct {
	Search string `form:"search"`
	Page   int    `form:"page"`
	Limit  int    `form:"limit"`
}
