package dto

import "github.com/sncann/timetable-api/internal/timetable"

// GenerateTimetableRequest builds a grid for one class from its stored
// configuration. Nothing is persisted until the grid is saved.
type GenerateTimetableRequest struct {
	ClassName string `json:"className" validate:"required"`
	AutoFill  bool   `json:"autoFill"`
}

// GenerateTimetableResponse returns the built grid and every advisory
// finding collected along the way.
type GenerateTimetableResponse struct {
	ClassName string              `json:"className"`
	Grid      timetable.Snapshot  `json:"grid"`
	Findings  []timetable.Finding `json:"findings"`
}

// SaveTimetableRequest persists a filled grid for a class.
type SaveTimetableRequest struct {
	ClassName string             `json:"className" validate:"required"`
	Grid      timetable.Snapshot `json:"grid" validate:"required"`
}

// CellEditRequest writes one cell of a saved timetable. An empty Text clears
// the cell.
type CellEditRequest struct {
	Day     string `json:"day" validate:"required"`
	Row     int    `json:"row" validate:"min=0"`
	Text    string `json:"text"`
	Teacher string `json:"teacher"`
}

// ClashCheckRequest validates either a supplied grid or, when Grid is nil,
// the saved timetable of the named class.
type ClashCheckRequest struct {
	ClassName string              `json:"className" validate:"required"`
	Grid      *timetable.Snapshot `json:"grid"`
}

// ClashReport is the advisory result of a clash scan.
type ClashReport struct {
	Findings []timetable.Finding `json:"findings"`
	Clean    bool                `json:"clean"`
}

// TimetableResponse is the API view of a saved timetable.
type TimetableResponse struct {
	ID        string             `json:"id"`
	ConfigID  string             `json:"configId"`
	ClassName string             `json:"className"`
	Grid      timetable.Snapshot `json:"grid"`
}

// ExportRequest enqueues an asynchronous export of a saved timetable.
type ExportRequest struct {
	Format string `json:"format" validate:"required,oneof=csv pdf"`
}
