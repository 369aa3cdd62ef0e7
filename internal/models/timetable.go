package models

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx/types"

	"github.com/sncann/timetable-api/internal/timetable"
)

// Timetable is one class's saved grid for a schedule configuration.
type Timetable struct {
	ID        string         `db:"id" json:"id"`
	ConfigID  string         `db:"config_id" json:"configId"`
	ClassName string         `db:"class_name" json:"className"`
	Grid      types.JSONText `db:"grid" json:"-"`
	CreatedAt time.Time      `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time      `db:"updated_at" json:"updatedAt"`
}

// Snapshot decodes the stored grid.
func (t *Timetable) Snapshot() (timetable.Snapshot, error) {
	var snap timetable.Snapshot
	if len(t.Grid) == 0 {
		return snap, nil
	}
	if err := json.Unmarshal(t.Grid, &snap); err != nil {
		return snap, fmt.Errorf("decode timetable grid: %w", err)
	}
	return snap, nil
}

// SetSnapshot encodes the grid into the JSONB column.
func (t *Timetable) SetSnapshot(snap timetable.Snapshot) error {
	raw, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encode timetable grid: %w", err)
	}
	t.Grid = types.JSONText(raw)
	return nil
}

// ExportFormat identifies a timetable export encoding.
type ExportFormat string

const (
	ExportFormatCSV ExportFormat = "csv"
	ExportFormatPDF ExportFormat = "pdf"
)

// ExportJobStatus is the lifecycle state of an export job.
type ExportJobStatus string

const (
	ExportJobPending    ExportJobStatus = "PENDING"
	ExportJobProcessing ExportJobStatus = "PROCESSING"
	ExportJobCompleted  ExportJobStatus = "COMPLETED"
	ExportJobFailed     ExportJobStatus = "FAILED"
)

// ExportJob tracks one asynchronous export request. Jobs are held in memory
// for the artifact TTL; the artifact itself lands in file storage behind a
// signed URL.
type ExportJob struct {
	ID          string          `json:"id"`
	TimetableID string          `json:"timetableId"`
	Format      ExportFormat    `json:"format"`
	Status      ExportJobStatus `json:"status"`
	FilePath    string          `json:"-"`
	DownloadURL string          `json:"downloadUrl,omitempty"`
	Error       string          `json:"error,omitempty"`
	CreatedAt   time.Time       `json:"createdAt"`
	CompletedAt *time.Time      `json:"completedAt,omitempty"`
	ExpiresAt   *time.Time      `json:"expiresAt,omitempty"`
}

// SettingsDocument is the round-trippable export of a whole configuration:
// everything needed to reconstruct identical state, filled grids included.
type SettingsDocument struct {
	SchoolName       string                        `json:"schoolName"`
	ClosingTime      string                        `json:"closingTime"`
	Days             []string                      `json:"days"`
	PeriodsByDay     map[string][]timetable.Period `json:"periodsByDay"`
	Subjects         []timetable.Subject           `json:"subjects"`
	FixedEvents      []timetable.FixedEvent        `json:"fixedEvents"`
	FixedAssignments []timetable.FixedAssignment   `json:"fixedAssignments"`
	Timetables       map[string]timetable.Snapshot `json:"timetables"`
}
