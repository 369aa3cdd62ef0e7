package models

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx/types"

	"github.com/sncann/timetable-api/internal/timetable"
)

// ScheduleConfig is a school's stored timetable configuration: days, periods,
// subjects and fixed items. The structured body lives in a JSONB payload so
// the shape can evolve without migrations.
type ScheduleConfig struct {
	ID          string         `db:"id" json:"id"`
	SchoolName  string         `db:"school_name" json:"schoolName"`
	ClosingTime string         `db:"closing_time" json:"closingTime"`
	Payload     types.JSONText `db:"payload" json:"-"`
	CreatedAt   time.Time      `db:"created_at" json:"createdAt"`
	UpdatedAt   time.Time      `db:"updated_at" json:"updatedAt"`
}

// ConfigPayload is the JSONB body of a ScheduleConfig.
type ConfigPayload struct {
	Days             []string                      `json:"days"`
	PeriodsByDay     map[string][]timetable.Period `json:"periodsByDay"`
	Subjects         []timetable.Subject           `json:"subjects"`
	FixedEvents      []timetable.FixedEvent        `json:"fixedEvents"`
	FixedAssignments []timetable.FixedAssignment   `json:"fixedAssignments"`
}

// Body decodes the JSONB payload.
func (c *ScheduleConfig) Body() (*ConfigPayload, error) {
	payload := &ConfigPayload{}
	if len(c.Payload) == 0 {
		return payload, nil
	}
	if err := json.Unmarshal(c.Payload, payload); err != nil {
		return nil, fmt.Errorf("decode config payload: %w", err)
	}
	return payload, nil
}

// SetBody encodes the payload back into the JSONB column.
func (c *ScheduleConfig) SetBody(payload *ConfigPayload) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode config payload: %w", err)
	}
	c.Payload = types.JSONText(raw)
	return nil
}
