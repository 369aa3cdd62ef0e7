package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/sncann/timetable-api/internal/models"
)

// TimetableRepository manages persistence for saved class timetables.
type TimetableRepository struct {
	db *sqlx.DB
}

// NewTimetableRepository constructs a TimetableRepository.
func NewTimetableRepository(db *sqlx.DB) *TimetableRepository {
	return &TimetableRepository{db: db}
}

// ListByConfig returns every saved timetable for a configuration.
func (r *TimetableRepository) ListByConfig(ctx context.Context, configID string) ([]models.Timetable, error) {
	const query = `SELECT id, config_id, class_name, grid, created_at, updated_at FROM timetables WHERE config_id = $1 ORDER BY class_name ASC`
	var timetables []models.Timetable
	if err := r.db.SelectContext(ctx, &timetables, query, configID); err != nil {
		return nil, fmt.Errorf("list timetables: %w", err)
	}
	return timetables, nil
}

// FindByID fetches one saved timetable.
func (r *TimetableRepository) FindByID(ctx context.Context, id string) (*models.Timetable, error) {
	const query = `SELECT id, config_id, class_name, grid, created_at, updated_at FROM timetables WHERE id = $1`
	var record models.Timetable
	if err := r.db.GetContext(ctx, &record, query, id); err != nil {
		return nil, err
	}
	return &record, nil
}

// Upsert saves a class's grid, replacing any previous save for the same
// (config, class) pair. On conflict the existing row keeps its id, so the
// query returns the id and the record is updated to match the stored row.
func (r *TimetableRepository) Upsert(ctx context.Context, record *models.Timetable) error {
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	record.CreatedAt = now
	record.UpdatedAt = now

	const query = `INSERT INTO timetables (id, config_id, class_name, grid, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (config_id, class_name)
		DO UPDATE SET grid = EXCLUDED.grid, updated_at = EXCLUDED.updated_at
		RETURNING id`
	if err := r.db.GetContext(ctx, &record.ID, query, record.ID, record.ConfigID, record.ClassName, record.Grid, record.CreatedAt, record.UpdatedAt); err != nil {
		return fmt.Errorf("upsert timetable: %w", err)
	}
	return nil
}

// UpdateGrid rewrites just the grid column of a saved timetable.
func (r *TimetableRepository) UpdateGrid(ctx context.Context, id string, grid []byte) error {
	const query = `UPDATE timetables SET grid = $2, updated_at = $3 WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id, grid, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("update timetable grid: %w", err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return fmt.Errorf("timetable %s not found", id)
	}
	return nil
}

// Delete removes a saved timetable.
func (r *TimetableRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM timetables WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("delete timetable: %w", err)
	}
	return nil
}
