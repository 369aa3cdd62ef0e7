package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/sncann/timetable-api/internal/models"
)

// ConfigRepository manages persistence for schedule configurations.
type ConfigRepository struct {
	db *sqlx.DB
}

// NewConfigRepository constructs a ConfigRepository.
func NewConfigRepository(db *sqlx.DB) *ConfigRepository {
	return &ConfigRepository{db: db}
}

// List returns configurations matching the filter along with total count.
func (r *ConfigRepository) List(ctx context.Context, search string, page, limit int) ([]models.ScheduleConfig, int, error) {
	base := "FROM schedule_configs WHERE 1=1"
	var args []interface{}

	if search != "" {
		base += fmt.Sprintf(" AND LOWER(school_name) LIKE $%d", len(args)+1)
		args = append(args, "%"+strings.ToLower(search)+"%")
	}

	if page < 1 {
		page = 1
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	offset := (page - 1) * limit

	query := fmt.Sprintf("SELECT id, school_name, closing_time, payload, created_at, updated_at %s ORDER BY created_at DESC LIMIT %d OFFSET %d", base, limit, offset)
	var configs []models.ScheduleConfig
	if err := r.db.SelectContext(ctx, &configs, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list schedule configs: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count schedule configs: %w", err)
	}

	return configs, total, nil
}

// FindByID fetches one configuration.
func (r *ConfigRepository) FindByID(ctx context.Context, id string) (*models.ScheduleConfig, error) {
	const query = `SELECT id, school_name, closing_time, payload, created_at, updated_at FROM schedule_configs WHERE id = $1`
	var config models.ScheduleConfig
	if err := r.db.GetContext(ctx, &config, query, id); err != nil {
		return nil, err
	}
	return &config, nil
}

// Create inserts a new configuration, assigning an ID when absent.
func (r *ConfigRepository) Create(ctx context.Context, config *models.ScheduleConfig) error {
	if config.ID == "" {
		config.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	config.CreatedAt = now
	config.UpdatedAt = now

	const query = `INSERT INTO schedule_configs (id, school_name, closing_time, payload, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)`
	if _, err := r.db.ExecContext(ctx, query, config.ID, config.SchoolName, config.ClosingTime, config.Payload, config.CreatedAt, config.UpdatedAt); err != nil {
		return fmt.Errorf("create schedule config: %w", err)
	}
	return nil
}

// Update replaces the mutable fields of a configuration.
func (r *ConfigRepository) Update(ctx context.Context, config *models.ScheduleConfig) error {
	config.UpdatedAt = time.Now().UTC()
	const query = `UPDATE schedule_configs SET school_name = $2, closing_time = $3, payload = $4, updated_at = $5 WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, config.ID, config.SchoolName, config.ClosingTime, config.Payload, config.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update schedule config: %w", err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return fmt.Errorf("schedule config %s not found", config.ID)
	}
	return nil
}

// Delete removes a configuration and, via FK cascade, its timetables.
func (r *ConfigRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM schedule_configs WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("delete schedule config: %w", err)
	}
	return nil
}
