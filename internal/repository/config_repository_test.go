package repository

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/jmoiron/sqlx/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sncann/timetable-api/internal/models"
)

func newRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	sqlxDB := sqlx.NewDb(db, "postgres")
	return sqlxDB, mock, func() {
		sqlxDB.Close()
		db.Close()
	}
}

func TestConfigRepositoryList(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewConfigRepository(db)
	rows := sqlmock.NewRows([]string{"id", "school_name", "closing_time", "payload", "created_at", "updated_at"}).
		AddRow("cfg-1", "Accra Academy", "2:00 PM", []byte(`{}`), time.Now(), time.Now())
	mock.ExpectQuery("SELECT id, school_name").
		WithArgs("%accra%").
		WillReturnRows(rows)
	mock.ExpectQuery(`SELECT COUNT\(\*\)`).
		WithArgs("%accra%").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	configs, total, err := repo.List(context.Background(), "Accra", 1, 20)
	require.NoError(t, err)
	require.Len(t, configs, 1)
	assert.Equal(t, 1, total)
	assert.Equal(t, "Accra Academy", configs[0].SchoolName)
}

func TestConfigRepositoryCreateAssignsID(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewConfigRepository(db)
	mock.ExpectExec("INSERT INTO schedule_configs").
		WithArgs(sqlmock.AnyArg(), "Accra Academy", "2:00 PM", sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	config := &models.ScheduleConfig{
		SchoolName:  "Accra Academy",
		ClosingTime: "2:00 PM",
		Payload:     types.JSONText(`{}`),
	}
	require.NoError(t, repo.Create(context.Background(), config))
	assert.NotEmpty(t, config.ID)
	assert.False(t, config.CreatedAt.IsZero())
}

func TestConfigRepositoryUpdateNotFound(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewConfigRepository(db)
	mock.ExpectExec("UPDATE schedule_configs").
		WithArgs("missing", "Accra Academy", "2:00 PM", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))

	config := &models.ScheduleConfig{
		ID:          "missing",
		SchoolName:  "Accra Academy",
		ClosingTime: "2:00 PM",
		Payload:     types.JSONText(`{}`),
	}
	err := repo.Update(context.Background(), config)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestConfigRepositoryDelete(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewConfigRepository(db)
	mock.ExpectExec("DELETE FROM schedule_configs").
		WithArgs("cfg-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Delete(context.Background(), "cfg-1"))
}
