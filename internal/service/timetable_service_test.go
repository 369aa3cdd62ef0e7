package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/sncann/timetable-api/internal/dto"
	"github.com/sncann/timetable-api/internal/models"
	"github.com/sncann/timetable-api/internal/timetable"
	appErrors "github.com/sncann/timetable-api/pkg/errors"
)

type fakeConfigRepo struct {
	configs map[string]*models.ScheduleConfig
}

func newFakeConfigRepo() *fakeConfigRepo {
	return &fakeConfigRepo{configs: make(map[string]*models.ScheduleConfig)}
}

func (f *fakeConfigRepo) List(_ context.Context, _ string, _, _ int) ([]models.ScheduleConfig, int, error) {
	var out []models.ScheduleConfig
	for _, cfg := range f.configs {
		out = append(out, *cfg)
	}
	return out, len(out), nil
}

func (f *fakeConfigRepo) FindByID(_ context.Context, id string) (*models.ScheduleConfig, error) {
	cfg, ok := f.configs[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return cfg, nil
}

func (f *fakeConfigRepo) Create(_ context.Context, cfg *models.ScheduleConfig) error {
	if cfg.ID == "" {
		cfg.ID = uuid.NewString()
	}
	f.configs[cfg.ID] = cfg
	return nil
}

func (f *fakeConfigRepo) Update(_ context.Context, cfg *models.ScheduleConfig) error {
	if _, ok := f.configs[cfg.ID]; !ok {
		return sql.ErrNoRows
	}
	f.configs[cfg.ID] = cfg
	return nil
}

func (f *fakeConfigRepo) Delete(_ context.Context, id string) error {
	delete(f.configs, id)
	return nil
}

type fakeTimetableRepo struct {
	records   map[string]*models.Timetable
	listCalls int
}

func newFakeTimetableRepo() *fakeTimetableRepo {
	return &fakeTimetableRepo{records: make(map[string]*models.Timetable)}
}

func (f *fakeTimetableRepo) ListByConfig(_ context.Context, configID string) ([]models.Timetable, error) {
	f.listCalls++
	var out []models.Timetable
	for _, record := range f.records {
		if record.ConfigID == configID {
			out = append(out, *record)
		}
	}
	return out, nil
}

func (f *fakeTimetableRepo) FindByID(_ context.Context, id string) (*models.Timetable, error) {
	record, ok := f.records[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return record, nil
}

func (f *fakeTimetableRepo) Upsert(_ context.Context, record *models.Timetable) error {
	for _, existing := range f.records {
		if existing.ConfigID == record.ConfigID && existing.ClassName == record.ClassName {
			existing.Grid = record.Grid
			record.ID = existing.ID
			return nil
		}
	}
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	f.records[record.ID] = record
	return nil
}

func (f *fakeTimetableRepo) UpdateGrid(_ context.Context, id string, grid []byte) error {
	record, ok := f.records[id]
	if !ok {
		return sql.ErrNoRows
	}
	record.Grid = grid
	return nil
}

func (f *fakeTimetableRepo) Delete(_ context.Context, id string) error {
	delete(f.records, id)
	return nil
}

type stubCacheRepo struct {
	store map[string][]byte
}

func (s *stubCacheRepo) Get(_ context.Context, key string, dest interface{}) error {
	payload, ok := s.store[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(payload, dest)
}

func (s *stubCacheRepo) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	if s.store == nil {
		s.store = make(map[string][]byte)
	}
	payload, err := json.Marshal(value)
	if err != nil {
		return err
	}
	s.store[key] = payload
	return nil
}

func (s *stubCacheRepo) DeleteByPattern(_ context.Context, _ string) error {
	s.store = make(map[string][]byte)
	return nil
}

func seedConfig(t *testing.T, repo *fakeConfigRepo, payload *models.ConfigPayload) *models.ScheduleConfig {
	t.Helper()
	config := &models.ScheduleConfig{SchoolName: "Accra Academy", ClosingTime: "2:00 PM"}
	require.NoError(t, config.SetBody(payload))
	require.NoError(t, repo.Create(context.Background(), config))
	return config
}

func standardPayload() *models.ConfigPayload {
	days := []string{"Monday", "Tuesday"}
	periods := []timetable.Period{
		{Name: "First", Start: "8:00 AM", End: "9:00 AM"},
		{Name: "Second", Start: "9:00 AM", End: "10:00 AM"},
	}
	byDay := map[string][]timetable.Period{}
	for _, day := range days {
		byDay[day] = periods
	}
	return &models.ConfigPayload{
		Days:         days,
		PeriodsByDay: byDay,
		Subjects: []timetable.Subject{
			{Name: "Math", HoursPerWeek: 2, Teacher: "Mr. Mensah"},
			{Name: "English", HoursPerWeek: 1, Teacher: "Mrs. Addo"},
		},
	}
}

func newTimetableServiceForTest(configs *fakeConfigRepo, repo *fakeTimetableRepo, cache *CacheService) *TimetableService {
	return NewTimetableService(configs, repo, cache, nil, nil, zap.NewNop(), time.Minute, 0)
}

func TestTimetableServiceGeneratePipeline(t *testing.T) {
	configs := newFakeConfigRepo()
	repo := newFakeTimetableRepo()
	payload := standardPayload()
	payload.FixedEvents = []timetable.FixedEvent{
		{Name: "Assembly", Start: "8:00 AM", End: "9:00 AM", AllDays: true},
	}
	config := seedConfig(t, configs, payload)

	svc := newTimetableServiceForTest(configs, repo, nil)
	resp, err := svc.Generate(context.Background(), config.ID, dto.GenerateTimetableRequest{ClassName: "1A", AutoFill: true})
	require.NoError(t, err)
	assert.Equal(t, "1A", resp.ClassName)

	grid := timetable.FromSnapshot(resp.Grid)
	cell, ok := grid.CellAt("Monday", 0)
	require.True(t, ok)
	assert.Equal(t, "Assembly", cell.Text)
	assert.True(t, cell.Fixed)

	// Only row 1 remains fillable on both days; quotas 2+1 exceed the two
	// open cells, so hours findings are expected.
	second, ok := grid.CellAt("Monday", 1)
	require.True(t, ok)
	assert.False(t, second.Empty())

	// Nothing persisted by generation.
	assert.Empty(t, repo.records)
}

func TestTimetableServiceGenerateNoSlots(t *testing.T) {
	configs := newFakeConfigRepo()
	config := seedConfig(t, configs, &models.ConfigPayload{Days: []string{"Monday"}})

	svc := newTimetableServiceForTest(configs, newFakeTimetableRepo(), nil)
	_, err := svc.Generate(context.Background(), config.ID, dto.GenerateTimetableRequest{ClassName: "1A"})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrNoSlotsDefined.Code, appErr.Code)
}

func TestTimetableServiceGenerateHonorsSlotCap(t *testing.T) {
	configs := newFakeConfigRepo()
	config := seedConfig(t, configs, standardPayload())

	// standardPayload defines four slots; a cap of two must trim the grid.
	svc := NewTimetableService(configs, newFakeTimetableRepo(), nil, nil, nil, zap.NewNop(), time.Minute, 2)
	resp, err := svc.Generate(context.Background(), config.ID, dto.GenerateTimetableRequest{ClassName: "1A"})
	require.NoError(t, err)

	grid := timetable.FromSnapshot(resp.Grid)
	assert.Len(t, grid.Slots(), 2)
}

func TestTimetableServiceUpdateCellFixedRejected(t *testing.T) {
	configs := newFakeConfigRepo()
	repo := newFakeTimetableRepo()
	payload := standardPayload()
	payload.FixedEvents = []timetable.FixedEvent{
		{Name: "Assembly", Start: "8:00 AM", End: "9:00 AM", AllDays: true},
	}
	config := seedConfig(t, configs, payload)

	svc := newTimetableServiceForTest(configs, repo, nil)
	generated, err := svc.Generate(context.Background(), config.ID, dto.GenerateTimetableRequest{ClassName: "1A"})
	require.NoError(t, err)
	saved, err := svc.Save(context.Background(), config.ID, dto.SaveTimetableRequest{ClassName: "1A", Grid: generated.Grid})
	require.NoError(t, err)

	_, err = svc.UpdateCell(context.Background(), saved.ID, dto.CellEditRequest{Day: "Monday", Row: 0, Text: "Math"})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrFixedCell.Code, appErr.Code)

	// A non-fixed cell accepts the edit and an empty text clears it.
	updated, err := svc.UpdateCell(context.Background(), saved.ID, dto.CellEditRequest{Day: "Monday", Row: 1, Text: "Math", Teacher: "Mr. Mensah"})
	require.NoError(t, err)
	grid := timetable.FromSnapshot(updated.Grid)
	cell, ok := grid.CellAt("Monday", 1)
	require.True(t, ok)
	assert.Equal(t, "Math", cell.Text)
	assert.Equal(t, "Mr. Mensah", cell.Teacher)

	cleared, err := svc.UpdateCell(context.Background(), saved.ID, dto.CellEditRequest{Day: "Monday", Row: 1, Text: ""})
	require.NoError(t, err)
	grid = timetable.FromSnapshot(cleared.Grid)
	cell, ok = grid.CellAt("Monday", 1)
	require.True(t, ok)
	assert.True(t, cell.Empty())
}

func TestTimetableServiceRemoveSubjectCascades(t *testing.T) {
	configs := newFakeConfigRepo()
	repo := newFakeTimetableRepo()
	config := seedConfig(t, configs, standardPayload())

	svc := newTimetableServiceForTest(configs, repo, nil)
	generated, err := svc.Generate(context.Background(), config.ID, dto.GenerateTimetableRequest{ClassName: "1A", AutoFill: true})
	require.NoError(t, err)
	_, err = svc.Save(context.Background(), config.ID, dto.SaveTimetableRequest{ClassName: "1A", Grid: generated.Grid})
	require.NoError(t, err)

	removed, err := svc.RemoveSubject(context.Background(), config.ID, "Math")
	require.NoError(t, err)
	assert.Equal(t, 2, removed)

	payload, err := configs.configs[config.ID].Body()
	require.NoError(t, err)
	require.Len(t, payload.Subjects, 1)
	assert.Equal(t, "English", payload.Subjects[0].Name)

	_, err = svc.RemoveSubject(context.Background(), config.ID, "Math")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestTimetableServiceTeacherClashesCached(t *testing.T) {
	configs := newFakeConfigRepo()
	repo := newFakeTimetableRepo()
	config := seedConfig(t, configs, standardPayload())

	cache := NewCacheService(&stubCacheRepo{}, nil, time.Minute, zap.NewNop(), true)
	svc := newTimetableServiceForTest(configs, repo, cache)

	for _, class := range []string{"1A", "2B"} {
		generated, err := svc.Generate(context.Background(), config.ID, dto.GenerateTimetableRequest{ClassName: class, AutoFill: true})
		require.NoError(t, err)
		_, err = svc.Save(context.Background(), config.ID, dto.SaveTimetableRequest{ClassName: class, Grid: generated.Grid})
		require.NoError(t, err)
	}

	first, err := svc.TeacherClashes(context.Background(), config.ID)
	require.NoError(t, err)
	// Same subjects land in the same cells for both classes, so the shared
	// teachers are double booked.
	assert.False(t, first.Clean)
	listCallsAfterFirst := repo.listCalls

	second, err := svc.TeacherClashes(context.Background(), config.ID)
	require.NoError(t, err)
	assert.Equal(t, first.Findings, second.Findings)
	assert.Equal(t, listCallsAfterFirst, repo.listCalls, "second scan should come from cache")

	// Saving a grid invalidates the cached report.
	generated, err := svc.Generate(context.Background(), config.ID, dto.GenerateTimetableRequest{ClassName: "3C"})
	require.NoError(t, err)
	_, err = svc.Save(context.Background(), config.ID, dto.SaveTimetableRequest{ClassName: "3C", Grid: generated.Grid})
	require.NoError(t, err)

	_, err = svc.TeacherClashes(context.Background(), config.ID)
	require.NoError(t, err)
	assert.Greater(t, repo.listCalls, listCallsAfterFirst)
}

func TestTimetableServiceClashCheckSavedGrid(t *testing.T) {
	configs := newFakeConfigRepo()
	repo := newFakeTimetableRepo()
	config := seedConfig(t, configs, standardPayload())

	svc := newTimetableServiceForTest(configs, repo, nil)
	generated, err := svc.Generate(context.Background(), config.ID, dto.GenerateTimetableRequest{ClassName: "1A", AutoFill: true})
	require.NoError(t, err)
	_, err = svc.Save(context.Background(), config.ID, dto.SaveTimetableRequest{ClassName: "1A", Grid: generated.Grid})
	require.NoError(t, err)

	report, err := svc.ClashCheck(context.Background(), config.ID, dto.ClashCheckRequest{ClassName: "1A"})
	require.NoError(t, err)
	require.NotNil(t, report)

	_, err = svc.ClashCheck(context.Background(), config.ID, dto.ClashCheckRequest{ClassName: "9Z"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}
