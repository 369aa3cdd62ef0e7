package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/sncann/timetable-api/internal/dto"
	"github.com/sncann/timetable-api/internal/models"
	"github.com/sncann/timetable-api/internal/timetable"
	appErrors "github.com/sncann/timetable-api/pkg/errors"
)

type timetableRepository interface {
	ListByConfig(ctx context.Context, configID string) ([]models.Timetable, error)
	FindByID(ctx context.Context, id string) (*models.Timetable, error)
	Upsert(ctx context.Context, record *models.Timetable) error
	UpdateGrid(ctx context.Context, id string, grid []byte) error
	Delete(ctx context.Context, id string) error
}

// TimetableService runs the generation pipeline and manages saved grids.
type TimetableService struct {
	configs   configRepository
	repo      timetableRepository
	cache     *CacheService
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
	clashTTL  time.Duration
	slotCap   int
}

// NewTimetableService constructs a TimetableService. A slotCap of zero or
// less uses the default grid bound.
func NewTimetableService(configs configRepository, repo timetableRepository, cache *CacheService, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger, clashTTL time.Duration, slotCap int) *TimetableService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &TimetableService{
		configs:   configs,
		repo:      repo,
		cache:     cache,
		metrics:   metrics,
		validator: validate,
		logger:    logger,
		clashTTL:  clashTTL,
		slotCap:   slotCap,
	}
}

// Generate builds a class grid from its configuration: slot validation, grid
// build, fixed events, fixed assignments, then optional auto-fill. The result
// is returned with advisory findings and is not persisted.
func (s *TimetableService) Generate(ctx context.Context, configID string, req dto.GenerateTimetableRequest) (*dto.GenerateTimetableResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid generate payload")
	}

	payload, err := s.loadPayload(ctx, configID)
	if err != nil {
		return nil, err
	}

	findings := timetable.ValidateTimeSlots(payload.Days, payload.PeriodsByDay)

	grid, err := timetable.BuildGridWithCap(payload.Days, payload.PeriodsByDay, s.slotCap)
	if err != nil {
		if errors.Is(err, timetable.ErrNoSlotsDefined) {
			return nil, appErrors.Clone(appErrors.ErrNoSlotsDefined, "configuration defines no time slots")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to build grid")
	}

	grid.ApplyFixedEvents(payload.FixedEvents)
	grid.ApplyFixedAssignments(req.ClassName, payload.FixedAssignments)

	if req.AutoFill {
		grid.AutoFill(payload.Subjects)
	}

	findings = append(findings, timetable.CheckSingleClass(grid, payload.Subjects)...)

	s.metrics.RecordGeneration(req.AutoFill)
	s.logger.Info("timetable generated",
		zap.String("configId", configID),
		zap.String("class", req.ClassName),
		zap.Bool("autofill", req.AutoFill),
		zap.Int("findings", len(findings)))

	return &dto.GenerateTimetableResponse{
		ClassName: req.ClassName,
		Grid:      grid.Snapshot(),
		Findings:  findings,
	}, nil
}

// Save persists a class grid, replacing any earlier save for the same class.
func (s *TimetableService) Save(ctx context.Context, configID string, req dto.SaveTimetableRequest) (*dto.TimetableResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid save payload")
	}

	if _, err := s.loadConfig(ctx, configID); err != nil {
		return nil, err
	}

	record := &models.Timetable{ConfigID: configID, ClassName: req.ClassName}
	if err := record.SetSnapshot(req.Grid); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to encode grid")
	}

	if err := s.repo.Upsert(ctx, record); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save timetable")
	}

	s.invalidateClashCache(ctx, configID)
	return toTimetableResponse(record)
}

// List returns every saved timetable for a configuration.
func (s *TimetableService) List(ctx context.Context, configID string) ([]dto.TimetableResponse, error) {
	records, err := s.repo.ListByConfig(ctx, configID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list timetables")
	}
	responses := make([]dto.TimetableResponse, 0, len(records))
	for i := range records {
		resp, err := toTimetableResponse(&records[i])
		if err != nil {
			return nil, err
		}
		responses = append(responses, *resp)
	}
	return responses, nil
}

// Get returns one saved timetable.
func (s *TimetableService) Get(ctx context.Context, id string) (*dto.TimetableResponse, error) {
	record, err := s.findTimetable(ctx, id)
	if err != nil {
		return nil, err
	}
	return toTimetableResponse(record)
}

// Delete removes a saved timetable.
func (s *TimetableService) Delete(ctx context.Context, id string) error {
	record, err := s.findTimetable(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete timetable")
	}
	s.invalidateClashCache(ctx, record.ConfigID)
	return nil
}

// UpdateCell writes one cell of a saved grid. Fixed cells reject the edit;
// an empty Text clears the cell.
func (s *TimetableService) UpdateCell(ctx context.Context, id string, req dto.CellEditRequest) (*dto.TimetableResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid cell edit payload")
	}

	record, err := s.findTimetable(ctx, id)
	if err != nil {
		return nil, err
	}

	snap, err := record.Snapshot()
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to decode grid")
	}
	grid := timetable.FromSnapshot(snap)

	cell := timetable.Cell{Text: req.Text, Teacher: req.Teacher}
	if req.Text == "" {
		cell = timetable.Cell{}
	}
	if err := grid.SetCell(req.Day, req.Row, cell); err != nil {
		current, ok := grid.CellAt(req.Day, req.Row)
		if ok && current.Fixed {
			return nil, appErrors.Clone(appErrors.ErrFixedCell, fmt.Sprintf("cell at %s row %d is fixed", req.Day, req.Row))
		}
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "no such grid cell")
	}

	if err := record.SetSnapshot(grid.Snapshot()); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to encode grid")
	}
	if err := s.repo.UpdateGrid(ctx, id, record.Grid); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to persist cell edit")
	}

	s.invalidateClashCache(ctx, record.ConfigID)
	return toTimetableResponse(record)
}

// RemoveSubject drops a subject from the configuration and cascades its
// placements out of every saved grid. Fixed cells are left alone. Returns how
// many cells were cleared.
func (s *TimetableService) RemoveSubject(ctx context.Context, configID, subjectName string) (int, error) {
	name := strings.TrimSpace(subjectName)
	if name == "" {
		return 0, appErrors.Clone(appErrors.ErrValidation, "subject name is required")
	}

	config, err := s.loadConfig(ctx, configID)
	if err != nil {
		return 0, err
	}
	payload, err := config.Body()
	if err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to decode configuration")
	}

	kept := payload.Subjects[:0]
	found := false
	for _, subject := range payload.Subjects {
		if subject.Name == name {
			found = true
			continue
		}
		kept = append(kept, subject)
	}
	if !found {
		return 0, appErrors.Clone(appErrors.ErrNotFound, "subject not found in configuration")
	}
	payload.Subjects = kept

	if err := config.SetBody(payload); err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to encode configuration")
	}
	if err := s.configs.Update(ctx, config); err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update configuration")
	}

	records, err := s.repo.ListByConfig(ctx, configID)
	if err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list timetables")
	}

	removed := 0
	for i := range records {
		snap, err := records[i].Snapshot()
		if err != nil {
			return removed, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to decode grid")
		}
		grid := timetable.FromSnapshot(snap)
		cleared := grid.ClearSubject(name)
		if cleared == 0 {
			continue
		}
		if err := records[i].SetSnapshot(grid.Snapshot()); err != nil {
			return removed, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to encode grid")
		}
		if err := s.repo.UpdateGrid(ctx, records[i].ID, records[i].Grid); err != nil {
			return removed, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to persist cascade")
		}
		removed += cleared
	}

	s.invalidateClashCache(ctx, configID)
	s.logger.Info("subject removed",
		zap.String("configId", configID),
		zap.String("subject", name),
		zap.Int("cellsCleared", removed))
	return removed, nil
}

// ClashCheck scans a single class grid against its configuration's subjects.
// When the request carries no grid the saved timetable for the class is used.
func (s *TimetableService) ClashCheck(ctx context.Context, configID string, req dto.ClashCheckRequest) (*dto.ClashReport, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid clash check payload")
	}

	payload, err := s.loadPayload(ctx, configID)
	if err != nil {
		return nil, err
	}

	var snap timetable.Snapshot
	if req.Grid != nil {
		snap = *req.Grid
	} else {
		record, err := s.findSavedByClass(ctx, configID, req.ClassName)
		if err != nil {
			return nil, err
		}
		snap, err = record.Snapshot()
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to decode grid")
		}
	}

	grid := timetable.FromSnapshot(snap)
	findings := timetable.CheckSingleClass(grid, payload.Subjects)
	return &dto.ClashReport{Findings: findings, Clean: len(findings) == 0}, nil
}

// TeacherClashes scans every saved grid of a configuration for teachers
// booked into overlapping slots of different classes on the same day. Results
// are cached until a grid or the configuration changes.
func (s *TimetableService) TeacherClashes(ctx context.Context, configID string) (*dto.ClashReport, error) {
	cacheKey := clashCacheKey(configID)
	if s.cache.Enabled() {
		var cached dto.ClashReport
		if hit, err := s.cache.Get(ctx, cacheKey, &cached); err != nil {
			s.logger.Warn("clash cache read failed", zap.Error(err))
		} else if hit {
			return &cached, nil
		}
	}

	if _, err := s.loadConfig(ctx, configID); err != nil {
		return nil, err
	}

	records, err := s.repo.ListByConfig(ctx, configID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list timetables")
	}

	grids := make(map[string]*timetable.Grid, len(records))
	for i := range records {
		snap, err := records[i].Snapshot()
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to decode grid")
		}
		grids[records[i].ClassName] = timetable.FromSnapshot(snap)
	}

	findings := timetable.CheckTeacherClashes(grids)
	report := &dto.ClashReport{Findings: findings, Clean: len(findings) == 0}

	if s.cache.Enabled() {
		if err := s.cache.Set(ctx, cacheKey, report, s.clashTTL); err != nil {
			s.logger.Warn("clash cache write failed", zap.Error(err))
		}
	}
	return report, nil
}

func (s *TimetableService) loadConfig(ctx context.Context, configID string) (*models.ScheduleConfig, error) {
	config, err := s.configs.FindByID(ctx, configID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "configuration not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load configuration")
	}
	return config, nil
}

func (s *TimetableService) loadPayload(ctx context.Context, configID string) (*models.ConfigPayload, error) {
	config, err := s.loadConfig(ctx, configID)
	if err != nil {
		return nil, err
	}
	payload, err := config.Body()
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to decode configuration")
	}
	return payload, nil
}

func (s *TimetableService) findTimetable(ctx context.Context, id string) (*models.Timetable, error) {
	record, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "timetable not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load timetable")
	}
	return record, nil
}

func (s *TimetableService) findSavedByClass(ctx context.Context, configID, className string) (*models.Timetable, error) {
	records, err := s.repo.ListByConfig(ctx, configID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list timetables")
	}
	for i := range records {
		if records[i].ClassName == className {
			return &records[i], nil
		}
	}
	return nil, appErrors.Clone(appErrors.ErrNotFound, "no saved timetable for class")
}

func (s *TimetableService) invalidateClashCache(ctx context.Context, configID string) {
	if !s.cache.Enabled() {
		return
	}
	if err := s.cache.Invalidate(ctx, clashCachePattern(configID)); err != nil {
		s.logger.Warn("failed to invalidate clash cache", zap.String("configId", configID), zap.Error(err))
	}
}

func clashCacheKey(configID string) string {
	return fmt.Sprintf("clash:%s:teachers", configID)
}

func clashCachePattern(configID string) string {
	return fmt.Sprintf("clash:%s:*", configID)
}

func toTimetableResponse(record *models.Timetable) (*dto.TimetableResponse, error) {
	snap, err := record.Snapshot()
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to decode grid")
	}
	return &dto.TimetableResponse{
		ID:        record.ID,
		ConfigID:  record.ConfigID,
		ClassName: record.ClassName,
		Grid:      snap,
	}, nil
}
