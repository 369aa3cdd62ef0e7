package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/sncann/timetable-api/internal/dto"
	"github.com/sncann/timetable-api/internal/models"
	appErrors "github.com/sncann/timetable-api/pkg/errors"
)

type configRepository interface {
	List(ctx context.Context, search string, page, limit int) ([]models.ScheduleConfig, int, error)
	FindByID(ctx context.Context, id string) (*models.ScheduleConfig, error)
	Create(ctx context.Context, config *models.ScheduleConfig) error
	Update(ctx context.Context, config *models.ScheduleConfig) error
	Delete(ctx context.Context, id string) error
}

// ConfigService manages schedule configurations.
type ConfigService struct {
	repo      configRepository
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewConfigService constructs a ConfigService.
func NewConfigService(repo configRepository, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *ConfigService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &ConfigService{repo: repo, cache: cache, validator: validate, logger: logger}
}

// List returns configurations matching the query.
func (s *ConfigService) List(ctx context.Context, query dto.ConfigQuery) ([]dto.ConfigResponse, *models.Pagination, error) {
	page := query.Page
	if page < 1 {
		page = 1
	}
	limit := query.Limit
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	configs, total, err := s.repo.List(ctx, query.Search, page, limit)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list configurations")
	}

	responses := make([]dto.ConfigResponse, 0, len(configs))
	for i := range configs {
		resp, err := toConfigResponse(&configs[i])
		if err != nil {
			return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to decode configuration")
		}
		responses = append(responses, *resp)
	}

	pagination := &models.Pagination{Page: page, PageSize: limit, TotalCount: total}
	return responses, pagination, nil
}

// Get returns one configuration by ID.
func (s *ConfigService) Get(ctx context.Context, id string) (*dto.ConfigResponse, error) {
	config, err := s.findConfig(ctx, id)
	if err != nil {
		return nil, err
	}
	resp, err := toConfigResponse(config)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to decode configuration")
	}
	return resp, nil
}

// Create stores a new configuration.
func (s *ConfigService) Create(ctx context.Context, req dto.SaveConfigRequest) (*dto.ConfigResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid configuration payload")
	}

	config := &models.ScheduleConfig{
		SchoolName:  req.SchoolName,
		ClosingTime: req.ClosingTime,
	}
	if err := config.SetBody(payloadFromRequest(req)); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to encode configuration")
	}

	if err := s.repo.Create(ctx, config); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create configuration")
	}

	return toConfigResponse(config)
}

// Update replaces an existing configuration and drops derived caches.
func (s *ConfigService) Update(ctx context.Context, id string, req dto.SaveConfigRequest) (*dto.ConfigResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid configuration payload")
	}

	config, err := s.findConfig(ctx, id)
	if err != nil {
		return nil, err
	}

	config.SchoolName = req.SchoolName
	config.ClosingTime = req.ClosingTime
	if err := config.SetBody(payloadFromRequest(req)); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to encode configuration")
	}

	if err := s.repo.Update(ctx, config); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update configuration")
	}

	s.invalidateClashCache(ctx, id)
	return toConfigResponse(config)
}

// Delete removes a configuration. Saved timetables go with it via FK cascade.
func (s *ConfigService) Delete(ctx context.Context, id string) error {
	if _, err := s.findConfig(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete configuration")
	}
	s.invalidateClashCache(ctx, id)
	return nil
}

func (s *ConfigService) findConfig(ctx context.Context, id string) (*models.ScheduleConfig, error) {
	config, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "configuration not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load configuration")
	}
	return config, nil
}

func (s *ConfigService) invalidateClashCache(ctx context.Context, configID string) {
	if !s.cache.Enabled() {
		return
	}
	if err := s.cache.Invalidate(ctx, clashCachePattern(configID)); err != nil {
		s.logger.Warn("failed to invalidate clash cache", zap.String("configId", configID), zap.Error(err))
	}
}

func payloadFromRequest(req dto.SaveConfigRequest) *models.ConfigPayload {
	return &models.ConfigPayload{
		Days:             req.Days,
		PeriodsByDay:     req.Periods(),
		Subjects:         req.CoreSubjects(),
		FixedEvents:      req.CoreFixedEvents(),
		FixedAssignments: req.CoreFixedAssignments(),
	}
}

func toConfigResponse(config *models.ScheduleConfig) (*dto.ConfigResponse, error) {
	payload, err := config.Body()
	if err != nil {
		return nil, err
	}
	return &dto.ConfigResponse{
		ID:               config.ID,
		SchoolName:       config.SchoolName,
		ClosingTime:      config.ClosingTime,
		Days:             payload.Days,
		PeriodsByDay:     payload.PeriodsByDay,
		Subjects:         payload.Subjects,
		FixedEvents:      payload.FixedEvents,
		FixedAssignments: payload.FixedAssignments,
	}, nil
}
