package service

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/sncann/timetable-api/internal/dto"
	"github.com/sncann/timetable-api/internal/models"
	"github.com/sncann/timetable-api/internal/timetable"
	appErrors "github.com/sncann/timetable-api/pkg/errors"
	"github.com/sncann/timetable-api/pkg/export"
	"github.com/sncann/timetable-api/pkg/jobs"
	"github.com/sncann/timetable-api/pkg/storage"
)

// ExportConfig tunes the export pipeline.
type ExportConfig struct {
	WorkerConcurrency int
	WorkerRetries     int
	ArtifactTTL       time.Duration
	CleanupInterval   time.Duration
}

// ExportService renders saved timetables to CSV or PDF through a background
// queue and serves the artifacts behind signed URLs. It also round-trips full
// configuration documents as JSON settings.
type ExportService struct {
	configs   configRepository
	repo      timetableRepository
	csv       *export.CSVExporter
	pdf       *export.PDFExporter
	store     *storage.LocalStorage
	signer    *storage.SignedURLSigner
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
	config    ExportConfig

	queue *jobs.Queue

	mu       sync.RWMutex
	jobsByID map[string]*models.ExportJob
}

// NewExportService constructs an ExportService and its worker queue. Call
// Start before enqueueing.
func NewExportService(configs configRepository, repo timetableRepository, store *storage.LocalStorage, signer *storage.SignedURLSigner, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger, cfg ExportConfig) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	if cfg.ArtifactTTL <= 0 {
		cfg.ArtifactTTL = 24 * time.Hour
	}
	s := &ExportService{
		configs:   configs,
		repo:      repo,
		csv:       export.NewCSVExporter(),
		pdf:       export.NewPDFExporter(),
		store:     store,
		signer:    signer,
		metrics:   metrics,
		validator: validate,
		logger:    logger,
		config:    cfg,
		jobsByID:  make(map[string]*models.ExportJob),
	}
	s.queue = jobs.NewQueue("exports", s.handleJob, jobs.QueueConfig{
		Workers:    cfg.WorkerConcurrency,
		MaxRetries: cfg.WorkerRetries,
		Logger:     logger,
	})
	return s
}

// Start launches the worker queue and the artifact cleanup loop.
func (s *ExportService) Start(ctx context.Context) {
	s.queue.Start(ctx)
	if s.config.CleanupInterval > 0 {
		go s.cleanupLoop(ctx)
	}
}

// Stop drains the worker queue.
func (s *ExportService) Stop() {
	s.queue.Stop()
}

// Enqueue schedules an export of a saved timetable and returns the pending job.
func (s *ExportService) Enqueue(ctx context.Context, timetableID string, req dto.ExportRequest) (*models.ExportJob, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid export payload")
	}

	if _, err := s.repo.FindByID(ctx, timetableID); err != nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "timetable not found")
	}

	job := &models.ExportJob{
		ID:          uuid.NewString(),
		TimetableID: timetableID,
		Format:      models.ExportFormat(req.Format),
		Status:      models.ExportJobPending,
		CreatedAt:   time.Now().UTC(),
	}

	s.mu.Lock()
	s.jobsByID[job.ID] = job
	s.mu.Unlock()

	if err := s.queue.Enqueue(jobs.Job{ID: job.ID, Type: "export", Payload: job.ID}); err != nil {
		s.failJob(job.ID, err)
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to enqueue export")
	}
	return s.Job(job.ID)
}

// Job returns a copy of the job record.
func (s *ExportService) Job(id string) (*models.ExportJob, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	job, ok := s.jobsByID[id]
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "export job not found")
	}
	copied := *job
	return &copied, nil
}

// Download validates a signed token and opens the artifact for streaming.
func (s *ExportService) Download(token string) (*os.File, string, error) {
	_, relPath, _, err := s.signer.Parse(token, false)
	if err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrForbidden.Code, appErrors.ErrForbidden.Status, "invalid or expired download token")
	}
	file, err := s.store.Open(relPath)
	if err != nil {
		return nil, "", appErrors.Clone(appErrors.ErrNotFound, "export artifact not found")
	}
	return file, filepath.Base(relPath), nil
}

func (s *ExportService) handleJob(ctx context.Context, job jobs.Job) error {
	jobID, _ := job.Payload.(string)
	if jobID == "" {
		jobID = job.ID
	}

	s.setStatus(jobID, models.ExportJobProcessing, "")

	record, err := s.Job(jobID)
	if err != nil {
		return err
	}

	if err := s.renderJob(ctx, record); err != nil {
		s.failJob(jobID, err)
		s.metrics.RecordExport(string(record.Format), "failed")
		return err
	}
	s.metrics.RecordExport(string(record.Format), "completed")
	return nil
}

func (s *ExportService) renderJob(ctx context.Context, job *models.ExportJob) error {
	record, err := s.repo.FindByID(ctx, job.TimetableID)
	if err != nil {
		return fmt.Errorf("load timetable: %w", err)
	}
	config, err := s.configs.FindByID(ctx, record.ConfigID)
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}
	snap, err := record.Snapshot()
	if err != nil {
		return err
	}

	dataset := BuildDataset(timetable.FromSnapshot(snap), config.ClosingTime)

	var raw []byte
	switch job.Format {
	case models.ExportFormatCSV:
		raw, err = s.csv.Render(dataset)
	case models.ExportFormatPDF:
		title := fmt.Sprintf("%s - %s", config.SchoolName, record.ClassName)
		raw, err = s.pdf.Render(dataset, title)
	default:
		err = fmt.Errorf("unsupported export format %q", job.Format)
	}
	if err != nil {
		return err
	}

	filename := fmt.Sprintf("%s-%s.%s", sanitizeFilename(record.ClassName), job.ID, job.Format)
	relPath, err := s.store.Save(filename, raw)
	if err != nil {
		return fmt.Errorf("store artifact: %w", err)
	}

	token, expiresAt, err := s.signer.Generate(job.ID, relPath)
	if err != nil {
		return fmt.Errorf("sign download url: %w", err)
	}

	now := time.Now().UTC()
	s.mu.Lock()
	if stored, ok := s.jobsByID[job.ID]; ok {
		stored.Status = models.ExportJobCompleted
		stored.FilePath = relPath
		stored.DownloadURL = "/api/v1/exports/download/" + token
		stored.CompletedAt = &now
		stored.ExpiresAt = &expiresAt
		stored.Error = ""
	}
	s.mu.Unlock()

	s.logger.Info("export completed",
		zap.String("jobId", job.ID),
		zap.String("format", string(job.Format)),
		zap.String("file", relPath))
	return nil
}

// ExportSettings produces the full round-trippable document for a
// configuration, saved grids included.
func (s *ExportService) ExportSettings(ctx context.Context, configID string) (*models.SettingsDocument, error) {
	config, err := s.configs.FindByID(ctx, configID)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "configuration not found")
	}
	payload, err := config.Body()
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to decode configuration")
	}

	records, err := s.repo.ListByConfig(ctx, configID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list timetables")
	}

	doc := &models.SettingsDocument{
		SchoolName:       config.SchoolName,
		ClosingTime:      config.ClosingTime,
		Days:             payload.Days,
		PeriodsByDay:     payload.PeriodsByDay,
		Subjects:         payload.Subjects,
		FixedEvents:      payload.FixedEvents,
		FixedAssignments: payload.FixedAssignments,
		Timetables:       make(map[string]timetable.Snapshot, len(records)),
	}
	for i := range records {
		snap, err := records[i].Snapshot()
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to decode grid")
		}
		doc.Timetables[records[i].ClassName] = snap
	}
	return doc, nil
}

// ImportSettings reconstructs a configuration and its saved grids from a
// settings document. A fresh configuration is always created.
func (s *ExportService) ImportSettings(ctx context.Context, doc models.SettingsDocument) (string, error) {
	if strings.TrimSpace(doc.SchoolName) == "" {
		return "", appErrors.Clone(appErrors.ErrValidation, "schoolName is required")
	}
	if len(doc.Days) == 0 {
		return "", appErrors.Clone(appErrors.ErrValidation, "days are required")
	}

	config := &models.ScheduleConfig{
		SchoolName:  doc.SchoolName,
		ClosingTime: doc.ClosingTime,
	}
	if err := config.SetBody(&models.ConfigPayload{
		Days:             doc.Days,
		PeriodsByDay:     doc.PeriodsByDay,
		Subjects:         doc.Subjects,
		FixedEvents:      doc.FixedEvents,
		FixedAssignments: doc.FixedAssignments,
	}); err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to encode configuration")
	}
	if err := s.configs.Create(ctx, config); err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create configuration")
	}

	for className, snap := range doc.Timetables {
		record := &models.Timetable{ConfigID: config.ID, ClassName: className}
		if err := record.SetSnapshot(snap); err != nil {
			return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to encode grid")
		}
		if err := s.repo.Upsert(ctx, record); err != nil {
			return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to import timetable")
		}
	}
	return config.ID, nil
}

// BuildDataset flattens a grid into the tabular export layout: one row per
// day, one column per time range, plus the closing time column.
func BuildDataset(grid *timetable.Grid, closingTime string) export.Dataset {
	rows := grid.Rows()
	headers := make([]string, 0, len(rows)+2)
	headers = append(headers, "Days")
	for _, row := range rows {
		headers = append(headers, fmt.Sprintf("%s - %s", row.Start, row.End))
	}
	if closingTime != "" {
		headers = append(headers, "Closing")
	}

	dataset := export.Dataset{Headers: headers}
	for _, day := range grid.Days() {
		record := map[string]string{"Days": day}
		for idx := range rows {
			cell, ok := grid.CellAt(day, idx)
			if !ok {
				continue
			}
			record[headers[idx+1]] = cell.Display()
		}
		if closingTime != "" {
			record["Closing"] = closingTime
		}
		dataset.Rows = append(dataset.Rows, record)
	}
	return dataset
}

func (s *ExportService) setStatus(jobID string, status models.ExportJobStatus, errMsg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if job, ok := s.jobsByID[jobID]; ok {
		job.Status = status
		job.Error = errMsg
	}
}

func (s *ExportService) failJob(jobID string, err error) {
	now := time.Now().UTC()
	s.mu.Lock()
	defer s.mu.Unlock()
	if job, ok := s.jobsByID[jobID]; ok {
		job.Status = models.ExportJobFailed
		job.Error = err.Error()
		job.CompletedAt = &now
	}
}

func (s *ExportService) cleanupLoop(ctx context.Context) {
	ticker := time.NewTicker(s.config.CleanupInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			removed, err := s.store.CleanupOlderThan(s.config.ArtifactTTL)
			if err != nil {
				s.logger.Warn("export cleanup failed", zap.Error(err))
				continue
			}
			s.pruneJobs()
			if len(removed) > 0 {
				s.logger.Info("expired export artifacts removed", zap.Int("count", len(removed)))
			}
		}
	}
}

func (s *ExportService) pruneJobs() {
	cutoff := time.Now().UTC().Add(-s.config.ArtifactTTL)
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, job := range s.jobsByID {
		if job.CreatedAt.Before(cutoff) {
			delete(s.jobsByID, id)
		}
	}
}

func sanitizeFilename(name string) string {
	cleaned := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		default:
			return '-'
		}
	}, name)
	return strings.Trim(cleaned, "-")
}
