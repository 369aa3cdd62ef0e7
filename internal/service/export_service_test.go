package service

import (
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/sncann/timetable-api/internal/dto"
	"github.com/sncann/timetable-api/internal/models"
	"github.com/sncann/timetable-api/internal/timetable"
	"github.com/sncann/timetable-api/pkg/jobs"
	"github.com/sncann/timetable-api/pkg/storage"
)

func newExportServiceForTest(t *testing.T, configs *fakeConfigRepo, repo *fakeTimetableRepo) *ExportService {
	t.Helper()
	store, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	signer := storage.NewSignedURLSigner("test-secret", time.Hour)
	return NewExportService(configs, repo, store, signer, nil, nil, zap.NewNop(), ExportConfig{
		WorkerConcurrency: 1,
		WorkerRetries:     1,
		ArtifactTTL:       time.Hour,
	})
}

func seedSavedTimetable(t *testing.T, configs *fakeConfigRepo, repo *fakeTimetableRepo) (*models.ScheduleConfig, *models.Timetable) {
	t.Helper()
	config := seedConfig(t, configs, standardPayload())
	payload, err := config.Body()
	require.NoError(t, err)

	grid, err := timetable.BuildGrid(payload.Days, payload.PeriodsByDay)
	require.NoError(t, err)
	grid.AutoFill(payload.Subjects)

	record := &models.Timetable{ConfigID: config.ID, ClassName: "1A"}
	require.NoError(t, record.SetSnapshot(grid.Snapshot()))
	require.NoError(t, repo.Upsert(context.Background(), record))
	return config, record
}

func TestBuildDatasetLayout(t *testing.T) {
	payload := standardPayload()
	grid, err := timetable.BuildGrid(payload.Days, payload.PeriodsByDay)
	require.NoError(t, err)
	require.NoError(t, grid.SetCell("Monday", 0, timetable.Cell{Text: "Math", Teacher: "Mr. Mensah"}))

	dataset := BuildDataset(grid, "2:00 PM")
	require.Equal(t, []string{"Days", "8:00 AM - 9:00 AM", "9:00 AM - 10:00 AM", "Closing"}, dataset.Headers)
	require.Len(t, dataset.Rows, 2)
	assert.Equal(t, "Monday", dataset.Rows[0]["Days"])
	assert.Equal(t, "Math (Mr. Mensah)", dataset.Rows[0]["8:00 AM - 9:00 AM"])
	assert.Equal(t, "2:00 PM", dataset.Rows[0]["Closing"])
	assert.Equal(t, "Tuesday", dataset.Rows[1]["Days"])
	assert.Equal(t, "", dataset.Rows[1]["8:00 AM - 9:00 AM"])
}

func TestExportServiceRenderAndDownload(t *testing.T) {
	configs := newFakeConfigRepo()
	repo := newFakeTimetableRepo()
	_, record := seedSavedTimetable(t, configs, repo)

	svc := newExportServiceForTest(t, configs, repo)
	job := &models.ExportJob{
		ID:          "job-1",
		TimetableID: record.ID,
		Format:      models.ExportFormatCSV,
		Status:      models.ExportJobPending,
		CreatedAt:   time.Now().UTC(),
	}
	svc.mu.Lock()
	svc.jobsByID[job.ID] = job
	svc.mu.Unlock()

	require.NoError(t, svc.handleJob(context.Background(), jobs.Job{ID: job.ID, Payload: job.ID}))

	stored, err := svc.Job(job.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ExportJobCompleted, stored.Status)
	require.NotEmpty(t, stored.DownloadURL)
	require.NotNil(t, stored.ExpiresAt)

	token := strings.TrimPrefix(stored.DownloadURL, "/api/v1/exports/download/")
	file, name, err := svc.Download(token)
	require.NoError(t, err)
	defer file.Close()
	assert.True(t, strings.HasSuffix(name, ".csv"))

	raw, err := io.ReadAll(file)
	require.NoError(t, err)
	content := string(raw)
	assert.Contains(t, content, "Days")
	assert.Contains(t, content, "Monday")
	assert.Contains(t, content, "Closing")
}

func TestExportServiceRenderPDF(t *testing.T) {
	configs := newFakeConfigRepo()
	repo := newFakeTimetableRepo()
	_, record := seedSavedTimetable(t, configs, repo)

	svc := newExportServiceForTest(t, configs, repo)
	job := &models.ExportJob{
		ID:          "job-pdf",
		TimetableID: record.ID,
		Format:      models.ExportFormatPDF,
		Status:      models.ExportJobPending,
		CreatedAt:   time.Now().UTC(),
	}
	svc.mu.Lock()
	svc.jobsByID[job.ID] = job
	svc.mu.Unlock()

	require.NoError(t, svc.handleJob(context.Background(), jobs.Job{ID: job.ID, Payload: job.ID}))
	stored, err := svc.Job(job.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ExportJobCompleted, stored.Status)
}

func TestExportServiceDownloadRejectsForgedToken(t *testing.T) {
	svc := newExportServiceForTest(t, newFakeConfigRepo(), newFakeTimetableRepo())
	_, _, err := svc.Download("forged.token.value.signature")
	require.Error(t, err)
}

func TestExportServiceSettingsRoundTrip(t *testing.T) {
	configs := newFakeConfigRepo()
	repo := newFakeTimetableRepo()
	config, _ := seedSavedTimetable(t, configs, repo)

	svc := newExportServiceForTest(t, configs, repo)
	doc, err := svc.ExportSettings(context.Background(), config.ID)
	require.NoError(t, err)
	assert.Equal(t, "Accra Academy", doc.SchoolName)
	assert.Equal(t, "2:00 PM", doc.ClosingTime)
	require.Contains(t, doc.Timetables, "1A")

	importedID, err := svc.ImportSettings(context.Background(), *doc)
	require.NoError(t, err)
	require.NotEqual(t, config.ID, importedID)

	reimported, err := svc.ExportSettings(context.Background(), importedID)
	require.NoError(t, err)
	assert.Equal(t, doc.SchoolName, reimported.SchoolName)
	assert.Equal(t, doc.Subjects, reimported.Subjects)
	assert.Equal(t, doc.Timetables, reimported.Timetables)
}

func TestExportServiceEnqueueUnknownTimetable(t *testing.T) {
	svc := newExportServiceForTest(t, newFakeConfigRepo(), newFakeTimetableRepo())
	_, err := svc.Enqueue(context.Background(), "missing", dto.ExportRequest{Format: "csv"})
	require.Error(t, err)
}
