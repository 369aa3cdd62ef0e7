package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sncann/timetable-api/internal/dto"
	"github.com/sncann/timetable-api/internal/timetable"
	appErrors "github.com/sncann/timetable-api/pkg/errors"
)

type timetableServiceMock struct {
	generateResp *dto.GenerateTimetableResponse
	generateErr  error
	updateErr    error
	removed      int
}

func (m *timetableServiceMock) Generate(ctx context.Context, configID string, req dto.GenerateTimetableRequest) (*dto.GenerateTimetableResponse, error) {
	if m.generateErr != nil {
		return nil, m.generateErr
	}
	return m.generateResp, nil
}

func (m *timetableServiceMock) Save(ctx context.Context, configID string, req dto.SaveTimetableRequest) (*dto.TimetableResponse, error) {
	return &dto.TimetableResponse{ID: "tt-1", ConfigID: configID, ClassName: req.ClassName, Grid: req.Grid}, nil
}

func (m *timetableServiceMock) List(ctx context.Context, configID string) ([]dto.TimetableResponse, error) {
	return nil, nil
}

func (m *timetableServiceMock) Get(ctx context.Context, id string) (*dto.TimetableResponse, error) {
	return nil, appErrors.Clone(appErrors.ErrNotFound, "timetable not found")
}

func (m *timetableServiceMock) Delete(ctx context.Context, id string) error {
	return nil
}

func (m *timetableServiceMock) UpdateCell(ctx context.Context, id string, req dto.CellEditRequest) (*dto.TimetableResponse, error) {
	if m.updateErr != nil {
		return nil, m.updateErr
	}
	return &dto.TimetableResponse{ID: id}, nil
}

func (m *timetableServiceMock) RemoveSubject(ctx context.Context, configID, subjectName string) (int, error) {
	return m.removed, nil
}

func (m *timetableServiceMock) ClashCheck(ctx context.Context, configID string, req dto.ClashCheckRequest) (*dto.ClashReport, error) {
	return &dto.ClashReport{Clean: true}, nil
}

func (m *timetableServiceMock) TeacherClashes(ctx context.Context, configID string) (*dto.ClashReport, error) {
	return &dto.ClashReport{Clean: true}, nil
}

func newTestContext(t *testing.T, method, path string, payload interface{}) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	var body bytes.Buffer
	if payload != nil {
		require.NoError(t, json.NewEncoder(&body).Encode(payload))
	}
	req, err := http.NewRequest(method, path, &body)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	return c, w
}

func TestTimetableHandlerGenerate(t *testing.T) {
	mock := &timetableServiceMock{
		generateResp: &dto.GenerateTimetableResponse{
			ClassName: "1A",
			Findings:  []timetable.Finding{{Kind: timetable.FindingHoursExceeded, Subject: "Math"}},
		},
	}
	handler := NewTimetableHandler(mock)

	c, w := newTestContext(t, http.MethodPost, "/configs/cfg-1/timetables/generate", dto.GenerateTimetableRequest{ClassName: "1A", AutoFill: true})
	c.Params = gin.Params{{Key: "id", Value: "cfg-1"}}

	handler.Generate(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "HOURS_EXCEEDED")
}

func TestTimetableHandlerGenerateInvalidBody(t *testing.T) {
	handler := NewTimetableHandler(&timetableServiceMock{})
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPost, "/configs/cfg-1/timetables/generate", bytes.NewReader([]byte(`not json`)))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req

	handler.Generate(c)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestTimetableHandlerGenerateNoSlots(t *testing.T) {
	mock := &timetableServiceMock{
		generateErr: appErrors.Clone(appErrors.ErrNoSlotsDefined, "configuration defines no time slots"),
	}
	handler := NewTimetableHandler(mock)

	c, w := newTestContext(t, http.MethodPost, "/configs/cfg-1/timetables/generate", dto.GenerateTimetableRequest{ClassName: "1A"})
	c.Params = gin.Params{{Key: "id", Value: "cfg-1"}}

	handler.Generate(c)
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, w.Body.String(), "NO_SLOTS_DEFINED")
}

func TestTimetableHandlerUpdateCellFixed(t *testing.T) {
	mock := &timetableServiceMock{
		updateErr: appErrors.Clone(appErrors.ErrFixedCell, "cell at Monday row 0 is fixed"),
	}
	handler := NewTimetableHandler(mock)

	c, w := newTestContext(t, http.MethodPatch, "/timetables/tt-1/cells", dto.CellEditRequest{Day: "Monday", Row: 0, Text: "Math"})
	c.Params = gin.Params{{Key: "id", Value: "tt-1"}}

	handler.UpdateCell(c)
	require.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "FIXED_CELL")
}

func TestTimetableHandlerRemoveSubject(t *testing.T) {
	handler := NewTimetableHandler(&timetableServiceMock{removed: 3})

	c, w := newTestContext(t, http.MethodDelete, "/configs/cfg-1/subjects/Math", nil)
	c.Params = gin.Params{{Key: "id", Value: "cfg-1"}, {Key: "name", Value: "Math"}}

	handler.RemoveSubject(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"cellsCleared":3`)
}
