package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sncann/timetable-api/internal/dto"
	appErrors "github.com/sncann/timetable-api/pkg/errors"
	"github.com/sncann/timetable-api/pkg/response"
)

type timetableService interface {
	Generate(ctx context.Context, configID string, req dto.GenerateTimetableRequest) (*dto.GenerateTimetableResponse, error)
	Save(ctx context.Context, configID string, req dto.SaveTimetableRequest) (*dto.TimetableResponse, error)
	List(ctx context.Context, configID string) ([]dto.TimetableResponse, error)
	Get(ctx context.Context, id string) (*dto.TimetableResponse, error)
	Delete(ctx context.Context, id string) error
	UpdateCell(ctx context.Context, id string, req dto.CellEditRequest) (*dto.TimetableResponse, error)
	RemoveSubject(ctx context.Context, configID, subjectName string) (int, error)
	ClashCheck(ctx context.Context, configID string, req dto.ClashCheckRequest) (*dto.ClashReport, error)
	TeacherClashes(ctx context.Context, configID string) (*dto.ClashReport, error)
}

// TimetableHandler exposes grid generation and saved timetable endpoints.
type TimetableHandler struct {
	service timetableService
}

// NewTimetableHandler builds a new handler.
func NewTimetableHandler(service timetableService) *TimetableHandler {
	return &TimetableHandler{service: service}
}

// Generate godoc
// @Summary Generate a class timetable
// @Tags Timetables
// @Accept json
// @Produce json
// @Param id path string true "Configuration ID"
// @Param payload body dto.GenerateTimetableRequest true "Generation payload"
// @Success 200 {object} response.Envelope
// @Router /configs/{id}/timetables/generate [post]
func (h *TimetableHandler) Generate(c *gin.Context) {
	var req dto.GenerateTimetableRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid generate payload"))
		return
	}
	result, err := h.service.Generate(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// Save godoc
// @Summary Save a class timetable
// @Tags Timetables
// @Accept json
// @Produce json
// @Param id path string true "Configuration ID"
// @Param payload body dto.SaveTimetableRequest true "Timetable payload"
// @Success 201 {object} response.Envelope
// @Router /configs/{id}/timetables [post]
func (h *TimetableHandler) Save(c *gin.Context) {
	var req dto.SaveTimetableRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid timetable payload"))
		return
	}
	result, err := h.service.Save(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, result)
}

// List godoc
// @Summary List saved timetables for a configuration
// @Tags Timetables
// @Produce json
// @Param id path string true "Configuration ID"
// @Success 200 {object} response.Envelope
// @Router /configs/{id}/timetables [get]
func (h *TimetableHandler) List(c *gin.Context) {
	items, err := h.service.List(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, nil)
}

// Get godoc
// @Summary Get a saved timetable
// @Tags Timetables
// @Produce json
// @Param id path string true "Timetable ID"
// @Success 200 {object} response.Envelope
// @Router /timetables/{id} [get]
func (h *TimetableHandler) Get(c *gin.Context) {
	item, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, item, nil)
}

// Delete godoc
// @Summary Delete a saved timetable
// @Tags Timetables
// @Param id path string true "Timetable ID"
// @Success 204
// @Router /timetables/{id} [delete]
func (h *TimetableHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// UpdateCell godoc
// @Summary Edit one cell of a saved timetable
// @Tags Timetables
// @Accept json
// @Produce json
// @Param id path string true "Timetable ID"
// @Param payload body dto.CellEditRequest true "Cell payload"
// @Success 200 {object} response.Envelope
// @Router /timetables/{id}/cells [patch]
func (h *TimetableHandler) UpdateCell(c *gin.Context) {
	var req dto.CellEditRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid cell payload"))
		return
	}
	item, err := h.service.UpdateCell(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, item, nil)
}

// RemoveSubject godoc
// @Summary Remove a subject and cascade it out of saved grids
// @Tags Configs
// @Produce json
// @Param id path string true "Configuration ID"
// @Param name path string true "Subject name"
// @Success 200 {object} response.Envelope
// @Router /configs/{id}/subjects/{name} [delete]
func (h *TimetableHandler) RemoveSubject(c *gin.Context) {
	removed, err := h.service.RemoveSubject(c.Request.Context(), c.Param("id"), c.Param("name"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"cellsCleared": removed}, nil)
}

// ClashCheck godoc
// @Summary Scan one class grid for clashes
// @Tags Clashes
// @Accept json
// @Produce json
// @Param id path string true "Configuration ID"
// @Param payload body dto.ClashCheckRequest true "Clash check payload"
// @Success 200 {object} response.Envelope
// @Router /configs/{id}/clashes/check [post]
func (h *TimetableHandler) ClashCheck(c *gin.Context) {
	var req dto.ClashCheckRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid clash check payload"))
		return
	}
	report, err := h.service.ClashCheck(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, report, nil)
}

// TeacherClashes godoc
// @Summary Scan all saved grids for teacher double bookings
// @Tags Clashes
// @Produce json
// @Param id path string true "Configuration ID"
// @Success 200 {object} response.Envelope
// @Router /configs/{id}/clashes/teachers [get]
func (h *TimetableHandler) TeacherClashes(c *gin.Context) {
	report, err := h.service.TeacherClashes(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, report, nil)
}
