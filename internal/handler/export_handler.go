package handler

import (
	"context"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"

	"github.com/sncann/timetable-api/internal/dto"
	"github.com/sncann/timetable-api/internal/models"
	appErrors "github.com/sncann/timetable-api/pkg/errors"
	"github.com/sncann/timetable-api/pkg/response"
)

type exportService interface {
	Enqueue(ctx context.Context, timetableID string, req dto.ExportRequest) (*models.ExportJob, error)
	Job(id string) (*models.ExportJob, error)
	Download(token string) (*os.File, string, error)
	ExportSettings(ctx context.Context, configID string) (*models.SettingsDocument, error)
	ImportSettings(ctx context.Context, doc models.SettingsDocument) (string, error)
}

// ExportHandler exposes export job and settings endpoints.
type ExportHandler struct {
	service exportService
}

// NewExportHandler builds a new handler.
func NewExportHandler(service exportService) *ExportHandler {
	return &ExportHandler{service: service}
}

// Enqueue godoc
// @Summary Queue a timetable export
// @Tags Exports
// @Accept json
// @Produce json
// @Param id path string true "Timetable ID"
// @Param payload body dto.ExportRequest true "Export payload"
// @Success 202 {object} response.Envelope
// @Router /timetables/{id}/exports [post]
func (h *ExportHandler) Enqueue(c *gin.Context) {
	var req dto.ExportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid export payload"))
		return
	}
	job, err := h.service.Enqueue(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusAccepted, job, nil)
}

// Job godoc
// @Summary Get export job status
// @Tags Exports
// @Produce json
// @Param id path string true "Job ID"
// @Success 200 {object} response.Envelope
// @Router /exports/{id} [get]
func (h *ExportHandler) Job(c *gin.Context) {
	job, err := h.service.Job(c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, job, nil)
}

// Download godoc
// @Summary Download an export artifact via signed token
// @Tags Exports
// @Produce octet-stream
// @Param token path string true "Signed download token"
// @Success 200
// @Router /exports/download/{token} [get]
func (h *ExportHandler) Download(c *gin.Context) {
	file, name, err := h.service.Download(c.Param("token"))
	if err != nil {
		response.Error(c, err)
		return
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to read artifact"))
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+name+`"`)
	c.DataFromReader(http.StatusOK, info.Size(), "application/octet-stream", file, nil)
}

// ExportSettings godoc
// @Summary Export a configuration with its saved grids as JSON
// @Tags Settings
// @Produce json
// @Param id path string true "Configuration ID"
// @Success 200 {object} models.SettingsDocument
// @Router /configs/{id}/settings [get]
func (h *ExportHandler) ExportSettings(c *gin.Context) {
	doc, err := h.service.ExportSettings(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="timetable-settings.json"`)
	c.JSON(http.StatusOK, doc)
}

// ImportSettings godoc
// @Summary Import a configuration from a settings document
// @Tags Settings
// @Accept json
// @Produce json
// @Param payload body models.SettingsDocument true "Settings document"
// @Success 201 {object} response.Envelope
// @Router /configs/import [post]
func (h *ExportHandler) ImportSettings(c *gin.Context) {
	var doc models.SettingsDocument
	if err := c.ShouldBindJSON(&doc); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid settings document"))
		return
	}
	configID, err := h.service.ImportSettings(c.Request.Context(), doc)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, gin.H{"configId": configID})
}
