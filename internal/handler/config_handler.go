package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sncann/timetable-api/internal/dto"
	"github.com/sncann/timetable-api/internal/models"
	appErrors "github.com/sncann/timetable-api/pkg/errors"
	"github.com/sncann/timetable-api/pkg/response"
)

type configService interface {
	List(ctx context.Context, query dto.ConfigQuery) ([]dto.ConfigResponse, *models.Pagination, error)
	Get(ctx context.Context, id string) (*dto.ConfigResponse, error)
	Create(ctx context.Context, req dto.SaveConfigRequest) (*dto.ConfigResponse, error)
	Update(ctx context.Context, id string, req dto.SaveConfigRequest) (*dto.ConfigResponse, error)
	Delete(ctx context.Context, id string) error
}

// ConfigHandler exposes schedule configuration endpoints.
type ConfigHandler struct {
	service configService
}

// NewConfigHandler builds a new handler.
func NewConfigHandler(service configService) *ConfigHandler {
	return &ConfigHandler{service: service}
}

// List godoc
// @Summary List schedule configurations
// @Tags Configs
// @Produce json
// @Param search query string false "Filter by school name"
// @Param page query int false "Page number"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /configs [get]
func (h *ConfigHandler) List(c *gin.Context) {
	var query dto.ConfigQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid query parameters"))
		return
	}
	items, pagination, err := h.service.List(c.Request.Context(), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, pagination)
}

// Get godoc
// @Summary Get a schedule configuration
// @Tags Configs
// @Produce json
// @Param id path string true "Configuration ID"
// @Success 200 {object} response.Envelope
// @Router /configs/{id} [get]
func (h *ConfigHandler) Get(c *gin.Context) {
	item, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, item, nil)
}

// Create godoc
// @Summary Create a schedule configuration
// @Tags Configs
// @Accept json
// @Produce json
// @Param payload body dto.SaveConfigRequest true "Configuration payload"
// @Success 201 {object} response.Envelope
// @Router /configs [post]
func (h *ConfigHandler) Create(c *gin.Context) {
	var req dto.SaveConfigRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid configuration payload"))
		return
	}
	item, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, item)
}

// Update godoc
// @Summary Replace a schedule configuration
// @Tags Configs
// @Accept json
// @Produce json
// @Param id path string true "Configuration ID"
// @Param payload body dto.SaveConfigRequest true "Configuration payload"
// @Success 200 {object} response.Envelope
// @Router /configs/{id} [put]
func (h *ConfigHandler) Update(c *gin.Context) {
	var req dto.SaveConfigRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid configuration payload"))
		return
	}
	item, err := h.service.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, item, nil)
}

// Delete godoc
// @Summary Delete a schedule configuration
// @Tags Configs
// @Param id path string true "Configuration ID"
// @Success 204
// @Router /configs/{id} [delete]
func (h *ConfigHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
