package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/rosterd/rosterd-api/internal/dto"
	"github.com/rosterd/rosterd-api/internal/service"
	appErrors "github.com/rosterd/rosterd-api/pkg/errors"
	"github.com/rosterd/rosterd-api/pkg/response"
)

// WorkplaceHandler wires workplace services to HTTP routes.
type WorkplaceHandler struct {
	workplaces *service.WorkplaceService
}

// NewWorkplaceHandler constructs a new WorkplaceHandler.
func NewWorkplaceHandler(workplaces *service.WorkplaceService) *WorkplaceHandler {
	return &WorkplaceHandler{workplaces: workplaces}
}

// List godoc
// @Summary List workplaces
// @Tags Workplaces
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /workplaces [get]
func (h *WorkplaceHandler) List(c *gin.Context) {
	workplaces, err := h.workplaces.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, workplaces, nil)
}

// Get godoc
// @Summary Get workplace detail
// @Tags Workplaces
// @Produce json
// @Param name path string true "Workplace name"
// @Success 200 {object} response.Envelope
// @Router /workplaces/{name} [get]
func (h *WorkplaceHandler) Get(c *gin.Context) {
	workplace, err := h.workplaces.Get(c.Request.Context(), c.Param("name"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, workplace, nil)
}

// Upsert godoc
// @Summary Create or replace a workplace template
// @Tags Workplaces
// @Accept json
// @Produce json
// @Param payload body dto.UpsertWorkplaceRequest true "Workplace payload"
// @Success 200 {object} response.Envelope
// @Router /workplaces [post]
func (h *WorkplaceHandler) Upsert(c *gin.Context) {
	var req dto.UpsertWorkplaceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid workplace payload"))
		return
	}
	result, err := h.workplaces.Upsert(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// Delete godoc
// @Summary Delete workplace
// @Tags Workplaces
// @Param name path string true "Workplace name"
// @Success 204
// @Router /workplaces/{name} [delete]
func (h *WorkplaceHandler) Delete(c *gin.Context) {
	if err := h.workplaces.Delete(c.Request.Context(), c.Param("name")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
