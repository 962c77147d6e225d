package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/rosterd/rosterd-api/internal/dto"
	"github.com/rosterd/rosterd-api/internal/service"
	appErrors "github.com/rosterd/rosterd-api/pkg/errors"
	"github.com/rosterd/rosterd-api/pkg/response"
)

// ScheduleHandler wires schedule services to HTTP routes.
type ScheduleHandler struct {
	schedules *service.ScheduleService
}

// NewScheduleHandler constructs a new ScheduleHandler.
func NewScheduleHandler(schedules *service.ScheduleService) *ScheduleHandler {
	return &ScheduleHandler{schedules: schedules}
}

// Generate godoc
// @Summary Generate a weekly schedule
// @Tags Schedules
// @Accept json
// @Produce json
// @Param name path string true "Workplace name"
// @Param payload body dto.GenerateScheduleRequest false "Pool selection"
// @Success 201 {object} response.Envelope
// @Router /workplaces/{name}/schedules [post]
func (h *ScheduleHandler) Generate(c *gin.Context) {
	var req dto.GenerateScheduleRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid generation payload"))
			return
		}
	}
	result, err := h.schedules.Generate(c.Request.Context(), c.Param("name"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, result)
}

// List godoc
// @Summary List stored schedules of a workplace
// @Tags Schedules
// @Produce json
// @Param name path string true "Workplace name"
// @Param page query int false "Page number"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /workplaces/{name}/schedules [get]
func (h *ScheduleHandler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	size, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	schedules, pagination, err := h.schedules.List(c.Request.Context(), c.Param("name"), page, size)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, schedules, pagination)
}

// Latest godoc
// @Summary Get the most recent schedule of a workplace
// @Tags Schedules
// @Produce json
// @Param name path string true "Workplace name"
// @Success 200 {object} response.Envelope
// @Router /workplaces/{name}/schedules/latest [get]
func (h *ScheduleHandler) Latest(c *gin.Context) {
	schedule, err := h.schedules.Latest(c.Request.Context(), c.Param("name"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, schedule, nil)
}

// Get godoc
// @Summary Get schedule detail
// @Tags Schedules
// @Produce json
// @Param id path string true "Schedule ID"
// @Success 200 {object} response.Envelope
// @Router /schedules/{id} [get]
func (h *ScheduleHandler) Get(c *gin.Context) {
	schedule, err := h.schedules.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, schedule, nil)
}

// Delete godoc
// @Summary Delete schedule
// @Tags Schedules
// @Param id path string true "Schedule ID"
// @Success 204
// @Router /schedules/{id} [delete]
func (h *ScheduleHandler) Delete(c *gin.Context) {
	if err := h.schedules.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Reassign godoc
// @Summary Reassign one slot of a stored schedule
// @Tags Schedules
// @Accept json
// @Produce json
// @Param id path string true "Schedule ID"
// @Param payload body dto.ReassignRequest true "Reassignment payload"
// @Success 200 {object} response.Envelope
// @Router /schedules/{id}/reassign [post]
func (h *ScheduleHandler) Reassign(c *gin.Context) {
	var req dto.ReassignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid reassignment payload"))
		return
	}
	result, err := h.schedules.Reassign(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	status := http.StatusOK
	if !result.Applied {
		status = http.StatusConflict
	}
	response.JSON(c, status, result, nil)
}

// Violations godoc
// @Summary Validate a stored schedule against pool invariants
// @Tags Schedules
// @Produce json
// @Param id path string true "Schedule ID"
// @Success 200 {object} response.Envelope
// @Router /schedules/{id}/violations [get]
func (h *ScheduleHandler) Violations(c *gin.Context) {
	violations, err := h.schedules.Validate(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, violations, nil)
}
