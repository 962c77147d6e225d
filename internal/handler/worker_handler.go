package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/rosterd/rosterd-api/internal/dto"
	"github.com/rosterd/rosterd-api/internal/models"
	"github.com/rosterd/rosterd-api/internal/service"
	appErrors "github.com/rosterd/rosterd-api/pkg/errors"
	"github.com/rosterd/rosterd-api/pkg/response"
)

// WorkerHandler wires worker services to HTTP routes.
type WorkerHandler struct {
	workers *service.WorkerService
}

// NewWorkerHandler constructs a new WorkerHandler.
func NewWorkerHandler(workers *service.WorkerService) *WorkerHandler {
	return &WorkerHandler{workers: workers}
}

// List godoc
// @Summary List workers of a workplace
// @Tags Workers
// @Produce json
// @Param name path string true "Workplace name"
// @Param search query string false "Search by name/email"
// @Param work_study query bool false "Filter by work-study flag"
// @Param page query int false "Page number"
// @Param limit query int false "Page size"
// @Param sort query string false "Sort field (first_name,last_name,weekly_hours,created_at)"
// @Param order query string false "Sort order (asc/desc)"
// @Success 200 {object} response.Envelope
// @Router /workplaces/{name}/workers [get]
func (h *WorkerHandler) List(c *gin.Context) {
	filter := models.WorkerFilter{
		WorkplaceName: c.Param("name"),
		Search:        strings.TrimSpace(c.Query("search")),
		SortBy:        c.Query("sort"),
		SortOrder:     c.Query("order"),
	}
	if workStudy := c.Query("work_study"); workStudy != "" {
		switch strings.ToLower(workStudy) {
		case "true":
			val := true
			filter.WorkStudy = &val
		case "false":
			val := false
			filter.WorkStudy = &val
		}
	}
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		filter.Page = page
	}
	if size, err := strconv.Atoi(c.DefaultQuery("limit", "20")); err == nil {
		filter.PageSize = size
	}

	workers, pagination, err := h.workers.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, workers, pagination)
}

// Get godoc
// @Summary Get worker detail
// @Tags Workers
// @Produce json
// @Param id path string true "Worker ID"
// @Success 200 {object} response.Envelope
// @Router /workers/{id} [get]
func (h *WorkerHandler) Get(c *gin.Context) {
	worker, err := h.workers.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, worker, nil)
}

// Create godoc
// @Summary Register a worker
// @Tags Workers
// @Accept json
// @Produce json
// @Param name path string true "Workplace name"
// @Param payload body dto.CreateWorkerRequest true "Worker payload"
// @Success 201 {object} response.Envelope
// @Router /workplaces/{name}/workers [post]
func (h *WorkerHandler) Create(c *gin.Context) {
	var req dto.CreateWorkerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid worker payload"))
		return
	}
	worker, err := h.workers.Create(c.Request.Context(), c.Param("name"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, worker)
}

// Import godoc
// @Summary Bulk-import workers from availability sheet rows
// @Tags Workers
// @Accept json
// @Produce json
// @Param name path string true "Workplace name"
// @Param payload body dto.ImportWorkersRequest true "Import payload"
// @Success 201 {object} response.Envelope
// @Router /workplaces/{name}/workers/import [post]
func (h *WorkerHandler) Import(c *gin.Context) {
	var req dto.ImportWorkersRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid import payload"))
		return
	}
	result, err := h.workers.BulkImport(c.Request.Context(), c.Param("name"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, result)
}

// Update godoc
// @Summary Update worker
// @Tags Workers
// @Accept json
// @Produce json
// @Param id path string true "Worker ID"
// @Param payload body dto.UpdateWorkerRequest true "Worker payload"
// @Success 200 {object} response.Envelope
// @Router /workers/{id} [put]
func (h *WorkerHandler) Update(c *gin.Context) {
	var req dto.UpdateWorkerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid worker payload"))
		return
	}
	worker, err := h.workers.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, worker, nil)
}

// Delete godoc
// @Summary Delete worker
// @Tags Workers
// @Param id path string true "Worker ID"
// @Success 204
// @Router /workers/{id} [delete]
func (h *WorkerHandler) Delete(c *gin.Context) {
	if err := h.workers.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
