package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/rosterd/rosterd-api/internal/dto"
	"github.com/rosterd/rosterd-api/internal/service"
	appErrors "github.com/rosterd/rosterd-api/pkg/errors"
	"github.com/rosterd/rosterd-api/pkg/response"
)

// ExportHandler wires schedule exports to HTTP routes.
type ExportHandler struct {
	exports *service.ExportService
}

// NewExportHandler constructs a new ExportHandler.
func NewExportHandler(exports *service.ExportService) *ExportHandler {
	return &ExportHandler{exports: exports}
}

// Create godoc
// @Summary Queue a schedule export
// @Tags Exports
// @Accept json
// @Produce json
// @Param id path string true "Schedule ID"
// @Param payload body dto.ExportScheduleRequest true "Export payload"
// @Success 202 {object} response.Envelope
// @Router /schedules/{id}/exports [post]
func (h *ExportHandler) Create(c *gin.Context) {
	var req dto.ExportScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid export payload"))
		return
	}
	status, err := h.exports.Enqueue(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusAccepted, status, nil)
}

// Status godoc
// @Summary Get export job status
// @Tags Exports
// @Produce json
// @Param jobId path string true "Export job ID"
// @Success 200 {object} response.Envelope
// @Router /exports/jobs/{jobId} [get]
func (h *ExportHandler) Status(c *gin.Context) {
	status, err := h.exports.Status(c.Param("jobId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, status, nil)
}

// ListFiles godoc
// @Summary List rendered export files
// @Tags Exports
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /exports/files [get]
func (h *ExportHandler) ListFiles(c *gin.Context) {
	files, err := h.exports.ListFiles()
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, files, nil)
}

// Download godoc
// @Summary Download a rendered export file
// @Tags Exports
// @Produce octet-stream
// @Param filename path string true "Export file name"
// @Success 200 {file} binary
// @Router /exports/files/{filename} [get]
func (h *ExportHandler) Download(c *gin.Context) {
	filename := c.Param("filename")
	file, err := h.exports.Open(filename)
	if err != nil {
		response.Error(c, err)
		return
	}
	defer file.Close()
	c.FileAttachment(file.Name(), filename)
}
