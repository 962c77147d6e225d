package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/rosterd/rosterd-api/internal/service"
	"github.com/rosterd/rosterd-api/pkg/response"
)

// BackupHandler wires backup archives to HTTP routes. Restore is deliberately
// not exposed here.
type BackupHandler struct {
	backups *service.BackupService
}

// NewBackupHandler constructs a new BackupHandler.
func NewBackupHandler(backups *service.BackupService) *BackupHandler {
	return &BackupHandler{backups: backups}
}

// Create godoc
// @Summary Create a full backup archive
// @Tags Backups
// @Produce json
// @Success 201 {object} response.Envelope
// @Router /backups [post]
func (h *BackupHandler) Create(c *gin.Context) {
	info, err := h.backups.Create(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, info)
}

// List godoc
// @Summary List backup archives
// @Tags Backups
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /backups [get]
func (h *BackupHandler) List(c *gin.Context) {
	files, err := h.backups.List()
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, files, nil)
}

// Download godoc
// @Summary Download a backup archive
// @Tags Backups
// @Produce octet-stream
// @Param filename path string true "Backup file name"
// @Success 200 {file} binary
// @Router /backups/{filename} [get]
func (h *BackupHandler) Download(c *gin.Context) {
	filename := c.Param("filename")
	file, err := h.backups.Open(filename)
	if err != nil {
		response.Error(c, err)
		return
	}
	defer file.Close()
	c.FileAttachment(file.Name(), filename)
}
