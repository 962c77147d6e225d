package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/rosterd/rosterd-api/internal/dto"
	"github.com/rosterd/rosterd-api/internal/service"
	appErrors "github.com/rosterd/rosterd-api/pkg/errors"
	"github.com/rosterd/rosterd-api/pkg/response"
)

// ReplacementHandler wires replacement lookups to HTTP routes.
type ReplacementHandler struct {
	replacements *service.ReplacementService
}

// NewReplacementHandler constructs a new ReplacementHandler.
func NewReplacementHandler(replacements *service.ReplacementService) *ReplacementHandler {
	return &ReplacementHandler{replacements: replacements}
}

// Find godoc
// @Summary Find replacement candidates for a time window
// @Tags Replacements
// @Produce json
// @Param name path string true "Workplace name"
// @Param day query string true "Weekday name or U/M/T/W/R/F/S code"
// @Param start query string true "Window start time"
// @Param end query string true "Window end time"
// @Success 200 {object} response.Envelope
// @Router /workplaces/{name}/replacements [get]
func (h *ReplacementHandler) Find(c *gin.Context) {
	var query dto.ReplacementQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid replacement query"))
		return
	}
	candidates, err := h.replacements.FindCandidates(c.Request.Context(), c.Param("name"), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, candidates, nil)
}
