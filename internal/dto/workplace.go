package dto

import "github.com/rosterd/rosterd-api/internal/models"

// UpsertWorkplaceRequest creates or replaces a workplace's weekly template.
type UpsertWorkplaceRequest struct {
	Name             string            `json:"name" validate:"required,max=100"`
	HoursOfOperation models.DayStrings `json:"hoursOfOperation"`
	ShiftTimes       models.ShiftTimes `json:"shiftTimes"`
}

// WorkplaceResponse wraps a workplace plus lenient template warnings
// (shift entries that will be skipped at scheduling time).
type WorkplaceResponse struct {
	Workplace *models.Workplace `json:"workplace"`
	Warnings  []string          `json:"warnings,omitempty"`
}
