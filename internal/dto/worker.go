package dto

import "github.com/rosterd/rosterd-api/internal/models"

// CreateWorkerRequest registers one worker. Availability and unavailable
// windows arrive already canonical (the bulk import path handles raw text).
type CreateWorkerRequest struct {
	FirstName    string           `json:"firstName" validate:"required"`
	LastName     string           `json:"lastName" validate:"required"`
	Email        string           `json:"email" validate:"omitempty,email"`
	WorkStudy    bool             `json:"workStudy"`
	Availability models.WindowMap `json:"availability"`
	Unavailable  models.WindowMap `json:"unavailable"`
}

// UpdateWorkerRequest edits a worker. The ID is never changed.
type UpdateWorkerRequest struct {
	FirstName    string           `json:"firstName" validate:"required"`
	LastName     string           `json:"lastName" validate:"required"`
	Email        string           `json:"email" validate:"omitempty,email"`
	WorkStudy    bool             `json:"workStudy"`
	Availability models.WindowMap `json:"availability"`
	Unavailable  models.WindowMap `json:"unavailable"`
}

// ImportWorkerRow is one raw row from an availability sheet. Day values are
// free-text ranges ("2:00 PM - 5:00 PM, 6pm - 8pm") or "na"; Unavailable
// entries look like "MWF 1pm - 2pm".
type ImportWorkerRow struct {
	FirstName   string            `json:"firstName" validate:"required"`
	LastName    string            `json:"lastName" validate:"required"`
	Email       string            `json:"email"`
	WorkStudy   string            `json:"workStudy"`
	Days        map[string]string `json:"days"`
	Unavailable []string          `json:"unavailable"`
}

// ImportWorkersRequest bulk-imports workers from sheet rows.
type ImportWorkersRequest struct {
	Rows []ImportWorkerRow `json:"rows" validate:"required,min=1,dive"`
}

// ImportIssue reports a row value that could not be interpreted. The row is
// still imported; the offending value degrades to "not available".
type ImportIssue struct {
	Row     int    `json:"row"`
	Field   string `json:"field"`
	Value   string `json:"value"`
	Message string `json:"message"`
}

// ImportWorkersResponse lists created workers plus per-row parse issues.
type ImportWorkersResponse struct {
	Workers []models.Worker `json:"workers"`
	Issues  []ImportIssue   `json:"issues,omitempty"`
}
