package dto

import "github.com/rosterd/rosterd-api/internal/models"

// GenerateScheduleRequest selects the pool subset for a run. An empty
// WorkerIDs list means the full pool.
type GenerateScheduleRequest struct {
	WorkerIDs []string `json:"workerIds"`
}

// GenerateScheduleResponse returns the stored snapshot plus any shift
// entries the run had to skip because they did not parse.
type GenerateScheduleResponse struct {
	Schedule *models.Schedule     `json:"schedule"`
	Skipped  []models.SkippedSlot `json:"skipped,omitempty"`
}

// ReassignRequest replaces (or clears) the worker on one assignment of a
// stored schedule. A nil WorkerID clears the slot back to UNASSIGNED.
type ReassignRequest struct {
	Day      string  `json:"day" validate:"required"`
	Index    int     `json:"index" validate:"min=0"`
	WorkerID *string `json:"workerId"`
	Force    bool    `json:"force"`
}

// ReassignResponse carries the updated schedule and any invariant
// violations the edit introduced or left behind.
type ReassignResponse struct {
	Schedule   *models.Schedule           `json:"schedule"`
	Violations []models.ScheduleViolation `json:"violations,omitempty"`
	Applied    bool                       `json:"applied"`
}

// ScheduleSummary is the lightweight listing row for stored schedules.
type ScheduleSummary struct {
	ID          string `json:"id"`
	GeneratedAt string `json:"generatedAt"`
}
