package dto

import "time"

// Export and backup job states.
const (
	JobStatusPending   = "PENDING"
	JobStatusRunning   = "RUNNING"
	JobStatusCompleted = "COMPLETED"
	JobStatusFailed    = "FAILED"
)

// ExportScheduleRequest asks for a rendered copy of a stored schedule.
type ExportScheduleRequest struct {
	Format string `json:"format" validate:"required,oneof=csv pdf"`
}

// JobStatus tracks an asynchronous export or backup job.
type JobStatus struct {
	ID         string     `json:"id"`
	Type       string     `json:"type"`
	Status     string     `json:"status"`
	FileName   string     `json:"fileName,omitempty"`
	Error      string     `json:"error,omitempty"`
	EnqueuedAt time.Time  `json:"enqueuedAt"`
	FinishedAt *time.Time `json:"finishedAt,omitempty"`
}
