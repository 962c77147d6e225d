package models

import (
	"database/sql/driver"
	"time"
)

// UnassignedWorkerName marks a shift slot no eligible worker could fill.
const UnassignedWorkerName = "UNASSIGNED"

// Assignment is one filled (or unfilled) shift slot within a day. A nil
// WorkerID with WorkerName "UNASSIGNED" is a valid terminal state.
type Assignment struct {
	StartTime     string  `json:"start_time"`
	EndTime       string  `json:"end_time"`
	WorkerID      *string `json:"worker_id"`
	WorkerName    string  `json:"worker_name"`
	DurationHours float64 `json:"duration_hours"`
}

// Assigned reports whether the slot has a worker.
func (a Assignment) Assigned() bool {
	return a.WorkerID != nil
}

// DayAssignments maps weekday names to that day's ordered assignments.
// Stored as JSONB on the schedule snapshot.
type DayAssignments map[string][]Assignment

// Value implements driver.Valuer.
func (m DayAssignments) Value() (driver.Value, error) {
	if m == nil {
		return jsonValue(DayAssignments{})
	}
	return jsonValue(m)
}

// Scan implements sql.Scanner.
func (m *DayAssignments) Scan(src interface{}) error {
	return jsonScan(src, m)
}

// WorkerSummary is the per-worker roll-up attached to a schedule.
type WorkerSummary struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Email       string  `json:"email"`
	WorkStudy   bool    `json:"work_study"`
	WeeklyHours float64 `json:"weekly_hours"`
}

// WorkerSummaries is the JSONB-stored summary list.
type WorkerSummaries []WorkerSummary

// Value implements driver.Valuer.
func (s WorkerSummaries) Value() (driver.Value, error) {
	if s == nil {
		return jsonValue(WorkerSummaries{})
	}
	return jsonValue(s)
}

// Scan implements sql.Scanner.
func (s *WorkerSummaries) Scan(src interface{}) error {
	return jsonScan(src, s)
}

// Schedule is one generated weekly assignment snapshot.
type Schedule struct {
	ID            string          `db:"id" json:"id"`
	WorkplaceName string          `db:"workplace_name" json:"workplace_name"`
	GeneratedAt   time.Time       `db:"generated_at" json:"generated_at"`
	Days          DayAssignments  `db:"days" json:"days"`
	Workers       WorkerSummaries `db:"workers" json:"workers"`
	CreatedAt     time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time       `db:"updated_at" json:"updated_at"`
}

// SkippedSlot records a configured shift entry the engine could not parse
// and therefore dropped from the run.
type SkippedSlot struct {
	Day   string `json:"day"`
	Entry string `json:"entry"`
}

// Violation categories reported by schedule validation.
const (
	ViolationDuplicateWorkerDay  = "DUPLICATE_WORKER_DAY"
	ViolationOutsideAvailability = "OUTSIDE_AVAILABILITY"
	ViolationHoursMismatch       = "HOURS_MISMATCH"
	ViolationUnknownWorker       = "UNKNOWN_WORKER"
)

// ScheduleViolation describes one invariant breach found by validation.
type ScheduleViolation struct {
	Type     string `json:"type"`
	Day      string `json:"day,omitempty"`
	WorkerID string `json:"worker_id,omitempty"`
	Message  string `json:"message"`
}
