package models

import (
	"database/sql/driver"
	"time"
)

// TimeWindow is a start/end pair in canonical 24-hour HH:MM form. Times are
// normalized by the import/entry paths; the engine never sees raw text.
type TimeWindow struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// WindowMap maps weekday names to time windows. A missing day and an empty
// slice both mean "no windows that day". Stored as a JSONB column.
type WindowMap map[string][]TimeWindow

// Value implements driver.Valuer for JSONB storage.
func (m WindowMap) Value() (driver.Value, error) {
	if m == nil {
		return jsonValue(WindowMap{})
	}
	return jsonValue(m)
}

// Scan implements sql.Scanner.
func (m *WindowMap) Scan(src interface{}) error {
	return jsonScan(src, m)
}

// Worker is a schedulable member of a workplace's pool. The ID is a
// normalized-name slug assigned at creation and never changed.
type Worker struct {
	ID            string    `db:"id" json:"id"`
	WorkplaceName string    `db:"workplace_name" json:"workplace_name"`
	FirstName     string    `db:"first_name" json:"first_name"`
	LastName      string    `db:"last_name" json:"last_name"`
	Email         string    `db:"email" json:"email"`
	WorkStudy     bool      `db:"work_study" json:"work_study"`
	Availability  WindowMap `db:"availability" json:"availability"`
	Unavailable   WindowMap `db:"unavailable" json:"unavailable"`
	WeeklyHours   float64   `db:"weekly_hours" json:"weekly_hours"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time `db:"updated_at" json:"updated_at"`
}

// FullName renders the display name used on schedules.
func (w Worker) FullName() string {
	return w.FirstName + " " + w.LastName
}

// WorkerFilter captures filtering options for listing workers.
type WorkerFilter struct {
	WorkplaceName string
	Search        string
	WorkStudy     *bool
	Page          int
	PageSize      int
	SortBy        string
	SortOrder     string
}
