package models

import (
	"database/sql/driver"
	"time"
)

// DayStrings maps weekday names to display strings. Stored as JSONB.
type DayStrings map[string]string

// Value implements driver.Valuer.
func (m DayStrings) Value() (driver.Value, error) {
	if m == nil {
		return jsonValue(DayStrings{})
	}
	return jsonValue(m)
}

// Scan implements sql.Scanner.
func (m *DayStrings) Scan(src interface{}) error {
	return jsonScan(src, m)
}

// ShiftTimes maps weekday names to ordered shift-range strings such as
// "12:00 PM - 3:00 PM". Entry order defines slot processing order. Stored
// as JSONB.
type ShiftTimes map[string][]string

// Value implements driver.Valuer.
func (m ShiftTimes) Value() (driver.Value, error) {
	if m == nil {
		return jsonValue(ShiftTimes{})
	}
	return jsonValue(m)
}

// Scan implements sql.Scanner.
func (m *ShiftTimes) Scan(src interface{}) error {
	return jsonScan(src, m)
}

// Workplace is a physical location with its own worker pool and weekly
// shift template. HoursOfOperation is informational only; ShiftTimes is the
// scheduling demand signal.
type Workplace struct {
	Name             string     `db:"name" json:"name"`
	HoursOfOperation DayStrings `db:"hours_of_operation" json:"hours_of_operation"`
	ShiftTimes       ShiftTimes `db:"shift_times" json:"shift_times"`
	CreatedAt        time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time  `db:"updated_at" json:"updated_at"`
}
