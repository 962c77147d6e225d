package models

import "time"

// Known setting keys.
const (
	SettingContactEmail = "contact_email"
)

// Setting is one process-wide key-value entry (contact email and similar
// desk-level preferences).
type Setting struct {
	Key       string    `db:"key" json:"key"`
	Value     string    `db:"value" json:"value"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}
