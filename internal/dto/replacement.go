package dto

// ReplacementQuery asks for workers able to cover an ad-hoc time window.
// Day accepts a full weekday name in any case or a single U/M/T/W/R/F/S
// code; times accept any format the time parser recognizes.
type ReplacementQuery struct {
	Day   string `form:"day" json:"day" validate:"required"`
	Start string `form:"start" json:"start" validate:"required"`
	End   string `form:"end" json:"end" validate:"required"`
}

// ReplacementCandidate is one ranked worker able to cover the window.
type ReplacementCandidate struct {
	ID          string  `json:"id"`
	FirstName   string  `json:"firstName"`
	LastName    string  `json:"lastName"`
	Email       string  `json:"email"`
	WorkStudy   bool    `json:"workStudy"`
	WeeklyHours float64 `json:"weeklyHours"`
}
