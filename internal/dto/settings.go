package dto

// SetSettingRequest updates one key-value setting.
type SetSettingRequest struct {
	Value string `json:"value" validate:"required"`
}
