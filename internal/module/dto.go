package module

import (
	"encoding/json"

	"github.com/obsidianfr/intranet/internal"
)

type ToggleDTO struct {
	Enabled *bool `json:"enabled"`
}

func (d *ToggleDTO) Validate() error {
	if d.Enabled == nil {
		return internal.NewValidationFieldError("enabled", "enabled is required", internal.ErrCodeValidationFailed)
	}
	return nil
}

type ConfigureDTO struct {
	Config json.RawMessage `json:"config"`
}

func (d *ConfigureDTO) Validate() error {
	if len(d.Config) == 0 {
		return internal.NewValidationFieldError("config", "config is required", internal.ErrCodeValidationFailed)
	}
	if !json.Valid(d.Config) {
		return internal.NewValidationFieldError("config", "config must be valid JSON", internal.ErrCodeValidationFailed)
	}
	return nil
}
