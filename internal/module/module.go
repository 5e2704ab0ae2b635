package module

import (
	"encoding/json"
	"time"

	moduleDatamodel "github.com/obsidianfr/intranet/internal/core/datamodel/module"
)

type Module struct {
	ID          int64           `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Enabled     bool            `json:"enabled"`
	Config      json.RawMessage `json:"config"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

func FromDataModel(row *moduleDatamodel.Module) *Module {
	cfg := row.Config
	if cfg == "" {
		cfg = "{}"
	}
	return &Module{
		ID:          row.ID,
		Name:        row.Name,
		Description: row.Description,
		Enabled:     row.Enabled,
		Config:      json.RawMessage(cfg),
		UpdatedAt:   row.UpdatedAt,
	}
}
