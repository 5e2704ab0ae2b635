package audit

import (
	"time"

	auditDatamodel "github.com/obsidianfr/intranet/internal/core/datamodel/audit"
)

type Entry struct {
	ID        int64     `json:"id"`
	Action    string    `json:"action"`
	UserID    *int64    `json:"user_id,omitempty"`
	Details   string    `json:"details,omitempty"`
	IPAddress string    `json:"ip_address,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func FromDataModel(row *auditDatamodel.Log) *Entry {
	return &Entry{
		ID:        row.ID,
		Action:    row.Action,
		UserID:    row.UserID,
		Details:   row.Details,
		IPAddress: row.IPAddress,
		CreatedAt: row.CreatedAt,
	}
}
