package document

import (
	"encoding/json"
	"time"

	docDatamodel "github.com/obsidianfr/intranet/internal/core/datamodel/document"
)

// Document statuses form a one-way machine: draft -> published -> archived,
// with archive reachable from draft too. Nothing ever leaves archived.
// in_validation and refused are review states a draft can sit in; only a
// draft can be published.
const (
	StatusDraft        = docDatamodel.StatusDraft
	StatusPublished    = docDatamodel.StatusPublished
	StatusArchived     = docDatamodel.StatusArchived
	StatusInValidation = docDatamodel.StatusInValidation
	StatusRefused      = docDatamodel.StatusRefused
)

const (
	PermissionWhitelist  = docDatamodel.PermissionWhitelist
	PermissionBlacklist  = docDatamodel.PermissionBlacklist
	PermissionRole       = docDatamodel.PermissionRole
	PermissionDepartment = docDatamodel.PermissionDepartment
)

type Document struct {
	ID         int64     `json:"id"`
	Title      string    `json:"title"`
	Body       string    `json:"body"`
	Type       string    `json:"type"`
	Department string    `json:"department"`
	Clearance  int       `json:"clearance"`
	Status     string    `json:"status"`
	Tags       []string  `json:"tags"`
	Version    int       `json:"version"`
	AuthorID   int64     `json:"author_id"`
	Deleted    bool      `json:"-"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

type Version struct {
	ID            int64     `json:"id"`
	DocumentID    int64     `json:"document_id"`
	Version       int       `json:"version"`
	Title         string    `json:"title"`
	Body          string    `json:"body"`
	ChangeSummary string    `json:"change_summary"`
	EditorID      int64     `json:"editor_id"`
	CreatedAt     time.Time `json:"created_at"`
}

type Permission struct {
	ID                int64     `json:"id"`
	DocumentID        int64     `json:"document_id"`
	Kind              string    `json:"kind"`
	SubjectUserID     *int64    `json:"user_id,omitempty"`
	SubjectRole       *string   `json:"role,omitempty"`
	SubjectDepartment *string   `json:"department,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
}

type Log struct {
	ID         int64     `json:"id"`
	DocumentID int64     `json:"document_id"`
	UserID     int64     `json:"user_id"`
	Action     string    `json:"action"`
	Details    string    `json:"details"`
	CreatedAt  time.Time `json:"created_at"`
}

func FromDataModel(row *docDatamodel.Document) *Document {
	return &Document{
		ID:         row.ID,
		Title:      row.Title,
		Body:       row.Body,
		Type:       row.Type,
		Department: row.Department,
		Clearance:  row.Clearance,
		Status:     row.Status,
		Tags:       decodeTags(row.Tags),
		Version:    row.Version,
		AuthorID:   row.AuthorID,
		Deleted:    row.Deleted,
		CreatedAt:  row.CreatedAt,
		UpdatedAt:  row.UpdatedAt,
	}
}

func VersionFromDataModel(row *docDatamodel.DocumentVersion) *Version {
	return &Version{
		ID:            row.ID,
		DocumentID:    row.DocumentID,
		Version:       row.Version,
		Title:         row.Title,
		Body:          row.Body,
		ChangeSummary: row.ChangeSummary,
		EditorID:      row.EditorID,
		CreatedAt:     row.CreatedAt,
	}
}

func PermissionFromDataModel(row *docDatamodel.DocumentPermission) *Permission {
	return &Permission{
		ID:                row.ID,
		DocumentID:        row.DocumentID,
		Kind:              row.Kind,
		SubjectUserID:     row.SubjectUserID,
		SubjectRole:       row.SubjectRole,
		SubjectDepartment: row.SubjectDepartment,
		CreatedAt:         row.CreatedAt,
	}
}

// Tags are stored as a JSON array in a text column. A row written before the
// column existed, or hand-edited garbage, reads back as no tags.
func decodeTags(raw string) []string {
	if raw == "" {
		return []string{}
	}
	var tags []string
	if err := json.Unmarshal([]byte(raw), &tags); err != nil || tags == nil {
		return []string{}
	}
	return tags
}

func encodeTags(tags []string) string {
	if tags == nil {
		tags = []string{}
	}
	raw, err := json.Marshal(tags)
	if err != nil {
		return "[]"
	}
	return string(raw)
}

func LogFromDataModel(row *docDatamodel.DocumentLog) *Log {
	return &Log{
		ID:         row.ID,
		DocumentID: row.DocumentID,
		UserID:     row.UserID,
		Action:     row.Action,
		Details:    row.Details,
		CreatedAt:  row.CreatedAt,
	}
}
