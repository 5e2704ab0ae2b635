package document

import (
	"strings"

	"github.com/obsidianfr/intranet/internal"
)

type CreateDocumentDTO struct {
	Title      string   `json:"title"`
	Body       string   `json:"body"`
	Type       string   `json:"type"`
	Department string   `json:"department"`
	Clearance  int      `json:"clearance"`
	Tags       []string `json:"tags"`
}

func (d *CreateDocumentDTO) Validate() error {
	d.Title = strings.TrimSpace(d.Title)
	d.Type = strings.TrimSpace(d.Type)

	if d.Title == "" {
		return internal.NewValidationFieldError("title", "title is required", internal.ErrCodeValidationFailed)
	}
	if d.Type == "" {
		return internal.NewValidationFieldError("type", "type is required", internal.ErrCodeInvalidDocType)
	}
	if d.Clearance < internal.ClearanceMin || d.Clearance > internal.ClearanceMax {
		return internal.NewValidationFieldError("clearance", "clearance must be between 0 and 6", internal.ErrCodeInvalidClearance)
	}
	return nil
}

// UpdateDocumentDTO carries a partial edit. Nil fields keep their current
// value; the snapshot records the merged result. ExpectedVersion, when set,
// makes the edit conditional so concurrent editors cannot silently clobber
// each other.
type UpdateDocumentDTO struct {
	Title           *string   `json:"title,omitempty"`
	Body            *string   `json:"body,omitempty"`
	Tags            *[]string `json:"tags,omitempty"`
	ChangeSummary   string    `json:"change_summary"`
	ExpectedVersion *int      `json:"expected_version,omitempty"`
}

func (d *UpdateDocumentDTO) Validate() error {
	if d.Title == nil && d.Body == nil && d.Tags == nil {
		return internal.NewValidationError("nothing to update", internal.ErrCodeValidationFailed)
	}
	if d.Title != nil {
		trimmed := strings.TrimSpace(*d.Title)
		if trimmed == "" {
			return internal.NewValidationFieldError("title", "title cannot be empty", internal.ErrCodeValidationFailed)
		}
		d.Title = &trimmed
	}
	return nil
}

type PermissionEntryDTO struct {
	Kind       string  `json:"kind"`
	UserID     *int64  `json:"user_id,omitempty"`
	Role       *string `json:"role,omitempty"`
	Department *string `json:"department,omitempty"`
	IsAllowed  bool    `json:"is_allowed"`
}

type SetPermissionsDTO struct {
	Permissions []PermissionEntryDTO `json:"permissions"`
}

func (d *SetPermissionsDTO) Validate() error {
	for _, entry := range d.Permissions {
		subjects := 0
		if entry.UserID != nil {
			subjects++
		}
		if entry.Role != nil {
			subjects++
		}
		if entry.Department != nil {
			subjects++
		}
		if subjects != 1 {
			return internal.NewValidationError("each entry needs exactly one subject", internal.ErrCodeInvalidPermission)
		}

		switch entry.Kind {
		case PermissionWhitelist, PermissionBlacklist:
		case PermissionRole:
			if entry.Role == nil {
				return internal.NewValidationFieldError("role", "role entries need a role subject", internal.ErrCodeInvalidPermission)
			}
		case PermissionDepartment:
			if entry.Department == nil {
				return internal.NewValidationFieldError("department", "department entries need a department subject", internal.ErrCodeInvalidPermission)
			}
		default:
			return internal.NewValidationFieldError("kind", "kind must be whitelist, blacklist, role or department", internal.ErrCodeInvalidPermission)
		}

		if entry.Role != nil && !internal.IsValidRole(*entry.Role) {
			return internal.NewValidationFieldError("role", "unknown role", internal.ErrCodeInvalidRole)
		}
	}
	return nil
}

type ListFilters struct {
	Search     string
	Type       string
	Department string
	Status     string
	Clearance  *int
	Page       int
	PerPage    int
}

type ListResponse struct {
	Documents []*Document `json:"documents"`
	Total     int         `json:"total"`
	Page      int         `json:"page"`
	PerPage   int         `json:"per_page"`
}
