package document

import "time"

const (
	StatusDraft        = "draft"
	StatusPublished    = "published"
	StatusArchived     = "archived"
	StatusInValidation = "in_validation"
	StatusRefused      = "refused"
)

const (
	PermissionWhitelist  = "whitelist"
	PermissionBlacklist  = "blacklist"
	PermissionRole       = "role"
	PermissionDepartment = "department"
)

type Document struct {
	ID         int64      `gorm:"primaryKey"`
	Title      string     `gorm:"column:title;not null"`
	Body       string     `gorm:"column:body"`
	Type       string     `gorm:"column:type;not null;index"`
	Department string     `gorm:"column:department;index"`
	Clearance  int        `gorm:"column:clearance;not null;default:0"`
	Status     string     `gorm:"column:status;not null;default:draft;index"`
	Tags       string     `gorm:"column:tags;not null;default:'[]'"`
	Version    int        `gorm:"column:version;not null;default:1"`
	AuthorID   int64      `gorm:"column:author_id;not null;index"`
	Deleted    bool       `gorm:"column:deleted;default:false;index"`
	CreatedAt  time.Time  `gorm:"column:created_at;default:now()"`
	UpdatedAt  time.Time  `gorm:"column:updated_at;default:now()"`
	DeletedAt  *time.Time `gorm:"column:deleted_at"`
}

func (Document) TableName() string {
	return "documents"
}

// DocumentVersion snapshots the title and body as they stood after the edit
// that produced that version number.
type DocumentVersion struct {
	ID            int64     `gorm:"primaryKey"`
	DocumentID    int64     `gorm:"column:document_id;not null;uniqueIndex:idx_document_version"`
	Version       int       `gorm:"column:version;not null;uniqueIndex:idx_document_version"`
	Title         string    `gorm:"column:title;not null"`
	Body          string    `gorm:"column:body"`
	ChangeSummary string    `gorm:"column:change_summary"`
	EditorID      int64     `gorm:"column:editor_id;not null"`
	CreatedAt     time.Time `gorm:"column:created_at;default:now()"`
}

func (DocumentVersion) TableName() string {
	return "document_versions"
}

// DocumentPermission is one whitelist, blacklist, role or department row.
// Exactly one of SubjectUserID, SubjectRole, SubjectDepartment is set.
type DocumentPermission struct {
	ID                int64     `gorm:"primaryKey"`
	DocumentID        int64     `gorm:"column:document_id;not null;index"`
	Kind              string    `gorm:"column:kind;not null"`
	SubjectUserID     *int64    `gorm:"column:subject_user_id"`
	SubjectRole       *string   `gorm:"column:subject_role"`
	SubjectDepartment *string   `gorm:"column:subject_department"`
	GrantedBy         int64     `gorm:"column:granted_by;not null"`
	CreatedAt         time.Time `gorm:"column:created_at;default:now()"`
}

func (DocumentPermission) TableName() string {
	return "document_permissions"
}

type DocumentLog struct {
	ID         int64     `gorm:"primaryKey"`
	DocumentID int64     `gorm:"column:document_id;not null;index"`
	UserID     int64     `gorm:"column:user_id;not null"`
	Action     string    `gorm:"column:action;not null"`
	Details    string    `gorm:"column:details"`
	CreatedAt  time.Time `gorm:"column:created_at;default:now()"`
}

func (DocumentLog) TableName() string {
	return "document_logs"
}
