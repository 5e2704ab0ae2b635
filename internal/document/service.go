package document

import (
	"context"
	"errors"
	"log/slog"
	"strconv"

	"github.com/obsidianfr/intranet/internal"
	docDatamodel "github.com/obsidianfr/intranet/internal/core/datamodel/document"
)

// ErrVersionConflict is returned by the repository when a conditional update
// finds the document already moved past the expected version.
var ErrVersionConflict = errors.New("document version conflict")

// CreatorRoles may create documents. Admin accounts administer the platform
// but do not author documents.
var CreatorRoles = []string{
	internal.RoleScientifique,
	internal.RoleSecurite,
	internal.RoleAdministration,
	internal.RoleDirection,
	internal.RoleStaff,
}

type Repository interface {
	List(filters ListFilters) ([]*docDatamodel.Document, error)
	GetByID(docID int64) (*docDatamodel.Document, error)
	GetPermissions(docID int64) ([]*docDatamodel.DocumentPermission, error)
	GetPermissionsForDocuments(docIDs []int64) (map[int64][]*docDatamodel.DocumentPermission, error)
	Create(doc *docDatamodel.Document, initial *docDatamodel.DocumentVersion) error
	UpdateWithSnapshot(docID int64, expectedVersion int, title, body, tags string, snapshot *docDatamodel.DocumentVersion) error
	UpdateStatus(docID int64, status string) error
	SoftDelete(docID int64) error
	ListVersions(docID int64) ([]*docDatamodel.DocumentVersion, error)
	ApplyPermissions(docID int64, upserts, removals []*docDatamodel.DocumentPermission) error
	AddLog(row *docDatamodel.DocumentLog) error
	ListLogs(docID int64, limit int) ([]*docDatamodel.DocumentLog, error)
}

type AuditRecorder interface {
	Record(ctx context.Context, action string, userID *int64, details string)
}

type Service struct {
	repo   Repository
	audit  AuditRecorder
	logger *slog.Logger
}

func NewService(repo Repository, audit AuditRecorder, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, audit: audit, logger: logger}
}

// List returns the documents the user may see. The evaluator filters after
// the store query; pagination applies to the filtered set so a page never
// leaks how many documents were hidden.
func (s *Service) List(ctx context.Context, user *internal.SessionUser, filters ListFilters) (*ListResponse, error) {
	if filters.Page < 1 {
		filters.Page = 1
	}
	if filters.PerPage < 1 || filters.PerPage > 100 {
		filters.PerPage = 20
	}

	rows, err := s.repo.List(filters)
	if err != nil {
		return nil, internal.NewInternalError("failed to list documents", err)
	}

	ids := make([]int64, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.ID)
	}
	permsByDoc, err := s.repo.GetPermissionsForDocuments(ids)
	if err != nil {
		return nil, internal.NewInternalError("failed to load permissions", err)
	}

	visible := make([]*Document, 0, len(rows))
	for _, row := range rows {
		if CanAccess(user, row, permsByDoc[row.ID]).Allowed {
			visible = append(visible, FromDataModel(row))
		}
	}

	total := len(visible)
	start := (filters.Page - 1) * filters.PerPage
	if start > total {
		start = total
	}
	end := start + filters.PerPage
	if end > total {
		end = total
	}

	return &ListResponse{
		Documents: visible[start:end],
		Total:     total,
		Page:      filters.Page,
		PerPage:   filters.PerPage,
	}, nil
}

// Get returns one document after running the access evaluator. Both outcomes
// land in the document log; a denial also lands in the global audit trail.
func (s *Service) Get(ctx context.Context, user *internal.SessionUser, docID int64) (*Document, error) {
	row, perms, err := s.load(docID)
	if err != nil {
		return nil, err
	}

	decision := CanAccess(user, row, perms)
	if !decision.Allowed {
		s.log(docID, user.ID, "access_denied", decision.Reason)
		s.record(ctx, "DOCUMENT_ACCESS_DENIED", &user.ID,
			"document "+strconv.FormatInt(docID, 10)+" reason="+decision.Reason)
		return nil, internal.ErrDocumentAccessDenied
	}

	s.log(docID, user.ID, "read", decision.Reason)
	return FromDataModel(row), nil
}

func (s *Service) Create(ctx context.Context, user *internal.SessionUser, dto CreateDocumentDTO) (*Document, error) {
	if !user.HasRole(CreatorRoles...) {
		return nil, internal.ErrInsufficientRole
	}
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	row := &docDatamodel.Document{
		Title:      dto.Title,
		Body:       dto.Body,
		Type:       dto.Type,
		Department: dto.Department,
		Clearance:  dto.Clearance,
		Status:     StatusDraft,
		Tags:       encodeTags(dto.Tags),
		Version:    1,
		AuthorID:   user.ID,
	}
	initial := &docDatamodel.DocumentVersion{
		Version:       1,
		Title:         dto.Title,
		Body:          dto.Body,
		ChangeSummary: "Initial version",
		EditorID:      user.ID,
	}

	if err := s.repo.Create(row, initial); err != nil {
		return nil, internal.NewInternalError("failed to create document", err)
	}

	s.log(row.ID, user.ID, "create", "")
	s.record(ctx, "DOCUMENT_CREATED", &user.ID, dto.Title)

	return FromDataModel(row), nil
}

// Update applies a partial edit: version moves to exactly current+1 and the
// snapshot records the merged title and body. Update and snapshot commit in
// one transaction; a concurrent edit surfaces as a 409.
func (s *Service) Update(ctx context.Context, user *internal.SessionUser, docID int64, dto UpdateDocumentDTO) (*Document, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	row, _, err := s.load(docID)
	if err != nil {
		return nil, err
	}
	if !s.canEdit(user, row) {
		return nil, internal.ErrInsufficientRole
	}

	expected := row.Version
	if dto.ExpectedVersion != nil {
		expected = *dto.ExpectedVersion
	}

	title := row.Title
	if dto.Title != nil {
		title = *dto.Title
	}
	body := row.Body
	if dto.Body != nil {
		body = *dto.Body
	}
	tags := row.Tags
	if dto.Tags != nil {
		tags = encodeTags(*dto.Tags)
	}

	snapshot := &docDatamodel.DocumentVersion{
		DocumentID:    docID,
		Version:       expected + 1,
		Title:         title,
		Body:          body,
		ChangeSummary: dto.ChangeSummary,
		EditorID:      user.ID,
	}

	if err := s.repo.UpdateWithSnapshot(docID, expected, title, body, tags, snapshot); err != nil {
		if errors.Is(err, ErrVersionConflict) {
			return nil, internal.NewConflictError("Document was modified concurrently", internal.ErrCodeVersionConflict)
		}
		return nil, internal.NewInternalError("failed to update document", err)
	}

	s.log(docID, user.ID, "edit", dto.ChangeSummary)
	s.record(ctx, "DOCUMENT_EDITED", &user.ID, "document "+strconv.FormatInt(docID, 10))

	row.Title = title
	row.Body = body
	row.Tags = tags
	row.Version = expected + 1
	return FromDataModel(row), nil
}

// Publish moves a draft to published. Any other starting status is a
// conflict, not a no-op.
func (s *Service) Publish(ctx context.Context, user *internal.SessionUser, docID int64) (*Document, error) {
	row, _, err := s.load(docID)
	if err != nil {
		return nil, err
	}
	if !s.canModerate(user, row) {
		return nil, internal.ErrInsufficientRole
	}
	if row.Status != StatusDraft {
		return nil, internal.NewConflictError("Only drafts can be published", internal.ErrCodeInvalidDocStatus)
	}

	if err := s.repo.UpdateStatus(docID, StatusPublished); err != nil {
		return nil, internal.NewInternalError("failed to publish document", err)
	}

	s.log(docID, user.ID, "publish", "")
	s.record(ctx, "DOCUMENT_PUBLISHED", &user.ID, row.Title)

	row.Status = StatusPublished
	return FromDataModel(row), nil
}

// Archive is reachable from draft or published and is terminal.
func (s *Service) Archive(ctx context.Context, user *internal.SessionUser, docID int64) (*Document, error) {
	row, _, err := s.load(docID)
	if err != nil {
		return nil, err
	}
	if !s.canModerate(user, row) {
		return nil, internal.ErrInsufficientRole
	}
	if row.Status == StatusArchived {
		return nil, internal.NewConflictError("Document is already archived", internal.ErrCodeInvalidDocStatus)
	}

	if err := s.repo.UpdateStatus(docID, StatusArchived); err != nil {
		return nil, internal.NewInternalError("failed to archive document", err)
	}

	s.log(docID, user.ID, "archive", "")
	s.record(ctx, "DOCUMENT_ARCHIVED", &user.ID, row.Title)

	row.Status = StatusArchived
	return FromDataModel(row), nil
}

// Delete soft-deletes: the row and its history stay in the store but the
// document disappears from every read path.
func (s *Service) Delete(ctx context.Context, user *internal.SessionUser, docID int64) error {
	row, _, err := s.load(docID)
	if err != nil {
		return err
	}
	if user.ID != row.AuthorID && user.Role != internal.RoleStaff {
		return internal.ErrInsufficientRole
	}

	if err := s.repo.SoftDelete(docID); err != nil {
		return internal.NewInternalError("failed to delete document", err)
	}

	s.log(docID, user.ID, "delete", "")
	s.record(ctx, "DOCUMENT_DELETED", &user.ID, row.Title)
	return nil
}

func (s *Service) ListVersions(ctx context.Context, user *internal.SessionUser, docID int64) ([]*Version, error) {
	row, perms, err := s.load(docID)
	if err != nil {
		return nil, err
	}
	if !CanAccess(user, row, perms).Allowed {
		return nil, internal.ErrDocumentAccessDenied
	}

	rows, err := s.repo.ListVersions(docID)
	if err != nil {
		return nil, internal.NewInternalError("failed to list versions", err)
	}
	versions := make([]*Version, 0, len(rows))
	for _, v := range rows {
		versions = append(versions, VersionFromDataModel(v))
	}
	return versions, nil
}

func (s *Service) GetPermissions(ctx context.Context, user *internal.SessionUser, docID int64) ([]*Permission, error) {
	row, perms, err := s.load(docID)
	if err != nil {
		return nil, err
	}
	if !s.canManagePermissions(user, row) {
		return nil, internal.ErrInsufficientRole
	}

	out := make([]*Permission, 0, len(perms))
	for _, p := range perms {
		out = append(out, PermissionFromDataModel(p))
	}
	return out, nil
}

// SetPermissions replaces entries by natural key (kind + subject). An entry
// with is_allowed=false removes the matching row.
func (s *Service) SetPermissions(ctx context.Context, user *internal.SessionUser, docID int64, dto SetPermissionsDTO) error {
	if err := dto.Validate(); err != nil {
		return err
	}

	row, _, err := s.load(docID)
	if err != nil {
		return err
	}
	if !s.canManagePermissions(user, row) {
		return internal.ErrInsufficientRole
	}

	var upserts, removals []*docDatamodel.DocumentPermission
	for _, entry := range dto.Permissions {
		perm := &docDatamodel.DocumentPermission{
			DocumentID:        docID,
			Kind:              entry.Kind,
			SubjectUserID:     entry.UserID,
			SubjectRole:       entry.Role,
			SubjectDepartment: entry.Department,
			GrantedBy:         user.ID,
		}
		if entry.IsAllowed {
			upserts = append(upserts, perm)
		} else {
			removals = append(removals, perm)
		}
	}

	if err := s.repo.ApplyPermissions(docID, upserts, removals); err != nil {
		return internal.NewInternalError("failed to set permissions", err)
	}

	s.log(docID, user.ID, "permissions_changed", "")
	s.record(ctx, "DOCUMENT_PERMISSIONS_CHANGED", &user.ID, "document "+strconv.FormatInt(docID, 10))
	return nil
}

func (s *Service) ListLogs(ctx context.Context, user *internal.SessionUser, docID int64) ([]*Log, error) {
	row, _, err := s.load(docID)
	if err != nil {
		return nil, err
	}
	if user.ID != row.AuthorID && !user.HasRole(internal.RoleDirection, internal.RoleStaff) {
		return nil, internal.ErrInsufficientRole
	}

	rows, err := s.repo.ListLogs(docID, 100)
	if err != nil {
		return nil, internal.NewInternalError("failed to list document logs", err)
	}
	logs := make([]*Log, 0, len(rows))
	for _, l := range rows {
		logs = append(logs, LogFromDataModel(l))
	}
	return logs, nil
}

func (s *Service) load(docID int64) (*docDatamodel.Document, []*docDatamodel.DocumentPermission, error) {
	row, err := s.repo.GetByID(docID)
	if err != nil {
		return nil, nil, internal.NewInternalError("failed to get document", err)
	}
	if row == nil || row.Deleted {
		return nil, nil, internal.ErrDocumentNotFound
	}
	perms, err := s.repo.GetPermissions(docID)
	if err != nil {
		return nil, nil, internal.NewInternalError("failed to get permissions", err)
	}
	return row, perms, nil
}

// canEdit: the author while the document is a draft, or direction/staff at
// any point.
func (s *Service) canEdit(user *internal.SessionUser, row *docDatamodel.Document) bool {
	if user.HasRole(internal.RoleDirection, internal.RoleStaff) {
		return true
	}
	return user.ID == row.AuthorID && row.Status == StatusDraft
}

// canModerate: the author or direction/staff, regardless of status. Status
// preconditions are checked separately so a bad transition reads as a
// conflict, not a permission failure.
func (s *Service) canModerate(user *internal.SessionUser, row *docDatamodel.Document) bool {
	return user.ID == row.AuthorID || user.HasRole(internal.RoleDirection, internal.RoleStaff)
}

func (s *Service) canManagePermissions(user *internal.SessionUser, row *docDatamodel.Document) bool {
	return user.ID == row.AuthorID || user.Role == internal.RoleStaff
}

func (s *Service) log(docID, userID int64, action, details string) {
	row := &docDatamodel.DocumentLog{
		DocumentID: docID,
		UserID:     userID,
		Action:     action,
		Details:    details,
	}
	if err := s.repo.AddLog(row); err != nil {
		s.logger.Error("document log write failed", "document_id", docID, "action", action, "error", err)
	}
}

func (s *Service) record(ctx context.Context, action string, userID *int64, details string) {
	if s.audit == nil {
		return
	}
	s.audit.Record(ctx, action, userID, details)
}
