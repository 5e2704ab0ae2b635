package user

import (
	"context"
	"log/slog"
	"strconv"
	"strings"

	"github.com/obsidianfr/intranet/internal"
	userDatamodel "github.com/obsidianfr/intranet/internal/core/datamodel/user"
	"github.com/obsidianfr/intranet/internal/core/events"
)

type Repository interface {
	GetAll() ([]*userDatamodel.User, error)
	GetByID(userID int64) (*userDatamodel.User, error)
	GetByUsername(username string) (*userDatamodel.User, error)
	Create(row *userDatamodel.User) error
	UpdateClearance(userID int64, clearance int) error
	UpdateRole(userID int64, role string) error
	SetSuspended(userID int64, suspended bool) error
	UpdatePassword(userID int64, passwordHash string) error
	Delete(userID int64) error
	AddNote(row *userDatamodel.HRNote) error
	GetNotes(userID int64) ([]*userDatamodel.HRNote, error)
	ListActive() ([]*userDatamodel.User, error)
	SearchActive(query string, limit int) ([]*userDatamodel.User, error)
}

type PasswordHasher interface {
	HashPassword(password string) (string, error)
}

type AuditRecorder interface {
	Record(ctx context.Context, action string, userID *int64, details string)
}

type EventPublisher interface {
	Publish(ctx context.Context, event events.Event) error
}

type Service struct {
	repo     Repository
	hasher   PasswordHasher
	audit    AuditRecorder
	eventBus EventPublisher
	logger   *slog.Logger
}

func NewService(repo Repository, hasher PasswordHasher, audit AuditRecorder, eventBus EventPublisher, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		repo:     repo,
		hasher:   hasher,
		audit:    audit,
		eventBus: eventBus,
		logger:   logger,
	}
}

func (s *Service) ListUsers(ctx context.Context) ([]*User, error) {
	rows, err := s.repo.GetAll()
	if err != nil {
		return nil, internal.NewInternalError("failed to list users", err)
	}
	users := make([]*User, 0, len(rows))
	for _, row := range rows {
		users = append(users, FromDataModel(row))
	}
	return users, nil
}

// GetFiche returns the personnel file: the user plus HR notes.
func (s *Service) GetFiche(ctx context.Context, userID int64) (*User, []*HRNote, error) {
	row, err := s.repo.GetByID(userID)
	if err != nil {
		return nil, nil, internal.NewInternalError("failed to get user", err)
	}
	if row == nil {
		return nil, nil, internal.ErrUserNotFound
	}

	noteRows, err := s.repo.GetNotes(userID)
	if err != nil {
		return nil, nil, internal.NewInternalError("failed to get notes", err)
	}
	notes := make([]*HRNote, 0, len(noteRows))
	for _, n := range noteRows {
		notes = append(notes, NoteFromDataModel(n))
	}
	return FromDataModel(row), notes, nil
}

func (s *Service) CreateUser(ctx context.Context, actor *internal.SessionUser, dto CreateUserDTO) (*CreatedUserResponse, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	existing, err := s.repo.GetByUsername(dto.Username)
	if err != nil {
		return nil, internal.NewInternalError("failed to check username", err)
	}
	if existing != nil {
		return nil, internal.NewConflictError("Username already taken", internal.ErrCodeUsernameTaken)
	}

	tempPassword, err := GenerateTemporaryPassword()
	if err != nil {
		return nil, internal.NewInternalError("failed to generate password", err)
	}
	hash, err := s.hasher.HashPassword(tempPassword)
	if err != nil {
		return nil, internal.NewInternalError("failed to hash password", err)
	}

	row := &userDatamodel.User{
		Username:     dto.Username,
		PasswordHash: hash,
		Role:         dto.Role,
		Clearance:    dto.Clearance,
		Department:   dto.Department,
	}
	if err := s.repo.Create(row); err != nil {
		return nil, internal.NewInternalError("failed to create user", err)
	}

	s.record(ctx, "USER_CREATED", &actor.ID, "created "+dto.Username+" role="+dto.Role)
	s.publish(ctx, events.NewUserCreatedEvent(row.ID, row.Username, row.Role, row.Department, tempPassword))

	s.logger.Info("user created", "user_id", row.ID, "username", row.Username, "by", actor.ID)

	return &CreatedUserResponse{
		User:              FromDataModel(row),
		TemporaryPassword: tempPassword,
	}, nil
}

func (s *Service) UpdateClearance(ctx context.Context, actor *internal.SessionUser, userID int64, dto UpdateClearanceDTO) (*User, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	row, err := s.mustGet(userID)
	if err != nil {
		return nil, err
	}

	if err := s.repo.UpdateClearance(userID, dto.Clearance); err != nil {
		return nil, internal.NewInternalError("failed to update clearance", err)
	}

	s.record(ctx, "CLEARANCE_CHANGED", &actor.ID,
		row.Username+" clearance "+strconv.Itoa(row.Clearance)+" -> "+strconv.Itoa(dto.Clearance))

	row.Clearance = dto.Clearance
	return FromDataModel(row), nil
}

// UpdateRole changes a user's role. Staff operators cannot touch admin
// accounts nor promote anyone to admin; that stays admin-only.
func (s *Service) UpdateRole(ctx context.Context, actor *internal.SessionUser, userID int64, dto UpdateRoleDTO) (*User, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	row, err := s.mustGet(userID)
	if err != nil {
		return nil, err
	}

	if actor.Role == internal.RoleStaff && (row.Role == internal.RoleAdmin || dto.Role == internal.RoleAdmin) {
		return nil, internal.ErrInsufficientRole
	}

	if err := s.repo.UpdateRole(userID, dto.Role); err != nil {
		return nil, internal.NewInternalError("failed to update role", err)
	}

	s.record(ctx, "ROLE_CHANGED", &actor.ID, row.Username+" role "+row.Role+" -> "+dto.Role)

	row.Role = dto.Role
	return FromDataModel(row), nil
}

func (s *Service) SetSuspended(ctx context.Context, actor *internal.SessionUser, userID int64, dto SuspendDTO) (*User, error) {
	row, err := s.mustGet(userID)
	if err != nil {
		return nil, err
	}

	if err := s.repo.SetSuspended(userID, dto.Suspended); err != nil {
		return nil, internal.NewInternalError("failed to update suspension", err)
	}

	action := "USER_SUSPENDED"
	if !dto.Suspended {
		action = "USER_REINSTATED"
	}
	s.record(ctx, action, &actor.ID, row.Username)

	row.Suspended = dto.Suspended
	return FromDataModel(row), nil
}

func (s *Service) DeleteUser(ctx context.Context, actor *internal.SessionUser, userID int64) error {
	row, err := s.mustGet(userID)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(userID); err != nil {
		return internal.NewInternalError("failed to delete user", err)
	}

	s.record(ctx, "USER_DELETED", &actor.ID, row.Username)
	s.publish(ctx, events.NewUserDeletedEvent(row.Username, row.Role, row.Department, actor.Username))

	s.logger.Info("user deleted", "user_id", userID, "username", row.Username, "by", actor.ID)
	return nil
}

func (s *Service) ResetPassword(ctx context.Context, actor *internal.SessionUser, userID int64) (*PasswordResetResponse, error) {
	row, err := s.mustGet(userID)
	if err != nil {
		return nil, err
	}

	tempPassword, err := GenerateTemporaryPassword()
	if err != nil {
		return nil, internal.NewInternalError("failed to generate password", err)
	}
	hash, err := s.hasher.HashPassword(tempPassword)
	if err != nil {
		return nil, internal.NewInternalError("failed to hash password", err)
	}

	if err := s.repo.UpdatePassword(userID, hash); err != nil {
		return nil, internal.NewInternalError("failed to reset password", err)
	}

	s.record(ctx, "PASSWORD_RESET", &actor.ID, row.Username)
	s.publish(ctx, events.NewUserPasswordResetEvent(row.Username, tempPassword))

	return &PasswordResetResponse{TemporaryPassword: tempPassword}, nil
}

func (s *Service) AddNote(ctx context.Context, actor *internal.SessionUser, userID int64, dto AddNoteDTO) (*HRNote, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	if _, err := s.mustGet(userID); err != nil {
		return nil, err
	}

	row := &userDatamodel.HRNote{
		UserID:   userID,
		AuthorID: actor.ID,
		Note:     dto.Note,
	}
	if err := s.repo.AddNote(row); err != nil {
		return nil, internal.NewInternalError("failed to add note", err)
	}

	s.record(ctx, "NOTE_ADDED", &actor.ID, "note on user "+strconv.FormatInt(userID, 10))
	return NoteFromDataModel(row), nil
}

func (s *Service) GetNotes(ctx context.Context, userID int64) ([]*HRNote, error) {
	if _, err := s.mustGet(userID); err != nil {
		return nil, err
	}
	rows, err := s.repo.GetNotes(userID)
	if err != nil {
		return nil, internal.NewInternalError("failed to get notes", err)
	}
	notes := make([]*HRNote, 0, len(rows))
	for _, row := range rows {
		notes = append(notes, NoteFromDataModel(row))
	}
	return notes, nil
}

// Directory returns every non-suspended user in their public shape.
func (s *Service) Directory(ctx context.Context) ([]*DirectoryEntry, error) {
	rows, err := s.repo.ListActive()
	if err != nil {
		return nil, internal.NewInternalError("failed to list directory", err)
	}
	return toDirectory(rows), nil
}

func (s *Service) SearchDirectory(ctx context.Context, query string, minLen, limit int) ([]*DirectoryEntry, error) {
	query = strings.TrimSpace(query)
	if len(query) < minLen {
		return nil, internal.NewValidationFieldError("q",
			"query must be at least "+strconv.Itoa(minLen)+" characters", internal.ErrCodeValidationFailed)
	}
	rows, err := s.repo.SearchActive(query, limit)
	if err != nil {
		return nil, internal.NewInternalError("failed to search directory", err)
	}
	return toDirectory(rows), nil
}

func toDirectory(rows []*userDatamodel.User) []*DirectoryEntry {
	entries := make([]*DirectoryEntry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, &DirectoryEntry{
			ID:         row.ID,
			Username:   row.Username,
			Role:       row.Role,
			Department: row.Department,
		})
	}
	return entries
}

func (s *Service) mustGet(userID int64) (*userDatamodel.User, error) {
	row, err := s.repo.GetByID(userID)
	if err != nil {
		return nil, internal.NewInternalError("failed to get user", err)
	}
	if row == nil {
		return nil, internal.ErrUserNotFound
	}
	return row, nil
}

func (s *Service) record(ctx context.Context, action string, userID *int64, details string) {
	if s.audit == nil {
		return
	}
	s.audit.Record(ctx, action, userID, details)
}

func (s *Service) publish(ctx context.Context, event events.Event) {
	if s.eventBus == nil {
		return
	}
	if err := s.eventBus.Publish(ctx, event); err != nil {
		s.logger.Error("event publish failed", "event_type", event.EventType(), "error", err)
	}
}
