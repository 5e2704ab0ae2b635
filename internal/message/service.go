package message

import (
	"context"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/obsidianfr/intranet/internal"
	msgDatamodel "github.com/obsidianfr/intranet/internal/core/datamodel/message"
)

type Entry struct {
	Message *msgDatamodel.Message
	Mailbox *msgDatamodel.Mailbox
}

type Repository interface {
	CreateMessage(msg *msgDatamodel.Message, boxes []*msgDatamodel.Mailbox) error
	GetEntry(userID, messageID int64) (*Entry, error)
	ListFolder(userID int64, folder string, offset, limit int) ([]*Entry, int, error)
	FolderCounts(userID int64) (map[string]int, error)
	UnreadCount(userID int64) (int, error)
	SetRead(userID, messageID int64, read bool) error
	MoveFolder(userID, messageID int64, folder string) error
	SoftDeleteEntry(userID, messageID int64) error
	Search(userID int64, query string, limit int) ([]*Entry, error)
	CountSentToday(userID int64) (int, error)
	ActiveRestriction(userID int64, now time.Time) (*msgDatamodel.SendRestriction, error)
	ListRestrictions(userID int64) ([]*msgDatamodel.SendRestriction, error)
	CreateRestriction(row *msgDatamodel.SendRestriction) error
	DeleteRestriction(restrictionID int64) error
	UserExists(userID int64) (bool, error)
	SaveDraft(msg *msgDatamodel.Message, box *msgDatamodel.Mailbox) error
	UpdateDraft(userID int64, msg *msgDatamodel.Message) error
}

type AuditRecorder interface {
	Record(ctx context.Context, action string, userID *int64, details string)
}

type QuotaAPI interface {
	Allow(ctx context.Context, userID int64) (bool, error)
	Consume(ctx context.Context, userID int64)
}

type Config struct {
	PageSize    int
	SearchLimit int
	MinQueryLen int
}

type Service struct {
	repo   Repository
	quota  QuotaAPI
	audit  AuditRecorder
	cfg    Config
	logger *slog.Logger
}

func NewService(repo Repository, quota QuotaAPI, audit AuditRecorder, cfg Config, logger *slog.Logger) *Service {
	if cfg.PageSize <= 0 {
		cfg.PageSize = internal.DefaultMessagePage
	}
	if cfg.SearchLimit <= 0 {
		cfg.SearchLimit = internal.DefaultSearchLimit
	}
	if cfg.MinQueryLen <= 0 {
		cfg.MinQueryLen = internal.DefaultMinQueryLen
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, quota: quota, audit: audit, cfg: cfg, logger: logger}
}

// Send writes one shared body plus two mailbox rows: sender/sent already
// read, recipient/inbox unread. A restriction is a 403, a spent quota a 429;
// both are checked before anything is written.
func (s *Service) Send(ctx context.Context, sender *internal.SessionUser, dto SendMessageDTO) (*Message, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	if err := s.checkSendAllowed(ctx, sender.ID); err != nil {
		return nil, err
	}

	exists, err := s.repo.UserExists(dto.RecipientID)
	if err != nil {
		return nil, internal.NewInternalError("failed to check recipient", err)
	}
	if !exists {
		return nil, internal.ErrUserNotFound
	}

	msg := &msgDatamodel.Message{
		SenderID:    sender.ID,
		RecipientID: &dto.RecipientID,
		Subject:     dto.Subject,
		Body:        dto.Body,
		Priority:    dto.Priority,
	}
	boxes := []*msgDatamodel.Mailbox{
		{UserID: sender.ID, Folder: FolderSent, IsRead: true},
		{UserID: dto.RecipientID, Folder: FolderInbox, IsRead: false},
	}

	if err := s.repo.CreateMessage(msg, boxes); err != nil {
		return nil, internal.NewInternalError("failed to send message", err)
	}

	s.quota.Consume(ctx, sender.ID)
	s.record(ctx, "MESSAGE_SENT", &sender.ID,
		"to user "+strconv.FormatInt(dto.RecipientID, 10)+" priority="+dto.Priority)

	return FromDataModel(msg, boxes[0]), nil
}

func (s *Service) SaveDraft(ctx context.Context, sender *internal.SessionUser, dto DraftDTO) (*Message, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	msg := &msgDatamodel.Message{
		SenderID:    sender.ID,
		RecipientID: dto.RecipientID,
		Subject:     dto.Subject,
		Body:        dto.Body,
		Priority:    dto.Priority,
	}
	box := &msgDatamodel.Mailbox{UserID: sender.ID, Folder: FolderDrafts, IsRead: true}

	if err := s.repo.SaveDraft(msg, box); err != nil {
		return nil, internal.NewInternalError("failed to save draft", err)
	}
	return FromDataModel(msg, box), nil
}

func (s *Service) UpdateDraft(ctx context.Context, sender *internal.SessionUser, messageID int64, dto DraftDTO) (*Message, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	entry, err := s.ownEntry(sender.ID, messageID)
	if err != nil {
		return nil, err
	}
	if entry.Mailbox.Folder != FolderDrafts {
		return nil, internal.NewConflictError("Only drafts can be updated", internal.ErrCodeInvalidFolder)
	}

	entry.Message.Subject = dto.Subject
	entry.Message.Body = dto.Body
	entry.Message.Priority = dto.Priority
	entry.Message.RecipientID = dto.RecipientID

	if err := s.repo.UpdateDraft(sender.ID, entry.Message); err != nil {
		return nil, internal.NewInternalError("failed to update draft", err)
	}
	return FromDataModel(entry.Message, entry.Mailbox), nil
}

func (s *Service) ListFolder(ctx context.Context, user *internal.SessionUser, folder string, page int) (*FolderListResponse, error) {
	if !IsValidFolder(folder) {
		return nil, internal.NewValidationFieldError("folder", "unknown folder", internal.ErrCodeInvalidFolder)
	}
	if page < 1 {
		page = 1
	}

	entries, total, err := s.repo.ListFolder(user.ID, folder, (page-1)*s.cfg.PageSize, s.cfg.PageSize)
	if err != nil {
		return nil, internal.NewInternalError("failed to list folder", err)
	}

	messages := make([]*Message, 0, len(entries))
	for _, e := range entries {
		messages = append(messages, FromDataModel(e.Message, e.Mailbox))
	}
	return &FolderListResponse{
		Messages: messages,
		Total:    total,
		Page:     page,
		PerPage:  s.cfg.PageSize,
	}, nil
}

func (s *Service) FolderCounts(ctx context.Context, user *internal.SessionUser) (map[string]int, error) {
	counts, err := s.repo.FolderCounts(user.ID)
	if err != nil {
		return nil, internal.NewInternalError("failed to count folders", err)
	}
	for _, f := range AllFolders() {
		if _, ok := counts[f]; !ok {
			counts[f] = 0
		}
	}
	return counts, nil
}

func (s *Service) UnreadCount(ctx context.Context, user *internal.SessionUser) (int, error) {
	count, err := s.repo.UnreadCount(user.ID)
	if err != nil {
		return 0, internal.NewInternalError("failed to count unread", err)
	}
	return count, nil
}

// Get returns the message only if the caller holds a mailbox row for it.
func (s *Service) Get(ctx context.Context, user *internal.SessionUser, messageID int64) (*Message, error) {
	entry, err := s.ownEntry(user.ID, messageID)
	if err != nil {
		return nil, err
	}
	return FromDataModel(entry.Message, entry.Mailbox), nil
}

func (s *Service) MarkRead(ctx context.Context, user *internal.SessionUser, messageID int64) error {
	return s.setRead(user, messageID, true)
}

func (s *Service) MarkUnread(ctx context.Context, user *internal.SessionUser, messageID int64) error {
	return s.setRead(user, messageID, false)
}

func (s *Service) setRead(user *internal.SessionUser, messageID int64, read bool) error {
	if _, err := s.ownEntry(user.ID, messageID); err != nil {
		return err
	}
	if err := s.repo.SetRead(user.ID, messageID, read); err != nil {
		return internal.NewInternalError("failed to update read state", err)
	}
	return nil
}

// Move re-files the caller's own row; the other participant's view never
// changes.
func (s *Service) Move(ctx context.Context, user *internal.SessionUser, messageID int64, dto MoveDTO) error {
	if err := dto.Validate(); err != nil {
		return err
	}
	if _, err := s.ownEntry(user.ID, messageID); err != nil {
		return err
	}
	if err := s.repo.MoveFolder(user.ID, messageID, dto.Folder); err != nil {
		return internal.NewInternalError("failed to move message", err)
	}
	return nil
}

func (s *Service) Delete(ctx context.Context, user *internal.SessionUser, messageID int64) error {
	if _, err := s.ownEntry(user.ID, messageID); err != nil {
		return err
	}
	if err := s.repo.SoftDeleteEntry(user.ID, messageID); err != nil {
		return internal.NewInternalError("failed to delete message", err)
	}
	return nil
}

func (s *Service) Search(ctx context.Context, user *internal.SessionUser, query string) ([]*Message, error) {
	query = strings.TrimSpace(query)
	if len(query) < s.cfg.MinQueryLen {
		return nil, internal.NewValidationFieldError("q",
			"query must be at least "+strconv.Itoa(s.cfg.MinQueryLen)+" characters", internal.ErrCodeValidationFailed)
	}

	entries, err := s.repo.Search(user.ID, query, s.cfg.SearchLimit)
	if err != nil {
		return nil, internal.NewInternalError("failed to search messages", err)
	}
	messages := make([]*Message, 0, len(entries))
	for _, e := range entries {
		messages = append(messages, FromDataModel(e.Message, e.Mailbox))
	}
	return messages, nil
}

// ----------------- restrictions (admin) -----------------

func (s *Service) ListRestrictions(ctx context.Context, userID int64) ([]*Restriction, error) {
	rows, err := s.repo.ListRestrictions(userID)
	if err != nil {
		return nil, internal.NewInternalError("failed to list restrictions", err)
	}
	out := make([]*Restriction, 0, len(rows))
	for _, row := range rows {
		out = append(out, RestrictionFromDataModel(row))
	}
	return out, nil
}

func (s *Service) CreateRestriction(ctx context.Context, actor *internal.SessionUser, dto CreateRestrictionDTO) (*Restriction, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	exists, err := s.repo.UserExists(dto.UserID)
	if err != nil {
		return nil, internal.NewInternalError("failed to check user", err)
	}
	if !exists {
		return nil, internal.ErrUserNotFound
	}

	row := &msgDatamodel.SendRestriction{
		UserID:       dto.UserID,
		Reason:       dto.Reason,
		BlockedUntil: dto.BlockedUntil(time.Now()),
		CreatedBy:    actor.ID,
	}
	if err := s.repo.CreateRestriction(row); err != nil {
		return nil, internal.NewInternalError("failed to create restriction", err)
	}

	s.record(ctx, "SEND_RESTRICTION_CREATED", &actor.ID, "user "+strconv.FormatInt(dto.UserID, 10))
	return RestrictionFromDataModel(row), nil
}

func (s *Service) DeleteRestriction(ctx context.Context, actor *internal.SessionUser, restrictionID int64) error {
	if err := s.repo.DeleteRestriction(restrictionID); err != nil {
		return internal.NewInternalError("failed to delete restriction", err)
	}
	s.record(ctx, "SEND_RESTRICTION_REMOVED", &actor.ID, strconv.FormatInt(restrictionID, 10))
	return nil
}

// ----------------- helpers -----------------

func (s *Service) checkSendAllowed(ctx context.Context, senderID int64) error {
	restriction, err := s.repo.ActiveRestriction(senderID, time.Now())
	if err != nil {
		return internal.NewInternalError("failed to check restrictions", err)
	}
	if restriction != nil {
		return internal.NewForbiddenError("Sending is blocked for this account", internal.ErrCodeSendBlocked)
	}

	allowed, err := s.quota.Allow(ctx, senderID)
	if err != nil {
		return internal.NewInternalError("failed to check quota", err)
	}
	if !allowed {
		return internal.NewRateLimitError("Daily message limit reached", internal.ErrCodeDailyLimitReached)
	}
	return nil
}

func (s *Service) ownEntry(userID, messageID int64) (*Entry, error) {
	entry, err := s.repo.GetEntry(userID, messageID)
	if err != nil {
		return nil, internal.NewInternalError("failed to get message", err)
	}
	if entry == nil || entry.Mailbox.Deleted {
		return nil, internal.ErrMessageNotFound
	}
	return entry, nil
}

func (s *Service) record(ctx context.Context, action string, userID *int64, details string) {
	if s.audit == nil {
		return
	}
	s.audit.Record(ctx, action, userID, details)
}
