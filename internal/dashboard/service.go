package dashboard

import (
	"context"
	"log/slog"
	"time"

	"github.com/obsidianfr/intranet/internal"
	"github.com/obsidianfr/intranet/internal/document"
	"github.com/obsidianfr/intranet/internal/message"
	"github.com/obsidianfr/intranet/internal/module"
)

// StatsRepository answers the count queries the overview needs. It reads
// the same tables as the domain repositories but never writes.
type StatsRepository interface {
	SentSince(userID int64, since time.Time) (int, error)
	ReceivedSince(userID int64, since time.Time) (int, error)
	DocumentsCreatedSince(userID int64, since time.Time) (int, error)
	DocumentsViewedSince(userID int64, since time.Time) (int, error)
	PendingValidationCount() (int, error)
}

type ModuleAPI interface {
	List(ctx context.Context) ([]*module.Module, error)
}

type MessageAPI interface {
	UnreadCount(ctx context.Context, user *internal.SessionUser) (int, error)
	ListFolder(ctx context.Context, user *internal.SessionUser, folder string, page int) (*message.FolderListResponse, error)
}

type DocumentAPI interface {
	List(ctx context.Context, user *internal.SessionUser, filters document.ListFilters) (*document.ListResponse, error)
}

const (
	recentWindow = 7 * 24 * time.Hour
	recentItems  = 5
)

// Service assembles the landing-page overview. Each block degrades to its
// zero value on failure so one broken query never blanks the whole page.
type Service struct {
	stats     StatsRepository
	modules   ModuleAPI
	messages  MessageAPI
	documents DocumentAPI
	logger    *slog.Logger
}

func NewService(stats StatsRepository, modules ModuleAPI, messages MessageAPI, documents DocumentAPI, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		stats:     stats,
		modules:   modules,
		messages:  messages,
		documents: documents,
		logger:    logger,
	}
}

func (s *Service) Overview(ctx context.Context, user *internal.SessionUser) (*Overview, error) {
	since := time.Now().Add(-recentWindow)
	out := &Overview{User: user}

	modules, err := s.modules.List(ctx)
	if err != nil {
		s.logger.Warn("dashboard: module list failed", "error", err)
	} else {
		out.Modules = modules
	}

	out.Messaging = s.messagingStats(ctx, user, since)
	out.Documents = s.documentStats(user, since)

	if inbox, err := s.messages.ListFolder(ctx, user, message.FolderInbox, 1); err != nil {
		s.logger.Warn("dashboard: inbox listing failed", "user_id", user.ID, "error", err)
	} else {
		msgs := inbox.Messages
		if len(msgs) > recentItems {
			msgs = msgs[:recentItems]
		}
		out.RecentMessages = msgs
	}

	if docs, err := s.documents.List(ctx, user, document.ListFilters{PerPage: recentItems}); err != nil {
		s.logger.Warn("dashboard: document listing failed", "user_id", user.ID, "error", err)
	} else {
		out.RecentDocuments = docs.Documents
	}

	return out, nil
}

func (s *Service) messagingStats(ctx context.Context, user *internal.SessionUser, since time.Time) MessagingStats {
	var stats MessagingStats

	if unread, err := s.messages.UnreadCount(ctx, user); err == nil {
		stats.Unread = unread
	} else {
		s.logger.Warn("dashboard: unread count failed", "user_id", user.ID, "error", err)
	}
	if sent, err := s.stats.SentSince(user.ID, since); err == nil {
		stats.SentWeek = sent
	}
	if received, err := s.stats.ReceivedSince(user.ID, since); err == nil {
		stats.ReceivedWeek = received
	}
	return stats
}

func (s *Service) documentStats(user *internal.SessionUser, since time.Time) DocumentStats {
	var stats DocumentStats

	if created, err := s.stats.DocumentsCreatedSince(user.ID, since); err == nil {
		stats.CreatedWeek = created
	}
	if viewed, err := s.stats.DocumentsViewedSince(user.ID, since); err == nil {
		stats.ViewedWeek = viewed
	}
	if user.HasRole(internal.RoleDirection, internal.RoleStaff) {
		if pending, err := s.stats.PendingValidationCount(); err == nil {
			stats.PendingValidation = &pending
		}
	}
	return stats
}
