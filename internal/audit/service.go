package audit

import (
	"context"
	"log/slog"

	"github.com/obsidianfr/intranet/internal"
	auditDatamodel "github.com/obsidianfr/intranet/internal/core/datamodel/audit"
)

const (
	DefaultQueryLimit = 100
	MaxQueryLimit     = 1000
)

type Repository interface {
	Append(row *auditDatamodel.Log) error
	Query(action string, limit int) ([]*auditDatamodel.Log, error)
}

// Service is the shared audit sink. Every domain service depends on its
// Record method through a local interface; a failed append is logged and
// dropped so auditing never fails a request.
type Service struct {
	repo   Repository
	logger *slog.Logger
}

func NewService(repo Repository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, logger: logger}
}

func (s *Service) Record(ctx context.Context, action string, userID *int64, details string) {
	row := &auditDatamodel.Log{
		Action:    action,
		UserID:    userID,
		Details:   details,
		IPAddress: internal.IPFromContext(ctx),
	}
	if err := s.repo.Append(row); err != nil {
		s.logger.Error("audit append failed", "action", action, "error", err)
	}
}

func (s *Service) Query(ctx context.Context, action string, limit int) ([]*Entry, error) {
	if limit <= 0 {
		limit = DefaultQueryLimit
	}
	if limit > MaxQueryLimit {
		limit = MaxQueryLimit
	}

	rows, err := s.repo.Query(action, limit)
	if err != nil {
		return nil, internal.NewInternalError("failed to query logs", err)
	}
	entries := make([]*Entry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, FromDataModel(row))
	}
	return entries, nil
}
