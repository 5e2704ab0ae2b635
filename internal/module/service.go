package module

import (
	"context"
	"log/slog"
	"strconv"

	"github.com/obsidianfr/intranet/internal"
	moduleDatamodel "github.com/obsidianfr/intranet/internal/core/datamodel/module"
)

type Repository interface {
	GetAll() ([]*moduleDatamodel.Module, error)
	GetByName(name string) (*moduleDatamodel.Module, error)
	SetEnabled(name string, enabled bool) error
	SetConfig(name string, config string) error
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

func (s *Service) List(ctx context.Context) ([]*Module, error) {
	rows, err := s.repo.GetAll()
	if err != nil {
		return nil, internal.NewInternalError("failed to list modules", err)
	}
	modules := make([]*Module, 0, len(rows))
	for _, row := range rows {
		modules = append(modules, FromDataModel(row))
	}
	return modules, nil
}

func (s *Service) Get(ctx context.Context, name string) (*Module, error) {
	row, err := s.load(name)
	if err != nil {
		return nil, err
	}
	return FromDataModel(row), nil
}

// IsEnabled reports whether a named module is switched on. An unknown name
// reads as enabled so a missing seed row never dead-locks a route.
func (s *Service) IsEnabled(ctx context.Context, name string) bool {
	row, err := s.repo.GetByName(name)
	if err != nil {
		s.logger.Warn("module lookup failed", "module", name, "error", err)
		return true
	}
	if row == nil {
		return true
	}
	return row.Enabled
}

func (s *Service) Toggle(ctx context.Context, actor *internal.SessionUser, name string, dto ToggleDTO) (*Module, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	row, err := s.load(name)
	if err != nil {
		return nil, err
	}

	if err := s.repo.SetEnabled(name, *dto.Enabled); err != nil {
		return nil, internal.NewInternalError("failed to toggle module", err)
	}
	row.Enabled = *dto.Enabled

	s.record(ctx, "MODULE_TOGGLED", &actor.ID, name+" enabled="+strconv.FormatBool(*dto.Enabled))
	return FromDataModel(row), nil
}

func (s *Service) Configure(ctx context.Context, actor *internal.SessionUser, name string, dto ConfigureDTO) (*Module, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	row, err := s.load(name)
	if err != nil {
		return nil, err
	}

	if err := s.repo.SetConfig(name, string(dto.Config)); err != nil {
		return nil, internal.NewInternalError("failed to configure module", err)
	}
	row.Config = string(dto.Config)

	s.record(ctx, "MODULE_CONFIGURED", &actor.ID, name)
	return FromDataModel(row), nil
}

func (s *Service) load(name string) (*moduleDatamodel.Module, error) {
	row, err := s.repo.GetByName(name)
	if err != nil {
		return nil, internal.NewInternalError("failed to get module", err)
	}
	if row == nil {
		return nil, internal.NewNotFoundError("Module not found", internal.ErrCodeModuleNotFound)
	}
	return row, nil
}

func (s *Service) record(ctx context.Context, action string, userID *int64, details string) {
	if s.audit == nil {
		return
	}
	s.audit.Record(ctx, action, userID, details)
}
