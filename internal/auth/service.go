package auth

import (
	"context"
	"errors"
	"log/slog"

	"golang.org/x/crypto/bcrypt"

	"github.com/obsidianfr/intranet/internal"
)

// AuditRecorder is implemented by the audit package; auth only needs the
// append side.
type AuditRecorder interface {
	Record(ctx context.Context, action string, userID *int64, details string)
}

type Service struct {
	repo           RepositoryAPI
	tokenGenerator TokenGeneratorAPI
	audit          AuditRecorder
	bcryptCost     int
	logger         *slog.Logger
}

func NewService(repo RepositoryAPI, tokenGen TokenGeneratorAPI, audit AuditRecorder, bcryptCost int, logger *slog.Logger) *Service {
	if bcryptCost < bcrypt.MinCost || bcryptCost > bcrypt.MaxCost {
		bcryptCost = bcrypt.DefaultCost
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		repo:           repo,
		tokenGenerator: tokenGen,
		audit:          audit,
		bcryptCost:     bcryptCost,
		logger:         logger,
	}
}

// Authenticate validates credentials and returns a signed token plus the
// session user. Lookup failure and bad password collapse into the same
// error so the response never reveals which usernames exist.
func (s *Service) Authenticate(ctx context.Context, dto LoginDTO) (*LoginResult, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	creds, err := s.repo.GetCredentials(dto.Username)
	if err != nil {
		s.logger.Warn("login failed: unknown username", "username", dto.Username)
		s.record(ctx, "LOGIN_FAILED", nil, "unknown username: "+dto.Username)
		return nil, ErrInvalidCredentials
	}

	if err := VerifyPassword(creds.PasswordHash, dto.Password); err != nil {
		s.logger.Warn("login failed: bad password", "username", dto.Username)
		s.record(ctx, "LOGIN_FAILED", &creds.UserID, "bad password for "+dto.Username)
		return nil, ErrInvalidCredentials
	}

	if creds.Suspended {
		s.logger.Warn("login refused: account suspended", "username", dto.Username)
		s.record(ctx, "LOGIN_FAILED", &creds.UserID, "suspended account: "+dto.Username)
		return nil, ErrAccountSuspended
	}

	user := &internal.SessionUser{
		ID:         creds.UserID,
		Username:   creds.Username,
		Role:       creds.Role,
		Clearance:  creds.Clearance,
		Department: creds.Department,
	}

	token, err := s.tokenGenerator.Generate(user)
	if err != nil {
		s.logger.Error("token generation failed", "username", dto.Username, "error", err)
		return nil, err
	}

	s.record(ctx, "LOGIN_SUCCESS", &creds.UserID, dto.Username)

	return &LoginResult{Token: token, User: user}, nil
}

func (s *Service) ValidateToken(tokenString string) (*Claims, error) {
	return s.tokenGenerator.Validate(tokenString)
}

// SessionUser reloads the user row behind a valid token so a suspension or
// role change takes effect before the token expires.
func (s *Service) SessionUser(userID int64) (*internal.SessionUser, error) {
	user, err := s.repo.GetSessionUser(userID)
	if err != nil {
		if errors.Is(err, ErrAccountSuspended) {
			return nil, err
		}
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

func (s *Service) HashPassword(password string) (string, error) {
	return HashPassword(password, s.bcryptCost)
}

func (s *Service) record(ctx context.Context, action string, userID *int64, details string) {
	if s.audit == nil {
		return
	}
	s.audit.Record(ctx, action, userID, details)
}
