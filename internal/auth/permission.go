package auth

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi"

	"github.com/obsidianfr/intranet/internal"
	"github.com/obsidianfr/intranet/internal/transport"
)

// Coarse capability grants read by the dashboard and admin UI. Document
// access is decided by the document package's evaluator, never by these rows.

type RoleGrant struct {
	ID         int64     `json:"id"`
	Role       string    `json:"role"`
	Permission string    `json:"permission"`
	CreatedAt  time.Time `json:"created_at"`
}

type UserGrant struct {
	ID         int64      `json:"id"`
	UserID     int64      `json:"user_id"`
	Permission string     `json:"permission"`
	ExpiresAt  *time.Time `json:"expires_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}

type PermissionRepositoryAPI interface {
	ListRoleGrants() ([]RoleGrant, error)
	GrantToRole(role, permission string, grantedBy int64) (*RoleGrant, error)
	RevokeFromRole(role, permission string) error
	ListUserGrants(userID int64) ([]UserGrant, error)
	GrantToUser(userID int64, permission string, expiresAt *time.Time, grantedBy int64) (*UserGrant, error)
	RevokeFromUser(userID int64, permission string) error
	EffectivePermissions(userID int64, role string) ([]string, error)
}

type PermissionService struct {
	repo   PermissionRepositoryAPI
	audit  AuditRecorder
	logger *slog.Logger
}

func NewPermissionService(repo PermissionRepositoryAPI, audit AuditRecorder, logger *slog.Logger) *PermissionService {
	if logger == nil {
		logger = slog.Default()
	}
	return &PermissionService{repo: repo, audit: audit, logger: logger}
}

func (s *PermissionService) ListRoleGrants() ([]RoleGrant, error) {
	return s.repo.ListRoleGrants()
}

func (s *PermissionService) GrantToRole(ctx context.Context, role, permission string, actor *internal.SessionUser) (*RoleGrant, error) {
	if !internal.IsValidRole(role) {
		return nil, internal.NewValidationError("unknown role", internal.ErrCodeInvalidRole)
	}
	if permission == "" {
		return nil, internal.NewValidationFieldError("permission", "permission is required", "REQUIRED")
	}
	grant, err := s.repo.GrantToRole(role, permission, actor.ID)
	if err != nil {
		return nil, err
	}
	if s.audit != nil {
		s.audit.Record(ctx, "PERMISSION_GRANTED", &actor.ID, "role="+role+" permission="+permission)
	}
	return grant, nil
}

func (s *PermissionService) RevokeFromRole(ctx context.Context, role, permission string, actor *internal.SessionUser) error {
	if err := s.repo.RevokeFromRole(role, permission); err != nil {
		return err
	}
	if s.audit != nil {
		s.audit.Record(ctx, "PERMISSION_REVOKED", &actor.ID, "role="+role+" permission="+permission)
	}
	return nil
}

func (s *PermissionService) ListUserGrants(userID int64) ([]UserGrant, error) {
	return s.repo.ListUserGrants(userID)
}

func (s *PermissionService) GrantToUser(ctx context.Context, userID int64, permission string, expiresAt *time.Time, actor *internal.SessionUser) (*UserGrant, error) {
	if permission == "" {
		return nil, internal.NewValidationFieldError("permission", "permission is required", "REQUIRED")
	}
	grant, err := s.repo.GrantToUser(userID, permission, expiresAt, actor.ID)
	if err != nil {
		return nil, err
	}
	if s.audit != nil {
		s.audit.Record(ctx, "PERMISSION_GRANTED", &actor.ID, "user_id="+strconv.FormatInt(userID, 10)+" permission="+permission)
	}
	return grant, nil
}

func (s *PermissionService) RevokeFromUser(ctx context.Context, userID int64, permission string, actor *internal.SessionUser) error {
	if err := s.repo.RevokeFromUser(userID, permission); err != nil {
		return err
	}
	if s.audit != nil {
		s.audit.Record(ctx, "PERMISSION_REVOKED", &actor.ID, "user_id="+strconv.FormatInt(userID, 10)+" permission="+permission)
	}
	return nil
}

func (s *PermissionService) EffectivePermissions(userID int64, role string) ([]string, error) {
	return s.repo.EffectivePermissions(userID, role)
}

type PermissionHandler struct {
	*transport.BaseHandler
	Service *PermissionService
}

func NewPermissionHandler(svc *PermissionService) *PermissionHandler {
	return &PermissionHandler{
		BaseHandler: transport.NewBaseHandler(nil),
		Service:     svc,
	}
}

func (h *PermissionHandler) ListRoleGrants(w http.ResponseWriter, r *http.Request) {
	grants, err := h.Service.ListRoleGrants()
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, map[string]interface{}{"permissions": grants})
}

type roleGrantDTO struct {
	Role       string `json:"role"`
	Permission string `json:"permission"`
}

func (h *PermissionHandler) GrantToRole(w http.ResponseWriter, r *http.Request) {
	user, ok := internal.UserFromContext(r.Context())
	if !ok {
		h.HandleServiceError(w, internal.ErrInvalidToken)
		return
	}

	var dto roleGrantDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	grant, err := h.Service.GrantToRole(r.Context(), dto.Role, dto.Permission, user)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusCreated, grant)
}

func (h *PermissionHandler) RevokeFromRole(w http.ResponseWriter, r *http.Request) {
	user, ok := internal.UserFromContext(r.Context())
	if !ok {
		h.HandleServiceError(w, internal.ErrInvalidToken)
		return
	}

	role := chi.URLParam(r, "role")
	permission := chi.URLParam(r, "permission")
	if err := h.Service.RevokeFromRole(r.Context(), role, permission, user); err != nil {
		h.HandleServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *PermissionHandler) ListUserGrants(w http.ResponseWriter, r *http.Request) {
	userID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid user id")
		return
	}

	grants, svcErr := h.Service.ListUserGrants(userID)
	if svcErr != nil {
		h.HandleServiceError(w, svcErr)
		return
	}
	h.WriteJSON(w, http.StatusOK, map[string]interface{}{"permissions": grants})
}

type userGrantDTO struct {
	UserID     int64      `json:"user_id"`
	Permission string     `json:"permission"`
	ExpiresAt  *time.Time `json:"expires_at,omitempty"`
}

func (h *PermissionHandler) GrantToUser(w http.ResponseWriter, r *http.Request) {
	user, ok := internal.UserFromContext(r.Context())
	if !ok {
		h.HandleServiceError(w, internal.ErrInvalidToken)
		return
	}

	var dto userGrantDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	grant, err := h.Service.GrantToUser(r.Context(), dto.UserID, dto.Permission, dto.ExpiresAt, user)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusCreated, grant)
}

func (h *PermissionHandler) RevokeFromUser(w http.ResponseWriter, r *http.Request) {
	user, ok := internal.UserFromContext(r.Context())
	if !ok {
		h.HandleServiceError(w, internal.ErrInvalidToken)
		return
	}

	userID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid user id")
		return
	}

	permission := chi.URLParam(r, "permission")
	if err := h.Service.RevokeFromUser(r.Context(), userID, permission, user); err != nil {
		h.HandleServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
