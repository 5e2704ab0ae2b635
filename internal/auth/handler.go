package auth

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/obsidianfr/intranet/internal"
	"github.com/obsidianfr/intranet/internal/transport"
	"github.com/obsidianfr/intranet/pkg/logger"
)

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(svc ServiceAPI) *Handler {
	lg := logger.LoggerWrapper()
	if lg == nil {
		lg = slog.Default()
	}
	return &Handler{
		BaseHandler: transport.NewBaseHandler(lg),
		Service:     svc,
	}
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var dto LoginDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.Service.Authenticate(r.Context(), dto)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidCredentials):
			h.HandleServiceError(w, internal.ErrInvalidCredentials)
		case errors.Is(err, ErrAccountSuspended):
			h.HandleServiceError(w, internal.ErrAccountSuspended)
		default:
			h.HandleServiceError(w, err)
		}
		return
	}

	h.WriteJSON(w, http.StatusOK, result)
}

// AuthMiddleware validates the bearer token and attaches the session user to
// the request context. The user row is reloaded on every request so a
// suspension cuts access immediately, not at token expiry.
func (h *Handler) AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := h.ExtractTokenFromHeader(r)
		if token == "" {
			h.HandleServiceError(w, internal.ErrInvalidToken)
			return
		}

		claims, err := h.Service.ValidateToken(token)
		if err != nil {
			switch {
			case errors.Is(err, ErrTokenExpired):
				h.HandleServiceError(w, internal.ErrTokenExpired)
			default:
				h.HandleServiceError(w, internal.ErrInvalidToken)
			}
			return
		}

		user, err := h.Service.SessionUser(claims.UserID)
		if err != nil {
			if errors.Is(err, ErrAccountSuspended) {
				h.HandleServiceError(w, internal.ErrAccountSuspended)
				return
			}
			h.HandleServiceError(w, internal.ErrInvalidToken)
			return
		}

		ctx := internal.ContextWithUser(r.Context(), user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireRoles gates a subtree to the given roles.
func (h *Handler) RequireRoles(roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := internal.UserFromContext(r.Context())
			if !ok {
				h.HandleServiceError(w, internal.ErrInvalidToken)
				return
			}
			if !user.HasRole(roles...) {
				h.Logger.Warn("role check failed", "user_id", user.ID, "role", user.Role, "path", r.URL.Path)
				h.HandleServiceError(w, internal.ErrInsufficientRole)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func (h *Handler) RequireAdmin(next http.Handler) http.Handler {
	return h.RequireRoles(internal.RoleAdmin)(next)
}
