package dashboard

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/obsidianfr/intranet/internal"
	"github.com/obsidianfr/intranet/internal/transport"
	"github.com/obsidianfr/intranet/pkg/logger"
)

type ServiceAPI interface {
	Overview(ctx context.Context, user *internal.SessionUser) (*Overview, error)
}

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

func (h *Handler) Overview(w http.ResponseWriter, r *http.Request) {
	user, ok := internal.UserFromContext(r.Context())
	if !ok {
		h.HandleServiceError(w, internal.ErrInvalidToken)
		return
	}

	overview, err := h.Service.Overview(r.Context(), user)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, overview)
}
