package audit

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/obsidianfr/intranet/internal/transport"
	"github.com/obsidianfr/intranet/pkg/logger"
)

type ServiceAPI interface {
	Query(ctx context.Context, action string, limit int) ([]*Entry, error)
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

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	action := r.URL.Query().Get("action")

	entries, err := h.Service.Query(r.Context(), action, limit)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, map[string]interface{}{"logs": entries})
}
