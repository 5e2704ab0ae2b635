package message

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"

	"github.com/obsidianfr/intranet/internal"
	"github.com/obsidianfr/intranet/internal/transport"
	"github.com/obsidianfr/intranet/pkg/logger"
)

type ServiceAPI interface {
	Send(ctx context.Context, sender *internal.SessionUser, dto SendMessageDTO) (*Message, error)
	SaveDraft(ctx context.Context, sender *internal.SessionUser, dto DraftDTO) (*Message, error)
	UpdateDraft(ctx context.Context, sender *internal.SessionUser, messageID int64, dto DraftDTO) (*Message, error)
	ListFolder(ctx context.Context, user *internal.SessionUser, folder string, page int) (*FolderListResponse, error)
	FolderCounts(ctx context.Context, user *internal.SessionUser) (map[string]int, error)
	UnreadCount(ctx context.Context, user *internal.SessionUser) (int, error)
	Get(ctx context.Context, user *internal.SessionUser, messageID int64) (*Message, error)
	MarkRead(ctx context.Context, user *internal.SessionUser, messageID int64) error
	MarkUnread(ctx context.Context, user *internal.SessionUser, messageID int64) error
	Move(ctx context.Context, user *internal.SessionUser, messageID int64, dto MoveDTO) error
	Delete(ctx context.Context, user *internal.SessionUser, messageID int64) error
	Search(ctx context.Context, user *internal.SessionUser, query string) ([]*Message, error)
	ListRestrictions(ctx context.Context, userID int64) ([]*Restriction, error)
	CreateRestriction(ctx context.Context, actor *internal.SessionUser, dto CreateRestrictionDTO) (*Restriction, error)
	DeleteRestriction(ctx context.Context, actor *internal.SessionUser, restrictionID int64) error
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

func (h *Handler) Send(w http.ResponseWriter, r *http.Request) {
	user, ok := h.actor(w, r)
	if !ok {
		return
	}

	var dto SendMessageDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	msg, err := h.Service.Send(r.Context(), user, dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusCreated, msg)
}

func (h *Handler) SaveDraft(w http.ResponseWriter, r *http.Request) {
	user, ok := h.actor(w, r)
	if !ok {
		return
	}

	var dto DraftDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	msg, err := h.Service.SaveDraft(r.Context(), user, dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusCreated, msg)
}

func (h *Handler) UpdateDraft(w http.ResponseWriter, r *http.Request) {
	user, ok := h.actor(w, r)
	if !ok {
		return
	}
	messageID, ok := h.pathID(w, r)
	if !ok {
		return
	}

	var dto DraftDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	msg, err := h.Service.UpdateDraft(r.Context(), user, messageID, dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, msg)
}

func (h *Handler) ListFolder(w http.ResponseWriter, r *http.Request) {
	user, ok := h.actor(w, r)
	if !ok {
		return
	}

	folder := chi.URLParam(r, "folder")
	if folder == "" {
		folder = FolderInbox
	}
	page := 1
	if raw := r.URL.Query().Get("page"); raw != "" {
		if p, err := strconv.Atoi(raw); err == nil {
			page = p
		}
	}

	resp, err := h.Service.ListFolder(r.Context(), user, folder, page)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, resp)
}

func (h *Handler) FolderCounts(w http.ResponseWriter, r *http.Request) {
	user, ok := h.actor(w, r)
	if !ok {
		return
	}

	counts, err := h.Service.FolderCounts(r.Context(), user)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, map[string]interface{}{"folders": counts})
}

func (h *Handler) UnreadCount(w http.ResponseWriter, r *http.Request) {
	user, ok := h.actor(w, r)
	if !ok {
		return
	}

	count, err := h.Service.UnreadCount(r.Context(), user)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, map[string]interface{}{"unread": count})
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	user, ok := h.actor(w, r)
	if !ok {
		return
	}
	messageID, ok := h.pathID(w, r)
	if !ok {
		return
	}

	msg, err := h.Service.Get(r.Context(), user, messageID)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, msg)
}

func (h *Handler) MarkRead(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, h.Service.MarkRead)
}

func (h *Handler) MarkUnread(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, h.Service.MarkUnread)
}

func (h *Handler) Move(w http.ResponseWriter, r *http.Request) {
	user, ok := h.actor(w, r)
	if !ok {
		return
	}
	messageID, ok := h.pathID(w, r)
	if !ok {
		return
	}

	var dto MoveDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.Service.Move(r.Context(), user, messageID, dto); err != nil {
		h.HandleServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, h.Service.Delete)
}

func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	user, ok := h.actor(w, r)
	if !ok {
		return
	}

	messages, err := h.Service.Search(r.Context(), user, r.URL.Query().Get("q"))
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, map[string]interface{}{"messages": messages})
}

func (h *Handler) ListRestrictions(w http.ResponseWriter, r *http.Request) {
	userID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid user id")
		return
	}

	restrictions, svcErr := h.Service.ListRestrictions(r.Context(), userID)
	if svcErr != nil {
		h.HandleServiceError(w, svcErr)
		return
	}
	h.WriteJSON(w, http.StatusOK, map[string]interface{}{"restrictions": restrictions})
}

func (h *Handler) CreateRestriction(w http.ResponseWriter, r *http.Request) {
	user, ok := h.actor(w, r)
	if !ok {
		return
	}

	var dto CreateRestrictionDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	restriction, err := h.Service.CreateRestriction(r.Context(), user, dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusCreated, restriction)
}

func (h *Handler) DeleteRestriction(w http.ResponseWriter, r *http.Request) {
	user, ok := h.actor(w, r)
	if !ok {
		return
	}

	restrictionID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid restriction id")
		return
	}

	if err := h.Service.DeleteRestriction(r.Context(), user, restrictionID); err != nil {
		h.HandleServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) mutate(w http.ResponseWriter, r *http.Request, op func(context.Context, *internal.SessionUser, int64) error) {
	user, ok := h.actor(w, r)
	if !ok {
		return
	}
	messageID, ok := h.pathID(w, r)
	if !ok {
		return
	}

	if err := op(r.Context(), user, messageID); err != nil {
		h.HandleServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) actor(w http.ResponseWriter, r *http.Request) (*internal.SessionUser, bool) {
	user, ok := internal.UserFromContext(r.Context())
	if !ok {
		h.HandleServiceError(w, internal.ErrInvalidToken)
		return nil, false
	}
	return user, true
}

func (h *Handler) pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid message id")
		return 0, false
	}
	return id, true
}
