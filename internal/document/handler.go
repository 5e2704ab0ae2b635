package document

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
	List(ctx context.Context, user *internal.SessionUser, filters ListFilters) (*ListResponse, error)
	Get(ctx context.Context, user *internal.SessionUser, docID int64) (*Document, error)
	Create(ctx context.Context, user *internal.SessionUser, dto CreateDocumentDTO) (*Document, error)
	Update(ctx context.Context, user *internal.SessionUser, docID int64, dto UpdateDocumentDTO) (*Document, error)
	Publish(ctx context.Context, user *internal.SessionUser, docID int64) (*Document, error)
	Archive(ctx context.Context, user *internal.SessionUser, docID int64) (*Document, error)
	Delete(ctx context.Context, user *internal.SessionUser, docID int64) error
	ListVersions(ctx context.Context, user *internal.SessionUser, docID int64) ([]*Version, error)
	GetPermissions(ctx context.Context, user *internal.SessionUser, docID int64) ([]*Permission, error)
	SetPermissions(ctx context.Context, user *internal.SessionUser, docID int64, dto SetPermissionsDTO) error
	ListLogs(ctx context.Context, user *internal.SessionUser, docID int64) ([]*Log, error)
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
	user, ok := h.actor(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()
	filters := ListFilters{
		Search:     q.Get("search"),
		Type:       q.Get("type"),
		Department: q.Get("department"),
		Status:     q.Get("status"),
	}
	if raw := q.Get("clearance"); raw != "" {
		if c, err := strconv.Atoi(raw); err == nil {
			filters.Clearance = &c
		}
	}
	if raw := q.Get("page"); raw != "" {
		if p, err := strconv.Atoi(raw); err == nil {
			filters.Page = p
		}
	}
	if raw := q.Get("per_page"); raw != "" {
		if pp, err := strconv.Atoi(raw); err == nil {
			filters.PerPage = pp
		}
	}

	resp, err := h.Service.List(r.Context(), user, filters)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, resp)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	user, ok := h.actor(w, r)
	if !ok {
		return
	}
	docID, ok := h.pathID(w, r)
	if !ok {
		return
	}

	doc, err := h.Service.Get(r.Context(), user, docID)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, doc)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	user, ok := h.actor(w, r)
	if !ok {
		return
	}

	var dto CreateDocumentDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	doc, err := h.Service.Create(r.Context(), user, dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusCreated, doc)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	user, ok := h.actor(w, r)
	if !ok {
		return
	}
	docID, ok := h.pathID(w, r)
	if !ok {
		return
	}

	var dto UpdateDocumentDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	doc, err := h.Service.Update(r.Context(), user, docID, dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, doc)
}

func (h *Handler) Publish(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.Service.Publish)
}

func (h *Handler) Archive(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.Service.Archive)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	user, ok := h.actor(w, r)
	if !ok {
		return
	}
	docID, ok := h.pathID(w, r)
	if !ok {
		return
	}

	if err := h.Service.Delete(r.Context(), user, docID); err != nil {
		h.HandleServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) ListVersions(w http.ResponseWriter, r *http.Request) {
	user, ok := h.actor(w, r)
	if !ok {
		return
	}
	docID, ok := h.pathID(w, r)
	if !ok {
		return
	}

	versions, err := h.Service.ListVersions(r.Context(), user, docID)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, map[string]interface{}{"versions": versions})
}

func (h *Handler) GetPermissions(w http.ResponseWriter, r *http.Request) {
	user, ok := h.actor(w, r)
	if !ok {
		return
	}
	docID, ok := h.pathID(w, r)
	if !ok {
		return
	}

	perms, err := h.Service.GetPermissions(r.Context(), user, docID)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, map[string]interface{}{"permissions": perms})
}

func (h *Handler) SetPermissions(w http.ResponseWriter, r *http.Request) {
	user, ok := h.actor(w, r)
	if !ok {
		return
	}
	docID, ok := h.pathID(w, r)
	if !ok {
		return
	}

	var dto SetPermissionsDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.Service.SetPermissions(r.Context(), user, docID, dto); err != nil {
		h.HandleServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) ListLogs(w http.ResponseWriter, r *http.Request) {
	user, ok := h.actor(w, r)
	if !ok {
		return
	}
	docID, ok := h.pathID(w, r)
	if !ok {
		return
	}

	logs, err := h.Service.ListLogs(r.Context(), user, docID)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, map[string]interface{}{"logs": logs})
}

func (h *Handler) transition(w http.ResponseWriter, r *http.Request, op func(context.Context, *internal.SessionUser, int64) (*Document, error)) {
	user, ok := h.actor(w, r)
	if !ok {
		return
	}
	docID, ok := h.pathID(w, r)
	if !ok {
		return
	}

	doc, err := op(r.Context(), user, docID)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, doc)
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
		h.WriteError(w, http.StatusBadRequest, "invalid document id")
		return 0, false
	}
	return id, true
}
