package user

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
	ListUsers(ctx context.Context) ([]*User, error)
	GetFiche(ctx context.Context, userID int64) (*User, []*HRNote, error)
	CreateUser(ctx context.Context, actor *internal.SessionUser, dto CreateUserDTO) (*CreatedUserResponse, error)
	UpdateClearance(ctx context.Context, actor *internal.SessionUser, userID int64, dto UpdateClearanceDTO) (*User, error)
	UpdateRole(ctx context.Context, actor *internal.SessionUser, userID int64, dto UpdateRoleDTO) (*User, error)
	SetSuspended(ctx context.Context, actor *internal.SessionUser, userID int64, dto SuspendDTO) (*User, error)
	DeleteUser(ctx context.Context, actor *internal.SessionUser, userID int64) error
	ResetPassword(ctx context.Context, actor *internal.SessionUser, userID int64) (*PasswordResetResponse, error)
	AddNote(ctx context.Context, actor *internal.SessionUser, userID int64, dto AddNoteDTO) (*HRNote, error)
	GetNotes(ctx context.Context, userID int64) ([]*HRNote, error)
	Directory(ctx context.Context) ([]*DirectoryEntry, error)
	SearchDirectory(ctx context.Context, query string, minLen, limit int) ([]*DirectoryEntry, error)
}

type Handler struct {
	*transport.BaseHandler
	Service     ServiceAPI
	MinQueryLen int
	SearchLimit int
}

func NewHandler(svc ServiceAPI, minQueryLen, searchLimit int) *Handler {
	lg := logger.LoggerWrapper()
	if lg == nil {
		lg = slog.Default()
	}
	if minQueryLen <= 0 {
		minQueryLen = internal.DefaultMinQueryLen
	}
	if searchLimit <= 0 {
		searchLimit = internal.DefaultSearchLimit
	}
	return &Handler{
		BaseHandler: transport.NewBaseHandler(lg),
		Service:     svc,
		MinQueryLen: minQueryLen,
		SearchLimit: searchLimit,
	}
}

func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.Service.ListUsers(r.Context())
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, map[string]interface{}{"users": users})
}

func (h *Handler) GetFiche(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.pathID(w, r)
	if !ok {
		return
	}

	user, notes, err := h.Service.GetFiche(r.Context(), userID)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, map[string]interface{}{"user": user, "notes": notes})
}

func (h *Handler) CreateUser(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}

	var dto CreateUserDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	created, err := h.Service.CreateUser(r.Context(), actor, dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusCreated, created)
}

func (h *Handler) UpdateClearance(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	userID, ok := h.pathID(w, r)
	if !ok {
		return
	}

	var dto UpdateClearanceDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := h.Service.UpdateClearance(r.Context(), actor, userID, dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, user)
}

func (h *Handler) UpdateRole(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	userID, ok := h.pathID(w, r)
	if !ok {
		return
	}

	var dto UpdateRoleDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := h.Service.UpdateRole(r.Context(), actor, userID, dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, user)
}

func (h *Handler) Suspend(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	userID, ok := h.pathID(w, r)
	if !ok {
		return
	}

	var dto SuspendDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := h.Service.SetSuspended(r.Context(), actor, userID, dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, user)
}

func (h *Handler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	userID, ok := h.pathID(w, r)
	if !ok {
		return
	}

	if err := h.Service.DeleteUser(r.Context(), actor, userID); err != nil {
		h.HandleServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	userID, ok := h.pathID(w, r)
	if !ok {
		return
	}

	reset, err := h.Service.ResetPassword(r.Context(), actor, userID)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, reset)
}

func (h *Handler) AddNote(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	userID, ok := h.pathID(w, r)
	if !ok {
		return
	}

	var dto AddNoteDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	note, err := h.Service.AddNote(r.Context(), actor, userID, dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusCreated, note)
}

func (h *Handler) GetNotes(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.pathID(w, r)
	if !ok {
		return
	}

	notes, err := h.Service.GetNotes(r.Context(), userID)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, map[string]interface{}{"notes": notes})
}

func (h *Handler) Directory(w http.ResponseWriter, r *http.Request) {
	entries, err := h.Service.Directory(r.Context())
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, map[string]interface{}{"users": entries})
}

func (h *Handler) SearchDirectory(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	entries, err := h.Service.SearchDirectory(r.Context(), query, h.MinQueryLen, h.SearchLimit)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, map[string]interface{}{"users": entries})
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
		h.WriteError(w, http.StatusBadRequest, "invalid user id")
		return 0, false
	}
	return id, true
}
