package rest

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	chiMiddleware "github.com/go-chi/chi/middleware"

	"github.com/obsidianfr/intranet/internal"
	"github.com/obsidianfr/intranet/internal/audit"
	"github.com/obsidianfr/intranet/internal/auth"
	"github.com/obsidianfr/intranet/internal/dashboard"
	"github.com/obsidianfr/intranet/internal/document"
	"github.com/obsidianfr/intranet/internal/message"
	"github.com/obsidianfr/intranet/internal/module"
	"github.com/obsidianfr/intranet/internal/transport/middleware"
	"github.com/obsidianfr/intranet/internal/transport/swagger"
	"github.com/obsidianfr/intranet/internal/user"
)

type Handlers struct {
	Auth        *auth.Handler
	Permissions *auth.PermissionHandler
	Users       *user.Handler
	Documents   *document.Handler
	Messages    *message.Handler
	Modules     *module.Handler
	Audit       *audit.Handler
	Dashboard   *dashboard.Handler
}

// HR routes are readable by the administrative roles; creation and the
// destructive operations are gated tighter below.
var hrRoles = []string{
	internal.RoleAdministration,
	internal.RoleDirection,
	internal.RoleStaff,
	internal.RoleAdmin,
}

func RegisterAllRoutes(router *chi.Mux, db *sql.DB, h Handlers, allowedOrigins string, logger *slog.Logger) {
	healthHandler := NewHealthHandler(db)

	router.Use(middleware.CORS(middleware.CORSConfig{AllowedOrigins: allowedOrigins}))
	router.Use(chiMiddleware.RequestID)
	router.Use(middleware.RequestID)
	router.Use(middleware.LoggingMiddleware(logger))
	router.Use(middleware.RecoveryMiddleware(logger))

	router.Get("/openapi.yml", func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, "./api/openapi.yml")
	})
	router.Handle("/swagger/*", swagger.Handler())

	router.Route("/api", func(r chi.Router) {
		r.Get("/health", healthHandler.healthCheckHandler)
		r.Get("/ping", healthHandler.pingHandler)

		r.Post("/auth/login", h.Auth.Login)

		r.Group(func(pr chi.Router) {
			pr.Use(h.Auth.AuthMiddleware)

			pr.Get("/dashboard", h.Dashboard.Overview)

			pr.Route("/documents", func(dr chi.Router) {
				dr.Get("/", h.Documents.List)
				dr.Post("/", h.Documents.Create)
				dr.Get("/{id}", h.Documents.Get)
				dr.Patch("/{id}", h.Documents.Update)
				dr.Post("/{id}/publish", h.Documents.Publish)
				dr.Post("/{id}/archive", h.Documents.Archive)
				dr.Delete("/{id}", h.Documents.Delete)
				dr.Get("/{id}/versions", h.Documents.ListVersions)
				dr.Get("/{id}/permissions", h.Documents.GetPermissions)
				dr.Put("/{id}/permissions", h.Documents.SetPermissions)
				dr.Get("/{id}/logs", h.Documents.ListLogs)
			})

			pr.Route("/messages", func(mr chi.Router) {
				mr.Post("/", h.Messages.Send)
				mr.Get("/", h.Messages.ListFolder)
				mr.Get("/counts", h.Messages.FolderCounts)
				mr.Get("/unread", h.Messages.UnreadCount)
				mr.Get("/search", h.Messages.Search)
				mr.Post("/drafts", h.Messages.SaveDraft)
				mr.Put("/drafts/{id}", h.Messages.UpdateDraft)
				mr.Get("/{id}", h.Messages.Get)
				mr.Patch("/{id}/read", h.Messages.MarkRead)
				mr.Patch("/{id}/unread", h.Messages.MarkUnread)
				mr.Patch("/{id}/move", h.Messages.Move)
				mr.Delete("/{id}", h.Messages.Delete)
			})

			pr.Route("/rh", func(rr chi.Router) {
				rr.Use(h.Auth.RequireRoles(hrRoles...))

				rr.Get("/users", h.Users.ListUsers)
				rr.Get("/users/{id}", h.Users.GetFiche)
				rr.Patch("/clearance/{id}", h.Users.UpdateClearance)
				rr.Patch("/suspend/{id}", h.Users.Suspend)
				rr.Post("/notes/{id}", h.Users.AddNote)
				rr.Get("/notes/{id}", h.Users.GetNotes)

				rr.Group(func(cr chi.Router) {
					cr.Use(h.Auth.RequireRoles(internal.RoleAdministration, internal.RoleDirection, internal.RoleAdmin))
					cr.Post("/users", h.Users.CreateUser)
				})

				rr.Group(func(sr chi.Router) {
					sr.Use(h.Auth.RequireRoles(internal.RoleAdmin, internal.RoleStaff))
					sr.Patch("/role/{id}", h.Users.UpdateRole)
				})

				rr.Group(func(ar chi.Router) {
					ar.Use(h.Auth.RequireAdmin)
					ar.Delete("/users/{id}", h.Users.DeleteUser)
					ar.Post("/reset-password/{id}", h.Users.ResetPassword)
				})
			})

			pr.Get("/annuaire", h.Users.Directory)
			pr.Get("/annuaire/search", h.Users.SearchDirectory)

			pr.Route("/modules", func(mr chi.Router) {
				mr.Get("/", h.Modules.List)
				mr.Get("/{name}", h.Modules.Get)

				mr.Group(func(ar chi.Router) {
					ar.Use(h.Auth.RequireAdmin)
					ar.Patch("/{name}", h.Modules.Toggle)
					ar.Put("/{name}", h.Modules.Configure)
				})
			})

			pr.Route("/restrictions", func(rr chi.Router) {
				rr.Use(h.Auth.RequireAdmin)
				rr.Get("/user/{id}", h.Messages.ListRestrictions)
				rr.Post("/", h.Messages.CreateRestriction)
				rr.Delete("/{id}", h.Messages.DeleteRestriction)
			})

			pr.Route("/permissions", func(ar chi.Router) {
				ar.Use(h.Auth.RequireAdmin)
				ar.Get("/roles", h.Permissions.ListRoleGrants)
				ar.Post("/roles", h.Permissions.GrantToRole)
				ar.Delete("/roles/{role}/{permission}", h.Permissions.RevokeFromRole)
				ar.Get("/users/{id}", h.Permissions.ListUserGrants)
				ar.Post("/users", h.Permissions.GrantToUser)
				ar.Delete("/users/{id}/{permission}", h.Permissions.RevokeFromUser)
			})

			pr.Group(func(lr chi.Router) {
				lr.Use(h.Auth.RequireRoles(internal.RoleStaff, internal.RoleAdmin, internal.RoleDirection))
				lr.Get("/logs", h.Audit.List)
			})
		})
	})
}
