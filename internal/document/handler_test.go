package document_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"time"

	"github.com/go-chi/chi"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	"github.com/obsidianfr/intranet/internal"
	"github.com/obsidianfr/intranet/internal/document"
	documentPostgres "github.com/obsidianfr/intranet/internal/document/postgres"
)

// SQLite-compatible mirrors of the production tables; the postgres
// defaults (now()) do not translate to sqlite.

type SQLiteDocument struct {
	ID         int64  `gorm:"primaryKey"`
	Title      string `gorm:"column:title;not null"`
	Body       string `gorm:"column:body"`
	Type       string `gorm:"column:type;not null"`
	Department string `gorm:"column:department"`
	Clearance  int    `gorm:"column:clearance;default:0"`
	Status     string `gorm:"column:status;default:draft"`
	Tags       string `gorm:"column:tags;default:'[]'"`
	Version    int    `gorm:"column:version;default:1"`
	AuthorID   int64  `gorm:"column:author_id;not null"`
	Deleted    bool   `gorm:"column:deleted;default:false"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
	DeletedAt  *time.Time `gorm:"column:deleted_at"`
}

func (SQLiteDocument) TableName() string { return "documents" }

type SQLiteDocumentVersion struct {
	ID            int64  `gorm:"primaryKey"`
	DocumentID    int64  `gorm:"column:document_id;not null;uniqueIndex:idx_document_version"`
	Version       int    `gorm:"column:version;not null;uniqueIndex:idx_document_version"`
	Title         string `gorm:"column:title;not null"`
	Body          string `gorm:"column:body"`
	ChangeSummary string `gorm:"column:change_summary"`
	EditorID      int64  `gorm:"column:editor_id;not null"`
	CreatedAt     time.Time
}

func (SQLiteDocumentVersion) TableName() string { return "document_versions" }

type SQLiteDocumentPermission struct {
	ID                int64   `gorm:"primaryKey"`
	DocumentID        int64   `gorm:"column:document_id;not null"`
	Kind              string  `gorm:"column:kind;not null"`
	SubjectUserID     *int64  `gorm:"column:subject_user_id"`
	SubjectRole       *string `gorm:"column:subject_role"`
	SubjectDepartment *string `gorm:"column:subject_department"`
	GrantedBy         int64   `gorm:"column:granted_by;not null"`
	CreatedAt         time.Time
}

func (SQLiteDocumentPermission) TableName() string { return "document_permissions" }

type SQLiteDocumentLog struct {
	ID         int64  `gorm:"primaryKey"`
	DocumentID int64  `gorm:"column:document_id;not null"`
	UserID     int64  `gorm:"column:user_id;not null"`
	Action     string `gorm:"column:action;not null"`
	Details    string `gorm:"column:details"`
	CreatedAt  time.Time
}

func (SQLiteDocumentLog) TableName() string { return "document_logs" }

var _ = Describe("Document Handler", func() {
	var (
		db      *gorm.DB
		handler *document.Handler
		author  *internal.SessionUser
		reader  *internal.SessionUser
	)

	request := func(method, target string, user *internal.SessionUser, payload interface{}, id string) *http.Request {
		var body *bytes.Buffer
		if payload != nil {
			raw, err := json.Marshal(payload)
			Expect(err).NotTo(HaveOccurred())
			body = bytes.NewBuffer(raw)
		} else {
			body = bytes.NewBuffer(nil)
		}

		req := httptest.NewRequest(method, target, body)
		ctx := internal.ContextWithUser(req.Context(), user)
		if id != "" {
			rctx := chi.NewRouteContext()
			rctx.URLParams.Add("id", id)
			ctx = context.WithValue(ctx, chi.RouteCtxKey, rctx)
		}
		return req.WithContext(ctx)
	}

	decode := func(w *httptest.ResponseRecorder, out interface{}) {
		Expect(json.NewDecoder(w.Body).Decode(out)).To(Succeed())
	}

	create := func(payload document.CreateDocumentDTO) *document.Document {
		w := httptest.NewRecorder()
		handler.Create(w, request(http.MethodPost, "/documents", author, payload, ""))
		Expect(w.Code).To(Equal(http.StatusCreated))

		var doc document.Document
		decode(w, &doc)
		return &doc
	}

	BeforeEach(func() {
		var err error
		db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
			Logger: gormLogger.Default.LogMode(gormLogger.Silent),
		})
		Expect(err).NotTo(HaveOccurred())

		Expect(db.AutoMigrate(
			&SQLiteDocument{}, &SQLiteDocumentVersion{}, &SQLiteDocumentPermission{}, &SQLiteDocumentLog{},
		)).To(Succeed())

		service := document.NewService(documentPostgres.NewDocumentRepository(db), nil, nil)
		handler = document.NewHandler(service)

		author = &internal.SessionUser{ID: 1, Username: "dr.author", Role: internal.RoleScientifique, Clearance: 4}
		reader = &internal.SessionUser{ID: 2, Username: "reader", Role: internal.RoleScientifique, Clearance: 1}
	})

	Describe("Create", func() {
		It("returns 201 with the stored document and its tags", func() {
			doc := create(document.CreateDocumentDTO{
				Title:     "Protocole 17",
				Body:      "corps",
				Type:      "protocole",
				Clearance: 2,
				Tags:      []string{"confinement", "niveau-2"},
			})
			Expect(doc.ID).To(BeNumerically(">", 0))
			Expect(doc.Status).To(Equal(document.StatusDraft))
			Expect(doc.Version).To(Equal(1))
			Expect(doc.Tags).To(Equal([]string{"confinement", "niveau-2"}))
		})

		It("returns 400 on a validation failure", func() {
			w := httptest.NewRecorder()
			handler.Create(w, request(http.MethodPost, "/documents", author,
				document.CreateDocumentDTO{Title: "", Type: "note"}, ""))
			Expect(w.Code).To(Equal(http.StatusBadRequest))
		})
	})

	Describe("Get", func() {
		It("returns 403 below the clearance floor", func() {
			create(document.CreateDocumentDTO{Title: "Secret", Type: "note", Clearance: 4})

			w := httptest.NewRecorder()
			handler.Get(w, request(http.MethodGet, "/documents/1", reader, nil, "1"))
			Expect(w.Code).To(Equal(http.StatusForbidden))
		})

		It("returns 404 for an unknown id", func() {
			w := httptest.NewRecorder()
			handler.Get(w, request(http.MethodGet, "/documents/999", author, nil, "999"))
			Expect(w.Code).To(Equal(http.StatusNotFound))
		})

		It("returns 400 for a non-numeric id", func() {
			w := httptest.NewRecorder()
			handler.Get(w, request(http.MethodGet, "/documents/abc", author, nil, "abc"))
			Expect(w.Code).To(Equal(http.StatusBadRequest))
		})
	})

	Describe("List", func() {
		It("finds documents by tag through the search filter", func() {
			create(document.CreateDocumentDTO{Title: "Rapport", Type: "rapport", Tags: []string{"krill"}})
			create(document.CreateDocumentDTO{Title: "Cantine", Type: "note"})

			w := httptest.NewRecorder()
			handler.List(w, request(http.MethodGet, "/documents?search=krill", author, nil, ""))
			Expect(w.Code).To(Equal(http.StatusOK))

			var resp document.ListResponse
			decode(w, &resp)
			Expect(resp.Total).To(Equal(1))
			Expect(resp.Documents[0].Title).To(Equal("Rapport"))
		})

		It("hides documents above the viewer's clearance", func() {
			create(document.CreateDocumentDTO{Title: "Bas", Type: "note", Clearance: 0})
			create(document.CreateDocumentDTO{Title: "Haut", Type: "note", Clearance: 4})

			w := httptest.NewRecorder()
			handler.List(w, request(http.MethodGet, "/documents", reader, nil, ""))
			Expect(w.Code).To(Equal(http.StatusOK))

			var resp document.ListResponse
			decode(w, &resp)
			Expect(resp.Total).To(Equal(1))
			Expect(resp.Documents[0].Title).To(Equal("Bas"))
		})
	})

	Describe("Update", func() {
		It("returns 409 on a stale expected version", func() {
			create(document.CreateDocumentDTO{Title: "Doc", Type: "note"})

			title := "edit"
			stale := 5
			w := httptest.NewRecorder()
			handler.Update(w, request(http.MethodPatch, "/documents/1", author,
				document.UpdateDocumentDTO{Title: &title, ExpectedVersion: &stale}, "1"))
			Expect(w.Code).To(Equal(http.StatusConflict))
		})
	})

	Describe("Publish", func() {
		It("returns 200 for a draft, then 409 once published", func() {
			create(document.CreateDocumentDTO{Title: "Doc", Type: "note"})

			w := httptest.NewRecorder()
			handler.Publish(w, request(http.MethodPost, "/documents/1/publish", author, nil, "1"))
			Expect(w.Code).To(Equal(http.StatusOK))

			var doc document.Document
			decode(w, &doc)
			Expect(doc.Status).To(Equal(document.StatusPublished))

			w = httptest.NewRecorder()
			handler.Publish(w, request(http.MethodPost, "/documents/1/publish", author, nil, "1"))
			Expect(w.Code).To(Equal(http.StatusConflict))
		})
	})

	Describe("SetPermissions", func() {
		It("accepts role entries and enforces them on later reads", func() {
			create(document.CreateDocumentDTO{Title: "Doc", Type: "note", Clearance: 0})
			role := internal.RoleSecurite

			w := httptest.NewRecorder()
			handler.SetPermissions(w, request(http.MethodPut, "/documents/1/permissions", author,
				document.SetPermissionsDTO{Permissions: []document.PermissionEntryDTO{
					{Kind: document.PermissionRole, Role: &role, IsAllowed: true},
				}}, "1"))
			Expect(w.Code).To(Equal(http.StatusNoContent))

			w = httptest.NewRecorder()
			handler.Get(w, request(http.MethodGet, "/documents/1", reader, nil, "1"))
			Expect(w.Code).To(Equal(http.StatusForbidden))

			garde := &internal.SessionUser{ID: 5, Username: "garde", Role: internal.RoleSecurite, Clearance: 2}
			w = httptest.NewRecorder()
			handler.Get(w, request(http.MethodGet, "/documents/1", garde, nil, "1"))
			Expect(w.Code).To(Equal(http.StatusOK))
		})

		It("rejects an unknown kind with 400", func() {
			create(document.CreateDocumentDTO{Title: "Doc", Type: "note"})
			uid := int64(2)

			w := httptest.NewRecorder()
			handler.SetPermissions(w, request(http.MethodPut, "/documents/1/permissions", author,
				document.SetPermissionsDTO{Permissions: []document.PermissionEntryDTO{
					{Kind: "greylist", UserID: &uid, IsAllowed: true},
				}}, "1"))
			Expect(w.Code).To(Equal(http.StatusBadRequest))
		})
	})

	Describe("Delete", func() {
		It("returns 204 for the author and hides the document afterwards", func() {
			create(document.CreateDocumentDTO{Title: "Doc", Type: "note"})

			w := httptest.NewRecorder()
			handler.Delete(w, request(http.MethodDelete, "/documents/1", author, nil, "1"))
			Expect(w.Code).To(Equal(http.StatusNoContent))

			w = httptest.NewRecorder()
			handler.Get(w, request(http.MethodGet, "/documents/1", author, nil, "1"))
			Expect(w.Code).To(Equal(http.StatusNotFound))
		})

		It("returns 403 for a stranger", func() {
			create(document.CreateDocumentDTO{Title: "Doc", Type: "note", Clearance: 0})

			w := httptest.NewRecorder()
			handler.Delete(w, request(http.MethodDelete, "/documents/1", reader, nil, "1"))
			Expect(w.Code).To(Equal(http.StatusForbidden))
		})
	})
})
