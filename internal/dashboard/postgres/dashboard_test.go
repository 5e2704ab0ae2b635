package postgres_test

import (
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	docDatamodel "github.com/obsidianfr/intranet/internal/core/datamodel/document"
	dashboardPostgres "github.com/obsidianfr/intranet/internal/dashboard/postgres"
)

func TestDashboardPostgres(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Dashboard Postgres Suite")
}

// SQLite-compatible mirrors of the production tables; the postgres
// defaults (now()) do not translate to sqlite.

type SQLiteMessage struct {
	ID          int64  `gorm:"primaryKey"`
	SenderID    int64  `gorm:"column:sender_id;not null"`
	RecipientID *int64 `gorm:"column:recipient_id"`
	Subject     string `gorm:"column:subject;not null"`
	Body        string `gorm:"column:body"`
	Priority    string `gorm:"column:priority"`
	CreatedAt   time.Time
}

func (SQLiteMessage) TableName() string { return "messages" }

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

type SQLiteDocumentLog struct {
	ID         int64  `gorm:"primaryKey"`
	DocumentID int64  `gorm:"column:document_id;not null"`
	UserID     int64  `gorm:"column:user_id;not null"`
	Action     string `gorm:"column:action;not null"`
	Details    string `gorm:"column:details"`
	CreatedAt  time.Time
}

func (SQLiteDocumentLog) TableName() string { return "document_logs" }

var _ = Describe("Stats Repository", func() {
	var (
		db    *gorm.DB
		stats *dashboardPostgres.StatsRepository
	)

	var (
		alice int64 = 1
		bob   int64 = 2
	)

	addDocument := func(status string, deleted bool) {
		Expect(db.Create(&SQLiteDocument{
			Title: "doc", Type: "note", Status: status, AuthorID: alice,
			Deleted: deleted, CreatedAt: time.Now(), UpdatedAt: time.Now(),
		}).Error).To(Succeed())
	}

	BeforeEach(func() {
		var err error
		db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
			Logger: logger.Default.LogMode(logger.Silent),
		})
		Expect(err).NotTo(HaveOccurred())

		Expect(db.AutoMigrate(
			&SQLiteMessage{}, &SQLiteDocument{}, &SQLiteDocumentLog{},
		)).To(Succeed())

		stats = dashboardPostgres.NewStatsRepository(db)
	})

	Describe("message counters", func() {
		It("counts sends and receipts inside the window, skipping drafts", func() {
			week := time.Now().Add(-7 * 24 * time.Hour)
			Expect(db.Create(&SQLiteMessage{SenderID: alice, RecipientID: &bob, Subject: "recent", CreatedAt: time.Now()}).Error).To(Succeed())
			Expect(db.Create(&SQLiteMessage{SenderID: alice, RecipientID: &bob, Subject: "ancient", CreatedAt: week.Add(-time.Hour)}).Error).To(Succeed())
			Expect(db.Create(&SQLiteMessage{SenderID: alice, Subject: "draft", CreatedAt: time.Now()}).Error).To(Succeed())

			sent, err := stats.SentSince(alice, week)
			Expect(err).NotTo(HaveOccurred())
			Expect(sent).To(Equal(1))

			received, err := stats.ReceivedSince(bob, week)
			Expect(err).NotTo(HaveOccurred())
			Expect(received).To(Equal(1))
		})
	})

	Describe("document counters", func() {
		It("counts creations and read log entries inside the window", func() {
			week := time.Now().Add(-7 * 24 * time.Hour)
			addDocument(docDatamodel.StatusPublished, false)
			Expect(db.Create(&SQLiteDocumentLog{DocumentID: 1, UserID: alice, Action: "read", CreatedAt: time.Now()}).Error).To(Succeed())
			Expect(db.Create(&SQLiteDocumentLog{DocumentID: 1, UserID: alice, Action: "access_denied", CreatedAt: time.Now()}).Error).To(Succeed())

			created, err := stats.DocumentsCreatedSince(alice, week)
			Expect(err).NotTo(HaveOccurred())
			Expect(created).To(Equal(1))

			viewed, err := stats.DocumentsViewedSince(alice, week)
			Expect(err).NotTo(HaveOccurred())
			Expect(viewed).To(Equal(1))
		})
	})

	Describe("PendingValidationCount", func() {
		It("counts documents awaiting validation, not drafts", func() {
			addDocument(docDatamodel.StatusDraft, false)
			addDocument(docDatamodel.StatusDraft, false)
			addDocument(docDatamodel.StatusInValidation, false)
			addDocument(docDatamodel.StatusPublished, false)

			count, err := stats.PendingValidationCount()
			Expect(err).NotTo(HaveOccurred())
			Expect(count).To(Equal(1))
		})

		It("ignores deleted documents", func() {
			addDocument(docDatamodel.StatusInValidation, true)

			count, err := stats.PendingValidationCount()
			Expect(err).NotTo(HaveOccurred())
			Expect(count).To(Equal(0))
		})
	})
})
