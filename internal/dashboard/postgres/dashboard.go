package postgres

import (
	"time"

	"gorm.io/gorm"

	documentDatamodel "github.com/obsidianfr/intranet/internal/core/datamodel/document"
	msgDatamodel "github.com/obsidianfr/intranet/internal/core/datamodel/message"
)

type StatsRepository struct {
	db *gorm.DB
}

func NewStatsRepository(db *gorm.DB) *StatsRepository {
	return &StatsRepository{db: db}
}

func (r *StatsRepository) SentSince(userID int64, since time.Time) (int, error) {
	var count int64
	err := r.db.Model(&msgDatamodel.Message{}).
		Where("sender_id = ? AND recipient_id IS NOT NULL AND created_at >= ?", userID, since).
		Count(&count).Error
	return int(count), err
}

func (r *StatsRepository) ReceivedSince(userID int64, since time.Time) (int, error) {
	var count int64
	err := r.db.Model(&msgDatamodel.Message{}).
		Where("recipient_id = ? AND created_at >= ?", userID, since).
		Count(&count).Error
	return int(count), err
}

func (r *StatsRepository) DocumentsCreatedSince(userID int64, since time.Time) (int, error) {
	var count int64
	err := r.db.Model(&documentDatamodel.Document{}).
		Where("author_id = ? AND deleted = ? AND created_at >= ?", userID, false, since).
		Count(&count).Error
	return int(count), err
}

func (r *StatsRepository) DocumentsViewedSince(userID int64, since time.Time) (int, error) {
	var count int64
	err := r.db.Model(&documentDatamodel.DocumentLog{}).
		Where("user_id = ? AND action = ? AND created_at >= ?", userID, "read", since).
		Count(&count).Error
	return int(count), err
}

func (r *StatsRepository) PendingValidationCount() (int, error) {
	var count int64
	err := r.db.Model(&documentDatamodel.Document{}).
		Where("status = ? AND deleted = ?", documentDatamodel.StatusInValidation, false).
		Count(&count).Error
	return int(count), err
}
