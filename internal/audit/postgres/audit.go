package postgres

import (
	"gorm.io/gorm"

	auditDatamodel "github.com/obsidianfr/intranet/internal/core/datamodel/audit"
)

type AuditRepository struct {
	db *gorm.DB
}

func NewAuditRepository(db *gorm.DB) *AuditRepository {
	return &AuditRepository{db: db}
}

func (r *AuditRepository) Append(row *auditDatamodel.Log) error {
	return r.db.Create(row).Error
}

func (r *AuditRepository) Query(action string, limit int) ([]*auditDatamodel.Log, error) {
	q := r.db.Order("created_at DESC").Limit(limit)
	if action != "" {
		q = q.Where("action = ?", action)
	}
	var rows []*auditDatamodel.Log
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
