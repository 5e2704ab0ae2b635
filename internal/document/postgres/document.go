package postgres

import (
	"gorm.io/gorm"

	docDatamodel "github.com/obsidianfr/intranet/internal/core/datamodel/document"
	"github.com/obsidianfr/intranet/internal/document"
)

type DocumentRepository struct {
	db *gorm.DB
}

func NewDocumentRepository(db *gorm.DB) document.Repository {
	return &DocumentRepository{db: db}
}

func (r *DocumentRepository) List(filters document.ListFilters) ([]*docDatamodel.Document, error) {
	q := r.db.Where("deleted = ?", false)

	if filters.Search != "" {
		pattern := "%" + filters.Search + "%"
		q = q.Where("title LIKE ? OR body LIKE ? OR tags LIKE ?", pattern, pattern, pattern)
	}
	if filters.Type != "" {
		q = q.Where("type = ?", filters.Type)
	}
	if filters.Department != "" {
		q = q.Where("department = ?", filters.Department)
	}
	if filters.Status != "" {
		q = q.Where("status = ?", filters.Status)
	}
	if filters.Clearance != nil {
		q = q.Where("clearance <= ?", *filters.Clearance)
	}

	var rows []*docDatamodel.Document
	err := q.Order("updated_at DESC").Find(&rows).Error
	return rows, err
}

func (r *DocumentRepository) GetByID(docID int64) (*docDatamodel.Document, error) {
	var row docDatamodel.Document
	err := r.db.Where("id = ?", docID).First(&row).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}

func (r *DocumentRepository) GetPermissions(docID int64) ([]*docDatamodel.DocumentPermission, error) {
	var rows []*docDatamodel.DocumentPermission
	err := r.db.Where("document_id = ?", docID).Find(&rows).Error
	return rows, err
}

func (r *DocumentRepository) GetPermissionsForDocuments(docIDs []int64) (map[int64][]*docDatamodel.DocumentPermission, error) {
	byDoc := make(map[int64][]*docDatamodel.DocumentPermission, len(docIDs))
	if len(docIDs) == 0 {
		return byDoc, nil
	}

	var rows []*docDatamodel.DocumentPermission
	if err := r.db.Where("document_id IN ?", docIDs).Find(&rows).Error; err != nil {
		return nil, err
	}
	for _, row := range rows {
		byDoc[row.DocumentID] = append(byDoc[row.DocumentID], row)
	}
	return byDoc, nil
}

func (r *DocumentRepository) Create(doc *docDatamodel.Document, initial *docDatamodel.DocumentVersion) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(doc).Error; err != nil {
			return err
		}
		initial.DocumentID = doc.ID
		return tx.Create(initial).Error
	})
}

// UpdateWithSnapshot bumps the document to expectedVersion+1 and writes the
// snapshot in the same transaction. The version guard in the WHERE clause
// turns a concurrent edit into ErrVersionConflict instead of a lost update.
func (r *DocumentRepository) UpdateWithSnapshot(docID int64, expectedVersion int, title, body, tags string, snapshot *docDatamodel.DocumentVersion) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&docDatamodel.Document{}).
			Where("id = ? AND version = ? AND deleted = ?", docID, expectedVersion, false).
			Updates(map[string]interface{}{
				"title":   title,
				"body":    body,
				"tags":    tags,
				"version": expectedVersion + 1,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return document.ErrVersionConflict
		}
		return tx.Create(snapshot).Error
	})
}

func (r *DocumentRepository) UpdateStatus(docID int64, status string) error {
	return r.db.Model(&docDatamodel.Document{}).Where("id = ?", docID).
		Update("status", status).Error
}

func (r *DocumentRepository) SoftDelete(docID int64) error {
	return r.db.Model(&docDatamodel.Document{}).Where("id = ?", docID).
		Updates(map[string]interface{}{
			"deleted":    true,
			"deleted_at": gorm.Expr("CURRENT_TIMESTAMP"),
		}).Error
}

func (r *DocumentRepository) ListVersions(docID int64) ([]*docDatamodel.DocumentVersion, error) {
	var rows []*docDatamodel.DocumentVersion
	err := r.db.Where("document_id = ?", docID).Order("version DESC").Find(&rows).Error
	return rows, err
}

func (r *DocumentRepository) ApplyPermissions(docID int64, upserts, removals []*docDatamodel.DocumentPermission) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		for _, perm := range removals {
			if err := subjectQuery(tx, docID, perm).Delete(&docDatamodel.DocumentPermission{}).Error; err != nil {
				return err
			}
		}
		for _, perm := range upserts {
			var count int64
			if err := subjectQuery(tx, docID, perm).Model(&docDatamodel.DocumentPermission{}).Count(&count).Error; err != nil {
				return err
			}
			if count > 0 {
				continue
			}
			if err := tx.Create(perm).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func subjectQuery(tx *gorm.DB, docID int64, perm *docDatamodel.DocumentPermission) *gorm.DB {
	q := tx.Where("document_id = ? AND kind = ?", docID, perm.Kind)
	switch {
	case perm.SubjectUserID != nil:
		q = q.Where("subject_user_id = ?", *perm.SubjectUserID)
	case perm.SubjectRole != nil:
		q = q.Where("subject_role = ?", *perm.SubjectRole)
	case perm.SubjectDepartment != nil:
		q = q.Where("subject_department = ?", *perm.SubjectDepartment)
	}
	return q
}

func (r *DocumentRepository) AddLog(row *docDatamodel.DocumentLog) error {
	return r.db.Create(row).Error
}

func (r *DocumentRepository) ListLogs(docID int64, limit int) ([]*docDatamodel.DocumentLog, error) {
	var rows []*docDatamodel.DocumentLog
	err := r.db.Where("document_id = ?", docID).Order("created_at DESC").Limit(limit).Find(&rows).Error
	return rows, err
}
