package postgres

import (
	"gorm.io/gorm"

	userDatamodel "github.com/obsidianfr/intranet/internal/core/datamodel/user"
	"github.com/obsidianfr/intranet/internal/user"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) user.Repository {
	return &UserRepository{db: db}
}

func (r *UserRepository) GetAll() ([]*userDatamodel.User, error) {
	var rows []*userDatamodel.User
	err := r.db.Order("username ASC").Find(&rows).Error
	return rows, err
}

func (r *UserRepository) GetByID(userID int64) (*userDatamodel.User, error) {
	var row userDatamodel.User
	err := r.db.Where("id = ?", userID).First(&row).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}

func (r *UserRepository) GetByUsername(username string) (*userDatamodel.User, error) {
	var row userDatamodel.User
	err := r.db.Where("username = ?", username).First(&row).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}

func (r *UserRepository) Create(row *userDatamodel.User) error {
	return r.db.Create(row).Error
}

func (r *UserRepository) UpdateClearance(userID int64, clearance int) error {
	return r.db.Model(&userDatamodel.User{}).Where("id = ?", userID).
		Update("clearance", clearance).Error
}

func (r *UserRepository) UpdateRole(userID int64, role string) error {
	return r.db.Model(&userDatamodel.User{}).Where("id = ?", userID).
		Update("role", role).Error
}

func (r *UserRepository) SetSuspended(userID int64, suspended bool) error {
	return r.db.Model(&userDatamodel.User{}).Where("id = ?", userID).
		Update("suspended", suspended).Error
}

func (r *UserRepository) UpdatePassword(userID int64, passwordHash string) error {
	return r.db.Model(&userDatamodel.User{}).Where("id = ?", userID).
		Update("password_hash", passwordHash).Error
}

func (r *UserRepository) Delete(userID int64) error {
	return r.db.Where("id = ?", userID).Delete(&userDatamodel.User{}).Error
}

func (r *UserRepository) AddNote(row *userDatamodel.HRNote) error {
	return r.db.Create(row).Error
}

func (r *UserRepository) GetNotes(userID int64) ([]*userDatamodel.HRNote, error) {
	var rows []*userDatamodel.HRNote
	err := r.db.Where("user_id = ?", userID).Order("created_at DESC").Find(&rows).Error
	return rows, err
}

func (r *UserRepository) ListActive() ([]*userDatamodel.User, error) {
	var rows []*userDatamodel.User
	err := r.db.Where("suspended = ?", false).Order("username ASC").Find(&rows).Error
	return rows, err
}

func (r *UserRepository) SearchActive(query string, limit int) ([]*userDatamodel.User, error) {
	var rows []*userDatamodel.User
	pattern := "%" + query + "%"
	err := r.db.Where("suspended = ? AND (username LIKE ? OR department LIKE ?)", false, pattern, pattern).
		Order("username ASC").
		Limit(limit).
		Find(&rows).Error
	return rows, err
}
