package postgres

import (
	"gorm.io/gorm"

	"github.com/obsidianfr/intranet/internal"
	"github.com/obsidianfr/intranet/internal/auth"
	userDatamodel "github.com/obsidianfr/intranet/internal/core/datamodel/user"
)

type AuthRepository struct {
	db *gorm.DB
}

func NewAuthRepository(db *gorm.DB) auth.RepositoryAPI {
	return &AuthRepository{db: db}
}

func (r *AuthRepository) GetCredentials(username string) (*auth.Credentials, error) {
	var row userDatamodel.User
	if err := r.db.Where("username = ?", username).First(&row).Error; err != nil {
		return nil, err
	}
	return &auth.Credentials{
		UserID:       row.ID,
		Username:     row.Username,
		PasswordHash: row.PasswordHash,
		Role:         row.Role,
		Clearance:    row.Clearance,
		Department:   row.Department,
		Suspended:    row.Suspended,
	}, nil
}

// GetSessionUser reloads the live user row; a suspended row is treated as
// absent so in-flight tokens stop working.
func (r *AuthRepository) GetSessionUser(userID int64) (*internal.SessionUser, error) {
	var row userDatamodel.User
	if err := r.db.Where("id = ?", userID).First(&row).Error; err != nil {
		return nil, err
	}
	if row.Suspended {
		return nil, auth.ErrAccountSuspended
	}
	return &internal.SessionUser{
		ID:         row.ID,
		Username:   row.Username,
		Role:       row.Role,
		Clearance:  row.Clearance,
		Department: row.Department,
	}, nil
}
