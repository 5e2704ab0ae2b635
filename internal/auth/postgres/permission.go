package postgres

import (
	"time"

	"gorm.io/gorm"

	"github.com/obsidianfr/intranet/internal/auth"
	userDatamodel "github.com/obsidianfr/intranet/internal/core/datamodel/user"
)

type PermissionRepository struct {
	db *gorm.DB
}

func NewPermissionRepository(db *gorm.DB) auth.PermissionRepositoryAPI {
	return &PermissionRepository{db: db}
}

func (r *PermissionRepository) ListRoleGrants() ([]auth.RoleGrant, error) {
	var rows []userDatamodel.RolePermission
	if err := r.db.Order("role ASC, permission ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	grants := make([]auth.RoleGrant, 0, len(rows))
	for _, row := range rows {
		grants = append(grants, auth.RoleGrant{
			ID:         row.ID,
			Role:       row.Role,
			Permission: row.Permission,
			CreatedAt:  row.CreatedAt,
		})
	}
	return grants, nil
}

func (r *PermissionRepository) GrantToRole(role, permission string, grantedBy int64) (*auth.RoleGrant, error) {
	row := userDatamodel.RolePermission{
		Role:       role,
		Permission: permission,
		GrantedBy:  &grantedBy,
	}
	if err := r.db.Create(&row).Error; err != nil {
		return nil, err
	}
	return &auth.RoleGrant{
		ID:         row.ID,
		Role:       row.Role,
		Permission: row.Permission,
		CreatedAt:  row.CreatedAt,
	}, nil
}

func (r *PermissionRepository) RevokeFromRole(role, permission string) error {
	return r.db.Where("role = ? AND permission = ?", role, permission).
		Delete(&userDatamodel.RolePermission{}).Error
}

func (r *PermissionRepository) ListUserGrants(userID int64) ([]auth.UserGrant, error) {
	var rows []userDatamodel.UserPermission
	if err := r.db.Where("user_id = ?", userID).Order("permission ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	grants := make([]auth.UserGrant, 0, len(rows))
	for _, row := range rows {
		grants = append(grants, auth.UserGrant{
			ID:         row.ID,
			UserID:     row.UserID,
			Permission: row.Permission,
			ExpiresAt:  row.ExpiresAt,
			CreatedAt:  row.CreatedAt,
		})
	}
	return grants, nil
}

func (r *PermissionRepository) GrantToUser(userID int64, permission string, expiresAt *time.Time, grantedBy int64) (*auth.UserGrant, error) {
	row := userDatamodel.UserPermission{
		UserID:     userID,
		Permission: permission,
		ExpiresAt:  expiresAt,
		GrantedBy:  &grantedBy,
	}
	if err := r.db.Create(&row).Error; err != nil {
		return nil, err
	}
	return &auth.UserGrant{
		ID:         row.ID,
		UserID:     row.UserID,
		Permission: row.Permission,
		ExpiresAt:  row.ExpiresAt,
		CreatedAt:  row.CreatedAt,
	}, nil
}

func (r *PermissionRepository) RevokeFromUser(userID int64, permission string) error {
	return r.db.Where("user_id = ? AND permission = ?", userID, permission).
		Delete(&userDatamodel.UserPermission{}).Error
}

// EffectivePermissions merges role grants with unexpired user grants.
func (r *PermissionRepository) EffectivePermissions(userID int64, role string) ([]string, error) {
	var rolePerms []string
	if err := r.db.Model(&userDatamodel.RolePermission{}).
		Where("role = ?", role).
		Pluck("permission", &rolePerms).Error; err != nil {
		return nil, err
	}

	var userPerms []string
	if err := r.db.Model(&userDatamodel.UserPermission{}).
		Where("user_id = ? AND (expires_at IS NULL OR expires_at > ?)", userID, time.Now()).
		Pluck("permission", &userPerms).Error; err != nil {
		return nil, err
	}

	seen := make(map[string]bool, len(rolePerms)+len(userPerms))
	merged := make([]string, 0, len(rolePerms)+len(userPerms))
	for _, p := range append(rolePerms, userPerms...) {
		if !seen[p] {
			seen[p] = true
			merged = append(merged, p)
		}
	}
	return merged, nil
}
