package user

import "time"

type User struct {
	ID           int64     `gorm:"primaryKey"`
	Username     string    `gorm:"column:username;uniqueIndex;not null"`
	PasswordHash string    `gorm:"column:password_hash;not null"`
	Role         string    `gorm:"column:role;not null;default:scientifique"`
	Clearance    int       `gorm:"column:clearance;not null;default:0"`
	Department   string    `gorm:"column:department"`
	Suspended    bool      `gorm:"column:suspended;default:false"`
	CreatedAt    time.Time `gorm:"column:created_at;default:now()"`
	UpdatedAt    time.Time `gorm:"column:updated_at;default:now()"`
}

func (User) TableName() string {
	return "users"
}

// HRNote is an internal remark on a personnel file, visible to HR roles only.
type HRNote struct {
	ID        int64     `gorm:"primaryKey"`
	UserID    int64     `gorm:"column:user_id;not null;index"`
	AuthorID  int64     `gorm:"column:author_id;not null"`
	Note      string    `gorm:"column:note;not null"`
	CreatedAt time.Time `gorm:"column:created_at;default:now()"`
}

func (HRNote) TableName() string {
	return "hr_notes"
}

// RolePermission grants a named capability to every member of a role.
type RolePermission struct {
	ID         int64     `gorm:"primaryKey"`
	Role       string    `gorm:"column:role;not null;uniqueIndex:idx_role_permission"`
	Permission string    `gorm:"column:permission;not null;uniqueIndex:idx_role_permission"`
	GrantedBy  *int64    `gorm:"column:granted_by"`
	CreatedAt  time.Time `gorm:"column:created_at;default:now()"`
}

func (RolePermission) TableName() string {
	return "role_permissions"
}

// UserPermission grants a named capability to one user, optionally expiring.
type UserPermission struct {
	ID         int64      `gorm:"primaryKey"`
	UserID     int64      `gorm:"column:user_id;not null;uniqueIndex:idx_user_permission"`
	Permission string     `gorm:"column:permission;not null;uniqueIndex:idx_user_permission"`
	GrantedBy  *int64     `gorm:"column:granted_by"`
	ExpiresAt  *time.Time `gorm:"column:expires_at"`
	CreatedAt  time.Time  `gorm:"column:created_at;default:now()"`
}

func (UserPermission) TableName() string {
	return "user_permissions"
}
