package internal

import "context"

// Organizational roles carried in the session claim. The set is closed: HR
// rejects anything else at the boundary.
const (
	RoleScientifique   = "scientifique"
	RoleSecurite       = "securite"
	RoleAdministration = "administration"
	RoleDirection      = "direction"
	RoleIA             = "ia"
	RoleStaff          = "staff"
	RoleAdmin          = "admin"
)

// Clearance levels gate document visibility: a viewer needs clearance >= the
// document's clearance. RoleStaff bypasses the check entirely.
const (
	ClearanceMin = 0
	ClearanceMax = 6
)

func AllRoles() []string {
	return []string{
		RoleScientifique,
		RoleSecurite,
		RoleAdministration,
		RoleDirection,
		RoleIA,
		RoleStaff,
		RoleAdmin,
	}
}

func IsValidRole(role string) bool {
	for _, r := range AllRoles() {
		if r == role {
			return true
		}
	}
	return false
}

// SessionUser is the authenticated identity attached to the request context.
// Everything downstream of the auth middleware trusts it verbatim.
type SessionUser struct {
	ID          int64    `json:"id"`
	Username    string   `json:"username"`
	Role        string   `json:"role"`
	Clearance   int      `json:"clearance"`
	Department  string   `json:"department"`
	Permissions []string `json:"permissions,omitempty"`
}

func (u *SessionUser) HasRole(roles ...string) bool {
	for _, r := range roles {
		if u.Role == r {
			return true
		}
	}
	return false
}

func (u *SessionUser) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// CanManageHR reports whether the user may read and mutate HR records.
func (u *SessionUser) CanManageHR() bool {
	return u.HasRole(RoleAdministration, RoleDirection, RoleStaff, RoleAdmin)
}

func (u *SessionUser) HasPermission(permission string) bool {
	for _, p := range u.Permissions {
		if p == permission {
			return true
		}
	}
	return false
}

const contextSessionUserKey ctxKey = "sessionUser"

func UserFromContext(ctx context.Context) (*SessionUser, bool) {
	if ctx == nil {
		return nil, false
	}
	u, ok := ctx.Value(contextSessionUserKey).(*SessionUser)
	return u, ok
}

func ContextWithUser(ctx context.Context, user *SessionUser) context.Context {
	return context.WithValue(ctx, contextSessionUserKey, user)
}
