package document

import (
	"github.com/obsidianfr/intranet/internal"
	docDatamodel "github.com/obsidianfr/intranet/internal/core/datamodel/document"
)

// Decision is the outcome of the access evaluator. Reason names the rule
// that fired, for the document log.
type Decision struct {
	Allowed bool
	Reason  string
}

type accessRule struct {
	name string
	eval func(user *internal.SessionUser, doc *docDatamodel.Document, perms []*docDatamodel.DocumentPermission) *Decision
}

// accessRules is evaluated top to bottom; the first rule that returns a
// decision wins and evaluation stops. Order is the contract:
//
//	deleted-deny > staff-allow > clearance-floor > blacklist > whitelist > role/department > default-allow
//
// A whitelist, when present, is exclusive: any whitelist row on the document
// means the viewer must match one of them. Role and department rows are
// likewise exclusive among themselves: once any exist, the viewer must match
// one of them.
var accessRules = []accessRule{
	{
		name: "deleted",
		eval: func(_ *internal.SessionUser, doc *docDatamodel.Document, _ []*docDatamodel.DocumentPermission) *Decision {
			if doc.Deleted {
				return &Decision{Allowed: false, Reason: "deleted"}
			}
			return nil
		},
	},
	{
		name: "staff",
		eval: func(user *internal.SessionUser, _ *docDatamodel.Document, _ []*docDatamodel.DocumentPermission) *Decision {
			if user.Role == internal.RoleStaff {
				return &Decision{Allowed: true, Reason: "staff"}
			}
			return nil
		},
	},
	{
		name: "clearance",
		eval: func(user *internal.SessionUser, doc *docDatamodel.Document, _ []*docDatamodel.DocumentPermission) *Decision {
			if user.Clearance < doc.Clearance {
				return &Decision{Allowed: false, Reason: "clearance"}
			}
			return nil
		},
	},
	{
		name: "blacklist",
		eval: func(user *internal.SessionUser, _ *docDatamodel.Document, perms []*docDatamodel.DocumentPermission) *Decision {
			for _, p := range perms {
				if p.Kind == PermissionBlacklist && subjectMatches(user, p) {
					return &Decision{Allowed: false, Reason: "blacklist"}
				}
			}
			return nil
		},
	},
	{
		name: "whitelist",
		eval: func(user *internal.SessionUser, _ *docDatamodel.Document, perms []*docDatamodel.DocumentPermission) *Decision {
			hasWhitelist := false
			for _, p := range perms {
				if p.Kind != PermissionWhitelist {
					continue
				}
				hasWhitelist = true
				if subjectMatches(user, p) {
					return &Decision{Allowed: true, Reason: "whitelist"}
				}
			}
			if hasWhitelist {
				return &Decision{Allowed: false, Reason: "not_whitelisted"}
			}
			return nil
		},
	},
	{
		name: "role_department",
		eval: func(user *internal.SessionUser, _ *docDatamodel.Document, perms []*docDatamodel.DocumentPermission) *Decision {
			restricted := false
			for _, p := range perms {
				switch p.Kind {
				case PermissionRole:
					restricted = true
					if p.SubjectRole != nil && *p.SubjectRole == user.Role {
						return &Decision{Allowed: true, Reason: "role"}
					}
				case PermissionDepartment:
					restricted = true
					if p.SubjectDepartment != nil && user.Department != "" && *p.SubjectDepartment == user.Department {
						return &Decision{Allowed: true, Reason: "department"}
					}
				}
			}
			if restricted {
				return &Decision{Allowed: false, Reason: "role_department"}
			}
			return nil
		},
	},
}

// CanAccess decides whether user may see doc. It is a pure function of its
// inputs; callers fetch the permission rows.
func CanAccess(user *internal.SessionUser, doc *docDatamodel.Document, perms []*docDatamodel.DocumentPermission) Decision {
	for _, rule := range accessRules {
		if d := rule.eval(user, doc, perms); d != nil {
			return *d
		}
	}
	return Decision{Allowed: true, Reason: "default"}
}

func subjectMatches(user *internal.SessionUser, p *docDatamodel.DocumentPermission) bool {
	if p.SubjectUserID != nil && *p.SubjectUserID == user.ID {
		return true
	}
	if p.SubjectRole != nil && *p.SubjectRole == user.Role {
		return true
	}
	if p.SubjectDepartment != nil && user.Department != "" && *p.SubjectDepartment == user.Department {
		return true
	}
	return false
}
