package document_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/obsidianfr/intranet/internal"
	docDatamodel "github.com/obsidianfr/intranet/internal/core/datamodel/document"
	"github.com/obsidianfr/intranet/internal/document"
)

func i64(v int64) *int64   { return &v }
func str(v string) *string { return &v }

var _ = Describe("Access Evaluator", func() {
	var (
		doc   *docDatamodel.Document
		perms []*docDatamodel.DocumentPermission
	)

	viewer := func(role string, clearance int, dept string) *internal.SessionUser {
		return &internal.SessionUser{ID: 10, Username: "viewer", Role: role, Clearance: clearance, Department: dept}
	}

	BeforeEach(func() {
		doc = &docDatamodel.Document{ID: 1, Title: "Containment protocol", Clearance: 3, Status: document.StatusPublished, AuthorID: 2}
		perms = nil
	})

	It("denies everything on a deleted document, even for staff", func() {
		doc.Deleted = true
		d := document.CanAccess(viewer(internal.RoleStaff, 6, ""), doc, perms)
		Expect(d.Allowed).To(BeFalse())
		Expect(d.Reason).To(Equal("deleted"))
	})

	It("lets staff through regardless of clearance", func() {
		d := document.CanAccess(viewer(internal.RoleStaff, 0, ""), doc, perms)
		Expect(d.Allowed).To(BeTrue())
		Expect(d.Reason).To(Equal("staff"))
	})

	It("lets staff through even when blacklisted", func() {
		perms = []*docDatamodel.DocumentPermission{
			{Kind: document.PermissionBlacklist, SubjectRole: str(internal.RoleStaff)},
		}
		Expect(document.CanAccess(viewer(internal.RoleStaff, 0, ""), doc, perms).Allowed).To(BeTrue())
	})

	It("enforces the clearance floor", func() {
		Expect(document.CanAccess(viewer(internal.RoleScientifique, 2, ""), doc, perms).Allowed).To(BeFalse())
		Expect(document.CanAccess(viewer(internal.RoleScientifique, 3, ""), doc, perms).Allowed).To(BeTrue())
	})

	Describe("blacklist", func() {
		It("denies a blacklisted user id even with clearance", func() {
			perms = []*docDatamodel.DocumentPermission{
				{Kind: document.PermissionBlacklist, SubjectUserID: i64(10)},
			}
			d := document.CanAccess(viewer(internal.RoleScientifique, 6, ""), doc, perms)
			Expect(d.Allowed).To(BeFalse())
			Expect(d.Reason).To(Equal("blacklist"))
		})

		It("denies by role and by department", func() {
			perms = []*docDatamodel.DocumentPermission{
				{Kind: document.PermissionBlacklist, SubjectRole: str(internal.RoleIA)},
				{Kind: document.PermissionBlacklist, SubjectDepartment: str("biologie")},
			}
			Expect(document.CanAccess(viewer(internal.RoleIA, 6, "physique"), doc, perms).Allowed).To(BeFalse())
			Expect(document.CanAccess(viewer(internal.RoleScientifique, 6, "biologie"), doc, perms).Allowed).To(BeFalse())
			Expect(document.CanAccess(viewer(internal.RoleScientifique, 6, "physique"), doc, perms).Allowed).To(BeTrue())
		})

		It("wins over a whitelist entry for the same user", func() {
			perms = []*docDatamodel.DocumentPermission{
				{Kind: document.PermissionWhitelist, SubjectUserID: i64(10)},
				{Kind: document.PermissionBlacklist, SubjectUserID: i64(10)},
			}
			d := document.CanAccess(viewer(internal.RoleScientifique, 6, ""), doc, perms)
			Expect(d.Allowed).To(BeFalse())
			Expect(d.Reason).To(Equal("blacklist"))
		})
	})

	Describe("whitelist", func() {
		It("is exclusive once present", func() {
			perms = []*docDatamodel.DocumentPermission{
				{Kind: document.PermissionWhitelist, SubjectUserID: i64(99)},
			}
			d := document.CanAccess(viewer(internal.RoleScientifique, 6, ""), doc, perms)
			Expect(d.Allowed).To(BeFalse())
			Expect(d.Reason).To(Equal("not_whitelisted"))
		})

		It("admits a matching user, role or department", func() {
			perms = []*docDatamodel.DocumentPermission{
				{Kind: document.PermissionWhitelist, SubjectUserID: i64(10)},
			}
			Expect(document.CanAccess(viewer(internal.RoleScientifique, 6, ""), doc, perms).Allowed).To(BeTrue())

			perms = []*docDatamodel.DocumentPermission{
				{Kind: document.PermissionWhitelist, SubjectRole: str(internal.RoleSecurite)},
			}
			Expect(document.CanAccess(viewer(internal.RoleSecurite, 6, ""), doc, perms).Allowed).To(BeTrue())

			perms = []*docDatamodel.DocumentPermission{
				{Kind: document.PermissionWhitelist, SubjectDepartment: str("physique")},
			}
			Expect(document.CanAccess(viewer(internal.RoleScientifique, 6, "physique"), doc, perms).Allowed).To(BeTrue())
		})

		It("never lifts the clearance floor", func() {
			perms = []*docDatamodel.DocumentPermission{
				{Kind: document.PermissionWhitelist, SubjectUserID: i64(10)},
			}
			d := document.CanAccess(viewer(internal.RoleScientifique, 1, ""), doc, perms)
			Expect(d.Allowed).To(BeFalse())
			Expect(d.Reason).To(Equal("clearance"))
		})
	})

	Describe("role and department grants", func() {
		It("admits a viewer whose role matches a role row", func() {
			perms = []*docDatamodel.DocumentPermission{
				{Kind: document.PermissionRole, SubjectRole: str(internal.RoleScientifique)},
			}
			d := document.CanAccess(viewer(internal.RoleScientifique, 6, ""), doc, perms)
			Expect(d.Allowed).To(BeTrue())
			Expect(d.Reason).To(Equal("role"))
		})

		It("admits a viewer whose department matches a department row", func() {
			perms = []*docDatamodel.DocumentPermission{
				{Kind: document.PermissionDepartment, SubjectDepartment: str("physique")},
			}
			d := document.CanAccess(viewer(internal.RoleScientifique, 6, "physique"), doc, perms)
			Expect(d.Allowed).To(BeTrue())
			Expect(d.Reason).To(Equal("department"))
		})

		It("denies everyone else once any role or department row exists", func() {
			perms = []*docDatamodel.DocumentPermission{
				{Kind: document.PermissionRole, SubjectRole: str(internal.RoleSecurite)},
				{Kind: document.PermissionDepartment, SubjectDepartment: str("biologie")},
			}
			d := document.CanAccess(viewer(internal.RoleScientifique, 6, "physique"), doc, perms)
			Expect(d.Allowed).To(BeFalse())
			Expect(d.Reason).To(Equal("role_department"))
		})

		It("yields to a blacklist row for the same viewer", func() {
			perms = []*docDatamodel.DocumentPermission{
				{Kind: document.PermissionRole, SubjectRole: str(internal.RoleScientifique)},
				{Kind: document.PermissionBlacklist, SubjectUserID: i64(10)},
			}
			d := document.CanAccess(viewer(internal.RoleScientifique, 6, ""), doc, perms)
			Expect(d.Allowed).To(BeFalse())
			Expect(d.Reason).To(Equal("blacklist"))
		})

		It("never lifts the clearance floor", func() {
			perms = []*docDatamodel.DocumentPermission{
				{Kind: document.PermissionRole, SubjectRole: str(internal.RoleScientifique)},
			}
			d := document.CanAccess(viewer(internal.RoleScientifique, 1, ""), doc, perms)
			Expect(d.Allowed).To(BeFalse())
			Expect(d.Reason).To(Equal("clearance"))
		})
	})

	It("defaults to allow with no permission rows", func() {
		d := document.CanAccess(viewer(internal.RoleScientifique, 3, ""), doc, perms)
		Expect(d.Allowed).To(BeTrue())
		Expect(d.Reason).To(Equal("default"))
	})

	It("does not match an empty viewer department against a department row", func() {
		perms = []*docDatamodel.DocumentPermission{
			{Kind: document.PermissionBlacklist, SubjectDepartment: str("")},
		}
		Expect(document.CanAccess(viewer(internal.RoleScientifique, 6, ""), doc, perms).Allowed).To(BeTrue())
	})
})
