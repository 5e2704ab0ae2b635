package auth_test

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/obsidianfr/intranet/internal"
	"github.com/obsidianfr/intranet/internal/auth"
)

type MockPermissionRepository struct {
	roleGrants []auth.RoleGrant
	userGrants map[int64][]auth.UserGrant
	nextID     int64
	shouldFail bool
	failError  error
}

func NewMockPermissionRepository() *MockPermissionRepository {
	return &MockPermissionRepository{
		userGrants: make(map[int64][]auth.UserGrant),
		nextID:     1,
	}
}

func (m *MockPermissionRepository) ListRoleGrants() ([]auth.RoleGrant, error) {
	if m.shouldFail {
		return nil, m.failError
	}
	return m.roleGrants, nil
}

func (m *MockPermissionRepository) GrantToRole(role, permission string, grantedBy int64) (*auth.RoleGrant, error) {
	if m.shouldFail {
		return nil, m.failError
	}
	grant := auth.RoleGrant{ID: m.nextID, Role: role, Permission: permission, CreatedAt: time.Now()}
	m.nextID++
	m.roleGrants = append(m.roleGrants, grant)
	return &grant, nil
}

func (m *MockPermissionRepository) RevokeFromRole(role, permission string) error {
	if m.shouldFail {
		return m.failError
	}
	kept := m.roleGrants[:0]
	for _, g := range m.roleGrants {
		if g.Role != role || g.Permission != permission {
			kept = append(kept, g)
		}
	}
	m.roleGrants = kept
	return nil
}

func (m *MockPermissionRepository) ListUserGrants(userID int64) ([]auth.UserGrant, error) {
	if m.shouldFail {
		return nil, m.failError
	}
	return m.userGrants[userID], nil
}

func (m *MockPermissionRepository) GrantToUser(userID int64, permission string, expiresAt *time.Time, grantedBy int64) (*auth.UserGrant, error) {
	if m.shouldFail {
		return nil, m.failError
	}
	grant := auth.UserGrant{ID: m.nextID, UserID: userID, Permission: permission, ExpiresAt: expiresAt, CreatedAt: time.Now()}
	m.nextID++
	m.userGrants[userID] = append(m.userGrants[userID], grant)
	return &grant, nil
}

func (m *MockPermissionRepository) RevokeFromUser(userID int64, permission string) error {
	if m.shouldFail {
		return m.failError
	}
	kept := m.userGrants[userID][:0]
	for _, g := range m.userGrants[userID] {
		if g.Permission != permission {
			kept = append(kept, g)
		}
	}
	m.userGrants[userID] = kept
	return nil
}

func (m *MockPermissionRepository) EffectivePermissions(userID int64, role string) ([]string, error) {
	if m.shouldFail {
		return nil, m.failError
	}
	seen := make(map[string]bool)
	var out []string
	for _, g := range m.roleGrants {
		if g.Role == role && !seen[g.Permission] {
			seen[g.Permission] = true
			out = append(out, g.Permission)
		}
	}
	now := time.Now()
	for _, g := range m.userGrants[userID] {
		if g.ExpiresAt != nil && g.ExpiresAt.Before(now) {
			continue
		}
		if !seen[g.Permission] {
			seen[g.Permission] = true
			out = append(out, g.Permission)
		}
	}
	return out, nil
}

var _ = Describe("Permission Service", func() {
	var (
		mockRepo  *MockPermissionRepository
		mockAudit *MockAudit
		service   *auth.PermissionService
		admin     *internal.SessionUser
	)

	BeforeEach(func() {
		mockRepo = NewMockPermissionRepository()
		mockAudit = &MockAudit{}
		lg := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		service = auth.NewPermissionService(mockRepo, mockAudit, lg)
		admin = &internal.SessionUser{ID: 1, Username: "admin", Role: internal.RoleAdmin, Clearance: 6}
	})

	Describe("GrantToRole", func() {
		It("stores the grant and audits it", func() {
			grant, err := service.GrantToRole(context.Background(), internal.RoleScientifique, "documents.write", admin)
			Expect(err).NotTo(HaveOccurred())
			Expect(grant.Role).To(Equal(internal.RoleScientifique))
			Expect(mockAudit.actions).To(ContainElement("PERMISSION_GRANTED"))
		})

		It("rejects unknown roles", func() {
			_, err := service.GrantToRole(context.Background(), "prisonnier", "documents.write", admin)
			Expect(err).To(HaveOccurred())
			Expect(mockAudit.actions).To(BeEmpty())
		})

		It("rejects empty permissions", func() {
			_, err := service.GrantToRole(context.Background(), internal.RoleScientifique, "", admin)
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("RevokeFromRole", func() {
		It("removes the grant and audits the revocation", func() {
			_, err := service.GrantToRole(context.Background(), internal.RoleIA, "messages.send", admin)
			Expect(err).NotTo(HaveOccurred())

			Expect(service.RevokeFromRole(context.Background(), internal.RoleIA, "messages.send", admin)).To(Succeed())

			grants, err := service.ListRoleGrants()
			Expect(err).NotTo(HaveOccurred())
			Expect(grants).To(BeEmpty())
			Expect(mockAudit.actions).To(ContainElement("PERMISSION_REVOKED"))
		})
	})

	Describe("user grants", func() {
		It("grants with an optional expiry", func() {
			expiry := time.Now().Add(48 * time.Hour)
			grant, err := service.GrantToUser(context.Background(), 7, "rh.read", &expiry, admin)
			Expect(err).NotTo(HaveOccurred())
			Expect(grant.UserID).To(Equal(int64(7)))
			Expect(grant.ExpiresAt).NotTo(BeNil())

			grants, err := service.ListUserGrants(7)
			Expect(err).NotTo(HaveOccurred())
			Expect(grants).To(HaveLen(1))
		})

		It("revokes a single permission", func() {
			_, err := service.GrantToUser(context.Background(), 7, "rh.read", nil, admin)
			Expect(err).NotTo(HaveOccurred())
			_, err = service.GrantToUser(context.Background(), 7, "rh.write", nil, admin)
			Expect(err).NotTo(HaveOccurred())

			Expect(service.RevokeFromUser(context.Background(), 7, "rh.read", admin)).To(Succeed())

			grants, err := service.ListUserGrants(7)
			Expect(err).NotTo(HaveOccurred())
			Expect(grants).To(HaveLen(1))
			Expect(grants[0].Permission).To(Equal("rh.write"))
		})
	})

	Describe("EffectivePermissions", func() {
		It("merges role and user grants, skipping expired ones", func() {
			_, err := service.GrantToRole(context.Background(), internal.RoleScientifique, "documents.read", admin)
			Expect(err).NotTo(HaveOccurred())

			lapsed := time.Now().Add(-time.Hour)
			_, err = service.GrantToUser(context.Background(), 7, "rh.read", &lapsed, admin)
			Expect(err).NotTo(HaveOccurred())
			_, err = service.GrantToUser(context.Background(), 7, "documents.moderate", nil, admin)
			Expect(err).NotTo(HaveOccurred())

			perms, err := service.EffectivePermissions(7, internal.RoleScientifique)
			Expect(err).NotTo(HaveOccurred())
			Expect(perms).To(ConsistOf("documents.read", "documents.moderate"))
		})
	})

	Describe("repository failures", func() {
		It("surfaces the error without auditing", func() {
			mockRepo.shouldFail = true
			mockRepo.failError = errors.New("connection lost")

			_, err := service.GrantToRole(context.Background(), internal.RoleScientifique, "documents.write", admin)
			Expect(err).To(HaveOccurred())
			Expect(mockAudit.actions).To(BeEmpty())
		})
	})
})
