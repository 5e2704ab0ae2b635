package user_test

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/obsidianfr/intranet/internal"
	userDatamodel "github.com/obsidianfr/intranet/internal/core/datamodel/user"
	"github.com/obsidianfr/intranet/internal/core/events"
	"github.com/obsidianfr/intranet/internal/user"
)

func TestUserService(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "User Service Suite")
}

type MockRepository struct {
	users      map[int64]*userDatamodel.User
	notes      map[int64][]*userDatamodel.HRNote
	nextID     int64
	shouldFail bool
	failError  error
}

func NewMockRepository() *MockRepository {
	return &MockRepository{
		users:  make(map[int64]*userDatamodel.User),
		notes:  make(map[int64][]*userDatamodel.HRNote),
		nextID: 1,
	}
}

func (m *MockRepository) GetAll() ([]*userDatamodel.User, error) {
	if m.shouldFail {
		return nil, m.failError
	}
	var rows []*userDatamodel.User
	for _, row := range m.users {
		rows = append(rows, row)
	}
	return rows, nil
}

func (m *MockRepository) GetByID(userID int64) (*userDatamodel.User, error) {
	if m.shouldFail {
		return nil, m.failError
	}
	return m.users[userID], nil
}

func (m *MockRepository) GetByUsername(username string) (*userDatamodel.User, error) {
	if m.shouldFail {
		return nil, m.failError
	}
	for _, row := range m.users {
		if row.Username == username {
			return row, nil
		}
	}
	return nil, nil
}

func (m *MockRepository) Create(row *userDatamodel.User) error {
	if m.shouldFail {
		return m.failError
	}
	row.ID = m.nextID
	m.nextID++
	m.users[row.ID] = row
	return nil
}

func (m *MockRepository) UpdateClearance(userID int64, clearance int) error {
	if m.shouldFail {
		return m.failError
	}
	m.users[userID].Clearance = clearance
	return nil
}

func (m *MockRepository) UpdateRole(userID int64, role string) error {
	if m.shouldFail {
		return m.failError
	}
	m.users[userID].Role = role
	return nil
}

func (m *MockRepository) SetSuspended(userID int64, suspended bool) error {
	if m.shouldFail {
		return m.failError
	}
	m.users[userID].Suspended = suspended
	return nil
}

func (m *MockRepository) UpdatePassword(userID int64, passwordHash string) error {
	if m.shouldFail {
		return m.failError
	}
	m.users[userID].PasswordHash = passwordHash
	return nil
}

func (m *MockRepository) Delete(userID int64) error {
	if m.shouldFail {
		return m.failError
	}
	delete(m.users, userID)
	return nil
}

func (m *MockRepository) AddNote(row *userDatamodel.HRNote) error {
	if m.shouldFail {
		return m.failError
	}
	row.ID = m.nextID
	m.nextID++
	m.notes[row.UserID] = append(m.notes[row.UserID], row)
	return nil
}

func (m *MockRepository) GetNotes(userID int64) ([]*userDatamodel.HRNote, error) {
	if m.shouldFail {
		return nil, m.failError
	}
	return m.notes[userID], nil
}

func (m *MockRepository) ListActive() ([]*userDatamodel.User, error) {
	if m.shouldFail {
		return nil, m.failError
	}
	var rows []*userDatamodel.User
	for _, row := range m.users {
		if !row.Suspended {
			rows = append(rows, row)
		}
	}
	return rows, nil
}

func (m *MockRepository) SearchActive(query string, limit int) ([]*userDatamodel.User, error) {
	if m.shouldFail {
		return nil, m.failError
	}
	var rows []*userDatamodel.User
	for _, row := range m.users {
		if row.Suspended {
			continue
		}
		if contains(row.Username, query) || contains(row.Department, query) {
			rows = append(rows, row)
		}
	}
	return rows, nil
}

func contains(s, sub string) bool {
	for i := 0; i+len(sub) <= len(s); i++ {
		if s[i:i+len(sub)] == sub {
			return true
		}
	}
	return false
}

type MockHasher struct{}

func (MockHasher) HashPassword(password string) (string, error) {
	return "hashed:" + password, nil
}

type MockAudit struct {
	actions []string
}

func (m *MockAudit) Record(ctx context.Context, action string, userID *int64, details string) {
	m.actions = append(m.actions, action)
}

type MockBus struct {
	published []events.Event
}

func (m *MockBus) Publish(ctx context.Context, event events.Event) error {
	m.published = append(m.published, event)
	return nil
}

func (m *MockBus) eventTypes() []string {
	types := make([]string, len(m.published))
	for i, e := range m.published {
		types[i] = e.EventType()
	}
	return types
}

var _ = Describe("User Service", func() {
	var (
		mockRepo  *MockRepository
		mockAudit *MockAudit
		mockBus   *MockBus
		service   *user.Service
		admin     *internal.SessionUser
		staff     *internal.SessionUser
	)

	BeforeEach(func() {
		mockRepo = NewMockRepository()
		mockAudit = &MockAudit{}
		mockBus = &MockBus{}
		lg := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		service = user.NewService(mockRepo, MockHasher{}, mockAudit, mockBus, lg)
		admin = &internal.SessionUser{ID: 100, Username: "root", Role: internal.RoleAdmin, Clearance: 6}
		staff = &internal.SessionUser{ID: 101, Username: "overseer", Role: internal.RoleStaff}
	})

	Describe("CreateUser", func() {
		It("creates the user with a hashed temporary password", func() {
			resp, err := service.CreateUser(context.Background(), admin, user.CreateUserDTO{
				Username:   "dr.okafor",
				Role:       internal.RoleScientifique,
				Clearance:  2,
				Department: "biologie",
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.User.ID).NotTo(BeZero())
			Expect(resp.TemporaryPassword).To(HaveLen(8))
			Expect(resp.TemporaryPassword).To(MatchRegexp(`^[A-Z0-9]{8}$`))

			stored := mockRepo.users[resp.User.ID]
			Expect(stored.PasswordHash).To(Equal("hashed:" + resp.TemporaryPassword))
		})

		It("publishes user.created and audits", func() {
			_, err := service.CreateUser(context.Background(), admin, user.CreateUserDTO{
				Username:  "dr.okafor",
				Role:      internal.RoleScientifique,
				Clearance: 2,
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(mockBus.eventTypes()).To(ContainElement(events.EventTypeUserCreated))
			Expect(mockAudit.actions).To(ContainElement("USER_CREATED"))
		})

		It("rejects a duplicate username with a conflict", func() {
			_, err := service.CreateUser(context.Background(), admin, user.CreateUserDTO{
				Username: "dr.okafor", Role: internal.RoleScientifique,
			})
			Expect(err).NotTo(HaveOccurred())

			_, err = service.CreateUser(context.Background(), admin, user.CreateUserDTO{
				Username: "dr.okafor", Role: internal.RoleIA,
			})
			Expect(err).To(HaveOccurred())
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.StatusCode).To(Equal(409))
		})

		It("rejects an unknown role", func() {
			_, err := service.CreateUser(context.Background(), admin, user.CreateUserDTO{
				Username: "dr.okafor", Role: "wizard",
			})
			Expect(err).To(HaveOccurred())
		})

		It("rejects clearance outside 0..6", func() {
			_, err := service.CreateUser(context.Background(), admin, user.CreateUserDTO{
				Username: "dr.okafor", Role: internal.RoleScientifique, Clearance: 7,
			})
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("UpdateRole", func() {
		var targetID int64

		BeforeEach(func() {
			resp, err := service.CreateUser(context.Background(), admin, user.CreateUserDTO{
				Username: "agent.m", Role: internal.RoleSecurite,
			})
			Expect(err).NotTo(HaveOccurred())
			targetID = resp.User.ID
		})

		It("lets admin change any role", func() {
			updated, err := service.UpdateRole(context.Background(), admin, targetID, user.UpdateRoleDTO{Role: internal.RoleDirection})
			Expect(err).NotTo(HaveOccurred())
			Expect(updated.Role).To(Equal(internal.RoleDirection))
			Expect(mockAudit.actions).To(ContainElement("ROLE_CHANGED"))
		})

		It("forbids staff from promoting anyone to admin", func() {
			_, err := service.UpdateRole(context.Background(), staff, targetID, user.UpdateRoleDTO{Role: internal.RoleAdmin})
			Expect(err).To(MatchError(internal.ErrInsufficientRole))
		})

		It("forbids staff from touching an admin account", func() {
			adminResp, err := service.CreateUser(context.Background(), admin, user.CreateUserDTO{
				Username: "second.root", Role: internal.RoleAdmin,
			})
			Expect(err).NotTo(HaveOccurred())

			_, err = service.UpdateRole(context.Background(), staff, adminResp.User.ID, user.UpdateRoleDTO{Role: internal.RoleIA})
			Expect(err).To(MatchError(internal.ErrInsufficientRole))
		})

		It("404s on a missing user", func() {
			_, err := service.UpdateRole(context.Background(), admin, 9999, user.UpdateRoleDTO{Role: internal.RoleIA})
			Expect(err).To(MatchError(internal.ErrUserNotFound))
		})
	})

	Describe("UpdateClearance", func() {
		var targetID int64

		BeforeEach(func() {
			resp, err := service.CreateUser(context.Background(), admin, user.CreateUserDTO{
				Username: "agent.m", Role: internal.RoleSecurite, Clearance: 1,
			})
			Expect(err).NotTo(HaveOccurred())
			targetID = resp.User.ID
		})

		It("updates clearance within bounds and audits", func() {
			updated, err := service.UpdateClearance(context.Background(), admin, targetID, user.UpdateClearanceDTO{Clearance: 5})
			Expect(err).NotTo(HaveOccurred())
			Expect(updated.Clearance).To(Equal(5))
			Expect(mockAudit.actions).To(ContainElement("CLEARANCE_CHANGED"))
		})

		It("rejects clearance above the ceiling", func() {
			_, err := service.UpdateClearance(context.Background(), admin, targetID, user.UpdateClearanceDTO{Clearance: 9})
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("DeleteUser", func() {
		It("deletes and publishes user.deleted", func() {
			resp, err := service.CreateUser(context.Background(), admin, user.CreateUserDTO{
				Username: "ephemeral", Role: internal.RoleIA,
			})
			Expect(err).NotTo(HaveOccurred())

			err = service.DeleteUser(context.Background(), admin, resp.User.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(mockRepo.users).NotTo(HaveKey(resp.User.ID))
			Expect(mockBus.eventTypes()).To(ContainElement(events.EventTypeUserDeleted))
		})

		It("404s on a missing user", func() {
			err := service.DeleteUser(context.Background(), admin, 4242)
			Expect(err).To(MatchError(internal.ErrUserNotFound))
		})
	})

	Describe("ResetPassword", func() {
		It("replaces the hash and publishes user.password_reset", func() {
			resp, err := service.CreateUser(context.Background(), admin, user.CreateUserDTO{
				Username: "forgetful", Role: internal.RoleIA,
			})
			Expect(err).NotTo(HaveOccurred())
			oldHash := mockRepo.users[resp.User.ID].PasswordHash

			reset, err := service.ResetPassword(context.Background(), admin, resp.User.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(reset.TemporaryPassword).To(MatchRegexp(`^[A-Z0-9]{8}$`))
			Expect(mockRepo.users[resp.User.ID].PasswordHash).NotTo(Equal(oldHash))
			Expect(mockBus.eventTypes()).To(ContainElement(events.EventTypeUserPasswordReset))
		})
	})

	Describe("Notes", func() {
		var targetID int64

		BeforeEach(func() {
			resp, err := service.CreateUser(context.Background(), admin, user.CreateUserDTO{
				Username: "subject", Role: internal.RoleScientifique,
			})
			Expect(err).NotTo(HaveOccurred())
			targetID = resp.User.ID
		})

		It("adds and lists notes", func() {
			note, err := service.AddNote(context.Background(), staff, targetID, user.AddNoteDTO{Note: "exemplary conduct"})
			Expect(err).NotTo(HaveOccurred())
			Expect(note.AuthorID).To(Equal(staff.ID))

			notes, err := service.GetNotes(context.Background(), targetID)
			Expect(err).NotTo(HaveOccurred())
			Expect(notes).To(HaveLen(1))
			Expect(notes[0].Note).To(Equal("exemplary conduct"))
		})

		It("rejects an empty note", func() {
			_, err := service.AddNote(context.Background(), staff, targetID, user.AddNoteDTO{Note: "   "})
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("Directory", func() {
		BeforeEach(func() {
			for _, spec := range []struct {
				name string
				dept string
				susp bool
			}{
				{"dr.alpha", "physique", false},
				{"dr.beta", "biologie", false},
				{"dr.gamma", "biologie", true},
			} {
				resp, err := service.CreateUser(context.Background(), admin, user.CreateUserDTO{
					Username: spec.name, Role: internal.RoleScientifique, Department: spec.dept,
				})
				Expect(err).NotTo(HaveOccurred())
				if spec.susp {
					_, err = service.SetSuspended(context.Background(), admin, resp.User.ID, user.SuspendDTO{Suspended: true})
					Expect(err).NotTo(HaveOccurred())
				}
			}
		})

		It("lists only non-suspended users", func() {
			entries, err := service.Directory(context.Background())
			Expect(err).NotTo(HaveOccurred())
			Expect(entries).To(HaveLen(2))
		})

		It("searches by username and department", func() {
			entries, err := service.SearchDirectory(context.Background(), "biologie", 2, 50)
			Expect(err).NotTo(HaveOccurred())
			Expect(entries).To(HaveLen(1))
			Expect(entries[0].Username).To(Equal("dr.beta"))
		})

		It("rejects a query below the minimum length", func() {
			_, err := service.SearchDirectory(context.Background(), "b", 2, 50)
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("repository failures", func() {
		It("wraps store errors as internal errors", func() {
			mockRepo.shouldFail = true
			mockRepo.failError = errors.New("disk on fire")

			_, err := service.ListUsers(context.Background())
			Expect(err).To(HaveOccurred())
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.StatusCode).To(Equal(500))
		})
	})
})
