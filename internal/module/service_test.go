package module_test

import (
	"context"
	"encoding/json"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/obsidianfr/intranet/internal"
	moduleDatamodel "github.com/obsidianfr/intranet/internal/core/datamodel/module"
	"github.com/obsidianfr/intranet/internal/module"
)

func TestModuleService(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Module Service Suite")
}

type MockRepository struct {
	modules    map[string]*moduleDatamodel.Module
	shouldFail bool
	failError  error
}

func NewMockRepository() *MockRepository {
	return &MockRepository{modules: make(map[string]*moduleDatamodel.Module)}
}

func (m *MockRepository) GetAll() ([]*moduleDatamodel.Module, error) {
	if m.shouldFail {
		return nil, m.failError
	}
	var rows []*moduleDatamodel.Module
	for _, row := range m.modules {
		rows = append(rows, row)
	}
	return rows, nil
}

func (m *MockRepository) GetByName(name string) (*moduleDatamodel.Module, error) {
	if m.shouldFail {
		return nil, m.failError
	}
	return m.modules[name], nil
}

func (m *MockRepository) SetEnabled(name string, enabled bool) error {
	m.modules[name].Enabled = enabled
	return nil
}

func (m *MockRepository) SetConfig(name string, config string) error {
	m.modules[name].Config = config
	return nil
}

type MockAudit struct {
	actions []string
}

func (m *MockAudit) Record(ctx context.Context, action string, userID *int64, details string) {
	m.actions = append(m.actions, action)
}

var _ = Describe("Module Service", func() {
	var (
		mockRepo  *MockRepository
		mockAudit *MockAudit
		service   *module.Service
		admin     *internal.SessionUser
	)

	ctx := context.Background()

	boolPtr := func(b bool) *bool { return &b }

	BeforeEach(func() {
		mockRepo = NewMockRepository()
		mockAudit = &MockAudit{}
		service = module.NewService(mockRepo, mockAudit, nil)
		admin = &internal.SessionUser{ID: 1, Username: "root", Role: internal.RoleAdmin}

		mockRepo.modules["documents"] = &moduleDatamodel.Module{
			ID: 1, Name: "documents", Description: "document store", Enabled: true, Config: "{}",
		}
		mockRepo.modules["messagerie"] = &moduleDatamodel.Module{
			ID: 2, Name: "messagerie", Description: "internal mail", Enabled: false, Config: `{"max_per_day":50}`,
		}
	})

	Describe("List", func() {
		It("returns every module with its state", func() {
			modules, err := service.List(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(modules).To(HaveLen(2))
		})
	})

	Describe("Get", func() {
		It("returns the module by name", func() {
			mod, err := service.Get(ctx, "messagerie")
			Expect(err).NotTo(HaveOccurred())
			Expect(mod.Enabled).To(BeFalse())
			Expect(string(mod.Config)).To(Equal(`{"max_per_day":50}`))
		})

		It("404s on an unknown name", func() {
			_, err := service.Get(ctx, "archives")
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(internal.ErrCodeModuleNotFound))
		})
	})

	Describe("Toggle", func() {
		It("flips the enabled flag and audits", func() {
			mod, err := service.Toggle(ctx, admin, "documents", module.ToggleDTO{Enabled: boolPtr(false)})
			Expect(err).NotTo(HaveOccurred())
			Expect(mod.Enabled).To(BeFalse())
			Expect(mockRepo.modules["documents"].Enabled).To(BeFalse())
			Expect(mockAudit.actions).To(ContainElement("MODULE_TOGGLED"))
		})

		It("requires the enabled field", func() {
			_, err := service.Toggle(ctx, admin, "documents", module.ToggleDTO{})
			Expect(err).To(HaveOccurred())
		})

		It("404s on an unknown module", func() {
			_, err := service.Toggle(ctx, admin, "archives", module.ToggleDTO{Enabled: boolPtr(true)})
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("Configure", func() {
		It("replaces the config document and audits", func() {
			cfg := json.RawMessage(`{"max_per_day":100}`)
			mod, err := service.Configure(ctx, admin, "messagerie", module.ConfigureDTO{Config: cfg})
			Expect(err).NotTo(HaveOccurred())
			Expect(string(mod.Config)).To(Equal(`{"max_per_day":100}`))
			Expect(mockAudit.actions).To(ContainElement("MODULE_CONFIGURED"))
		})

		It("rejects malformed JSON", func() {
			_, err := service.Configure(ctx, admin, "messagerie", module.ConfigureDTO{Config: json.RawMessage(`{broken`)})
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("IsEnabled", func() {
		It("reflects the stored flag", func() {
			Expect(service.IsEnabled(ctx, "documents")).To(BeTrue())
			Expect(service.IsEnabled(ctx, "messagerie")).To(BeFalse())
		})

		It("treats an unknown module as enabled", func() {
			Expect(service.IsEnabled(ctx, "archives")).To(BeTrue())
		})
	})
})
