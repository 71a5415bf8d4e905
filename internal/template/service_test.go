package template_test

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"

	"github.com/google/uuid"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/mailroom-io/mailroom/internal"
	"github.com/mailroom-io/mailroom/internal/core/events"
	"github.com/mailroom-io/mailroom/internal/template"
)

func TestTemplate(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Template Suite")
}

// Mock repository for testing
type mockTemplateRepository struct {
	templates map[uuid.UUID]*template.EmailTemplate
}

func newMockTemplateRepository() *mockTemplateRepository {
	return &mockTemplateRepository{templates: make(map[uuid.UUID]*template.EmailTemplate)}
}

func (m *mockTemplateRepository) GetAll() ([]*template.EmailTemplate, error) {
	out := make([]*template.EmailTemplate, 0, len(m.templates))
	for _, t := range m.templates {
		out = append(out, t)
	}
	return out, nil
}

func (m *mockTemplateRepository) GetByID(id uuid.UUID) (*template.EmailTemplate, error) {
	t, ok := m.templates[id]
	if !ok {
		return nil, errors.New("record not found")
	}
	return t, nil
}

func (m *mockTemplateRepository) Create(t *template.EmailTemplate) error {
	m.templates[t.ID] = t
	return nil
}

func (m *mockTemplateRepository) Update(t *template.EmailTemplate) error {
	m.templates[t.ID] = t
	return nil
}

func (m *mockTemplateRepository) Delete(id uuid.UUID) error {
	delete(m.templates, id)
	return nil
}

var _ = Describe("TemplateService", func() {
	var (
		service  *template.Service
		mockRepo *mockTemplateRepository
		actorID  uuid.UUID
	)

	BeforeEach(func() {
		mockRepo = newMockTemplateRepository()
		testLogger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		service = template.NewService(mockRepo, events.NewEventBus(testLogger), testLogger)
		actorID = uuid.New()
	})

	Describe("Create", func() {
		It("should store the template with its author", func() {
			tmpl, err := service.Create(context.Background(), actorID, template.TemplateDTO{
				Name:        "Welcome",
				HTMLContent: "<p>Hello</p>",
			})

			Expect(err).ToNot(HaveOccurred())
			Expect(tmpl.CreatedByID).To(Equal(actorID))
			Expect(mockRepo.templates).To(HaveKey(tmpl.ID))
		})

		It("should reject an empty body", func() {
			_, err := service.Create(context.Background(), actorID, template.TemplateDTO{Name: "Empty"})

			Expect(err).To(HaveOccurred())
		})
	})

	Describe("Update", func() {
		It("should replace the content of an existing template", func() {
			tmpl, err := service.Create(context.Background(), actorID, template.TemplateDTO{
				Name:        "Welcome",
				HTMLContent: "<p>v1</p>",
			})
			Expect(err).ToNot(HaveOccurred())

			updated, err := service.Update(context.Background(), actorID, tmpl.ID, template.TemplateDTO{
				Name:        "Welcome v2",
				HTMLContent: "<p>v2</p>",
			})

			Expect(err).ToNot(HaveOccurred())
			Expect(updated.Name).To(Equal("Welcome v2"))
			Expect(updated.HTMLContent).To(Equal("<p>v2</p>"))
		})

		It("should fail for an unknown template", func() {
			_, err := service.Update(context.Background(), actorID, uuid.New(), template.TemplateDTO{
				Name:        "Ghost",
				HTMLContent: "<p></p>",
			})

			Expect(err).To(MatchError(internal.ErrTemplateNotFound))
		})
	})

	Describe("Delete", func() {
		It("should remove the template", func() {
			tmpl, err := service.Create(context.Background(), actorID, template.TemplateDTO{
				Name:        "Gone",
				HTMLContent: "<p>bye</p>",
			})
			Expect(err).ToNot(HaveOccurred())

			Expect(service.Delete(context.Background(), actorID, tmpl.ID)).To(Succeed())
			Expect(mockRepo.templates).ToNot(HaveKey(tmpl.ID))
		})

		It("should fail for an unknown template", func() {
			err := service.Delete(context.Background(), actorID, uuid.New())

			Expect(err).To(MatchError(internal.ErrTemplateNotFound))
		})
	})
})
