package audit_test

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"

	"github.com/google/uuid"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/mailroom-io/mailroom/internal/audit"
	"github.com/mailroom-io/mailroom/internal/core/events"
)

func TestAudit(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Audit Suite")
}

// Mock repository for testing
type mockAuditRepository struct {
	entries     []*audit.AuditLog
	createError error
}

func (m *mockAuditRepository) Create(entry *audit.AuditLog) error {
	if m.createError != nil {
		return m.createError
	}
	m.entries = append(m.entries, entry)
	return nil
}

func (m *mockAuditRepository) GetAll(limit, offset int) ([]*audit.AuditLog, error) {
	return m.entries, nil
}

var _ = Describe("AuditService", func() {
	var (
		service  *audit.Service
		mockRepo *mockAuditRepository
		bus      *events.EventBus
		actorID  string
	)

	BeforeEach(func() {
		mockRepo = &mockAuditRepository{}
		testLogger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		bus = events.NewEventBus(testLogger)
		service = audit.NewService(mockRepo, testLogger)
		service.RegisterSubscribers(bus)
		actorID = uuid.NewString()
	})

	It("should record admin action events with the actor", func() {
		event := events.NewAdminActionEvent(events.EventTypeIdentityCreated, actorID, map[string]interface{}{
			"identity_id": uuid.NewString(),
		})

		Expect(bus.PublishSync(context.Background(), event)).To(Succeed())

		Expect(mockRepo.entries).To(HaveLen(1))
		entry := mockRepo.entries[0]
		Expect(entry.EventType).To(Equal(events.EventTypeIdentityCreated))
		Expect(entry.ActorID).NotTo(BeNil())
		Expect(*entry.ActorID).To(Equal(actorID))
		Expect(entry.Payload).To(HaveKey("identity_id"))
	})

	It("should record email delivery events keyed by the sending user", func() {
		userID := uuid.NewString()
		event := events.NewEmailDeliveryEvent(userID, uuid.NewString(), "failed", 2)

		Expect(bus.PublishSync(context.Background(), event)).To(Succeed())

		Expect(mockRepo.entries).To(HaveLen(1))
		entry := mockRepo.entries[0]
		Expect(entry.EventType).To(Equal(events.EventTypeEmailFailed))
		Expect(entry.ActorID).NotTo(BeNil())
		Expect(*entry.ActorID).To(Equal(userID))
	})

	It("should swallow repository failures", func() {
		mockRepo.createError = errors.New("disk full")
		event := events.NewAdminActionEvent(events.EventTypeTemplateDeleted, actorID, nil)

		Expect(bus.PublishSync(context.Background(), event)).To(Succeed())
		Expect(mockRepo.entries).To(BeEmpty())
	})
})
