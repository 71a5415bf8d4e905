package identity_test

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
	"github.com/mailroom-io/mailroom/internal/identity"
)

func TestIdentity(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Identity Suite")
}

// Mock repository for testing
type mockIdentityRepository struct {
	identities    map[uuid.UUID]*identity.SenderIdentity
	grantedTo     map[uuid.UUID][]*identity.SenderIdentity
	logReferences map[uuid.UUID]int64
	createError   error
}

func newMockIdentityRepository() *mockIdentityRepository {
	return &mockIdentityRepository{
		identities:    make(map[uuid.UUID]*identity.SenderIdentity),
		grantedTo:     make(map[uuid.UUID][]*identity.SenderIdentity),
		logReferences: make(map[uuid.UUID]int64),
	}
}

func (m *mockIdentityRepository) GetAll() ([]*identity.SenderIdentity, error) {
	out := make([]*identity.SenderIdentity, 0, len(m.identities))
	for _, i := range m.identities {
		out = append(out, i)
	}
	return out, nil
}

func (m *mockIdentityRepository) GetByID(id uuid.UUID) (*identity.SenderIdentity, error) {
	ident, ok := m.identities[id]
	if !ok {
		return nil, errors.New("record not found")
	}
	return ident, nil
}

func (m *mockIdentityRepository) GetActiveGrantedTo(userID uuid.UUID) ([]*identity.SenderIdentity, error) {
	return m.grantedTo[userID], nil
}

func (m *mockIdentityRepository) Create(ident *identity.SenderIdentity) error {
	if m.createError != nil {
		return m.createError
	}
	m.identities[ident.ID] = ident
	return nil
}

func (m *mockIdentityRepository) UpdateActive(id uuid.UUID, isActive bool) error {
	ident, ok := m.identities[id]
	if !ok {
		return errors.New("record not found")
	}
	ident.IsActive = isActive
	return nil
}

func (m *mockIdentityRepository) Delete(id uuid.UUID) error {
	delete(m.identities, id)
	return nil
}

func (m *mockIdentityRepository) CountLogReferences(id uuid.UUID) (int64, error) {
	return m.logReferences[id], nil
}

var _ = Describe("IdentityService", func() {
	var (
		service  *identity.Service
		mockRepo *mockIdentityRepository
		actorID  uuid.UUID
	)

	BeforeEach(func() {
		mockRepo = newMockIdentityRepository()
		testLogger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		bus := events.NewEventBus(testLogger)
		service = identity.NewService(mockRepo, bus, testLogger)
		actorID = uuid.New()
	})

	Describe("Create", func() {
		It("should create an active identity", func() {
			ident, err := service.Create(context.Background(), actorID, identity.CreateIdentityDTO{
				DisplayName:  "Mailroom Support",
				EmailAddress: "support@mailroom.dev",
			})

			Expect(err).ToNot(HaveOccurred())
			Expect(ident.IsActive).To(BeTrue())
			Expect(mockRepo.identities).To(HaveKey(ident.ID))
		})

		It("should reject an invalid email address", func() {
			_, err := service.Create(context.Background(), actorID, identity.CreateIdentityDTO{
				DisplayName:  "Broken",
				EmailAddress: "not-an-address",
			})

			Expect(err).To(HaveOccurred())
		})
	})

	Describe("ListFor", func() {
		var (
			active   *identity.SenderIdentity
			inactive *identity.SenderIdentity
			userID   uuid.UUID
		)

		BeforeEach(func() {
			userID = uuid.New()
			active = identity.NewSenderIdentity("Active", "active@mailroom.dev")
			inactive = identity.NewSenderIdentity("Inactive", "inactive@mailroom.dev")
			inactive.IsActive = false
			mockRepo.identities[active.ID] = active
			mockRepo.identities[inactive.ID] = inactive
			mockRepo.grantedTo[userID] = []*identity.SenderIdentity{active}
		})

		It("should return everything for admins, inactive included", func() {
			identities, err := service.ListFor(userID, true)

			Expect(err).ToNot(HaveOccurred())
			Expect(identities).To(HaveLen(2))
		})

		It("should return only granted active identities for users", func() {
			identities, err := service.ListFor(userID, false)

			Expect(err).ToNot(HaveOccurred())
			Expect(identities).To(HaveLen(1))
			Expect(identities[0].ID).To(Equal(active.ID))
		})
	})

	Describe("ToggleActive", func() {
		It("should flip the active flag", func() {
			ident := identity.NewSenderIdentity("Toggler", "toggle@mailroom.dev")
			mockRepo.identities[ident.ID] = ident

			updated, err := service.ToggleActive(context.Background(), actorID, ident.ID)

			Expect(err).ToNot(HaveOccurred())
			Expect(updated.IsActive).To(BeFalse())

			updated, err = service.ToggleActive(context.Background(), actorID, ident.ID)
			Expect(err).ToNot(HaveOccurred())
			Expect(updated.IsActive).To(BeTrue())
		})

		It("should fail for an unknown identity", func() {
			_, err := service.ToggleActive(context.Background(), actorID, uuid.New())

			Expect(err).To(MatchError(internal.ErrIdentityNotFound))
		})
	})

	Describe("Delete", func() {
		var ident *identity.SenderIdentity

		BeforeEach(func() {
			ident = identity.NewSenderIdentity("Removable", "removable@mailroom.dev")
			mockRepo.identities[ident.ID] = ident
		})

		It("should delete an unreferenced identity", func() {
			err := service.Delete(context.Background(), actorID, ident.ID)

			Expect(err).ToNot(HaveOccurred())
			Expect(mockRepo.identities).ToNot(HaveKey(ident.ID))
		})

		It("should refuse deletion while send logs reference the identity", func() {
			mockRepo.logReferences[ident.ID] = 3

			err := service.Delete(context.Background(), actorID, ident.ID)

			Expect(err).To(MatchError(internal.ErrIdentityReferenced))
			Expect(mockRepo.identities).To(HaveKey(ident.ID))
		})

		It("should fail for an unknown identity", func() {
			err := service.Delete(context.Background(), actorID, uuid.New())

			Expect(err).To(MatchError(internal.ErrIdentityNotFound))
		})
	})
})
