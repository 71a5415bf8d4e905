package email_test

import (
	"errors"
	"log/slog"
	"os"

	"github.com/google/uuid"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/mailroom-io/mailroom/internal"
	"github.com/mailroom-io/mailroom/internal/email"
	"github.com/mailroom-io/mailroom/internal/identity"
)

// Mock identity store for testing
type mockIdentityStore struct {
	identities map[uuid.UUID]*identity.SenderIdentity
}

func (m *mockIdentityStore) GetByID(id uuid.UUID) (*identity.SenderIdentity, error) {
	ident, ok := m.identities[id]
	if !ok {
		return nil, errors.New("record not found")
	}
	return ident, nil
}

// Mock grant store for testing
type mockGrantStore struct {
	grants map[uuid.UUID]map[uuid.UUID]bool
	err    error
	calls  int
}

func (m *mockGrantStore) HasGrant(userID, senderIdentityID uuid.UUID) (bool, error) {
	m.calls++
	if m.err != nil {
		return false, m.err
	}
	return m.grants[userID][senderIdentityID], nil
}

var _ = Describe("Authorizer", func() {
	var (
		authorizer *email.Authorizer
		identities *mockIdentityStore
		grants     *mockGrantStore
		userID     uuid.UUID
		activeID   uuid.UUID
		inactiveID uuid.UUID
	)

	BeforeEach(func() {
		userID = uuid.New()
		activeID = uuid.New()
		inactiveID = uuid.New()

		identities = &mockIdentityStore{
			identities: map[uuid.UUID]*identity.SenderIdentity{
				activeID:   {ID: activeID, EmailAddress: "noreply@mailroom.dev", IsActive: true},
				inactiveID: {ID: inactiveID, EmailAddress: "legacy@mailroom.dev", IsActive: false},
			},
		}
		grants = &mockGrantStore{grants: map[uuid.UUID]map[uuid.UUID]bool{}}

		testLogger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		authorizer = email.NewAuthorizer(identities, grants, testLogger)
	})

	Context("for an admin", func() {
		It("should allow an active identity without consulting grants", func() {
			ident, err := authorizer.Authorize(userID, true, activeID)

			Expect(err).ToNot(HaveOccurred())
			Expect(ident.ID).To(Equal(activeID))
			Expect(grants.calls).To(BeZero())
		})

		It("should still deny an inactive identity", func() {
			ident, err := authorizer.Authorize(userID, true, inactiveID)

			Expect(ident).To(BeNil())
			Expect(err).To(MatchError(internal.ErrIdentityInactive))
		})
	})

	Context("for a regular user", func() {
		It("should deny when no grant exists", func() {
			ident, err := authorizer.Authorize(userID, false, activeID)

			Expect(ident).To(BeNil())
			Expect(err).To(MatchError(internal.ErrSenderNotPermitted))
		})

		It("should allow a granted, active identity", func() {
			grants.grants[userID] = map[uuid.UUID]bool{activeID: true}

			ident, err := authorizer.Authorize(userID, false, activeID)

			Expect(err).ToNot(HaveOccurred())
			Expect(ident.ID).To(Equal(activeID))
		})

		It("should deny a granted but inactive identity", func() {
			grants.grants[userID] = map[uuid.UUID]bool{inactiveID: true}

			ident, err := authorizer.Authorize(userID, false, inactiveID)

			Expect(ident).To(BeNil())
			Expect(err).To(MatchError(internal.ErrIdentityInactive))
		})

		It("should propagate grant lookup failures", func() {
			grants.err = errors.New("db down")

			ident, err := authorizer.Authorize(userID, false, activeID)

			Expect(ident).To(BeNil())
			Expect(err).To(MatchError(grants.err))
		})
	})

	It("should deny an unknown identity for everyone", func() {
		unknown := uuid.New()

		_, errAdmin := authorizer.Authorize(userID, true, unknown)
		_, errUser := authorizer.Authorize(userID, false, unknown)

		Expect(errAdmin).To(MatchError(internal.ErrIdentityNotFound))
		Expect(errUser).To(MatchError(internal.ErrIdentityNotFound))
	})
})
