package email

import (
	"log/slog"

	"github.com/google/uuid"

	"github.com/mailroom-io/mailroom/internal"
	"github.com/mailroom-io/mailroom/internal/identity"
)

// IdentityStore is the identity lookup the authorizer needs.
type IdentityStore interface {
	GetByID(id uuid.UUID) (*identity.SenderIdentity, error)
}

// GrantStore answers whether a grant row exists for (user, identity).
type GrantStore interface {
	HasGrant(userID, senderIdentityID uuid.UUID) (bool, error)
}

// Authorizer decides whether a user may send as a given identity. It is a
// pure read: no side effects, no log rows. isAdmin is the caller's session
// role snapshot and is not re-derived here, so one send gets one consistent
// decision even if the role changes mid-request.
type Authorizer struct {
	identities IdentityStore
	grants     GrantStore
	logger     *slog.Logger
}

func NewAuthorizer(identities IdentityStore, grants GrantStore, logger *slog.Logger) *Authorizer {
	return &Authorizer{
		identities: identities,
		grants:     grants,
		logger:     logger,
	}
}

// Authorize resolves to the identity on allow, or a typed denial:
// identity missing, no grant, or identity inactive. Admins bypass the grant
// table but still cannot use an inactive identity.
func (a *Authorizer) Authorize(userID uuid.UUID, isAdmin bool, senderIdentityID uuid.UUID) (*identity.SenderIdentity, error) {
	ident, err := a.identities.GetByID(senderIdentityID)
	if err != nil || ident == nil {
		a.logger.Warn("send denied: identity not found",
			"user_id", userID,
			"sender_identity_id", senderIdentityID)
		return nil, internal.ErrIdentityNotFound
	}

	if isAdmin {
		if !ident.IsActive {
			a.logger.Warn("send denied: identity inactive",
				"user_id", userID,
				"sender_identity_id", senderIdentityID)
			return nil, internal.ErrIdentityInactive
		}
		return ident, nil
	}

	hasGrant, err := a.grants.HasGrant(userID, senderIdentityID)
	if err != nil {
		a.logger.Error("grant lookup failed",
			"error", err,
			"user_id", userID,
			"sender_identity_id", senderIdentityID)
		return nil, err
	}
	if !hasGrant {
		a.logger.Warn("send denied: no grant",
			"user_id", userID,
			"sender_identity_id", senderIdentityID)
		return nil, internal.ErrSenderNotPermitted
	}
	if !ident.IsActive {
		a.logger.Warn("send denied: identity inactive",
			"user_id", userID,
			"sender_identity_id", senderIdentityID)
		return nil, internal.ErrIdentityInactive
	}

	return ident, nil
}
