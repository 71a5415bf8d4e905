package identity

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/mailroom-io/mailroom/internal"
	"github.com/mailroom-io/mailroom/internal/core/events"
)

type RepositoryAPI interface {
	GetAll() ([]*SenderIdentity, error)
	GetByID(id uuid.UUID) (*SenderIdentity, error)
	GetActiveGrantedTo(userID uuid.UUID) ([]*SenderIdentity, error)
	Create(identity *SenderIdentity) error
	UpdateActive(id uuid.UUID, isActive bool) error
	Delete(id uuid.UUID) error
	CountLogReferences(id uuid.UUID) (int64, error)
}

type Service struct {
	repo   RepositoryAPI
	bus    *events.EventBus
	logger *slog.Logger
}

func NewService(repo RepositoryAPI, bus *events.EventBus, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		bus:    bus,
		logger: logger,
	}
}

func (s *Service) Create(ctx context.Context, actorID uuid.UUID, dto CreateIdentityDTO) (*SenderIdentity, error) {
	if err := dto.Validate(); err != nil {
		s.logger.Error("identity validation failed", "error", err, "actor_id", actorID)
		return nil, err
	}

	ident := NewSenderIdentity(dto.DisplayName, dto.EmailAddress)
	if err := s.repo.Create(ident); err != nil {
		s.logger.Error("failed to create sender identity", "error", err, "actor_id", actorID)
		return nil, err
	}

	s.logger.Info("sender identity created",
		"identity_id", ident.ID,
		"email_address", ident.EmailAddress,
		"actor_id", actorID)

	s.bus.Publish(ctx, events.NewAdminActionEvent(events.EventTypeIdentityCreated, actorID.String(), map[string]interface{}{
		"identity_id":   ident.ID.String(),
		"email_address": ident.EmailAddress,
	}))

	return ident, nil
}

// ListFor returns all identities for admins, and only the active identities
// the user holds a grant for otherwise. This feeds the compose form's
// sender dropdown.
func (s *Service) ListFor(userID uuid.UUID, isAdmin bool) ([]*SenderIdentity, error) {
	if isAdmin {
		identities, err := s.repo.GetAll()
		if err != nil {
			s.logger.Error("failed to list sender identities", "error", err)
			return nil, err
		}
		return identities, nil
	}

	identities, err := s.repo.GetActiveGrantedTo(userID)
	if err != nil {
		s.logger.Error("failed to list granted identities", "error", err, "user_id", userID)
		return nil, err
	}
	return identities, nil
}

func (s *Service) GetByID(id uuid.UUID) (*SenderIdentity, error) {
	ident, err := s.repo.GetByID(id)
	if err != nil {
		return nil, internal.ErrIdentityNotFound
	}
	return ident, nil
}

func (s *Service) ToggleActive(ctx context.Context, actorID, id uuid.UUID) (*SenderIdentity, error) {
	ident, err := s.repo.GetByID(id)
	if err != nil {
		s.logger.Error("identity not found for toggle", "error", err, "identity_id", id)
		return nil, internal.ErrIdentityNotFound
	}

	ident.Toggle()
	if err := s.repo.UpdateActive(id, ident.IsActive); err != nil {
		s.logger.Error("failed to toggle identity", "error", err, "identity_id", id)
		return nil, err
	}

	s.logger.Info("sender identity toggled",
		"identity_id", id,
		"is_active", ident.IsActive,
		"actor_id", actorID)

	s.bus.Publish(ctx, events.NewAdminActionEvent(events.EventTypeIdentityToggled, actorID.String(), map[string]interface{}{
		"identity_id": id.String(),
		"is_active":   ident.IsActive,
	}))

	return ident, nil
}

// Delete hard-deletes an identity. Deletion is refused while send logs still
// reference the identity so the audit trail stays resolvable; deactivate
// instead in that case.
func (s *Service) Delete(ctx context.Context, actorID, id uuid.UUID) error {
	if _, err := s.repo.GetByID(id); err != nil {
		return internal.ErrIdentityNotFound
	}

	refs, err := s.repo.CountLogReferences(id)
	if err != nil {
		s.logger.Error("failed to count log references", "error", err, "identity_id", id)
		return err
	}
	if refs > 0 {
		s.logger.Warn("identity delete refused: send logs reference it",
			"identity_id", id,
			"log_count", refs)
		return internal.ErrIdentityReferenced
	}

	if err := s.repo.Delete(id); err != nil {
		s.logger.Error("failed to delete identity", "error", err, "identity_id", id)
		return err
	}

	s.logger.Info("sender identity deleted", "identity_id", id, "actor_id", actorID)

	s.bus.Publish(ctx, events.NewAdminActionEvent(events.EventTypeIdentityDeleted, actorID.String(), map[string]interface{}{
		"identity_id": id.String(),
	}))

	return nil
}
