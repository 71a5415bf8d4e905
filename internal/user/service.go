package user

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"log/slog"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/mailroom-io/mailroom/internal"
	"github.com/mailroom-io/mailroom/internal/auth"
	"github.com/mailroom-io/mailroom/internal/core/events"
)

type RepositoryAPI interface {
	GetAll() ([]*User, error)
	GetByID(id uuid.UUID) (*User, error)
	GetByEmail(email string) (*User, error)
	Create(user *User) error
	UpdateRole(id uuid.UUID, role string) error
	HasGrant(userID, senderIdentityID uuid.UUID) (bool, error)
	CreateGrant(grant *SenderPermission) error
	DeleteGrant(userID, senderIdentityID uuid.UUID) error
	GrantsForUser(userID uuid.UUID) ([]uuid.UUID, error)
}

type Service struct {
	repo       RepositoryAPI
	bus        *events.EventBus
	logger     *slog.Logger
	bcryptCost int
}

func NewService(repo RepositoryAPI, bus *events.EventBus, logger *slog.Logger, bcryptCost int) *Service {
	if bcryptCost < bcrypt.MinCost || bcryptCost > bcrypt.MaxCost {
		bcryptCost = bcrypt.DefaultCost
	}
	return &Service{
		repo:       repo,
		bus:        bus,
		logger:     logger,
		bcryptCost: bcryptCost,
	}
}

func (s *Service) GetAll() ([]*User, error) {
	users, err := s.repo.GetAll()
	if err != nil {
		s.logger.Error("failed to list users", "error", err)
		return nil, err
	}
	return users, nil
}

func (s *Service) GetByID(id uuid.UUID) (*User, error) {
	u, err := s.repo.GetByID(id)
	if err != nil {
		return nil, internal.ErrUserNotFound
	}
	return u, nil
}

// Invite creates an account for a new user with a one-time temporary
// password. The plaintext is returned to the inviting admin and never stored.
func (s *Service) Invite(ctx context.Context, actorID uuid.UUID, dto InviteUserDTO) (*InviteResponse, error) {
	if err := dto.Validate(); err != nil {
		s.logger.Error("invite validation failed", "error", err, "actor_id", actorID)
		return nil, err
	}

	if existing, err := s.repo.GetByEmail(dto.Email); err == nil && existing != nil {
		s.logger.Warn("invite rejected: email already registered", "email", dto.Email)
		return nil, internal.ErrUserExists
	}

	tempPassword, err := generatePassword()
	if err != nil {
		return nil, internal.NewInternalError("failed to generate temporary password", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(tempPassword), s.bcryptCost)
	if err != nil {
		return nil, internal.NewInternalError("failed to hash password", err)
	}

	u := NewUser(dto.Email, dto.Name, string(hash), dto.Role)
	if err := s.repo.Create(u); err != nil {
		s.logger.Error("failed to create user", "error", err, "email", dto.Email)
		return nil, err
	}

	s.logger.Info("user invited", "user_id", u.ID, "email", u.Email, "role", u.Role, "actor_id", actorID)

	s.bus.Publish(ctx, events.NewAdminActionEvent(events.EventTypeUserInvited, actorID.String(), map[string]interface{}{
		"user_id": u.ID.String(),
		"email":   u.Email,
		"role":    u.Role,
	}))

	return &InviteResponse{User: u, TemporaryPassword: tempPassword}, nil
}

// SetRole changes a user's role. An admin cannot revoke their own admin
// status; demoting a different admin is allowed.
func (s *Service) SetRole(ctx context.Context, actorID, targetID uuid.UUID, dto UpdateRoleDTO) error {
	if err := dto.Validate(); err != nil {
		return err
	}

	if actorID == targetID && dto.Role != auth.RoleAdmin {
		s.logger.Warn("role change rejected: self-demotion", "actor_id", actorID)
		return internal.ErrSelfDemotion
	}

	if _, err := s.repo.GetByID(targetID); err != nil {
		return internal.ErrUserNotFound
	}

	if err := s.repo.UpdateRole(targetID, dto.Role); err != nil {
		s.logger.Error("failed to update role", "error", err, "user_id", targetID)
		return err
	}

	s.logger.Info("user role updated", "user_id", targetID, "role", dto.Role, "actor_id", actorID)

	s.bus.Publish(ctx, events.NewAdminActionEvent(events.EventTypeUserRoleChanged, actorID.String(), map[string]interface{}{
		"user_id": targetID.String(),
		"role":    dto.Role,
	}))

	return nil
}

// TogglePermission grants or revokes a send-as grant. Granting is
// check-then-insert: the narrow race that can slip a duplicate row through
// is tolerated because authorization checks existence, not count.
func (s *Service) TogglePermission(ctx context.Context, actorID, userID, senderIdentityID uuid.UUID, grant bool) error {
	if _, err := s.repo.GetByID(userID); err != nil {
		return internal.ErrUserNotFound
	}

	if grant {
		exists, err := s.repo.HasGrant(userID, senderIdentityID)
		if err != nil {
			s.logger.Error("failed to check grant", "error", err, "user_id", userID)
			return err
		}
		if !exists {
			if err := s.repo.CreateGrant(NewSenderPermission(userID, senderIdentityID)); err != nil {
				s.logger.Error("failed to create grant", "error", err, "user_id", userID)
				return err
			}
		}

		s.logger.Info("permission granted",
			"user_id", userID,
			"sender_identity_id", senderIdentityID,
			"actor_id", actorID)

		s.bus.Publish(ctx, events.NewAdminActionEvent(events.EventTypePermissionGranted, actorID.String(), map[string]interface{}{
			"user_id":            userID.String(),
			"sender_identity_id": senderIdentityID.String(),
		}))
		return nil
	}

	if err := s.repo.DeleteGrant(userID, senderIdentityID); err != nil {
		s.logger.Error("failed to revoke grant", "error", err, "user_id", userID)
		return err
	}

	s.logger.Info("permission revoked",
		"user_id", userID,
		"sender_identity_id", senderIdentityID,
		"actor_id", actorID)

	s.bus.Publish(ctx, events.NewAdminActionEvent(events.EventTypePermissionRevoked, actorID.String(), map[string]interface{}{
		"user_id":            userID.String(),
		"sender_identity_id": senderIdentityID.String(),
	}))
	return nil
}

func (s *Service) Grants(userID uuid.UUID) ([]uuid.UUID, error) {
	ids, err := s.repo.GrantsForUser(userID)
	if err != nil {
		s.logger.Error("failed to list grants", "error", err, "user_id", userID)
		return nil, err
	}
	return ids, nil
}

func generatePassword() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
