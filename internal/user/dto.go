package user

import (
	"net/mail"

	"github.com/mailroom-io/mailroom/internal"
	"github.com/mailroom-io/mailroom/internal/auth"
)

type InviteUserDTO struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
	Role  string `json:"role,omitempty"`
}

func (dto InviteUserDTO) Validate() error {
	if dto.Email == "" {
		return internal.NewValidationError("email is required", internal.ErrCodeValidationFailed)
	}
	if _, err := mail.ParseAddress(dto.Email); err != nil {
		return internal.NewValidationError("invalid email address", internal.ErrCodeValidationFailed)
	}
	if dto.Role != "" && dto.Role != auth.RoleAdmin && dto.Role != auth.RoleUser {
		return internal.NewValidationError("role must be 'admin' or 'user'", internal.ErrCodeValidationFailed)
	}
	return nil
}

type UpdateRoleDTO struct {
	Role string `json:"role"`
}

func (dto UpdateRoleDTO) Validate() error {
	if dto.Role != auth.RoleAdmin && dto.Role != auth.RoleUser {
		return internal.NewValidationError("role must be 'admin' or 'user'", internal.ErrCodeValidationFailed)
	}
	return nil
}

type TogglePermissionDTO struct {
	SenderIdentityID string `json:"sender_identity_id"`
	HasPermission    bool   `json:"has_permission"`
}

func (dto TogglePermissionDTO) Validate() error {
	if dto.SenderIdentityID == "" {
		return internal.NewValidationError("sender_identity_id is required", internal.ErrCodeValidationFailed)
	}
	return nil
}

// InviteResponse carries the generated temporary password exactly once;
// it is never stored or logged in plaintext.
type InviteResponse struct {
	User              *User  `json:"user"`
	TemporaryPassword string `json:"temporary_password"`
}

type UsersResponse struct {
	Users []*User `json:"users"`
}

type GrantsResponse struct {
	UserID            string   `json:"user_id"`
	SenderIdentityIDs []string `json:"sender_identity_ids"`
}
