package identity

import (
	"net/mail"
	"strings"

	"github.com/mailroom-io/mailroom/internal"
)

type CreateIdentityDTO struct {
	DisplayName  string `json:"display_name"`
	EmailAddress string `json:"email_address"`
}

func (dto CreateIdentityDTO) Validate() error {
	if len(strings.TrimSpace(dto.DisplayName)) < 2 {
		return internal.NewValidationError("display name must be at least 2 characters", internal.ErrCodeValidationFailed)
	}
	if _, err := mail.ParseAddress(dto.EmailAddress); err != nil {
		return internal.NewValidationError("invalid email address", internal.ErrCodeValidationFailed)
	}
	return nil
}

type IdentityResponse struct {
	ID           string `json:"id"`
	DisplayName  string `json:"display_name"`
	EmailAddress string `json:"email_address"`
	IsActive     bool   `json:"is_active"`
}

func (i *SenderIdentity) ToResponse() IdentityResponse {
	return IdentityResponse{
		ID:           i.ID.String(),
		DisplayName:  i.DisplayName,
		EmailAddress: i.EmailAddress,
		IsActive:     i.IsActive,
	}
}

type IdentitiesResponse struct {
	Identities []IdentityResponse `json:"identities"`
}
