package email

import (
	"strings"

	"github.com/google/uuid"

	"github.com/mailroom-io/mailroom/internal"
)

// SendEmailDTO is the compose-form payload. Recipient fields are
// comma-separated strings; attachment content arrives base64-encoded and
// lands in []byte via encoding/json.
type SendEmailDTO struct {
	SenderIdentityID string       `json:"sender_identity_id"`
	To               string       `json:"to"`
	CC               string       `json:"cc,omitempty"`
	BCC              string       `json:"bcc,omitempty"`
	Subject          string       `json:"subject"`
	HTML             string       `json:"html"`
	Attachments      []Attachment `json:"attachments,omitempty"`
}

// SendRequest is the validated form of SendEmailDTO.
type SendRequest struct {
	SenderIdentityID uuid.UUID
	To               []string
	CC               []string
	BCC              []string
	Subject          string
	HTML             string
	Attachments      []Attachment
}

// ParseRecipients splits a comma-separated recipient string, trims each
// token and drops empty ones.
func ParseRecipients(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Parse validates the structural preconditions of a send request. Failures
// here are caller input errors: they short-circuit before authorization,
// delivery and logging.
func (dto SendEmailDTO) Parse() (*SendRequest, error) {
	identityID, err := uuid.Parse(dto.SenderIdentityID)
	if err != nil {
		return nil, internal.NewValidationError("invalid sender identity ID", internal.ErrCodeValidationFailed)
	}

	to := ParseRecipients(dto.To)
	if len(to) == 0 {
		return nil, internal.NewValidationError("At least one recipient is required", internal.ErrCodeInvalidRecipient)
	}

	if strings.TrimSpace(dto.Subject) == "" {
		return nil, internal.NewValidationError("subject is required", internal.ErrCodeMissingSubject)
	}
	if dto.HTML == "" {
		return nil, internal.NewValidationError("message body is required", internal.ErrCodeMissingBody)
	}

	return &SendRequest{
		SenderIdentityID: identityID,
		To:               to,
		CC:               ParseRecipients(dto.CC),
		BCC:              ParseRecipients(dto.BCC),
		Subject:          dto.Subject,
		HTML:             dto.HTML,
		Attachments:      dto.Attachments,
	}, nil
}

type SendLogsResponse struct {
	Logs []*SendLog `json:"logs"`
}
