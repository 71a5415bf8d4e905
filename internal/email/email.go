package email

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

const (
	DeliveryStatusSent   = "sent"
	DeliveryStatusFailed = "failed"
)

// Envelope is a fully-prepared outbound message handed to the delivery
// gateway. To is non-empty by the time an envelope exists; the orchestrator
// validates the request before building one.
type Envelope struct {
	FromDisplayName string
	FromAddress     string
	To              []string
	CC              []string
	BCC             []string
	Subject         string
	HTML            string
	Attachments     []Attachment
}

type Attachment struct {
	Filename    string `json:"filename"`
	Content     []byte `json:"content"`
	ContentType string `json:"content_type"`
}

// FromHeader renders the RFC 5322 From header, `"DisplayName" <address>`.
func (e *Envelope) FromHeader() string {
	return fmt.Sprintf("%q <%s>", e.FromDisplayName, e.FromAddress)
}

// DeliveryResult classifies a transport outcome. Transport-level failures
// are a normal negative result, never a Go error from the gateway.
type DeliveryResult struct {
	Status       string `json:"status"`
	MessageID    string `json:"message_id,omitempty"`
	ErrorMessage string `json:"error_message,omitempty"`
}

func (r *DeliveryResult) Sent() bool {
	return r.Status == DeliveryStatusSent
}

// RecipientList stores recipients as a JSON array column.
type RecipientList []string

func (l RecipientList) Value() (driver.Value, error) {
	return json.Marshal(l)
}

func (l *RecipientList) Scan(value interface{}) error {
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, l)
	case string:
		return json.Unmarshal([]byte(v), l)
	case nil:
		*l = nil
		return nil
	default:
		return errors.New("unsupported recipients column type")
	}
}

// SendLog is one row of the append-only audit trail: exactly one per
// delivery attempt that reached the transport, success or failure. The HTML
// body is not retained, only its SHA-256 digest.
type SendLog struct {
	ID               uuid.UUID     `json:"id" gorm:"type:uuid;primaryKey"`
	UserID           uuid.UUID     `json:"user_id" gorm:"type:uuid;column:user_id;not null"`
	SenderIdentityID uuid.UUID     `json:"sender_identity_id" gorm:"type:uuid;column:sender_identity_id;not null"`
	Recipients       RecipientList `json:"recipients" gorm:"column:recipients"`
	Subject          string        `json:"subject" gorm:"not null"`
	HTMLContentHash  string        `json:"html_content_hash" gorm:"column:html_content_hash;not null"`
	SentAt           time.Time     `json:"sent_at" gorm:"column:sent_at"`
	DeliveryStatus   string        `json:"delivery_status" gorm:"column:delivery_status;not null"`
	ErrorMessage     *string       `json:"error_message,omitempty" gorm:"column:error_message"`
}

func (SendLog) TableName() string {
	return "email_logs"
}

// SendResult is what the orchestrator reports back to the caller. Delivery
// failure is a reported outcome (Success=false), not an error.
type SendResult struct {
	Success   bool   `json:"success"`
	Message   string `json:"message,omitempty"`
	Error     string `json:"error,omitempty"`
	MessageID string `json:"message_id,omitempty"`
}
