package identity

import (
	"time"

	"github.com/google/uuid"
)

// SenderIdentity is a shared organizational From-address. Identities are
// owned by the organization, not by individual users; non-admin users may
// only send through identities they hold a grant for.
type SenderIdentity struct {
	ID           uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	DisplayName  string    `json:"display_name" gorm:"column:display_name;not null"`
	EmailAddress string    `json:"email_address" gorm:"column:email_address;not null"`
	IsActive     bool      `json:"is_active" gorm:"column:is_active;default:true"`
	CreatedAt    time.Time `json:"created_at" gorm:"column:created_at"`
}

func (SenderIdentity) TableName() string {
	return "sender_identities"
}

func NewSenderIdentity(displayName, emailAddress string) *SenderIdentity {
	return &SenderIdentity{
		ID:           uuid.New(),
		DisplayName:  displayName,
		EmailAddress: emailAddress,
		IsActive:     true,
		CreatedAt:    time.Now(),
	}
}

func (i *SenderIdentity) Toggle() {
	i.IsActive = !i.IsActive
}
