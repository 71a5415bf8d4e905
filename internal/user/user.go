package user

import (
	"time"

	"github.com/google/uuid"

	"github.com/mailroom-io/mailroom/internal/auth"
)

type User struct {
	ID           uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	Name         string    `json:"name"`
	Email        string    `json:"email" gorm:"uniqueIndex;not null"`
	PasswordHash string    `json:"-" gorm:"column:password_hash"`
	Role         string    `json:"role" gorm:"default:user"`
	Status       string    `json:"status" gorm:"default:active"`
	CreatedAt    time.Time `json:"created_at" gorm:"column:created_at"`
	UpdatedAt    time.Time `json:"updated_at" gorm:"column:updated_at"`
}

func (User) TableName() string {
	return "users"
}

func (u *User) IsAdmin() bool {
	return u.Role == auth.RoleAdmin
}

func NewUser(email, name, passwordHash, role string) *User {
	if role == "" {
		role = auth.RoleUser
	}
	now := time.Now()
	return &User{
		ID:           uuid.New(),
		Email:        email,
		Name:         name,
		PasswordHash: passwordHash,
		Role:         role,
		Status:       auth.StatusActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// SenderPermission is a grant row: its existence means the user may send as
// the identity. Count is irrelevant, only existence is checked, so duplicate
// rows under a creation race are harmless.
type SenderPermission struct {
	ID               uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	UserID           uuid.UUID `json:"user_id" gorm:"type:uuid;column:user_id;not null"`
	SenderIdentityID uuid.UUID `json:"sender_identity_id" gorm:"type:uuid;column:sender_identity_id;not null"`
	CreatedAt        time.Time `json:"created_at" gorm:"column:created_at"`
}

func (SenderPermission) TableName() string {
	return "user_sender_permissions"
}

func NewSenderPermission(userID, senderIdentityID uuid.UUID) *SenderPermission {
	return &SenderPermission{
		ID:               uuid.New(),
		UserID:           userID,
		SenderIdentityID: senderIdentityID,
		CreatedAt:        time.Now(),
	}
}
