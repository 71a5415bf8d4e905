package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	EventTypeEmailSent         = "email.sent"
	EventTypeEmailFailed       = "email.failed"
	EventTypeIdentityCreated   = "identity.created"
	EventTypeIdentityToggled   = "identity.toggled"
	EventTypeIdentityDeleted   = "identity.deleted"
	EventTypeUserInvited       = "user.invited"
	EventTypeUserRoleChanged   = "user.role_changed"
	EventTypePermissionGranted = "permission.granted"
	EventTypePermissionRevoked = "permission.revoked"
	EventTypeTemplateCreated   = "template.created"
	EventTypeTemplateUpdated   = "template.updated"
	EventTypeTemplateDeleted   = "template.deleted"
)

type EmailDeliveryEvent struct {
	BaseEvent
	UserID           string `json:"user_id"`
	SenderIdentityID string `json:"sender_identity_id"`
	RecipientCount   int    `json:"recipient_count"`
	DeliveryStatus   string `json:"delivery_status"`
}

func NewEmailDeliveryEvent(userID, senderIdentityID, deliveryStatus string, recipientCount int) *EmailDeliveryEvent {
	eventType := EventTypeEmailSent
	if deliveryStatus != "sent" {
		eventType = EventTypeEmailFailed
	}
	return &EmailDeliveryEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      eventType,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"user_id":            userID,
				"sender_identity_id": senderIdentityID,
				"recipient_count":    recipientCount,
				"delivery_status":    deliveryStatus,
			},
		},
		UserID:           userID,
		SenderIdentityID: senderIdentityID,
		RecipientCount:   recipientCount,
		DeliveryStatus:   deliveryStatus,
	}
}

// AdminActionEvent covers the administrative mutations (identities, roles,
// grants, templates) that land in the audit trail.
type AdminActionEvent struct {
	BaseEvent
	ActorID string `json:"actor_id"`
}

func NewAdminActionEvent(eventType, actorID string, metadata map[string]interface{}) *AdminActionEvent {
	data := map[string]interface{}{"actor_id": actorID}
	for k, v := range metadata {
		data[k] = v
	}
	return &AdminActionEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      eventType,
			Timestamp: time.Now(),
			Data:      data,
		},
		ActorID: actorID,
	}
}
