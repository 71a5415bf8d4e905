package audit

import (
	"context"
	"log/slog"

	"github.com/mailroom-io/mailroom/internal/core/events"
)

type RepositoryAPI interface {
	Create(log *AuditLog) error
	GetAll(limit, offset int) ([]*AuditLog, error)
}

// Service persists domain events as audit rows. Recording is best effort: a
// failed write is logged and swallowed so it never disturbs the operation
// that raised the event.
type Service struct {
	repo   RepositoryAPI
	logger *slog.Logger
}

func NewService(repo RepositoryAPI, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// recordedEventTypes is every event the trail captures.
var recordedEventTypes = []string{
	events.EventTypeEmailSent,
	events.EventTypeEmailFailed,
	events.EventTypeIdentityCreated,
	events.EventTypeIdentityToggled,
	events.EventTypeIdentityDeleted,
	events.EventTypeUserInvited,
	events.EventTypeUserRoleChanged,
	events.EventTypePermissionGranted,
	events.EventTypePermissionRevoked,
	events.EventTypeTemplateCreated,
	events.EventTypeTemplateUpdated,
	events.EventTypeTemplateDeleted,
}

// RegisterSubscribers hooks the service onto the event bus.
func (s *Service) RegisterSubscribers(bus *events.EventBus) {
	for _, eventType := range recordedEventTypes {
		bus.Subscribe(eventType, s.handleEvent)
	}
}

func (s *Service) handleEvent(ctx context.Context, event events.Event) error {
	entry := &AuditLog{
		EventID:    event.EventID(),
		EventType:  event.EventType(),
		OccurredAt: event.OccurredAt(),
	}

	if payload, ok := event.Payload().(map[string]interface{}); ok {
		entry.Payload = JSONMap(payload)
		if actor, ok := payload["actor_id"].(string); ok && actor != "" {
			entry.ActorID = &actor
		} else if userID, ok := payload["user_id"].(string); ok && userID != "" {
			entry.ActorID = &userID
		}
	}

	if err := s.repo.Create(entry); err != nil {
		s.logger.Error("failed to record audit entry",
			"event_type", event.EventType(),
			"event_id", event.EventID(),
			"error", err)
	}
	return nil
}

func (s *Service) GetAll(limit, offset int) ([]*AuditLog, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return s.repo.GetAll(limit, offset)
}
