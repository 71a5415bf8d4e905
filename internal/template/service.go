package template

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/mailroom-io/mailroom/internal"
	"github.com/mailroom-io/mailroom/internal/core/events"
)

type RepositoryAPI interface {
	GetAll() ([]*EmailTemplate, error)
	GetByID(id uuid.UUID) (*EmailTemplate, error)
	Create(tmpl *EmailTemplate) error
	Update(tmpl *EmailTemplate) error
	Delete(id uuid.UUID) error
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

func (s *Service) GetAll() ([]*EmailTemplate, error) {
	templates, err := s.repo.GetAll()
	if err != nil {
		s.logger.Error("failed to list templates", "error", err)
		return nil, err
	}
	return templates, nil
}

func (s *Service) GetByID(id uuid.UUID) (*EmailTemplate, error) {
	tmpl, err := s.repo.GetByID(id)
	if err != nil {
		return nil, internal.ErrTemplateNotFound
	}
	return tmpl, nil
}

func (s *Service) Create(ctx context.Context, actorID uuid.UUID, dto TemplateDTO) (*EmailTemplate, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	tmpl := NewEmailTemplate(dto.Name, dto.Description, dto.HTMLContent, actorID)
	if err := s.repo.Create(tmpl); err != nil {
		s.logger.Error("failed to create template", "error", err, "actor_id", actorID)
		return nil, err
	}

	s.logger.Info("template created", "template_id", tmpl.ID, "name", tmpl.Name, "actor_id", actorID)

	s.bus.Publish(ctx, events.NewAdminActionEvent(events.EventTypeTemplateCreated, actorID.String(), map[string]interface{}{
		"template_id": tmpl.ID.String(),
		"name":        tmpl.Name,
	}))

	return tmpl, nil
}

func (s *Service) Update(ctx context.Context, actorID, id uuid.UUID, dto TemplateDTO) (*EmailTemplate, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	tmpl, err := s.repo.GetByID(id)
	if err != nil {
		return nil, internal.ErrTemplateNotFound
	}

	tmpl.Name = dto.Name
	tmpl.Description = dto.Description
	tmpl.HTMLContent = dto.HTMLContent
	tmpl.UpdatedAt = time.Now()

	if err := s.repo.Update(tmpl); err != nil {
		s.logger.Error("failed to update template", "error", err, "template_id", id)
		return nil, err
	}

	s.logger.Info("template updated", "template_id", id, "actor_id", actorID)

	s.bus.Publish(ctx, events.NewAdminActionEvent(events.EventTypeTemplateUpdated, actorID.String(), map[string]interface{}{
		"template_id": id.String(),
	}))

	return tmpl, nil
}

func (s *Service) Delete(ctx context.Context, actorID, id uuid.UUID) error {
	if _, err := s.repo.GetByID(id); err != nil {
		return internal.ErrTemplateNotFound
	}

	if err := s.repo.Delete(id); err != nil {
		s.logger.Error("failed to delete template", "error", err, "template_id", id)
		return err
	}

	s.logger.Info("template deleted", "template_id", id, "actor_id", actorID)

	s.bus.Publish(ctx, events.NewAdminActionEvent(events.EventTypeTemplateDeleted, actorID.String(), map[string]interface{}{
		"template_id": id.String(),
	}))

	return nil
}
