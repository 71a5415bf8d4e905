package email

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/mailroom-io/mailroom/internal"
	"github.com/mailroom-io/mailroom/internal/core/events"
	"github.com/mailroom-io/mailroom/internal/identity"
)

// Gateway is the external mail-transport capability the orchestrator calls.
type Gateway interface {
	Deliver(ctx context.Context, env *Envelope) (*DeliveryResult, error)
}

// AuthorizerAPI resolves send authorization; see Authorizer.
type AuthorizerAPI interface {
	Authorize(userID uuid.UUID, isAdmin bool, senderIdentityID uuid.UUID) (*identity.SenderIdentity, error)
}

// LogWriterAPI records exactly one entry per delivery attempt.
type LogWriterAPI interface {
	Record(userID, senderIdentityID uuid.UUID, recipients []string, subject, html, status string, errorMessage string) (*SendLog, error)
}

// Service is the send orchestrator: validate, authorize, deliver, log, in
// one synchronous chain per request. There is no queue and no retry; a send
// either completes here or not at all.
type Service struct {
	authorizer AuthorizerAPI
	gateway    Gateway
	logs       *LogWriter
	bus        *events.EventBus
	logger     *slog.Logger
}

func NewService(authorizer AuthorizerAPI, gateway Gateway, logs *LogWriter, bus *events.EventBus, logger *slog.Logger) *Service {
	return &Service{
		authorizer: authorizer,
		gateway:    gateway,
		logs:       logs,
		bus:        bus,
		logger:     logger,
	}
}

// Send runs one send end to end.
//
// Input errors and authorization denials return before the transport is
// touched and produce no log row. Every attempt that reaches the transport
// produces exactly one log row, sent or failed, and a transport failure is
// reported as a negative SendResult rather than an error. A log-write
// failure is returned as an error: it breaks the audit guarantee and must
// surface as a system fault, distinct from a delivery failure.
func (s *Service) Send(ctx context.Context, userID uuid.UUID, isAdmin bool, dto SendEmailDTO) (*SendResult, error) {
	req, err := dto.Parse()
	if err != nil {
		s.logger.Warn("send rejected: invalid request", "error", err, "user_id", userID)
		return nil, err
	}

	ident, err := s.authorizer.Authorize(userID, isAdmin, req.SenderIdentityID)
	if err != nil {
		return nil, err
	}

	env := &Envelope{
		FromDisplayName: ident.DisplayName,
		FromAddress:     ident.EmailAddress,
		To:              req.To,
		CC:              req.CC,
		BCC:             req.BCC,
		Subject:         req.Subject,
		HTML:            req.HTML,
		Attachments:     req.Attachments,
	}

	result, err := s.gateway.Deliver(ctx, env)
	if err != nil {
		// Gateway faults (malformed envelope, cancelled before dialing) never
		// reached the transport, so there is no attempt to log.
		s.logger.Error("delivery gateway fault", "error", err, "user_id", userID)
		return nil, internal.NewInternalError("delivery gateway fault", err)
	}

	entry, err := s.logs.Record(userID, ident.ID, req.To, req.Subject, req.HTML, result.Status, result.ErrorMessage)
	if err != nil {
		return nil, err
	}

	s.bus.Publish(ctx, events.NewEmailDeliveryEvent(userID.String(), ident.ID.String(), result.Status, len(req.To)))

	if !result.Sent() {
		s.logger.Warn("email delivery failed",
			"user_id", userID,
			"sender_identity_id", ident.ID,
			"log_id", entry.ID,
			"error", result.ErrorMessage)
		return &SendResult{Success: false, Error: result.ErrorMessage}, nil
	}

	s.logger.Info("email sent",
		"user_id", userID,
		"sender_identity_id", ident.ID,
		"log_id", entry.ID,
		"message_id", result.MessageID)

	return &SendResult{
		Success:   true,
		Message:   "Email sent successfully",
		MessageID: result.MessageID,
	}, nil
}

// History returns send-log entries: all of them for admins, the caller's
// own otherwise.
func (s *Service) History(userID uuid.UUID, isAdmin bool, limit, offset int) ([]*SendLog, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	if isAdmin {
		logs, err := s.logs.repo.GetAll(limit, offset)
		if err != nil {
			s.logger.Error("failed to load send history", "error", err)
			return nil, err
		}
		return logs, nil
	}

	logs, err := s.logs.repo.GetByUserID(userID, limit, offset)
	if err != nil {
		s.logger.Error("failed to load send history", "error", err, "user_id", userID)
		return nil, err
	}
	return logs, nil
}
