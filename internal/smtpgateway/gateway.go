package smtpgateway

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"gopkg.in/gomail.v2"

	"github.com/mailroom-io/mailroom/internal"
	"github.com/mailroom-io/mailroom/internal/email"
)

// Gateway delivers envelopes over SMTP. It wraps the external transport:
// transport rejections come back as a failed DeliveryResult, while a
// malformed envelope is an error (a caller bug, not a delivery outcome).
type Gateway struct {
	config internal.SMTPConfig
	logger *slog.Logger

	// send is the transport call; swapped out in tests.
	send func(m *gomail.Message) error
}

func NewGateway(cfg internal.SMTPConfig, logger *slog.Logger) *Gateway {
	dialer := gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password)
	return &Gateway{
		config: cfg,
		logger: logger,
		send: func(m *gomail.Message) error {
			return dialer.DialAndSend(m)
		},
	}
}

// NewGatewayWithSender injects the transport call directly. Used by tests.
func NewGatewayWithSender(cfg internal.SMTPConfig, logger *slog.Logger, send func(m *gomail.Message) error) *Gateway {
	return &Gateway{config: cfg, logger: logger, send: send}
}

// Deliver sends one envelope synchronously. Once the transport call has been
// issued it runs to completion; a caller-side cancellation only takes effect
// before dialing.
func (g *Gateway) Deliver(ctx context.Context, env *email.Envelope) (*email.DeliveryResult, error) {
	if env == nil || len(env.To) == 0 {
		return nil, errors.New("envelope has no recipients")
	}
	if env.FromAddress == "" {
		return nil, errors.New("envelope has no from address")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	messageID := newMessageID(env.FromAddress)

	m := gomail.NewMessage()
	m.SetHeader("From", env.FromHeader())
	m.SetHeader("To", env.To...)
	if len(env.CC) > 0 {
		m.SetHeader("Cc", env.CC...)
	}
	if len(env.BCC) > 0 {
		m.SetHeader("Bcc", env.BCC...)
	}
	m.SetHeader("Subject", env.Subject)
	m.SetHeader("Message-ID", messageID)
	m.SetBody("text/html", env.HTML)

	for _, att := range env.Attachments {
		content := att.Content
		m.Attach(att.Filename,
			gomail.SetCopyFunc(func(w io.Writer) error {
				_, err := w.Write(content)
				return err
			}),
			gomail.SetHeader(map[string][]string{"Content-Type": {att.ContentType}}),
		)
	}

	if err := g.send(m); err != nil {
		g.logger.Error("smtp delivery failed",
			"error", err,
			"from", env.FromAddress,
			"recipients", len(env.To))
		return &email.DeliveryResult{
			Status:       email.DeliveryStatusFailed,
			ErrorMessage: err.Error(),
		}, nil
	}

	g.logger.Info("smtp delivery succeeded",
		"message_id", messageID,
		"from", env.FromAddress,
		"recipients", len(env.To))

	return &email.DeliveryResult{
		Status:    email.DeliveryStatusSent,
		MessageID: messageID,
	}, nil
}

// newMessageID builds an RFC 5322 Message-ID. gomail does not report one
// back, so the gateway assigns it up front and sets it on the message.
func newMessageID(fromAddress string) string {
	domain := "localhost"
	if at := strings.LastIndex(fromAddress, "@"); at >= 0 && at < len(fromAddress)-1 {
		domain = fromAddress[at+1:]
	}
	return fmt.Sprintf("<%s@%s>", uuid.NewString(), domain)
}
