package email

import (
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/mailroom-io/mailroom/internal"
)

// LogRepositoryAPI is append-only: the audit trail is never updated or
// deleted through this component.
type LogRepositoryAPI interface {
	Create(entry *SendLog) error
	GetAll(limit, offset int) ([]*SendLog, error)
	GetByUserID(userID uuid.UUID, limit, offset int) ([]*SendLog, error)
}

// LogWriter persists one SendLog per delivery attempt. A failed write is a
// system fault, surfaced to the caller, because the audit guarantee (every
// attempt is logged) cannot be met otherwise.
type LogWriter struct {
	repo   LogRepositoryAPI
	logger *slog.Logger
}

func NewLogWriter(repo LogRepositoryAPI, logger *slog.Logger) *LogWriter {
	return &LogWriter{repo: repo, logger: logger}
}

// HashContent returns the hex SHA-256 digest of the HTML body. The body
// itself is not retained; the digest allows integrity correlation without
// storing message content.
func HashContent(html string) string {
	sum := sha256.Sum256([]byte(html))
	return hex.EncodeToString(sum[:])
}

func (w *LogWriter) Record(userID, senderIdentityID uuid.UUID, recipients []string, subject, html, status string, errorMessage string) (*SendLog, error) {
	entry := &SendLog{
		ID:               uuid.New(),
		UserID:           userID,
		SenderIdentityID: senderIdentityID,
		Recipients:       RecipientList(recipients),
		Subject:          subject,
		HTMLContentHash:  HashContent(html),
		SentAt:           time.Now(),
		DeliveryStatus:   status,
	}
	if errorMessage != "" {
		entry.ErrorMessage = &errorMessage
	}

	if err := w.repo.Create(entry); err != nil {
		w.logger.Error("failed to persist send log",
			"error", err,
			"user_id", userID,
			"sender_identity_id", senderIdentityID,
			"delivery_status", status)
		appErr := internal.NewInternalError("failed to record send attempt", err)
		appErr.Code = internal.ErrCodeSendLogWriteFailed
		return nil, appErr
	}

	return entry, nil
}
