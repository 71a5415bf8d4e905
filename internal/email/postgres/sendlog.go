package postgres

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mailroom-io/mailroom/internal/email"
)

// SendLogRepository implements email.LogRepositoryAPI using GORM. The log is
// append-only: no update or delete methods exist on purpose.
type SendLogRepository struct {
	db *gorm.DB
}

func NewSendLogRepository(db *gorm.DB) email.LogRepositoryAPI {
	return &SendLogRepository{db: db}
}

func (r *SendLogRepository) Create(log *email.SendLog) error {
	return r.db.Create(log).Error
}

func (r *SendLogRepository) GetAll(limit, offset int) ([]*email.SendLog, error) {
	var logs []*email.SendLog
	err := r.db.Order("sent_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&logs).Error
	return logs, err
}

func (r *SendLogRepository) GetByUserID(userID uuid.UUID, limit, offset int) ([]*email.SendLog, error) {
	var logs []*email.SendLog
	err := r.db.Where("user_id = ?", userID).
		Order("sent_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&logs).Error
	return logs, err
}
