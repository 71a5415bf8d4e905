package postgres

import (
	"gorm.io/gorm"

	"github.com/mailroom-io/mailroom/internal/audit"
)

// AuditRepository implements audit.RepositoryAPI using GORM. Append-only.
type AuditRepository struct {
	db *gorm.DB
}

func NewAuditRepository(db *gorm.DB) audit.RepositoryAPI {
	return &AuditRepository{db: db}
}

func (r *AuditRepository) Create(log *audit.AuditLog) error {
	return r.db.Create(log).Error
}

func (r *AuditRepository) GetAll(limit, offset int) ([]*audit.AuditLog, error) {
	var logs []*audit.AuditLog
	err := r.db.Order("occurred_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&logs).Error
	return logs, err
}
