package postgres

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mailroom-io/mailroom/internal"
	"github.com/mailroom-io/mailroom/internal/identity"
)

// IdentityRepository implements identity.RepositoryAPI using GORM.
type IdentityRepository struct {
	db *gorm.DB
}

func NewIdentityRepository(db *gorm.DB) identity.RepositoryAPI {
	return &IdentityRepository{db: db}
}

func (r *IdentityRepository) GetAll() ([]*identity.SenderIdentity, error) {
	var identities []*identity.SenderIdentity
	err := r.db.Order("created_at DESC").Find(&identities).Error
	return identities, err
}

func (r *IdentityRepository) GetByID(id uuid.UUID) (*identity.SenderIdentity, error) {
	var ident identity.SenderIdentity
	err := r.db.Where("id = ?", id).First(&ident).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, internal.ErrIdentityNotFound
		}
		return nil, err
	}
	return &ident, nil
}

// GetActiveGrantedTo returns the active identities a user may send as,
// resolved through the grant table. Duplicate grant rows collapse via DISTINCT.
func (r *IdentityRepository) GetActiveGrantedTo(userID uuid.UUID) ([]*identity.SenderIdentity, error) {
	var identities []*identity.SenderIdentity
	err := r.db.
		Distinct("sender_identities.*").
		Joins("JOIN user_sender_permissions usp ON usp.sender_identity_id = sender_identities.id").
		Where("usp.user_id = ? AND sender_identities.is_active = ?", userID, true).
		Order("sender_identities.created_at DESC").
		Find(&identities).Error
	return identities, err
}

func (r *IdentityRepository) Create(ident *identity.SenderIdentity) error {
	return r.db.Create(ident).Error
}

func (r *IdentityRepository) UpdateActive(id uuid.UUID, isActive bool) error {
	return r.db.Model(&identity.SenderIdentity{}).
		Where("id = ?", id).
		Update("is_active", isActive).Error
}

func (r *IdentityRepository) Delete(id uuid.UUID) error {
	return r.db.Where("id = ?", id).Delete(&identity.SenderIdentity{}).Error
}

func (r *IdentityRepository) CountLogReferences(id uuid.UUID) (int64, error) {
	var count int64
	err := r.db.Table("email_logs").
		Where("sender_identity_id = ?", id).
		Count(&count).Error
	return count, err
}
