package postgres

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mailroom-io/mailroom/internal"
	"github.com/mailroom-io/mailroom/internal/user"
)

// UserRepository implements user.RepositoryAPI using GORM.
type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) user.RepositoryAPI {
	return &UserRepository{db: db}
}

func (r *UserRepository) GetAll() ([]*user.User, error) {
	var users []*user.User
	err := r.db.Order("created_at ASC").Find(&users).Error
	return users, err
}

func (r *UserRepository) GetByID(id uuid.UUID) (*user.User, error) {
	var u user.User
	err := r.db.Where("id = ?", id).First(&u).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, internal.ErrUserNotFound
		}
		return nil, err
	}
	return &u, nil
}

func (r *UserRepository) GetByEmail(email string) (*user.User, error) {
	var u user.User
	err := r.db.Where("email = ?", email).First(&u).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, internal.ErrUserNotFound
		}
		return nil, err
	}
	return &u, nil
}

func (r *UserRepository) Create(u *user.User) error {
	return r.db.Create(u).Error
}

func (r *UserRepository) UpdateRole(id uuid.UUID, role string) error {
	return r.db.Model(&user.User{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"role":       role,
			"updated_at": time.Now(),
		}).Error
}

func (r *UserRepository) HasGrant(userID, senderIdentityID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.Model(&user.SenderPermission{}).
		Where("user_id = ? AND sender_identity_id = ?", userID, senderIdentityID).
		Count(&count).Error
	return count > 0, err
}

func (r *UserRepository) CreateGrant(grant *user.SenderPermission) error {
	return r.db.Create(grant).Error
}

// DeleteGrant removes every row for the pair, which also cleans up any
// duplicates an earlier grant race left behind.
func (r *UserRepository) DeleteGrant(userID, senderIdentityID uuid.UUID) error {
	return r.db.
		Where("user_id = ? AND sender_identity_id = ?", userID, senderIdentityID).
		Delete(&user.SenderPermission{}).Error
}

func (r *UserRepository) GrantsForUser(userID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.db.Model(&user.SenderPermission{}).
		Distinct("sender_identity_id").
		Where("user_id = ?", userID).
		Pluck("sender_identity_id", &ids).Error
	return ids, err
}
