package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/bizbook/backend/internal/domain/identity"
	"github.com/bizbook/backend/internal/domain/shared"
	"github.com/bizbook/backend/internal/infrastructure/persistence/models"
)

// GormUserRepository persists user accounts through GORM.
type GormUserRepository struct {
	db *gorm.DB
}

func NewGormUserRepository(db *gorm.DB) *GormUserRepository {
	return &GormUserRepository{db: db}
}

var _ identity.UserRepository = (*GormUserRepository)(nil)

// Create inserts a new user. A unique index violation on email or
// business_id surfaces as shared.ErrAlreadyExists so callers can retry
// with a different business id.
func (r *GormUserRepository) Create(ctx context.Context, user *identity.User) error {
	err := r.db.WithContext(ctx).Create(models.UserModelFromDomain(user)).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return shared.ErrAlreadyExists
	}
	return err
}

// Update saves an existing user, reporting duplicate-key conflicts the same
// way Create does.
func (r *GormUserRepository) Update(ctx context.Context, user *identity.User) error {
	result := r.db.WithContext(ctx).Save(models.UserModelFromDomain(user))
	switch {
	case errors.Is(result.Error, gorm.ErrDuplicatedKey):
		return shared.ErrAlreadyExists
	case result.Error != nil:
		return result.Error
	case result.RowsAffected == 0:
		return shared.ErrNotFound
	}
	return nil
}

func (r *GormUserRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.UserModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *GormUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*identity.User, error) {
	var m models.UserModel
	if err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		return nil, translateNotFound(err)
	}
	return m.ToDomain(), nil
}

// FindByEmail looks a user up by their normalized email address.
func (r *GormUserRepository) FindByEmail(ctx context.Context, email string) (*identity.User, error) {
	var m models.UserModel
	err := r.db.WithContext(ctx).
		Where("email = ?", normalizeEmail(email)).
		First(&m).Error
	if err != nil {
		return nil, translateNotFound(err)
	}
	return m.ToDomain(), nil
}

func (r *GormUserRepository) FindByBusinessID(ctx context.Context, businessID string) (*identity.User, error) {
	var m models.UserModel
	err := r.db.WithContext(ctx).
		Where("business_id = ?", businessID).
		First(&m).Error
	if err != nil {
		return nil, translateNotFound(err)
	}
	return m.ToDomain(), nil
}

func (r *GormUserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	return r.exists(ctx, "email = ?", normalizeEmail(email))
}

func (r *GormUserRepository) ExistsByBusinessID(ctx context.Context, businessID string) (bool, error) {
	return r.exists(ctx, "business_id = ?", businessID)
}

func (r *GormUserRepository) exists(ctx context.Context, cond string, arg any) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.UserModel{}).
		Where(cond, arg).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// Count reports the total number of registered users.
func (r *GormUserRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.UserModel{}).
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
