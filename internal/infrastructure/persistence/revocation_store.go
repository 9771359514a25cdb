package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/bizbook/backend/internal/infrastructure/auth"
	"github.com/bizbook/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormTokenRevocationStore implements auth.TokenRevocationStore on Postgres.
// It is the fallback for deployments that run without Redis; the tradeoff is
// that each token check costs an indexed query instead of a Redis EXISTS.
type GormTokenRevocationStore struct {
	db *gorm.DB
}

// NewGormTokenRevocationStore creates a new GormTokenRevocationStore
func NewGormTokenRevocationStore(db *gorm.DB) *GormTokenRevocationStore {
	return &GormTokenRevocationStore{db: db}
}

// Revoke records the token identifier as revoked for the remaining token
// lifetime. Revoking the same token twice is a no-op.
func (s *GormTokenRevocationStore) Revoke(ctx context.Context, userID, jti string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}

	now := time.Now()
	model := &models.RevokedTokenModel{
		ID:        uuid.New(),
		UserID:    userID,
		JTI:       jti,
		RevokedAt: now,
		ExpiresAt: now.Add(ttl),
	}

	return s.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(model).Error
}

// IsRevoked reports whether the token identifier has been revoked.
// Rows past their expiry no longer count; the token itself is expired
// by then and fails signature validation anyway.
func (s *GormTokenRevocationStore) IsRevoked(ctx context.Context, userID, jti string) (bool, error) {
	var count int64
	if err := s.db.WithContext(ctx).
		Model(&models.RevokedTokenModel{}).
		Where("user_id = ? AND jti = ? AND expires_at > ?", userID, jti, time.Now()).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// RevokeAllForUser invalidates every token issued to the user up to now
func (s *GormTokenRevocationStore) RevokeAllForUser(ctx context.Context, userID string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}

	now := time.Now()
	model := &models.UserRevocationModel{
		UserID:    userID,
		RevokedAt: now,
		ExpiresAt: now.Add(ttl),
	}

	return s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"revoked_at", "expires_at"}),
		}).
		Create(model).Error
}

// IsRevokedSince reports whether an all-sessions invalidation covers a token
// issued at the given time
func (s *GormTokenRevocationStore) IsRevokedSince(ctx context.Context, userID string, tokenIssuedAt time.Time) (bool, error) {
	var model models.UserRevocationModel
	if err := s.db.WithContext(ctx).
		Where("user_id = ? AND expires_at > ?", userID, time.Now()).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}
	return !tokenIssuedAt.After(model.RevokedAt), nil
}

// Prune deletes expired revocation rows and returns the number removed
func (s *GormTokenRevocationStore) Prune(ctx context.Context) (int64, error) {
	now := time.Now()

	tokens := s.db.WithContext(ctx).
		Where("expires_at <= ?", now).
		Delete(&models.RevokedTokenModel{})
	if tokens.Error != nil {
		return 0, tokens.Error
	}

	users := s.db.WithContext(ctx).
		Where("expires_at <= ?", now).
		Delete(&models.UserRevocationModel{})
	if users.Error != nil {
		return tokens.RowsAffected, users.Error
	}

	return tokens.RowsAffected + users.RowsAffected, nil
}

// Ensure GormTokenRevocationStore implements TokenRevocationStore
var _ auth.TokenRevocationStore = (*GormTokenRevocationStore)(nil)
