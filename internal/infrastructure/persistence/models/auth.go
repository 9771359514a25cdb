package models

import (
	"time"

	"github.com/google/uuid"
)

// RevokedTokenModel records a revoked token identifier so logged-out tokens
// are rejected until they expire on their own. Rows past expires_at are
// dead weight and can be pruned at any time.
type RevokedTokenModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key"`
	UserID    string    `gorm:"type:varchar(100);not null;uniqueIndex:idx_revoked_user_jti,priority:1"`
	JTI       string    `gorm:"column:jti;type:varchar(100);not null;uniqueIndex:idx_revoked_user_jti,priority:2"`
	RevokedAt time.Time `gorm:"not null"`
	ExpiresAt time.Time `gorm:"not null;index"`
}

// TableName returns the table name for GORM
func (RevokedTokenModel) TableName() string {
	return "revoked_tokens"
}

// UserRevocationModel records an all-sessions invalidation point for a user.
// Tokens issued at or before revoked_at are rejected regardless of jti.
type UserRevocationModel struct {
	UserID    string    `gorm:"type:varchar(100);primaryKey"`
	RevokedAt time.Time `gorm:"not null"`
	ExpiresAt time.Time `gorm:"not null;index"`
}

// TableName returns the table name for GORM
func (UserRevocationModel) TableName() string {
	return "user_revocations"
}
