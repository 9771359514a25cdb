package models

import (
	"time"

	"github.com/bizbook/backend/internal/domain/identity"
	"github.com/bizbook/backend/internal/domain/shared"
)

// UserModel is the persistence model for the User domain entity.
// BusinessID is stored as a nullable column so users who have not completed
// their business profile do not collide on the unique index.
type UserModel struct {
	AggregateModel
	Email          string                `gorm:"type:varchar(200);not null;uniqueIndex"`
	FirstName      string                `gorm:"type:varchar(100);not null"`
	LastName       string                `gorm:"type:varchar(100)"`
	Phone          string                `gorm:"type:varchar(50)"`
	PasswordHash   string                `gorm:"type:varchar(255);not null"`
	BusinessName   string                `gorm:"type:varchar(200)"`
	BusinessEmail  string                `gorm:"type:varchar(200)"`
	BusinessPhone  string                `gorm:"type:varchar(50)"`
	BusinessID     *string               `gorm:"type:varchar(220);uniqueIndex"`
	Role           identity.UserRole     `gorm:"type:varchar(20);not null;default:'user'"`
	Status         identity.UserStatus   `gorm:"type:varchar(20);not null;default:'pending'"`
	TemplateMode   identity.TemplateMode `gorm:"type:varchar(20);not null;default:'classic'"`
	LastLoginAt    *time.Time            `gorm:"index"`
	LastLoginIP    string                `gorm:"type:varchar(45)"`
	FailedAttempts int                   `gorm:"not null;default:0"`
	LockedUntil    *time.Time
}

// TableName returns the table name for GORM
func (UserModel) TableName() string {
	return "users"
}

// ToDomain converts the persistence model to a domain User entity.
func (m *UserModel) ToDomain() *identity.User {
	user := &identity.User{
		BaseAggregateRoot: shared.BaseAggregateRoot{
			BaseEntity: shared.BaseEntity{
				ID:        m.ID,
				CreatedAt: m.CreatedAt,
				UpdatedAt: m.UpdatedAt,
			},
			Version: m.Version,
		},
		Email:          m.Email,
		FirstName:      m.FirstName,
		LastName:       m.LastName,
		Phone:          m.Phone,
		PasswordHash:   m.PasswordHash,
		BusinessName:   m.BusinessName,
		BusinessEmail:  m.BusinessEmail,
		BusinessPhone:  m.BusinessPhone,
		Role:           m.Role,
		Status:         m.Status,
		TemplateMode:   m.TemplateMode,
		LastLoginAt:    m.LastLoginAt,
		LastLoginIP:    m.LastLoginIP,
		FailedAttempts: m.FailedAttempts,
		LockedUntil:    m.LockedUntil,
	}
	if m.BusinessID != nil {
		user.BusinessID = *m.BusinessID
	}
	return user
}

// FromDomain populates the persistence model from a domain User entity.
func (m *UserModel) FromDomain(u *identity.User) {
	m.FromDomainAggregateRoot(u.BaseAggregateRoot)
	m.Email = u.Email
	m.FirstName = u.FirstName
	m.LastName = u.LastName
	m.Phone = u.Phone
	m.PasswordHash = u.PasswordHash
	m.BusinessName = u.BusinessName
	m.BusinessEmail = u.BusinessEmail
	m.BusinessPhone = u.BusinessPhone
	if u.BusinessID != "" {
		businessID := u.BusinessID
		m.BusinessID = &businessID
	} else {
		m.BusinessID = nil
	}
	m.Role = u.Role
	m.Status = u.Status
	m.TemplateMode = u.TemplateMode
	m.LastLoginAt = u.LastLoginAt
	m.LastLoginIP = u.LastLoginIP
	m.FailedAttempts = u.FailedAttempts
	m.LockedUntil = u.LockedUntil
}

// UserModelFromDomain creates a new persistence model from a domain User entity.
func UserModelFromDomain(u *identity.User) *UserModel {
	m := &UserModel{}
	m.FromDomain(u)
	return m
}
