package identity

import (
	"time"

	"github.com/google/uuid"

	"github.com/bizbook/backend/internal/domain/identity"
)

// RegisterInput contains the input for account registration
type RegisterInput struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
}

// RegisterResult contains the result of a successful registration
type RegisterResult struct {
	User UserInfo
}

// CompleteBusinessProfileInput contains the input for the business profile step
type CompleteBusinessProfileInput struct {
	UserID        uuid.UUID
	BusinessName  string
	BusinessEmail string
	BusinessPhone string
}

// CompleteBusinessProfileResult contains the activated account with its
// assigned business id
type CompleteBusinessProfileResult struct {
	User UserInfo
}

// LoginInput contains the input for user login
type LoginInput struct {
	Email    string
	Password string
	IP       string // Client IP for login tracking
}

// LoginResult contains the result of a successful login
type LoginResult struct {
	AccessToken           string
	RefreshToken          string
	AccessTokenExpiresAt  time.Time
	RefreshTokenExpiresAt time.Time
	TokenType             string
	User                  UserInfo
}

// UserInfo contains user information returned to the caller
type UserInfo struct {
	ID                 uuid.UUID
	Email              string
	FirstName          string
	LastName           string
	FullName           string
	Phone              string
	BusinessName       string
	BusinessEmail      string
	BusinessPhone      string
	BusinessID         string
	Role               string
	Status             string
	TemplateMode       string
	HasBusinessProfile bool
	LastLoginAt        *time.Time
	CreatedAt          time.Time
}

// NewUserInfo maps a user aggregate to the outward-facing form
func NewUserInfo(user *identity.User) UserInfo {
	return UserInfo{
		ID:                 user.ID,
		Email:              user.Email,
		FirstName:          user.FirstName,
		LastName:           user.LastName,
		FullName:           user.FullName(),
		Phone:              user.Phone,
		BusinessName:       user.BusinessName,
		BusinessEmail:      user.BusinessEmail,
		BusinessPhone:      user.BusinessPhone,
		BusinessID:         user.BusinessID,
		Role:               string(user.Role),
		Status:             string(user.Status),
		TemplateMode:       string(user.TemplateMode),
		HasBusinessProfile: user.HasBusinessProfile(),
		LastLoginAt:        user.LastLoginAt,
		CreatedAt:          user.CreatedAt,
	}
}

// RefreshTokenInput contains the input for token refresh
type RefreshTokenInput struct {
	RefreshToken string
}

// RefreshTokenResult contains the result of a token refresh
type RefreshTokenResult struct {
	AccessToken           string
	RefreshToken          string
	AccessTokenExpiresAt  time.Time
	RefreshTokenExpiresAt time.Time
	TokenType             string
}

// LogoutInput contains the input for user logout. AccessJTI and AccessTTL
// come from the already-validated access token on the request; the refresh
// token is optional and revoked alongside it when supplied.
type LogoutInput struct {
	UserID       uuid.UUID
	AccessJTI    string
	AccessTTL    time.Duration
	RefreshToken string
}

// ChangePasswordInput contains the input for a password change
type ChangePasswordInput struct {
	UserID      uuid.UUID
	OldPassword string
	NewPassword string
}

// GetCurrentUserInput contains the input for fetching the current user
type GetCurrentUserInput struct {
	UserID uuid.UUID
}

// CurrentUserResult contains the current user's information
type CurrentUserResult struct {
	User UserInfo
}

// UpdateProfileInput contains the input for updating personal details
type UpdateProfileInput struct {
	UserID    uuid.UUID
	FirstName string
	LastName  string
	Phone     string
}

// UpdateProfileResult contains the updated user
type UpdateProfileResult struct {
	User UserInfo
}

// SetTemplateModeInput contains the input for switching document templates
type SetTemplateModeInput struct {
	UserID       uuid.UUID
	TemplateMode string
}

// SetTemplateModeResult contains the updated user
type SetTemplateModeResult struct {
	User UserInfo
}
