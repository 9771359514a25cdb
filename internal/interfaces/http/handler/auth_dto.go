package handler

import (
	"time"

	"github.com/bizbook/backend/internal/application/identity"
)

// RegisterRequest represents the registration request body
type RegisterRequest struct {
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required,min=8,max=128"`
	FirstName string `json:"first_name" binding:"required,min=1,max=100"`
	LastName  string `json:"last_name" binding:"required,min=1,max=100"`
}

// CompleteBusinessProfileRequest represents the second registration step
type CompleteBusinessProfileRequest struct {
	BusinessName  string `json:"business_name" binding:"required,min=1,max=200"`
	BusinessEmail string `json:"business_email" binding:"omitempty,email"`
	BusinessPhone string `json:"business_phone" binding:"omitempty,max=50"`
}

// LoginRequest represents the login request body
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// RefreshTokenRequest represents the refresh token request body. The token
// may come from the body or from the refresh cookie.
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// LogoutRequest represents the optional logout request body
type LogoutRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// ChangePasswordRequest represents the change password request body
type ChangePasswordRequest struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,min=8,max=128"`
}

// TokenResponse represents the token pair in responses
type TokenResponse struct {
	AccessToken           string    `json:"access_token"`
	RefreshToken          string    `json:"refresh_token"`
	AccessTokenExpiresAt  time.Time `json:"access_token_expires_at"`
	RefreshTokenExpiresAt time.Time `json:"refresh_token_expires_at"`
	TokenType             string    `json:"token_type"`
}

// AuthUserResponse represents user information in auth responses
type AuthUserResponse struct {
	ID                 string     `json:"id"`
	Email              string     `json:"email"`
	FirstName          string     `json:"first_name"`
	LastName           string     `json:"last_name"`
	FullName           string     `json:"full_name"`
	Phone              string     `json:"phone,omitempty"`
	BusinessName       string     `json:"business_name,omitempty"`
	BusinessEmail      string     `json:"business_email,omitempty"`
	BusinessPhone      string     `json:"business_phone,omitempty"`
	BusinessID         string     `json:"business_id,omitempty"`
	Role               string     `json:"role"`
	Status             string     `json:"status"`
	TemplateMode       string     `json:"template_mode"`
	HasBusinessProfile bool       `json:"has_business_profile"`
	LastLoginAt        *time.Time `json:"last_login_at,omitempty"`
	CreatedAt          time.Time  `json:"created_at"`
}

// toAuthUserResponse maps application-layer user info to the response form
func toAuthUserResponse(u identity.UserInfo) AuthUserResponse {
	return AuthUserResponse{
		ID:                 u.ID.String(),
		Email:              u.Email,
		FirstName:          u.FirstName,
		LastName:           u.LastName,
		FullName:           u.FullName,
		Phone:              u.Phone,
		BusinessName:       u.BusinessName,
		BusinessEmail:      u.BusinessEmail,
		BusinessPhone:      u.BusinessPhone,
		BusinessID:         u.BusinessID,
		Role:               u.Role,
		Status:             u.Status,
		TemplateMode:       u.TemplateMode,
		HasBusinessProfile: u.HasBusinessProfile,
		LastLoginAt:        u.LastLoginAt,
		CreatedAt:          u.CreatedAt,
	}
}

// LoginResponse represents a successful login response
type LoginResponse struct {
	Token TokenResponse    `json:"token"`
	User  AuthUserResponse `json:"user"`
}

// RefreshTokenResponse represents a successful token refresh response
type RefreshTokenResponse struct {
	Token TokenResponse `json:"token"`
}

// LogoutResponse represents a successful logout response
type LogoutResponse struct {
	Message string `json:"message"`
}

// CurrentUserResponse represents the current user response
type CurrentUserResponse struct {
	User AuthUserResponse `json:"user"`
}
