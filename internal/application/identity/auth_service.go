package identity

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/bizbook/backend/internal/domain/identity"
	"github.com/bizbook/backend/internal/domain/shared"
	"github.com/bizbook/backend/internal/infrastructure/auth"
	"github.com/bizbook/backend/internal/infrastructure/config"
)

// AuthServiceConfig contains configuration for the auth service
type AuthServiceConfig struct {
	MaxLoginAttempts int
	LockoutDuration  time.Duration
	// ProfileRetries bounds how many times completing the business profile
	// is retried when the generated business id loses the unique-index race.
	ProfileRetries int
}

// DefaultAuthServiceConfig returns the default auth service configuration
func DefaultAuthServiceConfig() AuthServiceConfig {
	return AuthServiceConfig{
		MaxLoginAttempts: 5,
		LockoutDuration:  30 * time.Minute,
		ProfileRetries:   3,
	}
}

// NewAuthServiceConfig builds service configuration from the application config
func NewAuthServiceConfig(cfg config.AuthConfig) AuthServiceConfig {
	serviceCfg := DefaultAuthServiceConfig()
	if cfg.MaxLoginAttempts > 0 {
		serviceCfg.MaxLoginAttempts = cfg.MaxLoginAttempts
	}
	if cfg.LockoutDuration > 0 {
		serviceCfg.LockoutDuration = cfg.LockoutDuration
	}
	return serviceCfg
}

// AuthService handles registration, authentication and session lifecycle
type AuthService struct {
	userRepo        identity.UserRepository
	idGenerator     *identity.BusinessIDGenerator
	jwtService      *auth.JWTService
	revocationStore auth.TokenRevocationStore
	config          AuthServiceConfig
	logger          *zap.Logger
}

// NewAuthService creates a new auth service
func NewAuthService(
	userRepo identity.UserRepository,
	idGenerator *identity.BusinessIDGenerator,
	jwtService *auth.JWTService,
	revocationStore auth.TokenRevocationStore,
	cfg AuthServiceConfig,
	logger *zap.Logger,
) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{
		userRepo:        userRepo,
		idGenerator:     idGenerator,
		jwtService:      jwtService,
		revocationStore: revocationStore,
		config:          cfg,
		logger:          logger,
	}
}

// Register creates a new pending account with personal details. The business
// profile step follows separately and assigns the business id.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*RegisterResult, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))

	exists, err := s.userRepo.ExistsByEmail(ctx, email)
	if err != nil {
		s.logger.Error("Failed to check email existence", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to register")
	}
	if exists {
		return nil, shared.NewDomainError("EMAIL_EXISTS", "An account with this email already exists")
	}

	user, err := identity.NewUser(email, input.Password, input.FirstName, input.LastName)
	if err != nil {
		return nil, err
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, shared.ErrAlreadyExists) {
			return nil, shared.NewDomainError("EMAIL_EXISTS", "An account with this email already exists")
		}
		s.logger.Error("Failed to create user", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to register")
	}

	s.logger.Info("User registered",
		zap.String("user_id", user.ID.String()),
		zap.String("email", user.Email))

	return &RegisterResult{User: NewUserInfo(user)}, nil
}

// CompleteBusinessProfile records the business details, assigns a generated
// business id and activates the account. The unique index on business_id is
// the final arbiter of uniqueness; losing that race triggers a bounded retry
// with a freshly generated id.
func (s *AuthService) CompleteBusinessProfile(ctx context.Context, input CompleteBusinessProfileInput) (*CompleteBusinessProfileResult, error) {
	retries := s.config.ProfileRetries
	if retries < 1 {
		retries = 1
	}

	for attempt := 0; attempt < retries; attempt++ {
		user, err := s.userRepo.FindByID(ctx, input.UserID)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return nil, shared.NewDomainError("USER_NOT_FOUND", "User not found")
			}
			s.logger.Error("Failed to find user", zap.Error(err))
			return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to complete business profile")
		}

		if user.HasBusinessProfile() {
			return nil, shared.NewDomainError("BUSINESS_PROFILE_SET", "Business profile has already been completed")
		}

		businessID, err := s.idGenerator.Generate(ctx, input.BusinessName, s.userRepo.ExistsByBusinessID)
		if err != nil {
			return nil, err
		}

		if err := user.CompleteBusinessProfile(input.BusinessName, input.BusinessEmail, input.BusinessPhone, businessID); err != nil {
			return nil, err
		}

		err = s.userRepo.Update(ctx, user)
		if errors.Is(err, shared.ErrAlreadyExists) {
			s.logger.Warn("Business id taken at persist time, retrying",
				zap.String("user_id", user.ID.String()),
				zap.String("business_id", businessID),
				zap.Int("attempt", attempt+1))
			continue
		}
		if err != nil {
			s.logger.Error("Failed to update user", zap.Error(err))
			return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to complete business profile")
		}

		s.logger.Info("Business profile completed",
			zap.String("user_id", user.ID.String()),
			zap.String("business_id", businessID))

		return &CompleteBusinessProfileResult{User: NewUserInfo(user)}, nil
	}

	return nil, shared.ErrGenerationExhausted
}

// Login authenticates a user and returns a token pair. Pending users may
// login to finish the business profile step.
func (s *AuthService) Login(ctx context.Context, input LoginInput) (*LoginResult, error) {
	user, err := s.userRepo.FindByEmail(ctx, input.Email)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			s.logger.Warn("Login attempt with unknown email",
				zap.String("email", input.Email),
				zap.String("ip", input.IP))
			return nil, shared.NewDomainError("INVALID_CREDENTIALS", "Invalid email or password")
		}
		s.logger.Error("Failed to find user", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Login failed")
	}

	if user.Status == identity.UserStatusBlocked {
		s.logger.Warn("Login attempt on blocked account",
			zap.String("user_id", user.ID.String()))
		return nil, shared.NewDomainError("ACCOUNT_BLOCKED", "Account has been blocked")
	}
	if user.IsLocked() {
		s.logger.Warn("Login attempt on locked account",
			zap.String("user_id", user.ID.String()))
		return nil, shared.NewDomainError("ACCOUNT_LOCKED", "Account is temporarily locked")
	}

	if !user.VerifyPassword(input.Password) {
		locked := user.RecordLoginFailure(s.config.MaxLoginAttempts, s.config.LockoutDuration)
		if err := s.userRepo.Update(ctx, user); err != nil {
			s.logger.Error("Failed to record login failure", zap.Error(err))
		}
		if locked {
			s.logger.Warn("Account locked after repeated failures",
				zap.String("user_id", user.ID.String()),
				zap.Int("failed_attempts", user.FailedAttempts))
			return nil, shared.NewDomainError("ACCOUNT_LOCKED", "Account is temporarily locked")
		}
		return nil, shared.NewDomainError("INVALID_CREDENTIALS", "Invalid email or password")
	}

	// An expired lock clears on the next successful login.
	if user.Status == identity.UserStatusLocked {
		_ = user.Unlock()
	}

	tokenPair, err := s.jwtService.GenerateTokenPair(auth.GenerateTokenInput{
		UserID:     user.ID,
		Email:      user.Email,
		BusinessID: user.BusinessID,
		Role:       string(user.Role),
	})
	if err != nil {
		s.logger.Error("Failed to generate token pair", zap.Error(err))
		return nil, shared.NewDomainError("TOKEN_GENERATION_FAILED", "Failed to generate tokens")
	}

	user.RecordLoginSuccess(input.IP)
	if err := s.userRepo.Update(ctx, user); err != nil {
		// The login itself succeeded; tracking info is best-effort.
		s.logger.Error("Failed to record login success", zap.Error(err))
	}

	s.logger.Info("User logged in",
		zap.String("user_id", user.ID.String()),
		zap.String("ip", input.IP))

	return &LoginResult{
		AccessToken:           tokenPair.AccessToken,
		RefreshToken:          tokenPair.RefreshToken,
		AccessTokenExpiresAt:  tokenPair.AccessTokenExpiresAt,
		RefreshTokenExpiresAt: tokenPair.RefreshTokenExpiresAt,
		TokenType:             tokenPair.TokenType,
		User:                  NewUserInfo(user),
	}, nil
}

// RefreshToken exchanges a valid refresh token for a new token pair. The used
// refresh token is revoked so each refresh token works exactly once.
func (s *AuthService) RefreshToken(ctx context.Context, input RefreshTokenInput) (*RefreshTokenResult, error) {
	claims, err := s.jwtService.ValidateRefreshToken(input.RefreshToken)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrExpiredToken):
			return nil, shared.NewDomainError("TOKEN_EXPIRED", "Refresh token has expired")
		default:
			return nil, shared.NewDomainError("TOKEN_INVALID", "Invalid refresh token")
		}
	}

	revoked, err := s.revocationStore.IsRevoked(ctx, claims.UserID, claims.ID)
	if err != nil {
		s.logger.Error("Failed to check token revocation", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to refresh token")
	}
	if !revoked {
		revoked, err = s.revocationStore.IsRevokedSince(ctx, claims.UserID, claims.GetIssuedAtTime())
		if err != nil {
			s.logger.Error("Failed to check token revocation", zap.Error(err))
			return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to refresh token")
		}
	}
	if revoked {
		s.logger.Warn("Refresh attempt with revoked token",
			zap.String("user_id", claims.UserID),
			zap.String("jti", claims.ID))
		return nil, shared.NewDomainError("TOKEN_REVOKED", "Refresh token has been revoked")
	}

	userID, err := claims.GetUserUUID()
	if err != nil {
		return nil, shared.NewDomainError("TOKEN_INVALID", "Invalid refresh token")
	}

	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("USER_NOT_FOUND", "User not found")
		}
		s.logger.Error("Failed to find user", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to refresh token")
	}

	if !user.CanLogin() {
		return nil, shared.NewDomainError("ACCOUNT_DISABLED", "Account is not allowed to login")
	}

	tokenPair, err := s.jwtService.GenerateTokenPair(auth.GenerateTokenInput{
		UserID:     user.ID,
		Email:      user.Email,
		BusinessID: user.BusinessID,
		Role:       string(user.Role),
	})
	if err != nil {
		s.logger.Error("Failed to generate token pair", zap.Error(err))
		return nil, shared.NewDomainError("TOKEN_GENERATION_FAILED", "Failed to generate tokens")
	}

	if err := s.revocationStore.Revoke(ctx, claims.UserID, claims.ID, claims.GetRemainingTTL()); err != nil {
		// Rotation revocation is best-effort; the token still expires on its own.
		s.logger.Warn("Failed to revoke rotated refresh token",
			zap.String("user_id", claims.UserID),
			zap.Error(err))
	}

	s.logger.Info("Token refreshed", zap.String("user_id", claims.UserID))

	return &RefreshTokenResult{
		AccessToken:           tokenPair.AccessToken,
		RefreshToken:          tokenPair.RefreshToken,
		AccessTokenExpiresAt:  tokenPair.AccessTokenExpiresAt,
		RefreshTokenExpiresAt: tokenPair.RefreshTokenExpiresAt,
		TokenType:             tokenPair.TokenType,
	}, nil
}

// Logout revokes the current access token and, when supplied, the refresh
// token, so neither can be replayed before its natural expiry.
func (s *AuthService) Logout(ctx context.Context, input LogoutInput) error {
	userID := input.UserID.String()

	if input.AccessJTI != "" {
		if err := s.revocationStore.Revoke(ctx, userID, input.AccessJTI, input.AccessTTL); err != nil {
			s.logger.Error("Failed to revoke access token", zap.Error(err))
			return shared.NewDomainError("INTERNAL_ERROR", "Logout failed")
		}
	}

	if input.RefreshToken != "" {
		claims, err := s.jwtService.ValidateRefreshToken(input.RefreshToken)
		if err != nil {
			// An already invalid refresh token needs no revocation.
			s.logger.Debug("Refresh token invalid at logout", zap.Error(err))
		} else if claims.UserID == userID {
			if err := s.revocationStore.Revoke(ctx, userID, claims.ID, claims.GetRemainingTTL()); err != nil {
				s.logger.Error("Failed to revoke refresh token", zap.Error(err))
				return shared.NewDomainError("INTERNAL_ERROR", "Logout failed")
			}
		}
	}

	s.logger.Info("User logged out", zap.String("user_id", userID))
	return nil
}

// ChangePassword changes the user's password after verifying the current one
// and revokes every outstanding token for the user.
func (s *AuthService) ChangePassword(ctx context.Context, input ChangePasswordInput) error {
	user, err := s.userRepo.FindByID(ctx, input.UserID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return shared.NewDomainError("USER_NOT_FOUND", "User not found")
		}
		s.logger.Error("Failed to find user", zap.Error(err))
		return shared.NewDomainError("INTERNAL_ERROR", "Failed to change password")
	}

	if err := user.ChangePassword(input.OldPassword, input.NewPassword); err != nil {
		return err
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		s.logger.Error("Failed to update user", zap.Error(err))
		return shared.NewDomainError("INTERNAL_ERROR", "Failed to change password")
	}

	// Cut off sessions issued with the old password. The cutoff only needs to
	// outlive the longest-lived token.
	if err := s.revocationStore.RevokeAllForUser(ctx, user.ID.String(), s.jwtService.GetRefreshTokenExpiration()); err != nil {
		s.logger.Warn("Failed to revoke existing sessions after password change",
			zap.String("user_id", user.ID.String()),
			zap.Error(err))
	}

	s.logger.Info("Password changed", zap.String("user_id", user.ID.String()))
	return nil
}

// GetCurrentUser returns the authenticated user's information
func (s *AuthService) GetCurrentUser(ctx context.Context, input GetCurrentUserInput) (*CurrentUserResult, error) {
	user, err := s.userRepo.FindByID(ctx, input.UserID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("USER_NOT_FOUND", "User not found")
		}
		s.logger.Error("Failed to find user", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to get user")
	}

	return &CurrentUserResult{User: NewUserInfo(user)}, nil
}
