package identity

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/bizbook/backend/internal/domain/identity"
	"github.com/bizbook/backend/internal/domain/shared"
)

// UserService handles user profile management
type UserService struct {
	userRepo identity.UserRepository
	logger   *zap.Logger
}

// NewUserService creates a new user service
func NewUserService(userRepo identity.UserRepository, logger *zap.Logger) *UserService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UserService{
		userRepo: userRepo,
		logger:   logger,
	}
}

// UpdateProfile updates the user's personal details
func (s *UserService) UpdateProfile(ctx context.Context, input UpdateProfileInput) (*UpdateProfileResult, error) {
	user, err := s.userRepo.FindByID(ctx, input.UserID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("USER_NOT_FOUND", "User not found")
		}
		s.logger.Error("Failed to find user", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to update profile")
	}

	if err := user.UpdateProfile(input.FirstName, input.LastName, input.Phone); err != nil {
		return nil, err
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		s.logger.Error("Failed to update user", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to update profile")
	}

	s.logger.Info("Profile updated", zap.String("user_id", user.ID.String()))

	return &UpdateProfileResult{User: NewUserInfo(user)}, nil
}

// SetTemplateMode switches which invoice/receipt template the user's
// documents render with
func (s *UserService) SetTemplateMode(ctx context.Context, input SetTemplateModeInput) (*SetTemplateModeResult, error) {
	user, err := s.userRepo.FindByID(ctx, input.UserID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("USER_NOT_FOUND", "User not found")
		}
		s.logger.Error("Failed to find user", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to set template mode")
	}

	if err := user.SetTemplateMode(identity.TemplateMode(input.TemplateMode)); err != nil {
		return nil, err
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		s.logger.Error("Failed to update user", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to set template mode")
	}

	s.logger.Info("Template mode set",
		zap.String("user_id", user.ID.String()),
		zap.String("template_mode", input.TemplateMode))

	return &SetTemplateModeResult{User: NewUserInfo(user)}, nil
}
