package identity

import (
	"context"
	"math/rand"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/bizbook/backend/internal/domain/identity"
	"github.com/bizbook/backend/internal/domain/shared"
	"github.com/bizbook/backend/internal/infrastructure/auth"
	"github.com/bizbook/backend/internal/infrastructure/config"
)

// =============================================================================
// Mock Repositories
// =============================================================================

// MockUserRepository is a mock implementation of identity.UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *identity.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) Update(ctx context.Context, user *identity.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*identity.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.User), args.Error(1)
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*identity.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.User), args.Error(1)
}

func (m *MockUserRepository) FindByBusinessID(ctx context.Context, businessID string) (*identity.User, error) {
	args := m.Called(ctx, businessID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.User), args.Error(1)
}

func (m *MockUserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	args := m.Called(ctx, email)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserRepository) ExistsByBusinessID(ctx context.Context, businessID string) (bool, error) {
	args := m.Called(ctx, businessID)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserRepository) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

// =============================================================================
// Helpers
// =============================================================================

const testPassword = "Sup3rSecret!"

func newTestJWTService() *auth.JWTService {
	return auth.NewJWTService(config.JWTConfig{
		Secret:                 "test-access-secret",
		RefreshSecret:          "test-refresh-secret",
		AccessTokenExpiration:  15 * time.Minute,
		RefreshTokenExpiration: 7 * 24 * time.Hour,
		Issuer:                 "bizbook-test",
	})
}

func newTestAuthService(userRepo identity.UserRepository) (*AuthService, *auth.InMemoryTokenRevocationStore) {
	store := auth.NewInMemoryTokenRevocationStore()
	service := NewAuthService(
		userRepo,
		identity.NewBusinessIDGeneratorWithSource(rand.NewSource(1)),
		newTestJWTService(),
		store,
		DefaultAuthServiceConfig(),
		nil,
	)
	return service, store
}

func newPendingUser(t *testing.T) *identity.User {
	t.Helper()
	user, err := identity.NewUser("jon@example.com", testPassword, "Jon", "Doe")
	require.NoError(t, err)
	return user
}

func newActiveUser(t *testing.T) *identity.User {
	t.Helper()
	user := newPendingUser(t)
	require.NoError(t, user.CompleteBusinessProfile("Doe Traders", "sales@doetraders.com", "", " traders_0042"))
	return user
}

func assertDomainErrorCode(t *testing.T, err error, code string) {
	t.Helper()
	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, code, domainErr.Code)
}

// =============================================================================
// Register
// =============================================================================

func TestAuthService_Register(t *testing.T) {
	ctx := context.Background()

	t.Run("creates a pending user", func(t *testing.T) {
		userRepo := new(MockUserRepository)
		userRepo.On("ExistsByEmail", mock.Anything, "jon@example.com").Return(false, nil)
		userRepo.On("Create", mock.Anything, mock.AnythingOfType("*identity.User")).Return(nil)

		service, _ := newTestAuthService(userRepo)
		result, err := service.Register(ctx, RegisterInput{
			Email:     "  Jon@Example.COM ",
			Password:  testPassword,
			FirstName: "Jon",
			LastName:  "Doe",
		})

		require.NoError(t, err)
		assert.Equal(t, "jon@example.com", result.User.Email)
		assert.Equal(t, string(identity.UserStatusPending), result.User.Status)
		assert.False(t, result.User.HasBusinessProfile)
		userRepo.AssertExpectations(t)
	})

	t.Run("rejects an existing email", func(t *testing.T) {
		userRepo := new(MockUserRepository)
		userRepo.On("ExistsByEmail", mock.Anything, "jon@example.com").Return(true, nil)

		service, _ := newTestAuthService(userRepo)
		_, err := service.Register(ctx, RegisterInput{
			Email:     "jon@example.com",
			Password:  testPassword,
			FirstName: "Jon",
			LastName:  "Doe",
		})

		assertDomainErrorCode(t, err, "EMAIL_EXISTS")
		userRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("maps an insert conflict to EMAIL_EXISTS", func(t *testing.T) {
		userRepo := new(MockUserRepository)
		userRepo.On("ExistsByEmail", mock.Anything, "jon@example.com").Return(false, nil)
		userRepo.On("Create", mock.Anything, mock.Anything).Return(shared.ErrAlreadyExists)

		service, _ := newTestAuthService(userRepo)
		_, err := service.Register(ctx, RegisterInput{
			Email:     "jon@example.com",
			Password:  testPassword,
			FirstName: "Jon",
			LastName:  "Doe",
		})

		assertDomainErrorCode(t, err, "EMAIL_EXISTS")
	})

	t.Run("rejects a weak password", func(t *testing.T) {
		userRepo := new(MockUserRepository)
		userRepo.On("ExistsByEmail", mock.Anything, "jon@example.com").Return(false, nil)

		service, _ := newTestAuthService(userRepo)
		_, err := service.Register(ctx, RegisterInput{
			Email:     "jon@example.com",
			Password:  "short",
			FirstName: "Jon",
			LastName:  "Doe",
		})

		assert.Error(t, err)
		userRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})
}

// =============================================================================
// CompleteBusinessProfile
// =============================================================================

func TestAuthService_CompleteBusinessProfile(t *testing.T) {
	ctx := context.Background()

	t.Run("assigns a business id and activates the account", func(t *testing.T) {
		user := newPendingUser(t)
		userRepo := new(MockUserRepository)
		userRepo.On("FindByID", mock.Anything, user.ID).Return(user, nil)
		userRepo.On("ExistsByBusinessID", mock.Anything, mock.AnythingOfType("string")).Return(false, nil)
		userRepo.On("Update", mock.Anything, user).Return(nil)

		service, _ := newTestAuthService(userRepo)
		result, err := service.CompleteBusinessProfile(ctx, CompleteBusinessProfileInput{
			UserID:        user.ID,
			BusinessName:  "Doe Traders",
			BusinessEmail: "sales@doetraders.com",
		})

		require.NoError(t, err)
		assert.True(t, result.User.HasBusinessProfile)
		assert.Equal(t, string(identity.UserStatusActive), result.User.Status)
		assert.Contains(t, result.User.BusinessID, " traders_")
		userRepo.AssertExpectations(t)
	})

	t.Run("retries with a fresh id when the unique index race is lost", func(t *testing.T) {
		first := newPendingUser(t)
		second := newPendingUser(t)
		second.ID = first.ID

		userRepo := new(MockUserRepository)
		userRepo.On("FindByID", mock.Anything, first.ID).Return(first, nil).Once()
		userRepo.On("FindByID", mock.Anything, first.ID).Return(second, nil).Once()
		userRepo.On("ExistsByBusinessID", mock.Anything, mock.AnythingOfType("string")).Return(false, nil)
		userRepo.On("Update", mock.Anything, mock.Anything).Return(shared.ErrAlreadyExists).Once()
		userRepo.On("Update", mock.Anything, mock.Anything).Return(nil).Once()

		service, _ := newTestAuthService(userRepo)
		result, err := service.CompleteBusinessProfile(ctx, CompleteBusinessProfileInput{
			UserID:       first.ID,
			BusinessName: "Doe Traders",
		})

		require.NoError(t, err)
		assert.True(t, result.User.HasBusinessProfile)
		userRepo.AssertExpectations(t)
	})

	t.Run("gives up after bounded retries", func(t *testing.T) {
		user := newPendingUser(t)
		userRepo := new(MockUserRepository)
		userRepo.On("FindByID", mock.Anything, user.ID).Return(newPendingUser(t), nil)
		userRepo.On("ExistsByBusinessID", mock.Anything, mock.AnythingOfType("string")).Return(false, nil)
		userRepo.On("Update", mock.Anything, mock.Anything).Return(shared.ErrAlreadyExists)

		service, _ := newTestAuthService(userRepo)
		_, err := service.CompleteBusinessProfile(ctx, CompleteBusinessProfileInput{
			UserID:       user.ID,
			BusinessName: "Doe Traders",
		})

		assertDomainErrorCode(t, err, "GENERATION_EXHAUSTED")
		userRepo.AssertNumberOfCalls(t, "Update", DefaultAuthServiceConfig().ProfileRetries)
	})

	t.Run("rejects a second completion", func(t *testing.T) {
		user := newActiveUser(t)
		userRepo := new(MockUserRepository)
		userRepo.On("FindByID", mock.Anything, user.ID).Return(user, nil)

		service, _ := newTestAuthService(userRepo)
		_, err := service.CompleteBusinessProfile(ctx, CompleteBusinessProfileInput{
			UserID:       user.ID,
			BusinessName: "Doe Traders",
		})

		assertDomainErrorCode(t, err, "BUSINESS_PROFILE_SET")
		userRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})

	t.Run("returns USER_NOT_FOUND for an unknown user", func(t *testing.T) {
		userRepo := new(MockUserRepository)
		userRepo.On("FindByID", mock.Anything, mock.Anything).Return(nil, shared.ErrNotFound)

		service, _ := newTestAuthService(userRepo)
		_, err := service.CompleteBusinessProfile(ctx, CompleteBusinessProfileInput{
			UserID:       uuid.New(),
			BusinessName: "Doe Traders",
		})

		assertDomainErrorCode(t, err, "USER_NOT_FOUND")
	})
}

// =============================================================================
// Login
// =============================================================================

func TestAuthService_Login(t *testing.T) {
	ctx := context.Background()

	t.Run("returns a token pair on success", func(t *testing.T) {
		user := newActiveUser(t)
		userRepo := new(MockUserRepository)
		userRepo.On("FindByEmail", mock.Anything, "jon@example.com").Return(user, nil)
		userRepo.On("Update", mock.Anything, user).Return(nil)

		service, _ := newTestAuthService(userRepo)
		result, err := service.Login(ctx, LoginInput{
			Email:    "jon@example.com",
			Password: testPassword,
			IP:       "203.0.113.7",
		})

		require.NoError(t, err)
		assert.NotEmpty(t, result.AccessToken)
		assert.NotEmpty(t, result.RefreshToken)
		assert.Equal(t, "Bearer", result.TokenType)
		assert.Equal(t, user.BusinessID, result.User.BusinessID)
		require.NotNil(t, user.LastLoginAt)
		assert.Equal(t, "203.0.113.7", user.LastLoginIP)
	})

	t.Run("allows a pending user to login", func(t *testing.T) {
		user := newPendingUser(t)
		userRepo := new(MockUserRepository)
		userRepo.On("FindByEmail", mock.Anything, "jon@example.com").Return(user, nil)
		userRepo.On("Update", mock.Anything, user).Return(nil)

		service, _ := newTestAuthService(userRepo)
		result, err := service.Login(ctx, LoginInput{
			Email:    "jon@example.com",
			Password: testPassword,
		})

		require.NoError(t, err)
		assert.False(t, result.User.HasBusinessProfile)
	})

	t.Run("rejects an unknown email", func(t *testing.T) {
		userRepo := new(MockUserRepository)
		userRepo.On("FindByEmail", mock.Anything, mock.Anything).Return(nil, shared.ErrNotFound)

		service, _ := newTestAuthService(userRepo)
		_, err := service.Login(ctx, LoginInput{Email: "nobody@example.com", Password: testPassword})

		assertDomainErrorCode(t, err, "INVALID_CREDENTIALS")
	})

	t.Run("rejects a wrong password and counts the failure", func(t *testing.T) {
		user := newActiveUser(t)
		userRepo := new(MockUserRepository)
		userRepo.On("FindByEmail", mock.Anything, "jon@example.com").Return(user, nil)
		userRepo.On("Update", mock.Anything, user).Return(nil)

		service, _ := newTestAuthService(userRepo)
		_, err := service.Login(ctx, LoginInput{Email: "jon@example.com", Password: "wrong-password"})

		assertDomainErrorCode(t, err, "INVALID_CREDENTIALS")
		assert.Equal(t, 1, user.FailedAttempts)
		userRepo.AssertCalled(t, "Update", mock.Anything, user)
	})

	t.Run("locks the account after repeated failures", func(t *testing.T) {
		user := newActiveUser(t)
		user.FailedAttempts = DefaultAuthServiceConfig().MaxLoginAttempts - 1
		userRepo := new(MockUserRepository)
		userRepo.On("FindByEmail", mock.Anything, "jon@example.com").Return(user, nil)
		userRepo.On("Update", mock.Anything, user).Return(nil)

		service, _ := newTestAuthService(userRepo)
		_, err := service.Login(ctx, LoginInput{Email: "jon@example.com", Password: "wrong-password"})

		assertDomainErrorCode(t, err, "ACCOUNT_LOCKED")
		assert.True(t, user.IsLocked())
	})

	t.Run("rejects a locked account", func(t *testing.T) {
		user := newActiveUser(t)
		require.NoError(t, user.Lock(time.Hour))
		userRepo := new(MockUserRepository)
		userRepo.On("FindByEmail", mock.Anything, "jon@example.com").Return(user, nil)

		service, _ := newTestAuthService(userRepo)
		_, err := service.Login(ctx, LoginInput{Email: "jon@example.com", Password: testPassword})

		assertDomainErrorCode(t, err, "ACCOUNT_LOCKED")
	})

	t.Run("rejects a blocked account", func(t *testing.T) {
		user := newActiveUser(t)
		require.NoError(t, user.Block())
		userRepo := new(MockUserRepository)
		userRepo.On("FindByEmail", mock.Anything, "jon@example.com").Return(user, nil)

		service, _ := newTestAuthService(userRepo)
		_, err := service.Login(ctx, LoginInput{Email: "jon@example.com", Password: testPassword})

		assertDomainErrorCode(t, err, "ACCOUNT_BLOCKED")
	})

	t.Run("clears an expired lock on successful login", func(t *testing.T) {
		user := newActiveUser(t)
		require.NoError(t, user.Lock(time.Hour))
		expired := time.Now().Add(-time.Minute)
		user.LockedUntil = &expired

		userRepo := new(MockUserRepository)
		userRepo.On("FindByEmail", mock.Anything, "jon@example.com").Return(user, nil)
		userRepo.On("Update", mock.Anything, user).Return(nil)

		service, _ := newTestAuthService(userRepo)
		_, err := service.Login(ctx, LoginInput{Email: "jon@example.com", Password: testPassword})

		require.NoError(t, err)
		assert.Equal(t, identity.UserStatusActive, user.Status)
		assert.Equal(t, 0, user.FailedAttempts)
	})
}

// =============================================================================
// RefreshToken
// =============================================================================

func TestAuthService_RefreshToken(t *testing.T) {
	ctx := context.Background()

	login := func(t *testing.T, service *AuthService) (*identity.User, *LoginResult) {
		t.Helper()
		user := newActiveUser(t)
		userRepo := service.userRepo.(*MockUserRepository)
		userRepo.On("FindByEmail", mock.Anything, user.Email).Return(user, nil)
		userRepo.On("FindByID", mock.Anything, user.ID).Return(user, nil)
		userRepo.On("Update", mock.Anything, user).Return(nil)
		result, err := service.Login(ctx, LoginInput{Email: user.Email, Password: testPassword})
		require.NoError(t, err)
		return user, result
	}

	t.Run("issues a new pair and retires the used token", func(t *testing.T) {
		service, _ := newTestAuthService(new(MockUserRepository))
		_, loginResult := login(t, service)

		refreshed, err := service.RefreshToken(ctx, RefreshTokenInput{RefreshToken: loginResult.RefreshToken})
		require.NoError(t, err)
		assert.NotEmpty(t, refreshed.AccessToken)
		assert.NotEmpty(t, refreshed.RefreshToken)

		// The same refresh token must not work a second time.
		_, err = service.RefreshToken(ctx, RefreshTokenInput{RefreshToken: loginResult.RefreshToken})
		assertDomainErrorCode(t, err, "TOKEN_REVOKED")
	})

	t.Run("rejects a malformed token", func(t *testing.T) {
		service, _ := newTestAuthService(new(MockUserRepository))
		_, err := service.RefreshToken(ctx, RefreshTokenInput{RefreshToken: "not-a-token"})
		assertDomainErrorCode(t, err, "TOKEN_INVALID")
	})

	t.Run("rejects an access token passed as refresh token", func(t *testing.T) {
		service, _ := newTestAuthService(new(MockUserRepository))
		_, loginResult := login(t, service)

		_, err := service.RefreshToken(ctx, RefreshTokenInput{RefreshToken: loginResult.AccessToken})
		assertDomainErrorCode(t, err, "TOKEN_INVALID")
	})

	t.Run("rejects a user-wide revocation", func(t *testing.T) {
		service, store := newTestAuthService(new(MockUserRepository))
		user, loginResult := login(t, service)

		require.NoError(t, store.RevokeAllForUser(ctx, user.ID.String(), time.Hour))

		_, err := service.RefreshToken(ctx, RefreshTokenInput{RefreshToken: loginResult.RefreshToken})
		assertDomainErrorCode(t, err, "TOKEN_REVOKED")
	})

	t.Run("rejects a blocked user", func(t *testing.T) {
		service, _ := newTestAuthService(new(MockUserRepository))
		user, loginResult := login(t, service)
		require.NoError(t, user.Block())

		_, err := service.RefreshToken(ctx, RefreshTokenInput{RefreshToken: loginResult.RefreshToken})
		assertDomainErrorCode(t, err, "ACCOUNT_DISABLED")
	})
}

// =============================================================================
// Logout
// =============================================================================

func TestAuthService_Logout(t *testing.T) {
	ctx := context.Background()

	t.Run("revokes the access token", func(t *testing.T) {
		service, store := newTestAuthService(new(MockUserRepository))
		userID := uuid.New()

		err := service.Logout(ctx, LogoutInput{
			UserID:    userID,
			AccessJTI: "access-jti",
			AccessTTL: 15 * time.Minute,
		})
		require.NoError(t, err)

		revoked, err := store.IsRevoked(ctx, userID.String(), "access-jti")
		require.NoError(t, err)
		assert.True(t, revoked)
	})

	t.Run("revokes the refresh token when supplied", func(t *testing.T) {
		user := newActiveUser(t)
		userRepo := new(MockUserRepository)
		userRepo.On("FindByEmail", mock.Anything, user.Email).Return(user, nil)
		userRepo.On("Update", mock.Anything, user).Return(nil)

		service, _ := newTestAuthService(userRepo)
		loginResult, err := service.Login(ctx, LoginInput{Email: user.Email, Password: testPassword})
		require.NoError(t, err)

		err = service.Logout(ctx, LogoutInput{
			UserID:       user.ID,
			AccessJTI:    "access-jti",
			AccessTTL:    15 * time.Minute,
			RefreshToken: loginResult.RefreshToken,
		})
		require.NoError(t, err)

		_, err = service.RefreshToken(ctx, RefreshTokenInput{RefreshToken: loginResult.RefreshToken})
		assertDomainErrorCode(t, err, "TOKEN_REVOKED")
	})

	t.Run("ignores an invalid refresh token", func(t *testing.T) {
		service, _ := newTestAuthService(new(MockUserRepository))

		err := service.Logout(ctx, LogoutInput{
			UserID:       uuid.New(),
			AccessJTI:    "access-jti",
			AccessTTL:    time.Minute,
			RefreshToken: "garbage",
		})
		assert.NoError(t, err)
	})
}

// =============================================================================
// ChangePassword
// =============================================================================

func TestAuthService_ChangePassword(t *testing.T) {
	ctx := context.Background()

	t.Run("changes the password and revokes existing sessions", func(t *testing.T) {
		user := newActiveUser(t)
		userRepo := new(MockUserRepository)
		userRepo.On("FindByID", mock.Anything, user.ID).Return(user, nil)
		userRepo.On("Update", mock.Anything, user).Return(nil)

		service, store := newTestAuthService(userRepo)
		issuedBefore := time.Now().Add(-time.Second)

		err := service.ChangePassword(ctx, ChangePasswordInput{
			UserID:      user.ID,
			OldPassword: testPassword,
			NewPassword: "N3wSup3rSecret!",
		})
		require.NoError(t, err)
		assert.True(t, user.VerifyPassword("N3wSup3rSecret!"))

		revoked, err := store.IsRevokedSince(ctx, user.ID.String(), issuedBefore)
		require.NoError(t, err)
		assert.True(t, revoked)
	})

	t.Run("rejects a wrong current password", func(t *testing.T) {
		user := newActiveUser(t)
		userRepo := new(MockUserRepository)
		userRepo.On("FindByID", mock.Anything, user.ID).Return(user, nil)

		service, _ := newTestAuthService(userRepo)
		err := service.ChangePassword(ctx, ChangePasswordInput{
			UserID:      user.ID,
			OldPassword: "wrong-password",
			NewPassword: "N3wSup3rSecret!",
		})

		assertDomainErrorCode(t, err, "INVALID_PASSWORD")
		userRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})
}

// =============================================================================
// GetCurrentUser
// =============================================================================

func TestAuthService_GetCurrentUser(t *testing.T) {
	ctx := context.Background()

	t.Run("returns the user", func(t *testing.T) {
		user := newActiveUser(t)
		userRepo := new(MockUserRepository)
		userRepo.On("FindByID", mock.Anything, user.ID).Return(user, nil)

		service, _ := newTestAuthService(userRepo)
		result, err := service.GetCurrentUser(ctx, GetCurrentUserInput{UserID: user.ID})

		require.NoError(t, err)
		assert.Equal(t, user.Email, result.User.Email)
		assert.Equal(t, "Jon Doe", result.User.FullName)
	})

	t.Run("returns USER_NOT_FOUND for an unknown user", func(t *testing.T) {
		userRepo := new(MockUserRepository)
		userRepo.On("FindByID", mock.Anything, mock.Anything).Return(nil, shared.ErrNotFound)

		service, _ := newTestAuthService(userRepo)
		_, err := service.GetCurrentUser(ctx, GetCurrentUserInput{UserID: uuid.New()})

		assertDomainErrorCode(t, err, "USER_NOT_FOUND")
	})
}
