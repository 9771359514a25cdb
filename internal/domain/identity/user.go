package identity

import (
	"regexp"
	"strings"
	"time"

	"github.com/bizbook/backend/internal/domain/shared"
	"golang.org/x/crypto/bcrypt"
)

// UserStatus represents the status of a user account
type UserStatus string

const (
	UserStatusPending UserStatus = "pending" // Registered, business profile not yet completed
	UserStatusActive  UserStatus = "active"  // Normal active status
	UserStatusLocked  UserStatus = "locked"  // Locked due to failed attempts/security
	UserStatusBlocked UserStatus = "blocked" // Blocked by an administrator
)

// UserRole represents the role of a user account
type UserRole string

const (
	UserRoleUser  UserRole = "user"
	UserRoleAdmin UserRole = "admin"
)

// TemplateMode selects which invoice/receipt template a user's documents render with
type TemplateMode string

const (
	TemplateModeClassic TemplateMode = "classic"
	TemplateModeModern  TemplateMode = "modern"
)

// Password cost for bcrypt
const bcryptCost = 12

// User represents a business account. Registration is two-step: the account
// is created with personal details in pending status, then completing the
// business profile assigns the business id and activates it.
type User struct {
	shared.BaseAggregateRoot
	Email          string
	FirstName      string
	LastName       string
	Phone          string
	PasswordHash   string
	BusinessName   string
	BusinessEmail  string
	BusinessPhone  string
	BusinessID     string // Immutable once assigned
	Role           UserRole
	Status         UserStatus
	TemplateMode   TemplateMode
	LastLoginAt    *time.Time
	LastLoginIP    string
	FailedAttempts int
	LockedUntil    *time.Time
}

// NewUser creates a new pending user with personal details
func NewUser(email, password, firstName, lastName string) (*User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	if err := validatePassword(password); err != nil {
		return nil, err
	}
	if err := validateName(firstName, "First name"); err != nil {
		return nil, err
	}
	if err := validateName(lastName, "Last name"); err != nil {
		return nil, err
	}

	passwordHash, err := hashPassword(password)
	if err != nil {
		return nil, shared.NewDomainError("PASSWORD_HASH_ERROR", "Failed to hash password")
	}

	return &User{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Email:             email,
		FirstName:         strings.TrimSpace(firstName),
		LastName:          strings.TrimSpace(lastName),
		PasswordHash:      passwordHash,
		Role:              UserRoleUser,
		Status:            UserStatusPending,
		TemplateMode:      TemplateModeClassic,
	}, nil
}

// CompleteBusinessProfile records the business details and assigns the
// generated business id, activating the account. The business id is
// write-once; completing the profile a second time is rejected.
func (u *User) CompleteBusinessProfile(businessName, businessEmail, businessPhone, businessID string) error {
	if u.BusinessID != "" {
		return shared.NewDomainError("BUSINESS_PROFILE_SET", "Business profile has already been completed")
	}

	businessName = strings.TrimSpace(businessName)
	if businessName == "" {
		return shared.NewDomainError("INVALID_BUSINESS_NAME", "Business name cannot be empty")
	}
	if len(businessName) > 200 {
		return shared.NewDomainError("INVALID_BUSINESS_NAME", "Business name cannot exceed 200 characters")
	}
	if businessEmail != "" {
		businessEmail = strings.ToLower(strings.TrimSpace(businessEmail))
		if err := validateEmail(businessEmail); err != nil {
			return err
		}
	}
	if businessID == "" {
		return shared.NewDomainError("INVALID_BUSINESS_ID", "Business ID cannot be empty")
	}

	u.BusinessName = businessName
	u.BusinessEmail = businessEmail
	u.BusinessPhone = strings.TrimSpace(businessPhone)
	u.BusinessID = businessID
	if u.Status == UserStatusPending {
		u.Status = UserStatusActive
	}
	u.UpdatedAt = time.Now()
	u.IncrementVersion()

	return nil
}

// UpdateProfile updates the user's personal details
func (u *User) UpdateProfile(firstName, lastName, phone string) error {
	if err := validateName(firstName, "First name"); err != nil {
		return err
	}
	if err := validateName(lastName, "Last name"); err != nil {
		return err
	}
	if phone != "" && len(phone) > 50 {
		return shared.NewDomainError("INVALID_PHONE", "Phone cannot exceed 50 characters")
	}

	u.FirstName = strings.TrimSpace(firstName)
	u.LastName = strings.TrimSpace(lastName)
	u.Phone = strings.TrimSpace(phone)
	u.UpdatedAt = time.Now()
	u.IncrementVersion()

	return nil
}

// SetTemplateMode sets the document template preference
func (u *User) SetTemplateMode(mode TemplateMode) error {
	switch mode {
	case TemplateModeClassic, TemplateModeModern:
	default:
		return shared.NewDomainError("INVALID_TEMPLATE_MODE", "Unknown template mode")
	}

	u.TemplateMode = mode
	u.UpdatedAt = time.Now()
	u.IncrementVersion()

	return nil
}

// ChangePassword changes the user's password after verifying the current one
func (u *User) ChangePassword(oldPassword, newPassword string) error {
	if !u.VerifyPassword(oldPassword) {
		return shared.NewDomainError("INVALID_PASSWORD", "Current password is incorrect")
	}

	return u.SetPassword(newPassword)
}

// SetPassword sets a new password without checking the old one
func (u *User) SetPassword(newPassword string) error {
	if err := validatePassword(newPassword); err != nil {
		return err
	}

	passwordHash, err := hashPassword(newPassword)
	if err != nil {
		return shared.NewDomainError("PASSWORD_HASH_ERROR", "Failed to hash password")
	}

	u.PasswordHash = passwordHash
	u.UpdatedAt = time.Now()
	u.IncrementVersion()

	return nil
}

// VerifyPassword verifies if the provided password matches
func (u *User) VerifyPassword(password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password))
	return err == nil
}

// Block blocks the user account
func (u *User) Block() error {
	if u.Status == UserStatusBlocked {
		return shared.NewDomainError("ALREADY_BLOCKED", "User is already blocked")
	}

	u.Status = UserStatusBlocked
	u.UpdatedAt = time.Now()
	u.IncrementVersion()

	return nil
}

// Unblock restores a blocked user account
func (u *User) Unblock() error {
	if u.Status != UserStatusBlocked {
		return shared.NewDomainError("NOT_BLOCKED", "User is not blocked")
	}

	u.Status = UserStatusActive
	u.FailedAttempts = 0
	u.LockedUntil = nil
	u.UpdatedAt = time.Now()
	u.IncrementVersion()

	return nil
}

// Lock locks the user account for the given duration
func (u *User) Lock(duration time.Duration) error {
	if u.Status == UserStatusBlocked {
		return shared.NewDomainError("USER_BLOCKED", "Cannot lock a blocked user")
	}

	u.Status = UserStatusLocked
	if duration > 0 {
		lockedUntil := time.Now().Add(duration)
		u.LockedUntil = &lockedUntil
	}
	u.UpdatedAt = time.Now()
	u.IncrementVersion()

	return nil
}

// Unlock unlocks the user account
func (u *User) Unlock() error {
	if u.Status != UserStatusLocked {
		return shared.NewDomainError("NOT_LOCKED", "User is not locked")
	}

	u.Status = UserStatusActive
	u.FailedAttempts = 0
	u.LockedUntil = nil
	u.UpdatedAt = time.Now()
	u.IncrementVersion()

	return nil
}

// RecordLoginSuccess records a successful login
func (u *User) RecordLoginSuccess(ip string) {
	now := time.Now()
	u.LastLoginAt = &now
	u.LastLoginIP = ip
	u.FailedAttempts = 0
	u.UpdatedAt = now
	u.IncrementVersion()
}

// RecordLoginFailure records a failed login attempt.
// Returns true if the account was locked as a result.
func (u *User) RecordLoginFailure(maxAttempts int, lockDuration time.Duration) bool {
	u.FailedAttempts++
	u.UpdatedAt = time.Now()
	u.IncrementVersion()

	if u.FailedAttempts >= maxAttempts {
		_ = u.Lock(lockDuration)
		return true
	}

	return false
}

// IsActive returns true if the user is active
func (u *User) IsActive() bool {
	return u.Status == UserStatusActive
}

// IsLocked returns true if the user is locked and the lock has not expired
func (u *User) IsLocked() bool {
	if u.Status != UserStatusLocked {
		return false
	}
	if u.LockedUntil != nil && time.Now().After(*u.LockedUntil) {
		return false
	}
	return true
}

// HasBusinessProfile returns true once the business profile step is done
func (u *User) HasBusinessProfile() bool {
	return u.BusinessID != ""
}

// CanLogin returns true if the user can login. Pending users may login to
// finish the business profile step.
func (u *User) CanLogin() bool {
	if u.Status == UserStatusBlocked {
		return false
	}
	if u.IsLocked() {
		return false
	}
	return true
}

// FullName returns the user's full name
func (u *User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// Validation functions

func validateName(name, label string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return shared.NewDomainError("INVALID_NAME", label+" cannot be empty")
	}
	if len(name) > 100 {
		return shared.NewDomainError("INVALID_NAME", label+" cannot exceed 100 characters")
	}
	return nil
}

func validatePassword(password string) error {
	if password == "" {
		return shared.NewDomainError("INVALID_PASSWORD", "Password cannot be empty")
	}
	if len(password) < 8 {
		return shared.NewDomainError("INVALID_PASSWORD", "Password must be at least 8 characters")
	}
	if len(password) > 128 {
		return shared.NewDomainError("INVALID_PASSWORD", "Password cannot exceed 128 characters")
	}

	hasLetter := regexp.MustCompile(`[a-zA-Z]`).MatchString(password)
	hasNumber := regexp.MustCompile(`[0-9]`).MatchString(password)
	if !hasLetter || !hasNumber {
		return shared.NewDomainError("INVALID_PASSWORD", "Password must contain at least one letter and one number")
	}

	return nil
}

func validateEmail(email string) error {
	if email == "" {
		return shared.NewDomainError("INVALID_EMAIL", "Email cannot be empty")
	}
	if len(email) > 200 {
		return shared.NewDomainError("INVALID_EMAIL", "Email cannot exceed 200 characters")
	}

	emailRegex := regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
	if !emailRegex.MatchString(email) {
		return shared.NewDomainError("INVALID_EMAIL", "Invalid email format")
	}

	return nil
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
