package partner

import (
	"regexp"
	"strings"
	"time"

	"github.com/bizbook/backend/internal/domain/shared"
	"github.com/google/uuid"
)

var (
	phoneRe = regexp.MustCompile(`^[\d\s\-\(\)\+]+$`)
	emailRe = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
)

// Customer represents a customer of one business account. Customers are
// scoped to their owning user; names, emails and phones carry no uniqueness
// constraints, duplicates are allowed.
type Customer struct {
	shared.BaseAggregateRoot
	UserID          uuid.UUID
	Name            string
	Email           string
	Phone           string
	ShippingAddress string
}

// NewCustomer creates a new customer owned by the given user
func NewCustomer(userID uuid.UUID, name string) (*Customer, error) {
	if userID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_USER_ID", "Owner user ID cannot be empty")
	}
	if err := validateCustomerName(name); err != nil {
		return nil, err
	}

	return &Customer{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		UserID:            userID,
		Name:              strings.TrimSpace(name),
	}, nil
}

// Rename changes the customer's name
func (c *Customer) Rename(name string) error {
	if err := validateCustomerName(name); err != nil {
		return err
	}

	c.Name = strings.TrimSpace(name)
	c.touch()
	return nil
}

// SetContact sets the customer's contact information. Empty values clear
// the corresponding field.
func (c *Customer) SetContact(email, phone string) error {
	if email != "" {
		email = strings.ToLower(strings.TrimSpace(email))
		if err := validateEmail(email); err != nil {
			return err
		}
	}
	if phone != "" {
		if err := validatePhone(phone); err != nil {
			return err
		}
	}

	c.Email = email
	c.Phone = strings.TrimSpace(phone)
	c.touch()
	return nil
}

// SetShippingAddress sets the customer's shipping address
func (c *Customer) SetShippingAddress(address string) error {
	if len(address) > 500 {
		return shared.NewDomainError("INVALID_ADDRESS", "Shipping address cannot exceed 500 characters")
	}

	c.ShippingAddress = strings.TrimSpace(address)
	c.touch()
	return nil
}

// BelongsTo reports whether the customer is owned by the given user
func (c *Customer) BelongsTo(userID uuid.UUID) bool {
	return c.UserID == userID
}

func (c *Customer) touch() {
	c.UpdatedAt = time.Now()
	c.IncrementVersion()
}

func validateCustomerName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return shared.NewDomainError("INVALID_NAME", "Customer name cannot be empty")
	}
	if len(name) > 200 {
		return shared.NewDomainError("INVALID_NAME", "Customer name cannot exceed 200 characters")
	}
	return nil
}

func validatePhone(phone string) error {
	if len(phone) > 50 {
		return shared.NewDomainError("INVALID_PHONE", "Phone number cannot exceed 50 characters")
	}
	if !phoneRe.MatchString(phone) {
		return shared.NewDomainError("INVALID_PHONE", "Invalid phone number format")
	}
	return nil
}

func validateEmail(email string) error {
	if len(email) > 200 {
		return shared.NewDomainError("INVALID_EMAIL", "Email cannot exceed 200 characters")
	}
	if !emailRe.MatchString(email) {
		return shared.NewDomainError("INVALID_EMAIL", "Invalid email format")
	}
	return nil
}
