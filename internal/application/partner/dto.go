package partner

import (
	"time"

	"github.com/google/uuid"

	"github.com/bizbook/backend/internal/domain/partner"
)

// =============================================================================
// Customer DTOs
// =============================================================================

// CreateCustomerRequest represents a request to create a new customer
type CreateCustomerRequest struct {
	Name            string `json:"name" binding:"required,min=1,max=200"`
	Email           string `json:"email" binding:"omitempty,email,max=200"`
	Phone           string `json:"phone" binding:"max=50"`
	ShippingAddress string `json:"shipping_address" binding:"max=500"`
}

// UpdateCustomerRequest represents a request to update a customer.
// Nil fields are left unchanged.
type UpdateCustomerRequest struct {
	Name            *string `json:"name" binding:"omitempty,min=1,max=200"`
	Email           *string `json:"email" binding:"omitempty,email,max=200"`
	Phone           *string `json:"phone" binding:"omitempty,max=50"`
	ShippingAddress *string `json:"shipping_address" binding:"omitempty,max=500"`
}

// CustomerListFilter represents filtering options for customer lists
type CustomerListFilter struct {
	Search   string `form:"search"`
	Page     int    `form:"page"`
	PageSize int    `form:"page_size"`
	OrderBy  string `form:"order_by"`
	OrderDir string `form:"order_dir"`
}

// CustomerResponse represents a customer in API responses
type CustomerResponse struct {
	ID              uuid.UUID `json:"id"`
	Name            string    `json:"name"`
	Email           string    `json:"email"`
	Phone           string    `json:"phone"`
	ShippingAddress string    `json:"shipping_address"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
	Version         int       `json:"version"`
}

// ToCustomerResponse converts a domain Customer to CustomerResponse
func ToCustomerResponse(c *partner.Customer) CustomerResponse {
	return CustomerResponse{
		ID:              c.ID,
		Name:            c.Name,
		Email:           c.Email,
		Phone:           c.Phone,
		ShippingAddress: c.ShippingAddress,
		CreatedAt:       c.CreatedAt,
		UpdatedAt:       c.UpdatedAt,
		Version:         c.Version,
	}
}

// ToCustomerResponses converts a slice of domain Customers
func ToCustomerResponses(customers []partner.Customer) []CustomerResponse {
	responses := make([]CustomerResponse, len(customers))
	for i := range customers {
		responses[i] = ToCustomerResponse(&customers[i])
	}
	return responses
}
