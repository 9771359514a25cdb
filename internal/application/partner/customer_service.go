package partner

import (
	"context"

	"github.com/google/uuid"

	"github.com/bizbook/backend/internal/domain/ledger"
	"github.com/bizbook/backend/internal/domain/partner"
	"github.com/bizbook/backend/internal/domain/shared"
)

// CustomerService handles customer-related business operations. Every
// operation is scoped to the calling user; a customer owned by another user
// behaves as if it did not exist.
type CustomerService struct {
	customerRepo    partner.CustomerRepository
	transactionRepo ledger.TransactionRepository
}

// NewCustomerService creates a new CustomerService
func NewCustomerService(customerRepo partner.CustomerRepository, transactionRepo ledger.TransactionRepository) *CustomerService {
	return &CustomerService{
		customerRepo:    customerRepo,
		transactionRepo: transactionRepo,
	}
}

// Create creates a new customer for the user. Duplicate names, emails and
// phones are allowed; two customers named the same are distinct records.
func (s *CustomerService) Create(ctx context.Context, userID uuid.UUID, req CreateCustomerRequest) (*CustomerResponse, error) {
	customer, err := partner.NewCustomer(userID, req.Name)
	if err != nil {
		return nil, err
	}

	if req.Email != "" || req.Phone != "" {
		if err := customer.SetContact(req.Email, req.Phone); err != nil {
			return nil, err
		}
	}

	if req.ShippingAddress != "" {
		if err := customer.SetShippingAddress(req.ShippingAddress); err != nil {
			return nil, err
		}
	}

	if err := s.customerRepo.Save(ctx, customer); err != nil {
		return nil, err
	}

	response := ToCustomerResponse(customer)
	return &response, nil
}

// GetByID retrieves a customer by ID
func (s *CustomerService) GetByID(ctx context.Context, userID, customerID uuid.UUID) (*CustomerResponse, error) {
	customer, err := s.customerRepo.FindByIDForUser(ctx, userID, customerID)
	if err != nil {
		return nil, err
	}

	response := ToCustomerResponse(customer)
	return &response, nil
}

// List retrieves the user's customers with filtering and pagination
func (s *CustomerService) List(ctx context.Context, userID uuid.UUID, filter CustomerListFilter) ([]CustomerResponse, int64, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}
	if filter.OrderBy == "" {
		filter.OrderBy = "name"
	}
	if filter.OrderDir == "" {
		filter.OrderDir = "asc"
	}

	domainFilter := shared.Filter{
		Page:     filter.Page,
		PageSize: filter.PageSize,
		OrderBy:  filter.OrderBy,
		OrderDir: filter.OrderDir,
		Search:   filter.Search,
		Filters:  make(map[string]any),
	}

	customers, err := s.customerRepo.FindAllForUser(ctx, userID, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	total, err := s.customerRepo.CountForUser(ctx, userID, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	return ToCustomerResponses(customers), total, nil
}

// Update updates a customer
func (s *CustomerService) Update(ctx context.Context, userID, customerID uuid.UUID, req UpdateCustomerRequest) (*CustomerResponse, error) {
	customer, err := s.customerRepo.FindByIDForUser(ctx, userID, customerID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		if err := customer.Rename(*req.Name); err != nil {
			return nil, err
		}
	}

	if req.Email != nil || req.Phone != nil {
		email := customer.Email
		phone := customer.Phone
		if req.Email != nil {
			email = *req.Email
		}
		if req.Phone != nil {
			phone = *req.Phone
		}
		if err := customer.SetContact(email, phone); err != nil {
			return nil, err
		}
	}

	if req.ShippingAddress != nil {
		if err := customer.SetShippingAddress(*req.ShippingAddress); err != nil {
			return nil, err
		}
	}

	if err := s.customerRepo.Save(ctx, customer); err != nil {
		return nil, err
	}

	response := ToCustomerResponse(customer)
	return &response, nil
}

// Delete deletes a customer. A customer with recorded transactions cannot be
// deleted; the transactions must be removed first so the ledger keeps its
// history intact.
func (s *CustomerService) Delete(ctx context.Context, userID, customerID uuid.UUID) error {
	customer, err := s.customerRepo.FindByIDForUser(ctx, userID, customerID)
	if err != nil {
		return err
	}

	count, err := s.transactionRepo.CountByCustomer(ctx, customer.ID)
	if err != nil {
		return err
	}
	if count > 0 {
		return shared.NewDomainError("CUSTOMER_HAS_TRANSACTIONS", "Cannot delete a customer with recorded transactions")
	}

	return s.customerRepo.Delete(ctx, customer.ID)
}
