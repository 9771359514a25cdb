package partner

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/bizbook/backend/internal/domain/ledger"
	"github.com/bizbook/backend/internal/domain/partner"
	"github.com/bizbook/backend/internal/domain/shared"
)

// =============================================================================
// Mock Repositories
// =============================================================================

// MockCustomerRepository is a mock implementation of partner.CustomerRepository
type MockCustomerRepository struct {
	mock.Mock
}

func (m *MockCustomerRepository) FindByID(ctx context.Context, id uuid.UUID) (*partner.Customer, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*partner.Customer), args.Error(1)
}

func (m *MockCustomerRepository) FindByIDForUser(ctx context.Context, userID, id uuid.UUID) (*partner.Customer, error) {
	args := m.Called(ctx, userID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*partner.Customer), args.Error(1)
}

func (m *MockCustomerRepository) FindAllForUser(ctx context.Context, userID uuid.UUID, filter shared.Filter) ([]partner.Customer, error) {
	args := m.Called(ctx, userID, filter)
	return args.Get(0).([]partner.Customer), args.Error(1)
}

func (m *MockCustomerRepository) Save(ctx context.Context, customer *partner.Customer) error {
	args := m.Called(ctx, customer)
	return args.Error(0)
}

func (m *MockCustomerRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockCustomerRepository) CountForUser(ctx context.Context, userID uuid.UUID, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, userID, filter)
	return args.Get(0).(int64), args.Error(1)
}

// MockTransactionRepository is a mock implementation of ledger.TransactionRepository
type MockTransactionRepository struct {
	mock.Mock
}

func (m *MockTransactionRepository) FindByID(ctx context.Context, id uuid.UUID) (*ledger.Transaction, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledger.Transaction), args.Error(1)
}

func (m *MockTransactionRepository) FindByCustomer(ctx context.Context, customerID uuid.UUID) ([]ledger.Transaction, error) {
	args := m.Called(ctx, customerID)
	return args.Get(0).([]ledger.Transaction), args.Error(1)
}

func (m *MockTransactionRepository) FindAll(ctx context.Context, filter shared.Filter) ([]ledger.Transaction, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]ledger.Transaction), args.Error(1)
}

func (m *MockTransactionRepository) Save(ctx context.Context, transaction *ledger.Transaction) error {
	args := m.Called(ctx, transaction)
	return args.Error(0)
}

func (m *MockTransactionRepository) SaveWithLock(ctx context.Context, transaction *ledger.Transaction) error {
	args := m.Called(ctx, transaction)
	return args.Error(0)
}

func (m *MockTransactionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockTransactionRepository) CountByCustomer(ctx context.Context, customerID uuid.UUID) (int64, error) {
	args := m.Called(ctx, customerID)
	return args.Get(0).(int64), args.Error(1)
}

// =============================================================================
// Helpers
// =============================================================================

func newTestCustomer(t *testing.T, userID uuid.UUID) *partner.Customer {
	t.Helper()
	customer, err := partner.NewCustomer(userID, "Ada's Bakery")
	require.NoError(t, err)
	return customer
}

// =============================================================================
// Tests
// =============================================================================

func TestCustomerService_Create(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()

	t.Run("creates a customer with contact details", func(t *testing.T) {
		customerRepo := new(MockCustomerRepository)
		customerRepo.On("Save", mock.Anything, mock.AnythingOfType("*partner.Customer")).Return(nil)

		service := NewCustomerService(customerRepo, new(MockTransactionRepository))
		result, err := service.Create(ctx, userID, CreateCustomerRequest{
			Name:            "Ada's Bakery",
			Email:           "Ada@Example.com",
			Phone:           "+15550101",
			ShippingAddress: "12 Baker Street",
		})

		require.NoError(t, err)
		assert.Equal(t, "Ada's Bakery", result.Name)
		assert.Equal(t, "ada@example.com", result.Email)
		assert.Equal(t, "12 Baker Street", result.ShippingAddress)
		customerRepo.AssertExpectations(t)
	})

	t.Run("allows duplicate names", func(t *testing.T) {
		customerRepo := new(MockCustomerRepository)
		customerRepo.On("Save", mock.Anything, mock.Anything).Return(nil).Twice()

		service := NewCustomerService(customerRepo, new(MockTransactionRepository))
		first, err := service.Create(ctx, userID, CreateCustomerRequest{Name: "Ada's Bakery"})
		require.NoError(t, err)
		second, err := service.Create(ctx, userID, CreateCustomerRequest{Name: "Ada's Bakery"})
		require.NoError(t, err)

		assert.NotEqual(t, first.ID, second.ID)
	})

	t.Run("rejects an empty name", func(t *testing.T) {
		customerRepo := new(MockCustomerRepository)
		service := NewCustomerService(customerRepo, new(MockTransactionRepository))

		_, err := service.Create(ctx, userID, CreateCustomerRequest{Name: "   "})

		assert.Error(t, err)
		customerRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})
}

func TestCustomerService_GetByID(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()

	t.Run("returns an owned customer", func(t *testing.T) {
		customer := newTestCustomer(t, userID)
		customerRepo := new(MockCustomerRepository)
		customerRepo.On("FindByIDForUser", mock.Anything, userID, customer.ID).Return(customer, nil)

		service := NewCustomerService(customerRepo, new(MockTransactionRepository))
		result, err := service.GetByID(ctx, userID, customer.ID)

		require.NoError(t, err)
		assert.Equal(t, customer.ID, result.ID)
	})

	t.Run("hides another user's customer", func(t *testing.T) {
		customerRepo := new(MockCustomerRepository)
		customerRepo.On("FindByIDForUser", mock.Anything, userID, mock.Anything).Return(nil, shared.ErrNotFound)

		service := NewCustomerService(customerRepo, new(MockTransactionRepository))
		_, err := service.GetByID(ctx, userID, uuid.New())

		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestCustomerService_List(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()

	t.Run("applies default pagination and ordering", func(t *testing.T) {
		customers := []partner.Customer{*newTestCustomer(t, userID)}
		customerRepo := new(MockCustomerRepository)
		customerRepo.On("FindAllForUser", mock.Anything, userID, mock.MatchedBy(func(f shared.Filter) bool {
			return f.Page == 1 && f.PageSize == 20 && f.OrderBy == "name" && f.OrderDir == "asc"
		})).Return(customers, nil)
		customerRepo.On("CountForUser", mock.Anything, userID, mock.Anything).Return(int64(1), nil)

		service := NewCustomerService(customerRepo, new(MockTransactionRepository))
		result, total, err := service.List(ctx, userID, CustomerListFilter{})

		require.NoError(t, err)
		assert.Len(t, result, 1)
		assert.Equal(t, int64(1), total)
	})

	t.Run("passes the search term through", func(t *testing.T) {
		customerRepo := new(MockCustomerRepository)
		customerRepo.On("FindAllForUser", mock.Anything, userID, mock.MatchedBy(func(f shared.Filter) bool {
			return f.Search == "Ada"
		})).Return([]partner.Customer{}, nil)
		customerRepo.On("CountForUser", mock.Anything, userID, mock.Anything).Return(int64(0), nil)

		service := NewCustomerService(customerRepo, new(MockTransactionRepository))
		_, _, err := service.List(ctx, userID, CustomerListFilter{Search: "Ada"})

		require.NoError(t, err)
		customerRepo.AssertExpectations(t)
	})
}

func TestCustomerService_Update(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()

	strPtr := func(s string) *string { return &s }

	t.Run("updates only the provided fields", func(t *testing.T) {
		customer := newTestCustomer(t, userID)
		require.NoError(t, customer.SetContact("ada@example.com", "+15550101"))

		customerRepo := new(MockCustomerRepository)
		customerRepo.On("FindByIDForUser", mock.Anything, userID, customer.ID).Return(customer, nil)
		customerRepo.On("Save", mock.Anything, customer).Return(nil)

		service := NewCustomerService(customerRepo, new(MockTransactionRepository))
		result, err := service.Update(ctx, userID, customer.ID, UpdateCustomerRequest{
			Name: strPtr("Ada's Patisserie"),
		})

		require.NoError(t, err)
		assert.Equal(t, "Ada's Patisserie", result.Name)
		assert.Equal(t, "ada@example.com", result.Email)
		assert.Equal(t, "+15550101", result.Phone)
	})

	t.Run("clears contact fields set to empty strings", func(t *testing.T) {
		customer := newTestCustomer(t, userID)
		require.NoError(t, customer.SetContact("ada@example.com", "+15550101"))

		customerRepo := new(MockCustomerRepository)
		customerRepo.On("FindByIDForUser", mock.Anything, userID, customer.ID).Return(customer, nil)
		customerRepo.On("Save", mock.Anything, customer).Return(nil)

		service := NewCustomerService(customerRepo, new(MockTransactionRepository))
		result, err := service.Update(ctx, userID, customer.ID, UpdateCustomerRequest{
			Email: strPtr(""),
		})

		require.NoError(t, err)
		assert.Empty(t, result.Email)
		assert.Equal(t, "+15550101", result.Phone)
	})

	t.Run("rejects an invalid email", func(t *testing.T) {
		customer := newTestCustomer(t, userID)
		customerRepo := new(MockCustomerRepository)
		customerRepo.On("FindByIDForUser", mock.Anything, userID, customer.ID).Return(customer, nil)

		service := NewCustomerService(customerRepo, new(MockTransactionRepository))
		_, err := service.Update(ctx, userID, customer.ID, UpdateCustomerRequest{
			Email: strPtr("not-an-email"),
		})

		assert.Error(t, err)
		customerRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})
}

func TestCustomerService_Delete(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()

	t.Run("deletes a customer without transactions", func(t *testing.T) {
		customer := newTestCustomer(t, userID)
		customerRepo := new(MockCustomerRepository)
		customerRepo.On("FindByIDForUser", mock.Anything, userID, customer.ID).Return(customer, nil)
		customerRepo.On("Delete", mock.Anything, customer.ID).Return(nil)

		transactionRepo := new(MockTransactionRepository)
		transactionRepo.On("CountByCustomer", mock.Anything, customer.ID).Return(int64(0), nil)

		service := NewCustomerService(customerRepo, transactionRepo)
		err := service.Delete(ctx, userID, customer.ID)

		require.NoError(t, err)
		customerRepo.AssertExpectations(t)
	})

	t.Run("refuses to delete a customer with transactions", func(t *testing.T) {
		customer := newTestCustomer(t, userID)
		customerRepo := new(MockCustomerRepository)
		customerRepo.On("FindByIDForUser", mock.Anything, userID, customer.ID).Return(customer, nil)

		transactionRepo := new(MockTransactionRepository)
		transactionRepo.On("CountByCustomer", mock.Anything, customer.ID).Return(int64(3), nil)

		service := NewCustomerService(customerRepo, transactionRepo)
		err := service.Delete(ctx, userID, customer.ID)

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "CUSTOMER_HAS_TRANSACTIONS", domainErr.Code)
		customerRepo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	})
}
