package ledger

import (
	"context"

	"github.com/bizbook/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// TransactionRepository defines the interface for transaction persistence
type TransactionRepository interface {
	// FindByID finds a transaction by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*Transaction, error)

	// FindByCustomer returns the customer's transactions in creation order
	FindByCustomer(ctx context.Context, customerID uuid.UUID) ([]Transaction, error)

	// FindAll finds transactions matching the filter
	FindAll(ctx context.Context, filter shared.Filter) ([]Transaction, error)

	// Save creates or updates a transaction
	Save(ctx context.Context, transaction *Transaction) error

	// SaveWithLock updates a transaction with an optimistic lock on its
	// version column. Returns CONCURRENCY_CONFLICT when the row was changed
	// by another writer since the aggregate was loaded.
	SaveWithLock(ctx context.Context, transaction *Transaction) error

	// Delete deletes a transaction
	Delete(ctx context.Context, id uuid.UUID) error

	// CountByCustomer counts a customer's transactions
	CountByCustomer(ctx context.Context, customerID uuid.UUID) (int64, error)
}
