package partner

import (
	"context"

	"github.com/google/uuid"

	"github.com/bizbook/backend/internal/domain/shared"
)

// CustomerRepository is the persistence contract for customers. The ForUser
// variants scope every read to the owning user; a customer is never visible
// outside the account that created it.
type CustomerRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Customer, error)
	FindByIDForUser(ctx context.Context, userID, id uuid.UUID) (*Customer, error)
	FindAllForUser(ctx context.Context, userID uuid.UUID, filter shared.Filter) ([]Customer, error)
	Save(ctx context.Context, customer *Customer) error
	Delete(ctx context.Context, id uuid.UUID) error
	CountForUser(ctx context.Context, userID uuid.UUID, filter shared.Filter) (int64, error)
}
