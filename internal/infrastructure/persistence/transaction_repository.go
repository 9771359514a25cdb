package persistence

import (
	"context"
	"errors"

	"github.com/bizbook/backend/internal/domain/ledger"
	"github.com/bizbook/backend/internal/domain/shared"
	"github.com/bizbook/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormTransactionRepository implements TransactionRepository using GORM
type GormTransactionRepository struct {
	db *gorm.DB
}

// NewGormTransactionRepository creates a new GormTransactionRepository
func NewGormTransactionRepository(db *gorm.DB) *GormTransactionRepository {
	return &GormTransactionRepository{db: db}
}

// FindByID finds a transaction by its ID
func (r *GormTransactionRepository) FindByID(ctx context.Context, id uuid.UUID) (*ledger.Transaction, error) {
	var model models.TransactionModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByCustomer returns the customer's transactions in creation order
func (r *GormTransactionRepository) FindByCustomer(ctx context.Context, customerID uuid.UUID) ([]ledger.Transaction, error) {
	var transactionModels []models.TransactionModel
	if err := r.db.WithContext(ctx).
		Where("customer_id = ?", customerID).
		Order("created_at ASC").
		Find(&transactionModels).Error; err != nil {
		return nil, err
	}

	transactions := make([]ledger.Transaction, len(transactionModels))
	for i, model := range transactionModels {
		transactions[i] = *model.ToDomain()
	}
	return transactions, nil
}

// FindAll finds transactions matching the filter
func (r *GormTransactionRepository) FindAll(ctx context.Context, filter shared.Filter) ([]ledger.Transaction, error) {
	var transactionModels []models.TransactionModel
	query := r.applyFilter(r.db.WithContext(ctx).Model(&models.TransactionModel{}), filter)

	if err := query.Find(&transactionModels).Error; err != nil {
		return nil, err
	}

	transactions := make([]ledger.Transaction, len(transactionModels))
	for i, model := range transactionModels {
		transactions[i] = *model.ToDomain()
	}
	return transactions, nil
}

// Save creates or updates a transaction
func (r *GormTransactionRepository) Save(ctx context.Context, transaction *ledger.Transaction) error {
	model := models.TransactionModelFromDomain(transaction)
	return r.db.WithContext(ctx).Save(model).Error
}

// SaveWithLock updates a transaction with an optimistic lock on its version
// column. The update only matches the row at the version the aggregate was
// loaded with; zero rows affected means another writer got there first.
func (r *GormTransactionRepository) SaveWithLock(ctx context.Context, transaction *ledger.Transaction) error {
	model := models.TransactionModelFromDomain(transaction)
	result := r.db.WithContext(ctx).
		Model(model).
		Where("id = ? AND version = ?", transaction.ID, transaction.Version-1).
		Updates(model)

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	return nil
}

// Delete deletes a transaction
func (r *GormTransactionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.TransactionModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// CountByCustomer counts a customer's transactions
func (r *GormTransactionRepository) CountByCustomer(ctx context.Context, customerID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.TransactionModel{}).
		Where("customer_id = ?", customerID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// applyFilter applies filter options to the query
func (r *GormTransactionRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		searchPattern := "%" + filter.Search + "%"
		query = query.Where("order_details ILIKE ? OR product_details ILIKE ?",
			searchPattern, searchPattern)
	}

	for key, value := range filter.Filters {
		switch key {
		case "payment_status":
			query = query.Where("payment_status = ?", value)
		case "customer_id":
			query = query.Where("customer_id = ?", value)
		}
	}

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	if filter.OrderBy != "" {
		orderBy := ValidateSortField(filter.OrderBy, TransactionSortFields, "created_at")
		query = query.Order(orderBy + " " + ValidateSortOrder(filter.OrderDir))
	} else {
		query = query.Order("created_at ASC")
	}

	return query
}

// Ensure GormTransactionRepository implements TransactionRepository
var _ ledger.TransactionRepository = (*GormTransactionRepository)(nil)
