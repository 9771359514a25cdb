package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/bizbook/backend/internal/domain/partner"
	"github.com/bizbook/backend/internal/domain/shared"
	"github.com/bizbook/backend/internal/infrastructure/persistence/models"
)

// GormCustomerRepository persists customers through GORM. Every query that
// serves a user-facing operation is scoped by user_id, customers are never
// visible across accounts.
type GormCustomerRepository struct {
	db *gorm.DB
}

func NewGormCustomerRepository(db *gorm.DB) *GormCustomerRepository {
	return &GormCustomerRepository{db: db}
}

var _ partner.CustomerRepository = (*GormCustomerRepository)(nil)

func (r *GormCustomerRepository) FindByID(ctx context.Context, id uuid.UUID) (*partner.Customer, error) {
	var m models.CustomerModel
	if err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		return nil, translateNotFound(err)
	}
	return m.ToDomain(), nil
}

// FindByIDForUser loads a customer only when it belongs to userID.
func (r *GormCustomerRepository) FindByIDForUser(ctx context.Context, userID, id uuid.UUID) (*partner.Customer, error) {
	var m models.CustomerModel
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND id = ?", userID, id).
		First(&m).Error
	if err != nil {
		return nil, translateNotFound(err)
	}
	return m.ToDomain(), nil
}

// FindAllForUser lists the user's customers with search, ordering and
// pagination applied.
func (r *GormCustomerRepository) FindAllForUser(ctx context.Context, userID uuid.UUID, filter shared.Filter) ([]partner.Customer, error) {
	query := r.forUser(ctx, userID)
	query = applyCustomerSearch(query, filter)
	query = applyCustomerOrdering(query, filter)
	if filter.Page > 0 && filter.PageSize > 0 {
		query = query.Offset(filter.Offset()).Limit(filter.PageSize)
	}

	var rows []models.CustomerModel
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}

	customers := make([]partner.Customer, len(rows))
	for i, m := range rows {
		customers[i] = *m.ToDomain()
	}
	return customers, nil
}

func (r *GormCustomerRepository) Save(ctx context.Context, customer *partner.Customer) error {
	return r.db.WithContext(ctx).Save(models.CustomerModelFromDomain(customer)).Error
}

func (r *GormCustomerRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.CustomerModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// CountForUser counts the user's customers under the same search criteria
// FindAllForUser uses.
func (r *GormCustomerRepository) CountForUser(ctx context.Context, userID uuid.UUID, filter shared.Filter) (int64, error) {
	var count int64
	query := applyCustomerSearch(r.forUser(ctx, userID), filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *GormCustomerRepository) forUser(ctx context.Context, userID uuid.UUID) *gorm.DB {
	return r.db.WithContext(ctx).Model(&models.CustomerModel{}).Where("user_id = ?", userID)
}

func applyCustomerSearch(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search == "" {
		return query
	}
	pattern := "%" + filter.Search + "%"
	return query.Where("name ILIKE ? OR phone ILIKE ? OR email ILIKE ?",
		pattern, pattern, pattern)
}

func applyCustomerOrdering(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.OrderBy == "" {
		return query.Order("name ASC, created_at ASC")
	}
	orderBy := ValidateSortField(filter.OrderBy, CustomerSortFields, "name")
	return query.Order(orderBy + " " + ValidateSortOrder(filter.OrderDir))
}

func translateNotFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return shared.ErrNotFound
	}
	return err
}
