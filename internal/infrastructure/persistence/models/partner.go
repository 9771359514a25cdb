package models

import (
	"github.com/bizbook/backend/internal/domain/partner"
	"github.com/bizbook/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// CustomerModel is the persistence model for the Customer domain entity.
type CustomerModel struct {
	AggregateModel
	UserID          uuid.UUID `gorm:"type:uuid;not null;index"`
	Name            string    `gorm:"type:varchar(200);not null"`
	Email           string    `gorm:"type:varchar(200);index"`
	Phone           string    `gorm:"type:varchar(50);index"`
	ShippingAddress string    `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (CustomerModel) TableName() string {
	return "customers"
}

// ToDomain converts the persistence model to a domain Customer entity.
func (m *CustomerModel) ToDomain() *partner.Customer {
	return &partner.Customer{
		BaseAggregateRoot: shared.BaseAggregateRoot{
			BaseEntity: shared.BaseEntity{
				ID:        m.ID,
				CreatedAt: m.CreatedAt,
				UpdatedAt: m.UpdatedAt,
			},
			Version: m.Version,
		},
		UserID:          m.UserID,
		Name:            m.Name,
		Email:           m.Email,
		Phone:           m.Phone,
		ShippingAddress: m.ShippingAddress,
	}
}

// FromDomain populates the persistence model from a domain Customer entity.
func (m *CustomerModel) FromDomain(c *partner.Customer) {
	m.FromDomainAggregateRoot(c.BaseAggregateRoot)
	m.UserID = c.UserID
	m.Name = c.Name
	m.Email = c.Email
	m.Phone = c.Phone
	m.ShippingAddress = c.ShippingAddress
}

// CustomerModelFromDomain creates a new persistence model from a domain Customer entity.
func CustomerModelFromDomain(c *partner.Customer) *CustomerModel {
	m := &CustomerModel{}
	m.FromDomain(c)
	return m
}
