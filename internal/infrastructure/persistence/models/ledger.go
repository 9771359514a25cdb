package models

import (
	"time"

	"github.com/bizbook/backend/internal/domain/ledger"
	"github.com/bizbook/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransactionModel is the persistence model for the Transaction domain entity.
// The derived columns (amount_payable, remaining_balance, payment_status) are
// stored as computed by the domain so list queries never re-derive them.
type TransactionModel struct {
	AggregateModel
	CustomerID       uuid.UUID            `gorm:"type:uuid;not null;index"`
	OrderDetails     string               `gorm:"type:text;not null"`
	ProductDetails   string               `gorm:"type:text"`
	DeliveryDetails  string               `gorm:"type:text"`
	OrderDate        *time.Time           `gorm:"index"`
	DeliveryDate     *time.Time
	DueDate          *time.Time           `gorm:"index"`
	TotalPrice       decimal.Decimal      `gorm:"type:decimal(18,4);not null;default:0"`
	DeliveryFee      decimal.Decimal      `gorm:"type:decimal(18,4);not null;default:0"`
	DiscountApplied  decimal.Decimal      `gorm:"type:decimal(18,4);not null;default:0"`
	AmountPaid       decimal.Decimal      `gorm:"type:decimal(18,4);not null;default:0"`
	AmountPayable    decimal.Decimal      `gorm:"type:decimal(18,4);not null;default:0"`
	RemainingBalance decimal.Decimal      `gorm:"type:decimal(18,4);not null;default:0"`
	PaymentStatus    ledger.PaymentStatus `gorm:"type:varchar(20);not null;default:'pending';index"`
	InvoiceLink      string               `gorm:"type:varchar(500)"`
	ReceiptLink      string               `gorm:"type:varchar(500)"`
}

// TableName returns the table name for GORM
func (TransactionModel) TableName() string {
	return "transactions"
}

// ToDomain converts the persistence model to a domain Transaction entity.
func (m *TransactionModel) ToDomain() *ledger.Transaction {
	return &ledger.Transaction{
		BaseAggregateRoot: shared.BaseAggregateRoot{
			BaseEntity: shared.BaseEntity{
				ID:        m.ID,
				CreatedAt: m.CreatedAt,
				UpdatedAt: m.UpdatedAt,
			},
			Version: m.Version,
		},
		CustomerID:       m.CustomerID,
		OrderDetails:     m.OrderDetails,
		ProductDetails:   m.ProductDetails,
		DeliveryDetails:  m.DeliveryDetails,
		OrderDate:        m.OrderDate,
		DeliveryDate:     m.DeliveryDate,
		DueDate:          m.DueDate,
		TotalPrice:       m.TotalPrice,
		DeliveryFee:      m.DeliveryFee,
		DiscountApplied:  m.DiscountApplied,
		AmountPaid:       m.AmountPaid,
		AmountPayable:    m.AmountPayable,
		RemainingBalance: m.RemainingBalance,
		PaymentStatus:    m.PaymentStatus,
		InvoiceLink:      m.InvoiceLink,
		ReceiptLink:      m.ReceiptLink,
	}
}

// FromDomain populates the persistence model from a domain Transaction entity.
func (m *TransactionModel) FromDomain(t *ledger.Transaction) {
	m.FromDomainAggregateRoot(t.BaseAggregateRoot)
	m.CustomerID = t.CustomerID
	m.OrderDetails = t.OrderDetails
	m.ProductDetails = t.ProductDetails
	m.DeliveryDetails = t.DeliveryDetails
	m.OrderDate = t.OrderDate
	m.DeliveryDate = t.DeliveryDate
	m.DueDate = t.DueDate
	m.TotalPrice = t.TotalPrice
	m.DeliveryFee = t.DeliveryFee
	m.DiscountApplied = t.DiscountApplied
	m.AmountPaid = t.AmountPaid
	m.AmountPayable = t.AmountPayable
	m.RemainingBalance = t.RemainingBalance
	m.PaymentStatus = t.PaymentStatus
	m.InvoiceLink = t.InvoiceLink
	m.ReceiptLink = t.ReceiptLink
}

// TransactionModelFromDomain creates a new persistence model from a domain Transaction entity.
func TransactionModelFromDomain(t *ledger.Transaction) *TransactionModel {
	m := &TransactionModel{}
	m.FromDomain(t)
	return m
}
