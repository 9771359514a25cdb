package ledger

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/bizbook/backend/internal/domain/ledger"
)

// =============================================================================
// Transaction DTOs
// =============================================================================

// CreateTransactionRequest represents a request to record a new transaction
type CreateTransactionRequest struct {
	CustomerID      uuid.UUID       `json:"customer_id" binding:"required"`
	OrderDetails    string          `json:"order_details" binding:"required,min=1"`
	ProductDetails  string          `json:"product_details"`
	DeliveryDetails string          `json:"delivery_details"`
	OrderDate       *time.Time      `json:"order_date"`
	DeliveryDate    *time.Time      `json:"delivery_date"`
	DueDate         *time.Time      `json:"due_date"`
	TotalPrice      decimal.Decimal `json:"total_price"`
	DeliveryFee     decimal.Decimal `json:"delivery_fee"`
	DiscountApplied decimal.Decimal `json:"discount_applied"`
	AmountPaid      decimal.Decimal `json:"amount_paid"`
}

// UpdateTransactionRequest represents a request to update a transaction.
// Nil fields are left unchanged, except the dates: when SetDates is true the
// three date fields replace the stored ones wholesale, so a nil date clears.
type UpdateTransactionRequest struct {
	OrderDetails    *string          `json:"order_details" binding:"omitempty,min=1"`
	ProductDetails  *string          `json:"product_details"`
	DeliveryDetails *string          `json:"delivery_details"`
	OrderDate       *time.Time       `json:"order_date"`
	DeliveryDate    *time.Time       `json:"delivery_date"`
	DueDate         *time.Time       `json:"due_date"`
	SetDates        bool             `json:"set_dates"`
	TotalPrice      *decimal.Decimal `json:"total_price"`
	DeliveryFee     *decimal.Decimal `json:"delivery_fee"`
	DiscountApplied *decimal.Decimal `json:"discount_applied"`
	InvoiceLink     *string          `json:"invoice_link" binding:"omitempty,max=500"`
	ReceiptLink     *string          `json:"receipt_link" binding:"omitempty,max=500"`
}

// ApplyPaymentRequest represents a payment recorded against a transaction
type ApplyPaymentRequest struct {
	Amount decimal.Decimal `json:"amount" binding:"required"`
}

// TransactionListFilter represents filtering options for transaction lists
type TransactionListFilter struct {
	CustomerID    uuid.UUID `form:"customer_id"`
	PaymentStatus string    `form:"payment_status" binding:"omitempty,oneof=pending paid"`
	Search        string    `form:"search"`
	Page          int       `form:"page"`
	PageSize      int       `form:"page_size"`
}

// TransactionResponse represents a transaction in API responses
type TransactionResponse struct {
	ID               uuid.UUID       `json:"id"`
	CustomerID       uuid.UUID       `json:"customer_id"`
	OrderDetails     string          `json:"order_details"`
	ProductDetails   string          `json:"product_details"`
	DeliveryDetails  string          `json:"delivery_details"`
	OrderDate        *time.Time      `json:"order_date"`
	DeliveryDate     *time.Time      `json:"delivery_date"`
	DueDate          *time.Time      `json:"due_date"`
	TotalPrice       decimal.Decimal `json:"total_price"`
	DeliveryFee      decimal.Decimal `json:"delivery_fee"`
	DiscountApplied  decimal.Decimal `json:"discount_applied"`
	AmountPaid       decimal.Decimal `json:"amount_paid"`
	AmountPayable    decimal.Decimal `json:"amount_payable"`
	RemainingBalance decimal.Decimal `json:"remaining_balance"`
	PaymentStatus    string          `json:"payment_status"`
	IsOverdue        bool            `json:"is_overdue"`
	InvoiceLink      string          `json:"invoice_link"`
	ReceiptLink      string          `json:"receipt_link"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
	Version          int             `json:"version"`
}

// CustomerLedgerResponse represents a customer's full transaction history
// with the running totals across it
type CustomerLedgerResponse struct {
	CustomerID     uuid.UUID             `json:"customer_id"`
	Transactions   []TransactionResponse `json:"transactions"`
	TotalPayable   decimal.Decimal       `json:"total_payable"`
	TotalPaid      decimal.Decimal       `json:"total_paid"`
	TotalRemaining decimal.Decimal       `json:"total_remaining"`
}

// ToTransactionResponse converts a domain Transaction to TransactionResponse
func ToTransactionResponse(t *ledger.Transaction) TransactionResponse {
	return TransactionResponse{
		ID:               t.ID,
		CustomerID:       t.CustomerID,
		OrderDetails:     t.OrderDetails,
		ProductDetails:   t.ProductDetails,
		DeliveryDetails:  t.DeliveryDetails,
		OrderDate:        t.OrderDate,
		DeliveryDate:     t.DeliveryDate,
		DueDate:          t.DueDate,
		TotalPrice:       t.TotalPrice,
		DeliveryFee:      t.DeliveryFee,
		DiscountApplied:  t.DiscountApplied,
		AmountPaid:       t.AmountPaid,
		AmountPayable:    t.AmountPayable,
		RemainingBalance: t.RemainingBalance,
		PaymentStatus:    t.PaymentStatus.String(),
		IsOverdue:        t.IsOverdue(),
		InvoiceLink:      t.InvoiceLink,
		ReceiptLink:      t.ReceiptLink,
		CreatedAt:        t.CreatedAt,
		UpdatedAt:        t.UpdatedAt,
		Version:          t.Version,
	}
}

// ToTransactionResponses converts a slice of domain Transactions
func ToTransactionResponses(transactions []ledger.Transaction) []TransactionResponse {
	responses := make([]TransactionResponse, len(transactions))
	for i := range transactions {
		responses[i] = ToTransactionResponse(&transactions[i])
	}
	return responses
}
