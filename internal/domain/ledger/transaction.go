package ledger

import (
	"fmt"
	"strings"
	"time"

	"github.com/bizbook/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentStatus represents the payment state of a transaction
type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "pending" // Remaining balance > 0
	PaymentStatusPaid    PaymentStatus = "paid"    // Remaining balance = 0
)

// IsValid checks if the status is a valid PaymentStatus
func (s PaymentStatus) IsValid() bool {
	return s == PaymentStatusPending || s == PaymentStatusPaid
}

// String returns the string representation of PaymentStatus
func (s PaymentStatus) String() string {
	return string(s)
}

// Transaction represents one sale owed by a customer. It is the aggregate
// root for ledger operations. The derived fields AmountPayable,
// RemainingBalance and PaymentStatus are never written directly; every
// mutation of the monetary inputs goes through recompute so the three stay
// consistent with each other:
//
//	amount_payable    = total_price + delivery_fee - discount_applied
//	remaining_balance = amount_payable - amount_paid
//	status            = paid iff remaining_balance = 0
type Transaction struct {
	shared.BaseAggregateRoot
	CustomerID       uuid.UUID
	OrderDetails     string
	ProductDetails   string
	DeliveryDetails  string
	OrderDate        *time.Time
	DeliveryDate     *time.Time
	DueDate          *time.Time
	TotalPrice       decimal.Decimal
	DeliveryFee      decimal.Decimal
	DiscountApplied  decimal.Decimal
	AmountPaid       decimal.Decimal
	AmountPayable    decimal.Decimal
	RemainingBalance decimal.Decimal
	PaymentStatus    PaymentStatus
	InvoiceLink      string
	ReceiptLink      string
}

// NewTransaction creates a new transaction for a customer. An initial paid
// amount may be supplied (e.g. a deposit taken at order time); it must not
// exceed the payable amount.
func NewTransaction(
	customerID uuid.UUID,
	orderDetails string,
	totalPrice, deliveryFee, discountApplied, amountPaid decimal.Decimal,
) (*Transaction, error) {
	if customerID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_CUSTOMER", "Customer ID cannot be empty")
	}
	orderDetails = strings.TrimSpace(orderDetails)
	if orderDetails == "" {
		return nil, shared.NewDomainError("INVALID_ORDER_DETAILS", "Order details cannot be empty")
	}
	if err := validateAmounts(totalPrice, deliveryFee, discountApplied, amountPaid); err != nil {
		return nil, err
	}

	t := &Transaction{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		CustomerID:        customerID,
		OrderDetails:      orderDetails,
		TotalPrice:        totalPrice,
		DeliveryFee:       deliveryFee,
		DiscountApplied:   discountApplied,
		AmountPaid:        amountPaid,
	}
	t.recompute()

	return t, nil
}

// ApplyPayment records a payment against the transaction. It is the only
// mutator of AmountPaid after creation. A payment that would drive the
// remaining balance negative is rejected; there is no overpaid state.
func (t *Transaction) ApplyPayment(amount decimal.Decimal) error {
	if amount.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_AMOUNT", "Payment amount must be positive")
	}
	if amount.GreaterThan(t.RemainingBalance) {
		return shared.NewDomainError("EXCEEDS_REMAINING",
			fmt.Sprintf("Payment amount %s exceeds remaining balance %s", amount, t.RemainingBalance))
	}

	t.AmountPaid = t.AmountPaid.Add(amount)
	t.recompute()
	t.UpdatedAt = time.Now()
	t.IncrementVersion()

	return nil
}

// UpdateAmounts replaces the monetary inputs and recomputes the derived
// fields. The already paid amount is kept and revalidated against the new
// payable amount.
func (t *Transaction) UpdateAmounts(totalPrice, deliveryFee, discountApplied decimal.Decimal) error {
	if err := validateAmounts(totalPrice, deliveryFee, discountApplied, t.AmountPaid); err != nil {
		return err
	}

	t.TotalPrice = totalPrice
	t.DeliveryFee = deliveryFee
	t.DiscountApplied = discountApplied
	t.recompute()
	t.UpdatedAt = time.Now()
	t.IncrementVersion()

	return nil
}

// UpdateDetails updates the descriptive fields
func (t *Transaction) UpdateDetails(orderDetails, productDetails, deliveryDetails string) error {
	orderDetails = strings.TrimSpace(orderDetails)
	if orderDetails == "" {
		return shared.NewDomainError("INVALID_ORDER_DETAILS", "Order details cannot be empty")
	}

	t.OrderDetails = orderDetails
	t.ProductDetails = strings.TrimSpace(productDetails)
	t.DeliveryDetails = strings.TrimSpace(deliveryDetails)
	t.UpdatedAt = time.Now()
	t.IncrementVersion()

	return nil
}

// SetDates sets the optional order, delivery and due dates
func (t *Transaction) SetDates(orderDate, deliveryDate, dueDate *time.Time) {
	t.OrderDate = orderDate
	t.DeliveryDate = deliveryDate
	t.DueDate = dueDate
	t.UpdatedAt = time.Now()
	t.IncrementVersion()
}

// SetDocumentLinks sets the generated invoice and receipt document links
func (t *Transaction) SetDocumentLinks(invoiceLink, receiptLink string) error {
	if len(invoiceLink) > 500 || len(receiptLink) > 500 {
		return shared.NewDomainError("INVALID_LINK", "Document link cannot exceed 500 characters")
	}

	t.InvoiceLink = invoiceLink
	t.ReceiptLink = receiptLink
	t.UpdatedAt = time.Now()
	t.IncrementVersion()

	return nil
}

// IsPaid returns true if the transaction is fully paid
func (t *Transaction) IsPaid() bool {
	return t.PaymentStatus == PaymentStatusPaid
}

// IsOverdue returns true if the transaction is past its due date and unpaid
func (t *Transaction) IsOverdue() bool {
	if t.IsPaid() || t.DueDate == nil {
		return false
	}
	return time.Now().After(*t.DueDate)
}

// recompute derives AmountPayable, RemainingBalance and PaymentStatus from
// the monetary inputs. The three are only ever written here.
func (t *Transaction) recompute() {
	t.AmountPayable = t.TotalPrice.Add(t.DeliveryFee).Sub(t.DiscountApplied)
	t.RemainingBalance = t.AmountPayable.Sub(t.AmountPaid)
	if t.RemainingBalance.IsZero() {
		t.PaymentStatus = PaymentStatusPaid
	} else {
		t.PaymentStatus = PaymentStatusPending
	}
}

func validateAmounts(totalPrice, deliveryFee, discountApplied, amountPaid decimal.Decimal) error {
	if totalPrice.IsNegative() {
		return shared.NewDomainError("INVALID_AMOUNT", "Total price cannot be negative")
	}
	if deliveryFee.IsNegative() {
		return shared.NewDomainError("INVALID_AMOUNT", "Delivery fee cannot be negative")
	}
	if discountApplied.IsNegative() {
		return shared.NewDomainError("INVALID_AMOUNT", "Discount cannot be negative")
	}
	if amountPaid.IsNegative() {
		return shared.NewDomainError("INVALID_AMOUNT", "Amount paid cannot be negative")
	}

	payable := totalPrice.Add(deliveryFee).Sub(discountApplied)
	if payable.IsNegative() {
		return shared.NewDomainError("INVALID_AMOUNT", "Discount exceeds the total payable amount")
	}
	if amountPaid.GreaterThan(payable) {
		return shared.NewDomainError("EXCEEDS_REMAINING", "Amount paid cannot exceed the payable amount")
	}

	return nil
}
