package ledger

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/bizbook/backend/internal/domain/ledger"
	"github.com/bizbook/backend/internal/domain/partner"
	"github.com/bizbook/backend/internal/domain/shared"
)

// paymentRetries bounds how many times a payment is replayed against a fresh
// aggregate after losing the optimistic lock.
const paymentRetries = 3

// TransactionService handles transaction-related business operations. Every
// operation is scoped to the calling user through the customer the
// transaction belongs to.
type TransactionService struct {
	transactionRepo ledger.TransactionRepository
	customerRepo    partner.CustomerRepository
}

// NewTransactionService creates a new TransactionService
func NewTransactionService(transactionRepo ledger.TransactionRepository, customerRepo partner.CustomerRepository) *TransactionService {
	return &TransactionService{
		transactionRepo: transactionRepo,
		customerRepo:    customerRepo,
	}
}

// Create records a new transaction against one of the user's customers
func (s *TransactionService) Create(ctx context.Context, userID uuid.UUID, req CreateTransactionRequest) (*TransactionResponse, error) {
	// The customer lookup doubles as the ownership check.
	if _, err := s.customerRepo.FindByIDForUser(ctx, userID, req.CustomerID); err != nil {
		return nil, err
	}

	transaction, err := ledger.NewTransaction(
		req.CustomerID,
		req.OrderDetails,
		req.TotalPrice,
		req.DeliveryFee,
		req.DiscountApplied,
		req.AmountPaid,
	)
	if err != nil {
		return nil, err
	}

	if req.ProductDetails != "" || req.DeliveryDetails != "" {
		if err := transaction.UpdateDetails(req.OrderDetails, req.ProductDetails, req.DeliveryDetails); err != nil {
			return nil, err
		}
	}

	if req.OrderDate != nil || req.DeliveryDate != nil || req.DueDate != nil {
		transaction.SetDates(req.OrderDate, req.DeliveryDate, req.DueDate)
	}

	if err := s.transactionRepo.Save(ctx, transaction); err != nil {
		return nil, err
	}

	response := ToTransactionResponse(transaction)
	return &response, nil
}

// GetByID retrieves a transaction by ID
func (s *TransactionService) GetByID(ctx context.Context, userID, transactionID uuid.UUID) (*TransactionResponse, error) {
	transaction, err := s.findOwned(ctx, userID, transactionID)
	if err != nil {
		return nil, err
	}

	response := ToTransactionResponse(transaction)
	return &response, nil
}

// List retrieves the user's transactions for one customer with filtering
// and pagination
func (s *TransactionService) List(ctx context.Context, userID uuid.UUID, filter TransactionListFilter) ([]TransactionResponse, error) {
	if _, err := s.customerRepo.FindByIDForUser(ctx, userID, filter.CustomerID); err != nil {
		return nil, err
	}

	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}

	domainFilter := shared.Filter{
		Page:     filter.Page,
		PageSize: filter.PageSize,
		Search:   filter.Search,
		Filters:  map[string]any{"customer_id": filter.CustomerID},
	}
	if filter.PaymentStatus != "" {
		domainFilter.Filters["payment_status"] = filter.PaymentStatus
	}

	transactions, err := s.transactionRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, err
	}

	return ToTransactionResponses(transactions), nil
}

// GetCustomerLedger returns a customer's full transaction history in
// creation order together with the totals across it
func (s *TransactionService) GetCustomerLedger(ctx context.Context, userID, customerID uuid.UUID) (*CustomerLedgerResponse, error) {
	if _, err := s.customerRepo.FindByIDForUser(ctx, userID, customerID); err != nil {
		return nil, err
	}

	transactions, err := s.transactionRepo.FindByCustomer(ctx, customerID)
	if err != nil {
		return nil, err
	}

	totalPayable := decimal.Zero
	totalPaid := decimal.Zero
	totalRemaining := decimal.Zero
	for i := range transactions {
		totalPayable = totalPayable.Add(transactions[i].AmountPayable)
		totalPaid = totalPaid.Add(transactions[i].AmountPaid)
		totalRemaining = totalRemaining.Add(transactions[i].RemainingBalance)
	}

	return &CustomerLedgerResponse{
		CustomerID:     customerID,
		Transactions:   ToTransactionResponses(transactions),
		TotalPayable:   totalPayable,
		TotalPaid:      totalPaid,
		TotalRemaining: totalRemaining,
	}, nil
}

// Update updates a transaction's descriptive fields, monetary inputs, dates
// and document links
func (s *TransactionService) Update(ctx context.Context, userID, transactionID uuid.UUID, req UpdateTransactionRequest) (*TransactionResponse, error) {
	transaction, err := s.findOwned(ctx, userID, transactionID)
	if err != nil {
		return nil, err
	}

	if req.OrderDetails != nil || req.ProductDetails != nil || req.DeliveryDetails != nil {
		orderDetails := transaction.OrderDetails
		productDetails := transaction.ProductDetails
		deliveryDetails := transaction.DeliveryDetails
		if req.OrderDetails != nil {
			orderDetails = *req.OrderDetails
		}
		if req.ProductDetails != nil {
			productDetails = *req.ProductDetails
		}
		if req.DeliveryDetails != nil {
			deliveryDetails = *req.DeliveryDetails
		}
		if err := transaction.UpdateDetails(orderDetails, productDetails, deliveryDetails); err != nil {
			return nil, err
		}
	}

	if req.TotalPrice != nil || req.DeliveryFee != nil || req.DiscountApplied != nil {
		totalPrice := transaction.TotalPrice
		deliveryFee := transaction.DeliveryFee
		discountApplied := transaction.DiscountApplied
		if req.TotalPrice != nil {
			totalPrice = *req.TotalPrice
		}
		if req.DeliveryFee != nil {
			deliveryFee = *req.DeliveryFee
		}
		if req.DiscountApplied != nil {
			discountApplied = *req.DiscountApplied
		}
		if err := transaction.UpdateAmounts(totalPrice, deliveryFee, discountApplied); err != nil {
			return nil, err
		}
	}

	if req.SetDates {
		transaction.SetDates(req.OrderDate, req.DeliveryDate, req.DueDate)
	}

	if req.InvoiceLink != nil || req.ReceiptLink != nil {
		invoiceLink := transaction.InvoiceLink
		receiptLink := transaction.ReceiptLink
		if req.InvoiceLink != nil {
			invoiceLink = *req.InvoiceLink
		}
		if req.ReceiptLink != nil {
			receiptLink = *req.ReceiptLink
		}
		if err := transaction.SetDocumentLinks(invoiceLink, receiptLink); err != nil {
			return nil, err
		}
	}

	if err := s.transactionRepo.Save(ctx, transaction); err != nil {
		return nil, err
	}

	response := ToTransactionResponse(transaction)
	return &response, nil
}

// ApplyPayment records a payment against a transaction under an optimistic
// lock. Losing the lock reloads the aggregate and replays the payment, so
// the EXCEEDS_REMAINING check always runs against the freshest balance.
func (s *TransactionService) ApplyPayment(ctx context.Context, userID, transactionID uuid.UUID, req ApplyPaymentRequest) (*TransactionResponse, error) {
	var lastErr error

	for attempt := 0; attempt < paymentRetries; attempt++ {
		transaction, err := s.findOwned(ctx, userID, transactionID)
		if err != nil {
			return nil, err
		}

		if err := transaction.ApplyPayment(req.Amount); err != nil {
			return nil, err
		}

		err = s.transactionRepo.SaveWithLock(ctx, transaction)
		if errors.Is(err, shared.ErrConcurrencyConflict) {
			lastErr = err
			continue
		}
		if err != nil {
			return nil, err
		}

		response := ToTransactionResponse(transaction)
		return &response, nil
	}

	return nil, lastErr
}

// Delete deletes a transaction
func (s *TransactionService) Delete(ctx context.Context, userID, transactionID uuid.UUID) error {
	transaction, err := s.findOwned(ctx, userID, transactionID)
	if err != nil {
		return err
	}

	return s.transactionRepo.Delete(ctx, transaction.ID)
}

// findOwned loads a transaction and verifies it belongs to one of the user's
// customers. A transaction under another user's customer reads as NOT_FOUND.
func (s *TransactionService) findOwned(ctx context.Context, userID, transactionID uuid.UUID) (*ledger.Transaction, error) {
	transaction, err := s.transactionRepo.FindByID(ctx, transactionID)
	if err != nil {
		return nil, err
	}

	if _, err := s.customerRepo.FindByIDForUser(ctx, userID, transaction.CustomerID); err != nil {
		return nil, err
	}

	return transaction, nil
}
