package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/bizbook/backend/internal/application/ledger"
	"github.com/bizbook/backend/internal/interfaces/http/middleware"
)

// TransactionHandler handles transaction HTTP requests
type TransactionHandler struct {
	BaseHandler
	transactionService *ledger.TransactionService
}

// NewTransactionHandler creates a new transaction handler
func NewTransactionHandler(transactionService *ledger.TransactionService) *TransactionHandler {
	return &TransactionHandler{transactionService: transactionService}
}

// RegisterRoutes registers the transaction routes. The per-customer ledger
// listing hangs off the customers group to keep the URL shape RESTful.
func (h *TransactionHandler) RegisterRoutes(rg *gin.RouterGroup) {
	transactions := rg.Group("/transactions")
	{
		transactions.GET("", h.List)
		transactions.POST("", h.Create)
		transactions.GET("/:id", h.GetByID)
		transactions.PUT("/:id", h.Update)
		transactions.DELETE("/:id", h.Delete)
		transactions.POST("/:id/payments", h.ApplyPayment)
	}
	rg.GET("/customers/:id/transactions", h.GetCustomerLedger)
}

// Create logs a transaction against one of the user's customers
func (h *TransactionHandler) Create(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var req ledger.CreateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	result, err := h.transactionService.Create(c.Request.Context(), userID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, result)
}

// GetByID returns a single transaction
func (h *TransactionHandler) GetByID(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	transactionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid transaction ID")
		return
	}

	result, err := h.transactionService.GetByID(c.Request.Context(), userID, transactionID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// List returns the user's transactions, optionally filtered by customer or
// payment status
func (h *TransactionHandler) List(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var filter ledger.TransactionListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	transactions, err := h.transactionService.List(c.Request.Context(), userID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, transactions)
}

// GetCustomerLedger returns a customer's full transaction history with
// reconciled totals
func (h *TransactionHandler) GetCustomerLedger(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	customerID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid customer ID")
		return
	}

	result, err := h.transactionService.GetCustomerLedger(c.Request.Context(), userID, customerID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// Update applies a partial update to a transaction
func (h *TransactionHandler) Update(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	transactionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid transaction ID")
		return
	}

	var req ledger.UpdateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	result, err := h.transactionService.Update(c.Request.Context(), userID, transactionID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// ApplyPayment records a payment against a transaction's remaining balance
func (h *TransactionHandler) ApplyPayment(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	transactionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid transaction ID")
		return
	}

	var req ledger.ApplyPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	result, err := h.transactionService.ApplyPayment(c.Request.Context(), userID, transactionID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// Delete removes a transaction
func (h *TransactionHandler) Delete(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	transactionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid transaction ID")
		return
	}

	if err := h.transactionService.Delete(c.Request.Context(), userID, transactionID); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}
