package persistence

import (
	"strings"
)

// ValidateSortOrder validates and normalizes the sort order to ASC or DESC.
// Returns "ASC" as the default if the input is invalid or empty.
func ValidateSortOrder(orderDir string) string {
	normalized := strings.ToUpper(strings.TrimSpace(orderDir))
	if normalized == "DESC" {
		return "DESC"
	}
	return "ASC"
}

// ValidateSortField validates the sort field against a whitelist of allowed
// fields. Returns the defaultField if the input is empty or not whitelisted.
// Sort fields end up interpolated into ORDER BY clauses, so nothing outside
// the whitelist may pass through.
func ValidateSortField(sortField string, allowedFields map[string]bool, defaultField string) string {
	trimmed := strings.TrimSpace(sortField)
	if trimmed == "" {
		return defaultField
	}
	if allowedFields[trimmed] {
		return trimmed
	}
	return defaultField
}

// UserSortFields contains allowed sort fields for users
var UserSortFields = map[string]bool{
	"id":         true,
	"email":      true,
	"first_name": true,
	"last_name":  true,
	"created_at": true,
	"updated_at": true,
}

// CustomerSortFields contains allowed sort fields for customers
var CustomerSortFields = map[string]bool{
	"id":         true,
	"name":       true,
	"phone":      true,
	"email":      true,
	"created_at": true,
	"updated_at": true,
}

// TransactionSortFields contains allowed sort fields for transactions
var TransactionSortFields = map[string]bool{
	"id":             true,
	"payable":        true,
	"paid":           true,
	"remaining":      true,
	"payment_status": true,
	"created_at":     true,
	"updated_at":     true,
}
