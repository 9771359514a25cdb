package dto

import "net/http"

// Error codes returned inside the response envelope. Handlers translate
// domain error codes into this set before writing the response.
const (
	ErrCodeValidation    = "ERR_VALIDATION"
	ErrCodeNotFound      = "ERR_NOT_FOUND"
	ErrCodeAlreadyExists = "ERR_ALREADY_EXISTS"
	ErrCodeUnauthorized  = "ERR_UNAUTHORIZED"
	ErrCodeForbidden     = "ERR_FORBIDDEN"
	ErrCodeConflict      = "ERR_CONFLICT"
	ErrCodeInvalidState  = "ERR_INVALID_STATE"
	ErrCodeTooMany       = "ERR_TOO_MANY_REQUESTS"
	ErrCodeInternal      = "ERR_INTERNAL"
)

// ErrorCodeHTTPStatus maps envelope error codes to HTTP status codes.
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeValidation:    http.StatusBadRequest,
	ErrCodeNotFound:      http.StatusNotFound,
	ErrCodeAlreadyExists: http.StatusConflict,
	ErrCodeUnauthorized:  http.StatusUnauthorized,
	ErrCodeForbidden:     http.StatusForbidden,
	ErrCodeConflict:      http.StatusConflict,
	ErrCodeInvalidState:  http.StatusUnprocessableEntity,
	ErrCodeTooMany:       http.StatusTooManyRequests,
	ErrCodeInternal:      http.StatusInternalServerError,
}

// GetHTTPStatus returns the HTTP status for an error code, defaulting to 500.
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// DomainErrorCodeMapping translates the codes raised by the application and
// domain layers into envelope codes.
var DomainErrorCodeMapping = map[string]string{
	// identity
	"EMAIL_EXISTS":            ErrCodeAlreadyExists,
	"USER_NOT_FOUND":          ErrCodeNotFound,
	"INVALID_CREDENTIALS":     ErrCodeUnauthorized,
	"INVALID_PASSWORD":        ErrCodeUnauthorized,
	"TOKEN_EXPIRED":           ErrCodeUnauthorized,
	"TOKEN_INVALID":           ErrCodeUnauthorized,
	"TOKEN_REVOKED":           ErrCodeUnauthorized,
	"TOKEN_GENERATION_FAILED": ErrCodeInternal,
	"ACCOUNT_LOCKED":          ErrCodeForbidden,
	"ACCOUNT_BLOCKED":         ErrCodeForbidden,
	"ACCOUNT_DISABLED":        ErrCodeForbidden,
	"BUSINESS_PROFILE_SET":    ErrCodeInvalidState,
	"GENERATION_EXHAUSTED":    ErrCodeConflict,
	"PASSWORD_HASH_ERROR":     ErrCodeInternal,

	// partner and ledger
	"CUSTOMER_HAS_TRANSACTIONS": ErrCodeConflict,
	"EXCEEDS_REMAINING":         ErrCodeValidation,
	"CONCURRENCY_CONFLICT":      ErrCodeConflict,

	// generic domain codes
	"NOT_FOUND":      ErrCodeNotFound,
	"ALREADY_EXISTS": ErrCodeAlreadyExists,
	"UNAUTHORIZED":   ErrCodeUnauthorized,
	"FORBIDDEN":      ErrCodeForbidden,
	"INVALID_STATE":  ErrCodeInvalidState,
	"INTERNAL_ERROR": ErrCodeInternal,
}

// NormalizeErrorCode resolves any known domain code to an envelope code.
// Validation codes the maps do not list (INVALID_EMAIL, INVALID_AMOUNT and
// the like) fall through to ERR_VALIDATION; codes already in the envelope
// set pass through unchanged.
func NormalizeErrorCode(code string) string {
	if mapped, ok := DomainErrorCodeMapping[code]; ok {
		return mapped
	}
	if _, ok := ErrorCodeHTTPStatus[code]; ok {
		return code
	}
	return ErrCodeValidation
}
