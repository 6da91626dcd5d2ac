package domain

import (
	"errors"
	"fmt"
)

// ErrorCode represents a machine-readable error code
type ErrorCode string

const (
	// Authentication & Authorization Errors (AUTH_*)
	ErrorCodeAuthMissing      ErrorCode = "AUTH_MISSING"
	ErrorCodeAuthInvalid      ErrorCode = "AUTH_INVALID"
	ErrorCodeAuthAccessDenied ErrorCode = "AUTH_ACCESS_DENIED"

	// Seller Errors (SELLER_*)
	ErrorCodeSellerNotFound ErrorCode = "SELLER_NOT_FOUND"
	ErrorCodeSellerInactive ErrorCode = "SELLER_INACTIVE"

	// Payment Request Errors (REQUEST_*)
	ErrorCodeRequestNotFound            ErrorCode = "REQUEST_NOT_FOUND"
	ErrorCodeRequestConflict            ErrorCode = "REQUEST_CONFLICT"
	ErrorCodeRequestInvalidState        ErrorCode = "REQUEST_INVALID_STATE"
	ErrorCodeRequestOutsideWindow       ErrorCode = "REQUEST_OUTSIDE_WINDOW"
	ErrorCodeRequestInsufficientBalance ErrorCode = "REQUEST_INSUFFICIENT_BALANCE"

	// Document Errors (DOC_*)
	ErrorCodeDocumentNotFound     ErrorCode = "DOC_NOT_FOUND"
	ErrorCodeDocumentAccessDenied ErrorCode = "DOC_ACCESS_DENIED"

	// Validation Errors (VALIDATION_*)
	ErrorCodeValidationFailed        ErrorCode = "VALIDATION_FAILED"
	ErrorCodeValidationAmountInvalid ErrorCode = "VALIDATION_AMOUNT_INVALID"

	// Store & Internal Errors
	ErrorCodeStoreUnavailable   ErrorCode = "STORE_UNAVAILABLE"
	ErrorCodeInvariantViolation ErrorCode = "INVARIANT_VIOLATION"
	ErrorCodeInternalError      ErrorCode = "INTERNAL_ERROR"
)

// DomainError represents a structured domain error with error code and context
type DomainError struct {
	Err     error
	Details map[string]interface{}
	Code    ErrorCode
	Message string
}

// Error implements the error interface
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error for errors.Is/As support
func (e *DomainError) Unwrap() error {
	return e.Err
}

// WithDetail adds a detail field to the error
func (e *DomainError) WithDetail(key string, value interface{}) *DomainError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// NewDomainError creates a new domain error
func NewDomainError(code ErrorCode, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
	}
}

// WrapError wraps an existing error with a domain error code
func WrapError(code ErrorCode, message string, err error) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
		Err:     err,
	}
}

// IsDomainError checks if an error is a DomainError with the given code
func IsDomainError(err error, code ErrorCode) bool {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Code == code
	}
	return false
}

// GetErrorCode extracts the error code from an error, returns empty string if not a DomainError
func GetErrorCode(err error) ErrorCode {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Code
	}
	return ""
}

// IsNotFoundError checks if an error represents a "not found" condition
func IsNotFoundError(err error) bool {
	code := GetErrorCode(err)
	return code == ErrorCodeSellerNotFound ||
		code == ErrorCodeRequestNotFound ||
		code == ErrorCodeDocumentNotFound
}

// IsRetriable reports whether the caller may safely retry the operation.
// Only transient store failures qualify; money-bearing computations never
// degrade to a default value on error.
func IsRetriable(err error) bool {
	return GetErrorCode(err) == ErrorCodeStoreUnavailable
}

// IsAuthError checks if an error is authentication/authorization related
func IsAuthError(err error) bool {
	code := GetErrorCode(err)
	return code == ErrorCodeAuthMissing ||
		code == ErrorCodeAuthInvalid ||
		code == ErrorCodeAuthAccessDenied ||
		code == ErrorCodeDocumentAccessDenied
}

// Structured error instances
var (
	ErrAuthMissing      = NewDomainError(ErrorCodeAuthMissing, "authentication required")
	ErrAuthInvalid      = NewDomainError(ErrorCodeAuthInvalid, "invalid authentication")
	ErrAuthAccessDenied = NewDomainError(ErrorCodeAuthAccessDenied, "access denied")

	ErrSellerNotFound = NewDomainError(ErrorCodeSellerNotFound, "seller not found")
	ErrSellerInactive = NewDomainError(ErrorCodeSellerInactive, "seller is not active")

	ErrRequestNotFound            = NewDomainError(ErrorCodeRequestNotFound, "payment request not found")
	ErrRequestConflict            = NewDomainError(ErrorCodeRequestConflict, "an open payment request already exists for this seller")
	ErrRequestInvalidState        = NewDomainError(ErrorCodeRequestInvalidState, "payment request is in invalid state for this operation")
	ErrRequestOutsideWindow       = NewDomainError(ErrorCodeRequestOutsideWindow, "withdrawal requests are only accepted inside the monthly request window")
	ErrRequestInsufficientBalance = NewDomainError(ErrorCodeRequestInsufficientBalance, "requested amount exceeds available balance")

	ErrDocumentNotFound     = NewDomainError(ErrorCodeDocumentNotFound, "document not found")
	ErrDocumentAccessDenied = NewDomainError(ErrorCodeDocumentAccessDenied, "document access denied")

	ErrValidationFailed        = NewDomainError(ErrorCodeValidationFailed, "validation failed")
	ErrValidationAmountInvalid = NewDomainError(ErrorCodeValidationAmountInvalid, "invalid amount")

	ErrStoreUnavailable = NewDomainError(ErrorCodeStoreUnavailable, "store unavailable")
	ErrInternalError    = NewDomainError(ErrorCodeInternalError, "internal server error")
)
