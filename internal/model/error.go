package model

import "errors"

// ErrorResponse represents a standardised error response.
type ErrorResponse struct {
	Error         string `json:"error"`
	Message       string `json:"message"`
	CorrelationID string `json:"correlationId,omitempty"`
}

// Standard error codes for API responses
const (
	ErrCodeInvalidJSON      = "INVALID_JSON"
	ErrCodeMissingField     = "MISSING_FIELD"
	ErrCodeValidation       = "VALIDATION_FAILED"
	ErrCodeProductNotFound  = "PRODUCT_NOT_FOUND"
	ErrCodeOrderNotFound    = "ORDER_NOT_FOUND"
	ErrCodeInvalidQuantity  = "INVALID_QUANTITY"
	ErrCodeInvalidContact   = "INVALID_CONTACT"
	ErrCodeTotalMismatch    = "TOTAL_MISMATCH"
	ErrCodeEditWindowClosed = "EDIT_WINDOW_CLOSED"
	ErrCodeForbiddenField   = "FORBIDDEN_FIELD"
	ErrCodeTerminalState    = "TERMINAL_STATE"
	ErrCodeInvalidStatus    = "INVALID_STATUS"
	ErrCodeNoStatusChange   = "NO_STATUS_CHANGE"
	ErrCodeStatusConflict   = "STATUS_CONFLICT"
	ErrCodeMissingRecipient = "MISSING_RECIPIENT"
	ErrCodeDispatchFailed   = "NOTIFICATION_DISPATCH_FAILED"
	ErrCodeScanInProgress   = "SCAN_IN_PROGRESS"
	ErrCodeUnauthorised     = "UNAUTHORIZED"
	ErrCodeForbidden        = "FORBIDDEN"
	ErrCodeInternalError    = "INTERNAL_ERROR"
)

// Domain errors for business logic
type DomainError struct {
	Code    string
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Common domain errors
var (
	ErrProductNotFound  = NewDomainError(ErrCodeProductNotFound, "One or more products not found")
	ErrOrderNotFound    = NewDomainError(ErrCodeOrderNotFound, "Order not found")
	ErrInvalidQuantity  = NewDomainError(ErrCodeInvalidQuantity, "Quantity must be greater than zero")
	ErrInvalidContact   = NewDomainError(ErrCodeInvalidContact, "Customer name, phone and delivery address must be non-empty text")
	ErrNoEditableFields = NewDomainError(ErrCodeMissingField, "No editable fields supplied")
	ErrTotalMismatch    = NewDomainError(ErrCodeTotalMismatch, "Order totals do not match line items")
	ErrEditWindowClosed = NewDomainError(ErrCodeEditWindowClosed, "The edit window for this order has expired")
	ErrForbiddenField   = NewDomainError(ErrCodeForbiddenField, "Only name, phone and delivery address can be edited")
	ErrTerminalState    = NewDomainError(ErrCodeTerminalState, "Order is already finalized")
	ErrInvalidStatus    = NewDomainError(ErrCodeInvalidStatus, "Unknown order status")
	ErrNoStatusChange   = NewDomainError(ErrCodeNoStatusChange, "Order already has this status")
	ErrStatusConflict   = NewDomainError(ErrCodeStatusConflict, "Order status changed concurrently, please retry")
	ErrMissingRecipient = NewDomainError(ErrCodeMissingRecipient, "Order has no customer email")
	ErrDispatchFailed   = NewDomainError(ErrCodeDispatchFailed, "notification dispatch failed")
)

// ErrorCode returns the domain error code carried by err, or ErrCodeInternalError.
func ErrorCode(err error) string {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code
	}
	return ErrCodeInternalError
}
