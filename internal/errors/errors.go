package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Error codes understood by the HTTP layer
const (
	CodeBadRequest       = "BAD_REQUEST"
	CodeUnauthenticated  = "UNAUTHENTICATED"
	CodeForbidden        = "FORBIDDEN"
	CodeNotFound         = "NOT_FOUND"
	CodeMethodNotAllowed = "METHOD_NOT_ALLOWED"
	CodeInternal         = "INTERNAL_ERROR"
)

// DomainError represents a domain-specific error with a code and message
type DomainError struct {
	Code    string
	Message string
	Err     error // underlying error for wrapping
}

// Error implements the error interface
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the underlying error for errors.Is and errors.As
func (e *DomainError) Unwrap() error {
	return e.Err
}

// Is matches another DomainError with the same code and message, so wrapped
// copies of a sentinel still compare equal to it.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Code == t.Code && e.Message == t.Message
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// WrapError wraps an existing error with domain error context
func WrapError(domainErr *DomainError, err error) *DomainError {
	return &DomainError{
		Code:    domainErr.Code,
		Message: domainErr.Message,
		Err:     err,
	}
}

func BadRequestf(format string, args ...any) *DomainError {
	return NewDomainError(CodeBadRequest, fmt.Sprintf(format, args...))
}

func Internal(err error) *DomainError {
	return WrapError(ErrInternal, err)
}

// Predefined domain errors
var (
	// Request errors
	ErrInvalidInput     = NewDomainError(CodeBadRequest, "invalid input")
	ErrMissingEmail     = NewDomainError(CodeBadRequest, "Missing required email query parameter")
	ErrNoDataToUpdate   = NewDomainError(CodeBadRequest, "No data to update")
	ErrNotFound         = NewDomainError(CodeNotFound, "Not Found")
	ErrMethodNotAllowed = NewDomainError(CodeMethodNotAllowed, "Method not allowed")

	// User errors
	ErrUserExists        = NewDomainError(CodeBadRequest, "User already exists")
	ErrUserNotFound      = NewDomainError(CodeBadRequest, "User does not exist")
	ErrIncorrectPassword = NewDomainError(CodeBadRequest, "Incorrect password")

	// Authentication errors
	ErrTokenMissing    = NewDomainError(CodeUnauthenticated, "Missing token in request headers")
	ErrTokenMalformed  = NewDomainError(CodeUnauthenticated, "Invalid token")
	ErrTokenNotFound   = NewDomainError(CodeUnauthenticated, "Token does not exist")
	ErrTokenNotForUser = NewDomainError(CodeForbidden, "token is not for this user")
	ErrRefreshExpired  = NewDomainError(CodeUnauthenticated, "Token expired, refresh token expired or missing. Log in again")
	ErrExtensionHours  = NewDomainError(CodeBadRequest, "hoursToExtend must be a whole number of hours within the allowed range")

	// Order errors
	ErrNoOrders         = NewDomainError(CodeBadRequest, "No orders")
	ErrIncompleteOrder  = NewDomainError(CodeBadRequest, "Order data sent may have an error or is incomplete")
	ErrCartAtCapacity   = NewDomainError(CodeBadRequest, "Your cart has reached max capacity, you can't add more items")
	ErrNegativeQuantity = NewDomainError(CodeBadRequest, "Quantity for an item can't go below zero")
	ErrQuantityTooLarge = NewDomainError(CodeBadRequest, "Quantity for an item exceeds the maximum cart size")
	ErrMenuUnavailable  = NewDomainError(CodeInternal, "Menu is unavailable")

	// Checkout errors
	ErrNoPaymentIntent     = NewDomainError(CodeBadRequest, "No payment intent associated with user's cart")
	ErrIntentExists        = NewDomainError(CodeBadRequest, "A payment intent already exists for this cart")
	ErrNoIntentData        = NewDomainError(CodeBadRequest, "No payment intent data to update")
	ErrPaymentNotCompleted = NewDomainError(CodeBadRequest, "Payment has not been completed")
	ErrAmountMismatch      = NewDomainError(CodeBadRequest, "Amount paid does not match the cart total")

	// Image errors
	ErrInvalidImageQuery = NewDomainError(CodeBadRequest, "query must be a non empty string and count a number greater than 0")

	// System errors
	ErrInternal           = NewDomainError(CodeInternal, "internal server error")
	ErrProviderFailure    = NewDomainError(CodeInternal, "third party provider request failed")
	ErrServiceUnavailable = NewDomainError(CodeInternal, "service unavailable")
)

// IsDomainError checks if an error is a domain error
func IsDomainError(err error) bool {
	var domainErr *DomainError
	return errors.As(err, &domainErr)
}

// GetDomainError extracts the domain error from an error
func GetDomainError(err error) *DomainError {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}
	return nil
}

// ToHTTPStatus maps domain errors to HTTP status codes
// This should only be used in the handler/presentation layer
func ToHTTPStatus(err error) int {
	if err == nil {
		return http.StatusOK
	}

	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErrorToHTTPStatus(domainErr)
	}

	// Default to internal server error for unknown errors
	return http.StatusInternalServerError
}

func domainErrorToHTTPStatus(err *DomainError) int {
	switch err.Code {
	case CodeBadRequest:
		return http.StatusBadRequest
	case CodeUnauthenticated:
		return http.StatusUnauthorized
	case CodeForbidden:
		return http.StatusForbidden
	case CodeNotFound:
		return http.StatusNotFound
	case CodeMethodNotAllowed:
		return http.StatusMethodNotAllowed
	default:
		return http.StatusInternalServerError
	}
}

// GetErrorMessage safely extracts error message. Internal errors never leak
// the wrapped cause to the client.
func GetErrorMessage(err error) string {
	if err == nil {
		return ""
	}

	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Message
	}

	return ErrInternal.Message
}
