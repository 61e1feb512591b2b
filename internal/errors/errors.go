package errors

import (
	"errors"
	"fmt"
)

// Domain-specific error types
var (
	// ErrNotFound indicates a resource was not found
	ErrNotFound = errors.New("resource not found")

	// ErrDuplicateEntry indicates a unique constraint violation
	ErrDuplicateEntry = errors.New("duplicate entry")

	// ErrInvalidInput indicates invalid input data
	ErrInvalidInput = errors.New("invalid input")

	// ErrDomainNotActive indicates the domain is not active
	ErrDomainNotActive = errors.New("domain is not active")

	// ErrDomainNotFound indicates the domain was not found
	ErrDomainNotFound = errors.New("domain not found")

	// ErrDomainInUse indicates the domain is still referenced by email addresses
	ErrDomainInUse = errors.New("domain is referenced by email addresses")

	// ErrEmailAddressNotFound indicates the email address was not found
	ErrEmailAddressNotFound = errors.New("email address not found")

	// ErrEmailNotFound indicates the email was not found
	ErrEmailNotFound = errors.New("email not found")

	// ErrAttachmentNotFound indicates the attachment was not found
	ErrAttachmentNotFound = errors.New("attachment not found")

	// ErrLabelNotFound indicates the label was not found
	ErrLabelNotFound = errors.New("label not found")

	// ErrChainNotFound indicates the requested chain has no messages
	ErrChainNotFound = errors.New("conversation not found")

	// ErrIntegrationNotFound indicates the team has no integration of that type
	ErrIntegrationNotFound = errors.New("integration not found")

	// ErrIntegrationDisabled indicates the integration does not allow the operation
	ErrIntegrationDisabled = errors.New("integration is disabled for this operation")

	// ErrSignatureInvalid indicates a webhook payload failed authentication
	ErrSignatureInvalid = errors.New("webhook signature invalid")

	// ErrPayloadMalformed indicates a webhook payload is missing required fields
	ErrPayloadMalformed = errors.New("webhook payload malformed")

	// ErrMailboxNotOwned indicates the acting member does not own the address
	ErrMailboxNotOwned = errors.New("email address is not owned by the member")

	// ErrDeliveryFailed indicates the transport rejected an outbound message
	ErrDeliveryFailed = errors.New("message delivery failed")

	// ErrUnauthorized indicates unauthorized access
	ErrUnauthorized = errors.New("unauthorized")

	// ErrForbidden indicates forbidden access
	ErrForbidden = errors.New("forbidden")

	// ErrInternal indicates an internal server error
	ErrInternal = errors.New("internal server error")
)

// Error codes for API responses
const (
	CodeNotFound            = "NOT_FOUND"
	CodeDuplicateEntry      = "DUPLICATE_ENTRY"
	CodeInvalidInput        = "INVALID_INPUT"
	CodeDomainNotActive     = "DOMAIN_NOT_ACTIVE"
	CodeDomainInUse         = "DOMAIN_IN_USE"
	CodeIntegrationDisabled = "INTEGRATION_DISABLED"
	CodeSignatureInvalid    = "SIGNATURE_INVALID"
	CodePayloadMalformed    = "PAYLOAD_MALFORMED"
	CodeMailboxNotOwned     = "MAILBOX_NOT_OWNED"
	CodeDeliveryFailed      = "DELIVERY_FAILED"
	CodeUnauthorized        = "UNAUTHORIZED"
	CodeForbidden           = "FORBIDDEN"
	CodeInternalError       = "INTERNAL_ERROR"
)

// AppError represents an application error with context
type AppError struct {
	Err     error
	Message string
	Code    string
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return e.Err.Error()
}

// Unwrap returns the underlying error
func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAppError creates a new AppError
func NewAppError(err error, message string, code string) *AppError {
	return &AppError{
		Err:     err,
		Message: message,
		Code:    code,
	}
}

// Invalid builds an AppError that wraps ErrInvalidInput with a client-facing message
func Invalid(format string, args ...any) *AppError {
	return NewAppError(ErrInvalidInput, fmt.Sprintf(format, args...), CodeInvalidInput)
}

// Wrap wraps an error with additional context
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// IsNotFound checks if the error is a not found error
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrDomainNotFound) ||
		errors.Is(err, ErrEmailAddressNotFound) ||
		errors.Is(err, ErrEmailNotFound) ||
		errors.Is(err, ErrAttachmentNotFound) ||
		errors.Is(err, ErrLabelNotFound) ||
		errors.Is(err, ErrChainNotFound) ||
		errors.Is(err, ErrIntegrationNotFound)
}

// IsDuplicateEntry checks if the error is a duplicate entry error
func IsDuplicateEntry(err error) bool {
	return errors.Is(err, ErrDuplicateEntry)
}

// IsInvalidInput checks if the error is an invalid input error
func IsInvalidInput(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}

// IsDomainNotActive checks if the error is a domain not active error
func IsDomainNotActive(err error) bool {
	return errors.Is(err, ErrDomainNotActive)
}

// IsForbidden reports whether err denies access to the acting member
func IsForbidden(err error) bool {
	return errors.Is(err, ErrForbidden) || errors.Is(err, ErrMailboxNotOwned)
}

// GetErrorCode returns the appropriate error code for an error
func GetErrorCode(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) && appErr.Code != "" {
		return appErr.Code
	}

	switch {
	case errors.Is(err, ErrSignatureInvalid):
		return CodeSignatureInvalid
	case errors.Is(err, ErrPayloadMalformed):
		return CodePayloadMalformed
	case errors.Is(err, ErrMailboxNotOwned):
		return CodeMailboxNotOwned
	case errors.Is(err, ErrDeliveryFailed):
		return CodeDeliveryFailed
	case errors.Is(err, ErrDomainInUse):
		return CodeDomainInUse
	case errors.Is(err, ErrIntegrationDisabled):
		return CodeIntegrationDisabled
	case IsNotFound(err):
		return CodeNotFound
	case IsDuplicateEntry(err):
		return CodeDuplicateEntry
	case IsInvalidInput(err):
		return CodeInvalidInput
	case IsDomainNotActive(err):
		return CodeDomainNotActive
	case errors.Is(err, ErrUnauthorized):
		return CodeUnauthorized
	case errors.Is(err, ErrForbidden):
		return CodeForbidden
	default:
		return CodeInternalError
	}
}
