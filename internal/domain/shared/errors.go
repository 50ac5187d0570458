package shared

import "errors"

// DomainError represents a domain-level error
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
}

// Is reports whether target carries the same code, so wrapped sentinel
// comparisons work with errors.Is.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Error codes shared by the POS core
const (
	CodeNotFound             = "NOT_FOUND"
	CodeValidation           = "VALIDATION_ERROR"
	CodeInvalidState         = "INVALID_STATE"
	CodeOutOfStock           = "OUT_OF_STOCK"
	CodeInsufficientStock    = "INSUFFICIENT_STOCK"
	CodeDrawerClosed         = "DRAWER_CLOSED"
	CodeRemote               = "REMOTE_ERROR"
	CodeUnauthorized         = "UNAUTHORIZED"
	CodeSubmissionInProgress = "SUBMISSION_IN_PROGRESS"
	CodeDuplicateSubmission  = "DUPLICATE_SUBMISSION"
)

// Common domain errors
var (
	ErrNotFound             = NewDomainError(CodeNotFound, "Resource not found")
	ErrValidation           = NewDomainError(CodeValidation, "Invalid input provided")
	ErrInvalidState         = NewDomainError(CodeInvalidState, "Operation not allowed in current state")
	ErrOutOfStock           = NewDomainError(CodeOutOfStock, "Product has no stock available")
	ErrInsufficientStock    = NewDomainError(CodeInsufficientStock, "Insufficient stock available")
	ErrDrawerClosed         = NewDomainError(CodeDrawerClosed, "Cash drawer is closed")
	ErrRemote               = NewDomainError(CodeRemote, "Remote service request failed")
	ErrUnauthorized         = NewDomainError(CodeUnauthorized, "Not authorized to perform this action")
	ErrSubmissionInProgress = NewDomainError(CodeSubmissionInProgress, "A sale submission is already in progress")
	ErrDuplicateSubmission  = NewDomainError(CodeDuplicateSubmission, "This sale submission was already processed")
)

// NewValidationError creates a ValidationError with a user-facing message
func NewValidationError(message string) *DomainError {
	return NewDomainError(CodeValidation, message)
}

// NewRemoteError creates a RemoteError carrying the best-effort message
// extracted from the remote response
func NewRemoteError(message string) *DomainError {
	if message == "" {
		message = ErrRemote.Message
	}
	return NewDomainError(CodeRemote, message)
}

// CodeOf returns the domain code of err, or an empty string when err is not a DomainError
func CodeOf(err error) string {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code
	}
	return ""
}

// IsValidation reports whether err is a ValidationError.
// A closed drawer is a validation failure of the sale precondition chain.
func IsValidation(err error) bool {
	code := CodeOf(err)
	return code == CodeValidation || code == CodeDrawerClosed
}

// IsRemote reports whether err originated from the remote business API
func IsRemote(err error) bool {
	return CodeOf(err) == CodeRemote
}
