package dto

import (
	"net/http"

	"github.com/erp/pos/internal/domain/shared"
)

// Error codes returned by the gateway. Domain codes pass through unchanged
// so terminals can branch on them.
const (
	ErrCodeInternal   = "INTERNAL_ERROR"
	ErrCodeBadRequest = "BAD_REQUEST"
	ErrCodeValidation = shared.CodeValidation

	ErrCodeNotFound             = shared.CodeNotFound
	ErrCodeInvalidState         = shared.CodeInvalidState
	ErrCodeOutOfStock           = shared.CodeOutOfStock
	ErrCodeInsufficientStock    = shared.CodeInsufficientStock
	ErrCodeDrawerClosed         = shared.CodeDrawerClosed
	ErrCodeRemote               = shared.CodeRemote
	ErrCodeUnauthorized         = shared.CodeUnauthorized
	ErrCodeSubmissionInProgress = shared.CodeSubmissionInProgress
	ErrCodeDuplicateSubmission  = shared.CodeDuplicateSubmission

	ErrCodeRequestTooLarge = "REQUEST_TOO_LARGE"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeInternal: http.StatusInternalServerError,

	// Input errors -> 400 Bad Request
	ErrCodeBadRequest: http.StatusBadRequest,
	ErrCodeValidation: http.StatusBadRequest,

	ErrCodeUnauthorized: http.StatusUnauthorized,
	ErrCodeNotFound:     http.StatusNotFound,

	// Concurrent or replayed submissions -> 409 Conflict
	ErrCodeSubmissionInProgress: http.StatusConflict,
	ErrCodeDuplicateSubmission:  http.StatusConflict,
	ErrCodeDrawerClosed:         http.StatusConflict,

	// Business rule errors -> 422 Unprocessable Entity
	ErrCodeInvalidState:      http.StatusUnprocessableEntity,
	ErrCodeOutOfStock:        http.StatusUnprocessableEntity,
	ErrCodeInsufficientStock: http.StatusUnprocessableEntity,

	ErrCodeRequestTooLarge: http.StatusRequestEntityTooLarge,

	// The remote business API failed or rejected the request
	ErrCodeRemote: http.StatusBadGateway,
}

// GetHTTPStatus returns the HTTP status code for an error code.
// Unknown codes map to 500.
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}
