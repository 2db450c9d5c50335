package snapapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// Error codes produced by the client itself. Codes returned by the service
// (INVALID_URL, UNAUTHORIZED, QUOTA_EXCEEDED, RATE_LIMITED, ...) pass through
// verbatim.
const (
	CodeMissingTarget   = "MISSING_TARGET"
	CodeMultipleTargets = "MULTIPLE_TARGETS"
	CodeInvalidOptions  = "INVALID_OPTIONS"
	CodeHTTPError       = "HTTP_ERROR"
	CodeConnectionError = "CONNECTION_ERROR"
	CodeDecodeError     = "DECODE_ERROR"
)

// Common errors
var (
	// ErrMissingTarget indicates no url, html or markdown was supplied
	ErrMissingTarget = errors.New("one of url, html or markdown is required")
	// ErrMultipleTargets indicates more than one capture target was supplied
	ErrMultipleTargets = errors.New("only one of url, html or markdown may be set")
	// ErrInvalidOptions indicates a required field is absent or a structural constraint is violated
	ErrInvalidOptions = errors.New("invalid options")
	// ErrConnection indicates no response was obtained from the service
	ErrConnection = errors.New("connection to snapapi failed")
)

// Error is the single error shape returned by every Client operation.
type Error struct {
	Code       string
	Message    string
	StatusCode int
	Details    any
	Err        error
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("snapapi error [%s]: status %d: %s", e.Code, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("snapapi error [%s]: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// IsUnauthorized checks if the error indicates an authentication failure
func (e *Error) IsUnauthorized() bool {
	return e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden
}

// IsQuotaExceeded checks if the plan or quota does not allow the request
func (e *Error) IsQuotaExceeded() bool {
	return e.StatusCode == http.StatusPaymentRequired
}

// IsRateLimited checks if the service rejected the request for rate limiting
func (e *Error) IsRateLimited() bool {
	return e.StatusCode == http.StatusTooManyRequests
}

// IsValidation checks if the request was rejected as invalid, locally or by the service
func (e *Error) IsValidation() bool {
	switch e.Code {
	case CodeMissingTarget, CodeMultipleTargets, CodeInvalidOptions:
		return true
	}
	return e.StatusCode == http.StatusBadRequest
}

// IsServerError checks for a 5xx response
func (e *Error) IsServerError() bool {
	return e.StatusCode >= 500
}

// IsConnection checks if no response was obtained
func (e *Error) IsConnection() bool {
	return e.Code == CodeConnectionError
}

// AsError extracts an *Error from err's chain.
func AsError(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

func validationError(code string, sentinel error, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Err:     sentinel,
	}
}

func connectionError(err error) *Error {
	return &Error{
		Code:    CodeConnectionError,
		Message: fmt.Sprintf("Connection error: %v", err),
		Err:     errors.Join(ErrConnection, err),
	}
}

// errorEnvelope is the body shape of every non-2xx response
type errorEnvelope struct {
	Error *struct {
		Message string `json:"message"`
		Code    string `json:"code"`
		Details any    `json:"details"`
	} `json:"error"`
}

// parseErrorResponse classifies a non-2xx response body.
func parseErrorResponse(statusCode int, body []byte) *Error {
	var env errorEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return &Error{
			Code:       CodeHTTPError,
			Message:    fmt.Sprintf("HTTP %d: %s", statusCode, http.StatusText(statusCode)),
			StatusCode: statusCode,
		}
	}

	apiErr := &Error{
		Code:       CodeHTTPError,
		Message:    fmt.Sprintf("HTTP %d", statusCode),
		StatusCode: statusCode,
	}
	if env.Error != nil {
		if env.Error.Code != "" {
			apiErr.Code = env.Error.Code
		}
		if env.Error.Message != "" {
			apiErr.Message = env.Error.Message
		}
		apiErr.Details = env.Error.Details
	}
	return apiErr
}
