// Package domain defines the core domain models for statmesh.
package domain

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
)

// DomainError is an error the admin API reports to clients.
//
// Codes have the form SM-<AREA>-<NNNN>. The first three digits of NNNN are
// the HTTP status the error is served with; the last one tells apart
// errors sharing a status.
type DomainError struct {
	Code    string
	Message string
	// Details is request-specific context, e.g. the regexp parse error.
	Details string
	Cause   error
}

func (e *DomainError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("[%s] %s: %s", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *DomainError) Unwrap() error {
	return e.Cause
}

// Is matches any DomainError with the same code, so errors.Is works
// against the sentinels below after WithDetails or WithCause.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	return ok && e.Code == t.Code
}

// HTTPStatus returns the status encoded in the code, or 500 when the code
// carries none.
func (e *DomainError) HTTPStatus() int {
	return StatusForCode(e.Code)
}

// WithDetails returns a copy of the error carrying details.
func (e *DomainError) WithDetails(details string) *DomainError {
	c := *e
	c.Details = details
	return &c
}

// WithCause returns a copy of the error wrapping cause.
func (e *DomainError) WithCause(cause error) *DomainError {
	c := *e
	c.Cause = cause
	return &c
}

func newError(code, message string) *DomainError {
	return &DomainError{Code: code, Message: message}
}

// AsDomainError returns the first DomainError in err's chain.
func AsDomainError(err error) (*DomainError, bool) {
	var de *DomainError
	if errors.As(err, &de) {
		return de, true
	}
	return nil, false
}

// GetErrorCode returns the code of the DomainError in err's chain, or "".
func GetErrorCode(err error) string {
	if de, ok := AsDomainError(err); ok {
		return de.Code
	}
	return ""
}

// StatusForCode maps an error code onto its HTTP status.
func StatusForCode(code string) int {
	i := strings.LastIndexByte(code, '-')
	if i < 0 || len(code)-i-1 != 4 {
		return http.StatusInternalServerError
	}
	n, err := strconv.Atoi(code[i+1:])
	if err != nil {
		return http.StatusInternalServerError
	}
	status := n / 10
	if status < 400 || status > 599 || http.StatusText(status) == "" {
		return http.StatusInternalServerError
	}
	return status
}

// Export errors.
var (
	// ErrInvalidFilter means the filter query parameter is not a valid
	// regular expression.
	ErrInvalidFilter = newError("SM-ARG-4001", "invalid filter regex")

	// ErrUnknownFormat means the format query parameter names no renderer.
	ErrUnknownFormat = newError("SM-ARG-4041", "unknown stats format")
)

// System errors.
var (
	ErrBadRequest     = newError("SM-SYS-4000", "bad request")
	ErrRateLimited    = newError("SM-SYS-4290", "too many requests")
	ErrInternalServer = newError("SM-SYS-5000", "internal server error")
)

// ErrAdminIPNotAllowed means the client address is outside admin.allow_list.
var ErrAdminIPNotAllowed = newError("SM-ADMIN-4031", "admin ip not allowed")
