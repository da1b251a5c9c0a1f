package handler

import (
	"time"

	"github.com/yndnr/statmesh/internal/core/domain"
	"github.com/yndnr/statmesh/internal/core/service"
)

// Response is the JSON envelope of health replies and of errors that are
// not part of the text protocol.
type Response struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	Details   string `json:"details,omitempty"`
	RequestID string `json:"request_id,omitempty"`
	Timestamp int64  `json:"timestamp"`
	Data      any    `json:"data,omitempty"`
}

// NewResponse wraps data in a success envelope.
func NewResponse(requestID string, data any) *Response {
	return &Response{
		Code:      "OK",
		Message:   "Success",
		RequestID: requestID,
		Timestamp: time.Now().UnixMilli(),
		Data:      data,
	}
}

// NewErrorResponse builds the envelope for de.
func NewErrorResponse(requestID string, de *domain.DomainError) *Response {
	return &Response{
		Code:      de.Code,
		Message:   de.Message,
		Details:   de.Details,
		RequestID: requestID,
		Timestamp: time.Now().UnixMilli(),
	}
}

// HealthResponse is the data of GET /health and GET /ready.
type HealthResponse struct {
	Status  string `json:"status"`
	Time    string `json:"time"`
	Version string `json:"version,omitempty"`

	// Stats and RecentLookups are only reported by /health.
	Stats         *service.StatCounts `json:"stats,omitempty"`
	RecentLookups string              `json:"recent_lookups,omitempty"`
}
