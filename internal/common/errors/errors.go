// Package errors provides the standardized error taxonomy for the
// matching and notification pipeline.
package errors

import (
	"errors"
	"fmt"
	"time"
)

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodeGeocodeFailure ErrorCode = "GEOCODE_FAILURE"
	ErrCodePlaceNotFound  ErrorCode = "PLACE_NOT_FOUND"
	ErrCodeRouteNotFound  ErrorCode = "ROUTE_NOT_FOUND"
	ErrCodeTransport      ErrorCode = "TRANSPORT_ERROR"

	ErrCodeDuplicateEnqueue           ErrorCode = "DUPLICATE_ENQUEUE"
	ErrCodeIncompleteNotificationData ErrorCode = "INCOMPLETE_NOTIFICATION_DATA"
	ErrCodeSendFailure                ErrorCode = "SEND_FAILURE"
	ErrCodeStoreUnavailable           ErrorCode = "STORE_UNAVAILABLE"
	ErrCodePreferenceValidationFailed ErrorCode = "PREFERENCE_VALIDATION_FAILED"
)

// PipelineError represents a structured application error.
type PipelineError struct {
	Code      ErrorCode `json:"code"`
	Message   string    `json:"message"`
	Details   string    `json:"details,omitempty"`
	Retryable bool      `json:"retryable"`
	Timestamp time.Time `json:"timestamp"`
}

func (e *PipelineError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("PipelineError[%s]: %s (%s)", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("PipelineError[%s]: %s", e.Code, e.Message)
}

// HasCode reports whether err carries the given pipeline error code.
func HasCode(err error, code ErrorCode) bool {
	var pe *PipelineError
	if errors.As(err, &pe) {
		return pe.Code == code
	}
	return false
}

// NewGeocodeFailure covers both an errored geocoding call and an empty
// result set; either way the affected listing degrades to non-match.
func NewGeocodeFailure(address string, err error) *PipelineError {
	details := fmt.Sprintf("address: %s", address)
	if err != nil {
		details = fmt.Sprintf("address: %s, error: %s", address, err.Error())
	}
	return &PipelineError{
		Code:      ErrCodeGeocodeFailure,
		Message:   "Address could not be geocoded",
		Details:   details,
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewPlaceNotFound creates a non-retryable nearest-place lookup error.
func NewPlaceNotFound(keyword string) *PipelineError {
	return &PipelineError{
		Code:      ErrCodePlaceNotFound,
		Message:   "No place matched the category keyword",
		Details:   fmt.Sprintf("keyword: %s", keyword),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewRouteNotFound creates a non-retryable routing error.
func NewRouteNotFound(destination string) *PipelineError {
	return &PipelineError{
		Code:      ErrCodeRouteNotFound,
		Message:   "No route found to destination",
		Details:   fmt.Sprintf("destination: %s", destination),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewTransportError creates a retryable network/timeout error for an
// external call.
func NewTransportError(service string, err error) *PipelineError {
	return &PipelineError{
		Code:      ErrCodeTransport,
		Message:   fmt.Sprintf("External service '%s' transport error", service),
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewDuplicateEnqueue is the expected no-op outcome of inserting a
// notification for a (user, listing) pair that is already queued.
func NewDuplicateEnqueue(userID, listingID string) *PipelineError {
	return &PipelineError{
		Code:      ErrCodeDuplicateEnqueue,
		Message:   "Notification already queued for pair",
		Details:   fmt.Sprintf("userId: %s, listingId: %s", userID, listingID),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewIncompleteNotificationData creates a non-retryable error for a
// notification whose joined listing or contact data is missing.
func NewIncompleteNotificationData(notificationID string) *PipelineError {
	return &PipelineError{
		Code:      ErrCodeIncompleteNotificationData,
		Message:   "Notification is missing listing or contact data",
		Details:   fmt.Sprintf("notificationId: %s", notificationID),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewSendFailure creates a delivery bridge failure error.
func NewSendFailure(recipient string, err error) *PipelineError {
	details := fmt.Sprintf("recipient: %s", recipient)
	if err != nil {
		details = fmt.Sprintf("recipient: %s, error: %s", recipient, err.Error())
	}
	return &PipelineError{
		Code:      ErrCodeSendFailure,
		Message:   "Delivery bridge rejected or failed to send message",
		Details:   details,
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewStoreUnavailable creates the only cycle-fatal error: the backing
// store cannot be reached, so the whole cycle aborts and the scheduler
// retries on its next tick.
func NewStoreUnavailable(err error) *PipelineError {
	var details string
	if err != nil {
		details = err.Error()
	}
	return &PipelineError{
		Code:      ErrCodeStoreUnavailable,
		Message:   "Backing store unavailable",
		Details:   details,
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewPreferenceValidationFailed creates a non-retryable validation error
// for a preference filter payload.
func NewPreferenceValidationFailed(details string) *PipelineError {
	return &PipelineError{
		Code:      ErrCodePreferenceValidationFailed,
		Message:   "Preference filters failed validation",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}
