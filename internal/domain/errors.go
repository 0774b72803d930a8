package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrFetchFailed signals that the product records could not be fetched.
	ErrFetchFailed = errors.New("failed to fetch products")
	// ErrSuperseded signals that a newer refresh replaced an in-flight one.
	ErrSuperseded = errors.New("refresh superseded by a newer request")
	// ErrBackendStatus signals a non-success status reported by the search backend.
	ErrBackendStatus = errors.New("search backend returned an error status")
	// ErrMalformedResponse signals a backend response that could not be decoded.
	ErrMalformedResponse = errors.New("malformed search backend response")
	// ErrHealthUnavailable signals that the health bridge itself could not run.
	ErrHealthUnavailable = errors.New("health probe unavailable")
)

// FetchError is returned by the record fetcher for any transport or decode failure.
// Its message is generic; the cause is reachable through errors.Is/As for logging only.
type FetchError struct {
	Cause error
}

// NewFetchError wraps cause into a FetchError.
func NewFetchError(cause error) error {
	return &FetchError{Cause: cause}
}

func (e *FetchError) Error() string { return ErrFetchFailed.Error() }

// Unwrap exposes both ErrFetchFailed and the underlying cause.
func (e *FetchError) Unwrap() []error {
	if e.Cause == nil {
		return []error{ErrFetchFailed}
	}
	return []error{ErrFetchFailed, e.Cause}
}

// DataShapeError records a record field that had to be coerced during aggregation.
type DataShapeError struct {
	RecordID string `json:"record_id"`
	Field    string `json:"field"`
	Reason   string `json:"reason"`
}

func (e DataShapeError) Error() string {
	return fmt.Sprintf("record %q: field %s: %s", e.RecordID, e.Field, e.Reason)
}
