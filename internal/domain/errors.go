package domain

import (
	"errors"
	"fmt"
	"time"
)

// Common domain errors
var (
	// ErrNotFound is returned when a resource is not found
	ErrNotFound = errors.New("resource not found")

	// ErrInvalidInput is returned when input validation fails
	ErrInvalidInput = errors.New("invalid input")

	// ErrFetch is returned when a page request fails at the transport level
	ErrFetch = errors.New("http request failed")

	// ErrMalformedURL is returned when no streaming id can be read from a URL
	ErrMalformedURL = errors.New("streaming id not found in url")

	// ErrEmbeddedDataNotFound is returned when the page has no script tag with data-props
	ErrEmbeddedDataNotFound = errors.New("script tag with data-props attribute not found")

	// ErrEmptyPayload is returned when the data-props attribute is blank
	ErrEmptyPayload = errors.New("data-props attribute is empty")

	// ErrInvalidJSON is returned when the data-props attribute is not valid JSON
	ErrInvalidJSON = errors.New("data-props attribute is not valid json")

	// ErrMissingField is returned when a required payload field is absent
	ErrMissingField = errors.New("required field not found")

	// ErrInvalidField is returned when a payload field has an unusable value
	ErrInvalidField = errors.New("invalid field value")

	// ErrUnknownStatus is returned for an unrecognized program status name
	ErrUnknownStatus = errors.New("unknown streaming status")

	// ErrUnknownProviderType is returned for an unrecognized providerType
	ErrUnknownProviderType = errors.New("unknown provider type")

	// ErrInvalidTimeRange is returned when a program ends before it begins
	ErrInvalidTimeRange = errors.New("end time must not be before start time")

	// ErrPersistence is returned when saving streaming data fails
	ErrPersistence = errors.New("failed to save streaming data")

	// ErrInvalidRange is returned when a start id is greater than the end id
	ErrInvalidRange = errors.New("start id must not be greater than end id")
)

// FetchError wraps a transport failure for a page request
type FetchError struct {
	URL string
	Err error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("http request error: %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

func (e *FetchError) Is(target error) bool { return target == ErrFetch }

// InvalidJSONError keeps the decoder message and byte offset of a JSON syntax error
type InvalidJSONError struct {
	Offset int64
	Err    error
}

func (e *InvalidJSONError) Error() string {
	if e.Offset > 0 {
		return fmt.Sprintf("%s: %v (offset %d)", ErrInvalidJSON, e.Err, e.Offset)
	}
	return fmt.Sprintf("%s: %v", ErrInvalidJSON, e.Err)
}

func (e *InvalidJSONError) Unwrap() error { return e.Err }

func (e *InvalidJSONError) Is(target error) bool { return target == ErrInvalidJSON }

// MissingFieldError names the first required field that was absent.
// Field is a dotted path such as "program.beginTime".
type MissingFieldError struct {
	Field string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("%s: %s", ErrMissingField, e.Field)
}

func (e *MissingFieldError) Is(target error) bool { return target == ErrMissingField }

// InvalidFieldError reports a present field whose value has the wrong shape
type InvalidFieldError struct {
	Field  string
	Value  interface{}
	Reason string
}

func (e *InvalidFieldError) Error() string {
	return fmt.Sprintf("%s: %s=%v (%s)", ErrInvalidField, e.Field, e.Value, e.Reason)
}

func (e *InvalidFieldError) Is(target error) bool { return target == ErrInvalidField }

// UnknownStatusError carries the unrecognized status name
type UnknownStatusError struct {
	Value string
}

func (e *UnknownStatusError) Error() string {
	return fmt.Sprintf("%s: %q", ErrUnknownStatus, e.Value)
}

func (e *UnknownStatusError) Is(target error) bool { return target == ErrUnknownStatus }

// UnknownProviderTypeError carries the program id and the unrecognized providerType
type UnknownProviderTypeError struct {
	ProgramID string
	Value     string
}

func (e *UnknownProviderTypeError) Error() string {
	return fmt.Sprintf("%s: program=%s, providerType=%q", ErrUnknownProviderType, e.ProgramID, e.Value)
}

func (e *UnknownProviderTypeError) Is(target error) bool { return target == ErrUnknownProviderType }

// InvalidTimeRangeError carries the offending begin and end instants
type InvalidTimeRangeError struct {
	Start time.Time
	End   time.Time
}

func (e *InvalidTimeRangeError) Error() string {
	return fmt.Sprintf("%s: start=%s, end=%s", ErrInvalidTimeRange,
		e.Start.Format(time.RFC3339), e.End.Format(time.RFC3339))
}

func (e *InvalidTimeRangeError) Is(target error) bool { return target == ErrInvalidTimeRange }

// PersistenceError reports which reconciliation stage failed for a program.
// Stages that completed before the failure are not rolled back.
type PersistenceError struct {
	Stage      string // "streamer", "channel" or "streaming"
	ExternalID string
	Err        error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s: stage=%s, streaming_id=%s: %v", ErrPersistence, e.Stage, e.ExternalID, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

func (e *PersistenceError) Is(target error) bool { return target == ErrPersistence }

// InvalidRangeError is returned before any work starts when start > end
type InvalidRangeError struct {
	Start int64
	End   int64
}

func (e *InvalidRangeError) Error() string {
	return fmt.Sprintf("%s: start=%d, end=%d", ErrInvalidRange, e.Start, e.End)
}

func (e *InvalidRangeError) Is(target error) bool { return target == ErrInvalidRange }

// UserFriendlyError wraps an error with a message suitable for the command line
type UserFriendlyError struct {
	Err         error
	UserMessage string
	ExitCode    int
}

// Error implements the error interface
func (e *UserFriendlyError) Error() string {
	if e.UserMessage != "" {
		return e.UserMessage
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "unexpected error"
}

// Unwrap returns the underlying error
func (e *UserFriendlyError) Unwrap() error {
	return e.Err
}

// NewUserFriendlyError creates a new user-friendly error
func NewUserFriendlyError(err error, userMessage string, exitCode int) *UserFriendlyError {
	return &UserFriendlyError{
		Err:         err,
		UserMessage: userMessage,
		ExitCode:    exitCode,
	}
}
