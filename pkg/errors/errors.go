package errors

import (
	"fmt"
	"strings"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

// ErrorType represents the category of error
type ErrorType string

const (
	// ErrorTypeConfig represents configuration errors (missing URI/credentials)
	ErrorTypeConfig ErrorType = "config"
	// ErrorTypeConnection represents connectivity errors (service unreachable)
	ErrorTypeConnection ErrorType = "connection"
	// ErrorTypeAuth represents rejected-credential errors
	ErrorTypeAuth ErrorType = "auth"
	// ErrorTypeQuery represents read-query errors, propagated verbatim
	ErrorTypeQuery ErrorType = "query"
	// ErrorTypeIngest represents per-record ingestion errors
	ErrorTypeIngest ErrorType = "ingest"
)

// BaseError is the base error type with common fields
type BaseError struct {
	Type      ErrorType
	Message   string
	Timestamp time.Time
	Err       error // Wrapped error
}

// Error implements the error interface
func (e *BaseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

// Unwrap returns the wrapped error for error unwrapping
func (e *BaseError) Unwrap() error {
	return e.Err
}

// Category returns the error's type. Promoted through embedding so
// every typed error answers IsErrorType without reflection.
func (e *BaseError) Category() ErrorType {
	return e.Type
}

// NewBaseError creates a new base error
func NewBaseError(errType ErrorType, message string, err error) *BaseError {
	return &BaseError{
		Type:      errType,
		Message:   message,
		Timestamp: time.Now(),
		Err:       err,
	}
}

// Config Errors

// ErrConfigIncomplete is returned when a required connection parameter is missing
type ErrConfigIncomplete struct {
	*BaseError
	Field string
}

func NewConfigIncomplete(field string) *ErrConfigIncomplete {
	return &ErrConfigIncomplete{
		BaseError: NewBaseError(ErrorTypeConfig, fmt.Sprintf("missing required config: %s", field), nil),
		Field:     field,
	}
}

// Connection Errors

// ErrServiceUnreachable is returned when the graph store cannot be reached
type ErrServiceUnreachable struct {
	*BaseError
	URI string
}

func NewServiceUnreachable(uri string, err error) *ErrServiceUnreachable {
	return &ErrServiceUnreachable{
		BaseError: NewBaseError(ErrorTypeConnection, fmt.Sprintf("graph store unreachable: %s", uri), err),
		URI:       uri,
	}
}

// ErrAuthRejected is returned when the graph store rejects the configured credentials
type ErrAuthRejected struct {
	*BaseError
	Username string
}

func NewAuthRejected(username string, err error) *ErrAuthRejected {
	return &ErrAuthRejected{
		BaseError: NewBaseError(ErrorTypeAuth, fmt.Sprintf("credentials rejected for user: %s", username), err),
		Username:  username,
	}
}

// ErrNotConnected is returned when a query runs before Connect()
var ErrNotConnected = NewBaseError(ErrorTypeConnection, "store client not connected", nil)

// Query Errors

// ErrQueryFailed is returned when a graph query fails
type ErrQueryFailed struct {
	*BaseError
	Query string
}

func NewQueryFailed(query string, err error) *ErrQueryFailed {
	return &ErrQueryFailed{
		BaseError: NewBaseError(ErrorTypeQuery, "query failed", err),
		Query:     query,
	}
}

// Ingest Errors

// ErrRecordRejected is returned when a record fails validation and is dropped
type ErrRecordRejected struct {
	*BaseError
	Reason string
}

func NewRecordRejected(reason string) *ErrRecordRejected {
	return &ErrRecordRejected{
		BaseError: NewBaseError(ErrorTypeIngest, fmt.Sprintf("record rejected: %s", reason), nil),
		Reason:    reason,
	}
}

// ErrRecordFailed is returned when a record exhausts its transaction retries
type ErrRecordFailed struct {
	*BaseError
	PaperID  string
	Attempts int
}

func NewRecordFailed(paperID string, attempts int, err error) *ErrRecordFailed {
	return &ErrRecordFailed{
		BaseError: NewBaseError(ErrorTypeIngest, fmt.Sprintf("record %s failed after %d attempts", paperID, attempts), err),
		PaperID:   paperID,
		Attempts:  attempts,
	}
}

// Helper functions

// IsErrorType checks if an error is of a specific type
func IsErrorType(err error, errType ErrorType) bool {
	if err == nil {
		return false
	}
	if categorized, ok := err.(interface{ Category() ErrorType }); ok {
		return categorized.Category() == errType
	}
	if wrapper, ok := err.(interface{ Unwrap() error }); ok {
		if inner := wrapper.Unwrap(); inner != nil {
			return IsErrorType(inner, errType)
		}
	}
	return false
}

// IsTransient reports whether an error is a contention-caused write
// failure (deadlock, lock timeout, leader switch) expected to succeed
// on retry, as opposed to a data-validity failure.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	if neo4j.IsRetryable(err) {
		return true
	}
	msg := strings.ToLower(err.Error())
	for _, marker := range []string{
		"deadlock",
		"deadlockdetected",
		"lockclientstopped",
		"transienterror",
		"transaction.terminated",
		"lock acquisition timeout",
	} {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}
