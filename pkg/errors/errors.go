// Package errors provides the error taxonomy for the crosscheck system.
// The three families matter operationally: data-quality errors are recovered
// locally and downgraded to discrepancies, source errors abort a run before a
// misleading partial report can exist, and persistence errors are reported
// without discarding the in-memory verdict.
package errors

import (
	"errors"
	"fmt"
)

// New returns an error that formats as the given text.
// It's an alias for the standard library errors.New for convenience.
var New = errors.New

// Is is an alias for the standard library errors.Is.
var Is = errors.Is

// As is an alias for the standard library errors.As.
var As = errors.As

// Common sentinel errors for the crosscheck system.
var (
	// ErrDataQuality indicates a malformed record that was recovered locally
	// (missing natural key, unparseable date). Never aborts a run.
	ErrDataQuality = errors.New("data quality")

	// ErrSourceUnavailable indicates one side's dataset could not be loaded
	// at all. The run aborts; a comparison that never ran is not the same as
	// one that ran and disagreed.
	ErrSourceUnavailable = errors.New("source unavailable")

	// ErrPersistence indicates the report or snapshot could not be written.
	// The in-memory result is still returned to the caller.
	ErrPersistence = errors.New("persistence failure")

	// ErrNotFound indicates that a requested resource was not found.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates that provided input was invalid.
	ErrInvalidInput = errors.New("invalid input")
)

// MissingKeyError indicates a raw record with no natural key. Such a record
// cannot be joined across sources and is excluded from the comparison set,
// reported as a data-quality discrepancy by the caller.
type MissingKeyError struct {
	Source string // Source pipeline the record came from
	Field  string // Schema field expected to hold the key
}

// Error implements the error interface.
func (e *MissingKeyError) Error() string {
	return fmt.Sprintf("record from %s has no natural key (field %q absent or empty)", e.Source, e.Field)
}

// Is implements errors.Is support.
func (e *MissingKeyError) Is(target error) bool {
	return target == ErrDataQuality
}

// NewMissingKeyError creates a new MissingKeyError.
func NewMissingKeyError(source, field string) *MissingKeyError {
	return &MissingKeyError{Source: source, Field: field}
}

// DateParseError indicates end-date text that is neither a sentinel nor a
// parseable date.
type DateParseError struct {
	Reference string // Natural key of the affected record
	Raw       string // The text that failed to parse
}

// Error implements the error interface.
func (e *DateParseError) Error() string {
	return fmt.Sprintf("unparseable end date %q on %s", e.Raw, e.Reference)
}

// Is implements errors.Is support.
func (e *DateParseError) Is(target error) bool {
	return target == ErrDataQuality
}

// SourceError represents a failure to load one side's dataset.
type SourceError struct {
	Source    string // Source pipeline identifier
	Operation string // "load", "index"
	Err       error
}

// Error implements the error interface.
func (e *SourceError) Error() string {
	return fmt.Sprintf("source %s unavailable during %s: %v", e.Source, e.Operation, e.Err)
}

// Unwrap implements errors.Unwrap.
func (e *SourceError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is support.
func (e *SourceError) Is(target error) bool {
	return target == ErrSourceUnavailable
}

// NewSourceError creates a new SourceError.
func NewSourceError(source, operation string, err error) *SourceError {
	return &SourceError{Source: source, Operation: operation, Err: err}
}

// PersistenceError represents a failure writing a report, alert, or snapshot.
type PersistenceError struct {
	Operation string // "append report", "replace index", "write evidence"
	Err       error
}

// Error implements the error interface.
func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence failure during %s: %v", e.Operation, e.Err)
}

// Unwrap implements errors.Unwrap.
func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is support.
func (e *PersistenceError) Is(target error) bool {
	return target == ErrPersistence
}

// NewPersistenceError creates a new PersistenceError.
func NewPersistenceError(operation string, err error) *PersistenceError {
	return &PersistenceError{Operation: operation, Err: err}
}

// ConfigError represents a configuration error.
type ConfigError struct {
	Component string
	Message   string
	Err       error
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	if e.Component != "" {
		return fmt.Sprintf("configuration error in %s: %s", e.Component, e.Message)
	}
	return fmt.Sprintf("configuration error: %s", e.Message)
}

// Unwrap implements errors.Unwrap.
func (e *ConfigError) Unwrap() error {
	return e.Err
}

// NewConfigError creates a new ConfigError.
func NewConfigError(component, message string, err error) *ConfigError {
	return &ConfigError{Component: component, Message: message, Err: err}
}

// ValidationError represents a validation failure.
type ValidationError struct {
	Field   string
	Value   any
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation failed for field %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation failed: %s", e.Message)
}

// Is implements errors.Is support.
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

// NewValidationError creates a new ValidationError.
func NewValidationError(field string, value any, message string) *ValidationError {
	return &ValidationError{Field: field, Value: value, Message: message}
}

// Helper functions for error checking

// IsDataQuality checks if an error is a locally recoverable data-quality error.
func IsDataQuality(err error) bool {
	return errors.Is(err, ErrDataQuality)
}

// IsSourceUnavailable checks if an error means a dataset could not be loaded.
func IsSourceUnavailable(err error) bool {
	return errors.Is(err, ErrSourceUnavailable)
}

// IsPersistence checks if an error is a persistence failure.
func IsPersistence(err error) bool {
	return errors.Is(err, ErrPersistence)
}

// IsNotFound checks if an error is a not found error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// Helper wrapping functions for common patterns

// WrapSource wraps an error as a SourceError.
func WrapSource(source, operation string, err error) error {
	if err == nil {
		return nil
	}
	return NewSourceError(source, operation, err)
}

// WrapPersistence wraps an error as a PersistenceError.
func WrapPersistence(operation string, err error) error {
	if err == nil {
		return nil
	}
	return NewPersistenceError(operation, err)
}
