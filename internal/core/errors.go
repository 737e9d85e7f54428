package core

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for ingestion and store state. Match with errors.Is.
var (
	// ErrDirectoryNotFound is returned when the data directory is missing or
	// holds no files with the tabular extension.
	ErrDirectoryNotFound = errors.New("no inventory files found")

	// ErrNoValidData is returned when files were found but none yielded usable rows.
	ErrNoValidData = errors.New("no valid inventory data")

	// ErrUninitialized is returned by reads on a store that was never loaded.
	ErrUninitialized = errors.New("inventory store not initialized")
)

// MissingFieldError reports required fields absent from a record source.
type MissingFieldError struct {
	Fields []string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("missing required field(s): %s", strings.Join(e.Fields, ", "))
}

// TypeConversionError reports a value that cannot be coerced to its field type.
type TypeConversionError struct {
	Field string
	Value any
	Want  string // "integer", "number", "text"
}

func (e *TypeConversionError) Error() string {
	return fmt.Sprintf("%s: cannot convert %#v to %s", e.Field, e.Value, e.Want)
}

// ValidationError reports a coerced value that violates a business invariant.
// Err is set when the violation was caused by a failed coercion.
type ValidationError struct {
	Field   string
	Value   any
	Message string
	Err     error
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Message)
	}
	return e.Message
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// ReportWriteError reports that the report sink could not be written.
type ReportWriteError struct {
	Path string
	Err  error
}

func (e *ReportWriteError) Error() string {
	return fmt.Sprintf("write report %s: %v", e.Path, e.Err)
}

func (e *ReportWriteError) Unwrap() error {
	return e.Err
}
