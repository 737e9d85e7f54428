package core

// error_messages.go maps engine errors to short user-facing messages with
// codes, so a command-line user can quote a code when reporting a problem.
//
// # Validation Errors (VAL001-VAL099)
//
//	VAL001 - Missing field: A required field is missing
//	         Action: Provide name, quantity, unit_price and category
//	VAL002 - Type conversion: A value has the wrong type
//	         Action: Use whole numbers for quantity and decimals for unit_price
//	VAL003 - Invalid value: A value breaks an inventory rule
//	         Action: Quantities and prices must be non-negative; names and categories non-empty
//	VAL004 - Missing column: A file lacks a required column
//	         Patterns: "missing required column" (skip reasons carried by ErrNoValidData)
//
// # Ingestion Errors (ING001-ING099)
//
//	ING001 - No files: No inventory files were found
//	ING002 - No data: Files were found but none contained usable rows
//	ING003 - File too large: A file exceeds the configured size limit
//	         Patterns: "file too large" (skip reasons carried by ErrNoValidData)
//
// # Store and Report Errors
//
//	STO001 - Not loaded: The inventory has not been consolidated yet
//	RPT001 - Report not written: The report file could not be written
//	CTX001 - Interrupted: The operation was cancelled
//
// # Default Error (ERR000)
//
// Typed errors are matched first with errors.Is / errors.As; plain errors
// fall back to case-insensitive pattern matching. The first match wins.

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string // What happened (user-friendly)
	Action  string // What to do about it
	Code    string // Error code for support reference
}

var (
	msgMissingField = UserMessage{
		Message: "A required field is missing",
		Action:  "Provide name, quantity, unit_price and category",
		Code:    "VAL001",
	}
	msgTypeConversion = UserMessage{
		Message: "A value has the wrong type",
		Action:  "Use whole numbers for quantity and decimals for unit_price",
		Code:    "VAL002",
	}
	msgInvalidValue = UserMessage{
		Message: "A value breaks an inventory rule",
		Action:  "Quantities and prices must be non-negative; names and categories non-empty",
		Code:    "VAL003",
	}
	msgNoFiles = UserMessage{
		Message: "No inventory files were found",
		Action:  "Check the data directory and file extension",
		Code:    "ING001",
	}
	msgNoData = UserMessage{
		Message: "No file contained usable inventory rows",
		Action:  "Check that files have name, quantity, unit_price and category columns",
		Code:    "ING002",
	}
	msgNotLoaded = UserMessage{
		Message: "The inventory has not been consolidated yet",
		Action:  "Load inventory files before querying",
		Code:    "STO001",
	}
	msgReportWrite = UserMessage{
		Message: "The report file could not be written",
		Action:  "Check that the output path is writable",
		Code:    "RPT001",
	}
	msgInterrupted = UserMessage{
		Message: "The operation was cancelled",
		Action:  "Run the command again when ready",
		Code:    "CTX001",
	}
)

// errorPattern defines a pattern to match and its corresponding user message.
type errorPattern struct {
	pattern string
	msg     UserMessage
}

// errorPatterns catches errors that reach MapError without a typed wrapper,
// and refines ErrNoValidData by the skip reasons it carries.
var errorPatterns = []errorPattern{
	{
		pattern: "missing required column",
		msg: UserMessage{
			Message: "A file lacks a required column",
			Action:  "Add the missing column header to the file",
			Code:    "VAL004",
		},
	},
	{
		pattern: "file too large",
		msg: UserMessage{
			Message: "A file exceeds the configured size limit",
			Action:  "Split the file or raise INGEST_MAX_FILE_SIZE",
			Code:    "ING003",
		},
	},
	{pattern: "context canceled", msg: msgInterrupted},
}

// defaultMessage is returned when no specific pattern matches.
var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Check inventory.log for details",
	Code:    "ERR000",
}

// MapError converts an engine error to a user-friendly message.
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	var (
		missing *MissingFieldError
		conv    *TypeConversionError
		invalid *ValidationError
		write   *ReportWriteError
	)

	switch {
	case errors.Is(err, context.Canceled):
		return msgInterrupted
	case errors.As(err, &write):
		return msgReportWrite
	case errors.Is(err, ErrDirectoryNotFound):
		return msgNoFiles
	case errors.Is(err, ErrNoValidData):
		// The wrap lists why each file was skipped; a known cause is more
		// useful than the generic message.
		if msg, ok := matchPattern(err); ok && msg.Code != msgInterrupted.Code {
			return msg
		}
		return msgNoData
	case errors.Is(err, ErrUninitialized):
		return msgNotLoaded
	case errors.As(err, &missing):
		return msgMissingField
	case errors.As(err, &invalid):
		return msgInvalidValue
	case errors.As(err, &conv):
		return msgTypeConversion
	}

	if msg, ok := matchPattern(err); ok {
		return msg
	}

	return defaultMessage
}

// matchPattern returns the message of the first pattern found in err's text.
func matchPattern(err error) (UserMessage, bool) {
	errStr := strings.ToLower(err.Error())
	for _, ep := range errorPatterns {
		if strings.Contains(errStr, ep.pattern) {
			return ep.msg, true
		}
	}
	return UserMessage{}, false
}

// FormatUserError creates a formatted error string for display.
// The format is: "Message (Code: XXX). Action"
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}

// IsUserFacing reports whether err maps to a specific message rather than
// the generic ERR000 fallback.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}
