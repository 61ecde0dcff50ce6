package core

// error_messages.go maps errors to user-friendly messages with codes for
// support reference.
//
// # Configuration Errors (CFG001-CFG099)
//
//	CFG001 - Filename: the file name is missing or the file cannot be opened
//	CFG002 - Separator: the separator is missing or longer than one character
//	CFG003 - Escape: the escape character is longer than one character
//	CFG004 - Strip: a strip character is longer than one character
//	CFG005 - Replace: a replacement pair is not one character to one character
//	CFG006 - Value type: the requested value type is unknown
//
// # CSV Format Errors (CSV001-CSV099)
//
//	CSV001 - Cell count: a row has a different number of cells than the first row
//	CSV002 - Header position: a header-like row appears after data rows
//
// # File Errors (FILE001-FILE099)
//
//	FILE001 - File too large
//	FILE003 - Encoding error: the file is not valid UTF-8
//	FILE004 - Invalid path: the file lies outside the data directory
//	FILE005 - Empty file: the file has no rows
//	FILE006 - Read failed
//
// # Data Errors (DATA001-DATA099, IDX001)
//
//	DATA001 - No data: nothing is loaded, or every row is a header row
//	DATA002 - Dataset not found
//	IDX001  - Index out of range
//
// # Load Errors (LOAD001-LOAD099)
//
//	LOAD001 - Too many loads in progress
//	LOAD002 - Request cancelled
//	LOAD003 - Request timed out
//
// # Export Errors (EXP001-EXP099)
//
//	EXP001 - Export not configured: no database connection
//	EXP002 - Invalid table name
//	EXP003 - Table exists
//	EXP004 - Database unreachable
//	EXP005 - Invalid column type
//	EXP006 - No data rows to export
//
// # Request Errors (REQ001-REQ099)
//
//	REQ001 - Malformed request: a parameter or body could not be read
//
// # Default Error (ERR000)
//
// Fallback when nothing matches. Check the application logs for the
// original technical error.
//
// # Matching
//
// Errors are first matched with errors.Is against known sentinels, in order.
// Errors that do not wrap a sentinel (database driver errors, for example)
// are then matched case-insensitively by message with strings.Contains.

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/JonMunkholm/slightcsv/internal/export"
)

// ErrBadRequest marks a malformed request parameter or body.
var ErrBadRequest = errors.New("invalid request")

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string // What happened (user-friendly)
	Action  string // What to do about it
	Code    string // Error code for support reference
}

// errorMatch maps a sentinel error to its user message.
type errorMatch struct {
	target error
	msg    UserMessage
}

// errorPattern maps a message fragment to its user message.
type errorPattern struct {
	pattern string
	msg     UserMessage
}

// errorMatches is checked in order; context errors come before KindRead
// because a cancelled load wraps both.
var errorMatches = []errorMatch{
	{context.Canceled, UserMessage{
		Message: "Request was cancelled",
		Action:  "Please try again",
		Code:    "LOAD002",
	}},
	{context.DeadlineExceeded, UserMessage{
		Message: "Request timed out",
		Action:  "Try loading a smaller file or try again later",
		Code:    "LOAD003",
	}},
	{ErrTooManyLoads, UserMessage{
		Message: "System is busy loading other files",
		Action:  "Please wait a moment and try again",
		Code:    "LOAD001",
	}},

	{ErrFilename, UserMessage{
		Message: "The file name is missing or the file cannot be opened",
		Action:  "Check that the file exists and is readable",
		Code:    "CFG001",
	}},
	{ErrSeparator, UserMessage{
		Message: "The separator must be exactly one character",
		Action:  "Set a separator such as ',' or ';'",
		Code:    "CFG002",
	}},
	{ErrEscape, UserMessage{
		Message: "The escape character must be exactly one character",
		Action:  "Use a single quote character such as '\"'",
		Code:    "CFG003",
	}},
	{ErrStrip, UserMessage{
		Message: "Every strip character must be exactly one character",
		Action:  "List the characters to remove one by one",
		Code:    "CFG004",
	}},
	{ErrReplace, UserMessage{
		Message: "Replacements must map one character to one character",
		Action:  "Check the replacement pairs",
		Code:    "CFG005",
	}},
	{ErrValueType, UserMessage{
		Message: "Unknown value type",
		Action:  "Use string, int, float or double",
		Code:    "CFG006",
	}},

	{ErrFormatCellCount, UserMessage{
		Message: "A row has a different number of cells than the first row",
		Action:  "Check the separator and escape settings or fix the row",
		Code:    "CSV001",
	}},
	{ErrFormatHeader, UserMessage{
		Message: "A header row appears after data rows",
		Action:  "Move header rows to the top of the file",
		Code:    "CSV002",
	}},

	{ErrFileTooLarge, UserMessage{
		Message: "File exceeds the maximum size limit",
		Action:  "Split the file into smaller chunks",
		Code:    "FILE001",
	}},
	{ErrEncoding, UserMessage{
		Message: "File contains invalid characters",
		Action:  "Save file as UTF-8 encoding",
		Code:    "FILE003",
	}},
	{ErrInvalidPath, UserMessage{
		Message: "The file is not inside the data directory",
		Action:  "Use a path relative to the data directory",
		Code:    "FILE004",
	}},
	{ErrNoRows, UserMessage{
		Message: "The file contains no rows",
		Action:  "Please load a CSV file with data rows",
		Code:    "FILE005",
	}},
	{ErrRead, UserMessage{
		Message: "The file could not be read",
		Action:  "Please try again",
		Code:    "FILE006",
	}},

	{ErrDatasetNotFound, UserMessage{
		Message: "Dataset not found",
		Action:  "The dataset may have been removed. Please load the file again",
		Code:    "DATA002",
	}},
	{ErrData, UserMessage{
		Message: "No data is available",
		Action:  "Load the file first, or lower the header count",
		Code:    "DATA001",
	}},
	{ErrIndex, UserMessage{
		Message: "Row or column index out of range",
		Action:  "Check the row and column counts of the dataset",
		Code:    "IDX001",
	}},

	{ErrExportUnavailable, UserMessage{
		Message: "Export is not configured",
		Action:  "Set DATABASE_URL to enable exports",
		Code:    "EXP001",
	}},
	{export.ErrInvalidTable, UserMessage{
		Message: "Invalid table name",
		Action:  "Use letters, digits and underscores only",
		Code:    "EXP002",
	}},
	{export.ErrInvalidType, UserMessage{
		Message: "Invalid column type",
		Action:  "Use text, bigint, double, numeric or boolean for existing columns",
		Code:    "EXP005",
	}},
	{export.ErrNoData, UserMessage{
		Message: "The dataset has no data rows to export",
		Action:  "Lower the header count or load another file",
		Code:    "EXP006",
	}},

	{ErrBadRequest, UserMessage{
		Message: "The request is malformed",
		Action:  "Check the request parameters",
		Code:    "REQ001",
	}},
}

// errorPatterns covers errors from the database driver.
var errorPatterns = []errorPattern{
	{
		pattern: "already exists",
		msg: UserMessage{
			Message: "A table with this name already exists",
			Action:  "Choose another table name",
			Code:    "EXP003",
		},
	},
	{
		pattern: "connection refused",
		msg: UserMessage{
			Message: "Unable to connect to database",
			Action:  "Please try again in a few moments",
			Code:    "EXP004",
		},
	},
	{
		pattern: "timeout",
		msg: UserMessage{
			Message: "Operation timed out",
			Action:  "Try again later",
			Code:    "LOAD003",
		},
	},
}

// defaultMessage is returned when nothing matches (ERR000).
var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-friendly message.
// It returns the zero UserMessage for a nil error and the ERR000 fallback
// when nothing matches.
//
// Example:
//
//	_, err := parser.Load()
//	msg := MapError(err)
//	// msg.Code == "CSV001" for a ragged file
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	for _, em := range errorMatches {
		if errors.Is(err, em.target) {
			return em.msg
		}
	}

	errStr := strings.ToLower(err.Error())
	for _, ep := range errorPatterns {
		if strings.Contains(errStr, ep.pattern) {
			return ep.msg
		}
	}

	return defaultMessage
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
// the ERR000 fallback.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}

// UserError wraps a technical error with its user message.
type UserError struct {
	UserMessage
	Err error
}

func (e *UserError) Error() string { return e.Message }

func (e *UserError) Unwrap() error { return e.Err }

// NewUserError wraps err with its mapped message. It returns nil for nil.
func NewUserError(err error) *UserError {
	if err == nil {
		return nil
	}
	return &UserError{UserMessage: MapError(err), Err: err}
}
