package importer

// errors.go defines the row-level error taxonomy.
//
// Every failure inside ImportRow is converted to a *RowError before it leaves
// the row boundary, so a batch driver only ever sees one error type. Each
// code also maps to a user message with a support code for reports:
//
//	IMP001 invalid_type             Unknown product type tag
//	IMP002 invalid_id               Explicit id does not exist
//	IMP003 missing_parent           Variation parent absent or unresolvable
//	IMP004 attachment_fetch_failed  Image could not be fetched or is not an image
//	IMP005 validation_error         Store rejected a field value
//	ERR000 unknown_failure          Anything else; check the logs

import (
	"errors"
	"fmt"

	"github.com/JonMunkholm/productimport/internal/product"
)

// Code identifies the kind of row failure.
type Code string

const (
	CodeInvalidType           Code = "invalid_type"
	CodeInvalidID             Code = "invalid_id"
	CodeMissingParent         Code = "missing_parent"
	CodeAttachmentFetchFailed Code = "attachment_fetch_failed"
	CodeValidation            Code = "validation_error"
	CodeUnknown               Code = "unknown_failure"
)

// RowError is the uniform error returned for a failed row.
type RowError struct {
	Code    Code
	Message string
	// Data carries context such as the offending id or field names.
	Data map[string]any
	Err  error
}

func (e *RowError) Error() string {
	if e.Message == "" {
		return string(e.Code)
	}
	return e.Message
}

func (e *RowError) Unwrap() error {
	return e.Err
}

// Is matches any *RowError with the same code, so callers can write
// errors.Is(err, importer.ErrInvalidID).
func (e *RowError) Is(target error) bool {
	t, ok := target.(*RowError)
	return ok && t.Code == e.Code
}

// Sentinels for errors.Is.
var (
	ErrInvalidType           = &RowError{Code: CodeInvalidType}
	ErrInvalidID             = &RowError{Code: CodeInvalidID}
	ErrMissingParent         = &RowError{Code: CodeMissingParent}
	ErrAttachmentFetchFailed = &RowError{Code: CodeAttachmentFetchFailed}
	ErrValidation            = &RowError{Code: CodeValidation}
	ErrUnknown               = &RowError{Code: CodeUnknown}
)

func newRowError(code Code, data map[string]any, format string, args ...any) *RowError {
	return &RowError{Code: code, Message: fmt.Sprintf(format, args...), Data: data}
}

// toRowError converts any error raised while importing a row.
func toRowError(err error) *RowError {
	if err == nil {
		return nil
	}

	var re *RowError
	if errors.As(err, &re) {
		return re
	}

	var ve *product.ValidationError
	if errors.As(err, &ve) {
		data := make(map[string]any, len(ve.Fields))
		for field, reason := range ve.Fields {
			data[field] = reason
		}
		return &RowError{Code: CodeValidation, Message: ve.Error(), Data: data, Err: err}
	}

	return &RowError{Code: CodeUnknown, Message: err.Error(), Err: err}
}

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string // What happened
	Action  string // What to do about it
	Code    string // Support reference
}

var userMessages = map[Code]UserMessage{
	CodeInvalidType: {
		Message: "Invalid product type",
		Action:  "Use one of: simple, variable, grouped, external, variation",
		Code:    "IMP001",
	},
	CodeInvalidID: {
		Message: "No product exists with this ID",
		Action:  "Remove the ID column to create a new product, or fix the ID",
		Code:    "IMP002",
	},
	CodeMissingParent: {
		Message: "Variation parent is missing or does not exist",
		Action:  "Import the parent product first and set parent_id",
		Code:    "IMP003",
	},
	CodeAttachmentFetchFailed: {
		Message: "An image could not be imported",
		Action:  "Check that the image URL is reachable and points to an image",
		Code:    "IMP004",
	},
	CodeValidation: {
		Message: "A field value was rejected",
		Action:  "Review the listed fields and correct their values",
		Code:    "IMP005",
	},
}

var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError converts a row error to a user-friendly message.
// Errors that are not row errors map to the ERR000 fallback.
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}
	var re *RowError
	if errors.As(err, &re) {
		if msg, ok := userMessages[re.Code]; ok {
			return msg
		}
	}
	return defaultMessage
}
