package schema

import (
	"fmt"
)

var (
	ErrInternal         = NewError("generic.internal", "An internal error occurred.", nil)
	ErrNotFound         = NewError("generic.notFound", "Resource not found.", nil)
	ErrMethodNotAllowed = NewError("generic.methodNotAllowed", "Method not allowed.", nil)
)

// ErrorResponse represents the response structure sent by the API whenever errors occurred
type ErrorResponse struct {
	Status int      `json:"status"`
	Errors []*Error `json:"errors"`
}

// Error represents a single error present in the ErrorResponse
type Error struct {
	Type    string         `json:"type"`
	Message string         `json:"message"`
	Details map[string]any `json:"details"`
}

// NewError creates an API error; nil details are sent as an empty object
func NewError(typ, message string, details map[string]any) *Error {
	if details == nil {
		details = map[string]any{}
	}
	return &Error{
		Type:    typ,
		Message: message,
		Details: details,
	}
}

// Error implements the error interface so API errors can be logged and wrapped
func (err *Error) Error() string {
	return fmt.Sprintf("%s: %s", err.Type, err.Message)
}
