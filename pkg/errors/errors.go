package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"sort"
)

// ErrorCode represents a unique error code
type ErrorCode int

// Common error codes
const (
	ErrNotFound ErrorCode = iota + 1000
	ErrBadRequest
	ErrUnauthorized
	ErrForbidden
	ErrInternal
	ErrValidation
	ErrConflict
	ErrNetwork
)

// Kind is the coarse classification UI code switches on. Callers never see
// raw transport errors, only one of these kinds plus a readable message.
type Kind string

const (
	KindValidation   Kind = "validation"
	KindNotFound     Kind = "not_found"
	KindServer       Kind = "server"
	KindNetwork      Kind = "network"
	KindUnauthorized Kind = "unauthorized"
	KindConflict     Kind = "conflict"
)

// AppError represents an application error
type AppError struct {
	Code    ErrorCode           `json:"code"`
	Kind    Kind                `json:"kind"`
	Message string              `json:"message"`
	Fields  map[string][]string `json:"errors,omitempty"`
	Err     error               `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// StatusCode maps the error onto the HTTP status the REST boundary uses.
func (e *AppError) StatusCode() int {
	switch e.Code {
	case ErrNotFound:
		return http.StatusNotFound
	case ErrBadRequest:
		return http.StatusBadRequest
	case ErrUnauthorized:
		return http.StatusUnauthorized
	case ErrForbidden:
		return http.StatusForbidden
	case ErrValidation:
		return http.StatusUnprocessableEntity
	case ErrConflict:
		return http.StatusConflict
	case ErrNetwork:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// FieldNames returns the names of the fields carrying errors, sorted.
func (e *AppError) FieldNames() []string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// FirstMessage returns the first message reported for field, or "".
func (e *AppError) FirstMessage(field string) string {
	if msgs := e.Fields[field]; len(msgs) > 0 {
		return msgs[0]
	}
	return ""
}

// Error constructors
func NewNotFound(resource string, err error) *AppError {
	return &AppError{
		Code:    ErrNotFound,
		Kind:    KindNotFound,
		Message: fmt.Sprintf("%s not found", resource),
		Err:     err,
	}
}

func NewBadRequest(message string, err error) *AppError {
	return &AppError{
		Code:    ErrBadRequest,
		Kind:    KindValidation,
		Message: message,
		Err:     err,
	}
}

func NewInternal(err error) *AppError {
	return &AppError{
		Code:    ErrInternal,
		Kind:    KindServer,
		Message: "internal server error",
		Err:     err,
	}
}

// Common errors
func NotFound(resource string, err error) *AppError {
	return NewNotFound(resource, err)
}

func BadRequest(message string, err error) *AppError {
	return NewBadRequest(message, err)
}

func Internal(err error) *AppError {
	return NewInternal(err)
}

func Unauthorized(err error) *AppError {
	return &AppError{
		Code:    ErrUnauthorized,
		Kind:    KindUnauthorized,
		Message: "unauthorized",
		Err:     err,
	}
}

func Forbidden(message string) *AppError {
	return &AppError{
		Code:    ErrForbidden,
		Kind:    KindUnauthorized,
		Message: message,
	}
}

func Conflict(message string) *AppError {
	return &AppError{
		Code:    ErrConflict,
		Kind:    KindConflict,
		Message: message,
	}
}

// Validation builds a field-scoped error. fields maps a field name to its
// messages, in the shape the REST boundary returns with a 422.
func Validation(message string, fields map[string][]string) *AppError {
	if message == "" {
		message = "The given data was invalid."
	}
	return &AppError{
		Code:    ErrValidation,
		Kind:    KindValidation,
		Message: message,
		Fields:  fields,
	}
}

// FieldError is shorthand for a validation error on a single field.
func FieldError(field, message string) *AppError {
	return Validation(message, map[string][]string{field: {message}})
}

func Network(err error) *AppError {
	return &AppError{
		Code:    ErrNetwork,
		Kind:    KindNetwork,
		Message: "the server could not be reached",
		Err:     err,
	}
}

func Server(status int, message string) *AppError {
	if message == "" {
		message = fmt.Sprintf("request failed with status %d", status)
	}
	return &AppError{
		Code:    ErrInternal,
		Kind:    KindServer,
		Message: message,
	}
}

// As extracts an *AppError from err.
func As(err error) (*AppError, bool) {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// KindOf reports the kind of err, treating anything unclassified as a server error.
func KindOf(err error) Kind {
	if appErr, ok := As(err); ok {
		return appErr.Kind
	}
	return KindServer
}

func IsValidation(err error) bool { return err != nil && KindOf(err) == KindValidation }

func IsNotFound(err error) bool { return err != nil && KindOf(err) == KindNotFound }

func IsConflict(err error) bool { return err != nil && KindOf(err) == KindConflict }
