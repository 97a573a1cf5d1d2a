// Package errors defines the storefront's error vocabulary: a handful of
// sentinel causes and the AppError type that carries a stable code and an
// HTTP status to the response layer.
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Sentinel causes. Wrap them with %w or build an AppError around them.
var (
	ErrNotFound       = errors.New("resource not found")
	ErrInvalidInput   = errors.New("invalid input")
	ErrUnauthorized   = errors.New("unauthorized")
	ErrConflict       = errors.New("conflict")
	ErrInternal       = errors.New("internal error")
	ErrServiceUnavail = errors.New("service unavailable")
)

type kind struct {
	code   string
	status int
	// public is shown to clients for a bare sentinel; "" exposes err.Error().
	public string
}

var kinds = map[error]kind{
	ErrNotFound:       {"NOT_FOUND", http.StatusNotFound, "resource not found"},
	ErrInvalidInput:   {"INVALID_INPUT", http.StatusBadRequest, ""},
	ErrUnauthorized:   {"UNAUTHORIZED", http.StatusUnauthorized, "session required"},
	ErrConflict:       {"CONFLICT", http.StatusConflict, ""},
	ErrInternal:       {"INTERNAL_ERROR", http.StatusInternalServerError, "an internal error occurred"},
	ErrServiceUnavail: {"SERVICE_UNAVAILABLE", http.StatusServiceUnavailable, "service temporarily unavailable"},
}

// lookupOrder fixes the precedence when an error chain matches several sentinels.
var lookupOrder = []error{
	ErrNotFound, ErrInvalidInput, ErrUnauthorized, ErrConflict, ErrServiceUnavail, ErrInternal,
}

// AppError is an error the HTTP layer can render directly.
type AppError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"-"`
	Err     error  `json:"-"`
}

func newAppError(sentinel error, message string, cause error) *AppError {
	k := kinds[sentinel]
	err := sentinel
	if cause != nil && cause != sentinel {
		err = errors.Join(sentinel, cause)
	}
	return &AppError{Code: k.code, Message: message, Status: k.status, Err: err}
}

func (e *AppError) Error() string {
	if e.Err == nil {
		return e.Code + ": " + e.Message
	}
	return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
}

func (e *AppError) Unwrap() error { return e.Err }

// NotFound reports a missing product, cart line, collection or topic.
func NotFound(resource, id string) *AppError {
	return newAppError(ErrNotFound, fmt.Sprintf("%s with id %s not found", resource, id), nil)
}

// InvalidInput rejects a malformed request or an out-of-range value.
func InvalidInput(message string) *AppError {
	return newAppError(ErrInvalidInput, message, nil)
}

// Unauthorized reports a request that carries no usable session.
func Unauthorized(message string) *AppError {
	return newAppError(ErrUnauthorized, message, nil)
}

// Conflict rejects a valid request the current state cannot satisfy,
// such as adding a product that is out of stock.
func Conflict(message string) *AppError {
	return newAppError(ErrConflict, message, nil)
}

// Unavailable reports a dependency (catalog source, Redis) that cannot be reached.
func Unavailable(message string, err error) *AppError {
	return newAppError(ErrServiceUnavail, message, err)
}

// Internal hides err behind a generic message.
func Internal(err error) *AppError {
	return newAppError(ErrInternal, "an internal error occurred", err)
}

// Classify returns the AppError for err, building one from the kind table
// when err only wraps a sentinel. Unrecognised errors become Internal.
func Classify(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	for _, sentinel := range lookupOrder {
		if errors.Is(err, sentinel) {
			k := kinds[sentinel]
			message := k.public
			if message == "" {
				message = err.Error()
			}
			return &AppError{Code: k.code, Message: message, Status: k.status, Err: err}
		}
	}
	return Internal(err)
}

// HTTPStatus maps err to a response status.
func HTTPStatus(err error) int {
	return Classify(err).Status
}
