// Package apperror defines the error taxonomy shared by the service layer
// and the HTTP handlers. Handlers map these onto status codes with errors.Is;
// raw store errors never cross this boundary.
package apperror

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrValidation   = errors.New("validation failed")
	ErrUnauthorized = errors.New("unauthorized")
	ErrCreateFailed = errors.New("create failed")
	ErrUpdateFailed = errors.New("update failed")
	ErrPersistence  = errors.New("persistence failure")
)

// AppError wraps one of the sentinels with a caller-facing message.
type AppError struct {
	Err     error
	Message string
}

func (e *AppError) Error() string {
	if e.Message == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("%s: %s", e.Err, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NotFound(resource string) *AppError {
	return &AppError{Err: ErrNotFound, Message: resource + " not found"}
}

func Conflict(message string) *AppError {
	return &AppError{Err: ErrConflict, Message: message}
}

func Validation(message string) *AppError {
	return &AppError{Err: ErrValidation, Message: message}
}

func Unauthorized(message string) *AppError {
	return &AppError{Err: ErrUnauthorized, Message: message}
}

func CreateFailed(resource string) *AppError {
	return &AppError{Err: ErrCreateFailed, Message: "could not create " + resource}
}

func UpdateFailed(resource string) *AppError {
	return &AppError{Err: ErrUpdateFailed, Message: "could not update " + resource}
}

func Persistence(operation string) *AppError {
	return &AppError{Err: ErrPersistence, Message: operation + " failed"}
}
