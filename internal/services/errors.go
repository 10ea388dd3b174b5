package services

import (
	"errors"

	"github.com/soaringjerry/MindBalance/internal/wellness"
)

type ErrorCode string

const (
	ErrorInvalid      ErrorCode = "invalid"
	ErrorForbidden    ErrorCode = "forbidden"
	ErrorNotFound     ErrorCode = "not_found"
	ErrorConflict     ErrorCode = "conflict"
	ErrorUnauthorized ErrorCode = "unauthorized"
)

// ErrDuplicateRecord is returned by stores when a record with the same owner
// and id already exists.
var ErrDuplicateRecord = errors.New("duplicate record")

type ServiceError struct {
	Code    ErrorCode
	Message string
}

func (e *ServiceError) Error() string { return e.Message }

func NewInvalidError(msg string) error   { return &ServiceError{Code: ErrorInvalid, Message: msg} }
func NewForbiddenError(msg string) error { return &ServiceError{Code: ErrorForbidden, Message: msg} }
func NewNotFoundError(msg string) error  { return &ServiceError{Code: ErrorNotFound, Message: msg} }
func NewConflictError(msg string) error  { return &ServiceError{Code: ErrorConflict, Message: msg} }
func NewUnauthorizedError(msg string) error {
	return &ServiceError{Code: ErrorUnauthorized, Message: msg}
}

func AsServiceError(err error) (*ServiceError, bool) {
	var se *ServiceError
	if errors.As(err, &se) {
		return se, true
	}
	return nil, false
}

// fromCoreError turns input errors raised by the wellness package into invalid
// service errors. Anything else is returned unchanged.
func fromCoreError(err error) error {
	if err == nil {
		return nil
	}
	var (
		inc *wellness.IncompleteInputError
		ood *wellness.OutOfDomainError
	)
	switch {
	case errors.As(err, &inc), errors.As(err, &ood):
		return NewInvalidError(err.Error())
	}
	return err
}
