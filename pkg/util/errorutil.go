package util

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/jackc/pgx/v5"
)

// DomainError standardizes application errors.
type DomainError struct {
	Code       string
	Message    string
	HTTPStatus int
	Details    map[string]any
	Err        error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewDomainError constructs a DomainError.
func NewDomainError(code, message string, status int, details map[string]any) *DomainError {
	return &DomainError{Code: code, Message: message, HTTPStatus: status, Details: details}
}

// NewConfigurationError reports a scope that cannot be resolved. Fatal to
// the whole run.
func NewConfigurationError(message string, details map[string]any) error {
	return NewDomainError("CONFIGURATION_ERROR", message, http.StatusUnprocessableEntity, details)
}

// NewResolutionError reports that no unique adult counterpart team exists
// for a pediatric team. Isolated to one patient.
func NewResolutionError(message string, details map[string]any) error {
	return NewDomainError("RESOLUTION_ERROR", message, http.StatusConflict, details)
}

// NewTransferConflict reports that a membership no longer matches the
// expected source team at transfer time; the patient was already handled.
func NewTransferConflict(message string, details map[string]any) error {
	return NewDomainError("TRANSFER_CONFLICT", message, http.StatusConflict, details)
}

// NewStoreError wraps a failed data-store call.
func NewStoreError(err error) error {
	return &DomainError{
		Code:       "STORE_ERROR",
		Message:    "data store operation failed",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

func NewValidationError(message string, details map[string]any) error {
	return NewDomainError("VALIDATION_FAILED", message, http.StatusBadRequest, details)
}

func NewNotFound(resource string, details map[string]any) error {
	if details == nil {
		details = map[string]any{}
	}
	return &DomainError{
		Code:       "NOT_FOUND",
		Message:    fmt.Sprintf("%s not found", resource),
		HTTPStatus: http.StatusNotFound,
		Details:    details,
	}
}

func NewUnauthorized(message string) error {
	return NewDomainError("UNAUTHORIZED", message, http.StatusUnauthorized, nil)
}

func NewConflict(message string, details map[string]any) error {
	return NewDomainError("CONFLICT", message, http.StatusConflict, details)
}

func NewInternalError(err error) error {
	return &DomainError{
		Code:       "INTERNAL_ERROR",
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// ToDomainError converts generic errors to DomainError.
func ToDomainError(err error) *DomainError {
	if err == nil {
		return nil
	}
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}
	if errors.Is(err, pgx.ErrNoRows) {
		if de, ok := NewNotFound("resource", nil).(*DomainError); ok {
			return de
		}
	}
	return &DomainError{
		Code:       "INTERNAL_ERROR",
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

func MapError(err error) error {
	return ToDomainError(err)
}

// IsCode reports whether err is a DomainError carrying the given code.
func IsCode(err error, code string) bool {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Code == code
	}
	return false
}
