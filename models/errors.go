package models

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound            = errors.New("resource not found")
	ErrDuplicateName       = errors.New("name already exists")
	ErrUpstreamUnavailable = errors.New("upstream service unavailable")
	ErrInvalidPeriod       = errors.New("invalid period")
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrEmailTaken          = errors.New("email already registered")
	ErrTOTPRequired        = errors.New("2FA code required")
	ErrInvalidTOTP         = errors.New("invalid 2FA code")
	ErrTOTPNotSetUp        = errors.New("2FA is not set up")
)

// ValidationError reports a missing or invalid input field.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func NewValidationError(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}
