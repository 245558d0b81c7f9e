package services

import (
	"errors"
	"strings"

	"neuroclinic-server/internal/repository"
)

var (
	ErrNotFound  = repository.ErrNotFound
	ErrForbidden = errors.New("forbidden: insufficient permissions")

	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidToken       = errors.New("refresh token not found, expired, or revoked")
	ErrEmailTaken         = errors.New("a user with this email already exists")
	ErrUserInUse          = errors.New("user still has clinical records")

	ErrCaseCodeTaken = errors.New("case code is already in use")
	ErrCaseInactive  = errors.New("clinical case is closed")
	ErrCaseMismatch  = errors.New("clinical case belongs to another patient")

	ErrNoAvailability          = errors.New("doctor has no availability configured")
	ErrSlotInPast              = errors.New("cannot book a slot in the past")
	ErrSlotUnavailable         = errors.New("slot is outside the doctor's availability")
	ErrSlotTaken               = errors.New("slot is already booked")
	ErrInvalidStatusTransition = errors.New("invalid appointment status transition")
)

// ValidationError lists every rejected input field.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Fields, "; ")
}

func invalid(fields ...string) *ValidationError {
	return &ValidationError{Fields: fields}
}

// optional turns a not-found lookup into a nil result.
func optional[T any](v *T, err error) (*T, error) {
	if errors.Is(err, repository.ErrNotFound) {
		return nil, nil
	}
	return v, err
}
