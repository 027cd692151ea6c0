package models

import (
	"errors"
	"fmt"
)

// Sentinel errors for common failure conditions
var (
	ErrNotFound       = errors.New("resource not found")
	ErrConflict       = errors.New("resource already exists")
	ErrUnauthorized   = errors.New("unauthorized")
	ErrForbidden      = errors.New("forbidden")
	ErrBadRequest     = errors.New("bad request")
	ErrInternalServer = errors.New("internal server error")

	// Account state errors
	ErrAlreadyConfirmed  = errors.New("profile already confirmed")
	ErrProfileIncomplete = errors.New("profile not completed")
	ErrAccountNotActive  = errors.New("account is not active")
)

// ProfileIncompleteError is returned when a confirmed account is required but
// the profile has not been completed. It carries the ref id so the client can
// resume the profile-completion flow.
type ProfileIncompleteError struct {
	RefID string
}

func (e *ProfileIncompleteError) Error() string {
	return fmt.Sprintf("profile not completed for %s", e.RefID)
}

func (e *ProfileIncompleteError) Unwrap() error {
	return ErrProfileIncomplete
}

// AccountNotActiveError carries the account status that blocked the login.
type AccountNotActiveError struct {
	Status string
}

func (e *AccountNotActiveError) Error() string {
	return fmt.Sprintf("account is %s", e.Status)
}

func (e *AccountNotActiveError) Unwrap() error {
	return ErrAccountNotActive
}

// DuplicateAccountError is returned when registration collides with an
// existing account. Field names the unique key that collided and RefID
// identifies the existing account so the client can resume with it.
type DuplicateAccountError struct {
	Field     string // "firebase_uid" or "email"
	RefID     string
	Confirmed bool
}

func (e *DuplicateAccountError) Error() string {
	return fmt.Sprintf("account already exists for %s (ref %s)", e.Field, e.RefID)
}

func (e *DuplicateAccountError) Unwrap() error {
	return ErrConflict
}

// RoleDeniedError is returned when the role flag for the requested portal
// type is not set on the account.
type RoleDeniedError struct {
	Portal PortalType
}

func (e *RoleDeniedError) Error() string {
	return fmt.Sprintf("%s privileges required", e.Portal.RoleName())
}

func (e *RoleDeniedError) Unwrap() error {
	return ErrForbidden
}
