package storefront

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidCredentials     = errors.New("invalid email or password")
	ErrEmailAlreadyRegistered = errors.New("email already registered")
	ErrEmailNotFound          = errors.New("email not found")
	ErrNoActiveSession        = errors.New("no user logged in")
	ErrNotAuthenticated       = errors.New("please login to continue")
	ErrRemoteRequestFailed    = errors.New("remote request failed")

	ErrSecretMismatch  = errors.New("new passwords do not match")
	ErrSecretTooShort  = errors.New("password must be at least 6 characters long")
	ErrCheckoutPending = errors.New("checkout is not at the review step")
)

// RemoteError describes a failed call to the collection API. It matches
// ErrRemoteRequestFailed under errors.Is.
type RemoteError struct {
	Op         string
	StatusCode int
	Message    string
	Err        error
}

func (e *RemoteError) Error() string {
	switch {
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	case e.Message != "":
		return fmt.Sprintf("%s: %d %s", e.Op, e.StatusCode, e.Message)
	default:
		return fmt.Sprintf("%s: status %d", e.Op, e.StatusCode)
	}
}

func (e *RemoteError) Unwrap() error { return e.Err }

func (e *RemoteError) Is(target error) bool { return target == ErrRemoteRequestFailed }
