package errors

import (
	"errors"
	"fmt"
)

// Common error types for the web frontend
var (
	// Storage errors
	ErrNotFound           = errors.New("not found")
	ErrStorageUnavailable = errors.New("storage unavailable")
	ErrCorruptValue       = errors.New("corrupt stored value")

	// Session errors
	ErrNoToken            = errors.New("No token received after login")
	ErrNotAuthenticated   = errors.New("not authenticated")
	ErrMissingOAuthCode   = errors.New("No authentication code received from the provider")
	ErrMissingProvider    = errors.New("Provider is required")
	ErrMissingVerifyToken = errors.New("verification token is required")
	ErrAPIBaseURLNotSet   = errors.New("API base URL is not configured")
	ErrInvalidSealKey     = errors.New("invalid storage seal key")
	ErrUnsupported        = errors.New("unsupported operation")
	ErrRateLimitExceeded  = errors.New("Too many requests. Please try again later.")
)

// Wrapf wraps an error with context using fmt.Errorf
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}

// Is reports whether any error in err's chain matches target
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
