package errors

import (
	"errors"
	"fmt"
)

// Common error types for the content store
var (
	// Authentication errors
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserNotFound       = errors.New("user not found")
	ErrWeakPassword       = errors.New("weak password")

	// Token errors
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")

	// Tenant errors
	ErrTenantNotFound = errors.New("tenant not found")
	ErrInvalidTenant  = errors.New("invalid tenant")
	ErrTenantExists   = errors.New("tenant already exists")

	// Session errors
	ErrSessionNotFound = errors.New("session not found")

	// Persistence errors
	ErrInvalidSegment = errors.New("invalid segment")
	ErrCacheMiss      = errors.New("cache miss")
	ErrDegraded       = errors.New("segment not loaded from backend")

	// Content errors
	ErrInvalidContent = errors.New("invalid content")
	ErrInvalidSection = errors.New("invalid section content")

	// General errors
	ErrNotFound       = errors.New("not found")
	ErrInvalidRequest = errors.New("invalid request")
	ErrInternal       = errors.New("internal error")
	ErrUnsupported    = errors.New("unsupported operation")
)

// New returns a plain error, for messages that need no sentinel.
func New(text string) error {
	return errors.New(text)
}

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
