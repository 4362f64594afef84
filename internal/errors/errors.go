package errors

import (
	"errors"
	"fmt"
)

// Common error types for the portal session core
var (
	// Token errors
	ErrTokenInvalid  = errors.New("access token invalid")
	ErrRefreshFailed = errors.New("refresh failed")

	// Session errors
	ErrNotAuthenticated = errors.New("not authenticated")

	// Tenant errors
	ErrTenantNotInSet = errors.New("tenant not in access set")
)

// Wrapf wraps an error with context using fmt.Errorf
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}
