// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as handlers
// to distinguish between different failure scenarios without parsing
// driver-specific error strings themselves.
package repository

import (
	"errors"
	"strings"
)

// ErrNotFound is returned when a requested record does not exist.
// Handlers should translate this into an HTTP 404 response.
var ErrNotFound = errors.New("not found")

// ErrEmailExists is returned when registration hits the unique index on
// users.email. Handlers should translate this into an HTTP 409 response.
var ErrEmailExists = errors.New("email already exists")

// ErrDuplicateSession is returned when an order insert hits the unique
// index on orders.stripe_session_id. The reconciler treats it as the
// signal that the session was already reconciled.
var ErrDuplicateSession = errors.New("order already exists for session")

// isDuplicate reports whether err is a MySQL duplicate-key error (1062).
func isDuplicate(err error) bool {
	return err != nil && strings.Contains(strings.ToLower(err.Error()), "1062")
}
