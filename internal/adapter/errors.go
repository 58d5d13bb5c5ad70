package adapter

import (
	"errors"
)

var (
	// ErrNotFound is returned when a requested remote resource is not found.
	ErrNotFound = errors.New("resource not found")

	// ErrUnauthorized is returned when the remote API rejects the delegated access token.
	ErrUnauthorized = errors.New("access token rejected")
)
