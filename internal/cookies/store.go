// Package cookies keeps response cookies between runs.
package cookies

import (
	"context"
	"errors"
)

// ErrStoreClosed is returned when the store is used after Close.
var ErrStoreClosed = errors.New("cookie store is closed")

// Store persists cookies keyed by domain, path and name.
type Store interface {
	// Save inserts or replaces a cookie.
	Save(ctx context.Context, c Cookie) error

	// List returns unexpired cookies, all of them when domain is empty.
	List(ctx context.Context, domain string) ([]Cookie, error)

	// Delete removes one cookie. Deleting a missing cookie is not an error.
	Delete(ctx context.Context, domain, path, name string) error

	// Clear removes every cookie for domain, or all of them when domain is
	// empty, and returns how many were removed.
	Clear(ctx context.Context, domain string) (int64, error)

	// Close closes the store.
	Close() error
}
