// Package service defines the backend-agnostic interface for entry storage.
package service

import (
	"context"
	"errors"
)

// Errors returned by every Service implementation. Backends wrap their
// transport failures so callers can match with errors.Is.
var (
	// ErrNotFound indicates the entry (or namespace) does not exist.
	ErrNotFound = errors.New("not found")

	// ErrConflict indicates an entry with the same key already exists.
	ErrConflict = errors.New("entry already exists")

	// ErrUnauthorized indicates the store rejected the credentials.
	ErrUnauthorized = errors.New("credentials rejected")

	// ErrTimeout indicates the request did not complete in time.
	ErrTimeout = errors.New("request timed out")
)

// Service defines the interface for key-value document store operations.
// All remote calls go through this interface.
// Commands never import a backend directly.
type Service interface {
	// ListEntries returns every entry in the namespace, in store order.
	// A namespace that does not exist yet yields an empty slice.
	ListEntries(ctx context.Context) ([]Entry, error)

	// GetEntry returns a single entry by key.
	GetEntry(ctx context.Context, key string) (Entry, error)

	// CreateEntry stores a new entry under key.
	// Returns ErrConflict if the key is already taken.
	CreateEntry(ctx context.Context, key string, item Item) error

	// UpdateEntry replaces the value stored under key.
	UpdateEntry(ctx context.Context, key string, item Item) error

	// DeleteEntry removes the entry stored under key.
	DeleteEntry(ctx context.Context, key string) error
}

// NamespaceLister is implemented by backends that can enumerate the
// namespaces of the store.
type NamespaceLister interface {
	ListNamespaces(ctx context.Context) ([]string, error)
}
