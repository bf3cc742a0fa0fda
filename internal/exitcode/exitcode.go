// Package exitcode defines exit codes for the CLI.
package exitcode

import (
	"errors"

	"notifier/internal/config"
	"notifier/internal/service"
)

const (
	// Success indicates successful completion.
	Success = 0

	// UserError indicates a user error (bad args, unknown entry, ambiguous ref).
	UserError = 1

	// ConfigError indicates a configuration or credentials error.
	ConfigError = 2

	// BackendError indicates a store, network or timeout error.
	BackendError = 3
)

// FromError maps a store or configuration error to an exit code.
func FromError(err error) int {
	switch {
	case err == nil:
		return Success
	case errors.Is(err, config.ErrInvalid), errors.Is(err, service.ErrUnauthorized):
		return ConfigError
	case errors.Is(err, service.ErrNotFound):
		return UserError
	default:
		return BackendError
	}
}
