// Package for environmental dependencies

package env

import (
	"melodex-backend/internal/database"
	"melodex-backend/internal/logging"

	"log/slog"
)

const Key = "melodex-env"

// Holds the dependencies for the environment
type Env struct {
	*slog.Logger
	Database database.Store
}

// Constructs an Env object with the provided parameters
func New(logger *slog.Logger, store database.Store) *Env {
	if logger == nil {
		logger = slog.New(logging.NullLogger())
	}

	return &Env{
		Logger:   logger,
		Database: store,
	}
}

// Constructs a null instance
func Null() *Env {
	return &Env{
		Logger:   slog.New(logging.NullLogger()),
		Database: nil,
	}
}
