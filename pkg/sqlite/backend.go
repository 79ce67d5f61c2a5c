// Package sqlite provides the public API for the SQLite granary backend.
// This package exposes the factory function for creating SQLite backends
// while keeping implementation details internal.
package sqlite

import (
	"github.com/mesh-intelligence/granary/internal/sqlite"
	"github.com/mesh-intelligence/granary/pkg/types"
)

// NewBackend creates a new SQLite backend instance.
// The backend is not attached; call Attach with a Config to initialize.
//
// Example:
//
//	granary := sqlite.NewBackend()
//	err := granary.Attach(types.Config{
//	    Backend:           types.BackendSQLite,
//	    DataDir:           ".granary-db",
//	    ContainerCapacity: 10,
//	    StorageCapacity:   20,
//	})
//	defer granary.Detach()
func NewBackend() types.Granary {
	return sqlite.NewBackend()
}
