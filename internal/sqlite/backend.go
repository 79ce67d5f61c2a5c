// Package sqlite implements the durable granary backend. JSONL files in the
// data directory are the source of truth; SQLite is the query engine and is
// rebuilt from the JSONL files on every attach. The in-memory accounting
// engine from internal/storage decides every operation's outcome.
package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/mesh-intelligence/granary/internal/logger"
	"github.com/mesh-intelligence/granary/internal/storage"
	"github.com/mesh-intelligence/granary/pkg/types"
)

// dbFileName is the SQLite database file inside the data directory.
const dbFileName = "granary.db"

// Backend implements types.Granary on top of SQLite and JSONL files.
// One mutex guards the engine, the database handle and the files.
type Backend struct {
	mu       sync.RWMutex
	attached bool
	config   types.Config
	db       *sql.DB
	store    *storage.Storage
	log      *logger.Logger

	// nextPosition is the allocation position given to the next new container.
	nextPosition int64

	now    func() time.Time
	commit func(*sql.Tx) error
}

var _ types.Granary = (*Backend)(nil)

// Option configures a Backend.
type Option func(*Backend)

// WithLogger sets the logger used for lifecycle and mutation events.
func WithLogger(l *logger.Logger) Option {
	return func(b *Backend) {
		if l != nil {
			b.log = l
		}
	}
}

// NewBackend creates a new SQLite backend instance.
// The backend is not attached; call Attach with a Config to initialize.
func NewBackend(opts ...Option) *Backend {
	b := &Backend{
		log:    logger.Nop(),
		now:    time.Now,
		commit: (*sql.Tx).Commit,
	}
	for _, opt := range opts {
		opt(b)
	}
	b.log = b.log.WithComponent("sqlite")
	return b
}

// Attach validates config, opens a fresh SQLite database in the data
// directory, loads the JSONL files into it and restores the containers.
// Returns ErrAlreadyAttached if already attached, and ErrInvalidData if the
// stored containers break the storage invariants for the configured
// capacities.
func (b *Backend) Attach(config types.Config) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.attached {
		return types.ErrAlreadyAttached
	}
	if err := config.Validate(); err != nil {
		return err
	}

	store, err := storage.New(config.ContainerCapacity, config.StorageCapacity)
	if err != nil {
		return err
	}

	dataDir := config.DataDir
	if dataDir == "" {
		dataDir = "."
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return err
	}

	// The database is a cache of the JSONL files; start from scratch.
	dbPath := filepath.Join(dataDir, dbFileName)
	_ = os.Remove(dbPath)

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return err
	}
	// A single connection keeps transactions and plain queries on the same
	// SQLite handle.
	db.SetMaxOpenConns(1)

	for _, ddl := range schemaDDL {
		if _, err := db.Exec(ddl); err != nil {
			db.Close()
			return fmt.Errorf("create schema: %w", err)
		}
	}

	if err := initJSONLFiles(dataDir); err != nil {
		db.Close()
		return err
	}
	skipped, err := loadAllJSONL(db, dataDir)
	if err != nil {
		db.Close()
		return fmt.Errorf("load JSONL: %w", err)
	}
	for file, n := range skipped {
		b.log.Warn("skipped unreadable records", logger.Fields(
			logger.FieldDataDir, dataDir,
			"file", file,
			"skipped", n,
		))
	}

	containers, maxPosition, err := queryContainers(db)
	if err != nil {
		db.Close()
		return fmt.Errorf("query containers: %w", err)
	}
	if err := store.Restore(containers); err != nil {
		db.Close()
		return err
	}

	config.DataDir = dataDir
	b.config = config
	b.db = db
	b.store = store
	b.nextPosition = maxPosition + 1
	b.attached = true

	b.log.Info("granary attached", logger.Fields(
		logger.FieldDataDir, dataDir,
		"containers", store.Len(),
		"max_containers", store.MaxContainers(),
	))
	return nil
}

// Detach releases all resources held by the backend. Detach is idempotent.
func (b *Backend) Detach() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.attached {
		return nil
	}

	if b.db != nil {
		if err := b.db.Close(); err != nil {
			return err
		}
		b.db = nil
	}

	b.attached = false
	b.store = nil
	b.log.Info("granary detached", logger.Fields(logger.FieldDataDir, b.config.DataDir))
	return nil
}

// Config returns the configuration of the current attachment.
func (b *Backend) Config() (types.Config, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if !b.attached {
		return types.Config{}, types.ErrGranaryDetached
	}
	return b.config, nil
}

// MaxContainers returns the number of containers the storage can hold.
func (b *Backend) MaxContainers() (int, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if !b.attached {
		return 0, types.ErrGranaryDetached
	}
	return b.store.MaxContainers(), nil
}

// newUUID generates a UUID v7 string.
func newUUID() string {
	return uuid.Must(uuid.NewV7()).String()
}

// formatTime renders timestamps the way they are stored in SQLite and JSONL.
func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

// parseTime reads a timestamp written by formatTime.
func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, errors.Join(types.ErrInvalidData, err)
	}
	return t, nil
}
