package types

import (
	"errors"
	"time"
)

// Granary is a durable CerealStorage. Callers attach it to a backend, work
// with containers, and detach when done.
type Granary interface {
	// Attach connects the Granary to the backend described by config and
	// loads the persisted containers. Returns ErrAlreadyAttached if called
	// while already attached.
	Attach(config Config) error

	// Detach releases backend resources. Idempotent: multiple calls succeed.
	// After Detach, every other method returns ErrGranaryDetached.
	Detach() error

	// AddCereal has the semantics of CerealStorage.AddCereal and persists the
	// result before returning.
	AddCereal(cereal Cereal, amount float64) (float64, error)

	// GetCereal has the semantics of CerealStorage.GetCereal and persists the
	// result before returning.
	GetCereal(cereal Cereal, amount float64) (float64, error)

	// RemoveContainer has the semantics of CerealStorage.RemoveContainer.
	RemoveContainer(cereal Cereal) (bool, error)

	GetAmount(cereal Cereal) (float64, error)
	GetSpace(cereal Cereal) (float64, error)
	Containers() ([]Container, error)

	// Ledger returns the recorded operations for cereal, oldest first.
	// The zero Cereal returns the entries of every cereal.
	Ledger(cereal Cereal) ([]LedgerEntry, error)
}

// Granary lifecycle errors.
var (
	ErrGranaryDetached = errors.New("granary is detached")
	ErrAlreadyAttached = errors.New("granary is already attached")
)

// Ledger operation names.
const (
	LedgerOpAdd    = "add"
	LedgerOpGet    = "get"
	LedgerOpRemove = "remove"
)

// LedgerEntry records one operation that touched a container.
type LedgerEntry struct {
	// EntryID is a UUID v7, so entries sort by creation time.
	EntryID string `json:"entry_id"`

	Cereal    Cereal `json:"cereal"`
	Operation string `json:"operation"`

	// Requested is the amount the caller asked to add or get.
	Requested float64 `json:"requested"`

	// Moved is the amount that actually entered or left the container.
	Moved float64 `json:"moved"`

	// AmountAfter is the fill level once the operation completed.
	AmountAfter float64 `json:"amount_after"`

	CreatedAt time.Time `json:"created_at"`
}
