// Package storage implements the in-memory cereal accounting engine: container
// allocation, fill and drain arithmetic, and container removal.
//
// A Storage is not safe for concurrent use. Callers that share one across
// goroutines must guard it with a single lock.
package storage

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/mesh-intelligence/granary/pkg/types"
)

// Storage holds at most one container per cereal, each with the same
// capacity, and never more containers than the storage capacity allows.
type Storage struct {
	containerCapacity float64
	storageCapacity   float64

	amounts map[types.Cereal]float64
	order   []types.Cereal // allocation order, for snapshots
}

var _ types.CerealStorage = (*Storage)(nil)

// New creates an empty Storage.
// Returns ErrInvalidArgument if containerCapacity is not positive, if
// storageCapacity is less than containerCapacity, or if either is not finite.
func New(containerCapacity, storageCapacity float64) (*Storage, error) {
	if !(containerCapacity > 0) || math.IsInf(containerCapacity, 1) {
		return nil, fmt.Errorf("%w: container capacity must be greater than zero", types.ErrInvalidArgument)
	}
	if !(storageCapacity >= containerCapacity) || math.IsInf(storageCapacity, 1) {
		return nil, fmt.Errorf("%w: storage capacity must not be less than container capacity", types.ErrInvalidArgument)
	}
	return &Storage{
		containerCapacity: containerCapacity,
		storageCapacity:   storageCapacity,
		amounts:           make(map[types.Cereal]float64),
	}, nil
}

// ContainerCapacity returns the capacity of every container.
func (s *Storage) ContainerCapacity() float64 { return s.containerCapacity }

// StorageCapacity returns the total capacity across all containers.
func (s *Storage) StorageCapacity() float64 { return s.storageCapacity }

// MaxContainers returns floor(StorageCapacity / ContainerCapacity).
func (s *Storage) MaxContainers() int {
	limit := s.maxContainers()
	if limit > math.MaxInt32 {
		return math.MaxInt32
	}
	return int(limit)
}

func (s *Storage) maxContainers() float64 {
	return math.Floor(s.storageCapacity / s.containerCapacity)
}

// Len returns the number of allocated containers.
func (s *Storage) Len() int { return len(s.order) }

// AddCereal pours amount into the cereal's container and returns the part
// that did not fit. A container is allocated on first use; allocation fails
// with ErrCapacityExceeded when every container slot is taken.
func (s *Storage) AddCereal(cereal types.Cereal, amount float64) (float64, error) {
	if err := checkAmount(amount); err != nil {
		return 0, err
	}
	if !cereal.Valid() {
		return 0, fmt.Errorf("%w: unknown cereal %s", types.ErrInvalidArgument, cereal)
	}

	current, ok := s.amounts[cereal]
	if !ok {
		if float64(len(s.order)) >= s.maxContainers() {
			return 0, fmt.Errorf("%w: %s", types.ErrCapacityExceeded, cereal)
		}
		s.amounts[cereal] = 0
		s.order = append(s.order, cereal)
	}

	spaceLeft := s.containerCapacity - current
	if amount <= spaceLeft {
		// spaceLeft is rounded, so the sum can land one ulp past capacity.
		s.amounts[cereal] = math.Min(current+amount, s.containerCapacity)
		return 0, nil
	}
	s.amounts[cereal] = s.containerCapacity
	return amount - spaceLeft, nil
}

// GetCereal takes up to amount out of the cereal's container and returns
// what was taken. The container stays allocated even when drained.
func (s *Storage) GetCereal(cereal types.Cereal, amount float64) (float64, error) {
	if err := checkAmount(amount); err != nil {
		return 0, err
	}

	current, ok := s.amounts[cereal]
	if !ok {
		return 0, nil
	}
	if amount <= current {
		s.amounts[cereal] = current - amount
		return amount, nil
	}
	s.amounts[cereal] = 0
	return current, nil
}

// RemoveContainer frees the cereal's container. It reports false, and changes
// nothing, when the container does not exist or still holds cereal.
func (s *Storage) RemoveContainer(cereal types.Cereal) bool {
	current, ok := s.amounts[cereal]
	if !ok || current != 0 {
		return false
	}
	delete(s.amounts, cereal)
	for i, c := range s.order {
		if c == cereal {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return true
}

// GetAmount returns the fill level of the cereal's container, or 0 if none
// is allocated.
func (s *Storage) GetAmount(cereal types.Cereal) float64 {
	return s.amounts[cereal]
}

// GetSpace returns the free space in the cereal's container.
// Unlike GetAmount, a missing container is an error (ErrNotFound).
func (s *Storage) GetSpace(cereal types.Cereal) (float64, error) {
	current, ok := s.amounts[cereal]
	if !ok {
		return 0, fmt.Errorf("%w: %s", types.ErrNotFound, cereal)
	}
	return s.containerCapacity - current, nil
}

// Containers returns a snapshot of all containers in allocation order.
func (s *Storage) Containers() []types.Container {
	out := make([]types.Container, 0, len(s.order))
	for _, c := range s.order {
		out = append(out, types.Container{Cereal: c, Amount: s.amounts[c]})
	}
	return out
}

// Restore replaces the contents with containers, in the given order.
// Every entry is checked first; on ErrInvalidData the contents are unchanged.
func (s *Storage) Restore(containers []types.Container) error {
	if float64(len(containers)) > s.maxContainers() {
		return fmt.Errorf("%w: %d containers exceed the limit of %d",
			types.ErrInvalidData, len(containers), s.MaxContainers())
	}

	amounts := make(map[types.Cereal]float64, len(containers))
	order := make([]types.Cereal, 0, len(containers))
	for _, c := range containers {
		if !c.Cereal.Valid() {
			return fmt.Errorf("%w: unknown cereal %s", types.ErrInvalidData, c.Cereal)
		}
		if _, dup := amounts[c.Cereal]; dup {
			return fmt.Errorf("%w: duplicate container for %s", types.ErrInvalidData, c.Cereal)
		}
		if !(c.Amount >= 0) || c.Amount > s.containerCapacity {
			return fmt.Errorf("%w: %s amount %v outside [0, %v]",
				types.ErrInvalidData, c.Cereal, c.Amount, s.containerCapacity)
		}
		amounts[c.Cereal] = c.Amount
		order = append(order, c.Cereal)
	}

	s.amounts = amounts
	s.order = order
	return nil
}

// String renders the contents as {RICE=5.0, BUCKWHEAT=3.0} in allocation
// order.
func (s *Storage) String() string {
	var b strings.Builder
	b.WriteByte('{')
	for i, c := range s.order {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(c.String())
		b.WriteByte('=')
		b.WriteString(FormatAmount(s.amounts[c]))
	}
	b.WriteByte('}')
	return b.String()
}

// FormatAmount formats an amount with the shortest exact representation,
// keeping one decimal place for whole numbers (5 -> "5.0").
func FormatAmount(v float64) string {
	out := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.ContainsAny(out, ".NI") {
		out += ".0"
	}
	return out
}

func checkAmount(amount float64) error {
	if !(amount >= 0) {
		return fmt.Errorf("%w: amount must not be negative", types.ErrInvalidArgument)
	}
	return nil
}
