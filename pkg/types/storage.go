package types

import "errors"

// Container is a point-in-time view of one allocated container.
type Container struct {
	Cereal Cereal  `json:"cereal"`
	Amount float64 `json:"amount"`
}

// CerealStorage is the in-memory accounting engine. Every distinct cereal
// occupies at most one container, and the number of containers never exceeds
// floor(StorageCapacity / ContainerCapacity).
type CerealStorage interface {
	// ContainerCapacity returns the capacity shared by every container.
	ContainerCapacity() float64

	// StorageCapacity returns the total capacity across all containers.
	StorageCapacity() float64

	// AddCereal pours amount into the cereal's container, allocating it if
	// needed, and returns the part that did not fit.
	// Returns ErrInvalidArgument for a negative amount and
	// ErrCapacityExceeded when a new container cannot be allocated.
	AddCereal(cereal Cereal, amount float64) (float64, error)

	// GetCereal takes up to amount out of the cereal's container and returns
	// what was actually taken. A missing container yields 0.
	// Returns ErrInvalidArgument for a negative amount.
	GetCereal(cereal Cereal, amount float64) (float64, error)

	// RemoveContainer frees the cereal's container if it exists and is empty.
	RemoveContainer(cereal Cereal) bool

	// GetAmount returns the fill level, or 0 if there is no container.
	GetAmount(cereal Cereal) float64

	// GetSpace returns the free space in the cereal's container.
	// Returns ErrNotFound if there is no container.
	GetSpace(cereal Cereal) (float64, error)

	// Containers returns a snapshot of all containers in allocation order.
	Containers() []Container

	// String renders the snapshot as {RICE=5.0, BUCKWHEAT=3.0}.
	String() string
}

// Storage errors.
var (
	ErrInvalidArgument  = errors.New("invalid argument")
	ErrCapacityExceeded = errors.New("no space for new container")
	ErrNotFound         = errors.New("container does not exist")
	ErrInvalidData      = errors.New("invalid storage data")
)
