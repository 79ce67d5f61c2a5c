package types

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

// Config holds backend selection and storage parameters for Granary.Attach.
type Config struct {
	Backend string `json:"backend" yaml:"backend" mapstructure:"backend"`
	DataDir string `json:"data_dir" yaml:"data_dir" mapstructure:"data_dir"`

	ContainerCapacity float64 `json:"container_capacity" yaml:"container_capacity" mapstructure:"container_capacity" validate:"gt=0"`
	StorageCapacity   float64 `json:"storage_capacity" yaml:"storage_capacity" mapstructure:"storage_capacity" validate:"gtefield=ContainerCapacity"`
}

// Supported backend names.
const (
	BackendSQLite = "sqlite"
)

// Config validation errors. Capacity problems are reported as
// ErrInvalidArgument.
var (
	ErrBackendEmpty   = errors.New("backend must not be empty")
	ErrBackendUnknown = errors.New("unknown backend")
)

// knownBackends lists the backends that Validate accepts.
var knownBackends = map[string]bool{
	BackendSQLite: true,
}

var (
	configValidate     *validator.Validate
	configValidateOnce sync.Once
)

// getValidator returns the shared validator. Field names in errors use the
// yaml key so they match config.yaml.
func getValidator() *validator.Validate {
	configValidateOnce.Do(func() {
		configValidate = validator.New(validator.WithRequiredStructEnabled())
		configValidate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("yaml"), ",", 2)[0]
			if name == "" || name == "-" {
				return fld.Name
			}
			return name
		})
	})
	return configValidate
}

// Validate checks that the Config is well-formed. It returns a sentinel error
// from this package on failure.
func (c Config) Validate() error {
	if c.Backend == "" {
		return ErrBackendEmpty
	}
	if !knownBackends[c.Backend] {
		return ErrBackendUnknown
	}
	if math.IsInf(c.ContainerCapacity, 0) || math.IsInf(c.StorageCapacity, 0) {
		return fmt.Errorf("%w: capacities must be finite", ErrInvalidArgument)
	}

	err := getValidator().Struct(c)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return fmt.Errorf("%w: %v", ErrInvalidArgument, err)
	}
	fe := fieldErrs[0]
	switch fe.Tag() {
	case "gt":
		return fmt.Errorf("%w: %s must be greater than %s", ErrInvalidArgument, fe.Field(), fe.Param())
	case "gtefield":
		return fmt.Errorf("%w: %s must not be less than container_capacity", ErrInvalidArgument, fe.Field())
	default:
		return fmt.Errorf("%w: %s failed %s", ErrInvalidArgument, fe.Field(), fe.Tag())
	}
}
