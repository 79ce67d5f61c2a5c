package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/mesh-intelligence/granary/internal/sqlite"
	"github.com/mesh-intelligence/granary/internal/storage"
	"github.com/mesh-intelligence/granary/pkg/types"
)

// configFile holds the structure written to config.yaml.
type configFile struct {
	Backend           string  `yaml:"backend"`
	DataDir           string  `yaml:"data_dir,omitempty"`
	ContainerCapacity float64 `yaml:"container_capacity"`
	StorageCapacity   float64 `yaml:"storage_capacity"`
	LogLevel          string  `yaml:"log_level"`
}

// errConfigExists is returned when init is asked to change an existing config.
var errConfigExists = errors.New("config.yaml already exists")

func newInitCmd(a *app) *cobra.Command {
	var containerCapacity, storageCapacity float64

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize granary storage",
		Long: `Create the configuration and data directories, write config.yaml if it
is missing, then initialize the storage backend.

Capacities given by flag are only written to a new config.yaml.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			capsChanged := cmd.Flags().Changed("container-capacity") || cmd.Flags().Changed("storage-capacity")
			return a.runInit(cmd, containerCapacity, storageCapacity, capsChanged)
		},
	}

	cmd.Flags().Float64Var(&containerCapacity, "container-capacity", defaultContainerCapacity, "capacity of every container")
	cmd.Flags().Float64Var(&storageCapacity, "storage-capacity", defaultStorageCapacity, "total capacity of the storage")
	return cmd
}

func (a *app) runInit(cmd *cobra.Command, containerCapacity, storageCapacity float64, capsChanged bool) error {
	configPath := filepath.Join(a.configDir, configFileExt)

	_, statErr := os.Stat(configPath)
	exists := statErr == nil
	if statErr != nil && !os.IsNotExist(statErr) {
		return sysErr(fmt.Errorf("stat config: %w", statErr))
	}

	if exists && capsChanged {
		return fmt.Errorf("%w: %s (edit it to change capacities)", errConfigExists, configPath)
	}

	if !exists {
		// Flags win over the environment only when they were given.
		if !capsChanged {
			containerCapacity = a.cfg.GetFloat64(cfgKeyContainerCapacity)
			storageCapacity = a.cfg.GetFloat64(cfgKeyStorageCapacity)
		}
		file := configFile{
			Backend:           a.cfg.GetString(cfgKeyBackend),
			ContainerCapacity: containerCapacity,
			StorageCapacity:   storageCapacity,
			LogLevel:          a.cfg.GetString(cfgKeyLogLevel),
		}
		if a.flags.dataDir != "" {
			abs, err := filepath.Abs(a.flags.dataDir)
			if err != nil {
				return sysErr(err)
			}
			file.DataDir = abs
		}

		check := types.Config{
			Backend:           file.Backend,
			ContainerCapacity: file.ContainerCapacity,
			StorageCapacity:   file.StorageCapacity,
		}
		if err := check.Validate(); err != nil {
			return err
		}

		if err := os.MkdirAll(a.configDir, 0o755); err != nil {
			return sysErr(fmt.Errorf("create config directory: %w", err))
		}
		if err := writeConfig(configPath, file); err != nil {
			return sysErr(fmt.Errorf("write config: %w", err))
		}

		a.cfg.Set(cfgKeyContainerCapacity, containerCapacity)
		a.cfg.Set(cfgKeyStorageCapacity, storageCapacity)
	}

	var (
		cfg   types.Config
		slots int
	)
	err := a.withGranary(cmd, func(g *sqlite.Backend) error {
		var err error
		if cfg, err = g.Config(); err != nil {
			return err
		}
		slots, err = g.MaxContainers()
		return err
	})
	if err != nil {
		return err
	}

	_, err = fmt.Fprintf(cmd.OutOrStdout(), "Granary initialized in %s (%d containers of %s)\n",
		cfg.DataDir, slots, storage.FormatAmount(cfg.ContainerCapacity))
	return err
}

func writeConfig(path string, cfg configFile) error {
	data, err := yaml.Marshal(&cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}
