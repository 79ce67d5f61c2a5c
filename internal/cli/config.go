package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/mesh-intelligence/granary/internal/logger"
	"github.com/mesh-intelligence/granary/internal/paths"
	"github.com/mesh-intelligence/granary/pkg/types"
)

const (
	configFileName = "config"
	configFileType = "yaml"
	configFileExt  = "config.yaml"
	envFileName    = ".env"
	envPrefix      = "GRANARY"
)

// Config keys.
const (
	cfgKeyBackend           = "backend"
	cfgKeyDataDir           = "data_dir"
	cfgKeyContainerCapacity = "container_capacity"
	cfgKeyStorageCapacity   = "storage_capacity"
	cfgKeyLogLevel          = "log_level"
	cfgKeyLogFormat         = "log_format"
)

// Defaults used when neither config.yaml nor the environment sets a key.
const (
	defaultBackend           = types.BackendSQLite
	defaultContainerCapacity = 10.0
	defaultStorageCapacity   = 20.0
	defaultLogLevel          = "warn"
	defaultLogFormat         = logger.FormatConsole
)

// envKeys are the config keys that GRANARY_* variables override. data_dir is
// absent: GRANARY_DATA_DIR ranks below config.yaml and is handled by paths.
var envKeys = []string{
	cfgKeyBackend,
	cfgKeyContainerCapacity,
	cfgKeyStorageCapacity,
	cfgKeyLogLevel,
	cfgKeyLogFormat,
}

// loadConfig resolves the config directory and reads its settings.
func (a *app) loadConfig() error {
	configDir, err := paths.ResolveConfigDir(a.flags.configDir)
	if err != nil {
		return sysErr(fmt.Errorf("resolve config dir: %w", err))
	}
	v, err := loadConfig(configDir)
	if err != nil {
		return sysErr(err)
	}
	a.configDir = configDir
	a.cfg = v
	return nil
}

// loadConfig reads config.yaml from configDir using Viper. A .env file in the
// same directory is loaded into the process environment first; variables
// already set win over it. A missing config.yaml is not an error.
func loadConfig(configDir string) (*viper.Viper, error) {
	if err := loadEnvFile(filepath.Join(configDir, envFileName)); err != nil {
		return nil, err
	}

	v := viper.New()
	v.SetDefault(cfgKeyBackend, defaultBackend)
	v.SetDefault(cfgKeyContainerCapacity, defaultContainerCapacity)
	v.SetDefault(cfgKeyStorageCapacity, defaultStorageCapacity)
	v.SetDefault(cfgKeyLogLevel, defaultLogLevel)
	v.SetDefault(cfgKeyLogFormat, defaultLogFormat)

	v.SetEnvPrefix(envPrefix)
	for _, key := range envKeys {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("bind env %s: %w", key, err)
		}
	}

	v.SetConfigName(configFileName)
	v.SetConfigType(configFileType)
	v.AddConfigPath(configDir)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return v, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}
	return v, nil
}

func loadEnvFile(path string) error {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("stat %s: %w", envFileName, err)
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("load %s: %w", envFileName, err)
	}
	return nil
}

// granaryConfig builds the backend configuration from the loaded settings
// and the resolved data directory.
func (a *app) granaryConfig() (types.Config, error) {
	var cfg types.Config
	if err := a.cfg.Unmarshal(&cfg); err != nil {
		return types.Config{}, fmt.Errorf("%w: decode config: %v", types.ErrInvalidArgument, err)
	}

	dataDir, err := paths.ResolveDataDir(a.flags.dataDir, a.cfg.GetString(cfgKeyDataDir))
	if err != nil {
		return types.Config{}, sysErr(fmt.Errorf("resolve data dir: %w", err))
	}
	cfg.DataDir = dataDir
	return cfg, nil
}

// loggerConfig returns the logging settings, with --log-level taking
// precedence over config and environment.
func (a *app) loggerConfig() (logger.Config, error) {
	cfg := logger.Config{
		Level:  a.cfg.GetString(cfgKeyLogLevel),
		Format: a.cfg.GetString(cfgKeyLogFormat),
	}
	if a.flags.logLevel != "" {
		cfg.Level = a.flags.logLevel
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return logger.Config{}, fmt.Errorf("%w: %v", types.ErrInvalidArgument, err)
	}
	return cfg, nil
}
