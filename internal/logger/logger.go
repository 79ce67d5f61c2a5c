// Package logger wraps zerolog with the configuration and field helpers
// used across granary.
package logger

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Output formats.
const (
	FormatJSON    = "json"
	FormatConsole = "console"
)

// Standard field keys.
const (
	FieldComponent = "component"
	FieldCereal    = "cereal"
	FieldAmount    = "amount"
	FieldOperation = "operation"
	FieldDataDir   = "data_dir"
	FieldCommand   = "command"
)

// Config contains logging configuration.
type Config struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// ApplyDefaults fills empty fields with defaults.
func (c *Config) ApplyDefaults() {
	if c.Level == "" {
		c.Level = "warn"
	}
	if c.Format == "" {
		c.Format = FormatConsole
	}
}

// Validate checks level and format names.
func (c *Config) Validate() error {
	if _, err := zerolog.ParseLevel(strings.ToLower(c.Level)); err != nil {
		return fmt.Errorf("log level %q: %w", c.Level, err)
	}
	switch strings.ToLower(c.Format) {
	case FormatJSON, FormatConsole:
		return nil
	default:
		return fmt.Errorf("log format must be %s or %s (got: %s)", FormatJSON, FormatConsole, c.Format)
	}
}

// Logger wraps zerolog.Logger.
type Logger struct {
	logger zerolog.Logger
}

// NewWithWriter creates a logger writing to w. An unparsable level falls
// back to info.
func NewWithWriter(cfg Config, w io.Writer) *Logger {
	cfg.ApplyDefaults()
	level, err := zerolog.ParseLevel(strings.ToLower(cfg.Level))
	if err != nil {
		level = zerolog.InfoLevel
	}

	if strings.ToLower(cfg.Format) == FormatConsole {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339, NoColor: true}
	}
	zl := zerolog.New(w).Level(level).With().Timestamp().Logger()
	return &Logger{logger: zl}
}

// Nop returns a logger that discards everything.
func Nop() *Logger {
	return &Logger{logger: zerolog.Nop()}
}

// WithComponent returns a logger tagged with a component name.
func (l *Logger) WithComponent(name string) *Logger {
	return &Logger{logger: l.logger.With().Str(FieldComponent, name).Logger()}
}

// WithFields returns a logger with additional fields.
func (l *Logger) WithFields(fields map[string]any) *Logger {
	zc := l.logger.With()
	for k, v := range fields {
		zc = zc.Interface(k, v)
	}
	return &Logger{logger: zc.Logger()}
}

// Debug logs a debug message.
func (l *Logger) Debug(msg string, fields ...map[string]any) {
	event := l.logger.Debug()
	addFields(event, fields...)
	event.Msg(msg)
}

// Info logs an info message.
func (l *Logger) Info(msg string, fields ...map[string]any) {
	event := l.logger.Info()
	addFields(event, fields...)
	event.Msg(msg)
}

// Warn logs a warning message.
func (l *Logger) Warn(msg string, fields ...map[string]any) {
	event := l.logger.Warn()
	addFields(event, fields...)
	event.Msg(msg)
}

// Error logs an error message with err attached.
func (l *Logger) Error(msg string, err error, fields ...map[string]any) {
	event := l.logger.Error().Err(err)
	addFields(event, fields...)
	event.Msg(msg)
}

// Fields builds a field map from alternating key-value pairs.
//
//	log.Debug("added cereal", logger.Fields("cereal", "RICE", "amount", 4.0))
func Fields(kvs ...any) map[string]any {
	m := make(map[string]any, len(kvs)/2)
	for i := 0; i < len(kvs)-1; i += 2 {
		if key, ok := kvs[i].(string); ok {
			m[key] = kvs[i+1]
		}
	}
	return m
}

func addFields(event *zerolog.Event, fields ...map[string]any) {
	for _, fm := range fields {
		for k, v := range fm {
			event.Interface(k, v)
		}
	}
}
