package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigApplyDefaults(t *testing.T) {
	var cfg Config
	cfg.ApplyDefaults()
	assert.Equal(t, "warn", cfg.Level)
	assert.Equal(t, FormatConsole, cfg.Format)
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{name: "debug json", cfg: Config{Level: "debug", Format: "json"}},
		{name: "upper case level", cfg: Config{Level: "INFO", Format: "console"}},
		{name: "bad level", cfg: Config{Level: "loud", Format: "json"}, wantErr: true},
		{name: "bad format", cfg: Config{Level: "info", Format: "xml"}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestJSONOutput(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(Config{Level: "debug", Format: FormatJSON}, &buf).WithComponent("storage")

	l.Debug("added cereal", Fields(FieldCereal, "RICE", FieldAmount, 4.0))

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "debug", entry["level"])
	assert.Equal(t, "added cereal", entry["message"])
	assert.Equal(t, "storage", entry[FieldComponent])
	assert.Equal(t, "RICE", entry[FieldCereal])
	assert.Equal(t, 4.0, entry[FieldAmount])
}

func TestLevelFilters(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(Config{Level: "warn", Format: FormatJSON}, &buf)

	l.Debug("hidden")
	l.Info("hidden")
	assert.Zero(t, buf.Len())

	l.Warn("skipped records", Fields("skipped", 2))
	assert.Contains(t, buf.String(), "skipped records")

	l.Error("persist failed", errors.New("disk full"))
	assert.Contains(t, buf.String(), "disk full")
}

func TestInvalidLevelFallsBackToInfo(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(Config{Level: "loud", Format: FormatJSON}, &buf)

	l.Debug("hidden")
	assert.Zero(t, buf.Len())
	l.Info("shown")
	assert.Contains(t, buf.String(), "shown")
}

func TestConsoleOutput(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(Config{Level: "info", Format: FormatConsole}, &buf)
	l.WithFields(map[string]any{"data_dir": "/tmp/g"}).Info("attached")

	out := buf.String()
	assert.True(t, strings.Contains(out, "attached"), out)
	assert.True(t, strings.Contains(out, "data_dir=/tmp/g"), out)
}

func TestNop(t *testing.T) {
	l := Nop()
	l.Info("nothing")
	l.Error("nothing", errors.New("x"))
}

func TestFields(t *testing.T) {
	assert.Equal(t, map[string]any{"a": 1, "b": "two"}, Fields("a", 1, "b", "two"))
	assert.Equal(t, map[string]any{"a": 1}, Fields("a", 1, "dangling"))
	assert.Equal(t, map[string]any{}, Fields(3, "non-string key"))
}
