package types

import (
	"errors"
	"math"
	"testing"
)

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr error
	}{
		{
			name:    "empty backend returns ErrBackendEmpty",
			config:  Config{Backend: "", DataDir: "/tmp/data", ContainerCapacity: 10, StorageCapacity: 20},
			wantErr: ErrBackendEmpty,
		},
		{
			name:    "unknown backend returns ErrBackendUnknown",
			config:  Config{Backend: "postgres", DataDir: "/tmp/data", ContainerCapacity: 10, StorageCapacity: 20},
			wantErr: ErrBackendUnknown,
		},
		{
			name:    "valid sqlite config",
			config:  Config{Backend: "sqlite", DataDir: "/tmp/data", ContainerCapacity: 10, StorageCapacity: 20},
			wantErr: nil,
		},
		{
			name:    "sqlite with empty DataDir is valid at config level",
			config:  Config{Backend: "sqlite", DataDir: "", ContainerCapacity: 10, StorageCapacity: 10},
			wantErr: nil,
		},
		{
			name:    "zero container capacity",
			config:  Config{Backend: "sqlite", ContainerCapacity: 0, StorageCapacity: 20},
			wantErr: ErrInvalidArgument,
		},
		{
			name:    "negative container capacity",
			config:  Config{Backend: "sqlite", ContainerCapacity: -4, StorageCapacity: 10},
			wantErr: ErrInvalidArgument,
		},
		{
			name:    "storage smaller than container",
			config:  Config{Backend: "sqlite", ContainerCapacity: 20, StorageCapacity: 10},
			wantErr: ErrInvalidArgument,
		},
		{
			name:    "NaN container capacity",
			config:  Config{Backend: "sqlite", ContainerCapacity: math.NaN(), StorageCapacity: 10},
			wantErr: ErrInvalidArgument,
		},
		{
			name:    "infinite storage capacity",
			config:  Config{Backend: "sqlite", ContainerCapacity: 10, StorageCapacity: math.Inf(1)},
			wantErr: ErrInvalidArgument,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("expected nil error, got %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("expected error %v, got nil", tt.wantErr)
			}
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected error %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestConfigValidateNamesYAMLKey(t *testing.T) {
	err := Config{Backend: "sqlite", ContainerCapacity: 20, StorageCapacity: 10}.Validate()
	if err == nil {
		t.Fatal("expected error")
	}
	if got := err.Error(); got != "invalid argument: storage_capacity must not be less than container_capacity" {
		t.Fatalf("unexpected message %q", got)
	}
}
