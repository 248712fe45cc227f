package storage

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestConfig_applyDefaults(t *testing.T) {
	t.Parallel()

	t.Run("empty", func(t *testing.T) {
		t.Parallel()
		cfg := Config{}
		cfg.applyDefaults()
		require.Equal(t, DefaultRegion, cfg.Region)
		require.Equal(t, DefaultURLExpiry, cfg.URLExpiry)
	})

	t.Run("keeps explicit values", func(t *testing.T) {
		t.Parallel()
		cfg := Config{Region: "eu-central-1", URLExpiry: time.Minute}
		cfg.applyDefaults()
		require.Equal(t, "eu-central-1", cfg.Region)
		require.Equal(t, time.Minute, cfg.URLExpiry)
	})
}

func TestConfig_validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"valid", Config{Bucket: "b", AccessKey: "a", SecretKey: "s"}, false},
		{"missing bucket", Config{AccessKey: "a", SecretKey: "s"}, true},
		{"missing access key", Config{Bucket: "b", SecretKey: "s"}, true},
		{"missing secret key", Config{Bucket: "b", AccessKey: "a"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := tt.cfg.validate()
			if tt.wantErr {
				require.ErrorIs(t, err, ErrInvalidConfig)
				return
			}
			require.NoError(t, err)
		})
	}
}
