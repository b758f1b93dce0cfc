package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"loanlens/internal/errors"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"PORT", "DATA_FILE", "DATA_FORMAT", "DATABASE_URL", "DATA_WATCH", "ADMIN_HOST", "ADMIN_PORT", "ADMIN_PPROF", "CACHE_TTL"} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, DefaultDataFile, cfg.Data.File)
	assert.Equal(t, "auto", cfg.Data.Format)
	assert.Equal(t, "loan_clean", cfg.Data.Table)
	assert.Equal(t, 10*time.Minute, cfg.Cache.TTL)
	assert.False(t, cfg.Dashboard.OverviewDistribution)
	assert.True(t, cfg.Admin.Enabled)
	assert.Equal(t, "127.0.0.1", cfg.Admin.Host)
	assert.False(t, cfg.Admin.Profiling)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("DATA_FILE", "/tmp/loans.xlsx")
	t.Setenv("DATA_FORMAT", "XLSX")
	t.Setenv("CACHE_TTL", "30s")
	t.Setenv("DASHBOARD_OVERVIEW_DISTRIBUTION", "true")
	t.Setenv("CACHE_MAX_ENTRIES", "not-a-number")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9000", cfg.Server.Port)
	assert.Equal(t, "/tmp/loans.xlsx", cfg.Data.File)
	assert.Equal(t, "xlsx", cfg.Data.Format)
	assert.Equal(t, 30*time.Second, cfg.Cache.TTL)
	assert.True(t, cfg.Dashboard.OverviewDistribution)
	assert.Equal(t, 256, cfg.Cache.MaxEntries)
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"unknown format", map[string]string{"DATA_FORMAT": "pickle"}},
		{"watch with database", map[string]string{"DATA_WATCH": "true", "DATABASE_URL": "postgres://localhost/loans"}},
		{"admin port clash", map[string]string{"PORT": "7000", "ADMIN_PORT": "7000"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			require.Error(t, err)
			assert.Equal(t, errors.CodeConfigInvalid, errors.GetCode(err))
		})
	}
}
