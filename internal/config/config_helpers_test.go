package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const helperKey = "SPINVAULT_TEST_HELPER"

func TestGetEnvAsInt(t *testing.T) {
	tests := []struct {
		name  string
		value string
		want  int
	}{
		{"unset falls back", "", 42},
		{"positive", "100", 100},
		{"negative", "-10", -10},
		{"zero", "0", 0},
		{"float falls back", "42.5", 42},
		{"garbage falls back", "ten", 42},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(helperKey, tt.value)
			assert.Equal(t, tt.want, getEnvAsInt(helperKey, 42))
		})
	}
}

func TestGetEnvAsDuration(t *testing.T) {
	tests := []struct {
		name  string
		value string
		want  time.Duration
	}{
		{"unset falls back", "", 3 * time.Second},
		{"milliseconds", "500ms", 500 * time.Millisecond},
		{"compound", "1m30s", 90 * time.Second},
		{"bare number falls back", "30", 3 * time.Second},
		{"garbage falls back", "soon", 3 * time.Second},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(helperKey, tt.value)
			assert.Equal(t, tt.want, getEnvAsDuration(helperKey, 3*time.Second))
		})
	}
}

func TestGetEnvAsBool(t *testing.T) {
	tests := []struct {
		value string
		want  bool
	}{
		{"", true},
		{"false", false},
		{"0", false},
		{"TRUE", true},
		{"yes", true},
	}
	for _, tt := range tests {
		t.Setenv(helperKey, tt.value)
		assert.Equal(t, tt.want, getEnvAsBool(helperKey, true), "value %q", tt.value)
	}
}

func TestGetEnv_EmptyIsKept(t *testing.T) {
	t.Setenv(helperKey, "")
	assert.Equal(t, "", getEnv(helperKey, "fallback"), "a set but empty var is not replaced")
}

func TestLoad_ChainAndGuardTuning(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		clearEnvVars(t)
		t.Setenv("API_KEY", "test-key")

		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, DefaultRPCRequestsPerSec, cfg.RPCRequestsPerSecond)
		assert.Equal(t, DefaultMaxRebuilds, cfg.MaxRebuilds)
		assert.Equal(t, DefaultReconcileTimeout, cfg.ReconcileTimeout)
		assert.Equal(t, DefaultGuardInFlightTTL, cfg.GuardInFlightTTL)
		assert.Equal(t, DefaultDBMaxConns, cfg.DBMaxConns)
		assert.False(t, cfg.ClaimAnyEnabled)
	})

	t.Run("overrides", func(t *testing.T) {
		clearEnvVars(t)
		t.Setenv("API_KEY", "test-key")
		t.Setenv("RPC_REQUESTS_PER_SECOND", "5")
		t.Setenv("MAX_REBUILDS", "0")
		t.Setenv("RECONCILE_TIMEOUT", "45s")
		t.Setenv("GUARD_IN_FLIGHT_TTL", "2m")
		t.Setenv("DB_MAX_CONNS", "50")
		t.Setenv("CLAIM_ANY_ENABLED", "true")

		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, 5, cfg.RPCRequestsPerSecond)
		assert.Equal(t, 0, cfg.MaxRebuilds)
		assert.Equal(t, 45*time.Second, cfg.ReconcileTimeout)
		assert.Equal(t, 2*time.Minute, cfg.GuardInFlightTTL)
		assert.Equal(t, 50, cfg.DBMaxConns)
		assert.True(t, cfg.ClaimAnyEnabled)
	})

	t.Run("malformed values fall back", func(t *testing.T) {
		clearEnvVars(t)
		t.Setenv("API_KEY", "test-key")
		t.Setenv("RPC_BURST", "lots")
		t.Setenv("DB_MAX_CONN_LIFETIME", "forever")

		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, DefaultRPCBurst, cfg.RPCBurst)
		assert.Equal(t, DefaultDBMaxConnLifetime, cfg.DBMaxConnLifetime)
	})
}
