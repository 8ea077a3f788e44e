package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnvDefaults(t *testing.T) {
	for _, key := range []string{"PORT", "GO_ENV", "DATABASE_URL", "CONGESTION_TICK_MS", "POSITION_THROTTLE_MS",
		"USE_WAYPOINTS", "ROUTE_CACHE_SIZE", "START_FACILITY_ID", "TIME_ZONE", "SIMULATION_SEED"} {
		t.Setenv(key, "")
	}
	cfg := FromEnv()

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "development", cfg.Env)
	assert.Empty(t, cfg.DatabaseURL)
	assert.Equal(t, 2*time.Second, cfg.CongestionTick)
	assert.Equal(t, 50*time.Millisecond, cfg.PositionThrottle)
	assert.True(t, cfg.UseWaypoints)
	assert.Equal(t, 256, cfg.RouteCacheSize)
	assert.Equal(t, "main-gate", cfg.StartFacilityID)
	assert.Equal(t, int64(0), cfg.SimulationSeed)
	assert.False(t, cfg.IsProduction())
	require.NoError(t, cfg.Validate())
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("GO_ENV", "Production")
	t.Setenv("CONGESTION_TICK_MS", "500")
	t.Setenv("USE_WAYPOINTS", "false")
	t.Setenv("SIMULATION_SEED", "42")
	t.Setenv("TIME_ZONE", "UTC")

	cfg := FromEnv()
	assert.Equal(t, "9090", cfg.Port)
	assert.True(t, cfg.IsProduction())
	assert.Equal(t, 500*time.Millisecond, cfg.CongestionTick)
	assert.False(t, cfg.UseWaypoints)
	assert.Equal(t, int64(42), cfg.SimulationSeed)

	loc, err := cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, time.UTC, loc)
}

func TestFromEnvIgnoresMalformedValues(t *testing.T) {
	t.Setenv("ROUTE_CACHE_SIZE", "lots")
	t.Setenv("USE_WAYPOINTS", "perhaps")
	t.Setenv("POSITION_THROTTLE_MS", "1.5")

	cfg := FromEnv()
	assert.Equal(t, 256, cfg.RouteCacheSize)
	assert.True(t, cfg.UseWaypoints)
	assert.Equal(t, 50*time.Millisecond, cfg.PositionThrottle)
}

func TestValidateCollectsErrors(t *testing.T) {
	cfg := &Config{CongestionTick: 0, PositionThrottle: -1, RouteCacheSize: -1, TimeZone: "Mars/Olympus"}
	err := cfg.Validate()
	require.Error(t, err)
	for _, fragment := range []string{"CONGESTION_TICK_MS", "POSITION_THROTTLE_MS", "ROUTE_CACHE_SIZE", "START_FACILITY_ID", "Mars/Olympus"} {
		assert.Contains(t, err.Error(), fragment)
	}
}

func TestLocationRejectsUnknownZone(t *testing.T) {
	cfg := &Config{TimeZone: "Mars/Olympus"}
	loc, err := cfg.Location()
	assert.Error(t, err)
	assert.Nil(t, loc)
}
