package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
)

// Config holds process settings read from the environment
type Config struct {
	Port              string
	Env               string
	DatabaseURL       string
	LogLevel          string
	LogFile           string
	CongestionTick    time.Duration
	PositionThrottle  time.Duration
	SimulationSeed    int64
	UseWaypoints      bool
	RouteCacheSize    int
	RandomizeVisitors bool
	StartFacilityID   string
	TimeZone          string
}

// Load reads .env when present and then the environment
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment")
	}
	return FromEnv()
}

// FromEnv builds a Config from the current environment only
func FromEnv() *Config {
	return &Config{
		Port:              getEnv("PORT", "8080"),
		Env:               getEnv("GO_ENV", "development"),
		DatabaseURL:       getEnv("DATABASE_URL", ""),
		LogLevel:          getEnv("LOG_LEVEL", "info"),
		LogFile:           getEnv("LOG_FILE", ""),
		CongestionTick:    getEnvDuration("CONGESTION_TICK_MS", 2000*time.Millisecond),
		PositionThrottle:  getEnvDuration("POSITION_THROTTLE_MS", 50*time.Millisecond),
		SimulationSeed:    int64(getEnvInt("SIMULATION_SEED", 0)),
		UseWaypoints:      getEnvBool("USE_WAYPOINTS", true),
		RouteCacheSize:    getEnvInt("ROUTE_CACHE_SIZE", 256),
		RandomizeVisitors: getEnvBool("RANDOMIZE_VISITORS", true),
		StartFacilityID:   getEnv("START_FACILITY_ID", "main-gate"),
		TimeZone:          getEnv("TIME_ZONE", "Asia/Seoul"),
	}
}

// IsProduction reports whether GO_ENV is production
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Env, "production")
}

// Location resolves TimeZone, used to read event times
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.TimeZone)
	if err != nil {
		return nil, fmt.Errorf("config: failed to load time zone %q: %w", c.TimeZone, err)
	}
	return loc, nil
}

// Validate reports every invalid setting at once
func (c *Config) Validate() error {
	var errs []error
	if c.CongestionTick <= 0 {
		errs = append(errs, errors.New("CONGESTION_TICK_MS must be positive"))
	}
	if c.PositionThrottle < 0 {
		errs = append(errs, errors.New("POSITION_THROTTLE_MS must not be negative"))
	}
	if c.RouteCacheSize < 0 {
		errs = append(errs, errors.New("ROUTE_CACHE_SIZE must not be negative"))
	}
	if c.StartFacilityID == "" {
		errs = append(errs, errors.New("START_FACILITY_ID is required"))
	}
	if _, err := c.Location(); err != nil {
		errs = append(errs, err)
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("config: invalid configuration: %w", err)
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	value, err := strconv.Atoi(getEnv(key, ""))
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvBool(key string, defaultValue bool) bool {
	value, err := strconv.ParseBool(getEnv(key, ""))
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvDuration reads a whole number of milliseconds
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	ms, err := strconv.Atoi(getEnv(key, ""))
	if err != nil {
		return defaultValue
	}
	return time.Duration(ms) * time.Millisecond
}
