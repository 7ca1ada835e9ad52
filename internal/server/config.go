package server

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds the HTTP service settings. Values come from defaults,
// then environment variables, then command-line flags.
type Config struct {
	// Addr is the TCP listen address
	Addr string
	// TickInterval is the real-time cadence of session tickers; each tick
	// advances the city by the same simulated duration. Zero disables
	// automatic ticking.
	TickInterval    time.Duration
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	// MaxSessions caps concurrently open cities
	MaxSessions int
}

const (
	defaultAddr            = ":8080"
	defaultTickInterval    = time.Second
	defaultReadTimeout     = 5 * time.Second
	defaultWriteTimeout    = 10 * time.Second
	defaultShutdownTimeout = 5 * time.Second
	defaultMaxSessions     = 64
)

// DefaultConfig returns the built-in service settings
func DefaultConfig() Config {
	return Config{
		Addr:            defaultAddr,
		TickInterval:    defaultTickInterval,
		ReadTimeout:     defaultReadTimeout,
		WriteTimeout:    defaultWriteTimeout,
		ShutdownTimeout: defaultShutdownTimeout,
		MaxSessions:     defaultMaxSessions,
	}
}

// FromEnv overlays CITYSIM_ADDR, CITYSIM_TICK and CITYSIM_MAX_SESSIONS on
// the defaults
func FromEnv() (Config, error) {
	cfg := DefaultConfig()

	if v := strings.TrimSpace(os.Getenv("CITYSIM_ADDR")); v != "" {
		cfg.Addr = v
	}
	if v := strings.TrimSpace(os.Getenv("CITYSIM_TICK")); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, fmt.Errorf("CITYSIM_TICK: %w", err)
		}
		if d < 0 {
			return Config{}, fmt.Errorf("CITYSIM_TICK must not be negative, got %s", d)
		}
		cfg.TickInterval = d
	}
	if v := strings.TrimSpace(os.Getenv("CITYSIM_MAX_SESSIONS")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return Config{}, fmt.Errorf("CITYSIM_MAX_SESSIONS must be a positive integer, got %q", v)
		}
		cfg.MaxSessions = n
	}
	return cfg, nil
}
