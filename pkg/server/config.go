package server

import (
	"log/slog"
	"os"
	"strconv"

	"golang.org/x/time/rate"

	"github.com/NVIDIA/machinestate/pkg/defaults"
	"github.com/NVIDIA/machinestate/pkg/logging"
)

// EnvPort names the environment variable overriding the listen port.
const EnvPort = "PORT"

// DefaultConfig returns sensible defaults, overridden by PORT and LOG_LEVEL.
func DefaultConfig() *Config {
	cfg := &Config{
		Address:         "",
		Port:            defaults.ServerPort,
		RateLimit:       rate.Limit(defaults.ServerRateLimit),
		RateLimitBurst:  defaults.ServerRateLimitBurst,
		ReadTimeout:     defaults.ServerReadTimeout,
		WriteTimeout:    defaults.ServerWriteTimeout,
		IdleTimeout:     defaults.ServerIdleTimeout,
		ShutdownTimeout: defaults.ServerShutdownTimeout,
		LogLevel:        slog.LevelInfo.String(),
	}

	if portStr := os.Getenv(EnvPort); portStr != "" {
		if port, err := strconv.Atoi(portStr); err == nil && port > 0 && port < 65536 {
			cfg.Port = port
		} else {
			slog.Warn("ignoring invalid port", slog.String("value", portStr))
		}
	}

	if logLevelStr := os.Getenv(logging.EnvLogLevel); logLevelStr != "" {
		cfg.LogLevel = logLevelStr
	}

	return cfg
}
