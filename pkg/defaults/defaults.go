package defaults

import "time"

// Collection defaults.
const (
	// CommandTimeout bounds a single command source.
	CommandTimeout = 5 * time.Second

	// CollectorTimeout bounds a complete snapshot.
	CollectorTimeout = 60 * time.Second

	// MaxFileSize is the largest file a file source reads (1MB).
	MaxFileSize int64 = 1 << 20

	// CollectorConcurrency is the number of top-level groups updated in parallel.
	CollectorConcurrency = 4

	// AgentTimeout bounds waiting for a snapshot agent Job.
	AgentTimeout = 5 * time.Minute
)

// Server defaults.
const (
	ServerPort            = 8080
	ServerReadTimeout     = 10 * time.Second
	ServerWriteTimeout    = 90 * time.Second
	ServerIdleTimeout     = 120 * time.Second
	ServerShutdownTimeout = 30 * time.Second

	// ServerRateLimit is the sustained request rate per second.
	ServerRateLimit = 10

	// ServerRateLimitBurst is the request burst size.
	ServerRateLimitBurst = 20
)
