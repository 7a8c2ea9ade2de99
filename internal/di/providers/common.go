package providers

import "time"

const (
	// shutdownTimeout is the maximum time to wait for graceful shutdown of services.
	shutdownTimeout = 30 * time.Second

	// sessionGCInterval is how often the session store reclaims disk space.
	sessionGCInterval = 1 * time.Hour

	// sessionGCDiscardRatio is the share of stale data a value-log file
	// needs before it is rewritten.
	sessionGCDiscardRatio = 0.5
)
