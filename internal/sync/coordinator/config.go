package coordinator

import (
	"log/slog"
	"time"
)

// DefaultUpdateInterval is used when no valid interval is configured
const DefaultUpdateInterval = 30 * time.Second

// normalizeInterval replaces a non-positive interval with the default
func normalizeInterval(interval time.Duration) time.Duration {
	if interval > 0 {
		return interval
	}
	if interval < 0 {
		slog.Warn("Invalid update interval, using default",
			"interval", interval,
			"default", DefaultUpdateInterval)
	}
	return DefaultUpdateInterval
}
