package sched

import (
	"context"
	"runtime"
	"time"

	"github.com/rs/zerolog"
)

// Heartbeat periodically logs that the process is still serving.
type Heartbeat struct {
	interval time.Duration
	log      *zerolog.Logger
	started  time.Time
}

func NewHeartbeat(interval time.Duration, logger *zerolog.Logger) *Heartbeat {
	hbLog := logger.With().Str("component", "Heartbeat").Logger()
	return &Heartbeat{
		interval: interval,
		log:      &hbLog,
		started:  time.Now(),
	}
}

// Run blocks until ctx is done. A non-positive interval returns immediately.
func (h *Heartbeat) Run(ctx context.Context) error {
	if h.interval <= 0 {
		return nil
	}
	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			h.log.Debug().Msg("Stopping heartbeat")
			return ctx.Err()
		case <-ticker.C:
			h.log.Info().
				Dur("uptime", time.Since(h.started).Round(time.Second)).
				Int("goroutines", runtime.NumGoroutine()).
				Msg("still running")
		}
	}
}
