package session

import (
	"context"
	"log/slog"
	"time"

	"github.com/danindra/warungbot/core/logger"
)

// RunSweeper evicts idle sessions every interval until ctx is cancelled.
// Meant to run as a goroutine next to the bot loop.
func RunSweeper(ctx context.Context, m *Manager, maxIdle, interval time.Duration) {
	if maxIdle <= 0 || interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if evicted := m.EvictIdle(maxIdle); evicted > 0 {
				logger.SESS.Info("idle sessions evicted",
					slog.String("event", "session.sweep"),
					slog.Int("evicted", evicted),
					slog.Int("remaining", m.Len()),
				)
			}
		}
	}
}
