package middleware

import (
	"log/slog"
	"sync"
	"time"

	tele "gopkg.in/telebot.v4"

	"github.com/danindra/warungbot/core/logger"
)

// PressDeduper ignores a repeated identical button press from the same user
// within a freshness window. Double-taps on commit buttons would otherwise
// reprocess the action; the repeat is acknowledged and dropped.
type PressDeduper struct {
	mu     sync.Mutex
	window time.Duration
	last   map[int64]pressRecord
}

type pressRecord struct {
	token string
	at    time.Time
}

// NewPressDeduper builds a deduper with the given freshness window.
func NewPressDeduper(window time.Duration) *PressDeduper {
	if window <= 0 {
		window = 15 * time.Second
	}
	return &PressDeduper{
		window: window,
		last:   make(map[int64]pressRecord),
	}
}

// Stale records the press and reports whether it repeats the previous one
// within the window.
func (d *PressDeduper) Stale(userID int64, token string) bool {
	if token == "" {
		return false
	}
	now := time.Now()
	d.mu.Lock()
	defer d.mu.Unlock()

	// GC entries older than the window
	for id, rec := range d.last {
		if now.Sub(rec.at) > d.window {
			delete(d.last, id)
		}
	}

	if rec, ok := d.last[userID]; ok && rec.token == token && now.Sub(rec.at) <= d.window {
		return true
	}
	d.last[userID] = pressRecord{token: token, at: now}
	return false
}

// Middleware wraps callback handling with duplicate-press suppression.
func (d *PressDeduper) Middleware() tele.MiddlewareFunc {
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			cb := c.Callback()
			if cb == nil || c.Sender() == nil {
				return next(c)
			}
			token := cb.Unique + "|" + cb.Data
			if d.Stale(c.Sender().ID, token) {
				logger.TG.Debug("duplicate press ignored",
					slog.String("event", "tg.press_dedupe"),
					slog.Int64("user_id", c.Sender().ID),
					slog.String("token", logger.SanitizeLimit(token, 128)),
				)
				return c.Respond()
			}
			return next(c)
		}
	}
}
