package middleware

import (
	"log/slog"

	tele "gopkg.in/telebot.v4"

	"github.com/danindra/warungbot/core/logger"
)

// ActiveChecker reports whether the bot currently processes events.
type ActiveChecker interface {
	Active() bool
}

// SoftStopGate drops every update while the bot is soft-stopped.
// Commands registered as exempt (e.g. the one that could re-enable the bot)
// pass through.
func SoftStopGate(checker ActiveChecker, exempt map[string]struct{}) tele.MiddlewareFunc {
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			if checker == nil || checker.Active() {
				return next(c)
			}
			if _, ok := exempt[c.Text()]; ok {
				return next(c)
			}
			logger.TG.Debug("update dropped",
				slog.String("event", "tg.soft_stop"),
				slog.Int("update_id", c.Update().ID),
			)
			return nil
		}
	}
}
