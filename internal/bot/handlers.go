package bot

import (
	"context"
	"errors"
	"log/slog"
	"time"

	tele "gopkg.in/telebot.v4"

	"github.com/danindra/warungbot/core/logger"
	"github.com/danindra/warungbot/core/telegram/callbacks"
	tghelpers "github.com/danindra/warungbot/core/telegram/helpers"
	"github.com/danindra/warungbot/internal/flow"
)

const failureText = "⚠️ Terjadi kesalahan. Silakan coba lagi."

type replyFunc func(ctx context.Context, c tele.Context) (flow.Reply, error)

// wrap runs a handler, renders its reply and emits the per-update summary
// line. Errors are logged and answered with a generic failure message; the
// user's session is left as the engine last saw it.
func (b *Bot) wrap(name string, fn replyFunc) tele.HandlerFunc {
	return func(c tele.Context) error {
		start := time.Now()
		ctx := tghelpers.WithHandler(c, name)

		reply, err := fn(ctx, c)
		if err == nil {
			err = b.send(c, reply)
		}

		attrs := []slog.Attr{
			slog.String("handler", name),
			slog.String("status", logger.Status(err)),
			slog.Duration("duration", logger.RoundMS(logger.Took(start))),
		}
		if userID := logger.UserIDFrom(ctx); userID != 0 {
			attrs = append(attrs, slog.Int64("user_id", userID))
		}
		if chatID := logger.ChatIDFrom(ctx); chatID != 0 {
			attrs = append(attrs, slog.Int64("chat_id", chatID))
		}
		if updateID := logger.UpdateIDFrom(ctx); updateID != 0 {
			attrs = append(attrs, slog.Int("update_id", updateID))
		}

		if err != nil {
			attrs = append(attrs, slog.String("err", err.Error()))
			logger.Error(ctx, "tg", "update.handled", attrs...)
			_ = tghelpers.SendText(c, failureText)
			return nil
		}
		logger.Info(ctx, "tg", "update.handled", attrs...)
		return nil
	}
}

// actionHandler serves a fixed action, for command shortcuts.
func (b *Bot) actionHandler(kind flow.ActionKind) replyFunc {
	return func(ctx context.Context, c tele.Context) (flow.Reply, error) {
		sender := c.Sender()
		if sender == nil {
			return flow.Reply{}, nil
		}
		return b.engine.HandleAction(ctx, sender.ID, flow.Action{Kind: kind})
	}
}

// callbackHandler parses the payload for a known action kind and forwards it.
func (b *Bot) callbackHandler(kind flow.ActionKind) replyFunc {
	return func(ctx context.Context, c tele.Context) (flow.Reply, error) {
		sender := c.Sender()
		if sender == nil {
			return flow.Reply{}, nil
		}
		// Acknowledge the press before any store work.
		_ = c.Respond()

		act, err := flow.ParseAction(string(kind), callbacks.CallbackPayload(c))
		if err != nil {
			return flow.Reply{}, err
		}
		return b.engine.HandleAction(ctx, sender.ID, act)
	}
}

// textHandler forwards free text to the active flow; without one the text is
// ignored.
func (b *Bot) textHandler(ctx context.Context, c tele.Context) (flow.Reply, error) {
	sender := c.Sender()
	if sender == nil {
		return flow.Reply{}, nil
	}
	reply, err := b.engine.HandleText(ctx, sender.ID, c.Text())
	if errors.Is(err, flow.ErrNoSession) {
		logger.Debug(ctx, "tg", "text.ignored", slog.Int64("user_id", sender.ID))
		return flow.Reply{}, nil
	}
	return reply, err
}

func (b *Bot) handleStart(c tele.Context) error {
	return b.wrap("start", func(ctx context.Context, c tele.Context) (flow.Reply, error) {
		sender := c.Sender()
		if sender == nil {
			return flow.Reply{}, nil
		}
		if !b.active.Swap(true) {
			logger.Info(ctx, "tg", "bot.resume", slog.Int64("user_id", sender.ID))
		}
		b.engine.Sessions().Clear(sender.ID)
		return b.engine.Welcome(), nil
	})(c)
}

func (b *Bot) handleStop(c tele.Context) error {
	return b.wrap("stop", func(ctx context.Context, c tele.Context) (flow.Reply, error) {
		b.active.Store(false)
		logger.Info(ctx, "tg", "bot.soft_stop")
		return flow.Reply{
			Text: "😴 *Bot dinonaktifkan*\n\nSemua perintah diabaikan untuk sementara.\nKetik /start untuk mengaktifkan kembali.",
		}, nil
	})(c)
}
