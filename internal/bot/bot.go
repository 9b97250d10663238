// Package bot adapts the conversation engine to Telegram: commands, callback
// routing, reply rendering and the receipt document flow.
package bot

import (
	"log/slog"
	"sync/atomic"
	"time"

	tele "gopkg.in/telebot.v4"

	"github.com/danindra/warungbot/core/config"
	"github.com/danindra/warungbot/core/logger"
	"github.com/danindra/warungbot/core/telegram"
	"github.com/danindra/warungbot/core/telegram/callbacks"
	"github.com/danindra/warungbot/core/telegram/commands"
	"github.com/danindra/warungbot/core/telegram/middleware"
	"github.com/danindra/warungbot/internal/flow"
	"github.com/danindra/warungbot/internal/store"
)

// Bot wires the flow engine to the Telegram transport.
type Bot struct {
	engine  *flow.Engine
	ledger  store.Ledger
	shop    config.ShopConfig
	cfg     *config.Config
	deduper *middleware.PressDeduper

	// active is the /stop soft switch. The process keeps running while
	// inactive; updates are dropped at the gate.
	active atomic.Bool
}

// New builds the bot layer. The bot starts active.
func New(cfg *config.Config, engine *flow.Engine, ledger store.Ledger) *Bot {
	b := &Bot{
		engine:  engine,
		ledger:  ledger,
		shop:    cfg.Shop,
		cfg:     cfg,
		deduper: middleware.NewPressDeduper(cfg.Sessions.PressWindow),
	}
	b.active.Store(true)
	return b
}

// Active reports whether updates are currently processed.
func (b *Bot) Active() bool {
	return b.active.Load()
}

// Middlewares returns the global middleware chain, outermost first.
func (b *Bot) Middlewares() []telegram.Middleware {
	mws := []telegram.Middleware{
		{Name: "recover", Use: middleware.RecoverMiddleware},
		{Name: "logger", Use: middleware.LoggerMiddleware},
		{Name: "soft_stop", Use: middleware.SoftStopGate(b, map[string]struct{}{
			"/start": {},
		})},
		{Name: "press_dedupe", Use: b.deduper.Middleware()},
	}
	if b.cfg.RateLimit.IntervalMS > 0 {
		exclude := make(map[string]struct{}, len(b.cfg.RateLimit.ExcludeUpdates))
		for _, kind := range b.cfg.RateLimit.ExcludeUpdates {
			exclude[kind] = struct{}{}
		}
		mws = append(mws, telegram.Middleware{
			Name: "rate_limit",
			Use: middleware.RateLimitMiddleware(middleware.RateLimitOptions{
				Interval: time.Duration(b.cfg.RateLimit.IntervalMS) * time.Millisecond,
				Exclude:  exclude,
			}),
		})
	}
	return mws
}

// Register fills the registry with commands and one callback per action kind.
func (b *Bot) Register(reg *telegram.Registry) {
	reg.RegisterCommand("/start", commands.Command{
		Handler:     b.handleStart,
		Description: "Mulai bot dan tampilkan menu utama",
	})
	reg.RegisterCommand("/stop", commands.Command{
		Handler:     b.handleStop,
		Description: "Nonaktifkan bot sementara",
	})
	reg.RegisterCommand("/help", commands.Command{
		Handler:     b.wrap("help", b.actionHandler(flow.ActHelp)),
		Description: "Panduan penggunaan",
	})
	reg.RegisterCommand("/delete_product", commands.Command{
		Handler:     b.wrap("delete_product", b.actionHandler(flow.ActDeleteProductMenu)),
		Description: "Hapus produk dari katalog",
	})
	reg.RegisterCommand("/delete_transaction", commands.Command{
		Handler:     b.wrap("delete_transaction", b.actionHandler(flow.ActDeleteTransactionMenu)),
		Description: "Hapus transaksi dari riwayat",
	})

	for _, kind := range flow.Kinds() {
		kind := kind
		_ = reg.RegisterCallback(string(kind), b.wrap("cb."+string(kind), b.callbackHandler(kind)))
	}

	reg.SetCallbackNotFound(func(c tele.Context) error {
		return c.Respond(&tele.CallbackResponse{Text: "Aksi tidak dikenal"})
	})
	reg.SetTextFallback(b.wrap("text", b.textHandler))

	keys := reg.ListCallbacks()
	summary, truncated := logger.SummarizeStrings(keys, 6)
	logger.TWire.Info("callbacks wired",
		slog.String("event", "register.callbacks"),
		slog.Int("count", len(keys)),
		slog.String("keys", summary),
		slog.Bool("truncated", truncated),
	)
}

// Routes binds the registry to telebot endpoints.
func (b *Bot) Routes(reg *telegram.Registry) []telegram.Route {
	routes := []telegram.Route{
		{Endpoint: tele.OnCallback, Handler: func(c tele.Context) error {
			key := callbacks.CallbackKey(c)
			if h, ok := reg.GetCallback(key); ok {
				return h(c)
			}
			return reg.CallbackNotFound()(c)
		}},
		{Endpoint: tele.OnText, Handler: reg.TextFallback()},
	}
	for name, cmd := range reg.Commands() {
		routes = append(routes, telegram.Route{Endpoint: name, Handler: cmd.Handler})
	}
	return routes
}
