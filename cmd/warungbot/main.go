package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/danindra/warungbot/core/config"
	"github.com/danindra/warungbot/core/database"
	"github.com/danindra/warungbot/core/logger"
	"github.com/danindra/warungbot/core/telegram"
	"github.com/danindra/warungbot/internal/bot"
	"github.com/danindra/warungbot/internal/flow"
	"github.com/danindra/warungbot/internal/session"
	"github.com/danindra/warungbot/internal/store"
)

func main() {
	if err := run(); err != nil {
		slog.Error("fatal", slog.String("err", err.Error()))
		os.Exit(1)
	}
}

func run() error {
	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return err
	}

	if err := logger.InitLogger(cfg); err != nil {
		return err
	}
	defer func() { _ = logger.Shutdown() }()

	dbCfg := database.Config{
		Host:           cfg.Database.Host,
		Port:           cfg.Database.Port,
		User:           cfg.Database.User,
		Password:       cfg.Database.Password,
		Name:           cfg.Database.Name,
		SSLMode:        cfg.Database.SSLMode,
		MaxConnections: cfg.Database.MaxConnections,
	}
	if err := database.RunMigrations(dbCfg); err != nil {
		return err
	}
	db, err := database.Connect(dbCfg)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	catalog := store.NewPGCatalog(db)
	ledger := store.NewPGLedger(db)
	sessions := session.NewManager()
	engine := flow.NewEngine(catalog, ledger, sessions, cfg.Sessions.SearchThreshold)
	b := bot.New(cfg, engine, ledger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go session.RunSweeper(ctx, sessions, cfg.Sessions.IdleTimeout, cfg.Sessions.SweepInterval)

	reg := telegram.NewRegistry()
	b.Register(reg)

	return telegram.RunTelegram(ctx, telegram.RunOptions{
		Config:      cfg,
		Registry:    reg,
		Middlewares: b.Middlewares(),
		Routes:      b.Routes(reg),
	})
}
