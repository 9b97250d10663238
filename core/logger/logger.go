package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	coreconfig "github.com/danindra/warungbot/core/config"
)

var (
	initOnce   sync.Once
	shutdownMu sync.Mutex

	logFile  *os.File
	levelVar slog.LevelVar

	// L is the base logger shared by all components.
	L *slog.Logger

	// DB logs database-related events.
	DB *slog.Logger
	// MIG logs database migration events.
	MIG *slog.Logger
	// TG logs Telegram transport events.
	TG *slog.Logger
	// TWire logs Telegram wiring steps.
	TWire *slog.Logger
	// SVCCatalog logs catalog store activity.
	SVCCatalog *slog.Logger
	// SVCLedger logs ledger store activity.
	SVCLedger *slog.Logger
	// SESS logs session store activity.
	SESS *slog.Logger
	// RCPT logs receipt rendering activity.
	RCPT *slog.Logger
)

func init() {
	// components stay usable before InitLogger (tests, early startup)
	L = slog.Default()
	wireComponents()
}

// InitLogger configures the global structured logger. It may be called only once.
func InitLogger(cfg *coreconfig.Config) error {
	var initErr error
	initOnce.Do(func() {
		levelVar.Set(selectLevel(cfg))

		out, err := buildOutput(cfg)
		if err != nil {
			initErr = err
			return
		}

		opts := &slog.HandlerOptions{Level: &levelVar}
		var handler slog.Handler
		if selectFormat(cfg) == "json" {
			handler = slog.NewJSONHandler(out, opts)
		} else {
			handler = slog.NewTextHandler(out, opts)
		}

		logger := slog.New(handler)
		L = logger
		slog.SetDefault(logger)

		wireComponents()
	})
	return initErr
}

func wireComponents() {
	if L == nil {
		return
	}
	DB = L.With("component", "db")
	MIG = L.With("component", "db.migrate")
	TG = L.With("component", "tg")
	TWire = L.With("component", "tg.wire")
	SVCCatalog = L.With("component", "svc.catalog")
	SVCLedger = L.With("component", "svc.ledger")
	SESS = L.With("component", "session")
	RCPT = L.With("component", "receipt")
}

func selectLevel(cfg *coreconfig.Config) slog.Level {
	level := ""
	if cfg != nil {
		level = cfg.Logging.Level
	}
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func selectFormat(cfg *coreconfig.Config) string {
	if cfg == nil {
		return "text"
	}
	if strings.EqualFold(strings.TrimSpace(cfg.Logging.Format), "json") {
		return "json"
	}
	return "text"
}

func buildOutput(cfg *coreconfig.Config) (io.Writer, error) {
	if cfg == nil || strings.TrimSpace(cfg.Logging.File) == "" {
		return os.Stdout, nil
	}
	path := cfg.Logging.File
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create log dir: %w", err)
		}
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	logFile = f
	return io.MultiWriter(os.Stdout, f), nil
}

// Shutdown closes any log file opened by InitLogger.
func Shutdown() error {
	shutdownMu.Lock()
	defer shutdownMu.Unlock()
	if logFile == nil {
		return nil
	}
	err := logFile.Close()
	logFile = nil
	return err
}

// Component returns a logger tagged with the given component name.
func Component(name string) *slog.Logger {
	base := L
	if base == nil {
		base = slog.Default()
	}
	return base.With("component", name)
}
