package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/lmittmann/tint"

	"github.com/nhle/mail-assistant/internal/api"
	"github.com/nhle/mail-assistant/internal/app"
	"github.com/nhle/mail-assistant/internal/credential"
	"github.com/nhle/mail-assistant/internal/model"
	"github.com/nhle/mail-assistant/internal/monitor"
	"github.com/nhle/mail-assistant/internal/notify"
	"github.com/nhle/mail-assistant/internal/session"
	"github.com/nhle/mail-assistant/internal/settings"
	"github.com/nhle/mail-assistant/internal/store"
)

func main() {
	configPath := flag.String("config", model.DefaultConfigPath(),
		"path to the configuration file")
	flag.Parse()

	cfg, err := model.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "loading config: %v\n", err)
		os.Exit(1)
	}

	logger, logFile, err := setupLogger(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "setting up logging: %v\n", err)
		os.Exit(1)
	}
	if logFile != nil {
		defer logFile.Close()
	}

	// On first run, write the effective defaults so the user has a
	// config file to edit.
	if _, statErr := os.Stat(*configPath); os.IsNotExist(statErr) {
		if err := model.SaveConfig(*configPath, cfg); err != nil {
			logger.Warn("writing default config failed",
				"path", *configPath, "error", err)
		}
	}

	if err := os.MkdirAll(filepath.Dir(cfg.DatabasePath), 0o755); err != nil {
		logger.Error("creating data directory failed", "error", err)
		os.Exit(1)
	}

	db, err := store.NewSQLiteStore(cfg.DatabasePath)
	if err != nil {
		logger.Error("opening database failed",
			"path", cfg.DatabasePath, "error", err)
		os.Exit(1)
	}
	defer db.Close()

	client := api.NewClient(
		cfg.Backend.BaseURL,
		loadAPIToken(logger),
		time.Duration(cfg.Backend.RequestTimeoutSec)*time.Second,
	)

	settingsStore := settings.New(db, logger)
	queue := notify.New()
	sess := session.New(client, client, queue, settingsStore, logger)
	mon := monitor.New(client, queue, db, settingsStore, logger)

	logger.Info("starting mail assistant", "backend", cfg.Backend.BaseURL)

	program := tea.NewProgram(
		app.New(client, db, settingsStore, queue, sess, mon, logger),
		tea.WithAltScreen(),
	)
	if _, err := program.Run(); err != nil {
		mon.Stop()
		logger.Error("application error", "error", err)
		os.Exit(1)
	}

	mon.Stop()
	logger.Info("mail assistant stopped")
}

// loadAPIToken reads the backend API token from the environment or the
// system keyring. A missing token is allowed; the backend may not
// require one.
func loadAPIToken(logger *slog.Logger) string {
	if token := os.Getenv("MAILASSIST_TOKEN"); token != "" {
		return token
	}

	token, err := credential.Get("backend-api-token")
	if err != nil {
		logger.Debug("no backend API token in keyring", "error", err)
		return ""
	}
	return token
}

// setupLogger builds the slog logger. Output goes to a file next to the
// database: the terminal belongs to the TUI.
func setupLogger(cfg *model.AppConfig) (*slog.Logger, *os.File, error) {
	logPath := filepath.Join(filepath.Dir(cfg.DatabasePath), "mailassist.log")
	if err := os.MkdirAll(filepath.Dir(logPath), 0o755); err != nil {
		return nil, nil, fmt.Errorf("creating log directory: %w", err)
	}

	f, err := os.OpenFile(logPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("opening log file %s: %w", logPath, err)
	}

	level := parseLevel(cfg.Log.Level)

	var handler slog.Handler
	if cfg.Log.Format == "json" {
		handler = slog.NewJSONHandler(f, &slog.HandlerOptions{Level: level})
	} else {
		handler = tint.NewHandler(f, &tint.Options{
			Level:      level,
			TimeFormat: time.DateTime,
			NoColor:    true,
		})
	}

	return slog.New(handler), f, nil
}

func parseLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
