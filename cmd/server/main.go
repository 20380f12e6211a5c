package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gorm.io/gorm"

	"github.com/welldanyogia/webrana-mailsender/internal/alert"
	"github.com/welldanyogia/webrana-mailsender/internal/api"
	"github.com/welldanyogia/webrana-mailsender/internal/app"
	"github.com/welldanyogia/webrana-mailsender/internal/config"
	"github.com/welldanyogia/webrana-mailsender/internal/database"
	"github.com/welldanyogia/webrana-mailsender/internal/fallback"
	"github.com/welldanyogia/webrana-mailsender/internal/logger"
	"github.com/welldanyogia/webrana-mailsender/internal/repository"
	"github.com/welldanyogia/webrana-mailsender/internal/smtp"
	"github.com/welldanyogia/webrana-mailsender/internal/websocket"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.LoadWithValidation()
	if err != nil {
		slog.Error("Invalid configuration", slog.Any("error", err))
		os.Exit(1)
	}

	log := logger.New(cfg.LogLevel, cfg.LogFormat, os.Stdout)
	slog.SetDefault(log)

	log.Info("Starting Mail Sender backend...")
	cfg.LogConfig(log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var db *gorm.DB
	var journal repository.DispatchRepository
	if cfg.JournalEnabled() {
		db, err = database.Connect(cfg.JournalDSN(), database.Options{
			Production: cfg.IsProduction(),
			Debug:      cfg.LogLevel == "debug",
		})
		if err != nil {
			log.Error("Failed to open dispatch journal", slog.Any("error", err))
			os.Exit(1)
		}
		if err := database.Migrate(db); err != nil {
			log.Error("Failed to migrate dispatch journal", slog.Any("error", err))
			os.Exit(1)
		}
		journal = repository.NewDispatchRepository(db)
	} else {
		log.Info("Dispatch journal disabled")
	}

	dialer := smtp.NewRelayDialer(log)

	hub := websocket.NewHub(log)
	hub.SetNoticeTimeout(cfg.NoticeTimeout)
	go hub.Run(ctx)

	application := app.New(app.Options{
		ConfigPath: cfg.ConfigPath(),
		RosterPath: cfg.RosterPath(),
		Dialer:     dialer,
		Alerter:    alert.NewChannel(dialer, log),
		// The hub goes first so a connected UI answers the notice.
		Notifier: fallback.Fanout{hub, fallback.NewLogNotifier(log)},
		Observer: hub,
		Journal:  journal,
		Terminate: func() {
			log.Error("Terminating after fatal incident")
			os.Exit(1)
		},
		Logger: log,
	})
	application.Start(ctx)

	e := api.NewRouter(&api.RouterConfig{
		App:            application,
		DB:             db,
		Hub:            hub,
		Logger:         log,
		AllowedOrigins: cfg.AllowedOrigins,
		Production:     cfg.IsProduction(),
	})

	go func() {
		log.Info("Command bridge listening", slog.String("addr", cfg.APIAddr))
		if err := e.Start(cfg.APIAddr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("Command bridge stopped", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error("Command bridge shutdown failed", slog.Any("error", err))
	}
	if db != nil {
		if err := database.Close(db); err != nil {
			log.Error("Failed to close dispatch journal", slog.Any("error", err))
		}
	}

	log.Info("Server stopped")
}
