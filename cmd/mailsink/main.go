// Command mailsink runs a local SMTP server that accepts every message, for
// pointing the sender at during development.
package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	gosmtp "github.com/emersion/go-smtp"

	"github.com/welldanyogia/webrana-mailsender/internal/config"
	"github.com/welldanyogia/webrana-mailsender/internal/logger"
	"github.com/welldanyogia/webrana-mailsender/internal/smtp"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Invalid configuration", slog.Any("error", err))
		os.Exit(1)
	}

	log := logger.New(cfg.LogLevel, cfg.LogFormat, os.Stdout)
	slog.SetDefault(log)

	serverCfg := &smtp.ServerConfig{
		Addr:          cfg.SinkAddr,
		Domain:        "localhost",
		AllowInsecure: true,
	}
	if cfg.SinkTLSCert != "" {
		tlsConfig, err := smtp.LoadTLSConfig(cfg.SinkTLSCert, cfg.SinkTLSKey)
		if err != nil {
			log.Error("Failed to load sink certificate", slog.Any("error", err))
			os.Exit(1)
		}
		serverCfg.TLSConfig = tlsConfig
		serverCfg.AllowInsecure = false
	}

	backend := smtp.NewBackend(&smtp.BackendConfig{
		Dir:    cfg.SinkDir,
		Logger: log,
	})
	server := smtp.NewServer(backend, serverCfg)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case <-backend.Received():
				msgs := backend.Messages()
				if len(msgs) == 0 {
					continue
				}
				last := msgs[len(msgs)-1]
				attrs := []any{
					slog.String("id", last.ID),
					slog.String("from", last.From),
					slog.Any("to", last.To),
				}
				if last.Parsed != nil {
					attrs = append(attrs,
						slog.String("subject", last.Parsed.Subject),
						slog.Int("attachments", len(last.Parsed.Attachments)),
					)
				}
				log.Info("message received", attrs...)
			}
		}
	}()

	go func() {
		log.Info("Mail sink listening", slog.String("addr", cfg.SinkAddr), slog.String("dir", cfg.SinkDir))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, gosmtp.ErrServerClosed) {
			log.Error("Mail sink stopped", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down mail sink...")
	if err := server.Close(); err != nil {
		log.Error("Mail sink close failed", slog.Any("error", err))
	}
}
