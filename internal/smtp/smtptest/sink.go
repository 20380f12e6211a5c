// Package smtptest runs an in-process SMTP sink for tests of packages that
// send mail.
package smtptest

import (
	"io"
	"log/slog"
	"net"
	"testing"

	"github.com/welldanyogia/webrana-mailsender/internal/smtp"
)

// Sink is a running loopback sink.
type Sink struct {
	*smtp.Backend
	// Endpoint is a plain smtp:// relay host pointing at the sink.
	Endpoint string
}

// Start launches a sink accepting any login and stops it when the test ends.
func Start(t testing.TB) *Sink {
	return StartWithConfig(t, &smtp.BackendConfig{})
}

// StartWithConfig launches a sink with the given backend settings.
func StartWithConfig(t testing.TB, cfg *smtp.BackendConfig) *Sink {
	t.Helper()

	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	backend := smtp.NewBackend(cfg)

	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("smtptest: listen: %v", err)
	}

	server := smtp.NewServer(backend, &smtp.ServerConfig{
		Addr:          l.Addr().String(),
		Domain:        "localhost",
		AllowInsecure: true,
	})
	go server.Serve(l)
	t.Cleanup(func() { server.Close() })

	return &Sink{Backend: backend, Endpoint: "smtp://" + l.Addr().String()}
}

// ClosedEndpoint returns a plain endpoint on a loopback port nobody listens on.
func ClosedEndpoint(t testing.TB) string {
	t.Helper()

	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("smtptest: listen: %v", err)
	}
	addr := l.Addr().String()
	l.Close()
	return "smtp://" + addr
}
