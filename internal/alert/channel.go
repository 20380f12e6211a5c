// Package alert delivers failure reports to the maintainer over a mail path
// that depends on nothing but compiled-in values.
package alert

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/welldanyogia/webrana-mailsender/internal/smtp"
)

// Bootstrap values, set at link time:
//
//	go build -ldflags "-X github.com/welldanyogia/webrana-mailsender/internal/alert.relay=smtp.example.com ..."
//
// They are never read from the config document or the environment.
var (
	relay         = "smtp.gmail.com"
	senderName    = "Mail Sender"
	senderMail    = "mailsender.alerts@example.com"
	username      = "mailsender.alerts@example.com"
	secret        = ""
	recipientName = "Maintainer"
	recipientMail = "maintainer@example.com"
	subject       = "Mail Sender failure"
)

// Bootstrap is the self-contained identity used for alerts.
type Bootstrap struct {
	Relay         string
	SenderName    string
	SenderMail    string
	Username      string
	Secret        string
	RecipientName string
	RecipientMail string
	Subject       string
}

// CompiledBootstrap returns the link-time bootstrap bundle.
func CompiledBootstrap() Bootstrap {
	return Bootstrap{
		Relay:         relay,
		SenderName:    senderName,
		SenderMail:    senderMail,
		Username:      username,
		Secret:        secret,
		RecipientName: recipientName,
		RecipientMail: recipientMail,
		Subject:       subject,
	}
}

// ErrAlertFailed wraps every delivery failure.
var ErrAlertFailed = errors.New("alert delivery failed")

// Channel sends alerts. It is safe for concurrent use.
type Channel struct {
	bootstrap Bootstrap
	dialer    smtp.Dialer
	logger    *slog.Logger
	now       func() time.Time
}

// Option customizes a Channel.
type Option func(*Channel)

// WithBootstrap replaces the compiled-in bundle.
func WithBootstrap(b Bootstrap) Option {
	return func(c *Channel) { c.bootstrap = b }
}

// WithClock sets the time source used for the Date header.
func WithClock(now func() time.Time) Option {
	return func(c *Channel) { c.now = now }
}

// NewChannel creates a Channel relaying through dialer.
func NewChannel(dialer smtp.Dialer, logger *slog.Logger, opts ...Option) *Channel {
	c := &Channel{
		bootstrap: CompiledBootstrap(),
		dialer:    dialer,
		logger:    logger,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	return c
}

// Notify mails message to the maintainer. Callers log and drop the error;
// there is nothing beneath this channel.
func (c *Channel) Notify(ctx context.Context, message string) error {
	b := c.bootstrap

	host, _ := os.Hostname()
	body := fmt.Sprintf("Host: %s\n\n%s", host, message)

	msg := &smtp.Message{
		From:    smtp.Mailbox{Name: b.SenderName, Address: b.SenderMail},
		To:      []smtp.Mailbox{{Name: b.RecipientName, Address: b.RecipientMail}},
		Subject: b.Subject,
		Date:    c.now(),
		Text:    body,
	}

	raw, err := msg.Encode()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrAlertFailed, err)
	}

	transport, err := c.dialer.Relay(b.Relay, smtp.Credentials{Username: b.Username, Secret: b.Secret})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrAlertFailed, err)
	}

	if err := transport.Send(ctx, b.SenderMail, msg.Envelope(), bytes.NewReader(raw)); err != nil {
		return fmt.Errorf("%w: %w", ErrAlertFailed, err)
	}

	c.logger.Info("maintainer alerted", slog.String("recipient", b.RecipientMail))
	return nil
}
