// Package fallback implements the recovery policy applied to every system
// failure: alert the maintainer, tell the user, heal persisted state, and
// terminate when the process cannot safely continue.
package fallback

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	apperrors "github.com/welldanyogia/webrana-mailsender/internal/errors"
)

// Severity decides whether the process survives an incident.
type Severity int

const (
	// Recoverable incidents show a notice and the application continues.
	Recoverable Severity = iota
	// Fatal incidents terminate the process once the notice is answered.
	Fatal
)

func (s Severity) String() string {
	if s == Fatal {
		return "fatal"
	}
	return "recoverable"
}

// Choice is the button the user picked on a notice.
type Choice string

// Buttons offered on notices.
const (
	ChoiceOK    Choice = "OK"
	ChoiceClose Choice = "Close"
)

// Notice is a short, non-technical message presented to the user.
type Notice struct {
	Title    string   `json:"title"`
	Body     string   `json:"body"`
	Buttons  []Choice `json:"buttons"`
	Severity Severity `json:"-"`
}

// Notifier presents a notice and returns the user's choice.
type Notifier interface {
	Show(ctx context.Context, n Notice) Choice
}

// Alerter delivers a diagnostic message to the maintainer.
type Alerter interface {
	Notify(ctx context.Context, message string) error
}

// Incident describes one detected failure.
type Incident struct {
	// Operation names what was being attempted, e.g. "load config".
	Operation string
	Err       error
	// Raw is any state worth attaching to the alert (document text, encoded value).
	Raw      string
	Notice   Notice
	Severity Severity
	// Heal restores a known-good state; optional.
	Heal func(ctx context.Context) error
}

// Connectivity reports whether the incident is a pure network outage.
func (i Incident) Connectivity() bool {
	return apperrors.Classify(i.Err) == apperrors.ClassConnectivity
}

// Config holds the chain's collaborators.
type Config struct {
	Alerter  Alerter
	Notifier Notifier
	// Terminate ends the process; defaults to os.Exit(1).
	Terminate func()
	Logger    *slog.Logger
	Now       func() time.Time
}

// Chain runs the fallback steps for an incident.
type Chain struct {
	alerter   Alerter
	notifier  Notifier
	terminate func()
	logger    *slog.Logger
	now       func() time.Time
}

// NewChain creates a Chain. Missing collaborators are replaced by no-op or
// logging defaults, except Terminate which defaults to os.Exit(1).
func NewChain(cfg Config) *Chain {
	c := &Chain{
		alerter:   cfg.Alerter,
		notifier:  cfg.Notifier,
		terminate: cfg.Terminate,
		logger:    cfg.Logger,
		now:       cfg.Now,
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	if c.notifier == nil {
		c.notifier = NewLogNotifier(c.logger)
	}
	if c.terminate == nil {
		c.terminate = func() { os.Exit(1) }
	}
	if c.now == nil {
		c.now = time.Now
	}
	return c
}

// Handle runs alert, notice and heal in order, each regardless of the outcome
// of the previous one, then terminates if the incident is fatal.
func (c *Chain) Handle(ctx context.Context, inc Incident) {
	c.logger.Error("incident",
		slog.String("operation", inc.Operation),
		slog.String("severity", inc.Severity.String()),
		slog.Any("error", inc.Err),
	)

	if inc.Connectivity() {
		c.logger.Info("alert skipped for connectivity failure", slog.String("operation", inc.Operation))
	} else if c.alerter != nil {
		if err := c.alerter.Notify(ctx, c.AlertMessage(inc)); err != nil {
			c.logger.Warn("alert delivery failed",
				slog.String("operation", inc.Operation),
				slog.Any("error", err),
			)
		}
	}

	notice := inc.Notice
	if notice.Title == "" {
		notice = DefaultNotice(inc.Severity)
	}
	notice.Severity = inc.Severity
	if len(notice.Buttons) == 0 {
		notice.Buttons = []Choice{ChoiceOK}
	}
	choice := c.notifier.Show(ctx, notice)

	if inc.Heal != nil {
		if err := inc.Heal(ctx); err != nil {
			c.logger.Error("heal step failed",
				slog.String("operation", inc.Operation),
				slog.Any("error", err),
			)
		}
	}

	if inc.Severity == Fatal {
		// Every button terminates.
		c.logger.Error("terminating after fatal incident",
			slog.String("operation", inc.Operation),
			slog.String("choice", string(choice)),
		)
		c.terminate()
	}
}

// AlertMessage renders the diagnostic text sent to the maintainer.
func (c *Chain) AlertMessage(inc Incident) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Operation: %s\n", inc.Operation)
	fmt.Fprintf(&b, "Severity: %s\n", inc.Severity)
	fmt.Fprintf(&b, "Time: %s\n", c.now().UTC().Format(time.RFC3339))
	if inc.Err != nil {
		fmt.Fprintf(&b, "Error: %v\n", inc.Err)
	}
	if inc.Raw != "" {
		b.WriteString("\nState:\n")
		b.WriteString(inc.Raw)
		if !strings.HasSuffix(inc.Raw, "\n") {
			b.WriteString("\n")
		}
	}
	return b.String()
}

// DefaultNotice is shown when an incident carries no notice of its own.
func DefaultNotice(sev Severity) Notice {
	if sev == Fatal {
		return Notice{
			Title:   "The application has to close",
			Body:    "An unexpected error occurred. The maintainer has been notified by e-mail. Please inform your supervisor.",
			Buttons: []Choice{ChoiceOK, ChoiceClose},
		}
	}
	return Notice{
		Title:   "Something went wrong",
		Body:    "An unexpected error occurred. The maintainer has been notified by e-mail. You can keep working.",
		Buttons: []Choice{ChoiceOK},
	}
}
