// Package app holds the application state shared by every user action and
// decides, per error class, whether a failure is reported back, shown to the
// user, alerted to the maintainer, or ends the process.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	apperrors "github.com/welldanyogia/webrana-mailsender/internal/errors"
	"github.com/welldanyogia/webrana-mailsender/internal/fallback"
	"github.com/welldanyogia/webrana-mailsender/internal/mailer"
	"github.com/welldanyogia/webrana-mailsender/internal/models"
	"github.com/welldanyogia/webrana-mailsender/internal/repository"
	"github.com/welldanyogia/webrana-mailsender/internal/smtp"
	"github.com/welldanyogia/webrana-mailsender/internal/store"
	"github.com/welldanyogia/webrana-mailsender/internal/validator"
)

// FilePicker opens the platform file dialog. done runs on the picker's own
// goroutine once the dialog closes; a nil slice means the user cancelled.
type FilePicker interface {
	PickFiles(ctx context.Context, done func(paths []string, err error))
}

// Options configures an App.
type Options struct {
	ConfigPath string
	RosterPath string

	Dialer   smtp.Dialer
	Alerter  fallback.Alerter
	Notifier fallback.Notifier
	Observer mailer.Observer
	Picker   FilePicker
	// Journal is optional; without it attempts are only logged.
	Journal repository.DispatchRepository
	// Terminate ends the process after a fatal incident.
	Terminate func()
	Logger    *slog.Logger
}

// App is the single application state. Each field guards itself.
type App struct {
	chain    *fallback.Chain
	config   *store.ConfigStore
	roster   *store.RosterStore
	working  *mailer.WorkingSet
	other    *mailer.OtherMailList
	composer *mailer.Composer
	picker   FilePicker
	journal  repository.DispatchRepository
	logger   *slog.Logger

	selectedMu sync.Mutex
	selected   *int
}

// New wires an App. Call Start before serving any action.
func New(opts Options) *App {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	chain := fallback.NewChain(fallback.Config{
		Alerter:   opts.Alerter,
		Notifier:  opts.Notifier,
		Terminate: opts.Terminate,
		Logger:    logger,
	})

	return &App{
		chain:   chain,
		config:  store.NewConfigStore(opts.ConfigPath, chain, logger),
		roster:  store.NewRosterStore(opts.RosterPath, chain, logger),
		working: mailer.NewWorkingSet(),
		other:   mailer.NewOtherMailList(),
		composer: mailer.NewComposer(mailer.ComposerConfig{
			Dialer:   opts.Dialer,
			Observer: opts.Observer,
			Logger:   logger,
		}),
		picker:  opts.Picker,
		journal: opts.Journal,
		logger:  logger,
	}
}

// Start loads both documents. Missing or corrupt documents are healed.
func (a *App) Start(ctx context.Context) {
	a.config.Load(ctx)
	a.roster.Load(ctx)
	a.logger.Info("application state loaded")
}

var (
	sendFailedNotice = fallback.Notice{
		Title:   "The mail was not sent",
		Body:    "Something went wrong while sending. The maintainer has been notified. Your recipients and files are kept, you can try again.",
		Buttons: []fallback.Choice{fallback.ChoiceOK},
	}
	offlineNotice = fallback.Notice{
		Title:   "No connection",
		Body:    "The mail server cannot be reached. Check the network connection and try again.",
		Buttons: []fallback.Choice{fallback.ChoiceOK},
	}
	feedbackFailedNotice = fallback.Notice{
		Title:   "Feedback was not sent",
		Body:    "Please contact the administrator.",
		Buttons: []fallback.Choice{fallback.ChoiceOK},
	}
	pickFailedNotice = fallback.Notice{
		Title:   "Files could not be attached",
		Body:    "The chosen files cannot be read. Please choose them again.",
		Buttons: []fallback.Choice{fallback.ChoiceOK},
	}
)

// report applies the error policy to err and returns it unchanged.
// Validation errors go back to the caller only. Everything else runs the
// fallback chain as recoverable; the chain itself skips the alert when the
// cause is a network outage.
func (a *App) report(ctx context.Context, operation string, err error, notice fallback.Notice) error {
	switch apperrors.Classify(err) {
	case apperrors.ClassValidation:
		a.logger.Info("action rejected", slog.String("operation", operation), slog.Any("error", err))
	case apperrors.ClassConnectivity:
		a.chain.Handle(ctx, fallback.Incident{
			Operation: operation,
			Err:       err,
			Notice:    offlineNotice,
			Severity:  fallback.Recoverable,
		})
	default:
		a.chain.Handle(ctx, fallback.Incident{
			Operation: operation,
			Err:       err,
			Notice:    notice,
			Severity:  fallback.Recoverable,
		})
	}
	return err
}

// fatal handles a broken contract with the UI: the process cannot trust its
// state any more.
func (a *App) fatal(ctx context.Context, operation string, err error, raw string) error {
	a.chain.Handle(ctx, fallback.Incident{
		Operation: operation,
		Err:       err,
		Raw:       raw,
		Severity:  fallback.Fatal,
	})
	return err
}

// slotID parses an id handed out by the UI.
func (a *App) slotID(ctx context.Context, raw string) (int, error) {
	id, err := validator.ParseSlotID(raw)
	if err != nil {
		return 0, a.fatal(ctx, "parse id", fmt.Errorf("%w: %v", apperrors.ErrInvalidID, err), raw)
	}
	return id, nil
}

// rosterPerson resolves an id the UI offered as an occupied roster slot.
func (a *App) rosterPerson(ctx context.Context, raw string) (int, models.Person, error) {
	id, err := a.slotID(ctx, raw)
	if err != nil {
		return 0, models.Person{}, err
	}
	p, err := a.roster.Person(id)
	if err != nil {
		return 0, models.Person{}, a.fatal(ctx, "load person", err, raw)
	}
	return id, p, nil
}
