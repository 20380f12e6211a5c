package mailer

import (
	"bytes"
	"context"
	"log/slog"
	"mime"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/welldanyogia/webrana-mailsender/internal/errors"
	"github.com/welldanyogia/webrana-mailsender/internal/models"
	"github.com/welldanyogia/webrana-mailsender/internal/smtp"
	"github.com/welldanyogia/webrana-mailsender/internal/validator"
)

// State of one send attempt.
type State string

const (
	StateIdle         State = "idle"
	StateValidating   State = "validating"
	StateBuilding     State = "building"
	StateTransmitting State = "transmitting"
	StateSent         State = "sent"
	StateFailed       State = "failed"
)

// Transition is reported to the observer on every state change.
type Transition struct {
	DispatchID string         `json:"dispatch_id"`
	From       State          `json:"from"`
	To         State          `json:"to"`
	Kind       apperrors.Kind `json:"error_kind,omitempty"`
	At         time.Time      `json:"at"`
}

// Observer receives state transitions.
type Observer interface {
	Transition(ctx context.Context, t Transition)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(ctx context.Context, t Transition)

// Transition implements Observer.
func (f ObserverFunc) Transition(ctx context.Context, t Transition) { f(ctx, t) }

// Request is everything one send needs, copied out of shared state beforehand.
type Request struct {
	Recipients  []models.Recipient
	AdHoc       []models.Person
	Attachments []string
	Config      models.Config
}

// Result describes a finished attempt, successful or not.
type Result struct {
	DispatchID  string `json:"dispatch_id"`
	Kind        string `json:"kind"`
	Subject     string `json:"subject"`
	Recipients  int    `json:"recipients"`
	Attachments int    `json:"attachments"`
	State       State  `json:"state"`
}

// maxFeedbackLength bounds the feedback body.
const maxFeedbackLength = 10000

// Composer runs the Idle → Validating → Building → Transmitting → Sent|Failed
// machine. It never touches the working set it was fed from.
type Composer struct {
	dialer   smtp.Dialer
	observer Observer
	logger   *slog.Logger
	now      func() time.Time
	newID    func() string
}

// ComposerConfig holds composer collaborators.
type ComposerConfig struct {
	Dialer   smtp.Dialer
	Observer Observer
	Logger   *slog.Logger
	Now      func() time.Time
	NewID    func() string
}

// NewComposer creates a Composer.
func NewComposer(cfg ComposerConfig) *Composer {
	c := &Composer{
		dialer:   cfg.Dialer,
		observer: cfg.Observer,
		logger:   cfg.Logger,
		now:      cfg.Now,
		newID:    cfg.NewID,
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	if c.now == nil {
		c.now = time.Now
	}
	if c.newID == nil {
		c.newID = func() string { return uuid.New().String() }
	}
	return c
}

// attempt tracks the state of one send.
type attempt struct {
	c      *Composer
	ctx    context.Context
	result Result
}

func (c *Composer) begin(ctx context.Context, kind string) *attempt {
	return &attempt{
		c:      c,
		ctx:    ctx,
		result: Result{DispatchID: c.newID(), Kind: kind, State: StateIdle},
	}
}

func (a *attempt) enter(to State) {
	a.move(to, apperrors.KindNone)
}

func (a *attempt) move(to State, kind apperrors.Kind) {
	t := Transition{
		DispatchID: a.result.DispatchID,
		From:       a.result.State,
		To:         to,
		Kind:       kind,
		At:         a.c.now(),
	}
	a.result.State = to
	if a.c.observer != nil {
		a.c.observer.Transition(a.ctx, t)
	}
}

func (a *attempt) fail(err *apperrors.MailError) (Result, error) {
	a.move(StateFailed, err.Kind)
	a.c.logger.Warn("dispatch failed",
		slog.String("dispatch_id", a.result.DispatchID),
		slog.String("kind", a.result.Kind),
		slog.String("error_kind", string(err.Kind)),
		slog.Any("error", err),
	)
	return a.result, err
}

// Send validates, builds and transmits one message to the union of roster
// recipients and ad-hoc addresses, with the request's attachments.
func (c *Composer) Send(ctx context.Context, req Request) (Result, error) {
	a := c.begin(ctx, models.DispatchKindMail)
	a.result.Subject = req.Config.Title

	a.enter(StateValidating)
	recipients := slices.Clone(req.Recipients)
	for _, p := range req.AdHoc {
		r, err := models.NewRecipient(p)
		if err != nil {
			return a.fail(asMailError(err, apperrors.KindInvalidRecipient))
		}
		recipients = append(recipients, r)
	}
	recipients = dedupRecipients(recipients)
	a.result.Recipients = len(recipients)
	if len(recipients) == 0 {
		return a.fail(apperrors.NewMailError(apperrors.KindNoRecipients, nil))
	}
	if len(req.Attachments) == 0 {
		return a.fail(apperrors.NewMailError(apperrors.KindNoFile, nil))
	}
	a.result.Attachments = len(req.Attachments)

	a.enter(StateBuilding)
	attachments := make([]smtp.Attachment, 0, len(req.Attachments))
	for _, path := range req.Attachments {
		att, err := readAttachment(path)
		if err != nil {
			return a.fail(err)
		}
		attachments = append(attachments, att)
	}

	msg, mailErr := c.envelope(req.Config, req.Config.Title, a.result.DispatchID)
	if mailErr != nil {
		return a.fail(mailErr)
	}
	for _, r := range recipients {
		msg.To = append(msg.To, smtp.Mailbox{Name: r.Name, Address: r.Address})
	}
	msg.Attachments = attachments

	return c.transmit(a, req.Config, msg)
}

// SendFeedback mails text to the configured feedback address. Same states and
// error kinds as Send, with no attachments.
func (c *Composer) SendFeedback(ctx context.Context, text string, cfg models.Config) (Result, error) {
	a := c.begin(ctx, models.DispatchKindFeedback)
	a.result.Subject = cfg.FeedbackSubject

	a.enter(StateValidating)
	addr, err := validator.ParseAddress(cfg.FeedbackMail)
	if err != nil {
		// The feedback address comes from configuration, not from the user.
		return a.fail(&apperrors.MailError{Kind: apperrors.KindCouldntSendEmail, Err: err, Detail: "feedback address"})
	}
	a.result.Recipients = 1

	a.enter(StateBuilding)
	msg, mailErr := c.envelope(cfg, cfg.FeedbackSubject, a.result.DispatchID)
	if mailErr != nil {
		return a.fail(mailErr)
	}
	msg.To = []smtp.Mailbox{{Name: cfg.FeedbackRecipient, Address: addr}}
	msg.Text = validator.SanitizeText(text, maxFeedbackLength)

	return c.transmit(a, cfg, msg)
}

// envelope builds the sender side of a message.
func (c *Composer) envelope(cfg models.Config, subject, dispatchID string) (*smtp.Message, *apperrors.MailError) {
	from, err := validator.ParseAddress(cfg.SenderMail)
	if err != nil {
		return nil, &apperrors.MailError{Kind: apperrors.KindInvalidSenderMail, Err: err}
	}
	return &smtp.Message{
		From:    smtp.Mailbox{Name: cfg.SenderName, Address: from},
		Subject: subject,
		Date:    c.now(),
		Headers: map[string]string{smtp.HeaderDispatchID: dispatchID},
	}, nil
}

func (c *Composer) transmit(a *attempt, cfg models.Config, msg *smtp.Message) (Result, error) {
	raw, err := msg.Encode()
	if err != nil {
		return a.fail(apperrors.NewMailError(apperrors.KindCouldntSendEmail, err))
	}

	a.enter(StateTransmitting)
	user, secret := cfg.Credentials()
	transport, err := c.dialer.Relay(cfg.SMTPTransport, smtp.Credentials{Username: user, Secret: secret})
	if err != nil {
		return a.fail(apperrors.NewMailError(apperrors.KindNoRemoteConnection, err))
	}

	if err := transport.Send(a.ctx, msg.From.Address, msg.Envelope(), bytes.NewReader(raw)); err != nil {
		return a.fail(apperrors.NewMailError(apperrors.KindErrorOpeningSMTP, err))
	}

	a.enter(StateSent)
	c.logger.Info("dispatch sent",
		slog.String("dispatch_id", a.result.DispatchID),
		slog.String("kind", a.result.Kind),
		slog.Int("recipients", a.result.Recipients),
		slog.Int("attachments", a.result.Attachments),
	)
	return a.result, nil
}

func readAttachment(path string) (smtp.Attachment, *apperrors.MailError) {
	content, err := os.ReadFile(path)
	if err != nil {
		return smtp.Attachment{}, &apperrors.MailError{Kind: apperrors.KindInvalidFilePath, Err: err, Detail: path}
	}

	contentType, ok := ContentTypeOf(path)
	if !ok {
		return smtp.Attachment{}, apperrors.NewMailErrorf(apperrors.KindInvalidFilePath, "no content type for %s", path)
	}

	return smtp.Attachment{
		FileName:    validator.SanitizeFilename(filepath.Base(path)),
		ContentType: contentType,
		Content:     content,
	}, nil
}

// Document types commonly attached to reports. The stdlib table only knows
// web formats unless the host ships a mime.types file.
var extraTypes = map[string]string{
	".pdf":  "application/pdf",
	".doc":  "application/msword",
	".docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	".xls":  "application/vnd.ms-excel",
	".xlsx": "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	".ppt":  "application/vnd.ms-powerpoint",
	".pptx": "application/vnd.openxmlformats-officedocument.presentationml.presentation",
	".odt":  "application/vnd.oasis.opendocument.text",
	".ods":  "application/vnd.oasis.opendocument.spreadsheet",
	".csv":  "text/csv",
	".txt":  "text/plain",
	".rtf":  "application/rtf",
	".zip":  "application/zip",
	".7z":   "application/x-7z-compressed",
	".gz":   "application/gzip",
	".tar":  "application/x-tar",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".bmp":  "image/bmp",
	".tif":  "image/tiff",
	".tiff": "image/tiff",
	".eml":  "message/rfc822",
	".log":  "text/plain",
	".md":   "text/markdown",
}

func init() {
	for ext, t := range extraTypes {
		_ = mime.AddExtensionType(ext, t)
	}
}

// ContentTypeOf guesses a media type from the file extension, without
// parameters. ok is false when the extension is unknown.
func ContentTypeOf(path string) (string, bool) {
	ext := strings.ToLower(filepath.Ext(path))
	if ext == "" {
		return "", false
	}
	t := mime.TypeByExtension(ext)
	if t == "" {
		return "", false
	}
	mediaType, _, err := mime.ParseMediaType(t)
	if err != nil {
		return "", false
	}
	return mediaType, true
}

func dedupRecipients(in []models.Recipient) []models.Recipient {
	out := make([]models.Recipient, 0, len(in))
	for _, r := range in {
		if !slices.Contains(out, r) {
			out = append(out, r)
		}
	}
	return out
}

func asMailError(err error, fallbackKind apperrors.Kind) *apperrors.MailError {
	if me, ok := err.(*apperrors.MailError); ok {
		return me
	}
	return apperrors.NewMailError(fallbackKind, err)
}
