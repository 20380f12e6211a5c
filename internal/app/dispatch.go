package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	apperrors "github.com/welldanyogia/webrana-mailsender/internal/errors"
	"github.com/welldanyogia/webrana-mailsender/internal/mailer"
	"github.com/welldanyogia/webrana-mailsender/internal/models"
	"github.com/welldanyogia/webrana-mailsender/internal/repository"
	"github.com/welldanyogia/webrana-mailsender/internal/validator"
)

// SectionEntry is one roster slot as shown on the main screen.
type SectionEntry struct {
	ID       int            `json:"id"`
	Person   *models.Person `json:"person"`
	Selected bool           `json:"selected"`
}

// Section lists a roster category, marking slots already chosen as
// recipients.
func (a *App) Section(c models.Category) ([]SectionEntry, error) {
	entries, err := a.roster.Section(c)
	if err != nil {
		return nil, err
	}

	out := make([]SectionEntry, 0, len(entries))
	for _, e := range entries {
		se := SectionEntry{ID: e.ID}
		if p, ok := e.Slot.Person(); ok {
			se.Person = &p
			if r, err := models.NewRecipient(p); err == nil {
				se.Selected = a.working.Contains(r)
			}
		}
		out = append(out, se)
	}
	return out, nil
}

// recipientFor resolves a UI id to a Recipient. Roster mails were validated
// when the roster was saved, so a failure here is fatal.
func (a *App) recipientFor(ctx context.Context, rawID string) (models.Recipient, error) {
	_, p, err := a.rosterPerson(ctx, rawID)
	if err != nil {
		return models.Recipient{}, err
	}
	r, err := models.NewRecipient(p)
	if err != nil {
		return models.Recipient{}, a.fatal(ctx, "parse roster address", err, p.Mail)
	}
	return r, nil
}

// AddRecipient adds the person in slot id to the working set.
func (a *App) AddRecipient(ctx context.Context, id string) (models.Recipient, error) {
	r, err := a.recipientFor(ctx, id)
	if err != nil {
		return models.Recipient{}, err
	}
	a.working.Add(r)
	return r, nil
}

// RemoveRecipient removes the person in slot id from the working set.
func (a *App) RemoveRecipient(ctx context.Context, id string) (models.Recipient, error) {
	r, err := a.recipientFor(ctx, id)
	if err != nil {
		return models.Recipient{}, err
	}
	a.working.Remove(r)
	return r, nil
}

// AttachFiles replaces the attachment list with paths.
func (a *App) AttachFiles(ctx context.Context, paths []string) error {
	if err := a.working.SetAttachments(paths); err != nil {
		return a.report(ctx, "attach files", err, pickFailedNotice)
	}
	return nil
}

// PickFiles opens the file dialog and returns at once. The chosen files are
// attached when the dialog closes.
func (a *App) PickFiles(ctx context.Context) error {
	if a.picker == nil {
		return apperrors.Wrap(apperrors.ErrInvalidInput, "no file picker attached")
	}

	// The dialog outlives the request that opened it.
	bg := context.WithoutCancel(ctx)
	a.picker.PickFiles(bg, func(paths []string, err error) {
		if err != nil {
			_ = a.report(bg, "pick files", err, pickFailedNotice)
			return
		}
		if paths == nil {
			a.logger.Debug("file dialog cancelled")
			return
		}
		_ = a.AttachFiles(bg, paths)
	})
	return nil
}

// Working returns a copy of the working set.
func (a *App) Working() mailer.WorkingState {
	return a.working.Snapshot()
}

// SendReady reports whether the send button should be enabled: files are
// attached, every ad-hoc row is a valid address, and somebody will receive
// the mail.
func (a *App) SendReady() bool {
	return a.working.HasAttachments() &&
		a.other.IsValid() &&
		(a.working.HasRecipients() || !a.other.IsEmpty())
}

// Send mails the attachments to the working recipients plus the ad-hoc
// rows. On success both lists are cleared; on failure they are kept so the
// user can retry.
func (a *App) Send(ctx context.Context) (mailer.Result, error) {
	ws := a.working.Snapshot()
	req := mailer.Request{
		Recipients:  ws.Recipients,
		AdHoc:       a.other.Export(),
		Attachments: ws.Attachments,
		Config:      a.config.Snapshot(),
	}

	res, err := a.composer.Send(ctx, req)
	a.record(ctx, res, err)
	if err != nil {
		return res, a.report(ctx, "send mail", err, sendFailedNotice)
	}

	a.working.Clear()
	a.other.Clear()
	return res, nil
}

// maxFeedbackInput bounds what the feedback form accepts.
const maxFeedbackInput = 10000

// SendFeedback mails text to the configured feedback address.
func (a *App) SendFeedback(ctx context.Context, text string) (mailer.Result, error) {
	text = validator.SanitizeText(text, maxFeedbackInput)
	if text == "" {
		return mailer.Result{}, apperrors.Wrap(apperrors.ErrInvalidInput, "feedback text is empty")
	}

	res, err := a.composer.SendFeedback(ctx, text, a.config.Snapshot())
	a.record(ctx, res, err)
	if err != nil {
		return res, a.report(ctx, "send feedback", err, feedbackFailedNotice)
	}
	return res, nil
}

// record journals one attempt. Journal failures are logged only.
func (a *App) record(ctx context.Context, res mailer.Result, sendErr error) {
	d := &models.Dispatch{
		DispatchID:      res.DispatchID,
		Kind:            res.Kind,
		Outcome:         models.OutcomeSent,
		Subject:         validator.SanitizeLine(res.Subject, 255),
		RecipientCount:  res.Recipients,
		AttachmentCount: res.Attachments,
	}
	if sendErr != nil {
		d.Outcome = models.OutcomeFailed
		d.ErrorKind = string(apperrors.KindOf(sendErr))
		d.ErrorMessage = sendErr.Error()
	}

	if a.journal == nil {
		return
	}
	if err := a.journal.Create(ctx, d); err != nil {
		a.logger.Warn("failed to journal dispatch",
			slog.String("dispatch_id", d.DispatchID),
			slog.Any("error", err),
		)
	}
}

// JournalPage is one page of the dispatch journal.
type JournalPage struct {
	Dispatches []models.Dispatch `json:"dispatches"`
	Total      int64             `json:"total"`
	Limit      int               `json:"limit"`
	Offset     int               `json:"offset"`
}

// Journal lists past attempts, newest first.
func (a *App) Journal(ctx context.Context, kind, outcome string, limit, offset int) (JournalPage, error) {
	limit, offset = validator.ValidatePagination(limit, offset)
	page := JournalPage{Dispatches: []models.Dispatch{}, Limit: limit, Offset: offset}
	if a.journal == nil {
		return page, nil
	}

	list, total, err := a.journal.List(ctx, repository.DispatchFilter{Kind: kind, Outcome: outcome}, limit, offset)
	if err != nil {
		return page, fmt.Errorf("%w: %w", apperrors.ErrStorage, err)
	}
	if list != nil {
		page.Dispatches = list
	}
	page.Total = total
	return page, nil
}

// JournalEntry looks up one attempt by its dispatch id.
func (a *App) JournalEntry(ctx context.Context, dispatchID string) (*models.Dispatch, error) {
	if a.journal == nil {
		return nil, apperrors.Wrap(apperrors.ErrDispatchNotFound, "journal disabled")
	}

	d, err := a.journal.GetByDispatchID(ctx, dispatchID)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return nil, apperrors.Wrap(apperrors.ErrDispatchNotFound, dispatchID)
	case err != nil:
		return nil, fmt.Errorf("%w: %w", apperrors.ErrStorage, err)
	}
	return d, nil
}
