// Package mailer composes and dispatches messages from the working send state.
package mailer

import (
	"os"
	"slices"
	"sync"

	apperrors "github.com/welldanyogia/webrana-mailsender/internal/errors"
	"github.com/welldanyogia/webrana-mailsender/internal/models"
)

// WorkingState is a copy of the working set taken before a send.
type WorkingState struct {
	Recipients []models.Recipient `json:"recipients"`
	// Attachments is nil until files have been chosen.
	Attachments []string `json:"attachments"`
}

// WorkingSet is the per-session recipient set and attachment list.
type WorkingSet struct {
	mu          sync.Mutex
	recipients  []models.Recipient
	attachments []string
}

// NewWorkingSet creates an empty WorkingSet.
func NewWorkingSet() *WorkingSet {
	return &WorkingSet{}
}

// Add inserts r unless an equal recipient is already present.
func (w *WorkingSet) Add(r models.Recipient) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !slices.Contains(w.recipients, r) {
		w.recipients = append(w.recipients, r)
	}
}

// Remove drops every recipient equal to r.
func (w *WorkingSet) Remove(r models.Recipient) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.recipients = slices.DeleteFunc(w.recipients, func(x models.Recipient) bool { return x == r })
}

// Contains reports whether r is in the set.
func (w *WorkingSet) Contains(r models.Recipient) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return slices.Contains(w.recipients, r)
}

// SetAttachments replaces the attachment list. Every path must name a regular
// file; otherwise nothing changes and INVALID_FILE_PATH is returned.
func (w *WorkingSet) SetAttachments(paths []string) error {
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return &apperrors.MailError{Kind: apperrors.KindInvalidFilePath, Err: err, Detail: p}
		}
		if !info.Mode().IsRegular() {
			return apperrors.NewMailErrorf(apperrors.KindInvalidFilePath, "%s is not a file", p)
		}
	}

	list := make([]string, len(paths))
	copy(list, paths)

	w.mu.Lock()
	w.attachments = list
	w.mu.Unlock()
	return nil
}

// HasAttachments reports whether files have been chosen.
func (w *WorkingSet) HasAttachments() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.attachments) > 0
}

// HasRecipients reports whether any roster recipient is selected.
func (w *WorkingSet) HasRecipients() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.recipients) > 0
}

// Snapshot copies the current state.
func (w *WorkingSet) Snapshot() WorkingState {
	w.mu.Lock()
	defer w.mu.Unlock()

	s := WorkingState{Recipients: slices.Clone(w.recipients)}
	if w.attachments != nil {
		s.Attachments = slices.Clone(w.attachments)
	}
	return s
}

// Clear empties recipients and attachments.
func (w *WorkingSet) Clear() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.recipients = nil
	w.attachments = nil
}
