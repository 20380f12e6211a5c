package mailer

import (
	"fmt"
	"sync"

	apperrors "github.com/welldanyogia/webrana-mailsender/internal/errors"
	"github.com/welldanyogia/webrana-mailsender/internal/models"
	"github.com/welldanyogia/webrana-mailsender/internal/validator"
)

// OtherMailList holds ad-hoc addresses typed during the session. Rows are
// addressed by index and removing one leaves an empty slot in place, so
// indexes handed to the UI stay stable. Never persisted.
type OtherMailList struct {
	mu    sync.Mutex
	slots []models.Slot
	size  int
}

// NewOtherMailList creates an empty list.
func NewOtherMailList() *OtherMailList {
	return &OtherMailList{}
}

// AddRow appends a blank row and returns its index.
func (l *OtherMailList) AddRow() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.slots = append(l.slots, models.Occupied(models.Person{}))
	l.size++
	return l.size - 1
}

// Size is the number of rows ever added since the last Clear.
func (l *OtherMailList) Size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.size
}

func (l *OtherMailList) checkIndex(i int) error {
	if i < 0 || i >= len(l.slots) {
		return fmt.Errorf("%w: ad-hoc row %d", apperrors.ErrSlotOutOfRange, i)
	}
	return nil
}

// Edit sets row i to text, used as both name and mail.
func (l *OtherMailList) Edit(i int, text string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if err := l.checkIndex(i); err != nil {
		return err
	}
	l.slots[i] = models.Occupied(models.Person{Name: text, Mail: text})
	return nil
}

// Remove empties row i.
func (l *OtherMailList) Remove(i int) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if err := l.checkIndex(i); err != nil {
		return err
	}
	l.slots[i] = models.EmptySlot()
	return nil
}

// DropEmpty empties every row whose mail is blank. Run when the ad-hoc
// editor closes.
func (l *OtherMailList) DropEmpty() {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i, s := range l.slots {
		if p, ok := s.Person(); ok && p.Mail == "" {
			l.slots[i] = models.EmptySlot()
		}
	}
}

// Rows lists every row with its index, empty ones included.
func (l *OtherMailList) Rows() []models.RosterEntry {
	l.mu.Lock()
	defer l.mu.Unlock()
	rows := make([]models.RosterEntry, 0, len(l.slots))
	for i, s := range l.slots {
		rows = append(rows, models.RosterEntry{ID: i, Slot: s})
	}
	return rows
}

// Export returns the occupied rows in order.
func (l *OtherMailList) Export() []models.Person {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []models.Person
	for _, s := range l.slots {
		if p, ok := s.Person(); ok {
			out = append(out, p)
		}
	}
	return out
}

// IsEmpty reports whether no row is occupied.
func (l *OtherMailList) IsEmpty() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, s := range l.slots {
		if !s.IsEmpty() {
			return false
		}
	}
	return true
}

// IsValid reports whether every occupied row holds a bare address.
func (l *OtherMailList) IsValid() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, s := range l.slots {
		if p, ok := s.Person(); ok {
			if _, err := validator.ParseAddress(p.Mail); err != nil {
				return false
			}
		}
	}
	return true
}

// Clear removes every row.
func (l *OtherMailList) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.slots = nil
	l.size = 0
}
