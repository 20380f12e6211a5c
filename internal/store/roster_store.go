package store

import (
	"context"
	"log/slog"
	"sync"

	apperrors "github.com/welldanyogia/webrana-mailsender/internal/errors"
	"github.com/welldanyogia/webrana-mailsender/internal/models"
	"github.com/welldanyogia/webrana-mailsender/internal/storage"
)

// RosterStore owns the Roster.
type RosterStore struct {
	mu     sync.Mutex
	roster models.Roster
	record *storage.Record[models.Roster]
	logger *slog.Logger
}

// NewRosterStore creates a RosterStore over the document at path. A document
// whose list is not exactly models.RosterSize long is treated as corrupt.
func NewRosterStore(path string, handler storage.IncidentHandler, logger *slog.Logger) *RosterStore {
	return &RosterStore{
		roster: models.EmptyRoster(),
		record: storage.NewRecord(storage.Options[models.Roster]{
			Path:    path,
			Name:    "mail list",
			Empty:   models.EmptyRoster,
			Check:   models.Roster.CheckLength,
			Handler: handler,
			Logger:  logger,
		}),
		logger: logger,
	}
}

// Load reads the document, falling back to an empty roster.
func (s *RosterStore) Load(ctx context.Context) {
	r := s.record.Load(ctx)

	s.mu.Lock()
	s.roster = r
	s.mu.Unlock()
}

// Reload discards in-memory edits.
func (s *RosterStore) Reload(ctx context.Context) {
	s.Load(ctx)
}

// Snapshot returns a deep copy of the roster.
func (s *RosterStore) Snapshot() models.Roster {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.roster.Clone()
}

// Slot returns slot i.
func (s *RosterStore) Slot(i int) (models.Slot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.roster.Slot(i)
}

// Person returns the occupant of slot i.
func (s *RosterStore) Person(i int) (models.Person, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.roster.Person(i)
}

// Section lists the slots of a category.
func (s *RosterStore) Section(c models.Category) ([]models.RosterEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.roster.Section(c)
}

// SetName changes the name of slot i in memory.
func (s *RosterStore) SetName(i int, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.roster.SetName(i, name)
}

// SetMail changes the mail of slot i in memory.
func (s *RosterStore) SetMail(i int, mail string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.roster.SetMail(i, mail)
}

// Save normalizes nameless slots to empty, then validates every mail. Invalid
// mails are returned as *apperrors.ValidationError and nothing is written.
func (s *RosterStore) Save(ctx context.Context) error {
	s.mu.Lock()
	s.roster = s.roster.Normalized()
	if names := s.roster.InvalidNames(); len(names) > 0 {
		s.mu.Unlock()
		if s.logger != nil {
			s.logger.Info("roster save rejected", slog.Any("names", names))
		}
		return &apperrors.ValidationError{Names: names}
	}
	snapshot := s.roster.Clone()
	s.mu.Unlock()

	return s.record.Save(ctx, snapshot)
}
