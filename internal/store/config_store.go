// Package store holds the in-memory configuration and roster, each behind its
// own lock and backed by one persistent record.
package store

import (
	"context"
	"crypto/subtle"
	"log/slog"
	"sync"

	"github.com/welldanyogia/webrana-mailsender/internal/models"
	"github.com/welldanyogia/webrana-mailsender/internal/storage"
)

// ConfigStore owns the Config. Accessors work on memory only; Save persists.
type ConfigStore struct {
	mu     sync.Mutex
	cfg    models.Config
	record *storage.Record[models.Config]
	logger *slog.Logger
}

// NewConfigStore creates a ConfigStore over the document at path. Call Load
// before use.
func NewConfigStore(path string, handler storage.IncidentHandler, logger *slog.Logger) *ConfigStore {
	return &ConfigStore{
		record: storage.NewRecord(storage.Options[models.Config]{
			Path:    path,
			Name:    "configuration",
			Empty:   func() models.Config { return models.Config{} },
			Handler: handler,
			Logger:  logger,
		}),
		logger: logger,
	}
}

// Load reads the document, falling back to an empty Config.
func (s *ConfigStore) Load(ctx context.Context) {
	cfg := s.record.Load(ctx)

	s.mu.Lock()
	s.cfg = cfg
	s.mu.Unlock()
}

// Reload discards in-memory edits.
func (s *ConfigStore) Reload(ctx context.Context) {
	s.Load(ctx)
}

// Snapshot returns a copy of the current Config.
func (s *ConfigStore) Snapshot() models.Config {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cfg
}

// Get returns one field.
func (s *ConfigStore) Get(f models.ConfigField) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cfg.Get(f)
}

// Set changes one field in memory.
func (s *ConfigStore) Set(f models.ConfigField, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cfg.Set(f, value)
}

// Save persists the current Config. The lock is not held during disk I/O.
func (s *ConfigStore) Save(ctx context.Context) error {
	cfg := s.Snapshot()
	return s.record.Save(ctx, cfg)
}

// SettingsProtected reports whether a settings secret is configured.
func (s *ConfigStore) SettingsProtected() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cfg.SettingsPassword != ""
}

// CheckSettingsSecret compares candidate with the settings secret in constant time.
func (s *ConfigStore) CheckSettingsSecret(candidate string) bool {
	s.mu.Lock()
	secret := s.cfg.SettingsPassword
	s.mu.Unlock()
	return subtle.ConstantTimeCompare([]byte(candidate), []byte(secret)) == 1
}
