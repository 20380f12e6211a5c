// Package storage persists single structured documents with self-healing
// load and save paths.
package storage

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	apperrors "github.com/welldanyogia/webrana-mailsender/internal/errors"
	"github.com/welldanyogia/webrana-mailsender/internal/fallback"
)

// IncidentHandler receives storage failures.
type IncidentHandler interface {
	Handle(ctx context.Context, inc fallback.Incident)
}

// Options configures a Record.
type Options[T any] struct {
	// Path of the document on disk.
	Path string
	// Name is used in alerts and notices, e.g. "config".
	Name string
	// Empty returns the known-good empty value.
	Empty func() T
	// Check runs after a successful decode; an error marks the document corrupt.
	Check   func(T) error
	Handler IncidentHandler
	Logger  *slog.Logger
}

// Record is a typed document stored in one file. Load and Save never panic
// and never touch the caller's in-memory value.
type Record[T any] struct {
	path    string
	name    string
	empty   func() T
	check   func(T) error
	handler IncidentHandler
	logger  *slog.Logger
}

// NewRecord creates a Record.
func NewRecord[T any](opts Options[T]) *Record[T] {
	r := &Record[T]{
		path:    opts.Path,
		name:    opts.Name,
		empty:   opts.Empty,
		check:   opts.Check,
		handler: opts.Handler,
		logger:  opts.Logger,
	}
	if r.empty == nil {
		r.empty = func() T {
			var zero T
			return zero
		}
	}
	if r.name == "" {
		r.name = filepath.Base(opts.Path)
	}
	if r.logger == nil {
		r.logger = slog.Default()
	}
	return r
}

// Path returns the document path.
func (r *Record[T]) Path() string {
	return r.path
}

// Load reads and decodes the document. Any failure runs the fallback chain,
// which writes the empty document, and Load returns the empty value.
func (r *Record[T]) Load(ctx context.Context) T {
	data, err := os.ReadFile(r.path)
	if err != nil {
		r.fail(ctx, "load "+r.name, err, "", true)
		return r.empty()
	}

	var v T
	if err := Decode(data, &v); err != nil {
		r.fail(ctx, "decode "+r.name, err, string(data), true)
		return r.empty()
	}

	if r.check != nil {
		if err := r.check(v); err != nil {
			r.fail(ctx, "check "+r.name, err, string(data), true)
			return r.empty()
		}
	}

	r.logger.Debug("document loaded", slog.String("path", r.path))
	return v
}

// Save encodes v and replaces the document atomically. On failure the
// fallback chain runs and ErrStorage is returned.
func (r *Record[T]) Save(ctx context.Context, v T) error {
	data, err := Encode(v)
	if err != nil {
		r.fail(ctx, "encode "+r.name, err, fmt.Sprintf("%+v", v), true)
		return fmt.Errorf("%w: %v", apperrors.ErrStorage, err)
	}

	if err := writeAtomic(r.path, data); err != nil {
		// The previous document is intact after a failed rename, so no heal.
		r.fail(ctx, "save "+r.name, err, string(data), false)
		return fmt.Errorf("%w: %v", apperrors.ErrStorage, err)
	}

	r.logger.Debug("document saved", slog.String("path", r.path))
	return nil
}

// WriteEmpty writes the known-good empty document.
func (r *Record[T]) WriteEmpty() error {
	data, err := Encode(r.empty())
	if err != nil {
		return err
	}
	return writeAtomic(r.path, data)
}

func (r *Record[T]) fail(ctx context.Context, op string, err error, raw string, heal bool) {
	inc := fallback.Incident{
		Operation: op,
		Err:       err,
		Raw:       raw,
		Severity:  fallback.Recoverable,
		Notice: fallback.Notice{
			Title: "Stored " + r.name + " could not be used",
			Body:  "The saved " + r.name + " was reset to an empty state. The maintainer has been notified by e-mail.",
		},
	}
	if heal {
		inc.Heal = func(context.Context) error {
			if err := r.WriteEmpty(); err != nil {
				return fmt.Errorf("write empty %s: %w", r.name, err)
			}
			r.logger.Info("empty document written", slog.String("path", r.path))
			return nil
		}
	} else {
		inc.Notice = fallback.Notice{
			Title: "Changes were not saved",
			Body:  "Your " + r.name + " changes could not be written to disk. The maintainer has been notified by e-mail.",
		}
	}

	if r.handler == nil {
		r.logger.Error("storage failure without handler", slog.String("operation", op), slog.Any("error", err))
		if inc.Heal != nil {
			_ = inc.Heal(ctx)
		}
		return
	}
	r.handler.Handle(ctx, inc)
}

// writeAtomic writes data to a temp file in the target directory and renames
// it over path.
func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create storage directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+"-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to sync file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close file: %w", err)
	}
	if err := os.Chmod(tmpName, 0600); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to set permissions: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to replace file: %w", err)
	}
	return nil
}
