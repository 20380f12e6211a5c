// Package logger builds the process logger. Attributes whose key names a
// credential are redacted before they reach the handler.
package logger

import (
	"io"
	"log/slog"
	"strings"
)

// Redacted replaces the value of sensitive attributes.
const Redacted = "[REDACTED]"

// New creates a logger writing to w. format is "json" or "text"; level is
// debug, info, warn or error (case-insensitive, default info).
func New(level, format string, w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level:       ParseLevel(level),
		ReplaceAttr: Redact,
	}

	var handler slog.Handler
	if strings.EqualFold(format, "text") {
		handler = slog.NewTextHandler(w, opts)
	} else {
		handler = slog.NewJSONHandler(w, opts)
	}
	return slog.New(handler)
}

// ParseLevel maps a level name to a slog.Level.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Redact is a slog ReplaceAttr hook hiding sensitive values.
func Redact(_ []string, a slog.Attr) slog.Attr {
	if a.Value.Kind() == slog.KindGroup {
		return a
	}
	if isSensitiveKey(a.Key) {
		return slog.String(a.Key, Redacted)
	}
	return a
}

var sensitiveKeys = map[string]bool{
	"api_key":           true,
	"apikey":            true,
	"authorization":     true,
	"auth":              true,
	"cookie":            true,
	"session":           true,
	"x-settings-secret": true,
}

// Fragments that mark a key as sensitive wherever they appear, so
// sender_password and settings_password are covered too.
var sensitiveFragments = []string{"password", "secret", "token", "credential"}

// isSensitiveKey checks if a key might contain sensitive data.
func isSensitiveKey(key string) bool {
	key = strings.ToLower(key)
	if sensitiveKeys[key] {
		return true
	}
	for _, f := range sensitiveFragments {
		if strings.Contains(key, f) {
			return true
		}
	}
	return false
}
