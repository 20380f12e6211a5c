package logger

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_JSONFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := New("info", "json", &buf)

	logger.Info("dispatch sent", slog.String("dispatch_id", "d-1"), slog.Int("recipients", 2))

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "dispatch sent", entry["msg"])
	assert.Equal(t, "d-1", entry["dispatch_id"])
	assert.Equal(t, float64(2), entry["recipients"])
	assert.Contains(t, entry, "time")
}

func TestNew_TextFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := New("info", "TEXT", &buf)

	logger.Info("hello", slog.String("k", "v"))

	assert.Contains(t, buf.String(), "msg=hello")
	assert.Contains(t, buf.String(), "k=v")
}

func TestNew_LevelFilters(t *testing.T) {
	var buf bytes.Buffer
	logger := New("warn", "json", &buf)

	logger.Info("hidden")
	assert.Empty(t, buf.String())

	logger.Warn("shown")
	assert.Contains(t, buf.String(), "shown")
}

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"DEBUG":   slog.LevelDebug,
		"info":    slog.LevelInfo,
		"warn":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"verbose": slog.LevelInfo,
	}

	for in, want := range tests {
		t.Run(in, func(t *testing.T) {
			assert.Equal(t, want, ParseLevel(in))
		})
	}
}

func TestNew_RedactsSensitiveAttributes(t *testing.T) {
	var buf bytes.Buffer
	logger := New("debug", "json", &buf)

	logger.Info("config field set",
		slog.String("sender_password", "hunter2"),
		slog.String("X-Settings-Secret", "admin"),
		slog.String("Authorization", "Bearer abc"),
		slog.String("field", "title"),
	)

	out := buf.String()
	assert.NotContains(t, out, "hunter2")
	assert.NotContains(t, out, "admin")
	assert.NotContains(t, out, "Bearer abc")
	assert.Contains(t, out, `"field":"title"`)
	assert.Contains(t, out, Redacted)
}

func TestNew_RedactsInsideGroups(t *testing.T) {
	var buf bytes.Buffer
	logger := New("info", "json", &buf)

	logger.Info("relay", slog.Group("credentials_set", slog.String("username", "desk@x.com"), slog.String("secret", "pw")))

	assert.NotContains(t, buf.String(), `"pw"`)
	assert.Contains(t, buf.String(), "desk@x.com")
}

func TestIsSensitiveKey(t *testing.T) {
	tests := []struct {
		key       string
		sensitive bool
	}{
		{"password", true},
		{"sender_password", true},
		{"settings_password", true},
		{"api_key", true},
		{"token", true},
		{"refresh_token", true},
		{"secret", true},
		{"Authorization", true},
		{"credentials", true},
		{"cookie", true},
		{"session", true},
		{"dispatch_id", false},
		{"recipients", false},
		{"ip", false},
		{"path", false},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			assert.Equal(t, tt.sensitive, isSensitiveKey(tt.key))
		})
	}
}
