package api

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	gorillaws "github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/welldanyogia/webrana-mailsender/internal/api/middleware"
	"github.com/welldanyogia/webrana-mailsender/internal/app"
	"github.com/welldanyogia/webrana-mailsender/internal/fallback"
	"github.com/welldanyogia/webrana-mailsender/internal/mailer"
	"github.com/welldanyogia/webrana-mailsender/internal/smtp"
	"github.com/welldanyogia/webrana-mailsender/internal/smtp/smtptest"
	"github.com/welldanyogia/webrana-mailsender/internal/websocket"
)

type nopAlerter struct{}

func (nopAlerter) Notify(context.Context, string) error { return nil }

type testBridge struct {
	echo *echo.Echo
	app  *app.App
	hub  *websocket.Hub
	sink *smtptest.Sink
	dir  string
}

func newTestBridge(t *testing.T) *testBridge {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	hub := websocket.NewHub(logger)
	hub.SetNoticeTimeout(100 * time.Millisecond)
	go hub.Run(ctx)

	dir := t.TempDir()
	sink := smtptest.Start(t)
	a := app.New(app.Options{
		ConfigPath: filepath.Join(dir, "config.yaml"),
		RosterPath: filepath.Join(dir, "mail_list.yaml"),
		Dialer:     smtp.NewRelayDialer(logger),
		Alerter:    nopAlerter{},
		Notifier:   fallback.Fanout{hub, fallback.NewLogNotifier(logger)},
		Observer:   hub,
		Terminate:  func() {},
		Logger:     logger,
	})
	a.Start(ctx)

	for field, value := range map[string]string{
		"sender_mail":    "desk@x.com",
		"title":          "Weekly report",
		"smtp_transport": sink.Endpoint,
	} {
		require.NoError(t, a.SetConfigField(field, value))
	}
	require.NoError(t, a.SaveConfig(ctx))
	require.NoError(t, a.SetPersonName(ctx, "0", "Alice"))
	require.NoError(t, a.SetPersonMail(ctx, "0", "alice@x.com"))
	require.NoError(t, a.SaveRoster(ctx))

	e := NewRouter(&RouterConfig{
		App:            a,
		Hub:            hub,
		Logger:         logger,
		AllowedOrigins: []string{"tauri://localhost"},
	})
	return &testBridge{echo: e, app: a, hub: hub, sink: sink, dir: dir}
}

func (b *testBridge) do(method, target, body string, header ...string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	rec := httptest.NewRecorder()
	b.echo.ServeHTTP(rec, req)
	return rec
}

func TestRouter_HealthWithoutJournal(t *testing.T) {
	b := newTestBridge(t)

	rec := b.do(http.MethodGet, "/health", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"journal":"disabled"`)
	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
}

func TestRouter_RoutesAreMounted(t *testing.T) {
	b := newTestBridge(t)

	tests := []struct {
		method string
		target string
		body   string
		want   int
	}{
		{http.MethodGet, "/api/roster/mechanics", "", http.StatusOK},
		{http.MethodGet, "/api/roster/technicians", "", http.StatusOK},
		{http.MethodPost, "/api/recipients/0", "", http.StatusOK},
		{http.MethodGet, "/api/working", "", http.StatusOK},
		{http.MethodGet, "/api/journal", "", http.StatusOK},
		{http.MethodGet, "/api/other", "", http.StatusOK},
		{http.MethodPost, "/api/other", "", http.StatusCreated},
		{http.MethodPut, "/api/other/0", `{"text":"a@x.com"}`, http.StatusNoContent},
		{http.MethodPost, "/api/other/close", "", http.StatusOK},
		{http.MethodGet, "/api/settings/status", "", http.StatusOK},
		{http.MethodGet, "/api/settings/config", "", http.StatusOK},
		{http.MethodGet, "/api/settings/person/0", "", http.StatusOK},
		{http.MethodGet, "/api/missing", "", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.target, func(t *testing.T) {
			assert.Equal(t, tt.want, b.do(tt.method, tt.target, tt.body).Code)
		})
	}
}

func TestRouter_JournalEntryWithoutJournal(t *testing.T) {
	b := newTestBridge(t)

	rec := b.do(http.MethodGet, "/api/journal/0b9f4c1e", "")

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), `"code":"NOT_FOUND"`)
}

func TestRouter_SettingsGuard(t *testing.T) {
	b := newTestBridge(t)
	require.NoError(t, b.app.SetConfigField("settings_password", "admin"))

	assert.Equal(t, http.StatusUnauthorized, b.do(http.MethodGet, "/api/settings/config", "").Code)
	assert.Equal(t, http.StatusUnauthorized,
		b.do(http.MethodGet, "/api/settings/config", "", middleware.HeaderSettingsSecret, "Admin").Code)
	assert.Equal(t, http.StatusOK,
		b.do(http.MethodGet, "/api/settings/config", "", middleware.HeaderSettingsSecret, "admin").Code)

	// The main screen is never guarded.
	assert.Equal(t, http.StatusOK, b.do(http.MethodGet, "/api/roster/mechanics", "").Code)
	assert.Equal(t, http.StatusOK, b.do(http.MethodGet, "/api/settings/status", "").Code)
}

func TestRouter_UnlockIsThrottled(t *testing.T) {
	b := newTestBridge(t)
	require.NoError(t, b.app.SetConfigField("settings_password", "admin"))

	for i := 0; i < unlockBurst; i++ {
		rec := b.do(http.MethodPost, "/api/settings/unlock", `{"secret":"guess"}`)
		require.Equal(t, http.StatusUnauthorized, rec.Code, "attempt %d", i+1)
	}

	rec := b.do(http.MethodPost, "/api/settings/unlock", `{"secret":"admin"}`)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
}

func TestRouter_CORSPreflight(t *testing.T) {
	b := newTestBridge(t)

	rec := b.do(http.MethodOptions, "/api/send", "",
		echo.HeaderOrigin, "tauri://localhost",
		echo.HeaderAccessControlRequestMethod, http.MethodPost)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "tauri://localhost", rec.Header().Get(echo.HeaderAccessControlAllowOrigin))
}

// A send over the bridge streams its state transitions to the socket.
func TestRouter_SendStreamsTransitions(t *testing.T) {
	b := newTestBridge(t)
	srv := httptest.NewServer(b.echo)
	defer srv.Close()

	conn, _, err := gorillaws.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/ws", nil)
	require.NoError(t, err)
	defer conn.Close()
	require.Eventually(t, func() bool { return b.hub.ClientCount() == 1 }, time.Second, 5*time.Millisecond)

	path := filepath.Join(b.dir, "report.pdf")
	require.NoError(t, os.WriteFile(path, []byte("%PDF"), 0600))
	require.Equal(t, http.StatusOK, b.do(http.MethodPost, "/api/recipients/0", "").Code)
	require.Equal(t, http.StatusOK, b.do(http.MethodPut, "/api/attachments", `{"paths":["`+path+`"]}`).Code)

	rec := b.do(http.MethodPost, "/api/send", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, b.sink.Messages(), 1)

	var states []mailer.State
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	for len(states) < 4 {
		var msg websocket.WSMessage
		require.NoError(t, conn.ReadJSON(&msg))
		if msg.Type == websocket.MessageTypeTransition {
			states = append(states, msg.Transition.To)
		}
	}
	assert.Equal(t, []mailer.State{mailer.StateValidating, mailer.StateBuilding, mailer.StateTransmitting, mailer.StateSent}, states)
}

func TestRouter_WebsocketRejectsForeignOrigin(t *testing.T) {
	b := newTestBridge(t)
	srv := httptest.NewServer(b.echo)
	defer srv.Close()

	header := http.Header{}
	header.Set("Origin", "http://malicious.com")
	_, resp, err := gorillaws.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/ws", header)

	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}
