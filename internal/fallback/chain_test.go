package fallback

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net"
	"sync"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/welldanyogia/webrana-mailsender/internal/errors"
)

type steps struct {
	mu  sync.Mutex
	log []string
}

func (s *steps) add(step string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.log = append(s.log, step)
}

type fakeAlerter struct {
	steps    *steps
	messages []string
	err      error
}

func (a *fakeAlerter) Notify(_ context.Context, msg string) error {
	a.steps.add("alert")
	a.messages = append(a.messages, msg)
	return a.err
}

type fakeNotifier struct {
	steps   *steps
	notices []Notice
	answer  Choice
}

func (n *fakeNotifier) Show(_ context.Context, notice Notice) Choice {
	n.steps.add("notice")
	n.notices = append(n.notices, notice)
	return n.answer
}

func newTestChain(t *testing.T) (*Chain, *steps, *fakeAlerter, *fakeNotifier) {
	t.Helper()
	s := &steps{}
	alerter := &fakeAlerter{steps: s}
	notifier := &fakeNotifier{steps: s, answer: ChoiceOK}
	chain := NewChain(Config{
		Alerter:   alerter,
		Notifier:  notifier,
		Terminate: func() { s.add("terminate") },
		Logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
		Now:       func() time.Time { return time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC) },
	})
	return chain, s, alerter, notifier
}

func TestChain_Handle_RunsStepsInOrder(t *testing.T) {
	chain, s, alerter, notifier := newTestChain(t)

	chain.Handle(context.Background(), Incident{
		Operation: "load config",
		Err:       errors.New("unexpected EOF"),
		Raw:       "sender_name: [",
		Heal: func(context.Context) error {
			s.add("heal")
			return nil
		},
	})

	assert.Equal(t, []string{"alert", "notice", "heal"}, s.log)
	require.Len(t, alerter.messages, 1)
	assert.Contains(t, alerter.messages[0], "Operation: load config")
	assert.Contains(t, alerter.messages[0], "unexpected EOF")
	assert.Contains(t, alerter.messages[0], "sender_name: [")
	require.Len(t, notifier.notices, 1)
	assert.Equal(t, Recoverable, notifier.notices[0].Severity)
	assert.Equal(t, []Choice{ChoiceOK}, notifier.notices[0].Buttons)
}

func TestChain_Handle_StepsAreIndependent(t *testing.T) {
	chain, s, alerter, _ := newTestChain(t)
	alerter.err = errors.New("smtp down")

	chain.Handle(context.Background(), Incident{
		Operation: "save roster",
		Err:       errors.New("disk full"),
		Severity:  Fatal,
		Heal: func(context.Context) error {
			s.add("heal")
			return errors.New("still full")
		},
	})

	assert.Equal(t, []string{"alert", "notice", "heal", "terminate"}, s.log)
}

func TestChain_Handle_FatalTerminatesWhateverTheChoice(t *testing.T) {
	for _, answer := range []Choice{ChoiceOK, ChoiceClose} {
		t.Run(string(answer), func(t *testing.T) {
			chain, s, _, notifier := newTestChain(t)
			notifier.answer = answer

			chain.Handle(context.Background(), Incident{
				Operation: "parse id",
				Err:       apperrors.ErrInvalidID,
				Severity:  Fatal,
			})

			assert.Equal(t, []string{"alert", "notice", "terminate"}, s.log)
			assert.Equal(t, DefaultNotice(Fatal).Title, notifier.notices[0].Title)
		})
	}
}

func TestChain_Handle_ConnectivitySkipsAlert(t *testing.T) {
	chain, s, alerter, notifier := newTestChain(t)
	offline := apperrors.NewMailError(apperrors.KindErrorOpeningSMTP,
		&net.OpError{Op: "dial", Net: "tcp", Err: syscall.ECONNREFUSED})

	chain.Handle(context.Background(), Incident{
		Operation: "send mail",
		Err:       offline,
		Notice:    Notice{Title: "No connection", Body: "Check the network."},
	})

	assert.Equal(t, []string{"notice"}, s.log)
	assert.Empty(t, alerter.messages)
	assert.Equal(t, "No connection", notifier.notices[0].Title)
}

func TestChain_AlertMessage_IncludesTimestamp(t *testing.T) {
	chain, _, _, _ := newTestChain(t)

	msg := chain.AlertMessage(Incident{Operation: "x"})
	assert.Contains(t, msg, "Time: 2024-05-01T08:00:00Z")
	assert.NotContains(t, msg, "State:")
}

func TestFanout_ReturnsFirstAnswer(t *testing.T) {
	s := &steps{}
	first := &fakeNotifier{steps: s, answer: ChoiceClose}
	second := &fakeNotifier{steps: s, answer: ChoiceOK}

	got := Fanout{first, second}.Show(context.Background(), Notice{Title: "t", Buttons: []Choice{ChoiceOK}})

	assert.Equal(t, ChoiceClose, got)
	assert.Len(t, second.notices, 1)
}

func TestLogNotifier_AnswersFirstButton(t *testing.T) {
	n := NewLogNotifier(slog.New(slog.NewTextHandler(io.Discard, nil)))

	assert.Equal(t, ChoiceClose, n.Show(context.Background(), Notice{Buttons: []Choice{ChoiceClose, ChoiceOK}}))
	assert.Equal(t, ChoiceOK, n.Show(context.Background(), Notice{}))
}
