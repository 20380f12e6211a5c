package errors

import (
	"errors"
	"net"
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMailError_CreatesErrorWithCorrectFields(t *testing.T) {
	baseErr := errors.New("535 authentication failed")
	mailErr := NewMailError(KindErrorOpeningSMTP, baseErr)

	assert.Equal(t, KindErrorOpeningSMTP, mailErr.Kind)
	assert.Equal(t, baseErr, mailErr.Err)
	assert.Equal(t, "error opening SMTP: 535 authentication failed", mailErr.Error())
}

func TestMailError_Error_WithoutCause(t *testing.T) {
	assert.Equal(t, "no file", NewMailError(KindNoFile, nil).Error())
	assert.Equal(t, "invalid file path: report.zzz", NewMailErrorf(KindInvalidFilePath, "%s", "report.zzz").Error())
}

func TestMailError_IsMatchesSentinelOfItsKind(t *testing.T) {
	err := Wrap(NewMailError(KindNoRecipients, nil), "send")

	assert.True(t, errors.Is(err, ErrNoRecipients))
	assert.False(t, errors.Is(err, ErrNoFile))
	assert.Equal(t, KindNoRecipients, KindOf(err))
}

func TestMailError_UnwrapExposesTransportError(t *testing.T) {
	cause := &net.OpError{Op: "dial", Net: "tcp", Err: syscall.ECONNREFUSED}
	err := NewMailError(KindErrorOpeningSMTP, cause)

	var opErr *net.OpError
	require.True(t, errors.As(err, &opErr))
	assert.Equal(t, "dial", opErr.Op)
}

func TestKindOf_ReturnsNoneForForeignErrors(t *testing.T) {
	assert.Equal(t, KindNone, KindOf(errors.New("other")))
	assert.Equal(t, KindNone, KindOf(nil))
}

func TestValidationError_CarriesNames(t *testing.T) {
	err := Wrap(&ValidationError{Names: []string{"Bob", "Eve"}}, "save roster")

	names, ok := InvalidNames(err)
	require.True(t, ok)
	assert.Equal(t, []string{"Bob", "Eve"}, names)
	assert.True(t, errors.Is(err, ErrInvalidMails))
	assert.Contains(t, err.Error(), "Bob, Eve")

	_, ok = InvalidNames(errors.New("other"))
	assert.False(t, ok)
}

func TestIsConnectivity(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"dns failure", &net.DNSError{Err: "no such host", Name: "smtp.example.com"}, true},
		{"dial refused", &net.OpError{Op: "dial", Net: "tcp", Err: syscall.ECONNREFUSED}, true},
		{"bare refused", syscall.ECONNREFUSED, true},
		{"read reset", &net.OpError{Op: "read", Net: "tcp", Err: syscall.ECONNRESET}, false},
		{"protocol", errors.New("535 5.7.8 bad credentials"), false},
		{"wrapped dns", NewMailError(KindErrorOpeningSMTP, &net.DNSError{Err: "timeout", IsTimeout: true}), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsConnectivity(tt.err))
		})
	}
}

func TestClassify(t *testing.T) {
	offline := &net.OpError{Op: "dial", Net: "tcp", Err: syscall.ENETUNREACH}

	tests := []struct {
		name string
		err  error
		want Class
	}{
		{"no recipients", NewMailError(KindNoRecipients, nil), ClassValidation},
		{"no file", NewMailError(KindNoFile, nil), ClassValidation},
		{"invalid ad-hoc", NewMailError(KindInvalidRecipient, nil), ClassValidation},
		{"roster validation", &ValidationError{Names: []string{"Bob"}}, ClassValidation},
		{"offline transport", NewMailError(KindErrorOpeningSMTP, offline), ClassConnectivity},
		{"auth rejected", NewMailError(KindErrorOpeningSMTP, errors.New("535")), ClassSystem},
		{"bad attachment", NewMailError(KindInvalidFilePath, nil), ClassSystem},
		{"sender", NewMailError(KindInvalidSenderMail, nil), ClassSystem},
		{"storage", ErrStorage, ClassSystem},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.err))
		})
	}
}

func TestClass_String(t *testing.T) {
	assert.Equal(t, "system", ClassSystem.String())
	assert.Equal(t, "validation", ClassValidation.String())
	assert.Equal(t, "connectivity", ClassConnectivity.String())
}

func TestWrap_WrapsErrorWithContext(t *testing.T) {
	baseErr := errors.New("base error")
	wrapped := Wrap(baseErr, "context")

	assert.Contains(t, wrapped.Error(), "context")
	assert.Contains(t, wrapped.Error(), "base error")
}

func TestWrap_ReturnsNilForNilError(t *testing.T) {
	wrapped := Wrap(nil, "context")
	assert.Nil(t, wrapped)
}

func TestGetErrorCode_ReturnsCorrectCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"mail kind", NewMailError(KindNoFile, nil), "NO_FILE"},
		{"validation", &ValidationError{Names: []string{"Bob"}}, CodeInvalidMails},
		{"invalid id", Wrap(ErrInvalidID, "x"), CodeInvalidInput},
		{"unknown field", ErrUnknownField, CodeInvalidInput},
		{"out of range", ErrSlotOutOfRange, CodeInvalidInput},
		{"person missing", ErrPersonNotFound, CodeNotFound},
		{"dispatch missing", Wrap(ErrDispatchNotFound, "d-1"), CodeNotFound},
		{"unauthorized", ErrUnauthorized, CodeUnauthorized},
		{"storage", Wrap(ErrStorage, "save config"), CodeStorage},
		{"other", errors.New("boom"), CodeInternalError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, GetErrorCode(tt.err))
		})
	}
}
