package errors

import (
	"errors"
	"fmt"
	"net"
	"strings"
	"syscall"
)

// Domain-specific error types
var (
	// ErrNoRecipients indicates a send was requested without any recipient
	ErrNoRecipients = errors.New("no recipients")

	// ErrNoFile indicates a send was requested without any attachment
	ErrNoFile = errors.New("no file")

	// ErrInvalidRecipient indicates an ad-hoc or feedback address that does not parse
	ErrInvalidRecipient = errors.New("invalid recipient address")

	// ErrInvalidFilePath indicates an attachment that cannot be read or typed
	ErrInvalidFilePath = errors.New("invalid file path")

	// ErrInvalidSenderMail indicates the configured sender address does not parse
	ErrInvalidSenderMail = errors.New("couldn't parse sender mail")

	// ErrNoRemoteConnection indicates the transport could not be set up
	ErrNoRemoteConnection = errors.New("couldn't open a remote connection")

	// ErrCouldntSendEmail indicates the message could not be finalized
	ErrCouldntSendEmail = errors.New("couldn't send email")

	// ErrOpeningSMTP indicates the transport rejected the message
	ErrOpeningSMTP = errors.New("error opening SMTP")

	// ErrInvalidMails indicates roster entries whose mail does not parse
	ErrInvalidMails = errors.New("invalid mail addresses")

	// ErrSlotOutOfRange indicates a roster or ad-hoc index outside the fixed range
	ErrSlotOutOfRange = errors.New("slot index out of range")

	// ErrInvalidID indicates an identifier from the UI layer that does not parse
	ErrInvalidID = errors.New("invalid identifier")

	// ErrPersonNotFound indicates an empty roster slot where a person was expected
	ErrPersonNotFound = errors.New("person not found")

	// ErrDispatchNotFound indicates a journal lookup for an unknown attempt
	ErrDispatchNotFound = errors.New("dispatch not found")

	// ErrUnknownField indicates a config field name that does not exist
	ErrUnknownField = errors.New("unknown config field")

	// ErrStorage indicates a persisted document could not be written
	ErrStorage = errors.New("storage failure")

	// ErrUnauthorized indicates a wrong settings secret
	ErrUnauthorized = errors.New("unauthorized")

	// ErrInvalidInput indicates malformed request data
	ErrInvalidInput = errors.New("invalid input")
)

// Kind names a failed dispatch outcome.
type Kind string

const (
	KindNone               Kind = ""
	KindNoRecipients       Kind = "NO_RECIPIENTS"
	KindNoFile             Kind = "NO_FILE"
	KindInvalidRecipient   Kind = "INVALID_RECIPIENT"
	KindInvalidFilePath    Kind = "INVALID_FILE_PATH"
	KindInvalidSenderMail  Kind = "INVALID_SENDER_MAIL"
	KindNoRemoteConnection Kind = "NO_REMOTE_CONNECTION"
	KindCouldntSendEmail   Kind = "COULDNT_SEND_EMAIL"
	KindErrorOpeningSMTP   Kind = "ERROR_OPENING_SMTP"
)

var kindSentinels = map[Kind]error{
	KindNoRecipients:       ErrNoRecipients,
	KindNoFile:             ErrNoFile,
	KindInvalidRecipient:   ErrInvalidRecipient,
	KindInvalidFilePath:    ErrInvalidFilePath,
	KindInvalidSenderMail:  ErrInvalidSenderMail,
	KindNoRemoteConnection: ErrNoRemoteConnection,
	KindCouldntSendEmail:   ErrCouldntSendEmail,
	KindErrorOpeningSMTP:   ErrOpeningSMTP,
}

// Error codes for API responses
const (
	CodeInvalidInput  = "INVALID_INPUT"
	CodeInvalidMails  = "INVALID_MAILS"
	CodeNotFound      = "NOT_FOUND"
	CodeUnauthorized  = "UNAUTHORIZED"
	CodeStorage       = "STORAGE_FAILURE"
	CodeInternalError = "INTERNAL_ERROR"
	CodeRateLimited   = "RATE_LIMITED"
)

// MailError is a dispatch failure of a given kind, optionally carrying the
// underlying cause (for ERROR_OPENING_SMTP, the transport error).
type MailError struct {
	Kind   Kind
	Err    error
	Detail string
}

// Error implements the error interface
func (e *MailError) Error() string {
	msg := kindSentinels[e.Kind].Error()
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the underlying error
func (e *MailError) Unwrap() error {
	return e.Err
}

// Is reports whether target is the sentinel of this error's kind.
func (e *MailError) Is(target error) bool {
	return kindSentinels[e.Kind] == target
}

// NewMailError creates a new MailError
func NewMailError(kind Kind, err error) *MailError {
	return &MailError{Kind: kind, Err: err}
}

// NewMailErrorf creates a MailError with a formatted detail and no cause.
func NewMailErrorf(kind Kind, format string, args ...any) *MailError {
	return &MailError{Kind: kind, Detail: fmt.Sprintf(format, args...)}
}

// KindOf returns the dispatch kind carried by err, or KindNone.
func KindOf(err error) Kind {
	var mailErr *MailError
	if errors.As(err, &mailErr) {
		return mailErr.Kind
	}
	return KindNone
}

// ValidationError lists roster entries (by name) whose mail does not parse.
type ValidationError struct {
	Names []string
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", ErrInvalidMails, strings.Join(e.Names, ", "))
}

// Unwrap returns ErrInvalidMails
func (e *ValidationError) Unwrap() error {
	return ErrInvalidMails
}

// InvalidNames extracts the offending names from a ValidationError, if any.
func InvalidNames(err error) ([]string, bool) {
	var vErr *ValidationError
	if errors.As(err, &vErr) {
		return vErr.Names, true
	}
	return nil, false
}

// Class groups errors by how the UI-adjacent layer reacts to them.
type Class int

const (
	// ClassSystem failures are alerted, degraded, and possibly fatal.
	ClassSystem Class = iota
	// ClassValidation failures are returned to the caller with no alert.
	ClassValidation
	// ClassConnectivity failures are shown to the user without an alert.
	ClassConnectivity
)

func (c Class) String() string {
	switch c {
	case ClassValidation:
		return "validation"
	case ClassConnectivity:
		return "connectivity"
	default:
		return "system"
	}
}

// Classify returns the class of err.
func Classify(err error) Class {
	switch {
	case errors.Is(err, ErrNoRecipients),
		errors.Is(err, ErrNoFile),
		errors.Is(err, ErrInvalidRecipient),
		errors.Is(err, ErrInvalidMails):
		return ClassValidation
	case (errors.Is(err, ErrOpeningSMTP) || errors.Is(err, ErrNoRemoteConnection)) && IsConnectivity(err):
		return ClassConnectivity
	default:
		return ClassSystem
	}
}

// IsConnectivity reports whether err is caused by the absence of a network path
// rather than by the remote server refusing the session.
func IsConnectivity(err error) bool {
	if err == nil {
		return false
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return true
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) && opErr.Op == "dial" {
		return true
	}

	if errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.ENETUNREACH) ||
		errors.Is(err, syscall.EHOSTUNREACH) {
		return true
	}

	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// Wrap wraps an error with additional context
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// GetErrorCode returns the appropriate error code for an error
func GetErrorCode(err error) string {
	if kind := KindOf(err); kind != KindNone {
		return string(kind)
	}

	switch {
	case errors.Is(err, ErrInvalidMails):
		return CodeInvalidMails
	case errors.Is(err, ErrInvalidInput),
		errors.Is(err, ErrInvalidID),
		errors.Is(err, ErrUnknownField),
		errors.Is(err, ErrSlotOutOfRange):
		return CodeInvalidInput
	case errors.Is(err, ErrPersonNotFound), errors.Is(err, ErrDispatchNotFound):
		return CodeNotFound
	case errors.Is(err, ErrUnauthorized):
		return CodeUnauthorized
	case errors.Is(err, ErrStorage):
		return CodeStorage
	default:
		return CodeInternalError
	}
}
