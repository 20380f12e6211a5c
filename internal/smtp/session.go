package smtp

import (
	"bytes"
	"crypto/subtle"
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/emersion/go-sasl"
	"github.com/emersion/go-smtp"

	"github.com/welldanyogia/webrana-mailsender/internal/validator"
)

var errAuthRequired = &smtp.SMTPError{
	Code:         530,
	EnhancedCode: smtp.EnhancedCode{5, 7, 0},
	Message:      "Authentication required",
}

var errUnknownMechanism = &smtp.SMTPError{
	Code:         504,
	EnhancedCode: smtp.EnhancedCode{5, 7, 4},
	Message:      "Unsupported authentication mechanism",
}

// Session implements the go-smtp Session and AuthSession interfaces
type Session struct {
	backend    *Backend
	username   string
	from       string
	recipients []string
}

// NewSession creates a new SMTP session
func NewSession(backend *Backend) *Session {
	return &Session{
		backend:    backend,
		recipients: make([]string, 0),
	}
}

// AuthMechanisms lists the supported SASL mechanisms
func (s *Session) AuthMechanisms() []string {
	return []string{sasl.Plain}
}

// Auth handles AUTH PLAIN
func (s *Session) Auth(mech string) (sasl.Server, error) {
	if mech != sasl.Plain {
		return nil, errUnknownMechanism
	}
	return sasl.NewPlainServer(func(identity, username, password string) error {
		if s.backend.requiresAuth() {
			userOK := subtle.ConstantTimeCompare([]byte(username), []byte(s.backend.username)) == 1
			passOK := subtle.ConstantTimeCompare([]byte(password), []byte(s.backend.password)) == 1
			if !userOK || !passOK {
				return errors.New("invalid credentials")
			}
		}
		s.username = username
		return nil
	}), nil
}

// Mail handles the MAIL FROM command
func (s *Session) Mail(from string, opts *smtp.MailOptions) error {
	if s.backend.requiresAuth() && s.username == "" {
		return errAuthRequired
	}
	s.from = from
	if s.backend.logger != nil {
		s.backend.logger.Debug("MAIL FROM", slog.String("from", from))
	}
	return nil
}

// Rcpt handles the RCPT TO command
func (s *Session) Rcpt(to string, opts *smtp.RcptOptions) error {
	if err := validator.ValidateEmail(to); err != nil {
		return &smtp.SMTPError{
			Code:         550,
			EnhancedCode: smtp.EnhancedCode{5, 1, 1},
			Message:      "Invalid recipient address",
		}
	}

	s.recipients = append(s.recipients, to)
	if s.backend.logger != nil {
		s.backend.logger.Debug("RCPT TO", slog.String("to", to))
	}
	return nil
}

// Data handles the DATA command - receives the email content
func (s *Session) Data(r io.Reader) error {
	if len(s.recipients) == 0 {
		return &smtp.SMTPError{
			Code:         503,
			EnhancedCode: smtp.EnhancedCode{5, 5, 1},
			Message:      "No recipients specified",
		}
	}

	raw, err := io.ReadAll(r)
	if err != nil {
		return err
	}

	parsed, err := ParseEmail(bytes.NewReader(raw))
	if err != nil {
		if s.backend.logger != nil {
			s.backend.logger.Error("failed to parse email", slog.Any("error", err))
		}
		return &smtp.SMTPError{
			Code:         550,
			EnhancedCode: smtp.EnhancedCode{5, 6, 0},
			Message:      "Failed to parse email",
		}
	}

	// Override sender from envelope if not in headers
	if parsed.SenderEmail == "" {
		parsed.SenderEmail = s.from
	}

	msg := &ReceivedMessage{
		ID:         newMessageID(),
		From:       s.from,
		To:         append([]string(nil), s.recipients...),
		Username:   s.username,
		Raw:        raw,
		Parsed:     parsed,
		ReceivedAt: time.Now(),
	}
	if err := s.backend.store(msg); err != nil {
		if s.backend.logger != nil {
			s.backend.logger.Error("failed to store email", slog.Any("error", err))
		}
		return &smtp.SMTPError{
			Code:         451,
			EnhancedCode: smtp.EnhancedCode{4, 3, 0},
			Message:      "Temporary error",
		}
	}

	if s.backend.logger != nil {
		s.backend.logger.Info("email received",
			slog.String("id", msg.ID),
			slog.String("from", s.from),
			slog.Int("recipients", len(s.recipients)),
			slog.String("subject", parsed.Subject),
			slog.Int("attachments", len(parsed.Attachments)),
			slog.String("snippet", parsed.Snippet))
	}

	return nil
}

// Reset resets the session state
func (s *Session) Reset() {
	s.from = ""
	s.recipients = make([]string, 0)
}

// Logout handles the end of the session
func (s *Session) Logout() error {
	return nil
}
