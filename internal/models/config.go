package models

import (
	"fmt"

	apperrors "github.com/welldanyogia/webrana-mailsender/internal/errors"
)

// Config holds sender, transport and feedback settings plus the settings secret.
// Every field is a plain string and the empty string means "unset"; nothing is
// validated until a value is actually used.
type Config struct {
	SenderName        string `yaml:"sender_name" json:"sender_name"`
	SenderMail        string `yaml:"sender_mail" json:"sender_mail"`
	SenderPassword    string `yaml:"sender_password" json:"-"`
	Title             string `yaml:"title" json:"title"`
	SMTPTransport     string `yaml:"smtp_transport" json:"smtp_transport"`
	FeedbackMail      string `yaml:"feedback_mail" json:"feedback_mail"`
	FeedbackRecipient string `yaml:"feedback_recipient" json:"feedback_recipient"`
	FeedbackSubject   string `yaml:"feedback_subject" json:"feedback_subject"`
	SettingsPassword  string `yaml:"settings_password" json:"-"`
}

// ConfigField names one editable Config field.
type ConfigField string

const (
	FieldSenderName        ConfigField = "sender_name"
	FieldSenderMail        ConfigField = "sender_mail"
	FieldSenderPassword    ConfigField = "sender_password"
	FieldTitle             ConfigField = "title"
	FieldSMTPTransport     ConfigField = "smtp_transport"
	FieldFeedbackMail      ConfigField = "feedback_mail"
	FieldFeedbackRecipient ConfigField = "feedback_recipient"
	FieldFeedbackSubject   ConfigField = "feedback_subject"
	FieldSettingsPassword  ConfigField = "settings_password"
)

// ConfigFields lists every field in document order.
var ConfigFields = []ConfigField{
	FieldSenderName,
	FieldSenderMail,
	FieldSenderPassword,
	FieldTitle,
	FieldSMTPTransport,
	FieldFeedbackMail,
	FieldFeedbackRecipient,
	FieldFeedbackSubject,
	FieldSettingsPassword,
}

// ParseConfigField maps a field name to its ConfigField.
func ParseConfigField(name string) (ConfigField, error) {
	f := ConfigField(name)
	if f.ref(&Config{}) == nil {
		return "", fmt.Errorf("%w: %q", apperrors.ErrUnknownField, name)
	}
	return f, nil
}

// Secret reports whether the field holds a credential.
func (f ConfigField) Secret() bool {
	return f == FieldSenderPassword || f == FieldSettingsPassword
}

func (f ConfigField) ref(c *Config) *string {
	switch f {
	case FieldSenderName:
		return &c.SenderName
	case FieldSenderMail:
		return &c.SenderMail
	case FieldSenderPassword:
		return &c.SenderPassword
	case FieldTitle:
		return &c.Title
	case FieldSMTPTransport:
		return &c.SMTPTransport
	case FieldFeedbackMail:
		return &c.FeedbackMail
	case FieldFeedbackRecipient:
		return &c.FeedbackRecipient
	case FieldFeedbackSubject:
		return &c.FeedbackSubject
	case FieldSettingsPassword:
		return &c.SettingsPassword
	default:
		return nil
	}
}

// Get returns the value of field f.
func (c Config) Get(f ConfigField) (string, error) {
	p := f.ref(&c)
	if p == nil {
		return "", fmt.Errorf("%w: %q", apperrors.ErrUnknownField, f)
	}
	return *p, nil
}

// Set overwrites field f with value.
func (c *Config) Set(f ConfigField, value string) error {
	p := f.ref(c)
	if p == nil {
		return fmt.Errorf("%w: %q", apperrors.ErrUnknownField, f)
	}
	*p = value
	return nil
}

// Credentials returns the login pair used against the configured relay.
func (c Config) Credentials() (username, secret string) {
	return c.SenderMail, c.SenderPassword
}
