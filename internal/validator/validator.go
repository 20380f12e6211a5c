// Package validator provides address parsing and input sanitization shared by
// the roster, the composer and the command bridge.
package validator

import (
	"errors"
	"net/mail"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"
)

// Validation errors
var (
	ErrInvalidEmail  = errors.New("invalid email format")
	ErrInvalidHost   = errors.New("invalid host format")
	ErrInputTooLong  = errors.New("input exceeds maximum length")
	ErrEmptyInput    = errors.New("input cannot be empty")
	ErrInvalidSlotID = errors.New("invalid slot identifier")
)

// Host regex: lowercase alphanumeric labels separated by dots, hyphens inside labels.
// Dotted IPv4 literals match as well.
var hostRegex = regexp.MustCompile(`^[a-z0-9]([a-z0-9-]{0,61}[a-z0-9])?(\.[a-z0-9]([a-z0-9-]{0,61}[a-z0-9])?)*$`)

// ParseAddress parses a bare addr-spec such as "alice@x.com".
// Display names, angle brackets and surrounding whitespace are rejected so
// that the stored text is exactly what goes on the envelope.
func ParseAddress(address string) (string, error) {
	if strings.TrimSpace(address) == "" {
		return "", ErrEmptyInput
	}

	// RFC 5321 specifies max email length of 254 characters
	if utf8.RuneCountInString(address) > 254 {
		return "", ErrInputTooLong
	}

	parsed, err := mail.ParseAddress(address)
	if err != nil || parsed.Name != "" || parsed.Address != address {
		return "", ErrInvalidEmail
	}

	return parsed.Address, nil
}

// ValidateEmail reports whether address is a usable bare address.
func ValidateEmail(address string) error {
	_, err := ParseAddress(address)
	return err
}

// ValidateHost validates a transport host name against DNS label rules.
func ValidateHost(host string) error {
	host = strings.ToLower(host)

	if strings.TrimSpace(host) == "" {
		return ErrEmptyInput
	}

	// RFC 1035 specifies max domain length of 253 characters
	if len(host) > 253 {
		return ErrInputTooLong
	}

	if !hostRegex.MatchString(host) {
		return ErrInvalidHost
	}

	return nil
}

// ParseSlotID parses a non-negative decimal index handed over by the UI layer.
// Range checking is left to the owner of the slots.
func ParseSlotID(id string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(id))
	if err != nil || n < 0 {
		return 0, ErrInvalidSlotID
	}
	return n, nil
}

// Pagination constants
const (
	DefaultLimit = 20
	MaxLimit     = 100
)

// ValidatePagination validates and sanitizes pagination parameters.
// Returns sanitized limit and offset values.
func ValidatePagination(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}

	if offset < 0 {
		offset = 0
	}

	return limit, offset
}

// SanitizeFilename removes dangerous characters from an attachment name.
func SanitizeFilename(filename string) string {
	filename = strings.ReplaceAll(filename, "/", "_")
	filename = strings.ReplaceAll(filename, "\\", "_")
	filename = strings.ReplaceAll(filename, "..", "_")

	filename = stripControl(filename, false)
	filename = strings.TrimSpace(filename)

	// Limit length to 255 characters (common filesystem limit)
	filename = truncate(filename, 255)

	if filename == "" {
		return "unnamed"
	}

	return filename
}

// SanitizeLine removes control characters, trims whitespace and enforces
// maxLength (0 means unlimited). Used for names and subjects.
func SanitizeLine(input string, maxLength int) string {
	input = strings.TrimSpace(stripControl(input, false))
	return truncate(input, maxLength)
}

// SanitizeText is SanitizeLine for multi-line bodies: newlines and tabs survive.
func SanitizeText(input string, maxLength int) string {
	input = strings.ReplaceAll(input, "\r\n", "\n")
	input = strings.TrimSpace(stripControl(input, true))
	return truncate(input, maxLength)
}

func stripControl(input string, keepLayout bool) string {
	return strings.Map(func(r rune) rune {
		if keepLayout && (r == '\n' || r == '\t') {
			return r
		}
		if r < 32 || r == 127 {
			return -1
		}
		return r
	}, input)
}

func truncate(input string, maxLength int) string {
	if maxLength > 0 && utf8.RuneCountInString(input) > maxLength {
		return string([]rune(input)[:maxLength])
	}
	return input
}
