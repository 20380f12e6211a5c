package validator

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAddress(t *testing.T) {
	tests := []struct {
		name    string
		address string
		wantErr error
	}{
		// Valid addresses
		{"valid simple email", "alice@x.com", nil},
		{"valid with subdomain", "user@mail.example.com", nil},
		{"valid with plus", "user+tag@example.com", nil},
		{"valid with dots", "first.last@example.com", nil},
		{"valid single label host", "ops@localhost", nil},

		// Invalid addresses
		{"empty string", "", ErrEmptyInput},
		{"whitespace only", "   ", ErrEmptyInput},
		{"missing @", "not-an-email", ErrInvalidEmail},
		{"missing domain", "test@", ErrInvalidEmail},
		{"missing local part", "@example.com", ErrInvalidEmail},
		{"double @", "test@@example.com", ErrInvalidEmail},
		{"display name", "Alice <alice@x.com>", ErrInvalidEmail},
		{"angle brackets", "<alice@x.com>", ErrInvalidEmail},
		{"surrounding whitespace", " alice@x.com ", ErrInvalidEmail},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			addr, err := ParseAddress(tt.address)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Empty(t, addr)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.address, addr)
			}
		})
	}
}

func TestParseAddress_TooLong(t *testing.T) {
	longEmail := strings.Repeat("a", 250) + "@example.com"
	_, err := ParseAddress(longEmail)
	assert.ErrorIs(t, err, ErrInputTooLong)
}

func TestValidateEmail(t *testing.T) {
	assert.NoError(t, ValidateEmail("alice@x.com"))
	assert.ErrorIs(t, ValidateEmail("not-an-email"), ErrInvalidEmail)
}

func TestValidateHost(t *testing.T) {
	tests := []struct {
		name    string
		host    string
		wantErr error
	}{
		{"valid simple", "smtp.example.com", nil},
		{"valid with hyphen", "mail-relay.example.com", nil},
		{"valid uppercase normalized", "SMTP.EXAMPLE.COM", nil},
		{"valid single label", "localhost", nil},
		{"valid ipv4", "127.0.0.1", nil},

		{"empty string", "", ErrEmptyInput},
		{"starts with hyphen", "-example.com", ErrInvalidHost},
		{"double dot", "example..com", ErrInvalidHost},
		{"contains space", "smtp example.com", ErrInvalidHost},
		{"contains port", "smtp.example.com:465", ErrInvalidHost},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateHost(tt.host)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateHost_TooLong(t *testing.T) {
	assert.ErrorIs(t, ValidateHost(strings.Repeat("a", 254)), ErrInputTooLong)
}

func TestParseSlotID(t *testing.T) {
	tests := []struct {
		name    string
		id      string
		want    int
		wantErr bool
	}{
		{"zero", "0", 0, false},
		{"last roster slot", "29", 29, false},
		{"whitespace trimmed", " 7 ", 7, false},
		{"negative", "-1", 0, true},
		{"not a number", "abc", 0, true},
		{"empty", "", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseSlotID(tt.id)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidSlotID)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"normal filename", "document.pdf", "document.pdf"},
		{"with spaces", "my document.pdf", "my document.pdf"},
		{"path traversal dots", "../../../etc/passwd", "______etc_passwd"},
		{"forward slash", "path/to/file.txt", "path_to_file.txt"},
		{"backslash", "path\\to\\file.txt", "path_to_file.txt"},
		{"control chars", "file\x00name.txt", "filename.txt"},
		{"newline", "file\nname.txt", "filename.txt"},
		{"empty string", "", "unnamed"},
		{"whitespace only", "   ", "unnamed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, SanitizeFilename(tt.input))
		})
	}
}

func TestSanitizeFilename_LongFilename(t *testing.T) {
	result := SanitizeFilename(strings.Repeat("a", 300) + ".txt")
	assert.LessOrEqual(t, len(result), 255)
}

func TestSanitizeLine(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		maxLength int
		expected  string
	}{
		{"normal string", "hello world", 0, "hello world"},
		{"with control chars", "hello\x00world", 0, "helloworld"},
		{"with newline", "hello\nworld", 0, "helloworld"},
		{"trim whitespace", "  hello  ", 0, "hello"},
		{"enforce max length", "hello world", 5, "hello"},
		{"empty string", "", 10, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, SanitizeLine(tt.input, tt.maxLength))
		})
	}
}

func TestSanitizeText_KeepsLayout(t *testing.T) {
	assert.Equal(t, "line one\n\tline two", SanitizeText("  line one\r\n\tline two\x07  ", 0))
	assert.Equal(t, "ab", SanitizeText("abc", 2))
}

func TestValidatePagination(t *testing.T) {
	tests := []struct {
		name           string
		inputLimit     int
		inputOffset    int
		expectedLimit  int
		expectedOffset int
	}{
		{"valid values", 10, 20, 10, 20},
		{"zero limit uses default", 0, 0, DefaultLimit, 0},
		{"negative limit uses default", -5, 0, DefaultLimit, 0},
		{"limit exceeds max", 200, 0, MaxLimit, 0},
		{"negative offset becomes zero", 10, -5, 10, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			limit, offset := ValidatePagination(tt.inputLimit, tt.inputOffset)
			assert.Equal(t, tt.expectedLimit, limit)
			assert.Equal(t, tt.expectedOffset, offset)
		})
	}
}
