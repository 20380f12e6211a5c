package repository

import (
	"errors"
	"strings"
)

var (
	ErrNotFound       = errors.New("record not found")
	ErrDuplicateEntry = errors.New("duplicate entry")
	ErrInvalidInput   = errors.New("invalid input")
)

// Driver messages for a unique violation: postgres text and SQLSTATE, sqlite.
var duplicateMarkers = []string{"duplicate key", "23505", "UNIQUE constraint"}

// isDuplicateKeyError reports a dispatch id that was already journaled.
func isDuplicateKeyError(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	for _, m := range duplicateMarkers {
		if strings.Contains(msg, m) {
			return true
		}
	}
	return false
}
