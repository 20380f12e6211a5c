package models

import (
	"fmt"

	apperrors "github.com/welldanyogia/webrana-mailsender/internal/errors"
	"github.com/welldanyogia/webrana-mailsender/internal/validator"
)

// Recipient is a Person whose mail has been parsed into a bare address.
type Recipient struct {
	Name    string `json:"name"`
	Address string `json:"address"`
}

// NewRecipient parses p.Mail. A mail that does not parse is reported as
// INVALID_RECIPIENT; the caller decides whether that is a user mistake or a
// broken invariant.
func NewRecipient(p Person) (Recipient, error) {
	addr, err := validator.ParseAddress(p.Mail)
	if err != nil {
		return Recipient{}, &apperrors.MailError{
			Kind:   apperrors.KindInvalidRecipient,
			Err:    err,
			Detail: fmt.Sprintf("%q", p.Mail),
		}
	}
	return Recipient{Name: p.Name, Address: addr}, nil
}
