package smtp

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jhillyerd/enmime"
)

// HeaderDispatchID carries the journal id of an outgoing message.
const HeaderDispatchID = "X-Dispatch-ID"

// Mailbox is a display name plus a bare address.
type Mailbox struct {
	Name    string
	Address string
}

// Attachment is a file packaged into the message.
type Attachment struct {
	FileName    string
	ContentType string
	Content     []byte
}

// Message is an outgoing message before encoding.
type Message struct {
	From        Mailbox
	To          []Mailbox
	Subject     string
	Date        time.Time
	Text        string
	Headers     map[string]string
	Attachments []Attachment
}

// Envelope returns the RCPT TO addresses.
func (m *Message) Envelope() []string {
	out := make([]string, 0, len(m.To))
	for _, mb := range m.To {
		out = append(out, mb.Address)
	}
	return out
}

// Encode builds the MIME tree with enmime and renders it. Build requires a
// sender, a subject and at least one recipient.
func (m *Message) Encode() ([]byte, error) {
	b := enmime.Builder().
		From(m.From.Name, m.From.Address).
		Subject(m.Subject).
		Text([]byte(m.Text))

	if !m.Date.IsZero() {
		b = b.Date(m.Date)
	}
	for _, mb := range m.To {
		b = b.To(mb.Name, mb.Address)
	}
	for name, value := range m.Headers {
		b = b.Header(name, value)
	}
	for _, att := range m.Attachments {
		b = b.AddAttachment(att.Content, att.ContentType, att.FileName)
	}

	root, err := b.Build()
	if err != nil {
		return nil, fmt.Errorf("build message: %w", err)
	}

	var buf bytes.Buffer
	if err := root.Encode(&buf); err != nil {
		return nil, fmt.Errorf("encode message: %w", err)
	}
	return buf.Bytes(), nil
}
