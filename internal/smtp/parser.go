package smtp

import (
	"io"
	"net/mail"
	"regexp"
	"strings"

	"github.com/jhillyerd/enmime"
)

// ParsedEmail represents a parsed email message
type ParsedEmail struct {
	SenderEmail string
	SenderName  string
	To          []*mail.Address
	Subject     string
	DispatchID  string
	Snippet     string
	BodyText    string
	BodyHTML    string
	Attachments []ParsedAttachment
}

// ParsedAttachment represents a parsed email attachment
type ParsedAttachment struct {
	Filename    string
	ContentType string
	Content     []byte
}

var (
	scriptStyleRe = regexp.MustCompile(`(?i)<(script|style)[^>]*>[\s\S]*?</(script|style)>`)
	htmlTagRe     = regexp.MustCompile(`<[^>]*>`)
)

// ParseEmail parses an email from an io.Reader
func ParseEmail(r io.Reader) (*ParsedEmail, error) {
	env, err := enmime.ReadEnvelope(r)
	if err != nil {
		return nil, err
	}

	parsed := &ParsedEmail{
		Subject:    env.GetHeader("Subject"),
		DispatchID: env.GetHeader(HeaderDispatchID),
		BodyText:   env.Text,
		BodyHTML:   env.HTML,
	}

	if from, err := env.AddressList("From"); err == nil && len(from) > 0 {
		parsed.SenderName, parsed.SenderEmail = from[0].Name, from[0].Address
	}
	if to, err := env.AddressList("To"); err == nil {
		parsed.To = to
	}

	parsed.Snippet = generateSnippet(parsed.BodyText, parsed.BodyHTML)

	for _, att := range env.Attachments {
		parsed.Attachments = append(parsed.Attachments, ParsedAttachment{
			Filename:    att.FileName,
			ContentType: att.ContentType,
			Content:     att.Content,
		})
	}

	// Also include inline attachments
	for _, att := range env.Inlines {
		if att.FileName != "" {
			parsed.Attachments = append(parsed.Attachments, ParsedAttachment{
				Filename:    att.FileName,
				ContentType: att.ContentType,
				Content:     att.Content,
			})
		}
	}

	return parsed, nil
}

// generateSnippet creates a preview snippet from email body
func generateSnippet(bodyText, bodyHTML string) string {
	var text string

	if bodyText != "" {
		text = bodyText
	} else if bodyHTML != "" {
		text = stripHTMLTags(bodyHTML)
	}

	text = strings.Join(strings.Fields(text), " ")

	// Truncate to 255 characters
	if runes := []rune(text); len(runes) > 255 {
		text = string(runes[:252]) + "..."
	}

	return text
}

// stripHTMLTags removes HTML tags from a string
func stripHTMLTags(html string) string {
	html = scriptStyleRe.ReplaceAllString(html, "")
	html = htmlTagRe.ReplaceAllString(html, " ")

	replacer := strings.NewReplacer(
		"&nbsp;", " ",
		"&amp;", "&",
		"&lt;", "<",
		"&gt;", ">",
		"&quot;", `"`,
		"&#39;", "'",
	)
	return replacer.Replace(html)
}
