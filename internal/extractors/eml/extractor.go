// Package eml extracts RFC 822 email files.
package eml

import (
	"bytes"
	"context"
	"io"
	"mime"
	"mime/multipart"
	"net/mail"
	"os"
	"strings"

	"github.com/custodia-labs/corpora/internal/core/domain"
	"github.com/custodia-labs/corpora/internal/core/ports/driven"
)

// Ensure Extractor implements the interface.
var _ driven.TextExtractor = (*Extractor)(nil)

// Extractor handles .eml (email) files.
type Extractor struct{}

// New creates a new EML extractor.
func New() *Extractor {
	return &Extractor{}
}

// SupportedExtensions returns the extensions this extractor handles.
func (e *Extractor) SupportedExtensions() []string {
	return []string{".eml"}
}

// Extract parses the email and returns its headers plus body. The
// header block is prepended to the body so it is searchable text.
func (e *Extractor) Extract(_ context.Context, path string) (*driven.ExtractResult, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, domain.ErrExtractionFailed
	}
	return ExtractMessage(content)
}

// ExtractMessage parses a raw RFC 822 message. Shared with the emlx
// extractor, which carries the same message inside a wrapper format.
func ExtractMessage(raw []byte) (*driven.ExtractResult, error) {
	msg, err := mail.ReadMessage(bytes.NewReader(raw))
	if err != nil {
		return nil, domain.ErrExtractionFailed
	}

	metadata := map[string]string{
		driven.MetaSubject:   decodeHeader(msg.Header.Get("Subject")),
		driven.MetaFrom:      decodeHeader(msg.Header.Get("From")),
		driven.MetaTo:        decodeHeader(msg.Header.Get("To")),
		driven.MetaCC:        decodeHeader(msg.Header.Get("Cc")),
		driven.MetaDate:      msg.Header.Get("Date"),
		driven.MetaMessageID: msg.Header.Get("Message-Id"),
		driven.MetaInReplyTo: msg.Header.Get("In-Reply-To"),
	}

	body, err := extractBody(msg)
	if err != nil {
		return nil, err
	}

	var text strings.Builder
	text.WriteString("Subject: " + metadata[driven.MetaSubject] + "\n")
	text.WriteString("From: " + metadata[driven.MetaFrom] + "\n")
	text.WriteString("To: " + metadata[driven.MetaTo] + "\n")
	text.WriteString("CC: " + metadata[driven.MetaCC] + "\n")
	text.WriteString("Date: " + metadata[driven.MetaDate] + "\n\n")
	text.WriteString(body)

	return &driven.ExtractResult{
		Text:     text.String(),
		Metadata: metadata,
	}, nil
}

// decodeHeader decodes RFC 2047 encoded headers.
func decodeHeader(header string) string {
	if header == "" {
		return ""
	}
	dec := new(mime.WordDecoder)
	decoded, err := dec.DecodeHeader(header)
	if err != nil {
		return header // Return original if decoding fails
	}
	return decoded
}

// extractBody extracts the text content from an email message.
func extractBody(msg *mail.Message) (string, error) {
	contentType := msg.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "text/plain"
	}

	mediaType, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		// If we can't parse content type, try to read as plain text
		body, readErr := io.ReadAll(msg.Body)
		if readErr != nil {
			return "", domain.ErrExtractionFailed
		}
		return string(body), nil
	}

	// Handle multipart messages
	if strings.HasPrefix(mediaType, "multipart/") {
		return extractMultipartBody(msg.Body, params["boundary"])
	}

	// Handle plain text or HTML
	body, err := io.ReadAll(msg.Body)
	if err != nil {
		return "", domain.ErrExtractionFailed
	}

	if mediaType == "text/html" {
		return stripHTMLTags(string(body)), nil
	}

	return string(body), nil
}

// extractMultipartBody extracts text from multipart messages.
func extractMultipartBody(r io.Reader, boundary string) (string, error) {
	if boundary == "" {
		return "", nil
	}

	mr := multipart.NewReader(r, boundary)
	var textParts []string
	var htmlParts []string

	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			break
		}

		partContentType := part.Header.Get("Content-Type")
		mediaType, params, parseErr := mime.ParseMediaType(partContentType)
		if parseErr != nil {
			mediaType = "application/octet-stream"
		}

		content, readErr := io.ReadAll(part)
		part.Close()
		if readErr != nil {
			continue
		}

		switch {
		case mediaType == "text/plain":
			textParts = append(textParts, string(content))
		case mediaType == "text/html":
			htmlParts = append(htmlParts, stripHTMLTags(string(content)))
		case strings.HasPrefix(mediaType, "multipart/"):
			// Recursively handle nested multipart
			nested, nestedErr := extractMultipartBody(bytes.NewReader(content), params["boundary"])
			if nestedErr == nil && nested != "" {
				textParts = append(textParts, nested)
			}
		}
	}

	// Prefer plain text over HTML
	if len(textParts) > 0 {
		return strings.Join(textParts, "\n"), nil
	}
	if len(htmlParts) > 0 {
		return strings.Join(htmlParts, "\n"), nil
	}

	return "", nil
}

// stripHTMLTags removes HTML tags for basic text extraction.
func stripHTMLTags(html string) string {
	var result strings.Builder
	inTag := false

	for _, r := range html {
		switch {
		case r == '<':
			inTag = true
		case r == '>':
			inTag = false
		case !inTag:
			result.WriteRune(r)
		}
	}

	// Clean up whitespace
	text := result.String()
	lines := strings.Split(text, "\n")
	var cleaned []string
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line != "" {
			cleaned = append(cleaned, line)
		}
	}

	return strings.Join(cleaned, "\n")
}
