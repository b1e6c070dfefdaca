// Package emlx extracts Apple Mail .emlx files.
//
// The emlx container is a byte-count line, followed by that many bytes
// of RFC 822 message, followed by an XML plist of Apple Mail metadata
// (which is ignored here).
package emlx

import (
	"bytes"
	"context"
	"os"
	"strconv"
	"strings"

	"github.com/custodia-labs/corpora/internal/core/domain"
	"github.com/custodia-labs/corpora/internal/core/ports/driven"
	"github.com/custodia-labs/corpora/internal/extractors/eml"
)

// Ensure Extractor implements the interface.
var _ driven.TextExtractor = (*Extractor)(nil)

// Extractor handles .emlx files by unwrapping the embedded message.
type Extractor struct{}

// New creates a new EMLX extractor.
func New() *Extractor {
	return &Extractor{}
}

// SupportedExtensions returns the extensions this extractor handles.
func (e *Extractor) SupportedExtensions() []string {
	return []string{".emlx"}
}

// Extract unwraps the RFC 822 message and parses it like an .eml file.
func (e *Extractor) Extract(_ context.Context, path string) (*driven.ExtractResult, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, domain.ErrExtractionFailed
	}

	return eml.ExtractMessage(unwrap(content))
}

// unwrap strips the byte-count prefix and trailing plist. Files
// without a valid byte-count line are treated as a raw message.
func unwrap(content []byte) []byte {
	newline := bytes.IndexByte(content, '\n')
	if newline == -1 {
		return content
	}

	count, err := strconv.Atoi(strings.TrimSpace(string(content[:newline])))
	if err != nil || count <= 0 {
		return content
	}

	start := newline + 1
	end := start + count
	if end > len(content) {
		end = len(content)
	}
	return content[start:end]
}
