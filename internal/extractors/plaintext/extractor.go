// Package plaintext extracts text from files that already are text.
package plaintext

import (
	"context"
	"os"

	"github.com/custodia-labs/corpora/internal/core/domain"
	"github.com/custodia-labs/corpora/internal/core/ports/driven"
)

// Ensure Extractor implements the interface.
var _ driven.TextExtractor = (*Extractor)(nil)

// Extractor handles plain text files. JSON and XML are treated as
// plain text too; their structure is left for the chunker to see.
type Extractor struct{}

// New creates a new plain text extractor.
func New() *Extractor {
	return &Extractor{}
}

// SupportedExtensions returns the extensions this extractor handles.
func (e *Extractor) SupportedExtensions() []string {
	return []string{".txt", ".json", ".xml"}
}

// Extract reads the whole file as UTF-8 text.
func (e *Extractor) Extract(_ context.Context, path string) (*driven.ExtractResult, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, domain.ErrExtractionFailed
	}
	return &driven.ExtractResult{
		Text:     string(content),
		Metadata: map[string]string{},
	}, nil
}
