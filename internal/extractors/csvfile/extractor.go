// Package csvfile extracts CSV files as a single marker-delimited
// table block.
package csvfile

import (
	"context"
	"encoding/csv"
	"os"
	"strings"

	"github.com/custodia-labs/corpora/internal/core/domain"
	"github.com/custodia-labs/corpora/internal/core/ports/driven"
	"github.com/custodia-labs/corpora/internal/tables"
)

// Ensure Extractor implements the interface.
var _ driven.TextExtractor = (*Extractor)(nil)

// Extractor handles CSV files. The whole file becomes one table so
// that pattern protection keeps rows and header together.
type Extractor struct{}

// New creates a new CSV extractor.
func New() *Extractor {
	return &Extractor{}
}

// SupportedExtensions returns the extensions this extractor handles.
func (e *Extractor) SupportedExtensions() []string {
	return []string{".csv"}
}

// Extract reads the CSV and renders it as TABLE 1.
func (e *Extractor) Extract(_ context.Context, path string) (*driven.ExtractResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, domain.ErrExtractionFailed
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.Comma = detectDelimiter(path)
	reader.FieldsPerRecord = -1

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, domain.ErrExtractionFailed
	}
	if len(rows) == 0 {
		return &driven.ExtractResult{Text: "", Metadata: map[string]string{}}, nil
	}

	return &driven.ExtractResult{
		Text:     tables.Render(1, rows),
		Metadata: map[string]string{},
	}, nil
}

// detectDelimiter sniffs the delimiter from the first line. Comma is
// the default; semicolons and tabs are common enough to check for.
func detectDelimiter(path string) rune {
	content, err := os.ReadFile(path)
	if err != nil {
		return ','
	}
	line := string(content)
	if idx := strings.IndexByte(line, '\n'); idx != -1 {
		line = line[:idx]
	}

	best := ','
	bestCount := strings.Count(line, ",")
	for _, cand := range []struct {
		sep   rune
		count int
	}{
		{';', strings.Count(line, ";")},
		{'\t', strings.Count(line, "\t")},
	} {
		if cand.count > bestCount {
			best = cand.sep
			bestCount = cand.count
		}
	}
	return best
}
