// Package markdown extracts Markdown files, converting pipe tables
// into marker-delimited table blocks.
package markdown

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/custodia-labs/corpora/internal/core/domain"
	"github.com/custodia-labs/corpora/internal/core/ports/driven"
)

// Ensure Extractor implements the interface.
var _ driven.TextExtractor = (*Extractor)(nil)

// Extractor handles Markdown files. Prose passes through untouched;
// pipe tables are rewritten into the marker grammar so they survive
// chunking intact.
type Extractor struct{}

// New creates a new Markdown extractor.
func New() *Extractor {
	return &Extractor{}
}

// SupportedExtensions returns the extensions this extractor handles.
func (e *Extractor) SupportedExtensions() []string {
	return []string{".md"}
}

// Extract reads the file and converts its tables.
func (e *Extractor) Extract(_ context.Context, path string) (*driven.ExtractResult, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, domain.ErrExtractionFailed
	}

	metadata := map[string]string{}
	if title := firstHeading(string(content)); title != "" {
		metadata[driven.MetaTitle] = title
	}

	return &driven.ExtractResult{
		Text:     convertTables(string(content)),
		Metadata: metadata,
	}, nil
}

// firstHeading returns the first H1 heading, if any.
func firstHeading(content string) string {
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "# ") {
			return strings.TrimSpace(strings.TrimPrefix(line, "#"))
		}
	}
	return ""
}

// convertTables rewrites Markdown pipe tables into marker-delimited
// blocks, leaving everything else as-is. Separator rows (|---|---|)
// are dropped.
func convertTables(content string) string {
	var result []string
	var buffer []string
	tableCount := 0
	inTable := false

	flush := func() {
		buffer = append(buffer, endMarker(tableCount))
		result = append(result, strings.Join(buffer, "\n"))
		buffer = nil
		inTable = false
	}

	for _, line := range strings.Split(content, "\n") {
		stripped := strings.TrimSpace(line)
		isRow := isTableRow(stripped)

		switch {
		case isRow && isSeparatorRow(stripped):
			// Alignment row between header and body, skip it.
		case isRow:
			if !inTable {
				inTable = true
				tableCount++
				buffer = []string{startMarker(tableCount)}
			}
			buffer = append(buffer, strings.Join(rowCells(stripped), " | "))
		default:
			if inTable {
				flush()
			}
			result = append(result, line)
		}
	}
	if inTable {
		flush()
	}

	return strings.Join(result, "\n")
}

func startMarker(n int) string {
	return fmt.Sprintf("=== TABLE %d ===", n)
}

func endMarker(n int) string {
	return fmt.Sprintf("=== END TABLE %d ===", n)
}

// isTableRow reports whether a line looks like |cell|cell|.
func isTableRow(line string) bool {
	return strings.HasPrefix(line, "|") && strings.HasSuffix(line, "|") &&
		strings.Contains(line[1:len(line)-1], "|")
}

// isSeparatorRow reports whether a table row only carries alignment
// syntax.
func isSeparatorRow(line string) bool {
	for _, c := range line {
		if !strings.ContainsRune("|-: ", c) {
			return false
		}
	}
	return true
}

// rowCells splits a pipe row into trimmed cells, dropping the empty
// leading and trailing fields produced by the outer pipes.
func rowCells(line string) []string {
	parts := strings.Split(line, "|")
	if len(parts) > 2 {
		parts = parts[1 : len(parts)-1]
	}
	cells := make([]string, len(parts))
	for i, p := range parts {
		cells[i] = strings.TrimSpace(p)
	}
	return cells
}
