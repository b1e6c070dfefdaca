// Package html extracts text and tables from HTML files.
package html

import (
	"context"
	"fmt"
	"html"
	"os"
	"regexp"
	"strings"

	"github.com/custodia-labs/corpora/internal/core/domain"
	"github.com/custodia-labs/corpora/internal/core/ports/driven"
)

// Ensure Extractor implements the interface.
var _ driven.TextExtractor = (*Extractor)(nil)

// Extractor handles .html and .htm files. Tables are pulled out first
// and rendered as marker-delimited blocks; the rest of the markup is
// stripped to plain text.
type Extractor struct{}

// New creates a new HTML extractor.
func New() *Extractor {
	return &Extractor{}
}

// SupportedExtensions returns the extensions this extractor handles.
func (e *Extractor) SupportedExtensions() []string {
	return []string{".html", ".htm"}
}

// Pre-compiled regular expressions for HTML parsing performance.
var (
	titleTag      = regexp.MustCompile(`(?is)<title[^>]*>(.*?)</title>`)
	tableTag      = regexp.MustCompile(`(?is)<table[^>]*>.*?</table>`)
	rowTag        = regexp.MustCompile(`(?is)<tr[^>]*>(.*?)</tr>`)
	cellTag       = regexp.MustCompile(`(?is)<t[hd][^>]*>(.*?)</t[hd]>`)
	scriptTag     = regexp.MustCompile(`(?is)<script[^>]*>.*?</script>`)
	styleTag      = regexp.MustCompile(`(?is)<style[^>]*>.*?</style>`)
	headTag       = regexp.MustCompile(`(?is)<head[^>]*>.*?</head>`)
	htmlComments  = regexp.MustCompile(`(?s)<!--.*?-->`)
	blockElements = regexp.MustCompile(`(?i)</(p|div|h[1-6]|li|blockquote|pre|section|article)>`)
	brTags        = regexp.MustCompile(`(?i)<br\s*/?>`)
	allTags       = regexp.MustCompile(`<[^>]+>`)
	multiSpaces   = regexp.MustCompile(`[ \t]+`)
	multiNewlines = regexp.MustCompile(`\n{3,}`)
)

// Extract pulls table blocks first, then strips the remaining markup.
func (e *Extractor) Extract(_ context.Context, path string) (*driven.ExtractResult, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, domain.ErrExtractionFailed
	}
	raw := string(content)

	metadata := map[string]string{}
	if m := titleTag.FindStringSubmatch(raw); len(m) > 1 {
		if title := strings.TrimSpace(html.UnescapeString(m[1])); title != "" {
			metadata[driven.MetaTitle] = title
		}
	}

	var parts []string
	tableCount := 0

	// Replace each table with its rendered block so the remaining
	// markup can be stripped without re-extracting table content.
	remaining := tableTag.ReplaceAllStringFunc(raw, func(table string) string {
		rendered := renderTable(tableCount+1, table)
		if rendered == "" {
			return ""
		}
		tableCount++
		parts = append(parts, rendered)
		return ""
	})

	if text := stripHTML(remaining); text != "" {
		parts = append([]string{text}, parts...)
	}

	return &driven.ExtractResult{
		Text:     strings.Join(parts, "\n\n"),
		Metadata: metadata,
	}, nil
}

// renderTable converts one <table> element into a marker-delimited
// block, skipping empty rows. Returns "" for tables with no content.
func renderTable(index int, table string) string {
	lines := []string{fmt.Sprintf("=== TABLE %d ===", index)}

	for _, row := range rowTag.FindAllStringSubmatch(table, -1) {
		var cells []string
		hasContent := false
		for _, cell := range cellTag.FindAllStringSubmatch(row[1], -1) {
			text := strings.TrimSpace(html.UnescapeString(allTags.ReplaceAllString(cell[1], " ")))
			text = multiSpaces.ReplaceAllString(text, " ")
			if text != "" {
				hasContent = true
			}
			cells = append(cells, text)
		}
		if hasContent {
			lines = append(lines, strings.Join(cells, " | "))
		}
	}

	if len(lines) == 1 {
		return ""
	}
	lines = append(lines, fmt.Sprintf("=== END TABLE %d ===", index))
	return strings.Join(lines, "\n")
}

// stripHTML removes markup and extracts readable text content.
func stripHTML(content string) string {
	content = scriptTag.ReplaceAllString(content, "")
	content = styleTag.ReplaceAllString(content, "")
	content = headTag.ReplaceAllString(content, "")
	content = htmlComments.ReplaceAllString(content, "")

	// Preserve paragraph structure
	content = blockElements.ReplaceAllString(content, "\n")
	content = brTags.ReplaceAllString(content, "\n")

	content = allTags.ReplaceAllString(content, " ")
	content = html.UnescapeString(content)

	content = multiSpaces.ReplaceAllString(content, " ")

	var cleaned []string
	for _, line := range strings.Split(content, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			cleaned = append(cleaned, line)
		}
	}
	content = strings.Join(cleaned, "\n")
	return strings.TrimSpace(multiNewlines.ReplaceAllString(content, "\n\n"))
}
