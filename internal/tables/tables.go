// Package tables renders tabular data into marker-delimited text blocks
// and parses such blocks back out of extracted text.
//
// The block grammar is the wire format between extraction and chunking:
//
//	=== TABLE 1 ===
//	Header1 | Header2
//	Row1Col1 | Row1Col2
//	=== END TABLE 1 ===
//
// One row per line, cells separated by " | ". The chunking engine treats
// a whole block as a protected span, and the display layer parses it
// back into headers and rows.
package tables

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/custodia-labs/corpora/internal/core/domain"
)

var (
	blockPattern = regexp.MustCompile(`(?s)=== TABLE (\d+) ===\s*\n(.*?)=== END TABLE (\d+) ===`)

	startMarker = regexp.MustCompile(`=== TABLE \d+ ===\s*\n?`)
	endMarker   = regexp.MustCompile(`=== END TABLE \d+ ===\s*\n?`)
	pageHeading = regexp.MustCompile(`TABLE \(Page \d+\):\s*\n?`)

	separatorLine = regexp.MustCompile(`^[-=]+$`)
	pipedRule     = regexp.MustCompile(`^[\-=\s|]+$`)
)

// Render builds a marker-delimited text block from rows. The first row
// is conventionally the header row. Empty input renders an empty block.
func Render(index int, rows [][]string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "=== TABLE %d ===\n", index)
	for _, row := range rows {
		cells := make([]string, len(row))
		for i, cell := range row {
			cells[i] = strings.TrimSpace(cell)
		}
		b.WriteString(strings.Join(cells, " | "))
		b.WriteByte('\n')
	}
	fmt.Fprintf(&b, "=== END TABLE %d ===", index)
	return b.String()
}

// ExtractFromText finds every marker-delimited table block in text and
// returns it as an ExtractedTable with page, document, and row ids left
// for the caller to assign. Blocks with mismatched indices or no body
// are skipped.
func ExtractFromText(text string) []domain.ExtractedTable {
	var tables []domain.ExtractedTable

	for _, m := range blockPattern.FindAllStringSubmatch(text, -1) {
		if m[1] != m[3] {
			continue
		}
		body := strings.TrimSpace(m[2])
		if body == "" {
			continue
		}

		var lines []string
		for _, line := range strings.Split(body, "\n") {
			if trimmed := strings.TrimSpace(line); trimmed != "" {
				lines = append(lines, trimmed)
			}
		}
		if len(lines) == 0 {
			continue
		}

		index, _ := strconv.Atoi(m[1])
		headers := splitCells(lines[0])

		tables = append(tables, domain.ExtractedTable{
			PageNum:     1,
			TableIndex:  index,
			RowCount:    len(lines),
			ColCount:    len(headers),
			Headers:     headers,
			TextContent: fmt.Sprintf("=== TABLE %d ===\n%s\n=== END TABLE %d ===", index, body, index),
		})
	}

	return tables
}

// ParseContent parses a stored table text block back into headers and
// data rows for display. It accepts both the marker grammar and the
// "TABLE (Page N):" heading style, and drops horizontal rule lines.
func ParseContent(textContent string) (headers []string, rows [][]string) {
	content := startMarker.ReplaceAllString(textContent, "")
	content = endMarker.ReplaceAllString(content, "")
	content = pageHeading.ReplaceAllString(content, "")
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, nil
	}

	var lines []string
	for _, line := range strings.Split(content, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || separatorLine.MatchString(trimmed) {
			continue
		}
		lines = append(lines, trimmed)
	}
	if len(lines) == 0 {
		return nil, nil
	}

	headers = splitCells(lines[0])
	for _, line := range lines[1:] {
		if pipedRule.MatchString(line) {
			continue
		}
		rows = append(rows, splitCells(line))
	}
	return headers, rows
}

func splitCells(line string) []string {
	parts := strings.Split(line, "|")
	cells := make([]string, len(parts))
	for i, p := range parts {
		cells[i] = strings.TrimSpace(p)
	}
	return cells
}
