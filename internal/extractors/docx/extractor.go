// Package docx extracts text and tables from Word .docx files.
package docx

import (
	"archive/zip"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"github.com/custodia-labs/corpora/internal/core/domain"
	"github.com/custodia-labs/corpora/internal/core/ports/driven"
)

// Ensure Extractor implements the interface.
var _ driven.TextExtractor = (*Extractor)(nil)

// Extractor handles .docx files by reading the OOXML archive directly.
// Tables become marker-delimited blocks; core document properties
// become metadata.
type Extractor struct{}

// New creates a new DOCX extractor.
func New() *Extractor {
	return &Extractor{}
}

// SupportedExtensions returns the extensions this extractor handles.
func (e *Extractor) SupportedExtensions() []string {
	return []string{".docx"}
}

// Extract opens the archive and pulls text from word/document.xml and
// properties from docProps/core.xml.
func (e *Extractor) Extract(_ context.Context, path string) (*driven.ExtractResult, error) {
	reader, err := zip.OpenReader(path)
	if err != nil {
		return nil, domain.ErrExtractionFailed
	}
	defer reader.Close()

	text, err := extractDocumentText(&reader.Reader)
	if err != nil {
		return nil, err
	}

	return &driven.ExtractResult{
		Text:     text,
		Metadata: extractCoreProperties(&reader.Reader),
	}, nil
}

// documentXML mirrors the parts of word/document.xml we read. A body
// interleaves paragraphs and tables in document order.
type documentXML struct {
	Body struct {
		Blocks []block `xml:",any"`
	} `xml:"body"`
}

type block struct {
	XMLName xml.Name
	Runs    []run      `xml:"r"`
	Rows    []tableRow `xml:"tr"`
}

type tableRow struct {
	Cells []tableCell `xml:"tc"`
}

type tableCell struct {
	Paragraphs []struct {
		Runs []run `xml:"r"`
	} `xml:"p"`
}

type run struct {
	Text []textElement `xml:"t"`
}

type textElement struct {
	Content string `xml:",chardata"`
}

// extractDocumentText reads word/document.xml and renders paragraphs
// and tables in their original order.
func extractDocumentText(reader *zip.Reader) (string, error) {
	content, err := readArchiveFile(reader, "word/document.xml")
	if err != nil {
		return "", err
	}
	if content == nil {
		return "", nil
	}

	var doc documentXML
	if err := xml.Unmarshal(content, &doc); err != nil {
		return "", domain.ErrExtractionFailed
	}

	var parts []string
	tableCount := 0

	for _, b := range doc.Body.Blocks {
		switch b.XMLName.Local {
		case "p":
			if text := runText(b.Runs); text != "" {
				parts = append(parts, text)
			}
		case "tbl":
			tableCount++
			parts = append(parts, renderTable(tableCount, b.Rows))
		}
	}

	// Blank lines between blocks keep paragraph boundaries visible to
	// downstream splitting.
	return strings.TrimSpace(strings.Join(parts, "\n\n")), nil
}

// renderTable renders one table as a marker-delimited block. Merged
// cells repeat their content across the span in OOXML, so consecutive
// duplicate cells collapse to one.
func renderTable(index int, rows []tableRow) string {
	lines := []string{fmt.Sprintf("=== TABLE %d ===", index)}

	for _, row := range rows {
		var cells []string
		prev := ""
		for i, cell := range row.Cells {
			text := cellText(cell)
			if i > 0 && text == prev {
				continue
			}
			cells = append(cells, text)
			prev = text
		}
		lines = append(lines, strings.Join(cells, " | "))
	}

	lines = append(lines, fmt.Sprintf("=== END TABLE %d ===", index))
	return strings.Join(lines, "\n")
}

func cellText(cell tableCell) string {
	var parts []string
	for _, p := range cell.Paragraphs {
		if text := runText(p.Runs); text != "" {
			parts = append(parts, text)
		}
	}
	return strings.TrimSpace(strings.Join(parts, " "))
}

func runText(runs []run) string {
	var b strings.Builder
	for _, r := range runs {
		for _, t := range r.Text {
			b.WriteString(t.Content)
		}
	}
	return strings.TrimSpace(b.String())
}

// coreXML mirrors docProps/core.xml.
type coreXML struct {
	Title    string `xml:"title"`
	Subject  string `xml:"subject"`
	Creator  string `xml:"creator"`
	Created  string `xml:"created"`
	Modified string `xml:"modified"`
}

// extractCoreProperties reads document properties. Missing or broken
// properties are not an error.
func extractCoreProperties(reader *zip.Reader) map[string]string {
	metadata := map[string]string{}

	content, err := readArchiveFile(reader, "docProps/core.xml")
	if err != nil || content == nil {
		return metadata
	}

	var core coreXML
	if err := xml.Unmarshal(content, &core); err != nil {
		return metadata
	}

	set := func(key, value string) {
		if v := strings.TrimSpace(value); v != "" {
			metadata[key] = v
		}
	}
	set(driven.MetaTitle, core.Title)
	set(driven.MetaSubject, core.Subject)
	set(driven.MetaAuthor, core.Creator)
	set(driven.MetaCreated, core.Created)
	set(driven.MetaModified, core.Modified)

	return metadata
}

// readArchiveFile returns the named file's content, or nil when the
// archive has no such entry.
func readArchiveFile(reader *zip.Reader, name string) ([]byte, error) {
	for _, file := range reader.File {
		if file.Name != name {
			continue
		}

		rc, err := file.Open()
		if err != nil {
			return nil, domain.ErrExtractionFailed
		}

		content, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return nil, domain.ErrExtractionFailed
		}
		return content, nil
	}
	return nil, nil
}
