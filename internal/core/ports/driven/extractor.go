package driven

import "context"

// Well-known metadata keys produced by extractors.
// Keys are format-dependent; absent keys simply are not set.
const (
	MetaSubject   = "subject"
	MetaFrom      = "from"
	MetaTo        = "to"
	MetaCC        = "cc"
	MetaDate      = "date"
	MetaMessageID = "message_id"
	MetaInReplyTo = "in_reply_to"
	MetaAuthor    = "author"
	MetaTitle     = "title"
	MetaCreated   = "created"
	MetaModified  = "modified"
)

// ExtractResult is the output of direct text extraction.
type ExtractResult struct {
	// Text is the full extracted text. Tables appear inline as
	// marker-delimited blocks (=== TABLE n === ... === END TABLE n ===).
	Text string

	// Metadata holds format-dependent properties keyed by the Meta*
	// constants.
	Metadata map[string]string
}

// TextExtractor extracts text and metadata from one family of
// text-native formats, skipping the OCR pipeline entirely.
type TextExtractor interface {
	// SupportedExtensions returns the lowercase file extensions this
	// extractor handles, including the leading dot.
	SupportedExtensions() []string

	// Extract reads the file and produces text plus metadata.
	// Returns domain.ErrExtractionFailed when no usable text results.
	Extract(ctx context.Context, path string) (*ExtractResult, error)
}

// ExtractorRegistry selects an extractor for a file path.
type ExtractorRegistry interface {
	// ForPath returns the extractor for the path's extension,
	// or false when the format is not text-native.
	ForPath(path string) (TextExtractor, bool)
}

// Converter renders a non-text-native file to an intermediate visual
// format (PDF) for the downstream OCR stage.
type Converter interface {
	// ConvertToPDF converts the file and returns the output path.
	ConvertToPDF(ctx context.Context, path string) (string, error)
}
