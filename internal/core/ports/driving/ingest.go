package driving

import "context"

// Ingestor drives document intake: hash, dedupe, move to
// content-addressed storage, then either direct text extraction or
// hand-off to the conversion/OCR pipeline.
type Ingestor interface {
	// IngestFile processes one uploaded file. Duplicate files are
	// absorbed silently; a failed intake quarantines the file and
	// returns the error.
	IngestFile(ctx context.Context, path string, projectID *string) error
}

// Parser drives per-minidoc parsing: stitch page texts, inject tables,
// chunk, index, persist, then enqueue embedding jobs.
type Parser interface {
	// ParseMiniDoc parses one minidoc's page range.
	ParseMiniDoc(ctx context.Context, minidocID string) error
}
