package domain

import "time"

// DocumentStatus tracks a document through the ingestion pipeline.
type DocumentStatus string

// Document lifecycle states. There is no persisted failed state:
// a failed intake rolls back its transaction and quarantines the file,
// so no partial row survives.
const (
	// StatusUploaded means the file is in permanent storage awaiting
	// page splitting and OCR.
	StatusUploaded DocumentStatus = "uploaded"

	// StatusProcessing means text-native extraction is underway.
	StatusProcessing DocumentStatus = "processing"

	// StatusEmbedded means all chunks are committed and embed jobs
	// have been enqueued.
	StatusEmbedded DocumentStatus = "embedded"
)

// IsValid returns true if the status is recognised.
func (s DocumentStatus) IsValid() bool {
	switch s {
	case StatusUploaded, StatusProcessing, StatusEmbedded:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (s DocumentStatus) String() string {
	return string(s)
}

// Document represents one physical file in the corpus.
// Exactly one Document exists per distinct FileHash; re-ingesting
// identical bytes never creates a duplicate record.
type Document struct {
	// ID is the unique identifier for the document.
	ID string

	// FileHash is the SHA-256 digest of the file bytes. It is the
	// dedup key and the basis of the storage filename.
	FileHash string

	// Title is the originating filename.
	Title string

	// Path is the location in content-addressed storage.
	Path string

	// SourcePath is the directory the file was ingested from.
	SourcePath string

	// DocType is the detected file extension (".eml", ".docx", ...).
	DocType string

	// ProjectID optionally associates the document with a project.
	ProjectID *string

	// Status is the lifecycle state.
	Status DocumentStatus

	// NumPages is the page count. Zero until known.
	NumPages int

	// Subject, Author and CreationDate carry extracted metadata when
	// the source format provides it (email headers, docx properties).
	Subject      string
	Author       string
	CreationDate *time.Time

	// CreatedAt is when the document was first ingested.
	CreatedAt time.Time

	// UpdatedAt is when the document was last updated.
	UpdatedAt time.Time
}

// MiniDocStatus tracks a MiniDoc through parsing.
type MiniDocStatus string

// MiniDoc lifecycle states.
const (
	// MiniDocPending means the page range has not been parsed yet.
	MiniDocPending MiniDocStatus = "pending"

	// MiniDocParsed means the entire chunk set for the page range
	// has been committed.
	MiniDocParsed MiniDocStatus = "parsed"
)

// MiniDoc is a contiguous page range of a Document assigned to one
// parse job. MiniDocs of the same Document may be parsed concurrently
// by independent workers; their page ranges never overlap, which is
// what makes the global chunk index collision-free.
type MiniDoc struct {
	// ID is the unique identifier for the minidoc.
	ID string

	// DocumentID links to the owning Document.
	DocumentID string

	// Label is a human-readable identifier, e.g. "<hash>__text_001".
	Label string

	// PageStart is the first page of the range (1-based, inclusive).
	PageStart int

	// PageEnd is the last page of the range (inclusive).
	PageEnd int

	// Status is the parse state.
	Status MiniDocStatus
}

// PageText is the OCR or extraction output for a single page.
// Written by the external OCR stage; read back by the parse operation.
type PageText struct {
	// DocumentID links to the owning Document.
	DocumentID string

	// PageNum is the 1-based page number.
	PageNum int

	// Text is the page body.
	Text string
}

// ExtractedTable is a rendered table tied to a Document and a page.
// TextContent carries the full marker-delimited block; the parse stage
// re-injects it at the page boundary before chunking so table rows stay
// with their header.
type ExtractedTable struct {
	// ID is the unique identifier for the table.
	ID string

	// DocumentID links to the owning Document.
	DocumentID string

	// PageNum is the page the table appears on.
	PageNum int

	// TableIndex is the 1-based table number within the document.
	TableIndex int

	// RowCount and ColCount describe the table shape.
	RowCount int
	ColCount int

	// Headers holds the first-row cells.
	Headers []string

	// TextContent is the marker-delimited text block:
	// === TABLE n === ... === END TABLE n ===
	TextContent string

	// CreatedAt is when the table was extracted.
	CreatedAt time.Time
}
