package driven

import (
	"context"

	"github.com/custodia-labs/corpora/internal/core/domain"
)

// Store bundles the metadata stores and provides transactional access.
// Backed by SQLite. The relational store is the single source of truth
// and the serialization point between workers.
type Store interface {
	// Documents returns the document store.
	Documents() DocumentStore

	// MiniDocs returns the minidoc store.
	MiniDocs() MiniDocStore

	// Chunks returns the chunk store.
	Chunks() ChunkStore

	// Pages returns the page text store.
	Pages() PageStore

	// Tables returns the extracted table store.
	Tables() TableStore

	// Artifacts returns the derived artifact store.
	Artifacts() ArtifactStore

	// Settings returns the runtime settings store.
	Settings() SettingsStore

	// RunInTx runs fn against a transactional view of the store.
	// The transaction commits when fn returns nil and rolls back
	// otherwise; nothing written inside fn is visible to other
	// connections until commit. Nested RunInTx is not supported.
	RunInTx(ctx context.Context, fn func(tx Store) error) error

	// Close releases the underlying connection.
	Close() error
}

// DocumentStore persists documents.
type DocumentStore interface {
	// Save stores a new document.
	Save(ctx context.Context, doc *domain.Document) error

	// Update persists mutable document fields (status, page count, metadata).
	Update(ctx context.Context, doc *domain.Document) error

	// Get retrieves a document by ID.
	Get(ctx context.Context, id string) (*domain.Document, error)

	// GetByHash retrieves a document by its content hash.
	// Returns domain.ErrNotFound if no document has that hash.
	GetByHash(ctx context.Context, fileHash string) (*domain.Document, error)

	// List returns all documents.
	List(ctx context.Context) ([]domain.Document, error)
}

// MiniDocStore persists page-range parse units.
type MiniDocStore interface {
	// Save stores a new minidoc.
	Save(ctx context.Context, md *domain.MiniDoc) error

	// Get retrieves a minidoc by ID.
	Get(ctx context.Context, id string) (*domain.MiniDoc, error)

	// UpdateStatus sets the parse state.
	UpdateStatus(ctx context.Context, id string, status domain.MiniDocStatus) error
}

// ChunkStore persists chunks. Chunks are immutable: there is no update.
type ChunkStore interface {
	// Save stores a new chunk.
	Save(ctx context.Context, chunk *domain.Chunk) error

	// Get retrieves a chunk by ID.
	Get(ctx context.Context, id string) (*domain.Chunk, error)

	// ListByDocument returns a document's chunks ordered by index.
	ListByDocument(ctx context.Context, documentID string) ([]domain.Chunk, error)
}

// PageStore persists per-page text written by the OCR stage.
type PageStore interface {
	// Save stores page text.
	Save(ctx context.Context, page *domain.PageText) error

	// ListRange returns a document's pages within [pageStart, pageEnd],
	// ordered by page number.
	ListRange(ctx context.Context, documentID string, pageStart, pageEnd int) ([]domain.PageText, error)
}

// TableStore persists extracted tables.
type TableStore interface {
	// Save stores an extracted table.
	Save(ctx context.Context, table *domain.ExtractedTable) error

	// ListRange returns a document's tables with pages in
	// [pageStart, pageEnd], ordered by page then table index.
	ListRange(ctx context.Context, documentID string, pageStart, pageEnd int) ([]domain.ExtractedTable, error)

	// List returns tables across all documents, newest first.
	List(ctx context.Context, limit, offset int) ([]domain.ExtractedTable, error)
}

// ArtifactStore persists derived per-chunk artifacts.
type ArtifactStore interface {
	// SaveDateMention stores a date mention.
	SaveDateMention(ctx context.Context, m *domain.DateMention) error

	// SaveTimelineEvent stores a timeline event.
	SaveTimelineEvent(ctx context.Context, e *domain.TimelineEvent) error

	// SaveSensitiveMatch stores a sensitive-data match.
	SaveSensitiveMatch(ctx context.Context, m *domain.SensitiveMatch) error
}

// SettingsStore holds runtime operator settings. Values are read fresh
// per job so operators can change behaviour without redeploying workers.
type SettingsStore interface {
	// Get retrieves a setting. Returns domain.ErrNotFound when unset.
	Get(ctx context.Context, key string) (string, error)

	// Set stores a setting.
	Set(ctx context.Context, key, value string) error
}
