package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/custodia-labs/corpora/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/custodia-labs/corpora/internal/core/domain"
	"github.com/custodia-labs/corpora/internal/core/ports/driven"
)

var _ driven.Store = (*Store)(nil)

// querier is the subset of database/sql shared by *sql.DB and *sql.Tx.
// Every wrapper store runs its statements through it, so the same code
// serves both direct access and RunInTx views.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Store is a unified SQLite-based storage that provides access to all
// metadata store interfaces through wrapper types.
type Store struct {
	db   *sql.DB // nil on transaction-bound views
	q    querier
	path string
}

// NewStore creates a new SQLite store at the specified data directory.
// If dataDir is empty, defaults to ~/.corpora/data/corpora.db.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".corpora", "data")
	}

	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "corpora.db")

	// Open database with WAL mode for better concurrency
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	s := &Store{db: db, q: db, path: dbPath}

	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// Documents returns the document store.
func (s *Store) Documents() driven.DocumentStore { return &documentStore{q: s.q} }

// MiniDocs returns the minidoc store.
func (s *Store) MiniDocs() driven.MiniDocStore { return &minidocStore{q: s.q} }

// Chunks returns the chunk store.
func (s *Store) Chunks() driven.ChunkStore { return &chunkStore{q: s.q} }

// Pages returns the page text store.
func (s *Store) Pages() driven.PageStore { return &pageStore{q: s.q} }

// Tables returns the extracted table store.
func (s *Store) Tables() driven.TableStore { return &tableStore{q: s.q} }

// Artifacts returns the derived artifact store.
func (s *Store) Artifacts() driven.ArtifactStore { return &artifactStore{q: s.q} }

// Settings returns the runtime settings store.
func (s *Store) Settings() driven.SettingsStore { return &settingsStore{q: s.q} }

// RunInTx runs fn against a transaction-bound view of the store. The
// transaction commits when fn returns nil and rolls back otherwise.
func (s *Store) RunInTx(ctx context.Context, fn func(tx driven.Store) error) error {
	if s.db == nil {
		return errors.New("nested transactions are not supported")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if err := fn(&Store{q: tx, path: s.path}); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// migrate runs all pending migrations.
func (s *Store) migrate(fsys embed.FS) error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// Extract version number (e.g., "0001_init.up.sql" -> 1)
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue // Skip files that don't match pattern
		}

		if version <= currentVersion {
			continue // Already applied
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}

		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}

		if _, err := s.db.Exec(
			"INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
	}

	return nil
}

// ==================== Document Store ====================

type documentStore struct {
	q querier
}

var _ driven.DocumentStore = (*documentStore)(nil)

// Save stores a new document.
func (s *documentStore) Save(ctx context.Context, doc *domain.Document) error {
	now := time.Now().UTC()
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = now
	}
	doc.UpdatedAt = now

	_, err := s.q.ExecContext(ctx, `
		INSERT INTO documents
			(id, file_hash, title, path, source_path, doc_type, project_id,
			 status, num_pages, subject, author, creation_date, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, doc.ID, doc.FileHash, doc.Title, doc.Path, doc.SourcePath, doc.DocType,
		nullStringPtr(doc.ProjectID), string(doc.Status), doc.NumPages,
		doc.Subject, doc.Author, nullTimePtr(doc.CreationDate),
		doc.CreatedAt, doc.UpdatedAt)

	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed: documents.file_hash") {
			return domain.ErrDuplicateDocument
		}
		return fmt.Errorf("saving document: %w", err)
	}
	return nil
}

// Update persists mutable document fields.
func (s *documentStore) Update(ctx context.Context, doc *domain.Document) error {
	doc.UpdatedAt = time.Now().UTC()

	res, err := s.q.ExecContext(ctx, `
		UPDATE documents SET
			title = ?, path = ?, source_path = ?, doc_type = ?, project_id = ?,
			status = ?, num_pages = ?, subject = ?, author = ?, creation_date = ?,
			updated_at = ?
		WHERE id = ?
	`, doc.Title, doc.Path, doc.SourcePath, doc.DocType, nullStringPtr(doc.ProjectID),
		string(doc.Status), doc.NumPages, doc.Subject, doc.Author,
		nullTimePtr(doc.CreationDate), doc.UpdatedAt, doc.ID)

	if err != nil {
		return fmt.Errorf("updating document: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking update result: %w", err)
	}
	if affected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

const documentColumns = `id, file_hash, title, path, source_path, doc_type, project_id,
	status, num_pages, subject, author, creation_date, created_at, updated_at`

// Get retrieves a document by ID.
func (s *documentStore) Get(ctx context.Context, id string) (*domain.Document, error) {
	row := s.q.QueryRowContext(ctx,
		`SELECT `+documentColumns+` FROM documents WHERE id = ?`, id)
	return scanDocument(row)
}

// GetByHash retrieves a document by its content hash.
func (s *documentStore) GetByHash(ctx context.Context, fileHash string) (*domain.Document, error) {
	row := s.q.QueryRowContext(ctx,
		`SELECT `+documentColumns+` FROM documents WHERE file_hash = ?`, fileHash)
	return scanDocument(row)
}

// List returns all documents ordered by ingestion time.
func (s *documentStore) List(ctx context.Context) ([]domain.Document, error) {
	rows, err := s.q.QueryContext(ctx,
		`SELECT `+documentColumns+` FROM documents ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("querying documents: %w", err)
	}
	defer rows.Close()

	var docs []domain.Document //nolint:prealloc // size unknown from query
	for rows.Next() {
		doc, err := scanDocumentFields(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, *doc)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating documents: %w", err)
	}

	return docs, nil
}

// ==================== MiniDoc Store ====================

type minidocStore struct {
	q querier
}

var _ driven.MiniDocStore = (*minidocStore)(nil)

// Save stores a new minidoc.
func (s *minidocStore) Save(ctx context.Context, md *domain.MiniDoc) error {
	_, err := s.q.ExecContext(ctx, `
		INSERT INTO minidocs (id, document_id, label, page_start, page_end, status)
		VALUES (?, ?, ?, ?, ?, ?)
	`, md.ID, md.DocumentID, md.Label, md.PageStart, md.PageEnd, string(md.Status))

	if err != nil {
		return fmt.Errorf("saving minidoc: %w", err)
	}
	return nil
}

// Get retrieves a minidoc by ID.
func (s *minidocStore) Get(ctx context.Context, id string) (*domain.MiniDoc, error) {
	row := s.q.QueryRowContext(ctx, `
		SELECT id, document_id, label, page_start, page_end, status
		FROM minidocs WHERE id = ?
	`, id)

	var md domain.MiniDoc
	var status string
	if err := row.Scan(&md.ID, &md.DocumentID, &md.Label,
		&md.PageStart, &md.PageEnd, &status); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning minidoc: %w", err)
	}
	md.Status = domain.MiniDocStatus(status)

	return &md, nil
}

// UpdateStatus sets the parse state.
func (s *minidocStore) UpdateStatus(ctx context.Context, id string, status domain.MiniDocStatus) error {
	res, err := s.q.ExecContext(ctx,
		"UPDATE minidocs SET status = ? WHERE id = ?", string(status), id)
	if err != nil {
		return fmt.Errorf("updating minidoc status: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking update result: %w", err)
	}
	if affected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ==================== Chunk Store ====================

type chunkStore struct {
	q querier
}

var _ driven.ChunkStore = (*chunkStore)(nil)

// Save stores a new chunk.
func (s *chunkStore) Save(ctx context.Context, chunk *domain.Chunk) error {
	_, err := s.q.ExecContext(ctx, `
		INSERT INTO chunks (id, document_id, text, chunk_index)
		VALUES (?, ?, ?, ?)
	`, chunk.ID, chunk.DocumentID, chunk.Text, chunk.Index)

	if err != nil {
		return fmt.Errorf("saving chunk: %w", err)
	}
	return nil
}

// Get retrieves a chunk by ID.
func (s *chunkStore) Get(ctx context.Context, id string) (*domain.Chunk, error) {
	row := s.q.QueryRowContext(ctx, `
		SELECT id, document_id, text, chunk_index
		FROM chunks WHERE id = ?
	`, id)

	var chunk domain.Chunk
	if err := row.Scan(&chunk.ID, &chunk.DocumentID, &chunk.Text, &chunk.Index); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning chunk: %w", err)
	}

	return &chunk, nil
}

// ListByDocument returns a document's chunks ordered by index.
func (s *chunkStore) ListByDocument(ctx context.Context, documentID string) ([]domain.Chunk, error) {
	rows, err := s.q.QueryContext(ctx, `
		SELECT id, document_id, text, chunk_index
		FROM chunks WHERE document_id = ?
		ORDER BY chunk_index
	`, documentID)
	if err != nil {
		return nil, fmt.Errorf("querying chunks: %w", err)
	}
	defer rows.Close()

	var chunks []domain.Chunk //nolint:prealloc // size unknown from query
	for rows.Next() {
		var chunk domain.Chunk
		if err := rows.Scan(&chunk.ID, &chunk.DocumentID, &chunk.Text, &chunk.Index); err != nil {
			return nil, fmt.Errorf("scanning chunk: %w", err)
		}
		chunks = append(chunks, chunk)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating chunks: %w", err)
	}

	return chunks, nil
}

// ==================== Page Store ====================

type pageStore struct {
	q querier
}

var _ driven.PageStore = (*pageStore)(nil)

// Save stores page text. The OCR stage may retry a page, so a rewrite
// of the same page replaces the previous text.
func (s *pageStore) Save(ctx context.Context, page *domain.PageText) error {
	_, err := s.q.ExecContext(ctx, `
		INSERT INTO page_texts (document_id, page_num, text)
		VALUES (?, ?, ?)
		ON CONFLICT(document_id, page_num) DO UPDATE SET
			text = excluded.text
	`, page.DocumentID, page.PageNum, page.Text)

	if err != nil {
		return fmt.Errorf("saving page text: %w", err)
	}
	return nil
}

// ListRange returns a document's pages within [pageStart, pageEnd].
func (s *pageStore) ListRange(ctx context.Context, documentID string, pageStart, pageEnd int) ([]domain.PageText, error) {
	rows, err := s.q.QueryContext(ctx, `
		SELECT document_id, page_num, text
		FROM page_texts
		WHERE document_id = ? AND page_num BETWEEN ? AND ?
		ORDER BY page_num
	`, documentID, pageStart, pageEnd)
	if err != nil {
		return nil, fmt.Errorf("querying page texts: %w", err)
	}
	defer rows.Close()

	var pages []domain.PageText //nolint:prealloc // size unknown from query
	for rows.Next() {
		var page domain.PageText
		if err := rows.Scan(&page.DocumentID, &page.PageNum, &page.Text); err != nil {
			return nil, fmt.Errorf("scanning page text: %w", err)
		}
		pages = append(pages, page)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating page texts: %w", err)
	}

	return pages, nil
}

// ==================== Table Store ====================

type tableStore struct {
	q querier
}

var _ driven.TableStore = (*tableStore)(nil)

// Save stores an extracted table.
func (s *tableStore) Save(ctx context.Context, table *domain.ExtractedTable) error {
	headersJSON, err := json.Marshal(table.Headers)
	if err != nil {
		return fmt.Errorf("marshalling headers: %w", err)
	}

	if table.CreatedAt.IsZero() {
		table.CreatedAt = time.Now().UTC()
	}

	_, err = s.q.ExecContext(ctx, `
		INSERT INTO extracted_tables
			(id, document_id, page_num, table_index, row_count, col_count,
			 headers, text_content, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, table.ID, table.DocumentID, table.PageNum, table.TableIndex,
		table.RowCount, table.ColCount, string(headersJSON),
		table.TextContent, table.CreatedAt)

	if err != nil {
		return fmt.Errorf("saving extracted table: %w", err)
	}
	return nil
}

const tableColumns = `id, document_id, page_num, table_index, row_count, col_count,
	headers, text_content, created_at`

// ListRange returns a document's tables with pages in [pageStart, pageEnd].
func (s *tableStore) ListRange(ctx context.Context, documentID string, pageStart, pageEnd int) ([]domain.ExtractedTable, error) {
	rows, err := s.q.QueryContext(ctx, `
		SELECT `+tableColumns+`
		FROM extracted_tables
		WHERE document_id = ? AND page_num BETWEEN ? AND ?
		ORDER BY page_num, table_index
	`, documentID, pageStart, pageEnd)
	if err != nil {
		return nil, fmt.Errorf("querying extracted tables: %w", err)
	}
	defer rows.Close()

	return scanTables(rows)
}

// List returns tables across all documents, newest first.
func (s *tableStore) List(ctx context.Context, limit, offset int) ([]domain.ExtractedTable, error) {
	if limit <= 0 {
		limit = -1 // no limit in SQLite
	}

	rows, err := s.q.QueryContext(ctx, `
		SELECT `+tableColumns+`
		FROM extracted_tables
		ORDER BY created_at DESC
		LIMIT ? OFFSET ?
	`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("querying extracted tables: %w", err)
	}
	defer rows.Close()

	return scanTables(rows)
}

// ==================== Artifact Store ====================

type artifactStore struct {
	q querier
}

var _ driven.ArtifactStore = (*artifactStore)(nil)

// SaveDateMention stores a date mention.
func (s *artifactStore) SaveDateMention(ctx context.Context, m *domain.DateMention) error {
	_, err := s.q.ExecContext(ctx, `
		INSERT INTO date_mentions
			(id, chunk_id, document_id, mention_text, parsed_date, start_pos, end_pos)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, m.ID, m.ChunkID, m.DocumentID, m.MentionText,
		nullTimePtr(m.ParsedDate), m.StartPos, m.EndPos)

	if err != nil {
		return fmt.Errorf("saving date mention: %w", err)
	}
	return nil
}

// SaveTimelineEvent stores a timeline event.
func (s *artifactStore) SaveTimelineEvent(ctx context.Context, e *domain.TimelineEvent) error {
	_, err := s.q.ExecContext(ctx, `
		INSERT INTO timeline_events (id, chunk_id, document_id, event_date, description)
		VALUES (?, ?, ?, ?, ?)
	`, e.ID, e.ChunkID, e.DocumentID, e.EventDate, e.Description)

	if err != nil {
		return fmt.Errorf("saving timeline event: %w", err)
	}
	return nil
}

// SaveSensitiveMatch stores a sensitive-data match.
func (s *artifactStore) SaveSensitiveMatch(ctx context.Context, m *domain.SensitiveMatch) error {
	_, err := s.q.ExecContext(ctx, `
		INSERT INTO sensitive_matches
			(id, chunk_id, document_id, pattern_type, match_text, confidence,
			 start_pos, end_pos, context_before, context_after)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, m.ID, m.ChunkID, m.DocumentID, m.PatternType, m.MatchText, m.Confidence,
		m.StartPos, m.EndPos, m.ContextBefore, m.ContextAfter)

	if err != nil {
		return fmt.Errorf("saving sensitive match: %w", err)
	}
	return nil
}

// ==================== Settings Store ====================

type settingsStore struct {
	q querier
}

var _ driven.SettingsStore = (*settingsStore)(nil)

// Get retrieves a setting.
func (s *settingsStore) Get(ctx context.Context, key string) (string, error) {
	var value string
	err := s.q.QueryRowContext(ctx,
		"SELECT value FROM settings WHERE key = ?", key).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", domain.ErrNotFound
		}
		return "", fmt.Errorf("getting setting: %w", err)
	}
	return value, nil
}

// Set stores a setting.
func (s *settingsStore) Set(ctx context.Context, key, value string) error {
	_, err := s.q.ExecContext(ctx, `
		INSERT INTO settings (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value)

	if err != nil {
		return fmt.Errorf("setting %q: %w", key, err)
	}
	return nil
}

// ==================== Helper Functions ====================

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// scanDocument scans a single document row, mapping no-rows to ErrNotFound.
func scanDocument(row *sql.Row) (*domain.Document, error) {
	doc, err := scanDocumentFields(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return doc, nil
}

// scanDocumentFields scans the documentColumns of a document.
func scanDocumentFields(sc scanner) (*domain.Document, error) {
	var doc domain.Document
	var projectID sql.NullString
	var status string
	var creationDate sql.NullTime

	if err := sc.Scan(&doc.ID, &doc.FileHash, &doc.Title, &doc.Path, &doc.SourcePath,
		&doc.DocType, &projectID, &status, &doc.NumPages, &doc.Subject, &doc.Author,
		&creationDate, &doc.CreatedAt, &doc.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning document: %w", err)
	}

	if projectID.Valid {
		doc.ProjectID = &projectID.String
	}
	doc.Status = domain.DocumentStatus(status)
	if creationDate.Valid {
		t := creationDate.Time
		doc.CreationDate = &t
	}

	return &doc, nil
}

// scanTables scans multiple extracted table rows.
func scanTables(rows *sql.Rows) ([]domain.ExtractedTable, error) {
	var tables []domain.ExtractedTable //nolint:prealloc // size unknown from query
	for rows.Next() {
		var table domain.ExtractedTable
		var headersJSON string
		if err := rows.Scan(&table.ID, &table.DocumentID, &table.PageNum,
			&table.TableIndex, &table.RowCount, &table.ColCount,
			&headersJSON, &table.TextContent, &table.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning extracted table: %w", err)
		}

		if err := json.Unmarshal([]byte(headersJSON), &table.Headers); err != nil {
			return nil, fmt.Errorf("unmarshaling headers: %w", err)
		}

		tables = append(tables, table)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating extracted tables: %w", err)
	}

	return tables, nil
}

// nullStringPtr maps a nil pointer to SQL NULL.
func nullStringPtr(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

// nullTimePtr maps a nil pointer to SQL NULL.
func nullTimePtr(t *time.Time) any {
	if t == nil {
		return nil
	}
	return *t
}
