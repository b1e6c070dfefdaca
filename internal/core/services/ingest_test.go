package services

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	queuemem "github.com/custodia-labs/corpora/internal/adapters/driven/queue/memory"
	storemem "github.com/custodia-labs/corpora/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/corpora/internal/chunking"
	"github.com/custodia-labs/corpora/internal/core/domain"
	"github.com/custodia-labs/corpora/internal/core/ports/driven"
	"github.com/custodia-labs/corpora/internal/extractors"
)

// stubConverter fakes PDF conversion.
type stubConverter struct {
	out string
	err error
}

func (c *stubConverter) ConvertToPDF(_ context.Context, path string) (string, error) {
	if c.err != nil {
		return "", c.err
	}
	if c.out != "" {
		return c.out, nil
	}
	return path + ".converted.pdf", nil
}

type ingestFixture struct {
	store   *storemem.Store
	queue   *queuemem.Queue
	svc     *IngestService
	intake  string
	storage string
}

func newIngestFixture(t *testing.T, conv driven.Converter) *ingestFixture {
	t.Helper()
	root := t.TempDir()
	f := &ingestFixture{
		store:   storemem.New(),
		queue:   queuemem.New(),
		intake:  filepath.Join(root, "intake"),
		storage: filepath.Join(root, "documents"),
	}
	require.NoError(t, os.MkdirAll(f.intake, 0o755))

	if conv == nil {
		conv = &stubConverter{}
	}
	cfg := chunking.Config{MaxChunkSize: 512, MinChunkSize: 10, Overlap: 0, ProtectPatterns: true}
	f.svc = NewIngestService(f.store, f.queue, extractors.NewDefault(), conv,
		chunking.NewEngine(nil), nil, nil, f.storage, cfg)
	return f
}

func (f *ingestFixture) drop(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(f.intake, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestIngestFile_TextPassthrough(t *testing.T) {
	f := newIngestFixture(t, nil)
	ctx := context.Background()

	path := f.drop(t, "note.txt", "First paragraph of the note.\n\nSecond paragraph with more words.")
	require.NoError(t, f.svc.IngestFile(ctx, path, nil))

	docs, err := f.store.Documents().List(ctx)
	require.NoError(t, err)
	require.Len(t, docs, 1)

	doc := docs[0]
	assert.Equal(t, domain.StatusEmbedded, doc.Status)
	assert.Equal(t, "note.txt", doc.Title)
	assert.Equal(t, ".txt", doc.DocType)
	assert.Equal(t, 1, doc.NumPages)
	assert.NotEmpty(t, doc.FileHash)

	// File moved to content-addressed storage.
	assert.NoFileExists(t, path)
	assert.FileExists(t, filepath.Join(f.storage, doc.FileHash+"_note.txt"))

	chunks, err := f.store.Chunks().ListByDocument(ctx, doc.ID)
	require.NoError(t, err)
	require.NotEmpty(t, chunks)

	// Passthrough chunks live in the page-1 namespace.
	assert.Equal(t, int64(domain.ChunkNamespaceSize), chunks[0].Index)

	// One embed job per chunk, nothing else.
	jobs := f.queue.Jobs()
	require.Len(t, jobs, len(chunks))
	for _, job := range jobs {
		assert.Equal(t, driven.JobEmbedChunk, job.Name)
	}
}

func TestIngestFile_DuplicateAbsorbedSilently(t *testing.T) {
	f := newIngestFixture(t, nil)
	ctx := context.Background()

	first := f.drop(t, "a.txt", "identical content")
	require.NoError(t, f.svc.IngestFile(ctx, first, nil))

	second := f.drop(t, "b.txt", "identical content")
	require.NoError(t, f.svc.IngestFile(ctx, second, nil))

	// Still exactly one document.
	docs, err := f.store.Documents().List(ctx)
	require.NoError(t, err)
	assert.Len(t, docs, 1)

	// Duplicate moved to the holding area.
	assert.NoFileExists(t, second)
	assert.FileExists(t, filepath.Join(f.intake, "processed", "b.txt"))
}

func TestIngestFile_DirectoryRejectedWithoutQuarantine(t *testing.T) {
	f := newIngestFixture(t, nil)
	ctx := context.Background()

	first := f.drop(t, "a.txt", "identical content")
	require.NoError(t, f.svc.IngestFile(ctx, first, nil))

	second := f.drop(t, "b.txt", "identical content")
	require.NoError(t, f.svc.IngestFile(ctx, second, nil))

	// A stale watcher job can carry the holding area's own path.
	// Rejecting it must not relocate the absorbed duplicates.
	processedDir := filepath.Join(f.intake, "processed")
	err := f.svc.IngestFile(ctx, processedDir, nil)
	require.ErrorIs(t, err, domain.ErrInvalidInput)

	assert.DirExists(t, processedDir)
	assert.FileExists(t, filepath.Join(processedDir, "b.txt"))
	assert.NoDirExists(t, filepath.Join(f.intake, "failed"))
}

// blindDedupeStore hides existing hashes from the dedupe lookup, so
// the conflict only surfaces at save time. Simulates a concurrent
// worker committing the same content between check and transaction.
type blindDedupeStore struct {
	driven.Store
}

func (b *blindDedupeStore) Documents() driven.DocumentStore {
	return &blindDedupeDocs{b.Store.Documents()}
}

func (b *blindDedupeStore) RunInTx(ctx context.Context, fn func(tx driven.Store) error) error {
	return b.Store.RunInTx(ctx, func(tx driven.Store) error {
		return fn(&blindDedupeStore{tx})
	})
}

type blindDedupeDocs struct {
	driven.DocumentStore
}

func (d *blindDedupeDocs) GetByHash(context.Context, string) (*domain.Document, error) {
	return nil, domain.ErrNotFound
}

func TestIngestFile_HashRaceAbsorbedAtSave(t *testing.T) {
	f := newIngestFixture(t, nil)
	ctx := context.Background()

	first := f.drop(t, "a.txt", "identical content")
	require.NoError(t, f.svc.IngestFile(ctx, first, nil))

	cfg := chunking.Config{MaxChunkSize: 512, MinChunkSize: 10, Overlap: 0, ProtectPatterns: true}
	racing := NewIngestService(&blindDedupeStore{f.store}, f.queue, extractors.NewDefault(),
		&stubConverter{}, chunking.NewEngine(nil), nil, nil, f.storage, cfg)

	second := f.drop(t, "b.txt", "identical content")
	require.NoError(t, racing.IngestFile(ctx, second, nil))

	// Still exactly one document; the loser of the race is absorbed,
	// not quarantined.
	docs, err := f.store.Documents().List(ctx)
	require.NoError(t, err)
	assert.Len(t, docs, 1)

	assert.FileExists(t, filepath.Join(f.intake, "processed", "b.txt"))
	assert.NoDirExists(t, filepath.Join(f.intake, "failed"))
}

func TestIngestFile_CommitBeforeEnqueue(t *testing.T) {
	f := newIngestFixture(t, nil)
	ctx := context.Background()

	var events []string
	f.store.CommitHook = func() { events = append(events, "commit") }
	f.queue.EnqueueHook = func(name string) { events = append(events, "enqueue:"+name) }

	path := f.drop(t, "note.txt", "Some content to be chunked and embedded later on.")
	require.NoError(t, f.svc.IngestFile(ctx, path, nil))

	require.NotEmpty(t, events)
	assert.Equal(t, "commit", events[0])
	for _, e := range events[1:] {
		assert.True(t, strings.HasPrefix(e, "enqueue:"), "unexpected event order: %v", events)
	}
}

func TestIngestFile_NonTextGoesToConversion(t *testing.T) {
	f := newIngestFixture(t, nil)
	ctx := context.Background()

	path := f.drop(t, "scan.png", "\x89PNG fake image bytes")
	require.NoError(t, f.svc.IngestFile(ctx, path, nil))

	docs, err := f.store.Documents().List(ctx)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, domain.StatusUploaded, docs[0].Status)

	jobs := f.queue.Jobs()
	require.Len(t, jobs, 1)
	assert.Equal(t, driven.JobSplitDocument, jobs[0].Name)
	assert.Equal(t, docs[0].ID, jobs[0].Args["document_id"])
}

func TestIngestFile_PDFSkipsConversion(t *testing.T) {
	conv := &stubConverter{err: errors.New("converter must not be called")}
	f := newIngestFixture(t, conv)
	ctx := context.Background()

	path := f.drop(t, "report.pdf", "%PDF-1.4 fake")
	require.NoError(t, f.svc.IngestFile(ctx, path, nil))

	jobs := f.queue.Jobs()
	require.Len(t, jobs, 1)
	assert.Equal(t, driven.JobSplitDocument, jobs[0].Name)
}

func TestIngestFile_ConversionFailureQuarantines(t *testing.T) {
	conv := &stubConverter{err: errors.New("soffice crashed")}
	f := newIngestFixture(t, conv)
	ctx := context.Background()

	path := f.drop(t, "weird.bin", "unconvertible")
	err := f.svc.IngestFile(ctx, path, nil)
	require.Error(t, err)

	// No partial rows.
	docs, listErr := f.store.Documents().List(ctx)
	require.NoError(t, listErr)
	assert.Empty(t, docs)
	assert.Zero(t, f.queue.Len())

	// File quarantined with an error-log line.
	assert.FileExists(t, filepath.Join(f.intake, "failed", "weird.bin"))
	logContent, readErr := os.ReadFile(filepath.Join(f.intake, "failed", "errors.log"))
	require.NoError(t, readErr)
	assert.Contains(t, string(logContent), "weird.bin")
	assert.Contains(t, string(logContent), "soffice crashed")
}

func TestIngestFile_TablesPersisted(t *testing.T) {
	f := newIngestFixture(t, nil)
	ctx := context.Background()

	path := f.drop(t, "figures.csv", "Name,Amount\nAlice,100\nBob,200\n")
	require.NoError(t, f.svc.IngestFile(ctx, path, nil))

	docs, err := f.store.Documents().List(ctx)
	require.NoError(t, err)
	require.Len(t, docs, 1)

	tables, err := f.store.Tables().ListRange(ctx, docs[0].ID, 1, 1)
	require.NoError(t, err)
	require.Len(t, tables, 1)
	assert.Equal(t, []string{"Name", "Amount"}, tables[0].Headers)
	assert.Equal(t, 3, tables[0].RowCount)
}

func TestIngestFile_EmailMetadataOnDocument(t *testing.T) {
	f := newIngestFixture(t, nil)
	ctx := context.Background()

	email := "From: sender@example.com\nTo: rcpt@example.com\nSubject: Budget\nDate: Mon, 01 Jan 2024 10:00:00 +0000\nContent-Type: text/plain\n\nBody text of the email message.\n"
	path := f.drop(t, "mail.eml", email)
	require.NoError(t, f.svc.IngestFile(ctx, path, nil))

	docs, err := f.store.Documents().List(ctx)
	require.NoError(t, err)
	require.Len(t, docs, 1)

	assert.Equal(t, "Budget", docs[0].Subject)
	assert.Equal(t, "sender@example.com", docs[0].Author)
	require.NotNil(t, docs[0].CreationDate)
	assert.Equal(t, 2024, docs[0].CreationDate.Year())
}

func TestSanitizeFilename(t *testing.T) {
	cases := map[string]string{
		"report.pdf":        "report.pdf",
		"we ird/na$me.txt":  "we_ird_na_me.txt",
		"архів.docx":        "_____.docx",
		"a-b_c.1.tar.gz":    "a-b_c.1.tar.gz",
	}
	for in, want := range cases {
		assert.Equal(t, want, sanitizeFilename(in))
	}
}
