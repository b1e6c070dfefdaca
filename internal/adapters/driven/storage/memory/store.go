// Package memory provides an in-memory Store used in tests and as a
// reference implementation of the transactional contract.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/custodia-labs/corpora/internal/core/domain"
	"github.com/custodia-labs/corpora/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.Store = (*Store)(nil)

// Store keeps all state in maps. RunInTx runs against a copy and
// publishes it on success, mirroring SQLite's commit/rollback
// visibility rules closely enough for service-level tests.
type Store struct {
	mu sync.Mutex

	state *state

	// CommitHook, when set, runs after each successful RunInTx commit.
	// Tests use it to observe commit/enqueue ordering.
	CommitHook func()
}

type state struct {
	documents  map[string]domain.Document
	minidocs   map[string]domain.MiniDoc
	chunks     map[string]domain.Chunk
	pages      []domain.PageText
	tables     []domain.ExtractedTable
	mentions   []domain.DateMention
	events     []domain.TimelineEvent
	sensitives []domain.SensitiveMatch
	settings   map[string]string
}

func newState() *state {
	return &state{
		documents: make(map[string]domain.Document),
		minidocs:  make(map[string]domain.MiniDoc),
		chunks:    make(map[string]domain.Chunk),
		settings:  make(map[string]string),
	}
}

func (st *state) clone() *state {
	c := newState()
	for k, v := range st.documents {
		c.documents[k] = v
	}
	for k, v := range st.minidocs {
		c.minidocs[k] = v
	}
	for k, v := range st.chunks {
		c.chunks[k] = v
	}
	for k, v := range st.settings {
		c.settings[k] = v
	}
	c.pages = append(c.pages, st.pages...)
	c.tables = append(c.tables, st.tables...)
	c.mentions = append(c.mentions, st.mentions...)
	c.events = append(c.events, st.events...)
	c.sensitives = append(c.sensitives, st.sensitives...)
	return c
}

// New creates an empty in-memory store.
func New() *Store {
	return &Store{state: newState()}
}

// Documents returns the document store.
func (s *Store) Documents() driven.DocumentStore { return &documentStore{s} }

// MiniDocs returns the minidoc store.
func (s *Store) MiniDocs() driven.MiniDocStore { return &minidocStore{s} }

// Chunks returns the chunk store.
func (s *Store) Chunks() driven.ChunkStore { return &chunkStore{s} }

// Pages returns the page text store.
func (s *Store) Pages() driven.PageStore { return &pageStore{s} }

// Tables returns the extracted table store.
func (s *Store) Tables() driven.TableStore { return &tableStore{s} }

// Artifacts returns the derived artifact store.
func (s *Store) Artifacts() driven.ArtifactStore { return &artifactStore{s} }

// Settings returns the runtime settings store.
func (s *Store) Settings() driven.SettingsStore { return &settingsStore{s} }

// RunInTx runs fn against a copy of the state. The copy replaces the
// live state only when fn returns nil.
func (s *Store) RunInTx(_ context.Context, fn func(tx driven.Store) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &Store{state: s.state.clone()}
	if err := fn(tx); err != nil {
		return err
	}

	s.state = tx.state
	if s.CommitHook != nil {
		s.CommitHook()
	}
	return nil
}

// Close is a no-op for the in-memory store.
func (s *Store) Close() error { return nil }

// DateMentions returns all saved date mentions.
func (s *Store) DateMentions() []domain.DateMention { return s.state.mentions }

// TimelineEvents returns all saved timeline events.
func (s *Store) TimelineEvents() []domain.TimelineEvent { return s.state.events }

// SensitiveMatches returns all saved sensitive matches.
func (s *Store) SensitiveMatches() []domain.SensitiveMatch { return s.state.sensitives }

type documentStore struct{ s *Store }

func (d *documentStore) Save(_ context.Context, doc *domain.Document) error {
	for _, existing := range d.s.state.documents {
		if existing.FileHash == doc.FileHash {
			return domain.ErrDuplicateDocument
		}
	}
	d.s.state.documents[doc.ID] = *doc
	return nil
}

func (d *documentStore) Update(_ context.Context, doc *domain.Document) error {
	if _, ok := d.s.state.documents[doc.ID]; !ok {
		return domain.ErrNotFound
	}
	d.s.state.documents[doc.ID] = *doc
	return nil
}

func (d *documentStore) Get(_ context.Context, id string) (*domain.Document, error) {
	doc, ok := d.s.state.documents[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &doc, nil
}

func (d *documentStore) GetByHash(_ context.Context, fileHash string) (*domain.Document, error) {
	for _, doc := range d.s.state.documents {
		if doc.FileHash == fileHash {
			return &doc, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (d *documentStore) List(_ context.Context) ([]domain.Document, error) {
	docs := make([]domain.Document, 0, len(d.s.state.documents))
	for _, doc := range d.s.state.documents {
		docs = append(docs, doc)
	}
	sort.Slice(docs, func(i, j int) bool { return docs[i].CreatedAt.Before(docs[j].CreatedAt) })
	return docs, nil
}

type minidocStore struct{ s *Store }

func (m *minidocStore) Save(_ context.Context, md *domain.MiniDoc) error {
	m.s.state.minidocs[md.ID] = *md
	return nil
}

func (m *minidocStore) Get(_ context.Context, id string) (*domain.MiniDoc, error) {
	md, ok := m.s.state.minidocs[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &md, nil
}

func (m *minidocStore) UpdateStatus(_ context.Context, id string, status domain.MiniDocStatus) error {
	md, ok := m.s.state.minidocs[id]
	if !ok {
		return domain.ErrNotFound
	}
	md.Status = status
	m.s.state.minidocs[id] = md
	return nil
}

type chunkStore struct{ s *Store }

func (c *chunkStore) Save(_ context.Context, chunk *domain.Chunk) error {
	c.s.state.chunks[chunk.ID] = *chunk
	return nil
}

func (c *chunkStore) Get(_ context.Context, id string) (*domain.Chunk, error) {
	chunk, ok := c.s.state.chunks[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &chunk, nil
}

func (c *chunkStore) ListByDocument(_ context.Context, documentID string) ([]domain.Chunk, error) {
	var chunks []domain.Chunk
	for _, chunk := range c.s.state.chunks {
		if chunk.DocumentID == documentID {
			chunks = append(chunks, chunk)
		}
	}
	sort.Slice(chunks, func(i, j int) bool { return chunks[i].Index < chunks[j].Index })
	return chunks, nil
}

type pageStore struct{ s *Store }

func (p *pageStore) Save(_ context.Context, page *domain.PageText) error {
	p.s.state.pages = append(p.s.state.pages, *page)
	return nil
}

func (p *pageStore) ListRange(_ context.Context, documentID string, pageStart, pageEnd int) ([]domain.PageText, error) {
	var pages []domain.PageText
	for _, page := range p.s.state.pages {
		if page.DocumentID == documentID && page.PageNum >= pageStart && page.PageNum <= pageEnd {
			pages = append(pages, page)
		}
	}
	sort.Slice(pages, func(i, j int) bool { return pages[i].PageNum < pages[j].PageNum })
	return pages, nil
}

type tableStore struct{ s *Store }

func (t *tableStore) Save(_ context.Context, table *domain.ExtractedTable) error {
	t.s.state.tables = append(t.s.state.tables, *table)
	return nil
}

func (t *tableStore) ListRange(_ context.Context, documentID string, pageStart, pageEnd int) ([]domain.ExtractedTable, error) {
	var result []domain.ExtractedTable
	for _, table := range t.s.state.tables {
		if table.DocumentID == documentID && table.PageNum >= pageStart && table.PageNum <= pageEnd {
			result = append(result, table)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].PageNum != result[j].PageNum {
			return result[i].PageNum < result[j].PageNum
		}
		return result[i].TableIndex < result[j].TableIndex
	})
	return result, nil
}

func (t *tableStore) List(_ context.Context, limit, offset int) ([]domain.ExtractedTable, error) {
	tables := append([]domain.ExtractedTable(nil), t.s.state.tables...)
	sort.Slice(tables, func(i, j int) bool { return tables[i].CreatedAt.After(tables[j].CreatedAt) })

	if offset >= len(tables) {
		return nil, nil
	}
	tables = tables[offset:]
	if limit > 0 && limit < len(tables) {
		tables = tables[:limit]
	}
	return tables, nil
}

type artifactStore struct{ s *Store }

func (a *artifactStore) SaveDateMention(_ context.Context, m *domain.DateMention) error {
	a.s.state.mentions = append(a.s.state.mentions, *m)
	return nil
}

func (a *artifactStore) SaveTimelineEvent(_ context.Context, e *domain.TimelineEvent) error {
	a.s.state.events = append(a.s.state.events, *e)
	return nil
}

func (a *artifactStore) SaveSensitiveMatch(_ context.Context, m *domain.SensitiveMatch) error {
	a.s.state.sensitives = append(a.s.state.sensitives, *m)
	return nil
}

type settingsStore struct{ s *Store }

func (st *settingsStore) Get(_ context.Context, key string) (string, error) {
	value, ok := st.s.state.settings[key]
	if !ok {
		return "", domain.ErrNotFound
	}
	return value, nil
}

func (st *settingsStore) Set(_ context.Context, key, value string) error {
	st.s.state.settings[key] = value
	return nil
}
