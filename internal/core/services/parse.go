package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/custodia-labs/corpora/internal/chunking"
	"github.com/custodia-labs/corpora/internal/core/domain"
	"github.com/custodia-labs/corpora/internal/core/ports/driven"
	"github.com/custodia-labs/corpora/internal/core/ports/driving"
	"github.com/custodia-labs/corpora/internal/logger"
)

// Ensure ParseService implements the interface.
var _ driving.Parser = (*ParseService)(nil)

// ParseService turns a minidoc's OCR page texts into chunks. MiniDocs
// of the same document are parsed by independent workers in any order;
// chunk positions come from the page-namespace formula, not from any
// shared counter.
type ParseService struct {
	store     driven.Store
	queue     driven.JobQueue
	engine    *chunking.Engine
	timeline  driven.TimelineExtractor
	sensitive driven.SensitiveDetector
	chunkCfg  chunking.Config
}

// NewParseService creates a new parse service.
func NewParseService(
	store driven.Store,
	queue driven.JobQueue,
	engine *chunking.Engine,
	timeline driven.TimelineExtractor,
	sensitive driven.SensitiveDetector,
	chunkCfg chunking.Config,
) *ParseService {
	return &ParseService{
		store:     store,
		queue:     queue,
		engine:    engine,
		timeline:  timeline,
		sensitive: sensitive,
		chunkCfg:  chunkCfg,
	}
}

// ParseMiniDoc stitches the minidoc's pages, chunks them, and persists
// the result in one transaction. Embed jobs are enqueued only after
// that transaction commits. A minidoc that is already parsed is a
// no-op, so queue redelivery cannot duplicate chunks.
func (s *ParseService) ParseMiniDoc(ctx context.Context, minidocID string) error {
	minidoc, err := s.store.MiniDocs().Get(ctx, minidocID)
	if err != nil {
		return err
	}

	if minidoc.Status == domain.MiniDocParsed {
		logger.Warn("MiniDoc %s already parsed, skipping", minidocID)
		return nil
	}

	pages, err := s.store.Pages().ListRange(ctx, minidoc.DocumentID, minidoc.PageStart, minidoc.PageEnd)
	if err != nil {
		return err
	}

	pageTables, err := s.store.Tables().ListRange(ctx, minidoc.DocumentID, minidoc.PageStart, minidoc.PageEnd)
	if err != nil {
		return err
	}

	fullText := stitchPages(pages, pageTables)
	if strings.TrimSpace(fullText) == "" {
		logger.Warn("MiniDoc %s has no page text", minidocID)
	}

	strategy := readStrategy(ctx, s.store)
	chunks := s.engine.Chunk(ctx, fullText, s.chunkCfg, strategy)
	logger.Info("MiniDoc %s: %d chunks from %d characters (%s)", minidocID, len(chunks), len(fullText), strategy)

	var chunkIDs []string

	err = s.store.RunInTx(ctx, func(tx driven.Store) error {
		for i, text := range chunks {
			index, err := domain.GlobalChunkIndex(minidoc.PageStart, i)
			if err != nil {
				return err
			}
			chunk := &domain.Chunk{
				ID:         uuid.New().String(),
				DocumentID: minidoc.DocumentID,
				Text:       text,
				Index:      index,
			}
			if err := tx.Chunks().Save(ctx, chunk); err != nil {
				return err
			}
			chunkIDs = append(chunkIDs, chunk.ID)
			deriveArtifacts(ctx, tx, s.timeline, s.sensitive, chunk)
		}

		return tx.MiniDocs().UpdateStatus(ctx, minidoc.ID, domain.MiniDocParsed)
	})
	if err != nil {
		return err
	}

	logger.Info("MiniDoc %s parsed, %d chunks committed", minidocID, len(chunkIDs))

	// Chunks are durable now; the embedding consumer is guaranteed to
	// find every row it is told about.
	for _, id := range chunkIDs {
		if err := s.queue.Enqueue(ctx, driven.JobEmbedChunk, map[string]any{"chunk_id": id}); err != nil {
			logger.Warn("Failed to enqueue embed job for chunk %s: %v", id, err)
		}
	}
	logger.Info("Enqueued %d embed jobs for minidoc %s", len(chunkIDs), minidocID)

	return nil
}

// stitchPages joins page texts with literal page markers, injecting
// each page's table blocks immediately after its body so table rows
// stay adjacent to their page.
func stitchPages(pages []domain.PageText, pageTables []domain.ExtractedTable) string {
	tablesByPage := make(map[int][]string)
	for _, t := range pageTables {
		tablesByPage[t.PageNum] = append(tablesByPage[t.PageNum], t.TextContent)
	}

	var b strings.Builder
	for _, page := range pages {
		fmt.Fprintf(&b, "=== PAGE %d START ===\n", page.PageNum)
		b.WriteString(page.Text)
		b.WriteString("\n")
		for _, table := range tablesByPage[page.PageNum] {
			b.WriteString(table)
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "=== PAGE %d END ===\n\n", page.PageNum)
	}
	return b.String()
}
