package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net/mail"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/corpora/internal/chunking"
	"github.com/custodia-labs/corpora/internal/core/domain"
	"github.com/custodia-labs/corpora/internal/core/ports/driven"
	"github.com/custodia-labs/corpora/internal/core/ports/driving"
	"github.com/custodia-labs/corpora/internal/logger"
	"github.com/custodia-labs/corpora/internal/tables"
)

// Intake area subdirectories, created next to incoming files.
const (
	processedDirName = "processed"
	failedDirName    = "failed"
	errorLogName     = "errors.log"
)

// Ensure IngestService implements the interface.
var _ driving.Ingestor = (*IngestService)(nil)

// IngestService handles document intake: dedupe by content hash, move
// to content-addressed storage, then either the direct text path or
// hand-off to conversion and OCR. A failed intake quarantines the file
// and leaves no database rows behind.
type IngestService struct {
	store      driven.Store
	queue      driven.JobQueue
	extractors driven.ExtractorRegistry
	converter  driven.Converter
	engine     *chunking.Engine
	timeline   driven.TimelineExtractor
	sensitive  driven.SensitiveDetector
	storageDir string
	chunkCfg   chunking.Config
}

// NewIngestService creates a new ingest service. storageDir is the
// permanent content-addressed document store.
func NewIngestService(
	store driven.Store,
	queue driven.JobQueue,
	extractors driven.ExtractorRegistry,
	converter driven.Converter,
	engine *chunking.Engine,
	timeline driven.TimelineExtractor,
	sensitive driven.SensitiveDetector,
	storageDir string,
	chunkCfg chunking.Config,
) *IngestService {
	return &IngestService{
		store:      store,
		queue:      queue,
		extractors: extractors,
		converter:  converter,
		engine:     engine,
		timeline:   timeline,
		sensitive:  sensitive,
		storageDir: storageDir,
		chunkCfg:   chunkCfg,
	}
}

// IngestFile processes one uploaded file. Duplicates are moved aside
// silently; failures quarantine the file and return the error.
func (s *IngestService) IngestFile(ctx context.Context, path string, projectID *string) error {
	sourceDir := filepath.Dir(path)

	// Directories never enter the pipeline. Quarantining one would
	// relocate everything inside it, including the holding areas.
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		return fmt.Errorf("%w: %s is a directory", domain.ErrInvalidInput, path)
	}

	fileHash, err := hashFile(path)
	if err != nil {
		return s.quarantine(path, path, sourceDir, err)
	}
	logger.Debug("File hash for %s: %s", filepath.Base(path), fileHash)

	// Dedupe check. A known hash means this exact content already went
	// through the pipeline; absorb the file without a new record.
	existing, err := s.store.Documents().GetByHash(ctx, fileHash)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return s.quarantine(path, path, sourceDir, err)
	}
	if existing != nil {
		logger.Warn("Duplicate file skipped: %s (document %s)", filepath.Base(path), existing.ID)
		return s.moveToProcessed(path, filepath.Base(path), sourceDir)
	}

	// Move into permanent content-addressed storage.
	permanentPath := filepath.Join(s.storageDir, fileHash+"_"+sanitizeFilename(filepath.Base(path)))
	if err := os.MkdirAll(s.storageDir, 0o755); err != nil {
		return s.quarantine(path, path, sourceDir, err)
	}
	if err := moveFile(path, permanentPath); err != nil {
		return s.quarantine(path, path, sourceDir, err)
	}
	logger.Debug("Moved file to %s", permanentPath)

	ext := strings.ToLower(filepath.Ext(permanentPath))

	// Text passthrough: extract directly and skip OCR entirely.
	if extractor, ok := s.extractors.ForPath(permanentPath); ok {
		result, extractErr := extractor.Extract(ctx, permanentPath)
		if extractErr == nil && strings.TrimSpace(result.Text) != "" {
			if err := s.ingestText(ctx, path, permanentPath, fileHash, ext, projectID, result); err != nil {
				return s.settleFailure(path, permanentPath, sourceDir, err)
			}
			return nil
		}
		logger.Warn("Direct text extraction failed for %s, falling back to conversion", ext)
	}

	if err := s.ingestForOCR(ctx, path, permanentPath, fileHash, ext, projectID); err != nil {
		return s.settleFailure(path, permanentPath, sourceDir, err)
	}
	return nil
}

// settleFailure routes a post-move intake error. A hash conflict at
// save time means another worker committed the same content between
// our dedupe check and our transaction; the file is absorbed as a
// duplicate. Anything else quarantines.
func (s *IngestService) settleFailure(path, permanentPath, sourceDir string, cause error) error {
	if errors.Is(cause, domain.ErrDuplicateDocument) {
		logger.Warn("Duplicate file skipped: %s (document saved concurrently)", filepath.Base(path))
		return s.moveToProcessed(permanentPath, filepath.Base(path), sourceDir)
	}
	return s.quarantine(path, permanentPath, sourceDir, cause)
}

// ingestText runs the direct text path: one transaction covering the
// document, its tables, a synthetic single-page minidoc, and all
// chunks with artifacts. Embed jobs go out only after commit.
func (s *IngestService) ingestText(
	ctx context.Context,
	originalPath, permanentPath, fileHash, ext string,
	projectID *string,
	extracted *driven.ExtractResult,
) error {
	strategy := s.readStrategy(ctx)
	chunks := s.engine.Chunk(ctx, extracted.Text, s.chunkCfg, strategy)

	now := time.Now()
	doc := &domain.Document{
		ID:         uuid.New().String(),
		FileHash:   fileHash,
		Title:      filepath.Base(originalPath),
		Path:       permanentPath,
		SourcePath: filepath.Dir(originalPath),
		DocType:    ext,
		ProjectID:  projectID,
		Status:     domain.StatusProcessing,
		NumPages:   1,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	applyMetadata(doc, extracted.Metadata)

	var chunkIDs []string

	err := s.store.RunInTx(ctx, func(tx driven.Store) error {
		if err := tx.Documents().Save(ctx, doc); err != nil {
			return err
		}

		for _, table := range tables.ExtractFromText(extracted.Text) {
			table.ID = uuid.New().String()
			table.DocumentID = doc.ID
			table.CreatedAt = now
			if err := tx.Tables().Save(ctx, &table); err != nil {
				return err
			}
		}

		// Synthetic single-page minidoc; the text is already here, so
		// it is born parsed.
		minidoc := &domain.MiniDoc{
			ID:         uuid.New().String(),
			DocumentID: doc.ID,
			Label:      fmt.Sprintf("%s__text_001", fileHash),
			PageStart:  1,
			PageEnd:    1,
			Status:     domain.MiniDocParsed,
		}
		if err := tx.MiniDocs().Save(ctx, minidoc); err != nil {
			return err
		}

		for i, text := range chunks {
			index, err := domain.GlobalChunkIndex(1, i)
			if err != nil {
				return err
			}
			chunk := &domain.Chunk{
				ID:         uuid.New().String(),
				DocumentID: doc.ID,
				Text:       text,
				Index:      index,
			}
			if err := tx.Chunks().Save(ctx, chunk); err != nil {
				return err
			}
			chunkIDs = append(chunkIDs, chunk.ID)
			s.deriveArtifacts(ctx, tx, chunk)
		}

		doc.Status = domain.StatusEmbedded
		doc.UpdatedAt = time.Now()
		return tx.Documents().Update(ctx, doc)
	})
	if err != nil {
		return err
	}

	logger.Info("Text passthrough: %d chunks committed for document %s", len(chunkIDs), doc.ID)
	s.enqueueEmbeds(ctx, chunkIDs)
	return nil
}

// ingestForOCR runs the conversion path: convert to PDF when needed,
// record the document as uploaded, and enqueue page splitting.
func (s *IngestService) ingestForOCR(
	ctx context.Context,
	originalPath, permanentPath, fileHash, ext string,
	projectID *string,
) error {
	processingPath := permanentPath
	if ext != ".pdf" {
		logger.Info("Converting %s to PDF", ext)
		converted, err := s.converter.ConvertToPDF(ctx, permanentPath)
		if err != nil {
			return fmt.Errorf("conversion failed: %w", err)
		}
		processingPath = converted
	}

	now := time.Now()
	doc := &domain.Document{
		ID:         uuid.New().String(),
		FileHash:   fileHash,
		Title:      filepath.Base(originalPath),
		Path:       permanentPath,
		SourcePath: filepath.Dir(originalPath),
		DocType:    ext,
		ProjectID:  projectID,
		Status:     domain.StatusUploaded,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	err := s.store.RunInTx(ctx, func(tx driven.Store) error {
		return tx.Documents().Save(ctx, doc)
	})
	if err != nil {
		return err
	}

	if err := s.queue.Enqueue(ctx, driven.JobSplitDocument, map[string]any{
		"document_id": doc.ID,
		"path":        processingPath,
	}); err != nil {
		logger.Warn("Failed to enqueue split job for document %s: %v", doc.ID, err)
	}

	logger.Info("Enqueued split job for %s", processingPath)
	return nil
}

// deriveArtifacts attaches timeline and sensitive-data artifacts to a
// committed-to-be chunk. Best effort: a failing collaborator or save
// never fails the chunk.
func (s *IngestService) deriveArtifacts(ctx context.Context, tx driven.Store, chunk *domain.Chunk) {
	deriveArtifacts(ctx, tx, s.timeline, s.sensitive, chunk)
}

// readStrategy reads the chunking strategy setting, defaulting to
// smart when unset or invalid.
func (s *IngestService) readStrategy(ctx context.Context) chunking.Strategy {
	return readStrategy(ctx, s.store)
}

// enqueueEmbeds sends one embed job per chunk. Called strictly after
// the owning transaction committed; enqueue failures are logged, not
// returned, since the chunks are already durable.
func (s *IngestService) enqueueEmbeds(ctx context.Context, chunkIDs []string) {
	for _, id := range chunkIDs {
		if err := s.queue.Enqueue(ctx, driven.JobEmbedChunk, map[string]any{"chunk_id": id}); err != nil {
			logger.Warn("Failed to enqueue embed job for chunk %s: %v", id, err)
		}
	}
	logger.Info("Enqueued %d embed jobs", len(chunkIDs))
}

// moveToProcessed absorbs a duplicate upload into the holding area so
// the watcher does not pick it up again. currentPath is wherever
// intake left the file; name is the original upload name.
func (s *IngestService) moveToProcessed(currentPath, name, sourceDir string) error {
	processedDir := filepath.Join(sourceDir, processedDirName)
	if err := os.MkdirAll(processedDir, 0o755); err != nil {
		return err
	}
	return moveFile(currentPath, filepath.Join(processedDir, name))
}

// quarantine relocates a failed file (from wherever intake left it)
// into the failed area and appends an error-log line. The original
// intake error is returned, with the quarantine problem attached if
// that failed too.
func (s *IngestService) quarantine(originalPath, currentPath, sourceDir string, cause error) error {
	logger.Warn("Intake failed for %s: %v", originalPath, cause)

	failedDir := filepath.Join(sourceDir, failedDirName)
	if err := os.MkdirAll(failedDir, 0o755); err != nil {
		return fmt.Errorf("%w (quarantine failed: %v)", cause, err)
	}

	if _, statErr := os.Stat(currentPath); statErr == nil {
		if err := moveFile(currentPath, filepath.Join(failedDir, filepath.Base(originalPath))); err != nil {
			return fmt.Errorf("%w (quarantine failed: %v)", cause, err)
		}
	}

	line := fmt.Sprintf("%s - %s - %v\n", time.Now().Format(time.RFC3339), originalPath, cause)
	f, err := os.OpenFile(filepath.Join(failedDir, errorLogName), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err == nil {
		_, _ = f.WriteString(line)
		_ = f.Close()
	}

	return cause
}

// applyMetadata copies extracted metadata onto document fields.
// Message formats map sender to author; office formats carry author
// directly.
func applyMetadata(doc *domain.Document, metadata map[string]string) {
	if metadata == nil {
		return
	}
	if subject := metadata[driven.MetaSubject]; subject != "" {
		doc.Subject = subject
	}
	if from := metadata[driven.MetaFrom]; from != "" {
		doc.Author = from
	} else if author := metadata[driven.MetaAuthor]; author != "" {
		doc.Author = author
	}
	if date := metadata[driven.MetaDate]; date != "" {
		if parsed, err := mail.ParseDate(date); err == nil {
			doc.CreationDate = &parsed
		}
	} else if created := metadata[driven.MetaCreated]; created != "" {
		if parsed, err := time.Parse(time.RFC3339, created); err == nil {
			doc.CreationDate = &parsed
		}
	}
}

// hashFile computes the file's SHA-256 content hash.
func hashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// sanitizeFilename strips characters that are unsafe in stored file
// names, keeping letters, digits, dots, dashes, and underscores.
func sanitizeFilename(name string) string {
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '.' || r == '-' || r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}

// moveFile renames the file, falling back to copy-and-remove across
// filesystems.
func moveFile(src, dst string) error {
	if err := os.Rename(src, dst); err == nil {
		return nil
	}

	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}
	return os.Remove(src)
}
