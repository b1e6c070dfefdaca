package driven

import (
	"context"

	"github.com/custodia-labs/corpora/internal/core/domain"
)

// TimelineExtractor derives date mentions and timeline events from
// chunk text. Best-effort: failures are logged by the caller and never
// invalidate the chunk.
type TimelineExtractor interface {
	// Extract scans chunk text for date references.
	Extract(ctx context.Context, chunkText, chunkID, documentID string) ([]domain.DateMention, []domain.TimelineEvent, error)
}

// SensitiveDetector finds sensitive-data patterns in chunk text.
// Best-effort, same contract as TimelineExtractor.
type SensitiveDetector interface {
	// Detect scans chunk text for sensitive patterns.
	Detect(ctx context.Context, chunkText string) ([]domain.SensitiveMatch, error)
}
