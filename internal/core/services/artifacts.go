package services

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/custodia-labs/corpora/internal/chunking"
	"github.com/custodia-labs/corpora/internal/core/domain"
	"github.com/custodia-labs/corpora/internal/core/ports/driven"
	"github.com/custodia-labs/corpora/internal/logger"
)

// deriveArtifacts attaches timeline and sensitive-data artifacts to a
// chunk inside its owning transaction. Best effort: a failure in a
// collaborator or a save is logged and the chunk persists without
// that artifact.
func deriveArtifacts(
	ctx context.Context,
	tx driven.Store,
	timeline driven.TimelineExtractor,
	sensitive driven.SensitiveDetector,
	chunk *domain.Chunk,
) {
	if timeline != nil {
		mentions, events, err := timeline.Extract(ctx, chunk.Text, chunk.ID, chunk.DocumentID)
		if err != nil {
			logger.Warn("Timeline extraction failed for chunk %s: %v", chunk.ID, err)
		} else {
			for i := range mentions {
				if err := tx.Artifacts().SaveDateMention(ctx, &mentions[i]); err != nil {
					logger.Warn("Failed to save date mention for chunk %s: %v", chunk.ID, err)
				}
			}
			for i := range events {
				if err := tx.Artifacts().SaveTimelineEvent(ctx, &events[i]); err != nil {
					logger.Warn("Failed to save timeline event for chunk %s: %v", chunk.ID, err)
				}
			}
			if len(mentions) > 0 || len(events) > 0 {
				logger.Debug("Extracted %d date mentions and %d events from chunk %s", len(mentions), len(events), chunk.ID)
			}
		}
	}

	if sensitive != nil {
		matches, err := sensitive.Detect(ctx, chunk.Text)
		if err != nil {
			logger.Warn("Sensitive data detection failed for chunk %s: %v", chunk.ID, err)
			return
		}
		for i := range matches {
			matches[i].ID = uuid.New().String()
			matches[i].ChunkID = chunk.ID
			matches[i].DocumentID = chunk.DocumentID
			if err := tx.Artifacts().SaveSensitiveMatch(ctx, &matches[i]); err != nil {
				logger.Warn("Failed to save sensitive match for chunk %s: %v", chunk.ID, err)
			}
		}
		if len(matches) > 0 {
			logger.Debug("Detected %d sensitive pattern(s) in chunk %s", len(matches), chunk.ID)
		}
	}
}

// readStrategy reads the runtime chunking strategy once per job,
// defaulting to smart when unset or invalid.
func readStrategy(ctx context.Context, store driven.Store) chunking.Strategy {
	value, err := store.Settings().Get(ctx, domain.SettingChunkingStrategy)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			logger.Warn("Could not read chunking strategy: %v", err)
		}
		return chunking.StrategySmart
	}

	strategy := chunking.Strategy(value)
	if !strategy.IsValid() {
		logger.Warn("Unknown chunking strategy %q, using smart", value)
		return chunking.StrategySmart
	}
	return strategy
}
