package chunking

import (
	"context"

	"github.com/custodia-labs/corpora/internal/core/ports/driven"
	"github.com/custodia-labs/corpora/internal/logger"
)

// Engine chunks text with a per-call strategy. The strategy is chosen
// by the caller once per job from runtime settings, keeping the engine
// itself free of global state.
type Engine struct {
	llm driven.LLMService
}

// NewEngine creates a chunking engine. llm may be nil, in which case
// the agentic strategy always degrades to the smart strategy.
func NewEngine(llm driven.LLMService) *Engine {
	return &Engine{llm: llm}
}

// Chunk splits text using the given strategy and injects boundary
// overlap. Unknown strategies chunk deterministically.
func (e *Engine) Chunk(ctx context.Context, text string, cfg Config, strategy Strategy) []string {
	var chunks []string

	switch strategy {
	case StrategyAgentic:
		chunks = AgenticChunk(ctx, e.llm, text, cfg)
	case StrategySmart:
		chunks = SmartChunk(text, cfg)
	default:
		logger.Warn("Unknown chunking strategy %q, using smart", strategy)
		chunks = SmartChunk(text, cfg)
	}

	logger.Info("Chunking (%s) created %d chunks from %d characters", strategy, len(chunks), len(text))

	return WithOverlap(chunks, cfg.Overlap)
}
