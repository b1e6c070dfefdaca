package chunking

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/custodia-labs/corpora/internal/core/ports/driven"
	"github.com/custodia-labs/corpora/internal/logger"
)

// Agentic request parameters.
const (
	// agenticContextLimit caps how much source text goes into the prompt.
	agenticContextLimit = 2000

	agenticMaxTokens   = 1000
	agenticTemperature = 0.2
)

// Responses containing these substrings mean the local backend is not
// actually serving a model.
var unavailableSentinels = []string{"[LM Studio", "Error:"}

// breakPointResponse is the JSON shape requested from the LLM.
type breakPointResponse struct {
	BreakPoints []int  `json:"break_points"`
	Reasoning   string `json:"reasoning"`
}

// AgenticChunk asks the LLM for semantic break points and slices text
// at them. Any failure anywhere in the flow falls back to SmartChunk:
// this function never returns an error and never panics its way out.
func AgenticChunk(ctx context.Context, llm driven.LLMService, text string, cfg Config) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	if llm == nil {
		logger.Warn("No LLM configured for agentic chunking, falling back to smart chunking")
		return SmartChunk(text, cfg)
	}

	response, err := llm.Chat(ctx, []driven.ChatMessage{
		{Role: "user", Content: buildBreakPointPrompt(text, cfg.MaxChunkSize)},
	}, driven.ChatOptions{
		MaxTokens:   agenticMaxTokens,
		Temperature: agenticTemperature,
		JSONMode:    true,
		BypassCache: true,
	})
	if err != nil || response == "" || containsSentinel(response) {
		logger.Warn("LLM not available for agentic chunking, falling back to smart chunking")
		return SmartChunk(text, cfg)
	}

	var parsed breakPointResponse
	if err := json.Unmarshal([]byte(stripCodeFence(response)), &parsed); err != nil {
		logger.Warn("Failed to parse LLM break-point response: %v", err)
		return SmartChunk(text, cfg)
	}

	if parsed.Reasoning != "" {
		logger.Info("LLM chunking reasoning: %s", parsed.Reasoning)
	}

	// Keep break points inside [0, len(text)] and in order.
	points := parsed.BreakPoints[:0]
	for _, bp := range parsed.BreakPoints {
		if bp >= 0 && bp <= len(text) {
			points = append(points, bp)
		}
	}
	sort.Ints(points)

	if len(points) == 0 {
		logger.Warn("No valid break points from LLM, falling back to smart chunking")
		return SmartChunk(text, cfg)
	}

	var chunks []string
	for i, start := range points {
		end := len(text)
		if i+1 < len(points) {
			end = points[i+1]
		}
		if c := strings.TrimSpace(text[start:end]); c != "" {
			chunks = append(chunks, c)
		}
	}

	// Enforce size bounds on the LLM's choices: oversized chunks are
	// re-segmented deterministically, undersized ones merge backward.
	var valid []string
	for _, chunk := range chunks {
		switch {
		case len(chunk) > cfg.MaxChunkSize:
			logger.Debug("LLM chunk too large (%d chars), re-splitting", len(chunk))
			valid = append(valid, SmartChunk(chunk, cfg)...)
		case len(chunk) < cfg.MinChunkSize && len(valid) > 0:
			logger.Debug("LLM chunk too small (%d chars), merging with previous", len(chunk))
			valid[len(valid)-1] = valid[len(valid)-1] + "\n\n" + chunk
		default:
			valid = append(valid, chunk)
		}
	}

	logger.Info("Agentic chunking created %d chunks from %d characters", len(valid), len(text))
	return valid
}

// buildBreakPointPrompt prepares the break-point request, truncating
// the source text to keep the prompt bounded.
func buildBreakPointPrompt(text string, maxChunkSize int) string {
	excerpt := text
	truncated := ""
	if len(text) > agenticContextLimit {
		excerpt = text[:agenticContextLimit]
		truncated = "... (truncated)"
	}

	return fmt.Sprintf(`Analyze the following text and identify optimal semantic break points for chunking.

The goal is to split this text into chunks of approximately %d characters each,
while preserving semantic meaning and avoiding breaks in the middle of important concepts.

Return a JSON array of character positions where breaks should occur.
Only include positions that make semantic sense (topic changes, section boundaries, etc.).

Example response format:
{
    "break_points": [0, 450, 920, 1400],
    "reasoning": "Brief explanation of why these break points were chosen"
}

Text to analyze:
%s%s

Total text length: %d characters

Respond with ONLY valid JSON, no additional commentary.`, maxChunkSize, excerpt, truncated, len(text))
}

func containsSentinel(response string) bool {
	for _, s := range unavailableSentinels {
		if strings.Contains(response, s) {
			return true
		}
	}
	return false
}

// stripCodeFence removes Markdown code-fence wrapping from a response.
func stripCodeFence(response string) string {
	cleaned := strings.TrimSpace(response)
	if idx := strings.Index(cleaned, "```json"); idx != -1 {
		cleaned = cleaned[idx+len("```json"):]
		if end := strings.Index(cleaned, "```"); end != -1 {
			cleaned = cleaned[:end]
		}
	} else if strings.Contains(cleaned, "```") {
		parts := strings.Split(cleaned, "```")
		if len(parts) > 1 {
			cleaned = parts[1]
		}
	}
	return strings.TrimSpace(cleaned)
}
