// Package timeline extracts date mentions and timeline events from
// chunk text. Extraction is best effort; a chunk with no recognisable
// dates simply yields nothing.
package timeline

import (
	"context"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/corpora/internal/core/domain"
	"github.com/custodia-labs/corpora/internal/core/ports/driven"
)

// Ensure Extractor implements the interface.
var _ driven.TimelineExtractor = (*Extractor)(nil)

// Extractor finds dates with regular expressions and parses the ones
// it can. Mentions record every hit; events are built only from
// mentions whose date parsed.
type Extractor struct{}

// New creates a new timeline extractor.
func New() *Extractor {
	return &Extractor{}
}

// datePattern pairs a regex with the time layouts its matches may use.
type datePattern struct {
	re      *regexp.Regexp
	layouts []string
}

var datePatterns = []datePattern{
	// ISO: 2024-03-15
	{regexp.MustCompile(`\b\d{4}-\d{2}-\d{2}\b`), []string{"2006-01-02"}},

	// Slashed: 15/03/2024 or 3/15/2024
	{regexp.MustCompile(`\b\d{1,2}/\d{1,2}/\d{4}\b`), []string{"01/02/2006", "1/2/2006", "02/01/2006", "2/1/2006"}},

	// Written month first: March 15, 2024
	{regexp.MustCompile(`\b(?:January|February|March|April|May|June|July|August|September|October|November|December)\s+\d{1,2},?\s+\d{4}\b`), []string{"January 2, 2006", "January 2 2006"}},

	// Written day first: 15 March 2024
	{regexp.MustCompile(`\b\d{1,2}\s+(?:January|February|March|April|May|June|July|August|September|October|November|December)\s+\d{4}\b`), []string{"2 January 2006"}},
}

// contextWindow bounds how much surrounding text an event description
// carries.
const contextWindow = 120

// Extract scans the chunk for date mentions and derives an event for
// each parseable date.
func (e *Extractor) Extract(_ context.Context, chunkText, chunkID, documentID string) ([]domain.DateMention, []domain.TimelineEvent, error) {
	var mentions []domain.DateMention
	var events []domain.TimelineEvent

	seen := map[int]bool{}

	for _, p := range datePatterns {
		for _, loc := range p.re.FindAllStringIndex(chunkText, -1) {
			if seen[loc[0]] {
				continue
			}
			seen[loc[0]] = true

			text := chunkText[loc[0]:loc[1]]
			parsed := parseDate(text, p.layouts)

			mentions = append(mentions, domain.DateMention{
				ID:          uuid.New().String(),
				ChunkID:     chunkID,
				DocumentID:  documentID,
				MentionText: text,
				ParsedDate:  parsed,
				StartPos:    loc[0],
				EndPos:      loc[1],
			})

			if parsed != nil {
				events = append(events, domain.TimelineEvent{
					ID:          uuid.New().String(),
					ChunkID:     chunkID,
					DocumentID:  documentID,
					EventDate:   *parsed,
					Description: describe(chunkText, loc[0], loc[1]),
				})
			}
		}
	}

	return mentions, events, nil
}

// parseDate tries each layout in order and returns the first success.
func parseDate(text string, layouts []string) *time.Time {
	for _, layout := range layouts {
		if parsed, err := time.Parse(layout, text); err == nil {
			return &parsed
		}
	}
	return nil
}

// describe returns the text surrounding a date mention, clipped to the
// context window and to whole words where possible.
func describe(text string, start, end int) string {
	from := start - contextWindow/2
	if from < 0 {
		from = 0
	}
	to := end + contextWindow/2
	if to > len(text) {
		to = len(text)
	}
	return strings.TrimSpace(strings.Join(strings.Fields(text[from:to]), " "))
}
