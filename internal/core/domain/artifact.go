package domain

import "time"

// Derived per-chunk artifacts. Zero or more records exist per Chunk,
// produced by best-effort collaborators; their absence is never an
// error condition for the chunk itself. The chunk anchors them but
// does not own their lifecycle.

// DateMention is a raw date reference found in chunk text.
type DateMention struct {
	// ID is the unique identifier for the mention.
	ID string

	// ChunkID and DocumentID anchor the mention.
	ChunkID    string
	DocumentID string

	// MentionText is the matched substring.
	MentionText string

	// ParsedDate is the resolved date, when parseable.
	ParsedDate *time.Time

	// StartPos and EndPos are byte offsets into the chunk text.
	StartPos int
	EndPos   int
}

// TimelineEvent is a dated event derived from chunk text.
type TimelineEvent struct {
	// ID is the unique identifier for the event.
	ID string

	// ChunkID and DocumentID anchor the event.
	ChunkID    string
	DocumentID string

	// EventDate is when the event occurred.
	EventDate time.Time

	// Description is the surrounding sentence or phrase.
	Description string
}

// SensitiveMatch is a sensitive-data pattern hit in chunk text.
type SensitiveMatch struct {
	// ID is the unique identifier for the match.
	ID string

	// ChunkID and DocumentID anchor the match.
	ChunkID    string
	DocumentID string

	// PatternType names the pattern ("ssn", "credit_card", ...).
	PatternType string

	// MatchText is the matched substring.
	MatchText string

	// Confidence is the detector's confidence in [0, 1].
	Confidence float64

	// StartPos and EndPos are byte offsets into the chunk text.
	StartPos int
	EndPos   int

	// ContextBefore and ContextAfter are the surrounding text windows.
	ContextBefore string
	ContextAfter  string
}
