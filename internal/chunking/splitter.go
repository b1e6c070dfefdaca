package chunking

import (
	"regexp"
	"strings"
)

var paragraphSep = regexp.MustCompile(`\n\n+`)

// splitParagraphs splits text on blank-line boundaries, dropping
// whitespace-only paragraphs.
func splitParagraphs(text string) []string {
	parts := paragraphSep.Split(text, -1)
	paragraphs := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			paragraphs = append(paragraphs, trimmed)
		}
	}
	return paragraphs
}

// splitSentences splits text on sentence boundaries: terminal
// punctuation followed by whitespace and an upper-case letter.
func splitSentences(text string) []string {
	var sentences []string
	start := 0

	for i := 0; i < len(text); i++ {
		c := text[i]
		if c != '.' && c != '!' && c != '?' {
			continue
		}
		j := i + 1
		for j < len(text) && isSpace(text[j]) {
			j++
		}
		if j == i+1 || j >= len(text) || text[j] < 'A' || text[j] > 'Z' {
			continue
		}
		if s := strings.TrimSpace(text[start : i+1]); s != "" {
			sentences = append(sentences, s)
		}
		start = j
		i = j - 1
	}

	if s := strings.TrimSpace(text[start:]); s != "" {
		sentences = append(sentences, s)
	}
	return sentences
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

// splitCharacters slices text into fixed-width chunks. Last resort,
// no semantic awareness, except that placeholder tokens are never cut
// in half: a slice boundary landing inside one moves to the token
// edge, so a protected span survives even when it alone exceeds
// maxSize.
func splitCharacters(text string, maxSize int) []string {
	var chunks []string
	for len(text) > 0 {
		if len(text) <= maxSize {
			chunks = append(chunks, text)
			break
		}
		cut := maxSize
		for _, loc := range placeholderPattern.FindAllStringIndex(text, -1) {
			if loc[0] >= cut {
				break
			}
			if loc[1] > cut {
				if loc[0] == 0 {
					cut = loc[1]
				} else {
					cut = loc[0]
				}
				break
			}
		}
		chunks = append(chunks, text[:cut])
		text = text[cut:]
	}
	return chunks
}

// mergeSmallChunks concatenates chunks shorter than minSize forward
// into their successor, separated by a blank line. A trailing
// undersized chunk merges backward into the last accepted chunk; a
// single tiny document stays as one chunk.
func mergeSmallChunks(chunks []string, minSize int) []string {
	if len(chunks) == 0 {
		return nil
	}

	var merged []string
	current := chunks[0]

	for _, next := range chunks[1:] {
		if len(current) < minSize {
			current = current + "\n\n" + next
		} else {
			merged = append(merged, current)
			current = next
		}
	}

	if current != "" {
		if len(current) < minSize && len(merged) > 0 {
			merged[len(merged)-1] = merged[len(merged)-1] + "\n\n" + current
		} else {
			merged = append(merged, current)
		}
	}

	return merged
}

// recursiveSplit chunks text using the paragraph -> sentence ->
// character cascade, then merges undersized chunks.
func recursiveSplit(text string, maxSize, minSize int) []string {
	var chunks []string

	for _, para := range splitParagraphs(text) {
		if len(para) <= maxSize {
			chunks = append(chunks, para)
			continue
		}

		// Paragraph too large: pack sentences greedily.
		var current string
		for _, sentence := range splitSentences(para) {
			switch {
			case len(sentence) > maxSize:
				// Single oversized sentence: flush buffer, then
				// character-slice the sentence.
				if current != "" {
					chunks = append(chunks, current)
					current = ""
				}
				chunks = append(chunks, splitCharacters(sentence, maxSize)...)
			case len(current)+len(sentence)+1 <= maxSize:
				if current != "" {
					current += " " + sentence
				} else {
					current = sentence
				}
			default:
				if current != "" {
					chunks = append(chunks, current)
				}
				current = sentence
			}
		}
		if current != "" {
			chunks = append(chunks, current)
		}
	}

	return mergeSmallChunks(chunks, minSize)
}

// SmartChunk deterministically chunks text: protect patterns, split
// recursively, restore patterns. Empty or whitespace-only input yields
// no chunks.
func SmartChunk(text string, cfg Config) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	g := newGuard()
	if cfg.ProtectPatterns {
		text = g.protect(text)
	}

	chunks := recursiveSplit(text, cfg.MaxChunkSize, cfg.MinChunkSize)

	if cfg.ProtectPatterns && g.count() > 0 {
		for i, c := range chunks {
			chunks[i] = g.restore(c)
		}
	}

	return chunks
}
