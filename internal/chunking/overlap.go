package chunking

// overlapSeparator joins injected neighbour context to chunk text.
const overlapSeparator = " ... "

// WithOverlap prefixes each chunk with the trailing overlap characters
// of its predecessor and suffixes it with the leading overlap
// characters of its successor. First and last chunks receive only one
// side. Chunk count and order never change. Runs on restored,
// human-readable text; overlap <= 0 is a no-op.
func WithOverlap(chunks []string, overlap int) []string {
	if len(chunks) == 0 || overlap <= 0 {
		return chunks
	}

	out := make([]string, len(chunks))
	for i, chunk := range chunks {
		enhanced := chunk

		if i > 0 {
			prev := chunks[i-1]
			suffix := prev
			if len(prev) >= overlap {
				suffix = prev[len(prev)-overlap:]
			}
			enhanced = suffix + overlapSeparator + enhanced
		}

		if i < len(chunks)-1 {
			next := chunks[i+1]
			prefix := next
			if len(next) >= overlap {
				prefix = next[:overlap]
			}
			enhanced = enhanced + overlapSeparator + prefix
		}

		out[i] = enhanced
	}

	return out
}
