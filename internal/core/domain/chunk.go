package domain

// ChunkNamespaceSize is the index namespace reserved for each MiniDoc.
// A MiniDoc starting at page P owns global indices
// [P*ChunkNamespaceSize, (P+1)*ChunkNamespaceSize).
const ChunkNamespaceSize = 1_000_000

// Chunk is a bounded span of text belonging to a Document. Chunks are
// immutable once created and are never updated in place.
type Chunk struct {
	// ID is the unique identifier for the chunk.
	ID string

	// DocumentID links to the owning Document.
	DocumentID string

	// Text is the chunk content, after pattern restoration and
	// overlap injection.
	Text string

	// Index is the global chunk index: unique within the document
	// and monotonic in document position across MiniDocs.
	Index int64
}

// GlobalChunkIndex computes a document-unique chunk position from a
// MiniDoc's starting page and a local in-MiniDoc sequence number.
//
// Because MiniDoc page ranges within a document are disjoint and each
// range owns the full namespace of its starting page, independently
// scheduled workers can assign indices with no shared counter and no
// collisions. A MiniDoc producing ChunkNamespaceSize or more chunks is
// outside the design envelope and must fail loudly rather than wrap
// into a neighbouring namespace.
func GlobalChunkIndex(pageStart, localSeq int) (int64, error) {
	if pageStart < 1 {
		return 0, ErrInvalidInput
	}
	if localSeq < 0 || localSeq >= ChunkNamespaceSize {
		return 0, ErrChunkNamespaceExhausted
	}
	return int64(pageStart)*ChunkNamespaceSize + int64(localSeq), nil
}
