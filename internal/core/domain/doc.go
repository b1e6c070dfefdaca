// Package domain defines the core business entities for corpora.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Document: A physical file identified by its content hash
//   - MiniDoc: A contiguous page range of a Document, the unit of parallel parsing
//   - Chunk: A retrieval-sized span of document text
//   - ExtractedTable: A rendered table tied to a Document page
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
