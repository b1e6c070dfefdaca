package extractors

import (
	"path/filepath"
	"strings"

	"github.com/custodia-labs/corpora/internal/core/ports/driven"
	"github.com/custodia-labs/corpora/internal/extractors/csvfile"
	"github.com/custodia-labs/corpora/internal/extractors/docx"
	"github.com/custodia-labs/corpora/internal/extractors/eml"
	"github.com/custodia-labs/corpora/internal/extractors/emlx"
	"github.com/custodia-labs/corpora/internal/extractors/html"
	"github.com/custodia-labs/corpora/internal/extractors/markdown"
	"github.com/custodia-labs/corpora/internal/extractors/plaintext"
)

// Ensure Registry implements the interface.
var _ driven.ExtractorRegistry = (*Registry)(nil)

// Registry maps file extensions to their text extractors.
type Registry struct {
	byExt map[string]driven.TextExtractor
}

// New creates a registry over the given extractors. Later extractors
// win extension conflicts.
func New(extractors ...driven.TextExtractor) *Registry {
	r := &Registry{byExt: make(map[string]driven.TextExtractor)}
	for _, e := range extractors {
		for _, ext := range e.SupportedExtensions() {
			r.byExt[strings.ToLower(ext)] = e
		}
	}
	return r
}

// NewDefault creates a registry with every built-in extractor.
func NewDefault() *Registry {
	return New(
		plaintext.New(),
		csvfile.New(),
		markdown.New(),
		eml.New(),
		emlx.New(),
		docx.New(),
		html.New(),
	)
}

// ForPath returns the extractor for the path's extension, or false
// when the format is not text-native.
func (r *Registry) ForPath(path string) (driven.TextExtractor, bool) {
	ext := strings.ToLower(filepath.Ext(path))
	e, ok := r.byExt[ext]
	return e, ok
}
