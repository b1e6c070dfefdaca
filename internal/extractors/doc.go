// Package extractors provides the registry of direct text extractors.
//
// Each subpackage handles one family of text-native formats (plain
// text, CSV, Markdown, email containers, DOCX, HTML) and produces
// plain text with tables rendered as marker-delimited blocks. Formats
// with no extractor here take the conversion and OCR route instead.
package extractors
