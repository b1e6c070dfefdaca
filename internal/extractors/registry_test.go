package extractors

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDefault(t *testing.T) {
	r := NewDefault()
	require.NotNil(t, r)

	for _, path := range []string{
		"/data/report.txt",
		"/data/figures.csv",
		"/data/notes.md",
		"/data/mail.eml",
		"/data/mail.emlx",
		"/data/contract.docx",
		"/data/page.html",
		"/data/page.htm",
		"/data/export.json",
		"/data/feed.xml",
	} {
		_, ok := r.ForPath(path)
		assert.True(t, ok, "expected extractor for %s", path)
	}
}

func TestForPath_NonTextNative(t *testing.T) {
	r := NewDefault()

	for _, path := range []string{
		"/data/scan.pdf",
		"/data/photo.jpg",
		"/data/mail.msg",
		"/data/noextension",
	} {
		_, ok := r.ForPath(path)
		assert.False(t, ok, "expected no extractor for %s", path)
	}
}

func TestForPath_CaseInsensitive(t *testing.T) {
	r := NewDefault()

	_, ok := r.ForPath("/data/REPORT.TXT")
	assert.True(t, ok)
}
