package eml

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/corpora/internal/core/domain"
	"github.com/custodia-labs/corpora/internal/core/ports/driven"
)

const simpleEmail = `From: sender@example.com
To: recipient@example.com
Cc: copy@example.com
Subject: Quarterly Review
Date: Mon, 01 Jan 2024 10:00:00 +0000
Message-Id: <abc123@example.com>
Content-Type: text/plain

This is the body of the email.
It has multiple lines.
`

func writeEML(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "mail.eml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestExtract_SimpleEmail(t *testing.T) {
	result, err := New().Extract(context.Background(), writeEML(t, simpleEmail))
	require.NoError(t, err)

	assert.Equal(t, "Quarterly Review", result.Metadata[driven.MetaSubject])
	assert.Equal(t, "sender@example.com", result.Metadata[driven.MetaFrom])
	assert.Equal(t, "recipient@example.com", result.Metadata[driven.MetaTo])
	assert.Equal(t, "copy@example.com", result.Metadata[driven.MetaCC])
	assert.Equal(t, "<abc123@example.com>", result.Metadata[driven.MetaMessageID])

	// Headers are part of the searchable text.
	assert.Contains(t, result.Text, "Subject: Quarterly Review")
	assert.Contains(t, result.Text, "From: sender@example.com")
	assert.Contains(t, result.Text, "This is the body of the email.")
}

func TestExtract_MultipartPrefersPlainText(t *testing.T) {
	email := `From: a@example.com
To: b@example.com
Subject: Multipart
Content-Type: multipart/alternative; boundary="BOUNDARY"

--BOUNDARY
Content-Type: text/plain

Plain version of the body.
--BOUNDARY
Content-Type: text/html

<html><body><p>HTML version of the body.</p></body></html>
--BOUNDARY--
`
	result, err := New().Extract(context.Background(), writeEML(t, email))
	require.NoError(t, err)
	assert.Contains(t, result.Text, "Plain version of the body.")
	assert.NotContains(t, result.Text, "<p>")
}

func TestExtract_HTMLBodyIsStripped(t *testing.T) {
	email := `From: a@example.com
Subject: HTML Mail
Content-Type: text/html

<html><body><h1>Heading</h1><p>Paragraph text.</p></body></html>
`
	result, err := New().Extract(context.Background(), writeEML(t, email))
	require.NoError(t, err)
	assert.Contains(t, result.Text, "Heading")
	assert.Contains(t, result.Text, "Paragraph text.")
	assert.NotContains(t, result.Text, "<h1>")
}

func TestExtract_EncodedSubject(t *testing.T) {
	email := "From: a@example.com\nSubject: =?UTF-8?Q?Caf=C3=A9_Meeting?=\nContent-Type: text/plain\n\nbody\n"

	result, err := New().Extract(context.Background(), writeEML(t, email))
	require.NoError(t, err)
	assert.Equal(t, "Café Meeting", result.Metadata[driven.MetaSubject])
}

func TestExtract_NotAnEmail(t *testing.T) {
	_, err := ExtractMessage([]byte(""))
	assert.ErrorIs(t, err, domain.ErrExtractionFailed)
}
