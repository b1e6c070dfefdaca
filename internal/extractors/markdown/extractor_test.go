package markdown

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/corpora/internal/core/ports/driven"
)

func writeMD(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "doc.md")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestExtract_ProsePassesThrough(t *testing.T) {
	path := writeMD(t, "# Title\n\nSome paragraph text.\n")

	result, err := New().Extract(context.Background(), path)
	require.NoError(t, err)
	assert.Contains(t, result.Text, "Some paragraph text.")
	assert.Equal(t, "Title", result.Metadata[driven.MetaTitle])
}

func TestExtract_ConvertsPipeTable(t *testing.T) {
	content := "Before table.\n\n| Name | Amount |\n|------|--------|\n| Alice | 100 |\n\nAfter table.\n"
	path := writeMD(t, content)

	result, err := New().Extract(context.Background(), path)
	require.NoError(t, err)

	assert.Contains(t, result.Text, "=== TABLE 1 ===")
	assert.Contains(t, result.Text, "Name | Amount")
	assert.Contains(t, result.Text, "Alice | 100")
	assert.Contains(t, result.Text, "=== END TABLE 1 ===")
	assert.NotContains(t, result.Text, "------")
	assert.Contains(t, result.Text, "Before table.")
	assert.Contains(t, result.Text, "After table.")
}

func TestExtract_TwoTables(t *testing.T) {
	content := "| A | B |\n|---|---|\n| 1 | 2 |\n\ntext\n\n| C | D |\n|---|---|\n| 3 | 4 |\n"
	path := writeMD(t, content)

	result, err := New().Extract(context.Background(), path)
	require.NoError(t, err)
	assert.Contains(t, result.Text, "=== TABLE 1 ===")
	assert.Contains(t, result.Text, "=== TABLE 2 ===")
	assert.Contains(t, result.Text, "=== END TABLE 2 ===")
}

func TestExtract_TableAtEndOfFile(t *testing.T) {
	path := writeMD(t, "intro\n\n| H1 | H2 |\n|----|----|\n| v1 | v2 |")

	result, err := New().Extract(context.Background(), path)
	require.NoError(t, err)
	assert.Contains(t, result.Text, "=== END TABLE 1 ===")
}

func TestExtract_NoTitle(t *testing.T) {
	path := writeMD(t, "plain body only\n")

	result, err := New().Extract(context.Background(), path)
	require.NoError(t, err)
	assert.NotContains(t, result.Metadata, driven.MetaTitle)
}
