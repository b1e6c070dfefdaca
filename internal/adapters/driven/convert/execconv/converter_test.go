package execconv

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeSoffice writes a shell script that mimics soffice's CLI contract:
// last argument is the input file, output lands in --outdir named after
// the input with a .pdf extension.
func fakeSoffice(t *testing.T, script string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("fake soffice script requires a POSIX shell")
	}

	path := filepath.Join(t.TempDir(), "soffice")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+script), 0o755))
	return path
}

func TestConvertToPDF_Success(t *testing.T) {
	outDir := t.TempDir()
	binary := fakeSoffice(t, `
# args: --headless --norestore --convert-to pdf --outdir <dir> <input>
outdir=$6
input=$7
base=$(basename "$input")
cp "$input" "$outdir/${base%.*}.pdf"
`)

	srcDir := t.TempDir()
	input := filepath.Join(srcDir, "slides.pptx")
	require.NoError(t, os.WriteFile(input, []byte("fake pptx"), 0o644))

	conv := New(Config{Binary: binary, OutDir: outDir})
	output, err := conv.ConvertToPDF(context.Background(), input)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(outDir, "slides.pdf"), output)
	assert.FileExists(t, output)
}

func TestConvertToPDF_BinaryFailure(t *testing.T) {
	binary := fakeSoffice(t, `echo "could not load document" >&2; exit 1`)

	srcDir := t.TempDir()
	input := filepath.Join(srcDir, "broken.doc")
	require.NoError(t, os.WriteFile(input, []byte("x"), 0o644))

	conv := New(Config{Binary: binary})
	_, err := conv.ConvertToPDF(context.Background(), input)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "could not load document")
}

func TestConvertToPDF_NoOutputProduced(t *testing.T) {
	binary := fakeSoffice(t, `exit 0`) // succeeds but writes nothing

	srcDir := t.TempDir()
	input := filepath.Join(srcDir, "empty.odt")
	require.NoError(t, os.WriteFile(input, []byte("x"), 0o644))

	conv := New(Config{Binary: binary, OutDir: t.TempDir()})
	_, err := conv.ConvertToPDF(context.Background(), input)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no output")
}
