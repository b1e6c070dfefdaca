// Package execconv converts office and image files to PDF by shelling
// out to LibreOffice. The OCR pipeline only understands PDF, so every
// non-text-native format passes through here first.
package execconv

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/custodia-labs/corpora/internal/core/ports/driven"
	"github.com/custodia-labs/corpora/internal/logger"
)

// Ensure Converter implements the interface.
var _ driven.Converter = (*Converter)(nil)

// DefaultTimeout bounds a single conversion. LibreOffice occasionally
// hangs on malformed input; the context kills it.
const DefaultTimeout = 2 * time.Minute

// Config holds converter configuration.
type Config struct {
	// Binary is the LibreOffice executable (default: "soffice").
	Binary string

	// OutDir is where converted PDFs land (default: the source file's
	// directory).
	OutDir string

	// Timeout bounds a single conversion (default: 2m).
	Timeout time.Duration
}

// Converter renders files to PDF via the soffice CLI.
type Converter struct {
	binary  string
	outDir  string
	timeout time.Duration
}

// New creates a LibreOffice-backed converter.
func New(cfg Config) *Converter {
	if cfg.Binary == "" {
		cfg.Binary = "soffice"
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	return &Converter{
		binary:  cfg.Binary,
		outDir:  cfg.OutDir,
		timeout: cfg.Timeout,
	}
}

// ConvertToPDF converts the file and returns the output path.
func (c *Converter) ConvertToPDF(ctx context.Context, path string) (string, error) {
	outDir := c.outDir
	if outDir == "" {
		outDir = filepath.Dir(path)
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return "", fmt.Errorf("creating output directory: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, c.binary,
		"--headless", "--norestore",
		"--convert-to", "pdf",
		"--outdir", outDir,
		path)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	logger.Info("Converting %s to PDF", filepath.Base(path))
	if err := cmd.Run(); err != nil {
		if stderr.Len() > 0 {
			return "", fmt.Errorf("%s: %w: %s", c.binary, err, strings.TrimSpace(stderr.String()))
		}
		return "", fmt.Errorf("%s: %w", c.binary, err)
	}

	// soffice names the output after the input, with a .pdf extension.
	base := filepath.Base(path)
	output := filepath.Join(outDir, strings.TrimSuffix(base, filepath.Ext(base))+".pdf")
	if _, err := os.Stat(output); err != nil {
		return "", fmt.Errorf("conversion produced no output at %s: %w", output, err)
	}

	return output, nil
}
