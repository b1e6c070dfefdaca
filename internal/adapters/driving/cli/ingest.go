package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
)

var ingestProjectID string

var ingestCmd = &cobra.Command{
	Use:   "ingest <path>...",
	Short: "Ingest files into the corpus",
	Long: `Ingest one or more files, or every file in a directory.

Duplicate files (by content hash) are absorbed silently. Files that
fail intake are moved to a failed/ directory next to their source,
with a line appended to failed/errors.log.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().StringVar(&ingestProjectID, "project", "",
		"associate ingested documents with a project ID")
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	if ingestService == nil {
		return errors.New("ingest service not configured")
	}

	var projectID *string
	if ingestProjectID != "" {
		projectID = &ingestProjectID
	}

	paths, err := expandPaths(args)
	if err != nil {
		return err
	}
	if len(paths) == 0 {
		return errors.New("no files to ingest")
	}

	var failed int
	for _, path := range paths {
		if err := ingestService.IngestFile(cmd.Context(), path, projectID); err != nil {
			cmd.PrintErrf("failed: %s: %v\n", path, err)
			failed++
			continue
		}
		cmd.Printf("ingested: %s\n", path)
	}

	cmd.Printf("%d ingested, %d failed\n", len(paths)-failed, failed)
	if failed > 0 {
		return fmt.Errorf("%d file(s) failed intake", failed)
	}
	return nil
}

// expandPaths resolves directories to their regular files (one level,
// skipping dotfiles and the processed/failed holding areas).
func expandPaths(args []string) ([]string, error) {
	var paths []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, err
		}

		if !info.IsDir() {
			paths = append(paths, arg)
			continue
		}

		entries, err := os.ReadDir(arg)
		if err != nil {
			return nil, err
		}
		for _, entry := range entries {
			if entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
				continue
			}
			paths = append(paths, filepath.Join(arg, entry.Name()))
		}
	}
	return paths, nil
}
