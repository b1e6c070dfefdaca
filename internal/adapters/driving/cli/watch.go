package cli

import (
	"errors"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/corpora/internal/core/ports/driven"
	"github.com/custodia-labs/corpora/internal/logger"
)

// watchSettle is how long a file must stay quiet before it is
// enqueued. Uploads arrive as a burst of write events; enqueueing on
// the first one would ingest a half-written file.
const watchSettle = 500 * time.Millisecond

var watchCmd = &cobra.Command{
	Use:   "watch <dir>",
	Short: "Watch a directory and enqueue new files for ingestion",
	Long: `Watch an intake directory and enqueue an ingest job for every
file that appears. The job is durable: ingestion happens in whatever
worker picks it up, so the watcher itself stays trivial.`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	if jobQueue == nil {
		return errors.New("job queue not configured")
	}

	dir := args[0]

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	if err := watcher.Add(dir); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cmd.Printf("Watching %s, press Ctrl-C to stop\n", dir)

	var mu sync.Mutex
	pending := make(map[string]*time.Timer)

	enqueue := func(path string) {
		mu.Lock()
		delete(pending, path)
		mu.Unlock()

		if err := jobQueue.Enqueue(ctx, driven.JobIngestFile, map[string]any{"path": path}); err != nil {
			logger.Warn("Failed to enqueue %s: %v", path, err)
			return
		}
		logger.Info("Enqueued ingest job for %s", path)
	}

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
				continue
			}
			if !ingestCandidate(event.Name) {
				continue
			}

			// Restart the settle timer on every event for the path.
			mu.Lock()
			if timer, ok := pending[event.Name]; ok {
				timer.Stop()
			}
			path := event.Name
			pending[path] = time.AfterFunc(watchSettle, func() { enqueue(path) })
			mu.Unlock()

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("Watcher error: %v", err)
		}
	}
}

// ingestCandidate reports whether a watched path should be enqueued.
// Intake creates processed/ and failed/ inside the watched directory;
// their Create events must not become ingest jobs, so only regular
// non-dotfile paths qualify.
func ingestCandidate(path string) bool {
	if strings.HasPrefix(filepath.Base(path), ".") {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
