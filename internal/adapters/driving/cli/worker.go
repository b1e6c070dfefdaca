package cli

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/corpora/internal/core/ports/driven"
	"github.com/custodia-labs/corpora/internal/logger"
)

var workerConcurrency int

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Run pipeline workers",
	Long: `Consume intake and parse jobs from the queue until interrupted.

Each worker dequeues one job at a time, processes it, and acknowledges
it on success. Failed jobs are left unacknowledged and are redelivered
when their lease expires, so handlers are written to be idempotent.`,
	RunE: runWorker,
}

func init() {
	workerCmd.Flags().IntVar(&workerConcurrency, "concurrency", 2,
		"number of concurrent workers")
	rootCmd.AddCommand(workerCmd)
}

func runWorker(cmd *cobra.Command, _ []string) error {
	if ingestService == nil || parseService == nil || jobQueue == nil {
		return errors.New("worker services not configured")
	}
	if workerConcurrency < 1 {
		return errors.New("concurrency must be at least 1")
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cmd.Printf("Starting %d worker(s), press Ctrl-C to stop\n", workerConcurrency)

	var wg sync.WaitGroup
	for i := 0; i < workerConcurrency; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			workerLoop(ctx, id)
		}(i)
	}
	wg.Wait()

	cmd.Println("Workers stopped")
	return nil
}

// workerLoop dequeues and dispatches jobs until ctx is cancelled.
func workerLoop(ctx context.Context, id int) {
	for {
		job, err := jobQueue.Dequeue(ctx)
		if err != nil {
			if !errors.Is(err, context.Canceled) {
				logger.Warn("Worker %d: dequeue failed: %v", id, err)
			}
			return
		}

		logger.Info("Worker %d: handling %s job %s", id, job.Name, job.ID)
		if err := handleJob(ctx, job); err != nil {
			// No ack: the job is redelivered after its lease expires.
			logger.Warn("Worker %d: %s job %s failed: %v", id, job.Name, job.ID, err)
			continue
		}

		if err := jobQueue.Ack(ctx, job.ID); err != nil {
			logger.Warn("Worker %d: ack of job %s failed: %v", id, job.ID, err)
		}
	}
}

// handleJob dispatches a job to its handler. Job names this process
// does not own (split_document, embed_chunk) belong to the OCR and
// embedding stages; failing them leaves them for their consumer.
func handleJob(ctx context.Context, job *driven.Job) error {
	switch job.Name {
	case driven.JobIngestFile:
		path, err := stringArg(job, "path")
		if err != nil {
			return err
		}
		return ingestService.IngestFile(ctx, path, optionalStringArg(job, "project_id"))

	case driven.JobParseMiniDoc:
		minidocID, err := stringArg(job, "minidoc_id")
		if err != nil {
			return err
		}
		return parseService.ParseMiniDoc(ctx, minidocID)

	default:
		// Back off so a foreign job is not redequeued in a tight loop.
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Second):
		}
		return fmt.Errorf("no handler for job %q", job.Name)
	}
}

func stringArg(job *driven.Job, key string) (string, error) {
	value, ok := job.Args[key].(string)
	if !ok || value == "" {
		return "", fmt.Errorf("job %s is missing %q", job.ID, key)
	}
	return value, nil
}

func optionalStringArg(job *driven.Job, key string) *string {
	if value, ok := job.Args[key].(string); ok && value != "" {
		return &value
	}
	return nil
}
