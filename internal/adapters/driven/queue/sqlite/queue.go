// Package sqlite provides a durable SQLite-backed job queue.
//
// Delivery is at-least-once: a dequeued job is leased rather than
// removed, and a lease that expires without an Ack makes the job
// visible again. Handlers must therefore tolerate duplicates. Jobs
// survive process restarts; this is what lets the intake and parse
// stages hand work to workers that may not be running yet.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/custodia-labs/corpora/internal/core/ports/driven"
)

var _ driven.JobQueue = (*Queue)(nil)

const (
	defaultLease = 5 * time.Minute
	defaultPoll  = 250 * time.Millisecond
)

const schema = `
CREATE TABLE IF NOT EXISTS jobs (
    id           TEXT PRIMARY KEY,
    name         TEXT NOT NULL,
    args         TEXT NOT NULL DEFAULT '{}',
    enqueued_at  DATETIME NOT NULL,
    leased_until DATETIME
);
CREATE INDEX IF NOT EXISTS idx_jobs_ready ON jobs(leased_until, enqueued_at);
`

// Queue is a SQLite-backed job queue.
type Queue struct {
	db *sql.DB

	// lease is how long a dequeued job stays invisible before it is
	// redelivered. poll is the wait between dequeue attempts when the
	// queue is empty.
	lease time.Duration
	poll  time.Duration
}

// NewQueue creates a durable queue at the specified data directory.
// If dataDir is empty, defaults to ~/.corpora/data/queue.db.
func NewQueue(dataDir string) (*Queue, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".corpora", "data")
	}

	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "queue.db")

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening queue database: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating jobs table: %w", err)
	}

	return &Queue{db: db, lease: defaultLease, poll: defaultPoll}, nil
}

// Close closes the database connection.
func (q *Queue) Close() error {
	return q.db.Close()
}

// Enqueue appends a named job.
func (q *Queue) Enqueue(ctx context.Context, name string, args map[string]any) error {
	argsJSON, err := json.Marshal(args)
	if err != nil {
		return fmt.Errorf("marshalling job args: %w", err)
	}

	_, err = q.db.ExecContext(ctx, `
		INSERT INTO jobs (id, name, args, enqueued_at)
		VALUES (?, ?, ?, ?)
	`, uuid.New().String(), name, string(argsJSON), time.Now().UTC())

	if err != nil {
		return fmt.Errorf("enqueueing job: %w", err)
	}
	return nil
}

// Dequeue leases the next available job, blocking until one is
// available or ctx is done. Jobs whose lease has expired are
// candidates again.
func (q *Queue) Dequeue(ctx context.Context) (*driven.Job, error) {
	for {
		job, err := q.tryDequeue(ctx)
		if err != nil {
			return nil, err
		}
		if job != nil {
			return job, nil
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(q.poll):
		}
	}
}

// tryDequeue claims the oldest ready job, or returns nil when the
// queue is empty. The claim is a single UPDATE so concurrent workers
// never lease the same job twice.
func (q *Queue) tryDequeue(ctx context.Context) (*driven.Job, error) {
	now := time.Now().UTC()

	row := q.db.QueryRowContext(ctx, `
		UPDATE jobs SET leased_until = ?
		WHERE id = (
			SELECT id FROM jobs
			WHERE leased_until IS NULL OR leased_until < ?
			ORDER BY enqueued_at
			LIMIT 1
		)
		RETURNING id, name, args
	`, now.Add(q.lease), now)

	var job driven.Job
	var argsJSON string
	if err := row.Scan(&job.ID, &job.Name, &argsJSON); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("claiming job: %w", err)
	}

	if err := json.Unmarshal([]byte(argsJSON), &job.Args); err != nil {
		return nil, fmt.Errorf("unmarshaling job args: %w", err)
	}

	return &job, nil
}

// Ack marks a leased job as completed by deleting it.
func (q *Queue) Ack(ctx context.Context, id string) error {
	_, err := q.db.ExecContext(ctx, "DELETE FROM jobs WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("acking job: %w", err)
	}
	return nil
}

// Len returns the number of jobs in the queue, leased or not.
func (q *Queue) Len(ctx context.Context) (int, error) {
	var count int
	err := q.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM jobs").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting jobs: %w", err)
	}
	return count, nil
}
