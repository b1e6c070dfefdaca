package driven

import "context"

// Job names understood by the pipeline workers. Intake and parse are
// handled here; page splitting and embedding are consumed by the OCR
// and embedding stages.
const (
	JobIngestFile    = "ingest_file"
	JobParseMiniDoc  = "parse_minidoc"
	JobSplitDocument = "split_document"
	JobEmbedChunk    = "embed_chunk"
)

// Job is a named unit of work with keyword arguments.
type Job struct {
	// ID is the queue-assigned job identifier.
	ID string

	// Name identifies the handler ("ingest_file", "parse_minidoc", ...).
	Name string

	// Args are the job's keyword arguments.
	Args map[string]any
}

// JobQueue is the queue transport. Delivery is at-least-once: a job may
// be redelivered after a worker crash, so handlers must tolerate
// duplicates. The pipeline only ever appends; it never reads back jobs
// it enqueued.
type JobQueue interface {
	// Enqueue appends a named job. Fire-and-forget from the caller's
	// perspective: there is no completion feedback.
	Enqueue(ctx context.Context, name string, args map[string]any) error

	// Dequeue leases the next available job, blocking until one is
	// available or ctx is done. A leased job is redelivered if not
	// acknowledged.
	Dequeue(ctx context.Context) (*Job, error)

	// Ack marks a leased job as completed.
	Ack(ctx context.Context, id string) error
}
