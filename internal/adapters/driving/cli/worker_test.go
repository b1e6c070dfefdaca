package cli

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/corpora/internal/core/ports/driven"
)

// recordingIngestor records IngestFile calls.
type recordingIngestor struct {
	paths    []string
	projects []*string
}

func (r *recordingIngestor) IngestFile(_ context.Context, path string, projectID *string) error {
	r.paths = append(r.paths, path)
	r.projects = append(r.projects, projectID)
	return nil
}

// recordingParser records ParseMiniDoc calls.
type recordingParser struct {
	ids []string
}

func (r *recordingParser) ParseMiniDoc(_ context.Context, minidocID string) error {
	r.ids = append(r.ids, minidocID)
	return nil
}

func TestHandleJob_DispatchesIngest(t *testing.T) {
	ing := &recordingIngestor{}
	original := ingestService
	ingestService = ing
	defer func() { ingestService = original }()

	err := handleJob(context.Background(), &driven.Job{
		ID:   "j-1",
		Name: driven.JobIngestFile,
		Args: map[string]any{"path": "/intake/a.txt", "project_id": "proj-9"},
	})
	require.NoError(t, err)
	require.Len(t, ing.paths, 1)
	assert.Equal(t, "/intake/a.txt", ing.paths[0])
	require.NotNil(t, ing.projects[0])
	assert.Equal(t, "proj-9", *ing.projects[0])
}

func TestHandleJob_DispatchesParse(t *testing.T) {
	parser := &recordingParser{}
	original := parseService
	parseService = parser
	defer func() { parseService = original }()

	err := handleJob(context.Background(), &driven.Job{
		ID:   "j-2",
		Name: driven.JobParseMiniDoc,
		Args: map[string]any{"minidoc_id": "md-7"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"md-7"}, parser.ids)
}

func TestHandleJob_MissingArg(t *testing.T) {
	original := parseService
	parseService = &recordingParser{}
	defer func() { parseService = original }()

	err := handleJob(context.Background(), &driven.Job{
		ID:   "j-3",
		Name: driven.JobParseMiniDoc,
		Args: map[string]any{},
	})
	assert.Error(t, err)
}

func TestHandleJob_ForeignJobName(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel() // skip the backoff wait

	err := handleJob(ctx, &driven.Job{ID: "j-4", Name: driven.JobEmbedChunk})
	assert.Error(t, err, "embed jobs belong to the embedding stage")
}
