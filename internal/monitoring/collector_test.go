package monitoring

import (
	"context"
	"testing"
	"time"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fieldserve/runsheet-cli/internal/model"
)

// importLister stubs the store with canned import runs.
type importLister struct {
	runs []model.ImportRun
	err  error

	since time.Time
}

func (s *importLister) ListImports(ctx context.Context, since time.Time) ([]model.ImportRun, error) {
	s.since = since
	return s.runs, s.err
}

func (s *importLister) GetJobs(ctx context.Context, date time.Time, driver string) ([]model.PersistedJob, error) {
	return nil, nil
}

func (s *importLister) UpsertJobs(ctx context.Context, date time.Time, driver string, jobs []model.PersistedJob, keep []string, deleteUnmatched bool) error {
	return nil
}

func (s *importLister) FlagForReview(ctx context.Context, id string) error { return nil }

func (s *importLister) RecordImport(ctx context.Context, run model.ImportRun) error { return nil }

func (s *importLister) Migrate(ctx context.Context) error { return nil }

func (s *importLister) Close() error { return nil }

func TestCollect(t *testing.T) {
	t.Parallel()

	st := &importLister{runs: []model.ImportRun{
		{Documents: 10, DocsRejected: 2, JobsAccepted: 40, JobsRejected: 3, JobsFiltered: 5, AvgScore: 0.8},
		{Documents: 10, DocsRejected: 0, JobsAccepted: 50, AvgScore: 0.9},
	}}

	snap, err := NewCollector(st).Collect(context.Background(), 24)
	require.NoError(t, err)

	assert.Equal(t, 2, snap.Imports)
	assert.Equal(t, 20, snap.Documents)
	assert.Equal(t, 2, snap.DocsRejected)
	assert.Equal(t, 90, snap.JobsAccepted)
	assert.Equal(t, 3, snap.JobsRejected)
	assert.Equal(t, 5, snap.JobsFiltered)
	assert.InDelta(t, 0.85, snap.AvgScore, 1e-9)
	assert.InDelta(t, 0.1, snap.DocFailRate, 1e-9)
	assert.Equal(t, 24, snap.LookbackHours)
	assert.True(t, snap.Healthy())

	// The lookback window reaches 24 hours back.
	assert.WithinDuration(t, time.Now().UTC().Add(-24*time.Hour), st.since, time.Minute)
}

func TestCollect_EmptyWindow(t *testing.T) {
	t.Parallel()

	snap, err := NewCollector(&importLister{}).Collect(context.Background(), 24)
	require.NoError(t, err)

	assert.Equal(t, 0, snap.Imports)
	assert.Zero(t, snap.AvgScore)
	assert.True(t, snap.Healthy())
}

func TestCollect_StoreError(t *testing.T) {
	t.Parallel()

	_, err := NewCollector(&importLister{err: eris.New("db down")}).Collect(context.Background(), 24)
	assert.Error(t, err)
}

func TestSnapshot_Unhealthy(t *testing.T) {
	t.Parallel()

	s := Snapshot{Documents: 10, DocsRejected: 6, DocFailRate: 0.6}
	assert.False(t, s.Healthy())
}
