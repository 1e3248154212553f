package store

import (
	"context"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fieldserve/runsheet-cli/internal/model"
)

func newMockStore(t *testing.T) (*PostgresStore, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return &PostgresStore{pool: mock}, mock
}

// anyArgs builds n pgxmock.AnyArg matchers; pgxmock requires the expected
// argument count to match the actual call exactly.
func anyArgs(n int) []interface{} {
	args := make([]interface{}, n)
	for i := range args {
		args[i] = pgxmock.AnyArg()
	}
	return args
}

var pgJobColumns = []string{
	"id", "job_number", "to_char", "driver", "customer", "address", "postcode",
	"activity", "strategy", "confidence", "warnings", "status", "pay_amount",
	"pay_linkage", "manual_notes", "flagged", "created_at", "updated_at",
}

func TestPostgres_GetJobs(t *testing.T) {
	t.Parallel()
	st, mock := newMockStore(t)

	warnings := `["example warning"]`
	now := time.Now().UTC()
	mock.ExpectQuery("SELECT id, job_number").
		WithArgs("2024-03-01", "SMITH").
		WillReturnRows(pgxmock.NewRows(pgJobColumns).AddRow(
			"id-1", "4269797", "2024-03-01", "SMITH", "TESCO STORE", "MANCHESTER",
			"M1 1AA", "TECH EXCHANGE", "table", 1.0, &warnings, "completed", 45.00,
			"INV-1001", "", false, now, now,
		))

	got, err := st.GetJobs(context.Background(), testDate, "SMITH")
	require.NoError(t, err)
	require.Len(t, got, 1)

	job := got[0]
	assert.Equal(t, "id-1", job.ID)
	assert.Equal(t, "4269797", job.JobRecord.JobNumber)
	assert.Equal(t, testDate, job.JobRecord.Date)
	assert.Equal(t, model.StrategyTable, job.JobRecord.Strategy)
	assert.Equal(t, model.JobStatusCompleted, job.Protected.Status)
	assert.InDelta(t, 45.00, job.Protected.PayAmount, 1e-9)
	assert.Equal(t, []string{"example warning"}, job.JobRecord.Warnings)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_UpsertJobs(t *testing.T) {
	t.Parallel()
	st, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO jobs").
		WithArgs(anyArgs(18)...).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()

	err := st.UpsertJobs(context.Background(), testDate, "SMITH",
		[]model.PersistedJob{testJob("id-1", "4269797")}, nil, false)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_UpsertJobs_DeleteUnmatched(t *testing.T) {
	t.Parallel()
	st, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM jobs").
		WithArgs("2024-03-01", "SMITH", []string{"4269797", "4269798"}).
		WillReturnResult(pgxmock.NewResult("DELETE", 2))
	mock.ExpectExec("INSERT INTO jobs").
		WithArgs(anyArgs(18)...).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()

	// The keep set is wider than the upserts: 4269798 stays put.
	err := st.UpsertJobs(context.Background(), testDate, "SMITH",
		[]model.PersistedJob{testJob("id-1", "4269797")}, []string{"4269797", "4269798"}, true)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_UpsertJobs_RollbackOnFailure(t *testing.T) {
	t.Parallel()
	st, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO jobs").
		WithArgs(anyArgs(18)...).
		WillReturnError(assert.AnError)
	mock.ExpectRollback()

	err := st.UpsertJobs(context.Background(), testDate, "SMITH",
		[]model.PersistedJob{testJob("id-1", "4269797")}, nil, false)
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_FlagForReview(t *testing.T) {
	t.Parallel()
	st, mock := newMockStore(t)

	mock.ExpectExec("UPDATE jobs SET flagged").
		WithArgs(pgxmock.AnyArg(), "id-1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	require.NoError(t, st.FlagForReview(context.Background(), "id-1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_FlagForReview_NotFound(t *testing.T) {
	t.Parallel()
	st, mock := newMockStore(t)

	mock.ExpectExec("UPDATE jobs SET flagged").
		WithArgs(pgxmock.AnyArg(), "missing").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	assert.Error(t, st.FlagForReview(context.Background(), "missing"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_RecordAndListImports(t *testing.T) {
	t.Parallel()
	st, mock := newMockStore(t)

	run := model.ImportRun{
		ID:         "run-1",
		Mode:       model.MergeModeReplace,
		Documents:  2,
		StartedAt:  time.Now().UTC().Add(-time.Hour),
		FinishedAt: time.Now().UTC(),
	}

	mock.ExpectExec("INSERT INTO imports").
		WithArgs(anyArgs(10)...).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	require.NoError(t, st.RecordImport(context.Background(), run))

	mock.ExpectQuery("SELECT id, mode").
		WithArgs(pgxmock.AnyArg()).
		WillReturnRows(pgxmock.NewRows([]string{
			"id", "mode", "documents", "docs_rejected", "jobs_accepted",
			"jobs_rejected", "jobs_filtered", "avg_score", "started_at", "finished_at",
		}).AddRow("run-1", "replace", 2, 0, 8, 1, 1, 0.9, run.StartedAt, run.FinishedAt))

	runs, err := st.ListImports(context.Background(), time.Now().Add(-2*time.Hour))
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, model.MergeModeReplace, runs[0].Mode)
	assert.Equal(t, 8, runs[0].JobsAccepted)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_Migrate(t *testing.T) {
	t.Parallel()
	st, mock := newMockStore(t)

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS jobs").
		WillReturnResult(pgxmock.NewResult("CREATE", 0))

	require.NoError(t, st.Migrate(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}
