package store

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/fieldserve/runsheet-cli/internal/model"
)

// Pool is the subset of pgxpool.Pool the store uses; pgxmock.PgxPoolIface
// satisfies it in tests.
type Pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
	Close()
}

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool Pool
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}
	pgxCfg.MaxConns = 10
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}

	return &PostgresStore{pool: pool}, nil
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS jobs (
	id           TEXT PRIMARY KEY,
	job_number   TEXT NOT NULL,
	date         DATE NOT NULL,
	driver       TEXT NOT NULL,
	customer     TEXT NOT NULL DEFAULT '',
	address      TEXT NOT NULL DEFAULT '',
	postcode     TEXT NOT NULL DEFAULT '',
	activity     TEXT NOT NULL DEFAULT '',
	strategy     TEXT NOT NULL DEFAULT '',
	confidence   DOUBLE PRECISION NOT NULL DEFAULT 0,
	warnings     TEXT,
	status       TEXT NOT NULL DEFAULT '',
	pay_amount   DOUBLE PRECISION NOT NULL DEFAULT 0,
	pay_linkage  TEXT NOT NULL DEFAULT '',
	manual_notes TEXT NOT NULL DEFAULT '',
	flagged      BOOLEAN NOT NULL DEFAULT FALSE,
	created_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
	UNIQUE (job_number, date, driver)
);

CREATE TABLE IF NOT EXISTS imports (
	id            TEXT PRIMARY KEY,
	mode          TEXT NOT NULL,
	documents     INTEGER NOT NULL DEFAULT 0,
	docs_rejected INTEGER NOT NULL DEFAULT 0,
	jobs_accepted INTEGER NOT NULL DEFAULT 0,
	jobs_rejected INTEGER NOT NULL DEFAULT 0,
	jobs_filtered INTEGER NOT NULL DEFAULT 0,
	avg_score     DOUBLE PRECISION NOT NULL DEFAULT 0,
	started_at    TIMESTAMPTZ NOT NULL,
	finished_at   TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_jobs_date_driver ON jobs(date, driver);
CREATE INDEX IF NOT EXISTS idx_jobs_flagged ON jobs(flagged);
CREATE INDEX IF NOT EXISTS idx_imports_started_at ON imports(started_at);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func (s *PostgresStore) GetJobs(ctx context.Context, date time.Time, driver string) ([]model.PersistedJob, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, job_number, to_char(date, 'YYYY-MM-DD'), driver, customer, address,
		        postcode, activity, strategy, confidence, warnings, status, pay_amount,
		        pay_linkage, manual_notes, flagged, created_at, updated_at
		 FROM jobs WHERE date = $1 AND driver = $2 ORDER BY job_number`,
		model.DateKey(date), driver,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: query jobs")
	}
	defer rows.Close()

	var jobs []model.PersistedJob
	for rows.Next() {
		job, err := scanPgJob(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, job)
	}
	return jobs, eris.Wrap(rows.Err(), "postgres: iterate jobs")
}

func (s *PostgresStore) UpsertJobs(ctx context.Context, date time.Time, driver string, jobs []model.PersistedJob, keep []string, deleteUnmatched bool) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return eris.Wrap(err, "postgres: begin tx")
	}
	defer tx.Rollback(ctx)

	dateKey := model.DateKey(date)
	now := time.Now().UTC()

	if deleteUnmatched {
		del := `DELETE FROM jobs WHERE date = $1 AND driver = $2`
		args := []any{dateKey, driver}
		if len(keep) > 0 {
			del += ` AND NOT (job_number = ANY($3))`
			args = append(args, keep)
		}
		if _, err := tx.Exec(ctx, del, args...); err != nil {
			return eris.Wrap(err, "postgres: delete unmatched jobs")
		}
	}

	for _, job := range jobs {
		warnings, err := json.Marshal(job.JobRecord.Warnings)
		if err != nil {
			return eris.Wrap(err, "postgres: marshal warnings")
		}

		_, err = tx.Exec(ctx,
			`INSERT INTO jobs (id, job_number, date, driver, customer, address, postcode,
			                   activity, strategy, confidence, warnings, status, pay_amount,
			                   pay_linkage, manual_notes, flagged, created_at, updated_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
			 ON CONFLICT (job_number, date, driver) DO UPDATE SET
			   customer = EXCLUDED.customer,
			   address = EXCLUDED.address,
			   postcode = EXCLUDED.postcode,
			   activity = EXCLUDED.activity,
			   strategy = EXCLUDED.strategy,
			   confidence = EXCLUDED.confidence,
			   warnings = EXCLUDED.warnings,
			   status = EXCLUDED.status,
			   pay_amount = EXCLUDED.pay_amount,
			   pay_linkage = EXCLUDED.pay_linkage,
			   manual_notes = EXCLUDED.manual_notes,
			   flagged = EXCLUDED.flagged,
			   updated_at = EXCLUDED.updated_at`,
			job.ID, job.JobRecord.JobNumber, dateKey, driver,
			job.JobRecord.Customer, job.JobRecord.Address, job.JobRecord.Postcode,
			job.JobRecord.Activity, string(job.JobRecord.Strategy), job.JobRecord.Confidence,
			string(warnings), string(job.Protected.Status), job.Protected.PayAmount,
			job.Protected.PayLinkage, job.Protected.ManualNotes, job.FlaggedForReview,
			now, now,
		)
		if err != nil {
			return eris.Wrapf(err, "postgres: upsert job %s", job.JobRecord.JobNumber)
		}
	}

	return eris.Wrap(tx.Commit(ctx), "postgres: commit tx")
}

func (s *PostgresStore) FlagForReview(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE jobs SET flagged = TRUE, updated_at = $1 WHERE id = $2`,
		time.Now().UTC(), id,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: flag job %s", id)
	}
	if tag.RowsAffected() == 0 {
		return eris.Errorf("postgres: job %s not found", id)
	}
	return nil
}

func (s *PostgresStore) RecordImport(ctx context.Context, run model.ImportRun) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO imports (id, mode, documents, docs_rejected, jobs_accepted,
		                      jobs_rejected, jobs_filtered, avg_score, started_at, finished_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		run.ID, string(run.Mode), run.Documents, run.DocsRejected, run.JobsAccepted,
		run.JobsRejected, run.JobsFiltered, run.AvgScore, run.StartedAt.UTC(), run.FinishedAt.UTC(),
	)
	return eris.Wrap(err, "postgres: insert import")
}

func (s *PostgresStore) ListImports(ctx context.Context, since time.Time) ([]model.ImportRun, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, mode, documents, docs_rejected, jobs_accepted, jobs_rejected,
		        jobs_filtered, avg_score, started_at, finished_at
		 FROM imports WHERE started_at >= $1 ORDER BY started_at DESC`,
		since.UTC(),
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: query imports")
	}
	defer rows.Close()

	var runs []model.ImportRun
	for rows.Next() {
		var r model.ImportRun
		var mode string
		if err := rows.Scan(&r.ID, &mode, &r.Documents, &r.DocsRejected, &r.JobsAccepted,
			&r.JobsRejected, &r.JobsFiltered, &r.AvgScore, &r.StartedAt, &r.FinishedAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan import")
		}
		r.Mode = model.MergeMode(mode)
		runs = append(runs, r)
	}
	return runs, eris.Wrap(rows.Err(), "postgres: iterate imports")
}

func scanPgJob(rows pgx.Rows) (model.PersistedJob, error) {
	var (
		job      model.PersistedJob
		dateKey  string
		strategy string
		status   string
		warnings *string
	)
	err := rows.Scan(&job.ID, &job.JobRecord.JobNumber, &dateKey, &job.Driver,
		&job.JobRecord.Customer, &job.JobRecord.Address, &job.JobRecord.Postcode,
		&job.JobRecord.Activity, &strategy, &job.JobRecord.Confidence, &warnings,
		&status, &job.Protected.PayAmount, &job.Protected.PayLinkage,
		&job.Protected.ManualNotes, &job.FlaggedForReview, &job.CreatedAt, &job.UpdatedAt)
	if err != nil {
		return job, eris.Wrap(err, "postgres: scan job")
	}

	date, err := time.Parse("2006-01-02", dateKey)
	if err != nil {
		return job, eris.Wrapf(err, "postgres: parse job date %q", dateKey)
	}
	job.JobRecord.Date = date
	job.JobRecord.Strategy = model.Strategy(strategy)
	job.Protected.Status = model.JobStatus(status)

	if warnings != nil && *warnings != "" {
		if err := json.Unmarshal([]byte(*warnings), &job.JobRecord.Warnings); err != nil {
			return job, eris.Wrap(err, "postgres: unmarshal warnings")
		}
	}
	return job, nil
}
