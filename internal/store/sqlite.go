package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/fieldserve/runsheet-cli/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS jobs (
	id           TEXT PRIMARY KEY,
	job_number   TEXT NOT NULL,
	date         TEXT NOT NULL,
	driver       TEXT NOT NULL,
	customer     TEXT NOT NULL DEFAULT '',
	address      TEXT NOT NULL DEFAULT '',
	postcode     TEXT NOT NULL DEFAULT '',
	activity     TEXT NOT NULL DEFAULT '',
	strategy     TEXT NOT NULL DEFAULT '',
	confidence   REAL NOT NULL DEFAULT 0,
	warnings     TEXT,
	status       TEXT NOT NULL DEFAULT '',
	pay_amount   REAL NOT NULL DEFAULT 0,
	pay_linkage  TEXT NOT NULL DEFAULT '',
	manual_notes TEXT NOT NULL DEFAULT '',
	flagged      INTEGER NOT NULL DEFAULT 0,
	created_at   DATETIME NOT NULL DEFAULT (datetime('now')),
	updated_at   DATETIME NOT NULL DEFAULT (datetime('now')),
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
	avg_score     REAL NOT NULL DEFAULT 0,
	started_at    DATETIME NOT NULL,
	finished_at   DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_jobs_date_driver ON jobs(date, driver);
CREATE INDEX IF NOT EXISTS idx_jobs_flagged ON jobs(flagged);
CREATE INDEX IF NOT EXISTS idx_imports_started_at ON imports(started_at);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) GetJobs(ctx context.Context, date time.Time, driver string) ([]model.PersistedJob, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, job_number, date, driver, customer, address, postcode, activity,
		        strategy, confidence, warnings, status, pay_amount, pay_linkage,
		        manual_notes, flagged, created_at, updated_at
		 FROM jobs WHERE date = ? AND driver = ? ORDER BY job_number`,
		model.DateKey(date), driver,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: query jobs")
	}
	defer rows.Close()

	var jobs []model.PersistedJob
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, job)
	}
	return jobs, eris.Wrap(rows.Err(), "sqlite: iterate jobs")
}

func (s *SQLiteStore) UpsertJobs(ctx context.Context, date time.Time, driver string, jobs []model.PersistedJob, keep []string, deleteUnmatched bool) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return eris.Wrap(err, "sqlite: begin tx")
	}
	defer tx.Rollback()

	dateKey := model.DateKey(date)
	now := time.Now().UTC()

	if deleteUnmatched {
		args := make([]any, 0, len(keep)+2)
		args = append(args, dateKey, driver)
		placeholders := ""
		for i, number := range keep {
			if i > 0 {
				placeholders += ","
			}
			placeholders += "?"
			args = append(args, number)
		}
		del := `DELETE FROM jobs WHERE date = ? AND driver = ?`
		if len(keep) > 0 {
			del += ` AND job_number NOT IN (` + placeholders + `)`
		}
		if _, err := tx.ExecContext(ctx, del, args...); err != nil {
			return eris.Wrap(err, "sqlite: delete unmatched jobs")
		}
	}

	for _, job := range jobs {
		warnings, err := json.Marshal(job.JobRecord.Warnings)
		if err != nil {
			return eris.Wrap(err, "sqlite: marshal warnings")
		}

		_, err = tx.ExecContext(ctx,
			`INSERT INTO jobs (id, job_number, date, driver, customer, address, postcode,
			                   activity, strategy, confidence, warnings, status, pay_amount,
			                   pay_linkage, manual_notes, flagged, created_at, updated_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			 ON CONFLICT (job_number, date, driver) DO UPDATE SET
			   customer = excluded.customer,
			   address = excluded.address,
			   postcode = excluded.postcode,
			   activity = excluded.activity,
			   strategy = excluded.strategy,
			   confidence = excluded.confidence,
			   warnings = excluded.warnings,
			   status = excluded.status,
			   pay_amount = excluded.pay_amount,
			   pay_linkage = excluded.pay_linkage,
			   manual_notes = excluded.manual_notes,
			   flagged = excluded.flagged,
			   updated_at = excluded.updated_at`,
			job.ID, job.JobRecord.JobNumber, dateKey, driver,
			job.JobRecord.Customer, job.JobRecord.Address, job.JobRecord.Postcode,
			job.JobRecord.Activity, string(job.JobRecord.Strategy), job.JobRecord.Confidence,
			string(warnings), string(job.Protected.Status), job.Protected.PayAmount,
			job.Protected.PayLinkage, job.Protected.ManualNotes, boolToInt(job.FlaggedForReview),
			now, now,
		)
		if err != nil {
			return eris.Wrapf(err, "sqlite: upsert job %s", job.JobRecord.JobNumber)
		}
	}

	return eris.Wrap(tx.Commit(), "sqlite: commit tx")
}

func (s *SQLiteStore) FlagForReview(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE jobs SET flagged = 1, updated_at = ? WHERE id = ?`,
		time.Now().UTC(), id,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: flag job %s", id)
	}
	return checkRowsAffected(res, "job", id)
}

func (s *SQLiteStore) RecordImport(ctx context.Context, run model.ImportRun) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO imports (id, mode, documents, docs_rejected, jobs_accepted,
		                      jobs_rejected, jobs_filtered, avg_score, started_at, finished_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, string(run.Mode), run.Documents, run.DocsRejected, run.JobsAccepted,
		run.JobsRejected, run.JobsFiltered, run.AvgScore, run.StartedAt.UTC(), run.FinishedAt.UTC(),
	)
	return eris.Wrap(err, "sqlite: insert import")
}

func (s *SQLiteStore) ListImports(ctx context.Context, since time.Time) ([]model.ImportRun, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, mode, documents, docs_rejected, jobs_accepted, jobs_rejected,
		        jobs_filtered, avg_score, started_at, finished_at
		 FROM imports WHERE started_at >= ? ORDER BY started_at DESC`,
		since.UTC(),
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: query imports")
	}
	defer rows.Close()

	var runs []model.ImportRun
	for rows.Next() {
		var r model.ImportRun
		var mode string
		if err := rows.Scan(&r.ID, &mode, &r.Documents, &r.DocsRejected, &r.JobsAccepted,
			&r.JobsRejected, &r.JobsFiltered, &r.AvgScore, &r.StartedAt, &r.FinishedAt); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan import")
		}
		r.Mode = model.MergeMode(mode)
		runs = append(runs, r)
	}
	return runs, eris.Wrap(rows.Err(), "sqlite: iterate imports")
}

// rowScanner covers *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanJob(row rowScanner) (model.PersistedJob, error) {
	var (
		job      model.PersistedJob
		dateKey  string
		strategy string
		status   string
		warnings sql.NullString
		flagged  int
	)
	err := row.Scan(&job.ID, &job.JobRecord.JobNumber, &dateKey, &job.Driver,
		&job.JobRecord.Customer, &job.JobRecord.Address, &job.JobRecord.Postcode,
		&job.JobRecord.Activity, &strategy, &job.JobRecord.Confidence, &warnings,
		&status, &job.Protected.PayAmount, &job.Protected.PayLinkage,
		&job.Protected.ManualNotes, &flagged, &job.CreatedAt, &job.UpdatedAt)
	if err != nil {
		return job, eris.Wrap(err, "sqlite: scan job")
	}

	date, err := time.Parse("2006-01-02", dateKey)
	if err != nil {
		return job, eris.Wrapf(err, "sqlite: parse job date %q", dateKey)
	}
	job.JobRecord.Date = date
	job.JobRecord.Strategy = model.Strategy(strategy)
	job.Protected.Status = model.JobStatus(status)
	job.FlaggedForReview = flagged != 0

	if warnings.Valid && warnings.String != "" {
		if err := json.Unmarshal([]byte(warnings.String), &job.JobRecord.Warnings); err != nil {
			return job, eris.Wrap(err, "sqlite: unmarshal warnings")
		}
	}
	return job, nil
}

func checkRowsAffected(res sql.Result, kind, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return eris.Wrapf(err, "sqlite: rows affected for %s %s", kind, id)
	}
	if n == 0 {
		return eris.Errorf("sqlite: %s %s not found", kind, id)
	}
	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
