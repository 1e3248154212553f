// Package store persists job records and import runs behind a backend-
// neutral interface with SQLite and Postgres implementations.
package store

import (
	"context"
	"time"

	"github.com/rotisserie/eris"

	"github.com/fieldserve/runsheet-cli/internal/config"
	"github.com/fieldserve/runsheet-cli/internal/model"
)

// Store defines the persistence boundary consumed by the merge engine.
// UpsertJobs is transactional per document: writes for one (date, driver)
// key are all-or-nothing, never partially applied.
type Store interface {
	// Jobs. When deleteUnmatched is set, existing rows for the key whose
	// job number is outside keep are removed in the same transaction; keep
	// covers jobs plus matched records deliberately left in place.
	GetJobs(ctx context.Context, date time.Time, driver string) ([]model.PersistedJob, error)
	UpsertJobs(ctx context.Context, date time.Time, driver string, jobs []model.PersistedJob, keep []string, deleteUnmatched bool) error
	FlagForReview(ctx context.Context, id string) error

	// Import bookkeeping
	RecordImport(ctx context.Context, run model.ImportRun) error
	ListImports(ctx context.Context, since time.Time) ([]model.ImportRun, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}

// New creates a Store for the configured driver.
func New(ctx context.Context, cfg config.StoreConfig) (Store, error) {
	switch cfg.Driver {
	case "sqlite", "":
		return NewSQLite(cfg.DatabaseURL)
	case "postgres":
		return NewPostgres(ctx, cfg.DatabaseURL)
	default:
		return nil, eris.Errorf("store: unknown driver %q", cfg.Driver)
	}
}
