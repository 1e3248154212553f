// Package merge combines newly parsed candidates with previously persisted
// records, preserving the protected fields owned by downstream workflow.
package merge

import (
	"github.com/google/uuid"

	"github.com/fieldserve/runsheet-cli/internal/model"
)

// Reconciliation is the outcome of matching candidates against existing
// records for one (date, driver) key.
type Reconciliation struct {
	// Upserts are the records to write: matched candidates carrying the
	// existing record's protected fields, plus brand-new inserts.
	Upserts []model.PersistedJob
	// FlagIDs are existing records whose protected fields could not be
	// carried over safely; they stay untouched and get flagged for review.
	FlagIDs []string
	// Keep holds every candidate job number. A replace pass deletes only
	// existing records outside this set, so matched records that were not
	// rewritten (flagged, or skipped under append-only) survive it.
	Keep []string
	// Untouched counts existing records with no matching candidate that
	// were left alone.
	Untouched int
	Inserted  int
	Replaced  int
}

// Reconcile matches candidates to existing records by (job_number, date).
// A matched candidate inherits the existing record's ID and protected
// fields before replacing it. Unmatched candidates become new records.
// Existing records with no matching candidate are left untouched; under
// replace mode the store deletes them instead. Append-only mode never
// replaces a matched record.
func Reconcile(existing []model.PersistedJob, candidates []model.JobRecord, driver string, mode model.MergeMode) Reconciliation {
	byKey := make(map[string]model.PersistedJob, len(existing))
	for _, ex := range existing {
		byKey[ex.JobRecord.Key()] = ex
	}

	var rec Reconciliation
	matched := make(map[string]bool, len(candidates))

	for _, cand := range candidates {
		rec.Keep = append(rec.Keep, cand.JobNumber)

		ex, ok := byKey[cand.Key()]
		if !ok {
			rec.Upserts = append(rec.Upserts, model.PersistedJob{
				ID:        uuid.New().String(),
				JobRecord: cand,
				Driver:    driver,
			})
			rec.Inserted++
			continue
		}
		matched[cand.Key()] = true

		if mode == model.MergeModeAppend {
			continue // existing record wins, nothing to write
		}

		if !protectedReadable(ex.Protected) {
			// Never destructive: leave the record as-is and surface it.
			rec.FlagIDs = append(rec.FlagIDs, ex.ID)
			continue
		}

		rec.Upserts = append(rec.Upserts, model.PersistedJob{
			ID:        ex.ID,
			JobRecord: cand,
			Driver:    driver,
			Protected: ex.Protected, // the core safety invariant
		})
		rec.Replaced++
	}

	for _, ex := range existing {
		if !matched[ex.JobRecord.Key()] {
			rec.Untouched++
		}
	}

	return rec
}

// protectedReadable sanity-checks carried-over fields. A status outside the
// known set or a negative pay amount means the record was touched by
// something we do not understand; carrying it blindly could corrupt it.
func protectedReadable(p model.ProtectedFields) bool {
	switch p.Status {
	case "", model.JobStatusOpen, model.JobStatusCompleted, model.JobStatusDNCO, model.JobStatusInvoiced:
	default:
		return false
	}
	return p.PayAmount >= 0
}
