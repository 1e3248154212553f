// Package monitoring summarizes recent import activity from the store.
package monitoring

import (
	"context"
	"time"

	"github.com/rotisserie/eris"

	"github.com/fieldserve/runsheet-cli/internal/store"
)

// Snapshot holds a point-in-time view of import health.
type Snapshot struct {
	Imports       int     `json:"imports"`
	Documents     int     `json:"documents"`
	DocsRejected  int     `json:"docs_rejected"`
	JobsAccepted  int     `json:"jobs_accepted"`
	JobsRejected  int     `json:"jobs_rejected"`
	JobsFiltered  int     `json:"jobs_filtered"`
	AvgScore      float64 `json:"avg_score"`
	DocFailRate   float64 `json:"doc_fail_rate"`
	LookbackHours int     `json:"lookback_hours"`

	CollectedAt time.Time `json:"collected_at"`
}

// Collector gathers import metrics from the store.
type Collector struct {
	store store.Store
}

// NewCollector creates a metrics collector.
func NewCollector(st store.Store) *Collector {
	return &Collector{store: st}
}

// Collect summarizes imports within the lookback window.
func (c *Collector) Collect(ctx context.Context, lookbackHours int) (*Snapshot, error) {
	snap := &Snapshot{
		LookbackHours: lookbackHours,
		CollectedAt:   time.Now().UTC(),
	}

	cutoff := time.Now().UTC().Add(-time.Duration(lookbackHours) * time.Hour)
	runs, err := c.store.ListImports(ctx, cutoff)
	if err != nil {
		return nil, eris.Wrap(err, "monitoring: list imports")
	}

	snap.Imports = len(runs)
	var scoreTotal float64
	var scored int
	for _, r := range runs {
		snap.Documents += r.Documents
		snap.DocsRejected += r.DocsRejected
		snap.JobsAccepted += r.JobsAccepted
		snap.JobsRejected += r.JobsRejected
		snap.JobsFiltered += r.JobsFiltered
		if r.Documents > 0 {
			scoreTotal += r.AvgScore
			scored++
		}
	}
	if scored > 0 {
		snap.AvgScore = scoreTotal / float64(scored)
	}
	if snap.Documents > 0 {
		snap.DocFailRate = float64(snap.DocsRejected) / float64(snap.Documents)
	}
	return snap, nil
}

// Healthy applies basic thresholds: more than half of documents failing in
// the window is unhealthy.
func (s *Snapshot) Healthy() bool {
	return s.Documents == 0 || s.DocFailRate <= 0.5
}
