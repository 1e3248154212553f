// Package validate accepts, rejects or filters candidate job records
// before they reach the merge engine.
package validate

import (
	"strings"

	"github.com/fieldserve/runsheet-cli/internal/model"
)

// Outcome classifies one candidate.
type Outcome int

const (
	// Accepted candidates proceed to merge.
	Accepted Outcome = iota
	// Rejected candidates are true extraction failures.
	Rejected
	// Filtered candidates are known administrative entries, counted apart
	// from failures and never surfaced as errors.
	Filtered
)

// adminEntries are fixed customer+activity combinations that appear on run
// sheets but are not billable jobs: depot visits with no activity and
// zero-value audit task codes.
var adminEntries = []struct {
	customer string
	activity string
}{
	{"RICO", ""},
	{"DEPOT", ""},
	{"NATIONAL DISTRIBUTION CENTRE", ""},
	{"AUDIT", ""},
	{"ZERO VALUE AUDIT", ""},
}

// Check classifies a single candidate. A candidate is acceptable only when
// it has a job number and at least one of customer or activity.
func Check(rec model.JobRecord) Outcome {
	if isAdminEntry(rec) {
		return Filtered
	}
	if rec.JobNumber == "" {
		return Rejected
	}
	if rec.Customer == "" && rec.Activity == "" {
		return Rejected
	}
	return Accepted
}

// Apply runs Check over all candidates, canonicalizing accepted records.
// Returns accepted records plus rejected and filtered counts.
func Apply(recs []model.JobRecord) (accepted []model.JobRecord, rejected, filtered int) {
	for _, rec := range recs {
		switch Check(rec) {
		case Accepted:
			accepted = append(accepted, Canonicalize(rec))
		case Rejected:
			rejected++
		case Filtered:
			filtered++
		}
	}
	return accepted, rejected, filtered
}

// Canonicalize trims every field to its canonical form. Activities outside
// the closed vocabulary are cleared rather than passed through.
func Canonicalize(rec model.JobRecord) model.JobRecord {
	rec.JobNumber = strings.TrimSpace(rec.JobNumber)
	rec.Customer = strings.TrimSpace(rec.Customer)
	rec.Address = strings.TrimSpace(rec.Address)
	rec.Postcode = strings.ToUpper(strings.TrimSpace(rec.Postcode))
	rec.Activity = strings.ToUpper(strings.TrimSpace(rec.Activity))
	if rec.Activity != "" && !model.IsCanonicalActivity(rec.Activity) {
		rec.Activity = ""
	}
	return rec
}

func isAdminEntry(rec model.JobRecord) bool {
	cust := strings.ToUpper(strings.TrimSpace(rec.Customer))
	act := strings.ToUpper(strings.TrimSpace(rec.Activity))
	for _, e := range adminEntries {
		if cust == e.customer && act == e.activity {
			return true
		}
	}
	return false
}
