package model

import (
	"strings"
	"time"
)

// JobStatus is the downstream workflow status of a persisted job. The parse
// pipeline never sets these; they arrive via merge carry-over only.
type JobStatus string

const (
	JobStatusOpen      JobStatus = "open"
	JobStatusCompleted JobStatus = "completed"
	JobStatusDNCO      JobStatus = "dnco" // scheduled work not carried out
	JobStatusInvoiced  JobStatus = "invoiced"
)

// JobRecord is a candidate job parsed from a run sheet. Produced fresh on
// every parse pass; diagnostics describe how it was extracted.
type JobRecord struct {
	JobNumber string    `json:"job_number"`
	Customer  string    `json:"customer,omitempty"`
	Address   string    `json:"address,omitempty"`
	Postcode  string    `json:"postcode,omitempty"`
	Activity  string    `json:"activity,omitempty"`
	Date      time.Time `json:"date"`

	// Diagnostics.
	Strategy   Strategy `json:"strategy,omitempty"`
	Confidence float64  `json:"confidence,omitempty"`
	Warnings   []string `json:"warnings,omitempty"`
}

// Key returns the (job_number, date) identity used for merge matching.
func (j JobRecord) Key() string {
	return j.JobNumber + "@" + DateKey(j.Date)
}

// Complete reports whether every scoreable field is populated.
func (j JobRecord) Complete() bool {
	return j.Activity != "" && j.Address != "" && j.Postcode != ""
}

// ProtectedFields are the record attributes owned by downstream billing
// workflow. They are exclusively writable by external collaborators and
// must survive every re-parse.
type ProtectedFields struct {
	Status      JobStatus `json:"status,omitempty"`
	PayAmount   float64   `json:"pay_amount,omitempty"`
	PayLinkage  string    `json:"pay_linkage,omitempty"`
	ManualNotes string    `json:"manual_notes,omitempty"`
}

// IsZero reports whether no protected field has been set.
func (p ProtectedFields) IsZero() bool {
	return p.Status == "" && p.PayAmount == 0 && p.PayLinkage == "" && p.ManualNotes == ""
}

// PersistedJob is a JobRecord as held by the store, carrying protected
// fields and bookkeeping columns.
type PersistedJob struct {
	ID        string          `json:"id"`
	JobRecord JobRecord       `json:"job"`
	Protected ProtectedFields `json:"protected"`

	Driver           string    `json:"driver"`
	FlaggedForReview bool      `json:"flagged_for_review,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// CanonicalActivities is the closed vocabulary of job activities. Anything
// outside this list is never emitted by the pipeline.
var CanonicalActivities = []string{
	"TECH EXCHANGE",
	"REPAIR WITH PARTS",
	"MAINTENANCE",
	"SURVEY",
	"INSPECTION",
	"UPGRADE",
	"CONFIGURATION",
	"TRAINING",
	"CONSULTATION",
}

// IsCanonicalActivity reports whether s is exactly one of the closed
// vocabulary labels.
func IsCanonicalActivity(s string) bool {
	for _, a := range CanonicalActivities {
		if s == a {
			return true
		}
	}
	return false
}

// MergeMode controls how newly parsed candidates are combined with records
// already in the store.
type MergeMode string

const (
	// MergeModePreview runs the full pipeline without writing anything.
	MergeModePreview MergeMode = "preview"
	// MergeModeAppend inserts unmatched candidates only; existing records
	// are never replaced.
	MergeModeAppend MergeMode = "append-only"
	// MergeModeReplace replaces matched records (with protected carry-over)
	// and deletes existing records that no candidate matched.
	MergeModeReplace MergeMode = "replace"
	// MergeModeMerge replaces matched records and inserts new ones, leaving
	// unmatched existing records untouched. The default.
	MergeModeMerge MergeMode = "merge"
)

// ParseMergeMode parses a mode flag value.
func ParseMergeMode(s string) (MergeMode, bool) {
	switch MergeMode(strings.ToLower(strings.TrimSpace(s))) {
	case MergeModePreview:
		return MergeModePreview, true
	case MergeModeAppend:
		return MergeModeAppend, true
	case MergeModeReplace:
		return MergeModeReplace, true
	case MergeModeMerge, "":
		return MergeModeMerge, true
	}
	return "", false
}
