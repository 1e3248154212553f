package model

import "time"

// ScoreBreakdown holds the per-dimension completeness fractions and the
// final weighted score for one parsed document.
type ScoreBreakdown struct {
	Activity float64 `json:"activity"`
	Address  float64 `json:"address"`
	Postcode float64 `json:"postcode"`
	Final    float64 `json:"final"`
}

// ParseResult is the output of parsing a single run sheet.
type ParseResult struct {
	File          RunSheetFile   `json:"file"`
	State         DocState       `json:"state"`
	Strategy      Strategy       `json:"strategy"`
	Accepted      []JobRecord    `json:"accepted"`
	RejectedCount int            `json:"rejected_count"`
	FilteredCount int            `json:"filtered_count"`
	Score         ScoreBreakdown `json:"score"`
	Warnings      []string       `json:"warnings,omitempty"`
}

// ImportRun records one batch import pass for monitoring.
type ImportRun struct {
	ID            string    `json:"id"`
	Mode          MergeMode `json:"mode"`
	Documents     int       `json:"documents"`
	DocsRejected  int       `json:"docs_rejected"`
	JobsAccepted  int       `json:"jobs_accepted"`
	JobsRejected  int       `json:"jobs_rejected"`
	JobsFiltered  int       `json:"jobs_filtered"`
	AvgScore      float64   `json:"avg_score"`
	StartedAt     time.Time `json:"started_at"`
	FinishedAt    time.Time `json:"finished_at"`
}
