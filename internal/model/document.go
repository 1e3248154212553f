// Package model defines the core types shared across the run-sheet pipeline.
package model

import (
	"time"

	"github.com/google/uuid"
)

// DocState tracks a document's progress through the parse pipeline.
type DocState string

const (
	DocStateUnparsed   DocState = "unparsed"
	DocStateExtracted  DocState = "extracted"
	DocStateSegmented  DocState = "segmented"
	DocStateNormalized DocState = "normalized"
	DocStateValidated  DocState = "validated"
	DocStateMerged     DocState = "merged"
	DocStateInserted   DocState = "inserted"
	DocStateScored     DocState = "scored"
	DocStatePersisted  DocState = "persisted"
	DocStateRejected   DocState = "rejected"
)

// Strategy selects how content units are extracted from a document.
type Strategy string

const (
	StrategyTable Strategy = "table"
	StrategyLine  Strategy = "line"
)

// RunSheetFile is a handle to a run-sheet document awaiting extraction.
// Bytes live in an external store; only the path and source identity travel
// through the pipeline.
type RunSheetFile struct {
	ID       uuid.UUID `json:"id"`
	FilePath string    `json:"file_path"`
	Driver   string    `json:"driver"`
	Customer string    `json:"customer,omitempty"` // issuing-customer hint, when known
	Date     time.Time `json:"date"`
}

// ContentUnit is one extracted fragment of a run sheet: a text line or a
// table cell, tagged with structural position when available.
type ContentUnit struct {
	Text      string `json:"text"`
	Page      int    `json:"page"`
	Row       int    `json:"row"`
	Col       int    `json:"col"`
	FromTable bool   `json:"from_table"`
}

// RunSheet is a fully extracted document: the file handle plus its ordered
// content units. Never mutated after extraction.
type RunSheet struct {
	File  RunSheetFile  `json:"file"`
	Units []ContentUnit `json:"units"`
}

// DateKey formats a date as the canonical YYYY-MM-DD key used for storage
// and file layout.
func DateKey(t time.Time) string {
	return t.Format("2006-01-02")
}
