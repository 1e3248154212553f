// Package extract turns raw run-sheet documents into ordered content units.
//
// Two interchangeable strategies exist: table-cell extraction (preferred,
// higher structural fidelity) and line-based text extraction (fallback).
// Both handle PDF and XLSX inputs.
package extract

import (
	"context"
	"path/filepath"
	"strings"
	"time"

	"github.com/rotisserie/eris"

	"github.com/fieldserve/runsheet-cli/internal/config"
	"github.com/fieldserve/runsheet-cli/internal/model"
)

// Extractor extracts ordered content units from a run-sheet file.
type Extractor interface {
	Extract(ctx context.Context, file model.RunSheetFile) ([]model.ContentUnit, error)
	Strategy() model.Strategy
}

// New creates an Extractor for the given strategy.
func New(strategy model.Strategy, cfg config.ExtractConfig) (Extractor, error) {
	pdf := NewPdfToText(cfg.PdfToTextPath, time.Duration(cfg.TimeoutSecs)*time.Second)
	switch strategy {
	case model.StrategyTable, "":
		return &TableExtractor{pdf: pdf}, nil
	case model.StrategyLine:
		return &LineExtractor{pdf: pdf}, nil
	default:
		return nil, eris.Errorf("extract: unknown strategy %q", strategy)
	}
}

func isSpreadsheet(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		return true
	}
	return false
}
