// Package scorer computes completeness scores for parsed documents, used
// to compare extraction strategies before committing a bulk re-parse.
package scorer

import (
	"go.uber.org/zap"

	"github.com/fieldserve/runsheet-cli/internal/config"
	"github.com/fieldserve/runsheet-cli/internal/model"
)

// Score computes the weighted completeness breakdown for a set of accepted
// jobs: the fraction with a non-empty activity, address and postcode,
// combined with configurable weights normalized by their total. All-zero
// weights fall back to activity-only.
func Score(jobs []model.JobRecord, weights config.ScorerConfig) model.ScoreBreakdown {
	if len(jobs) == 0 {
		return model.ScoreBreakdown{}
	}

	var withActivity, withAddress, withPostcode int
	for _, j := range jobs {
		if j.Activity != "" {
			withActivity++
		}
		if j.Address != "" {
			withAddress++
		}
		if j.Postcode != "" {
			withPostcode++
		}
	}

	n := float64(len(jobs))
	b := model.ScoreBreakdown{
		Activity: float64(withActivity) / n,
		Address:  float64(withAddress) / n,
		Postcode: float64(withPostcode) / n,
	}

	total := weights.ActivityWeight + weights.AddressWeight + weights.PostcodeWeight
	if total == 0 {
		zap.L().Warn("scorer: all weights are zero, falling back to activity-only")
		b.Final = b.Activity
		return b
	}

	b.Final = (weights.ActivityWeight*b.Activity +
		weights.AddressWeight*b.Address +
		weights.PostcodeWeight*b.Postcode) / total
	return b
}

// Comparison reports per-strategy results for one document.
type Comparison struct {
	File    model.RunSheetFile                   `json:"file"`
	Results map[model.Strategy]model.ParseResult `json:"results"`
}

// Better reports which strategy produced the higher final score, favoring
// table mode on a tie (higher structural fidelity).
func (c Comparison) Better() model.Strategy {
	table, hasTable := c.Results[model.StrategyTable]
	line, hasLine := c.Results[model.StrategyLine]
	switch {
	case hasTable && !hasLine:
		return model.StrategyTable
	case hasLine && !hasTable:
		return model.StrategyLine
	case !hasTable && !hasLine:
		return ""
	}
	if line.Score.Final > table.Score.Final {
		return model.StrategyLine
	}
	return model.StrategyTable
}
