package scorer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/fieldserve/runsheet-cli/internal/config"
	"github.com/fieldserve/runsheet-cli/internal/model"
)

func init() {
	zap.ReplaceGlobals(zap.NewNop())
}

var defaultWeights = config.ScorerConfig{
	ActivityWeight: 0.4,
	AddressWeight:  0.3,
	PostcodeWeight: 0.3,
}

func TestScore_Empty(t *testing.T) {
	t.Parallel()

	assert.Equal(t, model.ScoreBreakdown{}, Score(nil, defaultWeights))
}

func TestScore_AllComplete(t *testing.T) {
	t.Parallel()

	jobs := []model.JobRecord{
		{Activity: "SURVEY", Address: "LEEDS", Postcode: "LS1 1AB"},
		{Activity: "UPGRADE", Address: "MANCHESTER", Postcode: "M1 1AA"},
	}

	b := Score(jobs, defaultWeights)
	assert.InDelta(t, 1.0, b.Activity, 1e-9)
	assert.InDelta(t, 1.0, b.Address, 1e-9)
	assert.InDelta(t, 1.0, b.Postcode, 1e-9)
	assert.InDelta(t, 1.0, b.Final, 1e-9)
}

func TestScore_PartialFields(t *testing.T) {
	t.Parallel()

	jobs := []model.JobRecord{
		{Activity: "SURVEY", Address: "LEEDS", Postcode: "LS1 1AB"},
		{Activity: "UPGRADE"},
		{Address: "MANCHESTER"},
		{},
	}

	b := Score(jobs, defaultWeights)
	assert.InDelta(t, 0.5, b.Activity, 1e-9)
	assert.InDelta(t, 0.5, b.Address, 1e-9)
	assert.InDelta(t, 0.25, b.Postcode, 1e-9)
	assert.InDelta(t, 0.4*0.5+0.3*0.5+0.3*0.25, b.Final, 1e-9)
}

func TestScore_WeightsNormalized(t *testing.T) {
	t.Parallel()

	jobs := []model.JobRecord{{Activity: "SURVEY"}}

	// Doubled weights produce the same final score.
	doubled := config.ScorerConfig{ActivityWeight: 0.8, AddressWeight: 0.6, PostcodeWeight: 0.6}
	assert.InDelta(t, Score(jobs, defaultWeights).Final, Score(jobs, doubled).Final, 1e-9)
}

func TestScore_ZeroWeightsFallBackToActivity(t *testing.T) {
	t.Parallel()

	jobs := []model.JobRecord{
		{Activity: "SURVEY", Address: "LEEDS"},
		{Address: "MANCHESTER"},
	}

	b := Score(jobs, config.ScorerConfig{})
	assert.InDelta(t, 0.5, b.Final, 1e-9)
}

func TestComparison_Better(t *testing.T) {
	t.Parallel()

	result := func(final float64) model.ParseResult {
		return model.ParseResult{Score: model.ScoreBreakdown{Final: final}}
	}

	tests := []struct {
		name    string
		results map[model.Strategy]model.ParseResult
		want    model.Strategy
	}{
		{"line wins", map[model.Strategy]model.ParseResult{
			model.StrategyTable: result(0.5),
			model.StrategyLine:  result(0.9),
		}, model.StrategyLine},
		{"table wins", map[model.Strategy]model.ParseResult{
			model.StrategyTable: result(0.9),
			model.StrategyLine:  result(0.5),
		}, model.StrategyTable},
		{"tie favors table", map[model.Strategy]model.ParseResult{
			model.StrategyTable: result(0.7),
			model.StrategyLine:  result(0.7),
		}, model.StrategyTable},
		{"table only", map[model.Strategy]model.ParseResult{
			model.StrategyTable: result(0.1),
		}, model.StrategyTable},
		{"line only", map[model.Strategy]model.ParseResult{
			model.StrategyLine: result(0.1),
		}, model.StrategyLine},
		{"no results", nil, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			c := Comparison{Results: tt.results}
			assert.Equal(t, tt.want, c.Better())
		})
	}
}
