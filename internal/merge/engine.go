package merge

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/fieldserve/runsheet-cli/internal/config"
	"github.com/fieldserve/runsheet-cli/internal/extract"
	"github.com/fieldserve/runsheet-cli/internal/model"
	"github.com/fieldserve/runsheet-cli/internal/registry"
	"github.com/fieldserve/runsheet-cli/internal/resilience"
	"github.com/fieldserve/runsheet-cli/internal/scorer"
	"github.com/fieldserve/runsheet-cli/internal/segment"
	"github.com/fieldserve/runsheet-cli/internal/store"
	"github.com/fieldserve/runsheet-cli/internal/validate"
)

// Engine drives a document through the parse pipeline and reconciles the
// result with the store.
type Engine struct {
	extractor extract.Extractor
	rules     *registry.Registry
	store     store.Store
	weights   config.ScorerConfig
	locks     *keyedMutex
}

// NewEngine wires the pipeline. store may be nil for preview-only use.
func NewEngine(ex extract.Extractor, rules *registry.Registry, st store.Store, weights config.ScorerConfig) *Engine {
	return &Engine{
		extractor: ex,
		rules:     rules,
		store:     st,
		weights:   weights,
		locks:     newKeyedMutex(),
	}
}

// Parse runs extraction through validation for one document; scoring
// happens in Merge once the records reach their disposition. Failures
// never propagate: a document that cannot be extracted comes back in the
// Rejected state with a diagnostic warning, and the caller moves on.
func (e *Engine) Parse(ctx context.Context, file model.RunSheetFile) *model.ParseResult {
	res := &model.ParseResult{
		File:     file,
		State:    model.DocStateUnparsed,
		Strategy: e.extractor.Strategy(),
	}

	units, err := e.extractor.Extract(ctx, file)
	if err != nil {
		res.State = model.DocStateRejected
		res.Warnings = append(res.Warnings, fmt.Sprintf("extraction failed: %v", err))
		zap.L().Warn("merge: document rejected at extraction",
			zap.String("file", file.FilePath), zap.Error(err))
		return res
	}
	if len(units) == 0 {
		res.State = model.DocStateRejected
		res.Warnings = append(res.Warnings, "extraction produced no content units")
		return res
	}
	res.State = model.DocStateExtracted

	segments := segment.Split(units)
	res.State = model.DocStateSegmented

	var rule *registry.SourceRule
	if r, ok := e.rules.Resolve(file.Driver, file.Customer); ok {
		rule = &r
	}

	candidates := make([]model.JobRecord, 0, len(segments))
	for _, seg := range segments {
		rec := registry.BuildRecord(seg, file, rule)
		rec.Strategy = e.extractor.Strategy()
		rec.Confidence = fieldConfidence(rec)
		candidates = append(candidates, rec)
	}
	res.State = model.DocStateNormalized

	res.Accepted, res.RejectedCount, res.FilteredCount = validate.Apply(candidates)
	res.State = model.DocStateValidated

	return res
}

// Merge reconciles a parse result with the store under the per-key lock,
// then scores the document. Preview mode scores without writing. Storage
// failure is fatal for this document only; the transactional upsert
// guarantees no partial write.
func (e *Engine) Merge(ctx context.Context, res *model.ParseResult, mode model.MergeMode) error {
	if res.State == model.DocStateRejected {
		return nil
	}
	if mode == model.MergeModePreview {
		res.Score = scorer.Score(res.Accepted, e.weights)
		res.State = model.DocStateScored
		return nil
	}

	date, driver := res.File.Date, res.File.Driver
	unlock := e.locks.Lock(model.DateKey(date) + "|" + driver)
	defer unlock()

	existing, err := e.store.GetJobs(ctx, date, driver)
	if err != nil {
		return err
	}

	rec := Reconcile(existing, res.Accepted, driver, mode)
	if rec.Replaced > 0 {
		res.State = model.DocStateMerged
	} else {
		res.State = model.DocStateInserted
	}

	retryCfg := resilience.DefaultRetryConfig()
	retryCfg.OnRetry = resilience.RetryLogger("store", "upsert_jobs")

	if err := resilience.Do(ctx, retryCfg, func(ctx context.Context) error {
		return e.store.UpsertJobs(ctx, date, driver, rec.Upserts, rec.Keep, mode == model.MergeModeReplace)
	}); err != nil {
		return err
	}

	res.Score = scorer.Score(res.Accepted, e.weights)
	res.State = model.DocStateScored

	for _, id := range rec.FlagIDs {
		if err := e.store.FlagForReview(ctx, id); err != nil {
			zap.L().Warn("merge: flag for review failed", zap.String("id", id), zap.Error(err))
		}
	}

	res.State = model.DocStatePersisted

	zap.L().Info("merge: document persisted",
		zap.String("file", res.File.FilePath),
		zap.String("driver", driver),
		zap.String("date", model.DateKey(date)),
		zap.Int("inserted", rec.Inserted),
		zap.Int("replaced", rec.Replaced),
		zap.Int("untouched", rec.Untouched),
		zap.Int("flagged", len(rec.FlagIDs)),
	)
	return nil
}

// fieldConfidence is the per-record completeness fraction over the three
// scoreable fields.
func fieldConfidence(rec model.JobRecord) float64 {
	n := 0
	if rec.Activity != "" {
		n++
	}
	if rec.Address != "" {
		n++
	}
	if rec.Postcode != "" {
		n++
	}
	return float64(n) / 3.0
}
