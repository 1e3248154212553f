package merge

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/fieldserve/runsheet-cli/internal/config"
	"github.com/fieldserve/runsheet-cli/internal/model"
)

// RunBatch parses the given documents concurrently and merges each result
// under its per-key lock. Documents are independent; a failed or rejected
// document is counted and skipped, never fatal for the batch. In preview
// mode nothing is written and no import run is recorded.
func (e *Engine) RunBatch(ctx context.Context, files []model.RunSheetFile, mode model.MergeMode, cfg config.BatchConfig) (model.ImportRun, []*model.ParseResult, error) {
	run := model.ImportRun{
		ID:        uuid.New().String(),
		Mode:      mode,
		Documents: len(files),
		StartedAt: time.Now().UTC(),
	}

	maxConcurrent := cfg.MaxConcurrent
	if maxConcurrent <= 0 {
		maxConcurrent = 1
	}
	limiter := rate.NewLimiter(rate.Limit(cfg.LaunchesPerSec), 1)
	if cfg.LaunchesPerSec <= 0 {
		limiter = rate.NewLimiter(rate.Inf, 1)
	}

	var (
		mu      sync.Mutex
		results = make([]*model.ParseResult, len(files))
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrent)

	for i, file := range files {
		g.Go(func() error {
			if err := limiter.Wait(gctx); err != nil {
				return err
			}

			res := e.Parse(gctx, file)
			if res.State != model.DocStateRejected {
				if err := e.Merge(gctx, res, mode); err != nil {
					// Storage failure is fatal for this document only.
					res.State = model.DocStateRejected
					res.Warnings = append(res.Warnings, "persist failed: "+err.Error())
					zap.L().Error("batch: document persist failed",
						zap.String("file", file.FilePath), zap.Error(err))
				}
			}

			mu.Lock()
			results[i] = res
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return run, nil, err
	}

	var scoreTotal float64
	var scoredDocs int
	for _, res := range results {
		if res == nil {
			continue
		}
		if res.State == model.DocStateRejected {
			run.DocsRejected++
			continue
		}
		run.JobsAccepted += len(res.Accepted)
		run.JobsRejected += res.RejectedCount
		run.JobsFiltered += res.FilteredCount
		scoreTotal += res.Score.Final
		scoredDocs++
	}
	if scoredDocs > 0 {
		run.AvgScore = scoreTotal / float64(scoredDocs)
	}
	run.FinishedAt = time.Now().UTC()

	if mode != model.MergeModePreview && e.store != nil {
		if err := e.store.RecordImport(ctx, run); err != nil {
			zap.L().Warn("batch: record import failed", zap.Error(err))
		}
	}

	return run, results, nil
}
