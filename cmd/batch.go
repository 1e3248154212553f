package main

import (
	"encoding/json"
	"os"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fieldserve/runsheet-cli/internal/fetcher"
	"github.com/fieldserve/runsheet-cli/internal/model"
)

var (
	batchDate     string
	batchFrom     string
	batchTo       string
	batchMode     string
	batchStrategy string
	batchFTP      bool
)

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Parse and import run sheets for a date or date range",
	Long:  "Discovers run sheets for the given scope, parses them concurrently and merges each document independently. Defaults to preview mode.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		mode, ok := model.ParseMergeMode(batchMode)
		if !ok {
			return eris.Errorf("unknown merge mode %q", batchMode)
		}

		strategy, err := strategyFlag(batchStrategy)
		if err != nil {
			return err
		}

		files, err := discoverFiles(cmd)
		if err != nil {
			return err
		}
		if len(files) == 0 {
			zap.L().Info("batch: no run sheets in scope")
			return nil
		}

		env, err := initEnv(ctx, strategy)
		if err != nil {
			return err
		}
		defer env.Close()

		run, results, err := env.Engine.RunBatch(ctx, files, mode, cfg.Batch)
		if err != nil {
			return eris.Wrap(err, "run batch")
		}

		zap.L().Info("batch complete",
			zap.String("mode", string(mode)),
			zap.Int("documents", run.Documents),
			zap.Int("docs_rejected", run.DocsRejected),
			zap.Int("jobs_accepted", run.JobsAccepted),
			zap.Int("jobs_rejected", run.JobsRejected),
			zap.Int("jobs_filtered", run.JobsFiltered),
			zap.Float64("avg_score", run.AvgScore),
		)

		out := struct {
			Run     model.ImportRun      `json:"run"`
			Results []*model.ParseResult `json:"results"`
		}{Run: run, Results: results}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	},
}

// discoverFiles resolves the batch scope flags into a file list, from the
// local tree or the FTP drop folder.
func discoverFiles(cmd *cobra.Command) ([]model.RunSheetFile, error) {
	ctx := cmd.Context()

	var from, to time.Time
	switch {
	case batchFrom != "" || batchTo != "":
		if batchFrom == "" || batchTo == "" {
			return nil, eris.New("--from and --to must be given together")
		}
		f, err := parseDateFlag(batchFrom)
		if err != nil {
			return nil, err
		}
		t, err := parseDateFlag(batchTo)
		if err != nil {
			return nil, err
		}
		if t.Before(f) {
			return nil, eris.New("--to is before --from")
		}
		from, to = f, t
	default:
		d, err := parseDateFlag(batchDate)
		if err != nil {
			return nil, err
		}
		from, to = d, d
	}

	if batchFTP {
		ff := fetcher.NewFTP(cfg.Fetch.FTP, cfg.Fetch.TempDir)
		var files []model.RunSheetFile
		for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
			day, err := ff.ListDate(ctx, d)
			if err != nil {
				return nil, err
			}
			files = append(files, day...)
		}
		return files, nil
	}

	return fetcher.NewLocal(cfg.Fetch.Root).ListRange(from, to)
}

func init() {
	batchCmd.Flags().StringVar(&batchDate, "date", "", "single day YYYY-MM-DD (default: today)")
	batchCmd.Flags().StringVar(&batchFrom, "from", "", "range start YYYY-MM-DD")
	batchCmd.Flags().StringVar(&batchTo, "to", "", "range end YYYY-MM-DD, inclusive")
	batchCmd.Flags().StringVar(&batchMode, "mode", "preview", "merge mode: preview, append-only, replace or merge")
	batchCmd.Flags().StringVar(&batchStrategy, "strategy", "", "extraction strategy: table or line (default: configured)")
	batchCmd.Flags().BoolVar(&batchFTP, "ftp", false, "fetch run sheets from the FTP drop folder instead of the local tree")
	rootCmd.AddCommand(batchCmd)
}
