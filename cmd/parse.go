package main

import (
	"encoding/json"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fieldserve/runsheet-cli/internal/fetcher"
	"github.com/fieldserve/runsheet-cli/internal/model"
)

var (
	parseFile     string
	parseDriver   string
	parseDate     string
	parseStrategy string
	parseMode     string
)

var parseCmd = &cobra.Command{
	Use:   "parse",
	Short: "Parse a single run sheet",
	Long:  "Extracts, normalizes and validates one run-sheet document. Defaults to preview mode: the result is printed and nothing is written.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		mode, ok := model.ParseMergeMode(parseMode)
		if !ok {
			return eris.Errorf("unknown merge mode %q", parseMode)
		}

		date, err := parseDateFlag(parseDate)
		if err != nil {
			return err
		}

		driver := parseDriver
		if driver == "" {
			driver = fetcher.DriverFromName(parseFile)
		}

		strategy, err := strategyFlag(parseStrategy)
		if err != nil {
			return err
		}

		env, err := initEnv(ctx, strategy)
		if err != nil {
			return err
		}
		defer env.Close()

		file := model.RunSheetFile{
			ID:       uuid.New(),
			FilePath: parseFile,
			Driver:   driver,
			Date:     date,
		}

		res := env.Engine.Parse(ctx, file)
		if res.State != model.DocStateRejected {
			if err := env.Engine.Merge(ctx, res, mode); err != nil {
				return eris.Wrap(err, "merge result")
			}
		}

		zap.L().Info("parse complete",
			zap.String("file", file.FilePath),
			zap.String("state", string(res.State)),
			zap.Int("accepted", len(res.Accepted)),
			zap.Int("rejected", res.RejectedCount),
			zap.Int("filtered", res.FilteredCount),
			zap.Float64("score", res.Score.Final),
		)

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	},
}

// parseDateFlag parses a YYYY-MM-DD flag, defaulting to today.
func parseDateFlag(s string) (time.Time, error) {
	if s == "" {
		now := time.Now().UTC()
		return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC), nil
	}
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, eris.Wrapf(err, "invalid date %q, want YYYY-MM-DD", s)
	}
	return d, nil
}

// strategyFlag resolves the --strategy flag, falling back to the
// configured default when empty.
func strategyFlag(s string) (model.Strategy, error) {
	if s == "" {
		s = cfg.Extract.Strategy
	}
	switch model.Strategy(s) {
	case model.StrategyTable, model.StrategyLine:
		return model.Strategy(s), nil
	}
	return "", eris.Errorf("unknown strategy %q, want table or line", s)
}

func init() {
	parseCmd.Flags().StringVar(&parseFile, "file", "", "run-sheet file path (required)")
	parseCmd.Flags().StringVar(&parseDriver, "driver", "", "driver name (default: derived from file name)")
	parseCmd.Flags().StringVar(&parseDate, "date", "", "sheet date YYYY-MM-DD (default: today)")
	parseCmd.Flags().StringVar(&parseStrategy, "strategy", "", "extraction strategy: table or line (default: configured)")
	parseCmd.Flags().StringVar(&parseMode, "mode", "preview", "merge mode: preview, append-only, replace or merge")
	_ = parseCmd.MarkFlagRequired("file")
	rootCmd.AddCommand(parseCmd)
}
