package main

import (
	"encoding/json"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fieldserve/runsheet-cli/internal/extract"
	"github.com/fieldserve/runsheet-cli/internal/fetcher"
	"github.com/fieldserve/runsheet-cli/internal/merge"
	"github.com/fieldserve/runsheet-cli/internal/model"
	"github.com/fieldserve/runsheet-cli/internal/scorer"
)

var (
	compareFile   string
	compareDriver string
	compareDate   string
)

var compareCmd = &cobra.Command{
	Use:   "compare",
	Short: "Compare extraction strategies on one run sheet",
	Long:  "Parses a document with both the table and line strategies, scores each result and reports which strategy did better. Nothing is written.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		date, err := parseDateFlag(compareDate)
		if err != nil {
			return err
		}

		driver := compareDriver
		if driver == "" {
			driver = fetcher.DriverFromName(compareFile)
		}

		rules, err := loadRules(cfg.Rules)
		if err != nil {
			return err
		}

		file := model.RunSheetFile{
			ID:       uuid.New(),
			FilePath: compareFile,
			Driver:   driver,
			Date:     date,
		}

		cmp := scorer.Comparison{
			File:    file,
			Results: make(map[model.Strategy]model.ParseResult, 2),
		}
		for _, strategy := range []model.Strategy{model.StrategyTable, model.StrategyLine} {
			ex, err := extract.New(strategy, cfg.Extract)
			if err != nil {
				return err
			}
			eng := merge.NewEngine(ex, rules, nil, cfg.Scorer)
			res := eng.Parse(ctx, file)
			if err := eng.Merge(ctx, res, model.MergeModePreview); err != nil {
				return err
			}
			cmp.Results[strategy] = *res
		}

		zap.L().Info("comparison complete",
			zap.String("file", file.FilePath),
			zap.String("better", string(cmp.Better())),
			zap.Float64("table_score", cmp.Results[model.StrategyTable].Score.Final),
			zap.Float64("line_score", cmp.Results[model.StrategyLine].Score.Final),
		)

		out := struct {
			scorer.Comparison
			Better model.Strategy `json:"better"`
		}{Comparison: cmp, Better: cmp.Better()}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	},
}

func init() {
	compareCmd.Flags().StringVar(&compareFile, "file", "", "run-sheet file path (required)")
	compareCmd.Flags().StringVar(&compareDriver, "driver", "", "driver name (default: derived from file name)")
	compareCmd.Flags().StringVar(&compareDate, "date", "", "sheet date YYYY-MM-DD (default: today)")
	_ = compareCmd.MarkFlagRequired("file")
	rootCmd.AddCommand(compareCmd)
}
