package main

import (
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/fieldserve/runsheet-cli/internal/monitoring"
	"github.com/fieldserve/runsheet-cli/internal/store"
)

var statusLookback int

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Summarize recent import activity",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := store.New(ctx, cfg.Store)
		if err != nil {
			return err
		}
		defer st.Close()

		if err := st.Migrate(ctx); err != nil {
			return eris.Wrap(err, "migrate store")
		}

		snap, err := monitoring.NewCollector(st).Collect(ctx, statusLookback)
		if err != nil {
			return err
		}

		out := struct {
			*monitoring.Snapshot
			Healthy bool `json:"healthy"`
		}{Snapshot: snap, Healthy: snap.Healthy()}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	},
}

func init() {
	statusCmd.Flags().IntVar(&statusLookback, "lookback", 24, "lookback window in hours")
	rootCmd.AddCommand(statusCmd)
}
