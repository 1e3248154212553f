package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/fieldserve/runsheet-cli/internal/model"
	"github.com/fieldserve/runsheet-cli/internal/store"
)

var (
	jobsDate   string
	jobsDriver string
)

var jobsCmd = &cobra.Command{
	Use:   "jobs",
	Short: "List persisted jobs for a day and driver",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		date, err := parseDateFlag(jobsDate)
		if err != nil {
			return err
		}

		st, err := store.New(ctx, cfg.Store)
		if err != nil {
			return err
		}
		defer st.Close()

		if err := st.Migrate(ctx); err != nil {
			return eris.Wrap(err, "migrate store")
		}

		jobs, err := st.GetJobs(ctx, date, jobsDriver)
		if err != nil {
			return eris.Wrap(err, "get jobs")
		}

		title := cases.Title(language.BritishEnglish)
		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "JOB\tCUSTOMER\tACTIVITY\tPOSTCODE\tSTATUS\tPAY\tFLAGGED")
		for _, j := range jobs {
			flagged := ""
			if j.FlaggedForReview {
				flagged = "yes"
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%.2f\t%s\n",
				j.JobRecord.JobNumber,
				title.String(j.JobRecord.Customer),
				j.JobRecord.Activity,
				j.JobRecord.Postcode,
				string(j.Protected.Status),
				j.Protected.PayAmount,
				flagged,
			)
		}
		if err := w.Flush(); err != nil {
			return err
		}

		fmt.Printf("\n%d jobs for %s driver %q\n", len(jobs), model.DateKey(date), jobsDriver)
		return nil
	},
}

func init() {
	jobsCmd.Flags().StringVar(&jobsDate, "date", "", "day YYYY-MM-DD (default: today)")
	jobsCmd.Flags().StringVar(&jobsDriver, "driver", "", "driver name (required)")
	_ = jobsCmd.MarkFlagRequired("driver")
	rootCmd.AddCommand(jobsCmd)
}
