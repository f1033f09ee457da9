package main

import (
	"errors"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/mjavadshamsi/harmonize-joe-ejm/internal/store"
)

func newHistoryCommand(root *rootOptions) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent passes recorded in the run ledger",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := setup(cmd, root)
			if err != nil {
				return err
			}
			if cfg.Paths.HistoryDB == "" {
				return errors.New("paths.history_db is not set")
			}

			db, err := store.OpenHistory(cfg.Paths.HistoryDB)
			if err != nil {
				return err
			}
			defer db.Close()

			runs, err := store.ListRuns(cmd.Context(), db.Pool, limit)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "STARTED\tSOURCE\tBATCH\tSTATUS\tLISTINGS\tDELETED\tDUPLICATES\tFILE")
			for _, r := range runs {
				status := r.Status
				if r.Error != "" {
					status += ": " + r.Error
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%d\t%d\t%s\n",
					r.StartedAt.Local().Format(time.DateTime),
					r.Source, r.BatchDate, status,
					r.Listings, r.Deleted, r.Duplicates, r.File)
			}
			return w.Flush()
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "number of runs to show")
	return cmd
}
