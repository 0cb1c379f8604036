package main

import (
	"fmt"
	"sort"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"moodfuel/db"
)

func newRunsCmd(a *app) *cobra.Command {
	var (
		limit  int
		asJSON bool
	)
	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List recorded training runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := db.Open(a.config.Database.Path)
			if err != nil {
				return err
			}
			defer store.Close()

			runs, err := store.ListRuns(cmd.Context(), limit)
			if err != nil {
				return fmt.Errorf("list runs: %w", err)
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(runs)
			}
			if len(runs) == 0 {
				fmt.Fprintln(out, "No training runs recorded")
				return nil
			}

			p := message.NewPrinter(language.English)
			for _, run := range runs {
				p.Fprintf(out, "%s  %s  %-18s test RMSE %.4f  rows %d\n",
					run.TrainedAt.Local().Format("2006-01-02 15:04:05"), run.RunID, run.Selected, run.TestRMSE, run.DataPoints)
				families := make([]string, 0, len(run.CVRMSE))
				for family := range run.CVRMSE {
					families = append(families, family)
				}
				sort.Strings(families)
				for _, family := range families {
					p.Fprintf(out, "    %-18s CV RMSE %.4f\n", family, run.CVRMSE[family])
				}
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "Number of runs to show, 0 for all")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print runs as JSON")
	return cmd
}
