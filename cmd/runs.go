package cmd

import (
	"context"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/kilianp07/workplan/core/model"
	"github.com/kilianp07/workplan/core/runlog"
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Stored run commands",
}

var runsLsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List stored runs",
	RunE:  runRunsLs,
}

var runsFilter struct {
	since string
	until string
	task  string
	limit int
}

func init() {
	runsLsCmd.Flags().StringVar(&runsFilter.since, "since", "", "earliest run time (RFC 3339 or YYYY-MM-DD)")
	runsLsCmd.Flags().StringVar(&runsFilter.until, "until", "", "latest run time (RFC 3339 or YYYY-MM-DD)")
	runsLsCmd.Flags().StringVar(&runsFilter.task, "task", "", "only runs containing this task")
	runsLsCmd.Flags().IntVarP(&runsFilter.limit, "limit", "n", 20, "most recent runs to show, 0 for all")
	runsCmd.AddCommand(runsLsCmd)
	rootCmd.AddCommand(runsCmd)
}

func parseWhen(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return model.ParseDate(s)
}

func runRunsLs(cmd *cobra.Command, args []string) error {
	q := runlog.RunQuery{Task: runsFilter.task, Limit: runsFilter.limit}
	var err error
	if q.Start, err = parseWhen(runsFilter.since); err != nil {
		return fmt.Errorf("--since: %w", err)
	}
	if q.End, err = parseWhen(runsFilter.until); err != nil {
		return fmt.Errorf("--until: %w", err)
	}
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	store, err := runlog.Open(cfg.Store)
	if err != nil {
		return fmt.Errorf("run store: %w", err)
	}
	defer func() { _ = store.Close() }()
	recs, err := store.Query(context.Background(), q)
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTIME\tSTART\tTASKS\tUNSCHEDULED\tWORKING DAYS")
	for _, r := range recs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%d\t%d\n", r.ID, r.Timestamp.Format(time.RFC3339), r.Settings.StartDate,
			r.Summary.Tasks, r.Summary.Unscheduled, r.Summary.WorkingDays)
	}
	return tw.Flush()
}
