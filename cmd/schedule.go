package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/kilianp07/workplan/app"
	"github.com/kilianp07/workplan/config"
	"github.com/kilianp07/workplan/core/report"
)

type scheduleFlags struct {
	tasks   string
	start   string
	workers int
	hours   int
	formats []string
	daily   bool
}

var schedFlags scheduleFlags

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Simulate the task file and print the schedule",
	RunE:  runSchedule,
}

func init() {
	addScheduleFlags(scheduleCmd, &schedFlags)
	rootCmd.AddCommand(scheduleCmd)
}

func addScheduleFlags(c *cobra.Command, f *scheduleFlags) {
	c.Flags().StringVarP(&f.tasks, "tasks", "t", "", "task file (csv, yaml or json)")
	c.Flags().StringVar(&f.start, "start", "", "start date YYYY-MM-DD")
	c.Flags().IntVarP(&f.workers, "workers", "w", 0, "worker pool size")
	c.Flags().IntVar(&f.hours, "hours", 0, "hours per worker per day")
	c.Flags().StringSliceVarP(&f.formats, "format", "f", nil, "export formats (csv,json,xlsx,html)")
	c.Flags().BoolVar(&f.daily, "daily", false, "print the daily allocation log")
}

// apply overlays the flags on cfg and re-validates it.
func (f scheduleFlags) apply(cfg *config.Config) error {
	if f.tasks != "" {
		cfg.Tasks.Path = f.tasks
	}
	if f.start != "" {
		cfg.Schedule.StartDate = f.start
	}
	if f.workers != 0 {
		cfg.Schedule.Workers = f.workers
	}
	if f.hours != 0 {
		cfg.Schedule.HoursPerWorkerPerDay = f.hours
	}
	if len(f.formats) > 0 {
		cfg.Export.Formats = f.formats
	}
	return cfg.Validate()
}

func runSchedule(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := schedFlags.apply(cfg); err != nil {
		return err
	}
	return withService(cfg, func(svc *app.Service) error {
		return scheduleOnce(ctx, cmd.OutOrStdout(), svc, cfg, schedFlags.daily)
	})
}

// scheduleOnce runs the configured task file and prints the outcome.
func scheduleOnce(ctx context.Context, w io.Writer, svc *app.Service, cfg *config.Config, daily bool) error {
	out, err := svc.ScheduleFile(ctx, cfg.Schedule, cfg.Tasks.Path)
	if out != nil && len(out.Rejected) > 0 {
		fmt.Fprintf(w, "%d rows skipped:\n", len(out.Rejected))
		for _, r := range out.Rejected {
			fmt.Fprintf(w, "- %s\n", r)
		}
	}
	if err != nil {
		if errors.Is(err, app.ErrNoTasks) {
			return fmt.Errorf("%s: %w", cfg.Tasks.Path, err)
		}
		if out == nil || out.Result == nil {
			return err
		}
	}
	if perr := printOutcome(w, out, daily); perr != nil {
		return perr
	}
	return err
}

func printOutcome(w io.Writer, out *app.Outcome, daily bool) error {
	fmt.Fprintf(w, "run %s\n\n", out.RunID)
	if err := report.WriteSchedule(w, out.Result); err != nil {
		return err
	}
	if daily {
		fmt.Fprintln(w)
		if err := report.WriteDaily(w, out.Result); err != nil {
			return err
		}
	}
	fmt.Fprintln(w)
	if err := report.WriteChecks(w, out.Result, out.Pool()); err != nil {
		return err
	}
	fmt.Fprintln(w)
	if err := report.WriteSummary(w, out.Summary); err != nil {
		return err
	}
	for _, p := range out.Exported {
		fmt.Fprintf(w, "wrote %s\n", p)
	}
	return nil
}
