package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/kilianp07/workplan/core/model"
	"github.com/kilianp07/workplan/core/scheduler"
)

// WriteSchedule renders the schedule table.
func WriteSchedule(w io.Writer, res *scheduler.Result) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "TASK\tSTART\tEND\tWORKERS\tDURATION")
	for _, r := range ScheduleRows(res) {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%d\n", r.Task, model.FormatDate(r.Start), model.FormatDate(r.End), r.AssignedWorkers, r.DurationDays)
	}
	return tw.Flush()
}

// WriteDaily renders the daily allocation log with one column per task, in
// input order, and a TOTAL column.
func WriteDaily(w io.Writer, res *scheduler.Result) error {
	tw := tabwriter.NewWriter(w, 0, 4, 1, ' ', tabwriter.AlignRight)
	fmt.Fprintf(tw, "DATE\t%s\tTOTAL\t\n", strings.Join(res.TaskOrder, "\t"))
	for _, d := range res.Daily {
		cells := make([]string, 0, len(res.TaskOrder)+2)
		cells = append(cells, model.FormatDate(d.Date))
		for _, name := range res.TaskOrder {
			cells = append(cells, strconv.Itoa(d.Workers[name]))
		}
		cells = append(cells, strconv.Itoa(d.Total()))
		fmt.Fprintf(tw, "%s\t\n", strings.Join(cells, "\t"))
	}
	return tw.Flush()
}

// WriteChecks renders the unscheduled task list and the overcapacity check.
func WriteChecks(w io.Writer, res *scheduler.Result, pool int) error {
	var b strings.Builder
	if len(res.Unscheduled) > 0 {
		b.WriteString("These tasks could not be scheduled due to constraints:\n")
		for _, name := range res.Unscheduled {
			fmt.Fprintf(&b, "- %s\n", name)
		}
	}
	over := Overcapacity(res.Daily, pool)
	if len(over) == 0 {
		b.WriteString("All worker assignments are within capacity.\n")
	} else {
		b.WriteString("Overcapacity detected on these days:\n")
		for _, o := range over {
			fmt.Fprintf(&b, "- %s: %d workers (pool %d)\n", model.FormatDate(o.Date), o.Total, o.Pool)
		}
	}
	_, err := io.WriteString(w, b.String())
	return err
}

// WriteSummary renders a Summary as aligned key/value lines.
func WriteSummary(w io.Writer, s Summary) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "tasks scheduled\t%d/%d\n", s.Scheduled, s.Tasks)
	fmt.Fprintf(tw, "working days\t%d\n", s.WorkingDays)
	fmt.Fprintf(tw, "calendar days\t%d\n", s.CalendarDays)
	if !s.FirstStart.IsZero() {
		fmt.Fprintf(tw, "span\t%s .. %s (%d days)\n", model.FormatDate(s.FirstStart), model.FormatDate(s.LastEnd), s.MakespanDays)
	}
	fmt.Fprintf(tw, "worker days\t%d\n", s.WorkerDays)
	fmt.Fprintf(tw, "peak workers\t%d\n", s.PeakWorkers)
	fmt.Fprintf(tw, "utilisation\t%.1f%% (sd %.1f%%)\n", s.MeanUtilization*100, s.StdDevUtilization*100)
	return tw.Flush()
}
