package export

import (
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/kilianp07/workplan/core/model"
	"github.com/kilianp07/workplan/core/report"
	"github.com/kilianp07/workplan/core/scheduler"
)

// TimelineChart draws completed tasks as horizontal bars. Each bar is
// stacked on a transparent offset so that it starts at the task's Start,
// measured in calendar days from the earliest start.
func TimelineChart(res *scheduler.Result) *charts.Bar {
	bar := charts.NewBar()
	rows := report.ScheduleRows(res)
	first, _, ok := res.Span()
	bar.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: "Task timeline", Subtitle: "calendar days from " + model.FormatDate(first)}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Day"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Task"}),
	)
	names := make([]string, 0, len(rows))
	offsets := make([]opts.BarData, 0, len(rows))
	spans := make([]opts.BarData, 0, len(rows))
	if ok {
		for _, r := range rows {
			names = append(names, r.Task)
			offsets = append(offsets, opts.BarData{Value: int(r.Start.Sub(first).Hours() / 24)})
			spans = append(spans, opts.BarData{
				Value: r.DurationDays,
				Name:  fmt.Sprintf("%s to %s", model.FormatDate(r.Start), model.FormatDate(r.End)),
			})
		}
	}
	bar.SetXAxis(names).
		AddSeries("offset", offsets,
			charts.WithBarChartOpts(opts.BarChart{Stack: "timeline"}),
			charts.WithItemStyleOpts(opts.ItemStyle{Color: "transparent"})).
		AddSeries("duration", spans,
			charts.WithBarChartOpts(opts.BarChart{Stack: "timeline"}))
	bar.XYReversal()
	return bar
}

// AllocationChart stacks the workers assigned to each task per working day.
func AllocationChart(res *scheduler.Result) *charts.Bar {
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: "Daily worker allocation"}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Date"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Workers"}),
	)
	dates := make([]string, len(res.Daily))
	for i, d := range res.Daily {
		dates[i] = model.FormatDate(d.Date)
	}
	bar.SetXAxis(dates)
	for _, name := range res.TaskOrder {
		data := make([]opts.BarData, len(res.Daily))
		for i, d := range res.Daily {
			data[i] = opts.BarData{Value: d.Workers[name]}
		}
		bar.AddSeries(name, data, charts.WithBarChartOpts(opts.BarChart{Stack: "workers"}))
	}
	return bar
}

// WriteHTML renders the timeline and the allocation chart on one page.
func WriteHTML(w io.Writer, res *scheduler.Result, title string) error {
	page := components.NewPage()
	page.PageTitle = title
	page.AddCharts(TimelineChart(res), AllocationChart(res))
	if err := page.Render(w); err != nil {
		return fmt.Errorf("failed to render charts: %w", err)
	}
	return nil
}
