package export

import (
	"io"
	"strconv"

	"github.com/xuri/excelize/v2"

	"github.com/kilianp07/workplan/core/report"
	"github.com/kilianp07/workplan/core/scheduler"
)

// Sheet names of the exported workbook.
const (
	ScheduleSheet = "Schedule"
	DailySheet    = "Daily Allocation"
)

// WriteXLSX writes a workbook with the schedule and the daily allocation
// tables. Numeric columns are stored as numbers.
func WriteXLSX(w io.Writer, res *scheduler.Result) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", ScheduleSheet); err != nil {
		return err
	}
	if _, err := f.NewSheet(DailySheet); err != nil {
		return err
	}
	if err := setRows(f, ScheduleSheet, ScheduleRecords(report.ScheduleRows(res)), 3); err != nil {
		return err
	}
	if err := setRows(f, DailySheet, DailyRecords(res), 1); err != nil {
		return err
	}
	return f.Write(w)
}

// setRows writes records starting at A1; cells from column numericFrom
// onwards are converted to integers below the header.
func setRows(f *excelize.File, sheet string, records [][]string, numericFrom int) error {
	for i, rec := range records {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		row := make([]any, len(rec))
		for j, v := range rec {
			row[j] = v
			if i > 0 && j >= numericFrom {
				if n, err := strconv.Atoi(v); err == nil {
					row[j] = n
				}
			}
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return err
		}
	}
	return nil
}
