// Package export writes timesheet and sprint reports as XLSX workbooks.
package export

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/bryan-cox/sprintledger/internal/model"
	"github.com/bryan-cox/sprintledger/internal/timesheet"
)

// Sheet names.
const (
	SheetDetailed      = "Detailed Timesheet"
	SheetSummary       = "Summary Report"
	SheetSprintClosure = "Sprint Closure Report"
)

// Kind selects a downloadable report.
type Kind string

const (
	KindDetailed      Kind = "detailed"
	KindSummary       Kind = "summary"
	KindSprintClosure Kind = "sprint-closure"
)

// DownloadName returns the file name a report is saved under. The detailed
// timesheet is named after the input file.
func DownloadName(kind Kind, input string) string {
	switch kind {
	case KindDetailed:
		base := strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))
		if base == "" || base == "." {
			base = "timesheet"
		}
		return base + "_detailed.xlsx"
	case KindSummary:
		return "jira_summary.xlsx"
	case KindSprintClosure:
		return "sprint_closure_report.xlsx"
	}
	return string(kind) + ".xlsx"
}

// Fill colours by day classification.
const (
	fillHoliday = "FFFF00"
	fillLeave   = "FF9999"
	fillHeader  = "DDEBF7"
)

type styles struct {
	header, title, holiday, leave int
}

func newStyles(f *excelize.File) (styles, error) {
	var s styles
	var err error
	if s.header, err = f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{fillHeader}, Pattern: 1},
		Alignment: &excelize.Alignment{WrapText: true},
		Border: []excelize.Border{
			{Type: "left", Color: "000000", Style: 1},
			{Type: "top", Color: "000000", Style: 1},
			{Type: "right", Color: "000000", Style: 1},
			{Type: "bottom", Color: "000000", Style: 1},
		},
	}); err != nil {
		return s, fmt.Errorf("header style: %w", err)
	}
	if s.title, err = f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 14},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	}); err != nil {
		return s, fmt.Errorf("title style: %w", err)
	}
	if s.holiday, err = f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Color: []string{fillHoliday}, Pattern: 1},
	}); err != nil {
		return s, fmt.Errorf("holiday style: %w", err)
	}
	if s.leave, err = f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Color: []string{fillLeave}, Pattern: 1},
	}); err != nil {
		return s, fmt.Errorf("leave style: %w", err)
	}
	return s, nil
}

// newWorkbook returns a workbook whose only sheet is named sheet.
func newWorkbook(sheet string) (*excelize.File, styles, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		f.Close()
		return nil, styles{}, fmt.Errorf("could not name sheet: %w", err)
	}
	st, err := newStyles(f)
	if err != nil {
		f.Close()
		return nil, styles{}, err
	}
	return f, st, nil
}

// writeBlock writes a header row and data rows starting at (col, row), both
// 1-based, and styles the header. It returns the number of rows written.
func writeBlock(f *excelize.File, sheet string, col, row int, headers []string, data [][]any, headerStyle int) (int, error) {
	start, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return 0, err
	}
	hdr := make([]any, len(headers))
	for i, h := range headers {
		hdr[i] = h
	}
	if err := f.SetSheetRow(sheet, start, &hdr); err != nil {
		return 0, fmt.Errorf("write header at %s: %w", start, err)
	}
	end, err := excelize.CoordinatesToCellName(col+len(headers)-1, row)
	if err != nil {
		return 0, err
	}
	if err := f.SetCellStyle(sheet, start, end, headerStyle); err != nil {
		return 0, fmt.Errorf("style header at %s: %w", start, err)
	}
	for i := range data {
		cell, err := excelize.CoordinatesToCellName(col, row+1+i)
		if err != nil {
			return 0, err
		}
		if err := f.SetSheetRow(sheet, cell, &data[i]); err != nil {
			return 0, fmt.Errorf("write row at %s: %w", cell, err)
		}
	}
	return len(data) + 1, nil
}

// DetailedWorkbook writes the detailed timesheet followed by the category
// totals. Non-working, holiday and leave rows are filled by class.
func DetailedWorkbook(rows []model.TimesheetRow, totals []model.CategoryTotal) (*excelize.File, error) {
	f, st, err := newWorkbook(SheetDetailed)
	if err != nil {
		return nil, err
	}

	data := make([][]any, len(rows))
	for i, r := range rows {
		var hours any = r.Hours
		if r.Synthetic {
			hours = ""
		}
		data[i] = []any{
			string(r.TimeCategory), r.DisplayDate, r.Author, r.Project, r.Activity, hours,
			r.Category, r.Ticket, r.StartTime, r.EndTime, r.Status, r.Remarks,
		}
	}
	n, err := writeBlock(f, SheetDetailed, 1, 1, model.TimesheetHeaders, data, st.header)
	if err != nil {
		f.Close()
		return nil, err
	}

	last := len(model.TimesheetHeaders)
	for i, r := range rows {
		style, ok := classStyle(st, r.Class)
		if !ok {
			continue
		}
		from, _ := excelize.CoordinatesToCellName(1, i+2)
		to, _ := excelize.CoordinatesToCellName(last, i+2)
		if err := f.SetCellStyle(SheetDetailed, from, to, style); err != nil {
			f.Close()
			return nil, fmt.Errorf("style row %d: %w", i+2, err)
		}
	}

	if len(totals) > 0 {
		withTotal := timesheet.WithGrandTotal(totals)
		tdata := make([][]any, len(withTotal))
		for i, t := range withTotal {
			tdata[i] = []any{t.Category, t.Hours}
		}
		if _, err := writeBlock(f, SheetDetailed, 1, n+2, []string{model.HdrCategory, "Total Hours"}, tdata, st.header); err != nil {
			f.Close()
			return nil, err
		}
	}
	if err := f.SetColWidth(SheetDetailed, "A", "L", 18); err != nil {
		f.Close()
		return nil, err
	}
	return f, nil
}

func classStyle(st styles, c model.DayClass) (int, bool) {
	switch c {
	case model.NonWorkingDay, model.Holiday:
		return st.holiday, true
	case model.Leave:
		return st.leave, true
	}
	return 0, false
}

// SummaryHeaders are the columns of the summary sheet.
var SummaryHeaders = []string{"Category", "Issue Summary", "Author", "Issue Status", "Issue Key", "Total Efforts (hrs)"}

// SummaryWorkbook writes the grouped summary rows.
func SummaryWorkbook(rows []model.SummaryRow) (*excelize.File, error) {
	f, st, err := newWorkbook(SheetSummary)
	if err != nil {
		return nil, err
	}
	data := make([][]any, len(rows))
	for i, r := range rows {
		data[i] = []any{r.Category, r.Summary, r.Author, r.Status, r.IssueKey, r.TotalEfforts}
	}
	if _, err := writeBlock(f, SheetSummary, 1, 1, SummaryHeaders, data, st.header); err != nil {
		f.Close()
		return nil, err
	}
	return f, nil
}

// Sprint closure layout, 1-based.
const (
	closureTitleRange = "L1"
	closureBlockRow   = 4
	closureGap        = 6
)

// SprintClosureWorkbook lays the three report blocks out on one sheet: the
// capacity block at A4, the burned capacity pivot to its right, and the
// allocation block below the taller of the two.
func SprintClosureWorkbook(r model.SprintClosure) (*excelize.File, error) {
	f, st, err := newWorkbook(SheetSprintClosure)
	if err != nil {
		return nil, err
	}
	fail := func(err error) (*excelize.File, error) {
		f.Close()
		return nil, err
	}

	if err := f.MergeCell(SheetSprintClosure, "A1", closureTitleRange); err != nil {
		return fail(err)
	}
	if err := f.SetCellValue(SheetSprintClosure, "A1", SheetSprintClosure); err != nil {
		return fail(err)
	}
	if err := f.SetCellStyle(SheetSprintClosure, "A1", closureTitleRange, st.title); err != nil {
		return fail(err)
	}

	capHeaders, capData := capacityBlock(r.Capacity)
	capRows, burnedRows := 0, 0
	if len(capData) > 0 {
		if _, err := writeBlock(f, SheetSprintClosure, 1, closureBlockRow, capHeaders, capData, st.header); err != nil {
			return fail(err)
		}
		capRows = len(capData)
	}

	if len(r.Burned.Rows) > 0 {
		headers := append([]string{"Developer"}, r.Burned.Columns...)
		headers = append(headers, model.GrandTotal)
		data := make([][]any, len(r.Burned.Rows))
		for i, pr := range r.Burned.Rows {
			row := []any{pr.Author}
			for _, v := range pr.Values {
				row = append(row, v)
			}
			data[i] = append(row, pr.GrandTotal)
		}
		// One blank column after the capacity block, at least column E.
		col := max(len(capHeaders)+2, 5)
		if _, err := writeBlock(f, SheetSprintClosure, col, closureBlockRow, headers, data, st.header); err != nil {
			return fail(err)
		}
		burnedRows = len(data)
	}

	if len(r.Allocations) > 0 {
		data := make([][]any, len(r.Allocations))
		for i, a := range r.Allocations {
			data[i] = []any{
				a.Number, a.Category, a.Summary, a.OriginalEstimate, a.RemainingEstimate,
				a.EstimatedEffort, a.ActualHours, a.Status, a.Author,
			}
		}
		row := max(capRows, burnedRows) + closureGap + 1
		if _, err := writeBlock(f, SheetSprintClosure, 1, row, AllocationHeaders, data, st.header); err != nil {
			return fail(err)
		}
	}
	return f, nil
}

// AllocationHeaders are the columns of the features block.
var AllocationHeaders = []string{
	"Number", "Category", "Issue Summary", "Original Estimate", "Remaining Estimate",
	"Estimated Effort", "Actual Hours", "Status", "Done By",
}

func capacityBlock(records []model.CapacityRecord) ([]string, [][]any) {
	headers := []string{"Team Member Name", "Working Days", "Available Capacity (Hours)"}
	leave := len(records) > 0 && records[0].AdjustedHours != nil
	if leave {
		headers = append(headers, "Leave Days", "Adjusted Working Days", "Adjusted Capacity (Hours)")
	}
	data := make([][]any, len(records))
	for i, rec := range records {
		row := []any{rec.Author, rec.WorkingDays, rec.AvailableHours}
		if leave && rec.AdjustedHours != nil {
			row = append(row, *rec.LeaveDays, *rec.AdjustedWorkingDays, *rec.AdjustedHours)
		}
		data[i] = row
	}
	return headers, data
}

// Save writes the workbook to dir/name and closes it.
func Save(f *excelize.File, dir, name string) (string, error) {
	defer f.Close()
	path := filepath.Join(dir, name)
	if err := f.SaveAs(path); err != nil {
		return "", fmt.Errorf("could not save workbook '%s': %w", path, err)
	}
	return path, nil
}
