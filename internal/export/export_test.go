package export

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/bryan-cox/sprintledger/internal/model"
)

// reopen round-trips a workbook through its serialized form.
func reopen(t *testing.T, f *excelize.File) *excelize.File {
	t.Helper()
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	require.NoError(t, f.Close())
	out, err := excelize.OpenReader(buf)
	require.NoError(t, err)
	t.Cleanup(func() { out.Close() })
	return out
}

func cell(t *testing.T, f *excelize.File, sheet, axis string) string {
	t.Helper()
	v, err := f.GetCellValue(sheet, axis)
	require.NoError(t, err)
	return v
}

func TestDownloadName(t *testing.T) {
	assert.Equal(t, "worklog_detailed.xlsx", DownloadName(KindDetailed, "/tmp/in/worklog.csv"))
	assert.Equal(t, "timesheet_detailed.xlsx", DownloadName(KindDetailed, ""))
	assert.Equal(t, "jira_summary.xlsx", DownloadName(KindSummary, "worklog.csv"))
	assert.Equal(t, "sprint_closure_report.xlsx", DownloadName(KindSprintClosure, "worklog.csv"))
}

func TestDetailedWorkbook(t *testing.T) {
	day := time.Date(2024, 1, 8, 0, 0, 0, 0, time.UTC)
	rows := []model.TimesheetRow{
		{TimeCategory: model.FullDay, Class: model.Work, Date: day, DisplayDate: "08/Jan/2024", Author: "Alice", Hours: 1.5, Category: "infra", Ticket: "OPS-1", StartTime: "09:00 AM", EndTime: "10:30 AM", Status: "Done"},
		{TimeCategory: model.LeaveTime, Class: model.Leave, Date: day.AddDate(0, 0, 1), DisplayDate: "09/Jan/2024", Remarks: "Leave", Synthetic: true},
		{TimeCategory: model.HolidayTime, Class: model.Holiday, Date: day.AddDate(0, 0, 2), DisplayDate: "10/Jan/2024", Remarks: "Holiday", Synthetic: true},
	}
	totals := []model.CategoryTotal{{Category: "infra", Hours: 1.5}}

	wb, err := DetailedWorkbook(rows, totals)
	require.NoError(t, err)
	f := reopen(t, wb)

	assert.Equal(t, []string{SheetDetailed}, f.GetSheetList())
	assert.Equal(t, model.HdrTimeCategory, cell(t, f, SheetDetailed, "A1"))
	assert.Equal(t, model.HdrRemarks, cell(t, f, SheetDetailed, "L1"))
	assert.Equal(t, "1.5", cell(t, f, SheetDetailed, "F2"))
	assert.Equal(t, "", cell(t, f, SheetDetailed, "F3"), "gap rows carry no hours")
	assert.Equal(t, "Leave", cell(t, f, SheetDetailed, "L3"))

	// Totals start after one blank row.
	assert.Equal(t, model.HdrCategory, cell(t, f, SheetDetailed, "A6"))
	assert.Equal(t, "infra", cell(t, f, SheetDetailed, "A7"))
	assert.Equal(t, model.GrandTotal, cell(t, f, SheetDetailed, "A8"))
	assert.Equal(t, "1.5", cell(t, f, SheetDetailed, "B8"))

	plain, err := f.GetCellStyle(SheetDetailed, "A2")
	require.NoError(t, err)
	leave, err := f.GetCellStyle(SheetDetailed, "A3")
	require.NoError(t, err)
	holiday, err := f.GetCellStyle(SheetDetailed, "A4")
	require.NoError(t, err)
	assert.NotEqual(t, plain, leave)
	assert.NotEqual(t, leave, holiday)
	assert.NotEqual(t, plain, holiday)
}

func TestSummaryWorkbook(t *testing.T) {
	wb, err := SummaryWorkbook([]model.SummaryRow{
		{Category: "infra", Summary: "Upgrade", Author: "Alice", Status: "Done", IssueKey: "OPS-1", TotalEfforts: 2.25},
	})
	require.NoError(t, err)
	f := reopen(t, wb)

	assert.Equal(t, "Total Efforts (hrs)", cell(t, f, SheetSummary, "F1"))
	assert.Equal(t, "Alice", cell(t, f, SheetSummary, "C2"))
	assert.Equal(t, "2.25", cell(t, f, SheetSummary, "F2"))
}

func TestSprintClosureWorkbook(t *testing.T) {
	report := model.SprintClosure{
		Capacity: []model.CapacityRecord{
			{Author: "Alice", WorkingDays: 2, AvailableHours: 16},
			{Author: "Bob", WorkingDays: 1, AvailableHours: 8},
		},
		Burned: model.Pivot{
			Columns: []string{"feature", model.NoLabel},
			Rows: []model.PivotRow{
				{Author: "Alice", Values: []float64{5, 1}, GrandTotal: 6},
				{Author: "Bob", Values: []float64{4, 0}, GrandTotal: 4},
			},
		},
		Allocations: []model.Allocation{
			{Number: 1, Category: "feature", Summary: "Login", Author: "Alice", Status: "Done", OriginalEstimate: 10, EstimatedEffort: 5.56, ActualHours: 5},
		},
	}
	wb, err := SprintClosureWorkbook(report)
	require.NoError(t, err)
	f := reopen(t, wb)

	assert.Equal(t, SheetSprintClosure, cell(t, f, SheetSprintClosure, "A1"))
	merged, err := f.GetMergeCells(SheetSprintClosure)
	require.NoError(t, err)
	require.Len(t, merged, 1)
	assert.Equal(t, "A1", merged[0].GetStartAxis())
	assert.Equal(t, "L1", merged[0].GetEndAxis())

	assert.Equal(t, "Team Member Name", cell(t, f, SheetSprintClosure, "A4"))
	assert.Equal(t, "Bob", cell(t, f, SheetSprintClosure, "A6"))
	assert.Equal(t, "Developer", cell(t, f, SheetSprintClosure, "E4"))
	assert.Equal(t, model.GrandTotal, cell(t, f, SheetSprintClosure, "H4"))
	assert.Equal(t, "6", cell(t, f, SheetSprintClosure, "H5"))

	// Two data rows in the taller block, then six rows down.
	assert.Equal(t, "Number", cell(t, f, SheetSprintClosure, "A9"))
	assert.Equal(t, "Login", cell(t, f, SheetSprintClosure, "C10"))
	assert.Equal(t, "Alice", cell(t, f, SheetSprintClosure, "I10"))
}

func TestSprintClosureWorkbookWithLeave(t *testing.T) {
	leave, days, hours := 1.0, 1.0, 8.0
	report := model.SprintClosure{
		Capacity: []model.CapacityRecord{
			{Author: "Alice", WorkingDays: 2, AvailableHours: 16, LeaveDays: &leave, AdjustedWorkingDays: &days, AdjustedHours: &hours},
		},
		Burned: model.Pivot{Columns: []string{"feature"}, Rows: []model.PivotRow{{Author: "Alice", Values: []float64{8}, GrandTotal: 8}}},
	}
	wb, err := SprintClosureWorkbook(report)
	require.NoError(t, err)
	f := reopen(t, wb)

	assert.Equal(t, "Adjusted Capacity (Hours)", cell(t, f, SheetSprintClosure, "F4"))
	assert.Equal(t, "8", cell(t, f, SheetSprintClosure, "F5"))
	assert.Equal(t, "Developer", cell(t, f, SheetSprintClosure, "H4"))
}

func TestSave(t *testing.T) {
	wb, err := SummaryWorkbook(nil)
	require.NoError(t, err)
	path, err := Save(wb, t.TempDir(), DownloadName(KindSummary, ""))
	require.NoError(t, err)
	assert.Equal(t, "jira_summary.xlsx", filepath.Base(path))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, "Category", cell(t, f, SheetSummary, "A1"))
}
