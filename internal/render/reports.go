package render

import (
	"strconv"

	"github.com/fatih/color"

	"github.com/bryan-cox/sprintledger/internal/model"
	"github.com/bryan-cox/sprintledger/internal/timesheet"
)

// Section titles.
const (
	TitleTimesheet   = "Detailed Timesheet"
	TitleTotals      = "Hours by Category"
	TitleSummary     = "Summary Report"
	TitleOvertime    = "Overtime"
	TitleWeekly      = "Weekly Overtime"
	TitleCapacity    = "Available Capacity"
	TitleBurned      = "Burned Capacity"
	TitleAllocations = "Features and Tech Debt"
)

func hours(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func classColor(c model.DayClass) *color.Color {
	switch c {
	case model.NonWorkingDay, model.Holiday:
		return Yellow
	case model.Leave:
		return Red
	}
	return nil
}

// TimesheetTable lists the detailed timesheet. Gap rows are coloured by class.
func TimesheetTable(rows []model.TimesheetRow) *Table {
	t := NewTable(model.TimesheetHeaders...)
	t.SetColumnAlignment(5, AlignRight)
	for _, r := range rows {
		h := hours(r.Hours)
		if r.Synthetic {
			h = ""
		}
		t.AddColoredRow(classColor(r.Class),
			string(r.TimeCategory), r.DisplayDate, r.Author, r.Project, r.Activity, h,
			r.Category, r.Ticket, r.StartTime, r.EndTime, r.Status, r.Remarks,
		)
	}
	return t
}

// TotalsTable lists hours per category with a grand total row.
func TotalsTable(totals []model.CategoryTotal) *Table {
	t := NewTable("Category", "Total Hours")
	t.SetColumnAlignment(1, AlignRight)
	if len(totals) == 0 {
		return t
	}
	for _, c := range timesheet.WithGrandTotal(totals) {
		if c.Category == model.GrandTotal {
			t.AddColoredRow(BoldCyan, c.Category, hours(c.Hours))
			continue
		}
		t.AddRow(c.Category, hours(c.Hours))
	}
	return t
}

// SummaryTable lists grouped summary rows.
func SummaryTable(rows []model.SummaryRow) *Table {
	t := NewTable("Category", "Issue Summary", "Author", "Issue Status", "Issue Key", "Total Efforts (hrs)")
	t.SetColumnAlignment(5, AlignRight)
	for _, r := range rows {
		t.AddRow(r.Category, r.Summary, r.Author, r.Status, r.IssueKey, hours(r.TotalEfforts))
	}
	return t
}

// OvertimeTable lists one line per breakdown.
func OvertimeTable(breakdowns ...model.OvertimeBreakdown) *Table {
	t := NewTable("Author", "Weekend Hours", "Holiday Overtime", "Daily Overtime", "Leave Overtime", "Total Overtime")
	for i := 1; i < 6; i++ {
		t.SetColumnAlignment(i, AlignRight)
	}
	for _, b := range breakdowns {
		t.AddRow(b.Author, hours(b.WeekendHours), hours(b.HolidayOvertime), hours(b.DailyOvertime),
			hours(b.LeaveOvertime), hours(b.TotalOvertime))
	}
	return t
}

// WeeklyTable lists the weekly overtime series. Weeks with overtime are highlighted.
func WeeklyTable(points []model.WeeklyPoint) *Table {
	t := NewTable("Week", "Date Range", "Total Hours", "Overtime Hours", "Actual Hours")
	for i := 2; i < 5; i++ {
		t.SetColumnAlignment(i, AlignRight)
	}
	for _, p := range points {
		var c *color.Color
		if p.OvertimeHours > 0 {
			c = Yellow
		}
		t.AddColoredRow(c, p.Week, p.DateRange, hours(p.TotalHours), hours(p.OvertimeHours), hours(p.ActualHours))
	}
	return t
}

// CapacityTable lists available capacity. Leave columns appear when any
// record carries them.
func CapacityTable(records []model.CapacityRecord) *Table {
	leave := len(records) > 0 && records[0].AdjustedHours != nil
	headers := []string{"Team Member Name", "Working Days", "Policy Working Days", "Inferred Leave Days", "Available Capacity (Hours)"}
	if leave {
		headers = append(headers, "Leave Days", "Adjusted Working Days", "Adjusted Capacity (Hours)")
	}
	t := NewTable(headers...)
	for i := 1; i < len(headers); i++ {
		t.SetColumnAlignment(i, AlignRight)
	}
	for _, r := range records {
		cells := []string{r.Author, strconv.Itoa(r.WorkingDays), strconv.Itoa(r.PolicyWorkingDays), strconv.Itoa(r.InferredLeaveDays), hours(r.AvailableHours)}
		if leave && r.AdjustedHours != nil {
			cells = append(cells, hours(*r.LeaveDays), hours(*r.AdjustedWorkingDays), hours(*r.AdjustedHours))
		}
		t.AddRow(cells...)
	}
	return t
}

// PivotTable lists an author by category pivot with a grand total column.
func PivotTable(p model.Pivot) *Table {
	headers := append([]string{"Developer"}, p.Columns...)
	headers = append(headers, model.GrandTotal)
	t := NewTable(headers...)
	for i := 1; i < len(headers); i++ {
		t.SetColumnAlignment(i, AlignRight)
	}
	for _, r := range p.Rows {
		cells := []string{r.Author}
		for _, v := range r.Values {
			cells = append(cells, hours(v))
		}
		t.AddRow(append(cells, hours(r.GrandTotal))...)
	}
	return t
}

// AllocationTable lists the per-author task allocations.
func AllocationTable(allocs []model.Allocation) *Table {
	t := NewTable("Number", "Category", "Issue Summary", "Original Estimate", "Remaining Estimate",
		"Estimated Effort", "Actual Hours", "Status", "Done By")
	for i := 3; i < 7; i++ {
		t.SetColumnAlignment(i, AlignRight)
	}
	for _, a := range allocs {
		t.AddRow(strconv.Itoa(a.Number), a.Category, a.Summary, hours(a.OriginalEstimate),
			hours(a.RemainingEstimate), hours(a.EstimatedEffort), hours(a.ActualHours), a.Status, a.Author)
	}
	return t
}

// SprintClosureSections returns the three blocks of a sprint closure report.
func SprintClosureSections(r model.SprintClosure) []Section {
	return []Section{
		{Title: TitleCapacity, Table: CapacityTable(r.Capacity)},
		{Title: TitleBurned, Table: PivotTable(r.Burned)},
		{Title: TitleAllocations, Table: AllocationTable(r.Allocations)},
	}
}
