// Package model defines the core data structures for SprintLedger.
package model

import (
	"math"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Input column names as they appear in a tracker worklog export.
const (
	ColAuthor            = "Author"
	ColStartDate         = "Start Date"
	ColTimeSpent         = "Time Spent (seconds)"
	ColIssueKey          = "Issue Key"
	ColIssueStatus       = "Issue Status"
	ColProjectName       = "Project Name"
	ColComment           = "Comment"
	ColIssueSummary      = "Issue Summary"
	ColLabels            = "Labels"
	ColActivity          = "Activity"
	ColParentSummary     = "Parent Summary"
	ColParentKey         = "Parent Key"
	ColIssueType         = "Issue Type"
	ColOriginalEstimate  = "Original Estimate (seconds)"
	ColRemainingEstimate = "Remaining Estimate (seconds)"
	ColLeaveDays         = "Leave Days"
)

// Category sentinels.
const (
	NoLabel       = "No Label/Empty"
	GrandTotal    = "Grand Total"
	General       = "General"
	AllAuthors    = "All"
	SecondsInHour = 3600.0
)

// WorkLogRow is one recorded instance of time spent on an issue by an author.
type WorkLogRow struct {
	Author                   string            `json:"author" yaml:"author"`
	Start                    time.Time         `json:"start" yaml:"start"`
	TimeSpentSeconds         int64             `json:"time_spent_seconds" yaml:"time_spent_seconds"`
	ProjectName              string            `json:"project_name" yaml:"project_name"`
	Comment                  string            `json:"comment" yaml:"comment"`
	IssueKey                 string            `json:"issue_key" yaml:"issue_key"`
	IssueStatus              string            `json:"issue_status" yaml:"issue_status"`
	IssueSummary             string            `json:"issue_summary" yaml:"issue_summary"`
	ParentSummary            string            `json:"parent_summary,omitempty" yaml:"parent_summary,omitempty"`
	ParentKey                string            `json:"parent_key,omitempty" yaml:"parent_key,omitempty"`
	IssueType                string            `json:"issue_type,omitempty" yaml:"issue_type,omitempty"`
	OriginalEstimateSeconds  int64             `json:"original_estimate_seconds" yaml:"original_estimate_seconds"`
	RemainingEstimateSeconds int64             `json:"remaining_estimate_seconds" yaml:"remaining_estimate_seconds"`
	LeaveDays                float64           `json:"leave_days,omitempty" yaml:"leave_days,omitempty"`
	Fields                   map[string]string `json:"fields,omitempty" yaml:"fields,omitempty"`
}

// Hours returns the logged duration in hours at full precision.
func (r WorkLogRow) Hours() float64 {
	return float64(r.TimeSpentSeconds) / SecondsInHour
}

// Day returns the calendar date of the row with the time of day stripped.
func (r WorkLogRow) Day() time.Time {
	return DateOf(r.Start)
}

// Value returns the value of the named column for this row. Custom and label
// columns are looked up in Fields.
func (r WorkLogRow) Value(column string) string {
	switch column {
	case ColAuthor:
		return r.Author
	case ColIssueKey:
		return r.IssueKey
	case ColIssueStatus:
		return r.IssueStatus
	case ColProjectName:
		return r.ProjectName
	case ColComment:
		return r.Comment
	case ColIssueSummary:
		return r.IssueSummary
	case ColParentSummary:
		return r.ParentSummary
	case ColParentKey:
		return r.ParentKey
	case ColIssueType:
		return r.IssueType
	case ColStartDate:
		return r.Start.Format("2006-01-02 15:04")
	case ColTimeSpent:
		return strconv.FormatInt(r.TimeSpentSeconds, 10)
	}
	return r.Fields[column]
}

// Table is the structured input handed to the engine: the rows plus the set of
// columns the source file carried.
type Table struct {
	Columns []string     `json:"columns" yaml:"columns"`
	Rows    []WorkLogRow `json:"rows" yaml:"rows"`
	// Reverse marks data reconstructed from a previously exported timesheet.
	Reverse bool `json:"reverse,omitempty" yaml:"reverse,omitempty"`
}

// HasColumn reports whether the table carries the named column.
func (t Table) HasColumn(name string) bool {
	for _, c := range t.Columns {
		if c == name {
			return true
		}
	}
	return false
}

// Filter returns a copy of the table restricted to rows of one author. The
// empty string and "All" keep every row.
func (t Table) Filter(author string) Table {
	out := Table{Columns: append([]string(nil), t.Columns...), Reverse: t.Reverse}
	for _, r := range t.Rows {
		if author == "" || author == AllAuthors || r.Author == author {
			out.Rows = append(out.Rows, r)
		}
	}
	return out
}

// Authors returns the sorted distinct authors present in the table.
func (t Table) Authors() []string {
	seen := make(map[string]bool)
	var authors []string
	for _, r := range t.Rows {
		if !seen[r.Author] {
			seen[r.Author] = true
			authors = append(authors, r.Author)
		}
	}
	sort.Strings(authors)
	return authors
}

// DayClass classifies one calendar date.
type DayClass string

const (
	Work          DayClass = "Work"
	NonWorkingDay DayClass = "Non-Working Day"
	Holiday       DayClass = "Holiday"
	Leave         DayClass = "Leave"
	NoWork        DayClass = "No Work"
)

// TimeCategory tags a timesheet row for the detail view.
type TimeCategory string

const (
	FullDay     TimeCategory = "Full Day"
	HolidayTime TimeCategory = "Holiday"
	LeaveTime   TimeCategory = "Leave"
	NoWorkTime  TimeCategory = "No Work"
)

// Detailed timesheet headers, in export order.
const (
	HdrTimeCategory = "Time Category"
	HdrDate         = "Date"
	HdrAuthor       = "Author"
	HdrProject      = "Application/Project Name"
	HdrActivity     = "Activity/Task Done"
	HdrHours        = "Hours spent"
	HdrCategory     = "Category"
	HdrTicket       = "Ticket/Task #"
	HdrStartTime    = "Start Time"
	HdrEndTime      = "End Time"
	HdrStatus       = "Status"
	HdrRemarks      = "Remarks"
)

// TimesheetHeaders lists the detailed timesheet columns.
var TimesheetHeaders = []string{
	HdrTimeCategory, HdrDate, HdrAuthor, HdrProject, HdrActivity, HdrHours,
	HdrCategory, HdrTicket, HdrStartTime, HdrEndTime, HdrStatus, HdrRemarks,
}

// Display layouts of the detailed timesheet.
const (
	DisplayDateFmt = "02/Jan/2006"
	ClockFmt       = "03:04 PM"
)

// TimesheetRow is one line of the detailed timesheet.
type TimesheetRow struct {
	TimeCategory TimeCategory `json:"time_category" yaml:"time_category"`
	Class        DayClass     `json:"class" yaml:"class"`
	Date         time.Time    `json:"date" yaml:"date"`
	DisplayDate  string       `json:"display_date" yaml:"display_date"`
	Author       string       `json:"author,omitempty" yaml:"author,omitempty"`
	Project      string       `json:"project" yaml:"project"`
	Activity     string       `json:"activity" yaml:"activity"`
	Hours        float64      `json:"hours" yaml:"hours"`
	Seconds      int64        `json:"-" yaml:"-"`
	Category     string       `json:"category" yaml:"category"`
	Ticket       string       `json:"ticket" yaml:"ticket"`
	StartTime    string       `json:"start_time" yaml:"start_time"`
	EndTime      string       `json:"end_time" yaml:"end_time"`
	Status       string       `json:"status" yaml:"status"`
	Remarks      string       `json:"remarks,omitempty" yaml:"remarks,omitempty"`
	Synthetic    bool         `json:"synthetic,omitempty" yaml:"synthetic,omitempty"`
}

// CategoryTotal is the summed hours of one category.
type CategoryTotal struct {
	Category string  `json:"category" yaml:"category"`
	Hours    float64 `json:"hours" yaml:"hours"`
}

// SummaryRow is one grouped line of the summary report.
type SummaryRow struct {
	Category     string  `json:"category" yaml:"category"`
	Summary      string  `json:"summary" yaml:"summary"`
	Author       string  `json:"author" yaml:"author"`
	Status       string  `json:"status" yaml:"status"`
	IssueKey     string  `json:"issue_key" yaml:"issue_key"`
	TotalEfforts float64 `json:"total_efforts" yaml:"total_efforts"`
}

// OvertimeBreakdown holds overtime components in hours.
type OvertimeBreakdown struct {
	Author          string  `json:"author" yaml:"author"`
	WeekendHours    float64 `json:"weekend_hours" yaml:"weekend_hours"`
	HolidayOvertime float64 `json:"holiday_overtime" yaml:"holiday_overtime"`
	DailyOvertime   float64 `json:"daily_overtime" yaml:"daily_overtime"`
	LeaveOvertime   float64 `json:"leave_overtime" yaml:"leave_overtime"`
	TotalOvertime   float64 `json:"total_overtime" yaml:"total_overtime"`
}

// Add returns the element-wise sum of two breakdowns.
func (b OvertimeBreakdown) Add(o OvertimeBreakdown) OvertimeBreakdown {
	return OvertimeBreakdown{
		Author:          b.Author,
		WeekendHours:    b.WeekendHours + o.WeekendHours,
		HolidayOvertime: b.HolidayOvertime + o.HolidayOvertime,
		DailyOvertime:   b.DailyOvertime + o.DailyOvertime,
		LeaveOvertime:   b.LeaveOvertime + o.LeaveOvertime,
		TotalOvertime:   b.TotalOvertime + o.TotalOvertime,
	}
}

// WeeklyPoint is one ISO week of the overtime series.
type WeeklyPoint struct {
	Week          string  `json:"week" yaml:"week"`
	DateRange     string  `json:"date_range" yaml:"date_range"`
	TotalHours    float64 `json:"total_hours" yaml:"total_hours"`
	OvertimeHours float64 `json:"overtime_hours" yaml:"overtime_hours"`
	ActualHours   float64 `json:"actual_hours" yaml:"actual_hours"`
}

// CapacityRecord is the available capacity of one author.
type CapacityRecord struct {
	Author string `json:"author" yaml:"author"`
	// WorkingDays counts distinct Monday-Friday dates with a logged entry.
	WorkingDays int `json:"working_days" yaml:"working_days"`
	// PolicyWorkingDays counts distinct dates on policy weekdays that are not holidays.
	PolicyWorkingDays int `json:"policy_working_days" yaml:"policy_working_days"`
	// InferredLeaveDays counts policy workdays inside the author's own logging
	// span that carry no entry.
	InferredLeaveDays   int      `json:"inferred_leave_days" yaml:"inferred_leave_days"`
	AvailableHours      float64  `json:"available_hours" yaml:"available_hours"`
	LeaveDays           *float64 `json:"leave_days,omitempty" yaml:"leave_days,omitempty"`
	AdjustedWorkingDays *float64 `json:"adjusted_working_days,omitempty" yaml:"adjusted_working_days,omitempty"`
	AdjustedHours       *float64 `json:"adjusted_hours,omitempty" yaml:"adjusted_hours,omitempty"`
}

// Pivot is an author by category table of hours.
type Pivot struct {
	Columns []string   `json:"columns" yaml:"columns"`
	Rows    []PivotRow `json:"rows" yaml:"rows"`
}

// PivotRow is one author line of a Pivot. Values align with Pivot.Columns.
type PivotRow struct {
	Author     string    `json:"author" yaml:"author"`
	Values     []float64 `json:"values" yaml:"values"`
	GrandTotal float64   `json:"grand_total" yaml:"grand_total"`
}

// Allocation is the estimated and actual effort of one author on one task.
type Allocation struct {
	Number            int     `json:"number" yaml:"number"`
	Category          string  `json:"category" yaml:"category"`
	Summary           string  `json:"summary" yaml:"summary"`
	Author            string  `json:"author" yaml:"author"`
	Status            string  `json:"status" yaml:"status"`
	OriginalEstimate  float64 `json:"original_estimate" yaml:"original_estimate"`
	RemainingEstimate float64 `json:"remaining_estimate" yaml:"remaining_estimate"`
	EstimatedEffort   float64 `json:"estimated_effort" yaml:"estimated_effort"`
	ActualHours       float64 `json:"actual_hours" yaml:"actual_hours"`
}

// SprintClosure is the three-block sprint closure report.
type SprintClosure struct {
	Capacity    []CapacityRecord `json:"capacity" yaml:"capacity"`
	Burned      Pivot            `json:"burned" yaml:"burned"`
	Allocations []Allocation     `json:"allocations" yaml:"allocations"`
}

// Empty reports whether the report has no blocks.
func (s SprintClosure) Empty() bool {
	return len(s.Capacity) == 0 && len(s.Burned.Rows) == 0 && len(s.Allocations) == 0
}

// DateOf strips the time of day and location from t.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// CategoryOrBlank returns the sentinel for blank categories.
func CategoryOrBlank(c string) string {
	if strings.TrimSpace(c) == "" {
		return NoLabel
	}
	return c
}

// Round2 rounds hours to two decimals.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
