package report

import (
	"sort"
	"time"

	"github.com/bryan-cox/sprintledger/internal/calendar"
	"github.com/bryan-cox/sprintledger/internal/category"
	"github.com/bryan-cox/sprintledger/internal/model"
)

// Capacity is the available and burned capacity of the scoped authors.
type Capacity struct {
	Records  []model.CapacityRecord `json:"records" yaml:"records"`
	HasLeave bool                   `json:"has_leave" yaml:"has_leave"`
	Burned   model.Pivot            `json:"burned" yaml:"burned"`
}

// ComputeCapacity returns the per-author capacity and the author by category
// pivot of hours, using the request's category mode as the pivot column.
func ComputeCapacity(req Request) Capacity {
	t := req.Scoped()
	if len(t.Rows) == 0 {
		return Capacity{}
	}
	return Capacity{
		Records:  WorkingDays(t, req.policy()),
		HasLeave: t.HasColumn(model.ColLeaveDays),
		Burned:   BurnedPivot(t, category.Resolve(req.CategoryMode, t.Columns)),
	}
}

// WorkingDays returns one capacity record per author, sorted by author.
//
// WorkingDays counts distinct Monday-Friday dates with a logged entry,
// regardless of the policy. PolicyWorkingDays counts distinct dates that are
// policy weekdays and not holidays. Available hours use WorkingDays. Gaps are
// filled per author, so one author's logging never implies another's leave.
// When the table has a "Leave Days" column the leave-adjusted figures are filled.
func WorkingDays(t model.Table, p *calendar.Policy) []model.CapacityRecord {
	filled := calendar.FillGapsByAuthor(calendar.Observations(t.Rows), p)
	weekdays := make(map[string]map[time.Time]bool)
	policyDays := make(map[string]map[time.Time]bool)
	leave := make(map[string]float64)
	for _, r := range t.Rows {
		if _, ok := weekdays[r.Author]; !ok {
			weekdays[r.Author] = make(map[time.Time]bool)
			policyDays[r.Author] = make(map[time.Time]bool)
		}
		d := r.Day()
		if d.Weekday() >= time.Monday && d.Weekday() <= time.Friday {
			weekdays[r.Author][d] = true
		}
		if p.IsStandardWorkday(d) {
			policyDays[r.Author][d] = true
		}
		leave[r.Author] = max(leave[r.Author], r.LeaveDays)
	}

	hasLeave := t.HasColumn(model.ColLeaveDays)
	records := make([]model.CapacityRecord, 0, len(weekdays))
	for author, days := range weekdays {
		rec := model.CapacityRecord{
			Author:            author,
			WorkingDays:       len(days),
			PolicyWorkingDays: len(policyDays[author]),
			InferredLeaveDays: len(calendar.LeaveDates(filled[author])),
			AvailableHours:    model.Round2(float64(len(days)) * p.WorkingHours()),
		}
		if hasLeave {
			l := leave[author]
			adjusted := max(float64(len(days))-l, 0)
			hours := model.Round2(adjusted * p.WorkingHours())
			rec.LeaveDays = &l
			rec.AdjustedWorkingDays = &adjusted
			rec.AdjustedHours = &hours
		}
		records = append(records, rec)
	}
	sort.Slice(records, func(i, j int) bool { return records[i].Author < records[j].Author })
	return records
}

// BurnedPivot sums hours by author and category value. Blank categories use
// the "No Label/Empty" column, ordered last. Each row carries a grand total.
func BurnedPivot(t model.Table, res category.Resolution) model.Pivot {
	sums := make(map[string]map[string]float64)
	colSet := make(map[string]bool)
	for _, r := range t.Rows {
		c := model.CategoryOrBlank(res.Value(r))
		colSet[c] = true
		if _, ok := sums[r.Author]; !ok {
			sums[r.Author] = make(map[string]float64)
		}
		sums[r.Author][c] += r.Hours()
	}
	if len(sums) == 0 {
		return model.Pivot{}
	}

	columns := make([]string, 0, len(colSet))
	for c := range colSet {
		columns = append(columns, c)
	}
	sort.Slice(columns, func(i, j int) bool {
		if (columns[i] == model.NoLabel) != (columns[j] == model.NoLabel) {
			return columns[j] == model.NoLabel
		}
		return columns[i] < columns[j]
	})

	authors := make([]string, 0, len(sums))
	for a := range sums {
		authors = append(authors, a)
	}
	sort.Strings(authors)

	pivot := model.Pivot{Columns: columns}
	for _, a := range authors {
		row := model.PivotRow{Author: a, Values: make([]float64, len(columns))}
		var total float64
		for i, c := range columns {
			v := model.Round2(sums[a][c])
			row.Values[i] = v
			total += v
		}
		row.GrandTotal = model.Round2(total)
		pivot.Rows = append(pivot.Rows, row)
	}
	return pivot
}
