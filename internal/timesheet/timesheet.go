// Package timesheet turns raw work-log rows into the detailed timesheet view:
// one line per logged entry plus synthetic lines for non-working, holiday and
// leave dates, in chronological order.
package timesheet

import (
	"sort"
	"time"

	"github.com/bryan-cox/sprintledger/internal/calendar"
	"github.com/bryan-cox/sprintledger/internal/category"
	"github.com/bryan-cox/sprintledger/internal/jira"
	"github.com/bryan-cox/sprintledger/internal/model"
)

// Options configures one normalization pass.
type Options struct {
	BaseURL      string
	CategoryMode string
	Policy       *calendar.Policy
}

type keyedRow struct {
	row model.TimesheetRow
	key time.Time
}

// Normalize maps the rows of one author-scope to timesheet rows and returns
// them together with the category totals of the logged rows. The input table
// is never modified.
func Normalize(t model.Table, opts Options) ([]model.TimesheetRow, []model.CategoryTotal) {
	if len(t.Rows) == 0 {
		return nil, nil
	}
	policy := opts.Policy
	if policy == nil {
		policy = calendar.DefaultPolicy()
	}
	res := category.Resolve(opts.CategoryMode, t.Columns)

	days := calendar.FillGaps(calendar.Observations(t.Rows), policy)
	classOf := make(map[time.Time]calendar.Day, len(days))
	for _, d := range days {
		classOf[d.Date] = d
	}

	keyed := make([]keyedRow, 0, len(t.Rows)+len(days))
	for _, r := range t.Rows {
		end := r.Start.Add(time.Duration(r.TimeSpentSeconds) * time.Second)
		keyed = append(keyed, keyedRow{
			key: r.Start,
			row: model.TimesheetRow{
				TimeCategory: model.FullDay,
				Class:        classOf[r.Day()].Class,
				Date:         r.Day(),
				DisplayDate:  r.Start.Format(model.DisplayDateFmt),
				Author:       r.Author,
				Project:      r.ProjectName,
				Activity:     r.Comment,
				Hours:        model.Round2(r.Hours()),
				Seconds:      r.TimeSpentSeconds,
				Category:     res.Value(r),
				Ticket:       jira.TicketURL(opts.BaseURL, r.IssueKey),
				StartTime:    r.Start.Format(model.ClockFmt),
				EndTime:      end.Format(model.ClockFmt),
				Status:       r.IssueStatus,
			},
		})
	}

	for _, d := range days {
		if d.Entries > 0 {
			continue
		}
		tc, ok := syntheticCategory(d.Class)
		if !ok {
			continue
		}
		keyed = append(keyed, keyedRow{
			key: d.Date,
			row: model.TimesheetRow{
				TimeCategory: tc,
				Class:        d.Class,
				Date:         d.Date,
				DisplayDate:  d.Date.Format(model.DisplayDateFmt),
				Remarks:      string(d.Class),
				Synthetic:    true,
			},
		})
	}

	// Rows without a usable timestamp go last, keeping their input order.
	sort.SliceStable(keyed, func(i, j int) bool {
		ki, kj := keyed[i].key, keyed[j].key
		if ki.IsZero() || kj.IsZero() {
			return !ki.IsZero() && kj.IsZero()
		}
		return ki.Before(kj)
	})

	rows := make([]model.TimesheetRow, len(keyed))
	for i, k := range keyed {
		rows[i] = k.row
	}
	return rows, Totals(rows)
}

func syntheticCategory(c model.DayClass) (model.TimeCategory, bool) {
	switch c {
	case model.NonWorkingDay, model.Holiday:
		return model.HolidayTime, true
	case model.Leave:
		return model.LeaveTime, true
	}
	return "", false
}

// Totals sums the time of the logged (non-synthetic) rows per category and
// rounds once per category, so sub-hour entries are not lost to per-row
// rounding. Blank categories collapse to "No Label/Empty", which is ordered last.
func Totals(rows []model.TimesheetRow) []model.CategoryTotal {
	sums := make(map[string]int64)
	for _, r := range rows {
		if r.Synthetic {
			continue
		}
		sums[model.CategoryOrBlank(r.Category)] += r.Seconds
	}
	if len(sums) == 0 {
		return nil
	}

	totals := make([]model.CategoryTotal, 0, len(sums))
	for c, secs := range sums {
		totals = append(totals, model.CategoryTotal{Category: c, Hours: model.Round2(float64(secs) / model.SecondsInHour)})
	}
	sort.Slice(totals, func(i, j int) bool {
		ci, cj := totals[i].Category, totals[j].Category
		if (ci == model.NoLabel) != (cj == model.NoLabel) {
			return cj == model.NoLabel
		}
		return ci < cj
	})
	return totals
}

// WithGrandTotal returns a copy of totals with a "Grand Total" row appended.
func WithGrandTotal(totals []model.CategoryTotal) []model.CategoryTotal {
	out := append([]model.CategoryTotal(nil), totals...)
	var sum float64
	for _, t := range totals {
		sum += t.Hours
	}
	return append(out, model.CategoryTotal{Category: model.GrandTotal, Hours: model.Round2(sum)})
}
