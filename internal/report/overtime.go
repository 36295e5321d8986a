package report

import (
	"sort"
	"time"

	"github.com/bryan-cox/sprintledger/internal/calendar"
	"github.com/bryan-cox/sprintledger/internal/model"
)

// ComputeOvertime returns one breakdown per author, sorted by author.
//
// For each author, hours are bucketed by calendar date:
//   - weekend hours: dates whose weekday is outside the policy
//   - holiday overtime: dates in the holiday set, whatever the weekday
//   - daily overtime: on policy days that are not holidays, hours above the
//     working-hours threshold
//   - leave overtime: leaveDays x working hours, a flat credit
func ComputeOvertime(rows []model.WorkLogRow, leaveDays float64, p *calendar.Policy) []model.OvertimeBreakdown {
	raw := rawOvertime(rows, leaveDays, p)
	out := make([]model.OvertimeBreakdown, 0, len(raw))
	for _, b := range raw {
		out = append(out, roundBreakdown(b))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Author < out[j].Author })
	return out
}

// OvertimeFor returns the breakdown for the request's scope: the selected
// author's breakdown, or the element-wise sum over all authors labelled "All"
// when more than one author is present.
func OvertimeFor(req Request) model.OvertimeBreakdown {
	t := req.Scoped()
	raw := rawOvertime(t.Rows, req.LeaveDays, req.policy())

	if req.SingleAuthor() {
		b := raw[req.Author]
		b.Author = req.Author
		return roundBreakdown(b)
	}
	if len(raw) == 1 {
		for _, b := range raw {
			return roundBreakdown(b)
		}
	}
	return roundBreakdown(sumBreakdowns(raw))
}

func rawOvertime(rows []model.WorkLogRow, leaveDays float64, p *calendar.Policy) map[string]model.OvertimeBreakdown {
	if p == nil {
		p = calendar.DefaultPolicy()
	}
	perDate := make(map[string]map[time.Time]float64)
	for _, r := range rows {
		dates, ok := perDate[r.Author]
		if !ok {
			dates = make(map[time.Time]float64)
			perDate[r.Author] = dates
		}
		dates[r.Day()] += r.Hours()
	}

	out := make(map[string]model.OvertimeBreakdown, len(perDate))
	for author, dates := range perDate {
		b := model.OvertimeBreakdown{Author: author}
		for d, h := range dates {
			if !p.IsPolicyDay(d) {
				b.WeekendHours += h
			}
			if p.IsHoliday(d) {
				b.HolidayOvertime += h
			}
			if p.IsPolicyDay(d) && !p.IsHoliday(d) && h > p.WorkingHours() {
				b.DailyOvertime += h - p.WorkingHours()
			}
		}
		b.LeaveOvertime = leaveDays * p.WorkingHours()
		b.TotalOvertime = b.WeekendHours + b.HolidayOvertime + b.DailyOvertime + b.LeaveOvertime
		out[author] = b
	}
	return out
}

func sumBreakdowns(raw map[string]model.OvertimeBreakdown) model.OvertimeBreakdown {
	sum := model.OvertimeBreakdown{Author: model.AllAuthors}
	for _, b := range raw {
		sum = sum.Add(b)
	}
	return sum
}

func roundBreakdown(b model.OvertimeBreakdown) model.OvertimeBreakdown {
	return model.OvertimeBreakdown{
		Author:          b.Author,
		WeekendHours:    model.Round2(b.WeekendHours),
		HolidayOvertime: model.Round2(b.HolidayOvertime),
		DailyOvertime:   model.Round2(b.DailyOvertime),
		LeaveOvertime:   model.Round2(b.LeaveOvertime),
		TotalOvertime:   model.Round2(b.TotalOvertime),
	}
}
