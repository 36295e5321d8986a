package report

import (
	"fmt"
	"sort"

	"github.com/bryan-cox/sprintledger/internal/model"
)

type isoWeek struct {
	year, week int
}

func (w isoWeek) label() string {
	return fmt.Sprintf("%04d-W%02d", w.year, w.week)
}

// WeeklySeries buckets the scoped rows by ISO week. Each point carries the
// week's total hours, its overtime (computed on that week's rows alone, with
// no leave credit) and the remaining actual hours. Weeks without hours are
// omitted.
func WeeklySeries(req Request) []model.WeeklyPoint {
	t := req.Scoped()
	p := req.policy()

	buckets := make(map[isoWeek][]model.WorkLogRow)
	for _, r := range t.Rows {
		y, w := r.Day().ISOWeek()
		k := isoWeek{y, w}
		buckets[k] = append(buckets[k], r)
	}

	var points []model.WeeklyPoint
	for k, rows := range buckets {
		var total float64
		for _, r := range rows {
			total += r.Hours()
		}
		if total == 0 {
			continue
		}
		overtime := sumBreakdowns(rawOvertime(rows, 0, p)).TotalOvertime
		points = append(points, model.WeeklyPoint{
			Week:          k.label(),
			DateRange:     weekRange(rows[0]),
			TotalHours:    model.Round2(total),
			OvertimeHours: model.Round2(overtime),
			ActualHours:   model.Round2(max(total-overtime, 0)),
		})
	}
	sort.Slice(points, func(i, j int) bool { return points[i].Week < points[j].Week })
	return points
}

// weekRange returns "Monday to Sunday" of the ISO week containing r.
func weekRange(r model.WorkLogRow) string {
	d := r.Day()
	monday := d.AddDate(0, 0, -((int(d.Weekday()) + 6) % 7))
	sunday := monday.AddDate(0, 0, 6)
	return monday.Format("2006-01-02") + " to " + sunday.Format("2006-01-02")
}
