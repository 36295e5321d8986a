package calendar

import (
	"sort"
	"time"

	"github.com/bryan-cox/sprintledger/internal/model"
)

// Observation is one logged (author, date, hours) fact.
type Observation struct {
	Author string
	Date   time.Time
	Hours  float64
}

// Day is one calendar date of a filled range.
type Day struct {
	Date    time.Time      `json:"date" yaml:"date"`
	Class   model.DayClass `json:"class" yaml:"class"`
	Hours   float64        `json:"hours" yaml:"hours"`
	Entries int            `json:"entries" yaml:"entries"`
}

// Observations converts work-log rows to observations.
func Observations(rows []model.WorkLogRow) []Observation {
	obs := make([]Observation, 0, len(rows))
	for _, r := range rows {
		obs = append(obs, Observation{Author: r.Author, Date: r.Day(), Hours: r.Hours()})
	}
	return obs
}

// Classify returns the class of one date given its logged entries and whether
// it lies strictly inside the observed span.
//
// Precedence: NonWorkingDay > Holiday > Leave > Work > NoWork.
func Classify(p *Policy, date time.Time, entries int, hours float64, interior bool) model.DayClass {
	switch {
	case !p.IsPolicyDay(date):
		return model.NonWorkingDay
	case p.IsHoliday(date):
		return model.Holiday
	case entries == 0 && interior:
		return model.Leave
	case hours > 0:
		return model.Work
	default:
		return model.NoWork
	}
}

// FillGaps treats all observations as one author-scope and returns every date
// from the first to the last observed date, inclusive, each with exactly one
// classification. Leave is only inferred strictly inside that span.
func FillGaps(obs []Observation, p *Policy) []Day {
	if len(obs) == 0 {
		return nil
	}

	type bucket struct {
		entries int
		hours   float64
	}
	byDate := make(map[time.Time]*bucket)
	first, last := model.DateOf(obs[0].Date), model.DateOf(obs[0].Date)
	for _, o := range obs {
		d := model.DateOf(o.Date)
		b, ok := byDate[d]
		if !ok {
			b = &bucket{}
			byDate[d] = b
		}
		b.entries++
		b.hours += o.Hours
		if d.Before(first) {
			first = d
		}
		if d.After(last) {
			last = d
		}
	}

	var days []Day
	for d := first; !d.After(last); d = d.AddDate(0, 0, 1) {
		var b bucket
		if got, ok := byDate[d]; ok {
			b = *got
		}
		interior := d.After(first) && d.Before(last)
		days = append(days, Day{
			Date:    d,
			Class:   Classify(p, d, b.entries, b.hours, interior),
			Hours:   b.hours,
			Entries: b.entries,
		})
	}
	return days
}

// FillGapsByAuthor applies FillGaps to each author separately, so Leave is
// bounded by each author's own logging span.
func FillGapsByAuthor(obs []Observation, p *Policy) map[string][]Day {
	byAuthor := make(map[string][]Observation)
	for _, o := range obs {
		byAuthor[o.Author] = append(byAuthor[o.Author], o)
	}
	out := make(map[string][]Day, len(byAuthor))
	for author, list := range byAuthor {
		out[author] = FillGaps(list, p)
	}
	return out
}

// LeaveDates returns the dates classified Leave, in ascending order.
func LeaveDates(days []Day) []time.Time {
	var out []time.Time
	for _, d := range days {
		if d.Class == model.Leave {
			out = append(out, d.Date)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Before(out[j]) })
	return out
}
