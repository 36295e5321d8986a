// Package calendar classifies logged dates against a working-day policy and
// fills the gaps between them.
package calendar

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/rickar/cal/v2"

	"github.com/bryan-cox/sprintledger/internal/model"
)

// DefaultWorkingHours is the daily threshold above which hours count as overtime.
const DefaultWorkingHours = 8.0

// Policy is an immutable working-day policy: the standard weekdays, the daily
// working-hours threshold and a set of explicit holiday dates.
type Policy struct {
	weekdays     [7]bool
	workingHours float64
	holidays     []time.Time
	bc           *cal.BusinessCalendar
}

// NewPolicy builds a policy. An empty weekday list means Monday to Friday and a
// non-positive threshold means DefaultWorkingHours.
func NewPolicy(weekdays []time.Weekday, workingHours float64, holidays []time.Time) *Policy {
	if len(weekdays) == 0 {
		weekdays = []time.Weekday{time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday}
	}
	if workingHours <= 0 {
		workingHours = DefaultWorkingHours
	}

	p := &Policy{workingHours: workingHours, bc: cal.NewBusinessCalendar()}
	for _, d := range weekdays {
		p.weekdays[d] = true
	}
	for d := time.Sunday; d <= time.Saturday; d++ {
		p.bc.SetWorkday(d, p.weekdays[d])
	}

	seen := make(map[time.Time]bool)
	for _, h := range holidays {
		day := model.DateOf(h)
		if seen[day] {
			continue
		}
		seen[day] = true
		p.holidays = append(p.holidays, day)
		// One-time holiday: only valid in its own year.
		p.bc.AddHoliday(&cal.Holiday{
			Name:      day.Format("2006-01-02"),
			Type:      cal.ObservancePublic,
			Month:     day.Month(),
			Day:       day.Day(),
			Func:      cal.CalcDayOfMonth,
			StartYear: day.Year(),
			EndYear:   day.Year(),
		})
	}
	sort.Slice(p.holidays, func(i, j int) bool { return p.holidays[i].Before(p.holidays[j]) })
	return p
}

// DefaultPolicy returns Monday to Friday, 8 hours, no holidays.
func DefaultPolicy() *Policy {
	return NewPolicy(nil, DefaultWorkingHours, nil)
}

// WorkingHours returns the daily overtime threshold.
func (p *Policy) WorkingHours() float64 {
	return p.workingHours
}

// Weekdays returns the policy weekdays in Monday-first order.
func (p *Policy) Weekdays() []time.Weekday {
	var days []time.Weekday
	for _, d := range mondayFirst {
		if p.weekdays[d] {
			days = append(days, d)
		}
	}
	return days
}

// Holidays returns a copy of the holiday dates in ascending order.
func (p *Policy) Holidays() []time.Time {
	return append([]time.Time(nil), p.holidays...)
}

// IsPolicyDay reports whether the weekday of t is a standard working day.
func (p *Policy) IsPolicyDay(t time.Time) bool {
	return p.weekdays[t.Weekday()]
}

// IsHoliday reports whether t falls on an explicit holiday, whatever its weekday.
func (p *Policy) IsHoliday(t time.Time) bool {
	actual, observed, _ := p.bc.IsHoliday(model.DateOf(t))
	return actual || observed
}

// IsStandardWorkday reports whether t is a policy weekday that is not a holiday.
func (p *Policy) IsStandardWorkday(t time.Time) bool {
	return p.bc.IsWorkday(model.DateOf(t))
}

var mondayFirst = []time.Weekday{
	time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday, time.Saturday, time.Sunday,
}

// ParseWeekdays converts weekday names ("Monday", "mon") to time.Weekday values.
func ParseWeekdays(names []string) ([]time.Weekday, error) {
	var days []time.Weekday
	for _, name := range names {
		n := strings.ToLower(strings.TrimSpace(name))
		if n == "" {
			continue
		}
		found := false
		for _, d := range mondayFirst {
			full := strings.ToLower(d.String())
			if n == full || n == full[:3] {
				days = append(days, d)
				found = true
				break
			}
		}
		if !found {
			return nil, fmt.Errorf("unknown weekday %q", name)
		}
	}
	return days, nil
}

// ParseHolidays parses holiday dates in YYYY-MM-DD form.
func ParseHolidays(values []string) ([]time.Time, error) {
	var days []time.Time
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		d, err := time.Parse("2006-01-02", v)
		if err != nil {
			return nil, fmt.Errorf("invalid holiday date %q, use YYYY-MM-DD: %w", v, err)
		}
		days = append(days, d)
	}
	return days, nil
}
