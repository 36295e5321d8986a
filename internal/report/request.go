// Package report derives summaries, overtime, capacity and sprint closure
// reports from a work-log table.
package report

import (
	"github.com/bryan-cox/sprintledger/internal/calendar"
	"github.com/bryan-cox/sprintledger/internal/model"
)

// Request carries everything one derivation pass needs. It is passed by value
// and never modified, so concurrent reports do not share state.
type Request struct {
	ID           string
	Table        model.Table
	Author       string
	BaseURL      string
	// CategoryMode is passed to category.Resolve; empty means Activity.
	CategoryMode string
	SummaryField string
	Sort         SortMode
	LeaveDays    float64
	Policy       *calendar.Policy
}

// Scoped returns the rows selected by the request's author scope.
func (r Request) Scoped() model.Table {
	return r.Table.Filter(r.Author)
}

// SingleAuthor reports whether the request is scoped to one author.
func (r Request) SingleAuthor() bool {
	return r.Author != "" && r.Author != model.AllAuthors
}

// Authors returns the authors available for selection.
func (r Request) Authors() []string {
	return r.Table.Authors()
}

func (r Request) policy() *calendar.Policy {
	if r.Policy == nil {
		return calendar.DefaultPolicy()
	}
	return r.Policy
}
