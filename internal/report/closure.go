package report

import (
	"sort"

	"github.com/bryan-cox/sprintledger/internal/category"
	"github.com/bryan-cox/sprintledger/internal/model"
)

type taskKey struct {
	category, summary string
}

type taskState struct {
	estimates  map[string]int64 // issue key -> original estimate seconds
	remaining  map[string]int64
	authors    []string
	seconds    map[string]int64
	status     map[string]string
	totalHours float64
}

// BuildSprintClosure builds the three-block sprint closure report: available
// capacity, burned capacity by label, and the per-(label, summary, author)
// allocation of each task's original estimate. Empty input yields an empty
// report.
func BuildSprintClosure(req Request) model.SprintClosure {
	t := req.Scoped()
	if len(t.Rows) == 0 {
		return model.SprintClosure{}
	}
	labels := category.Resolve(category.ModeLabel, t.Columns)

	return model.SprintClosure{
		Capacity:    WorkingDays(t, req.policy()),
		Burned:      BurnedPivot(t, labels),
		Allocations: Allocate(t, labels, ResolveSummaryField(req.SummaryField, t.Columns)),
	}
}

// Allocate splits each task's original estimate across its contributing
// authors in proportion to their share of the task's logged hours, or equally
// when nothing was logged. A task's estimate is the sum of the first-seen
// estimates of its distinct issues. Rows are sorted by author, then label, and
// numbered from 1.
func Allocate(t model.Table, labels category.Resolution, summaryCol string) []model.Allocation {
	tasks := make(map[taskKey]*taskState)
	var order []taskKey
	for _, r := range t.Rows {
		k := taskKey{category: model.CategoryOrBlank(labels.Value(r)), summary: r.Value(summaryCol)}
		st, ok := tasks[k]
		if !ok {
			st = &taskState{
				estimates: make(map[string]int64),
				remaining: make(map[string]int64),
				seconds:   make(map[string]int64),
				status:    make(map[string]string),
			}
			tasks[k] = st
			order = append(order, k)
		}
		if _, seen := st.estimates[r.IssueKey]; !seen {
			st.estimates[r.IssueKey] = r.OriginalEstimateSeconds
			st.remaining[r.IssueKey] = r.RemainingEstimateSeconds
		}
		if _, seen := st.seconds[r.Author]; !seen {
			st.authors = append(st.authors, r.Author)
			st.status[r.Author] = r.IssueStatus
		}
		st.seconds[r.Author] += r.TimeSpentSeconds
		st.totalHours += r.Hours()
	}

	var out []model.Allocation
	for _, k := range order {
		st := tasks[k]
		estimate := hoursOf(st.estimates)
		remaining := hoursOf(st.remaining)
		for _, author := range st.authors {
			actual := float64(st.seconds[author]) / model.SecondsInHour
			var share float64
			if st.totalHours > 0 {
				share = actual / st.totalHours
			} else {
				share = 1 / float64(len(st.authors))
			}
			out = append(out, model.Allocation{
				Category:          k.category,
				Summary:           k.summary,
				Author:            author,
				Status:            st.status[author],
				OriginalEstimate:  model.Round2(estimate),
				RemainingEstimate: model.Round2(remaining),
				EstimatedEffort:   model.Round2(estimate * share),
				ActualHours:       model.Round2(actual),
			})
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Author != b.Author {
			return a.Author < b.Author
		}
		if a.Category != b.Category {
			return a.Category < b.Category
		}
		return a.Summary < b.Summary
	})
	for i := range out {
		out[i].Number = i + 1
	}
	return out
}

func hoursOf(perIssue map[string]int64) float64 {
	var secs int64
	for _, s := range perIssue {
		secs += s
	}
	return float64(secs) / model.SecondsInHour
}
