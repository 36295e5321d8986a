package report

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/samber/lo"

	"github.com/bryan-cox/sprintledger/internal/category"
	"github.com/bryan-cox/sprintledger/internal/model"
)

// SortMode orders summary rows.
type SortMode string

const (
	SortAuthor SortMode = "author"
	SortEffort SortMode = "effort"
	SortTicket SortMode = "ticket"
)

// Summary field modes.
const (
	SummaryIssue  = model.ColIssueSummary
	SummaryParent = model.ColParentSummary
)

// ParseSortMode accepts the mode names used by the export UI and CLI flags.
func ParseSortMode(s string) (SortMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "author":
		return SortAuthor, nil
	case "effort", "efforts", "total efforts", "total effort":
		return SortEffort, nil
	case "ticket", "task", "issue key", "ticket/task #":
		return SortTicket, nil
	}
	return "", fmt.Errorf("unknown sort mode %q (use author, effort or ticket)", s)
}

// ResolveSummaryField returns the column used as the task summary. Parent
// Summary is only used when the table carries it.
func ResolveSummaryField(mode string, columns []string) string {
	if strings.EqualFold(strings.TrimSpace(mode), SummaryParent) && lo.Contains(columns, SummaryParent) {
		return SummaryParent
	}
	return SummaryIssue
}

type summaryKey struct {
	category, summary, author, status string
}

// Summarize groups the scoped rows by (category, summary, author, status) and
// sums their time into Total Efforts. Tables reconstructed from an exported
// timesheet are grouped by issue key only.
func Summarize(req Request) []model.SummaryRow {
	t := req.Scoped()
	if len(t.Rows) == 0 {
		return nil
	}
	res := category.Resolve(req.CategoryMode, t.Columns)
	summaryCol := ResolveSummaryField(req.SummaryField, t.Columns)

	var rows []model.SummaryRow
	if t.Reverse {
		rows = summarizeByIssue(t, res, summaryCol)
	} else {
		rows = summarizeByGroup(t, res, summaryCol)
	}
	sortSummary(rows, req.Sort)
	return rows
}

func summarizeByGroup(t model.Table, res category.Resolution, summaryCol string) []model.SummaryRow {
	seconds := make(map[summaryKey]int64)
	firstKey := make(map[summaryKey]string)
	var order []summaryKey
	for _, r := range t.Rows {
		k := summaryKey{
			category: model.CategoryOrBlank(res.Value(r)),
			summary:  r.Value(summaryCol),
			author:   r.Author,
			status:   r.IssueStatus,
		}
		if _, ok := seconds[k]; !ok {
			order = append(order, k)
			firstKey[k] = r.IssueKey
		}
		seconds[k] += r.TimeSpentSeconds
	}

	return lo.Map(order, func(k summaryKey, _ int) model.SummaryRow {
		return model.SummaryRow{
			Category:     k.category,
			Summary:      k.summary,
			Author:       k.author,
			Status:       k.status,
			IssueKey:     firstKey[k],
			TotalEfforts: model.Round2(float64(seconds[k]) / model.SecondsInHour),
		}
	})
}

func summarizeByIssue(t model.Table, res category.Resolution, summaryCol string) []model.SummaryRow {
	groups := lo.GroupBy(t.Rows, func(r model.WorkLogRow) string { return r.IssueKey })
	keys := lo.Uniq(lo.Map(t.Rows, func(r model.WorkLogRow, _ int) string { return r.IssueKey }))

	return lo.Map(keys, func(key string, _ int) model.SummaryRow {
		group := groups[key]
		first := group[0]
		secs := lo.SumBy(group, func(r model.WorkLogRow) int64 { return r.TimeSpentSeconds })
		return model.SummaryRow{
			Category:     model.CategoryOrBlank(res.Value(first)),
			Summary:      first.Value(summaryCol),
			Author:       first.Author,
			Status:       first.IssueStatus,
			IssueKey:     key,
			TotalEfforts: model.Round2(float64(secs) / model.SecondsInHour),
		}
	})
}

func sortSummary(rows []model.SummaryRow, mode SortMode) {
	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		switch mode {
		case SortEffort:
			if a.TotalEfforts != b.TotalEfforts {
				return a.TotalEfforts > b.TotalEfforts
			}
			return a.Author < b.Author
		case SortTicket:
			if c := compareIssueKeys(a.IssueKey, b.IssueKey); c != 0 {
				return c < 0
			}
			return a.Author < b.Author
		default:
			if a.Author != b.Author {
				return a.Author < b.Author
			}
			return a.TotalEfforts > b.TotalEfforts
		}
	})
}

// compareIssueKeys orders keys by project prefix, then numerically, so that
// OPS-9 sorts before OPS-10.
func compareIssueKeys(a, b string) int {
	pa, na, okA := splitIssueKey(a)
	pb, nb, okB := splitIssueKey(b)
	if okA && okB {
		if pa != pb {
			return strings.Compare(pa, pb)
		}
		switch {
		case na < nb:
			return -1
		case na > nb:
			return 1
		}
		return 0
	}
	return strings.Compare(a, b)
}

func splitIssueKey(key string) (string, int, bool) {
	i := strings.LastIndex(key, "-")
	if i <= 0 {
		return "", 0, false
	}
	n, err := strconv.Atoi(key[i+1:])
	if err != nil {
		return "", 0, false
	}
	return key[:i], n, true
}
