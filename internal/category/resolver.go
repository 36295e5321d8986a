// Package category decides which input column is read as a row's category.
package category

import (
	"strings"

	"github.com/bryan-cox/sprintledger/internal/model"
)

// Built-in category modes.
const (
	ModeActivity = "Activity"
	ModeLabel    = "Label"
)

// Resolution is the outcome of resolving a category mode. Either Column names
// the column to read, or Constant is used for every row.
type Resolution struct {
	Rule     string
	Column   string
	Constant string
}

// Value returns the category of row r under this resolution.
func (res Resolution) Value(r model.WorkLogRow) string {
	if res.Column == "" {
		return res.Constant
	}
	return r.Value(res.Column)
}

// Rule is one step of the fallback chain. Match returns the resolution and
// true when the rule applies.
type Rule struct {
	Name  string
	Match func(mode string, columns []string) (Resolution, bool)
}

// DefaultRules is the resolution order used by every report:
//
//  1. the mode names an existing column
//  2. Activity mode and an Activity-like column exists
//  3. Label mode and a Labels-like column exists
//  4. any Labels-like column
//  5. any Activity-like column
//  6. the constant "General"
func DefaultRules() []Rule {
	return []Rule{
		{Name: "exact", Match: func(mode string, columns []string) (Resolution, bool) {
			if c, ok := findColumn(columns, func(c string) bool { return c == mode }); ok {
				return Resolution{Column: c}, true
			}
			return Resolution{}, false
		}},
		{Name: "activity-mode", Match: func(mode string, columns []string) (Resolution, bool) {
			if !strings.EqualFold(mode, ModeActivity) {
				return Resolution{}, false
			}
			return columnResolution(findColumn(columns, isActivityLike))
		}},
		{Name: "label-mode", Match: func(mode string, columns []string) (Resolution, bool) {
			if !isLabelMode(mode) {
				return Resolution{}, false
			}
			return columnResolution(findColumn(columns, isLabelsLike))
		}},
		{Name: "labels-fallback", Match: func(_ string, columns []string) (Resolution, bool) {
			return columnResolution(findColumn(columns, isLabelsLike))
		}},
		{Name: "activity-fallback", Match: func(_ string, columns []string) (Resolution, bool) {
			return columnResolution(findColumn(columns, isActivityLike))
		}},
		{Name: "constant", Match: func(_ string, _ []string) (Resolution, bool) {
			return Resolution{Constant: model.General}, true
		}},
	}
}

// Resolve evaluates DefaultRules in order.
func Resolve(mode string, columns []string) Resolution {
	return ResolveWith(DefaultRules(), mode, columns)
}

// ResolveWith evaluates rules in order and returns the first match. A blank
// mode means ModeActivity. If no rule matches the constant "General" is used.
func ResolveWith(rules []Rule, mode string, columns []string) Resolution {
	mode = strings.TrimSpace(mode)
	if mode == "" {
		mode = ModeActivity
	}
	for _, rule := range rules {
		if res, ok := rule.Match(mode, columns); ok {
			res.Rule = rule.Name
			return res
		}
	}
	return Resolution{Rule: "constant", Constant: model.General}
}

func isLabelMode(mode string) bool {
	return strings.EqualFold(mode, ModeLabel) || strings.EqualFold(mode, model.ColLabels)
}

func isLabelsLike(c string) bool {
	n := strings.ToLower(strings.TrimSpace(c))
	return n == "labels" || n == "label"
}

func isActivityLike(c string) bool {
	return strings.Contains(strings.ToLower(c), "activity")
}

// findColumn returns the first column satisfying pred, in input order.
func findColumn(columns []string, pred func(string) bool) (string, bool) {
	for _, c := range columns {
		if pred(c) {
			return c, true
		}
	}
	return "", false
}

func columnResolution(c string, ok bool) (Resolution, bool) {
	if !ok {
		return Resolution{}, false
	}
	return Resolution{Column: c}, true
}
