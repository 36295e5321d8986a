package main

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/bryan-cox/sprintledger/internal/model"
)

// --- Test Setup ---

func setupTests(t *testing.T) string {
	t.Helper()
	content := []byte(`Author,Start Date,Time Spent (seconds),Issue Key,Issue Status,Project Name,Comment,Issue Summary,Labels,Activity,Original Estimate (seconds)
Alice,2024-01-08 09:00,32400,OPS-1,Done,Platform,deploy,Upgrade cluster,infra,Development,36000
Alice,2024-01-10 09:00,7200,OPS-2,In Progress,Platform,login,Login page,feature,Development,14400
 Bob ,2024-01-08 10:00,14400,OPS-1,Done,Platform,review,Upgrade cluster,infra,Review,36000
Bob,2024-01-13 10:00,3600,OPS-3,Done,Platform,hotfix,Hotfix,,Support,0
`)
	path := filepath.Join(t.TempDir(), "worklog.csv")
	if err := os.WriteFile(path, content, 0o600); err != nil {
		t.Fatalf("Failed to write worklog: %v", err)
	}
	return path
}

func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

// executeCommandText captures plain text output from a command.
func executeCommandText(t *testing.T, args ...string) string {
	t.Helper()
	t.Setenv("SPRINTLEDGER_COLOR", "false")
	b := new(bytes.Buffer)

	rootCmd.SetOut(b)
	rootCmd.SetErr(b)
	rootCmd.SetArgs(args)

	// Reset flags to default values before each run
	resetFlags(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("command execution failed: %v", err)
	}
	return b.String()
}

func quietLogs(t *testing.T) {
	t.Helper()
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(io.Discard, nil)))
	t.Cleanup(func() { slog.SetDefault(prev) })
}

// --- Test Functions ---

func TestAuthorsCommand(t *testing.T) {
	quietLogs(t)
	file := setupTests(t)

	output := executeCommandText(t, "authors", "--file", file)
	for _, want := range []string{"All", "Alice", "Bob"} {
		if !strings.Contains(output, want) {
			t.Errorf("Expected %q in output:\n%s", want, output)
		}
	}
	if strings.Contains(output, " Bob ") {
		t.Errorf("Expected author names to be trimmed:\n%s", output)
	}
}

func TestDetailedCommand(t *testing.T) {
	quietLogs(t)
	file := setupTests(t)

	output := executeCommandText(t, "detailed", "--file", file, "--author", "Alice", "--base-url", "https://jira.example.com/browse/")

	expected := []string{
		"Detailed Timesheet",
		"08/Jan/2024",
		"https://jira.example.com/browse/OPS-1",
		"09:00 AM",
		"06:00 PM",
		"09/Jan/2024",
		"Leave",
		"Hours by Category",
		"Development",
		"Grand Total",
		"11.00",
	}
	for _, want := range expected {
		if !strings.Contains(output, want) {
			t.Errorf("Expected %q in output:\n%s", want, output)
		}
	}
	if strings.Contains(output, "OPS-3") {
		t.Errorf("Expected only Alice's rows:\n%s", output)
	}
}

func TestSummaryCommandJSON(t *testing.T) {
	quietLogs(t)
	file := setupTests(t)

	output := executeCommandText(t, "summary", "--file", file, "--format", "json", "--sort", "effort")
	var rows []model.SummaryRow
	if err := json.Unmarshal([]byte(output), &rows); err != nil {
		t.Fatalf("Failed to parse JSON output: %v\n%s", err, output)
	}
	if len(rows) != 4 {
		t.Fatalf("Expected 4 summary rows, got %d", len(rows))
	}
	if rows[0].Author != "Alice" || rows[0].TotalEfforts != 9 {
		t.Errorf("Expected Alice with 9h first, got %+v", rows[0])
	}
	var total float64
	for _, r := range rows {
		total += r.TotalEfforts
	}
	if total != 16 {
		t.Errorf("Expected 16 total hours, got %v", total)
	}
}

func TestOvertimeCommand(t *testing.T) {
	quietLogs(t)
	file := setupTests(t)

	t.Run("single author", func(t *testing.T) {
		output := executeCommandText(t, "overtime", "--file", file, "--author", "Alice", "--format", "json")
		var b model.OvertimeBreakdown
		if err := json.Unmarshal([]byte(output), &b); err != nil {
			t.Fatalf("Failed to parse JSON output: %v\n%s", err, output)
		}
		if b.DailyOvertime != 1 || b.TotalOvertime != 1 {
			t.Errorf("Expected 1h daily overtime, got %+v", b)
		}
	})

	t.Run("all authors with leave credit", func(t *testing.T) {
		output := executeCommandText(t, "overtime", "--file", file, "--format", "yaml", "--leave-days", "1")
		for _, want := range []string{"author: All", "weekend_hours: 1", "leave_overtime: 16", "total_overtime: 18"} {
			if !strings.Contains(output, want) {
				t.Errorf("Expected %q in output:\n%s", want, output)
			}
		}
	})

	t.Run("per author table", func(t *testing.T) {
		output := executeCommandText(t, "overtime", "--file", file, "--by-author")
		if !strings.Contains(output, "Alice") || !strings.Contains(output, "Bob") || !strings.Contains(output, "All") {
			t.Errorf("Expected one line per author and a total:\n%s", output)
		}
	})
}

func TestSprintClosureCommand(t *testing.T) {
	quietLogs(t)
	file := setupTests(t)

	output := executeCommandText(t, "sprint-closure", "--file", file)
	expected := []string{
		"Available Capacity",
		"Burned Capacity",
		"Features and Tech Debt",
		"No Label/Empty",
		"Upgrade cluster",
	}
	for _, want := range expected {
		if !strings.Contains(output, want) {
			t.Errorf("Expected %q in output:\n%s", want, output)
		}
	}
}

func TestExportAndReverse(t *testing.T) {
	quietLogs(t)
	file := setupTests(t)
	out := t.TempDir()

	output := executeCommandText(t, "export", "--file", file, "--out", out)
	for _, name := range []string{"worklog_detailed.xlsx", "jira_summary.xlsx", "sprint_closure_report.xlsx"} {
		path := filepath.Join(out, name)
		if _, err := os.Stat(path); err != nil {
			t.Errorf("Expected %s to be written: %v", name, err)
		}
		if !strings.Contains(output, path) {
			t.Errorf("Expected %s in output:\n%s", path, output)
		}
	}

	detailed := filepath.Join(out, "worklog_detailed.xlsx")
	output = executeCommandText(t, "summary", "--file", detailed, "--reverse", "--format", "json")
	var rows []model.SummaryRow
	if err := json.Unmarshal([]byte(output), &rows); err != nil {
		t.Fatalf("Failed to parse JSON output: %v\n%s", err, output)
	}
	if len(rows) != 4 {
		t.Fatalf("Expected one row per logged line, got %d", len(rows))
	}
	for _, r := range rows {
		if !strings.HasPrefix(r.IssueKey, "ROW-") {
			t.Errorf("Expected synthetic issue key, got %q", r.IssueKey)
		}
	}
}

func TestSummariesFile(t *testing.T) {
	quietLogs(t)
	dir := t.TempDir()
	file := filepath.Join(dir, "worklog.csv")
	content := "Author,Start Date,Time Spent (seconds),Issue Key,Issue Summary\nAlice,2024-01-08 09:00,3600,OPS-7,\n"
	if err := os.WriteFile(file, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	summaries := filepath.Join(dir, "summaries.json")
	if err := os.WriteFile(summaries, []byte(`{"OPS-7": {"Summary": "Rotate certificates"}}`), 0o600); err != nil {
		t.Fatal(err)
	}

	output := executeCommandText(t, "summary", "--file", file, "--summaries", summaries)
	if !strings.Contains(output, "Rotate certificates") {
		t.Errorf("Expected summary from file in output:\n%s", output)
	}
}

func TestWeeklyCommand(t *testing.T) {
	quietLogs(t)
	file := setupTests(t)

	output := executeCommandText(t, "weekly", "--file", file, "--format", "json")
	var points []model.WeeklyPoint
	if err := json.Unmarshal([]byte(output), &points); err != nil {
		t.Fatalf("Failed to parse JSON output: %v\n%s", err, output)
	}
	expected := []model.WeeklyPoint{{
		Week:          "2024-W02",
		DateRange:     "2024-01-08 to 2024-01-14",
		TotalHours:    16,
		OvertimeHours: 2,
		ActualHours:   14,
	}}
	if len(points) != 1 || points[0] != expected[0] {
		t.Errorf("Expected %+v, got %+v", expected, points)
	}
}

func TestCapacityCommand(t *testing.T) {
	quietLogs(t)
	file := setupTests(t)

	output := executeCommandText(t, "capacity", "--file", file, "--category", "Labels")
	expected := []string{
		"Available Capacity",
		"Alice",
		"16.00",
		"Burned Capacity",
		"feature",
		"infra",
	}
	for _, want := range expected {
		if !strings.Contains(output, want) {
			t.Errorf("Expected %q in output:\n%s", want, output)
		}
	}
}
