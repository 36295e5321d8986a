package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/bryan-cox/sprintledger/internal/clipboard"
	"github.com/bryan-cox/sprintledger/internal/config"
	"github.com/bryan-cox/sprintledger/internal/export"
	"github.com/bryan-cox/sprintledger/internal/ingest"
	"github.com/bryan-cox/sprintledger/internal/jira"
	"github.com/bryan-cox/sprintledger/internal/model"
	"github.com/bryan-cox/sprintledger/internal/render"
	"github.com/bryan-cox/sprintledger/internal/report"
	"github.com/bryan-cox/sprintledger/internal/timesheet"
)

// --- Cobra Command Definitions ---

var (
	// Used for flags.
	filePath      string
	configPath    string
	summariesPath string
	outputFormat  string
	reverse       bool
	copyOutput    bool
	byAuthor      bool

	// logLevel is raised or lowered once the configuration is known.
	logLevel = new(slog.LevelVar)

	// rootCmd represents the base command when called without any subcommands
	rootCmd = &cobra.Command{
		Use:   "sprintledger",
		Short: "A CLI tool to turn tracker worklog exports into timesheets and sprint reports.",
		Long: `SprintLedger reads a worklog export (CSV or XLSX) and derives a detailed
timesheet with holidays and leave filled in, effort summaries, overtime,
capacity and a sprint closure report.`,
	}

	authorsCmd = &cobra.Command{
		Use:   "authors",
		Short: "List the authors found in the worklog.",
		Run:   runAuthorsCommand,
	}

	detailedCmd = &cobra.Command{
		Use:   "detailed",
		Short: "Print the detailed timesheet and hours by category.",
		Long:  `Prints every logged entry plus one line per non-working day, holiday and inferred leave day inside the logged date span, followed by the hours per category.`,
		Run:   runDetailedCommand,
	}

	summaryCmd = &cobra.Command{
		Use:   "summary",
		Short: "Print total effort grouped by category, summary, author and status.",
		Run:   runSummaryCommand,
	}

	overtimeCmd = &cobra.Command{
		Use:   "overtime",
		Short: "Print the overtime breakdown.",
		Long:  `Prints weekend hours, holiday hours, daily overtime above the working-hours threshold and the leave credit for the selected author, or for all authors combined.`,
		Run:   runOvertimeCommand,
	}

	weeklyCmd = &cobra.Command{
		Use:   "weekly",
		Short: "Print total, overtime and actual hours per ISO week.",
		Run:   runWeeklyCommand,
	}

	capacityCmd = &cobra.Command{
		Use:   "capacity",
		Short: "Print available and burned capacity per author.",
		Run:   runCapacityCommand,
	}

	sprintClosureCmd = &cobra.Command{
		Use:   "sprint-closure",
		Short: "Print the sprint closure report.",
		Run:   runSprintClosureCommand,
	}

	exportCmd = &cobra.Command{
		Use:       "export [detailed|summary|sprint-closure|all]",
		Short:     "Write reports as XLSX workbooks.",
		Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{string(export.KindDetailed), string(export.KindSummary), string(export.KindSprintClosure), "all"},
		Run:       runExportCommand,
	}
)

// flagKeys maps viper-backed flags to their configuration keys.
var flagKeys = map[string]string{
	"author":        config.KeyAuthor,
	"category":      config.KeyCategory,
	"summary-field": config.KeySummaryField,
	"base-url":      config.KeyBaseURL,
	"working-days":  config.KeyWorkingDays,
	"working-hours": config.KeyWorkingHours,
	"holidays":      config.KeyHolidays,
	"leave-days":    config.KeyLeaveDays,
	"log-level":     config.KeyLogLevel,
	"color":         config.KeyColor,
	"sort":          config.KeySort,
	"out":           config.KeyOutputDir,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		// Errors from commands are handled by slog, so we just exit.
		os.Exit(1)
	}
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&filePath, "file", "worklog.csv", "Path to the worklog export (.csv or .xlsx).")
	pf.StringVar(&configPath, "config", "", "Path to a config file (default: ./sprintledger.yaml).")
	pf.StringVar(&summariesPath, "summaries", "", "JSON file of ticket summaries used to fill blank Issue Summary values.")
	pf.StringVar(&outputFormat, "format", "text", "Output format: text, json or yaml.")
	pf.BoolVar(&reverse, "reverse", false, "Read a previously exported detailed timesheet instead of a worklog.")
	pf.BoolVar(&copyOutput, "copy", false, "Copy the printed tables to the clipboard as tab-separated text.")

	// Flags below override the config file and environment.
	pf.String("author", "", "Author to report on, or All.")
	pf.String("category", "", "Category column or mode (Activity, Label, or a column name).")
	pf.String("summary-field", "", "Summary column: Issue Summary or Parent Summary.")
	pf.String("base-url", "", "Prefix for ticket links, e.g. https://jira.example.com/browse/.")
	pf.String("working-days", "", "Comma-separated working weekdays (default Monday-Friday).")
	pf.Float64("working-hours", 0, "Daily hours above which time counts as overtime.")
	pf.String("holidays", "", "Comma-separated holiday dates (YYYY-MM-DD).")
	pf.Float64("leave-days", 0, "Leave days credited as overtime.")
	pf.String("log-level", "", "Log level: debug, info, warn or error.")
	pf.Bool("color", true, "Colour terminal output.")

	summaryCmd.Flags().String("sort", "", "Sort by author, effort or ticket.")
	overtimeCmd.Flags().BoolVar(&byAuthor, "by-author", false, "Also list one breakdown per author.")
	exportCmd.Flags().String("out", "", "Directory the workbooks are written to.")

	rootCmd.AddCommand(authorsCmd, detailedCmd, summaryCmd, overtimeCmd, weeklyCmd, capacityCmd, sprintClosureCmd, exportCmd)
}

// --- Main Application Entry Point ---

func main() {
	// Setup structured JSON logger.
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))
	slog.SetDefault(logger)
	Execute()
}

// --- Session Setup ---

// session is the loaded configuration and worklog of one command run.
type session struct {
	cfg *config.Config
	req report.Request
}

func loadSession(cmd *cobra.Command) (*session, error) {
	v := config.New()
	if err := bindFlags(v, cmd); err != nil {
		return nil, err
	}
	cfg, err := config.Load(v, configPath)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	level, _ := cfg.SlogLevel()
	logLevel.Set(level)
	render.SetColor(cfg.Color)

	policy, err := cfg.Policy()
	if err != nil {
		return nil, err
	}
	sortMode, err := report.ParseSortMode(cfg.Sort)
	if err != nil {
		return nil, err
	}

	var table model.Table
	if reverse {
		table, err = ingest.ReadExportedTimesheet(filePath)
	} else {
		table, err = ingest.ReadFile(filePath)
	}
	if err != nil {
		return nil, fmt.Errorf("could not load worklog '%s': %w", filePath, err)
	}
	if summariesPath != "" {
		summaries, err := jira.LoadSummariesFromFile(summariesPath)
		if err != nil {
			return nil, err
		}
		table = jira.ApplySummaries(table, summaries)
	}

	req := report.Request{
		ID:           uuid.NewString(),
		Table:        table,
		Author:       cfg.Author,
		BaseURL:      cfg.BaseURL,
		CategoryMode: cfg.Category,
		SummaryField: cfg.SummaryField,
		Sort:         sortMode,
		LeaveDays:    cfg.LeaveDays,
		Policy:       policy,
	}
	slog.Info("worklog loaded", "request_id", req.ID, "path", filePath, "rows", len(table.Rows),
		"authors", len(req.Authors()), "config", cfg.File)
	if req.SingleAuthor() && len(req.Scoped().Rows) == 0 {
		slog.Warn("author has no worklog rows", "request_id", req.ID, "author", req.Author)
	}
	return &session{cfg: cfg, req: req}, nil
}

func bindFlags(v *viper.Viper, cmd *cobra.Command) error {
	for name, key := range flagKeys {
		f := cmd.Flags().Lookup(name)
		if f == nil {
			continue
		}
		if err := v.BindPFlag(key, f); err != nil {
			return fmt.Errorf("could not bind flag --%s: %w", name, err)
		}
	}
	return nil
}

func mustLoadSession(cmd *cobra.Command) *session {
	s, err := loadSession(cmd)
	if err != nil {
		slog.Error("failed to load worklog", "error", err, "path", filePath)
		os.Exit(1)
	}
	return s
}

// emit prints sections as tables, or doc as JSON/YAML, and optionally copies
// the tables to the clipboard.
func emit(cmd *cobra.Command, s *session, doc any, sections ...render.Section) {
	format, err := render.ParseFormat(outputFormat)
	if err != nil {
		slog.Error("invalid output format", "error", err, "request_id", s.req.ID)
		os.Exit(1)
	}
	out := cmd.OutOrStdout()
	if format == render.FormatText {
		render.PrintSections(out, sections...)
	} else if err := render.Encode(out, format, doc); err != nil {
		slog.Error("failed to encode output", "error", err, "request_id", s.req.ID)
		os.Exit(1)
	}

	if copyOutput {
		if err := clipboard.CopyText(render.SectionsTSV(sections...)); err != nil {
			slog.Warn("could not copy to clipboard", "error", err, "request_id", s.req.ID)
			return
		}
		slog.Info("copied to clipboard", "request_id", s.req.ID)
	}
}

// --- Command Execution Logic ---

func runAuthorsCommand(cmd *cobra.Command, args []string) {
	s := mustLoadSession(cmd)
	authors := append([]string{model.AllAuthors}, s.req.Authors()...)
	t := render.NewTable("Author")
	for _, a := range authors {
		t.AddRow(a)
	}
	emit(cmd, s, authors, render.Section{Table: t})
}

func runDetailedCommand(cmd *cobra.Command, args []string) {
	s := mustLoadSession(cmd)
	rows, totals := normalize(s)
	doc := struct {
		Rows   []model.TimesheetRow  `json:"rows" yaml:"rows"`
		Totals []model.CategoryTotal `json:"totals" yaml:"totals"`
	}{rows, totals}
	emit(cmd, s, doc,
		render.Section{Title: render.TitleTimesheet, Table: render.TimesheetTable(rows)},
		render.Section{Title: render.TitleTotals, Table: render.TotalsTable(totals)},
	)
}

func normalize(s *session) ([]model.TimesheetRow, []model.CategoryTotal) {
	return timesheet.Normalize(s.req.Scoped(), timesheet.Options{
		BaseURL:      s.req.BaseURL,
		CategoryMode: s.req.CategoryMode,
		Policy:       s.req.Policy,
	})
}

func runSummaryCommand(cmd *cobra.Command, args []string) {
	s := mustLoadSession(cmd)
	rows := report.Summarize(s.req)
	emit(cmd, s, rows, render.Section{Title: render.TitleSummary, Table: render.SummaryTable(rows)})
}

func runOvertimeCommand(cmd *cobra.Command, args []string) {
	s := mustLoadSession(cmd)
	total := report.OvertimeFor(s.req)
	if !byAuthor {
		emit(cmd, s, total, render.Section{Title: render.TitleOvertime, Table: render.OvertimeTable(total)})
		return
	}

	perAuthor := report.ComputeOvertime(s.req.Scoped().Rows, s.req.LeaveDays, s.req.Policy)
	doc := struct {
		Total   model.OvertimeBreakdown   `json:"total" yaml:"total"`
		Authors []model.OvertimeBreakdown `json:"authors" yaml:"authors"`
	}{total, perAuthor}
	emit(cmd, s, doc, render.Section{Title: render.TitleOvertime, Table: render.OvertimeTable(append(perAuthor, total)...)})
}

func runWeeklyCommand(cmd *cobra.Command, args []string) {
	s := mustLoadSession(cmd)
	points := report.WeeklySeries(s.req)
	emit(cmd, s, points, render.Section{Title: render.TitleWeekly, Table: render.WeeklyTable(points)})
}

func runCapacityCommand(cmd *cobra.Command, args []string) {
	s := mustLoadSession(cmd)
	c := report.ComputeCapacity(s.req)
	emit(cmd, s, c,
		render.Section{Title: render.TitleCapacity, Table: render.CapacityTable(c.Records)},
		render.Section{Title: render.TitleBurned, Table: render.PivotTable(c.Burned)},
	)
}

func runSprintClosureCommand(cmd *cobra.Command, args []string) {
	s := mustLoadSession(cmd)
	r := report.BuildSprintClosure(s.req)
	if r.Empty() {
		slog.Warn("no rows for sprint closure report", "request_id", s.req.ID, "author", s.req.Author)
	}
	emit(cmd, s, r, render.SprintClosureSections(r)...)
}

func runExportCommand(cmd *cobra.Command, args []string) {
	s := mustLoadSession(cmd)
	kind := "all"
	if len(args) == 1 {
		kind = args[0]
	}
	if err := os.MkdirAll(s.cfg.OutputDir, 0o755); err != nil {
		slog.Error("failed to create output directory", "error", err, "dir", s.cfg.OutputDir)
		os.Exit(1)
	}

	var kinds []export.Kind
	if kind == "all" {
		kinds = []export.Kind{export.KindDetailed, export.KindSummary, export.KindSprintClosure}
	} else {
		kinds = []export.Kind{export.Kind(kind)}
	}

	for _, k := range kinds {
		path, err := writeWorkbook(s, k)
		if err != nil {
			slog.Error("failed to export report", "error", err, "kind", k, "request_id", s.req.ID)
			os.Exit(1)
		}
		slog.Debug("workbook written", "kind", k, "path", path, "request_id", s.req.ID)
		fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
	}
}

func writeWorkbook(s *session, k export.Kind) (string, error) {
	switch k {
	case export.KindDetailed:
		rows, totals := normalize(s)
		f, err := export.DetailedWorkbook(rows, totals)
		if err != nil {
			return "", err
		}
		return export.Save(f, s.cfg.OutputDir, export.DownloadName(k, filePath))
	case export.KindSummary:
		f, err := export.SummaryWorkbook(report.Summarize(s.req))
		if err != nil {
			return "", err
		}
		return export.Save(f, s.cfg.OutputDir, export.DownloadName(k, filePath))
	case export.KindSprintClosure:
		f, err := export.SprintClosureWorkbook(report.BuildSprintClosure(s.req))
		if err != nil {
			return "", err
		}
		return export.Save(f, s.cfg.OutputDir, export.DownloadName(k, filePath))
	}
	return "", fmt.Errorf("unknown report %q", k)
}
