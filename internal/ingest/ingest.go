// Package ingest reads tracker worklog exports (CSV or XLSX) into a model.Table.
package ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/bryan-cox/sprintledger/internal/jira"
	"github.com/bryan-cox/sprintledger/internal/model"
)

// ErrNoRows is returned when a file has a header but no data.
var ErrNoRows = errors.New("no data rows found")

var requiredColumns = []string{model.ColAuthor, model.ColStartDate, model.ColTimeSpent}

// startLayouts are tried in order. Offsets are parsed but then discarded.
var startLayouts = []string{
	"2006-01-02T15:04:05.000-0700",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"02/Jan/2006 3:04 PM",
	"02/Jan/06 3:04 PM",
	"02/Jan/2006 15:04",
	"1/2/2006 15:04",
	"1/2/06 15:04",
	"01-02-06 15:04",
	"2006-01-02",
}

// ParseStart parses a worklog start date and keeps its wall clock in UTC.
// Spreadsheet serial numbers are accepted too.
func ParseStart(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, errors.New("empty start date")
	}
	for _, layout := range startLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return wallClock(t), nil
		}
	}
	if serial, err := strconv.ParseFloat(s, 64); err == nil && serial > 0 {
		t, err := excelize.ExcelDateToTime(serial, false)
		if err == nil {
			return wallClock(t.Round(time.Second)), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised start date %q", s)
}

func wallClock(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), 0, time.UTC)
}

// ReadFile reads a worklog export, choosing the decoder by file extension.
func ReadFile(path string) (model.Table, error) {
	records, err := readRecords(path)
	if err != nil {
		return model.Table{}, err
	}
	return FromRecords(records)
}

// ReadCSV reads a CSV worklog export.
func ReadCSV(r io.Reader) (model.Table, error) {
	records, err := csvRecords(r)
	if err != nil {
		return model.Table{}, err
	}
	return FromRecords(records)
}

// ReadXLSX reads the first sheet of an XLSX worklog export.
func ReadXLSX(r io.Reader) (model.Table, error) {
	records, err := xlsxRecords(r)
	if err != nil {
		return model.Table{}, err
	}
	return FromRecords(records)
}

func readRecords(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("could not open '%s': %w", path, err)
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return csvRecords(f)
	case ".xlsx", ".xlsm":
		return xlsxRecords(f)
	}
	return nil, fmt.Errorf("unsupported file type %q (use .csv or .xlsx)", filepath.Ext(path))
}

func csvRecords(r io.Reader) ([][]string, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("could not parse CSV: %w", err)
	}
	return records, nil
}

func xlsxRecords(r io.Reader) ([][]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("could not open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.New("workbook has no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("could not read sheet %q: %w", sheets[0], err)
	}
	return rows, nil
}

// header maps trimmed header names to their record index.
type header map[string]int

func newHeader(record []string) header {
	h := make(header, len(record))
	for i, name := range record {
		name = strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))
		if _, dup := h[name]; !dup && name != "" {
			h[name] = i
		}
	}
	return h
}

func (h header) get(record []string, name string) string {
	i, ok := h[name]
	if !ok || i >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[i])
}

func (h header) has(name string) bool {
	_, ok := h[name]
	return ok
}

// columns returns the header names in file order.
func columns(record []string, h header) []string {
	var cols []string
	for i, name := range record {
		name = strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))
		if idx, ok := h[name]; ok && idx == i {
			cols = append(cols, name)
		}
	}
	return cols
}

var knownColumns = map[string]bool{
	model.ColAuthor: true, model.ColStartDate: true, model.ColTimeSpent: true,
	model.ColIssueKey: true, model.ColIssueStatus: true, model.ColProjectName: true,
	model.ColComment: true, model.ColIssueSummary: true, model.ColParentSummary: true,
	model.ColParentKey: true, model.ColIssueType: true, model.ColOriginalEstimate: true,
	model.ColRemainingEstimate: true, model.ColLeaveDays: true,
}

// FromRecords converts a header row plus data rows into a table. Rows with an
// unparseable start date or a negative duration are dropped with a warning.
func FromRecords(records [][]string) (model.Table, error) {
	if len(records) == 0 {
		return model.Table{}, errors.New("file is empty")
	}
	h := newHeader(records[0])
	for _, c := range requiredColumns {
		if !h.has(c) {
			return model.Table{}, fmt.Errorf("missing required column %q", c)
		}
	}
	if len(records) == 1 {
		return model.Table{}, ErrNoRows
	}

	t := model.Table{Columns: columns(records[0], h)}
	for i, rec := range records[1:] {
		line := i + 2
		if blankRecord(rec) {
			continue
		}
		start, err := ParseStart(h.get(rec, model.ColStartDate))
		if err != nil {
			slog.Warn("skipping row with bad start date", "line", line, "error", err)
			continue
		}
		spent, err := parseSeconds(h.get(rec, model.ColTimeSpent))
		if err != nil || spent < 0 {
			slog.Warn("skipping row with bad time spent", "line", line, "value", h.get(rec, model.ColTimeSpent))
			continue
		}

		r := model.WorkLogRow{
			Author:           h.get(rec, model.ColAuthor),
			Start:            start,
			TimeSpentSeconds: spent,
			ProjectName:      h.get(rec, model.ColProjectName),
			Comment:          h.get(rec, model.ColComment),
			IssueKey:         h.get(rec, model.ColIssueKey),
			IssueStatus:      h.get(rec, model.ColIssueStatus),
			IssueSummary:     h.get(rec, model.ColIssueSummary),
			ParentSummary:    h.get(rec, model.ColParentSummary),
			ParentKey:        h.get(rec, model.ColParentKey),
			IssueType:        h.get(rec, model.ColIssueType),
		}
		r.OriginalEstimateSeconds, _ = parseSeconds(h.get(rec, model.ColOriginalEstimate))
		r.RemainingEstimateSeconds, _ = parseSeconds(h.get(rec, model.ColRemainingEstimate))
		if v := h.get(rec, model.ColLeaveDays); v != "" {
			if leave, err := strconv.ParseFloat(v, 64); err == nil && leave > 0 {
				r.LeaveDays = leave
			}
		}
		for _, c := range t.Columns {
			if knownColumns[c] {
				continue
			}
			if r.Fields == nil {
				r.Fields = make(map[string]string)
			}
			r.Fields[c] = h.get(rec, c)
		}
		t.Rows = append(t.Rows, r)
	}
	slog.Debug("worklog rows read", "rows", len(t.Rows), "records", len(records)-1)
	return t, nil
}

// parseSeconds accepts integer or decimal seconds. Blank means zero.
func parseSeconds(s string) (int64, error) {
	if s == "" {
		return 0, nil
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", ""), 64)
	if err != nil {
		return 0, err
	}
	return int64(math.Round(v)), nil
}

func blankRecord(rec []string) bool {
	for _, v := range rec {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

// reverseColumns is the column set of a table rebuilt from a timesheet export.
var reverseColumns = []string{
	model.ColAuthor, model.ColStartDate, model.ColTimeSpent, model.ColIssueKey,
	model.ColIssueStatus, model.ColProjectName, model.ColComment, model.ColIssueSummary,
	model.ColLabels, model.ColParentKey,
}

// ReadExportedTimesheet rebuilds a table from a previously exported detailed
// timesheet. Each logged line gets its own issue key ROW-n and the ticket id
// found in its link becomes the parent key. Gap rows without a start time are
// skipped.
func ReadExportedTimesheet(path string) (model.Table, error) {
	records, err := readRecords(path)
	if err != nil {
		return model.Table{}, err
	}
	return FromTimesheetRecords(records)
}

// FromTimesheetRecords is ReadExportedTimesheet on already decoded records.
func FromTimesheetRecords(records [][]string) (model.Table, error) {
	if len(records) == 0 {
		return model.Table{}, errors.New("file is empty")
	}
	h := newHeader(records[0])
	for _, c := range []string{model.HdrDate, model.HdrHours, model.HdrStartTime} {
		if !h.has(c) {
			return model.Table{}, fmt.Errorf("not a detailed timesheet: missing column %q", c)
		}
	}

	t := model.Table{Columns: reverseColumns, Reverse: true}
	n := 0
	for i, rec := range records[1:] {
		clock := h.get(rec, model.HdrStartTime)
		if clock == "" {
			continue
		}
		start, err := time.Parse(model.DisplayDateFmt+" "+model.ClockFmt, h.get(rec, model.HdrDate)+" "+clock)
		if err != nil {
			slog.Warn("skipping timesheet row with bad date", "line", i+2, "error", err)
			continue
		}
		hours, err := strconv.ParseFloat(h.get(rec, model.HdrHours), 64)
		if err != nil || hours < 0 {
			slog.Warn("skipping timesheet row with bad hours", "line", i+2, "value", h.get(rec, model.HdrHours))
			continue
		}
		n++
		activity := h.get(rec, model.HdrActivity)
		t.Rows = append(t.Rows, model.WorkLogRow{
			Author:           h.get(rec, model.HdrAuthor),
			Start:            start,
			TimeSpentSeconds: int64(math.Round(hours * model.SecondsInHour)),
			ProjectName:      h.get(rec, model.HdrProject),
			Comment:          activity,
			IssueKey:         fmt.Sprintf("ROW-%d", n),
			IssueStatus:      h.get(rec, model.HdrStatus),
			IssueSummary:     activity,
			ParentKey:        jira.ExtractTicketID(h.get(rec, model.HdrTicket)),
			Fields:           map[string]string{model.ColLabels: h.get(rec, model.HdrCategory)},
		})
	}
	if len(t.Rows) == 0 {
		return model.Table{}, ErrNoRows
	}
	return t, nil
}
