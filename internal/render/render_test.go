package render

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/bryan-cox/sprintledger/internal/model"
)

func init() {
	SetColor(false)
}

func TestTableFprint(t *testing.T) {
	tbl := NewTable("Name", "Hours")
	tbl.SetColumnAlignment(1, AlignRight)
	tbl.AddRow("Alice", "1.50")
	tbl.AddColoredRow(Red, "Bob", "10.00")

	var buf bytes.Buffer
	tbl.Fprint(&buf)
	assert.Equal(t, "Name   Hours\n─────  ─────\nAlice   1.50\nBob    10.00\n", buf.String())
}

func TestTableTSV(t *testing.T) {
	tbl := NewTable("A", "B")
	tbl.AddRow("1", "two words")
	assert.Equal(t, "A\tB\n1\ttwo words\n", tbl.TSV())
}

func TestTotalsTable(t *testing.T) {
	tbl := TotalsTable([]model.CategoryTotal{{Category: "infra", Hours: 4}, {Category: model.NoLabel, Hours: 0.28}})
	require.Len(t, tbl.Rows, 3)
	assert.Equal(t, []string{model.GrandTotal, "4.28"}, tbl.Rows[2])

	assert.Empty(t, TotalsTable(nil).Rows)
}

func TestTimesheetTableColorsGapRows(t *testing.T) {
	tbl := TimesheetTable([]model.TimesheetRow{
		{TimeCategory: model.FullDay, Class: model.Work, Hours: 1},
		{TimeCategory: model.HolidayTime, Class: model.NonWorkingDay, Synthetic: true},
		{TimeCategory: model.LeaveTime, Class: model.Leave, Synthetic: true},
	})
	assert.Nil(t, tbl.Colors[0])
	assert.Equal(t, Yellow, tbl.Colors[1])
	assert.Equal(t, Red, tbl.Colors[2])
	assert.Equal(t, "1.00", tbl.Rows[0][5])
	assert.Equal(t, "", tbl.Rows[1][5])
}

func TestSprintClosureSections(t *testing.T) {
	leave, days, h := 1.0, 1.0, 8.0
	sections := SprintClosureSections(model.SprintClosure{
		Capacity: []model.CapacityRecord{{Author: "Alice", WorkingDays: 2, PolicyWorkingDays: 2, InferredLeaveDays: 1, AvailableHours: 16, LeaveDays: &leave, AdjustedWorkingDays: &days, AdjustedHours: &h}},
		Burned:   model.Pivot{Columns: []string{"feature"}, Rows: []model.PivotRow{{Author: "Alice", Values: []float64{3}, GrandTotal: 3}}},
	})
	require.Len(t, sections, 3)
	assert.Equal(t, []string{"Alice", "2", "2", "1", "16.00", "1.00", "1.00", "8.00"}, sections[0].Table.Rows[0])
	assert.Equal(t, []string{"Developer", "feature", model.GrandTotal}, sections[1].Table.Headers)

	var buf bytes.Buffer
	PrintSections(&buf, sections...)
	out := buf.String()
	assert.Contains(t, out, TitleCapacity)
	assert.Contains(t, out, TitleBurned)
	assert.NotContains(t, out, TitleAllocations, "empty sections are skipped")

	text := SectionsTSV(sections...)
	assert.True(t, strings.HasPrefix(text, TitleCapacity+"\nTeam Member Name\t"))
}

func TestEncode(t *testing.T) {
	b := model.OvertimeBreakdown{Author: "Alice", DailyOvertime: 1, TotalOvertime: 1}

	var js bytes.Buffer
	require.NoError(t, Encode(&js, FormatJSON, b))
	var back model.OvertimeBreakdown
	require.NoError(t, json.Unmarshal(js.Bytes(), &back))
	assert.Equal(t, b, back)

	var ym bytes.Buffer
	require.NoError(t, Encode(&ym, FormatYAML, b))
	assert.Contains(t, ym.String(), "daily_overtime: 1")
	var yback model.OvertimeBreakdown
	require.NoError(t, yaml.Unmarshal(ym.Bytes(), &yback))
	assert.Equal(t, b, yback)

	assert.Error(t, Encode(&js, FormatText, b))
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("YML")
	require.NoError(t, err)
	assert.Equal(t, FormatYAML, f)
	f, err = ParseFormat("")
	require.NoError(t, err)
	assert.Equal(t, FormatText, f)
	_, err = ParseFormat("xml")
	assert.Error(t, err)
}
