package jira

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bryan-cox/sprintledger/internal/model"
)

func TestExtractTicketID(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"https://tracker.example.com/browse/OPS-42", "OPS-42"},
		{"see PROJ2-7 for details", "PROJ2-7"},
		{"no ticket here", ""},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractTicketID(tt.input))
		})
	}
}

func TestTicketURLIsVerbatim(t *testing.T) {
	assert.Equal(t, "https://x.test/browse/A B-1", TicketURL("https://x.test/browse/", "A B-1"))
}

func TestLoadAndApplySummaries(t *testing.T) {
	path := filepath.Join(t.TempDir(), "summaries.json")
	content := `{"OPS-1": {"Summary": "Rotate certificates"}, "OPS-2": {"Key": "OPS-2", "Summary": "Upgrade cluster"}}`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	summaries, err := LoadSummariesFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "OPS-1", summaries["OPS-1"].Key)

	in := model.Table{
		Columns: []string{model.ColIssueKey},
		Rows: []model.WorkLogRow{
			{IssueKey: "OPS-1"},
			{IssueKey: "OPS-2", IssueSummary: "kept"},
			{IssueKey: "OPS-3"},
		},
	}
	out := ApplySummaries(in, summaries)
	assert.Equal(t, "Rotate certificates", out.Rows[0].IssueSummary)
	assert.Equal(t, "kept", out.Rows[1].IssueSummary)
	assert.Empty(t, out.Rows[2].IssueSummary)
	assert.True(t, out.HasColumn(model.ColIssueSummary))
	assert.Empty(t, in.Rows[0].IssueSummary, "input table is not mutated")

	_, err = LoadSummariesFromFile(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}
