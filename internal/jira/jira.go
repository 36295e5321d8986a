// Package jira provides issue-tracker helpers: ticket links, ticket id
// extraction and offline issue summaries.
package jira

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"regexp"
	"strings"

	"github.com/bryan-cox/sprintledger/internal/model"
)

// TicketInfo holds information about a ticket.
type TicketInfo struct {
	Key     string
	Summary string
	URL     string
}

// Regex patterns for extracting ticket IDs.
var (
	ticketRegex = regexp.MustCompile(`\b([A-Z][A-Z0-9]*-\d+)\b`)
	urlRegex    = regexp.MustCompile(`/browse/([A-Z][A-Z0-9]*-\d+)`)
)

// TicketURL returns the ticket link: the base URL followed by the issue key,
// verbatim and without escaping.
func TicketURL(baseURL, key string) string {
	return baseURL + key
}

// ExtractTicketID extracts a ticket ID from a URL or text.
func ExtractTicketID(input string) string {
	// First try to extract from URL
	if matches := urlRegex.FindStringSubmatch(input); len(matches) > 1 {
		return matches[1]
	}

	// Then try to extract from plain text
	if matches := ticketRegex.FindStringSubmatch(input); len(matches) > 1 {
		return matches[1]
	}

	return ""
}

// LoadSummariesFromFile loads ticket summaries from a JSON file.
// The file should contain a map of ticket IDs to TicketInfo objects.
func LoadSummariesFromFile(filePath string) (map[string]TicketInfo, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read ticket summaries file: %w", err)
	}

	var summaries map[string]TicketInfo
	if err := json.Unmarshal(data, &summaries); err != nil {
		return nil, fmt.Errorf("failed to parse ticket summaries JSON: %w", err)
	}

	for key, info := range summaries {
		if info.Key == "" {
			info.Key = key
		}
		summaries[key] = info
	}

	return summaries, nil
}

// ApplySummaries returns a copy of the table where blank issue summaries are
// filled from the summaries map.
func ApplySummaries(t model.Table, summaries map[string]TicketInfo) model.Table {
	out := model.Table{Columns: append([]string(nil), t.Columns...), Reverse: t.Reverse}
	out.Rows = make([]model.WorkLogRow, len(t.Rows))
	filled := 0
	for i, r := range t.Rows {
		if strings.TrimSpace(r.IssueSummary) == "" {
			if info, ok := summaries[r.IssueKey]; ok && info.Summary != "" {
				r.IssueSummary = info.Summary
				filled++
			}
		}
		out.Rows[i] = r
	}
	if filled > 0 && !out.HasColumn(model.ColIssueSummary) {
		out.Columns = append(out.Columns, model.ColIssueSummary)
	}
	slog.Debug("applied ticket summaries", "filled", filled, "available", len(summaries))
	return out
}
