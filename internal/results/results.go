// Package results renders and persists pipeline outputs: the joined topic
// report and the per-article summaries.
package results

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"

	"github.com/daniela/corpus-insights/internal/types"
)

// summaryPreviewLen bounds summary text in rendered tables.
const summaryPreviewLen = 100

// RenderTopicReport writes the joined report as an aligned table.
func RenderTopicReport(w io.Writer, report *types.TopicReport) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Document", "Topic", "Proportion", "Top Terms"})
	table.SetBorder(false)
	table.SetAutoWrapText(false)

	for _, row := range report.Rows {
		table.Append([]string{
			row.DocName,
			row.TopicID,
			strconv.FormatFloat(row.Proportion, 'f', 4, 64),
			formatTerms(row.TopTerms),
		})
	}
	table.Render()
}

// RenderSummaries writes the generated summaries as an aligned table.
func RenderSummaries(w io.Writer, summaries []types.Summary) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Article", "Model", "Summary"})
	table.SetBorder(false)
	table.SetAutoWrapText(false)

	for _, s := range summaries {
		table.Append([]string{s.ArticleID, s.Model, preview(s.Text)})
	}
	table.Render()
}

// WriteReportCSV writes the joined report as flat CSV rows. Top terms are
// packed into a single semicolon-separated column.
func WriteReportCSV(path string, report *types.TopicReport) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	cw := csv.NewWriter(f)
	if err := cw.Write([]string{"doc_name", "topic_id", "proportion", "top_terms"}); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, row := range report.Rows {
		record := []string{
			row.DocName,
			row.TopicID,
			strconv.FormatFloat(row.Proportion, 'f', 6, 64),
			formatTerms(row.TopTerms),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("failed to flush %s: %w", path, err)
	}
	return nil
}

// WriteReportJSON writes the joined report as indented JSON.
func WriteReportJSON(path string, report *types.TopicReport) error {
	return writeJSON(path, report)
}

// WriteSummariesJSON writes the generated summaries as indented JSON.
func WriteSummariesJSON(path string, summaries []types.Summary) error {
	return writeJSON(path, summaries)
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", path, err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// formatTerms renders top terms as "term (weight); ...".
func formatTerms(terms []types.WeightedTerm) string {
	parts := make([]string, 0, len(terms))
	for _, t := range terms {
		parts = append(parts, fmt.Sprintf("%s (%.3f)", t.Term, t.Weight))
	}
	return strings.Join(parts, "; ")
}

func preview(text string) string {
	text = strings.Join(strings.Fields(text), " ")
	runes := []rune(text)
	if len(runes) > summaryPreviewLen {
		return string(runes[:summaryPreviewLen-3]) + "..."
	}
	return text
}
