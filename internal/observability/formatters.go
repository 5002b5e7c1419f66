// Package observability provides formatted output utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"strings"

	"github.com/daniela/corpus-insights/internal/topics"
	"github.com/daniela/corpus-insights/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	lines := strings.Split(content, "\n")
	for _, line := range lines {
		// Truncate long lines
		if len(line) > boxWidth-4 {
			line = line[:boxWidth-7] + "..."
		}
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, line)
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// PrintCorpusManifest outputs a human-readable summary of the staged corpus.
func (p *Printer) PrintCorpusManifest(dataset string, articles []types.Article) {
	if len(articles) == 0 {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Dataset:  %s\n", dataset))
	sb.WriteString(fmt.Sprintf("Articles: %d\n\n", len(articles)))

	count := min(len(articles), maxItemsToShow)
	for i := 0; i < count; i++ {
		a := articles[i]
		title := a.Title
		if len(title) > 40 {
			title = title[:37] + "..."
		}
		sb.WriteString(fmt.Sprintf("• %s (%d bytes)\n", a.ID, a.Size))
		if title != "" {
			sb.WriteString(fmt.Sprintf("  %s\n", title))
		}
	}
	if len(articles) > maxItemsToShow {
		sb.WriteString(fmt.Sprintf("\n... and %d more articles", len(articles)-maxItemsToShow))
	}

	p.printBox("STAGED CORPUS", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintJobStatus outputs the current state of the topic detection job.
func (p *Printer) PrintJobStatus(status *topics.JobStatus) {
	if status == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Job ID:   %s\n", status.JobID))
	sb.WriteString(fmt.Sprintf("Status:   %s", status.Status))
	if status.Message != "" {
		msg := status.Message
		if len(msg) > 45 {
			msg = msg[:42] + "..."
		}
		sb.WriteString(fmt.Sprintf("\nMessage:  %s", msg))
	}
	if status.OutputS3URI != "" {
		sb.WriteString(fmt.Sprintf("\nOutput:   %s", status.OutputS3URI))
	}

	p.printBox("TOPIC DETECTION JOB", sb.String())
}

// PrintTopicReport outputs the dominant topics per document with their terms.
func (p *Printer) PrintTopicReport(report *types.TopicReport) {
	if report == nil || len(report.Rows) == 0 {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Rows: %d across %d topics\n\n", len(report.Rows), len(report.Topics())))

	count := min(len(report.Rows), maxItemsToShow)
	for i := 0; i < count; i++ {
		row := report.Rows[i]
		sb.WriteString(fmt.Sprintf("%s → topic %s (%.2f)\n", row.DocName, row.TopicID, row.Proportion))
		if len(row.TopTerms) > 0 {
			terms := make([]string, 0, len(row.TopTerms))
			for _, t := range row.TopTerms {
				terms = append(terms, t.Term)
			}
			joined := strings.Join(terms, ", ")
			if len(joined) > 40 {
				joined = joined[:37] + "..."
			}
			sb.WriteString(fmt.Sprintf("  [%s]\n", joined))
		}
		if i < count-1 {
			sb.WriteString("\n")
		}
	}

	if len(report.Rows) > maxItemsToShow {
		sb.WriteString(fmt.Sprintf("\n... and %d more rows", len(report.Rows)-maxItemsToShow))
	}

	p.printBox("TOPIC REPORT", sb.String())
}

// PrintSummaries outputs the generated article summaries.
func (p *Printer) PrintSummaries(summaries []types.Summary) {
	if len(summaries) == 0 {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Generated %d summaries:\n\n", len(summaries)))

	count := min(len(summaries), maxItemsToShow)
	for i := 0; i < count; i++ {
		s := summaries[i]
		text := s.Text
		if len(text) > 50 {
			text = text[:47] + "..."
		}
		sb.WriteString(fmt.Sprintf("• %s\n", s.ArticleID))
		sb.WriteString(fmt.Sprintf("  %s\n", text))
		if i < count-1 {
			sb.WriteString("\n")
		}
	}

	if len(summaries) > maxItemsToShow {
		sb.WriteString(fmt.Sprintf("\n... and %d more summaries", len(summaries)-maxItemsToShow))
	}

	p.printBox("ARTICLE SUMMARIES", sb.String())
}

// PrintCleanup outputs the result of the S3 cleanup step.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) PrintCleanup(deleted int) {
	if deleted == 0 {
		fmt.Fprintf(p.out, "┌%s┐\n", strings.Repeat("─", boxWidth-2))
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, "✅ NOTHING TO CLEAN UP")
		fmt.Fprintf(p.out, "└%s┘\n", strings.Repeat("─", boxWidth-2))
		return
	}

	p.printBox("CLEANUP", fmt.Sprintf("Deleted %d objects", deleted))
}
