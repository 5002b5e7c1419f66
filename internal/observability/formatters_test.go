package observability

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/daniela/corpus-insights/internal/topics"
	"github.com/daniela/corpus-insights/internal/types"
)

func TestPrintCorpusManifest(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	articles := []types.Article{
		{ID: "alpha", Title: "A Study of Alpha", Size: 1234},
		{ID: "beta", Title: "Beta Revisited", Size: 567},
	}
	p.PrintCorpusManifest("https://example.com/corpus/", articles)

	out := buf.String()
	assert.Contains(t, out, "STAGED CORPUS")
	assert.Contains(t, out, "alpha")
	assert.Contains(t, out, "1234 bytes")
}

func TestPrintCorpusManifest_Empty(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf).PrintCorpusManifest("x", nil)
	assert.Empty(t, buf.String())
}

func TestPrintCorpusManifest_TruncatesList(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	articles := make([]types.Article, 8)
	for i := range articles {
		articles[i] = types.Article{ID: "doc", Size: 1}
	}
	p.PrintCorpusManifest("x", articles)

	assert.Contains(t, buf.String(), "and 3 more articles")
}

func TestPrintJobStatus(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintJobStatus(&topics.JobStatus{
		JobID:       "job-42",
		Status:      topics.StatusInProgress,
		OutputS3URI: "s3://bucket/out/output.tar.gz",
	})

	out := buf.String()
	assert.Contains(t, out, "TOPIC DETECTION JOB")
	assert.Contains(t, out, "job-42")
	assert.Contains(t, out, string(topics.StatusInProgress))
}

func TestPrintJobStatus_Nil(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf).PrintJobStatus(nil)
	assert.Empty(t, buf.String())
}

func TestPrintTopicReport(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintTopicReport(&types.TopicReport{
		Rows: []types.ReportRow{
			{
				DocName:    "alpha.txt",
				TopicID:    "000",
				Proportion: 0.81,
				TopTerms:   []types.WeightedTerm{{Term: "neuron", Weight: 0.4}, {Term: "cortex", Weight: 0.3}},
			},
		},
	})

	out := buf.String()
	assert.Contains(t, out, "TOPIC REPORT")
	assert.Contains(t, out, "alpha.txt")
	assert.Contains(t, out, "neuron, cortex")
}

func TestPrintSummaries(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintSummaries([]types.Summary{
		{ArticleID: "alpha", Text: strings.Repeat("long summary ", 10)},
	})

	out := buf.String()
	assert.Contains(t, out, "ARTICLE SUMMARIES")
	assert.Contains(t, out, "alpha")
	// Long text is truncated inside the box
	assert.Contains(t, out, "...")
}

func TestPrintCleanup(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintCleanup(12)
	assert.Contains(t, buf.String(), "Deleted 12 objects")

	buf.Reset()
	p.PrintCleanup(0)
	assert.Contains(t, buf.String(), "NOTHING TO CLEAN UP")
}
