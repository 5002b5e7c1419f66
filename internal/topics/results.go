package topics

import (
	"archive/tar"
	"compress/gzip"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path"
	"sort"
	"strconv"

	"github.com/daniela/corpus-insights/internal/types"
)

// Result file names inside the job's output archive.
const (
	TopicTermsFile = "topic-terms.csv"
	DocTopicsFile  = "doc-topics.csv"
)

// JobOutput holds the two parsed result tables of a finished job.
type JobOutput struct {
	TopicTerms []types.TopicTerm
	DocTopics  []types.DocTopic
}

// ParseOutputArchive reads the job's output.tar.gz and extracts the two CSV
// tables it contains.
func ParseOutputArchive(r io.Reader) (*JobOutput, error) {
	gz, err := gzip.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open gzip stream: %w", err)
	}
	defer func() { _ = gz.Close() }()

	out := &JobOutput{}
	seenTerms, seenDocs := false, false

	tr := tar.NewReader(gz)
	for {
		hdr, err := tr.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read archive: %w", err)
		}
		if hdr.Typeflag != tar.TypeReg {
			continue
		}

		switch path.Base(hdr.Name) {
		case TopicTermsFile:
			out.TopicTerms, err = parseTopicTerms(tr)
			if err != nil {
				return nil, err
			}
			seenTerms = true
		case DocTopicsFile:
			out.DocTopics, err = parseDocTopics(tr)
			if err != nil {
				return nil, err
			}
			seenDocs = true
		}
	}

	if !seenTerms || !seenDocs {
		return nil, fmt.Errorf("archive is missing %s or %s", TopicTermsFile, DocTopicsFile)
	}
	return out, nil
}

// parseTopicTerms reads the topic,term,weight table.
func parseTopicTerms(r io.Reader) ([]types.TopicTerm, error) {
	records, err := readCSV(r, TopicTermsFile, 3)
	if err != nil {
		return nil, err
	}

	terms := make([]types.TopicTerm, 0, len(records))
	for i, rec := range records {
		weight, err := strconv.ParseFloat(rec[2], 64)
		if err != nil {
			return nil, fmt.Errorf("%s row %d: bad weight %q: %w", TopicTermsFile, i+2, rec[2], err)
		}
		terms = append(terms, types.TopicTerm{TopicID: rec[0], Term: rec[1], Weight: weight})
	}
	return terms, nil
}

// parseDocTopics reads the docname,topic,proportion table.
func parseDocTopics(r io.Reader) ([]types.DocTopic, error) {
	records, err := readCSV(r, DocTopicsFile, 3)
	if err != nil {
		return nil, err
	}

	docs := make([]types.DocTopic, 0, len(records))
	for i, rec := range records {
		proportion, err := strconv.ParseFloat(rec[2], 64)
		if err != nil {
			return nil, fmt.Errorf("%s row %d: bad proportion %q: %w", DocTopicsFile, i+2, rec[2], err)
		}
		docs = append(docs, types.DocTopic{DocName: rec[0], TopicID: rec[1], Proportion: proportion})
	}
	return docs, nil
}

// readCSV reads all data rows of a CSV stream, skipping the header row and
// enforcing a fixed column count.
func readCSV(r io.Reader, name string, columns int) ([][]string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = columns

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", name, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%s is empty", name)
	}
	// First row is the header.
	return records[1:], nil
}

// BuildReport joins the document-to-topic table with the topic-to-term table
// on the topic identifier. Documents referencing a topic absent from the term
// table are dropped (inner join). Each row carries the topic's top terms by
// weight, at most topTerms of them.
func BuildReport(jobID string, out *JobOutput, topTerms int) *types.TopicReport {
	byTopic := make(map[string][]types.WeightedTerm)
	for _, tt := range out.TopicTerms {
		byTopic[tt.TopicID] = append(byTopic[tt.TopicID], types.WeightedTerm{Term: tt.Term, Weight: tt.Weight})
	}
	for id := range byTopic {
		terms := byTopic[id]
		sort.SliceStable(terms, func(i, j int) bool { return terms[i].Weight > terms[j].Weight })
		if len(terms) > topTerms {
			byTopic[id] = terms[:topTerms]
		}
	}

	report := &types.TopicReport{JobID: jobID}
	for _, dt := range out.DocTopics {
		terms, ok := byTopic[dt.TopicID]
		if !ok {
			continue
		}
		report.Rows = append(report.Rows, types.ReportRow{
			DocName:    dt.DocName,
			TopicID:    dt.TopicID,
			Proportion: dt.Proportion,
			TopTerms:   terms,
		})
	}
	report.SortRows()

	return report
}
