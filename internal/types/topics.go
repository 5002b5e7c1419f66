package types

import "sort"

// TopicTerm is one row of the topic-to-term weight table produced by the
// topic detection job (topic-terms.csv).
type TopicTerm struct {
	TopicID string  `json:"topic_id"`
	Term    string  `json:"term"`
	Weight  float64 `json:"weight"`
}

// DocTopic is one row of the document-to-topic proportion table produced by
// the topic detection job (doc-topics.csv).
type DocTopic struct {
	DocName    string  `json:"doc_name"`
	TopicID    string  `json:"topic_id"`
	Proportion float64 `json:"proportion"`
}

// WeightedTerm is a term with its weight inside a topic.
type WeightedTerm struct {
	Term   string  `json:"term"`
	Weight float64 `json:"weight"`
}

// ReportRow is one joined row of the topic report: a document's affinity to a
// topic, annotated with that topic's highest-weighted terms.
type ReportRow struct {
	DocName    string         `json:"doc_name"`
	TopicID    string         `json:"topic_id"`
	Proportion float64        `json:"proportion"`
	TopTerms   []WeightedTerm `json:"top_terms"`
}

// TopicReport is the merged result of the two job output tables, joined on
// the topic identifier.
type TopicReport struct {
	JobID string      `json:"job_id,omitempty"`
	Rows  []ReportRow `json:"rows"`
}

// SortRows orders report rows by document name, then by descending proportion
// so each document's dominant topic comes first.
func (r *TopicReport) SortRows() {
	sort.SliceStable(r.Rows, func(i, j int) bool {
		if r.Rows[i].DocName != r.Rows[j].DocName {
			return r.Rows[i].DocName < r.Rows[j].DocName
		}
		return r.Rows[i].Proportion > r.Rows[j].Proportion
	})
}

// Topics returns the distinct topic IDs present in the report, sorted.
func (r *TopicReport) Topics() []string {
	seen := make(map[string]bool)
	var ids []string
	for _, row := range r.Rows {
		if !seen[row.TopicID] {
			seen[row.TopicID] = true
			ids = append(ids, row.TopicID)
		}
	}
	sort.Strings(ids)
	return ids
}
