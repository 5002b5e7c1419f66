package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTopicReport_SortRows(t *testing.T) {
	report := &TopicReport{
		Rows: []ReportRow{
			{DocName: "b.txt", TopicID: "001", Proportion: 0.2},
			{DocName: "a.txt", TopicID: "002", Proportion: 0.3},
			{DocName: "a.txt", TopicID: "001", Proportion: 0.7},
		},
	}

	report.SortRows()

	assert.Equal(t, "a.txt", report.Rows[0].DocName)
	assert.Equal(t, "001", report.Rows[0].TopicID)
	assert.Equal(t, "a.txt", report.Rows[1].DocName)
	assert.Equal(t, "002", report.Rows[1].TopicID)
	assert.Equal(t, "b.txt", report.Rows[2].DocName)
}

func TestTopicReport_Topics(t *testing.T) {
	report := &TopicReport{
		Rows: []ReportRow{
			{DocName: "a.txt", TopicID: "002"},
			{DocName: "b.txt", TopicID: "000"},
			{DocName: "c.txt", TopicID: "002"},
		},
	}

	assert.Equal(t, []string{"000", "002"}, report.Topics())
}
