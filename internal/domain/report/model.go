package report

import (
	"civicbriefs/internal/domain/capsule"
	"civicbriefs/internal/domain/schema"
)

// Weekly is the highlights report for the past week.
type Weekly struct {
	WeekStart  string      `json:"week_start"`
	WeekEnd    string      `json:"week_end"`
	Highlights []Highlight `json:"highlights"`
	Progress   Progress    `json:"progress"`
}

// Highlight is one capsule item selected for the weekly report.
type Highlight struct {
	Date    string          `json:"date"`
	Title   string          `json:"title"`
	URL     string          `json:"url"`
	Summary string          `json:"summary"`
	Topics  []capsule.Topic `json:"topics"`
	Pyqs    []capsule.Pyq   `json:"pyqs"`
}

// Progress is the cohort test summary included in the report.
type Progress struct {
	TestsRecorded schema.Num `json:"tests_recorded"`
	AverageScore  schema.Num `json:"average_score"`
}

// Normalize fills empty collections.
func (w *Weekly) Normalize() {
	if w.Highlights == nil {
		w.Highlights = []Highlight{}
	}
	for i := range w.Highlights {
		if w.Highlights[i].Topics == nil {
			w.Highlights[i].Topics = []capsule.Topic{}
		}
		if w.Highlights[i].Pyqs == nil {
			w.Highlights[i].Pyqs = []capsule.Pyq{}
		}
	}
}

// Period is the "start to end" label of the report.
func (w Weekly) Period() string {
	return w.WeekStart + " to " + w.WeekEnd
}

// SendResult is the reply of POST /reports/weekly/send.
type SendResult struct {
	Recipients schema.Num `json:"recipients"`
	Sent       schema.Num `json:"sent"`
	Failed     schema.Num `json:"failed"`
}

// PipelineResult is the reply of POST /pipeline/run.
type PipelineResult struct {
	Message      string     `json:"message"`
	NewsItems    schema.Num `json:"news_items"`
	CapsuleItems schema.Num `json:"capsule_items"`
	EmailsSent   schema.Num `json:"emails_sent"`
	EmailsFailed schema.Num `json:"emails_failed"`
}
