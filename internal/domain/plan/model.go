package plan

import (
	"fmt"
	"strings"

	"civicbriefs/internal/domain/schema"
)

// EmptyMessage is shown when the user has no plan yet.
const EmptyMessage = "No plan yet. Click Recompute to generate."

// Envelope wraps the plan returned by /plan/me and /plan/recompute.
type Envelope struct {
	Message string `json:"message"`
	Plan    *Plan  `json:"plan"`
}

// Plan is a week-by-week study schedule.
type Plan struct {
	Weeks           []Week   `json:"weeks"`
	FeedbackSummary Feedback `json:"feedback_summary"`
}

// Week is one block of study tasks.
type Week struct {
	Week  schema.Text `json:"week"`
	Hours schema.Text `json:"hours"`
	Tasks []string    `json:"tasks"`
}

// Feedback is the adaptation summary derived from test results.
type Feedback struct {
	TestsConsidered schema.Num `json:"tests_considered"`
	AverageScore    schema.Num `json:"average_score"`
	WeakTopics      []string   `json:"weak_topics"`
}

// Normalize fills empty collections.
func (p *Plan) Normalize() {
	if p.Weeks == nil {
		p.Weeks = []Week{}
	}
	for i := range p.Weeks {
		if p.Weeks[i].Tasks == nil {
			p.Weeks[i].Tasks = []string{}
		}
	}
	if p.FeedbackSummary.WeakTopics == nil {
		p.FeedbackSummary.WeakTopics = []string{}
	}
}

// Summary is the one-line feedback shown above the week cards.
func (p Plan) Summary() string {
	fb := p.FeedbackSummary
	return fmt.Sprintf("Tests: %d | Avg Score: %s | Weak: %s",
		fb.TestsConsidered.Int(),
		formatNum(fb.AverageScore.Float()),
		strings.Join(fb.WeakTopics, ", "),
	)
}

func formatNum(f float64) string {
	if f == float64(int64(f)) {
		return fmt.Sprintf("%d", int64(f))
	}
	return fmt.Sprintf("%g", f)
}
