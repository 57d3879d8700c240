package quiz

import (
	"errors"
	"fmt"
	"strings"

	"civicbriefs/internal/domain/schema"
)

// DefaultName is used when the backend omits the quiz name.
const DefaultName = "Daily Quiz"

// ContextLimit caps the context line shown under a question.
const ContextLimit = 200

// Unanswered marks a question with no selected option in a submission.
const Unanswered = -1

// Score bounds used by the progress chart.
const (
	MinScore = 0
	MaxScore = 100
)

// Domain errors
var (
	ErrMissingName      = errors.New("quiz name cannot be empty")
	ErrAnswerCount      = errors.New("answer count does not match question count")
	ErrAnswerOutOfRange = errors.New("answer index out of range")
)

// Quiz is the daily multiple-choice test.
type Quiz struct {
	Date      string     `json:"date"`
	Name      string     `json:"name"`
	Questions []Question `json:"questions"`
}

// Question is one multiple-choice question.
type Question struct {
	Text    string   `json:"q"`
	Context string   `json:"context"`
	Options []string `json:"options"`
}

// Normalize fills defaults so renderers receive a complete structure.
// POST: Name is non-empty; Questions and every Options slice are non-nil
func (q *Quiz) Normalize() {
	if strings.TrimSpace(q.Name) == "" {
		q.Name = DefaultName
	}
	if q.Questions == nil {
		q.Questions = []Question{}
	}
	for i := range q.Questions {
		if q.Questions[i].Options == nil {
			q.Questions[i].Options = []string{}
		}
	}
}

// IsEmpty reports whether there is nothing to render.
func (q *Quiz) IsEmpty() bool {
	return q == nil || len(q.Questions) == 0
}

// Meta is the "<name> — <n> questions" line shown above the quiz.
func (q Quiz) Meta() string {
	return fmt.Sprintf("%s — %d questions", q.Name, len(q.Questions))
}

// OptionLetter maps an option index to A, B, C, ...
func OptionLetter(index int) string {
	return string(rune('A' + index))
}

// Submission is the ordered answer list sent for scoring.
// INVARIANT: len(Answers) equals the number of rendered questions; unanswered is -1
type Submission struct {
	Name    string `json:"name"`
	Answers []int  `json:"answers"`
}

// NewSubmission scans count questions in order, asking selected for each position.
// Positions with no selection are recorded as Unanswered, never omitted.
// PRE: count >= 0
// POST: len(result.Answers) == count
func NewSubmission(name string, count int, selected func(i int) (int, bool)) Submission {
	if strings.TrimSpace(name) == "" {
		name = DefaultName
	}
	answers := make([]int, count)
	for i := 0; i < count; i++ {
		if v, ok := selected(i); ok && v >= 0 {
			answers[i] = v
		} else {
			answers[i] = Unanswered
		}
	}
	return Submission{Name: name, Answers: answers}
}

// Validate checks the submission against the expected question count.
// PRE: none
// POST: Returns nil if Name is set and Answers has exactly count entries, each >= -1
func (s Submission) Validate(count int) error {
	if strings.TrimSpace(s.Name) == "" {
		return ErrMissingName
	}
	if len(s.Answers) != count {
		return ErrAnswerCount
	}
	for _, a := range s.Answers {
		if a < Unanswered {
			return ErrAnswerOutOfRange
		}
	}
	return nil
}

// Result is the scoring response.
type Result struct {
	Success schema.Flag `json:"success"`
	Score   schema.Text `json:"score"`
	Total   schema.Num  `json:"total"`
	Correct schema.Num  `json:"correct"`
	Detail  string      `json:"detail"`
	Review  []Review    `json:"review"`
}

// Review explains one scored answer.
type Review struct {
	Index       schema.Num  `json:"index"`
	Chosen      schema.Num  `json:"chosen"`
	Correct     schema.Num  `json:"correct"`
	OK          schema.Flag `json:"ok"`
	Explanation string      `json:"explanation"`
	Source      string      `json:"source"`
	Question    string      `json:"question"`
	Options     []string    `json:"options"`
}

// Progress summarises a user's recorded tests.
type Progress struct {
	Tests   schema.Num `json:"tests"`
	Average schema.Num `json:"average"`
}

// HistoryEntry is one recorded test, in chronological order.
type HistoryEntry struct {
	Date     string     `json:"date"`
	Score    schema.Num `json:"score"`
	TestName string     `json:"test_name"`
}

// ClampScore bounds a score to [MinScore, MaxScore].
func ClampScore(score float64) float64 {
	if score < MinScore {
		return MinScore
	}
	if score > MaxScore {
		return MaxScore
	}
	return score
}
