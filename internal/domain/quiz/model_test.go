package quiz_test

import (
	"testing"

	"civicbriefs/internal/domain/quiz"
)

// TestNewSubmission_UnansweredIsMinusOne verifies missing selections are encoded, never omitted.
func TestNewSubmission_UnansweredIsMinusOne(t *testing.T) {
	picks := map[int]int{0: 0, 1: 1}
	sub := quiz.NewSubmission("Daily Quiz 2025-01-01", 3, func(i int) (int, bool) {
		v, ok := picks[i]
		return v, ok
	})
	want := []int{0, 1, -1}
	if len(sub.Answers) != len(want) {
		t.Fatalf("len(Answers) = %d, want %d", len(sub.Answers), len(want))
	}
	for i := range want {
		if sub.Answers[i] != want[i] {
			t.Errorf("Answers[%d] = %d, want %d", i, sub.Answers[i], want[i])
		}
	}
	if err := sub.Validate(3); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

// TestNewSubmission_LengthMatchesCount verifies the length invariant for a range of counts.
func TestNewSubmission_LengthMatchesCount(t *testing.T) {
	for count := 0; count < 8; count++ {
		sub := quiz.NewSubmission("", count, func(int) (int, bool) { return 0, false })
		if len(sub.Answers) != count {
			t.Errorf("count %d: len(Answers) = %d", count, len(sub.Answers))
		}
		for i, a := range sub.Answers {
			if a != quiz.Unanswered {
				t.Errorf("count %d: Answers[%d] = %d, want -1", count, i, a)
			}
		}
		if sub.Name != quiz.DefaultName {
			t.Errorf("Name = %q, want default", sub.Name)
		}
	}
}

// TestSubmission_Validate rejects mismatched lengths.
func TestSubmission_Validate(t *testing.T) {
	sub := quiz.Submission{Name: "q", Answers: []int{0, 1}}
	if err := sub.Validate(3); err != quiz.ErrAnswerCount {
		t.Errorf("err = %v, want ErrAnswerCount", err)
	}
	sub = quiz.Submission{Name: "q", Answers: []int{-2}}
	if err := sub.Validate(1); err != quiz.ErrAnswerOutOfRange {
		t.Errorf("err = %v, want ErrAnswerOutOfRange", err)
	}
}

// TestOptionLetter maps indexes to letters.
func TestOptionLetter(t *testing.T) {
	for i, want := range []string{"A", "B", "C", "D", "E"} {
		if got := quiz.OptionLetter(i); got != want {
			t.Errorf("OptionLetter(%d) = %q, want %q", i, got, want)
		}
	}
}

// TestClampScore bounds scores.
func TestClampScore(t *testing.T) {
	tests := []struct{ in, want float64 }{{-5, 0}, {0, 0}, {42, 42}, {100, 100}, {140, 100}}
	for _, tt := range tests {
		if got := quiz.ClampScore(tt.in); got != tt.want {
			t.Errorf("ClampScore(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

// TestQuiz_Normalize fills the default name.
func TestQuiz_Normalize(t *testing.T) {
	q := &quiz.Quiz{}
	q.Normalize()
	if q.Name != quiz.DefaultName {
		t.Errorf("Name = %q, want %q", q.Name, quiz.DefaultName)
	}
	if !q.IsEmpty() {
		t.Error("quiz with no questions should be empty")
	}
	var nilQuiz *quiz.Quiz
	if !nilQuiz.IsEmpty() {
		t.Error("nil quiz should be empty")
	}
}
