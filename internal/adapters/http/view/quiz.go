package view

import (
	"fmt"
	"strconv"

	"golang.org/x/net/html"

	"civicbriefs/internal/domain/capsule"
	"civicbriefs/internal/domain/quiz"
)

// QuizEmptyMessage is shown when there is no quiz to take.
const QuizEmptyMessage = "No quiz available for today. Generate capsule or check later."

// Form field names carried by the rendered quiz.
const (
	FieldQuizName      = "quiz_name"
	FieldQuestionCount = "question_count"
)

// QuestionField is the radio group name for question i.
func QuestionField(i int) string {
	return "q" + strconv.Itoa(i)
}

// Quiz renders one card per question with lettered radio options.
// The quiz name is kept on the container and echoed in a hidden input for submission.
// POST: a nil or empty quiz yields exactly one no-data element
func Quiz(q *quiz.Quiz, container *html.Node) {
	if q.IsEmpty() {
		SetAttr(container, "data-quiz-name", quiz.DefaultName)
		Replace(container, placeholder(QuizEmptyMessage))
		return
	}
	name := q.Name
	if name == "" {
		name = quiz.DefaultName
	}
	SetAttr(container, "data-quiz-name", name)

	nodes := []*html.Node{
		Wrap("div", q.Meta(), "class", "quiz-meta"),
		El("input", "type", "hidden", "name", FieldQuizName, "value", name),
		El("input", "type", "hidden", "name", FieldQuestionCount, "value", strconv.Itoa(len(q.Questions))),
	}
	for i, question := range q.Questions {
		card := El("div", "class", "card quiz-card", "data-index", strconv.Itoa(i))
		Add(card, Add(El("div"), Wrap("strong", fmt.Sprintf("Q%d.", i+1)), Text(" "+question.Text)))
		if question.Context != "" {
			Add(card, Wrap("div", "Context: "+capsule.Truncate(question.Context, quiz.ContextLimit), "class", "muted-sm"))
		}
		opts := El("div", "class", "options")
		for oi, opt := range question.Options {
			id := fmt.Sprintf("q%d_opt%d", i, oi)
			Add(opts, Add(El("div", "class", "row-sm"),
				El("input", "type", "radio", "id", id, "name", QuestionField(i), "value", strconv.Itoa(oi)),
				Wrap("label", quiz.OptionLetter(oi)+". "+opt, "for", id),
			))
		}
		nodes = append(nodes, Add(card, opts))
	}
	Replace(container, nodes...)
}

// QuizReview renders per-question feedback from a scored submission.
// POST: renders nothing when the result carries no review
func QuizReview(r quiz.Result, container *html.Node) {
	if len(r.Review) == 0 {
		Replace(container)
		return
	}
	nodes := []*html.Node{Wrap("div", fmt.Sprintf("Score: %s (%d/%d)", r.Score, r.Correct.Int(), r.Total.Int()), "class", "quiz-score")}
	for _, rv := range r.Review {
		class := "card review wrong"
		verdict := "Incorrect"
		if rv.OK {
			class = "card review right"
			verdict = "Correct"
		}
		card := Add(El("div", "class", class),
			Wrap("div", fmt.Sprintf("Q%d. %s", rv.Index.Int()+1, verdict)))
		if rv.Chosen.Int() == quiz.Unanswered {
			Add(card, Wrap("div", "Not answered", "class", "muted-sm"))
		}
		if !rv.OK && rv.Correct.Int() >= 0 {
			Add(card, Wrap("div", "Correct answer: "+quiz.OptionLetter(rv.Correct.Int()), "class", "muted-sm"))
		}
		if rv.Explanation != "" {
			Add(card, Wrap("div", rv.Explanation, "class", "explanation"))
		}
		nodes = append(nodes, card)
	}
	Replace(container, nodes...)
}
