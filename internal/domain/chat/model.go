package chat

import (
	"errors"
	"strings"

	"civicbriefs/internal/domain/capsule"
	"civicbriefs/internal/domain/schema"
)

// FallbackResponse is shown when the backend answers without text.
const FallbackResponse = "Sorry, I could not find relevant information."

// ErrEmptyQuestion is returned before any network call when the question is blank.
var ErrEmptyQuestion = errors.New("question cannot be empty")

// AskRequest is the body of a chat question.
type AskRequest struct {
	Question  string `json:"question"`
	SessionID string `json:"session_id,omitempty"`
}

// NewAskRequest trims the question and rejects blanks.
// PRE: none
// POST: Returns ErrEmptyQuestion if question is blank after trimming
func NewAskRequest(question, sessionID string) (AskRequest, error) {
	q := strings.TrimSpace(question)
	if q == "" {
		return AskRequest{}, ErrEmptyQuestion
	}
	return AskRequest{Question: q, SessionID: sessionID}, nil
}

// Answer is the assistant's reply, optionally grounded with related PYQs.
type Answer struct {
	Response string        `json:"response"`
	Pyqs     []capsule.Pyq `json:"pyqs"`
}

// Normalize fills the fallback response and empty PYQ list.
func (a *Answer) Normalize() {
	if strings.TrimSpace(a.Response) == "" {
		a.Response = FallbackResponse
	}
	if a.Pyqs == nil {
		a.Pyqs = []capsule.Pyq{}
	}
}

// PyqAnswer is the answer framework for a single prior-exam question.
type PyqAnswer struct {
	QuestionID schema.Text `json:"question_id"`
	Question   string      `json:"question"`
	Paper      string      `json:"paper"`
	Year       schema.Text `json:"year"`
	Answer     string      `json:"answer"`
	Keywords   schema.Text `json:"keywords"`
}
