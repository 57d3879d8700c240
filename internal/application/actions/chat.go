package actions

import (
	"context"
	"errors"
	"log/slog"

	"civicbriefs/internal/application/toast"
	"civicbriefs/internal/domain/chat"
)

// MsgTypeQuestion is toasted when the chat question is blank.
const MsgTypeQuestion = "Type a question"

// ChatOutcome is one question-and-answer exchange.
type ChatOutcome struct {
	Sent     bool
	Question string
	Answer   chat.Answer
	Status   Status
}

// ExecuteAskChat sends a question under the profile's stable chat session.
// The credential is attached whenever one is stored.
// PRE: none
// POST: zero network calls when the question is blank
func ExecuteAskChat(ctx context.Context, deps Deps, question string) ChatOutcome {
	sid, err := deps.Session.ChatSessionID(ctx)
	if err != nil {
		slog.Error("chat_session_failed", "profile_id", deps.Session.ProfileID(), "error", err)
	}
	req, err := chat.NewAskRequest(question, sid)
	if errors.Is(err, chat.ErrEmptyQuestion) {
		toast.Push(ctx, toast.Info, MsgTypeQuestion)
		return ChatOutcome{}
	}
	answer, res := deps.API.Ask(ctx, deps.Session.Credential(ctx), req)
	return ChatOutcome{
		Sent:     true,
		Question: req.Question,
		Answer:   answer,
		Status:   statusOf(res),
	}
}

// PyqOutcome is the answer framework for one previous-year question.
type PyqOutcome struct {
	Answer chat.PyqAnswer
	Loaded bool
	Status Status
}

// ExecutePyqAnswer fetches the answer framework for question id.
func ExecutePyqAnswer(ctx context.Context, deps Deps, id string) PyqOutcome {
	a, res := deps.API.PyqAnswer(ctx, deps.Session.Credential(ctx), id)
	return PyqOutcome{Answer: a, Loaded: res.OK, Status: statusOf(res)}
}
