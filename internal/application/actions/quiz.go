package actions

import (
	"context"
	"encoding/json"

	"golang.org/x/sync/errgroup"

	"civicbriefs/internal/adapters/civicapi"
	"civicbriefs/internal/application/toast"
	"civicbriefs/internal/domain/quiz"
)

// Toast texts for quiz actions.
const (
	MsgQuizLoaded          = "Quiz loaded"
	MsgQuizUnavailable     = "Unable to load quiz"
	MsgLoginRequiredSubmit = "Login required to submit"
	MsgLoginRequired       = "Login required"
)

// QuizOutcome is a quiz load. On failure Status carries the backend payload.
type QuizOutcome struct {
	Quiz   quiz.Quiz
	Loaded bool
	Status Status
}

// ExecuteLoadQuiz forces generation of today's quiz, then fetches it.
// INVARIANT: the fetch is issued after the generate call returns, whatever its outcome
func ExecuteLoadQuiz(ctx context.Context, deps Deps) QuizOutcome {
	cred := deps.Session.Credential(ctx)
	deps.API.GenerateDailyQuiz(ctx, cred)
	q, res := deps.API.TodayQuiz(ctx, cred)
	if !res.OK {
		toast.Push(ctx, toast.Error, MsgQuizUnavailable)
		return QuizOutcome{Quiz: q, Status: statusOf(res)}
	}
	toast.Push(ctx, toast.Success, MsgQuizLoaded)
	return QuizOutcome{Quiz: q, Loaded: true}
}

// SubmitOutcome is a scored submission. Sent is false when nothing reached the network.
type SubmitOutcome struct {
	Sent   bool
	Result quiz.Result
	Status Status
}

// ExecuteSubmitQuiz sends the answers in card order.
// PRE: sub was built with quiz.NewSubmission over the rendered cards
// POST: zero network calls when there is no credential or sub is malformed
func ExecuteSubmitQuiz(ctx context.Context, deps Deps, sub quiz.Submission, count int) SubmitOutcome {
	cred := deps.Session.Credential(ctx)
	if cred == "" {
		toast.Push(ctx, toast.Error, MsgLoginRequiredSubmit)
		return SubmitOutcome{}
	}
	if err := sub.Validate(count); err != nil {
		toast.Push(ctx, toast.Error, err.Error())
		return SubmitOutcome{Status: Status{Text: err.Error()}}
	}
	result, res := deps.API.SubmitQuiz(ctx, cred, sub)
	out := SubmitOutcome{Sent: true, Result: result, Status: statusOf(res)}
	if res.OK {
		toast.Push(ctx, toast.Success, "Score: "+string(result.Score))
	}
	return out
}

// ProgressOutcome joins the progress summary and the score history.
type ProgressOutcome struct {
	Sent     bool
	Progress quiz.Progress
	History  []quiz.HistoryEntry
	Status   Status
}

// ExecuteQuizProgress fetches progress and history concurrently.
// PRE: none
// POST: zero network calls and toast "Login required" without a credential
func ExecuteQuizProgress(ctx context.Context, deps Deps) ProgressOutcome {
	cred := deps.Session.Credential(ctx)
	if cred == "" {
		toast.Push(ctx, toast.Error, MsgLoginRequired)
		return ProgressOutcome{}
	}

	var (
		progress   quiz.Progress
		history    []quiz.HistoryEntry
		resP, resH civicapi.Result
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		progress, resP = deps.API.Progress(gctx, cred)
		return nil
	})
	g.Go(func() error {
		history, resH = deps.API.History(gctx, cred)
		return nil
	})
	_ = g.Wait()

	if history == nil {
		history = []quiz.HistoryEntry{}
	}
	text, _ := json.MarshalIndent(map[string]any{
		"summary": progress,
		"history": history,
	}, "", "  ")
	return ProgressOutcome{
		Sent:     true,
		Progress: progress,
		History:  history,
		Status:   Status{Text: string(text), OK: resP.OK && resH.OK},
	}
}
