// Package actions binds each user-facing operation to the sequence
// gather input, validate, call the API, shape the result, chain follow-ups.
//
// Actions never return Go errors for remote failures. The API client has
// already toasted those; actions add success toasts and precondition
// toasts, and hand back an outcome the view layer renders.
package actions

import (
	"context"

	"github.com/go-playground/validator/v10"

	"civicbriefs/internal/adapters/civicapi"
	"civicbriefs/internal/adapters/email"
	"civicbriefs/internal/application/session"
	"civicbriefs/internal/domain/account"
	"civicbriefs/internal/domain/admin"
	"civicbriefs/internal/domain/capsule"
	"civicbriefs/internal/domain/chat"
	"civicbriefs/internal/domain/plan"
	"civicbriefs/internal/domain/quiz"
	"civicbriefs/internal/domain/report"
	"civicbriefs/internal/domain/subscription"
)

// API is the part of the Civic Briefs client the actions call.
type API interface {
	DailyCapsule(ctx context.Context, cred string) (capsule.Capsule, civicapi.Result)
	RunPipeline(ctx context.Context, cred string) (report.PipelineResult, civicapi.Result)
	IngestNews(ctx context.Context, cred string, items []capsule.NewsIn) civicapi.Result
	ChangeSubscription(ctx context.Context, cred string, change subscription.Change) (admin.Message, civicapi.Result)
	Subscribers(ctx context.Context, cred, channel string) (subscription.List, civicapi.Result)
	SendMissed(ctx context.Context, cred, email string, days int) (admin.Message, civicapi.Result)
	WeeklyReport(ctx context.Context, cred string) (report.Weekly, civicapi.Result)
	SendWeeklyReport(ctx context.Context, cred string) (report.SendResult, civicapi.Result)
	Ask(ctx context.Context, cred string, req chat.AskRequest) (chat.Answer, civicapi.Result)
	PyqAnswer(ctx context.Context, cred, id string) (chat.PyqAnswer, civicapi.Result)
	GenerateDailyQuiz(ctx context.Context, cred string) civicapi.Result
	TodayQuiz(ctx context.Context, cred string) (quiz.Quiz, civicapi.Result)
	SubmitQuiz(ctx context.Context, cred string, sub quiz.Submission) (quiz.Result, civicapi.Result)
	Progress(ctx context.Context, cred string) (quiz.Progress, civicapi.Result)
	History(ctx context.Context, cred string) ([]quiz.HistoryEntry, civicapi.Result)
	GenerateSchedule(ctx context.Context, cred string) (admin.Message, civicapi.Result)
	MyPlan(ctx context.Context, cred string) (plan.Envelope, civicapi.Result)
	RecomputePlan(ctx context.Context, cred string) (plan.Envelope, civicapi.Result)
	Me(ctx context.Context, cred string) (account.Me, civicapi.Result)
	Login(ctx context.Context, req account.LoginRequest) (account.TokenResponse, civicapi.Result)
	Signup(ctx context.Context, req account.SignupRequest) (account.Me, civicapi.Result)
	RequestSubscription(ctx context.Context, req account.SubscriptionRequestCreate) (admin.Message, civicapi.Result)
	ForgotPassword(ctx context.Context, req account.ForgotPasswordRequest) (admin.Message, civicapi.Result)
	ResetPassword(ctx context.Context, req account.ResetPasswordRequest) (admin.Message, civicapi.Result)
	Users(ctx context.Context, cred string) ([]admin.User, civicapi.Result)
	SubscriptionRequests(ctx context.Context, cred string) ([]admin.SubscriptionRequest, civicapi.Result)
	Admin(ctx context.Context, cred string, action civicapi.AdminAction, id string) (admin.Message, civicapi.Result)
}

// Compile-time check that the real client satisfies API.
var _ API = (*civicapi.Client)(nil)

// Deps holds the collaborators every action may use.
type Deps struct {
	API     API
	Session *session.Session
	Mailer  email.Sender
	// RenderCapsuleEmail turns a capsule into an email body. Required by EmailCapsule only.
	RenderCapsuleEmail func(capsule.Capsule) (string, error)
}

// Status is the content of a status panel: the pretty-printed payload of the last call.
type Status struct {
	Text string
	OK   bool
}

func statusOf(res civicapi.Result) Status {
	return Status{Text: res.Pretty(), OK: res.OK}
}

var validate = validator.New(validator.WithRequiredStructEnabled())
