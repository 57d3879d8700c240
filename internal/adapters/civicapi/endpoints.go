package civicapi

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"civicbriefs/internal/domain/account"
	"civicbriefs/internal/domain/admin"
	"civicbriefs/internal/domain/capsule"
	"civicbriefs/internal/domain/chat"
	"civicbriefs/internal/domain/plan"
	"civicbriefs/internal/domain/quiz"
	"civicbriefs/internal/domain/report"
	"civicbriefs/internal/domain/subscription"
)

// AdminAction names a per-entity administrative mutation.
type AdminAction string

// Administrative actions, each addressed by entity ID.
const (
	ApproveSubscription AdminAction = "approve-subscription"
	RejectSubscription  AdminAction = "reject-subscription"
	ToggleSubscription  AdminAction = "toggle-subscription"
	DeactivateUser      AdminAction = "deactivate-user"
)

// Valid reports whether a is a known action.
func (a AdminAction) Valid() bool {
	switch a {
	case ApproveSubscription, RejectSubscription, ToggleSubscription, DeactivateUser:
		return true
	}
	return false
}

// coerce decodes the payload into v. Decoding goes through a scratch value,
// so a payload of the wrong shape leaves v untouched rather than half filled.
func coerce[T any](res Result, v *T, endpoint string) {
	var tmp T
	if err := res.Decode(&tmp); err != nil {
		slog.Warn("upstream_schema", "endpoint", endpoint, "status", res.Status, "error", err)
		return
	}
	*v = tmp
}

// DailyCapsule fetches today's capsule.
func (c *Client) DailyCapsule(ctx context.Context, cred string) (capsule.Capsule, Result) {
	res := c.Do(ctx, Request{Method: http.MethodGet, Path: "/capsule/daily", Credential: cred})
	var out capsule.Capsule
	if res.OK {
		coerce(res, &out, "capsule_daily")
	}
	out.Normalize()
	return out, res
}

// RunPipeline runs ingest, capsule build and email in one call.
func (c *Client) RunPipeline(ctx context.Context, cred string) (report.PipelineResult, Result) {
	res := c.Do(ctx, Request{Method: http.MethodPost, Path: "/pipeline/run", Credential: cred})
	var out report.PipelineResult
	if res.OK {
		coerce(res, &out, "pipeline_run")
	}
	return out, res
}

// IngestNews submits news items for ingestion.
func (c *Client) IngestNews(ctx context.Context, cred string, items []capsule.NewsIn) Result {
	return c.Do(ctx, Request{Method: http.MethodPost, Path: "/ingest/news", Body: items, Credential: cred})
}

// ChangeSubscription subscribes or unsubscribes an email on one channel.
// PRE: change.Validate() returned nil
func (c *Client) ChangeSubscription(ctx context.Context, cred string, change subscription.Change) (admin.Message, Result) {
	res := c.Do(ctx, Request{Method: http.MethodPost, Path: change.Path(), Credential: cred})
	var out admin.Message
	coerce(res, &out, "subscription_change")
	return out, res
}

// Subscribers lists one channel's subscribers.
func (c *Client) Subscribers(ctx context.Context, cred, channel string) (subscription.List, Result) {
	path := "/subscription/subscribers"
	if channel == subscription.ChannelWeekly {
		path = "/subscription/weekly-subscribers"
	}
	res := c.Do(ctx, Request{Method: http.MethodGet, Path: path, Credential: cred})
	var out subscription.List
	if res.OK {
		coerce(res, &out, "subscribers_"+channel)
	}
	out.Normalize()
	return out, res
}

// SendMissed resends the last days of capsules to one subscriber.
func (c *Client) SendMissed(ctx context.Context, cred, email string, days int) (admin.Message, Result) {
	path := "/subscription/send-missed/" + url.PathEscape(email) + "?days=" + strconv.Itoa(days)
	res := c.Do(ctx, Request{Method: http.MethodPost, Path: path, Credential: cred})
	var out admin.Message
	coerce(res, &out, "send_missed")
	return out, res
}

// WeeklyReport previews the weekly highlights.
func (c *Client) WeeklyReport(ctx context.Context, cred string) (report.Weekly, Result) {
	res := c.Do(ctx, Request{Method: http.MethodGet, Path: "/reports/weekly", Credential: cred})
	var out report.Weekly
	if res.OK {
		coerce(res, &out, "reports_weekly")
	}
	out.Normalize()
	return out, res
}

// SendWeeklyReport emails the weekly report to weekly subscribers.
func (c *Client) SendWeeklyReport(ctx context.Context, cred string) (report.SendResult, Result) {
	res := c.Do(ctx, Request{Method: http.MethodPost, Path: "/reports/weekly/send", Credential: cred})
	var out report.SendResult
	if res.OK {
		coerce(res, &out, "reports_weekly_send")
	}
	return out, res
}

// Ask sends a chat question.
func (c *Client) Ask(ctx context.Context, cred string, req chat.AskRequest) (chat.Answer, Result) {
	res := c.Do(ctx, Request{Method: http.MethodPost, Path: "/chat/ask", Body: req, Credential: cred})
	var out chat.Answer
	if res.OK {
		coerce(res, &out, "chat_ask")
	}
	out.Normalize()
	return out, res
}

// PyqAnswer fetches the answer framework for one prior-exam question.
func (c *Client) PyqAnswer(ctx context.Context, cred, id string) (chat.PyqAnswer, Result) {
	res := c.Do(ctx, Request{Method: http.MethodGet, Path: "/chat/pyq/" + url.PathEscape(id), Credential: cred})
	var out chat.PyqAnswer
	if res.OK {
		coerce(res, &out, "chat_pyq")
	}
	return out, res
}

// GenerateDailyQuiz forces regeneration of today's quiz.
func (c *Client) GenerateDailyQuiz(ctx context.Context, cred string) Result {
	return c.Do(ctx, Request{Method: http.MethodPost, Path: "/tests/generate/daily?force=1", Credential: cred})
}

// TodayQuiz fetches today's quiz.
func (c *Client) TodayQuiz(ctx context.Context, cred string) (quiz.Quiz, Result) {
	res := c.Do(ctx, Request{Method: http.MethodGet, Path: "/tests/today", Credential: cred})
	var out quiz.Quiz
	if res.OK {
		coerce(res, &out, "tests_today")
	}
	out.Normalize()
	return out, res
}

// SubmitQuiz sends answers for scoring.
// PRE: cred is non-empty; sub.Validate succeeded
func (c *Client) SubmitQuiz(ctx context.Context, cred string, sub quiz.Submission) (quiz.Result, Result) {
	res := c.Do(ctx, Request{Method: http.MethodPost, Path: "/tests/submit", Body: sub, Credential: cred})
	var out quiz.Result
	coerce(res, &out, "tests_submit")
	return out, res
}

// Progress fetches the caller's test summary.
func (c *Client) Progress(ctx context.Context, cred string) (quiz.Progress, Result) {
	res := c.Do(ctx, Request{Method: http.MethodGet, Path: "/tests/progress", Credential: cred})
	var out quiz.Progress
	if res.OK {
		coerce(res, &out, "tests_progress")
	}
	return out, res
}

// History fetches the caller's recorded tests in chronological order.
func (c *Client) History(ctx context.Context, cred string) ([]quiz.HistoryEntry, Result) {
	res := c.Do(ctx, Request{Method: http.MethodGet, Path: "/tests/history", Credential: cred})
	var out []quiz.HistoryEntry
	if res.OK {
		coerce(res, &out, "tests_history")
	}
	if out == nil {
		out = []quiz.HistoryEntry{}
	}
	return out, res
}

// GenerateSchedule asks the backend to build or refresh the default schedule.
func (c *Client) GenerateSchedule(ctx context.Context, cred string) (admin.Message, Result) {
	res := c.Do(ctx, Request{Method: http.MethodPost, Path: "/schedule/generate", Credential: cred})
	var out admin.Message
	coerce(res, &out, "schedule_generate")
	return out, res
}

// MyPlan fetches the caller's study plan. Plan is nil when none exists.
func (c *Client) MyPlan(ctx context.Context, cred string) (plan.Envelope, Result) {
	return c.plan(ctx, cred, http.MethodGet, "/plan/me")
}

// RecomputePlan adapts the caller's plan to recent test results.
func (c *Client) RecomputePlan(ctx context.Context, cred string) (plan.Envelope, Result) {
	return c.plan(ctx, cred, http.MethodPost, "/plan/recompute")
}

func (c *Client) plan(ctx context.Context, cred, method, path string) (plan.Envelope, Result) {
	res := c.Do(ctx, Request{Method: method, Path: path, Credential: cred})
	var out plan.Envelope
	if res.OK {
		coerce(res, &out, "plan")
	}
	if out.Plan != nil {
		out.Plan.Normalize()
	}
	return out, res
}

// Me validates a credential and returns the server's view of the user.
// It runs on every page load, so failure is reported without a toast.
func (c *Client) Me(ctx context.Context, cred string) (account.Me, Result) {
	res := c.Do(ctx, Request{Method: http.MethodGet, Path: "/users/me", Credential: cred, Quiet: true})
	var out account.Me
	if res.OK {
		coerce(res, &out, "users_me")
	}
	return out, res
}

// Login exchanges email and password for a credential.
func (c *Client) Login(ctx context.Context, req account.LoginRequest) (account.TokenResponse, Result) {
	res := c.Do(ctx, Request{Method: http.MethodPost, Path: "/auth/login", Body: req})
	var out account.TokenResponse
	if res.OK {
		coerce(res, &out, "auth_login")
	}
	return out, res
}

// Signup registers a new account.
func (c *Client) Signup(ctx context.Context, req account.SignupRequest) (account.Me, Result) {
	res := c.Do(ctx, Request{Method: http.MethodPost, Path: "/users/signup", Body: req})
	var out account.Me
	if res.OK {
		coerce(res, &out, "users_signup")
	}
	return out, res
}

// RequestSubscription asks an administrator for access.
func (c *Client) RequestSubscription(ctx context.Context, req account.SubscriptionRequestCreate) (admin.Message, Result) {
	return c.message(ctx, "/auth/request-subscription", req, "")
}

// ForgotPassword starts a password reset.
func (c *Client) ForgotPassword(ctx context.Context, req account.ForgotPasswordRequest) (admin.Message, Result) {
	return c.message(ctx, "/auth/forgot-password", req, "")
}

// ResetPassword completes a password reset.
func (c *Client) ResetPassword(ctx context.Context, req account.ResetPasswordRequest) (admin.Message, Result) {
	return c.message(ctx, "/auth/reset-password", req, "")
}

func (c *Client) message(ctx context.Context, path string, body any, cred string) (admin.Message, Result) {
	res := c.Do(ctx, Request{Method: http.MethodPost, Path: path, Body: body, Credential: cred})
	var out admin.Message
	coerce(res, &out, path)
	return out, res
}

// Users lists every account. Privileged roles only.
func (c *Client) Users(ctx context.Context, cred string) ([]admin.User, Result) {
	res := c.Do(ctx, Request{Method: http.MethodGet, Path: "/admin/users", Credential: cred})
	var out []admin.User
	if res.OK {
		coerce(res, &out, "admin_users")
	}
	if out == nil {
		out = []admin.User{}
	}
	return out, res
}

// SubscriptionRequests lists pending access requests. Privileged roles only.
func (c *Client) SubscriptionRequests(ctx context.Context, cred string) ([]admin.SubscriptionRequest, Result) {
	res := c.Do(ctx, Request{Method: http.MethodGet, Path: "/admin/subscription-requests", Credential: cred})
	var out []admin.SubscriptionRequest
	if res.OK {
		coerce(res, &out, "admin_subscription_requests")
	}
	if out == nil {
		out = []admin.SubscriptionRequest{}
	}
	return out, res
}

// Admin performs one administrative action on the entity with id.
// PRE: action.Valid()
func (c *Client) Admin(ctx context.Context, cred string, action AdminAction, id string) (admin.Message, Result) {
	return c.message(ctx, "/admin/"+string(action)+"/"+url.PathEscape(id), nil, cred)
}
