package actions

import (
	"context"

	"golang.org/x/sync/errgroup"

	"civicbriefs/internal/adapters/civicapi"
	"civicbriefs/internal/application/toast"
	"civicbriefs/internal/domain/report"
	"civicbriefs/internal/domain/subscription"
)

// ExecuteChangeSubscription subscribes or unsubscribes an email on one channel.
// PRE: none
// POST: zero network calls when the email is blank or the channel unknown
func ExecuteChangeSubscription(ctx context.Context, deps Deps, change subscription.Change) Status {
	if err := change.Validate(); err != nil {
		toast.Push(ctx, toast.Error, err.Error())
		return Status{Text: err.Error()}
	}
	_, res := deps.API.ChangeSubscription(ctx, deps.Session.Credential(ctx), change)
	return statusOf(res)
}

// ExecuteSubscribersTable fetches both subscriber lists concurrently and joins them.
// INVARIANT: a list whose call failed contributes no rows
func ExecuteSubscribersTable(ctx context.Context, deps Deps) []subscription.Row {
	cred := deps.Session.Credential(ctx)
	var (
		daily, weekly       subscription.List
		dailyRes, weeklyRes civicapi.Result
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		daily, dailyRes = deps.API.Subscribers(gctx, cred, subscription.ChannelDaily)
		return nil
	})
	g.Go(func() error {
		weekly, weeklyRes = deps.API.Subscribers(gctx, cred, subscription.ChannelWeekly)
		return nil
	})
	_ = g.Wait()

	var d, w *subscription.List
	if dailyRes.OK {
		d = &daily
	}
	if weeklyRes.OK {
		w = &weekly
	}
	return subscription.Rows(d, w)
}

// ExecuteSendMissed resends the last days of capsules to one subscriber.
// PRE: none
// POST: zero network calls when email is blank or days is out of range
func ExecuteSendMissed(ctx context.Context, deps Deps, email string, days int) Status {
	change := subscription.Change{Email: email, Channel: subscription.ChannelDaily}
	if err := change.Validate(); err != nil {
		toast.Push(ctx, toast.Error, err.Error())
		return Status{Text: err.Error()}
	}
	if err := subscription.ValidateDays(days); err != nil {
		toast.Push(ctx, toast.Error, err.Error())
		return Status{Text: err.Error()}
	}
	_, res := deps.API.SendMissed(ctx, deps.Session.Credential(ctx), change.Email, days)
	return statusOf(res)
}

// WeeklyOutcome is a weekly report preview.
type WeeklyOutcome struct {
	Report report.Weekly
	Loaded bool
	Status Status
}

// ExecuteWeeklyPreview fetches the weekly report.
func ExecuteWeeklyPreview(ctx context.Context, deps Deps) WeeklyOutcome {
	w, res := deps.API.WeeklyReport(ctx, deps.Session.Credential(ctx))
	return WeeklyOutcome{Report: w, Loaded: res.OK, Status: statusOf(res)}
}

// ExecuteWeeklySend mails the weekly report to weekly subscribers.
func ExecuteWeeklySend(ctx context.Context, deps Deps) Status {
	_, res := deps.API.SendWeeklyReport(ctx, deps.Session.Credential(ctx))
	return statusOf(res)
}
