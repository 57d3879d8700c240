package actions

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"civicbriefs/internal/adapters/civicapi"
	"civicbriefs/internal/application/toast"
	"civicbriefs/internal/domain/admin"
)

// Success toasts per admin action.
var adminToasts = map[civicapi.AdminAction]string{
	civicapi.ApproveSubscription: "Request approved",
	civicapi.RejectSubscription:  "Request rejected",
	civicapi.ToggleSubscription:  "Subscription toggled",
	civicapi.DeactivateUser:      "User deactivated",
}

// AdminOutcome carries whichever lists were (re)loaded. A nil slice was not fetched.
type AdminOutcome struct {
	Users          []admin.User
	Requests       []admin.SubscriptionRequest
	UsersLoaded    bool
	RequestsLoaded bool
	Status         Status
}

// ExecuteListUsers fetches the managed users.
func ExecuteListUsers(ctx context.Context, deps Deps) AdminOutcome {
	users, res := deps.API.Users(ctx, deps.Session.Credential(ctx))
	return AdminOutcome{Users: users, UsersLoaded: res.OK, Status: statusOf(res)}
}

// ExecuteListRequests fetches pending subscription requests.
func ExecuteListRequests(ctx context.Context, deps Deps) AdminOutcome {
	reqs, res := deps.API.SubscriptionRequests(ctx, deps.Session.Credential(ctx))
	return AdminOutcome{Requests: reqs, RequestsLoaded: res.OK, Status: statusOf(res)}
}

// ExecuteAdminLists fetches users and pending requests concurrently.
func ExecuteAdminLists(ctx context.Context, deps Deps) AdminOutcome {
	cred := deps.Session.Credential(ctx)
	var (
		out        AdminOutcome
		resU, resR civicapi.Result
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		out.Users, resU = deps.API.Users(gctx, cred)
		return nil
	})
	g.Go(func() error {
		out.Requests, resR = deps.API.SubscriptionRequests(gctx, cred)
		return nil
	})
	_ = g.Wait()
	out.UsersLoaded = resU.OK
	out.RequestsLoaded = resR.OK
	return out
}

// ExecuteAdminAction runs one admin action against entity id and reloads the
// affected lists: both after approve or reject, users after toggle or deactivate.
// The backend decides authorization; a forbidden call surfaces as the generic failure toast.
// PRE: none
// POST: zero network calls when the action is unknown or id is blank
func ExecuteAdminAction(ctx context.Context, deps Deps, action civicapi.AdminAction, id string) AdminOutcome {
	if !action.Valid() || id == "" {
		toast.Push(ctx, toast.Error, civicapi.FailureMessage)
		return AdminOutcome{}
	}
	_, res := deps.API.Admin(ctx, deps.Session.Credential(ctx), action, id)
	slog.Info("auth_event", "event", "admin_action", "profile_id", deps.Session.ProfileID(),
		"action", string(action), "entity_id", id, "ok", res.OK)
	if res.OK {
		toast.Push(ctx, toast.Success, adminToasts[action])
	}

	var out AdminOutcome
	switch action {
	case civicapi.ApproveSubscription, civicapi.RejectSubscription:
		out = ExecuteAdminLists(ctx, deps)
	default:
		out = ExecuteListUsers(ctx, deps)
	}
	out.Status = statusOf(res)
	return out
}
