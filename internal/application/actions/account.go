package actions

import (
	"context"
	"log/slog"

	"civicbriefs/internal/application/toast"
	"civicbriefs/internal/domain/account"
)

// Toast texts for account actions.
const (
	MsgLoggedIn        = "Logged in"
	MsgLoggedOut       = "Logged out"
	MsgSignedUp        = "Account created. Please log in."
	MsgAccessRequested = "Subscription request submitted"
	MsgResetRequested  = "If the email exists, a reset link has been sent"
	MsgPasswordReset   = "Password updated. Please log in."
)

// Viewer is what the page needs to know about the current profile.
type Viewer struct {
	Authenticated bool
	Privileged    bool
	Email         string
	Role          string
	Theme         string
}

// ExecuteValidateSession checks a stored credential against GET /users/me and
// refreshes the stored role from the answer.
// POST: Authenticated only when the server returned a role for the credential
func ExecuteValidateSession(ctx context.Context, deps Deps) Viewer {
	v := Viewer{Theme: deps.Session.Theme(ctx)}
	cred := deps.Session.Credential(ctx)
	if cred == "" {
		return v
	}
	me, res := deps.API.Me(ctx, cred)
	if !res.OK || me.Role == "" {
		slog.Info("auth_event", "event", "session_invalid", "profile_id", deps.Session.ProfileID(), "status", res.Status)
		return v
	}
	if me.Role != deps.Session.Role(ctx) {
		if err := deps.Session.SetRole(ctx, me.Role); err != nil {
			slog.Error("session_write_failed", "profile_id", deps.Session.ProfileID(), "error", err)
		}
	}
	v.Authenticated = true
	v.Role = me.Role
	v.Privileged = account.IsPrivileged(me.Role)
	v.Email = me.Email
	if v.Email == "" {
		if id, ok := deps.Session.Identity(ctx); ok {
			v.Email = id.Email
		}
	}
	return v
}

// ExecuteLogin exchanges email and password for a credential and stores it.
// PRE: none
// POST: the session holds the credential and role only when the backend accepted the login
func ExecuteLogin(ctx context.Context, deps Deps, req account.LoginRequest) (bool, Status) {
	if err := req.Validate(); err != nil {
		toast.Push(ctx, toast.Error, err.Error())
		return false, Status{Text: err.Error()}
	}
	tok, res := deps.API.Login(ctx, req)
	if !res.OK {
		slog.Info("auth_event", "event", "login_failed", "profile_id", deps.Session.ProfileID(), "status", res.Status)
		return false, statusOf(res)
	}
	if err := deps.Session.Login(ctx, tok.AccessToken, tok.Role); err != nil {
		slog.Error("session_write_failed", "profile_id", deps.Session.ProfileID(), "error", err)
		toast.Push(ctx, toast.Error, err.Error())
		return false, Status{Text: err.Error()}
	}
	slog.Info("auth_event", "event", "login", "profile_id", deps.Session.ProfileID(), "role", tok.Role)
	toast.Push(ctx, toast.Success, MsgLoggedIn)
	return true, Status{Text: MsgLoggedIn, OK: true}
}

// ExecuteLogout forgets the credential and role. Theme and chat session survive.
func ExecuteLogout(ctx context.Context, deps Deps) {
	if err := deps.Session.Logout(ctx); err != nil {
		slog.Error("session_write_failed", "profile_id", deps.Session.ProfileID(), "error", err)
		return
	}
	slog.Info("auth_event", "event", "logout", "profile_id", deps.Session.ProfileID())
	toast.Push(ctx, toast.Info, MsgLoggedOut)
}

// ExecuteSignup registers an account. The user logs in separately.
func ExecuteSignup(ctx context.Context, deps Deps, req account.SignupRequest) (bool, Status) {
	if err := req.Validate(); err != nil {
		toast.Push(ctx, toast.Error, err.Error())
		return false, Status{Text: err.Error()}
	}
	_, res := deps.API.Signup(ctx, req)
	if res.OK {
		slog.Info("auth_event", "event", "signup", "profile_id", deps.Session.ProfileID())
		toast.Push(ctx, toast.Success, MsgSignedUp)
	}
	return res.OK, statusOf(res)
}

// ExecuteRequestAccess files a subscription request for administrator review.
func ExecuteRequestAccess(ctx context.Context, deps Deps, req account.SubscriptionRequestCreate) (bool, Status) {
	if err := req.Validate(); err != nil {
		toast.Push(ctx, toast.Error, err.Error())
		return false, Status{Text: err.Error()}
	}
	_, res := deps.API.RequestSubscription(ctx, req)
	if res.OK {
		toast.Push(ctx, toast.Success, MsgAccessRequested)
	}
	return res.OK, statusOf(res)
}

// ExecuteForgotPassword asks the backend to mail a reset link.
func ExecuteForgotPassword(ctx context.Context, deps Deps, req account.ForgotPasswordRequest) (bool, Status) {
	if err := req.Validate(); err != nil {
		toast.Push(ctx, toast.Error, err.Error())
		return false, Status{Text: err.Error()}
	}
	_, res := deps.API.ForgotPassword(ctx, req)
	if res.OK {
		toast.Push(ctx, toast.Info, MsgResetRequested)
	}
	return res.OK, statusOf(res)
}

// ExecuteResetPassword sets a new password using a reset token.
func ExecuteResetPassword(ctx context.Context, deps Deps, req account.ResetPasswordRequest) (bool, Status) {
	if err := req.Validate(); err != nil {
		toast.Push(ctx, toast.Error, err.Error())
		return false, Status{Text: err.Error()}
	}
	_, res := deps.API.ResetPassword(ctx, req)
	if res.OK {
		slog.Info("auth_event", "event", "password_reset", "profile_id", deps.Session.ProfileID())
		toast.Push(ctx, toast.Success, MsgPasswordReset)
	}
	return res.OK, statusOf(res)
}

// ExecuteToggleTheme flips the stored theme and returns the new one.
func ExecuteToggleTheme(ctx context.Context, deps Deps) string {
	next, err := deps.Session.ToggleTheme(ctx)
	if err != nil {
		slog.Error("session_write_failed", "profile_id", deps.Session.ProfileID(), "error", err)
		return deps.Session.Theme(ctx)
	}
	return next
}
