package web

import (
	"net/http"

	"civicbriefs/internal/application/actions"
	"civicbriefs/internal/application/tabs"
	"civicbriefs/internal/domain/account"
)

// formPage is the template data for the account forms.
type formPage struct {
	Error  string
	Values map[string]string
	Token  string
	Next   string
}

// themeOnly is the chrome for pages that do not need a validated session.
func (s *Server) themeOnly(r *http.Request, title string) chrome {
	deps := s.actionDeps(r)
	return chrome{Viewer: actions.Viewer{Theme: deps.Session.Theme(r.Context())}, Title: title}
}

// handleLoginPage handles GET /login
func (s *Server) handleLoginPage(w http.ResponseWriter, r *http.Request) {
	s.restoreToasts(r)
	viewer := actions.ExecuteValidateSession(r.Context(), s.actionDeps(r))
	if viewer.Authenticated {
		s.redirectWithToasts(w, r, s.cfg.Strategy.Href(tabs.Default))
		return
	}
	s.renderTemplate(w, r, "login.html", chrome{Viewer: viewer, Title: "Log in"}, formPage{
		Next: safeNext(r.URL.Query().Get("next"), ""),
	})
}

// handleLogin handles POST /login
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if !parseForm(w, r) {
		return
	}
	req := account.LoginRequest{Email: r.FormValue("email"), Password: r.FormValue("password")}
	ok, st := actions.ExecuteLogin(r.Context(), s.actionDeps(r), req)
	if ok {
		s.redirectWithToasts(w, r, safeNext(r.FormValue("next"), s.cfg.Strategy.Href(tabs.Default)))
		return
	}
	s.renderTemplate(w, r, "login.html", s.themeOnly(r, "Log in"), formPage{
		Error:  st.Text,
		Values: map[string]string{"email": req.Email},
		Next:   safeNext(r.FormValue("next"), ""),
	})
}

// handleLogout handles POST /logout
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	actions.ExecuteLogout(r.Context(), s.actionDeps(r))
	s.redirectWithToasts(w, r, "/")
}

// handleSignupPage handles GET /signup
func (s *Server) handleSignupPage(w http.ResponseWriter, r *http.Request) {
	s.renderTemplate(w, r, "signup.html", s.themeOnly(r, "Sign up"), formPage{})
}

// handleSignup handles POST /signup
func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	if !parseForm(w, r) {
		return
	}
	req := account.SignupRequest{
		Email:    r.FormValue("email"),
		FullName: r.FormValue("full_name"),
		Password: r.FormValue("password"),
	}
	ok, st := actions.ExecuteSignup(r.Context(), s.actionDeps(r), req)
	if ok {
		s.redirectWithToasts(w, r, "/login")
		return
	}
	s.renderTemplate(w, r, "signup.html", s.themeOnly(r, "Sign up"), formPage{
		Error:  st.Text,
		Values: map[string]string{"email": req.Email, "full_name": req.FullName},
	})
}

// handleRequestAccessPage handles GET /request-access
func (s *Server) handleRequestAccessPage(w http.ResponseWriter, r *http.Request) {
	s.renderTemplate(w, r, "request_access.html", s.themeOnly(r, "Request access"), formPage{})
}

// handleRequestAccess handles POST /request-access
func (s *Server) handleRequestAccess(w http.ResponseWriter, r *http.Request) {
	if !parseForm(w, r) {
		return
	}
	req := account.SubscriptionRequestCreate{
		Email:    r.FormValue("email"),
		FullName: r.FormValue("full_name"),
		Reason:   r.FormValue("reason"),
	}
	ok, st := actions.ExecuteRequestAccess(r.Context(), s.actionDeps(r), req)
	if ok {
		s.redirectWithToasts(w, r, "/login")
		return
	}
	s.renderTemplate(w, r, "request_access.html", s.themeOnly(r, "Request access"), formPage{
		Error:  st.Text,
		Values: map[string]string{"email": req.Email, "full_name": req.FullName, "reason": req.Reason},
	})
}

// handleForgotPasswordPage handles GET /forgot-password
func (s *Server) handleForgotPasswordPage(w http.ResponseWriter, r *http.Request) {
	s.renderTemplate(w, r, "forgot_password.html", s.themeOnly(r, "Forgot password"), formPage{})
}

// handleForgotPassword handles POST /forgot-password
func (s *Server) handleForgotPassword(w http.ResponseWriter, r *http.Request) {
	if !parseForm(w, r) {
		return
	}
	req := account.ForgotPasswordRequest{Email: r.FormValue("email")}
	ok, st := actions.ExecuteForgotPassword(r.Context(), s.actionDeps(r), req)
	if ok {
		s.redirectWithToasts(w, r, "/login")
		return
	}
	s.renderTemplate(w, r, "forgot_password.html", s.themeOnly(r, "Forgot password"), formPage{
		Error:  st.Text,
		Values: map[string]string{"email": req.Email},
	})
}

// handleResetPasswordPage handles GET /reset-password?token=...
func (s *Server) handleResetPasswordPage(w http.ResponseWriter, r *http.Request) {
	s.renderTemplate(w, r, "reset_password.html", s.themeOnly(r, "Reset password"), formPage{
		Token: r.URL.Query().Get("token"),
	})
}

// handleResetPassword handles POST /reset-password
func (s *Server) handleResetPassword(w http.ResponseWriter, r *http.Request) {
	if !parseForm(w, r) {
		return
	}
	req := account.ResetPasswordRequest{Token: r.FormValue("token"), NewPassword: r.FormValue("new_password")}
	ok, st := actions.ExecuteResetPassword(r.Context(), s.actionDeps(r), req)
	if ok {
		s.redirectWithToasts(w, r, "/login")
		return
	}
	s.renderTemplate(w, r, "reset_password.html", s.themeOnly(r, "Reset password"), formPage{
		Error: st.Text,
		Token: req.Token,
	})
}

// handleTheme handles POST /theme and returns to the page it was posted from.
func (s *Server) handleTheme(w http.ResponseWriter, r *http.Request) {
	if !parseForm(w, r) {
		return
	}
	actions.ExecuteToggleTheme(r.Context(), s.actionDeps(r))
	http.Redirect(w, r, safeNext(r.FormValue("next"), "/"), http.StatusSeeOther)
}
