package web

import (
	"io/fs"
	"net/http"
)

// routes registers every dashboard route on a fresh mux.
func (s *Server) routes() *http.ServeMux {
	mux := http.NewServeMux()

	static, _ := fs.Sub(assets, "static")
	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServerFS(static)))

	// Pages
	mux.HandleFunc("GET /{$}", s.handleHome)
	mux.HandleFunc("GET /p/{key}", s.handlePanelPage)
	mux.HandleFunc("GET /ops/perf", s.handlePerf)

	// Account
	mux.HandleFunc("GET /login", s.handleLoginPage)
	mux.HandleFunc("POST /login", s.handleLogin)
	mux.HandleFunc("POST /logout", s.handleLogout)
	mux.HandleFunc("GET /signup", s.handleSignupPage)
	mux.HandleFunc("POST /signup", s.handleSignup)
	mux.HandleFunc("GET /request-access", s.handleRequestAccessPage)
	mux.HandleFunc("POST /request-access", s.handleRequestAccess)
	mux.HandleFunc("GET /forgot-password", s.handleForgotPasswordPage)
	mux.HandleFunc("POST /forgot-password", s.handleForgotPassword)
	mux.HandleFunc("GET /reset-password", s.handleResetPasswordPage)
	mux.HandleFunc("POST /reset-password", s.handleResetPassword)
	mux.HandleFunc("POST /theme", s.handleTheme)

	// Capsule and ingestion
	mux.HandleFunc("POST /actions/capsule/load", s.handleLoadCapsule)
	mux.HandleFunc("POST /actions/capsule/email", s.handleEmailCapsule)
	mux.HandleFunc("POST /actions/pipeline/run", s.handleRunPipeline)
	mux.HandleFunc("POST /actions/ingest/sample", s.handleIngestSample)
	mux.HandleFunc("POST /actions/ingest/news", s.handleIngestNews)
	mux.HandleFunc("POST /actions/stats", s.handleStats)

	// Subscriptions and reports
	mux.HandleFunc("POST /actions/subscription/change", s.handleChangeSubscription)
	mux.HandleFunc("POST /actions/subscription/send-missed", s.handleSendMissed)
	mux.HandleFunc("POST /actions/subscribers", s.handleSubscribers)
	mux.HandleFunc("POST /actions/reports/weekly", s.handleWeeklyPreview)
	mux.HandleFunc("POST /actions/reports/weekly/send", s.handleWeeklySend)

	// Mentor chat
	mux.HandleFunc("POST /actions/chat/ask", s.handleAskChat)
	mux.HandleFunc("POST /actions/chat/pyq/{id}", s.handlePyqAnswer)

	// Quiz
	mux.HandleFunc("POST /actions/quiz/load", s.handleLoadQuiz)
	mux.HandleFunc("POST /actions/quiz/submit", s.handleSubmitQuiz)
	mux.HandleFunc("POST /actions/quiz/progress", s.handleQuizProgress)

	// Study plan
	mux.HandleFunc("POST /actions/plan/schedule", s.handleGenerateSchedule)
	mux.HandleFunc("POST /actions/plan/load", s.handleLoadPlan)
	mux.HandleFunc("POST /actions/plan/recompute", s.handleRecomputePlan)

	// Admin
	mux.HandleFunc("POST /actions/admin/users", s.handleAdminUsers)
	mux.HandleFunc("POST /actions/admin/requests", s.handleAdminRequests)
	mux.HandleFunc("POST /actions/admin/{action}/{id}", s.handleAdminAction)

	return mux
}
