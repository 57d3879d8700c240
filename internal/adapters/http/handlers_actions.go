package web

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"golang.org/x/net/html"

	"civicbriefs/internal/adapters/civicapi"
	"civicbriefs/internal/adapters/http/view"
	"civicbriefs/internal/application/actions"
	"civicbriefs/internal/application/tabs"
	"civicbriefs/internal/domain/capsule"
	"civicbriefs/internal/domain/quiz"
	"civicbriefs/internal/domain/subscription"
)

// maxQuizQuestions bounds the posted question count before answers are scanned.
const maxQuizQuestions = 200

// timeNow is a variable for testability.
var timeNow = time.Now

// parseForm reads the posted form, answering 400 on malformed bodies.
func parseForm(w http.ResponseWriter, r *http.Request) bool {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form submission", http.StatusBadRequest)
		return false
	}
	return true
}

func setCapsule(u *update, out *actions.CapsuleOutcome) {
	if out != nil && out.Loaded {
		u.capsule = &out.Capsule
		u.set("capsule", func(n *html.Node) { view.CompactCapsule(out.Capsule, n) })
	}
}

func setStats(u *update, stats actions.Stats) {
	u.set("stats", func(n *html.Node) { view.Stats(stats, n) })
}

func setAdminLists(u *update, out actions.AdminOutcome) {
	if out.UsersLoaded {
		u.set("admin-users", func(n *html.Node) { view.Users(out.Users, n) })
	}
	if out.RequestsLoaded {
		u.set("admin-requests", func(n *html.Node) { view.Requests(out.Requests, n) })
	}
}

// --- Capsule and ingestion ---

// handleLoadCapsule handles POST /actions/capsule/load
func (s *Server) handleLoadCapsule(w http.ResponseWriter, r *http.Request) {
	out := actions.ExecuteLoadCapsule(r.Context(), s.actionDeps(r))
	u := newUpdate(tabs.Capsule)
	setCapsule(u, &out)
	s.respond(w, r, u)
}

// handleEmailCapsule handles POST /actions/capsule/email
func (s *Server) handleEmailCapsule(w http.ResponseWriter, r *http.Request) {
	st := actions.ExecuteEmailCapsule(r.Context(), s.actionDeps(r), s.cfg.EmailFrom)
	s.respond(w, r, newUpdate(tabs.Capsule).status("capsule-out", st))
}

// handleRunPipeline handles POST /actions/pipeline/run
func (s *Server) handleRunPipeline(w http.ResponseWriter, r *http.Request) {
	deps := s.actionDeps(r)
	out := actions.ExecuteRunPipeline(r.Context(), deps)
	u := newUpdate(tabs.Utilities).status("util-out", out.Status)
	setCapsule(u, out.Capsule)
	if u.capsule != nil {
		setStats(u, actions.StatsFor(r.Context(), deps, *u.capsule))
	}
	s.respond(w, r, u)
}

// handleIngestSample handles POST /actions/ingest/sample
func (s *Server) handleIngestSample(w http.ResponseWriter, r *http.Request) {
	deps := s.actionDeps(r)
	st := actions.ExecuteIngestSample(r.Context(), deps, timeNow())
	u := newUpdate(tabs.Utilities).status("util-out", st)
	if st.OK {
		setStats(u, actions.ExecuteDashboardStats(r.Context(), deps))
	}
	s.respond(w, r, u)
}

// handleIngestNews handles POST /actions/ingest/news
func (s *Server) handleIngestNews(w http.ResponseWriter, r *http.Request) {
	if !parseForm(w, r) {
		return
	}
	item := capsule.NewsIn{
		Source:      r.FormValue("source"),
		Title:       r.FormValue("title"),
		URL:         r.FormValue("url"),
		PublishedAt: r.FormValue("published_at"),
		Content:     r.FormValue("content"),
	}
	deps := s.actionDeps(r)
	st := actions.ExecuteIngestNews(r.Context(), deps, item)
	u := newUpdate(tabs.Utilities).status("util-out", st)
	if st.OK {
		setStats(u, actions.ExecuteDashboardStats(r.Context(), deps))
	}
	s.respond(w, r, u)
}

// handleStats handles POST /actions/stats
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	u := newUpdate(r.FormValue("tab"))
	setStats(u, actions.ExecuteDashboardStats(r.Context(), s.actionDeps(r)))
	s.respond(w, r, u)
}

// --- Subscriptions and reports ---

// handleChangeSubscription handles POST /actions/subscription/change
// Form: email, channel (daily|weekly), op (subscribe|unsubscribe).
func (s *Server) handleChangeSubscription(w http.ResponseWriter, r *http.Request) {
	if !parseForm(w, r) {
		return
	}
	change := subscription.Change{
		Email:       r.FormValue("email"),
		Channel:     r.FormValue("channel"),
		Unsubscribe: r.FormValue("op") == "unsubscribe",
	}
	st := actions.ExecuteChangeSubscription(r.Context(), s.actionDeps(r), change)
	s.respond(w, r, newUpdate(tabs.Subscriptions).status("subs-out", st))
}

// handleSendMissed handles POST /actions/subscription/send-missed
func (s *Server) handleSendMissed(w http.ResponseWriter, r *http.Request) {
	if !parseForm(w, r) {
		return
	}
	days := subscription.DefaultMissedDays
	if raw := strings.TrimSpace(r.FormValue("days")); raw != "" {
		// Unparseable input becomes 0 and fails range validation.
		days, _ = strconv.Atoi(raw)
	}
	st := actions.ExecuteSendMissed(r.Context(), s.actionDeps(r), r.FormValue("email"), days)
	s.respond(w, r, newUpdate(tabs.Subscriptions).status("subs-out", st))
}

// handleSubscribers handles POST /actions/subscribers
func (s *Server) handleSubscribers(w http.ResponseWriter, r *http.Request) {
	rows := actions.ExecuteSubscribersTable(r.Context(), s.actionDeps(r))
	s.respond(w, r, newUpdate(tabs.Subscriptions).set("subs-table", func(n *html.Node) { view.Subscribers(rows, n) }))
}

// handleWeeklyPreview handles POST /actions/reports/weekly
func (s *Server) handleWeeklyPreview(w http.ResponseWriter, r *http.Request) {
	out := actions.ExecuteWeeklyPreview(r.Context(), s.actionDeps(r))
	u := newUpdate(tabs.Subscriptions)
	if out.Loaded {
		u.set("weekly-out", func(n *html.Node) { view.WeeklyReport(out.Report, n) })
	} else {
		u.status("weekly-out", out.Status)
	}
	s.respond(w, r, u)
}

// handleWeeklySend handles POST /actions/reports/weekly/send
func (s *Server) handleWeeklySend(w http.ResponseWriter, r *http.Request) {
	st := actions.ExecuteWeeklySend(r.Context(), s.actionDeps(r))
	s.respond(w, r, newUpdate(tabs.Subscriptions).status("weekly-out", st))
}

// --- Mentor chat ---

// handleAskChat handles POST /actions/chat/ask
func (s *Server) handleAskChat(w http.ResponseWriter, r *http.Request) {
	if !parseForm(w, r) {
		return
	}
	out := actions.ExecuteAskChat(r.Context(), s.actionDeps(r), r.FormValue("question"))
	u := newUpdate(tabs.Chat)
	switch {
	case !out.Sent:
	case out.Status.OK:
		u.set("chat-out", func(n *html.Node) { view.ChatExchange(out.Question, out.Answer, n) })
	default:
		u.status("chat-out", out.Status)
	}
	s.respond(w, r, u)
}

// handlePyqAnswer handles POST /actions/chat/pyq/{id}
func (s *Server) handlePyqAnswer(w http.ResponseWriter, r *http.Request) {
	out := actions.ExecutePyqAnswer(r.Context(), s.actionDeps(r), r.PathValue("id"))
	u := newUpdate(tabs.Chat)
	if out.Loaded {
		u.set("pyq-out", func(n *html.Node) { view.PyqAnswer(out.Answer, n) })
	} else {
		u.status("pyq-out", out.Status)
	}
	s.respond(w, r, u)
}

// --- Quiz ---

// handleLoadQuiz handles POST /actions/quiz/load
func (s *Server) handleLoadQuiz(w http.ResponseWriter, r *http.Request) {
	out := actions.ExecuteLoadQuiz(r.Context(), s.actionDeps(r))
	u := newUpdate(tabs.Quiz)
	if out.Loaded {
		q := out.Quiz
		u.set("quiz-container", func(n *html.Node) { view.Quiz(&q, n) })
		u.set("quiz-review", func(n *html.Node) { view.Replace(n) })
	} else {
		u.status("quiz-out", out.Status)
	}
	s.respond(w, r, u)
}

// handleSubmitQuiz handles POST /actions/quiz/submit
// The answers are read position by position from the q0..q{n-1} radio groups.
func (s *Server) handleSubmitQuiz(w http.ResponseWriter, r *http.Request) {
	if !parseForm(w, r) {
		return
	}
	// No rendered quiz means no cards, so zero answers.
	count := 0
	if raw := r.FormValue(view.FieldQuestionCount); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 || n > maxQuizQuestions {
			http.Error(w, "Invalid question count", http.StatusBadRequest)
			return
		}
		count = n
	}
	sub := quiz.NewSubmission(r.FormValue(view.FieldQuizName), count, func(i int) (int, bool) {
		v, err := strconv.Atoi(r.FormValue(view.QuestionField(i)))
		return v, err == nil
	})
	out := actions.ExecuteSubmitQuiz(r.Context(), s.actionDeps(r), sub, count)
	u := newUpdate(tabs.Quiz)
	if out.Sent {
		u.status("quiz-out", out.Status)
		u.set("quiz-review", func(n *html.Node) { view.QuizReview(out.Result, n) })
	}
	s.respond(w, r, u)
}

// handleQuizProgress handles POST /actions/quiz/progress
func (s *Server) handleQuizProgress(w http.ResponseWriter, r *http.Request) {
	out := actions.ExecuteQuizProgress(r.Context(), s.actionDeps(r))
	u := newUpdate(tabs.Quiz)
	if out.Sent {
		u.status("quiz-out", out.Status)
		u.set("quiz-chart", func(n *html.Node) {
			view.Chart(out.History, view.ChartWidth, view.ChartHeight, n)
		})
	}
	s.respond(w, r, u)
}

// --- Study plan ---

func setPlan(u *update, out actions.PlanOutcome) {
	if out.Status.OK {
		u.set("plan", func(n *html.Node) { view.Plan(out.Envelope, n) })
		return
	}
	u.status("plan-out", out.Status)
}

// handleGenerateSchedule handles POST /actions/plan/schedule
func (s *Server) handleGenerateSchedule(w http.ResponseWriter, r *http.Request) {
	st := actions.ExecuteGenerateSchedule(r.Context(), s.actionDeps(r))
	s.respond(w, r, newUpdate(tabs.Plan).status("plan-out", st))
}

// handleLoadPlan handles POST /actions/plan/load
func (s *Server) handleLoadPlan(w http.ResponseWriter, r *http.Request) {
	u := newUpdate(tabs.Plan)
	setPlan(u, actions.ExecuteLoadPlan(r.Context(), s.actionDeps(r)))
	s.respond(w, r, u)
}

// handleRecomputePlan handles POST /actions/plan/recompute
func (s *Server) handleRecomputePlan(w http.ResponseWriter, r *http.Request) {
	u := newUpdate(tabs.Plan)
	setPlan(u, actions.ExecuteRecomputePlan(r.Context(), s.actionDeps(r)))
	s.respond(w, r, u)
}

// --- Admin ---

// handleAdminUsers handles POST /actions/admin/users
func (s *Server) handleAdminUsers(w http.ResponseWriter, r *http.Request) {
	u := newUpdate(tabs.Admin)
	setAdminLists(u, actions.ExecuteListUsers(r.Context(), s.actionDeps(r)))
	s.respond(w, r, u)
}

// handleAdminRequests handles POST /actions/admin/requests
func (s *Server) handleAdminRequests(w http.ResponseWriter, r *http.Request) {
	u := newUpdate(tabs.Admin)
	setAdminLists(u, actions.ExecuteListRequests(r.Context(), s.actionDeps(r)))
	s.respond(w, r, u)
}

// handleAdminAction handles POST /actions/admin/{action}/{id}
// The backend enforces the role; the dashboard only hides the panel.
func (s *Server) handleAdminAction(w http.ResponseWriter, r *http.Request) {
	action := civicapi.AdminAction(r.PathValue("action"))
	out := actions.ExecuteAdminAction(r.Context(), s.actionDeps(r), action, r.PathValue("id"))
	u := newUpdate(tabs.Admin)
	setAdminLists(u, out)
	s.respond(w, r, u)
}
