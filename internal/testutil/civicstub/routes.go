package civicstub

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"
)

func (b *Backend) routes(mux *http.ServeMux) {
	b.handle(mux, "GET /capsule/daily", false, false, b.capsule)
	b.handle(mux, "POST /pipeline/run", true, true, b.runPipeline)
	b.handle(mux, "POST /ingest/news", false, false, b.ingest)

	for _, verb := range []string{"subscribe", "unsubscribe", "subscribe-weekly", "unsubscribe-weekly"} {
		b.handle(mux, "POST /subscription/"+verb+"/{email}", false, false, b.subscription(verb))
	}
	b.handle(mux, "GET /subscription/subscribers", false, false, b.subscribers(false))
	b.handle(mux, "GET /subscription/weekly-subscribers", false, false, b.subscribers(true))
	b.handle(mux, "POST /subscription/send-missed/{email}", false, false, b.sendMissed)
	b.handle(mux, "GET /reports/weekly", false, false, b.weeklyReport)
	b.handle(mux, "POST /reports/weekly/send", true, true, b.weeklySend)

	b.handle(mux, "POST /chat/ask", false, false, b.ask)
	b.handle(mux, "GET /chat/pyq/{id}", false, false, b.pyq)

	b.handle(mux, "POST /tests/generate/daily", false, false, func(w http.ResponseWriter, _ *http.Request, _ []byte, _ *Account) {
		message(w, "Quiz generated")
	})
	b.handle(mux, "GET /tests/today", false, false, func(w http.ResponseWriter, _ *http.Request, _ []byte, _ *Account) {
		writeJSON(w, http.StatusOK, b.quiz)
	})
	b.handle(mux, "POST /tests/submit", true, false, b.submit)
	b.handle(mux, "GET /tests/progress", true, false, b.progress)
	b.handle(mux, "GET /tests/history", true, false, func(w http.ResponseWriter, _ *http.Request, _ []byte, _ *Account) {
		writeJSON(w, http.StatusOK, append([]map[string]any{}, b.history...))
	})

	b.handle(mux, "POST /schedule/generate", false, false, func(w http.ResponseWriter, _ *http.Request, _ []byte, _ *Account) {
		message(w, "Schedule generated")
	})
	b.handle(mux, "GET /plan/me", false, false, b.myPlan)
	b.handle(mux, "POST /plan/recompute", false, false, b.recompute)

	b.handle(mux, "GET /users/me", true, false, func(w http.ResponseWriter, _ *http.Request, _ []byte, who *Account) {
		writeJSON(w, http.StatusOK, map[string]any{"id": who.ID, "email": who.Email, "full_name": who.FullName, "role": who.Role})
	})
	b.handle(mux, "POST /auth/login", false, false, b.login)
	b.handle(mux, "POST /users/signup", false, false, b.signup)
	b.handle(mux, "POST /auth/request-subscription", false, false, b.requestSubscription)
	b.handle(mux, "POST /auth/forgot-password", false, false, b.forgotPassword)
	b.handle(mux, "POST /auth/reset-password", false, false, b.resetPassword)

	b.handle(mux, "GET /admin/users", true, true, func(w http.ResponseWriter, _ *http.Request, _ []byte, _ *Account) {
		writeJSON(w, http.StatusOK, b.accounts)
	})
	b.handle(mux, "GET /admin/subscription-requests", true, true, b.pendingRequests)
	b.handle(mux, "POST /admin/approve-subscription/{id}", true, true, b.decide("approved"))
	b.handle(mux, "POST /admin/reject-subscription/{id}", true, true, b.decide("rejected"))
	b.handle(mux, "POST /admin/toggle-subscription/{id}", true, true, b.toggle)
	b.handle(mux, "POST /admin/deactivate-user/{id}", true, true, b.deactivate)
}

func (b *Backend) capsule(w http.ResponseWriter, _ *http.Request, _ []byte, _ *Account) {
	items := b.items
	if items == nil {
		items = []map[string]any{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"date": b.date, "items": items})
}

func (b *Backend) ingest(w http.ResponseWriter, _ *http.Request, body []byte, _ *Account) {
	var news []map[string]any
	if err := json.Unmarshal(body, &news); err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{"detail": "expected a list of news items"})
		return
	}
	b.pending = append(b.pending, news...)
	writeJSON(w, http.StatusOK, map[string]any{"inserted": len(news)})
}

func (b *Backend) runPipeline(w http.ResponseWriter, _ *http.Request, _ []byte, _ *Account) {
	n := len(b.pending)
	for _, p := range b.pending {
		b.items = append(b.items, map[string]any{
			"title":   p["title"],
			"url":     p["url"],
			"source":  p["source"],
			"summary": p["content"],
			"topics":  []map[string]any{{"paper": "GS3", "topic": "Economy", "score": 0.9}},
			"pyqs":    []map[string]any{},
		})
	}
	b.pending = nil
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Pipeline completed", "news_items": n, "capsule_items": len(b.items),
		"emails_sent": len(b.daily), "emails_failed": 0,
	})
}

func (b *Backend) subscription(verb string) handler {
	return func(w http.ResponseWriter, r *http.Request, _ []byte, _ *Account) {
		email := r.PathValue("email")
		list := b.daily
		if verb == "subscribe-weekly" || verb == "unsubscribe-weekly" {
			list = b.weekly
		}
		if verb == "subscribe" || verb == "subscribe-weekly" {
			list[email] = ""
			message(w, "Subscribed %s", email)
			return
		}
		delete(list, email)
		message(w, "Unsubscribed %s", email)
	}
}

func (b *Backend) subscribers(weekly bool) handler {
	return func(w http.ResponseWriter, _ *http.Request, _ []byte, _ *Account) {
		list := b.daily
		if weekly {
			list = b.weekly
		}
		subs := []map[string]string{}
		for email, name := range list {
			subs = append(subs, map[string]string{"email": email, "name": name})
		}
		writeJSON(w, http.StatusOK, map[string]any{"subscribers": subs})
	}
}

func (b *Backend) sendMissed(w http.ResponseWriter, r *http.Request, _ []byte, _ *Account) {
	days, err := strconv.Atoi(r.URL.Query().Get("days"))
	if err != nil || days < 1 {
		writeJSON(w, http.StatusBadRequest, map[string]any{"detail": "days must be positive"})
		return
	}
	message(w, "Sent %d missed capsules to %s", days, r.PathValue("email"))
}

func (b *Backend) weeklyReport(w http.ResponseWriter, _ *http.Request, _ []byte, _ *Account) {
	highlights := []map[string]any{}
	for _, it := range b.items {
		highlights = append(highlights, map[string]any{
			"date": b.date, "title": it["title"], "url": it["url"], "summary": it["summary"],
			"topics": it["topics"], "pyqs": it["pyqs"],
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"week_start": "2026-10-13", "week_end": b.date, "highlights": highlights,
		"progress": map[string]any{"tests_recorded": len(b.history), "average_score": b.average()},
	})
}

func (b *Backend) weeklySend(w http.ResponseWriter, _ *http.Request, _ []byte, _ *Account) {
	writeJSON(w, http.StatusOK, map[string]any{"recipients": len(b.weekly), "sent": len(b.weekly), "failed": 0})
}

func (b *Backend) ask(w http.ResponseWriter, _ *http.Request, body []byte, _ *Account) {
	var req struct {
		Question  string `json:"question"`
		SessionID string `json:"session_id"`
	}
	_ = json.Unmarshal(body, &req)
	b.sessionIDs = append(b.sessionIDs, req.SessionID)
	writeJSON(w, http.StatusOK, map[string]any{
		"response": fmt.Sprintf("**Answer** to: %s\n\n- point one\n- point two", req.Question),
		"pyqs":     []map[string]any{{"id": 11, "year": 2019, "paper": "GS2", "question": "Discuss the role of parliamentary committees."}},
	})
}

func (b *Backend) pyq(w http.ResponseWriter, r *http.Request, _ []byte, _ *Account) {
	id := r.PathValue("id")
	if id != "11" {
		writeJSON(w, http.StatusNotFound, map[string]any{"detail": "PYQ not found"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"question_id": 11, "question": "Discuss the role of parliamentary committees.",
		"paper": "GS2", "year": 2019, "answer": "## Introduction\n\nCommittees scrutinise bills.", "keywords": "committees, scrutiny",
	})
}

func (b *Backend) submit(w http.ResponseWriter, _ *http.Request, body []byte, _ *Account) {
	var sub struct {
		Name    string `json:"name"`
		Answers []int  `json:"answers"`
	}
	if err := json.Unmarshal(body, &sub); err != nil || len(sub.Answers) != len(b.answerKey) {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{"detail": "answers do not match the quiz"})
		return
	}
	correct := 0
	review := []map[string]any{}
	for i, a := range sub.Answers {
		ok := a == b.answerKey[i]
		if ok {
			correct++
		}
		review = append(review, map[string]any{"index": i, "chosen": a, "correct": b.answerKey[i], "ok": ok})
	}
	score := float64(correct) * 100 / float64(len(b.answerKey))
	b.history = append(b.history, map[string]any{"date": b.date, "score": score, "test_name": sub.Name})
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true, "score": fmt.Sprintf("%.1f", score), "total": len(b.answerKey), "correct": correct, "review": review,
	})
}

func (b *Backend) average() float64 {
	if len(b.history) == 0 {
		return 0
	}
	sum := 0.0
	for _, h := range b.history {
		sum += h["score"].(float64)
	}
	return sum / float64(len(b.history))
}

func (b *Backend) progress(w http.ResponseWriter, _ *http.Request, _ []byte, _ *Account) {
	writeJSON(w, http.StatusOK, map[string]any{"tests": len(b.history), "average": b.average()})
}

func (b *Backend) myPlan(w http.ResponseWriter, _ *http.Request, _ []byte, _ *Account) {
	if b.plan == nil {
		writeJSON(w, http.StatusOK, map[string]any{"message": "No plan yet", "plan": nil})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"plan": b.plan})
}

func (b *Backend) recompute(w http.ResponseWriter, _ *http.Request, _ []byte, _ *Account) {
	b.plan = map[string]any{
		"weeks": []map[string]any{
			{"week": 1, "hours": 12, "tasks": []string{"Polity: Parliament", "Economy: Monetary policy"}},
			{"week": 2, "hours": 14, "tasks": []string{"Revise weak topics"}},
		},
		"feedback_summary": map[string]any{
			"tests_considered": len(b.history), "average_score": b.average(), "weak_topics": []string{"Economy", "Polity"},
		},
	}
	writeJSON(w, http.StatusOK, map[string]any{"message": "Plan recomputed", "plan": b.plan})
}

func (b *Backend) login(w http.ResponseWriter, _ *http.Request, body []byte, _ *Account) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	_ = json.Unmarshal(body, &req)
	a := b.account(req.Email)
	if a == nil || a.password != req.Password || !a.IsActive {
		writeJSON(w, http.StatusUnauthorized, map[string]any{"detail": "Invalid credentials"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"access_token": Token(a.Email, a.Role), "token_type": "bearer", "role": a.Role})
}

func (b *Backend) signup(w http.ResponseWriter, _ *http.Request, body []byte, _ *Account) {
	var req struct {
		Email    string `json:"email"`
		FullName string `json:"full_name"`
		Password string `json:"password"`
	}
	_ = json.Unmarshal(body, &req)
	if b.account(req.Email) != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"detail": "Email already registered"})
		return
	}
	b.nextID++
	a := &Account{ID: b.nextID, FullName: req.FullName, Email: req.Email, Role: "user", IsActive: true, password: req.Password}
	b.accounts = append(b.accounts, a)
	writeJSON(w, http.StatusOK, map[string]any{"id": a.ID, "email": a.Email, "full_name": a.FullName, "role": a.Role})
}

func (b *Backend) requestSubscription(w http.ResponseWriter, _ *http.Request, body []byte, _ *Account) {
	var req Request
	_ = json.Unmarshal(body, &req)
	b.nextID++
	req.ID = b.nextID
	req.Status = "pending"
	b.requests = append(b.requests, &req)
	message(w, "Subscription request submitted")
}

func (b *Backend) forgotPassword(w http.ResponseWriter, _ *http.Request, _ []byte, _ *Account) {
	b.resetToken = strconv.FormatInt(time.Now().UnixNano(), 36)
	message(w, "If the email exists, a reset link has been sent")
}

func (b *Backend) resetPassword(w http.ResponseWriter, _ *http.Request, body []byte, _ *Account) {
	var req struct {
		Token string `json:"token"`
	}
	_ = json.Unmarshal(body, &req)
	if req.Token == "" || req.Token != b.resetToken {
		writeJSON(w, http.StatusBadRequest, map[string]any{"detail": "Invalid or expired token"})
		return
	}
	b.resetToken = ""
	message(w, "Password updated")
}

func (b *Backend) pendingRequests(w http.ResponseWriter, _ *http.Request, _ []byte, _ *Account) {
	out := []*Request{}
	for _, r := range b.requests {
		if r.Status == "pending" {
			out = append(out, r)
		}
	}
	writeJSON(w, http.StatusOK, out)
}

func (b *Backend) decide(status string) handler {
	return func(w http.ResponseWriter, r *http.Request, _ []byte, _ *Account) {
		id, ok := pathID(r)
		for _, req := range b.requests {
			if ok && req.ID == id && req.Status == "pending" {
				req.Status = status
				message(w, "Request %s", status)
				return
			}
		}
		writeJSON(w, http.StatusNotFound, map[string]any{"detail": "Request not found"})
	}
}

func (b *Backend) toggle(w http.ResponseWriter, r *http.Request, _ []byte, _ *Account) {
	id, ok := pathID(r)
	for _, a := range b.accounts {
		if ok && a.ID == id {
			a.Subscribed = !a.Subscribed
			message(w, "Subscription toggled")
			return
		}
	}
	writeJSON(w, http.StatusNotFound, map[string]any{"detail": "User not found"})
}

func (b *Backend) deactivate(w http.ResponseWriter, r *http.Request, _ []byte, _ *Account) {
	id, ok := pathID(r)
	for _, a := range b.accounts {
		if ok && a.ID == id {
			a.IsActive = false
			message(w, "User deactivated")
			return
		}
	}
	writeJSON(w, http.StatusNotFound, map[string]any{"detail": "User not found"})
}
