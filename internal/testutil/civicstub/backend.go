// Package civicstub is an in-process Civic Briefs backend for tests.
//
// It keeps just enough state to exercise every endpoint the dashboard calls,
// counts calls per route, and lets a test force any route to fail.
package civicstub

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Secret signs the tokens the stub issues and accepts.
var Secret = []byte("civicstub-signing-secret-0123456789")

// Seeded accounts.
const (
	AdminEmail    = "admin@example.com"
	AdminPassword = "admin-pass"
	UserEmail     = "asha@example.com"
	UserPassword  = "user-pass"
)

// Account is a stub user record.
type Account struct {
	ID         int    `json:"id"`
	FullName   string `json:"full_name"`
	Email      string `json:"email"`
	Role       string `json:"role"`
	IsActive   bool   `json:"is_active"`
	Subscribed bool   `json:"subscribed"`
	password   string
}

// Request is a stub subscription request.
type Request struct {
	ID       int    `json:"id"`
	FullName string `json:"full_name"`
	Email    string `json:"email"`
	Reason   string `json:"reason"`
	Status   string `json:"status"`
}

// Backend is a running stub server.
type Backend struct {
	srv *httptest.Server

	mu         sync.Mutex
	calls      map[string]int
	bodies     map[string][]byte
	headers    map[string]http.Header
	failures   map[string]int
	accounts   []*Account
	requests   []*Request
	pending    []map[string]any
	items      []map[string]any
	date       string
	quiz       map[string]any
	answerKey  []int
	history    []map[string]any
	plan       map[string]any
	daily      map[string]string
	weekly     map[string]string
	sessionIDs []string
	resetToken string
	nextID     int
}

// New starts a stub backend that is closed when the test ends.
func New(t testing.TB) *Backend {
	t.Helper()
	b := &Backend{
		calls:    map[string]int{},
		bodies:   map[string][]byte{},
		headers:  map[string]http.Header{},
		failures: map[string]int{},
		date:     "2026-10-19",
		daily:    map[string]string{},
		weekly:   map[string]string{},
		nextID:   100,
		accounts: []*Account{
			{ID: 1, FullName: "Admin", Email: AdminEmail, Role: "admin", IsActive: true, Subscribed: true, password: AdminPassword},
			{ID: 2, FullName: "Asha Rao", Email: UserEmail, Role: "user", IsActive: true, password: UserPassword},
		},
		requests: []*Request{
			{ID: 7, FullName: "Ravi Kumar", Email: "ravi@example.com", Reason: "Preparing for prelims", Status: "pending"},
		},
		quiz: map[string]any{
			"date": "2026-10-19",
			"name": "Daily Quiz",
			"questions": []map[string]any{
				{"q": "Which body sets the repo rate?", "context": "Monetary policy", "options": []string{"RBI", "SEBI", "NITI Aayog", "Finance Commission"}},
				{"q": "Article 21 protects which right?", "options": []string{"Equality", "Life and personal liberty", "Religion"}},
				{"q": "GST Council is chaired by?", "options": []string{"Prime Minister", "Union Finance Minister"}},
			},
		},
		answerKey: []int{0, 1, 1},
		items: []map[string]any{
			{
				"title":   "Monsoon session of Parliament concludes",
				"url":     "https://example.com/parliament",
				"source":  "PIB",
				"summary": "Parliament passed eleven bills in the monsoon session.",
				"topics":  []map[string]any{{"paper": "GS2", "topic": "Parliament", "score": 0.8345}},
				"pyqs":    []map[string]any{{"id": 11, "year": 2019, "paper": "GS2", "question": "Discuss the role of parliamentary committees."}},
			},
		},
	}
	b.daily[UserEmail] = "Asha Rao"
	b.weekly[AdminEmail] = "Admin"

	mux := http.NewServeMux()
	b.routes(mux)
	b.srv = httptest.NewServer(mux)
	t.Cleanup(b.srv.Close)
	return b
}

// URL is the backend base URL.
func (b *Backend) URL() string { return b.srv.URL }

// Token mints a credential the stub accepts.
func Token(email, role string) string {
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":   email,
		"email": email,
		"role":  role,
		"exp":   time.Now().Add(time.Hour).Unix(),
	})
	s, err := tok.SignedString(Secret)
	if err != nil {
		panic(err)
	}
	return s
}

// Calls returns how often "METHOD /path" was hit. Query strings are ignored.
func (b *Backend) Calls(route string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.calls[route]
}

// TotalCalls returns the number of requests served.
func (b *Backend) TotalCalls() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	n := 0
	for _, c := range b.calls {
		n += c
	}
	return n
}

// LastBody returns the last request body sent to route.
func (b *Backend) LastBody(route string) []byte {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.bodies[route]
}

// LastHeader returns the last request headers sent to route.
func (b *Backend) LastHeader(route string) http.Header {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.headers[route]
}

// Fail makes route answer with status until cleared with status 0.
func (b *Backend) Fail(route string, status int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if status == 0 {
		delete(b.failures, route)
		return
	}
	b.failures[route] = status
}

// ClearCapsule empties today's capsule.
func (b *Backend) ClearCapsule() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.items = nil
}

// ChatSessionIDs returns the session identifiers seen by /chat/ask, in order.
func (b *Backend) ChatSessionIDs() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.sessionIDs...)
}

// ResetToken returns the token issued by the last forgot-password call.
func (b *Backend) ResetToken() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.resetToken
}

type handler func(w http.ResponseWriter, r *http.Request, body []byte, who *Account)

func (b *Backend) handle(mux *http.ServeMux, pattern string, auth bool, admin bool, h handler) {
	route := pattern
	if i := strings.Index(route, "{"); i >= 0 {
		route = route[:i]
	}
	mux.HandleFunc(pattern, func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		key := r.Method + " " + r.URL.Path

		b.mu.Lock()
		b.calls[key]++
		b.bodies[key] = body
		b.headers[key] = r.Header.Clone()
		status, failing := b.failures[key]
		if !failing {
			status, failing = b.failures[route]
		}
		b.mu.Unlock()

		if failing {
			writeJSON(w, status, map[string]any{"detail": "forced failure"})
			return
		}
		var who *Account
		if auth {
			who = b.authenticate(r)
			if who == nil {
				writeJSON(w, http.StatusUnauthorized, map[string]any{"detail": "Not authenticated"})
				return
			}
			if admin && who.Role != "admin" && who.Role != "manager" {
				writeJSON(w, http.StatusForbidden, map[string]any{"detail": "Admin access required"})
				return
			}
		}
		b.mu.Lock()
		defer b.mu.Unlock()
		h(w, r, body, who)
	})
}

func (b *Backend) authenticate(r *http.Request) *Account {
	raw, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	if !ok {
		return nil
	}
	claims := jwt.MapClaims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) { return Secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil
	}
	email, _ := claims["email"].(string)
	b.mu.Lock()
	defer b.mu.Unlock()
	if a := b.account(email); a != nil && a.IsActive {
		return a
	}
	return nil
}

// account finds an account by email. Callers hold mu.
func (b *Backend) account(email string) *Account {
	for _, a := range b.accounts {
		if strings.EqualFold(a.Email, email) {
			return a
		}
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func message(w http.ResponseWriter, format string, args ...any) {
	writeJSON(w, http.StatusOK, map[string]any{"message": fmt.Sprintf(format, args...)})
}

func pathID(r *http.Request) (int, bool) {
	id, err := strconv.Atoi(r.PathValue("id"))
	return id, err == nil
}
