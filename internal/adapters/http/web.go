package web

import (
	"errors"
	"net/http"
	"time"

	"civicbriefs/internal/adapters/email"
	"civicbriefs/internal/adapters/http/middleware"
	"civicbriefs/internal/adapters/http/perf"
	"civicbriefs/internal/adapters/http/view"
	"civicbriefs/internal/adapters/storage/profile"
	"civicbriefs/internal/application/actions"
	"civicbriefs/internal/application/session"
	"civicbriefs/internal/application/tabs"
)

// Config holds the settings NewServer reads.
type Config struct {
	Strategy       tabs.Strategy
	CSRFKey        []byte // 32 bytes
	Secure         bool   // production: Secure cookies, no plaintext CSRF exemption
	TrustedOrigins []string
	RateLimit      int // requests per second per IP; 0 disables limiting
	SlowRequestMs  int
	EmailFrom      string
}

// Deps holds the collaborators shared by every request.
type Deps struct {
	API       actions.API
	Profiles  profile.Store
	Collector *perf.Collector
	Mailer    email.Sender
}

// Server is the dashboard: routes, middleware and the collaborators behind them.
type Server struct {
	cfg     Config
	deps    Deps
	limiter *middleware.RateLimiter
	handler http.Handler
}

// ErrCSRFKey is returned when the CSRF key is not 32 bytes.
var ErrCSRFKey = errors.New("csrf key must be 32 bytes")

// NewServer wires HTTP handlers for the dashboard.
// PRE: deps.API and deps.Profiles are non-nil
// POST: Handler serves every dashboard route behind the full middleware chain
func NewServer(cfg Config, deps Deps) (*Server, error) {
	if len(cfg.CSRFKey) != 32 {
		return nil, ErrCSRFKey
	}
	if cfg.Strategy == "" {
		cfg.Strategy = tabs.StrategyTabs
	}
	if deps.Mailer == nil {
		deps.Mailer = email.NewNoopSender()
	}
	s := &Server{cfg: cfg, deps: deps}

	var recorder perf.Recorder
	if deps.Collector != nil {
		recorder = deps.Collector
	}

	// Chain wraps in order, so the last listed runs first:
	// Timing -> RateLimit -> Toasts -> Profile -> CSRF -> SecurityHeaders -> Mux
	chain := []func(http.Handler) http.Handler{
		middleware.SecurityHeaders,
		middleware.CSRF(cfg.CSRFKey, cfg.Secure, cfg.TrustedOrigins...),
		middleware.Profile(deps.Profiles, cfg.Secure),
		middleware.Toasts,
	}
	if cfg.RateLimit > 0 {
		s.limiter = middleware.NewRateLimiter(cfg.RateLimit, time.Second)
		chain = append(chain, middleware.RateLimit(s.limiter))
	}
	chain = append(chain, middleware.Timing(recorder, cfg.SlowRequestMs))
	s.handler = middleware.Chain(s.routes(), chain...)
	return s, nil
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

// Close stops background work owned by the server.
func (s *Server) Close() {
	if s.limiter != nil {
		s.limiter.Stop()
	}
}

// actionDeps binds the shared collaborators to the request's profile.
func (s *Server) actionDeps(r *http.Request) actions.Deps {
	id, _ := middleware.ProfileIDFromContext(r.Context())
	return actions.Deps{
		API:                s.deps.API,
		Session:            session.New(s.deps.Profiles, id),
		Mailer:             s.deps.Mailer,
		RenderCapsuleEmail: view.CapsuleEmail,
	}
}
