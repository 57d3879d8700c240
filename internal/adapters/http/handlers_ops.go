package web

import (
	"html/template"
	"net/http"
	"strconv"
	"time"

	"golang.org/x/net/html"

	"civicbriefs/internal/adapters/http/view"
	"civicbriefs/internal/application/actions"
)

// perfWindows are the selectable snapshot windows on the perf page.
var perfWindows = map[string]time.Duration{
	"5m":  5 * time.Minute,
	"1h":  time.Hour,
	"24h": 24 * time.Hour,
}

// perfPage is the template data for perf.html.
type perfPage struct {
	Window   string
	Windows  []string
	Snapshot template.HTML
}

// handlePerf handles GET /ops/perf for privileged viewers.
func (s *Server) handlePerf(w http.ResponseWriter, r *http.Request) {
	viewer := actions.ExecuteValidateSession(r.Context(), s.actionDeps(r))
	if !viewer.Authenticated {
		http.Redirect(w, r, "/login?next=/ops/perf", http.StatusSeeOther)
		return
	}
	if !viewer.Privileged {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}
	if s.deps.Collector == nil {
		http.NotFound(w, r)
		return
	}

	window := r.URL.Query().Get("window")
	d, ok := perfWindows[window]
	if !ok {
		window, d = "1h", time.Hour
	}
	topN := 10
	if n, err := strconv.Atoi(r.URL.Query().Get("top")); err == nil && n > 0 && n <= 50 {
		topN = n
	}
	snap := s.deps.Collector.Snapshot(timeNow().Add(-d), topN)
	s.renderTemplate(w, r, "perf.html", chrome{Viewer: viewer, Title: "Performance"}, perfPage{
		Window:   window,
		Windows:  []string{"5m", "1h", "24h"},
		Snapshot: s.renderNodes(r, "perf", func(n *html.Node) { view.PerfSnapshot(snap, n) }),
	})
}
