package view

import (
	"strconv"

	"golang.org/x/net/html"

	"civicbriefs/internal/adapters/http/perf"
	"civicbriefs/internal/application/actions"
	"civicbriefs/internal/application/toast"
	"civicbriefs/internal/domain/report"
)

// Status renders a status panel: the pretty-printed payload of the last call.
func Status(st actions.Status, container *html.Node) {
	class := "status"
	if !st.OK && st.Text != "" {
		class = "status error"
	}
	Replace(container, Wrap("pre", st.Text, "class", class))
}

// Stats renders the dashboard tiles.
func Stats(s actions.Stats, container *html.Node) {
	tile := func(id, label, value string) *html.Node {
		return Add(El("div", "class", "stat-card"),
			Wrap("div", value, "id", id, "class", "stat-value"),
			Wrap("div", label, "class", "stat-label"))
	}
	Replace(container,
		tile("news-count", "News items", strconv.Itoa(s.NewsCount)),
		tile("capsule-date", "Capsule date", s.Date),
		tile("subscriber-count", "Subscribers", s.SubscriberCount),
	)
}

// Toasts renders the request's notifications.
func Toasts(ts []toast.Toast, container *html.Node) {
	nodes := make([]*html.Node, 0, len(ts))
	for _, t := range ts {
		nodes = append(nodes, Wrap("div", t.Message, "class", "toast "+string(t.Level), "role", "status"))
	}
	Replace(container, nodes...)
}

// WeeklyReport renders the weekly highlights preview.
func WeeklyReport(w report.Weekly, container *html.Node) {
	w.Normalize()
	nodes := []*html.Node{
		Wrap("h4", "Weekly report: "+w.Period()),
		Wrap("p", "Tests recorded: "+strconv.Itoa(w.Progress.TestsRecorded.Int())+
			" | Average score: "+strconv.FormatFloat(w.Progress.AverageScore.Float(), 'f', 1, 64), "class", "muted"),
	}
	if len(w.Highlights) == 0 {
		nodes = append(nodes, placeholder("No highlights this week."))
	}
	for _, h := range w.Highlights {
		card := Add(El("div", "class", "card highlight"),
			Add(El("div"), externalLink(h.URL, h.Title), Text(" "), Wrap("span", h.Date, "class", "muted")),
			Wrap("div", h.Summary, "class", "muted summary"),
		)
		nodes = append(nodes, card)
	}
	Replace(container, nodes...)
}

// PerfSnapshot renders the timing snapshot for operators.
func PerfSnapshot(s perf.Snapshot, container *html.Node) {
	summary := Add(El("table", "class", "perf-summary"),
		Add(El("tr"), Wrap("th", "Requests"), Wrap("td", strconv.FormatInt(s.TotalRequests, 10))),
		Add(El("tr"), Wrap("th", "Request p50 / p95 (ms)"), Wrap("td", ms(s.RequestP50Ms)+" / "+ms(s.RequestP95Ms))),
		Add(El("tr"), Wrap("th", "Upstream calls"), Wrap("td", strconv.FormatInt(s.TotalUpstream, 10))),
		Add(El("tr"), Wrap("th", "Upstream p50 / p95 (ms)"), Wrap("td", ms(s.UpstreamP50Ms)+" / "+ms(s.UpstreamP95Ms))),
		Add(El("tr"), Wrap("th", "Upstream errors"), Wrap("td", strconv.Itoa(s.UpstreamErrors))),
		Add(El("tr"), Wrap("th", "Server errors"), Wrap("td", strconv.Itoa(s.RequestErrors))),
		Add(El("tr"), Wrap("th", "Storage queries"), Wrap("td", strconv.FormatInt(s.TotalStorage, 10))),
	)
	Replace(container,
		summary,
		Wrap("h4", "Slowest pages"), perfTable(s.SlowestPaths),
		Wrap("h4", "Slowest upstream calls"), perfTable(s.SlowestCalls),
		Wrap("h4", "Slowest queries"), perfTable(s.SlowestQueries),
	)
}

func ms(v float64) string {
	return strconv.FormatFloat(v, 'f', 1, 64)
}

func perfTable(stats []perf.PathStat) *html.Node {
	if len(stats) == 0 {
		return placeholder("No data yet")
	}
	body := El("tbody")
	for _, st := range stats {
		Add(body, Add(El("tr"),
			Wrap("td", st.Path),
			Wrap("td", strconv.Itoa(st.Count)),
			Wrap("td", ms(st.AvgMs)),
			Wrap("td", ms(st.MaxMs)),
		))
	}
	return Add(El("table", "class", "perf-table"),
		Add(El("thead"), Add(El("tr"), Wrap("th", "Path"), Wrap("th", "Count"), Wrap("th", "Avg ms"), Wrap("th", "Max ms"))),
		body,
	)
}
