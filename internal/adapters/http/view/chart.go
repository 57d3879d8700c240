package view

import (
	"math"
	"strconv"

	"golang.org/x/net/html"

	"civicbriefs/internal/domain/quiz"
)

// Default chart size, matching the dashboard canvas.
const (
	ChartWidth  = 420
	ChartHeight = 180
)

// Chart geometry.
const (
	chartLeft   = 30
	chartTop    = 10
	chartBottom = 30 // distance from the bottom edge to the x axis
	chartRight  = 10
	barGap      = 4
	minBarWidth = 6
)

// BarWidth is the width of each bar for n entries on a chart w wide.
// PRE: w > 0
func BarWidth(w, n int) int {
	if n < 1 {
		n = 1
	}
	return max(minBarWidth, (w-50)/n-barGap)
}

// BarTop is the y coordinate of the top of a bar for score on a chart h high.
// The score is clamped to [0, 100].
func BarTop(h int, score float64) int {
	s := quiz.ClampScore(score)
	return (h - chartBottom) - int(math.Round(s/100*float64(h-50)))
}

func itoa(n int) string { return strconv.Itoa(n) }

// Chart renders the score history as an SVG bar chart of size w by h.
// POST: one rect.bar per entry; axes, 0/50/100 gridlines and labels are always drawn
func Chart(history []quiz.HistoryEntry, w, h int, container *html.Node) {
	base := h - chartBottom
	svg := svgEl("svg",
		"xmlns", "http://www.w3.org/2000/svg",
		"width", itoa(w), "height", itoa(h),
		"viewBox", "0 0 "+itoa(w)+" "+itoa(h),
		"role", "img", "aria-label", "Quiz score history",
		"class", "quiz-chart",
	)

	for _, v := range []int{0, 50, 100} {
		y := BarTop(h, float64(v))
		Add(svg,
			svgEl("line", "class", "grid", "x1", itoa(chartLeft), "y1", itoa(y), "x2", itoa(w-chartRight), "y2", itoa(y), "stroke", "#eee"),
			Add(svgEl("text", "class", "tick", "x", "4", "y", itoa(y+4), "fill", "#444", "font-size", "12"), Text(itoa(v))),
		)
	}

	Add(svg, svgEl("polyline", "class", "axes", "fill", "none", "stroke", "#888",
		"points", itoa(chartLeft)+","+itoa(chartTop)+" "+itoa(chartLeft)+","+itoa(base)+" "+itoa(w-chartRight)+","+itoa(base)))
	Add(svg,
		Add(svgEl("text", "class", "label", "x", "4", "y", "12", "fill", "#666", "font-size", "12"), Text("Score")),
		Add(svgEl("text", "class", "label", "x", itoa(w-60), "y", itoa(h-10), "fill", "#666", "font-size", "12"), Text("Tests")),
	)

	bw := BarWidth(w, len(history))
	for i, entry := range history {
		x := 32 + i*(bw+barGap)
		y := BarTop(h, entry.Score.Float())
		bar := svgEl("rect", "class", "bar",
			"x", itoa(x), "y", itoa(y), "width", itoa(bw), "height", itoa(base-y), "fill", "#3b82f6")
		title := entry.TestName
		if entry.Date != "" {
			title += " " + entry.Date
		}
		Add(bar, Add(svgEl("title"), Text(title+": "+strconv.FormatFloat(quiz.ClampScore(entry.Score.Float()), 'f', -1, 64))))
		Add(svg, bar)
	}
	Replace(container, svg)
}
