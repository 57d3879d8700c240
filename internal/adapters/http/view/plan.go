package view

import (
	"fmt"

	"golang.org/x/net/html"

	"civicbriefs/internal/domain/plan"
)

// Plan renders the feedback summary and one card per week.
// POST: a nil plan yields only the empty message
func Plan(env plan.Envelope, container *html.Node) {
	if env.Plan == nil {
		Replace(container, Wrap("div", plan.EmptyMessage, "class", "plan-summary no-data"))
		return
	}
	p := *env.Plan
	p.Normalize()
	nodes := []*html.Node{Wrap("div", p.Summary(), "class", "plan-summary")}
	for _, w := range p.Weeks {
		tasks := El("ul")
		for _, t := range w.Tasks {
			Add(tasks, Wrap("li", t))
		}
		nodes = append(nodes, Add(El("div", "class", "card week-card"),
			Add(El("div"), Wrap("strong", fmt.Sprintf("Week %s", w.Week)), Text(fmt.Sprintf(" — Hours: %s", w.Hours))),
			tasks,
		))
	}
	Replace(container, nodes...)
}
