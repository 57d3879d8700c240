package view

import (
	"fmt"
	"net/url"

	"golang.org/x/net/html"

	"civicbriefs/internal/domain/chat"
)

// PyqAnswerPath is the dashboard route that fetches the framework for PYQ id.
func PyqAnswerPath(id string) string {
	return "/actions/chat/pyq/" + url.PathEscape(id)
}

// ChatExchange renders one question and the assistant's markdown answer,
// followed by related PYQ cards each carrying a "Get answer" control.
func ChatExchange(question string, a chat.Answer, container *html.Node) {
	a.Normalize()
	nodes := []*html.Node{
		Add(El("div", "class", "chat-msg user"), Wrap("strong", "You: "), Text(question)),
		Add(El("div", "class", "chat-msg assistant"), Wrap("strong", "Assistant: "), markdownBlock(a.Response, "markdown")),
	}
	if len(a.Pyqs) > 0 {
		list := Add(El("div", "class", "chat-pyqs"), Wrap("h4", "Related PYQs"))
		for _, p := range a.Pyqs {
			card := Add(El("div", "class", "card pyq-card", "data-id", p.ID.String()),
				Wrap("div", fmt.Sprintf("(%s %s) %s", p.Year, p.Paper, p.Question)))
			if p.ID != "" {
				Add(card, postForm(PyqAnswerPath(p.ID.String()), "Get answer", "btn btn-sm"))
			}
			Add(list, card)
		}
		nodes = append(nodes, list)
	}
	Replace(container, nodes...)
}

// PyqAnswer renders the answer framework for one previous-year question.
func PyqAnswer(a chat.PyqAnswer, container *html.Node) {
	nodes := []*html.Node{
		Wrap("h4", a.Question),
		Wrap("div", fmt.Sprintf("%s %s", a.Paper, a.Year), "class", "muted"),
		markdownBlock(a.Answer, "markdown pyq-answer"),
	}
	if a.Keywords != "" {
		nodes = append(nodes, Wrap("div", "Keywords: "+a.Keywords.String(), "class", "muted-sm"))
	}
	Replace(container, nodes...)
}
