package view

import (
	"golang.org/x/net/html"

	"civicbriefs/internal/domain/subscription"
)

// Subscribers renders the joined daily and weekly subscriber rows as a table.
func Subscribers(rows []subscription.Row, container *html.Node) {
	body := El("tbody")
	for _, r := range rows {
		Add(body, Add(El("tr", "class", "sub-row"),
			Wrap("td", r.Email),
			Wrap("td", r.Name),
			Wrap("td", r.Channel),
		))
	}
	table := Add(El("table", "class", "subs-table"),
		Add(El("thead"), Add(El("tr"), Wrap("th", "Email"), Wrap("th", "Name"), Wrap("th", "Type"))),
		body,
	)
	Replace(container, table)
}
