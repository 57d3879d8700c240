package view

import (
	"fmt"
	"net/url"
	"strings"

	"golang.org/x/net/html"

	"civicbriefs/internal/domain/capsule"
)

// Empty-capsule messages for the two renderings.
const (
	CompactEmptyMessage = "No items found. Run pipeline or add sample news."
	RichEmptyMessage    = "No news items available for today."
	NoSummary           = "No summary available"
)

// safeHref passes http(s) links through and neutralises everything else.
func safeHref(raw string) string {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return "#"
	}
	return u.String()
}

func externalLink(href, label string, attrs ...string) *html.Node {
	a := El("a", append([]string{"href", safeHref(href), "target", "_blank", "rel", "noopener noreferrer"}, attrs...)...)
	return Add(a, Text(label))
}

func topics(item capsule.Item) []capsule.Topic {
	if len(item.Topics) > capsule.MaxTopicTags {
		return item.Topics[:capsule.MaxTopicTags]
	}
	return item.Topics
}

func pyqs(item capsule.Item, limit int) []capsule.Pyq {
	if len(item.Pyqs) > limit {
		return item.Pyqs[:limit]
	}
	return item.Pyqs
}

// CompactCapsule renders the dashboard card list.
// POST: an empty capsule yields exactly one no-data element and no cards
func CompactCapsule(c capsule.Capsule, container *html.Node) {
	if c.IsEmpty() {
		Replace(container, placeholder(CompactEmptyMessage))
		return
	}
	cards := make([]*html.Node, 0, len(c.Items))
	for _, it := range c.Items {
		head := Add(El("div"),
			Add(El("a", "href", safeHref(it.URL), "target", "_blank", "rel", "noopener noreferrer"), Wrap("strong", it.Title)),
			Text(" "),
			Wrap("span", it.Source, "class", "muted"),
		)
		chips := El("div", "class", "chips")
		for _, t := range topics(it) {
			Add(chips, Wrap("span", t.TagLabel()+" ("+capsule.FormatScore(t.Score.Float())+")",
				"class", "chip", "title", "score: "+capsule.FormatScore(t.Score.Float())))
		}
		related := El("div", "class", "pyqs")
		for _, p := range pyqs(it, capsule.CompactPyqLimit) {
			Add(related, Wrap("div", fmt.Sprintf("(%s %s) %s", p.Year, p.Paper, p.Question), "class", "muted pyq"))
		}
		cards = append(cards, Add(El("div", "class", "card news-card"),
			head,
			Wrap("div", capsule.Truncate(it.Summary, capsule.CompactSummaryLimit), "class", "muted summary"),
			chips,
			related,
		))
	}
	Replace(container, cards...)
}

// RichCapsule renders the full capsule with a header, used on the capsule
// panel in page navigation and in the capsule email.
// POST: an empty capsule yields exactly one no-data element and no cards
func RichCapsule(c capsule.Capsule, container *html.Node) {
	if c.IsEmpty() {
		Replace(container, placeholder(RichEmptyMessage))
		return
	}
	header := Add(El("div", "class", "capsule-header"),
		Wrap("h3", "Daily UPSC Capsule - "+c.DisplayDate()),
		Wrap("p", fmt.Sprintf("%d news items with syllabus mapping", len(c.Items))),
	)
	list := El("div", "class", "news-items")
	for _, it := range c.Items {
		summary := it.Summary
		if strings.TrimSpace(summary) == "" {
			summary = NoSummary
		}
		card := Add(El("div", "class", "news-item"),
			Add(El("div", "class", "news-title"), externalLink(it.URL, it.Title)),
			Wrap("div", summary, "class", "news-summary"),
		)
		if ts := topics(it); len(ts) > 0 {
			tags := El("div", "class", "topics-list")
			for _, t := range ts {
				Add(tags, Wrap("span", t.TagLabel()+" ("+capsule.FormatScore(t.Score.Float())+")", "class", "topic-tag"))
			}
			Add(card, Add(El("div", "class", "topics-section"), Wrap("h4", "Syllabus Mapping:"), tags))
		}
		if ps := pyqs(it, capsule.RichPyqLimit); len(ps) > 0 {
			ul := El("ul", "class", "pyqs-list")
			for _, p := range ps {
				Add(ul, Wrap("li", fmt.Sprintf("%s (%s)", p.Question, p.Year)))
			}
			Add(card, Add(El("div", "class", "pyqs-section"), Wrap("h4", "Related PYQs:"), ul))
		}
		Add(card, Add(El("div", "class", "news-source"),
			Add(El("small"), Text("Source: "), externalLink(it.URL, it.URL))))
		Add(list, card)
	}
	Replace(container, header, list)
}
