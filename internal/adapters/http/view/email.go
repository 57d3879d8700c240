package view

import (
	"golang.org/x/net/html"

	"civicbriefs/internal/domain/capsule"
)

const emailStyle = `body{font-family:Arial,sans-serif;color:#222;max-width:680px;margin:auto}` +
	`.news-item{border-bottom:1px solid #eee;padding:12px 0}.topic-tag{display:inline-block;background:#eef2ff;` +
	`border-radius:10px;padding:2px 8px;margin:2px;font-size:12px}.news-source{color:#666}`

// CapsuleEmail renders the capsule as a standalone HTML document for mailing.
func CapsuleEmail(c capsule.Capsule) (string, error) {
	body := El("body")
	RichCapsule(c, body)
	doc := &html.Node{Type: html.DocumentNode}
	Add(doc,
		&html.Node{Type: html.DoctypeNode, Data: "html"},
		Add(El("html", "lang", "en"),
			Add(El("head"),
				El("meta", "charset", "utf-8"),
				Wrap("title", "Daily UPSC Capsule - "+c.DisplayDate()),
				Wrap("style", emailStyle),
			),
			body,
		),
	)
	return Render(doc)
}
