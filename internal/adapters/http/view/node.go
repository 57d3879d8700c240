// Package view renders payloads into HTML node trees.
//
// Every renderer has the shape Render(payload, container): it replaces the
// container's children and touches nothing else, so rendering the same
// payload twice yields the same tree.
package view

import (
	"bytes"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// El creates an element. attrs are key, value pairs.
func El(tag string, attrs ...string) *html.Node {
	n := &html.Node{Type: html.ElementNode, Data: tag, DataAtom: atom.Lookup([]byte(tag))}
	for i := 0; i+1 < len(attrs); i += 2 {
		n.Attr = append(n.Attr, html.Attribute{Key: attrs[i], Val: attrs[i+1]})
	}
	return n
}

// svgEl creates an element in the SVG namespace.
func svgEl(tag string, attrs ...string) *html.Node {
	n := El(tag, attrs...)
	n.Namespace = "svg"
	n.DataAtom = 0
	return n
}

// Text creates a text node. The renderer escapes it.
func Text(s string) *html.Node {
	return &html.Node{Type: html.TextNode, Data: s}
}

// Add appends children to parent and returns parent.
func Add(parent *html.Node, children ...*html.Node) *html.Node {
	for _, c := range children {
		if c != nil {
			parent.AppendChild(c)
		}
	}
	return parent
}

// Wrap creates an element holding a single text child.
func Wrap(tag, text string, attrs ...string) *html.Node {
	return Add(El(tag, attrs...), Text(text))
}

// Replace removes every child of container, then appends children.
// POST: container's children are exactly children
func Replace(container *html.Node, children ...*html.Node) {
	for c := container.FirstChild; c != nil; {
		next := c.NextSibling
		container.RemoveChild(c)
		c = next
	}
	Add(container, children...)
}

// Container creates an empty div with the given id.
func Container(id string, attrs ...string) *html.Node {
	return El("div", append([]string{"id", id}, attrs...)...)
}

// Attr returns the value of key on n.
func Attr(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

// SetAttr sets key on n, replacing an existing value.
func SetAttr(n *html.Node, key, val string) {
	for i, a := range n.Attr {
		if a.Key == key {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
}

// HasClass reports whether n carries class c.
func HasClass(n *html.Node, c string) bool {
	v, _ := Attr(n, "class")
	for _, f := range strings.Fields(v) {
		if f == c {
			return true
		}
	}
	return false
}

// Walk visits n and its descendants in document order.
func Walk(n *html.Node, fn func(*html.Node)) {
	fn(n)
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		Walk(c, fn)
	}
}

// Find returns every descendant element of n matching pred, in document order.
func Find(n *html.Node, pred func(*html.Node) bool) []*html.Node {
	var out []*html.Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		Walk(c, func(x *html.Node) {
			if x.Type == html.ElementNode && pred(x) {
				out = append(out, x)
			}
		})
	}
	return out
}

// ByClass matches elements carrying class c.
func ByClass(c string) func(*html.Node) bool {
	return func(n *html.Node) bool { return HasClass(n, c) }
}

// ByTag matches elements named tag.
func ByTag(tag string) func(*html.Node) bool {
	return func(n *html.Node) bool { return n.Data == tag }
}

// TextContent concatenates every text node under n.
func TextContent(n *html.Node) string {
	var b strings.Builder
	Walk(n, func(x *html.Node) {
		if x.Type == html.TextNode {
			b.WriteString(x.Data)
		}
	})
	return b.String()
}

// Render serialises n, including n itself.
func Render(n *html.Node) (string, error) {
	var buf bytes.Buffer
	if err := html.Render(&buf, n); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// RenderChildren serialises the children of n without n itself.
func RenderChildren(n *html.Node) (string, error) {
	var buf bytes.Buffer
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if err := html.Render(&buf, c); err != nil {
			return "", err
		}
	}
	return buf.String(), nil
}

// StampForms adds a hidden field to every POST form under root that lacks it.
// Renderers stay free of request state; the HTTP layer stamps the CSRF token afterwards.
func StampForms(root *html.Node, field, value string) {
	Walk(root, func(n *html.Node) {
		if n.Type != html.ElementNode || n.Data != "form" {
			return
		}
		if m, _ := Attr(n, "method"); !strings.EqualFold(m, "post") {
			return
		}
		for _, in := range Find(n, ByTag("input")) {
			if name, _ := Attr(in, "name"); name == field {
				return
			}
		}
		n.InsertBefore(El("input", "type", "hidden", "name", field, "value", value), n.FirstChild)
	})
}

// placeholder is the single element shown when a payload is empty.
func placeholder(msg string) *html.Node {
	return Wrap("div", msg, "class", "no-data")
}

// postForm builds an inline form with one submit button.
func postForm(action, label, class string, hidden ...string) *html.Node {
	f := El("form", "method", "post", "action", action, "class", "inline")
	for i := 0; i+1 < len(hidden); i += 2 {
		Add(f, El("input", "type", "hidden", "name", hidden[i], "value", hidden[i+1]))
	}
	return Add(f, Wrap("button", label, "type", "submit", "class", class))
}
