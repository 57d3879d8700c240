package view

import (
	"bytes"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	goldmarkHTML "github.com/yuin/goldmark/renderer/html"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// mdRenderer converts markdown with raw HTML escaped (WithUnsafe is not set).
var mdRenderer = goldmark.New(
	goldmark.WithExtensions(extension.Linkify),
	goldmark.WithRendererOptions(
		goldmarkHTML.WithHardWraps(),
	),
)

// Markdown converts md into nodes ready to append to a container.
// On conversion failure the source is returned as a single escaped text node.
func Markdown(md string) []*html.Node {
	var buf bytes.Buffer
	if err := mdRenderer.Convert([]byte(md), &buf); err != nil {
		return []*html.Node{Text(md)}
	}
	ctx := &html.Node{Type: html.ElementNode, Data: "div", DataAtom: atom.Div}
	nodes, err := html.ParseFragment(&buf, ctx)
	if err != nil {
		return []*html.Node{Text(md)}
	}
	return nodes
}

// markdownBlock wraps rendered markdown in a div with class.
func markdownBlock(md, class string) *html.Node {
	return Add(El("div", "class", class), Markdown(md)...)
}
