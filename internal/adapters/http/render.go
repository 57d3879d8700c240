package web

import (
	"bytes"
	"embed"
	"html/template"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gorilla/csrf"
	"golang.org/x/net/html"

	"civicbriefs/internal/adapters/http/view"
	"civicbriefs/internal/application/actions"
	"civicbriefs/internal/application/toast"
	"civicbriefs/internal/domain/capsule"
	"civicbriefs/internal/domain/theme"
)

//go:embed templates static
var assets embed.FS

// csrfFieldName is the form field gorilla/csrf reads the token from.
const csrfFieldName = "gorilla.csrf.Token"

// fetchHeader marks requests sent by static/app.js that expect fragments.
const fetchHeader = "X-Requested-With"

// internalError logs the real error and returns a generic message to the client.
// This prevents leaking internal details per OWASP A05.
func internalError(w http.ResponseWriter, err error) {
	slog.Error("internal_error", "error", err.Error())
	http.Error(w, "internal server error", http.StatusInternalServerError)
}

func isFetch(r *http.Request) bool {
	return r.Header.Get(fetchHeader) == "fetch"
}

// chrome is what the layout needs around every page.
type chrome struct {
	Viewer actions.Viewer
	Title  string
}

// renderTemplate executes layout.html around templateName.
// Toasts still in the request's tray are rendered into the layout's toast region.
func (s *Server) renderTemplate(w http.ResponseWriter, r *http.Request, templateName string, c chrome, data any) {
	toasts := s.renderNodes(r, "toasts", func(n *html.Node) {
		view.Toasts(toast.FromContext(r.Context()).All(), n)
	})

	funcMap := template.FuncMap{
		"csrfToken":    func() string { return csrf.Token(r) },
		"isLoggedIn":   func() bool { return c.Viewer.Authenticated },
		"isPrivileged": func() bool { return c.Viewer.Privileged },
		"currentEmail": func() string { return c.Viewer.Email },
		"currentRole":  func() string { return c.Viewer.Role },
		"currentTheme": func() string { return theme.Normalize(c.Viewer.Theme) },
		"pageTitle":    func() string { return c.Title },
		"toasts":       func() template.HTML { return toasts },
		"navStrategy":  func() string { return string(s.cfg.Strategy) },
		"panelHref":    func(key string) string { return s.cfg.Strategy.Href(key) },
		"requestPath":  func() string { return r.URL.RequestURI() },
	}

	tpl, err := template.New("layout.html").Funcs(funcMap).ParseFS(assets, "templates/layout.html", "templates/"+templateName)
	if err != nil {
		internalError(w, err)
		return
	}
	var buf bytes.Buffer
	if err := tpl.Execute(&buf, data); err != nil {
		internalError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(buf.Bytes())
}

// renderNodes runs render against an empty container and returns its
// children as trusted HTML, with CSRF tokens stamped into any post forms.
func (s *Server) renderNodes(r *http.Request, id string, render func(*html.Node)) template.HTML {
	n := view.Container(id)
	render(n)
	return s.finish(r, n)
}

func (s *Server) finish(r *http.Request, n *html.Node) template.HTML {
	view.StampForms(n, csrfFieldName, csrf.Token(r))
	out, err := view.RenderChildren(n)
	if err != nil {
		slog.Error("internal_error", "operation", "render_nodes", "error", err.Error())
		return ""
	}
	return template.HTML(out)
}

// update collects the containers an action re-rendered.
type update struct {
	panel string
	order []string
	parts map[string]*html.Node
	// capsule is the capsule behind the "capsule" container, once one was loaded.
	capsule *capsule.Capsule
}

func newUpdate(panel string) *update {
	return &update{panel: panel, parts: map[string]*html.Node{}}
}

// set renders into container id. A later set of the same id replaces the earlier one.
func (u *update) set(id string, render func(*html.Node)) *update {
	n := view.Container(id)
	render(n)
	if _, ok := u.parts[id]; !ok {
		u.order = append(u.order, id)
	}
	u.parts[id] = n
	return u
}

// status renders an action status into container id.
func (u *update) status(id string, st actions.Status) *update {
	return u.set(id, func(n *html.Node) { view.Status(st, n) })
}

func (u *update) has(id string) bool {
	_, ok := u.parts[id]
	return ok
}

// respond sends the update: fragments for script requests, the full page otherwise.
func (s *Server) respond(w http.ResponseWriter, r *http.Request, u *update) {
	if !isFetch(r) {
		s.renderDashboard(w, r, u)
		return
	}
	u.set("toasts", func(n *html.Node) {
		view.Toasts(toast.FromContext(r.Context()).All(), n)
	})
	var b strings.Builder
	for _, id := range u.order {
		b.WriteString(`<template data-target="`)
		b.WriteString(html.EscapeString(id))
		b.WriteString(`">`)
		b.WriteString(string(s.finish(r, u.parts[id])))
		b.WriteString("</template>\n")
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.Write([]byte(b.String()))
}

// safeNext returns a local path to redirect to, defaulting to fallback.
func safeNext(next, fallback string) string {
	if !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return fallback
	}
	return next
}
