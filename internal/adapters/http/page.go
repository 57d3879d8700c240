package web

import (
	"context"
	"html/template"
	"net/http"

	"golang.org/x/net/html"
	"golang.org/x/sync/errgroup"

	"civicbriefs/internal/adapters/http/view"
	"civicbriefs/internal/application/actions"
	"civicbriefs/internal/application/tabs"
)

// dashboardData is the template data for dashboard.html.
type dashboardData struct {
	Nav   tabs.State
	Pages bool
	Fill  map[string]template.HTML
}

// Visible reports whether the panel key is rendered at all.
// Under the pages strategy only the active panel is.
func (d dashboardData) Visible(key string) bool {
	return !d.Pages || d.Nav.Active == key
}

// Hidden reports whether a rendered panel starts hidden.
func (d dashboardData) Hidden(key string) bool {
	return d.Nav.Active != key
}

// loader fills containers on a full page render that no action already filled.
// prior holds what the action rendered and must only be read.
type loader struct {
	panel      string
	targets    []string
	privileged bool
	run        func(ctx context.Context, deps actions.Deps, page dashboardData, prior, u *update)
}

var loaders = []loader{
	{
		// The stats tiles derive from the capsule, so one fetch serves both.
		targets: []string{"capsule", "stats"},
		run: func(ctx context.Context, deps actions.Deps, page dashboardData, prior, u *update) {
			needCapsule := page.Visible(tabs.Capsule) && !prior.has("capsule")
			needStats := !prior.has("stats")
			switch {
			case needCapsule:
				out := actions.ExecuteLoadCapsule(ctx, deps)
				setCapsule(u, &out)
				if needStats {
					setStats(u, actions.StatsFor(ctx, deps, out.Capsule))
				}
			case !needStats:
			case prior.capsule != nil:
				setStats(u, actions.StatsFor(ctx, deps, *prior.capsule))
			default:
				setStats(u, actions.ExecuteDashboardStats(ctx, deps))
			}
		},
	},
	{
		panel:   tabs.Subscriptions,
		targets: []string{"subs-table"},
		run: func(ctx context.Context, deps actions.Deps, _ dashboardData, _, u *update) {
			rows := actions.ExecuteSubscribersTable(ctx, deps)
			u.set("subs-table", func(n *html.Node) { view.Subscribers(rows, n) })
		},
	},
	{
		panel:      tabs.Admin,
		targets:    []string{"admin-users", "admin-requests"},
		privileged: true,
		run: func(ctx context.Context, deps actions.Deps, _ dashboardData, _, u *update) {
			setAdminLists(u, actions.ExecuteAdminLists(ctx, deps))
		},
	},
}

// wanted reports whether l should run for this page.
func (l loader) wanted(u *update, viewer actions.Viewer, page dashboardData) bool {
	if l.privileged && !viewer.Privileged {
		return false
	}
	if l.panel != "" && !page.Visible(l.panel) {
		return false
	}
	for _, id := range l.targets {
		if !u.has(id) {
			return true
		}
	}
	return false
}

// renderDashboard renders the whole dashboard with u's containers in place and
// u.panel active. Initial loads run concurrently for containers u left empty.
func (s *Server) renderDashboard(w http.ResponseWriter, r *http.Request, u *update) {
	ctx := r.Context()
	deps := s.actionDeps(r)
	s.restoreToasts(r)

	viewer := actions.ExecuteValidateSession(ctx, deps)
	pages := s.cfg.Strategy == tabs.StrategyPages
	if s.cfg.Strategy.RequiresLogin() && !viewer.Authenticated {
		s.redirectWithToasts(w, r, "/login")
		return
	}
	nav := tabs.Select(u.panel, viewer.Privileged)
	data := dashboardData{Nav: nav, Pages: pages}

	var pending []loader
	for _, l := range loaders {
		if l.wanted(u, viewer, data) {
			pending = append(pending, l)
		}
	}
	results := make([]*update, len(pending))
	g, gctx := errgroup.WithContext(ctx)
	for i, l := range pending {
		results[i] = newUpdate(u.panel)
		g.Go(func() error {
			l.run(gctx, deps, data, u, results[i])
			return nil
		})
	}
	_ = g.Wait()
	for _, res := range results {
		for _, id := range res.order {
			if !u.has(id) {
				u.order = append(u.order, id)
				u.parts[id] = res.parts[id]
			}
		}
	}

	data.Fill = make(map[string]template.HTML, len(u.parts))
	for id, n := range u.parts {
		data.Fill[id] = s.finish(r, n)
	}
	title := "Civic Briefs"
	if def, ok := tabs.Lookup(nav.Active); ok {
		title = def.Label + " - Civic Briefs"
	}
	s.renderTemplate(w, r, "dashboard.html", chrome{Viewer: viewer, Title: title}, data)
}

// handleHome serves the dashboard. Under the pages strategy it forwards to the default panel.
func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	if s.cfg.Strategy == tabs.StrategyPages {
		http.Redirect(w, r, s.cfg.Strategy.Href(tabs.Default), http.StatusSeeOther)
		return
	}
	s.renderDashboard(w, r, newUpdate(r.URL.Query().Get("tab")))
}

// handlePanelPage serves /p/{key}. Under the tabs strategy it forwards to the tab link.
func (s *Server) handlePanelPage(w http.ResponseWriter, r *http.Request) {
	key := r.PathValue("key")
	if s.cfg.Strategy != tabs.StrategyPages {
		http.Redirect(w, r, s.cfg.Strategy.Href(tabs.Resolve(key, true)), http.StatusSeeOther)
		return
	}
	if _, ok := tabs.Lookup(key); !ok {
		http.NotFound(w, r)
		return
	}
	s.renderDashboard(w, r, newUpdate(key))
}
