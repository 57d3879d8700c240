// Package tabs holds the panel state machine shared by both navigation strategies.
package tabs

import "errors"

// Panel keys.
const (
	Capsule       = "capsule"
	Quiz          = "quiz"
	Chat          = "chat"
	Plan          = "plan"
	Subscriptions = "subscriptions"
	Utilities     = "utilities"
	Admin         = "admin"
)

// Default is the panel shown on initial load and for unknown keys.
const Default = Capsule

// Strategy selects how panels are navigated.
type Strategy string

// Navigation strategies.
const (
	// StrategyTabs renders every panel on one page and hides the inactive ones.
	StrategyTabs Strategy = "tabs"
	// StrategyPages gives each panel its own route and requires a credential.
	StrategyPages Strategy = "pages"
)

// ErrUnknownStrategy is returned by ParseStrategy.
var ErrUnknownStrategy = errors.New("navigation strategy must be tabs or pages")

// ParseStrategy validates a configured strategy name.
func ParseStrategy(s string) (Strategy, error) {
	switch Strategy(s) {
	case StrategyTabs, StrategyPages:
		return Strategy(s), nil
	}
	return "", ErrUnknownStrategy
}

// PanelDef describes one panel.
type PanelDef struct {
	Key        string
	Label      string
	Privileged bool
}

// Panels is the fixed panel order.
var Panels = []PanelDef{
	{Key: Capsule, Label: "Daily Capsule"},
	{Key: Quiz, Label: "Quiz"},
	{Key: Chat, Label: "Mentor Chat"},
	{Key: Plan, Label: "Study Plan"},
	{Key: Subscriptions, Label: "Subscriptions"},
	{Key: Utilities, Label: "Utilities"},
	{Key: Admin, Label: "Admin", Privileged: true},
}

// Panel is one panel's rendered state.
type Panel struct {
	PanelDef
	Active bool
	Hidden bool
}

// State is the outcome of selecting a panel.
// INVARIANT: exactly one visible panel is Active, and every non-active panel is Hidden
type State struct {
	Active string
	Panels []Panel
}

// Lookup returns the definition for key.
func Lookup(key string) (PanelDef, bool) {
	for _, p := range Panels {
		if p.Key == key {
			return p, true
		}
	}
	return PanelDef{}, false
}

// Resolve maps a requested key onto a selectable panel.
// Unknown keys, and privileged keys for non-privileged viewers, fall back to Default.
func Resolve(key string, privileged bool) string {
	def, ok := Lookup(key)
	if !ok || (def.Privileged && !privileged) {
		return Default
	}
	return def.Key
}

// Select performs the transition: every panel hidden and inactive, then the
// target shown and active. Privileged panels are omitted for other viewers.
// POST: State.Active == Resolve(key, privileged)
func Select(key string, privileged bool) State {
	active := Resolve(key, privileged)
	st := State{Active: active}
	for _, def := range Panels {
		if def.Privileged && !privileged {
			continue
		}
		p := Panel{PanelDef: def, Hidden: true}
		if def.Key == active {
			p.Active = true
			p.Hidden = false
		}
		st.Panels = append(st.Panels, p)
	}
	return st
}

// Href is the link to a panel under strategy.
func (s Strategy) Href(key string) string {
	if s == StrategyPages {
		return "/p/" + key
	}
	if key == Default {
		return "/"
	}
	return "/?tab=" + key
}

// RequiresLogin reports whether the strategy redirects anonymous viewers to /login.
func (s Strategy) RequiresLogin() bool {
	return s == StrategyPages
}
