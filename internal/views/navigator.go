// internal/views/navigator.go
package views

import "sync"

// Name identifies a view.
type Name string

const (
	LoginView     Name = "login"
	DashboardView Name = "dashboard"
	ShipmentsView Name = "shipments"
	DetailView    Name = "shipment"
	AnalyticsView Name = "analytics"
	SettingsView  Name = "settings"
)

// Route is a view plus its URL-style parameters.
type Route struct {
	Name   Name
	Params map[string]string
}

// Param returns a route parameter or "".
func (r Route) Param(key string) string {
	if r.Params == nil {
		return ""
	}
	return r.Params[key]
}

// Navigator tracks the open view. Every view but Login needs a session;
// the guard redirects to Login otherwise. Each navigation bumps the
// generation so responses for a view that was left can be dropped.
type Navigator struct {
	mu      sync.RWMutex
	current Route
	gen     uint64
	authed  func() bool
}

func NewNavigator(authed func() bool) *Navigator {
	return &Navigator{current: Route{Name: LoginView}, authed: authed}
}

// Go opens r, or Login when r needs a session that does not exist, and
// returns the route actually opened.
func (n *Navigator) Go(r Route) Route {
	if r.Name != LoginView && !n.authed() {
		r = Route{Name: LoginView}
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	n.current = r
	n.gen++
	return r
}

func (n *Navigator) Current() Route {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.current
}

// Generation changes on every navigation.
func (n *Navigator) Generation() uint64 {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.gen
}

// Left reports whether the navigator moved on since gen.
func (n *Navigator) Left(gen uint64) bool {
	return n.Generation() != gen
}
