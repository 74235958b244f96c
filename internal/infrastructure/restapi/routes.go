package restapi

import (
	"html/template"
	"io/fs"
	"strings"

	"houses_market/internal/domain/entity"
)

// DefaultRoutes is the frontend route table. Order matters: the first match wins.
var DefaultRoutes = []entity.Route{
	{Path: "/", Name: "myHouses", View: "my_houses.html"},
	{Path: "/market", Name: "market", View: "market.html"},
}

type routeEntry struct {
	route entity.Route
	view  *LazyView
}

// RouteTable maps paths to lazily resolved views.
type RouteTable struct {
	entries []*routeEntry
}

// NewRouteTable builds a table whose views are read from views on first navigation.
func NewRouteTable(views fs.FS, routes []entity.Route) *RouteTable {
	t := &RouteTable{entries: make([]*routeEntry, 0, len(routes))}
	for _, r := range routes {
		t.entries = append(t.entries, &routeEntry{
			route: r,
			view:  NewLazyView(r.Name, views, r.View),
		})
	}
	return t
}

func normalizePath(path string) string {
	if path == "" {
		return "/"
	}
	if len(path) > 1 {
		path = strings.TrimRight(path, "/")
		if path == "" {
			return "/"
		}
	}
	return path
}

func (t *RouteTable) match(path string) (*routeEntry, bool) {
	path = normalizePath(path)
	for _, e := range t.entries {
		if e.route.Path == path {
			return e, true
		}
	}
	return nil, false
}

// Resolve returns the first route whose path equals path. It never loads a view.
func (t *RouteTable) Resolve(path string) (entity.Route, bool) {
	e, ok := t.match(path)
	if !ok {
		return entity.Route{}, false
	}
	return e.route, true
}

// ResolveView matches path and resolves the route's view, loading it on first use.
func (t *RouteTable) ResolveView(path string) (entity.Route, *template.Template, bool, error) {
	e, ok := t.match(path)
	if !ok {
		return entity.Route{}, nil, false, nil
	}
	tmpl, err := e.view.Resolve()
	return e.route, tmpl, true, err
}

// Routes returns the table in match order.
func (t *RouteTable) Routes() []entity.Route {
	out := make([]entity.Route, len(t.entries))
	for i, e := range t.entries {
		out[i] = e.route
	}
	return out
}
