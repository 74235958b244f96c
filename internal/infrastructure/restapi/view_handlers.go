package restapi

import (
	"bytes"
	"html/template"
	"net/http"

	"houses_market/internal/app/port"
	"houses_market/internal/app/state"
	"houses_market/internal/domain/entity"
	"houses_market/internal/pkg/metrics"

	"github.com/gin-gonic/gin"
)

type viewData struct {
	Route  entity.Route
	Routes []entity.Route
	State  state.Snapshot
}

// ViewHandler renders the frontend routes.
type ViewHandler struct {
	routes   *RouteTable
	sessions sessionBinder
	logger   port.Logger
}

// newViewHandler creates a new instance of ViewHandler.
func newViewHandler(routes *RouteTable, sessions sessionBinder, logger port.Logger) *ViewHandler {
	return &ViewHandler{routes: routes, sessions: sessions, logger: logger}
}

// ServeView is installed as the engine's fallback: it runs the route table's
// first-match lookup and renders the matching view, or answers 404. Only GET and HEAD
// count as navigations; other methods never load a view.
func (h *ViewHandler) ServeView(c *gin.Context) {
	path := c.Request.URL.Path
	method := c.Request.Method

	var (
		route   entity.Route
		tmpl    *template.Template
		matched bool
		err     error
	)
	if method == http.MethodGet || method == http.MethodHead {
		route, tmpl, matched, err = h.routes.ResolveView(path)
	}
	if !matched {
		metrics.UnmatchedNavigations.Inc()
		writeJSON(c, http.StatusNotFound, gin.H{"error": "not found", "path": path})
		return
	}
	if err != nil {
		h.logger.Error("Failed to resolve view", "route", route.Name, "error", err)
		writeJSON(c, http.StatusInternalServerError, gin.H{"error": "view unavailable", "route": route.Name})
		return
	}
	metrics.RouteNavigations.WithLabelValues(route.Name).Inc()

	st := h.sessions.bind(c)
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, viewData{Route: route, Routes: h.routes.Routes(), State: st.Snapshot()}); err != nil {
		h.logger.Error("Failed to render view", "route", route.Name, "error", err)
		writeJSON(c, http.StatusInternalServerError, gin.H{"error": "render failed", "route": route.Name})
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", buf.Bytes())
}

// ListRoutes returns the route table.
func (h *ViewHandler) ListRoutes(c *gin.Context) {
	writeJSON(c, http.StatusOK, gin.H{"routes": h.routes.Routes()})
}
