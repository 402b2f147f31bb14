// Package server exposes the dashboard over HTTP.
package server

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/KaramelBytes/hospimap-cli/internal/aggregate"
	"github.com/KaramelBytes/hospimap-cli/internal/columns"
	"github.com/KaramelBytes/hospimap-cli/internal/dashboard"
	"github.com/KaramelBytes/hospimap-cli/internal/dataset"
	"github.com/KaramelBytes/hospimap-cli/internal/monitoring"
	"github.com/KaramelBytes/hospimap-cli/internal/render"
	"github.com/KaramelBytes/hospimap-cli/internal/source"
)

// NoticeHeader carries the notices of an HTML view, one header value per notice.
const NoticeHeader = "X-Hospimap-Notice"

// Handler serves the dashboard API and pages.
type Handler struct {
	svc      *dashboard.Service
	sessions *Sessions
}

// NewHandler binds a handler to svc.
func NewHandler(svc *dashboard.Service) *Handler {
	return &Handler{svc: svc, sessions: NewSessions()}
}

// New builds the echo instance with middleware and routes.
func New(svc *dashboard.Service) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())
	e.Use(middleware.Logger())
	NewHandler(svc).RegisterRoutes(e)
	return e
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func Run(ctx context.Context, e *echo.Echo, addr string) error {
	errc := make(chan error, 1)
	go func() { errc <- e.Start(addr) }()
	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	monitoring.Logf("server: shutting down")
	if err := e.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (h *Handler) RegisterRoutes(e *echo.Echo) {
	api := e.Group("/api")
	api.GET("/columns", h.GetColumns)
	api.GET("/options", h.GetOptions)
	api.GET("/capabilities", h.GetCapabilities)
	api.POST("/sessions", h.CreateSession)
	api.GET("/sessions/:id", h.GetSession)
	api.PUT("/sessions/:id", h.PutSession)
	api.DELETE("/sessions/:id", h.DeleteSession)
	api.GET("/view", h.GetView)
	api.GET("/density", h.GetDensity)
	api.POST("/reload", h.Reload)

	e.GET("/charts/top", h.TopChart)
	e.GET("/maps/points", h.PointsMap)
	e.GET("/maps/choropleth", h.ChoroplethMap)
	e.GET("/maps/proximity", h.ProximityMap)
}

// selection starts from the session named by ?session= and applies the query overrides.
func (h *Handler) selection(c echo.Context) (dashboard.Selection, error) {
	sel := dashboard.DefaultSelection()
	if id := c.QueryParam("session"); id != "" {
		s, ok := h.sessions.Get(id)
		if !ok {
			return sel, echo.NewHTTPError(http.StatusNotFound, "unknown session")
		}
		sel = s
	}
	q := c.QueryParams()
	if q.Has("region") {
		sel.Criteria.Region = q.Get("region")
	}
	if q.Has("type") {
		sel.Criteria.Type = q.Get("type")
	}
	if q.Has("search") {
		sel.Criteria.Name = q.Get("search")
	}
	if q.Has("group_by") {
		sel.GroupBy = q.Get("group_by")
	}
	if q.Has("scope") {
		sel.Scope = q.Get("scope")
	}
	// override=role:column, repeatable
	for _, o := range q["override"] {
		role, col, ok := strings.Cut(o, ":")
		if !ok {
			return sel, echo.NewHTTPError(http.StatusBadRequest, "override must be role:column")
		}
		if sel.Overrides == nil {
			sel.Overrides = map[string]string{}
		}
		sel.Overrides[role] = col
	}
	return sel, nil
}

// httpError maps pipeline errors to status codes.
func httpError(err error) error {
	var (
		he       *echo.HTTPError
		fetchErr *source.FetchError
		parseErr *source.ParseError
		colErr   *columns.UnknownColumnError
		aggErr   *aggregate.UnknownColumnError
		roleErr  *dashboard.UnknownRoleError
	)
	switch {
	case errors.As(err, &he):
		return he
	case errors.As(err, &fetchErr):
		return echo.NewHTTPError(http.StatusBadGateway, err.Error())
	case errors.As(err, &parseErr):
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	case errors.As(err, &colErr), errors.As(err, &aggErr), errors.As(err, &roleErr):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	monitoring.Logf("server: %v", err)
	return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
}

func (h *Handler) GetColumns(c echo.Context) error {
	sel, err := h.selection(c)
	if err != nil {
		return err
	}
	out, err := h.svc.Columns(c.Request().Context(), sel)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *Handler) GetOptions(c echo.Context) error {
	sel, err := h.selection(c)
	if err != nil {
		return err
	}
	out, err := h.svc.Selectors(c.Request().Context(), sel)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *Handler) GetCapabilities(c echo.Context) error {
	return c.JSON(http.StatusOK, h.svc.Capabilities())
}

func (h *Handler) CreateSession(c echo.Context) error {
	id := h.sessions.Create()
	return c.JSON(http.StatusCreated, map[string]string{"id": id})
}

func (h *Handler) GetSession(c echo.Context) error {
	sel, ok := h.sessions.Get(c.Param("id"))
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, "unknown session")
	}
	return c.JSON(http.StatusOK, sel)
}

func (h *Handler) PutSession(c echo.Context) error {
	var sel dashboard.Selection
	if err := c.Bind(&sel); err != nil {
		return err
	}
	if _, err := sel.RoleOverrides(); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if !h.sessions.Put(c.Param("id"), sel) {
		return echo.NewHTTPError(http.StatusNotFound, "unknown session")
	}
	return c.JSON(http.StatusOK, sel)
}

func (h *Handler) DeleteSession(c echo.Context) error {
	if !h.sessions.Delete(c.Param("id")) {
		return echo.NewHTTPError(http.StatusNotFound, "unknown session")
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) GetView(c echo.Context) error {
	sel, err := h.selection(c)
	if err != nil {
		return err
	}
	v, err := h.svc.View(c.Request().Context(), sel)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, v)
}

func (h *Handler) GetDensity(c echo.Context) error {
	sel, err := h.selection(c)
	if err != nil {
		return err
	}
	dv, err := h.svc.Density(c.Request().Context(), sel)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, dv)
}

func (h *Handler) Reload(c echo.Context) error {
	h.svc.Reload()
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) TopChart(c echo.Context) error {
	sel, err := h.selection(c)
	if err != nil {
		return err
	}
	v, err := h.svc.View(c.Request().Context(), sel)
	if err != nil {
		return httpError(err)
	}
	return h.page(c, v.Notices, render.TopBar(v.GroupBy, v.Top))
}

func (h *Handler) PointsMap(c echo.Context) error {
	sel, err := h.selection(c)
	if err != nil {
		return err
	}
	pv, err := h.svc.Points(c.Request().Context(), sel)
	if err != nil {
		return httpError(err)
	}
	if len(pv.Points) == 0 {
		return h.noContent(c, pv.Notices)
	}
	markers := make([]render.Marker, len(pv.Points))
	for i, p := range pv.Points {
		title, details := pv.Popup(p)
		markers[i] = render.Marker{Lat: p.Lat, Lng: p.Lng, Title: title, Details: details}
	}
	return h.page(c, pv.Notices, render.PointMap(markers))
}

func (h *Handler) ChoroplethMap(c echo.Context) error {
	sel, err := h.selection(c)
	if err != nil {
		return err
	}
	areas, notices, err := h.svc.Choropleth(c.Request().Context(), sel)
	if err != nil {
		return httpError(err)
	}
	return h.page(c, notices, render.ChoroplethMap(areas))
}

func (h *Handler) ProximityMap(c echo.Context) error {
	sel, err := h.selection(c)
	if err != nil {
		return err
	}
	dv, err := h.svc.Density(c.Request().Context(), sel)
	if err != nil {
		return httpError(err)
	}
	return h.page(c, dv.Notices, render.ProximityMap(dv.Extremes, dv.Radius))
}

func (h *Handler) page(c echo.Context, notices dataset.Notices, chart components.Charter) error {
	var buf bytes.Buffer
	if err := render.WritePage(&buf, chart); err != nil {
		return httpError(err)
	}
	addNotices(c, notices)
	return c.HTMLBlob(http.StatusOK, buf.Bytes())
}

// noContent answers a view with nothing to draw; the notices say why.
func (h *Handler) noContent(c echo.Context, notices dataset.Notices) error {
	addNotices(c, notices)
	return c.NoContent(http.StatusNoContent)
}

func addNotices(c echo.Context, notices dataset.Notices) {
	for _, n := range notices {
		c.Response().Header().Add(NoticeHeader, n.String())
	}
}
