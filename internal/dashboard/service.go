// Package dashboard runs the per-interaction pipeline: load, resolve columns,
// filter, aggregate and the geographic views.
package dashboard

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/KaramelBytes/hospimap-cli/internal/aggregate"
	"github.com/KaramelBytes/hospimap-cli/internal/columns"
	"github.com/KaramelBytes/hospimap-cli/internal/dataset"
	"github.com/KaramelBytes/hospimap-cli/internal/filter"
	"github.com/KaramelBytes/hospimap-cli/internal/geo"
	"github.com/KaramelBytes/hospimap-cli/internal/monitoring"
	"github.com/KaramelBytes/hospimap-cli/internal/source"
)

// DefaultPreviewRows is the number of filtered rows shown in the table preview.
const DefaultPreviewRows = 50

// Geographic views run on the full table unless the selection asks for the filtered one.
const (
	ScopeFull     = "full"
	ScopeFiltered = "filtered"
)

// Options configures a Service.
type Options struct {
	SourceURL     string
	AreasPath     string
	AreaProps     geo.AreaProperties
	TopN          int
	PreviewRows   int
	RadiusMeters  float64
	Projection    geo.Projector
	DensityGroups []string
}

func (o *Options) defaults() {
	if o.TopN <= 0 {
		o.TopN = aggregate.DefaultTopN
	}
	if o.PreviewRows <= 0 {
		o.PreviewRows = DefaultPreviewRows
	}
	if o.RadiusMeters <= 0 {
		o.RadiusMeters = geo.DefaultRadiusMeters
	}
	if o.Projection == nil {
		o.Projection = geo.NewWebMercator()
	}
	if o.DensityGroups == nil {
		o.DensityGroups = geo.DefaultDensityGroups
	}
	if o.AreaProps.Name == "" {
		o.AreaProps.Name = geo.DefaultNameProperty
	}
	if o.AreaProps.Group == "" {
		o.AreaProps.Group = geo.DefaultGroupProperty
	}
}

// Capabilities are resolved once when the service starts.
type Capabilities struct {
	Geometry bool   `json:"geometry"`
	Reason   string `json:"reason,omitempty"`
}

// Service ties the pipeline stages together. It is safe for concurrent use; the
// loaded table and areas are shared read-only.
type Service struct {
	loader *source.Loader
	opts   Options
	caps   Capabilities
	areas  []geo.Area
}

// New builds a Service and probes the area resource.
func New(ctx context.Context, loader *source.Loader, opts Options) *Service {
	opts.defaults()
	s := &Service{loader: loader, opts: opts}
	if opts.AreasPath == "" {
		s.caps.Reason = "no areas resource configured"
		return s
	}
	data, err := loader.ReadResource(ctx, opts.AreasPath)
	if err == nil {
		s.areas, err = geo.LoadAreas(data, opts.AreaProps)
	}
	if err != nil {
		s.caps.Reason = err.Error()
		monitoring.Logf("dashboard: geometry disabled: %v", err)
		return s
	}
	s.caps.Geometry = true
	monitoring.Logf("dashboard: loaded %d areas from %s", len(s.areas), opts.AreasPath)
	return s
}

// Capabilities reports what the service can render.
func (s *Service) Capabilities() Capabilities { return s.caps }

// Options returns the effective options.
func (s *Service) Options() Options { return s.opts }

// Reload drops the cached source table so the next request fetches it again.
func (s *Service) Reload() { s.loader.Invalidate(s.opts.SourceURL) }

// UnknownRoleError is returned for an override keyed by a name that is not a role.
type UnknownRoleError struct{ Name string }

func (e *UnknownRoleError) Error() string { return fmt.Sprintf("unknown role %q", e.Name) }

// Selection is the user's input for one interaction.
type Selection struct {
	Criteria  filter.Criteria   `json:"criteria" yaml:"criteria"`
	Overrides map[string]string `json:"overrides,omitempty" yaml:"overrides,omitempty"`
	GroupBy   string            `json:"group_by,omitempty" yaml:"group_by,omitempty"`
	Scope     string            `json:"scope,omitempty" yaml:"scope,omitempty"`
}

// DefaultSelection selects everything.
func DefaultSelection() Selection {
	return Selection{Criteria: filter.NoFilter(), Scope: ScopeFull}
}

// RoleOverrides converts the role-name keyed overrides.
func (sel Selection) RoleOverrides() (columns.Overrides, error) {
	if len(sel.Overrides) == 0 {
		return nil, nil
	}
	ov := make(columns.Overrides, len(sel.Overrides))
	for k, v := range sel.Overrides {
		r, ok := columns.ParseRole(k)
		if !ok {
			return nil, &UnknownRoleError{Name: k}
		}
		if v = strings.TrimSpace(v); v != "" {
			ov[r] = v
		}
	}
	return ov, nil
}

// Frame is the result of the shared pipeline prefix.
type Frame struct {
	Full     *dataset.Table
	Roles    columns.RoleMap
	Filtered *dataset.Table
	Notices  dataset.Notices
}

// scoped returns the table the geographic views should use.
func (f *Frame) scoped(scope string) *dataset.Table {
	if scope == ScopeFiltered {
		return f.Filtered
	}
	return f.Full
}

// Prepare loads the table, resolves the roles and applies the filter.
func (s *Service) Prepare(ctx context.Context, sel Selection) (*Frame, error) {
	full, err := s.loader.Load(ctx, s.opts.SourceURL)
	if err != nil {
		return nil, err
	}
	ov, err := sel.RoleOverrides()
	if err != nil {
		return nil, err
	}
	roles, err := columns.Resolve(full.Columns(), ov)
	if err != nil {
		return nil, err
	}
	f := &Frame{Full: full, Roles: roles, Notices: roles.Notices()}
	f.Filtered = filter.Apply(full, roles, sel.Criteria)
	if f.Filtered.Len() == 0 {
		f.Notices = append(f.Notices, dataset.Notice{
			Kind:    dataset.NoticeEmptyResult,
			Subject: "filter",
			Message: "no establishments match the current filters",
		})
	}
	return f, nil
}

// Columns describes the loaded table.
type Columns struct {
	Names   []string          `json:"names"`
	Kinds   map[string]string `json:"kinds"`
	Roles   map[string]string `json:"roles"`
	Notices dataset.Notices   `json:"notices"`
}

// Columns loads the table and reports its columns and the role mapping.
func (s *Service) Columns(ctx context.Context, sel Selection) (*Columns, error) {
	f, err := s.Prepare(ctx, sel)
	if err != nil {
		return nil, err
	}
	out := &Columns{Names: f.Full.Columns(), Kinds: map[string]string{}, Roles: f.Roles.AsMap(), Notices: f.Roles.Notices()}
	for _, c := range out.Names {
		out.Kinds[c] = string(f.Full.Kind(c))
	}
	return out, nil
}

// SelectorOptions are the values offered by the region and type selectors.
type SelectorOptions struct {
	Regions []string `json:"regions"`
	Types   []string `json:"types"`
}

// Selectors lists the distinct region and type values of the full table.
func (s *Service) Selectors(ctx context.Context, sel Selection) (*SelectorOptions, error) {
	f, err := s.Prepare(ctx, sel)
	if err != nil {
		return nil, err
	}
	out := &SelectorOptions{Regions: []string{}, Types: []string{}}
	if col, ok := f.Roles.Column(columns.Region); ok {
		out.Regions = filter.Options(f.Full, col)
	}
	if col, ok := f.Roles.Column(columns.Type); ok {
		out.Types = filter.Options(f.Full, col)
	}
	return out, nil
}

// View is the tabular part of the dashboard.
type View struct {
	Selection Selection                 `json:"selection"`
	Roles     map[string]string         `json:"roles"`
	KPIs      aggregate.KPIs            `json:"kpis"`
	GroupBy   string                    `json:"group_by,omitempty"`
	Top       []aggregate.CategoryCount `json:"top"`
	Columns   []string                  `json:"columns"`
	Preview   [][]string                `json:"preview"`
	Notices   dataset.Notices           `json:"notices"`
}

// View computes KPIs, the Top-N distribution and the table preview.
func (s *Service) View(ctx context.Context, sel Selection) (*View, error) {
	f, err := s.Prepare(ctx, sel)
	if err != nil {
		return nil, err
	}
	v := &View{
		Selection: sel,
		Roles:     f.Roles.AsMap(),
		KPIs:      aggregate.Summarize(f.Full, f.Filtered, f.Roles),
		Columns:   f.Filtered.Columns(),
		Preview:   f.Filtered.Head(s.opts.PreviewRows).Rows(),
		Top:       []aggregate.CategoryCount{},
	}
	col, err := aggregate.GroupingColumn(f.Full, f.Roles, sel.GroupBy)
	var noGroup *aggregate.NoGroupingColumnError
	switch {
	case errors.As(err, &noGroup):
		f.Notices = append(f.Notices, unavailable("chart", err.Error()))
	case err != nil:
		return nil, err
	default:
		v.GroupBy = col
		if v.Top, err = aggregate.TopN(f.Filtered, col, s.opts.TopN); err != nil {
			return nil, err
		}
	}
	v.Notices = f.Notices
	return v, nil
}

// PointsView is the data of the points map.
type PointsView struct {
	Points  []geo.Point     `json:"points"`
	Lat     float64         `json:"center_lat"`
	Lng     float64         `json:"center_lng"`
	Notices dataset.Notices `json:"notices"`
	frame   *Frame
}

// Points extracts the filtered rows with valid coordinates.
func (s *Service) Points(ctx context.Context, sel Selection) (*PointsView, error) {
	f, err := s.Prepare(ctx, sel)
	if err != nil {
		return nil, err
	}
	pv := &PointsView{frame: f}
	pts, ok := geo.Points(f.Filtered, f.Roles)
	if !ok {
		pv.Notices = append(f.Notices, unavailable("points", "latitude and longitude columns are required"))
		return pv, nil
	}
	pv.Points = pts
	if lat, lng, ok := geo.Center(pts); ok {
		pv.Lat, pv.Lng = lat, lng
	} else {
		f.Notices = append(f.Notices, dataset.Notice{
			Kind:    dataset.NoticeEmptyResult,
			Subject: "points",
			Message: "no rows with valid coordinates",
		})
	}
	pv.Notices = f.Notices
	return pv, nil
}

// Popup returns the title and the details shown for a point: the name (or
// "Establecimiento"), region, type and the coordinates to five decimals.
func (pv *PointsView) Popup(p geo.Point) (string, []string) {
	t, roles := pv.frame.Filtered, pv.frame.Roles
	title := "Establecimiento"
	if col, ok := roles.Column(columns.Name); ok {
		if v := t.Value(p.Row, col); v != "" {
			title = v
		}
	}
	var details []string
	for _, r := range []columns.Role{columns.Region, columns.Type} {
		if col, ok := roles.Column(r); ok {
			if v := t.Value(p.Row, col); v != "" {
				details = append(details, v)
			}
		}
	}
	details = append(details, fmt.Sprintf("%.5f, %.5f", p.Lat, p.Lng))
	return title, details
}

// Choropleth joins per-district counts onto the areas.
func (s *Service) Choropleth(ctx context.Context, sel Selection) ([]geo.Area, dataset.Notices, error) {
	f, err := s.Prepare(ctx, sel)
	if err != nil {
		return nil, nil, err
	}
	if !s.caps.Geometry {
		return nil, append(f.Notices, s.noGeometry()), nil
	}
	col, ok := f.Roles.Column(columns.District)
	if !ok {
		return nil, append(f.Notices, unavailable("choropleth", "a district column is required")), nil
	}
	counts, err := aggregate.CountByKey(f.scoped(sel.Scope), col)
	if err != nil {
		return nil, nil, err
	}
	return geo.JoinCounts(s.areas, counts), f.Notices, nil
}

// DensityView holds the areas with their buffer counts and the extremes per group.
type DensityView struct {
	Radius   float64         `json:"radius_m"`
	Areas    []geo.Area      `json:"-"`
	Extremes []geo.Extreme   `json:"extremes"`
	Notices  dataset.Notices `json:"notices"`
}

// Density counts the points within the buffer around every area centroid and
// picks the extremes of each configured group.
func (s *Service) Density(ctx context.Context, sel Selection) (*DensityView, error) {
	f, err := s.Prepare(ctx, sel)
	if err != nil {
		return nil, err
	}
	dv := &DensityView{Radius: s.opts.RadiusMeters, Extremes: []geo.Extreme{}}
	if !s.caps.Geometry {
		dv.Notices = append(f.Notices, s.noGeometry())
		return dv, nil
	}
	pts, ok := geo.Points(f.scoped(sel.Scope), f.Roles)
	if !ok {
		dv.Notices = append(f.Notices, unavailable("density", "latitude and longitude columns are required"))
		return dv, nil
	}
	if dv.Areas, err = geo.ComputeDensity(s.areas, pts, s.opts.RadiusMeters, s.opts.Projection); err != nil {
		return nil, err
	}
	if len(pts) == 0 {
		dv.Notices = append(f.Notices, dataset.Notice{
			Kind:    dataset.NoticeEmptyResult,
			Subject: "density",
			Message: "no rows with valid coordinates",
		})
		return dv, nil
	}
	dv.Extremes = geo.ExtremesByGroup(dv.Areas, s.opts.DensityGroups)
	monitoring.Logf("dashboard: density over %d areas, %d points (%s)", len(dv.Areas), len(pts), s.opts.Projection.Name())
	dv.Notices = f.Notices
	return dv, nil
}

// StaticViews are the inputs of the static maps and charts.
type StaticViews struct {
	Districts    []geo.Area
	Zero         []geo.Area
	TopDistricts []geo.Area
	Departments  []aggregate.CategoryCount
	Notices      dataset.Notices
}

// Static computes the district maps and the department ranking.
func (s *Service) Static(ctx context.Context, sel Selection) (*StaticViews, error) {
	f, err := s.Prepare(ctx, sel)
	if err != nil {
		return nil, err
	}
	sv := &StaticViews{}
	if col, ok := f.Roles.Column(columns.Region); ok {
		if sv.Departments, err = aggregate.TopN(f.scoped(sel.Scope), col, s.opts.TopN); err != nil {
			return nil, err
		}
	}
	areas, notices, err := s.Choropleth(ctx, sel)
	if err != nil {
		return nil, err
	}
	sv.Notices = notices
	if areas != nil {
		sv.Districts = areas
		sv.Zero = geo.WithoutHospitals(areas)
		sv.TopDistricts = geo.TopByCount(areas, s.opts.TopN)
	}
	return sv, nil
}

func (s *Service) noGeometry() dataset.Notice {
	return unavailable("geometry", "district boundaries are not available: "+s.caps.Reason)
}

func unavailable(subject, msg string) dataset.Notice {
	return dataset.Notice{Kind: dataset.NoticeFeatureUnavailable, Subject: subject, Message: msg}
}
