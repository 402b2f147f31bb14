package geo

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/KaramelBytes/hospimap-cli/internal/monitoring"
	"github.com/golang/geo/r2"
	"github.com/golang/geo/s2"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"
	"github.com/twpayne/go-geom/xy"
)

// Default GeoJSON property names of the Peruvian district boundaries.
const (
	DefaultNameProperty  = "NOMBDIST"
	DefaultGroupProperty = "NOMBDEP"
)

// ErrNoAreas indicates an area resource without usable features.
var ErrNoAreas = errors.New("no polygon features found")

// AreaProperties names the feature properties read for each area.
type AreaProperties struct {
	Name  string
	Group string
}

// DefaultAreaProperties returns the district/department property names.
func DefaultAreaProperties() AreaProperties {
	return AreaProperties{Name: DefaultNameProperty, Group: DefaultGroupProperty}
}

// Area is an areal unit (a district) with the attributes populated by aggregation.
type Area struct {
	ID    string `json:"id,omitempty"`
	Name  string `json:"name"`
	Group string `json:"group,omitempty"`
	// Geometry is a polygonal geometry in lon/lat degrees.
	Geometry geom.T `json:"-"`
	// Centroid is the planar centroid expressed back in degrees.
	Centroid s2.LatLng `json:"-"`
	// Count is the number of table rows joined on Name; HasData is false when none matched.
	Count   int  `json:"count"`
	HasData bool `json:"has_data"`
	// Density is the number of points inside Buffer, set by ComputeDensity.
	Density int     `json:"density"`
	Buffer  *Buffer `json:"-"`
}

// Buffer is a fixed-radius circle around a planar centre.
type Buffer struct {
	Center r2.Point
	Radius float64
}

// Contains reports whether p lies within the buffer under proj.
func (b Buffer) Contains(proj Projector, p r2.Point) bool {
	return proj.Distance(b.Center, p) <= b.Radius
}

// LoadAreas decodes a GeoJSON FeatureCollection of polygons.
func LoadAreas(data []byte, props AreaProperties) ([]Area, error) {
	var fc geojson.FeatureCollection
	if err := json.Unmarshal(data, &fc); err != nil {
		return nil, fmt.Errorf("decode geojson: %w", err)
	}
	if props.Name == "" {
		props.Name = DefaultNameProperty
	}
	degrees := NewGeodesic()
	var areas []Area
	for i, f := range fc.Features {
		if f == nil || f.Geometry == nil {
			continue
		}
		switch f.Geometry.(type) {
		case *geom.Polygon, *geom.MultiPolygon, *geom.Point:
		default:
			return nil, fmt.Errorf("feature %d: unsupported geometry %T", i, f.Geometry)
		}
		a := Area{
			ID:    fmt.Sprint(f.ID),
			Name:  property(f.Properties, props.Name),
			Group: property(f.Properties, props.Group),
		}
		g, ok := usableGeometry(f.Geometry)
		if !ok {
			monitoring.Logf("geo: skipping feature %d (%s): empty or degenerate geometry", i, a.Name)
			continue
		}
		a.Geometry = g
		c, err := PlanarCentroid(g, degrees)
		if err != nil {
			return nil, fmt.Errorf("feature %d (%s): %w", i, a.Name, err)
		}
		a.Centroid = degrees.Unproject(c)
		areas = append(areas, a)
	}
	if len(areas) == 0 {
		return nil, ErrNoAreas
	}
	return areas, nil
}

// usableGeometry drops rings with fewer than four positions and polygons left
// without an outer ring. It reports false when nothing drawable remains.
func usableGeometry(g geom.T) (geom.T, bool) {
	switch g := g.(type) {
	case *geom.Point:
		return g, !g.Empty() && g.Stride() >= 2
	case *geom.Polygon:
		p, ok := usablePolygon(g)
		return p, ok
	case *geom.MultiPolygon:
		if g.Stride() < 2 {
			return nil, false
		}
		out := geom.NewMultiPolygon(g.Layout())
		for i, ends := range g.Endss() {
			if len(ends) == 0 {
				continue
			}
			p, ok := usablePolygon(g.Polygon(i))
			if !ok {
				continue
			}
			if err := out.Push(p); err != nil {
				return nil, false
			}
		}
		return out, out.NumPolygons() > 0
	default:
		return nil, false
	}
}

func usablePolygon(p *geom.Polygon) (*geom.Polygon, bool) {
	if p.Stride() < 2 || p.NumLinearRings() == 0 {
		return nil, false
	}
	if p.LinearRing(0).NumCoords() < minRingCoords {
		return nil, false
	}
	out := geom.NewPolygon(p.Layout())
	for i := 0; i < p.NumLinearRings(); i++ {
		ring := p.LinearRing(i)
		if ring.NumCoords() < minRingCoords {
			continue
		}
		if err := out.Push(ring); err != nil {
			return nil, false
		}
	}
	return out, true
}

// minRingCoords is a closed triangle.
const minRingCoords = 4

// property reads key case-insensitively and renders it as text.
func property(props map[string]interface{}, key string) string {
	if key == "" {
		return ""
	}
	if v, ok := props[key]; ok && v != nil {
		return strings.TrimSpace(fmt.Sprint(v))
	}
	for k, v := range props {
		if strings.EqualFold(k, key) && v != nil {
			return strings.TrimSpace(fmt.Sprint(v))
		}
	}
	return ""
}

// PlanarCentroid reprojects g with proj and returns its centroid in planar coordinates.
func PlanarCentroid(g geom.T, proj Projector) (r2.Point, error) {
	projected, err := projectGeometry(g, proj)
	if err != nil {
		return r2.Point{}, err
	}
	if p, ok := projected.(*geom.Point); ok {
		return r2.Point{X: p.X(), Y: p.Y()}, nil
	}
	c, err := xy.Centroid(projected)
	if err != nil {
		return r2.Point{}, fmt.Errorf("centroid: %w", err)
	}
	return r2.Point{X: c[0], Y: c[1]}, nil
}

func projectGeometry(g geom.T, proj Projector) (geom.T, error) {
	flat := projectFlat(g.FlatCoords(), g.Stride(), proj)
	switch g := g.(type) {
	case *geom.Point:
		return geom.NewPointFlat(g.Layout(), flat), nil
	case *geom.Polygon:
		return geom.NewPolygonFlat(g.Layout(), flat, g.Ends()), nil
	case *geom.MultiPolygon:
		return geom.NewMultiPolygonFlat(g.Layout(), flat, g.Endss()), nil
	default:
		return nil, fmt.Errorf("unsupported geometry %T", g)
	}
}

// projectFlat maps the X (lon) and Y (lat) ordinates and keeps any others.
func projectFlat(flat []float64, stride int, proj Projector) []float64 {
	out := make([]float64, len(flat))
	copy(out, flat)
	if stride < 2 {
		return out
	}
	for i := 0; i+1 < len(out); i += stride {
		p := proj.Project(s2.LatLngFromDegrees(out[i+1], out[i]))
		out[i], out[i+1] = p.X, p.Y
	}
	return out
}

// Rings returns the outer and inner rings of a polygonal geometry as lon/lat pairs.
func Rings(g geom.T) [][][2]float64 {
	var out [][][2]float64
	addPolygon := func(p *geom.Polygon) {
		for i := 0; i < p.NumLinearRings(); i++ {
			coords := p.LinearRing(i).Coords()
			ring := make([][2]float64, len(coords))
			for k, c := range coords {
				ring[k] = [2]float64{c.X(), c.Y()}
			}
			out = append(out, ring)
		}
	}
	switch g := g.(type) {
	case *geom.Polygon:
		addPolygon(g)
	case *geom.MultiPolygon:
		for i := 0; i < g.NumPolygons(); i++ {
			addPolygon(g.Polygon(i))
		}
	}
	return out
}
