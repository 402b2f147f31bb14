// Package geo holds the spatial side of the dashboard: district areas, hospital points,
// the choropleth join and the fixed-radius proximity analysis.
package geo

import (
	"fmt"
	"math"
	"strings"

	"github.com/golang/geo/r2"
	"github.com/golang/geo/s2"
)

// EarthRadiusMeters is the WGS84 semi-major axis used by EPSG:3857.
const EarthRadiusMeters = 6378137.0

// maxMercatorLat is the latitude where the square Web Mercator world ends.
const maxMercatorLat = 85.05112878

// Projector maps geographic coordinates to a planar system where Distance is in metres.
type Projector interface {
	Name() string
	Project(ll s2.LatLng) r2.Point
	Unproject(p r2.Point) s2.LatLng
	Distance(a, b r2.Point) float64
}

// Projection names accepted by ParseProjection.
const (
	ProjectionWebMercator = "web-mercator"
	ProjectionGeodesic    = "geodesic"
)

// ParseProjection returns the projector for name. Empty selects Web Mercator.
func ParseProjection(name string) (Projector, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", ProjectionWebMercator, "epsg:3857", "mercator":
		return NewWebMercator(), nil
	case ProjectionGeodesic, "great-circle":
		return NewGeodesic(), nil
	default:
		return nil, fmt.Errorf("unknown projection %q (use %s or %s)", name, ProjectionWebMercator, ProjectionGeodesic)
	}
}

// WebMercator is EPSG:3857: planar metres with Euclidean distance.
type WebMercator struct {
	proj s2.Projection
}

// NewWebMercator returns the EPSG:3857 projector.
func NewWebMercator() *WebMercator {
	return &WebMercator{proj: s2.NewMercatorProjection(math.Pi * EarthRadiusMeters)}
}

func (*WebMercator) Name() string { return ProjectionWebMercator }

func (w *WebMercator) Project(ll s2.LatLng) r2.Point {
	lat := ll.Lat.Degrees()
	if lat > maxMercatorLat {
		lat = maxMercatorLat
	} else if lat < -maxMercatorLat {
		lat = -maxMercatorLat
	}
	return w.proj.FromLatLng(s2.LatLngFromDegrees(lat, ll.Lng.Degrees()))
}

func (w *WebMercator) Unproject(p r2.Point) s2.LatLng { return w.proj.ToLatLng(p) }

func (*WebMercator) Distance(a, b r2.Point) float64 { return a.Sub(b).Norm() }

// Geodesic keeps plate carrée coordinates for centroids and measures great-circle
// distances on the sphere, so buffers are true circles on the ground.
type Geodesic struct {
	proj s2.Projection
}

// NewGeodesic returns the great-circle projector.
func NewGeodesic() *Geodesic {
	return &Geodesic{proj: s2.NewPlateCarreeProjection(180)}
}

func (*Geodesic) Name() string { return ProjectionGeodesic }

func (g *Geodesic) Project(ll s2.LatLng) r2.Point { return g.proj.FromLatLng(ll) }

func (g *Geodesic) Unproject(p r2.Point) s2.LatLng { return g.proj.ToLatLng(p) }

func (g *Geodesic) Distance(a, b r2.Point) float64 {
	return g.Unproject(a).Distance(g.Unproject(b)).Radians() * EarthRadiusMeters
}
