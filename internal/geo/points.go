package geo

import (
	"math"

	"github.com/golang/geo/s2"
	"gonum.org/v1/gonum/stat"

	"github.com/KaramelBytes/hospimap-cli/internal/columns"
	"github.com/KaramelBytes/hospimap-cli/internal/dataset"
)

// Point is a hospital location taken from one table row.
type Point struct {
	Row int     `json:"row"`
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// LatLng returns the point as an s2 coordinate.
func (p Point) LatLng() s2.LatLng { return s2.LatLngFromDegrees(p.Lat, p.Lng) }

// Points extracts the rows with valid coordinates. It reports false when the latitude
// or longitude role is unresolved. Rows whose coordinates are missing, not numeric or
// out of range are dropped.
func Points(t *dataset.Table, roles columns.RoleMap) ([]Point, bool) {
	latCol, okLat := roles.Column(columns.Latitude)
	lngCol, okLng := roles.Column(columns.Longitude)
	if !okLat || !okLng || !t.Has(latCol) || !t.Has(lngCol) {
		return nil, false
	}
	lats, lngs := t.Column(latCol), t.Column(lngCol)
	out := make([]Point, 0, len(lats))
	for i := range lats {
		lat, ok := dataset.ParseNumber(lats[i])
		if !ok || math.Abs(lat) > 90 {
			continue
		}
		lng, ok := dataset.ParseNumber(lngs[i])
		if !ok || math.Abs(lng) > 180 {
			continue
		}
		out = append(out, Point{Row: i, Lat: lat, Lng: lng})
	}
	return out, true
}

// Center returns the mean coordinate of points.
func Center(points []Point) (lat, lng float64, ok bool) {
	if len(points) == 0 {
		return 0, 0, false
	}
	lats := make([]float64, len(points))
	lngs := make([]float64, len(points))
	for i, p := range points {
		lats[i], lngs[i] = p.Lat, p.Lng
	}
	return stat.Mean(lats, nil), stat.Mean(lngs, nil), true
}
