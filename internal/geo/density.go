package geo

import (
	"fmt"

	"github.com/golang/geo/r2"

	"github.com/KaramelBytes/hospimap-cli/internal/dataset"
)

// DefaultRadiusMeters is the proximity buffer radius.
const DefaultRadiusMeters = 10000.0

// DefaultDensityGroups are the departments compared on the proximity map.
var DefaultDensityGroups = []string{"LIMA", "LORETO"}

// ComputeDensity returns a copy of areas where each area carries a buffer of radius metres
// around its planar centroid and the number of points inside it.
//
// Every point is tested against every buffer, O(areas × points). A spatial index would be
// the next step for national-scale inputs.
func ComputeDensity(areas []Area, points []Point, radius float64, proj Projector) ([]Area, error) {
	if radius <= 0 {
		return nil, fmt.Errorf("buffer radius must be positive, got %v", radius)
	}
	projected := make([]r2.Point, len(points))
	for i, p := range points {
		projected[i] = proj.Project(p.LatLng())
	}
	out := make([]Area, len(areas))
	for i, a := range areas {
		c, err := PlanarCentroid(a.Geometry, proj)
		if err != nil {
			return nil, fmt.Errorf("area %q: %w", a.Name, err)
		}
		b := Buffer{Center: c, Radius: radius}
		n := 0
		for _, p := range projected {
			if b.Contains(proj, p) {
				n++
			}
		}
		a.Buffer = &b
		a.Centroid = proj.Unproject(c)
		a.Density = n
		out[i] = a
	}
	return out, nil
}

// Extreme holds the highest and lowest density areas of one group.
type Extreme struct {
	Group string `json:"group"`
	Max   Area   `json:"max"`
	Min   Area   `json:"min"`
}

// ExtremesByGroup finds, for each requested group, the areas with maximum and minimum
// Density. Groups match area groups after folding case and accents. Groups without
// member areas are left out. Ties go to the first area in input order.
func ExtremesByGroup(areas []Area, groups []string) []Extreme {
	var out []Extreme
	done := map[string]bool{}
	for _, g := range groups {
		key := dataset.MatchKey(g)
		if done[key] {
			continue
		}
		done[key] = true
		var (
			ext   Extreme
			found bool
		)
		for _, a := range areas {
			if dataset.MatchKey(a.Group) != key {
				continue
			}
			if !found {
				ext = Extreme{Group: g, Max: a, Min: a}
				found = true
				continue
			}
			if a.Density > ext.Max.Density {
				ext.Max = a
			}
			if a.Density < ext.Min.Density {
				ext.Min = a
			}
		}
		if found {
			out = append(out, ext)
		}
	}
	return out
}
