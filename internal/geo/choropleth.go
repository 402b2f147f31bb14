package geo

import (
	"sort"

	"github.com/KaramelBytes/hospimap-cli/internal/dataset"
)

// JoinCounts copies areas and sets Count from counts, matching area names to keys after
// folding case and accents. Unmatched areas keep Count 0 with HasData false.
func JoinCounts(areas []Area, counts map[string]int) []Area {
	folded := make(map[string]int, len(counts))
	for k, n := range counts {
		if k == "" {
			continue
		}
		folded[dataset.MatchKey(k)] += n
	}
	out := make([]Area, len(areas))
	for i, a := range areas {
		n, ok := folded[dataset.MatchKey(a.Name)]
		a.Count, a.HasData = n, ok
		out[i] = a
	}
	return out
}

// TopByCount returns up to n areas with the highest counts, ties in input order.
func TopByCount(areas []Area, n int) []Area {
	out := make([]Area, len(areas))
	copy(out, areas)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Count > out[j].Count })
	if n >= 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

// WithoutHospitals returns the areas with a zero count, matched or not.
func WithoutHospitals(areas []Area) []Area {
	var out []Area
	for _, a := range areas {
		if a.Count == 0 {
			out = append(out, a)
		}
	}
	return out
}
