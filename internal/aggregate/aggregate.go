// Package aggregate computes the frequency tables behind the dashboard charts.
package aggregate

import (
	"fmt"
	"sort"

	"github.com/KaramelBytes/hospimap-cli/internal/columns"
	"github.com/KaramelBytes/hospimap-cli/internal/dataset"
)

const (
	// DefaultTopN is the number of categories shown in the bar chart.
	DefaultTopN = 10
	// MissingLabel is the category label used for empty values.
	MissingLabel = "s/d"
)

// CategoryCount is one bar of a frequency chart.
type CategoryCount struct {
	Value string `json:"value" yaml:"value"`
	Count int    `json:"count" yaml:"count"`
}

// UnknownColumnError indicates a column that is not part of the table.
type UnknownColumnError struct{ Column string }

func (e *UnknownColumnError) Error() string { return fmt.Sprintf("unknown column %q", e.Column) }

// NoGroupingColumnError indicates no categorical column is available for the chart.
type NoGroupingColumnError struct{}

func (*NoGroupingColumnError) Error() string {
	return "no column available for grouping; select a text column"
}

// TopN counts the distinct values of col, orders them by descending count and keeps the
// first n. Empty values count as MissingLabel. Ties keep first-occurrence order.
func TopN(t *dataset.Table, col string, n int) ([]CategoryCount, error) {
	if !t.Has(col) {
		return nil, &UnknownColumnError{Column: col}
	}
	var order []string
	counts := map[string]int{}
	for _, v := range t.Column(col) {
		if v == "" {
			v = MissingLabel
		}
		if _, seen := counts[v]; !seen {
			order = append(order, v)
		}
		counts[v]++
	}
	out := make([]CategoryCount, len(order))
	for i, v := range order {
		out[i] = CategoryCount{Value: v, Count: counts[v]}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Count > out[j].Count })
	if n >= 0 && len(out) > n {
		out = out[:n]
	}
	return out, nil
}

// CountByKey counts rows per distinct value of key, including the empty value.
// The counts sum to t.Len().
func CountByKey(t *dataset.Table, key string) (map[string]int, error) {
	if !t.Has(key) {
		return nil, &UnknownColumnError{Column: key}
	}
	out := map[string]int{}
	for _, v := range t.Column(key) {
		out[v]++
	}
	return out, nil
}

// GroupingColumn picks the chart column: an explicit pick, else the region column,
// else the type column.
func GroupingColumn(t *dataset.Table, roles columns.RoleMap, pick string) (string, error) {
	if pick != "" {
		if !t.Has(pick) {
			return "", &UnknownColumnError{Column: pick}
		}
		return pick, nil
	}
	if col, ok := roles.Column(columns.Region); ok {
		return col, nil
	}
	if col, ok := roles.Column(columns.Type); ok {
		return col, nil
	}
	return "", &NoGroupingColumnError{}
}

// KPIs are the headline counters of the dashboard.
type KPIs struct {
	Total    int `json:"total"`
	Filtered int `json:"filtered"`
	// Regions is the number of distinct regions in the full table; -1 when the region role is unresolved.
	Regions int `json:"regions"`
}

// RegionsLabel renders Regions, using MissingLabel when unavailable.
func (k KPIs) RegionsLabel() string {
	if k.Regions < 0 {
		return MissingLabel
	}
	return fmt.Sprintf("%d", k.Regions)
}

// Summarize computes KPIs over the full and filtered tables.
func Summarize(full, filtered *dataset.Table, roles columns.RoleMap) KPIs {
	k := KPIs{Total: full.Len(), Filtered: filtered.Len(), Regions: -1}
	if col, ok := roles.Column(columns.Region); ok {
		distinct := map[string]bool{}
		for _, v := range full.Column(col) {
			if v != "" {
				distinct[v] = true
			}
		}
		k.Regions = len(distinct)
	}
	return k
}
