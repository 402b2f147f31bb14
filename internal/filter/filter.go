// Package filter narrows a table by the user's current selection.
package filter

import (
	"sort"
	"strings"

	"github.com/KaramelBytes/hospimap-cli/internal/columns"
	"github.com/KaramelBytes/hospimap-cli/internal/dataset"
)

// All is the selector sentinel that disables an equality filter.
const All = "all"

// Criteria is the selection of one interaction. Empty Region or Type behave like All.
type Criteria struct {
	Region string `json:"region" yaml:"region"`
	Type   string `json:"type" yaml:"type"`
	Name   string `json:"name" yaml:"name"`
}

// NoFilter is the criteria that keeps every row.
func NoFilter() Criteria { return Criteria{Region: All, Type: All} }

func isAll(v string) bool {
	v = strings.TrimSpace(v)
	return v == "" || strings.EqualFold(v, All)
}

// Apply filters t by region equality, then type equality, then a case-insensitive
// name substring. Unresolved roles skip their filter. The input table is not modified
// and the result may be empty.
func Apply(t *dataset.Table, roles columns.RoleMap, c Criteria) *dataset.Table {
	out := t
	if col, ok := roles.Column(columns.Region); ok && !isAll(c.Region) {
		out = equals(out, col, c.Region)
	}
	if col, ok := roles.Column(columns.Type); ok && !isAll(c.Type) {
		out = equals(out, col, c.Type)
	}
	if col, ok := roles.Column(columns.Name); ok && strings.TrimSpace(c.Name) != "" {
		out = contains(out, col, c.Name)
	}
	if out == t {
		return t.Select(func(dataset.Record) bool { return true })
	}
	return out
}

func equals(t *dataset.Table, col, want string) *dataset.Table {
	j, ok := t.Index(col)
	if !ok {
		return t
	}
	return t.Select(func(r dataset.Record) bool { return r[j] == want })
}

func contains(t *dataset.Table, col, text string) *dataset.Table {
	j, ok := t.Index(col)
	if !ok {
		return t
	}
	needle := strings.ToLower(text)
	return t.Select(func(r dataset.Record) bool {
		v := r[j]
		return v != "" && strings.Contains(strings.ToLower(v), needle)
	})
}

// Options returns the sorted distinct non-empty values of col, for selectors.
func Options(t *dataset.Table, col string) []string {
	seen := map[string]bool{}
	var out []string
	for _, v := range t.Column(col) {
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}
