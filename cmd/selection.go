package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/hospimap-cli/internal/columns"
	"github.com/KaramelBytes/hospimap-cli/internal/dashboard"
	"github.com/KaramelBytes/hospimap-cli/internal/dataset"
	"github.com/KaramelBytes/hospimap-cli/internal/filter"
)

// Selection flags shared by the view commands.
var (
	selRegion  string
	selType    string
	selSearch  string
	selGroupBy string
	selScope   string
	selColumns = map[columns.Role]*string{}
)

func addSelectionFlags(c *cobra.Command) {
	f := c.Flags()
	f.StringVar(&selRegion, "region", filter.All, "region to keep ('all' keeps every region)")
	f.StringVar(&selType, "type", filter.All, "establishment type to keep ('all' keeps every type)")
	f.StringVar(&selSearch, "search", "", "case-insensitive substring of the establishment name")
	f.StringVar(&selGroupBy, "group-by", "", "column for the distribution chart (default: region, else type)")
	f.StringVar(&selScope, "scope", dashboard.ScopeFull, "rows used by district and proximity views: full|filtered")
	for _, r := range columns.Roles() {
		p, ok := selColumns[r]
		if !ok {
			p = new(string)
			selColumns[r] = p
		}
		f.StringVar(p, roleFlag(r), "", fmt.Sprintf("column to use as %s (overrides detection)", r))
	}
}

func roleFlag(r columns.Role) string {
	switch r {
	case columns.Latitude:
		return "lat-col"
	case columns.Longitude:
		return "lon-col"
	}
	return r.String() + "-col"
}

func selectionFromFlags() (dashboard.Selection, error) {
	sel := dashboard.DefaultSelection()
	sel.Criteria = filter.Criteria{Region: selRegion, Type: selType, Name: selSearch}
	sel.GroupBy = selGroupBy
	switch selScope {
	case "", dashboard.ScopeFull:
		sel.Scope = dashboard.ScopeFull
	case dashboard.ScopeFiltered:
		sel.Scope = dashboard.ScopeFiltered
	default:
		return sel, fmt.Errorf("invalid --scope: %s (use full|filtered)", selScope)
	}
	for r, p := range selColumns {
		if *p != "" {
			if sel.Overrides == nil {
				sel.Overrides = map[string]string{}
			}
			sel.Overrides[r.String()] = *p
		}
	}
	return sel, nil
}

func printNotices(ns dataset.Notices) {
	for _, n := range ns {
		fmt.Fprintf(os.Stderr, "⚠ %s\n", n)
	}
}

// outputPath resolves name inside the configured output directory unless explicit is set.
func outputPath(explicit, name string) string {
	if explicit != "" {
		return explicit
	}
	dir := "."
	if cfg != nil && cfg.OutputDir != "" {
		dir = cfg.OutputDir
	}
	return filepath.Join(dir, name)
}
