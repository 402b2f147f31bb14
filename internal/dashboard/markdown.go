package dashboard

import (
	"fmt"
	"strings"

	"github.com/KaramelBytes/hospimap-cli/internal/columns"
)

// Markdown renders a compact report of the view for the terminal or a standalone doc.
func (v *View) Markdown() string {
	var b strings.Builder
	b.WriteString("[SUMMARY]\n")
	b.WriteString(fmt.Sprintf("Total records: %d\n", v.KPIs.Total))
	b.WriteString(fmt.Sprintf("Filtered records: %d\n", v.KPIs.Filtered))
	b.WriteString(fmt.Sprintf("Regions: %s\n", v.KPIs.RegionsLabel()))
	if c := v.Selection.Criteria; c.Region != "" || c.Type != "" || c.Name != "" {
		b.WriteString(fmt.Sprintf("Filters: region=%s type=%s search=%q\n", orAll(c.Region), orAll(c.Type), c.Name))
	}

	b.WriteString("\n[COLUMNS]\n")
	for _, r := range columns.Roles() {
		col := v.Roles[r.String()]
		if col == "" {
			col = "(unresolved)"
		}
		b.WriteString(fmt.Sprintf("- %s: %s\n", r, col))
	}

	if v.GroupBy != "" {
		b.WriteString(fmt.Sprintf("\n[TOP %d BY %s]\n", len(v.Top), strings.ToUpper(v.GroupBy)))
		for _, c := range v.Top {
			b.WriteString(fmt.Sprintf("- %s: %d\n", safeVal(c.Value), c.Count))
		}
	}

	if len(v.Preview) > 0 {
		b.WriteString(fmt.Sprintf("\n[PREVIEW] first %d rows\n", len(v.Preview)))
		b.WriteString("| " + strings.Join(v.Columns, " | ") + " |\n")
		b.WriteString("|" + strings.Repeat(" --- |", len(v.Columns)) + "\n")
		for _, row := range v.Preview {
			cells := make([]string, len(row))
			for i, c := range row {
				cells[i] = safeVal(c)
			}
			b.WriteString("| " + strings.Join(cells, " | ") + " |\n")
		}
	}

	if len(v.Notices) > 0 {
		b.WriteString("\n[NOTICES]\n")
		for _, n := range v.Notices {
			b.WriteString("- " + n.String() + "\n")
		}
	}
	return b.String()
}

func orAll(s string) string {
	if s == "" {
		return "all"
	}
	return s
}

func safeVal(s string) string { return strings.ReplaceAll(strings.ReplaceAll(s, "\n", " "), "|", "/") }
