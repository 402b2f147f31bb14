package columns

import (
	"fmt"
	"strings"
)

// Overrides holds explicit user choices per role. Empty entries fall back to inference.
type Overrides map[Role]string

// UnknownColumnError indicates an override that names a column the table does not have.
type UnknownColumnError struct {
	Role   Role
	Column string
}

func (e *UnknownColumnError) Error() string {
	return fmt.Sprintf("column %q selected for %s does not exist", e.Column, e.Role)
}

// Resolve builds the role mapping for the given normalized columns. Overrides always win
// over inference; roles with neither resolve to "".
func Resolve(cols []string, ov Overrides) (RoleMap, error) {
	var m RoleMap
	present := make(map[string]bool, len(cols))
	for _, c := range cols {
		present[c] = true
	}
	for _, r := range Roles() {
		if pick := strings.TrimSpace(ov[r]); pick != "" {
			if !present[pick] {
				return RoleMap{}, &UnknownColumnError{Role: r, Column: pick}
			}
			m[r] = pick
			continue
		}
		m[r] = infer(r, cols, present)
	}
	return m, nil
}

func infer(r Role, cols []string, present map[string]bool) string {
	switch r {
	case Latitude:
		return firstContaining(cols, LatitudeSubstrings)
	case Longitude:
		return firstContaining(cols, LongitudeSubstrings)
	case Region:
		return firstPresent(RegionNames, present)
	case Type:
		return firstPresent(TypeNames, present)
	case Name:
		return firstPresent(NameNames, present)
	case District:
		return firstPresent(DistrictNames, present)
	}
	return ""
}

// firstContaining scans columns in table order.
func firstContaining(cols []string, subs []string) string {
	for _, c := range cols {
		for _, s := range subs {
			if strings.Contains(c, s) {
				return c
			}
		}
	}
	return ""
}

// firstPresent scans the vocabulary in priority order.
func firstPresent(names []string, present map[string]bool) string {
	for _, n := range names {
		if present[n] {
			return n
		}
	}
	return ""
}
