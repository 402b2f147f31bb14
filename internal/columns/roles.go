// Package columns infers which table columns play each logical role.
package columns

import (
	"fmt"
	"strings"

	"github.com/KaramelBytes/hospimap-cli/internal/dataset"
)

// Role is a logical column purpose independent of its header text.
type Role int

const (
	Latitude Role = iota
	Longitude
	Region
	Type
	Name
	District
	numRoles
)

var roleNames = [numRoles]string{"latitude", "longitude", "region", "type", "name", "district"}

func (r Role) String() string {
	if r < 0 || r >= numRoles {
		return fmt.Sprintf("role(%d)", int(r))
	}
	return roleNames[r]
}

// Roles lists every role in resolution order.
func Roles() []Role {
	out := make([]Role, numRoles)
	for i := range out {
		out[i] = Role(i)
	}
	return out
}

// ParseRole maps a role name back to its Role.
func ParseRole(s string) (Role, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, n := range roleNames {
		if n == s {
			return Role(i), true
		}
	}
	return 0, false
}

// Candidate vocabularies. Coordinates match by substring over every column;
// the categorical roles only match these exact names.
var (
	LatitudeSubstrings  = []string{"lat"}
	LongitudeSubstrings = []string{"lon", "lng", "long"}
	RegionNames         = []string{"departamento", "region", "región", "ambito", "dep"}
	TypeNames           = []string{"tipo", "categoria", "nivel", "clasificacion", "clasificación"}
	NameNames           = []string{"establecimiento", "hospital", "nombre", "name"}
	DistrictNames       = []string{"distrito", "district"}
)

// RoleMap maps each role to a column name; "" means unresolved.
// It is a value type and is passed by value to downstream stages.
type RoleMap [numRoles]string

// Column returns the column for r and whether it is resolved.
func (m RoleMap) Column(r Role) (string, bool) {
	if r < 0 || r >= numRoles {
		return "", false
	}
	return m[r], m[r] != ""
}

// Resolved reports whether every given role has a column.
func (m RoleMap) Resolved(roles ...Role) bool {
	for _, r := range roles {
		if _, ok := m.Column(r); !ok {
			return false
		}
	}
	return true
}

// Unresolved lists the roles without a column.
func (m RoleMap) Unresolved() []Role {
	var out []Role
	for _, r := range Roles() {
		if m[r] == "" {
			out = append(out, r)
		}
	}
	return out
}

// Notices reports one UnresolvedRole notice per unresolved role.
func (m RoleMap) Notices() dataset.Notices {
	var out dataset.Notices
	for _, r := range m.Unresolved() {
		out = append(out, dataset.Notice{
			Kind:    dataset.NoticeUnresolvedRole,
			Subject: r.String(),
			Message: fmt.Sprintf("no column found for %s; pick one manually to enable it", r),
		})
	}
	return out
}

// AsMap renders the mapping with role names as keys, for JSON and display.
func (m RoleMap) AsMap() map[string]string {
	out := make(map[string]string, numRoles)
	for _, r := range Roles() {
		out[r.String()] = m[r]
	}
	return out
}
