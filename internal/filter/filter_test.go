package filter

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/KaramelBytes/hospimap-cli/internal/columns"
	"github.com/KaramelBytes/hospimap-cli/internal/dataset"
)

func sample() (*dataset.Table, columns.RoleMap) {
	t := dataset.New("h.csv",
		[]string{"Nombre", "Departamento", "Tipo"},
		[][]string{
			{"Hospital Loayza", "Lima", "Hospital"},
			{"Clínica San Pablo", "Lima", "Clínica"},
			{"Hospital Regional", "Cusco", "Hospital"},
			{"", "Cusco", "Posta"},
			{"hospital de apoyo", "Loreto", "Hospital"},
		})
	m, _ := columns.Resolve(t.Columns(), nil)
	return t, m
}

func TestApply_NoFilterKeepsContent(t *testing.T) {
	tbl, roles := sample()
	got := Apply(tbl, roles, NoFilter())
	if diff := cmp.Diff(tbl.Rows(), got.Rows()); diff != "" {
		t.Fatalf("no-op filter changed content (-want +got):\n%s", diff)
	}
	if got == tbl {
		t.Fatal("expected a new table")
	}
}

func TestApply_RegionTypeName(t *testing.T) {
	tbl, roles := sample()
	got := Apply(tbl, roles, Criteria{Region: "Lima", Type: All})
	if got.Len() != 2 {
		t.Fatalf("region filter: expected 2 rows, got %d", got.Len())
	}
	got = Apply(tbl, roles, Criteria{Region: All, Type: "Hospital", Name: "HOSPITAL"})
	want := []string{"Hospital Loayza", "Hospital Regional", "hospital de apoyo"}
	if diff := cmp.Diff(want, got.Column("nombre")); diff != "" {
		t.Fatalf("type+name filter mismatch (-want +got):\n%s", diff)
	}
	got = Apply(tbl, roles, Criteria{Region: "Cusco", Name: "posta"})
	if got.Len() != 0 {
		t.Fatalf("empty names must never match, got %d rows", got.Len())
	}
	if tbl.Len() != 5 {
		t.Fatal("source table was modified")
	}
}

func TestApply_UnresolvedRoleSkipsFilter(t *testing.T) {
	tbl, roles := sample()
	roles[columns.Type] = ""
	got := Apply(tbl, roles, Criteria{Type: "Posta"})
	if got.Len() != tbl.Len() {
		t.Fatalf("unresolved type must not filter, got %d rows", got.Len())
	}
}

func TestApply_NoMatchIsEmpty(t *testing.T) {
	tbl, roles := sample()
	if got := Apply(tbl, roles, Criteria{Region: "Tacna"}); got.Len() != 0 {
		t.Fatalf("expected empty table, got %d rows", got.Len())
	}
}

func TestOptions(t *testing.T) {
	tbl, _ := sample()
	want := []string{"Cusco", "Lima", "Loreto"}
	if diff := cmp.Diff(want, Options(tbl, "departamento")); diff != "" {
		t.Fatalf("options mismatch (-want +got):\n%s", diff)
	}
}
