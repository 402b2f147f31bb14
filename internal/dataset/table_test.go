package dataset

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestNormalizeColumns_HospitalHeader(t *testing.T) {
	got := NormalizeColumns([]string{"Nombre ", "LATITUD", "Longitud", "Departamento"})
	want := []string{"nombre", "latitud", "longitud", "departamento"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("normalized columns mismatch (-want +got):\n%s", diff)
	}
}

func TestNormalizeColumnName_Cases(t *testing.T) {
	cases := map[string]string{
		"  Región  ":               "region",
		"Clasificación":            "clasificacion",
		"Código IPRESS":            "codigo_ipress",
		"--Nombre del Estab.--":    "nombre_del_estab",
		"Año / Mes":                "ano_mes",
		"ÁMBITO":                   "ambito",
		"lat (°)":                  "lat",
		"Ñandú":                    "nandu",
		"___":                      "",
		"Categoría\tdel  servicio": "categoria_del_servicio",
	}
	for in, want := range cases {
		if got := NormalizeColumnName(in); got != want {
			t.Errorf("NormalizeColumnName(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestNormalizeColumns_Idempotent(t *testing.T) {
	raw := []string{"Nombre del Establecimiento", "Región", "LATITUD", "Longitud (°)", "", "Tipo", "tipo"}
	once := NormalizeColumns(raw)
	twice := NormalizeColumns(once)
	if diff := cmp.Diff(once, twice); diff != "" {
		t.Fatalf("normalization is not idempotent (-once +twice):\n%s", diff)
	}
}

func TestNormalizeColumns_UniqueAndNamed(t *testing.T) {
	got := NormalizeColumns([]string{"Tipo", "TIPO ", "", "tipo_2"})
	want := []string{"tipo", "tipo_2", "unnamed_2", "tipo_2_2"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("unexpected names (-want +got):\n%s", diff)
	}
}

func TestNew_TrimsPadsAndInfersKinds(t *testing.T) {
	tbl := New("hospitales.csv",
		[]string{"Nombre", "Latitud", "Departamento"},
		[][]string{
			{"  Hospital A ", "-12.05", " Lima"},
			{"Hospital B", ""},
		})
	if tbl.Len() != 2 {
		t.Fatalf("expected 2 rows, got %d", tbl.Len())
	}
	if got := tbl.Value(0, "nombre"); got != "Hospital A" {
		t.Fatalf("expected trimmed name, got %q", got)
	}
	if got := tbl.Value(1, "departamento"); got != "" {
		t.Fatalf("expected padded empty cell, got %q", got)
	}
	if k := tbl.Kind("latitud"); k != KindNumeric {
		t.Fatalf("latitud kind = %q, want numeric", k)
	}
	if diff := cmp.Diff([]string{"nombre", "departamento"}, tbl.TextColumns()); diff != "" {
		t.Fatalf("text columns mismatch (-want +got):\n%s", diff)
	}
}

func TestSelect_LeavesSourceUntouched(t *testing.T) {
	tbl := New("x", []string{"dep"}, [][]string{{"Lima"}, {"Cusco"}, {"Lima"}})
	before := tbl.Rows()
	sub := tbl.Select(func(r Record) bool { return r[0] == "Lima" })
	if sub.Len() != 2 {
		t.Fatalf("expected 2 selected rows, got %d", sub.Len())
	}
	if diff := cmp.Diff(before, tbl.Rows()); diff != "" {
		t.Fatalf("source table changed (-before +after):\n%s", diff)
	}
	cp := sub.Rows()
	cp[0][0] = "mutated"
	if sub.Value(0, "dep") != "Lima" {
		t.Fatal("Rows must return a copy")
	}
}

func TestHead(t *testing.T) {
	tbl := New("x", []string{"a"}, [][]string{{"1"}, {"2"}, {"3"}})
	if tbl.Head(2).Len() != 2 || tbl.Head(10).Len() != 3 || tbl.Head(-1).Len() != 0 {
		t.Fatal("Head bounds are wrong")
	}
}

func TestParseNumber(t *testing.T) {
	cases := []struct {
		in   string
		want float64
		ok   bool
	}{
		{"-12.05", -12.05, true},
		{"-77,03", -77.03, true},
		{"1.234,5", 1234.5, true},
		{"1,234.5", 1234.5, true},
		{" 42 ", 42, true},
		{"", 0, false},
		{"s/d", 0, false},
		{"NaN", 0, false},
		{"Inf", 0, false},
	}
	for _, c := range cases {
		got, ok := ParseNumber(c.in)
		if ok != c.ok {
			t.Errorf("ParseNumber(%q) ok=%v, want %v", c.in, ok, c.ok)
			continue
		}
		if ok && math.Abs(got-c.want) > 1e-9 {
			t.Errorf("ParseNumber(%q) = %v, want %v", c.in, got, c.want)
		}
	}
}

func TestMatchKey(t *testing.T) {
	if MatchKey(" San Martín ") != MatchKey("SAN MARTIN") {
		t.Fatal("expected accent- and case-insensitive match keys")
	}
}
