package parser_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/xuri/excelize/v2"

	"github.com/KaramelBytes/hospimap-cli/internal/parser"
)

func TestParseCSV_NormalizesHeader(t *testing.T) {
	content := "\xef\xbb\xbfNombre ,LATITUD,Longitud,Departamento\n" +
		"Hospital A,-12.05,-77.03,Lima\n"
	tbl, err := parser.Parse("https://docs.google.com/spreadsheets/d/x/export?format=csv&gid=1", "text/csv", []byte(content))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	want := []string{"nombre", "latitud", "longitud", "departamento"}
	if diff := cmp.Diff(want, tbl.Columns()); diff != "" {
		t.Fatalf("columns mismatch (-want +got):\n%s", diff)
	}
	if tbl.Len() != 1 || tbl.Value(0, "departamento") != "Lima" {
		t.Fatalf("unexpected rows: %v", tbl.Rows())
	}
}

func TestParseCSV_SemicolonAndShortRows(t *testing.T) {
	content := "Tipo;Región;Nombre\nHospital;Cusco\nClínica;Lima;Clínica B\n"
	tbl, err := parser.Parse("hospitales.csv", "", []byte(content))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if got := tbl.Value(0, "nombre"); got != "" {
		t.Fatalf("expected padded empty nombre, got %q", got)
	}
	if got := tbl.Value(1, "region"); got != "Lima" {
		t.Fatalf("expected region Lima, got %q", got)
	}
}

func TestParseTSV(t *testing.T) {
	content := "a,b\tc\n1,2\t3\n"
	tbl, err := parser.Parse("data.tsv", "", []byte(content))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if diff := cmp.Diff([]string{"a_b", "c"}, tbl.Columns()); diff != "" {
		t.Fatalf("columns mismatch (-want +got):\n%s", diff)
	}
}

func TestParseCSV_Errors(t *testing.T) {
	if _, err := parser.Parse("empty.csv", "", []byte("  \n")); !errors.Is(err, parser.ErrNoHeader) {
		t.Fatalf("expected ErrNoHeader, got %v", err)
	}
	if _, err := parser.Parse("bin.csv", "", []byte{0x00, 0x01, 0x02}); !errors.Is(err, parser.ErrUnsupported) {
		t.Fatalf("expected ErrUnsupported, got %v", err)
	}
	_, err := parser.Parse("wide.csv", "", []byte("a,b\n1,2,3\n"))
	if err == nil || !strings.Contains(err.Error(), "expected 2 fields") {
		t.Fatalf("expected field count error, got %v", err)
	}
	if _, err := parser.Parse("quote.csv", "", []byte("a,b\n\"x,2\n")); err == nil {
		t.Fatal("expected error for unterminated quote")
	}
}

func TestParseXLSX(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	rows := [][]interface{}{
		{"Nombre", "Latitud", "Longitud", "Departamento"},
		{"Hospital A", -12.05, -77.03, "Lima"},
		{"Hospital B", -3.75, -73.25, "Loreto"},
	}
	for i, r := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			t.Fatalf("cell name: %v", err)
		}
		if err := f.SetSheetRow("Sheet1", cell, &r); err != nil {
			t.Fatalf("set row: %v", err)
		}
	}
	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("write workbook: %v", err)
	}
	tbl, err := parser.Parse("hospitales.xlsx", "", buf.Bytes())
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if tbl.Len() != 2 {
		t.Fatalf("expected 2 rows, got %d", tbl.Len())
	}
	if got := tbl.Value(1, "departamento"); got != "Loreto" {
		t.Fatalf("unexpected departamento %q", got)
	}
	if got := tbl.Value(0, "latitud"); got != "-12.05" {
		t.Fatalf("unexpected latitud %q", got)
	}
}
