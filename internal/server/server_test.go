package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/KaramelBytes/hospimap-cli/internal/dashboard"
	"github.com/KaramelBytes/hospimap-cli/internal/monitoring"
	"github.com/KaramelBytes/hospimap-cli/internal/source"
)

const hospitalsCSV = "Nombre;Departamento;Tipo;Distrito;Latitud;Longitud\n" +
	"Hospital A;LIMA;HOSPITAL;MIRAFLORES;-12,12;-77,03\n" +
	"Posta C;LORETO;POSTA;IQUITOS;-3,75;-73,25\n"

const areasJSON = `{"type":"FeatureCollection","features":[
{"type":"Feature","properties":{"NOMBDIST":"MIRAFLORES","NOMBDEP":"LIMA"},"geometry":{"type":"Polygon","coordinates":[[[-77.05,-12.15],[-77.0,-12.15],[-77.0,-12.1],[-77.05,-12.1],[-77.05,-12.15]]]}},
{"type":"Feature","properties":{"NOMBDIST":"IQUITOS","NOMBDEP":"LORETO"},"geometry":{"type":"Polygon","coordinates":[[[-73.3,-3.8],[-73.2,-3.8],[-73.2,-3.7],[-73.3,-3.7],[-73.3,-3.8]]]}}
]}`

func newTestServer(t *testing.T, withAreas bool) *echo.Echo {
	t.Helper()
	monitoring.SetLogger(nil)
	dir := t.TempDir()
	csvPath := filepath.Join(dir, "hospitals.csv")
	if err := os.WriteFile(csvPath, []byte(hospitalsCSV), 0o644); err != nil {
		t.Fatalf("write csv: %v", err)
	}
	opts := dashboard.Options{SourceURL: csvPath}
	if withAreas {
		opts.AreasPath = filepath.Join(dir, "areas.geojson")
		if err := os.WriteFile(opts.AreasPath, []byte(areasJSON), 0o644); err != nil {
			t.Fatalf("write areas: %v", err)
		}
	}
	svc := dashboard.New(context.Background(), source.NewLoader(source.DefaultTimeout), opts)
	e := echo.New()
	NewHandler(svc).RegisterRoutes(e)
	return e
}

func do(t *testing.T, e *echo.Echo, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
}

func TestColumnsAndOptions(t *testing.T) {
	e := newTestServer(t, false)
	rec := do(t, e, http.MethodGet, "/api/columns", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rec.Code, rec.Body.String())
	}
	var cols dashboard.Columns
	decode(t, rec, &cols)
	if cols.Roles["latitude"] != "latitud" || cols.Roles["region"] != "departamento" {
		t.Fatalf("unexpected roles %v", cols.Roles)
	}

	rec = do(t, e, http.MethodGet, "/api/options", "")
	var opts dashboard.SelectorOptions
	decode(t, rec, &opts)
	if strings.Join(opts.Regions, ",") != "LIMA,LORETO" {
		t.Fatalf("unexpected regions %v", opts.Regions)
	}
}

func TestSessionLifecycle(t *testing.T) {
	e := newTestServer(t, false)
	rec := do(t, e, http.MethodPost, "/api/sessions", "")
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status %d", rec.Code)
	}
	var created map[string]string
	decode(t, rec, &created)
	id := created["id"]
	if id == "" {
		t.Fatal("missing session id")
	}

	rec = do(t, e, http.MethodPut, "/api/sessions/"+id, `{"criteria":{"region":"LORETO","type":"all"}}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("put status %d: %s", rec.Code, rec.Body.String())
	}

	rec = do(t, e, http.MethodGet, "/api/view?session="+id, "")
	var v dashboard.View
	decode(t, rec, &v)
	if v.KPIs.Total != 2 || v.KPIs.Filtered != 1 || v.Preview[0][0] != "Posta C" {
		t.Fatalf("unexpected session view %+v", v)
	}

	// query parameters override the stored selection for one request
	rec = do(t, e, http.MethodGet, "/api/view?session="+id+"&region=all", "")
	decode(t, rec, &v)
	if v.KPIs.Filtered != 2 {
		t.Fatalf("query override ignored: %+v", v.KPIs)
	}

	// a second session is independent
	rec = do(t, e, http.MethodPost, "/api/sessions", "")
	var other map[string]string
	decode(t, rec, &other)
	rec = do(t, e, http.MethodGet, "/api/view?session="+other["id"], "")
	decode(t, rec, &v)
	if v.KPIs.Filtered != 2 {
		t.Fatalf("sessions leaked state: %+v", v.KPIs)
	}

	if rec = do(t, e, http.MethodDelete, "/api/sessions/"+id, ""); rec.Code != http.StatusNoContent {
		t.Fatalf("delete status %d", rec.Code)
	}
	if rec = do(t, e, http.MethodGet, "/api/view?session="+id, ""); rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 after delete, got %d", rec.Code)
	}
}

func TestBadInputs(t *testing.T) {
	e := newTestServer(t, false)
	cases := []struct {
		target string
		want   int
	}{
		{"/api/view?group_by=missing", http.StatusBadRequest},
		{"/api/view?override=latitude:missing", http.StatusBadRequest},
		{"/api/view?override=altitude:latitud", http.StatusBadRequest},
		{"/api/view?override=bogus", http.StatusBadRequest},
		{"/api/view?session=nope", http.StatusNotFound},
	}
	for _, tc := range cases {
		if rec := do(t, e, http.MethodGet, tc.target, ""); rec.Code != tc.want {
			t.Fatalf("%s: status %d, want %d", tc.target, rec.Code, tc.want)
		}
	}
	if rec := do(t, e, http.MethodPut, "/api/sessions/nope", `{}`); rec.Code != http.StatusNotFound {
		t.Fatalf("put unknown session: %d", rec.Code)
	}
}

func TestHTMLViews(t *testing.T) {
	e := newTestServer(t, true)
	for _, target := range []string{"/charts/top", "/maps/points", "/maps/choropleth", "/maps/proximity"} {
		rec := do(t, e, http.MethodGet, target, "")
		if rec.Code != http.StatusOK {
			t.Fatalf("%s: status %d", target, rec.Code)
		}
		if !strings.Contains(rec.Header().Get(echo.HeaderContentType), "text/html") {
			t.Fatalf("%s: content type %q", target, rec.Header().Get(echo.HeaderContentType))
		}
		if !strings.Contains(rec.Body.String(), "echarts") {
			t.Fatalf("%s: body does not look like a chart page", target)
		}
	}
	rec := do(t, e, http.MethodGet, "/maps/points", "")
	if !strings.Contains(rec.Body.String(), "Hospital A") {
		t.Fatal("points map lacks popup names")
	}
}

func TestGeometryNoticeHeader(t *testing.T) {
	e := newTestServer(t, false)
	rec := do(t, e, http.MethodGet, "/maps/choropleth", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d", rec.Code)
	}
	if !strings.HasPrefix(rec.Header().Get(NoticeHeader), "geometry:") {
		t.Fatalf("expected geometry notice, got %q", rec.Header().Values(NoticeHeader))
	}
}

func TestPointsMapWithoutPointsIsNoContent(t *testing.T) {
	e := newTestServer(t, false)
	// no rows match, and a latitude column that holds no numbers
	for _, target := range []string{"/maps/points?region=CUSCO", "/maps/points?override=latitude:departamento"} {
		rec := do(t, e, http.MethodGet, target, "")
		if rec.Code != http.StatusNoContent {
			t.Fatalf("%s: status %d, want 204", target, rec.Code)
		}
		if rec.Body.Len() != 0 {
			t.Fatalf("%s: expected no chart, got %d bytes", target, rec.Body.Len())
		}
		found := false
		for _, v := range rec.Header().Values(NoticeHeader) {
			if strings.HasPrefix(v, "points:") {
				found = true
			}
		}
		if !found {
			t.Fatalf("%s: expected a points notice, got %q", target, rec.Header().Values(NoticeHeader))
		}
	}
}

func TestDensityEndpoint(t *testing.T) {
	e := newTestServer(t, true)
	rec := do(t, e, http.MethodGet, "/api/density", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d", rec.Code)
	}
	var dv struct {
		Radius   float64 `json:"radius_m"`
		Extremes []struct {
			Group string `json:"group"`
			Max   struct {
				Name    string `json:"name"`
				Density int    `json:"density"`
			} `json:"max"`
		} `json:"extremes"`
	}
	decode(t, rec, &dv)
	if dv.Radius != 10000 || len(dv.Extremes) != 2 || dv.Extremes[0].Max.Name != "MIRAFLORES" || dv.Extremes[0].Max.Density != 1 {
		t.Fatalf("unexpected density payload %+v", dv)
	}
}

func TestReload(t *testing.T) {
	e := newTestServer(t, false)
	do(t, e, http.MethodGet, "/api/view", "")
	if rec := do(t, e, http.MethodPost, "/api/reload", ""); rec.Code != http.StatusNoContent {
		t.Fatalf("reload status %d", rec.Code)
	}
}

func TestSessionsCopy(t *testing.T) {
	s := NewSessions()
	id := s.Create()
	sel, _ := s.Get(id)
	sel.Overrides = map[string]string{"name": "tipo"}
	s.Put(id, sel)
	sel.Overrides["name"] = "changed"
	got, _ := s.Get(id)
	if got.Overrides["name"] != "tipo" {
		t.Fatalf("store shares caller maps: %v", got.Overrides)
	}
	if !s.Delete(id) || s.Delete(id) || s.Len() != 0 {
		t.Fatal("delete semantics")
	}
}
