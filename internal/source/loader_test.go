package source

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

const hospitalsCSV = "Nombre ,LATITUD,Longitud,Departamento\nHospital A,-12.05,-77.03,Lima\n"

func csvServer(t *testing.T, hits *int32) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(hits, 1)
		switch r.URL.Path {
		case "/sheet.csv":
			w.Header().Set("Content-Type", "text/csv")
			_, _ = w.Write([]byte(hospitalsCSV))
		case "/binary.csv":
			_, _ = w.Write([]byte{0x00, 0x01})
		case "/slow.csv":
			time.Sleep(300 * time.Millisecond)
			_, _ = w.Write([]byte(hospitalsCSV))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestLoad_MemoizesByURL(t *testing.T) {
	var hits int32
	srv := csvServer(t, &hits)
	l := NewLoader(2 * time.Second)
	ctx := context.Background()

	first, err := l.Load(ctx, srv.URL+"/sheet.csv")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	second, err := l.Load(ctx, srv.URL+"/sheet.csv")
	if err != nil {
		t.Fatalf("second load: %v", err)
	}
	if first != second {
		t.Fatal("expected the cached table to be returned")
	}
	if got := atomic.LoadInt32(&hits); got != 1 {
		t.Fatalf("expected 1 fetch, got %d", got)
	}
	if first.Value(0, "nombre") != "Hospital A" {
		t.Fatalf("unexpected table content: %v", first.Rows())
	}

	l.Invalidate(srv.URL + "/sheet.csv")
	if l.Cached(srv.URL + "/sheet.csv") {
		t.Fatal("expected cache entry to be dropped")
	}
	if _, err := l.Load(ctx, srv.URL+"/sheet.csv"); err != nil {
		t.Fatalf("reload: %v", err)
	}
	if got := atomic.LoadInt32(&hits); got != 2 {
		t.Fatalf("expected refetch after invalidation, got %d fetches", got)
	}
}

func TestLoad_StatusIsFetchError(t *testing.T) {
	var hits int32
	srv := csvServer(t, &hits)
	l := NewLoader(time.Second)
	_, err := l.Load(context.Background(), srv.URL+"/missing.csv")
	var fe *FetchError
	if !errors.As(err, &fe) {
		t.Fatalf("expected FetchError, got %T: %v", err, err)
	}
	if fe.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", fe.StatusCode)
	}
	if l.Cached(srv.URL + "/missing.csv") {
		t.Fatal("failed loads must not be cached")
	}
}

func TestLoad_TimeoutIsFetchError(t *testing.T) {
	var hits int32
	srv := csvServer(t, &hits)
	l := NewLoader(50 * time.Millisecond)
	_, err := l.Load(context.Background(), srv.URL+"/slow.csv")
	var fe *FetchError
	if !errors.As(err, &fe) {
		t.Fatalf("expected FetchError on timeout, got %T: %v", err, err)
	}
}

func TestLoad_BadPayloadIsParseError(t *testing.T) {
	var hits int32
	srv := csvServer(t, &hits)
	l := NewLoader(time.Second)
	_, err := l.Load(context.Background(), srv.URL+"/binary.csv")
	var pe *ParseError
	if !errors.As(err, &pe) {
		t.Fatalf("expected ParseError, got %T: %v", err, err)
	}
}

func TestLoad_OversizedBodyIsFetchError(t *testing.T) {
	var hits int32
	srv := csvServer(t, &hits)
	prev := maxPayload
	t.Cleanup(func() { maxPayload = prev })
	ctx := context.Background()

	maxPayload = int64(len(hospitalsCSV))
	l := NewLoader(time.Second)
	if _, err := l.Load(ctx, srv.URL+"/sheet.csv"); err != nil {
		t.Fatalf("a body of exactly the limit must load: %v", err)
	}

	maxPayload = int64(len(hospitalsCSV)) - 1
	l = NewLoader(time.Second)
	tbl, err := l.Load(ctx, srv.URL+"/sheet.csv")
	var fe *FetchError
	if !errors.As(err, &fe) {
		t.Fatalf("expected FetchError for an oversized body, got %T: %v (rows=%v)", err, err, tbl)
	}
	if !strings.Contains(err.Error(), "payload exceeds") {
		t.Fatalf("unexpected error text: %v", err)
	}
	if l.Cached(srv.URL + "/sheet.csv") {
		t.Fatal("truncated payloads must not be cached")
	}
}

func TestLoad_LocalFile(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "hospitales.csv")
	if err := os.WriteFile(p, []byte(hospitalsCSV), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	l := NewLoader(0)
	tbl, err := l.Load(context.Background(), "file://"+p)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if tbl.Value(0, "departamento") != "Lima" {
		t.Fatalf("unexpected rows: %v", tbl.Rows())
	}

	_, err = l.Load(context.Background(), filepath.Join(dir, "nope.csv"))
	var fe *FetchError
	if !errors.As(err, &fe) {
		t.Fatalf("expected FetchError for missing file, got %v", err)
	}
}
