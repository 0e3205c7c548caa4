package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"ddscanner/internal/domain"
	"ddscanner/internal/infrastructure/store"
)

func newTestServer(t *testing.T, records []domain.Record) *Server {
	t.Helper()

	s := store.New(filepath.Join(t.TempDir(), "dd_log.jsonl"))
	if err := s.Truncate(); err != nil {
		t.Fatalf("truncate: %v", err)
	}
	for _, rec := range records {
		if err := s.Append(rec); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	srv, err := New(":0", s, nil)
	if err != nil {
		t.Fatalf("new server: %v", err)
	}
	return srv
}

func TestPostsListingReturnsAllRecords(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, []domain.Record{
		{Score: 40, Title: "first", Breakdown: map[string]int{"long_body": 10}},
		{Score: 25, Title: "second", Breakdown: map[string]int{}},
	})

	rr := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/posts", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("unexpected status %d", rr.Code)
	}
	if got := rr.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Fatalf("expected permissive CORS, got %q", got)
	}

	var records []domain.Record
	if err := json.Unmarshal(rr.Body.Bytes(), &records); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if len(records) != 2 || records[0].Title != "first" || records[1].Title != "second" {
		t.Fatalf("unexpected records: %+v", records)
	}
}

func TestPostsListingEmptyLogIsEmptyArray(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, nil)

	rr := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/posts", nil))

	if body := rr.Body.String(); body != "[]\n" {
		t.Fatalf("expected empty JSON array, got %q", body)
	}
}

func TestPreflightRequestIsAllowed(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, nil)

	rr := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodOptions, "/posts", nil))

	if rr.Code != http.StatusNoContent {
		t.Fatalf("unexpected preflight status %d", rr.Code)
	}
}
