package feed_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"hotelhub/internal/adapters/feed"
	"hotelhub/internal/domain"
)

const catalogJSON = `[
  {"name":"Seaside Hotel","location":"Coast","price":120,"rooms":10,
   "reviews":[{"author":"Ann","comment":"Lovely","rating":5}],
   "roomTypes":[{"type":"Double","description":"Two beds","price":90}]}
]`

func TestClient_Load_RetriesThenSuccess(t *testing.T) {
	var hits int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-API-Key") != "test-key" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		switch atomic.AddInt32(&hits, 1) {
		case 1, 2:
			// two transient failures
			w.WriteHeader(http.StatusInternalServerError)
		default:
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte(catalogJSON))
		}
	}))
	defer ts.Close()

	cl := feed.New([]string{ts.URL + "/catalog.json"}, "test-key", 100) // high RPS for tests
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	got, err := cl.Load(ctx)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(got) != 1 || got[0].Name != "Seaside Hotel" || *got[0].Rooms != 10 {
		t.Fatalf("unexpected payload: %+v", got)
	}
	if len(got[0].Reviews) != 1 || *got[0].Reviews[0].Rating != 5 || len(got[0].RoomTypes) != 1 {
		t.Fatalf("nested entries not decoded: %+v", got[0])
	}
	if atomic.LoadInt32(&hits) < 3 {
		t.Fatalf("expected at least 3 calls due to retries, got %d", hits)
	}
}

func TestClient_Load_404(t *testing.T) {
	ts := httptest.NewServer(http.NotFoundHandler())
	defer ts.Close()

	cl := feed.New([]string{ts.URL + "/missing.json"}, "", 100)
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	if _, err := cl.Load(ctx); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestClient_Load_Unauthorized(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer ts.Close()

	_, err := feed.New([]string{ts.URL}, "", 100).Load(context.Background())
	if !errors.Is(err, feed.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

func TestClient_Load_FilesAndURLsConcatenate(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "catalog.json")
	if err := os.WriteFile(path, []byte(catalogJSON), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[{"name":"Harbor Hotel","location":"Port","price":80,"rooms":4}]`))
	}))
	defer ts.Close()

	got, err := feed.New([]string{path, ts.URL}, "", 100).Load(context.Background())
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(got) != 2 || got[0].Name != "Seaside Hotel" || got[1].Name != "Harbor Hotel" {
		t.Fatalf("unexpected entries: %+v", got)
	}

	if _, err := feed.New([]string{filepath.Join(dir, "nope.json")}, "", 1).Load(context.Background()); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for missing file, got %v", err)
	}
}
