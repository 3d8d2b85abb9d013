//go:build integration || !unit

package integration

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"golang.org/x/sync/errgroup"

	server "bedside/internal/adapters/http_server"
	redisad "bedside/internal/adapters/redis"
	"bedside/internal/app"
	"bedside/internal/domain"
	"bedside/internal/storage/memory"
)

// newStack wires the real store, a miniredis-backed cache, and the chi
// router — the same composition cmd/api performs.
func newStack(t *testing.T) *httptest.Server {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis: %v", err)
	}
	t.Cleanup(mr.Close)
	cache := redisad.New(mr.Addr(), "", 0)

	seed, err := memory.LoadSeed("")
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	store, err := memory.New(seed)
	if err != nil {
		t.Fatalf("store: %v", err)
	}

	srv := server.New()
	srv.MountHandlers(&server.Handlers{
		Q: app.NewQueryService(store, cache, 10*time.Minute),
		I: app.NewIntakeService(store, cache),
	})
	ts := httptest.NewServer(srv.Mux())
	t.Cleanup(ts.Close)
	return ts
}

func submit(ts *httptest.Server, overall int) (*http.Response, error) {
	body, _ := json.Marshal(map[string]any{
		"target_type":       "facility",
		"target_id":         "fac_001",
		"overall":           overall,
		"text":              "Seen quickly, clear discharge notes.",
		"encounter_date":    "2026-06-01",
		"encounter_setting": "virtual",
	})
	return http.Post(ts.URL+"/v1/reviews", "application/json", bytes.NewReader(body))
}

func facility(t *testing.T, ts *httptest.Server, id string) domain.FacilityView {
	t.Helper()
	res, err := http.Get(fmt.Sprintf("%s/v1/facilities/%s", ts.URL, id))
	if err != nil {
		t.Fatalf("GET facility: %v", err)
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		t.Fatalf("GET facility status %d", res.StatusCode)
	}
	var fv domain.FacilityView
	if err := json.NewDecoder(res.Body).Decode(&fv); err != nil {
		t.Fatalf("decode facility: %v", err)
	}
	return fv
}

func TestHTTP_EndToEnd_ReviewLifecycle(t *testing.T) {
	ts := newStack(t)

	// prime the cache with the zero-review view
	fv := facility(t, ts, "fac_001")
	if fv.RatingAverage != nil {
		t.Fatalf("expected no average before reviews, got %v", *fv.RatingAverage)
	}

	res, err := submit(ts, 4)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	var receipt domain.ReviewReceipt
	if err := json.NewDecoder(res.Body).Decode(&receipt); err != nil {
		t.Fatalf("decode receipt: %v", err)
	}
	res.Body.Close()
	if res.StatusCode != http.StatusCreated || receipt.Status != "published" {
		t.Fatalf("unexpected receipt: %d %+v", res.StatusCode, receipt)
	}

	// the cached stale view must have been invalidated by intake
	fv = facility(t, ts, "fac_001")
	if fv.RatingAverage == nil || *fv.RatingAverage != 4.0 {
		t.Fatalf("expected average 4.0, got %+v", fv.RatingAverage)
	}

	if res, err = submit(ts, 2); err != nil {
		t.Fatalf("second submit: %v", err)
	}
	res.Body.Close()

	fv = facility(t, ts, "fac_001")
	if fv.RatingAverage == nil || *fv.RatingAverage != 3.0 {
		t.Fatalf("expected average 3.0, got %+v", fv.RatingAverage)
	}
	if len(fv.Reviews) != 2 {
		t.Fatalf("expected 2 reviews, got %d", len(fv.Reviews))
	}
}

func TestHTTP_ConcurrentSubmissionsSameTarget(t *testing.T) {
	ts := newStack(t)

	var g errgroup.Group
	for _, overall := range []int{5, 1} {
		overall := overall
		g.Go(func() error {
			res, err := submit(ts, overall)
			if err != nil {
				return err
			}
			defer res.Body.Close()
			if res.StatusCode != http.StatusCreated {
				return fmt.Errorf("submit %d: status %d", overall, res.StatusCode)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		t.Fatalf("concurrent submits: %v", err)
	}

	fv := facility(t, ts, "fac_001")
	if len(fv.Reviews) != 2 {
		t.Fatalf("lost update: %d reviews", len(fv.Reviews))
	}
	if fv.RatingAverage == nil || *fv.RatingAverage != 3.0 {
		t.Fatalf("expected average 3.0, got %+v", fv.RatingAverage)
	}
}
