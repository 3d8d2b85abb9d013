package app_test

import (
	"context"
	"testing"
	"time"

	"bedside/internal/app"
	"bedside/internal/domain"
)

// ---- fakes ----

type fakeCache struct {
	store map[string]any
}

func (c *fakeCache) Get(ctx context.Context, key string, dst any) (bool, error) {
	if c.store == nil {
		return false, nil
	}
	v, ok := c.store[key]
	if !ok {
		return false, nil
	}
	switch d := dst.(type) {
	case *domain.FacilityView:
		*d = v.(domain.FacilityView)
	case *domain.ClinicianView:
		*d = v.(domain.ClinicianView)
	}
	return true, nil
}
func (c *fakeCache) Set(ctx context.Context, key string, v any, ttlSec int) error {
	if c.store == nil {
		c.store = map[string]any{}
	}
	c.store[key] = v
	return nil
}
func (c *fakeCache) Del(ctx context.Context, key string) error {
	delete(c.store, key)
	return nil
}

// ---- tests ----

func TestGetFacility_CacheMissThenHit(t *testing.T) {
	store := newStore(t)
	cache := &fakeCache{}
	q := app.NewQueryService(store, cache, 10*time.Minute)

	// Miss (first time, populates cache)
	fv, err := q.GetFacility(context.Background(), "fac_001")
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if fv.ID != "fac_001" || fv.Name != "General Hospital" || len(fv.Reviews) != 0 {
		t.Fatalf("unexpected facility: %+v", fv)
	}

	// Mutate the store to ensure the second read indeed comes from cache
	if err := store.AddReview(domain.Review{
		ID: "rev_cached", TargetType: domain.KindFacility, TargetID: "fac_001",
		Overall: 5, VerificationLevel: domain.VerificationNone,
	}); err != nil {
		t.Fatalf("AddReview: %v", err)
	}

	// Hit (served from cache, still no reviews attached)
	fv2, err := q.GetFacility(context.Background(), "fac_001")
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if len(fv2.Reviews) != 0 || fv2.RatingAverage != nil {
		t.Fatalf("expected cached view, got %+v", fv2)
	}
}

func TestGetFacility_NotFound(t *testing.T) {
	q := app.NewQueryService(newStore(t), &fakeCache{}, time.Minute)
	if _, err := q.GetFacility(context.Background(), "ghost"); err == nil {
		t.Fatalf("expected not found")
	}
}

func TestGetClinician_AttachesReviews(t *testing.T) {
	store := newStore(t)
	if err := store.AddReview(domain.Review{
		ID: "rev_1", TargetType: domain.KindClinician, TargetID: "1234567890",
		Overall: 3, VerificationLevel: domain.VerificationNone,
	}); err != nil {
		t.Fatalf("AddReview: %v", err)
	}

	q := app.NewQueryService(store, &fakeCache{}, time.Minute)
	cv, err := q.GetClinician(context.Background(), "1234567890")
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if len(cv.Reviews) != 1 || cv.Reviews[0].ID != "rev_1" {
		t.Fatalf("unexpected reviews: %+v", cv.Reviews)
	}
	if cv.RatingAverage == nil || *cv.RatingAverage != 3.0 {
		t.Fatalf("unexpected average: %+v", cv.RatingAverage)
	}
}

func TestSearchPassThrough(t *testing.T) {
	q := app.NewQueryService(newStore(t), &fakeCache{}, time.Minute)
	ctx := context.Background()

	if got := q.SearchFacilities(ctx, ""); len(got) != 2 {
		t.Fatalf("expected full collection, got %d", len(got))
	}
	if got := q.SearchFacilities(ctx, "city"); len(got) != 1 || got[0].ID != "fac_002" {
		t.Fatalf("unexpected search result: %+v", got)
	}
	// npi precedence over name
	if got := q.SearchClinicians(ctx, "nobody", "1234567890"); len(got) != 1 || got[0].NPI != "1234567890" {
		t.Fatalf("npi should take precedence: %+v", got)
	}
}
