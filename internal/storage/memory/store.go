package memory

import (
	"fmt"
	"math"
	"strings"
	"sync"

	"bedside/internal/domain"
)

// Store owns the three ordered collections. A single RWMutex mediates all
// access: AddReview's append+recompute runs as one critical section, so a
// review is never visible without its effect on the target's average.
type Store struct {
	mu sync.RWMutex

	facilities []domain.Facility
	clinicians []domain.Clinician
	reviews    []domain.Review

	facIdx    map[string]int // facility id -> position
	clinIdx   map[string]int // npi -> position
	reviewIDs map[string]struct{}
}

// New builds a store from a seed document. Duplicate entity or review ids
// are rejected. Targets that arrive with seed reviews get their average
// recomputed so the invariant holds from the first read.
func New(seed Seed) (*Store, error) {
	s := &Store{
		facilities: seed.Facilities,
		clinicians: seed.Clinicians,
		facIdx:     make(map[string]int, len(seed.Facilities)),
		clinIdx:    make(map[string]int, len(seed.Clinicians)),
		reviewIDs:  make(map[string]struct{}, len(seed.Reviews)),
	}
	for i, f := range s.facilities {
		if f.ID == "" {
			return nil, fmt.Errorf("seed facility %d: empty id", i)
		}
		if _, dup := s.facIdx[f.ID]; dup {
			return nil, fmt.Errorf("seed facility %q: duplicate id", f.ID)
		}
		s.facIdx[f.ID] = i
	}
	for i, c := range s.clinicians {
		if c.NPI == "" {
			return nil, fmt.Errorf("seed clinician %d: empty npi", i)
		}
		if _, dup := s.clinIdx[c.NPI]; dup {
			return nil, fmt.Errorf("seed clinician %q: duplicate npi", c.NPI)
		}
		s.clinIdx[c.NPI] = i
	}
	for _, r := range seed.Reviews {
		if err := s.AddReview(r); err != nil {
			return nil, fmt.Errorf("seed review %q: %w", r.ID, err)
		}
	}
	return s, nil
}

// FindTarget resolves (kind, id) to a copy of the entity. Copies keep
// callers from observing in-place rating updates mid-read.
func (s *Store) FindTarget(kind domain.TargetKind, id string) (domain.Target, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.findTargetLocked(kind, id)
}

func (s *Store) findTargetLocked(kind domain.TargetKind, id string) (domain.Target, error) {
	switch kind {
	case domain.KindFacility:
		if i, ok := s.facIdx[id]; ok {
			f := s.facilities[i]
			return domain.Target{Kind: kind, Facility: &f}, nil
		}
	case domain.KindClinician:
		if i, ok := s.clinIdx[id]; ok {
			c := s.clinicians[i]
			return domain.Target{Kind: kind, Clinician: &c}, nil
		}
	}
	return domain.Target{}, domain.ErrNotFound
}

// Facilities returns the facilities whose name contains query
// case-insensitively, in seed order. An empty query returns everything.
func (s *Store) Facilities(query string) []domain.Facility {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Facility, 0, len(s.facilities))
	q := strings.ToLower(query)
	for _, f := range s.facilities {
		if q == "" || strings.Contains(strings.ToLower(f.Name), q) {
			out = append(out, f)
		}
	}
	return out
}

// Clinicians filters by exact npi when given, otherwise by case-insensitive
// substring of the display name, otherwise returns everything.
func (s *Store) Clinicians(name, npi string) []domain.Clinician {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Clinician, 0, len(s.clinicians))
	q := strings.ToLower(name)
	for _, c := range s.clinicians {
		switch {
		case npi != "":
			if c.NPI == npi {
				out = append(out, c)
			}
		case q != "":
			if strings.Contains(strings.ToLower(c.DisplayName()), q) {
				out = append(out, c)
			}
		default:
			out = append(out, c)
		}
	}
	return out
}

// ReviewsFor returns the target's reviews in insertion order.
func (s *Store) ReviewsFor(kind domain.TargetKind, id string) []domain.Review {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.reviewsForLocked(kind, id)
}

func (s *Store) reviewsForLocked(kind domain.TargetKind, id string) []domain.Review {
	out := []domain.Review{}
	for _, r := range s.reviews {
		if r.TargetType == kind && r.TargetID == id {
			out = append(out, r)
		}
	}
	return out
}

// AddReview appends the review and recomputes the target's average under
// one write lock, so concurrent submissions to the same target serialize
// and every review is counted exactly once.
func (s *Store) AddReview(r domain.Review) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, dup := s.reviewIDs[r.ID]; dup {
		return domain.ErrDuplicateReview
	}
	if _, err := s.findTargetLocked(r.TargetType, r.TargetID); err != nil {
		return err
	}
	s.reviews = append(s.reviews, r)
	s.reviewIDs[r.ID] = struct{}{}
	return s.recomputeLocked(r.TargetType, r.TargetID)
}

// RecomputeRating recalculates the target's rating_average from its
// reviews: round-half-up mean of overall to 2 decimals, nil when the
// target has no reviews.
func (s *Store) RecomputeRating(kind domain.TargetKind, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.recomputeLocked(kind, id)
}

func (s *Store) recomputeLocked(kind domain.TargetKind, id string) error {
	rs := s.reviewsForLocked(kind, id)
	var avg *float64
	if len(rs) > 0 {
		sum := 0
		for _, r := range rs {
			sum += r.Overall
		}
		v := round2(float64(sum) / float64(len(rs)))
		avg = &v
	}

	switch kind {
	case domain.KindFacility:
		if i, ok := s.facIdx[id]; ok {
			s.facilities[i].RatingAverage = avg
			return nil
		}
	case domain.KindClinician:
		if i, ok := s.clinIdx[id]; ok {
			s.clinicians[i].RatingAverage = avg
			return nil
		}
	}
	return fmt.Errorf("%w: %s %s vanished before recompute", domain.ErrStoreInconsistent, kind, id)
}

// round2 rounds half-up to 2 decimal places.
func round2(v float64) float64 {
	return math.Floor(v*100+0.5) / 100
}
