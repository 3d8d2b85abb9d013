package app

import (
	"context"
	"fmt"
	"time"

	"bedside/internal/domain"
)

// QueryService is the read side: list searches hit the store directly,
// detail views go cache-aside through the Cache port.
type QueryService struct {
	dir      domain.Directory
	cache    domain.Cache
	cacheTTL time.Duration
}

func NewQueryService(d domain.Directory, c domain.Cache, ttl time.Duration) *QueryService {
	return &QueryService{dir: d, cache: c, cacheTTL: ttl}
}

func facilityKey(id string) string   { return fmt.Sprintf("facility:%s", id) }
func clinicianKey(npi string) string { return fmt.Sprintf("clinician:%s", npi) }

// SearchFacilities returns facilities whose name contains query
// case-insensitively; all of them when query is empty. Seed order.
func (s *QueryService) SearchFacilities(ctx context.Context, query string) []domain.Facility {
	return s.dir.Facilities(query)
}

// SearchClinicians filters by exact npi when given (takes precedence),
// else by substring of the full name, else returns everything.
func (s *QueryService) SearchClinicians(ctx context.Context, name, npi string) []domain.Clinician {
	return s.dir.Clinicians(name, npi)
}

// GetFacility returns the facility with its reviews attached.
func (s *QueryService) GetFacility(ctx context.Context, id string) (domain.FacilityView, error) {
	key := facilityKey(id)
	var fv domain.FacilityView
	if ok, _ := s.cache.Get(ctx, key, &fv); ok {
		return fv, nil
	}
	t, err := s.dir.FindTarget(domain.KindFacility, id)
	if err != nil {
		return domain.FacilityView{}, err
	}
	fv = domain.FacilityView{
		Facility: *t.Facility,
		Reviews:  s.dir.ReviewsFor(domain.KindFacility, id),
	}
	_ = s.cache.Set(ctx, key, fv, int(s.cacheTTL.Seconds()))
	return fv, nil
}

// GetClinician returns the clinician with its reviews attached.
func (s *QueryService) GetClinician(ctx context.Context, npi string) (domain.ClinicianView, error) {
	key := clinicianKey(npi)
	var cv domain.ClinicianView
	if ok, _ := s.cache.Get(ctx, key, &cv); ok {
		return cv, nil
	}
	t, err := s.dir.FindTarget(domain.KindClinician, npi)
	if err != nil {
		return domain.ClinicianView{}, err
	}
	cv = domain.ClinicianView{
		Clinician: *t.Clinician,
		Reviews:   s.dir.ReviewsFor(domain.KindClinician, npi),
	}
	_ = s.cache.Set(ctx, key, cv, int(s.cacheTTL.Seconds()))
	return cv, nil
}
