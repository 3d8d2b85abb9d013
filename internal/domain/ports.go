package domain

import "context"

// Directory is the entity store port: ordered collections of facilities,
// clinicians and reviews. Reads are pure; AddReview appends and recomputes
// the target's average as one atomic step.
type Directory interface {
	// Read paths
	FindTarget(kind TargetKind, id string) (Target, error)
	Facilities(query string) []Facility
	Clinicians(name, npi string) []Clinician
	ReviewsFor(kind TargetKind, id string) []Review

	// Write paths
	AddReview(r Review) error
	RecomputeRating(kind TargetKind, id string) error
}

type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any, ttlSec int) error
	Del(ctx context.Context, key string) error
}

// MeasuresClient fetches performance measures from the provider-data API.
type MeasuresClient interface {
	FacilityMeasures(ctx context.Context, id string) (map[string]any, error)
	ClinicianMeasures(ctx context.Context, npi string) (map[string]any, error)
}

// Read models for detail endpoints: entity plus its reviews.
type FacilityView struct {
	Facility
	Reviews []Review `json:"reviews"`
}

type ClinicianView struct {
	Clinician
	Reviews []Review `json:"reviews"`
}
