package domain

import "strings"

// TargetKind discriminates the two reviewable entity kinds.
type TargetKind string

const (
	KindFacility  TargetKind = "facility"
	KindClinician TargetKind = "clinician"
)

func (k TargetKind) Valid() bool {
	return k == KindFacility || k == KindClinician
}

type Facility struct {
	ID            string         `json:"id"`
	Name          string         `json:"name"`
	Address       *string        `json:"address,omitempty"`
	Measures      map[string]any `json:"measures,omitempty"`
	RatingAverage *float64       `json:"rating_average,omitempty"`
}

type Clinician struct {
	NPI           string         `json:"npi"`
	FirstName     *string        `json:"first_name,omitempty"`
	LastName      *string        `json:"last_name,omitempty"`
	Specialties   []string       `json:"specialties,omitempty"`
	Affiliations  []string       `json:"affiliations,omitempty"` // facility ids
	Measures      map[string]any `json:"measures,omitempty"`
	RatingAverage *float64       `json:"rating_average,omitempty"`
}

// DisplayName is what substring search matches against: "first last"
// joined with a single space and trimmed.
func (c Clinician) DisplayName() string {
	var first, last string
	if c.FirstName != nil {
		first = *c.FirstName
	}
	if c.LastName != nil {
		last = *c.LastName
	}
	return strings.TrimSpace(first + " " + last)
}

// Target is the union view the aggregator and intake operate on: either a
// facility or a clinician, never both.
type Target struct {
	Kind      TargetKind
	Facility  *Facility
	Clinician *Clinician
}
