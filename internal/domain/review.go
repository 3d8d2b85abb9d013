package domain

import "time"

// VerificationLevel is the trust tier of a review's authorship claim.
// Intake always publishes at VerificationNone; higher tiers are reserved
// for future verification flows.
type VerificationLevel string

const (
	VerificationNone    VerificationLevel = "none"
	VerificationAccount VerificationLevel = "verified_account"
	VerificationVisit   VerificationLevel = "verified_visit"
)

type EncounterSetting string

const (
	EncounterVirtual  EncounterSetting = "virtual"
	EncounterInPerson EncounterSetting = "in_person"
)

// Review is immutable once published.
type Review struct {
	ID                string            `json:"id"`
	TargetType        TargetKind        `json:"target_type"`
	TargetID          string            `json:"target_id"`
	Overall           int               `json:"overall"`
	Text              *string           `json:"text,omitempty"`
	EncounterDate     *string           `json:"encounter_date,omitempty"` // YYYY-MM-DD
	EncounterSetting  *EncounterSetting `json:"encounter_setting,omitempty"`
	VerificationLevel VerificationLevel `json:"verification_level"`
	CreatedAt         time.Time         `json:"created_at"`
}

// ReviewInput is the canonical submission payload. The original exposed
// two divergent shapes (camelCase "rating" vs snake_case "overall"); the
// snake_case form is canonical here.
type ReviewInput struct {
	TargetType       string `json:"target_type" validate:"required,oneof=facility clinician"`
	TargetID         string `json:"target_id" validate:"required"`
	Overall          int    `json:"overall" validate:"required,min=1,max=5"`
	Text             string `json:"text" validate:"required,min=1,max=500"`
	EncounterDate    string `json:"encounter_date" validate:"required,datetime=2006-01-02"`
	EncounterSetting string `json:"encounter_setting" validate:"required,oneof=virtual in_person"`
}

// ReviewReceipt is returned to the submitter on successful publication.
type ReviewReceipt struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

const StatusPublished = "published"
