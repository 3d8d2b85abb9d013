package app

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"bedside/internal/domain"
)

// IntakeService is the write side: validate, resolve the target, publish
// the review and synchronously recompute the target's average. Errors are
// all detected before mutation; once the store append starts it completes
// atomically, so readers never see a partial submission.
type IntakeService struct {
	dir   domain.Directory
	cache domain.Cache
	now   func() time.Time
}

func NewIntakeService(d domain.Directory, cache domain.Cache) *IntakeService {
	return &IntakeService{dir: d, cache: cache, now: time.Now}
}

func (s *IntakeService) Submit(ctx context.Context, in domain.ReviewInput) (domain.ReviewReceipt, error) {
	if verr := validateReview(in); verr != nil {
		return domain.ReviewReceipt{}, verr
	}

	kind := domain.TargetKind(in.TargetType)
	if _, err := s.dir.FindTarget(kind, in.TargetID); err != nil {
		return domain.ReviewReceipt{}, err
	}

	setting := domain.EncounterSetting(in.EncounterSetting)
	r := domain.Review{
		ID:                newReviewID(),
		TargetType:        kind,
		TargetID:          in.TargetID,
		Overall:           in.Overall,
		Text:              &in.Text,
		EncounterDate:     &in.EncounterDate,
		EncounterSetting:  &setting,
		VerificationLevel: domain.VerificationNone,
		CreatedAt:         s.now().UTC(),
	}

	if err := s.dir.AddReview(r); err != nil {
		return domain.ReviewReceipt{}, err
	}

	// Drop the target's detail view so the next read sees the new average.
	if s.cache != nil {
		s.invalidateTarget(ctx, kind, in.TargetID)
	}

	log.Info().
		Str("review_id", r.ID).
		Str("target_type", string(kind)).
		Str("target_id", in.TargetID).
		Int("overall", in.Overall).
		Msg("review published")
	return domain.ReviewReceipt{ID: r.ID, Status: domain.StatusPublished}, nil
}

func (s *IntakeService) invalidateTarget(ctx context.Context, kind domain.TargetKind, id string) {
	if kind == domain.KindFacility {
		_ = s.cache.Del(ctx, facilityKey(id))
		return
	}
	_ = s.cache.Del(ctx, clinicianKey(id))
}

// newReviewID mints a "rev_" token. UUIDv4 keeps the collision odds
// negligible; the store still rejects a duplicate outright.
func newReviewID() string {
	return "rev_" + strings.ReplaceAll(uuid.NewString(), "-", "")
}
