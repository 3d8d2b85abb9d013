package app

import (
	"errors"
	"fmt"

	validator "github.com/go-playground/validator/v10"

	"bedside/internal/domain"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// validateReview checks the payload against the canonical submission
// schema and flattens validator output into field-level issues.
func validateReview(in domain.ReviewInput) *domain.ValidationError {
	err := validate.Struct(in)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return &domain.ValidationError{Issues: []domain.FieldIssue{
			{Field: "payload", Message: err.Error()},
		}}
	}

	issues := make([]domain.FieldIssue, 0, len(verrs))
	for _, fe := range verrs {
		issues = append(issues, domain.FieldIssue{
			Field:   jsonField(fe.Field()),
			Message: issueMessage(fe),
		})
	}
	return &domain.ValidationError{Issues: issues}
}

// jsonField maps struct field names to their wire names.
func jsonField(name string) string {
	switch name {
	case "TargetType":
		return "target_type"
	case "TargetID":
		return "target_id"
	case "Overall":
		return "overall"
	case "Text":
		return "text"
	case "EncounterDate":
		return "encounter_date"
	case "EncounterSetting":
		return "encounter_setting"
	}
	return name
}

func issueMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "oneof":
		return fmt.Sprintf("must be one of: %s", fe.Param())
	case "min":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "datetime":
		return "must be a date in YYYY-MM-DD form"
	}
	return fmt.Sprintf("failed %s constraint", fe.Tag())
}
