package app

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMapFacilityMeasures(t *testing.T) {
	raw := map[string]any{
		"summary_star_rating": "4",
		"rates":               map[string]any{"readmission": 12.5},
		"irrelevant_column":   "ignored",
	}
	got := MapFacilityMeasures(raw)
	assert.Equal(t, map[string]any{
		"hcahps_summary_star": 4.0,
		"readmission_rate":    12.5,
	}, got)
}

func TestMapFacilityMeasures_AliasPriority(t *testing.T) {
	// first matching alias wins
	raw := map[string]any{
		"hcahps_summary_star":        5,
		"patient_survey_star_rating": 1,
	}
	got := MapFacilityMeasures(raw)
	assert.Equal(t, 5.0, got["hcahps_summary_star"])
}

func TestMapClinicianMeasures(t *testing.T) {
	raw := map[string]any{
		"mips": map[string]any{"final_score": "98.5"},
	}
	got := MapClinicianMeasures(raw)
	assert.Equal(t, map[string]any{"qpp_mips_score": 98.5}, got)
}

func TestMapMeasures_DropsUnusable(t *testing.T) {
	assert.Nil(t, MapFacilityMeasures(nil))
	assert.Nil(t, MapFacilityMeasures(map[string]any{"unrelated": 1}))
	assert.Nil(t, MapFacilityMeasures(map[string]any{
		"summary_star_rating": "Not Available",
		"readmission_rate":    "  ",
	}))
}

func TestMeasureValueStrings(t *testing.T) {
	assert.Equal(t, 3.0, measureValue("3"))
	assert.Equal(t, "high performer", measureValue("high performer"))
	assert.Nil(t, measureValue("n/a"))
	assert.Nil(t, measureValue(nil))
}
