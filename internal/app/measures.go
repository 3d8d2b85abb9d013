package app

import (
	"strconv"
	"strings"
)

/********** measure alias registries (single source of truth) **********/

// CMS datasets are loosely shaped: the same measure arrives under different
// keys depending on dataset vintage. Aliases are tried in order; dot paths
// descend into nested objects.
var facilityMeasureAliases = map[string][]string{
	"hcahps_summary_star": {
		"hcahps_summary_star", "summary_star_rating", "hcahps.summary_star",
		"patient_survey_star_rating",
	},
	"readmission_rate": {
		"readmission_rate", "readm_30_hosp_wide", "rates.readmission",
		"hospital_wide_readmission_rate",
	},
	"overall_hospital_rating": {
		"hospital_overall_rating", "overall_rating", "ratings.overall",
	},
}

var clinicianMeasureAliases = map[string][]string{
	"qpp_mips_score": {
		"qpp_mips_score", "final_mips_score", "mips.final_score", "final_score",
	},
	"quality_category_score": {
		"quality_category_score", "mips.quality_score", "quality_score",
	},
}

// MapFacilityMeasures projects a raw CMS record onto canonical facility
// measure names, dropping anything absent or unparseable.
func MapFacilityMeasures(raw map[string]any) map[string]any {
	return mapMeasures(raw, facilityMeasureAliases)
}

// MapClinicianMeasures does the same for clinician (QPP/MIPS) records.
func MapClinicianMeasures(raw map[string]any) map[string]any {
	return mapMeasures(raw, clinicianMeasureAliases)
}

func mapMeasures(raw map[string]any, aliases map[string][]string) map[string]any {
	if len(raw) == 0 {
		return nil
	}
	out := map[string]any{}
	for canon, paths := range aliases {
		for _, p := range paths {
			if v := measureValue(lookupAny(raw, p)); v != nil {
				out[canon] = v
				break
			}
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

/********** tiny helpers **********/

// lookupAny: safe nested lookup with dot paths on maps.
func lookupAny(m map[string]any, path string) any {
	cur := any(m)
	for _, part := range strings.Split(path, ".") {
		obj, ok := cur.(map[string]any)
		if !ok {
			return nil
		}
		v, ok := obj[part]
		if !ok {
			return nil
		}
		cur = v
	}
	return cur
}

// measureValue normalizes a raw value: numbers stay numbers, numeric
// strings become numbers, other non-empty strings pass through.
func measureValue(v any) any {
	switch t := v.(type) {
	case nil:
		return nil
	case float64:
		return t
	case int:
		return float64(t)
	case string:
		s := strings.TrimSpace(t)
		if s == "" || strings.EqualFold(s, "not available") || strings.EqualFold(s, "n/a") {
			return nil
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return f
		}
		return s
	}
	return nil
}
