// Package hazard holds the compiled hazard-code tables for the warehouse
// safety dataset: the whitelist of hazard-bearing codes, the trained model's
// class-index table, the detector class names that count as anomalies, and
// the "safe" keyword normalization shared by the triage and evaluation paths.
package hazard

import "strings"

// riskCodes is the whitelist of codes that mark an image as hazardous.
// UA = unsafe action, UC = unsafe condition, SO-21/SO-22 are the two
// safety-object codes the dataset treats as situation-level hazards.
var riskCodes = []string{
	"UA-01", "UA-02", "UA-03", "UA-04", "UA-05", "UA-06", "UA-10",
	"UA-12", "UA-13", "UA-14", "UA-16", "UA-17", "UA-20",
	"UC-02", "UC-06", "UC-08", "UC-09", "UC-10", "UC-13", "UC-14",
	"UC-15", "UC-16", "UC-17", "UC-18", "UC-19", "UC-20", "UC-21", "UC-22",
	"SO-21", "SO-22",
}

// classIndexToCode maps the trained model's integer class index back to the
// dataset code. It is the inverse of the mapping used when the dataset was
// converted to the flat-label layout, and must stay in sync with it.
var classIndexToCode = map[int]string{
	0: "SO-01", 1: "SO-02", 2: "SO-03", 3: "SO-06", 4: "SO-07",
	5: "SO-08", 6: "SO-12", 7: "SO-13", 8: "SO-14", 9: "SO-15",
	10: "SO-16", 11: "SO-17", 12: "SO-18", 13: "SO-19", 14: "SO-21",
	15: "SO-22", 16: "SO-23",
	17: "WO-01", 18: "WO-02", 19: "WO-03", 20: "WO-04", 21: "WO-05",
	22: "WO-06", 23: "WO-07",
	24: "UA-01", 25: "UA-02", 26: "UA-03", 27: "UA-04", 28: "UA-05",
	29: "UA-06", 30: "UA-16",
	31: "UC-09", 32: "UC-10", 33: "UC-15", 34: "UC-16",
}

// detectorHazardClasses are the detector class names whose presence marks a
// detection result as an anomaly. These are the unsafe-action and
// unsafe-condition class names of the trained model.
var detectorHazardClasses = []string{
	"no_helmet", "no_safety_shoes", "no_safety_vest", "danger_zone_entry",
	"phone_while_driving", "speeding", "other_unsafe_action",
	"pathway_obstacle", "improper_stacking", "poor_lighting",
	"other_unsafe_condition",
}

// safeKeywords are hazard-code values that normalize to "no hazard".
var safeKeywords = map[string]struct{}{
	"NONE": {},
	"SAFE": {},
	"N/A":  {},
	"NULL": {},
}

// Set is a membership set of code or class-name strings.
type Set map[string]struct{}

// NewSet builds a Set from the given values.
func NewSet(values ...string) Set {
	s := make(Set, len(values))
	for _, v := range values {
		s[v] = struct{}{}
	}
	return s
}

// Contains reports whether v is a member of the set.
func (s Set) Contains(v string) bool {
	_, ok := s[v]
	return ok
}

// DefaultWhitelist returns the hazard-code whitelist.
func DefaultWhitelist() Set {
	return NewSet(riskCodes...)
}

// DefaultDetectorClasses returns the detector class names treated as hazards.
func DefaultDetectorClasses() Set {
	return NewSet(detectorHazardClasses...)
}

// DefaultIndexTable returns a copy of the class-index to code table.
func DefaultIndexTable() map[int]string {
	t := make(map[int]string, len(classIndexToCode))
	for k, v := range classIndexToCode {
		t[k] = v
	}
	return t
}

// IsSafeCode reports whether a predicted hazard code normalizes to "no
// hazard". Comparison is case-insensitive and whitespace-trimmed.
func IsSafeCode(code string) bool {
	_, ok := safeKeywords[strings.ToUpper(strings.TrimSpace(code))]
	return ok
}
