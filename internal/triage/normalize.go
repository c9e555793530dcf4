package triage

import (
	"github.com/safesitelabs/warden/internal/detect"
	"github.com/safesitelabs/warden/internal/hazard"
	"github.com/safesitelabs/warden/internal/vlm"
)

const (
	// NoHazardCode is the prediction code when no hazard is predicted.
	NoHazardCode = "NONE"

	// SkipReason marks images whose analyzer call was gated off by a
	// NORMAL detector verdict.
	SkipReason = "skipped by detector"

	// NoAssessmentReason marks images whose analyzer call failed.
	NoAssessmentReason = "no assessment"
)

// Normalize derives the triage prediction from an assessment (or its
// absence). skipped distinguishes a gated-off analyzer from a failed one;
// both degrade to a NORMAL/NONE prediction with different reasons.
func Normalize(as *vlm.Assessment, skipped bool, policy Policy) Prediction {
	if as == nil {
		reason := NoAssessmentReason
		if skipped {
			reason = SkipReason
		}
		return Prediction{
			Code:   NoHazardCode,
			Binary: detect.VerdictNormal,
			Reason: reason,
		}
	}

	code := as.HazardCode
	if code == "" {
		code = NoHazardCode
	}

	binary := detect.VerdictNormal
	if !hazard.IsSafeCode(code) {
		binary = detect.VerdictAnomaly
	}
	if policy == PolicyStrict && vlm.KnownRiskLevel(as.RiskLevel) {
		binary = detect.VerdictAnomaly
	}

	return Prediction{
		Code:   code,
		Binary: binary,
		Reason: as.Reason,
	}
}
