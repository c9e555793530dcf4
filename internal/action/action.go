// Package action routes a normalized risk assessment to its dispatch action.
// It is a terminal four-state mapping: LOW logs, MED requests confirmation,
// HIGH generates multilingual guidance, anything else is reported as an
// unknown risk level. Dispatch never fails; generator errors degrade to an
// error-status output.
package action

import "context"

// Status names the action taken for one assessment.
type Status string

const (
	StatusLogged                Status = "logged"
	StatusConfirmationRequested Status = "confirmation_requested"
	StatusGuidelineGenerated    Status = "multilingual_guideline_generated"
	StatusGuidelineFailed       Status = "guideline_generation_failed"
	StatusUnknownRiskLevel      Status = "unknown_risk_level"
)

// Guidelines holds the generated guidance text per language.
type Guidelines struct {
	Ko string `json:"guideline_ko"`
	En string `json:"guideline_en"`
	Vi string `json:"guideline_vi"`
}

// Output is the final action-layer record for one assessment.
type Output struct {
	Status     Status      `json:"status"`
	RiskLevel  string      `json:"risk_level_processed,omitempty"`
	HazardCode string      `json:"hazard_code_processed,omitempty"`
	Reason     string      `json:"reason_detected,omitempty"`
	Guidelines *Guidelines `json:"guidelines,omitempty"`
}

// Generator is the interface for the guidance-generation collaborator.
type Generator interface {
	Generate(ctx context.Context, hazardCode, reason string) (*Guidelines, error)
}
