// Package vlm defines the vision-language risk analyzer contract and its
// output model. The analyzer is an external collaborator; callers degrade to
// a "no assessment" prediction when it fails.
package vlm

import "context"

// Risk levels the analyzer may report.
const (
	RiskLow  = "LOW"
	RiskMed  = "MED"
	RiskHigh = "HIGH"
)

// Assessment is the analyzer's risk judgment for one image.
type Assessment struct {
	RiskLevel  string `json:"risk_level"`
	HazardCode string `json:"hazard_code"`
	Reason     string `json:"reason"`
	ImagePath  string `json:"image_path,omitempty"`
}

// KnownRiskLevel reports whether level is one of the recognized risk levels.
func KnownRiskLevel(level string) bool {
	switch level {
	case RiskLow, RiskMed, RiskHigh:
		return true
	}
	return false
}

// Analyzer is the interface for any risk-analyzer backend.
type Analyzer interface {
	Analyze(ctx context.Context, imagePath string) (*Assessment, error)
}
