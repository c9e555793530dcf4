package triage

import (
	"fmt"
	"time"

	"github.com/safesitelabs/warden/internal/action"
	"github.com/safesitelabs/warden/internal/detect"
	"github.com/safesitelabs/warden/internal/vlm"
)

// Mode selects which stages run for an image.
type Mode string

const (
	// ModeHybrid runs the detector and invokes the analyzer only when the
	// detector verdict is ANOMALY (cost-gating).
	ModeHybrid Mode = "hybrid"

	// ModeVLMOnly skips the detector entirely and always analyzes.
	ModeVLMOnly Mode = "vlm-only"

	// ModeVLMEvaluate runs the detector for instrumentation but analyzes
	// every image regardless of its verdict.
	ModeVLMEvaluate Mode = "vlm-evaluate"
)

// ParseMode validates a mode string.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeHybrid, ModeVLMOnly, ModeVLMEvaluate:
		return Mode(s), nil
	}
	return "", fmt.Errorf("unknown mode %q (want hybrid, vlm-only or vlm-evaluate)", s)
}

// Policy selects how an assessment is normalized into a binary verdict.
type Policy string

const (
	// PolicyLenient derives the binary verdict from the hazard code alone.
	PolicyLenient Policy = "lenient"

	// PolicyStrict additionally forces ANOMALY whenever the analyzer
	// reports a recognized risk level, even with a safe hazard code.
	PolicyStrict Policy = "strict"
)

// ParsePolicy validates a policy string.
func ParsePolicy(s string) (Policy, error) {
	switch Policy(s) {
	case PolicyLenient, PolicyStrict:
		return Policy(s), nil
	}
	return "", fmt.Errorf("unknown policy %q (want lenient or strict)", s)
}

// Prediction is the normalized triage prediction for one image.
type Prediction struct {
	Code   string         // hazard code, "NONE" when no hazard predicted
	Binary detect.Verdict // ANOMALY or NORMAL
	Reason string         // analyzer reason or a skip sentinel
}

// Outcome is everything the engine produced for one image.
type Outcome struct {
	ImagePath       string
	Mode            Mode
	Detection       *detect.Result
	Assessment      *vlm.Assessment // nil when skipped or failed
	Prediction      Prediction
	AnalyzerInvoked bool
	DetectorSeconds float64
	AnalyzerSeconds float64
	TotalSeconds    float64
}

// Status tracks where a triage is in its lifecycle.
type Status string

const (
	// StatusPending means created, not yet started
	StatusPending Status = "pending"

	// StatusInProgress means currently being processed
	StatusInProgress Status = "in_progress"

	// StatusComplete means finished successfully
	StatusComplete Status = "complete"

	// StatusFailed means finished with errors
	StatusFailed Status = "failed"
)

// Result is the stored outcome of a production triage run.
type Result struct {
	ID              string             `json:"id"`
	ImagePath       string             `json:"image_path"`
	Status          Status             `json:"status"`
	Verdict         detect.Verdict     `json:"verdict,omitempty"`
	HazardCode      string             `json:"hazard_code,omitempty"`
	RiskLevel       string             `json:"risk_level,omitempty"`
	Reason          string             `json:"reason,omitempty"`
	Action          action.Status      `json:"action,omitempty"`
	Guidelines      *action.Guidelines `json:"guidelines,omitempty"`
	CreatedAt       time.Time          `json:"created_at"`
	CompletedAt     time.Time          `json:"completed_at,omitempty"`
	DetectorSeconds float64            `json:"detector_seconds,omitempty"`
	AnalyzerSeconds float64            `json:"analyzer_seconds,omitempty"`
	TotalSeconds    float64            `json:"total_seconds,omitempty"`
}
