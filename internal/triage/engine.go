package triage

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/linnemanlabs/go-core/log"
	"github.com/safesitelabs/warden/internal/detect"
	"github.com/safesitelabs/warden/internal/vlm"
)

// EngineHooks receives instrumentation callbacks from Engine.Triage.
// Nil fields are skipped.
type EngineHooks struct {
	OnDetectorCall func(seconds float64, failed bool)
	OnAnalyzerCall func(seconds float64, failed bool)
	OnComplete     func(o *Outcome)
}

// Engine runs the staged triage state machine for one image at a time:
// detector, gate, analyzer, normalization. It is pure orchestration with no
// store dependency; collaborators are injected.
type Engine struct {
	detector detect.Detector
	analyzer vlm.Analyzer
	mode     Mode
	policy   Policy
	logger   log.Logger
	hooks    EngineHooks
}

// NewEngine creates a triage engine with the given collaborators.
func NewEngine(detector detect.Detector, analyzer vlm.Analyzer, mode Mode, policy Policy, logger log.Logger, hooks EngineHooks) *Engine {
	if logger == nil {
		logger = log.Nop()
	}
	return &Engine{
		detector: detector,
		analyzer: analyzer,
		mode:     mode,
		policy:   policy,
		logger:   logger,
		hooks:    hooks,
	}
}

// Mode returns the engine's operating mode.
func (e *Engine) Mode() Mode { return e.mode }

// Triage processes one image end to end. A detector failure is fatal to the
// image and returned as an error; an analyzer failure degrades the
// prediction to "no assessment" and is not an error.
func (e *Engine) Triage(ctx context.Context, imagePath string) (*Outcome, error) {
	ctx, span := otel.Tracer("warden.triage").Start(ctx, "triage.image")
	defer span.End()
	span.SetAttributes(
		attribute.String("warden.image", imagePath),
		attribute.String("warden.mode", string(e.mode)),
	)

	L := e.logger.With("image", imagePath, "mode", string(e.mode))
	start := time.Now()

	o := &Outcome{ImagePath: imagePath, Mode: e.mode}

	// stage 1: detector (skipped entirely in vlm-only mode)
	if e.mode == ModeVLMOnly {
		o.Detection = detect.EmptyNormal(imagePath)
	} else {
		t0 := time.Now()
		res, err := e.detector.Detect(ctx, imagePath)
		o.DetectorSeconds = time.Since(t0).Seconds()
		if e.hooks.OnDetectorCall != nil {
			e.hooks.OnDetectorCall(o.DetectorSeconds, err != nil)
		}
		if err != nil {
			L.Error(ctx, err, "detector call failed")
			return nil, fmt.Errorf("detect %s: %w", imagePath, err)
		}
		o.Detection = res
		L.Info(ctx, "detection complete",
			"verdict", string(res.Verdict),
			"items", len(res.Items),
			"detector_seconds", o.DetectorSeconds,
		)
	}

	// stage 2: gate
	analyze := false
	switch e.mode {
	case ModeVLMOnly, ModeVLMEvaluate:
		analyze = true
	case ModeHybrid:
		analyze = o.Detection.Verdict == detect.VerdictAnomaly
	}

	// stage 3: analyzer
	if analyze {
		o.AnalyzerInvoked = true
		t0 := time.Now()
		as, err := e.analyzer.Analyze(ctx, imagePath)
		o.AnalyzerSeconds = time.Since(t0).Seconds()
		if e.hooks.OnAnalyzerCall != nil {
			e.hooks.OnAnalyzerCall(o.AnalyzerSeconds, err != nil)
		}
		if err != nil {
			// degrade to "no assessment", the run continues
			L.Warn(ctx, "analyzer call failed, degrading prediction", "error", err.Error())
		} else {
			o.Assessment = as
			L.Info(ctx, "analysis complete",
				"risk_level", as.RiskLevel,
				"hazard_code", as.HazardCode,
				"analyzer_seconds", o.AnalyzerSeconds,
			)
		}
	} else {
		L.Info(ctx, "analyzer skipped by detector verdict")
	}

	// stage 4: normalize
	o.Prediction = Normalize(o.Assessment, !analyze, e.policy)
	o.TotalSeconds = time.Since(start).Seconds()

	span.SetAttributes(
		attribute.String("warden.verdict", string(o.Prediction.Binary)),
		attribute.String("warden.hazard_code", o.Prediction.Code),
		attribute.Bool("warden.analyzer_invoked", o.AnalyzerInvoked),
	)

	if e.hooks.OnComplete != nil {
		e.hooks.OnComplete(o)
	}

	L.Info(ctx, "triage complete",
		"verdict", string(o.Prediction.Binary),
		"hazard_code", o.Prediction.Code,
		"analyzer_invoked", o.AnalyzerInvoked,
		"total_seconds", o.TotalSeconds,
	)
	return o, nil
}
