package action

import (
	"context"

	"github.com/linnemanlabs/go-core/log"
	"github.com/safesitelabs/warden/internal/vlm"
)

// Router maps a risk assessment to its dispatch action.
type Router struct {
	generator Generator
	logger    log.Logger
}

// NewRouter creates a router. generator may be nil, in which case HIGH
// assessments degrade to a generation-failed output.
func NewRouter(generator Generator, logger log.Logger) *Router {
	if logger == nil {
		logger = log.Nop()
	}
	return &Router{
		generator: generator,
		logger:    logger,
	}
}

// Dispatch performs the action for one assessment. Re-running with an
// equivalent assessment produces an equivalent output.
func (r *Router) Dispatch(ctx context.Context, as *vlm.Assessment) *Output {
	if as == nil || !vlm.KnownRiskLevel(as.RiskLevel) {
		out := &Output{Status: StatusUnknownRiskLevel}
		if as != nil {
			out.RiskLevel = as.RiskLevel
			out.HazardCode = as.HazardCode
			out.Reason = as.Reason
		}
		r.logger.Warn(ctx, "unrecognized risk level, no action taken",
			"risk_level", out.RiskLevel,
		)
		return out
	}

	out := &Output{
		RiskLevel:  as.RiskLevel,
		HazardCode: as.HazardCode,
		Reason:     as.Reason,
	}

	L := r.logger.With("image", as.ImagePath, "hazard_code", as.HazardCode)

	switch as.RiskLevel {
	case vlm.RiskLow:
		out.Status = StatusLogged
		L.Info(ctx, "low risk recorded", "reason", as.Reason)

	case vlm.RiskMed:
		// Confirmation is an operator acknowledgment; the notification
		// channel is modeled as a no-op here.
		out.Status = StatusConfirmationRequested
		L.Info(ctx, "confirmation requested", "reason", as.Reason)

	case vlm.RiskHigh:
		if r.generator == nil {
			out.Status = StatusGuidelineFailed
			L.Warn(ctx, "no guidance generator configured")
			break
		}
		g, err := r.generator.Generate(ctx, as.HazardCode, as.Reason)
		if err != nil {
			out.Status = StatusGuidelineFailed
			L.Error(ctx, err, "guideline generation failed")
			break
		}
		out.Status = StatusGuidelineGenerated
		out.Guidelines = g
		L.Info(ctx, "multilingual guideline generated")
	}

	return out
}
