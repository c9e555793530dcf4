package evaluation

import (
	"context"

	"github.com/linnemanlabs/go-core/log"
	"github.com/safesitelabs/warden/internal/detect"
	"github.com/safesitelabs/warden/internal/groundtruth"
	"github.com/safesitelabs/warden/internal/triage"
)

// Runner drives one evaluation pass: images are triaged sequentially, one
// fully processed before the next begins, and scored against ground truth.
type Runner struct {
	engine   *triage.Engine
	resolver groundtruth.Resolver
	logger   log.Logger
}

// NewRunner creates an evaluation runner.
func NewRunner(engine *triage.Engine, resolver groundtruth.Resolver, logger log.Logger) *Runner {
	if logger == nil {
		logger = log.Nop()
	}
	return &Runner{
		engine:   engine,
		resolver: resolver,
		logger:   logger,
	}
}

// Run triages and scores every image. A detector failure skips that image
// (it is not scored); analyzer failures are already degraded by the engine.
// Stops between images when ctx is done.
func (r *Runner) Run(ctx context.Context, images []string) (*Accumulator, error) {
	acc := NewAccumulator()

	for _, img := range images {
		if err := ctx.Err(); err != nil {
			return acc, err
		}

		gt := r.resolver.Resolve(ctx, img)

		o, err := r.engine.Triage(ctx, img)
		if err != nil {
			r.logger.Error(ctx, err, "image skipped", "image", img)
			continue
		}

		row := acc.Add(gt, o)
		r.logger.Info(ctx, "image scored",
			"image", row.Image,
			"gt_binary", string(row.GTBinary),
			"pred_binary", string(row.PredBinary),
			"pred_code", row.PredCode,
			"acc_binary", row.AccBinary,
			"acc_code", row.AccCode,
		)
	}

	return acc, nil
}

// LogSummary emits the run-level aggregates as one structured event.
func LogSummary(ctx context.Context, logger log.Logger, mode triage.Mode, s Summary) {
	logger.Info(ctx, "evaluation summary",
		"mode", string(mode),
		"images", s.Rows,
		"binary_accuracy", s.BinaryAccuracy,
		"code_accuracy", s.CodeAccuracy,
		"restricted_code_accuracy", s.RestrictedCodeAccuracy,
		"anomaly_rows", s.AnomalyRows,
		"mean_detector_seconds", s.MeanDetectorSeconds,
		"mean_analyzer_seconds", s.MeanAnalyzerSeconds,
		"mean_total_seconds", s.MeanTotalSeconds,
		"analyzer_calls", s.AnalyzerCalls,
		"analyzer_call_rate", s.AnalyzerCallRate,
		"confusion_tp", s.Confusion.Count(detect.VerdictAnomaly, detect.VerdictAnomaly),
		"confusion_fn", s.Confusion.Count(detect.VerdictAnomaly, detect.VerdictNormal),
		"confusion_fp", s.Confusion.Count(detect.VerdictNormal, detect.VerdictAnomaly),
		"confusion_tn", s.Confusion.Count(detect.VerdictNormal, detect.VerdictNormal),
	)
}
