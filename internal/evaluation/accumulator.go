package evaluation

import (
	"github.com/safesitelabs/warden/internal/detect"
	"github.com/safesitelabs/warden/internal/groundtruth"
	"github.com/safesitelabs/warden/internal/triage"
)

// Row is the scored record for one evaluated image. Rows are append-only and
// never revised after creation.
type Row struct {
	Image           string
	GTCodes         []string
	PredCode        string
	GTBinary        detect.Verdict
	PredBinary      detect.Verdict
	AccBinary       bool
	AccCode         bool
	Reason          string
	DetectorSeconds float64
	AnalyzerSeconds float64
	TotalSeconds    float64
}

// ConfusionMatrix counts binary outcomes over {ANOMALY, NORMAL}.
// Accumulation is order-independent.
type ConfusionMatrix struct {
	counts [2][2]int // [true][pred], index 0 = ANOMALY, 1 = NORMAL
}

func verdictIndex(v detect.Verdict) int {
	if v == detect.VerdictAnomaly {
		return 0
	}
	return 1
}

// Add records one (true, predicted) pair.
func (c *ConfusionMatrix) Add(gt, pred detect.Verdict) {
	c.counts[verdictIndex(gt)][verdictIndex(pred)]++
}

// Count returns the cell count for (true, predicted).
func (c *ConfusionMatrix) Count(gt, pred detect.Verdict) int {
	return c.counts[verdictIndex(gt)][verdictIndex(pred)]
}

// Total returns the sum of all cells.
func (c *ConfusionMatrix) Total() int {
	var n int
	for _, row := range c.counts {
		for _, v := range row {
			n += v
		}
	}
	return n
}

// Summary is the aggregate result of an evaluation run.
type Summary struct {
	Rows                   int
	BinaryAccuracy         float64
	CodeAccuracy           float64
	RestrictedCodeAccuracy float64 // over rows whose ground truth is non-empty
	AnomalyRows            int
	MeanDetectorSeconds    float64
	MeanAnalyzerSeconds    float64
	MeanTotalSeconds       float64
	AnalyzerCalls          int
	AnalyzerCallRate       float64
	Confusion              ConfusionMatrix
}

// Accumulator collects per-image outcomes across a run. Totals grow
// monotonically; nothing is revised once added.
type Accumulator struct {
	rows          []Row
	confusion     ConfusionMatrix
	analyzerCalls int

	binaryCorrect     int
	codeCorrect       int
	restrictedTotal   int
	restrictedCorrect int

	detectorSeconds float64
	analyzerSeconds float64
	totalSeconds    float64
}

// NewAccumulator creates an empty accumulator.
func NewAccumulator() *Accumulator {
	return &Accumulator{}
}

// Add scores one image against its ground truth and appends the row.
func (a *Accumulator) Add(gt *groundtruth.Record, o *triage.Outcome) Row {
	row := Row{
		Image:           gt.ImageID,
		GTCodes:         gt.Codes,
		PredCode:        o.Prediction.Code,
		GTBinary:        gt.Binary(),
		PredBinary:      o.Prediction.Binary,
		Reason:          o.Prediction.Reason,
		DetectorSeconds: o.DetectorSeconds,
		AnalyzerSeconds: o.AnalyzerSeconds,
		TotalSeconds:    o.TotalSeconds,
	}

	row.AccBinary = row.GTBinary == row.PredBinary

	// multi-label tolerance: any member of the ground-truth set counts,
	// and "NONE" is correct against an empty set
	row.AccCode = gt.Has(row.PredCode) ||
		(row.PredCode == triage.NoHazardCode && len(gt.Codes) == 0)

	a.rows = append(a.rows, row)
	a.confusion.Add(row.GTBinary, row.PredBinary)

	if row.AccBinary {
		a.binaryCorrect++
	}
	if row.AccCode {
		a.codeCorrect++
	}
	if row.GTBinary == detect.VerdictAnomaly {
		a.restrictedTotal++
		if row.AccCode {
			a.restrictedCorrect++
		}
	}
	if o.AnalyzerInvoked {
		a.analyzerCalls++
	}

	a.detectorSeconds += o.DetectorSeconds
	a.analyzerSeconds += o.AnalyzerSeconds
	a.totalSeconds += o.TotalSeconds

	return row
}

// Rows returns the scored rows in insertion order.
func (a *Accumulator) Rows() []Row {
	return a.rows
}

// Summary computes the run-level aggregates.
func (a *Accumulator) Summary() Summary {
	s := Summary{
		Rows:          len(a.rows),
		AnomalyRows:   a.restrictedTotal,
		AnalyzerCalls: a.analyzerCalls,
		Confusion:     a.confusion,
	}
	if s.Rows == 0 {
		return s
	}

	n := float64(s.Rows)
	s.BinaryAccuracy = float64(a.binaryCorrect) / n
	s.CodeAccuracy = float64(a.codeCorrect) / n
	s.MeanDetectorSeconds = a.detectorSeconds / n
	s.MeanAnalyzerSeconds = a.analyzerSeconds / n
	s.MeanTotalSeconds = a.totalSeconds / n
	s.AnalyzerCallRate = float64(a.analyzerCalls) / n

	if a.restrictedTotal > 0 {
		s.RestrictedCodeAccuracy = float64(a.restrictedCorrect) / float64(a.restrictedTotal)
	}
	return s
}
