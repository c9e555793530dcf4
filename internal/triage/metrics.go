package triage

import "github.com/prometheus/client_golang/prometheus"

// Metrics holds Prometheus metrics for the triage subsystem.
type Metrics struct {
	TriagesTotal          *prometheus.CounterVec
	TriageDuration        *prometheus.HistogramVec
	DetectorDuration      prometheus.Histogram
	DetectorFailuresTotal prometheus.Counter
	AnalyzerDuration      prometheus.Histogram
	AnalyzerCallsTotal    prometheus.Counter
	AnalyzerFailuresTotal prometheus.Counter
	AnalyzerSkipsTotal    prometheus.Counter
	ActionsTotal          *prometheus.CounterVec
	SubmitsTotal          *prometheus.CounterVec
}

// NewMetrics registers and returns triage metrics on the given registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		TriagesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "warden_triages_total",
			Help: "Total triage runs by mode and normalized verdict.",
		}, []string{"mode", "verdict"}),
		TriageDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "warden_triage_duration_seconds",
			Help:    "End-to-end duration of per-image triage in seconds.",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 10), // 0.1s .. ~51s
		}, []string{"mode"}),
		DetectorDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "warden_detector_duration_seconds",
			Help:    "Duration of detector calls in seconds.",
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 10), // 10ms .. ~5s
		}),
		DetectorFailuresTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "warden_detector_failures_total",
			Help: "Total failed detector calls.",
		}),
		AnalyzerDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "warden_analyzer_duration_seconds",
			Help:    "Duration of analyzer calls in seconds.",
			Buckets: prometheus.ExponentialBuckets(0.5, 2, 8), // 0.5s .. ~64s
		}),
		AnalyzerCallsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "warden_analyzer_calls_total",
			Help: "Total analyzer invocations.",
		}),
		AnalyzerFailuresTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "warden_analyzer_failures_total",
			Help: "Total failed analyzer calls.",
		}),
		AnalyzerSkipsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "warden_analyzer_skips_total",
			Help: "Total images whose analyzer call was gated off.",
		}),
		ActionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "warden_actions_total",
			Help: "Total dispatched actions by status.",
		}, []string{"status"}),
		SubmitsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "warden_submits_total",
			Help: "Total image submissions by result.",
		}, []string{"result"}),
	}

	reg.MustRegister(
		m.TriagesTotal,
		m.TriageDuration,
		m.DetectorDuration,
		m.DetectorFailuresTotal,
		m.AnalyzerDuration,
		m.AnalyzerCallsTotal,
		m.AnalyzerFailuresTotal,
		m.AnalyzerSkipsTotal,
		m.ActionsTotal,
		m.SubmitsTotal,
	)

	return m
}

// Hooks returns an EngineHooks that increments the corresponding metrics.
func (m *Metrics) Hooks() EngineHooks {
	return EngineHooks{
		OnDetectorCall: func(seconds float64, failed bool) {
			m.DetectorDuration.Observe(seconds)
			if failed {
				m.DetectorFailuresTotal.Inc()
			}
		},
		OnAnalyzerCall: func(seconds float64, failed bool) {
			m.AnalyzerCallsTotal.Inc()
			m.AnalyzerDuration.Observe(seconds)
			if failed {
				m.AnalyzerFailuresTotal.Inc()
			}
		},
		OnComplete: func(o *Outcome) {
			m.TriagesTotal.WithLabelValues(string(o.Mode), string(o.Prediction.Binary)).Inc()
			m.TriageDuration.WithLabelValues(string(o.Mode)).Observe(o.TotalSeconds)
			if !o.AnalyzerInvoked {
				m.AnalyzerSkipsTotal.Inc()
			}
		},
	}
}
