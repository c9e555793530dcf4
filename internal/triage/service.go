package triage

import (
	"context"
	"time"

	"github.com/linnemanlabs/go-core/log"
	"github.com/oklog/ulid/v2"

	"github.com/safesitelabs/warden/internal/action"
)

// SubmitResult is the outcome of submitting an image for triage.
type SubmitResult struct {
	ID      string
	Skipped bool
	Reason  string
}

// Service is the business boundary for production triage: dedup, lifecycle,
// async dispatch, and action routing.
type Service struct {
	store   Store
	engine  *Engine
	router  *action.Router
	logger  log.Logger
	metrics *Metrics
}

// NewService creates a triage service. metrics may be nil.
func NewService(store Store, engine *Engine, router *action.Router, logger log.Logger, metrics *Metrics) *Service {
	if logger == nil {
		logger = log.Nop()
	}
	return &Service{
		store:   store,
		engine:  engine,
		router:  router,
		logger:  logger,
		metrics: metrics,
	}
}

// Submit accepts an image for triage, handling dedup and lifecycle.
func (s *Service) Submit(ctx context.Context, imagePath string) (*SubmitResult, error) {
	if imagePath == "" {
		s.countSubmit("invalid")
		return &SubmitResult{Skipped: true, Reason: "empty image path"}, nil
	}

	// dedup: skip if this image is already pending or in progress
	if existing, ok, err := s.store.GetByImage(ctx, imagePath); err != nil {
		return nil, err
	} else if ok && (existing.Status == StatusPending || existing.Status == StatusInProgress) {
		s.countSubmit("duplicate")
		return &SubmitResult{Skipped: true, Reason: "duplicate"}, nil
	}

	id := ulid.Make().String()
	result := &Result{
		ID:        id,
		ImagePath: imagePath,
		Status:    StatusPending,
		CreatedAt: time.Now(),
	}

	if err := s.store.Put(ctx, result); err != nil {
		return nil, err
	}
	s.countSubmit("accepted")

	// kick off async triage - pass only the ID to avoid sharing the Result pointer.
	go s.runTriage(context.WithoutCancel(ctx), id, imagePath)

	return &SubmitResult{ID: id}, nil
}

// Get retrieves a triage result by ID.
func (s *Service) Get(ctx context.Context, id string) (*Result, bool, error) {
	return s.store.Get(ctx, id)
}

func (s *Service) runTriage(ctx context.Context, id, imagePath string) {
	L := s.logger.With("triage_id", id, "image", imagePath)

	result, ok, err := s.store.Get(ctx, id)
	if err != nil || !ok {
		L.Error(ctx, err, "failed to fetch result for triage")
		return
	}

	result.Status = StatusInProgress
	if err := s.store.Put(ctx, result); err != nil {
		L.Error(ctx, err, "failed to update status to in_progress")
		return
	}

	o, err := s.engine.Triage(ctx, imagePath)
	if err != nil {
		result.Status = StatusFailed
		result.Reason = err.Error()
		result.CompletedAt = time.Now()
		if err := s.store.Put(ctx, result); err != nil {
			L.Error(ctx, err, "failed to persist failed triage")
		}
		return
	}

	result.Status = StatusComplete
	result.Verdict = o.Prediction.Binary
	result.HazardCode = o.Prediction.Code
	result.Reason = o.Prediction.Reason
	result.DetectorSeconds = o.DetectorSeconds
	result.AnalyzerSeconds = o.AnalyzerSeconds
	result.TotalSeconds = o.TotalSeconds
	result.CompletedAt = time.Now()

	// route the analyzer verdict; gated-off or failed analysis has no
	// assessment and therefore no action
	if o.Assessment != nil {
		result.RiskLevel = o.Assessment.RiskLevel
		out := s.router.Dispatch(ctx, o.Assessment)
		result.Action = out.Status
		result.Guidelines = out.Guidelines
		if s.metrics != nil {
			s.metrics.ActionsTotal.WithLabelValues(string(out.Status)).Inc()
		}
	}

	if err := s.store.Put(ctx, result); err != nil {
		L.Error(ctx, err, "failed to persist triage result")
	}

	L.Info(ctx, "triage persisted",
		"status", string(result.Status),
		"verdict", string(result.Verdict),
		"action", string(result.Action),
	)
}

func (s *Service) countSubmit(result string) {
	if s.metrics != nil {
		s.metrics.SubmitsTotal.WithLabelValues(result).Inc()
	}
}
