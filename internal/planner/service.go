package planner

import (
	"context"
	"strings"
	"time"

	"github.com/felixgeelhaar/dialectic/internal/domain"
	"github.com/felixgeelhaar/dialectic/internal/errors"
	"github.com/felixgeelhaar/dialectic/internal/job"
	"github.com/felixgeelhaar/dialectic/internal/log"
	"github.com/felixgeelhaar/dialectic/internal/metrics"
	"github.com/felixgeelhaar/dialectic/internal/recipe"
)

// Request is one planning invocation
type Request struct {
	Documents []job.SourceDocument
	Parent    job.JobRow
	Step      recipe.Step
	AuthToken string
}

// Service runs planners with parent validation, logging and metrics
type Service struct {
	logger  *log.Logger
	metrics *metrics.Metrics
	strict  bool
}

// Option configures a Service
type Option func(*Service)

// WithLogger sets the logger. The default is log.DefaultLogger(), which
// discards everything unless the process installed a logger.
func WithLogger(l *log.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithMetrics records every invocation on m
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithStrictStrategies rejects unknown strategy keys instead of falling
// back to the default planner.
func WithStrictStrategies() Option {
	return func(s *Service) {
		s.strict = true
	}
}

// NewService creates a planning service
func NewService(opts ...Option) *Service {
	s := &Service{logger: log.DefaultLogger()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Plan validates the parent job and runs the planner named by the step
func (s *Service) Plan(ctx context.Context, req Request) ([]job.ExecuteJobPayload, error) {
	strategy := req.Step.GranularityStrategy
	logger := s.logger.With("step_id", req.Step.ID, "strategy", strategy, "parent_job_id", req.Parent.ID)

	start := time.Now()
	payloads, err := s.plan(ctx, req)
	elapsed := time.Since(start)

	if err != nil {
		s.metrics.ObservePlan(strategy, 0, elapsed, string(errors.CodeOf(err)))
		logger.WithError(err).Error("planning failed")
		return nil, err
	}

	s.metrics.ObservePlan(strategy, len(payloads), elapsed, "")
	logger.Debug("planned child jobs", "documents", len(req.Documents), "jobs", len(payloads), "duration", elapsed)
	return payloads, nil
}

func (s *Service) plan(ctx context.Context, req Request) ([]job.ExecuteJobPayload, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := ValidateParent(req.Parent); err != nil {
		return nil, err
	}

	var planner Planner
	if s.strict {
		p, err := LookupStrict(req.Step.GranularityStrategy)
		if err != nil {
			return nil, err
		}
		planner = p
	} else {
		planner = Lookup(req.Step.GranularityStrategy)
	}

	return planner(req.Documents, req.Parent, req.Step, req.AuthToken)
}

// ValidateParent checks that a job can be planned from: a PLAN job whose
// payload names the project, session, stage and model.
func ValidateParent(parent job.JobRow) error {
	if parent.JobType != "" && parent.JobType != domain.JobTypePlan {
		return invalidParent(parent, "job_type must be PLAN, got "+string(parent.JobType))
	}

	var missing []string
	if parent.Payload.ProjectID == "" {
		missing = append(missing, "projectId")
	}
	if parent.Payload.SessionID == "" && parent.SessionID == "" {
		missing = append(missing, "sessionId")
	}
	if stageOf(parent) == "" {
		missing = append(missing, "stageSlug")
	}
	if parent.Payload.ModelID == "" {
		missing = append(missing, "model_id")
	}
	if len(missing) > 0 {
		return invalidParent(parent, "payload is missing "+strings.Join(missing, ", "))
	}
	return nil
}

func invalidParent(parent job.JobRow, details string) error {
	return errors.Newf(errors.ErrCodePlanInvalidParent, "Invalid parent job %q: %s", parent.ID, details).
		WithSuggestion("Plan from the PLAN job row as stored, with its full payload")
}
