package observability

import (
	"context"
	"io"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	nooptrace "go.opentelemetry.io/otel/trace/noop"

	"github.com/Apurer/pet-adoption-api/internal/domains/adoptions/domain"
	"github.com/Apurer/pet-adoption-api/internal/domains/adoptions/ports"
)

const tracerName = "github.com/Apurer/pet-adoption-api/internal/domains/adoptions/adapters/observability/service"

// Service decorates the adoption lifecycle manager with tracing, logging, and metrics.
type Service struct {
	inner   ports.Service
	tracer  trace.Tracer
	logger  *slog.Logger
	metrics serviceMetrics
}

type Option func(*Service)

// WithLogger injects a slog logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithTracer injects a tracer implementation.
func WithTracer(tr trace.Tracer) Option {
	return func(s *Service) {
		s.tracer = tr
	}
}

// WithMeter injects the meter used to create service metrics instruments.
func WithMeter(m metric.Meter) Option {
	return func(s *Service) {
		s.metrics = newServiceMetrics(m)
	}
}

// New wires a decorator around the core service.
func New(inner ports.Service, opts ...Option) ports.Service {
	s := &Service{
		inner:   inner,
		tracer:  nooptrace.NewTracerProvider().Tracer(tracerName),
		logger:  defaultLogger(),
		metrics: newServiceMetrics(nil),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	if s.tracer == nil {
		s.tracer = nooptrace.NewTracerProvider().Tracer(tracerName)
	}
	if s.logger == nil {
		s.logger = defaultLogger()
	}
	return s
}

func (s *Service) Submit(ctx context.Context, input ports.SubmitInput) (*ports.ApplicationProjection, error) {
	ctx, span := s.startSpan(ctx, "Service.Submit",
		attribute.Int64("user.id", input.UserID),
		attribute.Int64("pet.id", input.PetID),
	)
	defer span.End()

	s.logInfo(ctx, "submitting adoption application", slog.Int64("user.id", input.UserID), slog.Int64("pet.id", input.PetID))
	result, err := s.inner.Submit(ctx, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to submit adoption application",
			slog.Int64("user.id", input.UserID), slog.Int64("pet.id", input.PetID))
	}
	if result != nil && result.Entity != nil {
		span.SetAttributes(attribute.Int64("application.id", result.Entity.ID))
		s.metrics.recordSubmitted(ctx)
		s.logInfo(ctx, "adoption application submitted", slog.Int64("application.id", result.Entity.ID))
	}
	return result, nil
}

func (s *Service) Decide(ctx context.Context, input ports.DecideInput) (*ports.DecisionOutcome, error) {
	ctx, span := s.startSpan(ctx, "Service.Decide",
		attribute.Int64("application.id", input.ApplicationID),
		attribute.String("application.decision", input.Status),
	)
	defer span.End()

	s.logInfo(ctx, "deciding adoption application", slog.Int64("application.id", input.ApplicationID), slog.String("decision", input.Status))
	outcome, err := s.inner.Decide(ctx, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to decide adoption application", slog.Int64("application.id", input.ApplicationID))
	}
	if outcome != nil && outcome.Application != nil && outcome.Application.Entity != nil {
		status := outcome.Application.Entity.Status
		span.SetAttributes(
			attribute.String("pet.status", string(outcome.Pet.Status)),
			attribute.Int("application.auto_rejected", len(outcome.AutoRejected)),
		)
		s.metrics.recordDecided(ctx, status, len(outcome.AutoRejected))
		s.logInfo(ctx, "adoption application decided",
			slog.Int64("application.id", input.ApplicationID),
			slog.String("status", string(status)),
			slog.String("pet.status", string(outcome.Pet.Status)),
			slog.Int("auto_rejected", len(outcome.AutoRejected)),
		)
	}
	return outcome, nil
}

func (s *Service) Delete(ctx context.Context, input ports.DeleteInput) (*ports.DeletionOutcome, error) {
	ctx, span := s.startSpan(ctx, "Service.Delete", attribute.Int64("application.id", input.ApplicationID))
	defer span.End()

	s.logInfo(ctx, "deleting adoption application", slog.Int64("application.id", input.ApplicationID))
	outcome, err := s.inner.Delete(ctx, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to delete adoption application", slog.Int64("application.id", input.ApplicationID))
	}
	s.metrics.recordDeleted(ctx)
	if outcome != nil {
		s.logInfo(ctx, "adoption application deleted",
			slog.Int64("application.id", outcome.ApplicationID),
			slog.String("pet.status", string(outcome.PetStatus)),
		)
	}
	return outcome, nil
}

func (s *Service) List(ctx context.Context, input ports.ListInput) ([]*ports.ApplicationView, error) {
	ctx, span := s.startSpan(ctx, "Service.List", attribute.StringSlice("application.statuses.requested", input.Statuses))
	defer span.End()

	result, err := s.inner.List(ctx, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to list adoption applications", slog.Any("statuses", input.Statuses))
	}
	span.SetAttributes(attribute.Int("application.result.count", len(result)))
	return result, nil
}

func (s *Service) ListForUser(ctx context.Context, caller ports.Caller, userID int64) ([]*ports.ApplicationView, error) {
	ctx, span := s.startSpan(ctx, "Service.ListForUser", attribute.Int64("user.id", userID))
	defer span.End()

	result, err := s.inner.ListForUser(ctx, caller, userID)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to list user adoption applications", slog.Int64("user.id", userID))
	}
	span.SetAttributes(attribute.Int("application.result.count", len(result)))
	return result, nil
}

func (s *Service) NotifyDecision(ctx context.Context, outcome ports.DecisionOutcome) error {
	ctx, span := s.startSpan(ctx, "Service.NotifyDecision")
	defer span.End()

	if err := s.inner.NotifyDecision(ctx, outcome); err != nil {
		return s.handleError(ctx, span, err, "failed to notify applicants")
	}
	return nil
}

func (s *Service) Inbox(ctx context.Context, userID int64) ([]ports.Message, error) {
	ctx, span := s.startSpan(ctx, "Service.Inbox", attribute.Int64("user.id", userID))
	defer span.End()

	result, err := s.inner.Inbox(ctx, userID)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to load inbox", slog.Int64("user.id", userID))
	}
	return result, nil
}

func (s *Service) startSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return s.tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

func (s *Service) logInfo(ctx context.Context, msg string, attrs ...slog.Attr) {
	s.logger.LogAttrs(ctx, slog.LevelInfo, msg, attrs...)
}

func (s *Service) handleError(ctx context.Context, span trace.Span, err error, msg string, attrs ...slog.Attr) error {
	if err == nil {
		return nil
	}
	if span != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	attrs = append(attrs, slog.String("error", err.Error()))
	s.logger.LogAttrs(ctx, slog.LevelError, msg, attrs...)
	return err
}

func defaultLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type serviceMetrics struct {
	submitted        metric.Int64Counter
	decided          metric.Int64Counter
	deleted          metric.Int64Counter
	siblingsRejected metric.Int64Counter
}

func newServiceMetrics(m metric.Meter) serviceMetrics {
	if m == nil {
		return serviceMetrics{}
	}
	submitted, _ := m.Int64Counter("adoptions.service.submitted", metric.WithDescription("Number of adoption applications submitted"))
	decided, _ := m.Int64Counter("adoptions.service.decided", metric.WithDescription("Number of adoption applications decided"))
	deleted, _ := m.Int64Counter("adoptions.service.deleted", metric.WithDescription("Number of adoption applications deleted"))
	siblingsRejected, _ := m.Int64Counter("adoptions.service.siblings_rejected", metric.WithDescription("Number of pending applications rejected by an approval"))
	return serviceMetrics{
		submitted:        submitted,
		decided:          decided,
		deleted:          deleted,
		siblingsRejected: siblingsRejected,
	}
}

func (m serviceMetrics) recordSubmitted(ctx context.Context) {
	addCounter(ctx, m.submitted, 1)
}

func (m serviceMetrics) recordDecided(ctx context.Context, status domain.Status, autoRejected int) {
	addCounter(ctx, m.decided, 1, attribute.String("application.status", string(status)))
	if autoRejected > 0 {
		addCounter(ctx, m.siblingsRejected, int64(autoRejected))
	}
}

func (m serviceMetrics) recordDeleted(ctx context.Context) {
	addCounter(ctx, m.deleted, 1)
}

func addCounter(ctx context.Context, counter metric.Int64Counter, value int64, attrs ...attribute.KeyValue) {
	if counter == nil {
		return
	}
	counter.Add(ctx, value, metric.WithAttributes(attrs...))
}

var _ ports.Service = (*Service)(nil)
