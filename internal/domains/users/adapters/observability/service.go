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

	userports "github.com/Apurer/pet-adoption-api/internal/domains/users/ports"
)

const tracerName = "github.com/Apurer/pet-adoption-api/internal/domains/users/adapters/observability/service"

// Service decorates the user service with tracing, logging, and metrics.
type Service struct {
	inner   userports.Service
	tracer  trace.Tracer
	logger  *slog.Logger
	metrics serviceMetrics
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithTracer(tr trace.Tracer) Option {
	return func(s *Service) { s.tracer = tr }
}

func WithMeter(m metric.Meter) Option {
	return func(s *Service) { s.metrics = newServiceMetrics(m) }
}

// New wires a decorator around the core service.
func New(inner userports.Service, opts ...Option) userports.Service {
	s := &Service{
		inner:   inner,
		tracer:  nooptrace.NewTracerProvider().Tracer(tracerName),
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
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
		s.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return s
}

func (s *Service) Register(ctx context.Context, input userports.RegisterInput) (*userports.UserProjection, error) {
	ctx, span := s.tracer.Start(ctx, "Service.Register")
	defer span.End()

	result, err := s.inner.Register(ctx, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to register user")
	}
	span.SetAttributes(attribute.Int64("user.id", result.Entity.ID))
	addCounter(ctx, s.metrics.registered, attribute.String("user.role", string(result.Entity.Role)))
	s.logger.LogAttrs(ctx, slog.LevelInfo, "user registered", slog.Int64("user.id", result.Entity.ID))
	return result, nil
}

func (s *Service) EnsureAdmin(ctx context.Context, input userports.RegisterInput) (*userports.UserProjection, error) {
	ctx, span := s.tracer.Start(ctx, "Service.EnsureAdmin")
	defer span.End()

	result, err := s.inner.EnsureAdmin(ctx, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to seed admin")
	}
	s.logger.LogAttrs(ctx, slog.LevelInfo, "admin account ready", slog.Int64("user.id", result.Entity.ID), slog.String("email", result.Entity.Email))
	return result, nil
}

func (s *Service) Login(ctx context.Context, email, password string) (*userports.LoginResult, error) {
	ctx, span := s.tracer.Start(ctx, "Service.Login")
	defer span.End()

	result, err := s.inner.Login(ctx, email, password)
	if err != nil {
		addCounter(ctx, s.metrics.logins, attribute.Bool("success", false))
		return nil, s.handleError(ctx, span, err, "login failed")
	}
	addCounter(ctx, s.metrics.logins, attribute.Bool("success", true))
	span.SetAttributes(attribute.Int64("user.id", result.User.Entity.ID))
	return result, nil
}

func (s *Service) GetByID(ctx context.Context, id int64) (*userports.UserProjection, error) {
	ctx, span := s.tracer.Start(ctx, "Service.GetByID", trace.WithAttributes(attribute.Int64("user.id", id)))
	defer span.End()

	result, err := s.inner.GetByID(ctx, id)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to load user", slog.Int64("user.id", id))
	}
	return result, nil
}

func (s *Service) handleError(ctx context.Context, span trace.Span, err error, msg string, attrs ...slog.Attr) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	attrs = append(attrs, slog.String("error", err.Error()))
	s.logger.LogAttrs(ctx, slog.LevelWarn, msg, attrs...)
	return err
}

type serviceMetrics struct {
	registered metric.Int64Counter
	logins     metric.Int64Counter
}

func newServiceMetrics(m metric.Meter) serviceMetrics {
	if m == nil {
		return serviceMetrics{}
	}
	registered, _ := m.Int64Counter("users.service.registered", metric.WithDescription("Number of accounts created"))
	logins, _ := m.Int64Counter("users.service.logins", metric.WithDescription("Login attempts by outcome"))
	return serviceMetrics{registered: registered, logins: logins}
}

func addCounter(ctx context.Context, counter metric.Int64Counter, attrs ...attribute.KeyValue) {
	if counter == nil {
		return
	}
	counter.Add(ctx, 1, metric.WithAttributes(attrs...))
}

var _ userports.Service = (*Service)(nil)
