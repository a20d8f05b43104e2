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

	"github.com/earthenstore/storefront-api/internal/domains/users/domain"
	"github.com/earthenstore/storefront-api/internal/domains/users/ports"
)

const tracerName = "github.com/earthenstore/storefront-api/internal/domains/users/adapters/observability/service"

// Service decorates the users application port with tracing, logging, and metrics.
type Service struct {
	inner   ports.Service
	tracer  trace.Tracer
	logger  *slog.Logger
	metrics serviceMetrics
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithTracer(tr trace.Tracer) Option {
	return func(s *Service) {
		s.tracer = tr
	}
}

func WithMeter(m metric.Meter) Option {
	return func(s *Service) {
		s.metrics = newServiceMetrics(m)
	}
}

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

func (s *Service) Register(ctx context.Context, email, name, password string) (*domain.User, error) {
	ctx, span := s.startSpan(ctx, "Service.Register")
	defer span.End()

	user, err := s.inner.Register(ctx, email, name, password)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to register user")
	}
	s.metrics.recordRegistered(ctx)
	s.logInfo(ctx, "user registered", slog.String("user.id", user.ID))
	return user, nil
}

// Login never logs the email of failed attempts; a credential-stuffing run
// would turn the log stream into a user directory.
func (s *Service) Login(ctx context.Context, email, password string) (string, error) {
	ctx, span := s.startSpan(ctx, "Service.Login")
	defer span.End()

	token, err := s.inner.Login(ctx, email, password)
	if err != nil {
		span.SetStatus(codes.Error, "login failed")
		s.metrics.recordLoginFailed(ctx)
		s.logWarn(ctx, "login failed")
		return "", err
	}
	s.metrics.recordLogin(ctx)
	s.logInfo(ctx, "login succeeded")
	return token, nil
}

func (s *Service) Logout(ctx context.Context, userID string) error {
	ctx, span := s.startSpan(ctx, "Service.Logout", attribute.String("user.id", userID))
	defer span.End()

	if err := s.inner.Logout(ctx, userID); err != nil {
		return s.handleError(ctx, span, err, "failed to log out", slog.String("user.id", userID))
	}
	s.logInfo(ctx, "user logged out", slog.String("user.id", userID))
	return nil
}

func (s *Service) Authenticate(ctx context.Context, token string) (*ports.Session, error) {
	ctx, span := s.startSpan(ctx, "Service.Authenticate")
	defer span.End()

	session, err := s.inner.Authenticate(ctx, token)
	if err != nil {
		span.SetStatus(codes.Error, "authentication failed")
		return nil, err
	}
	span.SetAttributes(attribute.String("user.id", session.UserID))
	return session, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (*domain.User, error) {
	ctx, span := s.startSpan(ctx, "Service.GetByID", attribute.String("user.id", id))
	defer span.End()

	user, err := s.inner.GetByID(ctx, id)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to load user", slog.String("user.id", id))
	}
	return user, nil
}

func (s *Service) startSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	tracer := s.tracer
	if tracer == nil {
		tracer = nooptrace.NewTracerProvider().Tracer(tracerName)
	}
	return tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

func (s *Service) logInfo(ctx context.Context, msg string, attrs ...slog.Attr) {
	if s.logger == nil {
		return
	}
	s.logger.LogAttrs(ctx, slog.LevelInfo, msg, attrs...)
}

func (s *Service) logWarn(ctx context.Context, msg string, attrs ...slog.Attr) {
	if s.logger == nil {
		return
	}
	s.logger.LogAttrs(ctx, slog.LevelWarn, msg, attrs...)
}

func (s *Service) logError(ctx context.Context, msg string, err error, attrs ...slog.Attr) {
	if s.logger == nil {
		return
	}
	if err != nil {
		attrs = append(attrs, slog.String("error", err.Error()))
	}
	s.logger.LogAttrs(ctx, slog.LevelError, msg, attrs...)
}

func (s *Service) handleError(ctx context.Context, span trace.Span, err error, msg string, attrs ...slog.Attr) error {
	if err == nil {
		return nil
	}
	if span != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	s.logError(ctx, msg, err, attrs...)
	return err
}

func defaultLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type serviceMetrics struct {
	registered   metric.Int64Counter
	logins       metric.Int64Counter
	loginsFailed metric.Int64Counter
}

func newServiceMetrics(m metric.Meter) serviceMetrics {
	if m == nil {
		return serviceMetrics{}
	}
	registered, _ := m.Int64Counter("users.service.registered", metric.WithDescription("Number of accounts created"))
	logins, _ := m.Int64Counter("users.service.logins", metric.WithDescription("Number of successful logins"))
	loginsFailed, _ := m.Int64Counter("users.service.logins_failed", metric.WithDescription("Number of failed logins"))
	return serviceMetrics{
		registered:   registered,
		logins:       logins,
		loginsFailed: loginsFailed,
	}
}

func (m serviceMetrics) recordRegistered(ctx context.Context)  { addCounter(ctx, m.registered, 1) }
func (m serviceMetrics) recordLogin(ctx context.Context)       { addCounter(ctx, m.logins, 1) }
func (m serviceMetrics) recordLoginFailed(ctx context.Context) { addCounter(ctx, m.loginsFailed, 1) }

func addCounter(ctx context.Context, counter metric.Int64Counter, value int64, attrs ...attribute.KeyValue) {
	if counter == nil {
		return
	}
	counter.Add(ctx, value, metric.WithAttributes(attrs...))
}

var _ ports.Service = (*Service)(nil)
