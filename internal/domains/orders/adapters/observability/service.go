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

	"github.com/earthenstore/storefront-api/internal/domains/orders/domain"
	"github.com/earthenstore/storefront-api/internal/domains/orders/ports"
)

const tracerName = "github.com/earthenstore/storefront-api/internal/domains/orders/adapters/observability/service"

// Service decorates the orders application port with tracing, logging, and metrics.
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

// PlaceOrder runs the placement pipeline with instrumentation. Placement never
// returns a Go error, so failures are surfaced on the span via the result's
// error code instead of RecordError.
func (s *Service) PlaceOrder(ctx context.Context, shipping domain.ShippingDetails, cart []domain.CartLine) ports.Result {
	ctx, span := s.startSpan(ctx, "Service.PlaceOrder", attribute.Int("order.cart.lines", len(cart)))
	defer span.End()

	s.logInfo(ctx, "placing order", slog.Int("cart.lines", len(cart)))
	result := s.inner.PlaceOrder(ctx, shipping, cart)
	if !result.Success {
		code := ""
		if result.Error != nil {
			code = string(result.Error.Code)
		}
		span.SetStatus(codes.Error, code)
		span.SetAttributes(attribute.String("order.failure.code", code))
		s.metrics.recordPlacementFailed(ctx, code)
		s.logWarn(ctx, "order placement rejected", slog.String("code", code))
		return result
	}
	span.SetAttributes(attribute.String("order.id", result.OrderID))
	s.metrics.recordPlaced(ctx)
	s.logInfo(ctx, "order placed", slog.String("order.id", result.OrderID))
	return result
}

// GetOrder loads a single order with its lines.
func (s *Service) GetOrder(ctx context.Context, id string) (*domain.Order, error) {
	ctx, span := s.startSpan(ctx, "Service.GetOrder", attribute.String("order.id", id))
	defer span.End()

	order, err := s.inner.GetOrder(ctx, id)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to load order", slog.String("order.id", id))
	}
	return order, nil
}

// ListOrders returns all orders for the admin view.
func (s *Service) ListOrders(ctx context.Context) ([]*domain.Order, error) {
	ctx, span := s.startSpan(ctx, "Service.ListOrders")
	defer span.End()

	orders, err := s.inner.ListOrders(ctx)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to list orders")
	}
	span.SetAttributes(attribute.Int("order.result.count", len(orders)))
	return orders, nil
}

// AdvanceOrder moves an order along its fulfilment lifecycle.
func (s *Service) AdvanceOrder(ctx context.Context, id string, next domain.Status) (*domain.Order, error) {
	ctx, span := s.startSpan(ctx, "Service.AdvanceOrder",
		attribute.String("order.id", id),
		attribute.String("order.status.next", string(next)),
	)
	defer span.End()

	s.logInfo(ctx, "advancing order", slog.String("order.id", id), slog.String("next", string(next)))
	order, err := s.inner.AdvanceOrder(ctx, id, next)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to advance order", slog.String("order.id", id))
	}
	s.metrics.recordAdvanced(ctx, order.Status)
	s.logInfo(ctx, "order advanced", slog.String("order.id", order.ID), slog.String("status", string(order.Status)))
	return order, nil
}

// Stats aggregates the orders dashboard counters.
func (s *Service) Stats(ctx context.Context) (*ports.Stats, error) {
	ctx, span := s.startSpan(ctx, "Service.Stats")
	defer span.End()

	stats, err := s.inner.Stats(ctx)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to aggregate order stats")
	}
	span.SetAttributes(
		attribute.Int64("order.stats.count", stats.Orders),
		attribute.Int64("order.stats.revenue", stats.Revenue),
	)
	return stats, nil
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
	ordersPlaced     metric.Int64Counter
	placementsFailed metric.Int64Counter
	ordersAdvanced   metric.Int64Counter
}

func newServiceMetrics(m metric.Meter) serviceMetrics {
	if m == nil {
		return serviceMetrics{}
	}
	ordersPlaced, _ := m.Int64Counter("orders.service.placed", metric.WithDescription("Number of orders placed"))
	placementsFailed, _ := m.Int64Counter("orders.service.placement_failed", metric.WithDescription("Number of rejected placements by error code"))
	ordersAdvanced, _ := m.Int64Counter("orders.service.advanced", metric.WithDescription("Number of order status transitions"))
	return serviceMetrics{
		ordersPlaced:     ordersPlaced,
		placementsFailed: placementsFailed,
		ordersAdvanced:   ordersAdvanced,
	}
}

func (m serviceMetrics) recordPlaced(ctx context.Context) {
	addCounter(ctx, m.ordersPlaced, 1)
}

func (m serviceMetrics) recordPlacementFailed(ctx context.Context, code string) {
	addCounter(ctx, m.placementsFailed, 1, attribute.String("order.failure.code", code))
}

func (m serviceMetrics) recordAdvanced(ctx context.Context, status domain.Status) {
	addCounter(ctx, m.ordersAdvanced, 1, attribute.String("order.status", string(status)))
}

func addCounter(ctx context.Context, counter metric.Int64Counter, value int64, attrs ...attribute.KeyValue) {
	if counter == nil {
		return
	}
	counter.Add(ctx, value, metric.WithAttributes(attrs...))
}

var _ ports.Service = (*Service)(nil)
