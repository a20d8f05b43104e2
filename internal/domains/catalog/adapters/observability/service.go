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

	"github.com/earthenstore/storefront-api/internal/domains/catalog/domain"
	"github.com/earthenstore/storefront-api/internal/domains/catalog/ports"
)

const tracerName = "github.com/earthenstore/storefront-api/internal/domains/catalog/adapters/observability/service"

// Service decorates the catalog application port with tracing, logging, and metrics.
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

func (s *Service) CreateProduct(ctx context.Context, input ports.CreateProductInput) (*domain.Product, error) {
	ctx, span := s.startSpan(ctx, "Service.CreateProduct", attribute.String("product.name", input.Name))
	defer span.End()

	s.logInfo(ctx, "creating product", slog.String("name", input.Name))
	product, err := s.inner.CreateProduct(ctx, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to create product", slog.String("name", input.Name))
	}
	s.metrics.recordCreated(ctx)
	s.logInfo(ctx, "product created", slog.String("product.id", product.ID), slog.String("slug", product.Slug))
	return product, nil
}

func (s *Service) UpdateProduct(ctx context.Context, input ports.UpdateProductInput) (*domain.Product, error) {
	ctx, span := s.startSpan(ctx, "Service.UpdateProduct", attribute.String("product.id", input.ID))
	defer span.End()

	s.logInfo(ctx, "updating product", slog.String("product.id", input.ID))
	product, err := s.inner.UpdateProduct(ctx, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to update product", slog.String("product.id", input.ID))
	}
	s.logInfo(ctx, "product updated", slog.String("product.id", product.ID))
	return product, nil
}

func (s *Service) DeleteProduct(ctx context.Context, id string) error {
	ctx, span := s.startSpan(ctx, "Service.DeleteProduct", attribute.String("product.id", id))
	defer span.End()

	s.logInfo(ctx, "deleting product", slog.String("product.id", id))
	if err := s.inner.DeleteProduct(ctx, id); err != nil {
		return s.handleError(ctx, span, err, "failed to delete product", slog.String("product.id", id))
	}
	s.metrics.recordDeleted(ctx)
	s.logInfo(ctx, "product deleted", slog.String("product.id", id))
	return nil
}

func (s *Service) ListProducts(ctx context.Context) ([]*domain.Product, error) {
	ctx, span := s.startSpan(ctx, "Service.ListProducts")
	defer span.End()

	products, err := s.inner.ListProducts(ctx)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to list products")
	}
	span.SetAttributes(attribute.Int("product.result.count", len(products)))
	return products, nil
}

func (s *Service) SearchProducts(ctx context.Context, query string) ([]*domain.Product, error) {
	ctx, span := s.startSpan(ctx, "Service.SearchProducts", attribute.String("product.query", query))
	defer span.End()

	products, err := s.inner.SearchProducts(ctx, query)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to search products", slog.String("query", query))
	}
	span.SetAttributes(attribute.Int("product.result.count", len(products)))
	return products, nil
}

func (s *Service) FeaturedProducts(ctx context.Context, limit int) ([]*ports.ProductView, error) {
	ctx, span := s.startSpan(ctx, "Service.FeaturedProducts", attribute.Int("product.limit", limit))
	defer span.End()

	views, err := s.inner.FeaturedProducts(ctx, limit)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to list featured products")
	}
	span.SetAttributes(attribute.Int("product.result.count", len(views)))
	return views, nil
}

func (s *Service) GetBySlug(ctx context.Context, slug string) (*ports.ProductView, error) {
	ctx, span := s.startSpan(ctx, "Service.GetBySlug", attribute.String("product.slug", slug))
	defer span.End()

	view, err := s.inner.GetBySlug(ctx, slug)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to load product by slug", slog.String("slug", slug))
	}
	return view, nil
}

func (s *Service) CreateCategory(ctx context.Context, input ports.CreateCategoryInput) (*domain.Category, error) {
	ctx, span := s.startSpan(ctx, "Service.CreateCategory", attribute.String("category.name", input.Name))
	defer span.End()

	s.logInfo(ctx, "creating category", slog.String("name", input.Name))
	category, err := s.inner.CreateCategory(ctx, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to create category", slog.String("name", input.Name))
	}
	s.logInfo(ctx, "category created", slog.String("category.id", category.ID), slog.String("slug", category.Slug))
	return category, nil
}

func (s *Service) UpdateCategory(ctx context.Context, input ports.UpdateCategoryInput) (*domain.Category, error) {
	ctx, span := s.startSpan(ctx, "Service.UpdateCategory", attribute.String("category.id", input.ID))
	defer span.End()

	s.logInfo(ctx, "updating category", slog.String("category.id", input.ID))
	category, err := s.inner.UpdateCategory(ctx, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to update category", slog.String("category.id", input.ID))
	}
	return category, nil
}

func (s *Service) DeleteCategory(ctx context.Context, id string) error {
	ctx, span := s.startSpan(ctx, "Service.DeleteCategory", attribute.String("category.id", id))
	defer span.End()

	s.logInfo(ctx, "deleting category", slog.String("category.id", id))
	if err := s.inner.DeleteCategory(ctx, id); err != nil {
		return s.handleError(ctx, span, err, "failed to delete category", slog.String("category.id", id))
	}
	s.logInfo(ctx, "category deleted", slog.String("category.id", id))
	return nil
}

func (s *Service) ListCategories(ctx context.Context) ([]*domain.Category, error) {
	ctx, span := s.startSpan(ctx, "Service.ListCategories")
	defer span.End()

	categories, err := s.inner.ListCategories(ctx)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to list categories")
	}
	span.SetAttributes(attribute.Int("category.result.count", len(categories)))
	return categories, nil
}

func (s *Service) ProductsByCategory(ctx context.Context, slug string) (*ports.CategoryView, error) {
	ctx, span := s.startSpan(ctx, "Service.ProductsByCategory", attribute.String("category.slug", slug))
	defer span.End()

	view, err := s.inner.ProductsByCategory(ctx, slug)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to load category page", slog.String("slug", slug))
	}
	span.SetAttributes(attribute.Int("product.result.count", len(view.Products)))
	return view, nil
}

func (s *Service) AddVariant(ctx context.Context, input ports.AddVariantInput) (*domain.Variant, error) {
	ctx, span := s.startSpan(ctx, "Service.AddVariant",
		attribute.String("product.id", input.ProductID),
		attribute.String("variant.sku", input.SKU),
	)
	defer span.End()

	s.logInfo(ctx, "adding variant", slog.String("product.id", input.ProductID), slog.String("sku", input.SKU))
	variant, err := s.inner.AddVariant(ctx, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to add variant", slog.String("sku", input.SKU))
	}
	s.logInfo(ctx, "variant added", slog.String("variant.id", variant.ID), slog.String("sku", variant.SKU))
	return variant, nil
}

func (s *Service) ListVariants(ctx context.Context, productID string) ([]*domain.Variant, error) {
	ctx, span := s.startSpan(ctx, "Service.ListVariants", attribute.String("product.id", productID))
	defer span.End()

	variants, err := s.inner.ListVariants(ctx, productID)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to list variants", slog.String("product.id", productID))
	}
	span.SetAttributes(attribute.Int("variant.result.count", len(variants)))
	return variants, nil
}

func (s *Service) SetVariantStock(ctx context.Context, variantID string, stock int64) (*domain.Variant, error) {
	ctx, span := s.startSpan(ctx, "Service.SetVariantStock",
		attribute.String("variant.id", variantID),
		attribute.Int64("variant.stock", stock),
	)
	defer span.End()

	s.logInfo(ctx, "setting variant stock", slog.String("variant.id", variantID), slog.Int64("stock", stock))
	variant, err := s.inner.SetVariantStock(ctx, variantID, stock)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to set variant stock", slog.String("variant.id", variantID))
	}
	s.metrics.recordRestocked(ctx)
	return variant, nil
}

// Stats aggregates the catalog dashboard counters.
func (s *Service) Stats(ctx context.Context) (*ports.Stats, error) {
	ctx, span := s.startSpan(ctx, "Service.Stats")
	defer span.End()

	stats, err := s.inner.Stats(ctx)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to aggregate catalog stats")
	}
	span.SetAttributes(
		attribute.Int64("catalog.stats.products", stats.Products),
		attribute.Int64("catalog.stats.categories", stats.Categories),
		attribute.Int("catalog.stats.low_stock", len(stats.LowStock)),
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
	productsCreated   metric.Int64Counter
	productsDeleted   metric.Int64Counter
	variantsRestocked metric.Int64Counter
}

func newServiceMetrics(m metric.Meter) serviceMetrics {
	if m == nil {
		return serviceMetrics{}
	}
	productsCreated, _ := m.Int64Counter("catalog.service.products_created", metric.WithDescription("Number of products created"))
	productsDeleted, _ := m.Int64Counter("catalog.service.products_deleted", metric.WithDescription("Number of products deleted"))
	variantsRestocked, _ := m.Int64Counter("catalog.service.variants_restocked", metric.WithDescription("Number of manual stock adjustments"))
	return serviceMetrics{
		productsCreated:   productsCreated,
		productsDeleted:   productsDeleted,
		variantsRestocked: variantsRestocked,
	}
}

func (m serviceMetrics) recordCreated(ctx context.Context)   { addCounter(ctx, m.productsCreated, 1) }
func (m serviceMetrics) recordDeleted(ctx context.Context)   { addCounter(ctx, m.productsDeleted, 1) }
func (m serviceMetrics) recordRestocked(ctx context.Context) { addCounter(ctx, m.variantsRestocked, 1) }

func addCounter(ctx context.Context, counter metric.Int64Counter, value int64, attrs ...attribute.KeyValue) {
	if counter == nil {
		return
	}
	counter.Add(ctx, value, metric.WithAttributes(attrs...))
}

var _ ports.Service = (*Service)(nil)
