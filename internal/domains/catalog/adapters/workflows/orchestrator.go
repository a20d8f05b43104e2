package workflows

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	oteltrace "go.opentelemetry.io/otel/trace"
	"go.temporal.io/api/serviceerror"
	"go.temporal.io/sdk/client"

	"github.com/earthenstore/storefront-api/internal/domains/catalog/domain"
	"github.com/earthenstore/storefront-api/internal/domains/catalog/ports"
	catalogworkflows "github.com/earthenstore/storefront-api/internal/durable/temporal/workflows/catalog"
)

var (
	_ ports.WorkflowOrchestrator = (*TemporalProductWorkflows)(nil)
	_ ports.WorkflowOrchestrator = (*InlineProductWorkflows)(nil)
)

// TemporalProductWorkflows starts catalog workflows on a Temporal cluster.
type TemporalProductWorkflows struct {
	client    client.Client
	taskQueue string
}

// NewTemporalProductWorkflows wires a Temporal client into the orchestrator.
func NewTemporalProductWorkflows(c client.Client) *TemporalProductWorkflows {
	return &TemporalProductWorkflows{client: c, taskQueue: catalogworkflows.ProductPublicationTaskQueue}
}

// PublishProduct starts the Temporal workflow that publishes a product.
// Retried requests carrying the same idempotency key land on the same
// workflow execution.
func (o *TemporalProductWorkflows) PublishProduct(ctx context.Context, input ports.CreateProductInput) (*domain.Product, error) {
	if o == nil || o.client == nil {
		return nil, errors.New("temporal product workflows not configured")
	}
	traceComponent := workflowTraceComponent(ctx)
	workflowID := buildPublicationWorkflowID(input, traceComponent)
	options := client.StartWorkflowOptions{
		ID:        workflowID,
		TaskQueue: o.taskQueue,
	}
	run, err := o.client.ExecuteWorkflow(
		ctx,
		options,
		catalogworkflows.ProductPublicationWorkflowName,
		catalogworkflows.ProductPublicationWorkflowInput{Command: input, TraceID: traceComponent},
	)
	if err != nil {
		var alreadyStarted *serviceerror.WorkflowExecutionAlreadyStarted
		if errors.As(err, &alreadyStarted) && strings.TrimSpace(input.IdempotencyKey) != "" {
			existingRun := o.client.GetWorkflow(ctx, workflowID, alreadyStarted.RunId)
			var product domain.Product
			if err := existingRun.Get(ctx, &product); err != nil {
				return nil, err
			}
			return &product, nil
		}
		return nil, err
	}
	var product domain.Product
	if err := run.Get(ctx, &product); err != nil {
		return nil, err
	}
	return &product, nil
}

// InlineProductWorkflows executes the service directly without Temporal,
// useful for tests or dev fallbacks.
type InlineProductWorkflows struct {
	service ports.Service
}

// NewInlineProductWorkflows wraps the catalog service for synchronous execution.
func NewInlineProductWorkflows(service ports.Service) *InlineProductWorkflows {
	return &InlineProductWorkflows{service: service}
}

// PublishProduct delegates to the application service without durable orchestration.
func (o *InlineProductWorkflows) PublishProduct(ctx context.Context, input ports.CreateProductInput) (*domain.Product, error) {
	if o == nil || o.service == nil {
		return nil, errors.New("inline product workflows not configured")
	}
	return o.service.CreateProduct(ctx, input)
}

func buildPublicationWorkflowID(input ports.CreateProductInput, traceComponent string) string {
	if key := strings.TrimSpace(input.IdempotencyKey); key != "" {
		return fmt.Sprintf("product-publication-idem-%s", hashIdempotencyKey(key))
	}
	return fmt.Sprintf("product-publication-%d-%s", time.Now().UnixNano(), traceComponent)
}

func hashIdempotencyKey(key string) string {
	sum := sha256.Sum256([]byte(key))
	// First 16 hex chars keep workflow IDs readable while remaining deterministic.
	return hex.EncodeToString(sum[:8])
}

func workflowTraceComponent(ctx context.Context) string {
	if traceID := workflowTraceID(ctx); traceID != "" {
		return traceID
	}
	return fmt.Sprintf("fallback-%d", time.Now().UnixNano())
}

func workflowTraceID(ctx context.Context) string {
	span := oteltrace.SpanFromContext(ctx)
	if span == nil {
		return ""
	}
	spanCtx := span.SpanContext()
	if !spanCtx.IsValid() {
		return ""
	}
	traceID := spanCtx.TraceID()
	if !traceID.IsValid() {
		return ""
	}
	return traceID.String()
}
