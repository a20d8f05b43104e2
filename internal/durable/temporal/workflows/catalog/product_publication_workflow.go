package catalog

import (
	"go.temporal.io/sdk/workflow"

	"github.com/earthenstore/storefront-api/internal/domains/catalog/domain"
	catalogports "github.com/earthenstore/storefront-api/internal/domains/catalog/ports"
	"github.com/earthenstore/storefront-api/internal/durable/temporal/sequences"
)

const (
	// ProductPublicationWorkflowName is the public identifier for registering the workflow.
	ProductPublicationWorkflowName = "catalog.workflows.Publication"
	// ProductPublicationTaskQueue is the queue consumed by the worker processing catalog workflows.
	ProductPublicationTaskQueue = "PRODUCT_PUBLICATION"
)

// ProductPublicationWorkflowInput captures the payload required to publish a product.
type ProductPublicationWorkflowInput struct {
	Command catalogports.CreateProductInput
	TraceID string
}

// ProductPublicationWorkflow orchestrates the activities needed to publish a product.
func ProductPublicationWorkflow(ctx workflow.Context, input ProductPublicationWorkflowInput) (*domain.Product, error) {
	logger := workflow.GetLogger(ctx)
	logger.Info("ProductPublicationWorkflow started", withTraceID(input.TraceID, "name", input.Command.Name)...)
	product, err := sequences.RunProductPublicationSequence(ctx, input.Command)
	if err != nil {
		logger.Error("ProductPublicationWorkflow failed", withTraceID(input.TraceID, "name", input.Command.Name, "error", err)...)
		return nil, err
	}
	logger.Info("ProductPublicationWorkflow completed", withTraceID(input.TraceID, "productId", product.ID)...)
	return product, nil
}

func withTraceID(traceID string, keyvals ...interface{}) []interface{} {
	if traceID == "" {
		return keyvals
	}
	return append(keyvals, "traceId", traceID)
}
