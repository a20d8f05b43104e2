package ports

import (
	"context"

	"github.com/earthenstore/storefront-api/internal/domains/catalog/domain"
)

// WorkflowOrchestrator exposes durable workflow operations required by the
// catalog bounded context.
type WorkflowOrchestrator interface {
	PublishProduct(ctx context.Context, input CreateProductInput) (*domain.Product, error)
}
