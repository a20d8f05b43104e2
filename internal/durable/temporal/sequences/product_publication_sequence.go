package sequences

import (
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	"github.com/earthenstore/storefront-api/internal/domains/catalog/domain"
	catalogports "github.com/earthenstore/storefront-api/internal/domains/catalog/ports"
	catalogactivities "github.com/earthenstore/storefront-api/internal/platform/temporal/activities/catalog"
)

// RunProductPublicationSequence executes the ordered set of activities needed
// to publish a product: verify referenced images, then persist the aggregate.
func RunProductPublicationSequence(ctx workflow.Context, input catalogports.CreateProductInput) (*domain.Product, error) {
	logger := workflow.GetLogger(ctx)
	logger.Info("product publication sequence started", "name", input.Name)

	// Image verification hits the storage gateway; keep retries short so a
	// genuinely missing object fails the workflow quickly.
	verifyOptions := workflow.ActivityOptions{
		StartToCloseTimeout: 30 * time.Second,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval:    time.Second,
			BackoffCoefficient: 2.0,
			MaximumInterval:    5 * time.Second,
			MaximumAttempts:    3,
		},
	}
	verifyCtx := workflow.WithActivityOptions(ctx, verifyOptions)
	if err := workflow.ExecuteActivity(verifyCtx, catalogactivities.VerifyProductImagesActivityName, input).Get(verifyCtx, nil); err != nil {
		logger.Error("product publication sequence failed image verification", "name", input.Name, "error", err)
		return nil, err
	}

	persistOptions := workflow.ActivityOptions{
		StartToCloseTimeout: time.Minute,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval:    2 * time.Second,
			BackoffCoefficient: 2.0,
			MaximumInterval:    10 * time.Second,
			MaximumAttempts:    5,
		},
	}
	persistCtx := workflow.WithActivityOptions(ctx, persistOptions)

	var product domain.Product
	if err := workflow.ExecuteActivity(persistCtx, catalogactivities.PersistProductActivityName, input).Get(persistCtx, &product); err != nil {
		logger.Error("product publication sequence failed", "name", input.Name, "error", err)
		return nil, err
	}
	logger.Info("product publication sequence completed", "productId", product.ID)
	return &product, nil
}
