package catalog

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/testsuite"
	"go.temporal.io/sdk/workflow"

	"github.com/earthenstore/storefront-api/internal/domains/catalog/domain"
	catalogports "github.com/earthenstore/storefront-api/internal/domains/catalog/ports"
	catalogactivities "github.com/earthenstore/storefront-api/internal/platform/temporal/activities/catalog"
)

// newPublicationEnv mirrors the worker's registrations: the workflow under
// its name alias and the activities under their name constants. Executions
// submitted by alias must resolve against exactly this registration set.
func newPublicationEnv(t *testing.T, verify func(context.Context, catalogports.CreateProductInput) error, persist func(context.Context, catalogports.CreateProductInput) (*domain.Product, error)) *testsuite.TestWorkflowEnvironment {
	t.Helper()
	var suite testsuite.WorkflowTestSuite
	env := suite.NewTestWorkflowEnvironment()
	env.RegisterWorkflowWithOptions(ProductPublicationWorkflow, workflow.RegisterOptions{Name: ProductPublicationWorkflowName})
	env.RegisterActivityWithOptions(verify, activity.RegisterOptions{Name: catalogactivities.VerifyProductImagesActivityName})
	env.RegisterActivityWithOptions(persist, activity.RegisterOptions{Name: catalogactivities.PersistProductActivityName})
	return env
}

func TestProductPublicationWorkflow_ExecutesByRegisteredName(t *testing.T) {
	env := newPublicationEnv(t,
		func(ctx context.Context, input catalogports.CreateProductInput) error { return nil },
		func(ctx context.Context, input catalogports.CreateProductInput) (*domain.Product, error) {
			return &domain.Product{ID: "prod-1", Name: input.Name, Slug: "raku-vase", Active: true}, nil
		},
	)

	env.ExecuteWorkflow(ProductPublicationWorkflowName, ProductPublicationWorkflowInput{
		Command: catalogports.CreateProductInput{Name: "Raku Vase", ImageKeys: []string{"products/raku.jpg"}},
	})

	require.True(t, env.IsWorkflowCompleted())
	require.NoError(t, env.GetWorkflowError())

	var product domain.Product
	require.NoError(t, env.GetWorkflowResult(&product))
	require.Equal(t, "prod-1", product.ID)
	require.Equal(t, "Raku Vase", product.Name)
}

func TestProductPublicationWorkflow_FailsWhenImageMissing(t *testing.T) {
	env := newPublicationEnv(t,
		func(ctx context.Context, input catalogports.CreateProductInput) error {
			return errors.New(`image object "products/missing.jpg" not found in storage`)
		},
		func(ctx context.Context, input catalogports.CreateProductInput) (*domain.Product, error) {
			t.Fatal("product must not persist when image verification fails")
			return nil, nil
		},
	)

	env.ExecuteWorkflow(ProductPublicationWorkflowName, ProductPublicationWorkflowInput{
		Command: catalogports.CreateProductInput{Name: "Raku Vase", ImageKeys: []string{"products/missing.jpg"}},
	})

	require.True(t, env.IsWorkflowCompleted())
	require.Error(t, env.GetWorkflowError())
}
