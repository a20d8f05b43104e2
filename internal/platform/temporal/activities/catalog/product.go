package catalog

import (
	"context"
	"errors"
	"fmt"

	"go.temporal.io/sdk/activity"

	"github.com/earthenstore/storefront-api/internal/domains/catalog/domain"
	catalogports "github.com/earthenstore/storefront-api/internal/domains/catalog/ports"
)

const (
	// VerifyProductImagesActivityName checks every referenced image key exists in storage.
	VerifyProductImagesActivityName = "catalog.activities.VerifyProductImages"
	// PersistProductActivityName persists the product aggregate.
	PersistProductActivityName = "catalog.activities.PersistProduct"
)

// Activities groups activities that operate on the catalog bounded context.
type Activities struct {
	service catalogports.Service
	images  catalogports.ImageStore
}

// NewActivities wires the catalog collaborators into the Temporal activities bundle.
func NewActivities(service catalogports.Service, images catalogports.ImageStore) *Activities {
	if images == nil {
		images = catalogports.NoopImageStore
	}
	return &Activities{service: service, images: images}
}

// VerifyProductImages confirms each image key referenced by the product
// resolves to a stored object before the product goes live.
func (a *Activities) VerifyProductImages(ctx context.Context, input catalogports.CreateProductInput) error {
	logger := activity.GetLogger(ctx)
	if a == nil || a.images == nil {
		logger.Error("image verification activity not initialized")
		return errors.New("image verification activity not initialized")
	}
	logger.Info("VerifyProductImages activity started", "imageCount", len(input.ImageKeys))
	for _, key := range input.ImageKeys {
		exists, err := a.images.Exists(ctx, key)
		if err != nil {
			logger.Error("VerifyProductImages lookup failed", "key", key, "error", err)
			return err
		}
		if !exists {
			logger.Error("VerifyProductImages missing object", "key", key)
			return fmt.Errorf("image object %q not found in storage", key)
		}
	}
	logger.Info("VerifyProductImages activity completed")
	return nil
}

// PersistProduct stores a new product aggregate.
func (a *Activities) PersistProduct(ctx context.Context, input catalogports.CreateProductInput) (*domain.Product, error) {
	logger := activity.GetLogger(ctx)
	if a == nil || a.service == nil {
		logger.Error("product persist activity not initialized")
		return nil, errors.New("product persist activity not initialized")
	}
	logger.Info("PersistProduct activity started", "name", input.Name)
	product, err := a.service.CreateProduct(ctx, input)
	if err != nil {
		logger.Error("PersistProduct activity failed", "name", input.Name, "error", err)
		return nil, err
	}
	logger.Info("PersistProduct activity completed", "productId", product.ID)
	return product, nil
}
