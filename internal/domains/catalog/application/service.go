package application

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/earthenstore/storefront-api/internal/domains/catalog/domain"
	"github.com/earthenstore/storefront-api/internal/domains/catalog/ports"
)

// Service orchestrates the catalog bounded context use cases.
type Service struct {
	repo        ports.Repository
	idempotency ports.IdempotencyStore
	images      ports.ImageStore
}

// NewService wires the catalog service with its dependencies. A nil image
// store falls back to pass-through URL resolution.
func NewService(repo ports.Repository, idempotency ports.IdempotencyStore, images ports.ImageStore) *Service {
	if images == nil {
		images = ports.NoopImageStore
	}
	return &Service{repo: repo, idempotency: idempotency, images: images}
}

// CreateProduct persists a new product. When an idempotency key accompanies
// the request, a retried creation replays the original product instead of
// inserting a duplicate.
func (s *Service) CreateProduct(ctx context.Context, input ports.CreateProductInput) (*domain.Product, error) {
	key := strings.TrimSpace(input.IdempotencyKey)
	var requestHash string
	if key != "" && s.idempotency != nil {
		var err error
		requestHash, err = FingerprintCreateProduct(input)
		if err != nil {
			return nil, err
		}
		record, err := s.idempotency.Get(ctx, key)
		if err != nil {
			return nil, err
		}
		if record != nil {
			if record.RequestHash != requestHash {
				return nil, ports.ErrIdempotencyConflict
			}
			return s.repo.GetProductByID(ctx, record.ProductID)
		}
	}

	categoryID, err := s.resolveCategory(ctx, input.CategoryID)
	if err != nil {
		return nil, err
	}
	product, err := domain.NewProduct(input.Name, input.Description)
	if err != nil {
		return nil, mapError(err)
	}
	product.CategoryID = categoryID
	product.Featured = input.Featured
	product.ReplaceImages(input.ImageKeys)
	saved, err := s.repo.SaveProduct(ctx, product)
	if err != nil {
		return nil, err
	}

	if key != "" && s.idempotency != nil {
		_, err := s.idempotency.Save(ctx, ports.IdempotencyRecord{
			Key:         key,
			RequestHash: requestHash,
			ProductID:   saved.ID,
		})
		if err != nil && !errors.Is(err, ports.ErrIdempotencyConflict) {
			return nil, err
		}
	}
	return saved, nil
}

// UpdateProduct applies partial admin edits to an existing product.
func (s *Service) UpdateProduct(ctx context.Context, input ports.UpdateProductInput) (*domain.Product, error) {
	product, err := s.repo.GetProductByID(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	if input.Name != nil {
		if err := product.Rename(*input.Name); err != nil {
			return nil, mapError(err)
		}
	}
	if input.Description != nil {
		product.Description = strings.TrimSpace(*input.Description)
	}
	if input.CategoryID != nil {
		categoryID, err := s.resolveCategory(ctx, *input.CategoryID)
		if err != nil {
			return nil, err
		}
		product.CategoryID = categoryID
	}
	if input.ImageKeys != nil {
		product.ReplaceImages(*input.ImageKeys)
	}
	if input.Active != nil {
		product.Active = *input.Active
	}
	if input.Featured != nil {
		product.Featured = *input.Featured
	}
	return s.repo.SaveProduct(ctx, product)
}

func (s *Service) DeleteProduct(ctx context.Context, id string) error {
	return s.repo.DeleteProduct(ctx, id)
}

func (s *Service) ListProducts(ctx context.Context) ([]*domain.Product, error) {
	return s.repo.ListProducts(ctx)
}

// SearchProducts filters the listing by a free-text query matched against
// names, descriptions, and category names. A blank query lists everything.
func (s *Service) SearchProducts(ctx context.Context, query string) ([]*domain.Product, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return s.repo.ListProducts(ctx)
	}
	return s.repo.SearchProducts(ctx, query)
}

// FeaturedProducts returns the homepage selection with resolved image URLs.
func (s *Service) FeaturedProducts(ctx context.Context, limit int) ([]*ports.ProductView, error) {
	products, err := s.repo.ListFeatured(ctx, limit)
	if err != nil {
		return nil, err
	}
	views := make([]*ports.ProductView, 0, len(products))
	for _, product := range products {
		view, err := s.buildView(ctx, product)
		if err != nil {
			return nil, err
		}
		views = append(views, view)
	}
	return views, nil
}

// GetBySlug loads the storefront view of a product: variants plus resolved
// image URLs.
func (s *Service) GetBySlug(ctx context.Context, slug string) (*ports.ProductView, error) {
	product, err := s.repo.GetProductBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	return s.buildView(ctx, product)
}

func (s *Service) buildView(ctx context.Context, product *domain.Product) (*ports.ProductView, error) {
	variants, err := s.repo.ListVariants(ctx, product.ID)
	if err != nil {
		return nil, err
	}
	urls := make([]string, 0, len(product.ImageKeys))
	for _, key := range product.ImageKeys {
		urls = append(urls, s.images.ResolveURL(key))
	}
	return &ports.ProductView{Product: product, Variants: variants, ImageURLs: urls}, nil
}

// CreateCategory persists a new navigation category.
func (s *Service) CreateCategory(ctx context.Context, input ports.CreateCategoryInput) (*domain.Category, error) {
	category, err := domain.NewCategory(input.Name, input.Description)
	if err != nil {
		return nil, mapError(err)
	}
	return s.repo.SaveCategory(ctx, category)
}

// UpdateCategory applies partial admin edits to an existing category.
func (s *Service) UpdateCategory(ctx context.Context, input ports.UpdateCategoryInput) (*domain.Category, error) {
	category, err := s.repo.GetCategoryByID(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	if input.Name != nil {
		if err := category.Rename(*input.Name); err != nil {
			return nil, mapError(err)
		}
	}
	if input.Description != nil {
		category.Description = strings.TrimSpace(*input.Description)
	}
	return s.repo.SaveCategory(ctx, category)
}

// DeleteCategory removes the category; its products become uncategorized.
func (s *Service) DeleteCategory(ctx context.Context, id string) error {
	return s.repo.DeleteCategory(ctx, id)
}

func (s *Service) ListCategories(ctx context.Context) ([]*domain.Category, error) {
	return s.repo.ListCategories(ctx)
}

// ProductsByCategory loads the storefront category page: the category plus
// the views of its products.
func (s *Service) ProductsByCategory(ctx context.Context, slug string) (*ports.CategoryView, error) {
	category, err := s.repo.GetCategoryBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	products, err := s.repo.ListProductsByCategory(ctx, category.ID)
	if err != nil {
		return nil, err
	}
	views := make([]*ports.ProductView, 0, len(products))
	for _, product := range products {
		view, err := s.buildView(ctx, product)
		if err != nil {
			return nil, err
		}
		views = append(views, view)
	}
	return &ports.CategoryView{Category: category, Products: views}, nil
}

// AddVariant persists a new purchasable SKU under a product.
func (s *Service) AddVariant(ctx context.Context, input ports.AddVariantInput) (*domain.Variant, error) {
	if _, err := s.repo.GetProductByID(ctx, input.ProductID); err != nil {
		return nil, err
	}
	variant, err := domain.NewVariant(input.ProductID, input.SKU, input.Price, input.Stock)
	if err != nil {
		return nil, mapError(err)
	}
	return s.repo.SaveVariant(ctx, variant)
}

func (s *Service) ListVariants(ctx context.Context, productID string) ([]*domain.Variant, error) {
	return s.repo.ListVariants(ctx, productID)
}

// SetVariantStock writes an absolute stock count from an admin edit.
func (s *Service) SetVariantStock(ctx context.Context, variantID string, stock int64) (*domain.Variant, error) {
	variants, err := s.repo.FindVariantsByIDs(ctx, []string{variantID}, false)
	if err != nil {
		return nil, err
	}
	if len(variants) == 0 {
		return nil, ports.ErrNotFound
	}
	variant := variants[0]
	if err := variant.SetStock(stock); err != nil {
		return nil, mapError(err)
	}
	return s.repo.SaveVariant(ctx, variant)
}

// Variants at or below this count show up on the admin dashboard.
const lowStockThreshold = 5

const lowStockLimit = 10

// Stats aggregates the catalog counters for the admin dashboard.
func (s *Service) Stats(ctx context.Context) (*ports.Stats, error) {
	products, err := s.repo.CountProducts(ctx)
	if err != nil {
		return nil, err
	}
	categories, err := s.repo.CountCategories(ctx)
	if err != nil {
		return nil, err
	}
	lowStock, err := s.repo.ListLowStockVariants(ctx, lowStockThreshold, lowStockLimit)
	if err != nil {
		return nil, err
	}
	return &ports.Stats{Products: products, Categories: categories, LowStock: lowStock}, nil
}

// resolveCategory validates an optional category reference. An empty ID
// clears the assignment; an unknown ID is a caller error, not a missing
// resource.
func (s *Service) resolveCategory(ctx context.Context, id string) (*string, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, nil
	}
	if _, err := s.repo.GetCategoryByID(ctx, id); err != nil {
		if errors.Is(err, ports.ErrNotFound) {
			return nil, fmt.Errorf("%w: unknown category %s", ErrInvalidInput, id)
		}
		return nil, err
	}
	return &id, nil
}

var _ ports.Service = (*Service)(nil)
