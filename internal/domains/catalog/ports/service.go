package ports

import (
	"context"

	"github.com/earthenstore/storefront-api/internal/domains/catalog/domain"
)

// ProductView is a product plus everything a storefront page renders.
type ProductView struct {
	Product   *domain.Product
	Variants  []*domain.Variant
	ImageURLs []string
}

// CategoryView is a category page: the category plus its product views.
type CategoryView struct {
	Category *domain.Category
	Products []*ProductView
}

// Stats is the catalog slice of the admin dashboard.
type Stats struct {
	Products   int64
	Categories int64
	LowStock   []*domain.Variant
}

// CreateProductInput carries the admin product creation payload. CategoryID
// is optional; empty means uncategorized.
type CreateProductInput struct {
	Name           string
	Description    string
	CategoryID     string
	ImageKeys      []string
	Featured       bool
	IdempotencyKey string
}

// UpdateProductInput carries optional admin edits; nil fields are untouched.
// A pointer to the empty string clears the category assignment.
type UpdateProductInput struct {
	ID          string
	Name        *string
	Description *string
	CategoryID  *string
	ImageKeys   *[]string
	Active      *bool
	Featured    *bool
}

// CreateCategoryInput carries the admin category creation payload.
type CreateCategoryInput struct {
	Name        string
	Description string
}

// UpdateCategoryInput carries optional admin edits; nil fields are untouched.
type UpdateCategoryInput struct {
	ID          string
	Name        *string
	Description *string
}

// AddVariantInput carries the admin variant creation payload.
type AddVariantInput struct {
	ProductID string
	SKU       string
	Price     int64
	Stock     int64
}

// Service exposes catalog use cases to adapters.
type Service interface {
	CreateProduct(ctx context.Context, input CreateProductInput) (*domain.Product, error)
	UpdateProduct(ctx context.Context, input UpdateProductInput) (*domain.Product, error)
	DeleteProduct(ctx context.Context, id string) error
	ListProducts(ctx context.Context) ([]*domain.Product, error)
	SearchProducts(ctx context.Context, query string) ([]*domain.Product, error)
	FeaturedProducts(ctx context.Context, limit int) ([]*ProductView, error)
	GetBySlug(ctx context.Context, slug string) (*ProductView, error)

	CreateCategory(ctx context.Context, input CreateCategoryInput) (*domain.Category, error)
	UpdateCategory(ctx context.Context, input UpdateCategoryInput) (*domain.Category, error)
	DeleteCategory(ctx context.Context, id string) error
	ListCategories(ctx context.Context) ([]*domain.Category, error)
	// ProductsByCategory renders a storefront category page by slug.
	ProductsByCategory(ctx context.Context, slug string) (*CategoryView, error)

	AddVariant(ctx context.Context, input AddVariantInput) (*domain.Variant, error)
	ListVariants(ctx context.Context, productID string) ([]*domain.Variant, error)
	SetVariantStock(ctx context.Context, variantID string, stock int64) (*domain.Variant, error)

	Stats(ctx context.Context) (*Stats, error)
}
