package ports

import (
	"context"
	"errors"
	"time"

	"github.com/earthenstore/storefront-api/internal/domains/catalog/domain"
)

var (
	ErrNotFound    = errors.New("catalog entry not found")
	ErrSlugTaken   = errors.New("slug already in use")
	ErrSKUConflict = errors.New("variant sku already in use")
)

// Repository persists products, categories, and variants.
type Repository interface {
	SaveProduct(ctx context.Context, product *domain.Product) (*domain.Product, error)
	GetProductByID(ctx context.Context, id string) (*domain.Product, error)
	GetProductBySlug(ctx context.Context, slug string) (*domain.Product, error)
	ListProducts(ctx context.Context) ([]*domain.Product, error)
	ListFeatured(ctx context.Context, limit int) ([]*domain.Product, error)
	ListProductsByCategory(ctx context.Context, categoryID string) ([]*domain.Product, error)
	// SearchProducts matches the query against product names, descriptions,
	// and the names of their categories, case-insensitively.
	SearchProducts(ctx context.Context, query string) ([]*domain.Product, error)
	DeleteProduct(ctx context.Context, id string) error

	SaveCategory(ctx context.Context, category *domain.Category) (*domain.Category, error)
	GetCategoryByID(ctx context.Context, id string) (*domain.Category, error)
	GetCategoryBySlug(ctx context.Context, slug string) (*domain.Category, error)
	ListCategories(ctx context.Context) ([]*domain.Category, error)
	// DeleteCategory removes the category and detaches its products; the
	// products themselves stay.
	DeleteCategory(ctx context.Context, id string) error

	SaveVariant(ctx context.Context, variant *domain.Variant) (*domain.Variant, error)
	ListVariants(ctx context.Context, productID string) ([]*domain.Variant, error)
	// FindVariantsByIDs resolves variants by identifier; with activeOnly set,
	// inactive variants (and variants of inactive products) are omitted.
	FindVariantsByIDs(ctx context.Context, ids []string, activeOnly bool) ([]*domain.Variant, error)

	CountProducts(ctx context.Context) (int64, error)
	CountCategories(ctx context.Context) (int64, error)
	// ListLowStockVariants returns active variants at or below the threshold,
	// lowest stock first.
	ListLowStockVariants(ctx context.Context, threshold int64, limit int) ([]*domain.Variant, error)
}

// ErrIdempotencyConflict indicates the same key was used with a different payload.
var ErrIdempotencyConflict = errors.New("idempotency conflict")

// IdempotencyRecord associates a client-supplied key with the resulting product.
type IdempotencyRecord struct {
	Key         string
	RequestHash string
	ProductID   string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// IdempotencyStore persists idempotency keys so retried product creations
// replay instead of duplicating.
type IdempotencyStore interface {
	// Get returns the stored record for the key, or nil when unknown.
	Get(ctx context.Context, key string) (*IdempotencyRecord, error)
	// Save persists the record; when the key exists with the same hash and
	// product the stored record is returned, otherwise ErrIdempotencyConflict.
	Save(ctx context.Context, record IdempotencyRecord) (*IdempotencyRecord, error)
}
