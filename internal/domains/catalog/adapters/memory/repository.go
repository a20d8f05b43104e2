package memory

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	"github.com/earthenstore/storefront-api/internal/domains/catalog/domain"
	"github.com/earthenstore/storefront-api/internal/domains/catalog/ports"
	ordersports "github.com/earthenstore/storefront-api/internal/domains/orders/ports"
)

var _ ports.Repository = (*Repository)(nil)

// Repository is an in-memory catalog persistence adapter. It doubles as the
// stock table for the in-memory order store: DecrementStocks applies a batch
// of decrements all-or-nothing under the repository lock.
type Repository struct {
	mu         sync.RWMutex
	products   map[string]*domain.Product
	categories map[string]*domain.Category
	variants   map[string]*domain.Variant
}

func NewRepository() *Repository {
	return &Repository{
		products:   map[string]*domain.Product{},
		categories: map[string]*domain.Category{},
		variants:   map[string]*domain.Variant{},
	}
}

func (r *Repository) SaveProduct(_ context.Context, product *domain.Product) (*domain.Product, error) {
	if product == nil {
		return nil, errors.New("product is nil")
	}
	if err := product.Validate(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.products {
		if existing.Slug == product.Slug && existing.ID != product.ID {
			return nil, ports.ErrSlugTaken
		}
	}
	clone := cloneProduct(product)
	r.products[clone.ID] = &clone
	saved := cloneProduct(&clone)
	return &saved, nil
}

func (r *Repository) GetProductByID(_ context.Context, id string) (*domain.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	product, ok := r.products[id]
	if !ok {
		return nil, ports.ErrNotFound
	}
	clone := cloneProduct(product)
	return &clone, nil
}

func (r *Repository) GetProductBySlug(_ context.Context, slug string) (*domain.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, product := range r.products {
		if product.Slug == slug && product.Active {
			clone := cloneProduct(product)
			return &clone, nil
		}
	}
	return nil, ports.ErrNotFound
}

func (r *Repository) ListProducts(_ context.Context) ([]*domain.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	list := make([]*domain.Product, 0, len(r.products))
	for _, product := range r.products {
		clone := cloneProduct(product)
		list = append(list, &clone)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Name < list[j].Name })
	return list, nil
}

func (r *Repository) ListFeatured(_ context.Context, limit int) ([]*domain.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	list := make([]*domain.Product, 0, limit)
	for _, product := range r.products {
		if product.Featured && product.Active {
			clone := cloneProduct(product)
			list = append(list, &clone)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Name < list[j].Name })
	if limit > 0 && len(list) > limit {
		list = list[:limit]
	}
	return list, nil
}

func (r *Repository) ListProductsByCategory(_ context.Context, categoryID string) ([]*domain.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	list := make([]*domain.Product, 0)
	for _, product := range r.products {
		if product.Active && product.CategoryID != nil && *product.CategoryID == categoryID {
			clone := cloneProduct(product)
			list = append(list, &clone)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Name < list[j].Name })
	return list, nil
}

func (r *Repository) SearchProducts(_ context.Context, query string) ([]*domain.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	list := make([]*domain.Product, 0)
	for _, product := range r.products {
		if r.matchesQuery(product, query) {
			clone := cloneProduct(product)
			list = append(list, &clone)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Name < list[j].Name })
	return list, nil
}

// matchesQuery mirrors the SQL adapter's ILIKE match over name, description,
// and category name. Caller holds the lock.
func (r *Repository) matchesQuery(product *domain.Product, query string) bool {
	if containsFold(product.Name, query) || containsFold(product.Description, query) {
		return true
	}
	if product.CategoryID != nil {
		if category, ok := r.categories[*product.CategoryID]; ok && containsFold(category.Name, query) {
			return true
		}
	}
	return false
}

func (r *Repository) DeleteProduct(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.products[id]; !ok {
		return ports.ErrNotFound
	}
	delete(r.products, id)
	for variantID, variant := range r.variants {
		if variant.ProductID == id {
			delete(r.variants, variantID)
		}
	}
	return nil
}

func (r *Repository) SaveCategory(_ context.Context, category *domain.Category) (*domain.Category, error) {
	if category == nil {
		return nil, errors.New("category is nil")
	}
	if err := category.Validate(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.categories {
		if existing.Slug == category.Slug && existing.ID != category.ID {
			return nil, ports.ErrSlugTaken
		}
	}
	clone := *category
	r.categories[clone.ID] = &clone
	saved := clone
	return &saved, nil
}

func (r *Repository) GetCategoryByID(_ context.Context, id string) (*domain.Category, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	category, ok := r.categories[id]
	if !ok {
		return nil, ports.ErrNotFound
	}
	clone := *category
	return &clone, nil
}

func (r *Repository) GetCategoryBySlug(_ context.Context, slug string) (*domain.Category, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, category := range r.categories {
		if category.Slug == slug {
			clone := *category
			return &clone, nil
		}
	}
	return nil, ports.ErrNotFound
}

func (r *Repository) ListCategories(_ context.Context) ([]*domain.Category, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	list := make([]*domain.Category, 0, len(r.categories))
	for _, category := range r.categories {
		clone := *category
		list = append(list, &clone)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Name < list[j].Name })
	return list, nil
}

func (r *Repository) DeleteCategory(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.categories[id]; !ok {
		return ports.ErrNotFound
	}
	delete(r.categories, id)
	for _, product := range r.products {
		if product.CategoryID != nil && *product.CategoryID == id {
			product.CategoryID = nil
		}
	}
	return nil
}

func (r *Repository) SaveVariant(_ context.Context, variant *domain.Variant) (*domain.Variant, error) {
	if variant == nil {
		return nil, errors.New("variant is nil")
	}
	if err := variant.Validate(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.variants {
		if existing.SKU == variant.SKU && existing.ID != variant.ID {
			return nil, ports.ErrSKUConflict
		}
	}
	clone := *variant
	r.variants[clone.ID] = &clone
	saved := clone
	return &saved, nil
}

func (r *Repository) ListVariants(_ context.Context, productID string) ([]*domain.Variant, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	list := make([]*domain.Variant, 0)
	for _, variant := range r.variants {
		if variant.ProductID == productID {
			clone := *variant
			list = append(list, &clone)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].SKU < list[j].SKU })
	return list, nil
}

func (r *Repository) FindVariantsByIDs(_ context.Context, ids []string, activeOnly bool) ([]*domain.Variant, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	list := make([]*domain.Variant, 0, len(ids))
	for _, id := range ids {
		variant, ok := r.variants[id]
		if !ok {
			continue
		}
		if activeOnly {
			if !variant.Active {
				continue
			}
			if product, ok := r.products[variant.ProductID]; ok && !product.Active {
				continue
			}
		}
		clone := *variant
		list = append(list, &clone)
	}
	return list, nil
}

// DecrementStocks applies the batch conditionally: if any variant lacks
// stock, nothing is written and a stock conflict for that variant is
// returned. The single lock acquisition makes the check-and-write pair
// atomic with respect to concurrent placements.
func (r *Repository) DecrementStocks(decrements map[string]int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for variantID, quantity := range decrements {
		variant, ok := r.variants[variantID]
		if !ok || variant.Stock < quantity {
			return &ordersports.StockConflictError{VariantID: variantID}
		}
	}
	for variantID, quantity := range decrements {
		r.variants[variantID].Stock -= quantity
	}
	return nil
}

func (r *Repository) CountProducts(_ context.Context) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return int64(len(r.products)), nil
}

func (r *Repository) CountCategories(_ context.Context) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return int64(len(r.categories)), nil
}

func (r *Repository) ListLowStockVariants(_ context.Context, threshold int64, limit int) ([]*domain.Variant, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	list := make([]*domain.Variant, 0)
	for _, variant := range r.variants {
		if variant.Active && variant.Stock <= threshold {
			clone := *variant
			list = append(list, &clone)
		}
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].Stock != list[j].Stock {
			return list[i].Stock < list[j].Stock
		}
		return list[i].SKU < list[j].SKU
	})
	if limit > 0 && len(list) > limit {
		list = list[:limit]
	}
	return list, nil
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}

func cloneProduct(product *domain.Product) domain.Product {
	clone := *product
	clone.ImageKeys = append([]string{}, product.ImageKeys...)
	return clone
}
