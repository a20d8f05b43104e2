// Package postgres persists the catalog with GORM. Variant rows carry a
// database-level stock >= 0 check so a buggy writer can never drive stock
// negative even outside the conditional decrement path.
package postgres

import (
	"context"
	"errors"
	"strings"

	"github.com/lib/pq"
	"gorm.io/gorm"

	"github.com/earthenstore/storefront-api/internal/domains/catalog/domain"
	"github.com/earthenstore/storefront-api/internal/domains/catalog/ports"
)

var _ ports.Repository = (*Repository)(nil)

type productRecord struct {
	ID          string         `gorm:"type:uuid;primaryKey"`
	Name        string         `gorm:"type:varchar(255);not null"`
	Slug        string         `gorm:"type:varchar(255);not null;uniqueIndex"`
	Description string         `gorm:"type:text"`
	CategoryID  *string        `gorm:"type:uuid;index"`
	ImageKeys   pq.StringArray `gorm:"type:text[]"`
	Active      bool           `gorm:"not null;default:true"`
	Featured    bool           `gorm:"not null;default:false;index"`
	CreatedAt   int64          `gorm:"autoCreateTime:milli"`
	UpdatedAt   int64          `gorm:"autoUpdateTime:milli"`
}

func (productRecord) TableName() string { return "products" }

type categoryRecord struct {
	ID          string `gorm:"type:uuid;primaryKey"`
	Name        string `gorm:"type:varchar(255);not null"`
	Slug        string `gorm:"type:varchar(255);not null;uniqueIndex"`
	Description string `gorm:"type:text"`
	CreatedAt   int64  `gorm:"autoCreateTime:milli"`
	UpdatedAt   int64  `gorm:"autoUpdateTime:milli"`
}

func (categoryRecord) TableName() string { return "categories" }

type variantRecord struct {
	ID        string `gorm:"type:uuid;primaryKey"`
	ProductID string `gorm:"type:uuid;not null;index"`
	SKU       string `gorm:"type:varchar(64);not null;uniqueIndex"`
	Price     int64  `gorm:"not null"`
	Stock     int64  `gorm:"not null;check:chk_variant_stock,stock >= 0"`
	Active    bool   `gorm:"not null;default:true"`
	CreatedAt int64  `gorm:"autoCreateTime:milli"`
	UpdatedAt int64  `gorm:"autoUpdateTime:milli"`
}

func (variantRecord) TableName() string { return "product_variants" }

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) (*Repository, error) {
	if db == nil {
		return nil, errors.New("gorm DB is required")
	}
	if err := db.AutoMigrate(&productRecord{}, &categoryRecord{}, &variantRecord{}); err != nil {
		return nil, err
	}
	return &Repository{db: db}, nil
}

func (r *Repository) SaveProduct(ctx context.Context, product *domain.Product) (*domain.Product, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	if product == nil {
		return nil, errors.New("product is nil")
	}
	record := toProductRecord(product)
	err := r.db.WithContext(ctx).Save(&record).Error
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ports.ErrSlugTaken
		}
		return nil, err
	}
	saved := toProductDomain(record)
	return &saved, nil
}

func (r *Repository) GetProductByID(ctx context.Context, id string) (*domain.Product, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var record productRecord
	err := r.db.WithContext(ctx).First(&record, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ports.ErrNotFound
		}
		return nil, err
	}
	product := toProductDomain(record)
	return &product, nil
}

func (r *Repository) GetProductBySlug(ctx context.Context, slug string) (*domain.Product, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var record productRecord
	err := r.db.WithContext(ctx).First(&record, "slug = ? AND active = TRUE", slug).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ports.ErrNotFound
		}
		return nil, err
	}
	product := toProductDomain(record)
	return &product, nil
}

func (r *Repository) ListProducts(ctx context.Context) ([]*domain.Product, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var records []productRecord
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&records).Error; err != nil {
		return nil, err
	}
	return toProductDomains(records), nil
}

func (r *Repository) ListFeatured(ctx context.Context, limit int) ([]*domain.Product, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	query := r.db.WithContext(ctx).
		Where("featured = TRUE AND active = TRUE").
		Order("name ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	var records []productRecord
	if err := query.Find(&records).Error; err != nil {
		return nil, err
	}
	return toProductDomains(records), nil
}

func (r *Repository) ListProductsByCategory(ctx context.Context, categoryID string) ([]*domain.Product, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var records []productRecord
	err := r.db.WithContext(ctx).
		Where("category_id = ? AND active = TRUE", categoryID).
		Order("name ASC").
		Find(&records).Error
	if err != nil {
		return nil, err
	}
	return toProductDomains(records), nil
}

func (r *Repository) SearchProducts(ctx context.Context, query string) ([]*domain.Product, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	pattern := "%" + query + "%"
	var records []productRecord
	err := r.db.WithContext(ctx).
		Table("products").
		Select("products.*").
		Joins("LEFT JOIN categories ON categories.id = products.category_id").
		Where("products.name ILIKE ? OR products.description ILIKE ? OR categories.name ILIKE ?", pattern, pattern, pattern).
		Order("products.name ASC").
		Find(&records).Error
	if err != nil {
		return nil, err
	}
	return toProductDomains(records), nil
}

func (r *Repository) DeleteProduct(ctx context.Context, id string) error {
	if err := r.ensureDB(); err != nil {
		return err
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Delete(&productRecord{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ports.ErrNotFound
		}
		return tx.Delete(&variantRecord{}, "product_id = ?", id).Error
	})
}

func (r *Repository) SaveCategory(ctx context.Context, category *domain.Category) (*domain.Category, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	if category == nil {
		return nil, errors.New("category is nil")
	}
	record := toCategoryRecord(category)
	err := r.db.WithContext(ctx).Save(&record).Error
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ports.ErrSlugTaken
		}
		return nil, err
	}
	saved := toCategoryDomain(record)
	return &saved, nil
}

func (r *Repository) GetCategoryByID(ctx context.Context, id string) (*domain.Category, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var record categoryRecord
	err := r.db.WithContext(ctx).First(&record, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ports.ErrNotFound
		}
		return nil, err
	}
	category := toCategoryDomain(record)
	return &category, nil
}

func (r *Repository) GetCategoryBySlug(ctx context.Context, slug string) (*domain.Category, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var record categoryRecord
	err := r.db.WithContext(ctx).First(&record, "slug = ?", slug).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ports.ErrNotFound
		}
		return nil, err
	}
	category := toCategoryDomain(record)
	return &category, nil
}

func (r *Repository) ListCategories(ctx context.Context) ([]*domain.Category, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var records []categoryRecord
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&records).Error; err != nil {
		return nil, err
	}
	categories := make([]*domain.Category, 0, len(records))
	for _, record := range records {
		category := toCategoryDomain(record)
		categories = append(categories, &category)
	}
	return categories, nil
}

// DeleteCategory detaches the category's products before removing the row so
// they stay listed as uncategorized.
func (r *Repository) DeleteCategory(ctx context.Context, id string) error {
	if err := r.ensureDB(); err != nil {
		return err
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&productRecord{}).Where("category_id = ?", id).Update("category_id", nil).Error; err != nil {
			return err
		}
		result := tx.Delete(&categoryRecord{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ports.ErrNotFound
		}
		return nil
	})
}

func (r *Repository) SaveVariant(ctx context.Context, variant *domain.Variant) (*domain.Variant, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	if variant == nil {
		return nil, errors.New("variant is nil")
	}
	record := toVariantRecord(variant)
	err := r.db.WithContext(ctx).Save(&record).Error
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ports.ErrSKUConflict
		}
		return nil, err
	}
	saved := toVariantDomain(record)
	return &saved, nil
}

func (r *Repository) ListVariants(ctx context.Context, productID string) ([]*domain.Variant, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var records []variantRecord
	err := r.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Order("sku ASC").
		Find(&records).Error
	if err != nil {
		return nil, err
	}
	variants := make([]*domain.Variant, 0, len(records))
	for _, record := range records {
		variant := toVariantDomain(record)
		variants = append(variants, &variant)
	}
	return variants, nil
}

func (r *Repository) FindVariantsByIDs(ctx context.Context, ids []string, activeOnly bool) ([]*domain.Variant, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return []*domain.Variant{}, nil
	}
	query := r.db.WithContext(ctx).
		Table("product_variants").
		Select("product_variants.*").
		Where("product_variants.id IN ?", ids)
	if activeOnly {
		query = query.
			Joins("JOIN products ON products.id = product_variants.product_id").
			Where("product_variants.active = TRUE AND products.active = TRUE")
	}
	var records []variantRecord
	if err := query.Find(&records).Error; err != nil {
		return nil, err
	}
	variants := make([]*domain.Variant, 0, len(records))
	for _, record := range records {
		variant := toVariantDomain(record)
		variants = append(variants, &variant)
	}
	return variants, nil
}

func (r *Repository) CountProducts(ctx context.Context) (int64, error) {
	if err := r.ensureDB(); err != nil {
		return 0, err
	}
	var count int64
	err := r.db.WithContext(ctx).Model(&productRecord{}).Count(&count).Error
	return count, err
}

func (r *Repository) CountCategories(ctx context.Context) (int64, error) {
	if err := r.ensureDB(); err != nil {
		return 0, err
	}
	var count int64
	err := r.db.WithContext(ctx).Model(&categoryRecord{}).Count(&count).Error
	return count, err
}

func (r *Repository) ListLowStockVariants(ctx context.Context, threshold int64, limit int) ([]*domain.Variant, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	query := r.db.WithContext(ctx).
		Where("active = TRUE AND stock <= ?", threshold).
		Order("stock ASC, sku ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	var records []variantRecord
	if err := query.Find(&records).Error; err != nil {
		return nil, err
	}
	variants := make([]*domain.Variant, 0, len(records))
	for _, record := range records {
		variant := toVariantDomain(record)
		variants = append(variants, &variant)
	}
	return variants, nil
}

func (r *Repository) ensureDB() error {
	if r == nil || r.db == nil {
		return errors.New("postgres repository is not initialized")
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	return strings.Contains(err.Error(), "duplicate key value")
}

func toProductRecord(product *domain.Product) productRecord {
	return productRecord{
		ID:          product.ID,
		Name:        product.Name,
		Slug:        product.Slug,
		Description: product.Description,
		CategoryID:  product.CategoryID,
		ImageKeys:   pq.StringArray(product.ImageKeys),
		Active:      product.Active,
		Featured:    product.Featured,
	}
}

func toProductDomain(record productRecord) domain.Product {
	return domain.Product{
		ID:          record.ID,
		Name:        record.Name,
		Slug:        record.Slug,
		Description: record.Description,
		CategoryID:  record.CategoryID,
		ImageKeys:   []string(record.ImageKeys),
		Active:      record.Active,
		Featured:    record.Featured,
	}
}

func toCategoryRecord(category *domain.Category) categoryRecord {
	return categoryRecord{
		ID:          category.ID,
		Name:        category.Name,
		Slug:        category.Slug,
		Description: category.Description,
	}
}

func toCategoryDomain(record categoryRecord) domain.Category {
	return domain.Category{
		ID:          record.ID,
		Name:        record.Name,
		Slug:        record.Slug,
		Description: record.Description,
	}
}

func toProductDomains(records []productRecord) []*domain.Product {
	products := make([]*domain.Product, 0, len(records))
	for _, record := range records {
		product := toProductDomain(record)
		products = append(products, &product)
	}
	return products
}

func toVariantRecord(variant *domain.Variant) variantRecord {
	return variantRecord{
		ID:        variant.ID,
		ProductID: variant.ProductID,
		SKU:       variant.SKU,
		Price:     variant.Price,
		Stock:     variant.Stock,
		Active:    variant.Active,
	}
}

func toVariantDomain(record variantRecord) domain.Variant {
	return domain.Variant{
		ID:        record.ID,
		ProductID: record.ProductID,
		SKU:       record.SKU,
		Price:     record.Price,
		Stock:     record.Stock,
		Active:    record.Active,
	}
}
