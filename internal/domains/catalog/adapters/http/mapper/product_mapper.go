// Package mapper converts between transport payloads and catalog domain types.
package mapper

import (
	"github.com/earthenstore/storefront-api/internal/domains/catalog/domain"
	"github.com/earthenstore/storefront-api/internal/domains/catalog/ports"
)

type Product struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Slug        string   `json:"slug"`
	Description string   `json:"description,omitempty"`
	CategoryID  *string  `json:"categoryId,omitempty"`
	ImageKeys   []string `json:"imageKeys,omitempty"`
	Active      bool     `json:"active"`
	Featured    bool     `json:"featured"`
}

type Category struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	Description string `json:"description,omitempty"`
}

// CategoryView is the storefront category page payload.
type CategoryView struct {
	Category Category      `json:"category"`
	Products []ProductView `json:"products"`
}

type Variant struct {
	ID        string `json:"id"`
	ProductID string `json:"productId"`
	SKU       string `json:"sku"`
	Price     int64  `json:"price"`
	Stock     int64  `json:"stock"`
	Active    bool   `json:"active"`
}

// ProductView bundles a product with its variants and resolved image URLs
// for the public storefront.
type ProductView struct {
	Product   Product   `json:"product"`
	Variants  []Variant `json:"variants"`
	ImageURLs []string  `json:"imageUrls"`
}

type CreateProductRequest struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	CategoryID  string   `json:"categoryId"`
	ImageKeys   []string `json:"imageKeys"`
	Featured    bool     `json:"featured"`
}

type UpdateProductRequest struct {
	Name        *string   `json:"name,omitempty"`
	Description *string   `json:"description,omitempty"`
	CategoryID  *string   `json:"categoryId,omitempty"`
	ImageKeys   *[]string `json:"imageKeys,omitempty"`
	Active      *bool     `json:"active,omitempty"`
	Featured    *bool     `json:"featured,omitempty"`
}

type CreateCategoryRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type UpdateCategoryRequest struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
}

type AddVariantRequest struct {
	SKU   string `json:"sku"`
	Price int64  `json:"price"`
	Stock int64  `json:"stock"`
}

type SetStockRequest struct {
	Stock int64 `json:"stock"`
}

func FromDomainProduct(product *domain.Product) Product {
	if product == nil {
		return Product{}
	}
	return Product{
		ID:          product.ID,
		Name:        product.Name,
		Slug:        product.Slug,
		Description: product.Description,
		CategoryID:  product.CategoryID,
		ImageKeys:   product.ImageKeys,
		Active:      product.Active,
		Featured:    product.Featured,
	}
}

func FromDomainCategory(category *domain.Category) Category {
	if category == nil {
		return Category{}
	}
	return Category{
		ID:          category.ID,
		Name:        category.Name,
		Slug:        category.Slug,
		Description: category.Description,
	}
}

func FromDomainCategories(categories []*domain.Category) []Category {
	result := make([]Category, 0, len(categories))
	for _, category := range categories {
		result = append(result, FromDomainCategory(category))
	}
	return result
}

func FromCategoryView(view *ports.CategoryView) CategoryView {
	if view == nil {
		return CategoryView{}
	}
	return CategoryView{
		Category: FromDomainCategory(view.Category),
		Products: FromProductViews(view.Products),
	}
}

func FromDomainProducts(products []*domain.Product) []Product {
	result := make([]Product, 0, len(products))
	for _, product := range products {
		result = append(result, FromDomainProduct(product))
	}
	return result
}

func FromDomainVariant(variant *domain.Variant) Variant {
	if variant == nil {
		return Variant{}
	}
	return Variant{
		ID:        variant.ID,
		ProductID: variant.ProductID,
		SKU:       variant.SKU,
		Price:     variant.Price,
		Stock:     variant.Stock,
		Active:    variant.Active,
	}
}

func FromProductView(view *ports.ProductView) ProductView {
	if view == nil {
		return ProductView{}
	}
	variants := make([]Variant, 0, len(view.Variants))
	for _, variant := range view.Variants {
		variants = append(variants, FromDomainVariant(variant))
	}
	urls := view.ImageURLs
	if urls == nil {
		urls = []string{}
	}
	return ProductView{
		Product:   FromDomainProduct(view.Product),
		Variants:  variants,
		ImageURLs: urls,
	}
}

func FromProductViews(views []*ports.ProductView) []ProductView {
	result := make([]ProductView, 0, len(views))
	for _, view := range views {
		result = append(result, FromProductView(view))
	}
	return result
}

func ToCreateInput(payload CreateProductRequest, idempotencyKey string) ports.CreateProductInput {
	return ports.CreateProductInput{
		Name:           payload.Name,
		Description:    payload.Description,
		CategoryID:     payload.CategoryID,
		ImageKeys:      payload.ImageKeys,
		Featured:       payload.Featured,
		IdempotencyKey: idempotencyKey,
	}
}

func ToUpdateInput(id string, payload UpdateProductRequest) ports.UpdateProductInput {
	return ports.UpdateProductInput{
		ID:          id,
		Name:        payload.Name,
		Description: payload.Description,
		CategoryID:  payload.CategoryID,
		ImageKeys:   payload.ImageKeys,
		Active:      payload.Active,
		Featured:    payload.Featured,
	}
}

func ToCreateCategoryInput(payload CreateCategoryRequest) ports.CreateCategoryInput {
	return ports.CreateCategoryInput{
		Name:        payload.Name,
		Description: payload.Description,
	}
}

func ToUpdateCategoryInput(id string, payload UpdateCategoryRequest) ports.UpdateCategoryInput {
	return ports.UpdateCategoryInput{
		ID:          id,
		Name:        payload.Name,
		Description: payload.Description,
	}
}

func ToAddVariantInput(productID string, payload AddVariantRequest) ports.AddVariantInput {
	return ports.AddVariantInput{
		ProductID: productID,
		SKU:       payload.SKU,
		Price:     payload.Price,
		Stock:     payload.Stock,
	}
}
