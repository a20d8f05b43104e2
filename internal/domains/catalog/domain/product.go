package domain

import (
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
)

var (
	ErrEmptyName     = errors.New("product name is required")
	ErrEmptySKU      = errors.New("variant sku is required")
	ErrNegativePrice = errors.New("price must be zero or greater")
	ErrNegativeStock = errors.New("stock must be zero or greater")
)

// Product groups purchasable variants under a storefront page. ImageKeys are
// blob-storage object keys; URL resolution happens at the read edge.
// CategoryID is nil for uncategorized products.
type Product struct {
	ID          string
	Name        string
	Slug        string
	Description string
	CategoryID  *string
	ImageKeys   []string
	Active      bool
	Featured    bool
}

// NewProduct validates the invariants and derives the URL slug from the name.
// The slug is fixed at creation so storefront links survive renames.
func NewProduct(name, description string) (*Product, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrEmptyName
	}
	return &Product{
		ID:          uuid.NewString(),
		Name:        name,
		Slug:        slug.Make(name),
		Description: strings.TrimSpace(description),
		Active:      true,
	}, nil
}

// Rename mutates the product name ensuring the invariant. The slug is kept.
func (p *Product) Rename(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrEmptyName
	}
	p.Name = name
	return nil
}

// ReplaceImages swaps the stored image keys.
func (p *Product) ReplaceImages(keys []string) {
	p.ImageKeys = append([]string{}, keys...)
}

// Validate re-applies core invariants for persistence.
func (p *Product) Validate() error {
	if strings.TrimSpace(p.Name) == "" || strings.TrimSpace(p.Slug) == "" {
		return ErrEmptyName
	}
	return nil
}

// Variant is a purchasable SKU of a product. Price is an integer amount of
// minor currency units; stock never goes below zero.
type Variant struct {
	ID        string
	ProductID string
	SKU       string
	Price     int64
	Stock     int64
	Active    bool
}

// NewVariant validates and constructs a variant.
func NewVariant(productID, sku string, price, stock int64) (*Variant, error) {
	v := &Variant{
		ID:        uuid.NewString(),
		ProductID: productID,
		SKU:       strings.TrimSpace(sku),
		Active:    true,
	}
	if v.SKU == "" {
		return nil, ErrEmptySKU
	}
	if err := v.SetPrice(price); err != nil {
		return nil, err
	}
	if err := v.SetStock(stock); err != nil {
		return nil, err
	}
	return v, nil
}

// SetPrice enforces the non-negative price invariant.
func (v *Variant) SetPrice(price int64) error {
	if price < 0 {
		return ErrNegativePrice
	}
	v.Price = price
	return nil
}

// SetStock writes an absolute stock count, used by admin edits. Order
// placement never calls this; it decrements conditionally at commit time.
func (v *Variant) SetStock(stock int64) error {
	if stock < 0 {
		return ErrNegativeStock
	}
	v.Stock = stock
	return nil
}

// Validate re-applies core invariants for persistence.
func (v *Variant) Validate() error {
	if strings.TrimSpace(v.SKU) == "" {
		return ErrEmptySKU
	}
	if v.Price < 0 {
		return ErrNegativePrice
	}
	if v.Stock < 0 {
		return ErrNegativeStock
	}
	return nil
}
