// Package catalog adapts the catalog repository to the variant lookup the
// order placement engine needs, keeping the orders context decoupled from
// catalog internals.
package catalog

import (
	"context"
	"errors"

	catalogports "github.com/earthenstore/storefront-api/internal/domains/catalog/ports"
	"github.com/earthenstore/storefront-api/internal/domains/orders/ports"
)

var _ ports.CatalogReader = (*Reader)(nil)

type Reader struct {
	repo catalogports.Repository
}

func NewReader(repo catalogports.Repository) (*Reader, error) {
	if repo == nil {
		return nil, errors.New("catalog repository is required")
	}
	return &Reader{repo: repo}, nil
}

func (r *Reader) FindVariantsByIDs(ctx context.Context, ids []string, activeOnly bool) ([]ports.Variant, error) {
	variants, err := r.repo.FindVariantsByIDs(ctx, ids, activeOnly)
	if err != nil {
		return nil, err
	}
	out := make([]ports.Variant, 0, len(variants))
	for _, variant := range variants {
		out = append(out, ports.Variant{
			ID:    variant.ID,
			SKU:   variant.SKU,
			Price: variant.Price,
			Stock: variant.Stock,
		})
	}
	return out, nil
}
