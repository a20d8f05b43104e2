package ports

import "context"

// Variant is the catalog projection the placement engine needs: server-side
// price and stock by identifier. Client payloads never feed these fields.
type Variant struct {
	ID    string
	SKU   string
	Price int64
	Stock int64
}

// CatalogReader provides read access to purchasable variants.
type CatalogReader interface {
	// FindVariantsByIDs returns the variants matching the given identifiers.
	// With activeOnly set, inactive and deleted variants are omitted rather
	// than erroring, so callers can detect them by comparing counts.
	FindVariantsByIDs(ctx context.Context, ids []string, activeOnly bool) ([]Variant, error)
}
