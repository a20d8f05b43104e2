package application

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	catalogmemory "github.com/earthenstore/storefront-api/internal/domains/catalog/adapters/memory"
	catalogdomain "github.com/earthenstore/storefront-api/internal/domains/catalog/domain"
	orderscatalog "github.com/earthenstore/storefront-api/internal/domains/orders/adapters/catalog"
	ordersmemory "github.com/earthenstore/storefront-api/internal/domains/orders/adapters/memory"
	"github.com/earthenstore/storefront-api/internal/domains/orders/domain"
	"github.com/earthenstore/storefront-api/internal/domains/orders/ports"
)

// Exercises the real in-memory adapters end to end: with a single unit in
// stock and many concurrent checkouts, exactly one order may commit and the
// stock must land at zero, never below.
func TestPlaceOrder_ConcurrentCheckoutsNeverOversell(t *testing.T) {
	ctx := context.Background()
	catalogRepo := catalogmemory.NewRepository()

	product, err := catalogdomain.NewProduct("Stoneware Teapot", "Hand thrown, last of the batch")
	require.NoError(t, err)
	product, err = catalogRepo.SaveProduct(ctx, product)
	require.NoError(t, err)

	variant, err := catalogdomain.NewVariant(product.ID, "TEAPOT-LAST", 4800, 1)
	require.NoError(t, err)
	variant, err = catalogRepo.SaveVariant(ctx, variant)
	require.NoError(t, err)

	reader, err := orderscatalog.NewReader(catalogRepo)
	require.NoError(t, err)
	svc := NewService(reader, ordersmemory.NewRepository(catalogRepo))

	const attempts = 32
	results := make([]ports.Result, attempts)
	var wg sync.WaitGroup
	wg.Add(attempts)
	for i := 0; i < attempts; i++ {
		go func(i int) {
			defer wg.Done()
			results[i] = svc.PlaceOrder(ctx, checkoutShipping(), []domain.CartLine{
				{VariantID: variant.ID, Quantity: 1},
			})
		}(i)
	}
	wg.Wait()

	var successes int
	for _, result := range results {
		if result.Success {
			successes++
			continue
		}
		require.NotNil(t, result.Error)
		require.Equal(t, ports.CodeInsufficientStock, result.Error.Code)
		require.Equal(t, "TEAPOT-LAST", result.Error.SKU)
	}
	require.Equal(t, 1, successes)

	remaining, err := catalogRepo.FindVariantsByIDs(ctx, []string{variant.ID}, false)
	require.NoError(t, err)
	require.Len(t, remaining, 1)
	require.Equal(t, int64(0), remaining[0].Stock)
}
