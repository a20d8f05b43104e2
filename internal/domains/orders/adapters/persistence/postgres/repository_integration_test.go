//go:build integration

package postgres

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	catalogpostgres "github.com/earthenstore/storefront-api/internal/domains/catalog/adapters/persistence/postgres"
	catalogdomain "github.com/earthenstore/storefront-api/internal/domains/catalog/domain"
	"github.com/earthenstore/storefront-api/internal/domains/orders/domain"
	"github.com/earthenstore/storefront-api/internal/domains/orders/ports"
	"github.com/earthenstore/storefront-api/internal/platform/migrations"
)

func setupOrdersPostgresContainer(t *testing.T) (*gorm.DB, func()) {
	ctx := context.Background()

	pgContainer, err := tcpostgres.RunContainer(ctx,
		testcontainers.WithImage("postgres:15-alpine"),
		tcpostgres.WithDatabase("storefront_test"),
		tcpostgres.WithUsername("test"),
		tcpostgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	require.NoError(t, err)

	dsn, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	err = migrations.Run(db)
	require.NoError(t, err)

	cleanup := func() {
		sqlDB, _ := db.DB()
		if sqlDB != nil {
			sqlDB.Close()
		}
		pgContainer.Terminate(ctx)
	}

	return db, cleanup
}

func seedVariant(t *testing.T, db *gorm.DB, sku string, price, stock int64) *catalogdomain.Variant {
	t.Helper()
	ctx := context.Background()
	catalogRepo, err := catalogpostgres.NewRepository(db)
	require.NoError(t, err)

	product, err := catalogdomain.NewProduct("Seeded "+sku, "integration fixture")
	require.NoError(t, err)
	product, err = catalogRepo.SaveProduct(ctx, product)
	require.NoError(t, err)

	variant, err := catalogdomain.NewVariant(product.ID, sku, price, stock)
	require.NoError(t, err)
	variant, err = catalogRepo.SaveVariant(ctx, variant)
	require.NoError(t, err)
	return variant
}

func placementShipping() domain.ShippingDetails {
	return domain.ShippingDetails{
		CustomerName:  "Integration Tester",
		CustomerEmail: "it@example.com",
		AddressLine:   "1 Container Way",
		City:          "Dockerville",
		ZipCode:       "00001",
	}
}

func commitOrder(repo *Repository, order *domain.Order) error {
	ctx := context.Background()
	return repo.RunInTransaction(ctx, func(tx ports.OrderTx) error {
		if err := tx.CreateOrder(ctx, order); err != nil {
			return err
		}
		if err := tx.CreateOrderLines(ctx, order.ID, order.Lines); err != nil {
			return err
		}
		for _, line := range order.Lines {
			if err := tx.DecrementStock(ctx, line.VariantID, line.Quantity); err != nil {
				return err
			}
		}
		return nil
	})
}

func TestRepository_PlacementRoundTrip(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	db, cleanup := setupOrdersPostgresContainer(t)
	defer cleanup()

	variant := seedVariant(t, db, "ROUND-TRIP", 1500, 10)
	repo := NewRepository(db)
	ctx := context.Background()

	order, err := domain.NewOrder(nil, placementShipping(), []domain.OrderLine{
		{VariantID: variant.ID, Quantity: 3, Price: 1500},
	})
	require.NoError(t, err)
	require.NoError(t, commitOrder(repo, order))

	fetched, err := repo.GetByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(4500), fetched.Total)
	assert.Equal(t, domain.StatusPending, fetched.Status)
	require.Len(t, fetched.Lines, 1)
	assert.Equal(t, int64(1500), fetched.Lines[0].Price)

	var stock int64
	err = db.Table("product_variants").Select("stock").Where("id = ?", variant.ID).Scan(&stock).Error
	require.NoError(t, err)
	assert.Equal(t, int64(7), stock)
}

func TestRepository_StockConflictRollsBackOrder(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	db, cleanup := setupOrdersPostgresContainer(t)
	defer cleanup()

	variant := seedVariant(t, db, "SCARCE", 900, 2)
	repo := NewRepository(db)
	ctx := context.Background()

	order, err := domain.NewOrder(nil, placementShipping(), []domain.OrderLine{
		{VariantID: variant.ID, Quantity: 5, Price: 900},
	})
	require.NoError(t, err)

	err = commitOrder(repo, order)
	var conflict *ports.StockConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, variant.ID, conflict.VariantID)

	_, err = repo.GetByID(ctx, order.ID)
	assert.ErrorIs(t, err, ports.ErrNotFound)

	var stock int64
	err = db.Table("product_variants").Select("stock").Where("id = ?", variant.ID).Scan(&stock).Error
	require.NoError(t, err)
	assert.Equal(t, int64(2), stock)
}

func TestRepository_ConcurrentPlacementsNeverOversell(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	db, cleanup := setupOrdersPostgresContainer(t)
	defer cleanup()

	variant := seedVariant(t, db, "LAST-ONE", 2500, 1)
	repo := NewRepository(db)
	ctx := context.Background()

	const attempts = 8
	errs := make([]error, attempts)
	var wg sync.WaitGroup
	wg.Add(attempts)
	for i := 0; i < attempts; i++ {
		go func(i int) {
			defer wg.Done()
			order, err := domain.NewOrder(nil, placementShipping(), []domain.OrderLine{
				{VariantID: variant.ID, Quantity: 1, Price: 2500},
			})
			if err != nil {
				errs[i] = err
				return
			}
			errs[i] = commitOrder(repo, order)
		}(i)
	}
	wg.Wait()

	var successes int
	for _, err := range errs {
		if err == nil {
			successes++
			continue
		}
		var conflict *ports.StockConflictError
		assert.ErrorAs(t, err, &conflict)
	}
	assert.Equal(t, 1, successes)

	orders, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, orders, 1)

	var stock int64
	err = db.Table("product_variants").Select("stock").Where("id = ?", variant.ID).Scan(&stock).Error
	require.NoError(t, err)
	assert.Equal(t, int64(0), stock)
}

func TestRepository_UpdateStatus(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	db, cleanup := setupOrdersPostgresContainer(t)
	defer cleanup()

	variant := seedVariant(t, db, "SHIP-ME", 1100, 4)
	repo := NewRepository(db)
	ctx := context.Background()

	order, err := domain.NewOrder(nil, placementShipping(), []domain.OrderLine{
		{VariantID: variant.ID, Quantity: 1, Price: 1100},
	})
	require.NoError(t, err)
	require.NoError(t, commitOrder(repo, order))

	updated, err := repo.UpdateStatus(ctx, order.ID, domain.StatusShipped)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusShipped, updated.Status)

	_, err = repo.UpdateStatus(ctx, "00000000-0000-0000-0000-000000000000", domain.StatusShipped)
	assert.ErrorIs(t, err, ports.ErrNotFound)
}

func TestRepository_StatsAggregates(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	db, cleanup := setupOrdersPostgresContainer(t)
	defer cleanup()

	repo := NewRepository(db)
	variant := seedVariant(t, db, "STATS-MUG", 500, 20)

	var lastID string
	for i := 0; i < 3; i++ {
		order, err := domain.NewOrder(nil, placementShipping(), []domain.OrderLine{
			{VariantID: variant.ID, Quantity: 2, Price: 500},
		})
		require.NoError(t, err)
		require.NoError(t, commitOrder(repo, order))
		lastID = order.ID
	}

	stats, err := repo.Stats(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, int64(3), stats.Orders)
	assert.Equal(t, int64(3000), stats.Revenue)
	require.Len(t, stats.Recent, 2)
	assert.Equal(t, lastID, stats.Recent[0].ID)
}
