//go:build integration

package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/earthenstore/storefront-api/internal/domains/catalog/domain"
	"github.com/earthenstore/storefront-api/internal/domains/catalog/ports"
	"github.com/earthenstore/storefront-api/internal/platform/migrations"
)

func setupCatalogPostgresContainer(t *testing.T) (*gorm.DB, func()) {
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

func TestRepository_SaveAndFetchProduct(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	db, cleanup := setupCatalogPostgresContainer(t)
	defer cleanup()

	repo, err := NewRepository(db)
	require.NoError(t, err)
	ctx := context.Background()

	product, err := domain.NewProduct("Raku Vase", "Fired twice")
	require.NoError(t, err)
	product.ImageKeys = []string{"vases/raku-1.jpg", "vases/raku-2.jpg"}

	saved, err := repo.SaveProduct(ctx, product)
	require.NoError(t, err)

	bySlug, err := repo.GetProductBySlug(ctx, "raku-vase")
	require.NoError(t, err)
	assert.Equal(t, saved.ID, bySlug.ID)
	assert.Equal(t, []string{"vases/raku-1.jpg", "vases/raku-2.jpg"}, bySlug.ImageKeys)

	byID, err := repo.GetProductByID(ctx, saved.ID)
	require.NoError(t, err)
	assert.Equal(t, "Raku Vase", byID.Name)
}

func TestRepository_SlugCollision(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	db, cleanup := setupCatalogPostgresContainer(t)
	defer cleanup()

	repo, err := NewRepository(db)
	require.NoError(t, err)
	ctx := context.Background()

	first, err := domain.NewProduct("Raku Vase", "")
	require.NoError(t, err)
	_, err = repo.SaveProduct(ctx, first)
	require.NoError(t, err)

	second, err := domain.NewProduct("Raku Vase", "different product, same name")
	require.NoError(t, err)
	_, err = repo.SaveProduct(ctx, second)
	assert.ErrorIs(t, err, ports.ErrSlugTaken)
}

func TestRepository_VariantSKUConflictAndActiveFilter(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	db, cleanup := setupCatalogPostgresContainer(t)
	defer cleanup()

	repo, err := NewRepository(db)
	require.NoError(t, err)
	ctx := context.Background()

	product, err := domain.NewProduct("Teacup", "")
	require.NoError(t, err)
	product, err = repo.SaveProduct(ctx, product)
	require.NoError(t, err)

	variant, err := domain.NewVariant(product.ID, "CUP-STD", 800, 6)
	require.NoError(t, err)
	variant, err = repo.SaveVariant(ctx, variant)
	require.NoError(t, err)

	dup, err := domain.NewVariant(product.ID, "CUP-STD", 900, 1)
	require.NoError(t, err)
	_, err = repo.SaveVariant(ctx, dup)
	assert.ErrorIs(t, err, ports.ErrSKUConflict)

	product.Active = false
	_, err = repo.SaveProduct(ctx, product)
	require.NoError(t, err)

	visible, err := repo.FindVariantsByIDs(ctx, []string{variant.ID}, true)
	require.NoError(t, err)
	assert.Empty(t, visible)

	all, err := repo.FindVariantsByIDs(ctx, []string{variant.ID}, false)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestIdempotencyStore_SaveAndReplay(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	db, cleanup := setupCatalogPostgresContainer(t)
	defer cleanup()

	store, err := NewIdempotencyStore(db)
	require.NoError(t, err)
	ctx := context.Background()

	record := ports.IdempotencyRecord{
		Key:         "create-abc",
		RequestHash: "hash-1",
		ProductID:   "11111111-1111-1111-1111-111111111111",
	}
	saved, err := store.Save(ctx, record)
	require.NoError(t, err)
	assert.Equal(t, record.ProductID, saved.ProductID)

	// Replaying the same request is a no-op.
	again, err := store.Save(ctx, record)
	require.NoError(t, err)
	assert.Equal(t, record.ProductID, again.ProductID)

	// Reusing the key for a different payload conflicts.
	record.RequestHash = "hash-2"
	_, err = store.Save(ctx, record)
	assert.ErrorIs(t, err, ports.ErrIdempotencyConflict)

	fetched, err := store.Get(ctx, "create-abc")
	require.NoError(t, err)
	require.NotNil(t, fetched)
	assert.Equal(t, "hash-1", fetched.RequestHash)

	missing, err := store.Get(ctx, "unknown")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestRepository_CategoryLifecycle(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	db, cleanup := setupCatalogPostgresContainer(t)
	defer cleanup()

	repo, err := NewRepository(db)
	require.NoError(t, err)
	ctx := context.Background()

	category, err := domain.NewCategory("Vases", "Tall and small")
	require.NoError(t, err)
	saved, err := repo.SaveCategory(ctx, category)
	require.NoError(t, err)

	bySlug, err := repo.GetCategoryBySlug(ctx, "vases")
	require.NoError(t, err)
	assert.Equal(t, saved.ID, bySlug.ID)

	duplicate, err := domain.NewCategory("Vases", "")
	require.NoError(t, err)
	_, err = repo.SaveCategory(ctx, duplicate)
	assert.ErrorIs(t, err, ports.ErrSlugTaken)

	product, err := domain.NewProduct("Raku Vase", "Fired twice")
	require.NoError(t, err)
	product.CategoryID = &saved.ID
	_, err = repo.SaveProduct(ctx, product)
	require.NoError(t, err)

	inCategory, err := repo.ListProductsByCategory(ctx, saved.ID)
	require.NoError(t, err)
	require.Len(t, inCategory, 1)
	assert.Equal(t, product.ID, inCategory[0].ID)

	require.NoError(t, repo.DeleteCategory(ctx, saved.ID))
	detached, err := repo.GetProductByID(ctx, product.ID)
	require.NoError(t, err)
	assert.Nil(t, detached.CategoryID)

	err = repo.DeleteCategory(ctx, saved.ID)
	assert.ErrorIs(t, err, ports.ErrNotFound)
}

func TestRepository_SearchAndStatsAggregates(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	db, cleanup := setupCatalogPostgresContainer(t)
	defer cleanup()

	repo, err := NewRepository(db)
	require.NoError(t, err)
	ctx := context.Background()

	category, err := domain.NewCategory("Drinkware", "")
	require.NoError(t, err)
	_, err = repo.SaveCategory(ctx, category)
	require.NoError(t, err)

	cup, err := domain.NewProduct("Espresso Cup", "Set of two")
	require.NoError(t, err)
	cup.CategoryID = &category.ID
	_, err = repo.SaveProduct(ctx, cup)
	require.NoError(t, err)

	vase, err := domain.NewProduct("Raku Vase", "Hand-thrown stoneware")
	require.NoError(t, err)
	_, err = repo.SaveProduct(ctx, vase)
	require.NoError(t, err)

	byName, err := repo.SearchProducts(ctx, "espresso")
	require.NoError(t, err)
	require.Len(t, byName, 1)
	assert.Equal(t, cup.ID, byName[0].ID)

	byDescription, err := repo.SearchProducts(ctx, "STONEWARE")
	require.NoError(t, err)
	require.Len(t, byDescription, 1)
	assert.Equal(t, vase.ID, byDescription[0].ID)

	byCategory, err := repo.SearchProducts(ctx, "drinkware")
	require.NoError(t, err)
	require.Len(t, byCategory, 1)
	assert.Equal(t, cup.ID, byCategory[0].ID)

	low, err := domain.NewVariant(cup.ID, "CUP-S", 900, 2)
	require.NoError(t, err)
	_, err = repo.SaveVariant(ctx, low)
	require.NoError(t, err)
	high, err := domain.NewVariant(vase.ID, "VASE-L", 2400, 40)
	require.NoError(t, err)
	_, err = repo.SaveVariant(ctx, high)
	require.NoError(t, err)

	products, err := repo.CountProducts(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), products)
	categories, err := repo.CountCategories(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), categories)

	lowStock, err := repo.ListLowStockVariants(ctx, 5, 10)
	require.NoError(t, err)
	require.Len(t, lowStock, 1)
	assert.Equal(t, low.ID, lowStock[0].ID)
}
