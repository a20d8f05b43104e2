package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/earthenstore/storefront-api/internal/domains/orders/domain"
	"github.com/earthenstore/storefront-api/internal/domains/orders/ports"
)

type fakeStockTable struct {
	applied []map[string]int64
	err     error
}

func (f *fakeStockTable) DecrementStocks(decrements map[string]int64) error {
	if f.err != nil {
		return f.err
	}
	f.applied = append(f.applied, decrements)
	return nil
}

func testOrder(t *testing.T) *domain.Order {
	t.Helper()
	order, err := domain.NewOrder(nil, domain.ShippingDetails{
		CustomerName:  "Mary Shelley",
		CustomerEmail: "mary@example.com",
		AddressLine:   "8 Chester Sq",
		City:          "London",
		ZipCode:       "SW1W 9HH",
	}, []domain.OrderLine{{VariantID: "v1", Quantity: 2, Price: 700}})
	require.NoError(t, err)
	return order
}

func placeTestOrder(t *testing.T, repo *Repository, order *domain.Order) {
	t.Helper()
	err := repo.RunInTransaction(context.Background(), func(tx ports.OrderTx) error {
		if err := tx.CreateOrder(context.Background(), order); err != nil {
			return err
		}
		if err := tx.CreateOrderLines(context.Background(), order.ID, order.Lines); err != nil {
			return err
		}
		for _, line := range order.Lines {
			if err := tx.DecrementStock(context.Background(), line.VariantID, line.Quantity); err != nil {
				return err
			}
		}
		return nil
	})
	require.NoError(t, err)
}

func TestRunInTransaction_CommitsOrderAndDecrements(t *testing.T) {
	stock := &fakeStockTable{}
	repo := NewRepository(stock)
	order := testOrder(t)

	placeTestOrder(t, repo, order)

	stored, err := repo.GetByID(context.Background(), order.ID)
	require.NoError(t, err)
	require.Equal(t, order.ID, stored.ID)
	require.Len(t, stored.Lines, 1)
	require.False(t, stored.CreatedAt.IsZero())

	require.Len(t, stock.applied, 1)
	require.Equal(t, int64(2), stock.applied[0]["v1"])
}

func TestRunInTransaction_FnErrorDiscardsEverything(t *testing.T) {
	stock := &fakeStockTable{}
	repo := NewRepository(stock)
	order := testOrder(t)

	err := repo.RunInTransaction(context.Background(), func(tx ports.OrderTx) error {
		require.NoError(t, tx.CreateOrder(context.Background(), order))
		require.NoError(t, tx.DecrementStock(context.Background(), "v1", 2))
		return errors.New("validation failed late")
	})
	require.Error(t, err)

	_, err = repo.GetByID(context.Background(), order.ID)
	require.ErrorIs(t, err, ports.ErrNotFound)
	require.Empty(t, stock.applied)
}

func TestRunInTransaction_StockConflictDiscardsOrder(t *testing.T) {
	stock := &fakeStockTable{err: &ports.StockConflictError{VariantID: "v1"}}
	repo := NewRepository(stock)
	order := testOrder(t)

	err := repo.RunInTransaction(context.Background(), func(tx ports.OrderTx) error {
		if err := tx.CreateOrder(context.Background(), order); err != nil {
			return err
		}
		if err := tx.CreateOrderLines(context.Background(), order.ID, order.Lines); err != nil {
			return err
		}
		return tx.DecrementStock(context.Background(), "v1", 2)
	})

	var conflict *ports.StockConflictError
	require.ErrorAs(t, err, &conflict)
	require.Equal(t, "v1", conflict.VariantID)

	_, err = repo.GetByID(context.Background(), order.ID)
	require.ErrorIs(t, err, ports.ErrNotFound)
}

func TestList_NewestFirst(t *testing.T) {
	repo := NewRepository(&fakeStockTable{})
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	tick := 0
	repo.WithClock(func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Minute)
	})

	first := testOrder(t)
	second := testOrder(t)
	placeTestOrder(t, repo, first)
	placeTestOrder(t, repo, second)

	list, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 2)
	require.Equal(t, second.ID, list[0].ID)
	require.Equal(t, first.ID, list[1].ID)
}

func TestUpdateStatus_PersistsAndTouchesTimestamp(t *testing.T) {
	repo := NewRepository(&fakeStockTable{})
	order := testOrder(t)
	placeTestOrder(t, repo, order)

	updated, err := repo.UpdateStatus(context.Background(), order.ID, domain.StatusShipped)
	require.NoError(t, err)
	require.Equal(t, domain.StatusShipped, updated.Status)
	require.False(t, updated.UpdatedAt.Before(updated.CreatedAt))

	_, err = repo.UpdateStatus(context.Background(), "missing", domain.StatusShipped)
	require.ErrorIs(t, err, ports.ErrNotFound)
}

func TestGetByID_ReturnsClone(t *testing.T) {
	repo := NewRepository(&fakeStockTable{})
	order := testOrder(t)
	placeTestOrder(t, repo, order)

	got, err := repo.GetByID(context.Background(), order.ID)
	require.NoError(t, err)
	got.Status = domain.StatusCancelled
	got.Lines[0].Quantity = 99

	again, err := repo.GetByID(context.Background(), order.ID)
	require.NoError(t, err)
	require.Equal(t, domain.StatusPending, again.Status)
	require.Equal(t, int64(2), again.Lines[0].Quantity)
}

func TestStats_CountsRevenueAndRecent(t *testing.T) {
	repo := NewRepository(&fakeStockTable{})
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	tick := 0
	repo.WithClock(func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Minute)
	})

	var latest *domain.Order
	for i := 0; i < 3; i++ {
		latest = testOrder(t)
		placeTestOrder(t, repo, latest)
	}

	stats, err := repo.Stats(context.Background(), 2)
	require.NoError(t, err)
	require.Equal(t, int64(3), stats.Orders)
	require.Equal(t, int64(3*1400), stats.Revenue)
	require.Len(t, stats.Recent, 2)
	require.Equal(t, latest.ID, stats.Recent[0].ID)
}
