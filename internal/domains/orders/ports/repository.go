package ports

import (
	"context"
	"errors"
	"fmt"

	"github.com/earthenstore/storefront-api/internal/domains/orders/domain"
)

var ErrNotFound = errors.New("order not found")

// StockConflictError signals that a conditional stock decrement found too
// little stock left. It fails the enclosing transaction.
type StockConflictError struct {
	VariantID string
}

func (e *StockConflictError) Error() string {
	return fmt.Sprintf("stock decrement for variant %s would go negative", e.VariantID)
}

// OrderTx is the write surface available inside a placement transaction.
// All writes commit together or not at all.
type OrderTx interface {
	// CreateOrder inserts the order row with its computed total.
	CreateOrder(ctx context.Context, order *domain.Order) error
	// CreateOrderLines inserts one row per cart line with snapshotted prices.
	CreateOrderLines(ctx context.Context, orderID string, lines []domain.OrderLine) error
	// DecrementStock atomically decrements the variant's stock by quantity.
	// It must be a conditional write: when the variant has less stock than
	// quantity it returns a *StockConflictError instead of writing, which
	// aborts the whole transaction. A separate read-then-write is not an
	// acceptable implementation.
	DecrementStock(ctx context.Context, variantID string, quantity int64) error
}

// Stats is the orders slice of the admin dashboard. Revenue is the sum of
// order totals in minor currency units.
type Stats struct {
	Orders  int64
	Revenue int64
	Recent  []*domain.Order
}

// Repository persists orders and exposes the placement transaction boundary.
type Repository interface {
	// RunInTransaction executes fn inside a single atomic transaction. Any
	// error returned by fn rolls every write back.
	RunInTransaction(ctx context.Context, fn func(tx OrderTx) error) error
	GetByID(ctx context.Context, id string) (*domain.Order, error)
	List(ctx context.Context) ([]*domain.Order, error)
	// UpdateStatus persists a status change validated by the caller.
	UpdateStatus(ctx context.Context, id string, status domain.Status) (*domain.Order, error)
	// Stats aggregates order count, revenue, and the most recent orders.
	Stats(ctx context.Context, recentLimit int) (*Stats, error)
}
