package memory

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/earthenstore/storefront-api/internal/domains/orders/domain"
	"github.com/earthenstore/storefront-api/internal/domains/orders/ports"
)

// StockTable is the slice of catalog state the order store mutates at commit
// time. DecrementStocks must apply the whole batch conditionally: if any
// variant lacks stock it returns a *ports.StockConflictError and leaves every
// count untouched.
type StockTable interface {
	DecrementStocks(decrements map[string]int64) error
}

var _ ports.Repository = (*Repository)(nil)

// Repository is an in-memory order persistence adapter. Transactions stage
// their writes and apply them under the store lock on commit, so concurrent
// placements observe the same all-or-nothing behavior as the SQL adapter.
type Repository struct {
	mu     sync.RWMutex
	orders map[string]*domain.Order
	stock  StockTable
	now    func() time.Time
}

func NewRepository(stock StockTable) *Repository {
	return &Repository{
		orders: map[string]*domain.Order{},
		stock:  stock,
		now:    time.Now,
	}
}

// WithClock overrides the time source for deterministic testing.
func (r *Repository) WithClock(now func() time.Time) {
	if now != nil {
		r.now = now
	}
}

type stagedTx struct {
	order      *domain.Order
	lines      map[string][]domain.OrderLine
	decrements map[string]int64
}

func (t *stagedTx) CreateOrder(_ context.Context, order *domain.Order) error {
	if order == nil {
		return errors.New("order is nil")
	}
	clone := *order
	t.order = &clone
	return nil
}

func (t *stagedTx) CreateOrderLines(_ context.Context, orderID string, lines []domain.OrderLine) error {
	if t.order == nil || t.order.ID != orderID {
		return errors.New("order lines staged before their order")
	}
	t.lines[orderID] = append(t.lines[orderID], lines...)
	return nil
}

func (t *stagedTx) DecrementStock(_ context.Context, variantID string, quantity int64) error {
	if quantity <= 0 {
		return domain.ErrInvalidQuantity
	}
	t.decrements[variantID] += quantity
	return nil
}

// RunInTransaction stages fn's writes and commits them atomically. The
// conditional batch decrement is the linearization point: it runs under the
// stock table's own lock together with the order insert.
func (r *Repository) RunInTransaction(_ context.Context, fn func(tx ports.OrderTx) error) error {
	tx := &stagedTx{lines: map[string][]domain.OrderLine{}, decrements: map[string]int64{}}
	if err := fn(tx); err != nil {
		return err
	}
	if tx.order == nil {
		return errors.New("transaction committed without an order")
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.stock != nil && len(tx.decrements) > 0 {
		if err := r.stock.DecrementStocks(tx.decrements); err != nil {
			return err
		}
	}
	order := tx.order
	order.Lines = append([]domain.OrderLine{}, tx.lines[order.ID]...)
	now := r.now()
	order.CreatedAt = now
	order.UpdatedAt = now
	r.orders[order.ID] = order
	return nil
}

func (r *Repository) GetByID(_ context.Context, id string) (*domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	order, ok := r.orders[id]
	if !ok {
		return nil, ports.ErrNotFound
	}
	clone := cloneOrder(order)
	return &clone, nil
}

func (r *Repository) List(_ context.Context) ([]*domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	list := make([]*domain.Order, 0, len(r.orders))
	for _, order := range r.orders {
		clone := cloneOrder(order)
		list = append(list, &clone)
	}
	sort.Slice(list, func(i, j int) bool {
		return list[i].CreatedAt.After(list[j].CreatedAt)
	})
	return list, nil
}

func (r *Repository) UpdateStatus(_ context.Context, id string, status domain.Status) (*domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	order, ok := r.orders[id]
	if !ok {
		return nil, ports.ErrNotFound
	}
	order.Status = status
	order.UpdatedAt = r.now()
	clone := cloneOrder(order)
	return &clone, nil
}

func (r *Repository) Stats(_ context.Context, recentLimit int) (*ports.Stats, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	stats := &ports.Stats{Orders: int64(len(r.orders))}
	recent := make([]*domain.Order, 0, len(r.orders))
	for _, order := range r.orders {
		stats.Revenue += order.Total
		clone := cloneOrder(order)
		recent = append(recent, &clone)
	}
	sort.Slice(recent, func(i, j int) bool {
		return recent[i].CreatedAt.After(recent[j].CreatedAt)
	})
	if recentLimit > 0 && len(recent) > recentLimit {
		recent = recent[:recentLimit]
	}
	stats.Recent = recent
	return stats, nil
}

func cloneOrder(order *domain.Order) domain.Order {
	clone := *order
	clone.Lines = append([]domain.OrderLine{}, order.Lines...)
	return clone
}
