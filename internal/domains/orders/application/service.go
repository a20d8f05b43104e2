package application

import (
	"context"
	"errors"
	"fmt"

	"github.com/earthenstore/storefront-api/internal/domains/orders/domain"
	"github.com/earthenstore/storefront-api/internal/domains/orders/ports"
	"github.com/earthenstore/storefront-api/internal/shared/identity"
)

// Service orchestrates order use cases. The placement path is the one part
// of the system with real concurrency obligations: the stock check and the
// stock decrement must be consistent as a pair across concurrent callers,
// which the repository guarantees through conditional decrements.
type Service struct {
	catalog ports.CatalogReader
	orders  ports.Repository
}

func NewService(catalog ports.CatalogReader, orders ports.Repository) *Service {
	return &Service{catalog: catalog, orders: orders}
}

// PlaceOrder accepts an untrusted checkout request and either commits a fully
// consistent order or fails cleanly with no side effects.
func (s *Service) PlaceOrder(ctx context.Context, shipping domain.ShippingDetails, lines []domain.CartLine) ports.Result {
	if len(lines) == 0 {
		return failure(&ports.PlacementError{Code: ports.CodeEmptyCart, Message: "Cart is empty"})
	}
	if err := shipping.Validate(); err != nil {
		return failure(&ports.PlacementError{Code: ports.CodeInvalidRequest, Message: "Shipping details are incomplete"})
	}
	for _, line := range lines {
		if err := line.Validate(); err != nil {
			return failure(&ports.PlacementError{Code: ports.CodeInvalidRequest, Message: "Each cart line needs a variant and a positive quantity"})
		}
	}

	variantIDs := distinctVariantIDs(lines)
	variants, err := s.catalog.FindVariantsByIDs(ctx, variantIDs, true)
	if err != nil {
		return failure(&ports.PlacementError{Code: ports.CodeTransactionFailed, Message: "Failed to process order. Please try again."})
	}
	// Fewer matches than distinct identifiers means something in the cart is
	// inactive or gone; the whole cart fails rather than placing a partial order.
	if len(variants) < len(variantIDs) {
		return failure(&ports.PlacementError{Code: ports.CodeProductUnavailable, Message: "Some products are no longer available"})
	}
	byID := make(map[string]ports.Variant, len(variants))
	for _, v := range variants {
		byID[v.ID] = v
	}

	orderLines := make([]domain.OrderLine, 0, len(lines))
	for _, line := range lines {
		variant, ok := byID[line.VariantID]
		if !ok {
			return failure(&ports.PlacementError{Code: ports.CodeProductUnavailable, Message: "Some products are no longer available"})
		}
		if variant.Stock < line.Quantity {
			return failure(insufficientStock(variant.SKU, variant.Stock))
		}
		orderLines = append(orderLines, domain.OrderLine{
			VariantID: line.VariantID,
			Quantity:  line.Quantity,
			Price:     variant.Price,
		})
	}

	var userID *string
	if id, ok := identity.UserID(ctx); ok {
		userID = &id
	}
	order, err := domain.NewOrder(userID, shipping, orderLines)
	if err != nil {
		return failure(&ports.PlacementError{Code: ports.CodeInvalidRequest, Message: err.Error()})
	}

	err = s.orders.RunInTransaction(ctx, func(tx ports.OrderTx) error {
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
	if err != nil {
		var conflict *ports.StockConflictError
		if errors.As(err, &conflict) {
			// A concurrent order won the race between our snapshot check and
			// the conditional decrement. Same user-facing condition as the
			// snapshot check, with availability re-read best-effort.
			return failure(s.stockConflictError(ctx, conflict.VariantID, byID))
		}
		return failure(&ports.PlacementError{Code: ports.CodeTransactionFailed, Message: "Failed to process order. Please try again."})
	}

	return ports.Result{Success: true, OrderID: order.ID}
}

func (s *Service) GetOrder(ctx context.Context, id string) (*domain.Order, error) {
	return s.orders.GetByID(ctx, id)
}

func (s *Service) ListOrders(ctx context.Context) ([]*domain.Order, error) {
	return s.orders.List(ctx)
}

// AdvanceOrder applies an admin-driven status transition. Cancellation does
// not restore stock.
func (s *Service) AdvanceOrder(ctx context.Context, id string, next domain.Status) (*domain.Order, error) {
	order, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := order.Transition(next); err != nil {
		return nil, mapError(err)
	}
	return s.orders.UpdateStatus(ctx, id, order.Status)
}

// Recent orders shown on the admin dashboard.
const dashboardRecentOrders = 5

// Stats aggregates the orders counters for the admin dashboard.
func (s *Service) Stats(ctx context.Context) (*ports.Stats, error) {
	return s.orders.Stats(ctx, dashboardRecentOrders)
}

func (s *Service) stockConflictError(ctx context.Context, variantID string, snapshot map[string]ports.Variant) *ports.PlacementError {
	sku := variantID
	available := int64(0)
	if v, ok := snapshot[variantID]; ok {
		sku = v.SKU
		available = v.Stock
	}
	if current, err := s.catalog.FindVariantsByIDs(ctx, []string{variantID}, false); err == nil && len(current) == 1 {
		available = current[0].Stock
	}
	return insufficientStock(sku, available)
}

func insufficientStock(sku string, available int64) *ports.PlacementError {
	return &ports.PlacementError{
		Code:      ports.CodeInsufficientStock,
		Message:   fmt.Sprintf("Insufficient stock for %s. Only %d available.", sku, available),
		SKU:       sku,
		Available: available,
	}
}

func failure(placementErr *ports.PlacementError) ports.Result {
	return ports.Result{Error: placementErr}
}

func distinctVariantIDs(lines []domain.CartLine) []string {
	seen := make(map[string]struct{}, len(lines))
	ids := make([]string, 0, len(lines))
	for _, line := range lines {
		if _, ok := seen[line.VariantID]; ok {
			continue
		}
		seen[line.VariantID] = struct{}{}
		ids = append(ids, line.VariantID)
	}
	return ids
}

var _ ports.Service = (*Service)(nil)
