package ports

import (
	"context"
	"fmt"

	"github.com/earthenstore/storefront-api/internal/domains/orders/domain"
)

// ErrorCode classifies placement failures with stable identifiers a UI can
// switch on.
type ErrorCode string

const (
	CodeEmptyCart          ErrorCode = "EMPTY_CART"
	CodeInvalidRequest     ErrorCode = "INVALID_REQUEST"
	CodeProductUnavailable ErrorCode = "PRODUCT_UNAVAILABLE"
	CodeInsufficientStock  ErrorCode = "INSUFFICIENT_STOCK"
	CodeTransactionFailed  ErrorCode = "TRANSACTION_FAILED"
)

// PlacementError is the classified failure of a placement attempt. SKU and
// Available are populated for INSUFFICIENT_STOCK only.
type PlacementError struct {
	Code      ErrorCode
	Message   string
	SKU       string
	Available int64
}

func (e *PlacementError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Result is the placement contract returned to every caller regardless of
// transport. Exactly one of OrderID and Error is set.
type Result struct {
	Success bool
	OrderID string
	Error   *PlacementError
}

// Service exposes order use cases to adapters.
type Service interface {
	// PlaceOrder validates the untrusted cart against live catalog state,
	// computes the authoritative total, and commits the order atomically.
	// Every failure is classified into the Result; nothing panics or leaks
	// raw store errors past this boundary.
	PlaceOrder(ctx context.Context, shipping domain.ShippingDetails, lines []domain.CartLine) Result
	GetOrder(ctx context.Context, id string) (*domain.Order, error)
	ListOrders(ctx context.Context) ([]*domain.Order, error)
	// AdvanceOrder applies an admin-driven status transition.
	AdvanceOrder(ctx context.Context, id string, next domain.Status) (*domain.Order, error)
	// Stats aggregates order count, revenue, and recent orders for the
	// admin dashboard.
	Stats(ctx context.Context) (*Stats, error)
}
