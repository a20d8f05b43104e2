// Package mapper converts between transport payloads and orders domain types.
package mapper

import (
	"time"

	"github.com/earthenstore/storefront-api/internal/domains/orders/domain"
	"github.com/earthenstore/storefront-api/internal/domains/orders/ports"
)

// CheckoutRequest is the untrusted payload sent by the storefront client.
type CheckoutRequest struct {
	Shipping ShippingDetails `json:"shipping"`
	Items    []CartItem      `json:"items"`
}

type ShippingDetails struct {
	CustomerName  string `json:"customerName"`
	CustomerEmail string `json:"customerEmail"`
	AddressLine   string `json:"addressLine"`
	City          string `json:"city"`
	ZipCode       string `json:"zipCode"`
}

type CartItem struct {
	VariantID string `json:"variantId"`
	Quantity  int64  `json:"quantity"`
}

// CheckoutResponse mirrors the placement result envelope.
type CheckoutResponse struct {
	Success bool           `json:"success"`
	OrderID string         `json:"orderId,omitempty"`
	Error   *CheckoutError `json:"error,omitempty"`
}

type CheckoutError struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	SKU       string `json:"sku,omitempty"`
	Available *int64 `json:"available,omitempty"`
}

type Order struct {
	ID            string      `json:"id"`
	UserID        *string     `json:"userId,omitempty"`
	CustomerName  string      `json:"customerName"`
	CustomerEmail string      `json:"customerEmail"`
	AddressLine   string      `json:"addressLine"`
	City          string      `json:"city"`
	ZipCode       string      `json:"zipCode"`
	Lines         []OrderLine `json:"lines,omitempty"`
	Total         int64       `json:"total"`
	Status        string      `json:"status"`
	CreatedAt     time.Time   `json:"createdAt"`
	UpdatedAt     time.Time   `json:"updatedAt"`
}

type OrderLine struct {
	VariantID string `json:"variantId"`
	Quantity  int64  `json:"quantity"`
	Price     int64  `json:"price"`
}

type UpdateStatusRequest struct {
	Status string `json:"status"`
}

// ToDomainShipping maps the transport shipping block to the domain type.
func ToDomainShipping(shipping ShippingDetails) domain.ShippingDetails {
	return domain.ShippingDetails{
		CustomerName:  shipping.CustomerName,
		CustomerEmail: shipping.CustomerEmail,
		AddressLine:   shipping.AddressLine,
		City:          shipping.City,
		ZipCode:       shipping.ZipCode,
	}
}

// ToDomainCart maps transport cart items to domain cart lines.
func ToDomainCart(items []CartItem) []domain.CartLine {
	lines := make([]domain.CartLine, 0, len(items))
	for _, item := range items {
		lines = append(lines, domain.CartLine{
			VariantID: item.VariantID,
			Quantity:  item.Quantity,
		})
	}
	return lines
}

// FromResult maps a placement result to its response envelope.
func FromResult(result ports.Result) CheckoutResponse {
	response := CheckoutResponse{
		Success: result.Success,
		OrderID: result.OrderID,
	}
	if result.Error != nil {
		response.Error = &CheckoutError{
			Code:    string(result.Error.Code),
			Message: result.Error.Message,
			SKU:     result.Error.SKU,
		}
		if result.Error.Code == ports.CodeInsufficientStock {
			available := result.Error.Available
			response.Error.Available = &available
		}
	}
	return response
}

// FromDomainOrder maps a domain order to its transport shape.
func FromDomainOrder(order *domain.Order) Order {
	if order == nil {
		return Order{}
	}
	lines := make([]OrderLine, 0, len(order.Lines))
	for _, line := range order.Lines {
		lines = append(lines, OrderLine{
			VariantID: line.VariantID,
			Quantity:  line.Quantity,
			Price:     line.Price,
		})
	}
	return Order{
		ID:            order.ID,
		UserID:        order.UserID,
		CustomerName:  order.Shipping.CustomerName,
		CustomerEmail: order.Shipping.CustomerEmail,
		AddressLine:   order.Shipping.AddressLine,
		City:          order.Shipping.City,
		ZipCode:       order.Shipping.ZipCode,
		Lines:         lines,
		Total:         order.Total,
		Status:        string(order.Status),
		CreatedAt:     order.CreatedAt,
		UpdatedAt:     order.UpdatedAt,
	}
}

// FromDomainOrders maps a list of domain orders.
func FromDomainOrders(orders []*domain.Order) []Order {
	result := make([]Order, 0, len(orders))
	for _, order := range orders {
		result = append(result, FromDomainOrder(order))
	}
	return result
}
