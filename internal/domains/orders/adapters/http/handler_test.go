package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/earthenstore/storefront-api/internal/domains/orders/domain"
	"github.com/earthenstore/storefront-api/internal/domains/orders/ports"
)

type stubOrderService struct {
	result ports.Result
	lines  []domain.CartLine
	order  *domain.Order
	err    error
}

func (s *stubOrderService) PlaceOrder(_ context.Context, _ domain.ShippingDetails, lines []domain.CartLine) ports.Result {
	s.lines = lines
	return s.result
}

func (s *stubOrderService) GetOrder(context.Context, string) (*domain.Order, error) {
	return s.order, s.err
}

func (s *stubOrderService) ListOrders(context.Context) ([]*domain.Order, error) {
	if s.err != nil {
		return nil, s.err
	}
	if s.order == nil {
		return nil, nil
	}
	return []*domain.Order{s.order}, nil
}

func (s *stubOrderService) AdvanceOrder(context.Context, string, domain.Status) (*domain.Order, error) {
	return s.order, s.err
}

func (s *stubOrderService) Stats(context.Context) (*ports.Stats, error) {
	return &ports.Stats{}, s.err
}

func checkoutRouter(service ports.Service) *gin.Engine {
	gin.SetMode(gin.TestMode)
	handler, err := NewHandler(service)
	if err != nil {
		panic(err)
	}
	router := gin.New()
	router.POST("/api/checkout", handler.Checkout)
	router.GET("/api/admin/orders/:id", handler.GetOrder)
	router.POST("/api/admin/orders/:id/status", handler.UpdateStatus)
	return router
}

func postCheckout(t *testing.T, router *gin.Engine, body string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/checkout", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(rec, req)
	return rec
}

const validCheckoutBody = `{
	"shipping": {
		"customerName": "Ida Tarbell",
		"customerEmail": "ida@example.com",
		"addressLine": "26 Broadway",
		"city": "New York",
		"zipCode": "10004"
	},
	"items": [{"variantId": "v-1", "quantity": 2}]
}`

func TestCheckout_Success(t *testing.T) {
	service := &stubOrderService{result: ports.Result{Success: true, OrderID: "order-1"}}
	router := checkoutRouter(service)

	rec := postCheckout(t, router, validCheckoutBody)

	require.Equal(t, http.StatusCreated, rec.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, true, body["success"])
	require.Equal(t, "order-1", body["orderId"])
	require.NotContains(t, body, "error")

	require.Equal(t, []domain.CartLine{{VariantID: "v-1", Quantity: 2}}, service.lines)
}

func TestCheckout_IgnoresClientSubmittedPrices(t *testing.T) {
	service := &stubOrderService{result: ports.Result{Success: true, OrderID: "order-1"}}
	router := checkoutRouter(service)

	// A tampered client may attach prices to cart items. The cart carries
	// only variant identity and quantity, so the field never reaches the
	// placement path.
	rec := postCheckout(t, router, `{
		"shipping": {
			"customerName": "Ida Tarbell",
			"customerEmail": "ida@example.com",
			"addressLine": "26 Broadway",
			"city": "New York",
			"zipCode": "10004"
		},
		"items": [
			{"variantId": "v-1", "quantity": 2, "price": 1},
			{"variantId": "v-2", "quantity": 1, "price": -5000}
		]
	}`)

	require.Equal(t, http.StatusCreated, rec.Code)
	require.Equal(t, []domain.CartLine{
		{VariantID: "v-1", Quantity: 2},
		{VariantID: "v-2", Quantity: 1},
	}, service.lines)
}

func TestCheckout_InsufficientStockEnvelope(t *testing.T) {
	service := &stubOrderService{result: ports.Result{Error: &ports.PlacementError{
		Code:      ports.CodeInsufficientStock,
		Message:   "Insufficient stock for MUG-BLUE. Only 3 available.",
		SKU:       "MUG-BLUE",
		Available: 3,
	}}}
	router := checkoutRouter(service)

	rec := postCheckout(t, router, validCheckoutBody)

	require.Equal(t, http.StatusConflict, rec.Code)
	var body struct {
		Success bool `json:"success"`
		Error   struct {
			Code      string `json:"code"`
			Message   string `json:"message"`
			SKU       string `json:"sku"`
			Available *int64 `json:"available"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.False(t, body.Success)
	require.Equal(t, "INSUFFICIENT_STOCK", body.Error.Code)
	require.Equal(t, "MUG-BLUE", body.Error.SKU)
	require.NotNil(t, body.Error.Available)
	require.Equal(t, int64(3), *body.Error.Available)
}

func TestCheckout_EmptyCartOmitsAvailability(t *testing.T) {
	service := &stubOrderService{result: ports.Result{Error: &ports.PlacementError{
		Code:    ports.CodeEmptyCart,
		Message: "Cart is empty",
	}}}
	router := checkoutRouter(service)

	rec := postCheckout(t, router, `{"shipping": {}, "items": []}`)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	errBody, ok := body["error"].(map[string]any)
	require.True(t, ok)
	require.Equal(t, "EMPTY_CART", errBody["code"])
	require.NotContains(t, errBody, "sku")
	require.NotContains(t, errBody, "available")
}

func TestCheckout_StatusByCode(t *testing.T) {
	cases := []struct {
		code   ports.ErrorCode
		status int
	}{
		{ports.CodeEmptyCart, http.StatusBadRequest},
		{ports.CodeInvalidRequest, http.StatusBadRequest},
		{ports.CodeProductUnavailable, http.StatusConflict},
		{ports.CodeInsufficientStock, http.StatusConflict},
		{ports.CodeTransactionFailed, http.StatusInternalServerError},
	}
	for _, tc := range cases {
		service := &stubOrderService{result: ports.Result{Error: &ports.PlacementError{Code: tc.code, Message: "x"}}}
		rec := postCheckout(t, checkoutRouter(service), validCheckoutBody)
		require.Equal(t, tc.status, rec.Code, "code %s", tc.code)
	}
}

func TestCheckout_MalformedJSON(t *testing.T) {
	router := checkoutRouter(&stubOrderService{})

	rec := postCheckout(t, router, `{"shipping": `)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Contains(t, rec.Header().Get("Content-Type"), "application/problem+json")
}

func TestGetOrder_NotFound(t *testing.T) {
	service := &stubOrderService{err: ports.ErrNotFound}
	router := checkoutRouter(service)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/admin/orders/missing", nil)
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Contains(t, rec.Header().Get("Content-Type"), "application/problem+json")
}

func TestUpdateStatus_IllegalTransitionConflicts(t *testing.T) {
	service := &stubOrderService{err: domain.ErrInvalidTransition}
	router := checkoutRouter(service)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/admin/orders/o-1/status", bytes.NewBufferString(`{"status":"DELIVERED"}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusConflict, rec.Code)
}
