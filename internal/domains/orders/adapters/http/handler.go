// Package http exposes the orders context over gin.
package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/earthenstore/storefront-api/internal/domains/orders/adapters/http/mapper"
	"github.com/earthenstore/storefront-api/internal/domains/orders/application"
	"github.com/earthenstore/storefront-api/internal/domains/orders/domain"
	"github.com/earthenstore/storefront-api/internal/domains/orders/ports"
	apierrors "github.com/earthenstore/storefront-api/internal/shared/errors"
)

// Handler serves the checkout endpoint and the admin order views.
type Handler struct {
	service   ports.Service
	responder *apierrors.Responder
}

func NewHandler(service ports.Service) (*Handler, error) {
	if service == nil {
		return nil, errors.New("orders service is required")
	}
	return &Handler{
		service:   service,
		responder: apierrors.NewResponder(mapOrderError),
	}, nil
}

// Checkout handles POST /api/checkout. Placement failures are part of the
// response envelope rather than problem+json: the storefront client branches
// on the error code, not the HTTP status.
func (h *Handler) Checkout(c *gin.Context) {
	var payload mapper.CheckoutRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		h.responder.BadRequest(c, "invalid checkout payload: "+err.Error())
		return
	}
	result := h.service.PlaceOrder(
		c.Request.Context(),
		mapper.ToDomainShipping(payload.Shipping),
		mapper.ToDomainCart(payload.Items),
	)
	c.JSON(statusForResult(result), mapper.FromResult(result))
}

// ListOrders handles GET /api/admin/orders.
func (h *Handler) ListOrders(c *gin.Context) {
	orders, err := h.service.ListOrders(c.Request.Context())
	if err != nil {
		h.responder.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, mapper.FromDomainOrders(orders))
}

// GetOrder handles GET /api/admin/orders/:id.
func (h *Handler) GetOrder(c *gin.Context) {
	id := c.Param("id")
	order, err := h.service.GetOrder(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, ports.ErrNotFound) {
			h.responder.NotFound(c, "order", id)
			return
		}
		h.responder.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, mapper.FromDomainOrder(order))
}

// UpdateStatus handles POST /api/admin/orders/:id/status.
func (h *Handler) UpdateStatus(c *gin.Context) {
	id := c.Param("id")
	var payload mapper.UpdateStatusRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		h.responder.BadRequest(c, "invalid status payload: "+err.Error())
		return
	}
	order, err := h.service.AdvanceOrder(c.Request.Context(), id, domain.Status(payload.Status))
	if err != nil {
		if errors.Is(err, ports.ErrNotFound) {
			h.responder.NotFound(c, "order", id)
			return
		}
		h.responder.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, mapper.FromDomainOrder(order))
}

func statusForResult(result ports.Result) int {
	if result.Success {
		return http.StatusCreated
	}
	if result.Error == nil {
		return http.StatusInternalServerError
	}
	switch result.Error.Code {
	case ports.CodeEmptyCart, ports.CodeInvalidRequest:
		return http.StatusBadRequest
	case ports.CodeProductUnavailable, ports.CodeInsufficientStock:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func mapOrderError(err error) (apierrors.ProblemDetail, bool) {
	switch {
	case errors.Is(err, ports.ErrNotFound):
		return apierrors.ErrNotFound.WithDetail(err.Error()), true
	case errors.Is(err, domain.ErrInvalidTransition):
		return apierrors.ErrConflict.WithDetail(err.Error()), true
	case errors.Is(err, application.ErrInvalidInput):
		return apierrors.ErrValidation.WithDetail(err.Error()), true
	default:
		return apierrors.ProblemDetail{}, false
	}
}
