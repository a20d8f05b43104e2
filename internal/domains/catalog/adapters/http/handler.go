// Package http exposes the catalog context over gin.
package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/earthenstore/storefront-api/internal/domains/catalog/adapters/http/mapper"
	"github.com/earthenstore/storefront-api/internal/domains/catalog/application"
	"github.com/earthenstore/storefront-api/internal/domains/catalog/domain"
	"github.com/earthenstore/storefront-api/internal/domains/catalog/ports"
	apierrors "github.com/earthenstore/storefront-api/internal/shared/errors"
)

const defaultFeaturedLimit = 4

// Handler serves the public shop endpoints and the admin catalog CRUD.
// Product creation runs through the workflow orchestrator so retried admin
// requests land on a single durable execution.
type Handler struct {
	service   ports.Service
	workflows ports.WorkflowOrchestrator
	responder *apierrors.Responder
}

func NewHandler(service ports.Service, workflows ports.WorkflowOrchestrator) (*Handler, error) {
	if service == nil {
		return nil, errors.New("catalog service is required")
	}
	if workflows == nil {
		return nil, errors.New("catalog workflow orchestrator is required")
	}
	return &Handler{
		service:   service,
		workflows: workflows,
		responder: apierrors.NewResponder(mapCatalogError),
	}, nil
}

// ListProducts handles GET /api/products for the storefront listing. An
// optional q parameter filters by name, description, or category name.
func (h *Handler) ListProducts(c *gin.Context) {
	var (
		products []*domain.Product
		err      error
	)
	if query := c.Query("q"); query != "" {
		products, err = h.service.SearchProducts(c.Request.Context(), query)
	} else {
		products, err = h.service.ListProducts(c.Request.Context())
	}
	if err != nil {
		h.responder.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, mapper.FromDomainProducts(products))
}

// FeaturedProducts handles GET /api/products/featured.
func (h *Handler) FeaturedProducts(c *gin.Context) {
	limit := defaultFeaturedLimit
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			h.responder.BadRequest(c, "limit must be a positive integer")
			return
		}
		limit = parsed
	}
	views, err := h.service.FeaturedProducts(c.Request.Context(), limit)
	if err != nil {
		h.responder.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, mapper.FromProductViews(views))
}

// GetBySlug handles GET /api/products/:slug.
func (h *Handler) GetBySlug(c *gin.Context) {
	slug := c.Param("slug")
	view, err := h.service.GetBySlug(c.Request.Context(), slug)
	if err != nil {
		if errors.Is(err, ports.ErrNotFound) {
			h.responder.NotFound(c, "product", slug)
			return
		}
		h.responder.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, mapper.FromProductView(view))
}

// ListCategories handles GET /api/categories.
func (h *Handler) ListCategories(c *gin.Context) {
	categories, err := h.service.ListCategories(c.Request.Context())
	if err != nil {
		h.responder.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, mapper.FromDomainCategories(categories))
}

// ProductsByCategory handles GET /api/categories/:slug, the storefront
// category page.
func (h *Handler) ProductsByCategory(c *gin.Context) {
	slug := c.Param("slug")
	view, err := h.service.ProductsByCategory(c.Request.Context(), slug)
	if err != nil {
		if errors.Is(err, ports.ErrNotFound) {
			h.responder.NotFound(c, "category", slug)
			return
		}
		h.responder.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, mapper.FromCategoryView(view))
}

// CreateCategory handles POST /api/admin/categories.
func (h *Handler) CreateCategory(c *gin.Context) {
	var payload mapper.CreateCategoryRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		h.responder.BadRequest(c, "invalid category payload: "+err.Error())
		return
	}
	category, err := h.service.CreateCategory(c.Request.Context(), mapper.ToCreateCategoryInput(payload))
	if err != nil {
		h.responder.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, mapper.FromDomainCategory(category))
}

// UpdateCategory handles PATCH /api/admin/categories/:id.
func (h *Handler) UpdateCategory(c *gin.Context) {
	id := c.Param("id")
	var payload mapper.UpdateCategoryRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		h.responder.BadRequest(c, "invalid category payload: "+err.Error())
		return
	}
	category, err := h.service.UpdateCategory(c.Request.Context(), mapper.ToUpdateCategoryInput(id, payload))
	if err != nil {
		if errors.Is(err, ports.ErrNotFound) {
			h.responder.NotFound(c, "category", id)
			return
		}
		h.responder.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, mapper.FromDomainCategory(category))
}

// DeleteCategory handles DELETE /api/admin/categories/:id.
func (h *Handler) DeleteCategory(c *gin.Context) {
	id := c.Param("id")
	if err := h.service.DeleteCategory(c.Request.Context(), id); err != nil {
		if errors.Is(err, ports.ErrNotFound) {
			h.responder.NotFound(c, "category", id)
			return
		}
		h.responder.RespondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// CreateProduct handles POST /api/admin/products.
func (h *Handler) CreateProduct(c *gin.Context) {
	var payload mapper.CreateProductRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		h.responder.BadRequest(c, "invalid product payload: "+err.Error())
		return
	}
	input := mapper.ToCreateInput(payload, c.GetHeader("Idempotency-Key"))
	product, err := h.workflows.PublishProduct(c.Request.Context(), input)
	if err != nil {
		h.responder.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, mapper.FromDomainProduct(product))
}

// UpdateProduct handles PATCH /api/admin/products/:id.
func (h *Handler) UpdateProduct(c *gin.Context) {
	id := c.Param("id")
	var payload mapper.UpdateProductRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		h.responder.BadRequest(c, "invalid product payload: "+err.Error())
		return
	}
	product, err := h.service.UpdateProduct(c.Request.Context(), mapper.ToUpdateInput(id, payload))
	if err != nil {
		if errors.Is(err, ports.ErrNotFound) {
			h.responder.NotFound(c, "product", id)
			return
		}
		h.responder.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, mapper.FromDomainProduct(product))
}

// DeleteProduct handles DELETE /api/admin/products/:id.
func (h *Handler) DeleteProduct(c *gin.Context) {
	id := c.Param("id")
	if err := h.service.DeleteProduct(c.Request.Context(), id); err != nil {
		if errors.Is(err, ports.ErrNotFound) {
			h.responder.NotFound(c, "product", id)
			return
		}
		h.responder.RespondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// AddVariant handles POST /api/admin/products/:id/variants.
func (h *Handler) AddVariant(c *gin.Context) {
	productID := c.Param("id")
	var payload mapper.AddVariantRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		h.responder.BadRequest(c, "invalid variant payload: "+err.Error())
		return
	}
	variant, err := h.service.AddVariant(c.Request.Context(), mapper.ToAddVariantInput(productID, payload))
	if err != nil {
		if errors.Is(err, ports.ErrNotFound) {
			h.responder.NotFound(c, "product", productID)
			return
		}
		h.responder.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, mapper.FromDomainVariant(variant))
}

// ListVariants handles GET /api/admin/products/:id/variants.
func (h *Handler) ListVariants(c *gin.Context) {
	productID := c.Param("id")
	variants, err := h.service.ListVariants(c.Request.Context(), productID)
	if err != nil {
		h.responder.RespondError(c, err)
		return
	}
	result := make([]mapper.Variant, 0, len(variants))
	for _, variant := range variants {
		result = append(result, mapper.FromDomainVariant(variant))
	}
	c.JSON(http.StatusOK, result)
}

// SetVariantStock handles PATCH /api/admin/variants/:id/stock.
func (h *Handler) SetVariantStock(c *gin.Context) {
	variantID := c.Param("id")
	var payload mapper.SetStockRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		h.responder.BadRequest(c, "invalid stock payload: "+err.Error())
		return
	}
	variant, err := h.service.SetVariantStock(c.Request.Context(), variantID, payload.Stock)
	if err != nil {
		if errors.Is(err, ports.ErrNotFound) {
			h.responder.NotFound(c, "variant", variantID)
			return
		}
		h.responder.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, mapper.FromDomainVariant(variant))
}

func mapCatalogError(err error) (apierrors.ProblemDetail, bool) {
	switch {
	case errors.Is(err, ports.ErrNotFound):
		return apierrors.ErrNotFound.WithDetail(err.Error()), true
	case errors.Is(err, ports.ErrSlugTaken), errors.Is(err, ports.ErrSKUConflict):
		return apierrors.ErrConflict.WithDetail(err.Error()), true
	case errors.Is(err, ports.ErrIdempotencyConflict):
		return apierrors.ErrConflict.WithDetail(err.Error()), true
	case errors.Is(err, application.ErrInvalidInput):
		return apierrors.ErrValidation.WithDetail(err.Error()), true
	default:
		return apierrors.ProblemDetail{}, false
	}
}
