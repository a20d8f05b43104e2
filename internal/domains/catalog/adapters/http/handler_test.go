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

	"github.com/earthenstore/storefront-api/internal/domains/catalog/adapters/memory"
	"github.com/earthenstore/storefront-api/internal/domains/catalog/adapters/workflows"
	"github.com/earthenstore/storefront-api/internal/domains/catalog/application"
	"github.com/earthenstore/storefront-api/internal/domains/catalog/ports"
)

func catalogRouter(t *testing.T) (*gin.Engine, ports.Service) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	service := application.NewService(memory.NewRepository(), memory.NewIdempotencyStore(), nil)
	handler, err := NewHandler(service, workflows.NewInlineProductWorkflows(service))
	require.NoError(t, err)

	router := gin.New()
	router.GET("/api/products", handler.ListProducts)
	router.GET("/api/categories", handler.ListCategories)
	router.GET("/api/categories/:slug", handler.ProductsByCategory)
	router.POST("/api/admin/categories", handler.CreateCategory)
	router.DELETE("/api/admin/categories/:id", handler.DeleteCategory)
	return router, service
}

func doJSON(t *testing.T, router *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
	}
	router.ServeHTTP(rec, req)
	return rec
}

func TestListProducts_QueryFiltersListing(t *testing.T) {
	router, service := catalogRouter(t)
	_, err := service.CreateProduct(context.Background(), ports.CreateProductInput{Name: "Espresso Cup"})
	require.NoError(t, err)
	_, err = service.CreateProduct(context.Background(), ports.CreateProductInput{Name: "Raku Vase"})
	require.NoError(t, err)

	rec := doJSON(t, router, http.MethodGet, "/api/products?q=espresso", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var filtered []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &filtered))
	require.Len(t, filtered, 1)
	require.Equal(t, "Espresso Cup", filtered[0]["name"])

	rec = doJSON(t, router, http.MethodGet, "/api/products", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var all []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &all))
	require.Len(t, all, 2)
}

func TestCategoryEndpoints_CreateListAndPage(t *testing.T) {
	router, service := catalogRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/api/admin/categories", `{"name": "Vases", "description": "Tall and small"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	var created map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	require.Equal(t, "vases", created["slug"])

	_, err := service.CreateProduct(context.Background(), ports.CreateProductInput{
		Name:       "Raku Vase",
		CategoryID: created["id"].(string),
	})
	require.NoError(t, err)

	rec = doJSON(t, router, http.MethodGet, "/api/categories", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var categories []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &categories))
	require.Len(t, categories, 1)

	rec = doJSON(t, router, http.MethodGet, "/api/categories/vases", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var page struct {
		Category struct {
			Slug string `json:"slug"`
		} `json:"category"`
		Products []struct {
			Product struct {
				Name string `json:"name"`
			} `json:"product"`
		} `json:"products"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &page))
	require.Equal(t, "vases", page.Category.Slug)
	require.Len(t, page.Products, 1)
	require.Equal(t, "Raku Vase", page.Products[0].Product.Name)
}

func TestCategoryEndpoints_NotFound(t *testing.T) {
	router, _ := catalogRouter(t)

	rec := doJSON(t, router, http.MethodGet, "/api/categories/missing", "")
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Contains(t, rec.Header().Get("Content-Type"), "application/problem+json")

	rec = doJSON(t, router, http.MethodDelete, "/api/admin/categories/missing", "")
	require.Equal(t, http.StatusNotFound, rec.Code)
}
