package api

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	catalogmapper "github.com/earthenstore/storefront-api/internal/domains/catalog/adapters/http/mapper"
	catalogports "github.com/earthenstore/storefront-api/internal/domains/catalog/ports"
	ordersmapper "github.com/earthenstore/storefront-api/internal/domains/orders/adapters/http/mapper"
	ordersports "github.com/earthenstore/storefront-api/internal/domains/orders/ports"
	apierrors "github.com/earthenstore/storefront-api/internal/shared/errors"
)

// CatalogStatsProvider is the catalog slice the dashboard reads.
type CatalogStatsProvider interface {
	Stats(ctx context.Context) (*catalogports.Stats, error)
}

// OrderStatsProvider is the orders slice the dashboard reads.
type OrderStatsProvider interface {
	Stats(ctx context.Context) (*ordersports.Stats, error)
}

type dashboardResponse struct {
	Products     int64                   `json:"products"`
	Categories   int64                   `json:"categories"`
	Orders       int64                   `json:"orders"`
	Revenue      int64                   `json:"revenue"`
	LowStock     []catalogmapper.Variant `json:"lowStock"`
	RecentOrders []ordersmapper.Order    `json:"recentOrders"`
}

// Dashboard serves GET /api/admin/dashboard: catalog and revenue counters
// plus the variants running low and the latest orders.
func Dashboard(catalog CatalogStatsProvider, orders OrderStatsProvider) gin.HandlerFunc {
	responder := apierrors.NewResponder()
	return func(c *gin.Context) {
		catalogStats, err := catalog.Stats(c.Request.Context())
		if err != nil {
			responder.RespondError(c, err)
			return
		}
		orderStats, err := orders.Stats(c.Request.Context())
		if err != nil {
			responder.RespondError(c, err)
			return
		}

		lowStock := make([]catalogmapper.Variant, 0, len(catalogStats.LowStock))
		for _, variant := range catalogStats.LowStock {
			lowStock = append(lowStock, catalogmapper.FromDomainVariant(variant))
		}
		c.JSON(http.StatusOK, dashboardResponse{
			Products:     catalogStats.Products,
			Categories:   catalogStats.Categories,
			Orders:       orderStats.Orders,
			Revenue:      orderStats.Revenue,
			LowStock:     lowStock,
			RecentOrders: ordersmapper.FromDomainOrders(orderStats.Recent),
		})
	}
}
