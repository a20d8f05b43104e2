package api

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	cataloghttp "github.com/earthenstore/storefront-api/internal/domains/catalog/adapters/http"
	ordershttp "github.com/earthenstore/storefront-api/internal/domains/orders/adapters/http"
	usershttp "github.com/earthenstore/storefront-api/internal/domains/users/adapters/http"
	usersports "github.com/earthenstore/storefront-api/internal/domains/users/ports"
	"github.com/earthenstore/storefront-api/internal/shared/identity"
)

// Handlers bundles the per-context HTTP adapters mounted on the router.
// Dashboard is the cross-context admin aggregate.
type Handlers struct {
	Catalog   *cataloghttp.Handler
	Orders    *ordershttp.Handler
	Users     *usershttp.Handler
	Dashboard gin.HandlerFunc
}

// NewRouter wires the public storefront routes and the admin surface.
func NewRouter(serviceName string, handlers Handlers, userService usersports.Service) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(otelgin.Middleware(serviceName))
	router.Use(usershttp.Identity(userService))

	api := router.Group("/api")
	{
		api.GET("/products", handlers.Catalog.ListProducts)
		api.GET("/products/featured", handlers.Catalog.FeaturedProducts)
		api.GET("/products/:slug", handlers.Catalog.GetBySlug)
		api.GET("/categories", handlers.Catalog.ListCategories)
		api.GET("/categories/:slug", handlers.Catalog.ProductsByCategory)

		api.POST("/checkout", handlers.Orders.Checkout)

		auth := api.Group("/auth")
		{
			auth.POST("/register", handlers.Users.Register)
			auth.POST("/login", handlers.Users.Login)
			auth.POST("/logout", handlers.Users.Logout)
			auth.GET("/me", handlers.Users.Me)
		}

		admin := api.Group("/admin")
		admin.Use(usershttp.RequireRole(identity.RoleAdmin))
		{
			admin.POST("/products", handlers.Catalog.CreateProduct)
			admin.PATCH("/products/:id", handlers.Catalog.UpdateProduct)
			admin.DELETE("/products/:id", handlers.Catalog.DeleteProduct)
			admin.POST("/products/:id/variants", handlers.Catalog.AddVariant)
			admin.GET("/products/:id/variants", handlers.Catalog.ListVariants)
			admin.PATCH("/variants/:id/stock", handlers.Catalog.SetVariantStock)

			admin.POST("/categories", handlers.Catalog.CreateCategory)
			admin.PATCH("/categories/:id", handlers.Catalog.UpdateCategory)
			admin.DELETE("/categories/:id", handlers.Catalog.DeleteCategory)

			if handlers.Dashboard != nil {
				admin.GET("/dashboard", handlers.Dashboard)
			}

			admin.GET("/orders", handlers.Orders.ListOrders)
			admin.GET("/orders/:id", handlers.Orders.GetOrder)
			admin.POST("/orders/:id/status", handlers.Orders.UpdateStatus)
		}
	}

	return router
}
