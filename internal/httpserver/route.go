package httpserver

import (
	"github.com/labstack/echo/v4"

	middleware "github.com/Skotchmaster/storefront/pkg/middleware/auth"
)

type Deps struct {
	HealthHandler  *HealthHTTP
	AuthHandler    *AuthHTTP
	CatalogHandler *CatalogHTTP
	OrderHandler   *OrderHTTP
	AdminHandler   *AdminHTTP
	JWTSecret      []byte
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", d.HealthHandler.Live)
	e.GET("/health/ready", d.HealthHandler.Ready)

	authMW := middleware.NewAuthenticator(d.JWTSecret)

	api := e.Group("/api")
	api.GET("/health", d.HealthHandler.Status)

	auth := api.Group("/auth")
	auth.POST("/login", d.AuthHandler.Login)
	auth.POST("/logout", d.AuthHandler.Logout)

	products := api.Group("/products")
	products.GET("", d.CatalogHandler.GetProducts)
	products.GET("/search", d.CatalogHandler.SearchProducts)
	products.GET("/categories/all", d.CatalogHandler.GetCategories)
	products.GET("/:id", d.CatalogHandler.GetProduct)

	adminProducts := products.Group("", authMW.RequireAdmin)
	adminProducts.POST("", d.CatalogHandler.CreateProduct)
	adminProducts.PUT("/:id", d.CatalogHandler.UpdateProduct)
	adminProducts.DELETE("/:id", d.CatalogHandler.DeleteProduct)

	orders := api.Group("/orders", authMW.RequireAuth)
	orders.POST("", d.OrderHandler.CreateOrder)
	orders.GET("/user/:userId", d.OrderHandler.GetUserOrders)
	orders.GET("/:id", d.OrderHandler.GetOrder)
	orders.GET("/:id/status", d.OrderHandler.GetOrderStatus)

	adminOrders := api.Group("/orders", authMW.RequireAdmin)
	adminOrders.GET("", d.OrderHandler.GetAllOrders)
	adminOrders.PUT("/:id/status", d.OrderHandler.UpdateOrderStatus)

	admin := api.Group("/admin", authMW.RequireAdmin)
	admin.GET("/dashboard", d.AdminHandler.Dashboard)
}
