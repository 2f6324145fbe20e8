// internal/interfaces/http/routes/routes.go
package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/devanagari-foods/storefront/internal/domain/admin"
	"github.com/devanagari-foods/storefront/internal/domain/cart"
	"github.com/devanagari-foods/storefront/internal/domain/checkout"
	"github.com/devanagari-foods/storefront/internal/domain/order"
	"github.com/devanagari-foods/storefront/internal/domain/product"
	"github.com/devanagari-foods/storefront/internal/domain/user"
	"github.com/devanagari-foods/storefront/internal/identity"
	"github.com/devanagari-foods/storefront/internal/interfaces/http/handlers"
	"github.com/devanagari-foods/storefront/internal/interfaces/http/middleware"
	"github.com/devanagari-foods/storefront/internal/pkg/auth"
	"github.com/devanagari-foods/storefront/internal/pkg/pdf"
	"github.com/devanagari-foods/storefront/internal/pkg/storage"
)

// Dependencies carries the wired services the routes dispatch to.
type Dependencies struct {
	Verifier  *auth.Verifier
	Provider  *identity.Provider
	Sessions  *identity.Manager
	Users     *user.Service
	Addresses *user.AddressService
	Products  *product.Service
	Carts     *cart.Service
	Checkout  *checkout.Service
	Orders    *order.Service
	Admins    *admin.Service
	PDF       *pdf.Service
	Storage   *storage.Local
}

// SetupRoutes wires every API route group
func SetupRoutes(rg *gin.RouterGroup, deps *Dependencies) {
	authHandler := handlers.NewAuthHandler(deps.Provider, deps.Sessions)
	productHandler := handlers.NewProductHandler(deps.Products)
	cartHandler := handlers.NewCartHandler(deps.Carts)
	checkoutHandler := handlers.NewCheckoutHandler(deps.Checkout)
	orderHandler := handlers.NewOrderHandler(deps.Orders, deps.PDF)
	addressHandler := handlers.NewAddressHandler(deps.Addresses)
	profileHandler := handlers.NewProfileHandler(deps.Users, deps.Sessions, deps.Storage)
	adminHandler := handlers.NewAdminHandler(deps.Admins)

	requireAuth := middleware.AuthMiddleware(deps.Verifier, deps.Sessions)

	authGroup := rg.Group("/auth")
	{
		authGroup.POST("/register", authHandler.Register)
		authGroup.POST("/login", authHandler.Login)
		authGroup.GET("/oauth/:provider", authHandler.OAuthURL)

		protected := authGroup.Group("")
		protected.Use(requireAuth)
		{
			protected.POST("/logout", authHandler.Logout)
		}
	}

	products := rg.Group("/products")
	{
		products.GET("", productHandler.List)
		products.GET("/:id", productHandler.Get)
	}

	cartGroup := rg.Group("/cart")
	cartGroup.Use(requireAuth)
	{
		cartGroup.GET("", cartHandler.Get)
		cartGroup.POST("/items", cartHandler.AddItem)
		cartGroup.PUT("/items/:id", cartHandler.UpdateItem)
		cartGroup.DELETE("/items/:id", cartHandler.RemoveItem)
		cartGroup.DELETE("", cartHandler.Clear)
	}

	checkoutGroup := rg.Group("/checkout")
	checkoutGroup.Use(requireAuth)
	{
		checkoutGroup.POST("", checkoutHandler.Begin)
		checkoutGroup.PUT("/address", checkoutHandler.SelectAddress)
		checkoutGroup.POST("/continue", checkoutHandler.Continue)
		checkoutGroup.POST("/back", checkoutHandler.Back)
		checkoutGroup.POST("/promo", checkoutHandler.ApplyPromo)
		checkoutGroup.DELETE("/promo", checkoutHandler.RemovePromo)
		checkoutGroup.POST("/payment", checkoutHandler.StartPayment)
		checkoutGroup.POST("/payment/success", checkoutHandler.PaymentSuccess)
		checkoutGroup.POST("/payment/failure", checkoutHandler.PaymentFailure)
	}

	orders := rg.Group("/orders")
	orders.Use(requireAuth)
	{
		orders.GET("", orderHandler.List)
		orders.GET("/:id", orderHandler.Get)
		orders.GET("/:id/invoice", orderHandler.Invoice)
	}

	addresses := rg.Group("/addresses")
	addresses.Use(requireAuth)
	{
		addresses.GET("", addressHandler.List)
		addresses.POST("", addressHandler.Create)
		addresses.PUT("/:id", addressHandler.Update)
		addresses.DELETE("/:id", addressHandler.Delete)
	}

	profile := rg.Group("/profile")
	profile.Use(requireAuth)
	{
		profile.GET("", profileHandler.Get)
		profile.POST("/avatar", profileHandler.UploadAvatar)
	}

	adminGroup := rg.Group("/admin")
	adminGroup.Use(requireAuth, middleware.AdminMiddleware(deps.Users))
	{
		adminGroup.GET("/refunds", adminHandler.ListRefunds)
		adminGroup.GET("/refunds/export", adminHandler.ExportRefunds)
	}
}
