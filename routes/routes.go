package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/yashrajoria/E-Commerce-backend/storefront/controllers"
	"github.com/yashrajoria/E-Commerce-backend/storefront/middleware"
)

type Controllers struct {
	Storefront *controllers.StorefrontController
	Auth       *controllers.AuthController
	Orders     *controllers.OrderController
}

// RegisterRoutes wires every storefront endpoint. Checkout and auth calls are
// rate limited; the order listing needs an admin session.
func RegisterRoutes(r *gin.Engine, ctrl Controllers, session middleware.AdminSession, limiter *middleware.RateLimiter) {
	r.GET("/health", ctrl.Storefront.Health)

	products := r.Group("/products")
	{
		products.GET("", ctrl.Storefront.GetProducts)
		products.POST("/reload", ctrl.Storefront.ReloadProducts)
	}

	cart := r.Group("/cart")
	{
		cart.GET("", ctrl.Storefront.GetCart)
		cart.DELETE("", ctrl.Storefront.ClearCart)
		cart.POST("/items", ctrl.Storefront.AddItem)
		cart.POST("/items/:id/decrement", ctrl.Storefront.DecrementItem)
		cart.DELETE("/items/:id", ctrl.Storefront.RemoveItem)
	}

	r.POST("/checkout", middleware.RateLimitMiddleware(limiter), ctrl.Storefront.Checkout)

	auth := r.Group("/auth")
	auth.Use(middleware.RateLimitMiddleware(limiter))
	{
		auth.POST("/login", ctrl.Auth.Login)
		auth.POST("/register", ctrl.Auth.Register)
		auth.POST("/logout", ctrl.Auth.Logout)
		auth.GET("/me", ctrl.Auth.Me)
	}

	admin := r.Group("/admin")
	admin.Use(middleware.RequireAdmin(session))
	{
		admin.GET("/orders", ctrl.Orders.ListOrders)
	}
}
