// internal/interfaces/http/routes/routes.go
package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/your-org/storefront-backend/internal/config"
	"github.com/your-org/storefront-backend/internal/domain/checkout"
	"github.com/your-org/storefront-backend/internal/interfaces/http/handlers"
	"github.com/your-org/storefront-backend/internal/interfaces/http/middleware"
)

// SetupRoutes wires the full API surface onto the versioned router group.
// The checkout service and finalizer are built in main so their side-effect
// dependencies (payment gateway, fulfillment client, mailer) are injected
// once; everything else constructs its own services.
func SetupRoutes(rg *gin.RouterGroup, db *gorm.DB, redisClient *redis.Client, cfg *config.Config, logger *logrus.Logger, checkoutService *checkout.Service, finalizer *checkout.Finalizer) {
	setupAuthRoutes(rg, db, cfg, logger)
	setupUserRoutes(rg, db, cfg, logger)
	setupProductRoutes(rg, db, redisClient, cfg)
	setupCartRoutes(rg, db, redisClient, cfg)
	setupCheckoutRoutes(rg, db, redisClient, cfg, logger, checkoutService, finalizer)
	setupOrderRoutes(rg, db, redisClient, cfg, logger)
	setupGalleryRoutes(rg, db, cfg, logger)
	setupAdminRoutes(rg, db, redisClient, cfg, logger)
}

func setupAuthRoutes(rg *gin.RouterGroup, db *gorm.DB, cfg *config.Config, logger *logrus.Logger) {
	authHandler := handlers.NewAuthHandler(db, cfg, logger)

	auth := rg.Group("/auth")
	{
		auth.POST("/register", authHandler.Register)
		auth.POST("/login", authHandler.Login)
		auth.POST("/refresh", authHandler.RefreshToken)

		protected := auth.Group("")
		protected.Use(middleware.AuthMiddleware(cfg))
		{
			protected.POST("/logout", authHandler.Logout)
			protected.GET("/validate", authHandler.ValidateToken)
			protected.GET("/profile", authHandler.GetProfile)
			protected.PUT("/profile", authHandler.UpdateProfile)
			protected.POST("/change-password", authHandler.ChangePassword)
		}
	}
}

func setupUserRoutes(rg *gin.RouterGroup, db *gorm.DB, cfg *config.Config, logger *logrus.Logger) {
	addressHandler := handlers.NewAddressHandler(db, cfg)
	gamificationHandler := handlers.NewGamificationHandler(db, cfg, logger)

	users := rg.Group("/users")
	users.Use(middleware.AuthMiddleware(cfg))
	{
		users.GET("/addresses", addressHandler.GetAddresses)
		users.POST("/addresses", addressHandler.CreateAddress)
		users.GET("/addresses/:id", addressHandler.GetAddress)
		users.DELETE("/addresses/:id", addressHandler.DeleteAddress)
		users.PUT("/addresses/:id/default", addressHandler.SetDefaultAddress)

		users.GET("/gamification", gamificationHandler.GetProfile)
	}
}

func setupProductRoutes(rg *gin.RouterGroup, db *gorm.DB, redisClient *redis.Client, cfg *config.Config) {
	productHandler := handlers.NewProductHandler(db, cfg)
	reviewHandler := handlers.NewReviewHandler(db, redisClient, cfg)

	products := rg.Group("/products")
	{
		products.GET("", productHandler.GetProducts)
		products.GET("/search", productHandler.SearchProducts)
		products.GET("/slug/:slug", productHandler.GetProductBySlug)
		products.GET("/:id", productHandler.GetProduct)
		products.GET("/:id/reviews", reviewHandler.GetProductReviews)

		products.POST("/:id/reviews", middleware.AuthMiddleware(cfg), reviewHandler.CreateReview)
	}

	rg.GET("/categories", productHandler.GetCategories)
}

func setupCartRoutes(rg *gin.RouterGroup, db *gorm.DB, redisClient *redis.Client, cfg *config.Config) {
	cartHandler := handlers.NewCartHandler(db, redisClient, cfg)

	cart := rg.Group("/cart")
	cart.Use(middleware.OptionalAuthMiddleware(cfg))
	{
		cart.GET("", cartHandler.GetCart)
		cart.POST("/items", cartHandler.AddItem)
		cart.PUT("/items", cartHandler.UpdateItem)
		cart.DELETE("/items", cartHandler.RemoveItem)
		cart.DELETE("", cartHandler.ClearCart)
	}

	rg.POST("/cart/merge", middleware.AuthMiddleware(cfg), cartHandler.MergeCart)
}

func setupCheckoutRoutes(rg *gin.RouterGroup, db *gorm.DB, redisClient *redis.Client, cfg *config.Config, logger *logrus.Logger, checkoutService *checkout.Service, finalizer *checkout.Finalizer) {
	checkoutHandler := handlers.NewCheckoutHandler(db, redisClient, cfg, logger, checkoutService, finalizer)
	webhookHandler := handlers.NewWebhookHandler(cfg, logger, finalizer)

	co := rg.Group("/checkout")
	co.Use(middleware.OptionalAuthMiddleware(cfg))
	{
		co.POST("/session", checkoutHandler.CreateSession)
		co.POST("/confirm", checkoutHandler.Confirm)
	}

	// Signature-verified, no auth
	rg.POST("/webhooks/stripe", webhookHandler.Stripe)
}

func setupOrderRoutes(rg *gin.RouterGroup, db *gorm.DB, redisClient *redis.Client, cfg *config.Config, logger *logrus.Logger) {
	orderHandler := handlers.NewOrderHandler(db, redisClient, cfg)
	invoiceHandler := handlers.NewInvoiceHandler(db, redisClient, cfg, logger)

	orders := rg.Group("/orders")
	orders.Use(middleware.AuthMiddleware(cfg))
	{
		orders.GET("", orderHandler.GetUserOrders)
		orders.GET("/:id", orderHandler.GetOrder)
		orders.POST("/:id/cancel", orderHandler.CancelOrder)
		orders.GET("/:id/invoice", invoiceHandler.GetInvoice)
	}
}

func setupGalleryRoutes(rg *gin.RouterGroup, db *gorm.DB, cfg *config.Config, logger *logrus.Logger) {
	galleryHandler := handlers.NewGalleryHandler(db, cfg, logger)

	gallery := rg.Group("/gallery")
	{
		gallery.GET("", galleryHandler.GetItems)
		gallery.GET("/:id", galleryHandler.GetItem)
		gallery.POST("/:id/votes", middleware.OptionalAuthMiddleware(cfg), galleryHandler.Vote)
	}
}

func setupAdminRoutes(rg *gin.RouterGroup, db *gorm.DB, redisClient *redis.Client, cfg *config.Config, logger *logrus.Logger) {
	productHandler := handlers.NewProductHandler(db, cfg)
	orderHandler := handlers.NewOrderHandler(db, redisClient, cfg)
	inventoryHandler := handlers.NewInventoryHandler(db, cfg, logger)
	discountHandler := handlers.NewDiscountHandler(db, cfg)
	reviewHandler := handlers.NewReviewHandler(db, redisClient, cfg)
	galleryHandler := handlers.NewGalleryHandler(db, cfg, logger)
	syncHandler := handlers.NewSyncHandler(db, cfg, logger)

	admin := rg.Group("/admin")
	admin.Use(middleware.AuthMiddleware(cfg), middleware.AdminMiddleware())
	{
		admin.POST("/sync/printful", syncHandler.AdminSyncPrintful)

		admin.GET("/orders", orderHandler.AdminGetOrders)
		admin.GET("/orders/:id", orderHandler.AdminGetOrder)
		admin.PUT("/orders/:id/status", orderHandler.AdminUpdateStatus)
		admin.PUT("/orders/:id/tracking", orderHandler.AdminSetTracking)

		admin.POST("/products", productHandler.AdminCreateProduct)
		admin.PUT("/products/:id", productHandler.AdminUpdateProduct)
		admin.DELETE("/products/:id", productHandler.AdminDeleteProduct)

		admin.GET("/inventory/:variantId", inventoryHandler.GetStock)
		admin.PUT("/inventory/:variantId", inventoryHandler.SetStock)
		admin.POST("/inventory/:variantId/adjust", inventoryHandler.AdjustStock)

		admin.POST("/discounts", discountHandler.AdminCreateCode)
		admin.GET("/discounts", discountHandler.AdminListCodes)
		admin.POST("/discounts/:id/deactivate", discountHandler.AdminDeactivateCode)

		admin.GET("/reviews/pending", reviewHandler.AdminGetPendingReviews)
		admin.POST("/reviews/:id/approve", reviewHandler.AdminApproveReview)
		admin.DELETE("/reviews/:id", reviewHandler.AdminDeleteReview)

		admin.POST("/gallery", galleryHandler.AdminCreateItem)
		admin.DELETE("/gallery/:id", galleryHandler.AdminDeleteItem)
	}
}
