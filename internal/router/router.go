// internal/router/router.go
package router

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/lokapasar/lokapasar-backend/internal/config"
	"github.com/lokapasar/lokapasar-backend/internal/handlers"
	"github.com/lokapasar/lokapasar-backend/internal/middleware"
	"github.com/lokapasar/lokapasar-backend/internal/services"
	"github.com/lokapasar/lokapasar-backend/internal/utils"
)

// Setup wires services, handlers and middleware into the gin engine.
func Setup(db *gorm.DB, cfg *config.Config) (*gin.Engine, error) {
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	storageService, err := services.NewStorageService(cfg)
	if err != nil {
		return nil, err
	}
	notificationService := services.NewNotificationService(cfg)
	authService := services.NewAuthService(db, cfg, notificationService)
	userService := services.NewUserService(db, storageService)
	productService := services.NewProductService(db, storageService)
	cartService := services.NewCartService(db, storageService)
	wishlistService := services.NewWishlistService(db, storageService)
	orderService := services.NewOrderService(db, storageService)
	paymentService := services.NewPaymentService(db, cfg, cartService, notificationService)

	authHandler := handlers.NewAuthHandler(authService)
	userHandler := handlers.NewUserHandler(userService)
	productHandler := handlers.NewProductHandler(productService, storageService)
	cartHandler := handlers.NewCartHandler(cartService)
	wishlistHandler := handlers.NewWishlistHandler(wishlistService)
	orderHandler := handlers.NewOrderHandler(orderService)
	paymentHandler := handlers.NewPaymentHandler(paymentService)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger())
	r.Use(middleware.CORS(cfg.Frontend.BaseURL))
	r.Use(middleware.GeneralRateLimit())
	r.Use(middleware.AuditLogMiddleware(db))

	r.MaxMultipartMemory = 32 << 20

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "ok",
			"time":   time.Now().UTC().Format(time.RFC3339),
		})
	})

	// Locally stored uploads; S3-backed deployments serve these from the
	// bucket instead.
	if cfg.AWS.AccessKeyID == "" {
		r.Static("/uploads", cfg.Upload.Dir)
	}

	api := r.Group("/api")

	auth := api.Group("/auth")
	{
		auth.POST("/register", middleware.AuthRateLimit(), authHandler.Register)
		auth.POST("/login", middleware.AuthRateLimit(), authHandler.Login)
		auth.POST("/refresh", authHandler.Refresh)
		auth.GET("/verify-email/:token", authHandler.VerifyEmail)
		auth.POST("/resend-verification", middleware.AuthRateLimit(), authHandler.ResendVerification)
		auth.POST("/forgot-password", middleware.AuthRateLimit(), authHandler.ForgotPassword)
		auth.POST("/reset-password", middleware.AuthRateLimit(), authHandler.ResetPassword)

		profile := auth.Group("", middleware.AuthRequired(db))
		{
			profile.GET("/profile", userHandler.GetProfile)
			profile.PUT("/profile", userHandler.UpdateProfile)
			profile.PUT("/profile/password", userHandler.ChangePassword)
			profile.POST("/profile/picture", middleware.UploadRateLimit(), userHandler.UploadProfilePicture)
		}
	}

	products := api.Group("/products")
	{
		products.GET("", productHandler.ListProducts)
		products.GET("/mine", middleware.AuthRequired(db), productHandler.GetMyProducts)
		products.GET("/:id", productHandler.GetProduct)

		products.POST("", middleware.AuthRequired(db), middleware.UploadRateLimit(), productHandler.CreateProduct)
		products.PUT("/:id", middleware.AuthRequired(db), middleware.UploadRateLimit(), productHandler.UpdateProduct)
		products.DELETE("/:id", middleware.AuthRequired(db), productHandler.DeleteProduct)
	}

	cart := api.Group("/cart", middleware.AuthRequired(db))
	{
		cart.GET("", cartHandler.GetCart)
		cart.POST("/add", cartHandler.AddItem)
		cart.PUT("/update/:productId", cartHandler.UpdateItem)
		cart.DELETE("/remove/:productId", cartHandler.RemoveItem)
		cart.DELETE("/clear", cartHandler.ClearCart)
	}

	wishlist := api.Group("/wishlist", middleware.AuthRequired(db))
	{
		wishlist.GET("", wishlistHandler.GetWishlist)
		wishlist.GET("/check/:productId", wishlistHandler.CheckItem)
		wishlist.POST("/:productId", wishlistHandler.AddItem)
		wishlist.DELETE("/:productId", wishlistHandler.RemoveItem)
	}

	orders := api.Group("/orders", middleware.AuthRequired(db))
	{
		orders.GET("", orderHandler.ListOrders)
		orders.GET("/stats", orderHandler.GetStats)
		orders.GET("/:id", orderHandler.GetOrder)
		orders.POST("/:id/cancel", orderHandler.CancelOrder)
	}

	payment := api.Group("/payment")
	{
		payment.POST("/create-transaction", middleware.AuthRequired(db), paymentHandler.CheckoutProduct)
		payment.POST("/create-cart-transaction", middleware.AuthRequired(db), paymentHandler.CheckoutCart)

		// Gateway webhook, no auth.
		payment.POST("/notification", paymentHandler.HandleNotification)
	}

	r.NoRoute(func(c *gin.Context) {
		utils.NotFoundResponse(c, "Route not found")
	})

	return r, nil
}
