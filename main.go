package main

import (
	"log"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"storefront/internal/cache"
	"storefront/internal/catalog"
	"storefront/internal/config"
	"storefront/internal/database"
	"storefront/internal/handlers"
	"storefront/internal/middleware"
)

func main() {
	config.Load()

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatal(err)
	}
	defer logger.Sync()

	client, err := database.Connect(config.AppEnv.MongoURI)
	if err != nil {
		logger.Fatal("mongo connect failed", zap.Error(err))
	}

	db := client.Database(config.AppEnv.DBName)
	logger.Info("MongoDB connected", zap.String("database", db.Name()))

	if err := database.EnsureCatalogIndexes(db); err != nil {
		logger.Warn("catalog index warning", zap.Error(err))
	}
	if err := database.EnsureUserIndexes(db); err != nil {
		logger.Warn("user index warning", zap.Error(err))
	}
	if err := database.EnsureOrderIndexes(db); err != nil {
		logger.Warn("order index warning", zap.Error(err))
	}

	var rdb *redis.Client
	if config.AppEnv.RedisAddr != "" {
		rdb, err = cache.Init(config.AppEnv.RedisAddr, config.AppEnv.RedisPassword, logger)
		if err != nil {
			logger.Warn("redis unavailable, cache disabled", zap.Error(err))
			rdb = nil
		}
	}

	svc := catalog.NewService(db, rdb, config.AppEnv.CacheTTL, logger)
	secret := config.AppEnv.JWTSecret
	accessTTL := config.AppEnv.AccessTokenTTL

	r := gin.Default()

	auth := r.Group("/auth")
	{
		auth.POST("/register", handlers.Register(db, logger))
		auth.POST("/login", handlers.Login(db, logger, secret, accessTTL))
	}

	product := r.Group("/product")
	{
		product.GET("/get-product", handlers.ListProducts(svc, logger))
		product.GET("/get-product/:slug", handlers.GetProduct(svc, logger))
		product.GET("/product-photo/:pid", handlers.ProductPhoto(svc, logger))
		product.POST("/product-filters", handlers.ProductFilters(svc, logger))
		product.GET("/product-count", handlers.ProductCount(svc, logger))
		product.GET("/product-list/:page", handlers.ProductList(svc, logger))
		product.GET("/search/:keyword", handlers.SearchProducts(svc, logger))
		product.GET("/related-product/:pid/:cid", handlers.RelatedProducts(svc, logger))
		product.GET("/product-category/:slug", handlers.ProductsByCategory(svc, logger))

		product.POST("/create-product", middleware.AdminOnly(secret), handlers.CreateProduct(svc, logger))
		product.PUT("/update-product/:pid", middleware.AdminOnly(secret), handlers.UpdateProduct(svc, logger))
		product.DELETE("/delete-product/:pid", middleware.AdminOnly(secret), handlers.DeleteProduct(svc, logger))
	}

	category := r.Group("/category")
	{
		category.GET("/get-category", handlers.GetCategories(db, logger))
		category.GET("/single-category/:slug", handlers.SingleCategory(db, logger))

		category.POST("/create-category", middleware.AdminOnly(secret), handlers.CreateCategory(db, logger))
		category.PUT("/update-category/:id", middleware.AdminOnly(secret), handlers.UpdateCategory(db, logger))
		category.DELETE("/delete-category/:id", middleware.AdminOnly(secret), handlers.DeleteCategory(db, logger))
	}

	order := r.Group("/order")
	{
		order.POST("/create", middleware.RequireSignIn(secret), handlers.CreateOrder(db, logger))
		order.GET("/orders", middleware.RequireSignIn(secret), handlers.GetOrders(db, logger))
		order.GET("/all-orders", middleware.AdminOnly(secret), handlers.GetAllOrders(db, logger))
		order.PUT("/order-status/:orderId", middleware.AdminOnly(secret), handlers.UpdateOrderStatus(db, logger))
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	if err := r.Run(":" + port); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}
