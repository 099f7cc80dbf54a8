package main

import (
	"net/http"
	"os"
	"time"

	"shophub/config"
	"shophub/internal/auth"
	"shophub/internal/delivery"
	"shophub/internal/idempotency"
	"shophub/internal/middleware"
	"shophub/internal/repository"
	"shophub/internal/usecase"
	"shophub/migrations"
	"shophub/pkg/db"
	"shophub/pkg/metrics"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

func main() {
	// Configuration and logging setup
	logger := logrus.New()
	logger.SetOutput(os.Stdout)
	logger.SetFormatter(&logrus.JSONFormatter{})

	cfg := config.LoadConfig(logger)

	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		logger.Warnf("Unknown log level %q, falling back to info", cfg.LogLevel)
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	logger.Infof("Starting %s v%s...", cfg.AppName, cfg.AppVersion)

	// Database connection and schema
	database, err := db.Connect(cfg.DatabaseURL)
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close()
	logger.Info("Database connection established.")

	if err := migrations.Up(database); err != nil {
		logger.Fatalf("Failed to apply database migrations: %v", err)
	}
	logger.Info("Database migrations applied.")

	var idemStore *idempotency.Store
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		idemStore = idempotency.NewStore(rdb, time.Duration(cfg.IdempotencyTTLHours)*time.Hour)
		logger.Infof("Checkout idempotency guard enabled (redis at %s)", cfg.RedisAddr)
	}

	// Repository layer
	userRepo := repository.NewPostgresUserRepository(database, logger)
	categoryRepo := repository.NewPostgresCategoryRepository(database, logger)
	productRepo := repository.NewPostgresProductRepository(database, logger)
	cartRepo := repository.NewPostgresCartRepository(database, logger)
	orderRepo := repository.NewPostgresOrderRepository(database, logger)
	reviewRepo := repository.NewPostgresReviewRepository(database, logger)
	logger.Info("Repositories initialized.")

	// Usecase layer
	userUseCase := usecase.NewUserUseCase(userRepo, logger)
	categoryUseCase := usecase.NewCategoryUseCase(categoryRepo, logger)
	productUseCase := usecase.NewProductUseCase(productRepo, categoryRepo, logger)
	cartUseCase := usecase.NewCartUseCase(cartRepo, productRepo, logger)
	orderUseCase := usecase.NewOrderUseCase(orderRepo, cartRepo, logger)
	reviewUseCase := usecase.NewReviewUseCase(reviewRepo, productRepo, logger)
	logger.Info("Use cases initialized.")

	// Delivery layer
	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.TokenExpiryMinutes)
	authn := middleware.NewAuthenticator(tokens, userRepo, logger)

	authHandler := delivery.NewAuthHandler(userUseCase, tokens, logger)
	userHandler := delivery.NewUserHandler(userUseCase, logger)
	categoryHandler := delivery.NewCategoryHandler(categoryUseCase, logger)
	productHandler := delivery.NewProductHandler(productUseCase, logger)
	cartHandler := delivery.NewCartHandler(cartUseCase, logger)
	orderHandler := delivery.NewOrderHandler(orderUseCase, idemStore, logger)
	reviewHandler := delivery.NewReviewHandler(reviewUseCase, logger)
	adminHandler := delivery.NewAdminHandler(userUseCase, logger)
	logger.Info("Handlers initialized.")

	serverMetrics := metrics.NewServerMetrics("api")

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger(logger))
	router.Use(middleware.Metrics(serverMetrics))

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = cfg.CORSOrigins
	corsConfig.AllowCredentials = true
	corsConfig.AllowHeaders = append(corsConfig.AllowHeaders, "Authorization", "Idempotency-Key")
	router.Use(cors.New(corsConfig))

	router.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "Welcome to " + cfg.AppName,
			"version": cfg.AppVersion,
			"docs":    "/api/v1",
		})
	})

	router.GET("/health", func(c *gin.Context) {
		if err := database.Ping(); err != nil {
			logger.Errorf("Health check failed: %v", err)
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy", "database": "unreachable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "healthy", "database": "connected"})
	})

	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	// Route registration
	api := router.Group("/api/v1")
	{
		authHandler.RegisterRoutes(api)
		userHandler.RegisterRoutes(api, authn)
		categoryHandler.RegisterRoutes(api, authn)
		productHandler.RegisterRoutes(api, authn)
		cartHandler.RegisterRoutes(api, authn)
		orderHandler.RegisterRoutes(api, authn)
		reviewHandler.RegisterRoutes(api, authn)
		adminHandler.RegisterRoutes(api, authn)
	}
	logger.Info("API routes registered.")

	// Start server
	logger.Infof("Starting server on %s", cfg.Port)
	if err := router.Run(cfg.Port); err != nil {
		logger.Fatalf("Failed to start server: %v", err)
	}
}
