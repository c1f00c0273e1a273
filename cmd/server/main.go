package main

import (
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"salin-system/config"
	"salin-system/internal/database"
	"salin-system/internal/handlers"
	"salin-system/internal/middleware"
	"salin-system/internal/services/customers"
	"salin-system/internal/services/orders"
	"salin-system/internal/services/products"
	"salin-system/internal/services/profiles"
	"salin-system/internal/services/teams"
	"salin-system/internal/services/visualization"
	"salin-system/internal/utils"
)

func main() {
	cfg := config.LoadConfig()
	if cfg.Auth.JWTSecret != "" {
		utils.JwtSecret = []byte(cfg.Auth.JWTSecret)
	}

	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})

	db, err := database.NewConnection(cfg.DB.DSN())
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	redisClient := config.NewRedisClient(cfg.Redis)

	profileService := profiles.NewService(db, logger)
	customerService := customers.NewService(db, logger)
	vizService := visualization.NewService(db, redisClient, logger)
	orderService := orders.NewService(db, logger, vizService)
	productService := products.NewService(db)
	teamService := teams.NewService(db, logger)

	authHandler := handlers.NewAuthHandler(profileService)
	customerHandler := handlers.NewCustomerHandler(customerService)
	orderHandler := handlers.NewOrderHandler(orderService)
	productHandler := handlers.NewProductHandler(productService)
	teamHandler := handlers.NewTeamHandler(teamService)
	vizHandler := handlers.NewVisualizationHandler(vizService)

	r := gin.Default()

	r.Use(middleware.CORS())
	r.Use(gin.Logger())
	r.Use(gin.Recovery())
	r.Use(middleware.RateLimit())

	// --- Public API Group ---
	public := r.Group("/api/v1")
	{
		auth := public.Group("/auth")
		{
			auth.POST("/token", authHandler.Token)
		}
	}

	// --- Protected API Group ---
	protected := r.Group("/api/v1")
	protected.Use(middleware.JWTAuth())
	protected.Use(middleware.AccessScope(db))
	{
		customersGroup := protected.Group("/customers")
		{
			customersGroup.POST("", customerHandler.Create)
			customersGroup.GET("", customerHandler.List)
			customersGroup.GET("/search", customerHandler.Search)
			customersGroup.GET("/:id", customerHandler.Get)
			customersGroup.GET("/by-citizen-id/:citizenId", customerHandler.GetByCitizenID)
			customersGroup.PUT("/:id", customerHandler.Update)
			customersGroup.DELETE("/:id", customerHandler.Delete)
		}

		ordersGroup := protected.Group("/orders")
		{
			ordersGroup.POST("", orderHandler.Create)
			ordersGroup.GET("", orderHandler.List)
			ordersGroup.GET("/:id", orderHandler.Get)
			ordersGroup.DELETE("/:id", orderHandler.Delete)
		}

		productsGroup := protected.Group("/products")
		{
			productsGroup.GET("", productHandler.List)
			productsGroup.GET("/:code", productHandler.Get)
		}

		teamsGroup := protected.Group("/teams")
		{
			teamsGroup.POST("", teamHandler.Create)
			teamsGroup.POST("/join", teamHandler.Join)
			teamsGroup.POST("/approve", teamHandler.Approve)
			teamsGroup.POST("/remove", teamHandler.Remove)
			teamsGroup.POST("/leave", teamHandler.Leave)
			teamsGroup.POST("/role", teamHandler.UpdateRole)
			teamsGroup.GET("/me", teamHandler.Me)
			teamsGroup.GET("/search", teamHandler.Search)
		}

		vizGroup := protected.Group("/visualizations")
		{
			vizGroup.GET("/score-summary", vizHandler.ScoreSummary)
		}
	}

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"message":   "Server is running",
			"timestamp": time.Now(),
		})
	})

	port := ":" + cfg.Server.Port
	log.Printf("Starting server on port %s", port)
	if err := r.Run(port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
