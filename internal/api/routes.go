package api

import (
	"log/slog"
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/LooWze/LooWzeIA/internal/api/handlers"
	"github.com/LooWze/LooWzeIA/internal/services"
)

// Dependencies are the services the router exposes.
type Dependencies struct {
	Identifier   *services.CardIdentifier
	Auth         *services.AuthService
	Collection   *services.CollectionService
	ImageStorage *services.ImageStorageService
	CORSOrigins  []string
	Logger       *slog.Logger
}

var endpoints = []string{
	"/register",
	"/token",
	"/upload",
	"/confirm",
	"/collection/list",
	"/collection/value",
	"/collection/stats",
}

func SetupRouter(deps Dependencies) *gin.Engine {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	router := gin.New()
	router.MaxMultipartMemory = 2 * handlers.MaxImageBytes
	router.Use(gin.Recovery(), requestID(), accessLog(logger))

	// CORS configuration - origins come from config
	config := cors.DefaultConfig()
	config.AllowOrigins = deps.CORSOrigins
	if len(config.AllowOrigins) == 0 {
		config.AllowOrigins = []string{"http://localhost:5173"}
	}
	config.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	config.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization", requestIDHeader}
	config.ExposeHeaders = []string{requestIDHeader}
	config.AllowCredentials = false // Explicitly set
	router.Use(cors.New(config))

	// Initialize handlers
	cardHandler := handlers.NewCardHandler(deps.Identifier, logger)
	authHandler := handlers.NewAuthHandler(deps.Auth, logger)
	collectionHandler := handlers.NewCollectionHandler(deps.Collection, logger)

	router.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message":   "Pokemon card scan API",
			"endpoints": endpoints,
		})
	})

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	router.POST("/register", authHandler.Register)
	router.POST("/token", authHandler.Token)

	authed := router.Group("/", requireAuth(deps.Auth, logger))
	{
		authed.POST("/upload", cardHandler.UploadCard)
		authed.POST("/confirm", collectionHandler.ConfirmCard)

		collection := authed.Group("/collection")
		{
			collection.GET("/list", collectionHandler.GetCollection)
			collection.GET("/value", collectionHandler.GetValue)
			collection.GET("/stats", collectionHandler.GetStats)
		}

		// Stored faces, by storage key.
		if deps.ImageStorage != nil {
			authed.Static("/images/uploads", deps.ImageStorage.GetStorageDir())
		}
	}

	// API routes
	api := router.Group("/api", requireAuth(deps.Auth, logger))
	{
		cards := api.Group("/cards")
		{
			cards.POST("/upload", cardHandler.UploadCard)
		}
	}

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	})

	return router
}
