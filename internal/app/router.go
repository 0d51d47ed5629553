package app

import (
	"github.com/gin-gonic/gin"
	"github.com/newrelic/go-agent/v3/integrations/nrgin"
	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/redis/go-redis/v9"

	"dispatch/internal/handler"
	"dispatch/internal/middleware"
)

// RouterDeps contains all dependencies needed for the router.
type RouterDeps struct {
	RideHandler    *handler.RideHandler
	AdminHandler   *handler.AdminHandler
	WebhookHandler *handler.WebhookHandler
	GeocodeHandler *handler.GeocodeHandler
	RedisClient    *redis.Client
	NewRelicApp    *newrelic.Application
	AdminKey       string
}

// NewRouter creates a new Gin router with all routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	router := gin.New()

	// Global middleware.
	router.Use(gin.Recovery())
	router.Use(gin.Logger())
	router.Use(middleware.CORSMiddleware())

	// Add New Relic middleware if enabled.
	if deps.NewRelicApp != nil {
		router.Use(nrgin.Middleware(deps.NewRelicApp))
	}

	router.Use(middleware.IdempotencyMiddleware(deps.RedisClient))

	// Health check.
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// API v1 routes.
	v1 := router.Group("/v1")
	{
		// Ride routes.
		rides := v1.Group("/rides")
		{
			rides.POST("", deps.RideHandler.CreateRide)
			rides.GET("", deps.RideHandler.GetAll)
			rides.GET("/:id", deps.RideHandler.GetRide)
			rides.POST("/:id/cancel", deps.RideHandler.CancelRide)
			rides.POST("/:id/chat", deps.RideHandler.SendChat)
			rides.GET("/:id/messages", deps.RideHandler.GetMessages)
			rides.GET("/:id/transitions", deps.RideHandler.GetTransitions)
		}

		// Bot webhook.
		v1.POST("/telegram/webhook", deps.WebhookHandler.HandleUpdate)

		// Address autocomplete and route distance.
		v1.GET("/geocode/suggest", deps.GeocodeHandler.Suggest)
		v1.GET("/geocode/route", deps.GeocodeHandler.Route)

		// Admin routes, behind the shared key.
		admin := v1.Group("/admin")
		admin.Use(middleware.AdminAuthMiddleware(deps.AdminKey))
		{
			admin.POST("/rides/:id", deps.AdminHandler.Override)
		}
	}

	return router
}
