package app

import (
	"github.com/gin-gonic/gin"
	"github.com/newrelic/go-agent/v3/integrations/nrgin"
	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/redis/go-redis/v9"

	"github.com/ChasingCode34/trip-sync/internal/handler"
	"github.com/ChasingCode34/trip-sync/internal/middleware"
)

// RouterDeps contains all dependencies needed for the router.
type RouterDeps struct {
	SMSHandler  *handler.SMSHandler
	UserHandler *handler.UserHandler
	RideHandler *handler.RideHandler
	RedisClient *redis.Client
	NewRelicApp *newrelic.Application
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

	// Twilio messaging webhook.
	router.POST("/webhook/sms", deps.SMSHandler.ReceiveMessage)

	// Ops/introspection routes.
	v1 := router.Group("/v1")
	{
		v1.GET("/users", deps.UserHandler.GetAll)
		v1.GET("/rides", deps.RideHandler.GetAll)
		v1.GET("/rides/:id", deps.RideHandler.GetRide)
	}

	return router
}
