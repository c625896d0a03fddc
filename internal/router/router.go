package router

import (
	"fabrication-service/internal/handlers"
	"fabrication-service/internal/middleware"
	"fabrication-service/internal/service"

	"github.com/gin-contrib/cors"
	"go.uber.org/zap"

	"github.com/gin-gonic/gin"
)

type Services struct {
	Cart     service.CartService
	Checkout service.CheckoutService
	Ingest   service.IngestService

	CheckoutEnabled bool
}

func Router(svcs Services, allowOrigins []string, log *zap.Logger) *gin.Engine {
	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     allowOrigins,
		AllowMethods:     []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Content-Type", "Idempotency-Key"},
		ExposeHeaders:    []string{"Content-Length", "Idempotency-Key"},
		AllowCredentials: true,
	}))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status": "ok",
		})
	})

	// Worker callbacks carry no session.
	webhookHandler := handlers.NewWebhookHandler(svcs.Ingest, log)
	r.POST("/api/webhooks/file-status", webhookHandler.FileStatus)

	// The kill-switch sits ahead of the session check.
	checkoutHandler := handlers.NewCheckoutHandler(svcs.Checkout, log)
	r.POST("/api/checkout",
		middleware.CheckoutEnabled(svcs.CheckoutEnabled),
		middleware.SessionRequired(),
		checkoutHandler.Checkout,
	)

	api := r.Group("/api", middleware.SessionRequired())

	cartHandler := handlers.NewCartHandler(svcs.Cart, log)
	api.GET("/cart", cartHandler.List)
	api.PATCH("/cart", cartHandler.Update)
	api.DELETE("/cart", cartHandler.Delete)
	api.GET("/cart/summary", cartHandler.Summary)

	uploadHandler := handlers.NewUploadHandler(svcs.Cart, log)
	api.POST("/upload", uploadHandler.Register)

	return r
}
