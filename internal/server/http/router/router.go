package router

import (
	"log/slog"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"

	"github.com/polkiloo/autotransit/internal/server/http/handlers"
	"github.com/polkiloo/autotransit/internal/server/http/middleware"
)

// maxRequestBody caps decompressed request payloads.
const maxRequestBody = 1 << 20

// Setup configures gin router with handlers and middleware.
func Setup(facade handlers.TransportFacade, hub handlers.PushHub, logger *slog.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(middleware.RequestID())
	engine.Use(middleware.RequestLogger(logger))
	engine.Use(middleware.DecompressRequest(maxRequestBody))

	authHandler := handlers.NewAuthHandler(facade)
	orderHandler := handlers.NewOrderHandler(facade)
	offerHandler := handlers.NewOfferHandler(facade)
	providerHandler := handlers.NewProviderHandler(facade)
	ledgerHandler := handlers.NewLedgerHandler(facade)
	pushHandler := handlers.NewPushHandler(hub)

	api := engine.Group("/api")
	api.POST("/user/register", authHandler.Register)
	api.POST("/user/login", authHandler.Login)
	api.POST("/payments/webhook", ledgerHandler.Webhook)

	authed := api.Group("")
	authed.Use(middleware.AuthRequired(facade))
	// the websocket upgrade must not pass through the gzip writer
	authed.GET("/ws", pushHandler.Serve)

	rest := authed.Group("")
	rest.Use(gzip.Gzip(gzip.DefaultCompression))

	rest.GET("/user/me", authHandler.Me)
	rest.GET("/pricing/quote", orderHandler.Quote)
	rest.GET("/drivers/me/profile", orderHandler.DriverProfile)

	orders := rest.Group("/orders")
	orders.POST("", orderHandler.Create)
	orders.GET("", orderHandler.List)
	orders.GET("/available", orderHandler.Available)
	orders.GET("/statistics", orderHandler.Statistics)
	orders.GET("/:id", orderHandler.Get)
	orders.DELETE("/:id", orderHandler.Delete)
	orders.POST("/:id/claim", orderHandler.Claim)
	orders.POST("/:id/assign", orderHandler.Assign)
	orders.POST("/:id/start", orderHandler.Start)
	orders.POST("/:id/complete", orderHandler.Complete)
	orders.POST("/:id/cancel", orderHandler.Cancel)
	orders.POST("/:id/rating", orderHandler.Rate)
	orders.POST("/:id/checkout", ledgerHandler.Checkout)

	orders.POST("/:id/offers", offerHandler.Submit)
	orders.GET("/:id/offers", offerHandler.List)
	orders.GET("/:id/offers/comparison", offerHandler.Compare)
	orders.POST("/:id/offers/:offerID/accept", offerHandler.Accept)
	orders.POST("/:id/offers/:offerID/reject", offerHandler.Reject)
	rest.GET("/offers", offerHandler.Mine)

	providers := rest.Group("/providers")
	providers.POST("", providerHandler.Register)
	providers.GET("/me", providerHandler.Mine)
	providers.POST("/me/review", providerHandler.RequestReview)
	providers.GET("/pending", providerHandler.Pending)
	providers.GET("/active", providerHandler.Active)
	providers.GET("/stats", providerHandler.Stats)
	providers.POST("/:id/verify", providerHandler.Verify)
	providers.POST("/:id/reject", providerHandler.Reject)

	rest.GET("/payouts", ledgerHandler.Payouts)
	rest.PATCH("/payouts/:id", ledgerHandler.UpdatePayout)
	rest.GET("/audit", ledgerHandler.Audit)

	return engine
}
