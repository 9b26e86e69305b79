package main

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"chain-bridge.backend/internal/interfaces/http/handlers"
	"chain-bridge.backend/internal/interfaces/http/middleware"
)

type routeDeps struct {
	bridgeHandler   *handlers.BridgeHandler
	feeHandler      *handlers.FeeHandler
	registryHandler *handlers.RegistryHandler
	adminHandler    *handlers.AdminHandler
	authMiddleware  gin.HandlerFunc
}

func applyCORSMiddleware(r *gin.Engine) {
	r.Use(func(c *gin.Context) {
		if origin := c.GetHeader("Origin"); origin != "" {
			c.Header("Access-Control-Allow-Origin", origin)
			c.Header("Access-Control-Allow-Credentials", "true")
			c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
			c.Header("Access-Control-Allow-Headers", "Authorization, Content-Type, X-Request-ID, Idempotency-Key")
		}
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	})
}

func registerHealthRoute(r *gin.Engine) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"service": "chain-bridge-backend",
			"version": "0.1.0",
		})
	})
}

func registerMetricsRoute(r *gin.Engine) {
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
}

func registerAPIV1Routes(r *gin.Engine, d routeDeps) {
	v1 := r.Group("/api/v1")
	{
		// Settlement routes (public)
		bridge := v1.Group("/bridge")
		{
			bridge.POST("/initiate", middleware.IdempotencyMiddleware(), d.bridgeHandler.Initiate)
			bridge.POST("/complete", d.bridgeHandler.Complete)
			bridge.POST("/cancel", d.bridgeHandler.Cancel)
			bridge.GET("/requests", d.bridgeHandler.ListRequests)
			bridge.GET("/requests/:id", d.bridgeHandler.GetRequest)
			bridge.GET("/stats", d.bridgeHandler.GetStats)
		}

		// Fee routes (public read)
		fees := v1.Group("/fees")
		{
			fees.GET("/quote", d.feeHandler.Quote)
			fees.GET("/:chainId/history", d.feeHandler.GetHistory)
			fees.GET("/:chainId/adjustments", d.feeHandler.GetAdjustments)
			fees.GET("/:chainId/market", d.feeHandler.GetMarketData)
		}

		// Registry routes (public read)
		v1.GET("/tokens", d.registryHandler.ListTokens)
		v1.GET("/tokens/:address/stats", d.registryHandler.GetTokenStats)
		v1.GET("/chains", d.registryHandler.ListChains)
		v1.GET("/validators", d.registryHandler.ListValidators)

		// Admin routes (protected)
		admin := v1.Group("/admin")
		admin.Use(d.authMiddleware, middleware.RequireAdmin())
		{
			admin.POST("/chains", d.adminHandler.UpsertChain)
			admin.PUT("/chains", d.adminHandler.UpsertChain)
			admin.POST("/tokens", d.adminHandler.UpsertToken)
			admin.PUT("/tokens", d.adminHandler.UpsertToken)

			admin.POST("/fees/:chainId", d.adminHandler.ConfigureFee)
			admin.POST("/fees/:chainId/trigger", d.adminHandler.TriggerFeeUpdate)
			admin.POST("/fees/:chainId/optimize", d.adminHandler.OptimizeFee)

			admin.POST("/validators", d.adminHandler.AddValidator)
			admin.DELETE("/validators/:address", d.adminHandler.RemoveValidator)
			admin.PUT("/validators/threshold", d.adminHandler.SetThreshold)
			admin.POST("/merkle-roots", d.adminHandler.SetMerkleRoot)

			admin.GET("/settings", d.adminHandler.GetSettings)
			admin.PUT("/settings", d.adminHandler.UpdateSettings)
		}
	}
}
