package main

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"cast-deck.backend/internal/interfaces/http/handlers"
)

type routeDeps struct {
	walletHandler    *handlers.WalletHandler
	farcasterHandler *handlers.FarcasterHandler
	linkHandler      *handlers.LinkHandler
	sessionHandler   *handlers.SessionHandler
	requireAuth      gin.HandlerFunc
	optionalAuth     gin.HandlerFunc
}

func registerAPIV1Routes(r *gin.Engine, d routeDeps) {
	v1 := r.Group("/api/v1")
	{
		auth := v1.Group("/auth")
		{
			// Wallet sign-in. Link is optionally authenticated: with a
			// session the wallet merges into that account, without one it
			// signs the caller in.
			auth.GET("/wallet/challenge", d.walletHandler.Challenge)
			auth.POST("/wallet", d.optionalAuth, d.walletHandler.Link)

			// Farcaster relay sign-in
			auth.POST("/farcaster/channel", d.optionalAuth, d.farcasterHandler.Begin)
			auth.GET("/farcaster/channel/status", d.farcasterHandler.Status)
			auth.DELETE("/farcaster/channel", d.farcasterHandler.Cancel)

			auth.POST("/refresh", d.sessionHandler.Refresh)
		}

		// Link record routes (protected)
		links := v1.Group("/links")
		links.Use(d.requireAuth)
		{
			links.GET("/me", d.linkHandler.Me)
			links.DELETE("/me/wallet", d.linkHandler.UnlinkWallet)
		}
	}
}

func applyCORSMiddleware(r *gin.Engine) {
	r.Use(func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		if origin != "" {
			c.Header("Access-Control-Allow-Origin", origin)
			c.Header("Access-Control-Allow-Credentials", "true")
			c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
			c.Header("Access-Control-Allow-Headers", "Authorization, Content-Type, X-Request-ID")
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
			"service": "cast-deck-backend",
			"version": "0.1.0",
		})
	})
}

func registerMetricsRoute(r *gin.Engine) {
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
}
