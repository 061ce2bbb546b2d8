package handlers

import (
	"net/http"

	"voart-api/internal/moderation"
	"voart-api/internal/pricing"
	"voart-api/shared/env"
	"voart-api/shared/logger"

	"github.com/gin-gonic/gin"
)

// API bundles the services the route handlers need.
type API struct {
	Log          *logger.Logger
	Rates        *pricing.RateService
	Feed         *pricing.PriceFeed
	Calc         *pricing.Calculator
	Oracle       pricing.CongestionOracle
	Commission   pricing.CommissionRates
	Users        *moderation.UserManagement
	NFTs         *moderation.NFTAdmin
	Verification *moderation.VerificationSystem
	StorageWL    *moderation.Whitelist
	MarketWL     *moderation.Whitelist
	Featured     *moderation.FeaturedCollections
}

func RegisterRoutes(router *gin.Engine, appLogger *logger.Logger) {
	router.GET("/", func(c *gin.Context) {
		appLogger.Info("Root endpoint accessed")
		c.JSON(http.StatusOK, gin.H{"message": "VoArt marketplace API is running."})
	})
}

// RegisterAPIRoutes wires the public and admin route groups.
func (a *API) RegisterAPIRoutes(router *gin.Engine) {
	apiGroup := router.Group("/api/v1")
	{
		apiGroup.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"status": "ok", "message": "API Service is running"})
		})

		a.registerPricingRoutes(apiGroup)
		a.registerPublicRoutes(apiGroup)

		adminGroup := apiGroup.Group("/admin")
		adminGroup.Use(a.adminAuth())
		a.registerAdminRoutes(adminGroup)
	}
	a.Log.Info("API routes registered under /api/v1")
}

// adminAuth guards moderation endpoints with the shared admin secret. When no
// secret is configured the endpoints stay open, matching the webhook
// behaviour: warn loudly, keep serving.
func (a *API) adminAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		expected := env.AdminAPISecret
		if expected == "" {
			a.Log.Warn("No ADMIN_API_SECRET configured. Accepting admin request without auth check.")
			c.Next()
			return
		}
		received := c.GetHeader("X-Admin-Secret")
		if received == "" {
			a.Log.Warn("Admin request missing X-Admin-Secret header.", "path", c.FullPath())
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Missing X-Admin-Secret header"})
			return
		}
		if received != expected {
			a.Log.Error("Unauthorized admin request - secret mismatch.", "path", c.FullPath())
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		c.Next()
	}
}

// statusForKind maps a failure kind to an HTTP status.
func statusForKind(kind moderation.Kind) int {
	switch kind {
	case moderation.KindNotFound:
		return http.StatusNotFound
	case moderation.KindAlreadyInState:
		return http.StatusConflict
	case moderation.KindInvalidInput, moderation.KindUnknown:
		return http.StatusBadRequest
	case moderation.KindUnauthorized:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// respond renders a moderation result, or a 500 for storage failures.
func (a *API) respond(c *gin.Context, res moderation.Result, err error) {
	if err != nil {
		a.Log.Error("Moderation operation failed", "error", err, "path", c.FullPath())
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Internal error"})
		return
	}
	if !res.Success {
		c.JSON(statusForKind(res.Kind), gin.H{"success": false, "kind": res.Kind, "message": res.Message})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": res.Message})
}
