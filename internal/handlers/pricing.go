package handlers

import (
	"net/http"
	"strconv"

	"voart-api/internal/pricing"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

func (a *API) registerPricingRoutes(group *gin.RouterGroup) {
	p := group.Group("/pricing")
	{
		p.GET("/rate", a.handleRate)
		p.GET("/convert", a.handleConvert)
		p.GET("/network-status", a.handleNetworkStatus)
		p.GET("/gas", a.handleGas)
		p.GET("/minting", a.handleMintingCost)
		p.GET("/marketplace", a.handleMarketplaceCosts)
		p.GET("/deployment", a.handleDeploymentCost)
		p.GET("/commission", a.handleCommission)
	}
}

func (a *API) handleRate(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"rate":   a.Rates.CurrentRate(),
		"source": a.rateSource(),
	})
}

func (a *API) rateSource() string {
	var source string
	if err := a.Feed.Source(&source); err != nil {
		return "default"
	}
	return source
}

func (a *API) handleConvert(c *gin.Context) {
	amount, err := strconv.ParseFloat(c.Query("amount"), 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid amount"})
		return
	}
	switch c.DefaultQuery("from", "qom") {
	case "qom":
		usd := a.Rates.QOMToUSD(amount)
		c.JSON(http.StatusOK, gin.H{"qom": amount, "usd": usd, "formatted": pricing.FormatUSD(usd)})
	case "usd":
		qom := a.Rates.USDToQOM(amount)
		c.JSON(http.StatusOK, gin.H{"usd": amount, "qom": qom, "formatted": pricing.FormatQOM(qom)})
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "from must be qom or usd"})
	}
}

func (a *API) handleNetworkStatus(c *gin.Context) {
	c.JSON(http.StatusOK, pricing.CurrentNetworkStatus(a.Oracle))
}

func (a *API) handleGas(c *gin.Context) {
	base, err := strconv.ParseFloat(c.Query("base"), 64)
	if err != nil || base < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid base cost"})
		return
	}
	c.JSON(http.StatusOK, pricing.EstimateGas(base, a.Oracle.Level()))
}

func (a *API) handleMintingCost(c *gin.Context) {
	quantity, err := strconv.Atoi(c.DefaultQuery("quantity", "1"))
	if err != nil || quantity < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid quantity"})
		return
	}
	c.JSON(http.StatusOK, a.Calc.CalculateMintingCost(quantity))
}

func (a *API) handleMarketplaceCosts(c *gin.Context) {
	price, err := strconv.ParseFloat(c.Query("price"), 64)
	if err != nil || price < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid price"})
		return
	}
	c.JSON(http.StatusOK, a.Calc.CalculateMarketplaceCosts(price))
}

func (a *API) handleDeploymentCost(c *gin.Context) {
	c.JSON(http.StatusOK, a.Calc.CalculateCollectionDeploymentCost())
}

func (a *API) handleCommission(c *gin.Context) {
	price, err := decimal.NewFromString(c.Query("price"))
	if err != nil || price.IsNegative() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid price"})
		return
	}
	// The flat gas fee on the breakdown is the current listing-fee estimate.
	gas := a.Calc.CalculateMarketplaceCosts(0).Gas
	gasFee := decimal.NewFromFloat(gas.Current)
	c.JSON(http.StatusOK, pricing.BreakdownCommission(price, gasFee, a.Commission))
}

// handleSetFees lets admins override the persisted base fees.
type setFeesRequest struct {
	LazyMintFee           *float64 `json:"lazyMintFee"`
	CollectionCreationFee *float64 `json:"collectionCreationFee"`
}

func (a *API) handleSetFees(c *gin.Context) {
	var req setFeesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	if req.LazyMintFee == nil && req.CollectionCreationFee == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No fee provided"})
		return
	}
	if req.LazyMintFee != nil {
		if *req.LazyMintFee <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "lazyMintFee must be positive"})
			return
		}
		if err := a.Calc.SetLazyMintFee(*req.LazyMintFee); err != nil {
			a.Log.Error("Failed to persist lazy mint fee", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal error"})
			return
		}
	}
	if req.CollectionCreationFee != nil {
		if *req.CollectionCreationFee <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "collectionCreationFee must be positive"})
			return
		}
		if err := a.Calc.SetCollectionCreationFee(*req.CollectionCreationFee); err != nil {
			a.Log.Error("Failed to persist collection creation fee", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal error"})
			return
		}
	}
	a.Log.LogModeration("admin fees updated")
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (a *API) handleRefreshRate(c *gin.Context) {
	rate := a.Feed.Refresh()
	c.JSON(http.StatusOK, gin.H{"rate": rate})
}
