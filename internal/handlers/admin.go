package handlers

import (
	"net/http"
	"strconv"
	"time"

	"voart-api/internal/models"
	"voart-api/internal/moderation"

	"github.com/gin-gonic/gin"
)

type banRequest struct {
	Address      string `json:"address" binding:"required"`
	Reason       string `json:"reason"`
	Admin        string `json:"admin" binding:"required"`
	DurationDays int    `json:"durationDays"`
}

type addressRequest struct {
	Address string `json:"address" binding:"required"`
	Admin   string `json:"admin" binding:"required"`
}

type fixRequest struct {
	Address string `json:"address" binding:"required"`
	Admin   string `json:"admin" binding:"required"`
	FixType string `json:"fixType" binding:"required"`
}

type upsertUserRequest struct {
	Address  string `json:"address" binding:"required"`
	Username string `json:"username"`
}

type verificationDecisionRequest struct {
	Admin  string `json:"admin" binding:"required"`
	Reason string `json:"reason"`
}

type submitVerificationRequest struct {
	Type     string `json:"type" binding:"required"`
	TargetID string `json:"targetId" binding:"required"`
	Reason   string `json:"reason"`
}

type bulkImportRequest struct {
	Addresses []string `json:"addresses" binding:"required"`
	Admin     string   `json:"admin" binding:"required"`
}

type featureRequest struct {
	CollectionID string     `json:"collectionId" binding:"required"`
	Priority     int        `json:"priority"`
	ExpiresAt    *time.Time `json:"expiresAt"`
}

type purchaseRequest struct {
	Buyer string `json:"buyer" binding:"required"`
}

func (a *API) registerPublicRoutes(group *gin.RouterGroup) {
	group.GET("/nfts", func(c *gin.Context) {
		nfts, err := a.NFTs.VisibleNFTs()
		if err != nil {
			a.Log.Error("Failed to list NFTs", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal error"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"nfts": nfts})
	})

	group.GET("/nfts/:id", func(c *gin.Context) {
		nft, res, err := a.NFTs.GetNFT(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal error"})
			return
		}
		if !res.Success {
			c.JSON(statusForKind(res.Kind), gin.H{"error": res.Message})
			return
		}
		c.JSON(http.StatusOK, nft)
	})

	group.GET("/featured", func(c *gin.Context) {
		featured, err := a.Featured.List(time.Now().UTC())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal error"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"collections": featured})
	})

	group.POST("/nfts/:id/like", func(c *gin.Context) {
		var req struct {
			Address string `json:"address" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
			return
		}
		liked, res, err := a.NFTs.ToggleLike(c.Param("id"), req.Address)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal error"})
			return
		}
		if !res.Success {
			c.JSON(statusForKind(res.Kind), gin.H{"error": res.Message})
			return
		}
		c.JSON(http.StatusOK, gin.H{"liked": liked, "message": res.Message})
	})

	group.POST("/verification/requests", func(c *gin.Context) {
		var req submitVerificationRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
			return
		}
		res, err := a.Verification.SubmitRequest(req.Type, req.TargetID, req.Reason)
		a.respond(c, res, err)
	})
}

func (a *API) registerAdminRoutes(group *gin.RouterGroup) {
	group.POST("/users", func(c *gin.Context) {
		var req upsertUserRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
			return
		}
		res, err := a.Users.UpsertUser(req.Address, req.Username)
		a.respond(c, res, err)
	})

	group.POST("/users/ban", func(c *gin.Context) {
		var req banRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
			return
		}
		res, err := a.Users.BanUser(req.Address, req.Reason, req.Admin, req.DurationDays)
		a.respond(c, res, err)
	})

	group.POST("/users/unban", func(c *gin.Context) {
		var req addressRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
			return
		}
		res, err := a.Users.UnbanUser(req.Address, req.Admin)
		a.respond(c, res, err)
	})

	group.POST("/users/fix", func(c *gin.Context) {
		var req fixRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
			return
		}
		res, err := a.Users.FixUserIssues(req.Address, req.Admin, req.FixType)
		a.respond(c, res, err)
	})

	group.GET("/users/stats", func(c *gin.Context) {
		stats, err := a.Users.GetUserStats(time.Now().UTC())
		if err != nil {
			a.Log.Error("Failed to compute user stats", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal error"})
			return
		}
		c.JSON(http.StatusOK, stats)
	})

	group.GET("/users/:address/profile", func(c *gin.Context) {
		profile, res, err := a.Users.GetUserProfile(c.Param("address"), time.Now().UTC())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal error"})
			return
		}
		if !res.Success {
			c.JSON(statusForKind(res.Kind), gin.H{"error": res.Message})
			return
		}
		c.JSON(http.StatusOK, profile)
	})

	group.GET("/users/:address/banned", func(c *gin.Context) {
		banned, err := a.Users.IsUserBanned(c.Param("address"), time.Now().UTC())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal error"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"address": c.Param("address"), "banned": banned})
	})

	group.GET("/actions", func(c *gin.Context) {
		limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
		actions, err := a.Users.RecentActions(limit)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal error"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"actions": actions})
	})

	group.POST("/nfts", func(c *gin.Context) {
		var nft models.NFTRecord
		if err := c.ShouldBindJSON(&nft); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
			return
		}
		res, err := a.NFTs.ListNFT(nft)
		a.respond(c, res, err)
	})

	nftAction := func(fn func(id string) (moderation.Result, error)) gin.HandlerFunc {
		return func(c *gin.Context) {
			res, err := fn(c.Param("id"))
			a.respond(c, res, err)
		}
	}
	group.POST("/nfts/:id/hide", nftAction(a.NFTs.HideNFT))
	group.POST("/nfts/:id/unhide", nftAction(a.NFTs.UnhideNFT))
	group.POST("/nfts/:id/unflag", nftAction(a.NFTs.UnflagNFT))
	group.POST("/nfts/:id/feature", nftAction(a.NFTs.FeatureNFT))
	group.POST("/nfts/:id/unfeature", nftAction(a.NFTs.UnfeatureNFT))
	group.POST("/nfts/:id/burn", nftAction(a.NFTs.DeleteNFT))

	group.POST("/nfts/:id/flag", func(c *gin.Context) {
		var req struct {
			Reason string `json:"reason"`
		}
		_ = c.ShouldBindJSON(&req)
		res, err := a.NFTs.FlagNFT(c.Param("id"), req.Reason)
		a.respond(c, res, err)
	})

	group.POST("/nfts/:id/purchase", func(c *gin.Context) {
		var req purchaseRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
			return
		}
		res, err := a.NFTs.RecordPurchase(c.Param("id"), req.Buyer)
		a.respond(c, res, err)
	})

	group.GET("/verification/pending", func(c *gin.Context) {
		pending, err := a.Verification.PendingRequests()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal error"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"requests": pending})
	})

	group.POST("/verification/:id/approve", func(c *gin.Context) {
		var req verificationDecisionRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
			return
		}
		res, err := a.Verification.ApproveRequest(c.Param("id"), req.Admin)
		a.respond(c, res, err)
	})

	group.POST("/verification/:id/reject", func(c *gin.Context) {
		var req verificationDecisionRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
			return
		}
		res, err := a.Verification.RejectRequest(c.Param("id"), req.Admin, req.Reason)
		a.respond(c, res, err)
	})

	group.POST("/verification/revoke", func(c *gin.Context) {
		var req addressRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
			return
		}
		res, err := a.Verification.RevokeVerification(req.Address, req.Admin)
		a.respond(c, res, err)
	})

	a.registerWhitelistRoutes(group)

	group.POST("/featured", func(c *gin.Context) {
		var req featureRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
			return
		}
		res, err := a.Featured.Feature(req.CollectionID, req.Priority, req.ExpiresAt)
		a.respond(c, res, err)
	})

	group.DELETE("/featured/:id", func(c *gin.Context) {
		res, err := a.Featured.Unfeature(c.Param("id"))
		a.respond(c, res, err)
	})

	group.POST("/fees", a.handleSetFees)
	group.POST("/price/refresh", a.handleRefreshRate)
}

// whitelistByName resolves the :list path parameter.
func (a *API) whitelistByName(name string) *moderation.Whitelist {
	switch name {
	case "storage":
		return a.StorageWL
	case "marketplace":
		return a.MarketWL
	default:
		return nil
	}
}

func (a *API) registerWhitelistRoutes(group *gin.RouterGroup) {
	withList := func(fn func(c *gin.Context, wl *moderation.Whitelist)) gin.HandlerFunc {
		return func(c *gin.Context) {
			wl := a.whitelistByName(c.Param("list"))
			if wl == nil {
				c.JSON(http.StatusNotFound, gin.H{"error": "Unknown whitelist"})
				return
			}
			fn(c, wl)
		}
	}

	group.POST("/whitelist/:list/add", withList(func(c *gin.Context, wl *moderation.Whitelist) {
		var req addressRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
			return
		}
		res, err := wl.Add(req.Address, req.Admin)
		a.respond(c, res, err)
	}))

	group.POST("/whitelist/:list/remove", withList(func(c *gin.Context, wl *moderation.Whitelist) {
		var req addressRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
			return
		}
		res, err := wl.Remove(req.Address, req.Admin)
		a.respond(c, res, err)
	}))

	group.POST("/whitelist/:list/bulk", withList(func(c *gin.Context, wl *moderation.Whitelist) {
		var req bulkImportRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
			return
		}
		report, err := wl.BulkImport(req.Addresses, req.Admin)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal error"})
			return
		}
		c.JSON(http.StatusOK, report)
	}))

	group.GET("/whitelist/:list/export", withList(func(c *gin.Context, wl *moderation.Whitelist) {
		entries, err := wl.Export()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal error"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"entries": entries})
	}))

	group.GET("/whitelist/:list/contains", withList(func(c *gin.Context, wl *moderation.Whitelist) {
		address := c.Query("address")
		if address == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "address query parameter is required"})
			return
		}
		member, err := wl.Contains(address)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal error"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"address": address, "whitelisted": member})
	}))
}
