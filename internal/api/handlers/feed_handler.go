package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ookayiztall/mu-nexus-hub-sub001/internal/models"
	"github.com/ookayiztall/mu-nexus-hub-sub001/internal/services"
)

// FeedHandler serves the public content feeds the site renders.
type FeedHandler struct {
	listingService services.IListingService
	adService      services.IAdService
	serverService  services.IServerService
	promoService   services.IPromoService
}

// NewFeedHandler creates a new FeedHandler.
func NewFeedHandler(listingService services.IListingService, adService services.IAdService, serverService services.IServerService, promoService services.IPromoService) *FeedHandler {
	return &FeedHandler{
		listingService: listingService,
		adService:      adService,
		serverService:  serverService,
		promoService:   promoService,
	}
}

// GetListings handles GET /v1/listings?q=...&category=...
func (h *FeedHandler) GetListings(c *gin.Context) {
	listings, err := h.listingService.GetVisibleListings(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch listings"})
		return
	}

	filtered := services.FilterListings(listings, c.Query("q"), c.Query("category"))
	c.JSON(http.StatusOK, gin.H{"data": filtered})
}

// GetAds handles GET /v1/ads?type=marketplace|services
func (h *FeedHandler) GetAds(c *gin.Context) {
	adType := models.AdType(c.DefaultQuery("type", string(models.AdTypeMarketplace)))
	if adType != models.AdTypeMarketplace && adType != models.AdTypeServices {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown ad type"})
		return
	}

	ads, err := h.adService.GetActiveAds(c.Request.Context(), adType)
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch ads"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": ads})
}

// GetServers handles GET /v1/servers
func (h *FeedHandler) GetServers(c *gin.Context) {
	servers, err := h.serverService.GetActiveServers(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch servers"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": servers})
}

// GetTextServers handles GET /v1/text-servers
func (h *FeedHandler) GetTextServers(c *gin.Context) {
	servers, err := h.serverService.GetActiveTextServers(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch text servers"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": servers})
}

// GetBanners handles GET /v1/banners. Always answers 200: fetch problems
// degrade to the built-in fallback set.
func (h *FeedHandler) GetBanners(c *gin.Context) {
	banners, _ := h.promoService.GetBanners(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{"data": banners})
}

// GetPromos handles GET /v1/promos?type=discount|event
func (h *FeedHandler) GetPromos(c *gin.Context) {
	var promoType *models.PromoType
	if raw := c.Query("type"); raw != "" {
		pt := models.PromoType(raw)
		if pt != models.PromoDiscount && pt != models.PromoEvent {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown promo type"})
			return
		}
		promoType = &pt
	}

	promos, _ := h.promoService.GetPromos(c.Request.Context(), promoType)

	// Attach the derived navigation target so clients need no link logic
	type promoView struct {
		models.RotatingPromo
		TargetURL string `json:"target_url"`
	}
	views := make([]promoView, len(promos))
	for i, p := range promos {
		views[i] = promoView{RotatingPromo: p, TargetURL: p.TargetURL()}
	}
	c.JSON(http.StatusOK, gin.H{"data": views})
}

// GetCurrentBanner handles GET /v1/banners/current, serving whatever item the
// server-side rotor points at.
func (h *FeedHandler) GetCurrentBanner(c *gin.Context) {
	banner, ok := h.promoService.CurrentBanner()
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "No banners loaded"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": banner})
}

// GetCurrentPromo handles GET /v1/promos/current.
func (h *FeedHandler) GetCurrentPromo(c *gin.Context) {
	promo, ok := h.promoService.CurrentPromo()
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "No promos loaded"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": gin.H{"promo": promo, "target_url": promo.TargetURL()}})
}
