package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/ookayiztall/mu-nexus-hub-sub001/internal/api/middleware"
	"github.com/ookayiztall/mu-nexus-hub-sub001/internal/services"
)

// CheckoutHandler handles checkout initiation and PayPal capture.
type CheckoutHandler struct {
	checkoutService services.ICheckoutService
	captureService  services.ICaptureService
}

// NewCheckoutHandler creates a new CheckoutHandler.
func NewCheckoutHandler(checkoutService services.ICheckoutService, captureService services.ICaptureService) *CheckoutHandler {
	return &CheckoutHandler{
		checkoutService: checkoutService,
		captureService:  captureService,
	}
}

func callerIdentity(c *gin.Context) services.Identity {
	return services.Identity{
		UserID: c.GetString(middleware.ContextKeyUserID),
		Email:  c.GetString(middleware.ContextKeyEmail),
	}
}

// needsConfiguration answers a 503 that the frontend renders as a
// "payments unavailable" notice rather than an error.
func needsConfiguration(c *gin.Context) {
	c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Payment provider is not configured", "needs_configuration": true})
}

// CreatePackageSession handles POST /v1/checkout/session
func (h *CheckoutHandler) CreatePackageSession(c *gin.Context) {
	var req struct {
		PackageID  string `json:"package_id" binding:"required"`
		ProductID  string `json:"product_id"`
		SuccessURL string `json:"success_url"`
		CancelURL  string `json:"cancel_url"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	packageID, err := primitive.ObjectIDFromHex(req.PackageID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid package id"})
		return
	}

	redirects := services.Redirects{SuccessURL: req.SuccessURL, CancelURL: req.CancelURL}
	sess, err := h.checkoutService.CreatePackageSession(c.Request.Context(), callerIdentity(c), packageID, req.ProductID, redirects)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrPaymentNotConfigured):
			needsConfiguration(c)
		case errors.Is(err, services.ErrPackageNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Pricing package not found"})
		default:
			_ = c.Error(err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to start checkout"})
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"session_id": sess.ID, "url": sess.URL})
}

// CreateListingSession handles POST /v1/checkout/listing
func (h *CheckoutHandler) CreateListingSession(c *gin.Context) {
	var req struct {
		ListingID  string `json:"listing_id" binding:"required"`
		SuccessURL string `json:"success_url"`
		CancelURL  string `json:"cancel_url"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	listingID, err := primitive.ObjectIDFromHex(req.ListingID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid listing id"})
		return
	}

	redirects := services.Redirects{SuccessURL: req.SuccessURL, CancelURL: req.CancelURL}
	sess, err := h.checkoutService.CreateListingSession(c.Request.Context(), callerIdentity(c), listingID, redirects)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrListingNotPurchasable):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Listing has no price and cannot be purchased"})
		case errors.Is(err, mongo.ErrNoDocuments):
			c.JSON(http.StatusNotFound, gin.H{"error": "Listing not found"})
		case errors.Is(err, services.ErrPaymentNotConfigured):
			needsConfiguration(c)
		default:
			_ = c.Error(err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to start checkout"})
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"session_id": sess.ID, "url": sess.URL})
}

// CapturePayPalOrder handles POST /v1/paypal/capture
func (h *CheckoutHandler) CapturePayPalOrder(c *gin.Context) {
	var req struct {
		OrderID string `json:"order_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	outcome, err := h.captureService.Capture(c.Request.Context(), req.OrderID)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrPaymentNotConfigured):
			needsConfiguration(c)
		case errors.Is(err, services.ErrMalformedReference):
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Order carries a malformed purchase reference"})
		case errors.Is(err, services.ErrNoPendingPurchase):
			c.JSON(http.StatusNotFound, gin.H{"error": "No pending purchase matches this order"})
		case errors.Is(err, services.ErrCaptureDeclined):
			c.JSON(http.StatusPaymentRequired, gin.H{"error": "Capture was declined by the provider"})
		default:
			_ = c.Error(err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to capture order"})
		}
		return
	}
	c.JSON(http.StatusOK, outcome)
}
