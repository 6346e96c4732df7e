package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ookayiztall/mu-nexus-hub-sub001/internal/api/middleware"
	"github.com/ookayiztall/mu-nexus-hub-sub001/internal/services"
)

// ConnectHandler handles seller payout account management.
type ConnectHandler struct {
	connectService services.IConnectService
}

// NewConnectHandler creates a new ConnectHandler.
func NewConnectHandler(connectService services.IConnectService) *ConnectHandler {
	return &ConnectHandler{connectService: connectService}
}

// StartOnboarding handles POST /v1/connect/account
func (h *ConnectHandler) StartOnboarding(c *gin.Context) {
	// The body is optional: without explicit URLs the configured
	// onboarding redirects are used.
	var req struct {
		RefreshURL string `json:"refresh_url"`
		ReturnURL  string `json:"return_url"`
	}
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
			return
		}
	}

	url, err := h.connectService.StartOnboarding(c.Request.Context(), callerIdentity(c), req.RefreshURL, req.ReturnURL)
	if err != nil {
		if errors.Is(err, services.ErrPaymentNotConfigured) {
			needsConfiguration(c)
			return
		}
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to start onboarding"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"url": url})
}

// LoginLink handles POST /v1/connect/login-link
func (h *ConnectHandler) LoginLink(c *gin.Context) {
	url, err := h.connectService.LoginLink(c.Request.Context(), c.GetString(middleware.ContextKeyUserID))
	if err != nil {
		switch {
		case errors.Is(err, services.ErrPaymentNotConfigured):
			needsConfiguration(c)
		case errors.Is(err, services.ErrNoConnectAccount):
			c.JSON(http.StatusNotFound, gin.H{"error": "No connected account"})
		default:
			_ = c.Error(err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create login link"})
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"url": url})
}

// Status handles GET /v1/connect/status
func (h *ConnectHandler) Status(c *gin.Context) {
	status, err := h.connectService.Status(c.Request.Context(), c.GetString(middleware.ContextKeyUserID))
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch account status"})
		return
	}
	c.JSON(http.StatusOK, status)
}
