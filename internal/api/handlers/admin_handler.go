package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/ookayiztall/mu-nexus-hub-sub001/internal/api/middleware"
	"github.com/ookayiztall/mu-nexus-hub-sub001/internal/models"
	"github.com/ookayiztall/mu-nexus-hub-sub001/internal/services"
	"github.com/ookayiztall/mu-nexus-hub-sub001/internal/storage"
)

// TaskEnqueuer is the background queue surface the API needs.
type TaskEnqueuer interface {
	EnqueueEmail(ctx context.Context, to string, emailType models.EmailType, data map[string]interface{}) error
	EnqueueBannerProcess(ctx context.Context, s3Key, adID string) error
}

// AdminHandler handles runtime settings, operational triggers and banner
// uploads.
type AdminHandler struct {
	settingsService services.ISettingsService
	sweepService    services.ISweepService
	clickService    services.IClickService
	catalogService  services.ICatalogService
	storage         storage.IS3Storage
	enqueuer        TaskEnqueuer
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(settingsService services.ISettingsService, sweepService services.ISweepService, clickService services.IClickService, catalogService services.ICatalogService, s3 storage.IS3Storage, enqueuer TaskEnqueuer) *AdminHandler {
	return &AdminHandler{
		settingsService: settingsService,
		sweepService:    sweepService,
		clickService:    clickService,
		catalogService:  catalogService,
		storage:         s3,
		enqueuer:        enqueuer,
	}
}

// GetPublicConfig handles GET /v1/config
func (h *AdminHandler) GetPublicConfig(c *gin.Context) {
	public, err := h.settingsService.GetAllPublic(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch configuration"})
		return
	}
	c.JSON(http.StatusOK, public)
}

// GetPackages handles GET /v1/packages
func (h *AdminHandler) GetPackages(c *gin.Context) {
	packages, err := h.catalogService.ListPackages(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch pricing packages"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": packages})
}

// SetConfig handles POST /v1/admin/config
func (h *AdminHandler) SetConfig(c *gin.Context) {
	var req struct {
		Key    string      `json:"key" binding:"required"`
		Value  interface{} `json:"value" binding:"required"`
		Public bool        `json:"public"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	if err := h.settingsService.Set(c.Request.Context(), req.Key, req.Value, req.Public); err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save setting"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// TriggerSweep handles POST /v1/admin/sweep, running the expiration pass
// immediately instead of waiting for the schedule.
func (h *AdminHandler) TriggerSweep(c *gin.Context) {
	result, err := h.sweepService.Run(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Sweep failed"})
		return
	}
	c.JSON(http.StatusOK, result)
}

// FlushClicks handles POST /v1/admin/flush-clicks.
func (h *AdminHandler) FlushClicks(c *gin.Context) {
	applied, err := h.clickService.Flush(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Click flush failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"applied": applied})
}

// BannerUploadURL handles POST /v1/admin/banners/upload-url: a presigned PUT
// the client uploads the raw banner to, plus a queued normalization pass.
func (h *AdminHandler) BannerUploadURL(c *gin.Context) {
	var req struct {
		Filename    string `json:"filename" binding:"required"`
		ContentType string `json:"content_type" binding:"required"`
		AdID        string `json:"ad_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}
	if req.AdID != "" {
		if _, err := primitive.ObjectIDFromHex(req.AdID); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ad id"})
			return
		}
	}

	userID := c.GetString(middleware.ContextKeyUserID)
	uploadURL, key, err := h.storage.GenerateBannerUploadURL(c.Request.Context(), userID, req.Filename, req.ContentType)
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate upload URL"})
		return
	}

	if req.AdID != "" && h.enqueuer != nil {
		if err := h.enqueuer.EnqueueBannerProcess(c.Request.Context(), key, req.AdID); err != nil {
			_ = c.Error(err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to queue banner processing"})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"upload_url": uploadURL, "key": key})
}

// SendEmail handles POST /v1/admin/email, queueing one transactional email.
func (h *AdminHandler) SendEmail(c *gin.Context) {
	var req struct {
		To   string                 `json:"to" binding:"required,email"`
		Type string                 `json:"type" binding:"required"`
		Data map[string]interface{} `json:"data"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	emailType := models.EmailType(req.Type)
	switch emailType {
	case models.EmailWelcome, models.EmailPaymentSuccess, models.EmailPasswordReset:
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown email type"})
		return
	}

	if err := h.enqueuer.EnqueueEmail(c.Request.Context(), req.To, emailType, req.Data); err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to queue email"})
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"status": "queued"})
}
