package handlers

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/ookayiztall/mu-nexus-hub-sub001/internal/services"
)

// ClickHandler records banner clicks.
type ClickHandler struct {
	clickService services.IClickService
}

// NewClickHandler creates a new ClickHandler.
func NewClickHandler(clickService services.IClickService) *ClickHandler {
	return &ClickHandler{clickService: clickService}
}

// TrackClick handles POST /v1/click. The response never waits on the counter:
// the increment runs in the background and a failure only logs, because a
// click must never block or break the navigation that triggered it.
func (h *ClickHandler) TrackClick(c *gin.Context) {
	var req struct {
		AdID     string `json:"ad_id"`
		ServerID string `json:"server_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	var kind services.ClickKind
	var raw string
	switch {
	case req.AdID != "" && req.ServerID != "":
		c.JSON(http.StatusBadRequest, gin.H{"error": "Provide either ad_id or server_id, not both"})
		return
	case req.AdID != "":
		kind, raw = services.ClickAd, req.AdID
	case req.ServerID != "":
		kind, raw = services.ClickServer, req.ServerID
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "Either ad_id or server_id is required"})
		return
	}

	id, err := primitive.ObjectIDFromHex(raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid id"})
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := h.clickService.Track(ctx, kind, id); err != nil {
			log.Printf("Failed to track %s click on %s: %v", kind, id.Hex(), err)
		}
	}()

	c.JSON(http.StatusAccepted, gin.H{"success": true})
}
