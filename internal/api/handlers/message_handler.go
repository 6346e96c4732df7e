package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/ookayiztall/mu-nexus-hub-sub001/internal/api/middleware"
	"github.com/ookayiztall/mu-nexus-hub-sub001/internal/services"
)

// MessageHandler handles buyer/seller contact threads.
type MessageHandler struct {
	messageService services.IMessageService
}

// NewMessageHandler creates a new MessageHandler.
func NewMessageHandler(messageService services.IMessageService) *MessageHandler {
	return &MessageHandler{messageService: messageService}
}

// SendMessage handles POST /v1/messages
func (h *MessageHandler) SendMessage(c *gin.Context) {
	var req struct {
		ReceiverID string `json:"receiver_id" binding:"required"`
		Content    string `json:"content" binding:"required"`
		ListingID  string `json:"listing_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	var listingID *primitive.ObjectID
	if req.ListingID != "" {
		id, err := primitive.ObjectIDFromHex(req.ListingID)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid listing id"})
			return
		}
		listingID = &id
	}

	senderID := c.GetString(middleware.ContextKeyUserID)
	if senderID == req.ReceiverID {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Cannot message yourself"})
		return
	}

	msg, err := h.messageService.SendMessage(c.Request.Context(), senderID, req.ReceiverID, req.Content, listingID)
	if err != nil {
		if errors.Is(err, services.ErrEmptyMessage) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Message content is empty"})
			return
		}
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to send message"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"data": msg})
}

// GetConversation handles GET /v1/messages/:userID
func (h *MessageHandler) GetConversation(c *gin.Context) {
	other := c.Param("userID")
	messages, err := h.messageService.GetConversation(c.Request.Context(), c.GetString(middleware.ContextKeyUserID), other)
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch conversation"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": messages})
}

// ListConversations handles GET /v1/messages
func (h *MessageHandler) ListConversations(c *gin.Context) {
	latest, err := h.messageService.GetConversationsForUser(c.Request.Context(), c.GetString(middleware.ContextKeyUserID))
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch conversations"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": latest})
}
