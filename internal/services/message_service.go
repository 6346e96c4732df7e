package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/ookayiztall/mu-nexus-hub-sub001/internal/config"
	"github.com/ookayiztall/mu-nexus-hub-sub001/internal/db"
	"github.com/ookayiztall/mu-nexus-hub-sub001/internal/models"
)

// ErrEmptyMessage signals a message with no content after trimming.
var ErrEmptyMessage = errors.New("message content is empty")

// IMessageService handles buyer/seller contact threads.
type IMessageService interface {
	SendMessage(ctx context.Context, senderID, receiverID, content string, listingID *primitive.ObjectID) (*models.Message, error)
	GetConversation(ctx context.Context, userA, userB string) ([]models.Message, error)
	GetConversationsForUser(ctx context.Context, userID string) ([]models.Message, error)
}

const messagesCollection = "messages"

type messageService struct {
	db  *mongo.Database
	cfg *config.Config
}

// NewMessageService creates a new MessageService.
func NewMessageService(db *mongo.Database, cfg *config.Config) IMessageService {
	return &messageService{db: db, cfg: cfg}
}

func (s *messageService) SendMessage(ctx context.Context, senderID, receiverID, content string, listingID *primitive.ObjectID) (*models.Message, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, ErrEmptyMessage
	}

	msg := &models.Message{
		ID:             primitive.NewObjectID(),
		ConversationID: models.ConversationKey(senderID, receiverID),
		SenderID:       senderID,
		ReceiverID:     receiverID,
		Content:        content,
		ListingID:      listingID,
		CreatedAt:      time.Now().UTC(),
	}

	err := db.Try(func() error {
		_, insertErr := s.db.Collection(messagesCollection).InsertOne(ctx, msg)
		return insertErr
	})
	if err != nil {
		return nil, fmt.Errorf("failed to insert message: %w", err)
	}
	return msg, nil
}

// GetConversation returns the full thread between two users, oldest first.
func (s *messageService) GetConversation(ctx context.Context, userA, userB string) ([]models.Message, error) {
	filter := bson.M{"conversation_id": models.ConversationKey(userA, userB)}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})

	cursor, err := s.db.Collection(messagesCollection).Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query conversation: %w", err)
	}
	defer cursor.Close(ctx)

	var messages []models.Message
	if err := cursor.All(ctx, &messages); err != nil {
		return nil, fmt.Errorf("failed to decode messages: %w", err)
	}
	return messages, nil
}

// GetConversationsForUser returns the newest message of each thread the user
// participates in, newest thread first.
func (s *messageService) GetConversationsForUser(ctx context.Context, userID string) ([]models.Message, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"$or": []bson.M{{"sender_id": userID}, {"receiver_id": userID}}}}},
		{{Key: "$sort", Value: bson.D{{Key: "created_at", Value: -1}}}},
		{{Key: "$group", Value: bson.M{"_id": "$conversation_id", "latest": bson.M{"$first": "$$ROOT"}}}},
		{{Key: "$replaceRoot", Value: bson.M{"newRoot": "$latest"}}},
		{{Key: "$sort", Value: bson.D{{Key: "created_at", Value: -1}}}},
	}

	cursor, err := s.db.Collection(messagesCollection).Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate conversations for user %s: %w", userID, err)
	}
	defer cursor.Close(ctx)

	var messages []models.Message
	if err := cursor.All(ctx, &messages); err != nil {
		return nil, fmt.Errorf("failed to decode conversations: %w", err)
	}
	return messages, nil
}
