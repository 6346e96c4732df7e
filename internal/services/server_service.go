package services

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/ookayiztall/mu-nexus-hub-sub001/internal/config"
	"github.com/ookayiztall/mu-nexus-hub-sub001/internal/db"
	"github.com/ookayiztall/mu-nexus-hub-sub001/internal/models"
)

// IServerService defines game server listing operations.
type IServerService interface {
	CreateServer(ctx context.Context, server *models.GameServer) (*models.GameServer, error)
	GetActiveServers(ctx context.Context) ([]models.GameServer, error)
	GetActiveTextServers(ctx context.Context) ([]models.PremiumTextServer, error)
}

const (
	serversCollection     = "game_servers"
	textServersCollection = "premium_text_servers"
)

type serverService struct {
	db  *mongo.Database
	cfg *config.Config
}

// NewServerService creates a new ServerService.
func NewServerService(db *mongo.Database, cfg *config.Config) IServerService {
	return &serverService{db: db, cfg: cfg}
}

func (s *serverService) CreateServer(ctx context.Context, server *models.GameServer) (*models.GameServer, error) {
	now := time.Now().UTC()
	server.ID = primitive.NewObjectID()
	server.CreatedAt = now
	server.UpdatedAt = now

	err := db.Try(func() error {
		_, insertErr := s.db.Collection(serversCollection).InsertOne(ctx, server)
		return insertErr
	})
	if err != nil {
		return nil, fmt.Errorf("failed to insert game server: %w", err)
	}
	return server, nil
}

// GetActiveServers returns active, non-expired servers with premium entries
// first, then newest first within each group.
func (s *serverService) GetActiveServers(ctx context.Context) ([]models.GameServer, error) {
	now := time.Now().UTC()
	filter := bson.M{
		"is_active": true,
		"$or": []bson.M{
			{"expires_at": nil},
			{"expires_at": bson.M{"$exists": false}},
			{"expires_at": bson.M{"$gt": now}},
		},
	}
	opts := options.Find().SetSort(bson.D{
		{Key: "is_premium", Value: -1},
		{Key: "created_at", Value: -1},
	})

	cursor, err := s.db.Collection(serversCollection).Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query active servers: %w", err)
	}
	defer cursor.Close(ctx)

	var servers []models.GameServer
	if err := cursor.All(ctx, &servers); err != nil {
		return nil, fmt.Errorf("failed to decode servers: %w", err)
	}
	return servers, nil
}

// GetActiveTextServers returns the sidebar text mentions in display order.
func (s *serverService) GetActiveTextServers(ctx context.Context) ([]models.PremiumTextServer, error) {
	now := time.Now().UTC()
	filter := bson.M{
		"is_active": true,
		"$or": []bson.M{
			{"expires_at": nil},
			{"expires_at": bson.M{"$exists": false}},
			{"expires_at": bson.M{"$gt": now}},
		},
	}
	opts := options.Find().SetSort(bson.D{{Key: "display_order", Value: 1}})

	cursor, err := s.db.Collection(textServersCollection).Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query text servers: %w", err)
	}
	defer cursor.Close(ctx)

	var servers []models.PremiumTextServer
	if err := cursor.All(ctx, &servers); err != nil {
		return nil, fmt.Errorf("failed to decode text servers: %w", err)
	}
	return servers, nil
}
