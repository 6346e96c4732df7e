package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// GameServer is an advertised private game server. When a server expires the
// sweep clears both is_premium and is_active.
type GameServer struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	Name       string             `bson:"name" json:"name"`
	Season     int                `bson:"season" json:"season"`
	Part       int                `bson:"part" json:"part"`
	ExpRate    int                `bson:"exp_rate" json:"exp_rate"`
	Features   []string           `bson:"features" json:"features"`
	Banner     string             `bson:"banner" json:"banner"` // S3 key
	Website    string             `bson:"website" json:"website"`
	IsActive   bool               `bson:"is_active" json:"is_active"`
	IsPremium  bool               `bson:"is_premium" json:"is_premium"`
	ClickCount int64              `bson:"click_count" json:"click_count"`
	OpensAt    *time.Time         `bson:"opens_at,omitempty" json:"opens_at,omitempty"`
	ExpiresAt  *time.Time         `bson:"expires_at,omitempty" json:"expires_at,omitempty"`
	CreatedAt  time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt  time.Time          `bson:"updated_at" json:"updated_at"`
}

// PremiumTextServer is a paid text-only server mention rotated in the sidebar.
type PremiumTextServer struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	Name         string             `bson:"name" json:"name"`
	Website      string             `bson:"website" json:"website"`
	DisplayOrder int                `bson:"display_order" json:"display_order"`
	IsActive     bool               `bson:"is_active" json:"is_active"`
	ExpiresAt    *time.Time         `bson:"expires_at,omitempty" json:"expires_at,omitempty"`
	CreatedAt    time.Time          `bson:"created_at" json:"created_at"`
}
