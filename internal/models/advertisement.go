package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AdType distinguishes the two advertising placements.
type AdType string

const (
	AdTypeMarketplace AdType = "marketplace"
	AdTypeServices    AdType = "services"
)

// VipLevel controls the visual badge and rotation priority of an advertisement.
type VipLevel string

const (
	VipNone    VipLevel = "none"
	VipGold    VipLevel = "gold"
	VipDiamond VipLevel = "diamond"
)

// Rank maps a VIP level to its rotation priority; higher sorts first.
func (v VipLevel) Rank() int {
	switch v {
	case VipDiamond:
		return 2
	case VipGold:
		return 1
	default:
		return 0
	}
}

// Advertisement is a paid banner placement. Inactive or expired ads are
// excluded from rotation.
type Advertisement struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	Title         string             `bson:"title" json:"title"`
	Description   string             `bson:"description" json:"description"`
	Website       string             `bson:"website" json:"website"`
	Banner        string             `bson:"banner" json:"banner"` // S3 key
	AdType        AdType             `bson:"ad_type" json:"ad_type"`
	VipLevel      VipLevel           `bson:"vip_level" json:"vip_level"`
	RotationOrder int                `bson:"rotation_order" json:"rotation_order"`
	ClickCount    int64              `bson:"click_count" json:"click_count"`
	IsActive      bool               `bson:"is_active" json:"is_active"`
	ExpiresAt     *time.Time         `bson:"expires_at,omitempty" json:"expires_at,omitempty"`
	CreatedAt     time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt     time.Time          `bson:"updated_at" json:"updated_at"`
}
