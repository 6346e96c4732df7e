package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ListingCategory is the stored category value of a marketplace listing.
type ListingCategory string

const (
	CategoryServerFiles ListingCategory = "server_files"
	CategoryWebsites    ListingCategory = "websites"
	CategoryTools       ListingCategory = "tools"
	CategoryDesigns     ListingCategory = "designs"
	CategoryServices    ListingCategory = "services"
	CategoryOther       ListingCategory = "other"
)

// Listing represents a marketplace listing (server files, tools, services...).
// A listing is visible when it is published, active and either has no expiry
// or its expiry lies in the future.
type Listing struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	SellerID    string             `bson:"seller_id" json:"seller_id"`
	Title       string             `bson:"title" json:"title"`
	Description string             `bson:"description" json:"description"`
	Category    ListingCategory    `bson:"category" json:"category"`
	PriceUSD    *float64           `bson:"price_usd,omitempty" json:"price_usd,omitempty"`
	Website     string             `bson:"website" json:"website"`
	Image       string             `bson:"image" json:"image"` // S3 key
	IsPublished bool               `bson:"is_published" json:"is_published"`
	IsActive    bool               `bson:"is_active" json:"is_active"`
	ExpiresAt   *time.Time         `bson:"expires_at,omitempty" json:"expires_at,omitempty"`
	CreatedAt   time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt   time.Time          `bson:"updated_at" json:"updated_at"`
}

// Visible reports whether the listing may appear in public feeds at the given
// instant.
func (l *Listing) Visible(now time.Time) bool {
	if !l.IsPublished || !l.IsActive {
		return false
	}
	return l.ExpiresAt == nil || l.ExpiresAt.After(now)
}
