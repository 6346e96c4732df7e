package models

import (
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PremiumBanner is a homepage carousel banner. Banners are shuffled at fetch
// time for fair rotation.
type PremiumBanner struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	Title        string             `bson:"title" json:"title"`
	Website      string             `bson:"website" json:"website"`
	Image        string             `bson:"image" json:"image"` // S3 key or absolute URL
	DisplayOrder int                `bson:"display_order" json:"display_order"`
	IsActive     bool               `bson:"is_active" json:"is_active"`
	CreatedAt    time.Time          `bson:"created_at" json:"created_at"`
}

// PromoType distinguishes the two rotating ticker variants.
type PromoType string

const (
	PromoDiscount PromoType = "discount"
	PromoEvent    PromoType = "event"
)

// RotatingPromo is a short ticker message. Expired promos are filtered
// client-side by comparing ExpiresAt to the current time even when the store
// still marks them active.
type RotatingPromo struct {
	ID        primitive.ObjectID  `bson:"_id,omitempty" json:"id,omitempty"`
	Text      string              `bson:"text" json:"text"`
	Highlight string              `bson:"highlight" json:"highlight"`
	Link      string              `bson:"link" json:"link"`
	PromoType PromoType           `bson:"promo_type" json:"promo_type"`
	ListingID *primitive.ObjectID `bson:"listing_id,omitempty" json:"listing_id,omitempty"`
	IsActive  bool                `bson:"is_active" json:"is_active"`
	ExpiresAt *time.Time          `bson:"expires_at,omitempty" json:"expires_at,omitempty"`
	CreatedAt time.Time           `bson:"created_at" json:"created_at"`
}

// Expired reports whether the promo's expiry has passed.
func (p *RotatingPromo) Expired(now time.Time) bool {
	return p.ExpiresAt != nil && !p.ExpiresAt.After(now)
}

// TargetURL derives the promo's navigation target: an internal listing page if
// it references a listing, otherwise its own link, otherwise empty (no-op).
func (p *RotatingPromo) TargetURL() string {
	if p.ListingID != nil {
		return fmt.Sprintf("/marketplace/listing/%s", p.ListingID.Hex())
	}
	return p.Link
}

// FallbackBanners ships with the binary so the homepage carousel is never
// empty on a fresh, unseeded deployment.
func FallbackBanners() []PremiumBanner {
	return []PremiumBanner{
		{Title: "Advertise your server here", Website: "/pricing", Image: "/static/banners/placeholder-1.jpg", DisplayOrder: 1, IsActive: true},
		{Title: "Season 19 launch specials", Website: "/servers", Image: "/static/banners/placeholder-2.jpg", DisplayOrder: 2, IsActive: true},
		{Title: "Sell your files on the marketplace", Website: "/marketplace", Image: "/static/banners/placeholder-3.jpg", DisplayOrder: 3, IsActive: true},
	}
}

// FallbackPromos is the built-in ticker content used when the store has no
// active promos.
func FallbackPromos() []RotatingPromo {
	return []RotatingPromo{
		{Text: "List your server for free", Highlight: "FREE", Link: "/publish", PromoType: PromoEvent, IsActive: true},
		{Text: "Gold VIP ads from $19.99", Highlight: "VIP", Link: "/pricing", PromoType: PromoDiscount, IsActive: true},
	}
}
