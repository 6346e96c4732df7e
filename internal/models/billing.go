package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PricingPackage is an immutable catalog entry referenced by checkout.
type PricingPackage struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	Name         string             `bson:"name" json:"name"`
	Description  string             `bson:"description" json:"description"`
	PriceCents   int64              `bson:"price_cents" json:"price_cents"`
	DurationDays int                `bson:"duration_days" json:"duration_days"`
	ProductType  ProductType        `bson:"product_type" json:"product_type"`
}

// PaymentStatus is the lifecycle state of a payment row.
type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentCompleted PaymentStatus = "completed"
)

// PaymentProvider identifies which provider handled a payment.
type PaymentProvider string

const (
	ProviderStripe PaymentProvider = "stripe"
	ProviderPayPal PaymentProvider = "paypal"
)

// Payment is a flat audit row, one per checkout attempt. Status only ever
// moves pending -> completed.
type Payment struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	UserID       string             `bson:"user_id" json:"user_id"`
	AmountCents  int64              `bson:"amount_cents" json:"amount_cents"`
	Currency     string             `bson:"currency" json:"currency"`
	Status       PaymentStatus      `bson:"status" json:"status"`
	Provider     PaymentProvider    `bson:"provider" json:"provider"`
	ProductType  ProductType        `bson:"product_type" json:"product_type"`
	ProductID    string             `bson:"product_id" json:"product_id"`
	PackageID    string             `bson:"package_id,omitempty" json:"package_id,omitempty"`
	DurationDays int                `bson:"duration_days,omitempty" json:"duration_days,omitempty"`
	SessionID    string             `bson:"session_id,omitempty" json:"session_id,omitempty"`   // Stripe checkout session
	OrderID      string             `bson:"order_id,omitempty" json:"order_id,omitempty"`       // PayPal order
	CaptureID    string             `bson:"capture_id,omitempty" json:"capture_id,omitempty"`   // PayPal capture
	Environment  string             `bson:"environment,omitempty" json:"environment,omitempty"` // sandbox or live
	CreatedAt    time.Time          `bson:"created_at" json:"created_at"`
	CompletedAt  *time.Time         `bson:"completed_at,omitempty" json:"completed_at,omitempty"`
}

// SlotPurchase grants a seller a fixed homepage advertising position for a
// time-boxed duration. It is activated only on successful capture.
type SlotPurchase struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	UserID      string             `bson:"user_id" json:"user_id"`
	SlotID      string             `bson:"slot_id" json:"slot_id"`
	IsActive    bool               `bson:"is_active" json:"is_active"`
	CompletedAt *time.Time         `bson:"completed_at,omitempty" json:"completed_at,omitempty"`
	ExpiresAt   *time.Time         `bson:"expires_at,omitempty" json:"expires_at,omitempty"`
	CreatedAt   time.Time          `bson:"created_at" json:"created_at"`
}

// ListingPurchaseStatus tracks a listing purchase through capture.
type ListingPurchaseStatus string

const (
	ListingPurchasePending   ListingPurchaseStatus = "pending"
	ListingPurchaseCompleted ListingPurchaseStatus = "completed"
)

// ListingPurchase records a buyer paying for a marketplace listing.
type ListingPurchase struct {
	ID          primitive.ObjectID    `bson:"_id,omitempty" json:"id,omitempty"`
	UserID      string                `bson:"user_id" json:"user_id"`
	ListingID   string                `bson:"listing_id" json:"listing_id"`
	Status      ListingPurchaseStatus `bson:"status" json:"status"`
	CompletedAt *time.Time            `bson:"completed_at,omitempty" json:"completed_at,omitempty"`
	CreatedAt   time.Time             `bson:"created_at" json:"created_at"`
}

// SellerProfile tracks a seller's Stripe Connect sub-account. Onboarding
// completion gates balance and payout visibility.
type SellerProfile struct {
	ID                       primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	UserID                   string             `bson:"user_id" json:"user_id"`
	Email                    string             `bson:"email" json:"email"`
	StripeAccountID          string             `bson:"stripe_account_id,omitempty" json:"stripe_account_id,omitempty"`
	StripeOnboardingComplete bool               `bson:"stripe_onboarding_complete" json:"stripe_onboarding_complete"`
	CreatedAt                time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt                time.Time          `bson:"updated_at" json:"updated_at"`
}
