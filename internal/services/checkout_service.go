package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/ookayiztall/mu-nexus-hub-sub001/internal/config"
	"github.com/ookayiztall/mu-nexus-hub-sub001/internal/db"
	"github.com/ookayiztall/mu-nexus-hub-sub001/internal/models"
	"github.com/ookayiztall/mu-nexus-hub-sub001/internal/stripeclient"
)

// Identity carries the authenticated caller into checkout flows.
type Identity struct {
	UserID string
	Email  string
}

var (
	// ErrPaymentNotConfigured signals a provider secret key is absent; the API
	// layer maps it to a needs-configuration response rather than a failure.
	ErrPaymentNotConfigured = errors.New("payment provider is not configured")
	// ErrPackageNotFound signals an unknown pricing package id.
	ErrPackageNotFound = errors.New("pricing package not found")
	// ErrListingNotPurchasable signals a listing with no price set. Checkout
	// refuses it before any provider call.
	ErrListingNotPurchasable = errors.New("listing has no price and cannot be purchased")
)

// Redirects carries the per-request success/cancel URLs the provider sends
// the buyer back to. Empty fields fall back to the configured defaults.
type Redirects struct {
	SuccessURL string
	CancelURL  string
}

// ICheckoutService initiates hosted provider checkout sessions.
type ICheckoutService interface {
	CreatePackageSession(ctx context.Context, caller Identity, packageID primitive.ObjectID, productID string, redirects Redirects) (*stripeclient.Session, error)
	CreateListingSession(ctx context.Context, caller Identity, listingID primitive.ObjectID, redirects Redirects) (*stripeclient.Session, error)
}

const (
	paymentsCollection         = "payments"
	slotPurchasesCollection    = "slot_purchases"
	listingPurchasesCollection = "listing_purchases"
)

type checkoutService struct {
	db             *mongo.Database
	cfg            *config.Config
	stripe         stripeclient.IStripeClient
	catalogService ICatalogService
	listingService IListingService
}

// NewCheckoutService creates a new CheckoutService.
func NewCheckoutService(db *mongo.Database, cfg *config.Config, stripe stripeclient.IStripeClient, catalogService ICatalogService, listingService IListingService) ICheckoutService {
	return &checkoutService{
		db:             db,
		cfg:            cfg,
		stripe:         stripe,
		catalogService: catalogService,
		listingService: listingService,
	}
}

// CreatePackageSession starts a hosted checkout for a catalog package. The
// session carries user, package, product and duration metadata so the webhook
// or capture path can activate the purchase later. A pending purchase row and
// a pending payment audit row are persisted before the URL is returned.
// Without a product id the package id stands in as the purchase target.
func (s *checkoutService) CreatePackageSession(ctx context.Context, caller Identity, packageID primitive.ObjectID, productID string, redirects Redirects) (*stripeclient.Session, error) {
	if !s.stripe.Configured() {
		return nil, ErrPaymentNotConfigured
	}

	pkg, err := s.catalogService.GetPackage(ctx, packageID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrPackageNotFound
		}
		return nil, fmt.Errorf("failed to load package %s: %w", packageID.Hex(), err)
	}
	if productID == "" {
		productID = packageID.Hex()
	}

	customerID, err := s.stripe.FindOrCreateCustomer(ctx, caller.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve stripe customer: %w", err)
	}

	successURL, cancelURL := s.resolveRedirects(redirects)
	ref := models.PurchaseRef{Type: pkg.ProductType, ProductID: productID, UserID: caller.UserID}
	sess, err := s.stripe.CreateCheckoutSession(ctx, stripeclient.SessionParams{
		AmountCents:       pkg.PriceCents,
		Currency:          "usd",
		ProductName:       pkg.Name,
		CustomerID:        customerID,
		SuccessURL:        successURL,
		CancelURL:         cancelURL,
		ClientReferenceID: models.FormatPurchaseRef(ref),
		IdempotencyKey:    uuid.NewString(),
		Metadata: map[string]string{
			"user_id":       caller.UserID,
			"package_id":    packageID.Hex(),
			"product_id":    productID,
			"product_type":  string(pkg.ProductType),
			"duration_days": fmt.Sprintf("%d", pkg.DurationDays),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create checkout session: %w", err)
	}

	if pkg.ProductType == models.ProductSlot {
		if err := s.insertPendingSlotPurchase(ctx, caller.UserID, productID); err != nil {
			return nil, err
		}
	}

	if err := s.insertPendingPayment(ctx, &models.Payment{
		UserID:       caller.UserID,
		AmountCents:  pkg.PriceCents,
		Currency:     "usd",
		Provider:     models.ProviderStripe,
		ProductType:  pkg.ProductType,
		ProductID:    productID,
		PackageID:    packageID.Hex(),
		DurationDays: pkg.DurationDays,
		SessionID:    sess.ID,
	}); err != nil {
		return nil, err
	}
	return sess, nil
}

// CreateListingSession starts a hosted checkout for a priced marketplace
// listing. Listings without a price are rejected before any provider call.
func (s *checkoutService) CreateListingSession(ctx context.Context, caller Identity, listingID primitive.ObjectID, redirects Redirects) (*stripeclient.Session, error) {
	listing, err := s.listingService.FindListingByID(ctx, listingID)
	if err != nil {
		return nil, err
	}
	if listing.PriceUSD == nil || *listing.PriceUSD <= 0 {
		return nil, ErrListingNotPurchasable
	}

	if !s.stripe.Configured() {
		return nil, ErrPaymentNotConfigured
	}

	customerID, err := s.stripe.FindOrCreateCustomer(ctx, caller.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve stripe customer: %w", err)
	}

	amountCents := int64(math.Round(*listing.PriceUSD * 100))
	successURL, cancelURL := s.resolveRedirects(redirects)
	ref := models.PurchaseRef{Type: models.ProductListing, ProductID: listingID.Hex(), UserID: caller.UserID}
	sess, err := s.stripe.CreateCheckoutSession(ctx, stripeclient.SessionParams{
		AmountCents:       amountCents,
		Currency:          "usd",
		ProductName:       listing.Title,
		CustomerID:        customerID,
		SuccessURL:        successURL,
		CancelURL:         cancelURL,
		ClientReferenceID: models.FormatPurchaseRef(ref),
		IdempotencyKey:    uuid.NewString(),
		Metadata: map[string]string{
			"user_id":      caller.UserID,
			"product_id":   listingID.Hex(),
			"product_type": string(models.ProductListing),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create listing checkout session: %w", err)
	}

	now := time.Now().UTC()
	purchase := &models.ListingPurchase{
		ID:        primitive.NewObjectID(),
		UserID:    caller.UserID,
		ListingID: listingID.Hex(),
		Status:    models.ListingPurchasePending,
		CreatedAt: now,
	}
	if err := db.Try(func() error {
		_, insertErr := s.db.Collection(listingPurchasesCollection).InsertOne(ctx, purchase)
		return insertErr
	}); err != nil {
		return nil, fmt.Errorf("failed to record pending listing purchase: %w", err)
	}

	if err := s.insertPendingPayment(ctx, &models.Payment{
		UserID:      caller.UserID,
		AmountCents: amountCents,
		Currency:    "usd",
		Provider:    models.ProviderStripe,
		ProductType: models.ProductListing,
		ProductID:   listingID.Hex(),
		SessionID:   sess.ID,
	}); err != nil {
		return nil, err
	}
	return sess, nil
}

func (s *checkoutService) resolveRedirects(r Redirects) (string, string) {
	success := r.SuccessURL
	if success == "" {
		success = s.cfg.CheckoutSuccessURL
	}
	cancel := r.CancelURL
	if cancel == "" {
		cancel = s.cfg.CheckoutCancelURL
	}
	return success, cancel
}

func (s *checkoutService) insertPendingSlotPurchase(ctx context.Context, userID, slotID string) error {
	purchase := &models.SlotPurchase{
		ID:        primitive.NewObjectID(),
		UserID:    userID,
		SlotID:    slotID,
		IsActive:  false,
		CreatedAt: time.Now().UTC(),
	}
	err := db.Try(func() error {
		_, insertErr := s.db.Collection(slotPurchasesCollection).InsertOne(ctx, purchase)
		return insertErr
	})
	if err != nil {
		return fmt.Errorf("failed to record pending slot purchase: %w", err)
	}
	return nil
}

func (s *checkoutService) insertPendingPayment(ctx context.Context, payment *models.Payment) error {
	payment.ID = primitive.NewObjectID()
	payment.Status = models.PaymentPending
	payment.CreatedAt = time.Now().UTC()

	err := db.Try(func() error {
		_, insertErr := s.db.Collection(paymentsCollection).InsertOne(ctx, payment)
		return insertErr
	})
	if err != nil {
		return fmt.Errorf("failed to record pending payment: %w", err)
	}
	return nil
}
