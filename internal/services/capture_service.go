package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/ookayiztall/mu-nexus-hub-sub001/internal/config"
	"github.com/ookayiztall/mu-nexus-hub-sub001/internal/db"
	"github.com/ookayiztall/mu-nexus-hub-sub001/internal/models"
	"github.com/ookayiztall/mu-nexus-hub-sub001/internal/paypalclient"
)

var (
	// ErrMalformedReference signals an order whose reference id does not parse.
	// The order is left uncaptured.
	ErrMalformedReference = errors.New("order carries a malformed purchase reference")
	// ErrNoPendingPurchase signals a capture for which no uncompleted purchase
	// row exists.
	ErrNoPendingPurchase = errors.New("no pending purchase matches this order")
	// ErrCaptureDeclined signals the provider answered the capture with a
	// non-completed status.
	ErrCaptureDeclined = errors.New("provider declined the capture")
)

// CaptureOutcome is the result of a capture attempt. AlreadyCaptured marks the
// idempotent path: the order was completed before this call and no provider
// capture was re-attempted.
type CaptureOutcome struct {
	Success         bool               `json:"success"`
	OrderID         string             `json:"order_id"`
	CaptureID       string             `json:"capture_id,omitempty"`
	Status          string             `json:"status"`
	Reference       models.PurchaseRef `json:"-"`
	AlreadyCaptured bool               `json:"already_captured"`
}

// ICaptureService finalizes PayPal orders.
type ICaptureService interface {
	Capture(ctx context.Context, orderID string) (*CaptureOutcome, error)
}

type captureService struct {
	db     *mongo.Database
	cfg    *config.Config
	paypal paypalclient.IPayPalClient
}

// NewCaptureService creates a new CaptureService.
func NewCaptureService(db *mongo.Database, cfg *config.Config, pp paypalclient.IPayPalClient) ICaptureService {
	return &captureService{db: db, cfg: cfg, paypal: pp}
}

// Capture finalizes an approved PayPal order. The order is fetched first: a
// COMPLETED order short-circuits without a second capture call, so retried
// requests stay safe. Otherwise the reference id is parsed, the order
// captured, the matching pending purchase activated and an audit payment row
// written.
func (s *captureService) Capture(ctx context.Context, orderID string) (*CaptureOutcome, error) {
	if !s.paypal.Configured() {
		return nil, ErrPaymentNotConfigured
	}

	order, err := s.paypal.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}

	ref, refErr := models.ParsePurchaseRef(order.ReferenceID)

	if order.Status == paypalclient.OrderCompleted {
		return &CaptureOutcome{
			Success:         true,
			OrderID:         order.ID,
			Status:          order.Status,
			Reference:       ref,
			AlreadyCaptured: true,
		}, nil
	}

	if refErr != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedReference, refErr)
	}

	capture, err := s.paypal.CaptureOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if capture.Status != paypalclient.OrderCompleted {
		return nil, fmt.Errorf("%w: order %s status %s", ErrCaptureDeclined, orderID, capture.Status)
	}

	switch ref.Type {
	case models.ProductSlot:
		err = s.activateSlotPurchase(ctx, ref)
	case models.ProductListing:
		err = s.completeListingPurchase(ctx, ref)
	}
	if err != nil {
		return nil, err
	}

	if err := s.recordCapturedPayment(ctx, ref, capture); err != nil {
		// The purchase is active; a lost audit row must not fail the buyer.
		log.Printf("Failed to record payment audit row for order %s: %v", orderID, err)
	}

	return &CaptureOutcome{
		Success:   true,
		OrderID:   capture.OrderID,
		CaptureID: capture.CaptureID,
		Status:    capture.Status,
		Reference: ref,
	}, nil
}

// activateSlotPurchase completes the most recent uncompleted slot purchase for
// (user, slot): completion timestamp, expiry pushed out by the configured
// duration and the slot flipped active.
func (s *captureService) activateSlotPurchase(ctx context.Context, ref models.PurchaseRef) error {
	now := time.Now().UTC()
	expires := now.AddDate(0, 0, s.cfg.SlotPurchaseDays)

	filter := bson.M{
		"user_id":      ref.UserID,
		"slot_id":      ref.ProductID,
		"completed_at": nil,
	}
	update := bson.M{"$set": bson.M{
		"completed_at": now,
		"expires_at":   expires,
		"is_active":    true,
	}}
	opts := options.FindOneAndUpdate().SetSort(bson.D{{Key: "created_at", Value: -1}})

	var purchase models.SlotPurchase
	err := s.db.Collection(slotPurchasesCollection).FindOneAndUpdate(ctx, filter, update, opts).Decode(&purchase)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return ErrNoPendingPurchase
		}
		return fmt.Errorf("failed to activate slot purchase for user %s slot %s: %w", ref.UserID, ref.ProductID, err)
	}
	return nil
}

// completeListingPurchase completes the most recent pending listing purchase
// for (user, listing).
func (s *captureService) completeListingPurchase(ctx context.Context, ref models.PurchaseRef) error {
	now := time.Now().UTC()

	filter := bson.M{
		"user_id":    ref.UserID,
		"listing_id": ref.ProductID,
		"status":     models.ListingPurchasePending,
	}
	update := bson.M{"$set": bson.M{
		"status":       models.ListingPurchaseCompleted,
		"completed_at": now,
	}}
	opts := options.FindOneAndUpdate().SetSort(bson.D{{Key: "created_at", Value: -1}})

	var purchase models.ListingPurchase
	err := s.db.Collection(listingPurchasesCollection).FindOneAndUpdate(ctx, filter, update, opts).Decode(&purchase)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return ErrNoPendingPurchase
		}
		return fmt.Errorf("failed to complete listing purchase for user %s listing %s: %w", ref.UserID, ref.ProductID, err)
	}
	return nil
}

func (s *captureService) recordCapturedPayment(ctx context.Context, ref models.PurchaseRef, capture *paypalclient.CaptureResult) error {
	now := time.Now().UTC()
	payment := &models.Payment{
		ID:          primitive.NewObjectID(),
		UserID:      ref.UserID,
		Currency:    "usd",
		Status:      models.PaymentCompleted,
		Provider:    models.ProviderPayPal,
		ProductType: ref.Type,
		ProductID:   ref.ProductID,
		OrderID:     capture.OrderID,
		CaptureID:   capture.CaptureID,
		Environment: s.paypal.Environment(),
		CreatedAt:   now,
		CompletedAt: &now,
	}
	return db.Try(func() error {
		_, insertErr := s.db.Collection(paymentsCollection).InsertOne(ctx, payment)
		return insertErr
	})
}
