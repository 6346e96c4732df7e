package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/ookayiztall/mu-nexus-hub-sub001/internal/models"
	"github.com/ookayiztall/mu-nexus-hub-sub001/internal/paypalclient"
	"github.com/ookayiztall/mu-nexus-hub-sub001/internal/utils"
)

func TestCaptureSlotPurchase(t *testing.T) {
	db := utils.SetupTestDB(t, "hub_capture_test", slotPurchasesCollection, listingPurchasesCollection, paymentsCollection)
	cfg := testConfig()
	ctx := context.Background()

	pending := models.SlotPurchase{
		ID:        primitive.NewObjectID(),
		UserID:    "user123",
		SlotID:    "A1",
		IsActive:  false,
		CreatedAt: time.Now().UTC().Add(-time.Minute),
	}
	_, err := db.Collection(slotPurchasesCollection).InsertOne(ctx, pending)
	require.NoError(t, err)

	mockPP := new(MockPayPalClient)
	mockPP.On("Configured").Return(true)
	mockPP.On("Environment").Return("sandbox")
	mockPP.On("GetOrder", mock.Anything, "ORDER1").Return(&paypalclient.Order{
		ID: "ORDER1", Status: "APPROVED", ReferenceID: "slot_A1_user123",
	}, nil)
	mockPP.On("CaptureOrder", mock.Anything, "ORDER1").Return(&paypalclient.CaptureResult{
		OrderID: "ORDER1", CaptureID: "CAP1", Status: paypalclient.OrderCompleted,
	}, nil)

	svc := NewCaptureService(db, cfg, mockPP)
	outcome, err := svc.Capture(ctx, "ORDER1")
	require.NoError(t, err)
	assert.True(t, outcome.Success)
	assert.False(t, outcome.AlreadyCaptured)
	assert.Equal(t, "CAP1", outcome.CaptureID)
	mockPP.AssertExpectations(t)

	// Purchase is now completed, active and expiring ~30 days out
	var activated models.SlotPurchase
	err = db.Collection(slotPurchasesCollection).FindOne(ctx, bson.M{"_id": pending.ID}).Decode(&activated)
	require.NoError(t, err)
	assert.True(t, activated.IsActive)
	require.NotNil(t, activated.CompletedAt)
	require.NotNil(t, activated.ExpiresAt)
	expectedExpiry := time.Now().UTC().AddDate(0, 0, cfg.SlotPurchaseDays)
	assert.WithinDuration(t, expectedExpiry, *activated.ExpiresAt, time.Minute)

	// Audit row written with capture ids and environment
	var payment models.Payment
	err = db.Collection(paymentsCollection).FindOne(ctx, bson.M{"order_id": "ORDER1"}).Decode(&payment)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentCompleted, payment.Status)
	assert.Equal(t, models.ProviderPayPal, payment.Provider)
	assert.Equal(t, "CAP1", payment.CaptureID)
	assert.Equal(t, "sandbox", payment.Environment)
}

func TestCaptureActivatesMostRecentPending(t *testing.T) {
	db := utils.SetupTestDB(t, "hub_capture_recent_test", slotPurchasesCollection, paymentsCollection)
	cfg := testConfig()
	ctx := context.Background()

	older := models.SlotPurchase{ID: primitive.NewObjectID(), UserID: "u1", SlotID: "B2", CreatedAt: time.Now().UTC().Add(-time.Hour)}
	newer := models.SlotPurchase{ID: primitive.NewObjectID(), UserID: "u1", SlotID: "B2", CreatedAt: time.Now().UTC().Add(-time.Minute)}
	_, err := db.Collection(slotPurchasesCollection).InsertMany(ctx, []interface{}{older, newer})
	require.NoError(t, err)

	mockPP := new(MockPayPalClient)
	mockPP.On("Configured").Return(true)
	mockPP.On("Environment").Return("sandbox")
	mockPP.On("GetOrder", mock.Anything, "ORDER2").Return(&paypalclient.Order{ID: "ORDER2", Status: "APPROVED", ReferenceID: "slot_B2_u1"}, nil)
	mockPP.On("CaptureOrder", mock.Anything, "ORDER2").Return(&paypalclient.CaptureResult{OrderID: "ORDER2", CaptureID: "CAP2", Status: paypalclient.OrderCompleted}, nil)

	svc := NewCaptureService(db, cfg, mockPP)
	_, err = svc.Capture(ctx, "ORDER2")
	require.NoError(t, err)

	var got models.SlotPurchase
	require.NoError(t, db.Collection(slotPurchasesCollection).FindOne(ctx, bson.M{"_id": newer.ID}).Decode(&got))
	assert.True(t, got.IsActive)
	require.NoError(t, db.Collection(slotPurchasesCollection).FindOne(ctx, bson.M{"_id": older.ID}).Decode(&got))
	assert.False(t, got.IsActive, "older pending purchase must stay untouched")
}

func TestCaptureAlreadyCompletedOrder(t *testing.T) {
	db := utils.SetupTestDB(t, "hub_capture_idem_test", slotPurchasesCollection, paymentsCollection)
	cfg := testConfig()

	mockPP := new(MockPayPalClient)
	mockPP.On("Configured").Return(true)
	mockPP.On("GetOrder", mock.Anything, "ORDER3").Return(&paypalclient.Order{
		ID: "ORDER3", Status: paypalclient.OrderCompleted, ReferenceID: "slot_A1_user123",
	}, nil)

	svc := NewCaptureService(db, cfg, mockPP)
	outcome, err := svc.Capture(context.Background(), "ORDER3")
	require.NoError(t, err)
	assert.True(t, outcome.Success)
	assert.True(t, outcome.AlreadyCaptured)
	assert.Equal(t, paypalclient.OrderCompleted, outcome.Status)
	mockPP.AssertNotCalled(t, "CaptureOrder", mock.Anything, mock.Anything)
}

func TestCaptureMalformedReference(t *testing.T) {
	db := utils.SetupTestDB(t, "hub_capture_ref_test", slotPurchasesCollection, paymentsCollection)
	cfg := testConfig()

	for _, ref := range []string{"", "slotonly", "bogus_1_u1"} {
		mockPP := new(MockPayPalClient)
		mockPP.On("Configured").Return(true)
		mockPP.On("GetOrder", mock.Anything, "ORDER4").Return(&paypalclient.Order{ID: "ORDER4", Status: "APPROVED", ReferenceID: ref}, nil)

		svc := NewCaptureService(db, cfg, mockPP)
		_, err := svc.Capture(context.Background(), "ORDER4")
		assert.ErrorIs(t, err, ErrMalformedReference, "reference %q", ref)
		mockPP.AssertNotCalled(t, "CaptureOrder", mock.Anything, mock.Anything)
	}
}

func TestCaptureListingPurchase(t *testing.T) {
	db := utils.SetupTestDB(t, "hub_capture_listing_test", listingPurchasesCollection, paymentsCollection)
	cfg := testConfig()
	ctx := context.Background()

	listingID := primitive.NewObjectID().Hex()
	pending := models.ListingPurchase{
		ID:        primitive.NewObjectID(),
		UserID:    "buyer1",
		ListingID: listingID,
		Status:    models.ListingPurchasePending,
		CreatedAt: time.Now().UTC().Add(-time.Minute),
	}
	_, err := db.Collection(listingPurchasesCollection).InsertOne(ctx, pending)
	require.NoError(t, err)

	ref := "listing_" + listingID + "_buyer1"
	mockPP := new(MockPayPalClient)
	mockPP.On("Configured").Return(true)
	mockPP.On("Environment").Return("live")
	mockPP.On("GetOrder", mock.Anything, "ORDER5").Return(&paypalclient.Order{ID: "ORDER5", Status: "APPROVED", ReferenceID: ref}, nil)
	mockPP.On("CaptureOrder", mock.Anything, "ORDER5").Return(&paypalclient.CaptureResult{OrderID: "ORDER5", CaptureID: "CAP5", Status: paypalclient.OrderCompleted}, nil)

	svc := NewCaptureService(db, cfg, mockPP)
	outcome, err := svc.Capture(ctx, "ORDER5")
	require.NoError(t, err)
	assert.Equal(t, models.ProductListing, outcome.Reference.Type)

	var completed models.ListingPurchase
	require.NoError(t, db.Collection(listingPurchasesCollection).FindOne(ctx, bson.M{"_id": pending.ID}).Decode(&completed))
	assert.Equal(t, models.ListingPurchaseCompleted, completed.Status)
	require.NotNil(t, completed.CompletedAt)
}

func TestCaptureNoPendingPurchase(t *testing.T) {
	db := utils.SetupTestDB(t, "hub_capture_missing_test", slotPurchasesCollection, paymentsCollection)
	cfg := testConfig()

	mockPP := new(MockPayPalClient)
	mockPP.On("Configured").Return(true)
	mockPP.On("GetOrder", mock.Anything, "ORDER6").Return(&paypalclient.Order{ID: "ORDER6", Status: "APPROVED", ReferenceID: "slot_Z9_nobody"}, nil)
	mockPP.On("CaptureOrder", mock.Anything, "ORDER6").Return(&paypalclient.CaptureResult{OrderID: "ORDER6", CaptureID: "CAP6", Status: paypalclient.OrderCompleted}, nil)

	svc := NewCaptureService(db, cfg, mockPP)
	_, err := svc.Capture(context.Background(), "ORDER6")
	assert.ErrorIs(t, err, ErrNoPendingPurchase)
}
