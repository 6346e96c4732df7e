package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/ookayiztall/mu-nexus-hub-sub001/internal/models"
	"github.com/ookayiztall/mu-nexus-hub-sub001/internal/utils"
)

func timePtr(t time.Time) *time.Time { return &t }

func TestSweepDeactivatesExpired(t *testing.T) {
	db := utils.SetupTestDB(t, "hub_sweep_test", serversCollection, adsCollection, textServersCollection, promosCollection)
	ctx := context.Background()
	now := time.Now().UTC()
	past := timePtr(now.Add(-time.Hour))
	future := timePtr(now.Add(time.Hour))

	expiredServer := models.GameServer{ID: primitive.NewObjectID(), Name: "Expired", IsActive: true, IsPremium: true, ExpiresAt: past}
	liveServer := models.GameServer{ID: primitive.NewObjectID(), Name: "Live", IsActive: true, IsPremium: true, ExpiresAt: future}
	foreverServer := models.GameServer{ID: primitive.NewObjectID(), Name: "Forever", IsActive: true}
	_, err := db.Collection(serversCollection).InsertMany(ctx, []interface{}{expiredServer, liveServer, foreverServer})
	require.NoError(t, err)

	expiredAd := models.Advertisement{ID: primitive.NewObjectID(), Title: "Old", AdType: models.AdTypeMarketplace, IsActive: true, ExpiresAt: past}
	_, err = db.Collection(adsCollection).InsertOne(ctx, expiredAd)
	require.NoError(t, err)

	expiredText := models.PremiumTextServer{ID: primitive.NewObjectID(), Name: "OldText", IsActive: true, ExpiresAt: past}
	_, err = db.Collection(textServersCollection).InsertOne(ctx, expiredText)
	require.NoError(t, err)

	expiredPromo := models.RotatingPromo{ID: primitive.NewObjectID(), Text: "Over", IsActive: true, ExpiresAt: past}
	_, err = db.Collection(promosCollection).InsertOne(ctx, expiredPromo)
	require.NoError(t, err)

	svc := NewSweepService(db, testConfig())
	result, err := svc.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), result.Expired.Servers)
	assert.Equal(t, int64(1), result.Expired.Ads)
	assert.Equal(t, int64(1), result.Expired.TextServers)
	assert.Equal(t, int64(1), result.Expired.Promos)
	assert.Equal(t, int64(4), result.Total())

	// Expired server loses both flags
	var server models.GameServer
	require.NoError(t, db.Collection(serversCollection).FindOne(ctx, bson.M{"_id": expiredServer.ID}).Decode(&server))
	assert.False(t, server.IsActive)
	assert.False(t, server.IsPremium)

	// Unexpired and no-expiry documents stay untouched
	require.NoError(t, db.Collection(serversCollection).FindOne(ctx, bson.M{"_id": liveServer.ID}).Decode(&server))
	assert.True(t, server.IsActive)
	assert.True(t, server.IsPremium)
	require.NoError(t, db.Collection(serversCollection).FindOne(ctx, bson.M{"_id": foreverServer.ID}).Decode(&server))
	assert.True(t, server.IsActive)
}

func TestSweepIsIdempotent(t *testing.T) {
	db := utils.SetupTestDB(t, "hub_sweep_idem_test", serversCollection, adsCollection, textServersCollection, promosCollection)
	ctx := context.Background()
	past := timePtr(time.Now().UTC().Add(-time.Hour))

	expired := models.GameServer{ID: primitive.NewObjectID(), Name: "Expired", IsActive: true, IsPremium: true, ExpiresAt: past}
	_, err := db.Collection(serversCollection).InsertOne(ctx, expired)
	require.NoError(t, err)

	svc := NewSweepService(db, testConfig())

	first, err := svc.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), first.Total())

	second, err := svc.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), second.Total(), "immediate re-run must modify nothing")
}
