package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/ookayiztall/mu-nexus-hub-sub001/internal/config"
	"github.com/ookayiztall/mu-nexus-hub-sub001/internal/db"
	"github.com/ookayiztall/mu-nexus-hub-sub001/internal/models"
)

// IAdService defines advertisement operations.
type IAdService interface {
	CreateAd(ctx context.Context, ad *models.Advertisement) (*models.Advertisement, error)
	GetActiveAds(ctx context.Context, adType models.AdType) ([]models.Advertisement, error)
	SetBanner(ctx context.Context, adID primitive.ObjectID, bannerKey string) error
}

const adsCollection = "advertisements"

type adService struct {
	db  *mongo.Database
	cfg *config.Config
}

// NewAdService creates a new AdService.
func NewAdService(db *mongo.Database, cfg *config.Config) IAdService {
	return &adService{db: db, cfg: cfg}
}

func (s *adService) CreateAd(ctx context.Context, ad *models.Advertisement) (*models.Advertisement, error) {
	now := time.Now().UTC()
	ad.ID = primitive.NewObjectID()
	ad.CreatedAt = now
	ad.UpdatedAt = now
	if ad.VipLevel == "" {
		ad.VipLevel = models.VipNone
	}

	err := db.Try(func() error {
		_, insertErr := s.db.Collection(adsCollection).InsertOne(ctx, ad)
		return insertErr
	})
	if err != nil {
		return nil, fmt.Errorf("failed to insert advertisement: %w", err)
	}
	return ad, nil
}

// GetActiveAds returns active, non-expired ads of the given placement,
// ordered by VIP rank (diamond before gold before none) and rotation order
// within each rank.
func (s *adService) GetActiveAds(ctx context.Context, adType models.AdType) ([]models.Advertisement, error) {
	now := time.Now().UTC()
	filter := bson.M{
		"ad_type":   adType,
		"is_active": true,
		"$or": []bson.M{
			{"expires_at": nil},
			{"expires_at": bson.M{"$exists": false}},
			{"expires_at": bson.M{"$gt": now}},
		},
	}

	cursor, err := s.db.Collection(adsCollection).Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s ads: %w", adType, err)
	}
	defer cursor.Close(ctx)

	var ads []models.Advertisement
	if err := cursor.All(ctx, &ads); err != nil {
		return nil, fmt.Errorf("failed to decode ads: %w", err)
	}

	OrderAds(ads)
	return ads, nil
}

func (s *adService) SetBanner(ctx context.Context, adID primitive.ObjectID, bannerKey string) error {
	update := bson.M{"$set": bson.M{"banner": bannerKey, "updated_at": time.Now().UTC()}}
	res, err := s.db.Collection(adsCollection).UpdateByID(ctx, adID, update)
	if err != nil {
		return fmt.Errorf("failed to set banner for ad %s: %w", adID.Hex(), err)
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// OrderAds sorts ads in place by descending VIP rank, then ascending rotation
// order. The sort is stable so equal ads keep their fetch order.
func OrderAds(ads []models.Advertisement) {
	sort.SliceStable(ads, func(i, j int) bool {
		ri, rj := ads[i].VipLevel.Rank(), ads[j].VipLevel.Rank()
		if ri != rj {
			return ri > rj
		}
		return ads[i].RotationOrder < ads[j].RotationOrder
	})
}
