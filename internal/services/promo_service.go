package services

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/ookayiztall/mu-nexus-hub-sub001/internal/config"
	"github.com/ookayiztall/mu-nexus-hub-sub001/internal/models"
	"github.com/ookayiztall/mu-nexus-hub-sub001/internal/rotation"
)

// IPromoService serves the homepage carousel and the promo ticker. Both are
// backed by server-side rotating widgets so the "current" endpoints return
// whatever item the timer has advanced to.
type IPromoService interface {
	GetBanners(ctx context.Context) ([]models.PremiumBanner, error)
	GetPromos(ctx context.Context, promoType *models.PromoType) ([]models.RotatingPromo, error)
	CurrentBanner() (models.PremiumBanner, bool)
	CurrentPromo() (models.RotatingPromo, bool)
	RefreshWidgets(ctx context.Context) error
	StopWidgets()
}

const (
	bannersCollection = "premium_banners"
	promosCollection  = "rotating_promos"
)

type promoService struct {
	db  *mongo.Database
	cfg *config.Config

	mu           sync.RWMutex
	bannerWidget *rotation.Widget[models.PremiumBanner]
	promoWidget  *rotation.Widget[models.RotatingPromo]
}

// NewPromoService creates a new PromoService. Call RefreshWidgets once the
// store is reachable to populate the rotors.
func NewPromoService(db *mongo.Database, cfg *config.Config) IPromoService {
	return &promoService{db: db, cfg: cfg}
}

// GetBanners returns active banners shuffled for fair rotation. Fetch errors
// and an empty store both degrade to the built-in fallback set.
func (s *promoService) GetBanners(ctx context.Context) ([]models.PremiumBanner, error) {
	banners, err := s.fetchBanners(ctx)
	if err != nil {
		log.Printf("Banner fetch failed, serving fallbacks: %v", err)
	}
	return rotation.Shuffle(rotation.Resolve(banners, err, models.FallbackBanners())), nil
}

// GetPromos returns active promos, dropping entries whose expiry has already
// passed even when the store still marks them active. An optional promoType
// narrows the result. Errors and empty stores degrade to fallbacks.
func (s *promoService) GetPromos(ctx context.Context, promoType *models.PromoType) ([]models.RotatingPromo, error) {
	promos, err := s.fetchPromos(ctx, promoType)
	if err != nil {
		log.Printf("Promo fetch failed, serving fallbacks: %v", err)
	}

	now := time.Now().UTC()
	fresh := make([]models.RotatingPromo, 0, len(promos))
	for _, p := range promos {
		if !p.Expired(now) {
			fresh = append(fresh, p)
		}
	}

	fallback := models.FallbackPromos()
	if promoType != nil {
		narrowed := make([]models.RotatingPromo, 0, len(fallback))
		for _, p := range fallback {
			if p.PromoType == *promoType {
				narrowed = append(narrowed, p)
			}
		}
		fallback = narrowed
	}
	return rotation.Resolve(fresh, err, fallback), nil
}

func (s *promoService) fetchBanners(ctx context.Context) ([]models.PremiumBanner, error) {
	opts := options.Find().SetSort(bson.D{{Key: "display_order", Value: 1}})
	cursor, err := s.db.Collection(bannersCollection).Find(ctx, bson.M{"is_active": true}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query banners: %w", err)
	}
	defer cursor.Close(ctx)

	var banners []models.PremiumBanner
	if err := cursor.All(ctx, &banners); err != nil {
		return nil, fmt.Errorf("failed to decode banners: %w", err)
	}
	return banners, nil
}

func (s *promoService) fetchPromos(ctx context.Context, promoType *models.PromoType) ([]models.RotatingPromo, error) {
	filter := bson.M{"is_active": true}
	if promoType != nil {
		filter["promo_type"] = *promoType
	}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})

	cursor, err := s.db.Collection(promosCollection).Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query promos: %w", err)
	}
	defer cursor.Close(ctx)

	var promos []models.RotatingPromo
	if err := cursor.All(ctx, &promos); err != nil {
		return nil, fmt.Errorf("failed to decode promos: %w", err)
	}
	return promos, nil
}

// CurrentBanner returns the banner the rotor currently points at.
func (s *promoService) CurrentBanner() (models.PremiumBanner, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.bannerWidget == nil || len(s.bannerWidget.Items()) == 0 {
		return models.PremiumBanner{}, false
	}
	return s.bannerWidget.Current(), true
}

// CurrentPromo returns the promo the rotor currently points at.
func (s *promoService) CurrentPromo() (models.RotatingPromo, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.promoWidget == nil || len(s.promoWidget.Items()) == 0 {
		return models.RotatingPromo{}, false
	}
	return s.promoWidget.Current(), true
}

// RefreshWidgets rebuilds both rotors from a fresh fetch. Old rotors are
// stopped so their timer goroutines do not leak.
func (s *promoService) RefreshWidgets(ctx context.Context) error {
	banners, err := s.GetBanners(ctx)
	if err != nil {
		return err
	}
	promos, err := s.GetPromos(ctx, nil)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.bannerWidget != nil {
		s.bannerWidget.Stop()
	}
	if s.promoWidget != nil {
		s.promoWidget.Stop()
	}
	s.bannerWidget = rotation.NewWidget(banners, s.cfg.BannerRotationInterval)
	s.promoWidget = rotation.NewWidget(promos, s.cfg.PromoRotationInterval)
	return nil
}

// StopWidgets halts both rotors. Used on shutdown.
func (s *promoService) StopWidgets() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.bannerWidget != nil {
		s.bannerWidget.Stop()
	}
	if s.promoWidget != nil {
		s.promoWidget.Stop()
	}
}
