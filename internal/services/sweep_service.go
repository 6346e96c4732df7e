package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/ookayiztall/mu-nexus-hub-sub001/internal/config"
)

// SweepCounts holds the per-kind deactivation counts of one pass.
type SweepCounts struct {
	Servers     int64 `json:"servers"`
	Ads         int64 `json:"ads"`
	TextServers int64 `json:"text_servers"`
	Promos      int64 `json:"promos"`
}

// SweepResult reports what one expiration pass deactivated.
type SweepResult struct {
	RanAt   time.Time   `json:"timestamp"`
	Expired SweepCounts `json:"expired"`
}

// Total returns the number of documents the pass touched.
func (r *SweepResult) Total() int64 {
	return r.Expired.Servers + r.Expired.Ads + r.Expired.TextServers + r.Expired.Promos
}

// ISweepService deactivates expired content.
type ISweepService interface {
	Run(ctx context.Context) (*SweepResult, error)
}

type sweepService struct {
	db  *mongo.Database
	cfg *config.Config
}

// NewSweepService creates a new SweepService.
func NewSweepService(db *mongo.Database, cfg *config.Config) ISweepService {
	return &sweepService{db: db, cfg: cfg}
}

// Run deactivates every expired, still-active document across the four swept
// collections. Filters match only documents whose flags still need clearing,
// so an immediate re-run matches nothing and the pass is safe to repeat.
func (s *sweepService) Run(ctx context.Context) (*SweepResult, error) {
	now := time.Now().UTC()
	result := &SweepResult{RanAt: now}
	expired := bson.M{"$ne": nil, "$lte": now}

	res, err := s.db.Collection(serversCollection).UpdateMany(ctx,
		bson.M{
			"expires_at": expired,
			"$or":        []bson.M{{"is_active": true}, {"is_premium": true}},
		},
		bson.M{"$set": bson.M{"is_active": false, "is_premium": false, "updated_at": now}},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to sweep game servers: %w", err)
	}
	result.Expired.Servers = res.ModifiedCount

	res, err = s.db.Collection(adsCollection).UpdateMany(ctx,
		bson.M{"expires_at": expired, "is_active": true},
		bson.M{"$set": bson.M{"is_active": false, "updated_at": now}},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to sweep advertisements: %w", err)
	}
	result.Expired.Ads = res.ModifiedCount

	res, err = s.db.Collection(textServersCollection).UpdateMany(ctx,
		bson.M{"expires_at": expired, "is_active": true},
		bson.M{"$set": bson.M{"is_active": false}},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to sweep text servers: %w", err)
	}
	result.Expired.TextServers = res.ModifiedCount

	res, err = s.db.Collection(promosCollection).UpdateMany(ctx,
		bson.M{"expires_at": expired, "is_active": true},
		bson.M{"$set": bson.M{"is_active": false}},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to sweep promos: %w", err)
	}
	result.Expired.Promos = res.ModifiedCount

	if total := result.Total(); total > 0 {
		log.Printf("Expiration sweep deactivated %d documents (servers=%d ads=%d text=%d promos=%d)",
			total, result.Expired.Servers, result.Expired.Ads, result.Expired.TextServers, result.Expired.Promos)
	}
	return result, nil
}
