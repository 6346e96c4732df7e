package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/ookayiztall/mu-nexus-hub-sub001/internal/config"
)

// ClickKind names what was clicked.
type ClickKind string

const (
	ClickAd     ClickKind = "ad"
	ClickServer ClickKind = "server"
)

// ErrUnknownClickKind signals a click target outside the two tracked kinds.
var ErrUnknownClickKind = errors.New("unknown click kind")

// IClickService counts ad and server banner clicks. Track is cheap and
// loss-tolerant: counts accumulate in Redis and a periodic flush applies them
// to the store atomically, so concurrent clicks are never lost to
// read-modify-write races.
type IClickService interface {
	Track(ctx context.Context, kind ClickKind, id primitive.ObjectID) error
	Flush(ctx context.Context) (int64, error)
}

const clickKeyPrefix = "clicks:"

type clickService struct {
	db  *mongo.Database
	rdb *redis.Client
	cfg *config.Config
}

// NewClickService creates a new ClickService.
func NewClickService(db *mongo.Database, rdb *redis.Client, cfg *config.Config) IClickService {
	return &clickService{db: db, rdb: rdb, cfg: cfg}
}

func clickCollection(kind ClickKind) (string, error) {
	switch kind {
	case ClickAd:
		return adsCollection, nil
	case ClickServer:
		return serversCollection, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownClickKind, kind)
	}
}

// Track increments the Redis counter for one click.
func (s *clickService) Track(ctx context.Context, kind ClickKind, id primitive.ObjectID) error {
	if _, err := clickCollection(kind); err != nil {
		return err
	}
	key := fmt.Sprintf("%s%s:%s", clickKeyPrefix, kind, id.Hex())
	if err := s.rdb.Incr(ctx, key).Err(); err != nil {
		return fmt.Errorf("failed to count click on %s: %w", key, err)
	}
	return nil
}

// Flush drains accumulated counters into the store with $inc and returns the
// total number of clicks applied. Each counter is read destructively; a failed
// store write re-accumulates the count so it is retried next cycle.
func (s *clickService) Flush(ctx context.Context) (int64, error) {
	var applied int64
	iter := s.rdb.Scan(ctx, 0, clickKeyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		key := iter.Val()

		count, err := s.rdb.GetDel(ctx, key).Int64()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				continue
			}
			return applied, fmt.Errorf("failed to drain counter %s: %w", key, err)
		}
		if count == 0 {
			continue
		}

		if err := s.apply(ctx, key, count); err != nil {
			log.Printf("Failed to apply %d clicks from %s, re-queueing: %v", count, key, err)
			if incrErr := s.rdb.IncrBy(ctx, key, count).Err(); incrErr != nil {
				log.Printf("Failed to re-queue clicks for %s, %d clicks lost: %v", key, count, incrErr)
			}
			continue
		}
		applied += count
	}
	if err := iter.Err(); err != nil {
		return applied, fmt.Errorf("failed to scan click counters: %w", err)
	}
	return applied, nil
}

func (s *clickService) apply(ctx context.Context, key string, count int64) error {
	parts := strings.Split(strings.TrimPrefix(key, clickKeyPrefix), ":")
	if len(parts) != 2 {
		return fmt.Errorf("malformed click key %q", key)
	}
	collection, err := clickCollection(ClickKind(parts[0]))
	if err != nil {
		return err
	}
	id, err := primitive.ObjectIDFromHex(parts[1])
	if err != nil {
		return fmt.Errorf("malformed id in click key %q: %w", key, err)
	}

	_, err = s.db.Collection(collection).UpdateByID(ctx, id, bson.M{"$inc": bson.M{"click_count": count}})
	return err
}
