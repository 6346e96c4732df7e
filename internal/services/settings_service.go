package services

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/ookayiztall/mu-nexus-hub-sub001/internal/config"
)

// ISettingsService exposes runtime site settings stored in Mongo. Values are
// cached in memory; admin writes publish an invalidation over Redis so every
// API instance reloads.
type ISettingsService interface {
	GetAllPublic(ctx context.Context) (map[string]interface{}, error)
	Get(ctx context.Context, key string) (interface{}, error)
	GetString(ctx context.Context, key string, defaultValue string) string
	GetInt(ctx context.Context, key string, defaultValue int) int
	GetBool(ctx context.Context, key string, defaultValue bool) bool
	GetDuration(ctx context.Context, key string, defaultValue time.Duration) time.Duration
	Set(ctx context.Context, key string, value interface{}, isPublic bool) error
	Load(ctx context.Context) error
	SubscribeToChanges(ctx context.Context) error
}

const (
	settingsCollection    = "site_settings"
	settingsUpdateChannel = "settings_updates"
)

// SettingEntry is one document in the site_settings collection.
type SettingEntry struct {
	Key    string      `bson:"key"`
	Value  interface{} `bson:"value"`
	Public bool        `bson:"public"`
}

type settingsService struct {
	db    *mongo.Database
	cfg   *config.Config
	rdb   *redis.Client
	cache map[string]interface{}
	mutex sync.RWMutex
}

// NewSettingsService creates a SettingsService, loads the initial snapshot and
// starts the invalidation listener.
func NewSettingsService(db *mongo.Database, initialCfg *config.Config, rdb *redis.Client) ISettingsService {
	s := &settingsService{
		db:    db,
		cfg:   initialCfg,
		rdb:   rdb,
		cache: make(map[string]interface{}),
	}
	if err := s.Load(context.Background()); err != nil {
		log.Printf("WARNING: Failed to load site settings from DB: %v. Using .env defaults", err)
	}
	go func() {
		if err := s.SubscribeToChanges(context.Background()); err != nil {
			log.Printf("CRITICAL: Settings Pub/Sub listener stopped: %v", err)
		}
	}()
	return s
}

// Load fetches all settings from DB into the in-memory cache.
func (s *settingsService) Load(ctx context.Context) error {
	cursor, err := s.db.Collection(settingsCollection).Find(ctx, bson.M{})
	if err != nil {
		return fmt.Errorf("failed to query site settings: %w", err)
	}
	defer cursor.Close(ctx)

	newCache := make(map[string]interface{})
	for cursor.Next(ctx) {
		var entry SettingEntry
		if err := cursor.Decode(&entry); err != nil {
			log.Printf("Warning: Failed to decode setting entry during load: %v", err)
			continue
		}
		newCache[entry.Key] = entry.Value
	}
	if err := cursor.Err(); err != nil {
		return fmt.Errorf("error iterating settings cursor: %w", err)
	}

	s.mutex.Lock()
	s.cache = newCache
	s.mutex.Unlock()
	log.Printf("Loaded %d site settings into cache from DB.", len(newCache))
	return nil
}

// GetAllPublic returns the settings the frontend may see, plus the
// environment-derived values it always needs.
func (s *settingsService) GetAllPublic(ctx context.Context) (map[string]interface{}, error) {
	public := map[string]interface{}{}

	cursor, err := s.db.Collection(settingsCollection).Find(ctx, bson.M{"public": true})
	if err != nil {
		return nil, fmt.Errorf("failed to query public settings: %w", err)
	}
	defer cursor.Close(ctx)

	for cursor.Next(ctx) {
		var entry SettingEntry
		if err := cursor.Decode(&entry); err != nil {
			log.Printf("Warning: Failed to decode public setting entry: %v", err)
			continue
		}
		public[entry.Key] = entry.Value
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("error iterating public settings cursor: %w", err)
	}

	if _, exists := public["APP_NAME"]; !exists {
		public["APP_NAME"] = s.cfg.AppName
	}
	public["STRIPE_PUBLISHABLE_KEY"] = s.cfg.StripePublishableKey
	public["STRIPE_CONFIGURED"] = s.cfg.StripeConfigured()
	public["PAYPAL_CONFIGURED"] = s.cfg.PayPalConfigured()
	public["PAYPAL_ENV"] = s.cfg.PayPalEnv
	public["PAYPAL_CLIENT_ID"] = s.cfg.PayPalClientID
	return public, nil
}

// Get returns a setting from the cache, falling back to known .env defaults.
func (s *settingsService) Get(ctx context.Context, key string) (interface{}, error) {
	s.mutex.RLock()
	val, exists := s.cache[key]
	s.mutex.RUnlock()
	if exists {
		return val, nil
	}

	switch key {
	case "APP_NAME":
		return s.cfg.AppName, nil
	case "SLOT_PURCHASE_DAYS":
		return s.cfg.SlotPurchaseDays, nil
	default:
		return nil, fmt.Errorf("setting '%s' not found", key)
	}
}

func (s *settingsService) GetString(ctx context.Context, key string, defaultValue string) string {
	val, err := s.Get(ctx, key)
	if err != nil {
		return defaultValue
	}
	if strVal, ok := val.(string); ok {
		return strVal
	}
	log.Printf("Warning: Setting '%s' is not a string, using default.", key)
	return defaultValue
}

func (s *settingsService) GetInt(ctx context.Context, key string, defaultValue int) int {
	val, err := s.Get(ctx, key)
	if err != nil {
		return defaultValue
	}
	// Mongo may hand numbers back as int32/int64/float64
	switch v := val.(type) {
	case int:
		return v
	case int32:
		return int(v)
	case int64:
		return int(v)
	case float64:
		return int(v)
	default:
		log.Printf("Warning: Setting '%s' is not an integer type (%T), using default.", key, val)
		return defaultValue
	}
}

func (s *settingsService) GetBool(ctx context.Context, key string, defaultValue bool) bool {
	val, err := s.Get(ctx, key)
	if err != nil {
		return defaultValue
	}
	if boolVal, ok := val.(bool); ok {
		return boolVal
	}
	log.Printf("Warning: Setting '%s' is not a boolean, using default.", key)
	return defaultValue
}

// GetDuration reads a setting stored as integer seconds.
func (s *settingsService) GetDuration(ctx context.Context, key string, defaultValue time.Duration) time.Duration {
	val, err := s.Get(ctx, key)
	if err != nil {
		return defaultValue
	}
	switch v := val.(type) {
	case int:
		return time.Duration(v) * time.Second
	case int32:
		return time.Duration(v) * time.Second
	case int64:
		return time.Duration(v) * time.Second
	case float64:
		return time.Duration(v) * time.Second
	default:
		log.Printf("Warning: Setting '%s' is not numeric (%T), using default.", key, val)
		return defaultValue
	}
}

// Set upserts a setting and broadcasts the change so other instances reload.
func (s *settingsService) Set(ctx context.Context, key string, value interface{}, isPublic bool) error {
	filter := bson.M{"key": key}
	update := bson.M{"$set": SettingEntry{Key: key, Value: value, Public: isPublic}}
	opts := options.Update().SetUpsert(true)

	if _, err := s.db.Collection(settingsCollection).UpdateOne(ctx, filter, update, opts); err != nil {
		return fmt.Errorf("failed to upsert setting '%s': %w", key, err)
	}

	s.mutex.Lock()
	s.cache[key] = value
	s.mutex.Unlock()

	if s.rdb != nil {
		if err := s.rdb.Publish(ctx, settingsUpdateChannel, key).Err(); err != nil {
			log.Printf("Warning: Failed to publish settings update for '%s': %v", key, err)
		}
	}
	return nil
}

// SubscribeToChanges reloads the cache whenever any instance publishes an
// update. Blocks until the subscription dies.
func (s *settingsService) SubscribeToChanges(ctx context.Context) error {
	if s.rdb == nil {
		log.Println("Redis client not configured, cannot subscribe to settings changes.")
		return nil
	}

	pubsub := s.rdb.Subscribe(ctx, settingsUpdateChannel)
	defer pubsub.Close()

	if _, err := pubsub.Receive(ctx); err != nil {
		return fmt.Errorf("failed to confirm settings Pub/Sub subscription: %w", err)
	}

	ch := pubsub.Channel()
	log.Println("Subscribed to Redis channel for settings updates:", settingsUpdateChannel)
	for msg := range ch {
		log.Printf("Received settings update for '%s', reloading", msg.Payload)
		if err := s.Load(context.Background()); err != nil {
			log.Printf("ERROR reloading settings after notification: %v", err)
		}
	}
	return nil
}
