package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/ookayiztall/mu-nexus-hub-sub001/internal/config"
	"github.com/ookayiztall/mu-nexus-hub-sub001/internal/db"
	"github.com/ookayiztall/mu-nexus-hub-sub001/internal/models"
)

// IListingService defines listing-related operations.
type IListingService interface {
	CreateListing(ctx context.Context, sellerID, title, description string, category models.ListingCategory, priceUSD *float64, website string) (*models.Listing, error)
	FindListingByID(ctx context.Context, listingID primitive.ObjectID) (*models.Listing, error)
	GetVisibleListings(ctx context.Context) ([]models.Listing, error)
}

const listingsCollection = "listings"

type listingService struct {
	db  *mongo.Database
	cfg *config.Config
}

// NewListingService creates a new ListingService.
func NewListingService(db *mongo.Database, cfg *config.Config) IListingService {
	return &listingService{db: db, cfg: cfg}
}

// CreateListing inserts a new unpublished listing.
func (s *listingService) CreateListing(ctx context.Context, sellerID, title, description string, category models.ListingCategory, priceUSD *float64, website string) (*models.Listing, error) {
	collection := s.db.Collection(listingsCollection)
	now := time.Now().UTC()

	listing := &models.Listing{
		ID:          primitive.NewObjectID(),
		SellerID:    sellerID,
		Title:       title,
		Description: description,
		Category:    category,
		PriceUSD:    priceUSD,
		Website:     website,
		IsPublished: false,
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	err := db.Try(func() error {
		_, insertErr := collection.InsertOne(ctx, listing)
		return insertErr
	})
	if err != nil {
		return nil, fmt.Errorf("failed to insert listing for seller %s: %w", sellerID, err)
	}
	return listing, nil
}

// FindListingByID finds a listing by its id regardless of visibility.
func (s *listingService) FindListingByID(ctx context.Context, listingID primitive.ObjectID) (*models.Listing, error) {
	var listing models.Listing
	err := s.db.Collection(listingsCollection).FindOne(ctx, bson.M{"_id": listingID}).Decode(&listing)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, mongo.ErrNoDocuments
		}
		return nil, fmt.Errorf("error finding listing %s: %w", listingID.Hex(), err)
	}
	return &listing, nil
}

// GetVisibleListings returns the published, active, non-expired snapshot the
// marketplace feed renders. Text/category narrowing happens afterwards via
// FilterListings over this snapshot.
func (s *listingService) GetVisibleListings(ctx context.Context) ([]models.Listing, error) {
	now := time.Now().UTC()
	filter := bson.M{
		"is_published": true,
		"is_active":    true,
		"$or": []bson.M{
			{"expires_at": nil},
			{"expires_at": bson.M{"$exists": false}},
			{"expires_at": bson.M{"$gt": now}},
		},
	}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})

	cursor, err := s.db.Collection(listingsCollection).Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query visible listings: %w", err)
	}
	defer cursor.Close(ctx)

	var listings []models.Listing
	if err := cursor.All(ctx, &listings); err != nil {
		return nil, fmt.Errorf("failed to decode listings: %w", err)
	}
	return listings, nil
}

// categoryAliases maps UI category labels to stored category values where the
// two diverge.
var categoryAliases = map[string]models.ListingCategory{
	"server-files": models.CategoryServerFiles,
	"web-designs":  models.CategoryDesigns,
}

// FilterListings narrows a fetched snapshot the way the marketplace page
// does: case-insensitive substring match on title/description against the
// free-text query, AND category match against the selected category. The
// category "all" (or empty) matches everything.
func FilterListings(listings []models.Listing, query, category string) []models.Listing {
	query = strings.ToLower(strings.TrimSpace(query))

	wantCategory := models.ListingCategory("")
	if category != "" && category != "all" {
		if aliased, ok := categoryAliases[category]; ok {
			wantCategory = aliased
		} else {
			wantCategory = models.ListingCategory(category)
		}
	}

	out := make([]models.Listing, 0, len(listings))
	for _, l := range listings {
		if wantCategory != "" && l.Category != wantCategory {
			continue
		}
		if query != "" &&
			!strings.Contains(strings.ToLower(l.Title), query) &&
			!strings.Contains(strings.ToLower(l.Description), query) {
			continue
		}
		out = append(out, l)
	}
	return out
}
