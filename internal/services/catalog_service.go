package services

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/ookayiztall/mu-nexus-hub-sub001/internal/config"
	"github.com/ookayiztall/mu-nexus-hub-sub001/internal/db"
	"github.com/ookayiztall/mu-nexus-hub-sub001/internal/models"
)

// ICatalogService exposes the pricing package catalog.
type ICatalogService interface {
	GetPackage(ctx context.Context, packageID primitive.ObjectID) (*models.PricingPackage, error)
	ListPackages(ctx context.Context) ([]models.PricingPackage, error)
	SeedDefaultPackages(ctx context.Context) error
}

const packagesCollection = "pricing_packages"

type catalogService struct {
	db  *mongo.Database
	cfg *config.Config
}

// NewCatalogService creates a new CatalogService.
func NewCatalogService(db *mongo.Database, cfg *config.Config) ICatalogService {
	return &catalogService{db: db, cfg: cfg}
}

func (s *catalogService) GetPackage(ctx context.Context, packageID primitive.ObjectID) (*models.PricingPackage, error) {
	var pkg models.PricingPackage
	err := s.db.Collection(packagesCollection).FindOne(ctx, bson.M{"_id": packageID}).Decode(&pkg)
	if err != nil {
		return nil, err
	}
	return &pkg, nil
}

func (s *catalogService) ListPackages(ctx context.Context) ([]models.PricingPackage, error) {
	cursor, err := s.db.Collection(packagesCollection).Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("failed to query pricing packages: %w", err)
	}
	defer cursor.Close(ctx)

	var packages []models.PricingPackage
	if err := cursor.All(ctx, &packages); err != nil {
		return nil, fmt.Errorf("failed to decode pricing packages: %w", err)
	}
	return packages, nil
}

// SeedDefaultPackages inserts the built-in catalog on an empty store. Runs at
// startup; a populated catalog is left untouched.
func (s *catalogService) SeedDefaultPackages(ctx context.Context) error {
	collection := s.db.Collection(packagesCollection)

	count, err := collection.CountDocuments(ctx, bson.M{})
	if err != nil {
		return fmt.Errorf("failed to count pricing packages: %w", err)
	}
	if count > 0 {
		return nil
	}

	defaults := []interface{}{
		models.PricingPackage{ID: primitive.NewObjectID(), Name: "Homepage Slot - 30 days", Description: "Fixed homepage advertising position", PriceCents: 4999, DurationDays: 30, ProductType: models.ProductSlot},
		models.PricingPackage{ID: primitive.NewObjectID(), Name: "Gold VIP Ad - 30 days", Description: "Gold badge and rotation priority", PriceCents: 1999, DurationDays: 30, ProductType: models.ProductSlot},
		models.PricingPackage{ID: primitive.NewObjectID(), Name: "Diamond VIP Ad - 30 days", Description: "Diamond badge and top rotation priority", PriceCents: 3499, DurationDays: 30, ProductType: models.ProductSlot},
	}

	return db.Try(func() error {
		_, insertErr := collection.InsertMany(ctx, defaults)
		return insertErr
	})
}
