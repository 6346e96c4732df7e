package handlers_test

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/ookayiztall/mu-nexus-hub-sub001/internal/models"
	"github.com/ookayiztall/mu-nexus-hub-sub001/internal/services"
	"github.com/ookayiztall/mu-nexus-hub-sub001/internal/stripeclient"
)

// --- Mocks ---

// MockCheckoutService
type MockCheckoutService struct {
	mock.Mock
}

func (m *MockCheckoutService) CreatePackageSession(ctx context.Context, caller services.Identity, packageID primitive.ObjectID, productID string, redirects services.Redirects) (*stripeclient.Session, error) {
	args := m.Called(ctx, caller, packageID, productID, redirects)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*stripeclient.Session), args.Error(1)
}

func (m *MockCheckoutService) CreateListingSession(ctx context.Context, caller services.Identity, listingID primitive.ObjectID, redirects services.Redirects) (*stripeclient.Session, error) {
	args := m.Called(ctx, caller, listingID, redirects)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*stripeclient.Session), args.Error(1)
}

// MockCaptureService
type MockCaptureService struct {
	mock.Mock
}

func (m *MockCaptureService) Capture(ctx context.Context, orderID string) (*services.CaptureOutcome, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.CaptureOutcome), args.Error(1)
}

// MockConnectService
type MockConnectService struct {
	mock.Mock
}

func (m *MockConnectService) StartOnboarding(ctx context.Context, caller services.Identity, refreshURL, returnURL string) (string, error) {
	args := m.Called(ctx, caller, refreshURL, returnURL)
	return args.String(0), args.Error(1)
}

func (m *MockConnectService) LoginLink(ctx context.Context, userID string) (string, error) {
	args := m.Called(ctx, userID)
	return args.String(0), args.Error(1)
}

func (m *MockConnectService) Status(ctx context.Context, userID string) (*services.ConnectStatus, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.ConnectStatus), args.Error(1)
}

// MockClickService
type MockClickService struct {
	mock.Mock
}

func (m *MockClickService) Track(ctx context.Context, kind services.ClickKind, id primitive.ObjectID) error {
	args := m.Called(ctx, kind, id)
	return args.Error(0)
}

func (m *MockClickService) Flush(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

// MockListingService
type MockListingService struct {
	mock.Mock
}

func (m *MockListingService) CreateListing(ctx context.Context, sellerID, title, description string, category models.ListingCategory, priceUSD *float64, website string) (*models.Listing, error) {
	args := m.Called(ctx, sellerID, title, description, category, priceUSD, website)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Listing), args.Error(1)
}

func (m *MockListingService) FindListingByID(ctx context.Context, listingID primitive.ObjectID) (*models.Listing, error) {
	args := m.Called(ctx, listingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Listing), args.Error(1)
}

func (m *MockListingService) GetVisibleListings(ctx context.Context) ([]models.Listing, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Listing), args.Error(1)
}

// MockAdService
type MockAdService struct {
	mock.Mock
}

func (m *MockAdService) CreateAd(ctx context.Context, ad *models.Advertisement) (*models.Advertisement, error) {
	args := m.Called(ctx, ad)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Advertisement), args.Error(1)
}

func (m *MockAdService) GetActiveAds(ctx context.Context, adType models.AdType) ([]models.Advertisement, error) {
	args := m.Called(ctx, adType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Advertisement), args.Error(1)
}

func (m *MockAdService) SetBanner(ctx context.Context, adID primitive.ObjectID, bannerKey string) error {
	args := m.Called(ctx, adID, bannerKey)
	return args.Error(0)
}

// MockServerService
type MockServerService struct {
	mock.Mock
}

func (m *MockServerService) CreateServer(ctx context.Context, server *models.GameServer) (*models.GameServer, error) {
	args := m.Called(ctx, server)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.GameServer), args.Error(1)
}

func (m *MockServerService) GetActiveServers(ctx context.Context) ([]models.GameServer, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.GameServer), args.Error(1)
}

func (m *MockServerService) GetActiveTextServers(ctx context.Context) ([]models.PremiumTextServer, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.PremiumTextServer), args.Error(1)
}

// MockPromoService
type MockPromoService struct {
	mock.Mock
}

func (m *MockPromoService) GetBanners(ctx context.Context) ([]models.PremiumBanner, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.PremiumBanner), args.Error(1)
}

func (m *MockPromoService) GetPromos(ctx context.Context, promoType *models.PromoType) ([]models.RotatingPromo, error) {
	args := m.Called(ctx, promoType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.RotatingPromo), args.Error(1)
}

func (m *MockPromoService) CurrentBanner() (models.PremiumBanner, bool) {
	args := m.Called()
	return args.Get(0).(models.PremiumBanner), args.Bool(1)
}

func (m *MockPromoService) CurrentPromo() (models.RotatingPromo, bool) {
	args := m.Called()
	return args.Get(0).(models.RotatingPromo), args.Bool(1)
}

func (m *MockPromoService) RefreshWidgets(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockPromoService) StopWidgets() {
	m.Called()
}

// MockSweepService
type MockSweepService struct {
	mock.Mock
}

func (m *MockSweepService) Run(ctx context.Context) (*services.SweepResult, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.SweepResult), args.Error(1)
}

// MockSettingsService
type MockSettingsService struct {
	mock.Mock
}

func (m *MockSettingsService) GetAllPublic(ctx context.Context) (map[string]interface{}, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]interface{}), args.Error(1)
}

func (m *MockSettingsService) Get(ctx context.Context, key string) (interface{}, error) {
	args := m.Called(ctx, key)
	return args.Get(0), args.Error(1)
}

func (m *MockSettingsService) GetString(ctx context.Context, key string, defaultValue string) string {
	args := m.Called(ctx, key, defaultValue)
	return args.String(0)
}

func (m *MockSettingsService) GetInt(ctx context.Context, key string, defaultValue int) int {
	args := m.Called(ctx, key, defaultValue)
	return args.Int(0)
}

func (m *MockSettingsService) GetBool(ctx context.Context, key string, defaultValue bool) bool {
	args := m.Called(ctx, key, defaultValue)
	return args.Bool(0)
}

func (m *MockSettingsService) GetDuration(ctx context.Context, key string, defaultValue time.Duration) time.Duration {
	args := m.Called(ctx, key, defaultValue)
	return args.Get(0).(time.Duration)
}

func (m *MockSettingsService) Set(ctx context.Context, key string, value interface{}, isPublic bool) error {
	args := m.Called(ctx, key, value, isPublic)
	return args.Error(0)
}

func (m *MockSettingsService) Load(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockSettingsService) SubscribeToChanges(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// MockCatalogService
type MockCatalogService struct {
	mock.Mock
}

func (m *MockCatalogService) GetPackage(ctx context.Context, packageID primitive.ObjectID) (*models.PricingPackage, error) {
	args := m.Called(ctx, packageID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PricingPackage), args.Error(1)
}

func (m *MockCatalogService) ListPackages(ctx context.Context) ([]models.PricingPackage, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.PricingPackage), args.Error(1)
}

func (m *MockCatalogService) SeedDefaultPackages(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// MockS3Storage
type MockS3Storage struct {
	mock.Mock
}

func (m *MockS3Storage) GenerateBannerUploadURL(ctx context.Context, userID, filename, contentType string) (string, string, error) {
	args := m.Called(ctx, userID, filename, contentType)
	return args.String(0), args.String(1), args.Error(2)
}

func (m *MockS3Storage) PublicURL(key string) string {
	args := m.Called(key)
	return args.String(0)
}

// MockMessageService
type MockMessageService struct {
	mock.Mock
}

func (m *MockMessageService) SendMessage(ctx context.Context, senderID, receiverID, content string, listingID *primitive.ObjectID) (*models.Message, error) {
	args := m.Called(ctx, senderID, receiverID, content, listingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Message), args.Error(1)
}

func (m *MockMessageService) GetConversation(ctx context.Context, userA, userB string) ([]models.Message, error) {
	args := m.Called(ctx, userA, userB)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Message), args.Error(1)
}

func (m *MockMessageService) GetConversationsForUser(ctx context.Context, userID string) ([]models.Message, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Message), args.Error(1)
}

// MockTaskEnqueuer
type MockTaskEnqueuer struct {
	mock.Mock
}

func (m *MockTaskEnqueuer) EnqueueEmail(ctx context.Context, to string, emailType models.EmailType, data map[string]interface{}) error {
	args := m.Called(ctx, to, emailType, data)
	return args.Error(0)
}

func (m *MockTaskEnqueuer) EnqueueBannerProcess(ctx context.Context, s3Key, adID string) error {
	args := m.Called(ctx, s3Key, adID)
	return args.Error(0)
}
