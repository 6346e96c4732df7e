package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/ookayiztall/mu-nexus-hub-sub001/internal/config"
	"github.com/ookayiztall/mu-nexus-hub-sub001/internal/db"
	"github.com/ookayiztall/mu-nexus-hub-sub001/internal/models"
	"github.com/ookayiztall/mu-nexus-hub-sub001/internal/stripeclient"
)

// ErrNoConnectAccount signals the seller has not started onboarding; no
// provider call is made for them.
var ErrNoConnectAccount = errors.New("seller has no connected account")

// ConnectStatus is the seller dashboard state. The onboarding flags come from
// the provider on every call, never from the cached profile alone.
type ConnectStatus struct {
	State              string `json:"state"` // no_account, pending_onboarding, onboarded
	Connected          bool   `json:"connected"`
	OnboardingComplete bool   `json:"onboarding_complete"`
	StripeConfigured   bool   `json:"stripe_configured"`
	AccountID          string `json:"account_id,omitempty"`
	DetailsSubmitted   bool   `json:"details_submitted"`
	ChargesEnabled     bool   `json:"charges_enabled"`
	PayoutsEnabled     bool   `json:"payouts_enabled"`
	BalanceAvailable   *int64 `json:"balance_available_cents,omitempty"`
	BalancePending     *int64 `json:"balance_pending_cents,omitempty"`
	BalanceCurrency    string `json:"balance_currency,omitempty"`
	BalanceUnavailable bool   `json:"balance_unavailable,omitempty"`
}

// IConnectService manages seller Stripe Connect sub-accounts.
type IConnectService interface {
	StartOnboarding(ctx context.Context, caller Identity, refreshURL, returnURL string) (string, error)
	LoginLink(ctx context.Context, userID string) (string, error)
	Status(ctx context.Context, userID string) (*ConnectStatus, error)
}

const sellerProfilesCollection = "seller_profiles"

type connectService struct {
	db     *mongo.Database
	cfg    *config.Config
	stripe stripeclient.IStripeClient
}

// NewConnectService creates a new ConnectService.
func NewConnectService(db *mongo.Database, cfg *config.Config, stripe stripeclient.IStripeClient) IConnectService {
	return &connectService{db: db, cfg: cfg, stripe: stripe}
}

// StartOnboarding creates the seller's express account on first call, then
// returns a fresh onboarding link. Re-entry with an existing account reuses it
// so an abandoned onboarding can resume. Empty redirect URLs fall back to the
// configured defaults, so callers need only their bearer identity.
func (s *connectService) StartOnboarding(ctx context.Context, caller Identity, refreshURL, returnURL string) (string, error) {
	if !s.stripe.Configured() {
		return "", ErrPaymentNotConfigured
	}
	if refreshURL == "" {
		refreshURL = s.cfg.ConnectRefreshURL
	}
	if returnURL == "" {
		returnURL = s.cfg.ConnectReturnURL
	}

	profile, err := s.getOrCreateProfile(ctx, caller)
	if err != nil {
		return "", err
	}

	if profile.StripeAccountID == "" {
		accountID, err := s.stripe.CreateExpressAccount(ctx, caller.Email)
		if err != nil {
			return "", err
		}
		update := bson.M{"$set": bson.M{"stripe_account_id": accountID, "updated_at": time.Now().UTC()}}
		if _, err := s.db.Collection(sellerProfilesCollection).UpdateByID(ctx, profile.ID, update); err != nil {
			return "", fmt.Errorf("failed to store account id for user %s: %w", caller.UserID, err)
		}
		profile.StripeAccountID = accountID
	}

	return s.stripe.CreateAccountLink(ctx, profile.StripeAccountID, refreshURL, returnURL)
}

// LoginLink returns an express dashboard link for an onboarded seller.
func (s *connectService) LoginLink(ctx context.Context, userID string) (string, error) {
	if !s.stripe.Configured() {
		return "", ErrPaymentNotConfigured
	}

	profile, err := s.findProfile(ctx, userID)
	if err != nil {
		return "", err
	}
	if profile == nil || profile.StripeAccountID == "" {
		return "", ErrNoConnectAccount
	}
	return s.stripe.CreateLoginLink(ctx, profile.StripeAccountID)
}

// Status derives the seller's state. Without an account no provider call is
// made. With one, the live flags are fetched every time; once the account has
// details submitted and charges enabled the profile's onboarding-complete
// marker is persisted and never cleared. Balance is only fetched for onboarded sellers, and a balance
// failure degrades the response instead of failing it.
func (s *connectService) Status(ctx context.Context, userID string) (*ConnectStatus, error) {
	status := &ConnectStatus{State: "no_account", StripeConfigured: s.stripe.Configured()}

	profile, err := s.findProfile(ctx, userID)
	if err != nil {
		return nil, err
	}
	if profile == nil || profile.StripeAccountID == "" {
		return status, nil
	}
	status.AccountID = profile.StripeAccountID
	status.Connected = true
	status.State = "pending_onboarding"

	if !s.stripe.Configured() {
		return status, nil
	}

	acct, err := s.stripe.GetAccount(ctx, profile.StripeAccountID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch connect account state: %w", err)
	}
	status.DetailsSubmitted = acct.DetailsSubmitted
	status.ChargesEnabled = acct.ChargesEnabled
	status.PayoutsEnabled = acct.PayoutsEnabled

	onboarded := profile.StripeOnboardingComplete
	if acct.DetailsSubmitted && acct.ChargesEnabled && !profile.StripeOnboardingComplete {
		update := bson.M{"$set": bson.M{"stripe_onboarding_complete": true, "updated_at": time.Now().UTC()}}
		if _, err := s.db.Collection(sellerProfilesCollection).UpdateByID(ctx, profile.ID, update); err != nil {
			log.Printf("Failed to persist onboarding completion for user %s: %v", userID, err)
		}
		onboarded = true
	}

	if onboarded {
		status.State = "onboarded"
		status.OnboardingComplete = true
		bal, err := s.stripe.GetBalance(ctx, profile.StripeAccountID)
		if err != nil {
			log.Printf("Balance fetch failed for account %s: %v", profile.StripeAccountID, err)
			status.BalanceUnavailable = true
		} else {
			status.BalanceAvailable = &bal.AvailableCents
			status.BalancePending = &bal.PendingCents
			status.BalanceCurrency = bal.Currency
		}
	}
	return status, nil
}

func (s *connectService) findProfile(ctx context.Context, userID string) (*models.SellerProfile, error) {
	var profile models.SellerProfile
	err := s.db.Collection(sellerProfilesCollection).FindOne(ctx, bson.M{"user_id": userID}).Decode(&profile)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load seller profile for user %s: %w", userID, err)
	}
	return &profile, nil
}

func (s *connectService) getOrCreateProfile(ctx context.Context, caller Identity) (*models.SellerProfile, error) {
	profile, err := s.findProfile(ctx, caller.UserID)
	if err != nil {
		return nil, err
	}
	if profile != nil {
		return profile, nil
	}

	now := time.Now().UTC()
	profile = &models.SellerProfile{
		ID:        primitive.NewObjectID(),
		UserID:    caller.UserID,
		Email:     caller.Email,
		CreatedAt: now,
		UpdatedAt: now,
	}
	err = db.Try(func() error {
		_, insertErr := s.db.Collection(sellerProfilesCollection).InsertOne(ctx, profile)
		return insertErr
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create seller profile for user %s: %w", caller.UserID, err)
	}
	return profile, nil
}
