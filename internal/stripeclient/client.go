// Package stripeclient wraps the Stripe SDK behind a small interface so
// services can be exercised with mocks. It covers the checkout and Connect
// surfaces the hub actually uses.
package stripeclient

import (
	"context"
	"fmt"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"

	"github.com/ookayiztall/mu-nexus-hub-sub001/internal/config"
)

// IStripeClient is the provider surface used by checkout and Connect flows.
type IStripeClient interface {
	Configured() bool
	FindOrCreateCustomer(ctx context.Context, email string) (string, error)
	CreateCheckoutSession(ctx context.Context, params SessionParams) (*Session, error)
	CreateExpressAccount(ctx context.Context, email string) (string, error)
	CreateAccountLink(ctx context.Context, accountID, refreshURL, returnURL string) (string, error)
	CreateLoginLink(ctx context.Context, accountID string) (string, error)
	GetAccount(ctx context.Context, accountID string) (*AccountStatus, error)
	GetBalance(ctx context.Context, accountID string) (*Balance, error)
}

// SessionParams describes one hosted checkout session. Metadata is the sole
// linkage used later to activate the purchase, so callers must tag sessions
// with user, package, product and duration.
type SessionParams struct {
	AmountCents       int64
	Currency          string
	ProductName       string
	CustomerID        string
	SuccessURL        string
	CancelURL         string
	ClientReferenceID string
	IdempotencyKey    string
	Metadata          map[string]string
}

// Session is the provider-hosted checkout session the buyer is redirected to.
type Session struct {
	ID  string
	URL string
}

// AccountStatus carries the live Connect onboarding flags.
type AccountStatus struct {
	DetailsSubmitted bool
	ChargesEnabled   bool
	PayoutsEnabled   bool
}

// Balance summarizes a connected account's balance.
type Balance struct {
	AvailableCents int64
	PendingCents   int64
	Currency       string
}

type stripeClient struct {
	api        *client.API
	configured bool
}

// New creates a Stripe client from configuration. An empty secret key yields
// an unconfigured client: every call except Configured fails, and callers are
// expected to check Configured first to produce a needsConfiguration signal.
func New(cfg *config.Config) IStripeClient {
	c := &stripeClient{configured: cfg.StripeConfigured()}
	if c.configured {
		c.api = &client.API{}
		c.api.Init(cfg.StripeSecretKey, nil)
	}
	return c
}

func (c *stripeClient) Configured() bool {
	return c.configured
}

// ErrNotConfigured is returned when a provider call is attempted without a
// secret key present.
var ErrNotConfigured = fmt.Errorf("stripe is not configured")

func (c *stripeClient) FindOrCreateCustomer(ctx context.Context, email string) (string, error) {
	if !c.configured {
		return "", ErrNotConfigured
	}

	listParams := &stripe.CustomerListParams{Email: stripe.String(email)}
	listParams.Context = ctx
	listParams.Limit = stripe.Int64(1)
	iter := c.api.Customers.List(listParams)
	if iter.Next() {
		return iter.Customer().ID, nil
	}
	if err := iter.Err(); err != nil {
		return "", fmt.Errorf("failed to look up customer by email: %w", err)
	}

	createParams := &stripe.CustomerParams{Email: stripe.String(email)}
	createParams.Context = ctx
	cust, err := c.api.Customers.New(createParams)
	if err != nil {
		return "", fmt.Errorf("failed to create customer: %w", err)
	}
	return cust.ID, nil
}

func (c *stripeClient) CreateCheckoutSession(ctx context.Context, p SessionParams) (*Session, error) {
	if !c.configured {
		return nil, ErrNotConfigured
	}

	params := &stripe.CheckoutSessionParams{
		Mode:       stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL: stripe.String(p.SuccessURL),
		CancelURL:  stripe.String(p.CancelURL),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				Quantity: stripe.Int64(1),
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency:   stripe.String(p.Currency),
					UnitAmount: stripe.Int64(p.AmountCents),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripe.String(p.ProductName),
					},
				},
			},
		},
	}
	params.Context = ctx
	if p.CustomerID != "" {
		params.Customer = stripe.String(p.CustomerID)
	}
	if p.ClientReferenceID != "" {
		params.ClientReferenceID = stripe.String(p.ClientReferenceID)
	}
	if p.IdempotencyKey != "" {
		params.IdempotencyKey = stripe.String(p.IdempotencyKey)
	}
	for k, v := range p.Metadata {
		params.AddMetadata(k, v)
	}

	sess, err := c.api.CheckoutSessions.New(params)
	if err != nil {
		return nil, fmt.Errorf("failed to create checkout session: %w", err)
	}
	return &Session{ID: sess.ID, URL: sess.URL}, nil
}

func (c *stripeClient) CreateExpressAccount(ctx context.Context, email string) (string, error) {
	if !c.configured {
		return "", ErrNotConfigured
	}

	params := &stripe.AccountParams{
		Type:  stripe.String(string(stripe.AccountTypeExpress)),
		Email: stripe.String(email),
	}
	params.Context = ctx
	acct, err := c.api.Accounts.New(params)
	if err != nil {
		return "", fmt.Errorf("failed to create express account: %w", err)
	}
	return acct.ID, nil
}

func (c *stripeClient) CreateAccountLink(ctx context.Context, accountID, refreshURL, returnURL string) (string, error) {
	if !c.configured {
		return "", ErrNotConfigured
	}

	params := &stripe.AccountLinkParams{
		Account:    stripe.String(accountID),
		RefreshURL: stripe.String(refreshURL),
		ReturnURL:  stripe.String(returnURL),
		Type:       stripe.String(string(stripe.AccountLinkTypeAccountOnboarding)),
	}
	params.Context = ctx
	link, err := c.api.AccountLinks.New(params)
	if err != nil {
		return "", fmt.Errorf("failed to create account link: %w", err)
	}
	return link.URL, nil
}

func (c *stripeClient) CreateLoginLink(ctx context.Context, accountID string) (string, error) {
	if !c.configured {
		return "", ErrNotConfigured
	}

	params := &stripe.LoginLinkParams{Account: stripe.String(accountID)}
	params.Context = ctx
	link, err := c.api.LoginLinks.New(params)
	if err != nil {
		return "", fmt.Errorf("failed to create login link: %w", err)
	}
	return link.URL, nil
}

func (c *stripeClient) GetAccount(ctx context.Context, accountID string) (*AccountStatus, error) {
	if !c.configured {
		return nil, ErrNotConfigured
	}

	params := &stripe.AccountParams{}
	params.Context = ctx
	acct, err := c.api.Accounts.GetByID(accountID, params)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch account %s: %w", accountID, err)
	}
	return &AccountStatus{
		DetailsSubmitted: acct.DetailsSubmitted,
		ChargesEnabled:   acct.ChargesEnabled,
		PayoutsEnabled:   acct.PayoutsEnabled,
	}, nil
}

func (c *stripeClient) GetBalance(ctx context.Context, accountID string) (*Balance, error) {
	if !c.configured {
		return nil, ErrNotConfigured
	}

	params := &stripe.BalanceParams{}
	params.Context = ctx
	params.SetStripeAccount(accountID)
	bal, err := c.api.Balance.Get(params)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch balance for %s: %w", accountID, err)
	}

	out := &Balance{}
	for _, a := range bal.Available {
		out.AvailableCents += a.Amount
		out.Currency = string(a.Currency)
	}
	for _, p := range bal.Pending {
		out.PendingCents += p.Amount
	}
	return out, nil
}
