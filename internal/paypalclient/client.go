// Package paypalclient wraps the PayPal SDK behind a small interface. The SDK
// handles the client-credential token exchange; this wrapper narrows orders
// and captures down to the fields the capture flow needs.
package paypalclient

import (
	"context"
	"fmt"

	"github.com/plutov/paypal/v4"

	"github.com/ookayiztall/mu-nexus-hub-sub001/internal/config"
)

// OrderCompleted is the provider status of an order that has already been
// captured. Seeing it means capture must not be attempted again.
const OrderCompleted = "COMPLETED"

// IPayPalClient is the provider surface used by the capture flow.
type IPayPalClient interface {
	Configured() bool
	// Environment reports the configured provider environment ("sandbox" or
	// "live"). This is an explicit configuration flag, not inferred from
	// credential shape.
	Environment() string
	GetOrder(ctx context.Context, orderID string) (*Order, error)
	CaptureOrder(ctx context.Context, orderID string) (*CaptureResult, error)
}

// Order is the slice of a provider order the capture flow consumes.
type Order struct {
	ID          string
	Status      string
	ReferenceID string // purchase reference embedded at session creation
}

// CaptureResult reports the outcome of a capture call.
type CaptureResult struct {
	OrderID   string
	CaptureID string
	Status    string
}

// ErrNotConfigured distinguishes missing credentials from provider failures
// so handlers can answer with a needsConfiguration signal.
var ErrNotConfigured = fmt.Errorf("paypal is not configured")

type paypalClient struct {
	client     *paypal.Client
	env        string
	configured bool
}

// New creates a PayPal client from configuration. Missing credentials yield
// an unconfigured client rather than an error at startup.
func New(cfg *config.Config) (IPayPalClient, error) {
	c := &paypalClient{env: cfg.PayPalEnv, configured: cfg.PayPalConfigured()}
	if !c.configured {
		return c, nil
	}

	base := paypal.APIBaseSandBox
	if cfg.PayPalEnv == "live" {
		base = paypal.APIBaseLive
	}
	client, err := paypal.NewClient(cfg.PayPalClientID, cfg.PayPalClientSecret, base)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize PayPal client: %w", err)
	}
	c.client = client
	return c, nil
}

func (c *paypalClient) Configured() bool {
	return c.configured
}

func (c *paypalClient) Environment() string {
	return c.env
}

func (c *paypalClient) GetOrder(ctx context.Context, orderID string) (*Order, error) {
	if !c.configured {
		return nil, ErrNotConfigured
	}

	order, err := c.client.GetOrder(ctx, orderID)
	if err != nil {
		// The SDK error carries the raw provider body; keep it attached for
		// operator diagnosis.
		return nil, fmt.Errorf("failed to fetch order %s: %w", orderID, err)
	}

	out := &Order{ID: order.ID, Status: string(order.Status)}
	if len(order.PurchaseUnits) > 0 {
		out.ReferenceID = order.PurchaseUnits[0].ReferenceID
	}
	return out, nil
}

func (c *paypalClient) CaptureOrder(ctx context.Context, orderID string) (*CaptureResult, error) {
	if !c.configured {
		return nil, ErrNotConfigured
	}

	resp, err := c.client.CaptureOrder(ctx, orderID, paypal.CaptureOrderRequest{})
	if err != nil {
		return nil, fmt.Errorf("failed to capture order %s: %w", orderID, err)
	}

	out := &CaptureResult{OrderID: resp.ID, Status: string(resp.Status)}
	for _, pu := range resp.PurchaseUnits {
		if pu.Payments != nil && len(pu.Payments.Captures) > 0 {
			out.CaptureID = pu.Payments.Captures[0].ID
			break
		}
	}
	return out, nil
}
