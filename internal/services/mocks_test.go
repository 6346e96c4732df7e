package services

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/ookayiztall/mu-nexus-hub-sub001/internal/paypalclient"
	"github.com/ookayiztall/mu-nexus-hub-sub001/internal/stripeclient"
)

// MockStripeClient is a testify mock of stripeclient.IStripeClient.
type MockStripeClient struct {
	mock.Mock
}

func (m *MockStripeClient) Configured() bool {
	args := m.Called()
	return args.Bool(0)
}

func (m *MockStripeClient) FindOrCreateCustomer(ctx context.Context, email string) (string, error) {
	args := m.Called(ctx, email)
	return args.String(0), args.Error(1)
}

func (m *MockStripeClient) CreateCheckoutSession(ctx context.Context, params stripeclient.SessionParams) (*stripeclient.Session, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*stripeclient.Session), args.Error(1)
}

func (m *MockStripeClient) CreateExpressAccount(ctx context.Context, email string) (string, error) {
	args := m.Called(ctx, email)
	return args.String(0), args.Error(1)
}

func (m *MockStripeClient) CreateAccountLink(ctx context.Context, accountID, refreshURL, returnURL string) (string, error) {
	args := m.Called(ctx, accountID, refreshURL, returnURL)
	return args.String(0), args.Error(1)
}

func (m *MockStripeClient) CreateLoginLink(ctx context.Context, accountID string) (string, error) {
	args := m.Called(ctx, accountID)
	return args.String(0), args.Error(1)
}

func (m *MockStripeClient) GetAccount(ctx context.Context, accountID string) (*stripeclient.AccountStatus, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*stripeclient.AccountStatus), args.Error(1)
}

func (m *MockStripeClient) GetBalance(ctx context.Context, accountID string) (*stripeclient.Balance, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*stripeclient.Balance), args.Error(1)
}

// MockPayPalClient is a testify mock of paypalclient.IPayPalClient.
type MockPayPalClient struct {
	mock.Mock
}

func (m *MockPayPalClient) Configured() bool {
	args := m.Called()
	return args.Bool(0)
}

func (m *MockPayPalClient) Environment() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockPayPalClient) GetOrder(ctx context.Context, orderID string) (*paypalclient.Order, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*paypalclient.Order), args.Error(1)
}

func (m *MockPayPalClient) CaptureOrder(ctx context.Context, orderID string) (*paypalclient.CaptureResult, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*paypalclient.CaptureResult), args.Error(1)
}
