package handlers_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/ookayiztall/mu-nexus-hub-sub001/internal/api/handlers"
	"github.com/ookayiztall/mu-nexus-hub-sub001/internal/services"
)

func setupConnectRouter(connectSvc *MockConnectService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := handlers.NewConnectHandler(connectSvc)
	auth := r.Group("/v1", asUser("seller1", "seller@example.com"))
	auth.POST("/connect/account", h.StartOnboarding)
	auth.POST("/connect/login-link", h.LoginLink)
	auth.GET("/connect/status", h.Status)
	return r
}

func TestStartOnboarding(t *testing.T) {
	connectSvc := new(MockConnectService)
	connectSvc.On("StartOnboarding", mock.Anything, services.Identity{UserID: "seller1", Email: "seller@example.com"}, "https://app.example.com/refresh", "https://app.example.com/return").
		Return("https://connect.stripe.com/setup/s/abc", nil)

	r := setupConnectRouter(connectSvc)
	w := postJSON(r, "/v1/connect/account", `{"refresh_url": "https://app.example.com/refresh", "return_url": "https://app.example.com/return"}`)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "connect.stripe.com")
	connectSvc.AssertExpectations(t)
}

func TestStartOnboardingWithoutBody(t *testing.T) {
	connectSvc := new(MockConnectService)
	connectSvc.On("StartOnboarding", mock.Anything, services.Identity{UserID: "seller1", Email: "seller@example.com"}, "", "").
		Return("https://connect.stripe.com/setup/s/def", nil)

	r := setupConnectRouter(connectSvc)
	w := postJSON(r, "/v1/connect/account", ``)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "connect.stripe.com")
	connectSvc.AssertExpectations(t)
}

func TestLoginLinkWithoutAccount(t *testing.T) {
	connectSvc := new(MockConnectService)
	connectSvc.On("LoginLink", mock.Anything, "seller1").Return("", services.ErrNoConnectAccount)

	r := setupConnectRouter(connectSvc)
	w := postJSON(r, "/v1/connect/login-link", ``)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestConnectStatus(t *testing.T) {
	connectSvc := new(MockConnectService)
	connectSvc.On("Status", mock.Anything, "seller1").Return(&services.ConnectStatus{
		State:              "onboarded",
		Connected:          true,
		OnboardingComplete: true,
		StripeConfigured:   true,
		AccountID:          "acct_123",
		DetailsSubmitted:   true,
		ChargesEnabled:     true,
		PayoutsEnabled:     true,
	}, nil)

	r := setupConnectRouter(connectSvc)
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/v1/connect/status", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"onboarded"`)
	assert.Contains(t, w.Body.String(), `"connected":true`)
	assert.Contains(t, w.Body.String(), `"onboarding_complete":true`)
	assert.Contains(t, w.Body.String(), "acct_123")
	connectSvc.AssertExpectations(t)
}
