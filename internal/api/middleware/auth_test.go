package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/ookayiztall/mu-nexus-hub-sub001/internal/api/middleware"
	"github.com/ookayiztall/mu-nexus-hub-sub001/internal/auth"
)

const testJWTSecret = "test-secret"

func setupAuthEngine() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	authed := r.Group("/", middleware.AuthMiddleware(testJWTSecret))
	authed.GET("/me", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user_id": c.GetString(middleware.ContextKeyUserID)})
	})
	authed.GET("/admin", middleware.AdminMiddleware(), func(c *gin.Context) {
		c.String(http.StatusOK, "OK")
	})
	return r
}

func authedRequest(router *gin.Engine, path, token string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	router.ServeHTTP(w, req)
	return w
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	router := setupAuthEngine()
	token, err := auth.GenerateJWT("user123", "user@example.com", false, testJWTSecret, time.Hour)
	assert.NoError(t, err)

	w := authedRequest(router, "/me", token)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "user123")
}

func TestAuthMiddleware_MissingHeader(t *testing.T) {
	router := setupAuthEngine()

	w := authedRequest(router, "/me", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthMiddleware_InvalidToken(t *testing.T) {
	router := setupAuthEngine()

	w := authedRequest(router, "/me", "not-a-jwt")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthMiddleware_WrongSecret(t *testing.T) {
	router := setupAuthEngine()
	token, err := auth.GenerateJWT("user123", "user@example.com", false, "other-secret", time.Hour)
	assert.NoError(t, err)

	w := authedRequest(router, "/me", token)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAdminMiddleware(t *testing.T) {
	router := setupAuthEngine()

	adminToken, err := auth.GenerateJWT("admin1", "admin@example.com", true, testJWTSecret, time.Hour)
	assert.NoError(t, err)
	w := authedRequest(router, "/admin", adminToken)
	assert.Equal(t, http.StatusOK, w.Code)

	userToken, err := auth.GenerateJWT("user123", "user@example.com", false, testJWTSecret, time.Hour)
	assert.NoError(t, err)
	w = authedRequest(router, "/admin", userToken)
	assert.Equal(t, http.StatusForbidden, w.Code)
}
