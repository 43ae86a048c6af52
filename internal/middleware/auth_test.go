package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"

	"diygenie-backend/internal/config"
	"diygenie-backend/internal/middleware"
)

func authRouter(cfg *config.Config) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(middleware.AuthMiddleware(cfg))
	router.GET("/test", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"caller": middleware.CallerID(c, c.Query("user_id"))})
	})
	return router
}

func TestAuthMiddleware_NoTokenPassesThrough(t *testing.T) {
	router := authRouter(&config.Config{SupabaseJWTSecret: "test-secret"})

	req, _ := http.NewRequest("GET", "/test?user_id=user-456", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "user-456")
}

func TestAuthMiddleware_InvalidToken(t *testing.T) {
	router := authRouter(&config.Config{SupabaseJWTSecret: "test-secret"})

	req, _ := http.NewRequest("GET", "/test", nil)
	req.Header.Set("Authorization", "Bearer invalid-token")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthMiddleware_ValidTokenWinsOverField(t *testing.T) {
	cfg := &config.Config{SupabaseJWTSecret: "test-secret-key-for-jwt-signing-must-be-long-enough"}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "user-123",
	})
	tokenString, _ := token.SignedString([]byte(cfg.SupabaseJWTSecret))

	router := authRouter(cfg)

	req, _ := http.NewRequest("GET", "/test?user_id=user-456", nil)
	req.Header.Set("Authorization", "Bearer "+tokenString)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "user-123")
	assert.NotContains(t, w.Body.String(), "user-456")
}

func TestAuthMiddleware_WrongSignature(t *testing.T) {
	cfg := &config.Config{SupabaseJWTSecret: "the-real-secret"}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": "user-123"})
	tokenString, _ := token.SignedString([]byte("a-different-secret"))

	router := authRouter(cfg)

	req, _ := http.NewRequest("GET", "/test", nil)
	req.Header.Set("Authorization", "Bearer "+tokenString)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
