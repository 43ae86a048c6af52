package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"diygenie-backend/internal/config"
)

const UserIDKey = "user_id"

// AuthMiddleware verifies a Supabase JWT when one is presented and puts
// its sub claim into the request context. A request without a bearer token
// passes through: the mobile client is authenticated upstream and carries
// its user id in the canonical user_id field, which handlers resolve via
// CallerID. A token that is present but invalid is always rejected.
func AuthMiddleware(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.Next()
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.JSON(http.StatusUnauthorized, gin.H{"ok": false, "error": "invalid authorization header format"})
			c.Abort()
			return
		}

		tokenString := strings.TrimSpace(parts[1])
		if tokenString == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"ok": false, "error": "empty token"})
			c.Abort()
			return
		}

		// Supabase signs access tokens with HS256 and the project JWT secret.
		token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			if cfg.SupabaseJWTSecret == "" {
				return nil, jwt.ErrSignatureInvalid
			}
			return []byte(cfg.SupabaseJWTSecret), nil
		}, jwt.WithValidMethods([]string{"HS256"}))

		if err != nil || !token.Valid {
			msg := "invalid token"
			if err != nil {
				msg = err.Error()
			}
			c.JSON(http.StatusUnauthorized, gin.H{"ok": false, "error": "invalid token", "message": msg})
			c.Abort()
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"ok": false, "error": "invalid token claims"})
			c.Abort()
			return
		}

		sub, ok := claims["sub"].(string)
		if !ok || sub == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"ok": false, "error": "missing user id in token"})
			c.Abort()
			return
		}

		c.Set(UserIDKey, sub)
		c.Next()
	}
}

// CallerID resolves the caller identity: a verified token wins over the
// request's user_id field. Empty result means the request is anonymous.
func CallerID(c *gin.Context, requestUserID string) string {
	if v, exists := c.Get(UserIDKey); exists {
		if s, ok := v.(string); ok && s != "" {
			return s
		}
	}
	return strings.TrimSpace(requestUserID)
}
