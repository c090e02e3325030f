// Bearer-token authentication middleware.
//
// This file binds requests to an owner identity. Tokens are HS256 JWTs whose
// "sub" claim carries the user id; validated ids are stashed in the Gin
// context under "userID" where handlers and the rate limiter pick them up.
//
// The middleware is deliberately small: credential issuance, refresh, and
// password flows live outside this service. When no signing secret is
// configured the middleware passes requests through untouched and the
// transport falls back to the X-User-ID header (demo/test mode).
package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// Auth returns a Gin middleware that validates an optional Authorization
// bearer token signed with secret.
//
// Behavior:
//   - secret == "": pass-through, no validation is attempted.
//   - no Authorization header: pass-through; downstream decides whether an
//     anonymous identity is acceptable.
//   - malformed, badly signed, expired, or sub-less token: 401 with the
//     standard error envelope.
//   - valid token: "userID" is set in the Gin context from the "sub" claim.
func Auth(secret string) gin.HandlerFunc {
	if secret == "" {
		return func(c *gin.Context) { c.Next() }
	}
	key := []byte(secret)

	return func(c *gin.Context) {
		raw := bearerToken(c.GetHeader("Authorization"))
		if raw == "" {
			c.Next()
			return
		}

		token, err := jwt.Parse(raw,
			func(t *jwt.Token) (any, error) { return key, nil },
			jwt.WithValidMethods([]string{"HS256"}),
		)
		if err != nil || !token.Valid {
			abortUnauthorized(c, "invalid token")
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			abortUnauthorized(c, "invalid token claims")
			return
		}
		sub, _ := claims["sub"].(string)
		if strings.TrimSpace(sub) == "" {
			abortUnauthorized(c, "token has no subject")
			return
		}

		c.Set("userID", sub)
		c.Next()
	}
}

// bearerToken extracts the credential from an "Authorization: Bearer x" value.
func bearerToken(header string) string {
	const prefix = "bearer "
	if len(header) > len(prefix) && strings.EqualFold(header[:len(prefix)], prefix) {
		return strings.TrimSpace(header[len(prefix):])
	}
	return ""
}

// abortUnauthorized writes the standard error envelope with status 401.
func abortUnauthorized(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"request_id": c.Writer.Header().Get("X-Request-ID"),
		"code":       "unauthorized",
		"message":    msg,
	})
}
