package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const authTestSecret = "unit-test-secret"

func signedToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	s, err := tok.SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return s
}

func authRouter(secret string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Auth(secret))
	r.GET("/whoami", func(c *gin.Context) {
		uid, _ := c.Get("userID")
		s, _ := uid.(string)
		c.String(http.StatusOK, s)
	})
	return r
}

func TestAuth_ValidToken_SetsUserID(t *testing.T) {
	r := authRouter(authTestSecret)

	tok := signedToken(t, authTestSecret, jwt.MapClaims{
		"sub": "u42",
		"exp": time.Now().Add(time.Hour).Unix(),
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK || w.Body.String() != "u42" {
		t.Fatalf("got %d %q", w.Code, w.Body.String())
	}
}

func TestAuth_NoHeader_PassesThrough(t *testing.T) {
	r := authRouter(authTestSecret)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK || w.Body.String() != "" {
		t.Fatalf("anonymous request should pass through, got %d %q", w.Code, w.Body.String())
	}
}

func TestAuth_EmptySecret_Disabled(t *testing.T) {
	r := authRouter("")

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "Bearer not-even-a-jwt")
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("disabled auth should ignore tokens, got %d", w.Code)
	}
}

func TestAuth_RejectsBadTokens(t *testing.T) {
	r := authRouter(authTestSecret)

	cases := []struct {
		name  string
		token string
	}{
		{"garbage", "Bearer zzz.zzz.zzz"},
		{"wrong secret", "Bearer " + signedToken(t, "other-secret", jwt.MapClaims{"sub": "u1"})},
		{"expired", "Bearer " + signedToken(t, authTestSecret, jwt.MapClaims{
			"sub": "u1",
			"exp": time.Now().Add(-time.Hour).Unix(),
		})},
		{"missing sub", "Bearer " + signedToken(t, authTestSecret, jwt.MapClaims{
			"exp": time.Now().Add(time.Hour).Unix(),
		})},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
			req.Header.Set("Authorization", tc.token)
			r.ServeHTTP(w, req)
			if w.Code != http.StatusUnauthorized {
				t.Fatalf("expected 401, got %d", w.Code)
			}
			var body map[string]any
			if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
				t.Fatalf("invalid JSON body: %v", err)
			}
			if body["code"] != "unauthorized" {
				t.Fatalf("unexpected body: %v", body)
			}
		})
	}
}

func Test_bearerToken(t *testing.T) {
	if got := bearerToken("Bearer abc"); got != "abc" {
		t.Fatalf("got %q", got)
	}
	if got := bearerToken("bearer abc"); got != "abc" {
		t.Fatalf("case-insensitive prefix: got %q", got)
	}
	if got := bearerToken("Basic abc"); got != "" {
		t.Fatalf("non-bearer scheme: got %q", got)
	}
	if got := bearerToken(""); got != "" {
		t.Fatalf("empty header: got %q", got)
	}
}
