package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"fintrack/internal/models"
)

func testUser() *models.User {
	return &models.User{
		Base:  models.Base{ID: "018f0000-0000-7000-8000-000000000001"},
		Email: "token@test.com",
	}
}

func TestTokenManager(t *testing.T) {
	tm := NewTokenManager("test-secret")
	user := testUser()

	t.Run("refresh_token_round_trip", func(t *testing.T) {
		token, err := tm.GenerateRefreshToken(user)
		if err != nil {
			t.Fatalf("failed to generate refresh token: %v", err)
		}

		claims, err := tm.ValidateRefreshToken(token)
		if err != nil {
			t.Fatalf("failed to validate refresh token: %v", err)
		}
		if claims.UserID != user.ID {
			t.Errorf("expected user ID %s, got %s", user.ID, claims.UserID)
		}
		if claims.TokenType != "refresh" {
			t.Errorf("expected refresh token type, got %s", claims.TokenType)
		}
	})

	t.Run("access_token_rejected_as_refresh", func(t *testing.T) {
		token, err := tm.GenerateAccessToken(user)
		if err != nil {
			t.Fatalf("failed to generate access token: %v", err)
		}

		if _, err := tm.ValidateRefreshToken(token); err == nil {
			t.Error("expected access token to be rejected as refresh token")
		}
	})

	t.Run("wrong_secret_rejected", func(t *testing.T) {
		token, err := tm.GenerateRefreshToken(user)
		if err != nil {
			t.Fatalf("failed to generate refresh token: %v", err)
		}

		other := NewTokenManager("other-secret")
		if _, err := other.ValidateRefreshToken(token); err == nil {
			t.Error("expected token signed with a different secret to be rejected")
		}
	})

	t.Run("garbage_rejected", func(t *testing.T) {
		if _, err := tm.ValidateRefreshToken("not.a.jwt"); err == nil {
			t.Error("expected malformed token to be rejected")
		}
	})
}

func TestHashToken(t *testing.T) {
	a := HashToken("token-a")
	b := HashToken("token-b")

	if a == b {
		t.Error("expected different tokens to hash differently")
	}
	if a != HashToken("token-a") {
		t.Error("expected hashing to be deterministic")
	}
	if len(a) != 64 {
		t.Errorf("expected 64 hex characters, got %d", len(a))
	}
}

func TestAuthMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	tm := NewTokenManager("test-secret")
	user := testUser()

	router := gin.New()
	router.GET("/protected", AuthMiddleware(tm), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user_id": c.GetString("userID")})
	})

	serve := func(header string) *httptest.ResponseRecorder {
		req := httptest.NewRequest("GET", "/protected", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		return rec
	}

	t.Run("valid_access_token", func(t *testing.T) {
		token, err := tm.GenerateAccessToken(user)
		if err != nil {
			t.Fatalf("failed to generate access token: %v", err)
		}

		rec := serve("Bearer " + token)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
	})

	t.Run("missing_header", func(t *testing.T) {
		if rec := serve(""); rec.Code != http.StatusUnauthorized {
			t.Errorf("expected 401, got %d", rec.Code)
		}
	})

	t.Run("malformed_header", func(t *testing.T) {
		if rec := serve("Token abc"); rec.Code != http.StatusUnauthorized {
			t.Errorf("expected 401, got %d", rec.Code)
		}
	})

	t.Run("invalid_token", func(t *testing.T) {
		if rec := serve("Bearer garbage"); rec.Code != http.StatusUnauthorized {
			t.Errorf("expected 401, got %d", rec.Code)
		}
	})

	t.Run("refresh_token_rejected", func(t *testing.T) {
		token, err := tm.GenerateRefreshToken(user)
		if err != nil {
			t.Fatalf("failed to generate refresh token: %v", err)
		}

		if rec := serve("Bearer " + token); rec.Code != http.StatusUnauthorized {
			t.Errorf("expected 401 for refresh token on a protected route, got %d", rec.Code)
		}
	})
}
