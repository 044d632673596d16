package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/snapgram-app/backend/internal/models"
)

func TestTokenRoundTrip(t *testing.T) {
	m := NewManager("test-secret")
	user := models.User{ID: "user-1", Username: "ansel", Email: "ansel@example.com"}

	token, err := m.CreateToken(user)
	if err != nil {
		t.Fatalf("CreateToken: %v", err)
	}

	principal, err := m.ParseToken(token)
	if err != nil {
		t.Fatalf("ParseToken: %v", err)
	}
	if principal.UserID != "user-1" || principal.Username != "ansel" || principal.Email != "ansel@example.com" {
		t.Errorf("principal = %+v", principal)
	}
}

func TestParseRejectsWrongSecret(t *testing.T) {
	token, err := NewManager("secret-a").CreateToken(models.User{ID: "user-1"})
	if err != nil {
		t.Fatalf("CreateToken: %v", err)
	}

	if _, err := NewManager("secret-b").ParseToken(token); err == nil {
		t.Fatal("expected error for token signed with a different secret")
	}
}

func TestParseRejectsExpiredToken(t *testing.T) {
	m := NewManager("test-secret")

	claims := jwt.MapClaims{
		"user_id": "user-1",
		"exp":     time.Now().Add(-time.Hour).Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("signing: %v", err)
	}

	if _, err := m.ParseToken(token); err == nil {
		t.Fatal("expected error for expired token")
	}
}

func TestMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := NewManager("test-secret")

	router := gin.New()
	router.GET("/protected", m.Middleware(), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user_id": c.GetString("user_id")})
	})

	token, err := m.CreateToken(models.User{ID: "user-1", Username: "ansel"})
	if err != nil {
		t.Fatalf("CreateToken: %v", err)
	}

	tests := []struct {
		name       string
		header     string
		wantStatus int
	}{
		{"valid token", "Bearer " + token, http.StatusOK},
		{"missing header", "", http.StatusUnauthorized},
		{"not bearer", "Basic abc", http.StatusUnauthorized},
		{"garbage token", "Bearer not-a-token", http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/protected", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
		})
	}
}
