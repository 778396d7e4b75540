package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"postdeck/internal/model"
	"postdeck/internal/transport/http/middleware"
)

const testSecret = "test-secret"

func signToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}

func TestAuthMiddleware_SetsUserAndRole(t *testing.T) {
	token := signToken(t, testSecret, jwt.MapClaims{
		"user_id": float64(7),
		"role":    model.RoleReviewer,
		"exp":     time.Now().Add(time.Hour).Unix(),
	})

	var gotUserID int64
	var gotRole string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUserID, _ = middleware.GetUserIDFromContext(r.Context())
		gotRole, _ = middleware.GetRoleFromContext(r.Context())
	})

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	middleware.AuthMiddleware(testSecret)(next).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if gotUserID != 7 {
		t.Errorf("user id = %d, want 7", gotUserID)
	}
	if gotRole != model.RoleReviewer {
		t.Errorf("role = %q, want %q", gotRole, model.RoleReviewer)
	}
}

func TestAuthMiddleware_CookieFallback(t *testing.T) {
	token := signToken(t, testSecret, jwt.MapClaims{
		"user_id": float64(7),
		"exp":     time.Now().Add(time.Hour).Unix(),
	})

	var gotUserID int64
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUserID, _ = middleware.GetUserIDFromContext(r.Context())
	})

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.AddCookie(&http.Cookie{Name: "access_token", Value: token})
	rec := httptest.NewRecorder()
	middleware.AuthMiddleware(testSecret)(next).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK || gotUserID != 7 {
		t.Errorf("status = %d, user id = %d; want 200 and 7", rec.Code, gotUserID)
	}
}

func TestAuthMiddleware_Rejections(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("rejected request should not reach the handler")
	})
	mw := middleware.AuthMiddleware(testSecret)(next)

	t.Run("missing token", func(t *testing.T) {
		rec := httptest.NewRecorder()
		mw.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/me", nil))
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("status = %d, want 401", rec.Code)
		}
	})

	t.Run("expired token", func(t *testing.T) {
		token := signToken(t, testSecret, jwt.MapClaims{
			"user_id": float64(7),
			"exp":     time.Now().Add(-time.Hour).Unix(),
		})
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		mw.ServeHTTP(rec, req)
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("status = %d, want 401", rec.Code)
		}
		if !strings.Contains(rec.Body.String(), model.CodeTokenExpired) {
			t.Errorf("body = %s, want %s code", rec.Body.String(), model.CodeTokenExpired)
		}
	})

	t.Run("wrong signature", func(t *testing.T) {
		token := signToken(t, "other-secret", jwt.MapClaims{
			"user_id": float64(7),
			"exp":     time.Now().Add(time.Hour).Unix(),
		})
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		mw.ServeHTTP(rec, req)
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("status = %d, want 401", rec.Code)
		}
		if !strings.Contains(rec.Body.String(), model.CodeTokenInvalid) {
			t.Errorf("body = %s, want %s code", rec.Body.String(), model.CodeTokenInvalid)
		}
	})
}
