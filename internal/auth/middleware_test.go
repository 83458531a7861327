package auth

import (
	"bytes"
	"errors"
	"log"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func testMiddleware(secret []byte) *Middleware {
	return NewMiddleware(secret, NewDefaultPolicy([]string{"/healthz"}, nil), log.New(&bytes.Buffer{}, "", 0))
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestMiddleware_NoToken(t *testing.T) {
	handler := testMiddleware([]byte("test-secret")).Wrap(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/resilience/analyses", nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.Code)
	}
}

func TestMiddleware_ViewerForbiddenAnalysisRun(t *testing.T) {
	secret := []byte("test-secret")
	handler := testMiddleware(secret).Wrap(okHandler())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/resilience/analyses", nil)
	req.Header.Set("Authorization", "Bearer "+mustToken(t, secret, "user-1", "viewer", time.Hour))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", resp.Code)
	}
}

func TestMiddleware_ViewerAllowedRead(t *testing.T) {
	secret := []byte("test-secret")
	mw := testMiddleware(secret)
	handler := mw.Wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity, ok := IdentityFromContext(r.Context())
		if !ok {
			t.Fatalf("identity missing from context")
		}
		if identity.Subject != "user-1" || identity.Role != RoleViewer {
			t.Fatalf("identity = %+v", identity)
		}
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/resilience/analyses/abc123", nil)
	req.Header.Set("Authorization", "Bearer "+mustToken(t, secret, "user-1", "viewer", time.Hour))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
}

func TestMiddleware_PlannerAllowedRun(t *testing.T) {
	secret := []byte("test-secret")
	handler := testMiddleware(secret).Wrap(okHandler())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/resilience/analyses", nil)
	req.Header.Set("Authorization", "Bearer "+mustToken(t, secret, "user-1", "planner", time.Hour))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
}

func TestMiddleware_ExemptPath(t *testing.T) {
	handler := testMiddleware([]byte("test-secret")).Wrap(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
}

func TestParseToken(t *testing.T) {
	secret := []byte("test-secret")

	identity, err := ParseToken(mustToken(t, secret, "user-1", "admin", time.Hour), secret)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if identity.Subject != "user-1" || identity.Role != RoleAdmin {
		t.Fatalf("identity = %+v", identity)
	}

	if _, err := ParseToken("", secret); !errors.Is(err, ErrMissingToken) {
		t.Fatalf("empty token: err = %v, want ErrMissingToken", err)
	}
	if _, err := ParseToken(mustToken(t, secret, "user-1", "viewer", time.Hour), []byte("other-secret")); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("wrong secret: err = %v, want ErrInvalidToken", err)
	}
	if _, err := ParseToken(mustToken(t, secret, "user-1", "superuser", time.Hour), secret); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("unknown role: err = %v, want ErrInvalidToken", err)
	}
	if _, err := ParseToken(mustToken(t, secret, "user-1", "viewer", -time.Hour), secret); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expired token: err = %v, want ErrInvalidToken", err)
	}
}

func mustToken(t *testing.T, secret []byte, subject, role string, ttl time.Duration) string {
	t.Helper()
	claims := Claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}
