package auth_test

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/JaimeStill/estate/pkg/auth"
)

const secret = "0123456789abcdef-test-secret"

func sign(t *testing.T, key string, method jwt.SigningMethod, claims auth.Claims) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(method, claims).SignedString([]byte(key))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return tok
}

func verifier(enabled bool) *auth.Verifier {
	cfg := &auth.Config{Enabled: enabled, Secret: secret}
	return auth.New(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestRequireAdmin(t *testing.T) {
	future := jwt.NewNumericDate(time.Now().Add(time.Hour))
	past := jwt.NewNumericDate(time.Now().Add(-time.Hour))

	admin := sign(t, secret, jwt.SigningMethodHS256, auth.Claims{UserID: "u1", IsAdmin: true, RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: future}})
	user := sign(t, secret, jwt.SigningMethodHS256, auth.Claims{UserID: "u2", RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: future}})
	expired := sign(t, secret, jwt.SigningMethodHS256, auth.Claims{UserID: "u1", IsAdmin: true, RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: past}})
	wrongKey := sign(t, "another-secret-entirely", jwt.SigningMethodHS256, auth.Claims{IsAdmin: true})
	wrongAlg := sign(t, secret, jwt.SigningMethodHS512, auth.Claims{IsAdmin: true})

	tests := []struct {
		name       string
		header     string
		value      string
		wantStatus int
	}{
		{"admin via authorization", "Authorization", "Bearer " + admin, http.StatusOK},
		{"admin via token header", "token", "Bearer " + admin, http.StatusOK},
		{"admin without bearer prefix", "token", admin, http.StatusOK},
		{"missing token", "", "", http.StatusUnauthorized},
		{"not admin", "Authorization", "Bearer " + user, http.StatusForbidden},
		{"expired", "Authorization", "Bearer " + expired, http.StatusForbidden},
		{"wrong key", "Authorization", "Bearer " + wrongKey, http.StatusForbidden},
		{"wrong algorithm", "Authorization", "Bearer " + wrongAlg, http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var claims *auth.Claims
			h := verifier(true).RequireAdmin()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				claims, _ = auth.FromContext(r.Context())
			}))

			req := httptest.NewRequest("DELETE", "/property/propertyDetails/x", nil)
			if tt.header != "" {
				req.Header.Set(tt.header, tt.value)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if tt.wantStatus == http.StatusOK && (claims == nil || !claims.IsAdmin) {
				t.Errorf("claims not attached to context: %+v", claims)
			}
		})
	}
}

func TestRequireAdminDisabled(t *testing.T) {
	var called bool
	h := verifier(false).RequireAdmin()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("POST", "/property/propertyDetails", nil))

	if !called {
		t.Error("disabled gate should pass requests through")
	}
}

func TestVerifyWrapsInvalidToken(t *testing.T) {
	_, err := verifier(true).Verify("not.a.token")
	if !errors.Is(err, auth.ErrInvalidToken) {
		t.Errorf("Verify() error = %v, want ErrInvalidToken", err)
	}
}

func TestConfigFinalize(t *testing.T) {
	t.Setenv("TEST_AUTH_ENABLED", "true")
	t.Setenv("TEST_AUTH_SECRET", "short")

	cfg := auth.Config{}
	if err := cfg.Finalize(&auth.Env{Enabled: "TEST_AUTH_ENABLED", Secret: "TEST_AUTH_SECRET"}); err == nil {
		t.Error("short secret should fail validation when enabled")
	}

	disabled := auth.Config{}
	if err := disabled.Finalize(nil); err != nil {
		t.Errorf("disabled config should finalize without a secret: %v", err)
	}
}
