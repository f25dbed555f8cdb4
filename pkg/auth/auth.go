// Package auth verifies HS256 bearer tokens and gates administrative routes on the isAdmin claim.
// Tokens are issued elsewhere; this package never signs them.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/JaimeStill/estate/pkg/handlers"
)

var (
	// ErrMissingToken indicates the request carried no bearer token.
	ErrMissingToken = errors.New("you are not authenticated")
	// ErrInvalidToken indicates the token failed signature or claim validation.
	ErrInvalidToken = errors.New("token is not valid")
	// ErrForbidden indicates a valid token without administrative rights.
	ErrForbidden = errors.New("you are not allowed to do that")
)

// Claims are the token claims the service reads.
type Claims struct {
	UserID  string `json:"id"`
	IsAdmin bool   `json:"isAdmin"`
	jwt.RegisteredClaims
}

type claimsKey struct{}

// FromContext returns the verified claims attached by the admin gate, if any.
func FromContext(ctx context.Context) (*Claims, bool) {
	c, ok := ctx.Value(claimsKey{}).(*Claims)
	return c, ok
}

// Verifier validates bearer tokens.
type Verifier struct {
	cfg    *Config
	parser *jwt.Parser
	logger *slog.Logger
}

// New creates a Verifier for cfg.
func New(cfg *Config, logger *slog.Logger) *Verifier {
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(cfg.Issuer))
	}

	return &Verifier{
		cfg:    cfg,
		parser: jwt.NewParser(opts...),
		logger: logger.With("system", "auth"),
	}
}

// Verify parses and validates raw, returning its claims.
func (v *Verifier) Verify(raw string) (*Claims, error) {
	claims := &Claims{}
	token, err := v.parser.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) {
		return []byte(v.cfg.Secret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// RequireAdmin returns middleware admitting only requests whose token carries isAdmin.
// Tokens are read from the Authorization header, falling back to a "token" header;
// both accept an optional "Bearer " prefix.
func (v *Verifier) RequireAdmin() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if !v.cfg.Enabled {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := bearer(r)
			if raw == "" {
				handlers.RespondError(w, v.logger, http.StatusUnauthorized, ErrMissingToken)
				return
			}

			claims, err := v.Verify(raw)
			if err != nil {
				handlers.RespondError(w, v.logger, http.StatusForbidden, ErrInvalidToken)
				return
			}

			if !claims.IsAdmin {
				handlers.RespondError(w, v.logger, http.StatusForbidden, ErrForbidden)
				return
			}

			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), claimsKey{}, claims)))
		})
	}
}

func bearer(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if h == "" {
		h = r.Header.Get("token")
	}
	h = strings.TrimSpace(h)

	if len(h) > 7 && strings.EqualFold(h[:7], "bearer ") {
		return strings.TrimSpace(h[7:])
	}
	return h
}
