package auth

import (
	"context"
	"errors"
	"strings"

	jwt "github.com/golang-jwt/jwt/v5"
)

// Principal represents the authenticated caller.
type Principal struct {
	UID string // user identity from the token subject
}

type principalKey struct{}

// WithPrincipal stores the principal in context.
func WithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// FromContext retrieves the principal from context (if any).
func FromContext(ctx context.Context) (*Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(*Principal)
	return p, ok
}

// TokenVerifier validates a bearer token and resolves the caller's identity.
// Identity verification is delegated to an external provider; this interface
// is the seam it plugs in through.
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (*Principal, error)
}

// HS256Verifier verifies locally issued HS256 JWTs.
type HS256Verifier struct {
	Secret string
}

// NewHS256Verifier creates an HS256Verifier with the given secret.
func NewHS256Verifier(secret string) *HS256Verifier {
	return &HS256Verifier{Secret: secret}
}

// Verify validates the token signature and extracts the subject.
func (v *HS256Verifier) Verify(_ context.Context, tokenStr string) (*Principal, error) {
	if v.Secret == "" {
		return nil, errors.New("jwt secret is empty")
	}

	type claims struct {
		UID string `json:"uid"`
		jwt.RegisteredClaims
	}

	tok, err := jwt.ParseWithClaims(tokenStr, &claims{}, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(v.Secret), nil
	})
	if err != nil || !tok.Valid {
		if err == nil {
			err = errors.New("invalid token")
		}
		return nil, err
	}
	c, _ := tok.Claims.(*claims)
	if c == nil {
		return nil, errors.New("invalid claims")
	}
	uid := c.UID
	if uid == "" {
		uid = c.Subject
	}
	if strings.TrimSpace(uid) == "" {
		return nil, errors.New("token carries no identity")
	}
	return &Principal{UID: uid}, nil
}
