// Package auth issues and validates the HMAC-signed bearer tokens that guard
// the API in production deployments.
package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

type contextKey string

// UserKey holds the authenticated operator name on the request context.
const UserKey contextKey = "auth_user"

// Claims carries the operator identity inside the signed token.
type Claims struct {
	jwt.RegisteredClaims
	User string `json:"user"`
}

// TokenIssuer signs and parses HS256 tokens with a shared secret.
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
	issuer string
}

// NewTokenIssuer creates an issuer. ttl bounds the lifetime of every token
// it signs.
func NewTokenIssuer(secret string, ttl time.Duration) *TokenIssuer {
	return &TokenIssuer{
		secret: []byte(secret),
		ttl:    ttl,
		issuer: "lims-server",
	}
}

// Issue signs a token for the given operator.
func (i *TokenIssuer) Issue(user string) (string, time.Time, error) {
	now := time.Now()
	expires := now.Add(i.ttl)
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    i.issuer,
			Subject:   user,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
		User: user,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(i.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("signing token: %w", err)
	}
	return signed, expires, nil
}

// Parse validates a signed token and returns its claims.
func (i *TokenIssuer) Parse(tokenStr string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		return i.secret, nil
	},
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithIssuer(i.issuer),
	)
	if err != nil {
		return nil, fmt.Errorf("parsing token: %w", err)
	}
	if !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}
	return claims, nil
}

// UserFromContext returns the operator name set by the middleware, or "".
func UserFromContext(ctx context.Context) string {
	user, _ := ctx.Value(UserKey).(string)
	return user
}
