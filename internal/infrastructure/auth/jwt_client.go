// Package auth issues and verifies the HS256 bearer tokens used when Firebase
// Auth is not configured.
package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

const issuer = "droplink"

type JWTAuthClient struct {
	secret []byte
	expiry time.Duration
	now    func() time.Time
}

func NewJWTAuthClient(secret string, expiry time.Duration) *JWTAuthClient {
	return &JWTAuthClient{
		secret: []byte(secret),
		expiry: expiry,
		now:    time.Now,
	}
}

func (a *JWTAuthClient) GenerateToken(ctx context.Context, uid string) (string, error) {
	now := a.now()
	claims := jwt.RegisteredClaims{
		Subject:   uid,
		Issuer:    issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(a.expiry)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
}

// VerifyToken returns the subject of a valid, unexpired token.
func (a *JWTAuthClient) VerifyToken(ctx context.Context, token string) (string, error) {
	var claims jwt.RegisteredClaims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return a.secret, nil
	})
	if err != nil {
		return "", err
	}
	if !parsed.Valid || claims.Subject == "" {
		return "", fmt.Errorf("token has no subject")
	}
	if !claims.VerifyIssuer(issuer, true) {
		return "", fmt.Errorf("unexpected issuer %q", claims.Issuer)
	}
	return claims.Subject, nil
}
