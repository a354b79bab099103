package auth

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTAuthClient_RoundTrip(t *testing.T) {
	ctx := context.Background()
	client := NewJWTAuthClient("secret", time.Hour)

	token, err := client.GenerateToken(ctx, "u1")
	require.NoError(t, err)

	uid, err := client.VerifyToken(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, "u1", uid)
}

func TestJWTAuthClient_Rejects(t *testing.T) {
	ctx := context.Background()
	client := NewJWTAuthClient("secret", time.Hour)

	other, err := NewJWTAuthClient("other", time.Hour).GenerateToken(ctx, "u1")
	require.NoError(t, err)
	_, err = client.VerifyToken(ctx, other)
	assert.Error(t, err, "wrong secret")

	expired := NewJWTAuthClient("secret", time.Hour)
	expired.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	old, err := expired.GenerateToken(ctx, "u1")
	require.NoError(t, err)
	_, err = client.VerifyToken(ctx, old)
	assert.Error(t, err, "expired")

	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{Subject: "u1", Issuer: issuer}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = client.VerifyToken(ctx, none)
	assert.Error(t, err, "alg none")

	_, err = client.VerifyToken(ctx, "garbage")
	assert.Error(t, err)
}
