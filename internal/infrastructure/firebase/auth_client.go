package firebase

import (
	"context"

	"firebase.google.com/go/v4/auth"
)

type FirebaseAuthClient struct {
	client *auth.Client
}

func NewFirebaseAuthClient(client *auth.Client) *FirebaseAuthClient {
	return &FirebaseAuthClient{
		client: client,
	}
}

// VerifyToken checks a Firebase ID token and returns its uid.
func (f *FirebaseAuthClient) VerifyToken(ctx context.Context, token string) (string, error) {
	result, err := f.client.VerifyIDToken(ctx, token)
	if err != nil {
		return "", err
	}
	return result.UID, nil
}

// GenerateToken mints a custom token; clients exchange it for an ID token.
func (f *FirebaseAuthClient) GenerateToken(ctx context.Context, uid string) (string, error) {
	return f.client.CustomToken(ctx, uid)
}
