// Package firebase initialises the Firebase app shared by Firestore and
// Firebase Auth.
package firebase

import (
	"context"
	"fmt"
	"os"

	fbapp "firebase.google.com/go/v4"
	"google.golang.org/api/option"

	"droplink/pkg/config"
	"droplink/pkg/logger"
)

// ClientOptions picks credentials from inline JSON, then a file path, then
// application default credentials.
func ClientOptions(cfg *config.Config) ([]option.ClientOption, error) {
	if cfg.FirebaseServiceAccountJSON != "" {
		logger.Info("Using Firebase service account from environment variable")
		return []option.ClientOption{option.WithCredentialsJSON([]byte(cfg.FirebaseServiceAccountJSON))}, nil
	}
	if cfg.FirebaseServiceAccountPath != "" {
		if _, err := os.Stat(cfg.FirebaseServiceAccountPath); err != nil {
			return nil, fmt.Errorf("service account file: %w", err)
		}
		logger.Info("Using Firebase service account from file: %s", cfg.FirebaseServiceAccountPath)
		return []option.ClientOption{option.WithCredentialsFile(cfg.FirebaseServiceAccountPath)}, nil
	}
	logger.Info("Using application default credentials")
	return nil, nil
}

func NewApp(ctx context.Context, cfg *config.Config, opts ...option.ClientOption) (*fbapp.App, error) {
	app, err := fbapp.NewApp(ctx, &fbapp.Config{
		ProjectID:     cfg.FirebaseProject,
		StorageBucket: cfg.StorageBucket,
	}, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Firebase: %w", err)
	}
	return app, nil
}
