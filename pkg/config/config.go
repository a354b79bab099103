package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

const (
	StoreMemory    = "memory"
	StoreMongo     = "mongo"
	StoreFirestore = "firestore"

	AuthJWT      = "jwt"
	AuthFirebase = "firebase"
)

type Config struct {
	ServerPort     string
	Environment    string
	AllowedOrigins []string

	StoreDriver   string
	MongoURI      string
	MongoDatabase string

	FirebaseProject            string
	FirebaseServiceAccountPath string
	FirebaseServiceAccountJSON string
	StorageBucket              string

	AuthProvider string
	JWTSecret    string
	JWTExpiry    int64

	MessageRatePerMinute int
	MaxUploadBytes       int64
}

func Load() (*Config, error) {
	godotenv.Load()

	config := &Config{
		ServerPort:     getEnv("SERVER_PORT", "8080"),
		Environment:    getEnv("ENVIRONMENT", "development"),
		AllowedOrigins: getEnvAsList("CORS_ALLOWED_ORIGINS"),

		StoreDriver:   getEnv("STORE_DRIVER", StoreMemory),
		MongoURI:      getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDatabase: getEnv("MONGO_DATABASE", "droplink"),

		FirebaseProject:            getEnv("FIREBASE_PROJECT_ID", ""),
		FirebaseServiceAccountPath: getEnv("FIREBASE_SERVICE_ACCOUNT_PATH", ""),
		FirebaseServiceAccountJSON: getEnv("FIREBASE_SERVICE_ACCOUNT_JSON", ""),
		StorageBucket:              getEnv("STORAGE_BUCKET", ""),

		AuthProvider: getEnv("AUTH_PROVIDER", AuthJWT),
		JWTSecret:    getEnv("JWT_SECRET", "your-secret-key"),
		JWTExpiry:    getEnvAsInt64("JWT_EXPIRY", 24*60*60), // 24 hours

		MessageRatePerMinute: int(getEnvAsInt64("MESSAGE_RATE_PER_MINUTE", 30)),
		MaxUploadBytes:       getEnvAsInt64("MAX_UPLOAD_BYTES", 5*1024*1024),
	}

	if err := config.validate(); err != nil {
		return nil, err
	}

	return config, nil
}

func (c *Config) validate() error {
	switch c.StoreDriver {
	case StoreMemory, StoreMongo:
	case StoreFirestore:
		if c.FirebaseProject == "" {
			return fmt.Errorf("FIREBASE_PROJECT_ID is required for the firestore store")
		}
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q", c.StoreDriver)
	}

	switch c.AuthProvider {
	case AuthJWT:
		if c.JWTSecret == "" {
			return fmt.Errorf("JWT_SECRET is required for jwt auth")
		}
	case AuthFirebase:
		if c.FirebaseProject == "" {
			return fmt.Errorf("FIREBASE_PROJECT_ID is required for firebase auth")
		}
	default:
		return fmt.Errorf("unknown AUTH_PROVIDER %q", c.AuthProvider)
	}

	if c.MessageRatePerMinute <= 0 {
		return fmt.Errorf("MESSAGE_RATE_PER_MINUTE must be positive")
	}

	return nil
}

// UsesFirebase reports whether any component needs Google credentials.
func (c *Config) UsesFirebase() bool {
	return c.StoreDriver == StoreFirestore || c.AuthProvider == AuthFirebase || c.StorageBucket != ""
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt64(key string, defaultValue int64) int64 {
	if value, exists := os.LookupEnv(key); exists {
		intValue, err := strconv.ParseInt(value, 10, 64)
		if err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvAsList splits a comma-separated variable, dropping blanks.
func getEnvAsList(key string) []string {
	var out []string
	for _, part := range strings.Split(os.Getenv(key), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
