package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	fbapp "firebase.google.com/go/v4"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"droplink/internal/adapter/api"
	"droplink/internal/adapter/api/handler"
	apimiddleware "droplink/internal/adapter/api/middleware"
	"droplink/internal/adapter/api/router"
	"droplink/internal/adapter/repository"
	domainrepo "droplink/internal/domain/repository"
	"droplink/internal/domain/service"
	"droplink/internal/infrastructure/auth"
	"droplink/internal/infrastructure/firebase"
	"droplink/internal/infrastructure/mongodb"
	"droplink/internal/infrastructure/ratelimit"
	"droplink/internal/infrastructure/storage"
	"droplink/internal/infrastructure/websocket"
	"droplink/internal/usecase"
	"droplink/pkg/config"
	"droplink/pkg/logger"
)

const attachmentURLPrefix = "/v1/attachments/"

// stores groups the repositories of the selected driver with what the
// process needs to probe and release them.
type stores struct {
	messages domainrepo.MessageRepository
	items    domainrepo.ItemRepository
	users    domainrepo.UserRepository
	files    service.FileUploadService
	ping     handler.Pinger
	close    func(ctx context.Context)
}

type tokenService interface {
	apimiddleware.TokenVerifier
	usecase.TokenIssuer
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var firebaseApp *fbapp.App
	if cfg.UsesFirebase() {
		opts, err := firebase.ClientOptions(cfg)
		if err != nil {
			log.Fatalf("Failed to resolve Google credentials: %v", err)
		}
		firebaseApp, err = firebase.NewApp(ctx, cfg, opts...)
		if err != nil {
			log.Fatalf("%v", err)
		}
	}

	st, err := openStores(ctx, cfg, firebaseApp)
	if err != nil {
		log.Fatalf("Failed to open %s store: %v", cfg.StoreDriver, err)
	}
	defer st.close(context.Background())

	tokens, err := newTokenService(ctx, cfg, firebaseApp)
	if err != nil {
		log.Fatalf("Failed to initialize auth: %v", err)
	}

	wsManager := websocket.NewManager()
	wsManager.Start(ctx)

	rateLimiter := ratelimit.NewRateLimiter(cfg.MessageRatePerMinute)
	rateLimiter.StartCleanupRoutine(ctx.Done())

	messageUseCase := usecase.NewMessageUseCase(st.messages, st.items, st.users, wsManager, rateLimiter)
	itemUseCase := usecase.NewItemUseCase(st.items, st.users)
	attachmentUseCase := usecase.NewAttachmentUseCase(st.files, rateLimiter, cfg.MaxUploadBytes)

	handler.Setup(messageUseCase, itemUseCase, attachmentUseCase)

	e := echo.New()
	e.HideBanner = true
	e.Logger = logger.Logger()
	e.HTTPErrorHandler = api.HTTPErrorHandler
	e.Validator = api.NewValidator()

	e.Use(middleware.RequestID())
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(corsConfig(cfg.AllowedOrigins)))
	// Room for multipart framing on top of the largest attachment.
	e.Use(middleware.BodyLimit(fmt.Sprintf("%dK", cfg.MaxUploadBytes/1024+64)))

	authMiddleware := apimiddleware.NewAuthMiddleware(tokens)

	router.Setup(e, authMiddleware, rateLimiter)
	router.SetupHealthRouter(e, handler.NewHealthHandler(cfg.StoreDriver, st.ping, wsManager.OnlineUsers))
	router.SetupWebSocketRouter(e, handler.NewWebSocketHandler(wsManager, authMiddleware, cfg.AllowedOrigins))
	router.SetupDevRouter(e, handler.NewDevTokenHandler(tokens, st.users), cfg.Environment)

	go func() {
		logger.Info("Starting server on port %s (store=%s, auth=%s)", cfg.ServerPort, cfg.StoreDriver, cfg.AuthProvider)
		if err := e.Start(":" + cfg.ServerPort); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server stopped: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed: %v", err)
	}
}

func openStores(ctx context.Context, cfg *config.Config, app *fbapp.App) (*stores, error) {
	var st *stores

	switch cfg.StoreDriver {
	case config.StoreMongo:
		client, err := mongodb.Connect(ctx, cfg.MongoURI, cfg.MongoDatabase)
		if err != nil {
			return nil, err
		}
		if err := client.EnsureIndexes(ctx); err != nil {
			return nil, err
		}
		st = &stores{
			messages: repository.NewMongoMessageRepository(client.Database),
			items:    repository.NewMongoItemRepository(client.Database),
			users:    repository.NewMongoUserRepository(client.Database),
			files:    storage.NewGridFSStore(client.GridFS, attachmentURLPrefix),
			ping: handler.PingFunc(func(ctx context.Context) error {
				return client.Client.Ping(ctx, nil)
			}),
			close: func(ctx context.Context) {
				if err := client.Close(ctx); err != nil {
					logger.Error("mongodb disconnect: %v", err)
				}
			},
		}

	case config.StoreFirestore:
		client, err := app.Firestore(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to create Firestore client: %w", err)
		}
		st = &stores{
			messages: repository.NewFirestoreMessageRepository(client),
			items:    repository.NewFirestoreItemRepository(client),
			users:    repository.NewFirestoreUserRepository(client),
			files:    storage.NewMemoryStore(attachmentURLPrefix),
			close: func(context.Context) {
				client.Close()
			},
		}

	default:
		logger.Warn("Using the in-memory store; data is lost on restart")
		st = &stores{
			messages: repository.NewMemoryMessageRepository(),
			items:    repository.NewMemoryItemRepository(),
			users:    repository.NewMemoryUserRepository(),
			files:    storage.NewMemoryStore(attachmentURLPrefix),
			close:    func(context.Context) {},
		}
	}

	if cfg.StorageBucket != "" {
		opts, err := firebase.ClientOptions(cfg)
		if err != nil {
			return nil, err
		}
		gcs, err := storage.NewCloudStorageClient(ctx, cfg.StorageBucket, opts...)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize Cloud Storage: %w", err)
		}
		st.files = gcs
		storeClose := st.close
		st.close = func(ctx context.Context) {
			gcs.Close()
			storeClose(ctx)
		}
	}

	return st, nil
}

func newTokenService(ctx context.Context, cfg *config.Config, app *fbapp.App) (tokenService, error) {
	if cfg.AuthProvider == config.AuthFirebase {
		authClient, err := app.Auth(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize Firebase Auth: %w", err)
		}
		return firebase.NewFirebaseAuthClient(authClient), nil
	}
	return auth.NewJWTAuthClient(cfg.JWTSecret, time.Duration(cfg.JWTExpiry)*time.Second), nil
}

func corsConfig(origins []string) middleware.CORSConfig {
	c := middleware.DefaultCORSConfig
	if len(origins) > 0 {
		c.AllowOrigins = origins
	}
	c.AllowHeaders = []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization}
	return c
}
