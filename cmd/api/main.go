package main

import (
	"context"
	"errors"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"traveleon/internal/adapter/api"
	"traveleon/internal/adapter/api/handler"
	apimiddleware "traveleon/internal/adapter/api/middleware"
	"traveleon/internal/adapter/api/router"
	"traveleon/internal/adapter/repository"
	"traveleon/internal/infrastructure/firebase"
	"traveleon/internal/infrastructure/storage"
	"traveleon/internal/infrastructure/websocket"
	"traveleon/internal/usecase"
	"traveleon/pkg/config"
	"traveleon/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	clients, err := firebase.NewClients(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to initialize Firebase: %v", err)
	}
	defer clients.Close()

	var avatars usecase.AvatarResolver
	if cfg.StorageBucket != "" {
		storageClient, err := storage.NewCloudStorageClient(ctx, cfg.StorageBucket, clients.ClientOptions()...)
		if err != nil {
			log.Fatalf("Failed to initialize Cloud Storage: %v", err)
		}
		defer storageClient.Close()
		avatars = storageClient
	} else {
		logger.Warn("STORAGE_BUCKET not set, avatar references are passed through unresolved")
	}

	chatRoomRepo := repository.NewFirestoreChatRoomRepository(clients.Firestore)
	profileRepo := repository.NewFirestoreProfileRepository(clients.Firestore)
	messageRepo := repository.NewFirestoreMessageRepository(clients.Firestore)

	resolver := usecase.NewEnrichmentResolver(profileRepo, messageRepo, avatars, usecase.ResolverOptions{
		Concurrency: cfg.EnrichConcurrency,
		Timeout:     cfg.EnrichTimeout,
	})
	subscriber := usecase.NewRoomSubscriber(chatRoomRepo, usecase.SubscriberOptions{
		MaxAttempts:    cfg.SubscribeMaxAttempts,
		InitialBackoff: cfg.SubscribeInitialBackoff,
		MaxBackoff:     cfg.SubscribeMaxBackoff,
	})
	chatUseCase := usecase.NewChatUseCase(chatRoomRepo, profileRepo, messageRepo, resolver)

	wsManager := websocket.NewManager(func(gate *usecase.SessionGate) *usecase.ChatListEngine {
		return usecase.NewChatListEngine(gate, subscriber, resolver)
	}, clients.Auth)

	handler.Setup(
		handler.NewChatRoomHandler(chatUseCase),
		handler.NewHealthHandler(clients.Auth, wsManager),
		handler.NewWebSocketHandler(wsManager, clients.Auth),
	)

	e := echo.New()
	// live chat list sessions end with the process
	e.Server.BaseContext = func(net.Listener) context.Context { return ctx }

	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	e.Validator = api.NewValidator()

	authMiddleware := apimiddleware.NewAuthMiddleware(clients.Auth)
	// 20 handshakes burst, one more every 3s per IP
	rateLimit := apimiddleware.NewRateLimit(20, 3*time.Second)
	rateLimit.StartCleanup(ctx, 10*time.Minute)

	router.Setup(e, authMiddleware, rateLimit)

	go func() {
		logger.Info("Starting server on port %s", cfg.ServerPort)
		if err := e.Start(":" + cfg.ServerPort); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server shutdown failed: %v", err)
	}
}
