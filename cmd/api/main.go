package main

import (
	"context"
	"log"
	"os"

	"cloud.google.com/go/firestore"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"google.golang.org/api/option"

	fbapp "firebase.google.com/go/v4"

	"otomart/internal/adapter/api"
	"otomart/internal/adapter/api/handler"
	apimiddleware "otomart/internal/adapter/api/middleware"
	"otomart/internal/adapter/api/router"
	"otomart/internal/adapter/repository"
	"otomart/internal/infrastructure/ratelimit"
	"otomart/internal/infrastructure/websocket"
	"otomart/internal/usecase"
	"otomart/pkg/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	ctx := context.Background()

	var opts []option.ClientOption
	if serviceAccountJSON := os.Getenv("FIREBASE_SERVICE_ACCOUNT_JSON"); serviceAccountJSON != "" {
		opts = append(opts, option.WithCredentialsJSON([]byte(serviceAccountJSON)))
	} else if serviceAccountPath := os.Getenv("FIREBASE_SERVICE_ACCOUNT_PATH"); serviceAccountPath != "" {
		opts = append(opts, option.WithCredentialsFile(serviceAccountPath))
	}

	firebaseApp, err := fbapp.NewApp(ctx, &fbapp.Config{ProjectID: cfg.FirebaseProject}, opts...)
	if err != nil {
		log.Fatalf("Failed to initialize Firebase: %v", err)
	}

	authClient, err := firebaseApp.Auth(ctx)
	if err != nil {
		log.Fatalf("Failed to initialize Firebase Auth: %v", err)
	}

	firestoreClient, err := firestore.NewClient(ctx, cfg.FirebaseProject, opts...)
	if err != nil {
		log.Fatalf("Failed to create Firestore client: %v", err)
	}
	defer firestoreClient.Close()

	conversationRepo := repository.NewFirestoreConversationRepository(firestoreClient)
	messageRepo := repository.NewFirestoreMessageRepository(firestoreClient)
	presenceRepo := repository.NewFirestorePresenceRepository(firestoreClient)
	blockRepo := repository.NewFirestoreBlockRepository(firestoreClient)
	userRepo := repository.NewFirestoreUserRepository(firestoreClient)
	listingRepo := repository.NewFirestoreListingRepository(firestoreClient)

	wsManager := websocket.NewManager()
	wsManager.Start(ctx)

	rateLimiter := ratelimit.NewRateLimiter()
	rateLimiter.StartCleanupRoutine()

	unreadUseCase := usecase.NewUnreadUseCase(conversationRepo, messageRepo)
	conversationUseCase := usecase.NewConversationUseCase(conversationRepo, messageRepo, userRepo, listingRepo, unreadUseCase, wsManager, rateLimiter)
	messageUseCase := usecase.NewMessageUseCase(messageRepo, conversationRepo, blockRepo, userRepo, unreadUseCase, wsManager, rateLimiter)
	presenceUseCase := usecase.NewPresenceUseCase(presenceRepo, conversationRepo, wsManager, cfg.PresenceStaleness)
	blockUseCase := usecase.NewBlockUseCase(blockRepo, userRepo, wsManager)

	reconciler := websocket.NewReconciler(wsManager, unreadUseCase, cfg.ReconcileInterval)
	reconciler.Start(ctx)

	e := echo.New()

	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	e.Validator = api.NewValidator()

	authMiddleware := apimiddleware.NewAuthMiddleware(authClient, cfg.DevTokenSecret, cfg.Environment)

	handlers := router.Handlers{
		Conversation: handler.NewConversationHandler(conversationUseCase),
		Message:      handler.NewMessageHandler(messageUseCase),
		Unread:       handler.NewUnreadHandler(unreadUseCase),
		Presence:     handler.NewPresenceHandler(presenceUseCase),
		Block:        handler.NewBlockHandler(blockUseCase),
		WebSocket:    handler.NewWebSocketHandler(wsManager, reconciler, conversationUseCase, messageUseCase, presenceUseCase),
		DevToken:     handler.NewDevTokenHandler(cfg.DevTokenSecret),
		Health:       handler.NewHealthHandler(),
	}

	router.Setup(e, handlers, authMiddleware, cfg.Environment)

	e.Logger.Fatal(e.Start(":" + cfg.ServerPort))
}
